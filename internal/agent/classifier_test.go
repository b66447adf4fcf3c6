package agent

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		file     *Upload
		wantMode Mode
		wantKind ErrorKind
	}{
		{
			name:     "csv upload wins over text",
			text:     "write a function to parse this",
			file:     &Upload{Filename: "data.csv"},
			wantMode: ModeCsvAnalysis,
		},
		{
			name:     "pdf upload",
			text:     "",
			file:     &Upload{Filename: "report.PDF"},
			wantMode: ModePdfExtraction,
		},
		{
			name:     "unsupported extension",
			text:     "",
			file:     &Upload{Filename: "notes.docx"},
			wantMode: ModeError,
			wantKind: KindUnsupportedFileType,
		},
		{
			name:     "file with no extension",
			text:     "",
			file:     &Upload{Filename: "README"},
			wantMode: ModeError,
			wantKind: KindUnsupportedFileType,
		},
		{
			name:     "code request with verb and noun",
			text:     "write a function to reverse a string",
			wantMode: ModeCodeGeneration,
		},
		{
			name:     "explicit language mention",
			text:     "how do I sort a list in python",
			wantMode: ModeCodeGeneration,
		},
		{
			name:     "verb without code reference",
			text:     "write a poem about the sea",
			wantMode: ModeGeneralChat,
		},
		{
			name:     "noun without verb",
			text:     "what is a function",
			wantMode: ModeGeneralChat,
		},
		{
			name:     "plain question",
			text:     "what is the capital of France?",
			wantMode: ModeGeneralChat,
		},
		{
			name:     "word boundary respected",
			text:     "create a classical playlist",
			wantMode: ModeGeneralChat,
		},
		{
			name:     "language name inside another word",
			text:     "tell me about javanese culture",
			wantMode: ModeGeneralChat,
		},
		{
			name:     "language name as a whole word",
			text:     "how do I do this in java",
			wantMode: ModeCodeGeneration,
		},
		{
			name:     "empty text",
			text:     "",
			wantMode: ModeGeneralChat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := Classify(tt.text, tt.file)
			if mode != tt.wantMode {
				t.Errorf("Classify() mode = %v, want %v", mode, tt.wantMode)
			}
			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("Classify() expected error kind %v, got nil", tt.wantKind)
				}
				if KindOf(err) != tt.wantKind {
					t.Errorf("Classify() error kind = %v, want %v", KindOf(err), tt.wantKind)
				}
			} else if err != nil {
				t.Errorf("Classify() unexpected error: %v", err)
			}
		})
	}
}

// Classification must be a pure function: repeated calls with identical
// input always yield the identical mode.
func TestClassifyDeterminism(t *testing.T) {
	inputs := []struct {
		text string
		file *Upload
	}{
		{"write a function to reverse a string", nil},
		{"hello there", nil},
		{"", &Upload{Filename: "a.csv"}},
		{"", &Upload{Filename: "a.xlsx"}},
	}
	for _, in := range inputs {
		first, firstErr := Classify(in.text, in.file)
		for i := 0; i < 50; i++ {
			mode, err := Classify(in.text, in.file)
			if mode != first {
				t.Fatalf("Classify(%q) not deterministic: %v then %v", in.text, first, mode)
			}
			if (err == nil) != (firstErr == nil) {
				t.Fatalf("Classify(%q) error not deterministic", in.text)
			}
			if err != nil && KindOf(err) != KindOf(firstErr) {
				t.Fatalf("Classify(%q) error kind not deterministic", in.text)
			}
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"write a python script", "python"},
		{"write a javascript function", "javascript"},
		{"implement this in go please", "go"},
		{"generate some c++ code", "cpp"},
		{"write a function to reverse a string", "python"},
		{"write a parser for javanese text", "python"},
		{"write a java service", "java"},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
