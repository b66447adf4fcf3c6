package agent

import (
	"path/filepath"
	"strings"
)

// Classification is a pure function of the turn's inputs: same text and file
// always yield the same mode. Attached files win over text; unsupported
// extensions are a domain error, not a fatal abort.

var codeVerbs = []string{
	"write", "create", "generate", "make", "build", "implement", "develop",
}

var codeNouns = []string{
	"code", "function", "class", "script", "program", "method", "algorithm",
	"module", "api", "endpoint", "parser", "regex",
}

var languageNames = []string{
	"python", "javascript", "typescript", "java", "golang", "go", "c++",
	"rust", "ruby", "php", "sql", "html", "css", "bash", "kotlin", "swift",
}

// Classify selects exactly one processing mode for a turn.
func Classify(text string, file *Upload) (Mode, error) {
	if file != nil {
		switch strings.ToLower(filepath.Ext(file.Filename)) {
		case ".csv":
			return ModeCsvAnalysis, nil
		case ".pdf":
			return ModePdfExtraction, nil
		default:
			return ModeError, Errorf(KindUnsupportedFileType,
				"unsupported file type: %s. Please upload PDF or CSV files.", file.Filename)
		}
	}

	if looksLikeCodeRequest(text) {
		return ModeCodeGeneration, nil
	}
	return ModeGeneralChat, nil
}

// looksLikeCodeRequest detects code-generation intent: an imperative verb
// together with a reference to code, or an explicit language mention.
func looksLikeCodeRequest(text string) bool {
	lower := " " + strings.ToLower(text) + " "

	for _, lang := range languageNames {
		if containsWord(lower, lang) {
			return true
		}
	}

	hasVerb := false
	for _, v := range codeVerbs {
		if containsWord(lower, v) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}
	for _, n := range codeNouns {
		if containsWord(lower, n) {
			return true
		}
	}
	return false
}

// containsWord matches whole words only, so "class" does not fire on
// "classical". The haystack is already lowercased and space-padded.
func containsWord(padded, word string) bool {
	idx := 0
	for {
		i := strings.Index(padded[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := padded[i-1]
		afterIdx := i + len(word)
		var after byte = ' '
		if afterIdx < len(padded) {
			after = padded[afterIdx]
		}
		if !isWordChar(before) && !isWordChar(after) {
			return true
		}
		idx = i + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// DetectLanguage picks the programming language for a code request, falling
// back to python as the original system did.
func DetectLanguage(text string) string {
	lower := " " + strings.ToLower(text) + " "
	named := map[string]string{
		"python": "python", "javascript": "javascript", "typescript": "typescript",
		"java": "java", "golang": "go", "go": "go", "c++": "cpp", "rust": "rust",
		"ruby": "ruby", "php": "php", "sql": "sql", "html": "html", "css": "css",
		"bash": "bash", "kotlin": "kotlin", "swift": "swift",
	}
	// Check in the fixed language order so detection stays deterministic.
	for _, lang := range languageNames {
		if containsWord(lower, lang) {
			return named[lang]
		}
	}
	return "python"
}
