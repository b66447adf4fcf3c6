package agent

import "encoding/json"

// Mode is the category of handling applied to a turn.
type Mode string

const (
	ModeGeneralChat    Mode = "general_chat"
	ModeCodeGeneration Mode = "code_generation"
	ModePdfExtraction  Mode = "pdf_extraction"
	ModeCsvAnalysis    Mode = "csv_analysis"
	ModeCsvAction      Mode = "csv_action"
	ModeError          Mode = "error"
)

// Upload is a file supplied with a turn. The bytes are read once by the
// matching handler and then handed to the artifact store; the agent keeps
// only the resulting path.
type Upload struct {
	Filename string
	Data     []byte
}

// ActionRequest is a phase-2 CSV follow-up: the caller picked suggestion ID
// from a batch it received earlier and echoes back the analysis context that
// batch shipped with. The echoed context is the source of truth; the server
// keeps no suggestion memory of its own.
type ActionRequest struct {
	ID       int             `json:"id"`
	FilePath string          `json:"file_path"`
	Context  AnalysisContext `json:"context"`
}

// TurnRequest is one inbound user turn.
type TurnRequest struct {
	SessionID string
	Text      string
	File      *Upload
	Action    *ActionRequest
}

// Reply is the normalized handler output the router turns into an assistant
// turn. Metadata is marshaled as-is into the turn's metadata column.
type Reply struct {
	Content  string
	Mode     Mode
	Metadata any
}

// OpTag is the closed set of operations a suggestion can map to. Model
// output never dispatches directly; it is normalized onto one of these.
type OpTag string

const (
	OpDistribution   OpTag = "distribution"
	OpQualityCheck   OpTag = "quality-check"
	OpTrend          OpTag = "trend"
	OpExportFiltered OpTag = "export-filtered"
	OpSummaryReport  OpTag = "summary-report"
)

// Suggestion is one candidate follow-up operation offered after CSV
// analysis. IDs are 1-based and unique within a batch.
type Suggestion struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Operation   OpTag  `json:"operation"`
}

// AnalysisContext is the payload round-tripped to the caller after phase 1
// so phase 2 can resolve a suggestion ID without server-side state.
type AnalysisContext struct {
	FilePath    string       `json:"file_path"`
	Summary     string       `json:"summary"`
	Profile     TableProfile `json:"profile"`
	Suggestions []Suggestion `json:"suggestions"`
}

// ErrorMetadata is the metadata shape of an error-mode turn.
type ErrorMetadata struct {
	ErrorKind string `json:"error_kind"`
	Detail    string `json:"detail"`
}

// CsvAnalysisMetadata is the metadata shape of a csv_analysis turn. The
// suggestion list is duplicated outside the context for UI convenience;
// the context is what must be echoed on the follow-up call.
type CsvAnalysisMetadata struct {
	Suggestions     []Suggestion    `json:"suggestions"`
	FilePath        string          `json:"file_path"`
	AnalysisContext AnalysisContext `json:"analysis_context"`
}

// CsvActionMetadata is the metadata shape of a csv_action turn.
type CsvActionMetadata struct {
	ActionID   int    `json:"action_id"`
	Operation  OpTag  `json:"operation"`
	FilePath   string `json:"file_path"`
	OutputPath string `json:"output_path,omitempty"`
}

// CodeGenerationMetadata is the metadata shape of a code_generation turn.
type CodeGenerationMetadata struct {
	Language string `json:"language"`
	FilePath string `json:"file_path"`
}

// PdfExtractionMetadata is the metadata shape of a pdf_extraction turn.
type PdfExtractionMetadata struct {
	PageCount int    `json:"page_count"`
	WordCount int    `json:"word_count"`
	FilePath  string `json:"file_path"`
}

// MarshalMetadata renders reply metadata for storage, tolerating nil.
func MarshalMetadata(meta any) json.RawMessage {
	if meta == nil {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return raw
}
