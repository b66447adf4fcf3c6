package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralChat(t *testing.T) {
	llm := &fakeLLM{responses: []string{"  The capital of France is Paris.  "}}
	router := newTestRouter(llm, newFakeStore())

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		Text:      "what is the capital of France?",
	})

	require.Equal(t, string(ModeGeneralChat), turn.Mode)
	assert.Equal(t, "The capital of France is Paris.", turn.Content)
	assert.Equal(t, "assistant", turn.Role)
	assert.Equal(t, "s1", turn.SessionID)
	assert.Empty(t, turn.Metadata)
}

// Any collaborator failure becomes an error-mode turn, never a fault that
// reaches the caller.
func TestErrorIsData(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("connection refused")}}
	router := newTestRouter(llm, newFakeStore())

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		Text:      "hello",
	})

	require.Equal(t, string(ModeError), turn.Mode)
	var meta ErrorMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, string(KindModelUnavailable), meta.ErrorKind)
	assert.NotEmpty(t, meta.Detail)
}

func TestModelTimeoutKind(t *testing.T) {
	llm := &fakeLLM{errs: []error{context.DeadlineExceeded}}
	router := newTestRouter(llm, newFakeStore())

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		Text:      "hello",
	})

	require.Equal(t, string(ModeError), turn.Mode)
	var meta ErrorMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, string(KindModelTimeout), meta.ErrorKind)
}

func TestUnsupportedFileType(t *testing.T) {
	router := newTestRouter(&fakeLLM{}, newFakeStore())

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		File:      &Upload{Filename: "notes.docx", Data: []byte("x")},
	})

	require.Equal(t, string(ModeError), turn.Mode)
	var meta ErrorMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, string(KindUnsupportedFileType), meta.ErrorKind)
}

func TestPdfExtraction(t *testing.T) {
	llm := &fakeLLM{responses: []string{"A short technical report about widgets."}}
	store := newFakeStore()
	router := newTestRouter(llm, store)
	router.extractPdf = func(_ []byte) (string, int, error) {
		return "page one text\fpage two text", 2, nil
	}

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		File:      &Upload{Filename: "report.pdf", Data: []byte("%PDF-1.4 ...")},
	})

	require.Equal(t, string(ModePdfExtraction), turn.Mode)
	assert.Contains(t, turn.Content, "Pages: 2")
	assert.Contains(t, turn.Content, "widgets")

	var meta PdfExtractionMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, 2, meta.PageCount)
	assert.Equal(t, 6, meta.WordCount)

	stored, err := store.Get(context.Background(), meta.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "page one text\fpage two text", string(stored))
}

// The classifier accepts uppercase extensions, so the persisted raw text
// must not end up named Report.PDF.txt.
func TestPdfExtractionUppercaseExtension(t *testing.T) {
	llm := &fakeLLM{responses: []string{"A report."}}
	store := newFakeStore()
	router := newTestRouter(llm, store)
	router.extractPdf = func(_ []byte) (string, int, error) {
		return "some body text", 1, nil
	}

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		File:      &Upload{Filename: "Report.PDF", Data: []byte("%PDF-1.4 ...")},
	})

	require.Equal(t, string(ModePdfExtraction), turn.Mode)
	var meta PdfExtractionMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, "raw_text/Report.txt", meta.FilePath)
}

// A scanned-image PDF with zero extractable characters is a reported
// condition, not a crash or an empty success.
func TestPdfUnreadable(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(&fakeLLM{}, store)
	router.extractPdf = func(_ []byte) (string, int, error) {
		return "", 0, Errorf(KindUnreadablePdf, "PDF has no extractable text (scanned or encrypted?)")
	}

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		File:      &Upload{Filename: "scan.pdf", Data: []byte("%PDF-1.4 ...")},
	})

	require.Equal(t, string(ModeError), turn.Mode)
	var meta ErrorMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, string(KindUnreadablePdf), meta.ErrorKind)
	assert.Zero(t, store.puts)
}

func TestActionRequestBypassesClassifier(t *testing.T) {
	store := newFakeStore()
	meta := analyzeFixture(t, store, salesCSV(10))
	router := newTestRouter(&fakeLLM{}, store)

	// Text that would otherwise classify as code generation is ignored
	// when an action request is present.
	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		Text:      "write a python function",
		Action: &ActionRequest{
			ID:       1,
			FilePath: meta.FilePath,
			Context:  meta.AnalysisContext,
		},
	})

	assert.Equal(t, string(ModeCsvAction), turn.Mode)
}

func TestPdfTextExtraction(t *testing.T) {
	// Whitespace-only extraction counts as unreadable even when the form
	// feed structure suggests pages.
	_, _, err := extractPdfTextFromBody(" \f \n\f ")
	require.Error(t, err)
	assert.Equal(t, KindUnreadablePdf, KindOf(err))

	text, pages, err := extractPdfTextFromBody("hello\fworld")
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Equal(t, "hello\fworld", text)
}
