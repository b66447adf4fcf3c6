package agent

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// pdfSummaryWordLimit caps how much extracted text is sent to the model for
// summarization; very long documents are summarized from their head.
const pdfSummaryWordLimit = 2000

// handlePdfExtraction extracts text from the uploaded PDF, persists it, and
// returns page/word statistics with a model-written summary. A document with
// no extractable text (scanned images, encryption) is an UnreadablePdf
// domain error, not a zero-length success.
func (r *Router) handlePdfExtraction(ctx context.Context, req *TurnRequest) (*Reply, error) {
	text, pageCount, err := r.extractPdf(req.File.Data)
	if err != nil {
		return nil, err
	}

	wordCount := len(strings.Fields(text))

	base := req.File.Filename
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = strings.TrimSuffix(base, ext)
	}
	path, err := r.store.Put(ctx, "raw_text", base+".txt", []byte(text), "text/plain; charset=utf-8")
	if err != nil {
		return nil, WrapErr(KindInternal, err, "failed to persist extracted text")
	}

	sample := text
	if fields := strings.Fields(text); len(fields) > pdfSummaryWordLimit {
		sample = strings.Join(fields[:pdfSummaryWordLimit], " ")
	}
	summary, err := r.llm.Generate(ctx, "", pdfSummaryPrompt(sample))
	if err != nil {
		return nil, wrapModelErr(err)
	}

	content := fmt.Sprintf(`PDF extracted successfully!

**Summary:** %s

**Statistics:**
- Pages: %d
- Words: %d
- Saved to: `+"`%s`"+`
`, strings.TrimSpace(summary), pageCount, wordCount, path)

	return &Reply{
		Content:  content,
		Mode:     ModePdfExtraction,
		Metadata: PdfExtractionMetadata{PageCount: pageCount, WordCount: wordCount, FilePath: path},
	}, nil
}

// extractPdfText runs the document through docconv and derives a page count.
func extractPdfText(data []byte) (string, int, error) {
	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
	if err != nil {
		return "", 0, WrapErr(KindUnreadablePdf, err, "could not extract text from PDF")
	}
	return extractPdfTextFromBody(res.Body)
}

// extractPdfTextFromBody validates extracted text and counts pages.
// pdftotext separates pages with form feeds, so pages = separators + 1.
func extractPdfTextFromBody(body string) (string, int, error) {
	if strings.TrimSpace(strings.ReplaceAll(body, "\f", "")) == "" {
		return "", 0, Errorf(KindUnreadablePdf, "PDF has no extractable text (scanned or encrypted?)")
	}

	pageCount := strings.Count(body, "\f") + 1
	return strings.TrimSpace(body), pageCount, nil
}
