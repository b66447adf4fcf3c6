package agent

import (
	"context"
	"fmt"
	"strings"
)

// handleCsvAnalysis is phase 1 of the two-phase CSV protocol: parse and
// profile the file, ask the model for a dataset description plus a 4-5 item
// suggestion batch, persist the file, and return everything the caller must
// echo back to execute a follow-up. The server keeps no suggestion state;
// the returned analysis context is the source of truth for phase 2.
func (r *Router) handleCsvAnalysis(ctx context.Context, req *TurnRequest) (*Reply, error) {
	table, err := LoadTable(req.File.Data)
	if err != nil {
		return nil, err
	}
	profile := table.Profile()

	summary, batch, err := r.generateSuggestions(ctx, profile)
	if err != nil {
		return nil, err
	}

	// Persist only after generation succeeded, so a model failure leaves
	// the store untouched.
	path, err := r.store.Put(ctx, "uploads", req.File.Filename, req.File.Data, "text/csv")
	if err != nil {
		return nil, WrapErr(KindInternal, err, "failed to persist uploaded CSV")
	}

	analysisCtx := AnalysisContext{
		FilePath:    path,
		Summary:     summary,
		Profile:     profile,
		Suggestions: batch,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CSV Analysis Complete!\n\n")
	fmt.Fprintf(&b, "**File:** %s\n", req.File.Filename)
	fmt.Fprintf(&b, "**Content Summary:** %s\n\n", summary)
	fmt.Fprintf(&b, "**Statistics:**\n- Rows: %d\n- Columns: %d\n\n", profile.NumRows, len(profile.Columns))
	b.WriteString("**Suggestions for working with this data:**\n")
	for _, s := range batch {
		fmt.Fprintf(&b, "\n%d. **%s**: %s", s.ID, s.Title, s.Description)
	}

	return &Reply{
		Content: b.String(),
		Mode:    ModeCsvAnalysis,
		Metadata: CsvAnalysisMetadata{
			Suggestions:     batch,
			FilePath:        path,
			AnalysisContext: analysisCtx,
		},
	}, nil
}

// generateSuggestions asks the model for the summary and suggestion batch,
// retrying once on malformed JSON or a short batch before giving up.
func (r *Router) generateSuggestions(ctx context.Context, profile TableProfile) (string, []Suggestion, error) {
	prompt := csvSuggestionPrompt(profile)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := r.llm.Generate(ctx, "", prompt)
		if err != nil {
			lastErr = wrapModelErr(err)
			continue
		}
		summary, batch, err := parseSuggestionBatch(raw)
		if err != nil {
			lastErr = err
			continue
		}
		if summary == "" {
			summary = fmt.Sprintf("A CSV file with %d columns and %d rows", len(profile.Columns), profile.NumRows)
		}
		return summary, batch, nil
	}
	return "", nil, lastErr
}
