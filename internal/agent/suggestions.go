package agent

import (
	"encoding/json"
	"strings"
)

// The model proposes free-text suggestions; this file is the trust boundary
// that turns them into a fixed-size batch with stable 1-based ids and a
// closed operation tag, so phase-2 dispatch never runs an arbitrary path.

const (
	minSuggestions = 4
	maxSuggestions = 5
)

type suggestionEnvelope struct {
	ContentSummary string `json:"content_summary"`
	Suggestions    []struct {
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"suggestions"`
}

// parseSuggestionBatch decodes the model's JSON reply into a normalized
// batch. Markdown code fences around the JSON are tolerated. A batch with
// fewer than 4 usable suggestions is rejected so the caller can retry.
func parseSuggestionBatch(raw string) (summary string, batch []Suggestion, err error) {
	var env suggestionEnvelope
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &env); err != nil {
		return "", nil, WrapErr(KindModelUnavailable, err, "model returned malformed suggestion JSON")
	}

	batch = make([]Suggestion, 0, maxSuggestions)
	for _, s := range env.Suggestions {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			continue
		}
		batch = append(batch, Suggestion{
			Title:       title,
			Description: strings.TrimSpace(s.Description),
			Operation:   classifyOperation(title + " " + s.Description),
		})
		if len(batch) == maxSuggestions {
			break
		}
	}
	if len(batch) < minSuggestions {
		return "", nil, Errorf(KindModelUnavailable,
			"model returned %d suggestions, need at least %d", len(batch), minSuggestions)
	}

	// IDs are reassigned server-side: 1..N regardless of what the model sent.
	for i := range batch {
		batch[i].ID = i + 1
	}
	return strings.TrimSpace(env.ContentSummary), batch, nil
}

// classifyOperation maps untrusted suggestion text onto the closed OpTag
// set. No keyword match defaults to summary-report.
func classifyOperation(text string) OpTag {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "distribution", "histogram", "frequency", "breakdown", "statistic", "average", "mean"):
		return OpDistribution
	case containsAny(lower, "quality", "missing", "duplicate", "validate", "clean", "consistency"):
		return OpQualityCheck
	case containsAny(lower, "trend", "over time", "growth", "time series", "seasonal", "change"):
		return OpTrend
	case containsAny(lower, "filter", "export", "extract", "subset", "slice"):
		return OpExportFiltered
	case containsAny(lower, "report", "summary", "summarize", "overview"):
		return OpSummaryReport
	default:
		return OpSummaryReport
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// stripCodeFences unwraps ```json ... ``` (or bare ```) blocks, since models
// often wrap JSON and code in markdown fences despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		// Drop an optional language tag on the opening fence.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(rest[:nl])
			if firstLine != "" && !strings.ContainsAny(firstLine, "{}[]") {
				rest = rest[nl+1:]
			}
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	return s
}

// stripAllCodeFences removes every fence line, keeping the code between
// them, for model replies that interleave prose and fenced code.
func stripAllCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return strings.TrimSpace(s)
	}
	var out []string
	inBlock := false
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inBlock = !inBlock
			continue
		}
		if inBlock {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return strings.TrimSpace(s)
	}
	return strings.Join(out, "\n")
}
