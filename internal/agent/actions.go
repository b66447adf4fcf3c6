package agent

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Phase 2 of the CSV protocol: the caller picked a suggestion and echoes the
// analysis context it received. The id is validated against that batch, the
// file is re-opened from the store, and the suggestion's operation tag is
// dispatched through a closed executor table.

// actionResult is what an executor produces: a textual outcome and
// optionally a derived artifact to persist.
type actionResult struct {
	text         string
	artifactName string
	artifactData []byte
	contentType  string
}

type actionExecutor func(t *Table, actx AnalysisContext) actionResult

var actionExecutors = map[OpTag]actionExecutor{
	OpDistribution:   executeDistribution,
	OpQualityCheck:   executeQualityCheck,
	OpTrend:          executeTrend,
	OpExportFiltered: executeExportFiltered,
	OpSummaryReport:  executeSummaryReport,
}

// handleCsvAction resolves and executes a previously issued suggestion.
func (r *Router) handleCsvAction(ctx context.Context, req *TurnRequest) (*Reply, error) {
	action := req.Action

	suggestion, ok := action.Context.hasSuggestion(action.ID)
	if !ok {
		return nil, Errorf(KindUnknownSuggestion,
			"suggestion %d is not part of this analysis; it may belong to a superseded one", action.ID)
	}

	filePath := action.FilePath
	if filePath == "" {
		filePath = action.Context.FilePath
	}
	data, err := r.store.Get(ctx, filePath)
	if err != nil {
		return nil, WrapErr(KindMissingArtifact, err, "stored file %s no longer resolves", filePath)
	}

	table, err := LoadTable(data)
	if err != nil {
		return nil, err
	}

	execute, ok := actionExecutors[suggestion.Operation]
	if !ok {
		// The tag set is closed at suggestion time, so this only fires on a
		// tampered context. Fall back to the safest operation.
		execute = executeSummaryReport
	}
	result := execute(table, action.Context)

	meta := CsvActionMetadata{
		ActionID:  action.ID,
		Operation: suggestion.Operation,
		FilePath:  filePath,
	}

	content := fmt.Sprintf("**%s**\n\n%s", suggestion.Title, result.text)
	if result.artifactData != nil {
		outPath, err := r.store.Put(ctx, "reports", result.artifactName, result.artifactData, result.contentType)
		if err != nil {
			return nil, WrapErr(KindInternal, err, "failed to persist derived artifact")
		}
		meta.OutputPath = outPath
		content += fmt.Sprintf("\n\n**Output File:** `%s`", outPath)
	}

	return &Reply{Content: content, Mode: ModeCsvAction, Metadata: meta}, nil
}

// numericColumn holds the parsed values of one numeric column.
type numericColumn struct {
	name   string
	values []float64
}

func (t *Table) numericColumns() []numericColumn {
	var out []numericColumn
	for _, cp := range t.Profile().Columns {
		if cp.Type != "integer" && cp.Type != "float" {
			continue
		}
		var vals []float64
		for _, raw := range t.column(cp.Name) {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				vals = append(vals, f)
			}
		}
		if len(vals) > 0 {
			out = append(out, numericColumn{name: cp.Name, values: vals})
		}
	}
	return out
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func executeDistribution(t *Table, _ AnalysisContext) actionResult {
	var b strings.Builder
	b.WriteString("**Value Distributions:**\n")

	numeric := t.numericColumns()
	shown := 0
	for _, nc := range numeric {
		if shown == 5 {
			break
		}
		lo, hi := minMax(nc.values)
		fmt.Fprintf(&b, "\n- **%s**: Mean=%.2f, Min=%.2f, Max=%.2f", nc.name, mean(nc.values), lo, hi)
		shown++
	}

	numericNames := map[string]bool{}
	for _, nc := range numeric {
		numericNames[nc.name] = true
	}
	shown = 0
	for _, col := range t.Columns {
		if numericNames[col] || shown == 5 {
			continue
		}
		counts := map[string]int{}
		for _, v := range t.column(col) {
			counts[v]++
		}
		if len(counts) == 0 {
			continue
		}
		type kv struct {
			k string
			n int
		}
		var top []kv
		for k, n := range counts {
			top = append(top, kv{k, n})
		}
		sort.Slice(top, func(i, j int) bool {
			if top[i].n != top[j].n {
				return top[i].n > top[j].n
			}
			return top[i].k < top[j].k
		})
		if len(top) > 5 {
			top = top[:5]
		}
		parts := make([]string, len(top))
		for i, e := range top {
			parts[i] = fmt.Sprintf("%s (%d)", e.k, e.n)
		}
		fmt.Fprintf(&b, "\n- **%s**: %d unique values; top: %s", col, len(counts), strings.Join(parts, ", "))
		shown++
	}

	return actionResult{text: b.String()}
}

func executeQualityCheck(t *Table, _ AnalysisContext) actionResult {
	var b strings.Builder
	b.WriteString("**Data Quality Report:**\n")

	totalRows := len(t.Rows)
	anyMissing := false
	for i, col := range t.Columns {
		missing := 0
		for _, row := range t.Rows {
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				missing++
			}
		}
		if missing > 0 {
			if !anyMissing {
				b.WriteString("\n**Missing Values:**")
				anyMissing = true
			}
			pct := 0.0
			if totalRows > 0 {
				pct = float64(missing) / float64(totalRows) * 100
			}
			fmt.Fprintf(&b, "\n- **%s**: %d missing (%.2f%%)", col, missing, pct)
		}
	}
	if !anyMissing {
		b.WriteString("\nNo missing values detected.")
	}

	seen := map[string]bool{}
	duplicates := 0
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			duplicates++
		}
		seen[key] = true
	}
	if duplicates > 0 {
		pct := float64(duplicates) / float64(totalRows) * 100
		fmt.Fprintf(&b, "\n\n**Duplicates:** %d rows (%.2f%%)", duplicates, pct)
	} else {
		b.WriteString("\n\nNo duplicate rows found.")
	}

	return actionResult{text: b.String()}
}

func executeTrend(t *Table, _ AnalysisContext) actionResult {
	numeric := t.numericColumns()
	if len(numeric) == 0 {
		return actionResult{text: "No numeric column found to compute a trend over."}
	}
	nc := numeric[0]
	if len(nc.values) < 2 {
		return actionResult{text: fmt.Sprintf("Column **%s** has too few values for a trend.", nc.name)}
	}

	half := len(nc.values) / 2
	early, late := mean(nc.values[:half]), mean(nc.values[half:])
	direction := "flat"
	switch {
	case late > early*1.02:
		direction = "rising"
	case late < early*0.98:
		direction = "falling"
	}

	var change string
	if early != 0 {
		change = fmt.Sprintf(" (%+.1f%% between halves)", (late-early)/early*100)
	}

	text := fmt.Sprintf(`**Trend Summary for %s:**

- First value: %.2f, last value: %.2f
- First-half mean: %.2f, second-half mean: %.2f
- Overall direction: **%s**%s`,
		nc.name, nc.values[0], nc.values[len(nc.values)-1], early, late, direction, change)
	return actionResult{text: text}
}

func executeExportFiltered(t *Table, actx AnalysisContext) actionResult {
	const sampleRows = 10
	n := sampleRows
	if n > len(t.Rows) {
		n = len(t.Rows)
	}

	// Write through encoding/csv so fields that were unquoted at load time
	// (embedded commas, quotes, newlines) are re-quoted and the artifact
	// parses back as CSV.
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(t.Columns)
	for _, row := range t.Rows[:n] {
		_ = w.Write(row)
	}
	w.Flush()

	name := fileStem(actx.FilePath) + "_sample_10.csv"
	text := fmt.Sprintf(`Data filtering prepared.

**Sample Export:**
- Exported first %d rows to demonstrate filtering
- Total rows in original: %d`, n, len(t.Rows))

	return actionResult{
		text:         text,
		artifactName: name,
		artifactData: buf.Bytes(),
		contentType:  "text/csv",
	}
}

func executeSummaryReport(t *Table, actx AnalysisContext) actionResult {
	profile := t.Profile()

	var b strings.Builder
	fmt.Fprintf(&b, "# Dataset Report: %s\n\n", path.Base(actx.FilePath))
	if actx.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", actx.Summary)
	}
	fmt.Fprintf(&b, "## Structure\n\n- Rows: %d\n- Columns: %d\n\n", profile.NumRows, len(profile.Columns))
	b.WriteString("| Column | Type |\n|---|---|\n")
	for _, c := range profile.Columns {
		fmt.Fprintf(&b, "| %s | %s |\n", c.Name, c.Type)
	}
	b.WriteString("\n## Distributions\n\n")
	b.WriteString(executeDistribution(t, actx).text)
	b.WriteString("\n\n## Data Quality\n\n")
	b.WriteString(executeQualityCheck(t, actx).text)
	b.WriteString("\n")

	name := fileStem(actx.FilePath) + "_report.md"
	text := fmt.Sprintf(`Comprehensive report generated.

**Report Details:**
- Rows analyzed: %d
- Includes structure, distributions, and data quality analysis`, profile.NumRows)

	return actionResult{
		text:         text,
		artifactName: name,
		artifactData: []byte(b.String()),
		contentType:  "text/markdown; charset=utf-8",
	}
}

// fileStem returns the base name of a store path without its extension.
func fileStem(p string) string {
	base := path.Base(p)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	if base == "." || base == "/" || base == "" {
		return "data"
	}
	return base
}
