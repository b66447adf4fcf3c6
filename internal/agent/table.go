package agent

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Table is a parsed CSV: a header row plus data rows, all strings. Type
// inference happens at profiling time, not load time.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnProfile is one column's name and inferred type.
type ColumnProfile struct {
	Name string `json:"name"`
	Type string `json:"type"` // integer | float | boolean | date | string
}

// TableProfile is the structural summary sent to the model and echoed back
// in the analysis context.
type TableProfile struct {
	Columns    []ColumnProfile `json:"columns"`
	NumRows    int             `json:"num_rows"`
	SampleRows [][]string      `json:"sample_rows"`
}

const profileSampleRows = 3

// LoadTable parses CSV bytes into a Table. Inconsistent column counts and
// undecodable input are malformed, as is a file with no header row.
func LoadTable(data []byte) (*Table, error) {
	if !utf8.Valid(data) {
		return nil, Errorf(KindMalformedCsv, "file is not valid UTF-8 text")
	}

	r := csv.NewReader(bytes.NewReader(data))
	// FieldsPerRecord defaults to the first row's width, so ragged rows
	// surface as csv.ErrFieldCount.
	records, err := r.ReadAll()
	if err != nil {
		return nil, WrapErr(KindMalformedCsv, err, "failed to parse CSV")
	}
	if len(records) == 0 {
		return nil, Errorf(KindMalformedCsv, "file contains no rows")
	}

	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// Profile computes the structural profile: column names, inferred types, row
// count, and a small sample of representative rows.
func (t *Table) Profile() TableProfile {
	cols := make([]ColumnProfile, len(t.Columns))
	for i, name := range t.Columns {
		cols[i] = ColumnProfile{Name: name, Type: t.inferColumnType(i)}
	}

	n := profileSampleRows
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	sample := make([][]string, n)
	for i := 0; i < n; i++ {
		sample[i] = append([]string(nil), t.Rows[i]...)
	}

	return TableProfile{Columns: cols, NumRows: len(t.Rows), SampleRows: sample}
}

// inferColumnType inspects non-empty values in a column and returns the
// narrowest type every value satisfies.
func (t *Table) inferColumnType(col int) string {
	isInt, isFloat, isBool, isDate := true, true, true, true
	seen := 0

	for _, row := range t.Rows {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		seen++
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			switch strings.ToLower(v) {
			case "true", "false", "yes", "no":
			default:
				isBool = false
			}
		}
		if isDate && !looksLikeDate(v) {
			isDate = false
		}
	}

	if seen == 0 {
		return "string"
	}
	switch {
	case isBool:
		return "boolean"
	case isInt:
		return "integer"
	case isFloat:
		return "float"
	case isDate:
		return "date"
	default:
		return "string"
	}
}

var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "01/02/2006", "02-01-2006",
	time.RFC3339, "2006-01-02 15:04:05",
}

func looksLikeDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// column returns all non-empty values of the named column.
func (t *Table) column(name string) []string {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			if v := strings.TrimSpace(row[idx]); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func (p TableProfile) columnNames() string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// sampleBlock renders the sample rows for prompt embedding.
func (p TableProfile) sampleBlock() string {
	var b strings.Builder
	b.WriteString(p.columnNames())
	for _, row := range p.SampleRows {
		b.WriteString("\n")
		b.WriteString(strings.Join(row, ", "))
	}
	return b.String()
}

// hasSuggestion reports whether the context's batch contains the given id.
func (c AnalysisContext) hasSuggestion(id int) (Suggestion, bool) {
	for _, s := range c.Suggestions {
		if s.ID == id {
			return s, true
		}
	}
	return Suggestion{}, false
}
