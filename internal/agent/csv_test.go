package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvAnalysis(t *testing.T) {
	llm := &fakeLLM{responses: []string{suggestionJSON("Regional sales data", 4)}}
	store := newFakeStore()
	router := newTestRouter(llm, store)

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		Text:      "",
		File:      &Upload{Filename: "sales.csv", Data: salesCSV(100)},
	})

	require.Equal(t, string(ModeCsvAnalysis), turn.Mode)
	require.Equal(t, "assistant", turn.Role)

	var meta CsvAnalysisMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))

	// Batch is 4-5 items with unique ids 1..N.
	n := len(meta.Suggestions)
	require.True(t, n == 4 || n == 5, "suggestion count = %d", n)
	seen := map[int]bool{}
	for _, s := range meta.Suggestions {
		assert.GreaterOrEqual(t, s.ID, 1)
		assert.LessOrEqual(t, s.ID, n)
		assert.False(t, seen[s.ID], "duplicate id %d", s.ID)
		seen[s.ID] = true
	}

	// The analysis context carries everything phase 2 needs.
	assert.Equal(t, meta.FilePath, meta.AnalysisContext.FilePath)
	assert.Equal(t, 100, meta.AnalysisContext.Profile.NumRows)
	assert.Len(t, meta.AnalysisContext.Profile.Columns, 2)
	assert.Equal(t, "Regional sales data", meta.AnalysisContext.Summary)
	assert.Len(t, meta.AnalysisContext.Suggestions, n)

	// Every id in the batch resolves against the context that produced it.
	for _, s := range meta.Suggestions {
		_, ok := meta.AnalysisContext.hasSuggestion(s.ID)
		assert.True(t, ok, "id %d not resolvable", s.ID)
	}

	// The upload was persisted and is retrievable at the returned path.
	stored, err := store.Get(context.Background(), meta.FilePath)
	require.NoError(t, err)
	assert.Equal(t, salesCSV(100), stored)
}

func TestCsvAnalysisRetriesOnce(t *testing.T) {
	llm := &fakeLLM{responses: []string{"not json at all", suggestionJSON("second try", 4)}}
	store := newFakeStore()
	router := newTestRouter(llm, store)

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		File:      &Upload{Filename: "sales.csv", Data: salesCSV(10)},
	})

	require.Equal(t, string(ModeCsvAnalysis), turn.Mode)
	assert.Equal(t, 2, llm.calls)
}

func TestCsvAnalysisFailsAfterRetry(t *testing.T) {
	llm := &fakeLLM{responses: []string{"garbage", suggestionJSON("too short", 2)}}
	store := newFakeStore()
	router := newTestRouter(llm, store)

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		File:      &Upload{Filename: "sales.csv", Data: salesCSV(10)},
	})

	require.Equal(t, string(ModeError), turn.Mode)
	var meta ErrorMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, string(KindModelUnavailable), meta.ErrorKind)

	// Generation failed, so nothing may have been persisted.
	assert.Zero(t, store.puts)
}

func TestCsvAnalysisMalformedFile(t *testing.T) {
	llm := &fakeLLM{}
	store := newFakeStore()
	router := newTestRouter(llm, store)

	turn := router.HandleTurn(context.Background(), &TurnRequest{
		SessionID: "s1",
		File:      &Upload{Filename: "bad.csv", Data: []byte("a,b\n1\n")},
	})

	require.Equal(t, string(ModeError), turn.Mode)
	var meta ErrorMetadata
	require.NoError(t, json.Unmarshal(turn.Metadata, &meta))
	assert.Equal(t, string(KindMalformedCsv), meta.ErrorKind)
	assert.Zero(t, llm.calls, "model must not be called for a malformed file")
}
