package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// fakeLLM returns scripted responses in order. A nil entry in errs means the
// matching response is returned; a non-nil entry is returned as the failure.
type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeLLM) Generate(_ context.Context, _, userPrompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("fakeLLM: no scripted response left")
}

func (f *fakeLLM) Close() error { return nil }

// fakeStore is an in-memory artifact store keyed by "kind/filename".
type fakeStore struct {
	objects map[string][]byte
	puts    int
	failPut error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(_ context.Context, kind, filename string, data []byte, _ string) (string, error) {
	if f.failPut != nil {
		return "", f.failPut
	}
	f.puts++
	path := kind + "/" + filename
	f.objects[path] = append([]byte(nil), data...)
	return path, nil
}

func (f *fakeStore) Get(_ context.Context, path string) ([]byte, error) {
	data, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", path)
	}
	return data, nil
}

func (f *fakeStore) Delete(_ context.Context, path string) error {
	delete(f.objects, path)
	return nil
}

func newTestRouter(llm *fakeLLM, store *fakeStore) *Router {
	return NewRouter(llm, store)
}

// suggestionJSON builds a valid model suggestion reply with n items.
func suggestionJSON(summary string, n int) string {
	var items []string
	titles := []string{
		"View Statistics", "Check Data Quality", "Spot Trends",
		"Export Filtered Data", "Generate Report",
	}
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"id": %d, "title": %q, "description": "do the thing"}`, i+1, titles[i%len(titles)]))
	}
	return fmt.Sprintf(`{"content_summary": %q, "suggestions": [%s]}`, summary, strings.Join(items, ","))
}

// salesCSV builds a well-formed region/revenue CSV with the given row count.
func salesCSV(rows int) []byte {
	var b strings.Builder
	b.WriteString("region,revenue\n")
	regions := []string{"north", "south", "east", "west"}
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%s,%d\n", regions[i%len(regions)], 100+i)
	}
	return []byte(b.String())
}
