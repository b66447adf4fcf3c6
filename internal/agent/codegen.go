package agent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

var codeExtensions = map[string]string{
	"python": ".py", "javascript": ".js", "typescript": ".ts", "java": ".java",
	"cpp": ".cpp", "go": ".go", "rust": ".rs", "ruby": ".rb", "php": ".php",
	"sql": ".sql", "html": ".html", "css": ".css", "bash": ".sh",
	"kotlin": ".kt", "swift": ".swift",
}

// handleCodeGeneration generates code for the request, has the model review
// it, and persists the result. Nothing is persisted unless both model calls
// succeed, so a failed review never leaves a partial artifact behind.
func (r *Router) handleCodeGeneration(ctx context.Context, req *TurnRequest) (*Reply, error) {
	language := DetectLanguage(req.Text)

	generated, err := r.llm.Generate(ctx, "", codeGenerationPrompt(req.Text, language))
	if err != nil {
		return nil, wrapModelErr(err)
	}
	code := stripAllCodeFences(generated)

	review, err := r.llm.Generate(ctx, "", codeReviewPrompt(code, language, req.Text))
	if err != nil {
		return nil, wrapModelErr(err)
	}

	filename := codeFilename(req.Text, language, r.now())
	path, err := r.store.Put(ctx, "generated_code", filename, []byte(code), "text/plain; charset=utf-8")
	if err != nil {
		return nil, WrapErr(KindInternal, err, "failed to persist generated code")
	}

	content := fmt.Sprintf(`I've generated the code and saved it to `+"`%s`"+`.

**Generated Code:**
`+"```%s\n%s\n```"+`

**Code Review:**
%s

**File Location:** `+"`%s`"+`
`, filename, language, code, strings.TrimSpace(review), path)

	return &Reply{
		Content:  content,
		Mode:     ModeCodeGeneration,
		Metadata: CodeGenerationMetadata{Language: language, FilePath: path},
	}, nil
}

// codeFilename derives a collision-avoiding name from the timestamp and a
// hash of the request, never from user-controlled text.
func codeFilename(request, language string, now time.Time) string {
	sum := sha256.Sum256([]byte(request))
	ext, ok := codeExtensions[language]
	if !ok {
		ext = ".txt"
	}
	return fmt.Sprintf("gen_%s_%s%s", now.UTC().Format("20060102_150405"), hex.EncodeToString(sum[:4]), ext)
}
