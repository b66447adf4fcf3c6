package core

import (
	"context"

	"github.com/davekalu/conversa/internal/models"
)

// DbClient defines all persistence operations the API layer needs.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByID(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	TouchSession(ctx context.Context, id string) error

	AppendTurn(ctx context.Context, turn *models.Turn) error
	ListTurnsBySession(ctx context.Context, sessionID string) ([]models.Turn, error)

	CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error
	RecordExecution(ctx context.Context, exec *models.AgentExecution) error

	Close() error
}

// ObjectStore defines interactions with S3 or any object storage. Artifacts
// are addressed by the path returned from Put; callers treat it as opaque.
type ObjectStore interface {
	Put(ctx context.Context, kind, filename string, data []byte, contentType string) (path string, err error)
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// LLMProvider is a stateless request/response text-generation client.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Close() error
}
