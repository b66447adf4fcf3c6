package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davekalu/conversa/internal/config"
	"github.com/davekalu/conversa/internal/core"
	"github.com/davekalu/conversa/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Sessions

func (c *DatabaseClient) CreateSession(ctx context.Context, session *models.Session) error {
	if session == nil {
		return errors.New("nil session")
	}
	const q = `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES ($1, $2, COALESCE($3, now()), COALESCE($4, now()))
	`
	_, err := c.db.ExecContext(ctx, q, session.ID, session.Title, session.CreatedAt, session.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetSessionByID(ctx context.Context, id string) (*models.Session, error) {
	const q = `
		SELECT id, title, created_at, updated_at
		FROM sessions WHERE id = $1
	`
	var s models.Session
	err := c.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *DatabaseClient) ListSessions(ctx context.Context) ([]models.Session, error) {
	const q = `
		SELECT id, title, created_at, updated_at
		FROM sessions
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) TouchSession(ctx context.Context, id string) error {
	const q = `UPDATE sessions SET updated_at = now() WHERE id = $1`
	_, err := c.db.ExecContext(ctx, q, id)
	return err
}

// Turns

func (c *DatabaseClient) AppendTurn(ctx context.Context, turn *models.Turn) error {
	if turn == nil {
		return errors.New("nil turn")
	}
	const q = `
		INSERT INTO turns (id, session_id, role, content, mode, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	var meta any
	if len(turn.Metadata) > 0 {
		meta = []byte(turn.Metadata)
	}
	_, err := c.db.ExecContext(ctx, q,
		turn.ID, turn.SessionID, turn.Role, turn.Content, turn.Mode, meta, turn.CreatedAt)
	return err
}

func (c *DatabaseClient) ListTurnsBySession(ctx context.Context, sessionID string) ([]models.Turn, error) {
	const q = `
		SELECT id, session_id, role, content, mode, COALESCE(metadata, 'null'::jsonb), created_at
		FROM turns
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Turn
	for rows.Next() {
		var t models.Turn
		var meta []byte
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.Mode, &meta, &t.CreatedAt); err != nil {
			return nil, err
		}
		if string(meta) != "null" {
			t.Metadata = meta
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Uploads and execution log

func (c *DatabaseClient) CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error {
	if file == nil {
		return errors.New("nil uploaded file")
	}
	const q = `
		INSERT INTO uploaded_files
			(id, session_id, turn_id, original_filename, file_type, storage_path, uploaded_at)
		VALUES
			($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		file.ID, file.SessionID, file.TurnID, file.OriginalFilename, file.FileType, file.StoragePath, file.UploadedAt)
	return err
}

func (c *DatabaseClient) RecordExecution(ctx context.Context, exec *models.AgentExecution) error {
	if exec == nil {
		return errors.New("nil execution")
	}
	const q = `
		INSERT INTO agent_executions
			(id, session_id, turn_id, mode, success, error_kind, execution_time_ms, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		exec.ID, exec.SessionID, exec.TurnID, exec.Mode, exec.Success, exec.ErrorKind, exec.ExecutionTimeMs, exec.CreatedAt)
	return err
}
