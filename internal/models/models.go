package models

import (
	"encoding/json"
	"time"
)

// Session represents one conversation. Created by the API layer; the agent
// core only reads the identifier to scope turn lookups.
type Session struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Turn is a single user or assistant message within a session.
// Metadata is mode-specific JSON: for csv_analysis it carries the suggestion
// batch and the echoed analysis context, for error the error kind and detail.
// Turns are appended, never mutated.
type Turn struct {
	ID        string          `db:"id" json:"id"`
	SessionID string          `db:"session_id" json:"session_id"`
	Role      string          `db:"role" json:"role"` // "user" or "assistant"
	Content   string          `db:"content" json:"content"`
	Mode      string          `db:"mode" json:"mode"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// UploadedFile tracks a user upload and where it landed in the artifact store.
type UploadedFile struct {
	ID               string    `db:"id" json:"id"`
	SessionID        string    `db:"session_id" json:"session_id"`
	TurnID           string    `db:"turn_id" json:"turn_id"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	FileType         string    `db:"file_type" json:"file_type"` // pdf | csv | other
	StoragePath      string    `db:"storage_path" json:"storage_path"`
	UploadedAt       time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// AgentExecution logs one router invocation for debugging and analytics.
type AgentExecution struct {
	ID              string    `db:"id" json:"id"`
	SessionID       string    `db:"session_id" json:"session_id"`
	TurnID          string    `db:"turn_id" json:"turn_id"`
	Mode            string    `db:"mode" json:"mode"`
	Success         bool      `db:"success" json:"success"`
	ErrorKind       string    `db:"error_kind" json:"error_kind,omitempty"`
	ExecutionTimeMs int64     `db:"execution_time_ms" json:"execution_time_ms"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
