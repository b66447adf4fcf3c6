package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davekalu/conversa/internal/agent"
	"github.com/davekalu/conversa/internal/core"
	"github.com/davekalu/conversa/internal/models"
)

const maxUploadBytes = 32 << 20 // 32 MB

type ChatHandler struct {
	dbclient core.DbClient
	router   *agent.Router
}

func NewChatHandler(dbclient core.DbClient, router *agent.Router) *ChatHandler {
	return &ChatHandler{dbclient: dbclient, router: router}
}

// SendMessage accepts a multipart form with session_id, message, and an
// optional file, runs the router synchronously, and returns both turns.
// Handler failures inside the router never become 5xx; the assistant turn
// carries them as error-mode data.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	sessionID := r.FormValue("session_id")
	message := r.FormValue("message")

	session, err := h.dbclient.GetSessionByID(ctx, sessionID)
	if err != nil || session == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var upload *agent.Upload
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "failed to read uploaded file", http.StatusBadRequest)
			return
		}
		upload = &agent.Upload{Filename: filepath.Base(header.Filename), Data: data}
	}

	userTurn := &models.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "user",
		Content:   message,
		Mode:      string(agent.ModeGeneralChat),
		CreatedAt: time.Now(),
	}
	if err := h.dbclient.AppendTurn(ctx, userTurn); err != nil {
		http.Error(w, "failed to store message", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	assistantTurn := h.router.HandleTurn(ctx, &agent.TurnRequest{
		SessionID: sessionID,
		Text:      message,
		File:      upload,
	})
	elapsed := time.Since(start)

	if err := h.dbclient.AppendTurn(ctx, assistantTurn); err != nil {
		http.Error(w, "failed to store response", http.StatusInternalServerError)
		return
	}

	if upload != nil {
		h.recordUpload(r, sessionID, userTurn.ID, upload.Filename, assistantTurn)
	}
	h.recordExecution(r, sessionID, assistantTurn, elapsed)

	if err := h.dbclient.TouchSession(ctx, sessionID); err != nil {
		log.Printf("touch session %s: %v", sessionID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_turn":         userTurn,
		"assistant_turn":    assistantTurn,
		"execution_time_ms": elapsed.Milliseconds(),
	})
}

// ActionRequest is the phase-2 follow-up body: the suggestion id plus the
// analysis context echoed back verbatim from the csv_analysis turn.
type ActionRequest struct {
	SessionID       string                 `json:"session_id"`
	ActionID        int                    `json:"action_id"`
	FilePath        string                 `json:"file_path"`
	AnalysisContext *agent.AnalysisContext `json:"analysis_context"`
}

// ExecuteAction runs a CSV follow-up action selected by the user.
func (h *ChatHandler) ExecuteAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" || req.ActionID == 0 || req.AnalysisContext == nil {
		http.Error(w, "session_id, action_id, and analysis_context are required", http.StatusBadRequest)
		return
	}

	session, err := h.dbclient.GetSessionByID(ctx, req.SessionID)
	if err != nil || session == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	start := time.Now()
	assistantTurn := h.router.HandleTurn(ctx, &agent.TurnRequest{
		SessionID: req.SessionID,
		Action: &agent.ActionRequest{
			ID:       req.ActionID,
			FilePath: req.FilePath,
			Context:  *req.AnalysisContext,
		},
	})
	elapsed := time.Since(start)

	if err := h.dbclient.AppendTurn(ctx, assistantTurn); err != nil {
		http.Error(w, "failed to store response", http.StatusInternalServerError)
		return
	}
	h.recordExecution(r, req.SessionID, assistantTurn, elapsed)

	if err := h.dbclient.TouchSession(ctx, req.SessionID); err != nil {
		log.Printf("touch session %s: %v", req.SessionID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"assistant_turn":    assistantTurn,
		"execution_time_ms": elapsed.Milliseconds(),
	})
}

// recordUpload logs the uploaded file record, pulling the storage path out
// of the assistant turn's metadata when the handler persisted it.
func (h *ChatHandler) recordUpload(r *http.Request, sessionID, turnID, filename string, assistantTurn *models.Turn) {
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if fileType != "pdf" && fileType != "csv" {
		fileType = "other"
	}

	var meta struct {
		FilePath string `json:"file_path"`
	}
	if len(assistantTurn.Metadata) > 0 {
		_ = json.Unmarshal(assistantTurn.Metadata, &meta)
	}

	record := &models.UploadedFile{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		TurnID:           turnID,
		OriginalFilename: filename,
		FileType:         fileType,
		StoragePath:      meta.FilePath,
		UploadedAt:       time.Now(),
	}
	if err := h.dbclient.CreateUploadedFile(r.Context(), record); err != nil {
		log.Printf("record upload for session %s: %v", sessionID, err)
	}
}

func (h *ChatHandler) recordExecution(r *http.Request, sessionID string, assistantTurn *models.Turn, elapsed time.Duration) {
	exec := &models.AgentExecution{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		TurnID:          assistantTurn.ID,
		Mode:            assistantTurn.Mode,
		Success:         assistantTurn.Mode != string(agent.ModeError),
		ExecutionTimeMs: elapsed.Milliseconds(),
		CreatedAt:       time.Now(),
	}
	if assistantTurn.Mode == string(agent.ModeError) {
		var meta agent.ErrorMetadata
		if json.Unmarshal(assistantTurn.Metadata, &meta) == nil {
			exec.ErrorKind = meta.ErrorKind
		}
	}
	if err := h.dbclient.RecordExecution(r.Context(), exec); err != nil {
		log.Printf("record execution for session %s: %v", sessionID, err)
	}
}
