package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davekalu/conversa/internal/core"
	"github.com/davekalu/conversa/internal/models"
)

// Router is the top-level orchestrator: it classifies each turn, dispatches
// to the matching handler through a mode table, and normalizes every outcome
// (success or failure) into one assistant turn. Handler failures are domain
// data, never transport faults.
type Router struct {
	llm   core.LLMProvider
	store core.ObjectStore

	handlers   map[Mode]handlerFunc
	extractPdf func(data []byte) (text string, pages int, err error)
	now        func() time.Time
}

type handlerFunc func(ctx context.Context, req *TurnRequest) (*Reply, error)

func NewRouter(llm core.LLMProvider, store core.ObjectStore) *Router {
	r := &Router{
		llm:        llm,
		store:      store,
		extractPdf: extractPdfText,
		now:        time.Now,
	}
	r.handlers = map[Mode]handlerFunc{
		ModeGeneralChat:    r.handleGeneralChat,
		ModeCodeGeneration: r.handleCodeGeneration,
		ModePdfExtraction:  r.handlePdfExtraction,
		ModeCsvAnalysis:    r.handleCsvAnalysis,
		ModeCsvAction:      r.handleCsvAction,
	}
	return r
}

// HandleTurn processes one user turn and always returns an assistant turn.
// An explicit action request bypasses classification and goes straight to
// the CSV action resolver.
func (r *Router) HandleTurn(ctx context.Context, req *TurnRequest) *models.Turn {
	var reply *Reply
	var err error

	if req.Action != nil {
		reply, err = r.handlers[ModeCsvAction](ctx, req)
	} else {
		var mode Mode
		mode, err = Classify(req.Text, req.File)
		if err == nil {
			reply, err = r.handlers[mode](ctx, req)
		}
	}

	if err != nil {
		reply = errorReply(err)
	}
	return r.newTurn(req.SessionID, reply)
}

func (r *Router) handleGeneralChat(ctx context.Context, req *TurnRequest) (*Reply, error) {
	answer, err := r.llm.Generate(ctx, generalChatSystem, req.Text)
	if err != nil {
		return nil, wrapModelErr(err)
	}
	return &Reply{Content: strings.TrimSpace(answer), Mode: ModeGeneralChat}, nil
}

func errorReply(err error) *Reply {
	kind := KindOf(err)
	detail := DetailOf(err)
	return &Reply{
		Content:  "Error: " + detail,
		Mode:     ModeError,
		Metadata: ErrorMetadata{ErrorKind: string(kind), Detail: detail},
	}
}

func (r *Router) newTurn(sessionID string, reply *Reply) *models.Turn {
	return &models.Turn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      "assistant",
		Content:   reply.Content,
		Mode:      string(reply.Mode),
		Metadata:  MarshalMetadata(reply.Metadata),
		CreatedAt: r.now(),
	}
}

// wrapModelErr classifies a language-model collaborator failure. Timeouts
// and cancellations become ModelTimeout, everything else ModelUnavailable;
// already-classified errors pass through.
func wrapModelErr(err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return WrapErr(KindModelTimeout, err, "language model timed out")
	}
	return WrapErr(KindModelUnavailable, err, "language model request failed")
}
