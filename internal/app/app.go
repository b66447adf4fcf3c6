package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/davekalu/conversa/internal/agent"
	"github.com/davekalu/conversa/internal/config"
	"github.com/davekalu/conversa/internal/core"
	db "github.com/davekalu/conversa/internal/core/database"
	"github.com/davekalu/conversa/internal/core/llm"
	"github.com/davekalu/conversa/internal/core/objectstore"
)

type App struct {
	DBClient    core.DbClient
	ObjectStore core.ObjectStore
	LLM         core.LLMProvider
	Router      *agent.Router
	Server      *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	store, err := objectstore.NewS3Store(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object store initialized and ready.")

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the LLM provider, %w", err)
	}

	router := agent.NewRouter(llmProvider, store)
	server := NewServer(cfg, dbClient, router)

	return &App{
		DBClient:    dbClient,
		ObjectStore: store,
		LLM:         llmProvider,
		Router:      router,
		Server:      server,
	}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
