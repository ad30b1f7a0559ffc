package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ahmadnish/lets-vibe/internal/archive"
	"github.com/ahmadnish/lets-vibe/internal/gateway/config"
	"github.com/ahmadnish/lets-vibe/internal/gateway/handler"
	"github.com/ahmadnish/lets-vibe/internal/gateway/server"
	"github.com/ahmadnish/lets-vibe/internal/knowledge"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/orchestrator"
	"github.com/ahmadnish/lets-vibe/internal/pipeline"
	"github.com/ahmadnish/lets-vibe/internal/publish"
	"github.com/ahmadnish/lets-vibe/internal/runlog"
	"github.com/ahmadnish/lets-vibe/internal/websearch"
)

// App owns every long-lived component behind the gateway.
type App struct {
	cfg       *config.Config
	llmClient llm.Client
	knowledge *knowledge.Store
	server    *server.Server
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	base, err := newLLMClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("app: llm client: %w", err)
	}

	mws := []llm.Middleware{
		llm.WithLogging(log.New(os.Stderr, "[llm] ", log.LstdFlags)),
		llm.RateLimitFromEnv(),
	}
	if cfg.LLM.Retries > 0 {
		mws = append(mws, llm.Retry(cfg.LLM.Retries, 500*time.Millisecond))
	}
	client := llm.Wrap(base, mws...)

	search := websearch.NewClient(client, os.Getenv("SERPER_API_KEY"))
	if !search.Available() {
		log.Printf("web search running in degraded mode: SERPER_API_KEY not set")
	}

	kb := knowledge.NewFromEnv()
	runLog := runlog.New()

	var archiveStore *archive.S3Store
	if cfg.Archive.Enabled {
		archiveStore, err = archive.NewS3Store(archive.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			log.Printf("plan archive disabled: %v", err)
			archiveStore = nil
		}
	}

	github := publish.NewGitHubClient(os.Getenv("GITHUB_TOKEN"))
	notion := publish.NewNotionClient(os.Getenv("NOTION_API_KEY"), os.Getenv("NOTION_PARENT_PAGE_ID"))

	generateHandler := handler.NewGenerateHandler(pipeline.New(client), github, notion, archiveStore, kb, runLog)
	orchestrateHandler := handler.NewOrchestrateHandler(orchestrator.New(client, search, runLog), generateHandler, runLog)
	watchHandler := handler.NewWatchHandler(runLog)

	mux := server.NewMux(generateHandler, orchestrateHandler, watchHandler)

	return &App{
		cfg:       cfg,
		llmClient: client,
		knowledge: kb,
		server:    server.New(cfg.Port, mux),
	}, nil
}

func newLLMClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	switch cfg.Provider {
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.Model)
	case "openai", "":
		return llm.NewOpenAIClient("", cfg.Model)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}

func (a *App) Start() error { return a.server.Start() }

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.knowledge.Close(); err != nil {
		log.Printf("knowledge store close: %v", err)
	}
	if err := a.llmClient.Close(); err != nil {
		log.Printf("llm client close: %v", err)
	}
	return a.server.Shutdown(ctx)
}
