package server

import (
	"net/http"

	"github.com/ahmadnish/lets-vibe/internal/gateway/handler"
	"github.com/ahmadnish/lets-vibe/internal/gateway/middleware"
)

func NewMux(
	generateHandler *handler.GenerateHandler,
	orchestrateHandler *handler.OrchestrateHandler,
	watchHandler *handler.WatchHandler,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/generate-project", generateHandler.HandleGenerate)
	mux.HandleFunc("/api/orchestrate-project", orchestrateHandler.HandleOrchestrate)
	mux.HandleFunc("/api/runs/watch", watchHandler.HandleWatch)
	mux.HandleFunc("/healthz", handler.HandleHealth)

	return middleware.CORS(mux)
}
