package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	dialogHandler "github.com/orthovaidhya/vaidhya/backend/internal/handler/dialog"
	middlewarePkg "github.com/orthovaidhya/vaidhya/backend/internal/middleware"
	dialogService "github.com/orthovaidhya/vaidhya/backend/internal/service/dialog"
	"github.com/orthovaidhya/vaidhya/backend/internal/store"
	"github.com/orthovaidhya/vaidhya/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(engine *dialogService.Engine, sessions *dialogService.Registry, transcripts *store.Transcript, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := dialogHandler.New(engine, sessions, transcripts, logger)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "orthovaidhya medical assistant",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"service": "orthovaidhya medical assistant",
		})
	})

	return r
}
