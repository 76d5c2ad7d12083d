package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/orthovaidhya/vaidhya/backend/internal/config"
	"github.com/orthovaidhya/vaidhya/backend/internal/handler"
	"github.com/orthovaidhya/vaidhya/backend/internal/logging"
	"github.com/orthovaidhya/vaidhya/backend/internal/service/dialog"
	"github.com/orthovaidhya/vaidhya/backend/internal/service/oracle"
	"github.com/orthovaidhya/vaidhya/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	transcripts, err := store.Open(cfg.DB)
	if err != nil {
		logger.Fatal("failed to open transcript store", zap.Error(err))
	}
	logger.Info("transcript store ready", zap.String("backend", string(cfg.DB.Backend)))

	// The oracle is optional: without model credentials every
	// classification runs its offline fallback.
	var classifier oracle.Oracle
	if cfg.AI.Enabled() {
		svc, err := oracle.NewService(ctx, cfg.AI)
		if err != nil {
			logger.Warn("failed to initialize classifier, continuing with fallbacks", zap.Error(err))
		} else {
			classifier = svc
			logger.Info("classifier service initialized", zap.String("model", cfg.AI.Model))
		}
	} else {
		logger.Info("model credentials not configured, running with offline fallbacks")
	}

	engine, err := dialog.NewEngine(classifier, cfg.Dialog, logger)
	if err != nil {
		logger.Fatal("failed to initialize dialogue engine", zap.Error(err))
	}

	sessions := dialog.NewRegistry(cfg.Dialog.SessionTTL)
	sessions.StartEvictor(ctx)

	router := handler.NewRouter(engine, sessions, transcripts, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("medical assistant backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
