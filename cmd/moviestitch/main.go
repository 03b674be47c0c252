package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/moviestitch/moviestitch-client/internal/api"
	"github.com/moviestitch/moviestitch-client/internal/catalog"
	"github.com/moviestitch/moviestitch-client/internal/cloud"
	"github.com/moviestitch/moviestitch-client/internal/config"
	"github.com/moviestitch/moviestitch-client/internal/db"
	"github.com/moviestitch/moviestitch-client/internal/generation"
	"github.com/moviestitch/moviestitch-client/internal/logging"
	"github.com/moviestitch/moviestitch-client/internal/movies"
	"github.com/moviestitch/moviestitch-client/internal/observability"
	"github.com/moviestitch/moviestitch-client/internal/selection"
	"github.com/moviestitch/moviestitch-client/internal/session"
	"github.com/moviestitch/moviestitch-client/internal/store"
	"github.com/moviestitch/moviestitch-client/internal/ui"
	"github.com/moviestitch/moviestitch-client/internal/upload"
)

const (
	serviceName     = "moviestitch-client"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	envErr := godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	if envErr != nil {
		logger.Debug("no .env file found, using process environment")
	}
	logger.Info("starting moviestitch client", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.OTLPEndpoint(), serviceName, config.Version, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Error("failed to shutdown tracer", "error", err)
		}
	}()

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	kv := session.NewSQLiteKV(database.Conn())

	controlToken, err := ensureControlToken(kv)
	if err != nil {
		return fmt.Errorf("failed to ensure control token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════════════╗")
	fmt.Printf("║  MOVIESTITCH CLIENT v%-52s ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Control API:   http://127.0.0.1:%-40d ║\n", cfg.Port())
	fmt.Printf("║  Control Token: %-57s ║\n", controlToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════════════════════╝")
	fmt.Println()

	placeholders, err := catalog.DefaultPlaceholders().WithOverrides(cfg.PlaceholderOverrides())
	if err != nil {
		return fmt.Errorf("invalid placeholder overrides: %w", err)
	}
	transformer := catalog.NewTransformer(cfg.MediaBaseURL(), placeholders)

	st := store.New(logger)

	// Auth endpoints take no bearer token; the session then supplies the
	// token for everything else.
	authClient := cloud.NewHTTPClient(cfg.APIBaseURL(), nil, cfg.HTTPTimeout(), logger)
	sessions := session.NewService(authClient.Auth(), kv, st, logger)
	client := cloud.NewHTTPClient(cfg.APIBaseURL(), sessions, cfg.HTTPTimeout(), logger)

	loader := movies.NewLoader(client.Catalog(), transformer, st, logger)
	controller := generation.NewController(st, client.Stitch(), selection.DefaultSource, logger)
	uploads := upload.NewPipeline(st, client.Submissions(), transformer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sessions.Restore(ctx); err != nil {
		logger.Warn("failed to restore session", "error", err)
	}

	go func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, startupTimeout)
		defer refreshCancel()
		if _, err := loader.Refresh(refreshCtx); err != nil {
			logger.Warn("initial movie load failed", "error", err)
		}
	}()

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Version:    config.Version,
		Store:      st,
		Movies:     loader,
		Generation: controller,
		Uploads:    uploads,
		Session:    sessions,
		KV:         kv,
		Random:     selection.DefaultSource,
		Logger:     logger,
		StartTime:  startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quit := newQuitSignal()

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit.Fire()
		case <-quit.Done():
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Store:  st,
			Movies: loader,
			Logger: logger,
			OnQuit: quit.Fire,
		})
		go tray.Run()
	}

	<-quit.Done()

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// quitSignal closes its channel once, however many sources ask to quit.
type quitSignal struct {
	once sync.Once
	ch   chan struct{}
}

func newQuitSignal() *quitSignal {
	return &quitSignal{ch: make(chan struct{})}
}

func (q *quitSignal) Fire() {
	q.once.Do(func() { close(q.ch) })
}

func (q *quitSignal) Done() <-chan struct{} {
	return q.ch
}

// ensureControlToken returns the bearer token local UIs use for the control
// API, generating one on first run.
func ensureControlToken(kv session.KV) (string, error) {
	ctx := context.Background()

	existing, err := kv.Get(ctx, session.KeyControlToken)
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := kv.Set(ctx, session.KeyControlToken, token); err != nil {
		return "", err
	}

	return token, nil
}
