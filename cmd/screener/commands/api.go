package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/asx-screener/internal/api"
	"github.com/wonny/asx-screener/internal/api/handlers"
	"github.com/wonny/asx-screener/internal/api/session"
	"github.com/wonny/asx-screener/internal/scheduler"
	"github.com/wonny/asx-screener/internal/scheduler/jobs"
	"github.com/wonny/asx-screener/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST + websocket API 서버를 시작합니다.

Endpoints:
  GET    /health                   - Health check
  GET    /api/columns              - Column registry
  GET    /api/presets              - Presets
  GET    /api/snapshot/summary     - Latest snapshot summary
  GET    /api/screen               - One-shot screen (query parameters)
  GET    /api/screen.html          - One-shot screen as HTML
  POST   /api/sessions             - Start an interactive session
  POST   /api/sessions/{id}/actions - Apply an action
  DELETE /api/sessions/{id}        - End a session
  GET    /api/sessions/{id}/ws     - Websocket: action in, view out

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ASX Screener API Server ===")

	ctx := context.Background()

	// 1. Config, logger, backends
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":     a.cfg.Port,
		"env":      a.cfg.Env,
		"database": a.repo != nil,
		"redis":    a.redis.Enabled(),
	}).Info("Initializing API server")

	// 2. Presets
	presetList, err := a.presets()
	if err != nil {
		return err
	}

	// 3. Handlers
	source := a.loader()
	sessions := session.NewStore(a.cfg.Screener.SessionTTL)

	var limiter *redis.RateLimiter
	if a.redis.Enabled() {
		limiter = redis.NewRateLimiter(a.redis, keyPrefix)
	}

	screenHandler := handlers.NewScreenHandler(source, presetList, a.cfg.Screener.DefaultPageSize, a.log)
	sessionHandler := handlers.NewSessionHandler(source, sessions, limiter, presetList, a.cfg.Screener.DefaultPageSize, a.log)

	// 4. Session expiry
	sched := scheduler.New(a.log, scheduler.WithRetry(0, 0))
	if err := sched.AddJob(jobs.NewSessionCleanupJob(sessionHandler, a.log)); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 5. Router + server
	router := api.NewRouter(screenHandler, sessionHandler, a.log)
	server := api.New(a.cfg, a.log, router, sessionHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
