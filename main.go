package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"collabeditgo/internal/config"
	"collabeditgo/internal/http/http_server"
	"collabeditgo/internal/ratelimit"
	"collabeditgo/internal/registry"
	"collabeditgo/internal/rooms"
	"collabeditgo/internal/services/collab"
	"collabeditgo/internal/services/execute"
	"collabeditgo/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Shared room coordinator state
	connRegistry := registry.New()
	directory := rooms.NewDirectory()

	// 4. Per-address connection admission
	limiter := ratelimit.NewLimiter(
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
		int(cfg.RateLimitMaxAttempts),
	)
	defer limiter.Stop()

	// 5. Services
	collabSvc := collab.NewCollabService(directory, connRegistry)
	executeSvc := execute.NewExecuteService(
		cfg.ExecInterpreter,
		time.Duration(cfg.ExecTimeoutSeconds)*time.Second,
		cfg.ExecTempDir,
		cfg.ExecFileSuffix,
	)

	// 6. Initialize the WS server
	wsSrv := ws.NewWsServer(collabSvc, limiter, cfg.WsReadLimitBytes)

	// 7. HTTP + WS server
	httpServer := http_server.NewHttpServer(cfg.HttpServerPort, wsSrv, directory, executeSvc)

	go func() {
		<-ctx.Done()
		Log.Info("Shutting down")
		if err := httpServer.Dispose(); err != nil {
			Log.Error("Shutdown failed", zap.Error(err))
		}
	}()

	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
