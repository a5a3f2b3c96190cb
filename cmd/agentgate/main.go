// Command agentgate runs the agent streaming gateway.
//
// Configuration is via environment variables:
//
//	AGENTGATE_PORT          - Server port (default: 8000)
//	AGENTGATE_LOG_LEVEL     - debug, info, warn, or error (default: info)
//	AGENTGATE_MODEL         - Model override (optional, uses the default model)
//	AGENTGATE_SYSTEM_PROMPT - System prompt for executions (optional)
//	AGENTGATE_MAX_STEPS     - Max model turns per execution (default: 25)
//	AGENTGATE_TIMEOUT       - Per-execution time limit (default: none)
//	AGENTGATE_SERVERS       - Auxiliary server config path (default: servers.yaml)
//	AGENTGATE_WORKSPACE     - Base path for the built-in file tools (default: .)
//	ANTHROPIC_API_KEY       - Anthropic API key (required)
//
// Usage:
//
//	ANTHROPIC_API_KEY=... go run ./cmd/agentgate serve
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"agentgate/descriptor"
	"agentgate/engine/anthropic"
	"agentgate/gateway"
	"agentgate/internal/metrics"
	"agentgate/relay"
	"agentgate/tool"
)

func main() {
	root := &cobra.Command{
		Use:           "agentgate",
		Short:         "Streaming gateway between callers and an agent execution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the gateway HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})

	if err := root.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	registry := tool.NewDefaultRegistry(cfg.Workspace)
	loader := descriptor.NewLoader(cfg.ServersPath, descriptor.WithLogger(logger))

	engOpts := []anthropic.Option{
		anthropic.WithRegistry(registry),
		anthropic.WithLogger(logger),
		anthropic.WithMaxSteps(cfg.MaxSteps),
	}
	if cfg.Model != "" {
		engOpts = append(engOpts, anthropic.WithModel(anthropic.ChatModel(cfg.Model)))
	}
	if cfg.SystemPrompt != "" {
		engOpts = append(engOpts, anthropic.WithSystemPrompt(cfg.SystemPrompt))
	}
	if cfg.Timeout > 0 {
		engOpts = append(engOpts, anthropic.WithTimeout(cfg.Timeout))
	}
	eng := anthropic.New(cfg.AnthropicKey, engOpts...)

	reg := prometheus.NewRegistry()
	handler := gateway.NewHandler(
		relay.New(eng, relay.WithLogger(logger)),
		loader,
		registry.Names(),
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics.New(reg)),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gateway.NewMux(handler, reg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("gateway listening",
		"port", cfg.Port,
		"stream", "POST /agent/stream",
		"health", "GET /health",
		"metrics", "GET /metrics",
	)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
