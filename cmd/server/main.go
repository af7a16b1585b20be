package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"gerard.app/bot/common/id"
	"gerard.app/bot/common/llm"
	"gerard.app/bot/common/logger"
	"gerard.app/bot/common/otel"
	"gerard.app/bot/core/config"
	"gerard.app/bot/internal/brain"
	"gerard.app/bot/internal/command"
	"gerard.app/bot/internal/discord"
	"gerard.app/bot/internal/http/handler"
	"gerard.app/bot/internal/http/middleware"
	httprouter "gerard.app/bot/internal/http/router"
	"gerard.app/bot/internal/mapper"
	"gerard.app/bot/internal/store"
	"gerard.app/bot/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "gerard starting", "env", cfg.Env, "service", cfg.OTel.ServiceName, "instance", cfg.OTel.InstanceID)
	if err := id.Init(id.NodeID(cfg.OTel.InstanceID)); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	slots, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open memory store", "error", err, "backend", cfg.Memory.Backend)
		os.Exit(1)
	}
	defer closeStore()

	session, err := discord.NewSession(cfg.Discord.BotToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create discord session", "error", err)
		os.Exit(1)
	}

	llmClient, err := llm.New(llm.Config{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}

	fetcher := discord.NewFetcher(session, cfg.Discord.HistoryLimit)
	publisher := discord.NewPublisher(session)
	orchestratorCfg := brain.OrchestratorConfig{MaxTokens: cfg.LLM.MaxTokens}
	if cfg.LLM.Temperature >= 0 {
		orchestratorCfg.Temperature = llm.Temp(cfg.LLM.Temperature)
	}
	orchestrator := brain.NewOrchestrator(
		orchestratorCfg,
		fetcher,
		slots,
		llmClient,
		publisher,
		brain.NewPromptComposer(cfg.Location(), fetcher.Limit()),
	)

	registry := command.NewRegistry(
		command.NewPing(),
		command.NewAsk(orchestrator, publisher),
	)

	dispatcher := worker.NewDispatcher()

	routerCfg := httprouter.RouterConfig{AdminAPIKey: cfg.AdminAPIKey}
	if cfg.Discord.SignatureCheckEnabled() {
		routerCfg.PublicKey, err = middleware.ParsePublicKey(cfg.Discord.PublicKey)
		if err != nil {
			slog.ErrorContext(ctx, "invalid DISCORD_PUBLIC_KEY", "error", err)
			os.Exit(1)
		}
	} else {
		slog.WarnContext(ctx, "DISCORD_PUBLIC_KEY not set, interaction signatures are not verified")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, httprouter.Handlers{
		Interactions: handler.NewInteractionHandler(registry, mapper.NewInteractionMapper(), dispatcher),
		Files:        handler.NewFilesHandler(slots),
	}, routerCfg)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	// Pending answers still get their edit; Discord keeps the token valid for 15 minutes.
	drainCtx, cancelDrain := context.WithTimeout(ctx, cfg.Dispatch.DrainTimeout)
	defer cancelDrain()
	if err := dispatcher.Stop(drainCtx); err != nil {
		slog.ErrorContext(drainCtx, "dispatcher drain incomplete", "error", err, "busy_groups", dispatcher.Busy())
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, handlers httprouter.Handlers, routerCfg httprouter.RouterConfig) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, handlers, routerCfg)

	return router
}

const banner = `
 ██████╗ ███████╗██████╗  █████╗ ██████╗ ██████╗
██╔════╝ ██╔════╝██╔══██╗██╔══██╗██╔══██╗██╔══██╗
██║  ███╗█████╗  ██████╔╝███████║██████╔╝██║  ██║
██║   ██║██╔══╝  ██╔══██╗██╔══██║██╔══██╗██║  ██║
╚██████╔╝███████╗██║  ██║██║  ██║██║  ██║██████╔╝
 ╚═════╝ ╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`
