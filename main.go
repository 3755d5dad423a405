package main

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/storelens/storelens-engine/pkg/config"
	"github.com/storelens/storelens-engine/pkg/database"
	"github.com/storelens/storelens-engine/pkg/handlers"
	"github.com/storelens/storelens-engine/pkg/llm"
	"github.com/storelens/storelens-engine/pkg/logging"
	"github.com/storelens/storelens-engine/pkg/prompts"
	"github.com/storelens/storelens-engine/pkg/services"
	"github.com/storelens/storelens-engine/pkg/sqlguard"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model))

	ctx := context.Background()

	db, err := database.NewReadOnlyPool(ctx, &database.Config{
		URL:                cfg.Database.ConnectionString(),
		MinConnections:     cfg.Database.MinConnections,
		MaxConnections:     cfg.Database.MaxConnections,
		StatementTimeoutMs: cfg.Database.StatementTimeoutMs,
	})
	if err != nil {
		logger.Fatal("failed to connect to analytics database", zap.Error(err))
	}
	defer db.Close()

	completions, err := llm.NewFromConfig(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("failed to create completion client", zap.Error(err))
	}

	validator := sqlguard.New(sqlguard.Options{
		AllowedTables:     prompts.AllowedTables,
		TenantColumn:      "store_id",
		TenantPlaceholder: 1,
		DefaultLimit:      cfg.Insights.DefaultRowLimit,
		MaxLimit:          cfg.Insights.MaxRowLimit,
	})

	contexts := services.NewStoreContextProvider(db.Pool, logger)
	executor := services.NewQueryExecutor(db.Pool, cfg.Insights.MaxRows, logger)
	insights := services.NewInsightService(contexts, completions, validator, executor, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewInsightsHandler(insights, logger).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting storelens-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
