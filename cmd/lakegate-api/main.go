package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lakegate/lakegate/internal/api"
	"github.com/lakegate/lakegate/internal/audit"
	auditpostgres "github.com/lakegate/lakegate/internal/audit/postgres"
	"github.com/lakegate/lakegate/internal/auth"
	"github.com/lakegate/lakegate/internal/config"
	"github.com/lakegate/lakegate/internal/executor"
	"github.com/lakegate/lakegate/internal/lakehouse"
	"github.com/lakegate/lakegate/internal/observability"
	duckdbengine "github.com/lakegate/lakegate/internal/query/duckdb"
	"github.com/lakegate/lakegate/internal/storage"
	s3store "github.com/lakegate/lakegate/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("lakegate-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	startupCtx := context.Background()

	var auditRecorder audit.Recorder = audit.NopRecorder{}
	readinessChecks := []api.ReadinessCheck{}
	if cfg.Audit.DSN != "" {
		auditDB, err := auditpostgres.Open(startupCtx, auditpostgres.DBConfig{
			DSN:             cfg.Audit.DSN,
			MaxOpenConns:    cfg.Audit.MaxOpenConns,
			MaxIdleConns:    cfg.Audit.MaxIdleConns,
			ConnMaxIdleTime: cfg.Audit.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Audit.ConnMaxLifetime,
		})
		if err != nil {
			logger.Error("failed to open audit db", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = auditDB.Close() }()

		recorder := auditpostgres.NewRecorder(auditDB)
		if err := recorder.EnsureSchema(startupCtx); err != nil {
			logger.Error("failed to prepare audit schema", slog.Any("error", err))
			os.Exit(1)
		}
		auditRecorder = recorder
		readinessChecks = append(readinessChecks, recorder.HealthCheck)
	}

	var objectStore storage.ObjectStore
	if cfg.Lakehouse.Endpoint != "" {
		store, err := s3store.New(startupCtx, s3store.Config{
			Endpoint:        cfg.Lakehouse.Endpoint,
			Region:          cfg.Lakehouse.Region,
			Bucket:          cfg.Lakehouse.Bucket,
			AccessKeyID:     cfg.Lakehouse.AccessKeyID,
			SecretAccessKey: cfg.Lakehouse.SecretAccessKey,
			UseSSL:          cfg.Lakehouse.UseSSL,
			Prefix:          cfg.Lakehouse.Prefix,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		objectStore = store
	}

	engine, err := duckdbengine.Open(startupCtx, duckdbengine.Config{
		Path:        cfg.Engine.Path,
		ReadOnly:    cfg.Engine.ReadOnly,
		Threads:     cfg.Engine.Threads,
		MemoryLimit: cfg.Engine.MemoryLimit,
	})
	if err != nil {
		logger.Error("failed to open query engine", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()
	readinessChecks = append(readinessChecks, api.CheckEngine(engine))

	registrar, err := lakehouse.NewRegistrar(lakehouse.Config{
		Endpoint:        cfg.Lakehouse.Endpoint,
		Region:          cfg.Lakehouse.Region,
		Bucket:          cfg.Lakehouse.Bucket,
		AccessKeyID:     cfg.Lakehouse.AccessKeyID,
		SecretAccessKey: cfg.Lakehouse.SecretAccessKey,
		UseSSL:          cfg.Lakehouse.UseSSL,
		Prefix:          cfg.Lakehouse.Prefix,
	}, objectStore, logger)
	if err != nil {
		logger.Error("failed to build table registrar", slog.Any("error", err))
		os.Exit(1)
	}
	if err := registrar.Bootstrap(startupCtx, engine); err != nil {
		logger.Error("failed to bootstrap lakehouse access", slog.Any("error", err))
		os.Exit(1)
	}
	registered, err := registrar.Register(startupCtx, engine, cfg.Lakehouse.TableList())
	if err != nil {
		logger.Error("failed to register tables", slog.Any("error", err))
		os.Exit(1)
	}

	queryExecutor := executor.New(engine, executor.Config{
		DefaultMaxRows: cfg.Query.DefaultMaxRows,
		Timeout:        cfg.Query.Timeout,
		Workers:        cfg.Query.Workers,
	}, logger)

	deps := api.Dependencies{
		Logger:            logger,
		EngineCheck:       api.CheckEngine(engine),
		Executor:          queryExecutor,
		Audit:             auditRecorder,
		RegisteredTables:  registered,
		Readiness:         api.CombineReadinessChecks(readinessChecks...),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.Int("tables", len(registered)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
