package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lakegate/lakegate/internal/config"
	"github.com/lakegate/lakegate/internal/datagen"
	"github.com/lakegate/lakegate/internal/observability"
	s3store "github.com/lakegate/lakegate/internal/storage/s3"
)

func main() {
	scale := flag.Int("scale", 1, "dataset scale multiplier (1 = 1K customers, 500 products, 5K transactions, 10K analytics)")
	seed := flag.Int64("seed", 42, "random seed for deterministic generation")
	outDir := flag.String("out", "", "write parquet files to a local directory instead of object storage")
	flag.Parse()

	cfg, err := config.LoadFromEnv("lakegate-datagen")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	datasets, err := datagen.GenerateAll(*seed, *scale)
	if err != nil {
		logger.Error("failed to generate datasets", slog.Any("error", err))
		os.Exit(1)
	}

	if *outDir != "" {
		if err := writeLocal(*outDir, datasets, logger); err != nil {
			logger.Error("failed to write datasets", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	store, err := s3store.New(ctx, s3store.Config{
		Endpoint:         cfg.Lakehouse.Endpoint,
		Region:           cfg.Lakehouse.Region,
		Bucket:           cfg.Lakehouse.Bucket,
		AccessKeyID:      cfg.Lakehouse.AccessKeyID,
		SecretAccessKey:  cfg.Lakehouse.SecretAccessKey,
		UseSSL:           cfg.Lakehouse.UseSSL,
		Prefix:           cfg.Lakehouse.Prefix,
		AutoCreateBucket: true,
	})
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}

	if err := datagen.Upload(ctx, store, logger, datasets); err != nil {
		logger.Error("failed to upload datasets", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("datasets uploaded", slog.Int("tables", len(datasets)))
}

func writeLocal(dir string, datasets []datagen.Dataset, logger *slog.Logger) error {
	for _, dataset := range datasets {
		tableDir := filepath.Join(dir, dataset.Table)
		if err := os.MkdirAll(tableDir, 0o755); err != nil {
			return err
		}
		target := filepath.Join(tableDir, "part-00000.parquet")
		if err := os.WriteFile(target, dataset.Data, 0o644); err != nil {
			return err
		}
		logger.Info("wrote dataset",
			slog.String("table", dataset.Table),
			slog.String("path", target),
			slog.Int("records", dataset.RecordCount),
		)
	}
	return nil
}
