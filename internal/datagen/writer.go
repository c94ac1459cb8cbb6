package datagen

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/lakegate/lakegate/internal/storage"
)

// Dataset is one encoded table part ready for upload.
type Dataset struct {
	Table       string
	Data        []byte
	RecordCount int
}

func encodeParquet[T any](table string, rows []T) (Dataset, error) {
	if len(rows) == 0 {
		return Dataset{}, fmt.Errorf("no rows to encode for %s", table)
	}
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[T](buf)
	if _, err := writer.Write(rows); err != nil {
		return Dataset{}, fmt.Errorf("write %s parquet rows: %w", table, err)
	}
	if err := writer.Close(); err != nil {
		return Dataset{}, fmt.Errorf("close %s parquet writer: %w", table, err)
	}
	return Dataset{Table: table, Data: buf.Bytes(), RecordCount: len(rows)}, nil
}

// GenerateAll produces every demo table at the requested scale, encoded and
// ready for upload. Generation is deterministic for a given seed.
func GenerateAll(seed int64, scale int) ([]Dataset, error) {
	counts := CountsForScale(scale)
	generator := NewGenerator(seed)

	customers, err := encodeParquet(TableCustomers, generator.Customers(counts.Customers))
	if err != nil {
		return nil, err
	}
	products, err := encodeParquet(TableProducts, generator.Products(counts.Products))
	if err != nil {
		return nil, err
	}
	transactions, err := encodeParquet(TableTransactions,
		generator.Transactions(counts.Transactions, counts.Customers, counts.Products))
	if err != nil {
		return nil, err
	}
	analytics, err := encodeParquet(TableWebAnalytics, generator.Analytics(counts.Analytics))
	if err != nil {
		return nil, err
	}

	return []Dataset{customers, products, transactions, analytics}, nil
}

// Upload writes each dataset as part 0 of its table directory, followed by
// the table's initial delta commit. The commit is what makes the table
// discoverable: registration checks for the _delta_log prefix.
func Upload(ctx context.Context, store storage.ObjectStore, logger *slog.Logger, datasets []Dataset) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	commitTime := time.Now().UTC()
	for _, dataset := range datasets {
		key, err := storage.BuildDataFilePath(dataset.Table, 0)
		if err != nil {
			return err
		}
		info, err := store.Put(ctx, key, bytes.NewReader(dataset.Data), int64(len(dataset.Data)), storage.PutOptions{
			ContentType: "application/vnd.apache.parquet",
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", dataset.Table, err)
		}

		commit, err := encodeDeltaCommit(dataset, path.Base(key), commitTime)
		if err != nil {
			return err
		}
		commitKey, err := deltaCommitPath(dataset.Table)
		if err != nil {
			return err
		}
		if _, err := store.Put(ctx, commitKey, bytes.NewReader(commit), int64(len(commit)), storage.PutOptions{
			ContentType: "application/json",
		}); err != nil {
			return fmt.Errorf("upload %s delta commit: %w", dataset.Table, err)
		}

		logger.Info("uploaded dataset",
			slog.String("table", dataset.Table),
			slog.String("key", info.Key),
			slog.String("commit", commitKey),
			slog.Int("records", dataset.RecordCount),
			slog.Int64("bytes", info.Size),
		)
	}
	return nil
}
