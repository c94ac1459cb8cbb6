//go:build integration

package s3

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lakegate/lakegate/internal/storage"
)

func TestStoreRoundTripAgainstMinIO(t *testing.T) {
	endpoint := envOr("LAKEGATE_TEST_S3_ENDPOINT", "")
	if endpoint == "" {
		t.Skip("LAKEGATE_TEST_S3_ENDPOINT is not set")
	}

	cfg := Config{
		Endpoint:         endpoint,
		Region:           envOr("LAKEGATE_TEST_S3_REGION", "us-east-1"),
		Bucket:           envOr("LAKEGATE_TEST_S3_BUCKET", "lakegate-it"),
		AccessKeyID:      envOr("LAKEGATE_TEST_S3_ACCESS_KEY", "minio"),
		SecretAccessKey:  envOr("LAKEGATE_TEST_S3_SECRET_KEY", "miniostorage"),
		UseSSL:           false,
		Prefix:           "integration-tests",
		AutoCreateBucket: true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	store, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	key := "customers/_delta_log/00000000000000000000.json"
	payload := []byte(`{"commitInfo":{}}`)

	if _, err := store.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), storage.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	stat, err := store.Stat(ctx, key)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if stat.Size != int64(len(payload)) {
		t.Fatalf("Stat().Size = %d, want %d", stat.Size, len(payload))
	}

	entries, err := store.List(ctx, "customers/_delta_log", 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("List() returned no entries for delta log prefix")
	}

	if _, err := store.Stat(ctx, "customers/_delta_log/missing.json"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("Stat() missing object error = %v, want ErrObjectNotFound", err)
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
