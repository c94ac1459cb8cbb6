package datagen

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/lakegate/lakegate/internal/storage"
)

func TestCountsForScale(t *testing.T) {
	counts := CountsForScale(2)
	if counts.Customers != 2000 || counts.Products != 1000 || counts.Transactions != 10000 || counts.Analytics != 20000 {
		t.Fatalf("counts = %+v", counts)
	}

	if got := CountsForScale(0); got.Customers != 1000 {
		t.Fatalf("scale 0 should clamp to 1, got %+v", got)
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	first := NewGenerator(42).Customers(10)
	second := NewGenerator(42).Customers(10)

	if len(first) != 10 || len(second) != 10 {
		t.Fatalf("lengths = %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestTransactionsStayWithinReferencedRanges(t *testing.T) {
	rows := NewGenerator(7).Transactions(200, 50, 25)
	for _, row := range rows {
		if row.CustomerID < 1 || row.CustomerID > 50 {
			t.Fatalf("customer_id out of range: %d", row.CustomerID)
		}
		if row.ProductID < 1 || row.ProductID > 25 {
			t.Fatalf("product_id out of range: %d", row.ProductID)
		}
		if row.Quantity < 1 || row.Quantity > 10 {
			t.Fatalf("quantity out of range: %d", row.Quantity)
		}
		if row.TotalAmount < 0 {
			t.Fatalf("negative total: %f", row.TotalAmount)
		}
	}
}

func TestEncodeParquetRoundTrip(t *testing.T) {
	rows := NewGenerator(1).Products(25)
	dataset, err := encodeParquet(TableProducts, rows)
	if err != nil {
		t.Fatalf("encodeParquet() error = %v", err)
	}
	if dataset.RecordCount != 25 || len(dataset.Data) == 0 {
		t.Fatalf("dataset = %+v", dataset)
	}

	decoded, err := parquet.Read[Product](bytes.NewReader(dataset.Data), int64(len(dataset.Data)))
	if err != nil {
		t.Fatalf("parquet.Read() error = %v", err)
	}
	if len(decoded) != 25 {
		t.Fatalf("decoded rows = %d, want 25", len(decoded))
	}
	if decoded[0] != rows[0] {
		t.Fatalf("first row differs: %+v vs %+v", decoded[0], rows[0])
	}
}

func TestGenerateAllProducesEveryTable(t *testing.T) {
	datasets, err := GenerateAll(42, 1)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(datasets) != 4 {
		t.Fatalf("datasets = %d, want 4", len(datasets))
	}
	wantCounts := map[string]int{
		TableCustomers:    1000,
		TableProducts:     500,
		TableTransactions: 5000,
		TableWebAnalytics: 10000,
	}
	for _, dataset := range datasets {
		if want := wantCounts[dataset.Table]; dataset.RecordCount != want {
			t.Fatalf("%s records = %d, want %d", dataset.Table, dataset.RecordCount, want)
		}
	}
}

type fakeStore struct {
	puts map[string][]byte
}

func (f *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ storage.PutOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = data
	return storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeStore) Stat(context.Context, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, storage.ErrObjectNotFound
}

func (f *fakeStore) List(_ context.Context, prefix string, limit int) ([]storage.ObjectInfo, error) {
	infos := []storage.ObjectInfo{}
	for key, data := range f.puts {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		if limit > 0 && len(infos) >= limit {
			break
		}
	}
	return infos, nil
}

func TestUploadWritesPartAndCommitPerTable(t *testing.T) {
	datasets := []Dataset{
		{Table: TableCustomers, Data: []byte("a"), RecordCount: 1},
		{Table: TableProducts, Data: []byte("bb"), RecordCount: 1},
	}
	store := &fakeStore{}
	if err := Upload(context.Background(), store, nil, datasets); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(store.puts) != 4 {
		t.Fatalf("puts = %d, want 4", len(store.puts))
	}
	for _, table := range []string{TableCustomers, TableProducts} {
		if _, ok := store.puts[table+"/part-00000.parquet"]; !ok {
			t.Fatalf("missing part file for %s, keys = %v", table, storeKeys(store))
		}
		if _, ok := store.puts[table+"/_delta_log/00000000000000000000.json"]; !ok {
			t.Fatalf("missing delta commit for %s, keys = %v", table, storeKeys(store))
		}
	}
}

func storeKeys(store *fakeStore) []string {
	keys := make([]string, 0, len(store.puts))
	for key := range store.puts {
		keys = append(keys, key)
	}
	return keys
}
