package datagen

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/lakegate/lakegate/internal/storage"
)

// Each uploaded table carries a single-commit delta log so the engine's
// delta_scan recognizes the directory as a table. The commit is the minimal
// protocol/metaData/add triple, one JSON action per line.

const deltaCommitFile = "00000000000000000000.json"

type deltaField struct {
	name     string
	sparkTyp string
	nullable bool
}

var deltaSchemas = map[string][]deltaField{
	TableCustomers: {
		{"customer_id", "integer", false},
		{"first_name", "string", true},
		{"last_name", "string", true},
		{"email", "string", true},
		{"phone", "string", true},
		{"address", "string", true},
		{"city", "string", true},
		{"state", "string", true},
		{"zip_code", "string", true},
		{"country", "string", true},
		{"registration_date", "timestamp", true},
		{"is_active", "boolean", true},
		{"loyalty_points", "integer", true},
	},
	TableProducts: {
		{"product_id", "integer", false},
		{"product_name", "string", true},
		{"category", "string", true},
		{"price", "double", true},
		{"cost", "double", true},
		{"stock_quantity", "integer", true},
		{"supplier", "string", true},
		{"rating", "double", true},
		{"reviews_count", "integer", true},
		{"is_available", "boolean", true},
		{"created_date", "timestamp", true},
	},
	TableTransactions: {
		{"transaction_id", "integer", false},
		{"customer_id", "integer", true},
		{"product_id", "integer", true},
		{"quantity", "integer", true},
		{"unit_price", "double", true},
		{"discount_percent", "integer", true},
		{"transaction_date", "timestamp", true},
		{"payment_method", "string", true},
		{"shipping_cost", "double", true},
		{"status", "string", true},
		{"total_amount", "double", true},
	},
	TableWebAnalytics: {
		{"session_id", "string", false},
		{"user_id", "integer", true},
		{"visit_time", "timestamp", true},
		{"page_url", "string", true},
		{"time_on_page", "integer", true},
		{"source", "string", true},
		{"device", "string", true},
		{"browser", "string", true},
		{"country", "string", true},
		{"bounce", "boolean", true},
		{"conversion", "boolean", true},
	},
}

// deltaCommitPath is where the table's first commit lives.
func deltaCommitPath(tableName string) (string, error) {
	prefix, err := storage.BuildDeltaLogPrefix(tableName)
	if err != nil {
		return "", err
	}
	return path.Join(prefix, deltaCommitFile), nil
}

// deltaTableID derives a stable table id from the table name, so repeated
// generator runs produce byte-identical metadata.
func deltaTableID(tableName string) string {
	sum := sha256.Sum256([]byte(tableName))
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

func deltaSchemaString(tableName string) (string, error) {
	fields, ok := deltaSchemas[tableName]
	if !ok {
		return "", fmt.Errorf("no delta schema for table %s", tableName)
	}
	type schemaField struct {
		Name     string         `json:"name"`
		Type     string         `json:"type"`
		Nullable bool           `json:"nullable"`
		Metadata map[string]any `json:"metadata"`
	}
	encoded := make([]schemaField, 0, len(fields))
	for _, field := range fields {
		encoded = append(encoded, schemaField{
			Name:     field.name,
			Type:     field.sparkTyp,
			Nullable: field.nullable,
			Metadata: map[string]any{},
		})
	}
	raw, err := json.Marshal(map[string]any{"type": "struct", "fields": encoded})
	if err != nil {
		return "", fmt.Errorf("encode %s schema: %w", tableName, err)
	}
	return string(raw), nil
}

// encodeDeltaCommit renders the initial commit for one uploaded part:
// protocol, metaData, and a single add action, newline-delimited.
func encodeDeltaCommit(dataset Dataset, partFile string, commitTime time.Time) ([]byte, error) {
	schemaString, err := deltaSchemaString(dataset.Table)
	if err != nil {
		return nil, err
	}
	millis := commitTime.UnixMilli()

	actions := []any{
		map[string]any{
			"protocol": map[string]any{
				"minReaderVersion": 1,
				"minWriterVersion": 2,
			},
		},
		map[string]any{
			"metaData": map[string]any{
				"id":               deltaTableID(dataset.Table),
				"format":           map[string]any{"provider": "parquet", "options": map[string]any{}},
				"schemaString":     schemaString,
				"partitionColumns": []string{},
				"configuration":    map[string]any{},
				"createdTime":      millis,
			},
		},
		map[string]any{
			"add": map[string]any{
				"path":             partFile,
				"partitionValues":  map[string]any{},
				"size":             len(dataset.Data),
				"modificationTime": millis,
				"dataChange":       true,
			},
		},
	}

	buf := bytes.NewBuffer(nil)
	encoder := json.NewEncoder(buf)
	for _, action := range actions {
		if err := encoder.Encode(action); err != nil {
			return nil, fmt.Errorf("encode %s commit action: %w", dataset.Table, err)
		}
	}
	return buf.Bytes(), nil
}
