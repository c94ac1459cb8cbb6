package storage

import (
	"fmt"
	"path"
	"regexp"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// ValidateTableName guards every key built from a configured table name so a
// hostile name cannot escape the table prefix.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %q", name)
	}
	return nil
}

// BuildDataFilePath places one generated parquet part inside a table's
// directory layout.
func BuildDataFilePath(tableName string, sequence int) (string, error) {
	if err := ValidateTableName(tableName); err != nil {
		return "", err
	}
	if sequence < 0 {
		return "", fmt.Errorf("sequence must be >= 0")
	}
	return path.Join(tableName, fmt.Sprintf("part-%05d.parquet", sequence)), nil
}

// BuildDeltaLogPrefix is where a delta-format table keeps its transaction
// log; its presence is how a table is recognized as queryable.
func BuildDeltaLogPrefix(tableName string) (string, error) {
	if err := ValidateTableName(tableName); err != nil {
		return "", err
	}
	return path.Join(tableName, "_delta_log"), nil
}
