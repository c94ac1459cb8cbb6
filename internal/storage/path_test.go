package storage

import "testing"

func TestBuildDataFilePath(t *testing.T) {
	got, err := BuildDataFilePath("customers", 3)
	if err != nil {
		t.Fatalf("BuildDataFilePath() error = %v", err)
	}
	if got != "customers/part-00003.parquet" {
		t.Fatalf("path = %q", got)
	}
}

func TestBuildDataFilePathRejectsBadInput(t *testing.T) {
	if _, err := BuildDataFilePath("../etc", 0); err == nil {
		t.Fatal("expected invalid table name error")
	}
	if _, err := BuildDataFilePath("customers", -1); err == nil {
		t.Fatal("expected negative sequence error")
	}
	if _, err := BuildDataFilePath("", 0); err == nil {
		t.Fatal("expected empty table name error")
	}
}

func TestBuildDeltaLogPrefix(t *testing.T) {
	got, err := BuildDeltaLogPrefix("sales_transactions")
	if err != nil {
		t.Fatalf("BuildDeltaLogPrefix() error = %v", err)
	}
	if got != "sales_transactions/_delta_log" {
		t.Fatalf("prefix = %q", got)
	}
	if _, err := BuildDeltaLogPrefix("a/b"); err == nil {
		t.Fatal("expected invalid table name error")
	}
}
