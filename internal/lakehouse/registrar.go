// Package lakehouse establishes table visibility before the gatekeeper
// serves its first request: it bootstraps the engine's remote-storage
// access and registers each configured delta table as a plain view, so
// callers write SELECT * FROM customers instead of a delta_scan call.
package lakehouse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lakegate/lakegate/internal/storage"
)

type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Prefix          string
}

// ExecEngine is the slice of the engine the registrar needs: bootstrap and
// registration statements, nothing from the query path.
type ExecEngine interface {
	Exec(ctx context.Context, sqlText string) error
}

// Registrar wires configured tables into the engine. Registration happens
// once at startup; at request time the registrar is not consulted.
type Registrar struct {
	cfg    Config
	store  storage.ObjectStore
	logger *slog.Logger
}

func NewRegistrar(cfg Config, store storage.ObjectStore, logger *slog.Logger) (*Registrar, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("lakehouse bucket is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registrar{cfg: cfg, store: store, logger: logger}, nil
}

// TablePath builds the s3 URL the engine's delta scanner reads from.
func (r *Registrar) TablePath(tableName string) (string, error) {
	if err := storage.ValidateTableName(tableName); err != nil {
		return "", err
	}
	parts := []string{"s3://" + r.cfg.Bucket}
	if prefix := strings.Trim(r.cfg.Prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, tableName)
	return strings.Join(parts, "/"), nil
}

// Bootstrap loads the engine extensions and credentials needed to reach the
// lakehouse. Must run before Register.
func (r *Registrar) Bootstrap(ctx context.Context, engine ExecEngine) error {
	statements := []string{
		"INSTALL httpfs",
		"LOAD httpfs",
		"INSTALL delta",
		"LOAD delta",
		r.secretStatement(),
	}
	for _, statement := range statements {
		if err := engine.Exec(ctx, statement); err != nil {
			return fmt.Errorf("bootstrap lakehouse access: %w", err)
		}
	}
	return nil
}

// Register creates one view per table. A table whose delta log cannot be
// found, or whose view statement fails, is logged and skipped so one broken
// table does not take down the rest. Returns the tables actually registered.
func (r *Registrar) Register(ctx context.Context, engine ExecEngine, tables []string) ([]string, error) {
	if len(tables) == 0 {
		r.logger.Warn("no lakehouse tables configured")
		return nil, nil
	}

	registered := make([]string, 0, len(tables))
	for _, tableName := range tables {
		if err := r.verifyTable(ctx, tableName); err != nil {
			r.logger.Error("skipping table, delta log not found",
				slog.String("table", tableName), slog.Any("error", err))
			continue
		}
		statement, err := r.registerStatement(tableName)
		if err != nil {
			r.logger.Error("skipping table, bad name",
				slog.String("table", tableName), slog.Any("error", err))
			continue
		}
		if err := engine.Exec(ctx, statement); err != nil {
			r.logger.Error("failed to register table",
				slog.String("table", tableName), slog.Any("error", err))
			continue
		}
		r.logger.Info("registered table", slog.String("table", tableName))
		registered = append(registered, tableName)
	}
	return registered, nil
}

// verifyTable confirms the table directory holds a delta transaction log.
// Skipped when no object store is wired (tests, pre-provisioned engines).
func (r *Registrar) verifyTable(ctx context.Context, tableName string) error {
	if r.store == nil {
		return nil
	}
	prefix, err := storage.BuildDeltaLogPrefix(tableName)
	if err != nil {
		return err
	}
	entries, err := r.store.List(ctx, prefix, 1)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no delta log entries under %q", prefix)
	}
	return nil
}

func (r *Registrar) registerStatement(tableName string) (string, error) {
	tablePath, err := r.TablePath(tableName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"CREATE OR REPLACE VIEW %s AS SELECT * FROM delta_scan(%s)",
		quoteIdent(tableName), quoteLiteral(tablePath),
	), nil
}

func (r *Registrar) secretStatement() string {
	useSSL := "false"
	if r.cfg.UseSSL {
		useSSL = "true"
	}
	return fmt.Sprintf(`CREATE OR REPLACE SECRET lakehouse_secret (
    TYPE S3,
    KEY_ID %s,
    SECRET %s,
    REGION %s,
    ENDPOINT %s,
    USE_SSL %s,
    URL_STYLE 'path'
)`,
		quoteLiteral(r.cfg.AccessKeyID),
		quoteLiteral(r.cfg.SecretAccessKey),
		quoteLiteral(r.cfg.Region),
		quoteLiteral(r.cfg.Endpoint),
		useSSL,
	)
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
