package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Engine        EngineConfig
	Lakehouse     LakehouseConfig
	Query         QueryConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type EngineConfig struct {
	Path        string
	ReadOnly    bool
	Threads     int
	MemoryLimit string
}

type LakehouseConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Prefix          string
	Tables          string
}

// Tables parses the comma-separated table list into names.
func (c LakehouseConfig) TableList() []string {
	if strings.TrimSpace(c.Tables) == "" {
		return nil
	}
	parts := strings.Split(c.Tables, ",")
	tables := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tables = append(tables, part)
	}
	return tables
}

type QueryConfig struct {
	DefaultMaxRows int
	Timeout        time.Duration
	Workers        int
}

type AuditConfig struct {
	// DSN enables the postgres query-history recorder; empty disables it.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("LAKEGATE_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid LAKEGATE_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "LAKEGATE_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "LAKEGATE_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "LAKEGATE_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "LAKEGATE_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_ENGINE_PATH", &cfg.Engine.Path); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEGATE_ENGINE_READ_ONLY", &cfg.Engine.ReadOnly); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKEGATE_ENGINE_THREADS", &cfg.Engine.Threads); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_ENGINE_MEMORY_LIMIT", &cfg.Engine.MemoryLimit); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_LAKEHOUSE_ENDPOINT", &cfg.Lakehouse.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_LAKEHOUSE_REGION", &cfg.Lakehouse.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_LAKEHOUSE_BUCKET", &cfg.Lakehouse.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_LAKEHOUSE_ACCESS_KEY", &cfg.Lakehouse.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_LAKEHOUSE_SECRET_KEY", &cfg.Lakehouse.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEGATE_LAKEHOUSE_USE_SSL", &cfg.Lakehouse.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_LAKEHOUSE_PREFIX", &cfg.Lakehouse.Prefix); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_LAKEHOUSE_TABLES", &cfg.Lakehouse.Tables); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKEGATE_QUERY_MAX_ROWS", &cfg.Query.DefaultMaxRows); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "LAKEGATE_QUERY_TIMEOUT", &cfg.Query.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKEGATE_QUERY_WORKERS", &cfg.Query.Workers); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_AUDIT_DSN", &cfg.Audit.DSN); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKEGATE_AUDIT_MAX_OPEN_CONNS", &cfg.Audit.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKEGATE_AUDIT_MAX_IDLE_CONNS", &cfg.Audit.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "LAKEGATE_AUDIT_CONN_MAX_IDLE_TIME", &cfg.Audit.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "LAKEGATE_AUDIT_CONN_MAX_LIFETIME", &cfg.Audit.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEGATE_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "LAKEGATE_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEGATE_AUTH_REQUIRED", &cfg.Auth.Required); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEGATE_AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Query.DefaultMaxRows <= 0 {
		return Config{}, fmt.Errorf("LAKEGATE_QUERY_MAX_ROWS must be positive")
	}
	if cfg.Query.Timeout <= 0 {
		return Config{}, fmt.Errorf("LAKEGATE_QUERY_TIMEOUT must be positive")
	}
	if cfg.Query.Workers <= 0 {
		return Config{}, fmt.Errorf("LAKEGATE_QUERY_WORKERS must be positive")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "lakegate-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Engine: EngineConfig{
			Path:        "",
			ReadOnly:    true,
			Threads:     4,
			MemoryLimit: "1GB",
		},
		Lakehouse: LakehouseConfig{
			Endpoint:        "localhost:9000",
			Region:          "us-east-1",
			Bucket:          "lakehouse",
			AccessKeyID:     "minio",
			SecretAccessKey: "miniostorage",
			UseSSL:          false,
			Prefix:          "tables",
			Tables:          "",
		},
		Query: QueryConfig{
			DefaultMaxRows: 10000,
			Timeout:        30 * time.Second,
			Workers:        8,
		},
		Audit: AuditConfig{
			DSN:             "",
			MaxOpenConns:    5,
			MaxIdleConns:    5,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
		Auth: AuthConfig{
			Required:   false,
			StaticKeys: "",
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
		cfg.Auth.Required = false
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Auth.Required = true
		cfg.Lakehouse.UseSSL = true
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
