// Package config loads runtime settings from the environment, an optional
// YAML file, and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dukerupert/ulpack/internal/backup"
)

const envPrefix = "ULPACK"

const (
	keyAddr             = "addr"
	keyDBPath           = "db_path"
	keyLogLevel         = "log_level"
	keyLogFormat        = "log_format"
	keyAllowedOrigins   = "allowed_origins"
	keySeedSampleData   = "seed_sample_data"
	keySharedRateLimit  = "shared_rate_limit"
	keySharedRateWindow = "shared_rate_window"
	keyBackupDir        = "backup_dir"
	keyBackupPassphrase = "backup_passphrase"
	keyS3Endpoint       = "backup_s3_endpoint"
	keyS3Bucket         = "backup_s3_bucket"
	keyS3Region         = "backup_s3_region"
	keyS3AccessKey      = "backup_s3_access_key"
	keyS3SecretKey      = "backup_s3_secret_key"
)

// DefaultAllowedOrigins are the local dev servers of the SPA front end.
var DefaultAllowedOrigins = []string{
	"http://127.0.0.1:4173",
	"http://localhost:4173",
	"http://127.0.0.1:5173",
	"http://localhost:5173",
}

type Config struct {
	Addr             string
	DBPath           string
	LogLevel         string
	LogFormat        string
	AllowedOrigins   []string
	SeedSampleData   bool
	SharedRateLimit  int
	SharedRateWindow time.Duration
	BackupDir        string
	BackupPassphrase string
	BackupS3         backup.S3Config
}

// New returns a viper instance with defaults and ULPACK_* environment
// binding. Callers may set a config file on it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyAddr, ":8080")
	v.SetDefault(keyDBPath, "ulpack.db")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyAllowedOrigins, strings.Join(DefaultAllowedOrigins, ","))
	v.SetDefault(keySeedSampleData, false)
	v.SetDefault(keySharedRateLimit, 60)
	v.SetDefault(keySharedRateWindow, time.Minute)
	v.SetDefault(keyBackupDir, "backups")
	v.SetDefault(keyS3Region, "auto")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads the config file if one was set on v, then builds a Config.
// A missing file is an error only when it was named explicitly.
func Load(v *viper.Viper) (Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Addr:             v.GetString(keyAddr),
		DBPath:           strings.TrimSpace(v.GetString(keyDBPath)),
		LogLevel:         v.GetString(keyLogLevel),
		LogFormat:        strings.ToLower(v.GetString(keyLogFormat)),
		AllowedOrigins:   allowedOrigins(v),
		SeedSampleData:   v.GetBool(keySeedSampleData),
		SharedRateLimit:  v.GetInt(keySharedRateLimit),
		SharedRateWindow: v.GetDuration(keySharedRateWindow),
		BackupDir:        v.GetString(keyBackupDir),
		BackupPassphrase: v.GetString(keyBackupPassphrase),
		BackupS3: backup.S3Config{
			Endpoint:  v.GetString(keyS3Endpoint),
			Bucket:    v.GetString(keyS3Bucket),
			Region:    v.GetString(keyS3Region),
			AccessKey: v.GetString(keyS3AccessKey),
			SecretKey: v.GetString(keyS3SecretKey),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// allowedOrigins honors an explicitly empty environment variable, which
// viper would otherwise treat as unset.
func allowedOrigins(v *viper.Viper) []string {
	if raw, ok := os.LookupEnv(envPrefix + "_" + strings.ToUpper(keyAllowedOrigins)); ok {
		return parseOrigins(raw)
	}
	return parseOrigins(v.Get(keyAllowedOrigins))
}

// parseOrigins accepts a comma separated string (environment) or a list
// (YAML). An empty string yields no origins, which disables CORS.
func parseOrigins(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
	}

	origins := []string{}
	for _, p := range parts {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	switch c.LogFormat {
	case "text", "json", "pretty":
	default:
		errs = append(errs, fmt.Errorf("log_format %q must be text, json or pretty", c.LogFormat))
	}
	if c.SharedRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("shared_rate_limit must be positive, got %d", c.SharedRateLimit))
	}
	if c.SharedRateWindow <= 0 {
		errs = append(errs, fmt.Errorf("shared_rate_window must be positive, got %s", c.SharedRateWindow))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
