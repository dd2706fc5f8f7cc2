package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/hospintel/hospintel_backend/pkg/constants"
)

func ReadConfig(configPath string) (*Config, error) {
	// BindStruct lets every struct key be overridden from the env, not only
	// the ones with a default below.
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	setDefaults(v)

	// Allow env vars to override config values.
	// e.g. HOSPINTEL_SUBMISSION_ENDPOINT overrides submission.endpoint
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; defaults plus env are enough to run.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors.enabled", false)
	v.SetDefault("server.cors.allow_origins", []string{"*"})
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.requests_per_window", 20)
	v.SetDefault("server.rate_limit.window_seconds", 30)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.max_records_per_store", 0)
	v.SetDefault("storage.sqlite.path", "data/hospintel.db")
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.dbname", "hospintel")
	v.SetDefault("storage.postgres.sslmode", "disable")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.name", constants.ServiceName)

	v.SetDefault("submission.endpoint", constants.PlaceholderEndpoint)
	v.SetDefault("submission.simulated_latency_ms", 800)
	v.SetDefault("submission.timeout_seconds", 10)
	v.SetDefault("submission.notify_to", []string{})
	v.SetDefault("submission.replay_ttl_seconds", 86400)

	v.SetDefault("admin.passphrase_digest", "")
	v.SetDefault("admin.session_ttl_minutes", 0)
	v.SetDefault("admin.session_backend", "memory")
	v.SetDefault("admin.token_key", "")
	v.SetDefault("admin.stores", []string{constants.StoreLeads, constants.StoreInquiries})

	v.SetDefault("sms.enabled", false)
	v.SetDefault("sms.region", "NG")
	v.SetDefault("sms.notify_to", []string{})

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.from", "")
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout_seconds", 30)

	v.SetDefault("archive.encryption_key", "")
	v.SetDefault("archive.s3.region", "us-east-1")
	v.SetDefault("archive.s3.prefix", "exports/")
	v.SetDefault("archive.s3.use_path_style", true)
	v.SetDefault("archive.s3.presign_ttl_seconds", 900)

	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.service_name", constants.ServiceName)
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("observability.tracing.sampling_rate", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output.stdout", true)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return errors.New("storage.sqlite.path is required for the sqlite driver")
		}
	case "postgres", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Storage.MaxRecordsPerStore < 0 {
		return errors.New("storage.max_records_per_store must not be negative")
	}

	if d := strings.TrimSpace(c.Admin.PassphraseDigest); d != "" {
		if b, err := hex.DecodeString(d); err != nil || len(b) != 32 {
			return errors.New("admin.passphrase_digest must be a 64-character hex SHA-256 digest")
		}
	}

	if k := strings.TrimSpace(c.Admin.TokenKey); k != "" {
		if b, err := hex.DecodeString(k); err != nil || len(b) != 32 {
			return errors.New("admin.token_key must be 64 hex characters")
		}
	}

	if c.SMS.Enabled {
		if c.SMS.SMSIR.APIKey == "" || c.SMS.SMSIR.TemplateID == "" {
			return errors.New("sms.smsir.api_key and sms.smsir.template_id are required when sms is enabled")
		}
	}

	if c.Nats.Enabled && strings.TrimSpace(c.Nats.URL) == "" {
		return errors.New("nats.url is required when nats is enabled")
	}

	if k := strings.TrimSpace(c.Archive.EncryptionKey); k != "" {
		if b, err := hex.DecodeString(k); err != nil || len(b) != 32 {
			return errors.New("archive.encryption_key must be 64 hex characters")
		}
	}

	switch c.Admin.SessionBackend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for redis admin sessions")
		}
	default:
		return fmt.Errorf("unknown admin.session_backend %q", c.Admin.SessionBackend)
	}

	return nil
}

// IsProduction reports whether the server runs with production hardening.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
