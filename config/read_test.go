package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospintel/hospintel_backend/pkg/constants"
)

func TestReadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, constants.PlaceholderEndpoint, cfg.Submission.Endpoint)
	assert.Equal(t, 800, cfg.Submission.SimulatedLatencyMs)
	assert.Equal(t, []string{constants.StoreLeads, constants.StoreInquiries}, cfg.Admin.Stores)
	assert.Equal(t, "memory", cfg.Admin.SessionBackend)
}

func TestReadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
storage:
  driver: memory
  max_records_per_store: 3
submission:
  endpoint: https://collector.example.org/leads
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("HOSPINTEL_SERVER_PORT", "9191")

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Storage.MaxRecordsPerStore)
	assert.Equal(t, "https://collector.example.org/leads", cfg.Submission.Endpoint)
}

func TestReadConfig_EnvReachesKeysWithoutDefaults(t *testing.T) {
	t.Setenv("HOSPINTEL_SMS_ENABLED", "true")
	t.Setenv("HOSPINTEL_SMS_SMSIR_API_KEY", "smsir-key")
	t.Setenv("HOSPINTEL_SMS_SMSIR_TEMPLATE_ID", "100200")
	t.Setenv("HOSPINTEL_ARCHIVE_S3_BUCKET", "hospintel-exports")
	t.Setenv("HOSPINTEL_ARCHIVE_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("HOSPINTEL_LOGGING_OUTPUT_LOKI_ENDPOINT", "http://loki:3100")
	t.Setenv("HOSPINTEL_STORAGE_POSTGRES_POOL_MAX_OPEN_CONNS", "12")
	t.Setenv("HOSPINTEL_OBSERVABILITY_TRACING_OTLP_ENDPOINT", "otel:4318")

	cfg, err := ReadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.SMS.Enabled)
	assert.Equal(t, "smsir-key", cfg.SMS.SMSIR.APIKey)
	assert.Equal(t, "100200", cfg.SMS.SMSIR.TemplateID)
	assert.Equal(t, "hospintel-exports", cfg.Archive.S3.Bucket)
	assert.Equal(t, "http://minio:9000", cfg.Archive.S3.Endpoint)
	assert.Equal(t, "us-east-1", cfg.Archive.S3.Region)
	assert.Equal(t, "http://loki:3100", cfg.Logging.Output.Loki.Endpoint)
	assert.Equal(t, 12, cfg.Storage.Postgres.Pool.MaxOpenConns)
	assert.Equal(t, "otel:4318", cfg.Observability.Tracing.OTLPEndpoint)
	assert.Equal(t, 86400, cfg.Submission.ReplayTTLSeconds)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Driver: "memory"},
			Admin:   AdminConfig{SessionBackend: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "indexeddb" }, wantErr: "unknown storage.driver"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: "storage.sqlite.path"},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "redis.addr"},
		{name: "negative quota", mutate: func(c *Config) { c.Storage.MaxRecordsPerStore = -1 }, wantErr: "max_records_per_store"},
		{name: "short digest", mutate: func(c *Config) { c.Admin.PassphraseDigest = "abc123" }, wantErr: "passphrase_digest"},
		{
			name: "valid digest",
			mutate: func(c *Config) {
				c.Admin.PassphraseDigest = strings.Repeat("ab", 32)
			},
		},
		{name: "redis sessions without addr", mutate: func(c *Config) { c.Admin.SessionBackend = "redis" }, wantErr: "redis.addr"},
		{name: "nats without url", mutate: func(c *Config) { c.Nats.Enabled = true }, wantErr: "nats.url"},
		{name: "sms without credentials", mutate: func(c *Config) { c.SMS.Enabled = true }, wantErr: "sms.smsir"},
		{name: "bad token key", mutate: func(c *Config) { c.Admin.TokenKey = "00ff" }, wantErr: "admin.token_key"},
		{name: "bad archive key", mutate: func(c *Config) { c.Archive.EncryptionKey = "xyz" }, wantErr: "archive.encryption_key"},
		{name: "unknown session backend", mutate: func(c *Config) { c.Admin.SessionBackend = "cookie" }, wantErr: "session_backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
