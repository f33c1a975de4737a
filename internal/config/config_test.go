package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  host: 0.0.0.0
  http_port: 8080
  grpc_port: 9090
database:
  host: localhost
  user: clubhub
  database: clubhub
jwt:
  secret: 0123456789abcdef0123456789abcdef
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10, cfg.Server.RequestTimeoutSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Delivery.BatchSize)
	assert.Equal(t, "participation.events", cfg.Broker.Topic)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetHTTPAddress())
	assert.Equal(t, "postgres://clubhub:@localhost:5432/clubhub?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SERVER_HTTP_PORT", "9999")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.Brokers)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }, "invalid http port"},
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, "at least 32"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "redis" }, "unknown storage type"},
		{"memory needs no database", func(c *Config) { c.Storage.Type = "memory"; c.Database = DatabaseConfig{} }, ""},
		{"email without key", func(c *Config) { c.Delivery.EmailEnabled = true }, "sendgrid"},
		{"push without credentials", func(c *Config) { c.Delivery.PushEnabled = true }, "firebase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, baseYAML))
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestRouteSecurity(t *testing.T) {
	assert.Equal(t, SecurityPublic, RouteSecurity("Healthz"))
	assert.Equal(t, SecurityAccess, RouteSecurity("JoinClub"))
	assert.Equal(t, SecurityAccess, RouteSecurity("SomethingNew"))
}
