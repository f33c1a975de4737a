package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Broker    BrokerConfig    `yaml:"broker"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host                  string `yaml:"host" env:"SERVER_HOST"`
	HTTPPort              int    `yaml:"http_port" env:"SERVER_HTTP_PORT"`
	GRPCPort              int    `yaml:"grpc_port" env:"SERVER_GRPC_PORT"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" env:"SERVER_REQUEST_TIMEOUT_SECONDS"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host        string `yaml:"host" env:"DB_HOST"`
	Port        int    `yaml:"port" env:"DB_PORT"`
	User        string `yaml:"user" env:"DB_USER"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	Database    string `yaml:"database" env:"DB_NAME"`
	SSLMode     string `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// StorageConfig selects the repository backend
type StorageConfig struct {
	Type     string `yaml:"type" env:"STORAGE_TYPE"`           // "postgres" or "memory"
	SeedFile string `yaml:"seed_file" env:"STORAGE_SEED_FILE"` // memory only
}

// JWTConfig contains bearer token validation settings
type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
	Issuer string `yaml:"issuer" env:"JWT_ISSUER"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format" env:"LOG_FORMAT"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	DeliverNotifications string `yaml:"deliver_notifications" env:"SCHEDULE_DELIVER_NOTIFICATIONS"`
	SendEventReminders   string `yaml:"send_event_reminders" env:"SCHEDULE_SEND_EVENT_REMINDERS"`
}

// DeliveryConfig contains the outbound notification channels
type DeliveryConfig struct {
	BatchSize          int    `yaml:"batch_size" env:"DELIVERY_BATCH_SIZE"`
	EmailEnabled       bool   `yaml:"email_enabled" env:"DELIVERY_EMAIL_ENABLED"`
	SendGridAPIKey     string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromAddress        string `yaml:"from_address" env:"DELIVERY_FROM_ADDRESS"`
	FromName           string `yaml:"from_name" env:"DELIVERY_FROM_NAME"`
	PushEnabled        bool   `yaml:"push_enabled" env:"DELIVERY_PUSH_ENABLED"`
	FirebaseCredsFile  string `yaml:"firebase_credentials_file" env:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID  string `yaml:"firebase_project_id" env:"FIREBASE_PROJECT_ID"`
	ReminderWindowHour int    `yaml:"reminder_window_hours" env:"DELIVERY_REMINDER_WINDOW_HOURS"`
}

// BrokerConfig contains the kafka change-event stream settings. An empty
// broker list disables publishing.
type BrokerConfig struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC"`
}

// TelemetryConfig contains OpenTelemetry exporter settings. An empty endpoint
// keeps the no-op providers.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
}

// RateLimitConfig limits requests per authenticated account
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM"`
	Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.RequestTimeoutSeconds == 0 {
		c.Server.RequestTimeoutSeconds = 10
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = "postgres"
	}
	switch c.Storage.Type {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Scheduler defaults
	if c.Scheduler.DeliverNotifications == "" {
		c.Scheduler.DeliverNotifications = "0 */1 * * * *" // every minute
	}
	if c.Scheduler.SendEventReminders == "" {
		c.Scheduler.SendEventReminders = "0 0 * * * *" // hourly
	}

	// Delivery validation
	if c.Delivery.BatchSize <= 0 {
		c.Delivery.BatchSize = 100
	}
	if c.Delivery.ReminderWindowHour <= 0 {
		c.Delivery.ReminderWindowHour = 24
	}
	if c.Delivery.EmailEnabled && (c.Delivery.SendGridAPIKey == "" || c.Delivery.FromAddress == "") {
		return fmt.Errorf("sendgrid api key and from address are required when email is enabled")
	}
	if c.Delivery.PushEnabled && c.Delivery.FirebaseCredsFile == "" {
		return fmt.Errorf("firebase credentials file is required when push is enabled")
	}

	// Broker defaults
	if c.Broker.Topic == "" {
		c.Broker.Topic = "participation.events"
	}

	// Telemetry defaults
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "clubhub-backend"
	}

	// Rate limit defaults
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetHTTPAddress returns the HTTP listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC health listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
