package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration. It is loaded
// once at startup and treated as immutable afterwards.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Mail     MailConfig     `yaml:"mail"`
	Admin    AdminConfig    `yaml:"admin"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" envconfig:"SERVER_PORT"`
	Mode            string        `yaml:"mode" envconfig:"SERVER_MODE"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is "postgres" or "memory"
	Driver         string        `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"STORAGE_TIMEOUT"`
	ResetOnStart   bool          `yaml:"reset_on_start" envconfig:"STORAGE_RESET_ON_START"`
	MigrationsPath string        `yaml:"migrations_path" envconfig:"STORAGE_MIGRATIONS_PATH"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host" envconfig:"DB_HOST"`
	Port            string        `yaml:"port" envconfig:"DB_PORT"`
	User            string        `yaml:"user" envconfig:"DB_USER"`
	Password        string        `yaml:"password" envconfig:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" envconfig:"DB_NAME"`
	SSLMode         string        `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"DB_CONN_MAX_LIFETIME"`
}

// MailConfig keeps the variable names the booking frontend has always used.
// An empty Host means fallback-only delivery.
type MailConfig struct {
	Host             string        `yaml:"host" envconfig:"SMTP_HOST"`
	Port             int           `yaml:"port" envconfig:"SMTP_PORT"`
	Username         string        `yaml:"username" envconfig:"SMTP_USER"`
	Password         string        `yaml:"password" envconfig:"SMTP_PASS"`
	FromEmail        string        `yaml:"from_email" envconfig:"FROM_EMAIL"`
	FromName         string        `yaml:"from_name" envconfig:"FROM_NAME"`
	OwnerEmail       string        `yaml:"owner_email" envconfig:"OWNER_EMAIL"`
	Timeout          time.Duration `yaml:"timeout" envconfig:"MAIL_TIMEOUT"`
	Retries          int           `yaml:"retries" envconfig:"MAIL_RETRIES"`
	ConfirmationWait time.Duration `yaml:"confirmation_wait" envconfig:"MAIL_CONFIRMATION_WAIT"`
	OutboxDir        string        `yaml:"outbox_dir" envconfig:"MAIL_OUTBOX_DIR"`
}

// AdminConfig enables the operator API when both JWTSecret and PasswordHash are set.
type AdminConfig struct {
	Username     string        `yaml:"username" envconfig:"ADMIN_USERNAME"`
	PasswordHash string        `yaml:"password_hash" envconfig:"ADMIN_PASSWORD_HASH"`
	JWTSecret    string        `yaml:"jwt_secret" envconfig:"ADMIN_JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" envconfig:"ADMIN_TOKEN_TTL"`
	Issuer       string        `yaml:"issuer" envconfig:"ADMIN_TOKEN_ISSUER"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url" envconfig:"RABBIT_URL"`
	Exchange string `yaml:"exchange" envconfig:"RABBIT_EXCHANGE"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `yaml:"service_name" envconfig:"OTEL_SERVICE_NAME"`
	Environment string `yaml:"environment" envconfig:"ENV"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			file, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	applyDerivedDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8000"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = 10 * time.Second

	config.Storage.Driver = "postgres"
	config.Storage.Timeout = 5 * time.Second
	config.Storage.MigrationsPath = "migrations"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "coursebooking"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = 30 * time.Minute

	config.Mail.Port = 587
	config.Mail.FromName = "Course Team"
	config.Mail.Timeout = 10 * time.Second
	config.Mail.OutboxDir = "outgoing_emails"

	config.Admin.Username = "owner"
	config.Admin.TokenTTL = time.Hour
	config.Admin.Issuer = "coursebooking"

	config.RabbitMQ.Exchange = "booking.exchange"

	config.Tracing.ServiceName = "coursebooking"
	config.Tracing.Environment = "dev"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// applyDerivedDefaults fills values that depend on other settings.
func applyDerivedDefaults(config *Config) {
	if config.Mail.FromEmail == "" {
		config.Mail.FromEmail = config.Mail.Username
	}
	if config.Mail.ConfirmationWait <= 0 {
		config.Mail.ConfirmationWait = config.Mail.Timeout
	}
	config.Storage.Driver = strings.ToLower(strings.TrimSpace(config.Storage.Driver))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Storage.Driver {
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Storage.Timeout <= 0 {
		return fmt.Errorf("storage timeout must be positive")
	}

	if config.Mail.Port <= 0 || config.Mail.Port > 65535 {
		return fmt.Errorf("invalid mail port %d", config.Mail.Port)
	}
	if config.Mail.Timeout <= 0 {
		return fmt.Errorf("mail timeout must be positive")
	}
	if config.Mail.Retries < 0 {
		return fmt.Errorf("mail retries cannot be negative")
	}
	if config.Mail.OutboxDir == "" {
		return fmt.Errorf("mail outbox directory is required")
	}

	if config.Admin.Enabled() && config.Admin.TokenTTL <= 0 {
		return fmt.Errorf("admin token ttl must be positive")
	}

	return nil
}

// Enabled reports whether the operator API should be mounted.
func (a AdminConfig) Enabled() bool {
	return a.JWTSecret != "" && a.PasswordHash != ""
}

// TransportConfigured reports whether live SMTP delivery is possible.
func (m MailConfig) TransportConfigured() bool {
	return m.Host != ""
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
