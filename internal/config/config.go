// Package config handles loading and validating application configuration.
package config

// Config holds all application configuration. It is constructed once at
// process start and passed explicitly to every component that needs it;
// nothing reads the environment after startup.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings. TokenLifetimeMinutes bounds
// the validity of issued session tokens; revocation via logout applies
// before expiry.
type AuthConfig struct {
	TokenSecret          string `mapstructure:"token_secret"           validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// MailConfig contains settings for the outbound email provider. An empty
// API key disables real delivery; the outbox is then drained by a no-op
// mailer, which keeps local development free of external calls.
type MailConfig struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromAddress    string `mapstructure:"from_address" validate:"omitempty,email"`
	FromName       string `mapstructure:"from_name"`
}

// OutboxConfig tunes the email outbox dispatcher.
type OutboxConfig struct {
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"gte=0"`
	MaxAttempts         int `mapstructure:"max_attempts"          validate:"gte=0"`
	BatchSize           int `mapstructure:"batch_size"            validate:"gte=0"`
}
