package config

import "time"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MFA      MFAConfig      `mapstructure:"mfa"`
	Session  SessionConfig  `mapstructure:"session"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MFAConfig is the static abuse/expiry policy. Loaded once at startup and
// never mutated at runtime; services take it by value or pointer and treat
// it as read-only.
type MFAConfig struct {
	// Challenge lifetime for every method type.
	ChallengeExpiry time.Duration `mapstructure:"challenge_expiry"`
	// Failed attempts allowed on one challenge before it locks.
	MaxFailedAttempts int `mapstructure:"max_failed_attempts"`
	// How long a locked method refuses new challenges.
	LockoutDuration time.Duration `mapstructure:"lockout_duration"`
	// Challenge creations allowed per user per rolling window.
	ChallengeRateLimit  int           `mapstructure:"challenge_rate_limit"`
	ChallengeRateWindow time.Duration `mapstructure:"challenge_rate_window"`
	// Setup initiations allowed per user per rolling window.
	SetupRateLimit  int           `mapstructure:"setup_rate_limit"`
	SetupRateWindow time.Duration `mapstructure:"setup_rate_window"`

	BackupCodeCount  int `mapstructure:"backup_code_count"`
	BackupCodeLength int `mapstructure:"backup_code_length"`

	// Channel (SMS/email) one-time code settings.
	ChannelCodeLength int           `mapstructure:"channel_code_length"`
	ChannelCodeExpiry time.Duration `mapstructure:"channel_code_expiry"`

	TOTPIssuerName string `mapstructure:"totp_issuer_name"`
	// Accepted clock drift for TOTP validation, in 30s time steps per side.
	TOTPSkew uint `mapstructure:"totp_skew"`
	// Hex-encoded 32-byte AES key for TOTP secrets at rest.
	TOTPSecretEncryptionKey string `mapstructure:"totp_secret_encryption_key"`
}

type SessionConfig struct {
	// How long a device-bound session stays trusted.
	TrustDuration time.Duration `mapstructure:"trust_duration"`
	// HMAC secret for session JWTs.
	SigningSecret string `mapstructure:"signing_secret"`
	Issuer        string `mapstructure:"issuer"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}
