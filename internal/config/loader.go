package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig reads configuration from a yaml file and the environment.
// Environment variables use the MFA_ prefix with '.' replaced by '_'.
func LoadConfig() (*Config, error) {
	setDefaults()

	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(fmt.Sprintf("config.%s", env))
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/mfa-service")
	}

	viper.SetEnvPrefix("MFA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, environment variables take over.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// setDefaults carries the policy table defaults; a deployment only overrides
// what it must.
func setDefaults() {
	viper.SetDefault("server.shutdown_timeout", "15s")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.environment", "development")

	viper.SetDefault("mfa.challenge_expiry", "10m")
	viper.SetDefault("mfa.max_failed_attempts", 5)
	viper.SetDefault("mfa.lockout_duration", "15m")
	viper.SetDefault("mfa.challenge_rate_limit", 3)
	viper.SetDefault("mfa.challenge_rate_window", "1m")
	viper.SetDefault("mfa.setup_rate_limit", 1)
	viper.SetDefault("mfa.setup_rate_window", "1h")
	viper.SetDefault("mfa.backup_code_count", 10)
	viper.SetDefault("mfa.backup_code_length", 6)
	viper.SetDefault("mfa.channel_code_length", 6)
	viper.SetDefault("mfa.channel_code_expiry", "10m")
	viper.SetDefault("mfa.totp_issuer_name", "GamingPlatform")
	viper.SetDefault("mfa.totp_skew", 1)

	viper.SetDefault("session.trust_duration", "720h") // 30 days
	viper.SetDefault("session.issuer", "mfa-service")
}
