package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Mailer   MailerConfig
	Dispatch DispatchConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours" envconfig:"EXPIRY_HOURS"`
}

// MailerConfig carries the SMTP endpoint plus the bearer credential. The
// credential never belongs in the yaml file; it arrives through the
// environment only.
type MailerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Username    string        `mapstructure:"username"`
	From        string        `mapstructure:"from"`
	Token       string        `mapstructure:"-"`
	TokenExpiry time.Duration `mapstructure:"-" envconfig:"TOKEN_EXPIRY"`
}

type DispatchConfig struct {
	SendInterval  time.Duration `mapstructure:"send_interval" envconfig:"SEND_INTERVAL"`
	ProgressEvery int           `mapstructure:"progress_every" envconfig:"PROGRESS_EVERY"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets and per-deploy tuning override the file, one env prefix per
	// section (ATTEND_MAILER_TOKEN, ATTEND_JWT_SECRET, ...).
	overrides := map[string]interface{}{
		"attend_db":       &config.Database,
		"attend_redis":    &config.Redis,
		"attend_jwt":      &config.JWT,
		"attend_mailer":   &config.Mailer,
		"attend_dispatch": &config.Dispatch,
	}
	for prefix, section := range overrides {
		if err := envconfig.Process(prefix, section); err != nil {
			return nil, fmt.Errorf("failed to process environment overrides: %w", err)
		}
	}

	return &config, nil
}
