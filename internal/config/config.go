package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/medik/hospital-api/internal/email"
	"github.com/medik/hospital-api/internal/service/auth"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	JWT       auth.Config      `mapstructure:"jwt"`
	Redis     RedisConfig      `mapstructure:"redis"`
	SMTP      email.SMTPConfig `mapstructure:"smtp"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
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
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// envOverrides are the settings that differ between deployments and come
// from the environment rather than the checked-in config file.
type envOverrides struct {
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	RedisURL   string `envconfig:"REDIS_URL"`
	JWTSecret  string `envconfig:"JWT_SECRET"`
	SMTPHost   string `envconfig:"SMTP_HOST"`
	SMTPUser   string `envconfig:"SMTP_USER"`
	SMTPPass   string `envconfig:"SMTP_PASSWORD"`
	Port       int    `envconfig:"PORT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	applyOverrides(&config, &env)

	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.RateLimit.RPS == 0 {
		config.RateLimit.RPS = 100
		config.RateLimit.Burst = 200
	}

	return &config, nil
}

func applyOverrides(cfg *Config, env *envOverrides) {
	if env.DBHost != "" {
		cfg.Database.Host = env.DBHost
	}
	if env.DBPort != 0 {
		cfg.Database.Port = env.DBPort
	}
	if env.DBUser != "" {
		cfg.Database.User = env.DBUser
	}
	if env.DBPassword != "" {
		cfg.Database.Password = env.DBPassword
	}
	if env.DBName != "" {
		cfg.Database.Name = env.DBName
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.JWTSecret != "" {
		cfg.JWT.Secret = env.JWTSecret
	}
	if env.SMTPHost != "" {
		cfg.SMTP.Host = env.SMTPHost
	}
	if env.SMTPUser != "" {
		cfg.SMTP.Username = env.SMTPUser
	}
	if env.SMTPPass != "" {
		cfg.SMTP.Password = env.SMTPPass
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
}
