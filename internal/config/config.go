// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration. Values come from
// environment variables, optionally backed by a YAML config file, with
// development defaults for everything.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string `mapstructure:"APP_HOST"`
	Port string `mapstructure:"APP_PORT"`
	Env  string `mapstructure:"APP_ENV"` // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string `mapstructure:"POSTGRES_HOST"`
	DBPort     string `mapstructure:"POSTGRES_PORT"`
	DBUser     string `mapstructure:"POSTGRES_USER"`
	DBPassword string `mapstructure:"POSTGRES_PASSWORD"`
	DBName     string `mapstructure:"POSTGRES_DB"`

	// Valkey (sessions, drafts, payment attempts)
	ValkeyHost     string `mapstructure:"VALKEY_HOST"`
	ValkeyPort     string `mapstructure:"VALKEY_PORT"`
	ValkeyPassword string `mapstructure:"VALKEY_PASSWORD"`

	// AI provider settings
	AIProvider        string        `mapstructure:"AI_PROVIDER"` // "gemini", "openai"
	GeminiKey         string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string        `mapstructure:"GEMINI_MODEL"`
	OpenAIKey         string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel       string        `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL     string        `mapstructure:"OPENAI_BASE_URL"`
	GenerationTimeout time.Duration `mapstructure:"GENERATION_TIMEOUT"`

	// Identity
	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	// Payments. PaymentAmount is in major currency units.
	PaymentAmount     int64  `mapstructure:"PAYMENT_AMOUNT"`
	PaymentCurrency   string `mapstructure:"PAYMENT_CURRENCY"`
	PaystackPublicKey string `mapstructure:"PAYSTACK_PUBLIC_KEY"`
	StripeSecretKey   string `mapstructure:"STRIPE_SECRET_KEY"`

	// RateLimit is the number of API requests allowed per minute per IP.
	RateLimit int `mapstructure:"RATE_LIMIT"`
	// TrustedProxies lists the proxy IPs and CIDR ranges whose forwarding
	// headers identify the client. Empty trusts none.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
}

const (
	defaultDBPassword = "changeme"
	defaultJWTSecret  = "dev-secret-change-me"
)

var defaults = map[string]any{
	"APP_HOST": "0.0.0.0",
	"APP_PORT": "8080",
	"APP_ENV":  "development",

	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "termsng",
	"POSTGRES_PASSWORD": defaultDBPassword,
	"POSTGRES_DB":       "termsng",

	"VALKEY_HOST":     "localhost",
	"VALKEY_PORT":     "6379",
	"VALKEY_PASSWORD": "",

	"AI_PROVIDER":        "gemini",
	"GEMINI_API_KEY":     "",
	"GEMINI_MODEL":       "gemini-2.5-flash",
	"OPENAI_API_KEY":     "",
	"OPENAI_MODEL":       "gpt-4o-mini",
	"OPENAI_BASE_URL":    "",
	"GENERATION_TIMEOUT": "60s",

	"JWT_SECRET":  defaultJWTSecret,
	"TOKEN_TTL":   "24h",
	"SESSION_TTL": "24h",

	"PAYMENT_AMOUNT":      4500,
	"PAYMENT_CURRENCY":    "NGN",
	"PAYSTACK_PUBLIC_KEY": "",
	"STRIPE_SECRET_KEY":   "",

	"RATE_LIMIT":      30,
	"TRUSTED_PROXIES": "",
}

// Load reads configuration from the environment and, if present, a config
// file. An empty path looks for termsng.yaml in the working directory and
// ./config; a missing file there is not an error. Returns an error if
// critical values are left at their defaults in production.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("termsng")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects development secrets in production and nonsensical values
// everywhere.
func (c *Config) Validate() error {
	if c.Env == "production" {
		if c.DBPassword == defaultDBPassword {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if c.JWTSecret == defaultJWTSecret || c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if c.PaymentAmount <= 0 {
		return fmt.Errorf("PAYMENT_AMOUNT must be positive")
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
