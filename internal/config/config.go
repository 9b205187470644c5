// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Reaction concurrency modes.
const (
	ReactionConcurrencyNone       = "none"
	ReactionConcurrencyLock       = "lock"
	ReactionConcurrencyOptimistic = "optimistic"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	Port           string        `mapstructure:"PORT"`
	DBHost         string        `mapstructure:"DB_HOST"`
	DBPort         string        `mapstructure:"DB_PORT"`
	DBUser         string        `mapstructure:"DB_USER"`
	DBPassword     string        `mapstructure:"DB_PASSWORD"`
	DBName         string        `mapstructure:"DB_NAME"`
	DBSSLMode      string        `mapstructure:"DB_SSLMODE"`
	DBReadHost     string        `mapstructure:"DB_READ_HOST"`
	DBReadPort     string        `mapstructure:"DB_READ_PORT"`
	DBReadUser     string        `mapstructure:"DB_READ_USER"`
	DBReadPassword string        `mapstructure:"DB_READ_PASSWORD"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	AllowedOrigins string        `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string        `mapstructure:"FEATURE_FLAGS"`
	Env            string        `mapstructure:"APP_ENV"`

	// Super-admin basic auth credentials for /api/sa routes.
	AdminLogin    string `mapstructure:"ADMIN_LOGIN"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	ReactionConcurrency string `mapstructure:"REACTION_CONCURRENCY"`
	ReactionMaxRetries  int    `mapstructure:"REACTION_MAX_RETRIES"`

	KafkaBrokers        string `mapstructure:"KAFKA_BROKERS"`
	KafkaReactionsTopic string `mapstructure:"KAFKA_REACTIONS_TOPIC"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`

	DevBootstrapRoot bool   `mapstructure:"DEV_BOOTSTRAP_ROOT"`
	DevRootLogin     string `mapstructure:"DEV_ROOT_LOGIN"`
	DevRootEmail     string `mapstructure:"DEV_ROOT_EMAIL"`
	DevRootPassword  string `mapstructure:"DEV_ROOT_PASSWORD"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "inkwell")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ACCESS_TOKEN_TTL", "2h")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "reaction_events=on")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("ADMIN_LOGIN", "admin")
	viper.SetDefault("ADMIN_PASSWORD", "qwerty")
	viper.SetDefault("REACTION_CONCURRENCY", ReactionConcurrencyLock)
	viper.SetDefault("REACTION_MAX_RETRIES", 3)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_REACTIONS_TOPIC", "reactions.changed")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("DEV_BOOTSTRAP_ROOT", false)
	viper.SetDefault("DEV_ROOT_LOGIN", "root")
	viper.SetDefault("DEV_ROOT_EMAIL", "root@inkwell.local")
	viper.SetDefault("DEV_ROOT_PASSWORD", "")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.ReactionConcurrency = strings.ToLower(strings.TrimSpace(c.ReactionConcurrency))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}

// IsProduction reports whether the app runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// KafkaBrokerList splits KAFKA_BROKERS into addresses. Empty means Kafka is disabled.
func (c *Config) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AccessTokenTTL < 0 {
		return errors.New("ACCESS_TOKEN_TTL must not be negative")
	}

	switch c.ReactionConcurrency {
	case "", ReactionConcurrencyNone, ReactionConcurrencyLock, ReactionConcurrencyOptimistic:
	default:
		return fmt.Errorf("REACTION_CONCURRENCY must be one of none, lock, optimistic (got %q)", c.ReactionConcurrency)
	}
	if c.ReactionMaxRetries < 0 {
		return errors.New("REACTION_MAX_RETRIES must not be negative")
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.AdminPassword == "" || c.AdminPassword == "qwerty" {
			return errors.New("ADMIN_PASSWORD must be changed from the default value in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		// Development/Test warnings
		if len(c.JWTSecret) < 32 {
			log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
