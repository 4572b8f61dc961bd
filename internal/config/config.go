package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Session SessionConfig `mapstructure:"session"`
	Images  ImagesConfig  `mapstructure:"images"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"` // "development" or "production"
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	ExpireDays int    `mapstructure:"expire_days"`
}

// ImagesConfig points at the S3-compatible image host. PublicBaseURL is
// the externally reachable prefix under which uploaded objects resolve.
type ImagesConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// IsProduction controls the cookie Secure attribute and gin mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// LoadConfig reads config.yaml from the working directory. Every key can
// be overridden through the environment, e.g. PERCH_MONGO_URI.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("PERCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", ":5000")
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("mongo.database", "perch")
	viper.SetDefault("session.expire_days", 15)

	// Unmarshal only sees keys it knows about; register the rest so
	// env-only deployments (no config.yaml) still populate the struct.
	for _, key := range []string{
		"mongo.uri", "session.secret",
		"images.endpoint", "images.region", "images.bucket",
		"images.access_key", "images.secret_key", "images.public_base_url",
	} {
		viper.SetDefault(key, "")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Missing file is fine when everything comes from the environment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("mongo.uri is required (PERCH_MONGO_URI)")
	}
	if cfg.Session.Secret == "" {
		return nil, errors.New("session.secret is required (PERCH_SESSION_SECRET)")
	}

	return &cfg, nil
}
