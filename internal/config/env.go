// Package config loads process-level configuration from the environment.
package config

import (
	"os"
	"strings"
)

// Config mirrors shared/configs/env.go's shape: a single struct populated
// once at process start from os.Getenv.
type Config struct {
	Port           string
	MongoURI       string
	AllowedOrigins []string
}

// Load reads the environment. MONGODB_URI is required; callers should treat
// a missing value as the one fatal startup condition the engine allows
// (spec §7 propagation policy).
func Load() (Config, error) {
	cfg := Config{
		Port:     os.Getenv("PORT"),
		MongoURI: os.Getenv("MONGODB_URI"),
	}
	if cfg.Port == "" {
		cfg.Port = "4000"
	}
	if cfg.MongoURI == "" {
		return cfg, ErrMissingMongoURI
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}
