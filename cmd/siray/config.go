package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config are CLI defaults, resolved from siray.yaml (when present) with
// environment variables taking precedence. The API key itself is read by
// the SDK from SIRAY_API_KEY.
type Config struct {
	BaseURL        string `yaml:"base_url"`
	GatewayURL     string `yaml:"gateway_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ImageModel     string `yaml:"image_model"`
	VideoModel     string `yaml:"video_model"`
}

func loadConfig() (*Config, error) {
	cfg := &Config{}

	path := getEnv("SIRAY_CONFIG_PATH", "siray.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.BaseURL = getEnv("SIRAY_BASE_URL", cfg.BaseURL)
	cfg.GatewayURL = getEnv("SIRAY_GATEWAY_URL", cfg.GatewayURL)

	return cfg, nil
}

func (c *Config) timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
