// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`
	ServerHost string `env:"FOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"FOLIO_ENV" envDefault:"development"`
	LogLevel   string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`

	// SessionSecret keys the CSRF token generation. Required, min 32 bytes.
	SessionSecret string `env:"FOLIO_SESSION_SECRET"`

	// Site content configuration
	ContentPath string `env:"FOLIO_CONTENT_PATH" envDefault:"./data/config.json"`
	SamplePath  string `env:"FOLIO_CONTENT_SAMPLE" envDefault:"./data/sample.json"`
	UploadsDir  string `env:"FOLIO_UPLOADS_DIR" envDefault:"./data/images"`

	// Device metadata cache configuration
	RedisURL       string        `env:"FOLIO_REDIS_URL"`                          // Optional Redis URL for the device cache
	DeviceCacheTTL time.Duration `env:"FOLIO_DEVICE_CACHE_TTL" envDefault:"2m"`   // How long unconsumed client metadata lives
	CachePrefix    string        `env:"FOLIO_CACHE_PREFIX" envDefault:"folio:"`   // Redis key prefix

	// Geolocation configuration
	GeoAPIURL   string `env:"FOLIO_GEO_API_URL" envDefault:"http://ip-api.com/json"`
	GeoIPDBPath string `env:"FOLIO_GEOIP_DB_PATH"` // Optional GeoLite2-City.mmdb; remote API is the fallback

	// hCaptcha configuration (contact form, optional)
	HCaptchaSiteKey   string `env:"FOLIO_HCAPTCHA_SITE_KEY"`
	HCaptchaSecretKey string `env:"FOLIO_HCAPTCHA_SECRET_KEY"`

	// Visit retention, in days. 0 disables the purge job.
	VisitRetentionDays int `env:"FOLIO_VISIT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if a Redis device cache is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// HCaptchaEnabled returns true if hCaptcha is configured.
func (c Config) HCaptchaEnabled() bool {
	return c.HCaptchaSiteKey != "" && c.HCaptchaSecretKey != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("FOLIO_SESSION_SECRET must be set and at least 32 bytes")
	}
	return cfg, nil
}
