// Package config holds the static environment configuration for the sync
// engine. Integration values here are the fallback layer; a row in the
// integration_settings table overrides them per field at run time.
package config

import (
	"fmt"

	"github.com/caarlos0/env"
)

// Config is parsed once at startup from environment variables.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Facebook Graph API
	FacebookPageID      string `env:"FACEBOOK_PAGE_ID"`
	FacebookAccessToken string `env:"FACEBOOK_ACCESS_TOKEN"`
	FacebookVerifyToken string `env:"FACEBOOK_VERIFY_TOKEN"` // webhook handshake shared secret

	// YouTube Data API
	YouTubeChannelID string `env:"YOUTUBE_CHANNEL_ID"`
	YouTubeAPIKey    string `env:"YOUTUBE_API_KEY"`

	// Image rehosting service (optional; posts keep original URLs without it)
	ImageServiceURL string `env:"IMAGE_SERVICE_URL"`

	// Admin API tokens for the manual sync triggers
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret"`

	// Feed author placeholder shown on every synced post
	AuthorName   string `env:"FEED_AUTHOR_NAME" envDefault:"Bethel Church"`
	AuthorAvatar string `env:"FEED_AUTHOR_AVATAR"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
