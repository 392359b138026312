package services

import (
	"context"
	"fmt"

	"bethel-social/internal/config"
	"bethel-social/internal/models"

	"gorm.io/gorm"
)

// ResolvedFacebookCredentials is the end result of credential resolution for
// one Facebook poll: a settings-row value wins field by field over the
// static environment configuration.
type ResolvedFacebookCredentials struct {
	PageID      string
	AccessToken string
}

// Complete reports whether every required field resolved.
func (c ResolvedFacebookCredentials) Complete() bool {
	return c.PageID != "" && c.AccessToken != ""
}

// ResolvedYouTubeCredentials is the YouTube analog.
type ResolvedYouTubeCredentials struct {
	ChannelID string
	APIKey    string
}

// Complete reports whether every required field resolved.
func (c ResolvedYouTubeCredentials) Complete() bool {
	return c.ChannelID != "" && c.APIKey != ""
}

// ResolveFacebookCredentials merges the static config with an optional
// settings row. A nil settings row keeps the static values.
func ResolveFacebookCredentials(cfg *config.Config, settings *models.IntegrationSettings) ResolvedFacebookCredentials {
	creds := ResolvedFacebookCredentials{
		PageID:      cfg.FacebookPageID,
		AccessToken: cfg.FacebookAccessToken,
	}
	if settings != nil {
		if settings.FacebookPageID != "" {
			creds.PageID = settings.FacebookPageID
		}
		if settings.FacebookAccessToken != "" {
			creds.AccessToken = settings.FacebookAccessToken
		}
	}
	return creds
}

// ResolveYouTubeCredentials merges the static config with an optional
// settings row. A nil settings row keeps the static values.
func ResolveYouTubeCredentials(cfg *config.Config, settings *models.IntegrationSettings) ResolvedYouTubeCredentials {
	creds := ResolvedYouTubeCredentials{
		ChannelID: cfg.YouTubeChannelID,
		APIKey:    cfg.YouTubeAPIKey,
	}
	if settings != nil {
		if settings.YouTubeChannelID != "" {
			creds.ChannelID = settings.YouTubeChannelID
		}
		if settings.YouTubeAPIKey != "" {
			creds.APIKey = settings.YouTubeAPIKey
		}
	}
	return creds
}

// CredentialsService loads the optional settings row once per run.
type CredentialsService struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewCredentialsService creates a new credentials service
func NewCredentialsService(db *gorm.DB, cfg *config.Config) *CredentialsService {
	return &CredentialsService{db: db, cfg: cfg}
}

// loadSettings fetches the settings row; a missing row is not an error.
func (cs *CredentialsService) loadSettings(ctx context.Context) (*models.IntegrationSettings, error) {
	var settings models.IntegrationSettings
	err := cs.db.WithContext(ctx).
		Where("id = ?", models.IntegrationSettingsID).
		First(&settings).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load integration settings: %w", err)
	}
	return &settings, nil
}

// Facebook resolves the page credentials for one run.
func (cs *CredentialsService) Facebook(ctx context.Context) (ResolvedFacebookCredentials, error) {
	settings, err := cs.loadSettings(ctx)
	if err != nil {
		return ResolvedFacebookCredentials{}, err
	}
	return ResolveFacebookCredentials(cs.cfg, settings), nil
}

// YouTube resolves the channel credentials for one run.
func (cs *CredentialsService) YouTube(ctx context.Context) (ResolvedYouTubeCredentials, error) {
	settings, err := cs.loadSettings(ctx)
	if err != nil {
		return ResolvedYouTubeCredentials{}, err
	}
	return ResolveYouTubeCredentials(cs.cfg, settings), nil
}
