package models

import "time"

// IntegrationSettingsID is the fixed primary key of the optional settings
// row. The row is written by the admin surface, never by the sync engine.
const IntegrationSettingsID = "integration"

// IntegrationSettings optionally overrides the static environment
// configuration per field. An empty field means "no override".
type IntegrationSettings struct {
	ID string `json:"id" db:"id" gorm:"primaryKey"`

	FacebookPageID      string `json:"facebook_page_id" db:"facebook_page_id"`
	FacebookAccessToken string `json:"facebook_access_token" db:"facebook_access_token"`
	YouTubeChannelID    string `json:"youtube_channel_id" db:"youtube_channel_id"`
	YouTubeAPIKey       string `json:"youtube_api_key" db:"youtube_api_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the IntegrationSettings model
func (IntegrationSettings) TableName() string {
	return "integration_settings"
}
