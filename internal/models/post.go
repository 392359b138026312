package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostType identifies where a feed post came from and what it plays as.
type PostType string

const (
	PostTypeFacebook     PostType = "facebook"      // text/image post from the Facebook page
	PostTypeVideo        PostType = "video"         // non-YouTube video link found in a Facebook attachment
	PostTypeYouTube      PostType = "youtube"       // YouTube video or live stream
	PostTypeFacebookLive PostType = "facebook_live" // currently-live Facebook broadcast
)

// StringArray stores an ordered list of URLs as a JSON text column so it
// round-trips through both Postgres and the SQLite test database.
type StringArray []string

// Value implements driver.Valuer
func (sa StringArray) Value() (driver.Value, error) {
	if len(sa) == 0 {
		return "[]", nil
	}
	return json.Marshal(sa)
}

// Scan implements sql.Scanner
func (sa *StringArray) Scan(value interface{}) error {
	if value == nil {
		*sa = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, sa)
	case string:
		return json.Unmarshal([]byte(v), sa)
	default:
		return errors.New("unsupported type for StringArray")
	}
}

// Post is the canonical unit of the unified social feed. The sync engine is
// the only writer for rows whose ID carries the fb_/yt_ source prefix.
type Post struct {
	ID             string      `json:"id" db:"id" gorm:"primaryKey"` // "fb_<postId>" or "yt_<videoId>"
	Type           PostType    `json:"type" db:"type" gorm:"not null;index"`
	Content        string      `json:"content" db:"content" gorm:"type:text"`
	MediaURL       string      `json:"media_url" db:"media_url"`
	Images         StringArray `json:"images" db:"images" gorm:"type:text"` // rehosted gallery images, in source order
	ThumbnailURL   string      `json:"thumbnail_url" db:"thumbnail_url"`
	ExternalURL    string      `json:"external_url" db:"external_url"`
	SourceID       string      `json:"source_id" db:"source_id" gorm:"index"`
	YouTubeVideoID string      `json:"youtube_video_id" db:"youtube_video_id" gorm:"column:youtube_video_id;index"` // reverse-lookup key for cross-source cleanup

	// Timestamp is epoch milliseconds and is the authoritative ordering key.
	Timestamp int64 `json:"timestamp" db:"timestamp" gorm:"not null;index"`

	Pinned bool `json:"pinned" db:"pinned" gorm:"default:false"`
	IsLive bool `json:"is_live" db:"is_live" gorm:"default:false;index"`

	AuthorName   string `json:"author_name" db:"author_name"`
	AuthorAvatar string `json:"author_avatar" db:"author_avatar"`

	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the Post model
func (Post) TableName() string {
	return "posts"
}

// FacebookPostID builds the deterministic feed ID for a Facebook post.
func FacebookPostID(sourcePostID string) string {
	return fmt.Sprintf("fb_%s", sourcePostID)
}

// YouTubePostID builds the deterministic feed ID for a YouTube video.
func YouTubePostID(videoID string) string {
	return fmt.Sprintf("yt_%s", videoID)
}
