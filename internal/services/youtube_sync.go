package services

import (
	"context"
	"log"
	"time"

	"bethel-social/internal/config"
	"bethel-social/internal/media"
	"bethel-social/internal/models"
	"bethel-social/internal/youtube"

	"gorm.io/gorm"
)

const (
	// latestSearchResults is the page size of the latest-by-date query.
	latestSearchResults = 10

	// completedSearchResults bounds the recently-completed streams query.
	completedSearchResults = 3

	// youtubeRehostFolder is the image-service folder key for thumbnails.
	youtubeRehostFolder = "youtube"
)

// YouTubeSyncService polls the channel's uploads and live-stream state and
// merges them into the unified feed. After upserting it retracts Facebook
// duplicates of the same videos (the reverse cross-source cleanup).
type YouTubeSyncService struct {
	cfg      *config.Config
	client   *youtube.Client
	creds    *CredentialsService
	posts    *PostsService
	rehoster media.Rehoster
	notifier Notifier
}

// NewYouTubeSyncService creates a new YouTube sync service
func NewYouTubeSyncService(db *gorm.DB, cfg *config.Config, client *youtube.Client, rehoster media.Rehoster, notifier Notifier) *YouTubeSyncService {
	return &YouTubeSyncService{
		cfg:      cfg,
		client:   client,
		creds:    NewCredentialsService(db, cfg),
		posts:    NewPostsService(db),
		rehoster: rehoster,
		notifier: notifier,
	}
}

// Sync runs one poll of the channel. A missing integration is an expected
// condition: the run logs and exits without error.
func (ys *YouTubeSyncService) Sync(ctx context.Context) error {
	creds, err := ys.creds.YouTube(ctx)
	if err != nil {
		return err
	}
	if !creds.Complete() {
		log.Printf("⏭️ YouTube sync skipped: channel ID or API key not configured")
		return nil
	}

	videoIDs, err := ys.collectVideoIDs(ctx, creds)
	if err != nil {
		log.Printf("❌ YouTube sync failed: %v", err)
		return err
	}
	if len(videoIDs) == 0 {
		log.Printf("📥 YouTube sync found no videos")
		return nil
	}

	// Search results lack live-stream timing metadata, so the merged set
	// goes through a detail fetch before normalization.
	details, err := ys.client.GetVideos(ctx, creds.APIKey, videoIDs)
	if err != nil {
		log.Printf("❌ YouTube sync failed: %v", err)
		return err
	}

	var batch []models.Post
	for _, video := range details.Items {
		batch = append(batch, ys.normalizeVideo(ctx, video))
	}

	err = ys.posts.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ys.posts.UpsertBatchTx(tx, batch); err != nil {
			return err
		}

		// Reverse cross-source cleanup: retract Facebook duplicates that
		// were ingested before the authoritative YouTube record.
		for _, post := range batch {
			removed, err := ys.posts.DeleteByYouTubeVideoIDTx(tx, post.YouTubeVideoID, post.ID)
			if err != nil {
				return err
			}
			if removed > 0 {
				log.Printf("🧹 Removed %d duplicate post(s) for video %s", removed, post.YouTubeVideoID)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ YouTube sync failed: %v", err)
		return err
	}

	log.Printf("✅ YouTube sync upserted %d posts", len(batch))

	if ys.notifier != nil && len(batch) > 0 {
		ys.notifier.FeedUpdated("youtube", len(batch))
	}
	return nil
}

// collectVideoIDs merges the three channel queries (latest uploads, the
// one-result currently-live search, recently completed streams) and
// de-duplicates by video ID, preserving first-seen order.
func (ys *YouTubeSyncService) collectVideoIDs(ctx context.Context, creds ResolvedYouTubeCredentials) ([]string, error) {
	queries := []youtube.SearchParams{
		{Order: "date", MaxResults: latestSearchResults},
		{EventType: "live", MaxResults: 1},
		{EventType: "completed", MaxResults: completedSearchResults},
	}

	seen := make(map[string]bool)
	var videoIDs []string
	for _, params := range queries {
		result, err := ys.client.Search(ctx, creds.ChannelID, creds.APIKey, params)
		if err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			id := item.ID.VideoID
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			videoIDs = append(videoIDs, id)
		}
	}
	return videoIDs, nil
}

// normalizeVideo maps one video detail into a canonical Post. The stored
// timestamp follows the precedence actualStartTime → scheduledStartTime →
// publishedAt.
func (ys *YouTubeSyncService) normalizeVideo(ctx context.Context, video youtube.Video) models.Post {
	content := video.Snippet.Title
	if video.Snippet.Description != "" {
		if content != "" {
			content += "\n\n"
		}
		content += video.Snippet.Description
	}

	isLive := video.Snippet.LiveBroadcastContent == "live"

	thumbnail := video.Snippet.Thumbnails.Best()
	if thumbnail != "" {
		thumbnail, _ = ys.rehoster.Rehost(ctx, thumbnail, youtubeRehostFolder)
	}

	return models.Post{
		ID:             models.YouTubePostID(video.ID),
		Type:           models.PostTypeYouTube,
		Content:        content,
		MediaURL:       youtube.WatchURL(video.ID),
		ThumbnailURL:   thumbnail,
		ExternalURL:    youtube.WatchURL(video.ID),
		SourceID:       video.ID,
		YouTubeVideoID: video.ID,
		Timestamp:      videoTimestamp(video).UnixMilli(),
		Pinned:         isLive, // live implies pinned
		IsLive:         isLive,
		AuthorName:     ys.cfg.AuthorName,
		AuthorAvatar:   ys.cfg.AuthorAvatar,
	}
}

// videoTimestamp applies the timestamp precedence: a started stream's
// actual start, then an announced stream's scheduled start, then the
// ordinary upload time.
func videoTimestamp(video youtube.Video) time.Time {
	if d := video.LiveStreamingDetails; d != nil {
		if t, err := time.Parse(time.RFC3339, d.ActualStartTime); err == nil && d.ActualStartTime != "" {
			return t
		}
		if t, err := time.Parse(time.RFC3339, d.ScheduledStartTime); err == nil && d.ScheduledStartTime != "" {
			return t
		}
	}
	if t, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil && video.Snippet.PublishedAt != "" {
		return t
	}
	return time.Now()
}
