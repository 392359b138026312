package services

import (
	"context"
	"fmt"
	"time"

	"bethel-social/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postMergeColumns are the normalizer-owned columns refreshed on upsert.
// Columns outside this list (created_at in particular) keep their existing
// values, which is what makes re-running a poll a no-op in effect.
var postMergeColumns = []string{
	"type", "content", "media_url", "images", "thumbnail_url",
	"external_url", "source_id", "youtube_video_id", "timestamp",
	"pinned", "is_live", "author_name", "author_avatar", "updated_at",
}

// PostsService owns all writes to source-qualified feed posts. It never
// touches posts created by other ingestion paths.
type PostsService struct {
	db *gorm.DB
}

// NewPostsService creates a new posts service
func NewPostsService(db *gorm.DB) *PostsService {
	return &PostsService{db: db}
}

// DB exposes the underlying handle so sync runs can open one transaction
// spanning upserts, live demotions, and dedup deletes.
func (ps *PostsService) DB() *gorm.DB {
	return ps.db
}

// UpsertBatch writes the run's posts in a single atomic transaction with
// merge semantics keyed by the deterministic post ID.
func (ps *PostsService) UpsertBatch(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ps.UpsertBatchTx(tx, posts)
	})
}

// UpsertBatchTx is the transaction-scoped form of UpsertBatch.
func (ps *PostsService) UpsertBatchTx(tx *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	now := time.Now()
	for i := range posts {
		posts[i].UpdatedAt = now
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(postMergeColumns),
	}).Create(&posts).Error
	if err != nil {
		return fmt.Errorf("failed to upsert posts: %w", err)
	}
	return nil
}

// Exists reports whether a post with the given feed ID is present.
func (ps *PostsService) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := ps.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check post %s: %w", id, err)
	}
	return count > 0, nil
}

// DeleteByYouTubeVideoIDTx retracts every post referencing the given video
// except the one identified by keepID. This is the reverse cross-source
// cleanup: it removes a Facebook duplicate ingested before the
// authoritative YouTube record arrived.
func (ps *PostsService) DeleteByYouTubeVideoIDTx(tx *gorm.DB, videoID, keepID string) (int64, error) {
	result := tx.Where("youtube_video_id = ? AND id <> ?", videoID, keepID).
		Delete(&models.Post{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete duplicates for video %s: %w", videoID, result.Error)
	}
	return result.RowsAffected, nil
}

// LiveFacebookPosts returns the posts currently flagged live from the
// Facebook namespace.
func (ps *PostsService) LiveFacebookPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := ps.db.WithContext(ctx).
		Where("is_live = ? AND id LIKE ?", true, "fb_%").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load live posts: %w", err)
	}
	return posts, nil
}

// EndLiveTx demotes the given posts in place: the broadcast ended, the
// record stays. Runs inside the same batch that upserts the live snapshot.
func (ps *PostsService) EndLiveTx(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := tx.Model(&models.Post{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"is_live":    false,
			"pinned":     false,
			"type":       models.PostTypeFacebook,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to end live posts: %w", err)
	}
	return nil
}

// GetFeed returns the unified feed ordered by pinned first, then newest.
func (ps *PostsService) GetFeed(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	if err := ps.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []models.Post
	err := ps.db.WithContext(ctx).
		Order("pinned DESC, timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load feed: %w", err)
	}
	return posts, total, nil
}
