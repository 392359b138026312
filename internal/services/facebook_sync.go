package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"bethel-social/internal/config"
	"bethel-social/internal/facebook"
	"bethel-social/internal/media"
	"bethel-social/internal/metadata"
	"bethel-social/internal/models"

	"gorm.io/gorm"
)

const (
	// incrementalPageLimit bounds the single page of an incremental run.
	incrementalPageLimit = 10

	// backfillPageLimit is the wider page size of a backfill run.
	backfillPageLimit = 50

	// backfillSinceEpoch is the fixed time lower bound of a backfill run
	// (2018-01-01T00:00:00Z, epoch seconds).
	backfillSinceEpoch = 1514764800

	// maxBackfillPages caps the cursor walk independently of the API's own
	// cursor exhaustion.
	maxBackfillPages = 20

	// rehostFolder is the image-service folder key for Facebook media.
	rehostFolder = "facebook"
)

// youtubeURLPattern matches a YouTube watch/share/embed URL and captures
// the 11-character video ID.
var youtubeURLPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?v=|embed/|live/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{11})`)

// ExtractYouTubeVideoID returns the video ID embedded in a YouTube URL, or
// "" when the URL is not a YouTube link.
func ExtractYouTubeVideoID(rawURL string) string {
	matches := youtubeURLPattern.FindStringSubmatch(rawURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// Notifier pushes feed-change events to connected clients. A nil notifier
// disables broadcasting.
type Notifier interface {
	FeedUpdated(source string, count int)
	LiveStarted(post models.Post)
	LiveEnded(postID string)
}

// SyncOptions selects between the incremental and backfill pagination
// modes of a Facebook run.
type SyncOptions struct {
	Backfill bool
}

// FacebookSyncService polls the page feed, normalizes items into canonical
// feed posts, resolves cross-source duplicates, and commits the run as one
// batch. It also reconciles the live-broadcast state machine.
type FacebookSyncService struct {
	cfg       *config.Config
	client    *facebook.Client
	creds     *CredentialsService
	posts     *PostsService
	debug     *SyncDebugService
	rehoster  media.Rehoster
	extractor *metadata.MetadataExtractor
	notifier  Notifier
}

// NewFacebookSyncService creates a new Facebook sync service
func NewFacebookSyncService(db *gorm.DB, cfg *config.Config, client *facebook.Client, rehoster media.Rehoster, notifier Notifier) *FacebookSyncService {
	return &FacebookSyncService{
		cfg:       cfg,
		client:    client,
		creds:     NewCredentialsService(db, cfg),
		posts:     NewPostsService(db),
		debug:     NewSyncDebugService(db),
		rehoster:  rehoster,
		extractor: metadata.NewMetadataExtractor(),
		notifier:  notifier,
	}
}

// Sync runs one poll of the page feed. A missing integration is an
// expected condition: the run logs and exits without error.
func (fs *FacebookSyncService) Sync(ctx context.Context, opts SyncOptions) error {
	creds, err := fs.creds.Facebook(ctx)
	if err != nil {
		return err
	}
	if !creds.Complete() {
		log.Printf("⏭️ Facebook sync skipped: page ID or access token not configured")
		return nil
	}

	recorder := fs.debug.StartRun(opts.Backfill)

	rawPosts, err := fs.walkFeed(ctx, creds, opts, recorder)
	if err != nil {
		log.Printf("❌ Facebook sync failed: %v", err)
		recorder.Fail(ctx, err)
		return err
	}

	log.Printf("📥 Facebook sync fetched %d raw posts (backfill=%v)", len(rawPosts), opts.Backfill)

	var batch []models.Post
	for _, raw := range rawPosts {
		post, err := fs.normalizePost(ctx, raw)
		if err != nil {
			log.Printf("⚠️ Skipping Facebook post %s: %v", raw.ID, err)
			continue
		}
		if post == nil {
			// no-signal item (neither text nor a primary image)
			continue
		}

		// Forward cross-source check: when the attachment resolves to a
		// YouTube video that already has an authoritative yt_ record, the
		// Facebook copy is not written at all.
		if post.YouTubeVideoID != "" {
			exists, err := fs.posts.Exists(ctx, models.YouTubePostID(post.YouTubeVideoID))
			if err != nil {
				log.Printf("⚠️ Duplicate check failed for video %s: %v", post.YouTubeVideoID, err)
			} else if exists {
				log.Printf("⏭️ Skipping Facebook post %s: YouTube record yt_%s already exists", raw.ID, post.YouTubeVideoID)
				continue
			}
		}

		batch = append(batch, *post)
	}

	if err := fs.posts.UpsertBatch(ctx, batch); err != nil {
		recorder.Fail(ctx, err)
		return err
	}

	recorder.Complete(ctx)
	log.Printf("✅ Facebook sync upserted %d posts", len(batch))

	if fs.notifier != nil && len(batch) > 0 {
		fs.notifier.FeedUpdated("facebook", len(batch))
	}
	return nil
}

// walkFeed drives the pagination loop. Every page's URL, item count, and
// cursor presence is recorded before normalization is attempted.
func (fs *FacebookSyncService) walkFeed(ctx context.Context, creds ResolvedFacebookCredentials, opts SyncOptions, recorder *RunRecorder) ([]facebook.FeedPost, error) {
	params := facebook.FeedParams{Limit: incrementalPageLimit}
	if opts.Backfill {
		params = facebook.FeedParams{Limit: backfillPageLimit, Since: backfillSinceEpoch}
	}

	var rawPosts []facebook.FeedPost
	pageCount := 0
	pageURL := fs.client.FeedURL(creds.PageID, creds.AccessToken, params)

	for pageURL != "" {
		page, err := fs.client.GetFeedPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch feed page: %w", err)
		}

		recorder.RecordPage(pageURL, len(page.Data), page.Paging != nil, page.HasNext())

		if len(page.Data) == 0 {
			break
		}

		rawPosts = append(rawPosts, page.Data...)
		pageCount++

		if !opts.Backfill {
			// Incremental mode reads a single bounded page.
			break
		}
		if pageCount >= maxBackfillPages {
			log.Printf("⚠️ Backfill stopped at page cap (%d pages)", maxBackfillPages)
			break
		}

		cursor := page.NextCursor()
		if cursor == "" {
			break
		}
		params.After = cursor
		pageURL = fs.client.FeedURL(creds.PageID, creds.AccessToken, params)
	}

	return rawPosts, nil
}

// normalizePost maps one raw feed item into a canonical Post. A nil post
// with nil error means the item carried no signal and is dropped.
func (fs *FacebookSyncService) normalizePost(ctx context.Context, raw facebook.FeedPost) (*models.Post, error) {
	if raw.Message == "" && raw.FullPicture == "" {
		return nil, nil
	}

	createdAt, err := facebook.ParseCreatedTime(raw.CreatedTime)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:           models.FacebookPostID(raw.ID),
		Type:         models.PostTypeFacebook,
		Content:      raw.Message,
		SourceID:     raw.ID,
		ExternalURL:  raw.PermalinkURL,
		Timestamp:    createdAt.UnixMilli(),
		AuthorName:   fs.cfg.AuthorName,
		AuthorAvatar: fs.cfg.AuthorAvatar,
	}

	var att *facebook.Attachment
	if raw.Attachments != nil && len(raw.Attachments.Data) > 0 {
		att = &raw.Attachments.Data[0]
	}

	switch {
	case att != nil && att.Subattachments != nil && len(att.Subattachments.Data) > 0:
		fs.normalizeGallery(ctx, raw, att, post)
	case att != nil && videoSource(att) != "":
		fs.normalizeVideo(ctx, raw, att, post)
	default:
		fs.normalizeImage(ctx, raw, att, post)
	}

	return post, nil
}

// normalizeGallery collects and rehosts each sub-image of a multi-image
// post, in source order.
func (fs *FacebookSyncService) normalizeGallery(ctx context.Context, raw facebook.FeedPost, att *facebook.Attachment, post *models.Post) {
	var images models.StringArray
	for _, sub := range att.Subattachments.Data {
		src := attachmentImage(&sub)
		if src == "" {
			continue
		}
		hosted, _ := fs.rehoster.Rehost(ctx, src, rehostFolder)
		images = append(images, hosted)
	}

	post.Images = images
	if len(images) > 0 {
		post.MediaURL = images[0]
	} else if raw.FullPicture != "" {
		hosted, _ := fs.rehoster.Rehost(ctx, raw.FullPicture, rehostFolder)
		post.MediaURL = hosted
	}
}

// normalizeVideo classifies a video attachment as either a YouTube
// duplicate candidate or a generic video link.
func (fs *FacebookSyncService) normalizeVideo(ctx context.Context, raw facebook.FeedPost, att *facebook.Attachment, post *models.Post) {
	source := videoSource(att)

	if videoID := ExtractYouTubeVideoID(source); videoID != "" {
		// Cross-posted YouTube video: the type follows the video, the
		// sourceId stays Facebook's, and the dedup resolver takes over.
		post.Type = models.PostTypeYouTube
		post.YouTubeVideoID = videoID
		post.MediaURL = source
		if raw.FullPicture != "" {
			hosted, _ := fs.rehoster.Rehost(ctx, raw.FullPicture, rehostFolder)
			post.ThumbnailURL = hosted
		}
		return
	}

	post.Type = models.PostTypeVideo
	post.MediaURL = source

	thumb := attachmentImage(att)
	if thumb == "" {
		thumb = raw.FullPicture
	}
	if thumb == "" && att.URL != "" {
		// Best-effort Open Graph fallback for links without a platform
		// thumbnail.
		if meta, err := fs.extractor.ExtractMetadata(ctx, att.URL); err == nil {
			thumb = meta.ImageURL
		}
	}
	if thumb != "" {
		hosted, _ := fs.rehoster.Rehost(ctx, thumb, rehostFolder)
		post.ThumbnailURL = hosted
	}
}

// normalizeImage handles single-image posts, falling back to full_picture.
func (fs *FacebookSyncService) normalizeImage(ctx context.Context, raw facebook.FeedPost, att *facebook.Attachment, post *models.Post) {
	src := ""
	if att != nil {
		src = attachmentImage(att)
	}
	if src == "" {
		src = raw.FullPicture
	}
	if src == "" {
		return
	}

	hosted, _ := fs.rehoster.Rehost(ctx, src, rehostFolder)
	post.MediaURL = hosted
}

// attachmentImage returns the attachment's image source, if any.
func attachmentImage(att *facebook.Attachment) string {
	if att.Media != nil && att.Media.Image != nil {
		return att.Media.Image.Src
	}
	return ""
}

// videoSource returns the attachment's playable video URL, if any. Shared
// video links surface through the attachment URL rather than media.source.
func videoSource(att *facebook.Attachment) string {
	if att.Media != nil && att.Media.Source != "" {
		return att.Media.Source
	}
	if att.MediaType == "video" || att.Type == "video_inline" || att.Type == "video_share_youtube" {
		return att.URL
	}
	return ""
}

// SyncLiveStatus reconciles the polled LIVE_NOW snapshot against posts
// previously flagged live. Newly observed broadcasts enter as LIVE; flagged
// posts absent from the snapshot are demoted in the same batch. There is no
// ENDED → LIVE transition for the same ID.
func (fs *FacebookSyncService) SyncLiveStatus(ctx context.Context) error {
	creds, err := fs.creds.Facebook(ctx)
	if err != nil {
		return err
	}
	if !creds.Complete() {
		log.Printf("⏭️ Live status sync skipped: page ID or access token not configured")
		return nil
	}

	snapshot, err := fs.client.GetLiveVideos(ctx, creds.PageID, creds.AccessToken)
	if err != nil {
		log.Printf("❌ Live status sync failed: %v", err)
		return fmt.Errorf("failed to fetch live videos: %w", err)
	}

	liveNow := make(map[string]bool, len(snapshot.Data))
	var liveBatch []models.Post
	for _, lv := range snapshot.Data {
		post := fs.normalizeLiveVideo(lv)
		liveNow[post.SourceID] = true
		liveBatch = append(liveBatch, post)
	}

	flagged, err := fs.posts.LiveFacebookPosts(ctx)
	if err != nil {
		return err
	}

	var ended []string
	for _, p := range flagged {
		if !liveNow[p.SourceID] {
			ended = append(ended, p.ID)
		}
	}

	err = fs.posts.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fs.posts.UpsertBatchTx(tx, liveBatch); err != nil {
			return err
		}
		return fs.posts.EndLiveTx(tx, ended)
	})
	if err != nil {
		return err
	}

	if len(liveBatch) > 0 || len(ended) > 0 {
		log.Printf("📡 Live status: %d live, %d ended", len(liveBatch), len(ended))
	}

	if fs.notifier != nil {
		for _, p := range liveBatch {
			fs.notifier.LiveStarted(p)
		}
		for _, id := range ended {
			fs.notifier.LiveEnded(id)
		}
	}
	return nil
}

// normalizeLiveVideo maps one LIVE_NOW entry to a pinned live post.
func (fs *FacebookSyncService) normalizeLiveVideo(lv facebook.LiveVideo) models.Post {
	content := lv.Title
	if lv.Description != "" {
		if content != "" {
			content += "\n\n"
		}
		content += lv.Description
	}

	timestamp := time.Now().UnixMilli()
	if lv.CreationTime != "" {
		if t, err := facebook.ParseCreatedTime(lv.CreationTime); err == nil {
			timestamp = t.UnixMilli()
		}
	}

	return models.Post{
		ID:           models.FacebookPostID(lv.ID),
		Type:         models.PostTypeFacebookLive,
		Content:      content,
		MediaURL:     lv.PermalinkURL,
		ExternalURL:  lv.PermalinkURL,
		SourceID:     lv.ID,
		Timestamp:    timestamp,
		Pinned:       true, // live implies pinned
		IsLive:       true,
		AuthorName:   fs.cfg.AuthorName,
		AuthorAvatar: fs.cfg.AuthorAvatar,
	}
}
