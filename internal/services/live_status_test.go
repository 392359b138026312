package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bethel-social/internal/facebook"
	"bethel-social/internal/media"
	"bethel-social/internal/models"

	"github.com/stretchr/testify/assert"
)

// liveServer serves a mutable LIVE_NOW snapshot so tests can change what
// the poller sees between runs.
func liveServer(t *testing.T, snapshot *facebook.LiveVideosPage) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshot)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLiveBroadcastEntersPinned(t *testing.T) {
	db := setupTestDB(t)
	snapshot := &facebook.LiveVideosPage{Data: []facebook.LiveVideo{
		{
			ID:           "live1",
			Status:       "LIVE",
			Title:        "Sunday Service",
			Description:  "Join us live",
			PermalinkURL: "https://facebook.com/live1",
			CreationTime: "2025-03-01T00:00:00+0000",
		},
	}}
	server := liveServer(t, snapshot)

	service := newFacebookSync(db, server.URL, nil)
	assert.NoError(t, service.SyncLiveStatus(context.Background()))

	var post models.Post
	assert.NoError(t, db.Where("id = ?", "fb_live1").First(&post).Error)
	assert.Equal(t, models.PostTypeFacebookLive, post.Type)
	assert.True(t, post.IsLive)
	assert.True(t, post.Pinned)
	assert.Equal(t, "Sunday Service\n\nJoin us live", post.Content)
	assert.Equal(t, int64(1740787200000), post.Timestamp)
}

func TestLiveBroadcastEndsWhenAbsentFromSnapshot(t *testing.T) {
	db := setupTestDB(t)
	snapshot := &facebook.LiveVideosPage{Data: []facebook.LiveVideo{
		{ID: "live1", Status: "LIVE", Title: "Morning service", CreationTime: "2025-03-01T00:00:00+0000"},
	}}
	server := liveServer(t, snapshot)

	service := newFacebookSync(db, server.URL, nil)
	assert.NoError(t, service.SyncLiveStatus(context.Background()))

	// The broadcast disappears from the next snapshot
	snapshot.Data = nil
	assert.NoError(t, service.SyncLiveStatus(context.Background()))

	var post models.Post
	assert.NoError(t, db.Where("id = ?", "fb_live1").First(&post).Error)
	assert.False(t, post.IsLive)
	assert.False(t, post.Pinned)
	assert.Equal(t, models.PostTypeFacebook, post.Type)
}

func TestLiveBroadcastStillPresentStaysLive(t *testing.T) {
	db := setupTestDB(t)
	snapshot := &facebook.LiveVideosPage{Data: []facebook.LiveVideo{
		{ID: "live1", Status: "LIVE", Title: "Morning service", CreationTime: "2025-03-01T00:00:00+0000"},
	}}
	server := liveServer(t, snapshot)

	service := newFacebookSync(db, server.URL, nil)
	assert.NoError(t, service.SyncLiveStatus(context.Background()))
	assert.NoError(t, service.SyncLiveStatus(context.Background()))

	var post models.Post
	assert.NoError(t, db.Where("id = ?", "fb_live1").First(&post).Error)
	assert.True(t, post.IsLive)
	assert.True(t, post.Pinned)
}

func TestLiveStatusDoesNotTouchYouTubeLiveFlags(t *testing.T) {
	db := setupTestDB(t)

	// A YouTube live post is owned by the YouTube poller, not the Facebook
	// live reconciler.
	ytLive := models.Post{
		ID:             "yt_abcdefghijk",
		Type:           models.PostTypeYouTube,
		SourceID:       "abcdefghijk",
		YouTubeVideoID: "abcdefghijk",
		IsLive:         true,
		Pinned:         true,
		Timestamp:      1,
	}
	assert.NoError(t, db.Create(&ytLive).Error)

	server := liveServer(t, &facebook.LiveVideosPage{})
	service := newFacebookSync(db, server.URL, nil)
	assert.NoError(t, service.SyncLiveStatus(context.Background()))

	var post models.Post
	assert.NoError(t, db.Where("id = ?", "yt_abcdefghijk").First(&post).Error)
	assert.True(t, post.IsLive)
	assert.True(t, post.Pinned)
}

type recordingNotifier struct {
	feedUpdated int
	started     []string
	ended       []string
}

func (n *recordingNotifier) FeedUpdated(source string, count int) { n.feedUpdated++ }
func (n *recordingNotifier) LiveStarted(post models.Post)         { n.started = append(n.started, post.ID) }
func (n *recordingNotifier) LiveEnded(postID string)              { n.ended = append(n.ended, postID) }

func TestLiveTransitionsAreBroadcast(t *testing.T) {
	db := setupTestDB(t)
	snapshot := &facebook.LiveVideosPage{Data: []facebook.LiveVideo{
		{ID: "live1", Status: "LIVE", Title: "Evening service", CreationTime: "2025-03-01T00:00:00+0000"},
	}}
	server := liveServer(t, snapshot)

	notifier := &recordingNotifier{}
	service := NewFacebookSyncService(db, testConfig(), facebook.NewClient(server.URL), media.NoopRehoster{}, notifier)

	assert.NoError(t, service.SyncLiveStatus(context.Background()))
	assert.Equal(t, []string{"fb_live1"}, notifier.started)

	snapshot.Data = nil
	assert.NoError(t, service.SyncLiveStatus(context.Background()))
	assert.Equal(t, []string{"fb_live1"}, notifier.ended)
}
