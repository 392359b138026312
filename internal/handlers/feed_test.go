package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bethel-social/internal/config"
	"bethel-social/internal/models"
	"bethel-social/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func feedRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	workerService := worker.NewWorkerService(db, &config.Config{})
	handler := NewFeedHandler(db, workerService)

	router := gin.New()
	router.GET("/health", handler.HealthCheck)
	router.GET("/api/feed", handler.GetFeed)
	router.GET("/api/sync/debug", handler.GetSyncDebug)
	return router, db
}

func TestHealthCheck(t *testing.T) {
	router, _ := feedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestGetFeedReturnsPinnedFirst(t *testing.T) {
	router, db := feedRouter(t)

	posts := []models.Post{
		{ID: "fb_1", Type: models.PostTypeFacebook, SourceID: "1", Timestamp: 3000},
		{ID: "fb_live", Type: models.PostTypeFacebookLive, SourceID: "live", Timestamp: 1000, Pinned: true, IsLive: true},
	}
	for i := range posts {
		assert.NoError(t, db.Create(&posts[i]).Error)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/feed", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Posts []models.Post `json:"posts"`
		Meta  struct {
			Total   int64 `json:"total"`
			Page    int   `json:"page"`
			PerPage int   `json:"per_page"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Meta.Total)
	assert.Len(t, body.Posts, 2)
	assert.Equal(t, "fb_live", body.Posts[0].ID)
	assert.Equal(t, "fb_1", body.Posts[1].ID)
}

func TestGetFeedClampsLimit(t *testing.T) {
	router, _ := feedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/feed?limit=9999&page=0", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"per_page":100`)
	assert.Contains(t, w.Body.String(), `"page":1`)
}

func TestGetSyncDebugBeforeFirstRun(t *testing.T) {
	router, _ := feedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/sync/debug", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
