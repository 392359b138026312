package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bethel-social/internal/auth"
	"bethel-social/internal/config"
	"bethel-social/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func syncRouter(t *testing.T) (*gin.Engine, *auth.TokenVerifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	workerService := worker.NewWorkerService(setupTestDB(t), &config.Config{})
	verifier := auth.NewTokenVerifier("test-secret")
	handler := NewSyncHandler(workerService, verifier)

	router := gin.New()
	api := router.Group("/api/sync", handler.AdminAuth())
	api.POST("/facebook", handler.TriggerFacebookSync)
	api.POST("/youtube", handler.TriggerYouTubeSync)
	return router, verifier
}

func TestSyncTriggerRequiresToken(t *testing.T) {
	router, _ := syncRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sync/facebook", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncTriggerRejectsBadToken(t *testing.T) {
	router, _ := syncRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sync/facebook", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSyncTriggerAcceptsValidToken(t *testing.T) {
	router, verifier := syncRouter(t)

	token, err := verifier.IssueToken("admin", time.Hour)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sync/facebook", strings.NewReader(`{"backfill":true}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"backfill":true`)
}

func TestSyncTriggerEmptyBodyIsIncremental(t *testing.T) {
	router, verifier := syncRouter(t)

	token, err := verifier.IssueToken("admin", time.Hour)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sync/facebook", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"backfill":false`)
}

func TestYouTubeSyncTrigger(t *testing.T) {
	router, verifier := syncRouter(t)

	token, err := verifier.IssueToken("admin", time.Hour)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/sync/youtube", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}
