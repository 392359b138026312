package handlers

import (
	"net/http"
	"strconv"
	"time"

	"bethel-social/internal/services"
	"bethel-social/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FeedHandler handles HTTP requests for the unified feed
type FeedHandler struct {
	posts         *services.PostsService
	debug         *services.SyncDebugService
	workerService *worker.WorkerService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(db *gorm.DB, workerService *worker.WorkerService) *FeedHandler {
	return &FeedHandler{
		posts:         services.NewPostsService(db),
		debug:         services.NewSyncDebugService(db),
		workerService: workerService,
	}
}

// GetFeed handles GET /api/feed
func (h *FeedHandler) GetFeed(c *gin.Context) {
	// Parse pagination parameters
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * limit

	posts, total, err := h.posts.GetFeed(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve feed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"meta": gin.H{
			"total":    total,
			"page":     page,
			"per_page": limit,
		},
	})
}

// GetSyncDebug handles GET /api/sync/debug — the operator-facing telemetry
// of the last Facebook run.
func (h *FeedHandler) GetSyncDebug(c *gin.Context) {
	record, err := h.debug.Latest(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve sync debug record",
			"details": err.Error(),
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No sync has run yet"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// HealthCheck handles GET /health
func (h *FeedHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// WorkerStatus handles GET /api/worker/status
func (h *FeedHandler) WorkerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.workerService.GetStatus())
}
