package handlers

import (
	"net/http"

	"bethel-social/internal/auth"
	"bethel-social/internal/worker"

	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the manual sync triggers.
type SyncHandler struct {
	workerService *worker.WorkerService
	verifier      *auth.TokenVerifier
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(workerService *worker.WorkerService, verifier *auth.TokenVerifier) *SyncHandler {
	return &SyncHandler{
		workerService: workerService,
		verifier:      verifier,
	}
}

// AdminAuth middleware guards the manual triggers with a signed token
func (h *SyncHandler) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := h.verifier.ValidateToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Valid admin token required",
			})
			return
		}
		c.Set("admin_subject", subject)
		c.Next()
	}
}

// TriggerFacebookSyncRequest is the POST /api/sync/facebook body.
type TriggerFacebookSyncRequest struct {
	Backfill bool `json:"backfill"`
}

// TriggerFacebookSync handles POST /api/sync/facebook. The backfill flag
// switches the pagination mode and time lower bound.
func (h *SyncHandler) TriggerFacebookSync(c *gin.Context) {
	var req TriggerFacebookSyncRequest
	// An empty body means an incremental run
	_ = c.ShouldBindJSON(&req)

	h.workerService.TriggerFacebookSync(req.Backfill)

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "sync started",
		"backfill": req.Backfill,
	})
}

// TriggerYouTubeSync handles POST /api/sync/youtube
func (h *SyncHandler) TriggerYouTubeSync(c *gin.Context) {
	h.workerService.TriggerYouTubeSync()

	c.JSON(http.StatusAccepted, gin.H{
		"status": "sync started",
	})
}
