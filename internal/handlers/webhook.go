package handlers

import (
	"log"
	"net/http"

	"bethel-social/internal/worker"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives Facebook webhook callbacks. The webhook is only a
// trigger: content events re-run the same incremental poll, never an
// independent ingestion path.
type WebhookHandler struct {
	workerService *worker.WorkerService
	verifyToken   string
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(workerService *worker.WorkerService, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		workerService: workerService,
		verifyToken:   verifyToken,
	}
}

// Verify handles the GET verification handshake: echo the challenge when
// the shared secret matches.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
}

// webhookEvent is the minimal event envelope; the payload itself is never
// used directly.
type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
		} `json:"changes"`
	} `json:"entry"`
}

// Receive handles POST content events by re-running the incremental sync.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var event webhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	if event.Object == "page" {
		log.Printf("📬 Facebook webhook received (%d entries), triggering incremental sync", len(event.Entry))
		h.workerService.TriggerFacebookSync(false)
	}

	// Always ack so Facebook does not retry or disable the subscription
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
