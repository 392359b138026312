package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"bethel-social/internal/config"
	"bethel-social/internal/facebook"
	"bethel-social/internal/media"
	"bethel-social/internal/realtime"
	"bethel-social/internal/services"
	"bethel-social/internal/youtube"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Poll periods. The Facebook poller runs more frequently than the YouTube
// poller; the live reconciler is a third, Facebook-specific job. The
// scheduler gives no mutual-exclusion guarantee; overlapping runs are safe
// because every write is an idempotent merge upsert.
const (
	facebookSyncSchedule = "@every 5m"
	youtubeSyncSchedule  = "@every 15m"
	liveStatusSchedule   = "@every 2m"
)

// WorkerService manages the background sync jobs for the application
type WorkerService struct {
	facebookSync *services.FacebookSyncService
	youtubeSync  *services.YouTubeSyncService
	hub          *realtime.Hub
	cron         *cron.Cron
	ctx          context.Context
	cancel       context.CancelFunc
	running      bool
	startedAt    time.Time
	mu           sync.RWMutex
}

// NewWorkerService creates a new worker service
func NewWorkerService(db *gorm.DB, cfg *config.Config) *WorkerService {
	ctx, cancel := context.WithCancel(context.Background())

	// Initialize the platform clients
	fbClient := facebook.NewClient("")
	ytClient := youtube.NewClient("")

	// Image rehosting degrades to original URLs without a service URL
	var rehoster media.Rehoster = media.NoopRehoster{}
	if cfg.ImageServiceURL != "" {
		rehoster = media.NewHTTPRehoster(cfg.ImageServiceURL)
	}

	hub := realtime.NewHub()

	return &WorkerService{
		facebookSync: services.NewFacebookSyncService(db, cfg, fbClient, rehoster, hub),
		youtubeSync:  services.NewYouTubeSyncService(db, cfg, ytClient, rehoster, hub),
		hub:          hub,
		cron:         cron.New(),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start schedules the sync jobs and runs an initial poll of each source
func (ws *WorkerService) Start() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.running {
		return nil // Already running
	}

	log.Println("Starting background sync jobs...")

	if _, err := ws.cron.AddFunc(facebookSyncSchedule, ws.runFacebookSync); err != nil {
		return err
	}
	if _, err := ws.cron.AddFunc(youtubeSyncSchedule, ws.runYouTubeSync); err != nil {
		return err
	}
	if _, err := ws.cron.AddFunc(liveStatusSchedule, ws.runLiveStatusSync); err != nil {
		return err
	}

	ws.cron.Start()

	// Run an initial sync immediately so a fresh deploy has content
	go ws.runFacebookSync()
	go ws.runYouTubeSync()

	ws.running = true
	ws.startedAt = time.Now()
	log.Println("Background sync jobs started successfully")

	return nil
}

// Stop stops the scheduler and waits for in-flight jobs
func (ws *WorkerService) Stop() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if !ws.running {
		return // Not running
	}

	log.Println("Stopping background sync jobs...")

	ws.cancel()
	<-ws.cron.Stop().Done()

	ws.running = false
	log.Println("Background sync jobs stopped")
}

// IsRunning returns whether the worker service is currently running
func (ws *WorkerService) IsRunning() bool {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.running
}

// Hub returns the realtime hub for the websocket endpoint
func (ws *WorkerService) Hub() *realtime.Hub {
	return ws.hub
}

// TriggerFacebookSync runs a Facebook poll outside the schedule. The
// webhook receiver and the manual trigger both land here.
func (ws *WorkerService) TriggerFacebookSync(backfill bool) {
	go func() {
		if err := ws.facebookSync.Sync(ws.ctx, services.SyncOptions{Backfill: backfill}); err != nil {
			log.Printf("❌ Triggered Facebook sync failed: %v", err)
		}
	}()
}

// TriggerYouTubeSync runs a YouTube poll outside the schedule.
func (ws *WorkerService) TriggerYouTubeSync() {
	go func() {
		if err := ws.youtubeSync.Sync(ws.ctx); err != nil {
			log.Printf("❌ Triggered YouTube sync failed: %v", err)
		}
	}()
}

func (ws *WorkerService) runFacebookSync() {
	if err := ws.facebookSync.Sync(ws.ctx, services.SyncOptions{}); err != nil {
		log.Printf("❌ Scheduled Facebook sync failed: %v", err)
	}
}

func (ws *WorkerService) runYouTubeSync() {
	if err := ws.youtubeSync.Sync(ws.ctx); err != nil {
		log.Printf("❌ Scheduled YouTube sync failed: %v", err)
	}
}

func (ws *WorkerService) runLiveStatusSync() {
	if err := ws.facebookSync.SyncLiveStatus(ws.ctx); err != nil {
		log.Printf("❌ Scheduled live status sync failed: %v", err)
	}
}

// GetStatus returns the current status of the worker service
func (ws *WorkerService) GetStatus() map[string]interface{} {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	status := map[string]interface{}{
		"running":           ws.running,
		"facebook_schedule": facebookSyncSchedule,
		"youtube_schedule":  youtubeSyncSchedule,
		"live_schedule":     liveStatusSchedule,
		"websocket_clients": ws.hub.ClientCount(),
	}
	if ws.running {
		status["uptime"] = time.Since(ws.startedAt).String()
	}

	return status
}
