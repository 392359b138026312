package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bethel-social/internal/facebook"
	"bethel-social/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncDebugService persists per-run pagination and error telemetry. There
// is one row, fully replaced each run; it is the sole audit trail for the
// Facebook poller.
type SyncDebugService struct {
	db *gorm.DB
}

// NewSyncDebugService creates a new sync debug service
func NewSyncDebugService(db *gorm.DB) *SyncDebugService {
	return &SyncDebugService{db: db}
}

// RunRecorder accumulates telemetry for one run and flushes it as a single
// overwrite of the debug row.
type RunRecorder struct {
	svc    *SyncDebugService
	record models.SyncDebugRecord
}

// StartRun begins a fresh telemetry record for a Facebook poll.
func (ds *SyncDebugService) StartRun(backfill bool) *RunRecorder {
	return &RunRecorder{
		svc: ds,
		record: models.SyncDebugRecord{
			ID:        models.SyncDebugRecordID,
			RunID:     uuid.New(),
			StartTime: time.Now(),
			Backfill:  backfill,
			Pages:     models.PageStats{},
		},
	}
}

// RecordPage appends one page's telemetry. Called before normalization so
// partial failures stay diagnosable.
func (r *RunRecorder) RecordPage(url string, postCount int, hasPaging, hasNext bool) {
	r.record.Pages = append(r.record.Pages, models.PageStat{
		URL:       url,
		PostCount: postCount,
		HasPaging: hasPaging,
		HasNext:   hasNext,
	})
}

// Fail records the terminal error, including the upstream response body
// when the failure was a non-2xx Graph API response, then flushes.
func (r *RunRecorder) Fail(ctx context.Context, runErr error) {
	r.record.Error = runErr.Error()

	var apiErr *facebook.APIError
	if errors.As(runErr, &apiErr) {
		r.record.ErrorBody = apiErr.Body
	}

	r.flush(ctx)
}

// Complete flushes a successful run's telemetry.
func (r *RunRecorder) Complete(ctx context.Context) {
	r.flush(ctx)
}

// flush overwrites the single debug row (last write wins). A failed flush
// is logged and dropped; diagnostics must never fail a run.
func (r *RunRecorder) flush(ctx context.Context) {
	err := r.svc.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"run_id", "start_time", "backfill", "pages", "error", "error_body", "updated_at"}),
	}).Create(&r.record).Error
	if err != nil {
		log.Printf("⚠️ Failed to write sync debug record: %v", err)
	}
}

// Latest returns the current debug row, if any.
func (ds *SyncDebugService) Latest(ctx context.Context) (*models.SyncDebugRecord, error) {
	var record models.SyncDebugRecord
	err := ds.db.WithContext(ctx).
		Where("id = ?", models.SyncDebugRecordID).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync debug record: %w", err)
	}
	return &record, nil
}
