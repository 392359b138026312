package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SyncDebugRecordID is the fixed primary key of the single Facebook sync
// debug row. The row is fully overwritten on every run.
const SyncDebugRecordID = "facebook_sync"

// PageStat captures pagination telemetry for one fetched page.
type PageStat struct {
	URL       string `json:"url"`
	PostCount int    `json:"post_count"`
	HasPaging bool   `json:"has_paging"`
	HasNext   bool   `json:"has_next"`
}

// PageStats is stored as a JSON text column.
type PageStats []PageStat

// Value implements driver.Valuer
func (ps PageStats) Value() (driver.Value, error) {
	if len(ps) == 0 {
		return "[]", nil
	}
	return json.Marshal(ps)
}

// Scan implements sql.Scanner
func (ps *PageStats) Scan(value interface{}) error {
	if value == nil {
		*ps = PageStats{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, ps)
	case string:
		return json.Unmarshal([]byte(v), ps)
	default:
		return errors.New("unsupported type for PageStats")
	}
}

// SyncDebugRecord is the sole operator-facing audit trail for the Facebook
// poller: per-page pagination telemetry on success, a structured error
// payload on failure. Last write wins.
type SyncDebugRecord struct {
	ID        string    `json:"id" db:"id" gorm:"primaryKey"`
	RunID     uuid.UUID `json:"run_id" db:"run_id" gorm:"type:uuid"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	Backfill  bool      `json:"backfill" db:"backfill"`
	Pages     PageStats `json:"pages" db:"pages" gorm:"type:text"`

	// Error and ErrorBody hold the terminal failure, if any. ErrorBody is
	// the upstream response body when the API returned a non-2xx status.
	Error     string `json:"error" db:"error" gorm:"type:text"`
	ErrorBody string `json:"error_body" db:"error_body" gorm:"type:text"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for the SyncDebugRecord model
func (SyncDebugRecord) TableName() string {
	return "sync_debug_records"
}
