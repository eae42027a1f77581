package ledger

import "time"

// Entry is one row of the Lifecycle Ledger: a durable audit trail of
// draft lifecycle transitions, independent of the per-draft snapshot
// file (SPEC_FULL §4.8). It is observability, never consulted to
// reconstruct in-memory Engine state.
type Entry struct {
	ID      uint   `gorm:"primaryKey"`
	DraftID string `gorm:"index;size:36"`
	Phase   string `gorm:"size:16"`
	Detail  string
	At      time.Time
}

func (Entry) TableName() string { return "lifecycle_entries" }
