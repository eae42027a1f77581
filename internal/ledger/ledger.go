// Package ledger implements the Lifecycle Ledger (SPEC_FULL §4.8): a
// durable, best-effort record of every draft's phase transitions, kept in
// Postgres via GORM. Unlike the per-draft snapshot file, a Ledger write
// failure is logged and never terminates a draft — it is supplemental
// observability, not correctness-critical state.
package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/boosterdraft/draftd/internal/draft"
)

const writeQueueDepth = 256

// Ledger records draft lifecycle transitions asynchronously: Record
// enqueues and returns immediately; a single background goroutine drains
// the queue and performs the actual insert, so record pressure never
// blocks the Hub's critical section.
type Ledger struct {
	db    *gorm.DB
	log   *zap.Logger
	queue chan Entry
	done  chan struct{}
}

// Open connects to Postgres at dsn, migrates the ledger table, and starts
// the background writer. Callers should prefer NoopLedger when dsn is
// empty (SPEC_FULL §4.7: an unset PostgresDSN degrades the ledger to a
// logger-only stub rather than failing startup).
func Open(dsn string, log *zap.Logger) (*Ledger, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}

	l := &Ledger{
		db:    db,
		log:   log,
		queue: make(chan Entry, writeQueueDepth),
		done:  make(chan struct{}),
	}
	go l.drain()
	return l, nil
}

func (l *Ledger) drain() {
	defer close(l.done)
	for entry := range l.queue {
		if err := l.db.WithContext(context.Background()).Create(&entry).Error; err != nil {
			l.log.Error("lifecycle ledger write failed",
				zap.String("draft_id", entry.DraftID), zap.String("phase", entry.Phase), zap.Error(err))
		}
	}
}

// Record enqueues a lifecycle transition. If the queue is full the entry
// is dropped and logged rather than applying backpressure to the caller.
func (l *Ledger) Record(id draft.DraftID, phase draft.Phase, detail string) {
	entry := Entry{DraftID: string(id), Phase: string(phase), Detail: detail, At: time.Now()}
	select {
	case l.queue <- entry:
	default:
		l.log.Warn("lifecycle ledger queue full, dropping entry",
			zap.String("draft_id", entry.DraftID), zap.String("phase", entry.Phase))
	}
}

// Close stops accepting new entries and waits for the queue to drain.
func (l *Ledger) Close() error {
	close(l.queue)
	<-l.done
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NoopLedger is used when no PostgresDSN is configured: it logs every
// transition at debug level instead of persisting it.
type NoopLedger struct {
	Log *zap.Logger
}

func (n NoopLedger) Record(id draft.DraftID, phase draft.Phase, detail string) {
	n.Log.Debug("lifecycle transition (ledger disabled)",
		zap.String("draft_id", string(id)), zap.String("phase", string(phase)), zap.String("detail", detail))
}
