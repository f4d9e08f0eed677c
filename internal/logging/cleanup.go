package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/revenuecat-relay/internal/models"
	"gorm.io/gorm"
)

const (
	logRetention    = 30 * 24 * time.Hour
	cleanupInterval = 24 * time.Hour
)

// logPruner removes system log rows written before cutoff.
type logPruner interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

type gormPruner struct {
	db *gorm.DB
}

func (p gormPruner) PruneBefore(cutoff time.Time) (int64, error) {
	result := p.db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup prunes system_logs past the 30-day retention once a day until
// done is closed. The returned channel closes when the goroutine has exited.
func StartCleanup(db *gorm.DB, done <-chan struct{}) <-chan struct{} {
	return runCleanup(gormPruner{db: db}, cleanupInterval, time.Now, done)
}

func runCleanup(pruner logPruner, interval time.Duration, now func() time.Time, done <-chan struct{}) <-chan struct{} {
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := pruner.PruneBefore(now().Add(-logRetention))
				if err != nil {
					// Warn keeps the failure out of the Postgres sink being pruned.
					slog.Warn("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
	return exited
}
