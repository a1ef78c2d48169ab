package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"gorm.io/gorm"
)

const (
	LogRetention    = 30 * 24 * time.Hour
	cleanupInterval = 24 * time.Hour
)

// Purge drops system logs past retention plus OTPs that are used or expired.
func Purge(db *gorm.DB, now time.Time) (logs, otps int64, err error) {
	res := db.Where("timestamp < ?", now.Add(-LogRetention)).Delete(&models.SystemLog{})
	if res.Error != nil {
		return 0, 0, res.Error
	}
	logs = res.RowsAffected

	res = db.Where("used = ? OR expires_at < ?", true, now).Delete(&models.OTP{})
	if res.Error != nil {
		return logs, 0, res.Error
	}
	return logs, res.RowsAffected, nil
}

// StartCleanup runs Purge once a day until done is closed.
func StartCleanup(db *gorm.DB, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logs, otps, err := Purge(db, time.Now())
				if err != nil {
					slog.Warn("cleanup failed", "error", err)
				} else if logs > 0 || otps > 0 {
					slog.Info("cleanup completed", "logs_deleted", logs, "otps_deleted", otps)
				}
			case <-done:
				return
			}
		}
	}()
}
