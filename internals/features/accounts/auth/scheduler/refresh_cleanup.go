package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	"cleantrack_backend/internals/features/accounts/auth/service"
)

const cleanupInterval = 12 * time.Hour

// StartRefreshTokenCleanup purges expired refresh tokens on an interval so
// the table does not grow unbounded.
func StartRefreshTokenCleanup(db *gorm.DB) {
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := service.PurgeExpiredRefreshTokens(db); err != nil {
				log.Printf("[ERROR] refresh token cleanup: %v", err)
			}
		}
	}()
}
