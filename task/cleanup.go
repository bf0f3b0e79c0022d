package tasks

import (
	"log"
	"time"

	"pk10/database"
	"pk10/models"
)

// PurgeExpiredLocks removes settlement locks whose TTL lapsed long ago.
// Expired locks are already ignored by acquisition; this just keeps the table
// small.
func PurgeExpiredLocks() {
	cutoff := time.Now().Add(-1 * time.Hour)
	result := database.DB.
		Where("expires_at < ?", cutoff).
		Delete(&models.SettlementLock{})

	if result.Error != nil {
		log.Println("❌ Failed to purge expired settlement locks:", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("✅ Purged %d expired settlement locks\n", result.RowsAffected)
	}
}

// PurgeStaleSettlementErrors drops diagnostics older than 30 days. They are
// audit breadcrumbs, not ledger data.
func PurgeStaleSettlementErrors() {
	cutoff := time.Now().AddDate(0, 0, -30)
	result := database.DB.
		Where("created_at < ?", cutoff).
		Delete(&models.SettlementError{})

	if result.Error != nil {
		log.Println("❌ Failed to purge stale settlement errors:", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("✅ Purged %d stale settlement errors\n", result.RowsAffected)
	}
}
