package services

import (
	"errors"
	"log"
	"time"

	"pk10/database"
	"pk10/models"
)

// ReconcilePeriods is the standing sweep over periods that drew a result but
// never fully settled: crashed workers, transient store errors, half-finished
// batches. Settlement is idempotent per bet and per period, so re-invoking it
// is always safe. Fatal config problems are surfaced and left for an
// operator; everything else self-heals on a later pass.
func ReconcilePeriods(grace time.Duration) {
	cutoff := time.Now().Add(-grace)

	var stuck []models.Period
	err := database.DB.
		Where("status IN ? AND close_at <= ?",
			[]string{models.PeriodDrawn, models.PeriodSettling, models.PeriodSettlementFailed},
			cutoff).
		Order("close_at ASC").
		Find(&stuck).Error
	if err != nil {
		logStoreError("load stuck periods", err)
		return
	}

	for _, period := range stuck {
		_, err := SettlePeriod(period.PeriodNo)
		switch {
		case err == nil:
			log.Printf("✅ reconciliation settled period %s", period.PeriodNo)
		case errors.Is(err, ErrLockHeld):
			// Another worker is on it.
		case errors.Is(err, ErrFatalConfig):
			log.Printf("🚨 period %s needs manual review: %v", period.PeriodNo, err)
		default:
			log.Printf("⚠️  reconciliation failed for period %s, will retry: %v", period.PeriodNo, err)
		}
	}
}

func logStoreError(what string, err error) {
	log.Printf("❌ %s: %v", what, err)
}
