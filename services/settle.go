package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"pk10/database"
	"pk10/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lockTTL = 2 * time.Minute

// SettlementResult is what the notification layer consumes after a period is
// fully settled.
type SettlementResult struct {
	PeriodNo       string          `json:"period_no"`
	SettledCount   int64           `json:"settled_count"`
	WinCount       int64           `json:"win_count"`
	TotalWinAmount decimal.Decimal `json:"total_win_amount"`
	DurationMs     int64           `json:"duration_ms"`
}

type lockDecision int

const (
	lockAcquire lockDecision = iota
	lockReacquire
	lockBusy
)

// decideLock is the pure core of lock acquisition: same owner on an unexpired
// lock is a no-op re-acquire, an expired lock is taken over, anything else is
// busy.
func decideLock(lock *models.SettlementLock, owner string, now time.Time) lockDecision {
	if lock.Owner == owner && now.Before(lock.ExpiresAt) {
		return lockReacquire
	}
	if now.Before(lock.ExpiresAt) {
		return lockBusy
	}
	return lockAcquire
}

// AcquireSettlementLock takes the per-period TTL lock. Returns ErrLockHeld
// when another worker holds it unexpired.
func AcquireSettlementLock(periodNo, owner string, ttl time.Duration) error {
	now := time.Now()
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var lock models.SettlementLock
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("period_key = ?", periodNo).First(&lock).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.SettlementLock{
				PeriodKey: periodNo,
				Owner:     owner,
				ExpiresAt: now.Add(ttl),
			}).Error
		}
		if err != nil {
			return err
		}

		switch decideLock(&lock, owner, now) {
		case lockReacquire:
			return nil
		case lockBusy:
			return fmt.Errorf("%w: period %s held by %s until %s", ErrLockHeld, periodNo, lock.Owner, lock.ExpiresAt.Format(time.RFC3339))
		default:
			return tx.Model(&lock).Updates(map[string]any{
				"owner":      owner,
				"expires_at": now.Add(ttl),
			}).Error
		}
	})
}

// ReleaseSettlementLock drops the lock if this owner still holds it.
func ReleaseSettlementLock(periodNo, owner string) {
	err := database.DB.
		Where("period_key = ? AND owner = ?", periodNo, owner).
		Delete(&models.SettlementLock{}).Error
	if err != nil {
		log.Printf("⚠️  failed to release settlement lock for period %s: %v", periodNo, err)
	}
}

// settlementComplete is the pure conjunction behind AlreadySettled: zero
// unsettled bets, an existing SettlementLog, and existing rebate records.
// Any single signal can be present on a half-finished period (observed
// failure mode: log written, rebate missing), so only the conjunction
// counts. A period with no bets at all can never grow a rebate record, so
// there the log alone decides.
func settlementComplete(unsettled, logs, totalBets, rebates int64) bool {
	if unsettled > 0 || logs == 0 {
		return false
	}
	if totalBets == 0 {
		return true
	}
	return rebates > 0
}

// AlreadySettled gathers the three idempotency signals for a period.
func AlreadySettled(periodNo string) (bool, error) {
	var unsettled int64
	err := database.DB.Model(&models.Bet{}).
		Where("period_no = ? AND settled = ?", periodNo, false).
		Count(&unsettled).Error
	if err != nil {
		return false, err
	}

	var logs int64
	err = database.DB.Model(&models.SettlementLog{}).
		Where("period_no = ?", periodNo).Count(&logs).Error
	if err != nil {
		return false, err
	}

	var totalBets int64
	err = database.DB.Model(&models.Bet{}).
		Where("period_no = ?", periodNo).Count(&totalBets).Error
	if err != nil {
		return false, err
	}

	var rebates int64
	err = database.DB.Model(&models.TransactionRecord{}).
		Where("period_no = ? AND trx_type = ?", periodNo, models.TrxRebate).
		Count(&rebates).Error
	if err != nil {
		return false, err
	}

	return settlementComplete(unsettled, logs, totalBets, rebates), nil
}

// SettlePeriod runs the full settlement protocol for one period: lock, settle
// each unsettled bet in its own transaction, distribute rebates once, write
// the settlement log, release. Every step is idempotent, so a crashed run is
// safely resumed by the reconciliation sweep.
func SettlePeriod(periodNo string) (*SettlementResult, error) {
	start := time.Now()

	var period models.Period
	if err := database.DB.Where("period_no = ?", periodNo).First(&period).Error; err != nil {
		return nil, err
	}
	if period.Status == models.PeriodSettled {
		return loadSettlementResult(periodNo)
	}
	if !period.Settleable() {
		return nil, fmt.Errorf("period %s not settleable in status %s", periodNo, period.Status)
	}

	done, err := AlreadySettled(periodNo)
	if err != nil {
		return nil, err
	}
	if done {
		if err := setPeriodStatus(periodNo, models.PeriodSettled); err != nil {
			return nil, err
		}
		return loadSettlementResult(periodNo)
	}

	var draw models.DrawResult
	if err := database.DB.Where("period_no = ?", periodNo).First(&draw).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: period %s", ErrDrawMissing, periodNo)
		}
		return nil, err
	}
	positions := []int(draw.Positions)
	if !models.ValidPermutation(positions) {
		_ = setPeriodStatus(periodNo, models.PeriodSettlementFailed)
		return nil, fmt.Errorf("%w: period %s draw is not a permutation", ErrFatalConfig, periodNo)
	}

	owner := uuid.New().String()
	if err := AcquireSettlementLock(periodNo, owner, lockTTL); err != nil {
		return nil, err
	}
	defer ReleaseSettlementLock(periodNo, owner)

	if err := setPeriodStatus(periodNo, models.PeriodSettling); err != nil {
		return nil, err
	}

	var betIDs []uint
	err = database.DB.Model(&models.Bet{}).
		Where("period_no = ? AND settled = ?", periodNo, false).
		Order("id ASC").
		Pluck("id", &betIDs).Error
	if err != nil {
		_ = setPeriodStatus(periodNo, models.PeriodSettlementFailed)
		return nil, err
	}

	for _, betID := range betIDs {
		if err := settleBet(periodNo, betID, positions); err != nil {
			_ = setPeriodStatus(periodNo, models.PeriodSettlementFailed)
			return nil, fmt.Errorf("settle bet %d: %w", betID, err)
		}
	}

	if _, err := DistributeForPeriod(periodNo); err != nil {
		_ = setPeriodStatus(periodNo, models.PeriodSettlementFailed)
		return nil, fmt.Errorf("distribute rebates: %w", err)
	}

	result, err := buildSettlementResult(periodNo, time.Since(start))
	if err != nil {
		_ = setPeriodStatus(periodNo, models.PeriodSettlementFailed)
		return nil, err
	}
	if err := writeSettlementLog(result); err != nil {
		_ = setPeriodStatus(periodNo, models.PeriodSettlementFailed)
		return nil, err
	}
	if err := setPeriodStatus(periodNo, models.PeriodSettled); err != nil {
		return nil, err
	}

	log.Printf("✅ period %s settled: %d bets, %d wins, total win %s, %dms",
		periodNo, result.SettledCount, result.WinCount, result.TotalWinAmount, result.DurationMs)
	return result, nil
}

// settleBet settles one bet in its own transaction: lock the row while still
// unsettled, evaluate, mark settled, credit the full amount x odds on a win.
// A malformed bet settles as a loss and leaves a diagnostic; only store
// errors bubble up.
func settleBet(periodNo string, betID uint, positions []int) error {
	var evalErr error

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var bet models.Bet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND settled = ?", betID, false).First(&bet).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Already settled by an earlier run.
			return nil
		}
		if err != nil {
			return err
		}

		outcome, err := Evaluate(&bet, positions)
		if err != nil {
			if !errors.Is(err, ErrDataIntegrity) {
				return err
			}
			evalErr = err
		}

		res := tx.Model(&models.Bet{}).
			Where("id = ? AND settled = ?", betID, false).
			Updates(map[string]any{
				"settled":    true,
				"win":        outcome.IsWin,
				"win_amount": outcome.Payout,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if outcome.IsWin {
			note := fmt.Sprintf("Win period %s bet %d", periodNo, bet.ID)
			_, err := CreditMember(tx, bet.MemberCode, models.TrxWin, outcome.Payout, periodNo, note, uuid.New().String())
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if evalErr != nil {
		recordSettlementError(periodNo, betID, "data_integrity", evalErr.Error())
	}
	return nil
}

// VoidPeriod refunds every unsettled stake and retires the period. Used for
// operator-cancelled rounds; settled periods are final.
func VoidPeriod(periodNo string) error {
	var period models.Period
	if err := database.DB.Where("period_no = ?", periodNo).First(&period).Error; err != nil {
		return err
	}
	if period.Status == models.PeriodSettled || period.Status == models.PeriodVoided {
		return fmt.Errorf("period %s already %s", periodNo, period.Status)
	}

	owner := uuid.New().String()
	if err := AcquireSettlementLock(periodNo, owner, lockTTL); err != nil {
		return err
	}
	defer ReleaseSettlementLock(periodNo, owner)

	var betIDs []uint
	err := database.DB.Model(&models.Bet{}).
		Where("period_no = ? AND settled = ?", periodNo, false).
		Pluck("id", &betIDs).Error
	if err != nil {
		return err
	}

	for _, betID := range betIDs {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var bet models.Bet
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND settled = ?", betID, false).First(&bet).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}

			res := tx.Model(&models.Bet{}).
				Where("id = ? AND settled = ?", betID, false).
				Updates(map[string]any{"settled": true, "win": false, "win_amount": decimal.Zero})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}

			note := fmt.Sprintf("Refund voided period %s bet %d", periodNo, bet.ID)
			_, err = CreditMember(tx, bet.MemberCode, models.TrxRefund, bet.Amount, periodNo, note, uuid.New().String())
			return err
		})
		if err != nil {
			return err
		}
	}

	return setPeriodStatus(periodNo, models.PeriodVoided)
}

func setPeriodStatus(periodNo, status string) error {
	return database.DB.Model(&models.Period{}).
		Where("period_no = ?", periodNo).
		Update("status", status).Error
}

func buildSettlementResult(periodNo string, elapsed time.Duration) (*SettlementResult, error) {
	result := &SettlementResult{PeriodNo: periodNo, DurationMs: elapsed.Milliseconds()}

	err := database.DB.Model(&models.Bet{}).
		Where("period_no = ? AND settled = ?", periodNo, true).
		Count(&result.SettledCount).Error
	if err != nil {
		return nil, err
	}
	err = database.DB.Model(&models.Bet{}).
		Where("period_no = ? AND win = ?", periodNo, true).
		Count(&result.WinCount).Error
	if err != nil {
		return nil, err
	}

	var total struct{ Total decimal.Decimal }
	err = database.DB.Model(&models.Bet{}).
		Select("COALESCE(SUM(win_amount), 0) AS total").
		Where("period_no = ? AND win = ?", periodNo, true).
		Scan(&total).Error
	if err != nil {
		return nil, err
	}
	result.TotalWinAmount = total.Total
	return result, nil
}

// writeSettlementLog is create-if-absent, in the same shape as the other
// idempotency guards.
func writeSettlementLog(result *SettlementResult) error {
	var existing models.SettlementLog
	err := database.DB.Where("period_no = ?", result.PeriodNo).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return database.DB.Create(&models.SettlementLog{
		PeriodNo:       result.PeriodNo,
		SettledCount:   int(result.SettledCount),
		WinCount:       int(result.WinCount),
		TotalWinAmount: result.TotalWinAmount,
		DurationMs:     result.DurationMs,
	}).Error
}

func loadSettlementResult(periodNo string) (*SettlementResult, error) {
	var slog models.SettlementLog
	if err := database.DB.Where("period_no = ?", periodNo).First(&slog).Error; err != nil {
		return nil, err
	}
	return &SettlementResult{
		PeriodNo:       slog.PeriodNo,
		SettledCount:   int64(slog.SettledCount),
		WinCount:       int64(slog.WinCount),
		TotalWinAmount: slog.TotalWinAmount,
		DurationMs:     slog.DurationMs,
	}, nil
}
