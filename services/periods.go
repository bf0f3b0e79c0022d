package services

import (
	"errors"
	"fmt"
	"time"

	"pk10/database"
	"pk10/helpers"
	"pk10/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureOpenPeriod opens the next betting round if none is open. The unique
// period number index absorbs concurrent schedulers.
func EnsureOpenPeriod(now time.Time, interval time.Duration) (*models.Period, error) {
	var open models.Period
	err := database.DB.Where("status = ?", models.PeriodOpen).First(&open).Error
	if err == nil {
		return &open, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	period := &models.Period{
		PeriodNo: helpers.FormatPeriodNo(now),
		OpenAt:   now,
		CloseAt:  now.Add(interval),
		Status:   models.PeriodOpen,
	}
	if err := database.DB.Create(period).Error; err != nil {
		return nil, err
	}
	return period, nil
}

// CloseDuePeriods draws and settles every open period past its close time.
// One bad period never blocks the rest.
func CloseDuePeriods(now time.Time) {
	var due []models.Period
	err := database.DB.
		Where("status = ? AND close_at <= ?", models.PeriodOpen, now).
		Find(&due).Error
	if err != nil {
		logStoreError("load due periods", err)
		return
	}

	for _, period := range due {
		if _, err := GenerateDrawResult(period.PeriodNo); err != nil {
			logStoreError(fmt.Sprintf("draw period %s", period.PeriodNo), err)
			continue
		}
		if _, err := SettlePeriod(period.PeriodNo); err != nil && !errors.Is(err, ErrLockHeld) {
			logStoreError(fmt.Sprintf("settle period %s", period.PeriodNo), err)
		}
	}
}

// CorrectDrawResult is the audited administrative correction path. Only a
// drawn-but-unsettled period can be corrected; the old and new permutations
// land in the audit table.
func CorrectDrawResult(periodNo string, newPositions []int, operator, reason string) error {
	if !models.ValidPermutation(newPositions) {
		return fmt.Errorf("%w: corrected positions are not a permutation of 1..10", ErrDataIntegrity)
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		var period models.Period
		if err := tx.Where("period_no = ?", periodNo).First(&period).Error; err != nil {
			return err
		}
		if period.Status != models.PeriodDrawn {
			return fmt.Errorf("period %s is %s, correction only allowed while drawn", periodNo, period.Status)
		}

		var draw models.DrawResult
		if err := tx.Where("period_no = ?", periodNo).First(&draw).Error; err != nil {
			return err
		}

		audit := &models.DrawResultAudit{
			PeriodNo:     periodNo,
			OldPositions: draw.Positions,
			NewPositions: datatypes.NewJSONSlice(newPositions),
			Operator:     operator,
			Reason:       reason,
		}
		if err := tx.Create(audit).Error; err != nil {
			return err
		}

		return tx.Model(&draw).Updates(map[string]any{
			"positions": datatypes.NewJSONSlice(newPositions),
			"source":    models.DrawSourceCorrected,
		}).Error
	})
}
