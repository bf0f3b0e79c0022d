package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementLog is written once per fully settled period and doubles as one
// of the idempotency signals.
type SettlementLog struct {
	gorm.Model

	PeriodNo       string          `gorm:"uniqueIndex;size:32" json:"period_no"`
	SettledCount   int             `json:"settled_count"`
	WinCount       int             `json:"win_count"`
	TotalWinAmount decimal.Decimal `gorm:"type:numeric(20,2)" json:"total_win_amount"`
	DurationMs     int64           `json:"duration_ms"`
}

// SettlementLock is the per-period mutual-exclusion row. A crashed worker's
// lock self-expires at ExpiresAt.
type SettlementLock struct {
	gorm.Model

	PeriodKey string    `gorm:"uniqueIndex;size:32" json:"period_key"`
	Owner     string    `gorm:"size:64" json:"owner"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// SettlementError is the failure-isolation sink: one row per bet or chain
// problem, the batch keeps going.
type SettlementError struct {
	gorm.Model

	PeriodNo string `gorm:"index;size:32" json:"period_no"`
	BetID    uint   `gorm:"index" json:"bet_id"`
	Kind     string `gorm:"size:32" json:"kind"`
	Reason   string `gorm:"size:255" json:"reason"`
}
