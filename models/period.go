package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PeriodOpen             = "open"
	PeriodDrawn            = "drawn"
	PeriodSettling         = "settling"
	PeriodSettled          = "settled"
	PeriodSettlementFailed = "settlement_failed"
	PeriodVoided           = "voided"
)

type Period struct {
	gorm.Model

	PeriodNo string    `gorm:"uniqueIndex;size:32" json:"period_no"`
	OpenAt   time.Time `json:"open_at"`
	CloseAt  time.Time `gorm:"index" json:"close_at"`
	Status   string    `gorm:"index;size:32;default:open" json:"status"`
}

// Settleable reports whether the period may enter (or re-enter) settlement.
func (p *Period) Settleable() bool {
	switch p.Status {
	case PeriodDrawn, PeriodSettling, PeriodSettlementFailed:
		return true
	}
	return false
}
