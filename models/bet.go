package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BetPositionNumber    = "position_number"
	BetPositionAttribute = "position_attribute"
	BetDragonTiger       = "dragon_tiger"
	BetSumValue          = "sum_value"
	BetSumAttribute      = "sum_attribute"
)

// Bet is written by the bet-placement layer before period close and mutated
// exactly once by settlement (Settled, Win, WinAmount).
type Bet struct {
	gorm.Model

	PeriodNo   string `gorm:"index:idx_period_settled;size:32" json:"period_no"`
	MemberCode string `gorm:"index;size:32" json:"member_code"`

	BetType  string `gorm:"size:32" json:"bet_type"`
	Position int    `json:"position"`
	BetValue string `gorm:"size:16" json:"bet_value"`

	Amount decimal.Decimal `gorm:"type:numeric(20,2)" json:"amount"`
	Odds   decimal.Decimal `gorm:"type:numeric(10,4)" json:"odds"`

	Settled   bool            `gorm:"index:idx_period_settled;default:false" json:"settled"`
	Win       bool            `gorm:"default:false" json:"win"`
	WinAmount decimal.Decimal `gorm:"type:numeric(20,2)" json:"win_amount"`
}
