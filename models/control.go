package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ControlTargetMember     = "single_member"
	ControlTargetAgentChain = "agent_chain"

	ControlOutcomeWin  = "win"
	ControlOutcomeLose = "lose"
)

// WinLossControlConfig biases draw generation toward a desired outcome for a
// member or an agent subtree. ControlPercentage is the probability the bias
// is applied at all for a given period.
type WinLossControlConfig struct {
	gorm.Model

	TargetType        string          `gorm:"size:16" json:"target_type"`
	TargetCode        string          `gorm:"index;size:32" json:"target_code"`
	ControlPercentage decimal.Decimal `gorm:"type:numeric(10,6)" json:"control_percentage"`
	Outcome           string          `gorm:"size:8" json:"outcome"`
	StartPeriod       string          `gorm:"size:32" json:"start_period"`
	IsActive          bool            `gorm:"index;default:true" json:"is_active"`
}
