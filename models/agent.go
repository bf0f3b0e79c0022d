package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RebateModeAll        = "all"
	RebateModeNone       = "none"
	RebateModePercentage = "percentage"
)

// Agent is one node of the reseller tree. ParentCode is nil for the root.
type Agent struct {
	gorm.Model

	AgentCode  string  `gorm:"uniqueIndex;size:32" json:"agent_code"`
	ParentCode *string `gorm:"index;size:32" json:"parent_code"`
	Level      int     `json:"level"`

	RebateMode          string          `gorm:"size:16;default:percentage" json:"rebate_mode"`
	RebatePercentage    decimal.Decimal `gorm:"type:numeric(10,6)" json:"rebate_percentage"`
	MaxRebatePercentage decimal.Decimal `gorm:"type:numeric(10,6)" json:"max_rebate_percentage"`

	MarketType string          `gorm:"size:8" json:"market_type"`
	Balance    decimal.Decimal `gorm:"type:numeric(20,2)" json:"balance"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
}

// ResolvedRebatePercentage maps the configured rebate mode to the numeric
// percentage the distributor consumes. Distribution itself never looks at the
// mode.
func (a *Agent) ResolvedRebatePercentage() decimal.Decimal {
	switch a.RebateMode {
	case RebateModeNone:
		return decimal.Zero
	case RebateModeAll:
		return a.MaxRebatePercentage
	default:
		if a.RebatePercentage.GreaterThan(a.MaxRebatePercentage) {
			return a.MaxRebatePercentage
		}
		return a.RebatePercentage
	}
}
