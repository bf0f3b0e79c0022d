package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Member struct {
	gorm.Model

	MemberCode string          `gorm:"uniqueIndex;size:32" json:"member_code"`
	AgentCode  string          `gorm:"index;size:32" json:"agent_code"`
	MarketType string          `gorm:"size:8" json:"market_type"`
	Balance    decimal.Decimal `gorm:"type:numeric(20,2)" json:"balance"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
}
