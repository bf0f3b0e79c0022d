package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	UserTypeMember = "member"
	UserTypeAgent  = "agent"

	TrxWin        = "win"
	TrxRebate     = "rebate"
	TrxAdjustment = "adjustment"
	TrxRefund     = "refund"
)

// TransactionRecord is the append-only ledger. It commits in the same
// transaction as the balance row it documents, and BalanceAfter is always the
// value read back from that row.
type TransactionRecord struct {
	gorm.Model

	UserType string `gorm:"index:idx_user;size:16" json:"user_type"`
	UserID   uint   `gorm:"index:idx_user" json:"user_id"`
	UserCode string `gorm:"index;size:32" json:"user_code"`

	TrxType string          `gorm:"index;size:16" json:"trx_type"`
	Amount  decimal.Decimal `gorm:"type:numeric(20,2)" json:"amount"`

	BalanceBefore decimal.Decimal `gorm:"type:numeric(20,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(20,2)" json:"balance_after"`

	PeriodNo string `gorm:"index;size:32" json:"period_no"`
	Note     string `gorm:"size:255" json:"note"`
	RefID    string `gorm:"size:64;index" json:"ref_id"`
}
