package services

import (
	"fmt"

	"pk10/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditMember mutates a member balance and appends the ledger record in the
// same transaction. Amount may be negative. BalanceAfter is read back from
// the row after the update so concurrent writers can never skew the ledger.
func CreditMember(tx *gorm.DB, memberCode, trxType string, amount decimal.Decimal, periodNo, note, refID string) (*models.TransactionRecord, error) {
	var member models.Member
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_code = ?", memberCode).First(&member).Error; err != nil {
		return nil, fmt.Errorf("member %s: %w", memberCode, err)
	}

	before := member.Balance
	if err := tx.Model(&member).
		Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return nil, err
	}
	if err := tx.First(&member, member.ID).Error; err != nil {
		return nil, err
	}

	record := &models.TransactionRecord{
		UserType:      models.UserTypeMember,
		UserID:        member.ID,
		UserCode:      member.MemberCode,
		TrxType:       trxType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  member.Balance,
		PeriodNo:      periodNo,
		Note:          note,
		RefID:         refID,
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// CreditAgent is the agent-side twin of CreditMember.
func CreditAgent(tx *gorm.DB, agentCode, trxType string, amount decimal.Decimal, periodNo, note, refID string) (*models.TransactionRecord, error) {
	var agent models.Agent
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("agent_code = ?", agentCode).First(&agent).Error; err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentCode, err)
	}

	before := agent.Balance
	if err := tx.Model(&agent).
		Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
		return nil, err
	}
	if err := tx.First(&agent, agent.ID).Error; err != nil {
		return nil, err
	}

	record := &models.TransactionRecord{
		UserType:      models.UserTypeAgent,
		UserID:        agent.ID,
		UserCode:      agent.AgentCode,
		TrxType:       trxType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  agent.Balance,
		PeriodNo:      periodNo,
		Note:          note,
		RefID:         refID,
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
