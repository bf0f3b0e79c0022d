package services

import (
	"errors"
	"fmt"
	"log"

	"pk10/database"
	"pk10/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RebateShare is one agent's cut of a chain's pool.
type RebateShare struct {
	AgentCode  string
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

// RebateSummary reports what a period paid per agent.
type RebateSummary struct {
	PeriodNo       string                     `json:"period_no"`
	PerAgentAmount map[string]decimal.Decimal `json:"per_agent_amount"`
	PlatformAmount decimal.Decimal            `json:"platform_amount"`
}

// memberRebatePlan is one member chain's planned payout, built before
// anything is applied.
type memberRebatePlan struct {
	MemberCode string
	Shares     []RebateShare
	Remainder  decimal.Decimal
}

type memberStake struct {
	MemberCode string
	Stake      decimal.Decimal
}

// PlanRebate allocates the capped pool (stake x marketCap) across an agent
// chain ordered direct-agent first. Configured percentages compete: each
// agent only collects what its descendants have not already absorbed, and an
// agent at or above the cap takes the rest of the pool. Whatever survives the
// walk stays with the platform.
func PlanRebate(stake, marketCap decimal.Decimal, chain []models.Agent) ([]RebateShare, decimal.Decimal) {
	remainingPool := stake.Mul(marketCap).Round(2)
	distributed := decimal.Zero

	var shares []RebateShare
	for i := range chain {
		agent := &chain[i]
		pct := agent.ResolvedRebatePercentage()

		effective := pct.Sub(distributed)
		if !effective.IsPositive() {
			// Share already absorbed by a descendant.
			continue
		}

		amount := stake.Mul(effective).Round(2)
		if amount.GreaterThan(remainingPool) {
			amount = remainingPool
		}
		if amount.IsPositive() {
			shares = append(shares, RebateShare{
				AgentCode:  agent.AgentCode,
				Percentage: effective,
				Amount:     amount,
			})
			remainingPool = remainingPool.Sub(amount)
		}
		distributed = distributed.Add(effective)

		if pct.GreaterThanOrEqual(marketCap) {
			break
		}
	}

	return shares, remainingPool
}

// loadAgentChain walks from a member's direct agent to the root. A missing
// parent truncates the chain and reports ErrHierarchy alongside what was
// collected, so distribution can proceed on the intact prefix.
func loadAgentChain(agentCode string) ([]models.Agent, error) {
	var chain []models.Agent
	code := agentCode
	for code != "" {
		var agent models.Agent
		if err := database.DB.Where("agent_code = ?", code).First(&agent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return chain, fmt.Errorf("%w: agent %s not found", ErrHierarchy, code)
			}
			return chain, err
		}
		chain = append(chain, agent)
		if agent.ParentCode == nil {
			return chain, nil
		}
		code = *agent.ParentCode
	}
	return chain, nil
}

// periodMemberStakes groups the period's total stake per member. Rebate is
// computed on total stake, win or lose.
func periodMemberStakes(periodNo string) ([]memberStake, error) {
	var stakes []memberStake
	err := database.DB.Model(&models.Bet{}).
		Select("member_code, SUM(amount) AS stake").
		Where("period_no = ?", periodNo).
		Group("member_code").
		Scan(&stakes).Error
	return stakes, err
}

// DistributeForPeriod pays the period's rebates, exactly once. Existing
// rebate records for the period make it a no-op - the same guard the
// settlement idempotency check relies on. Every chain's plan is built first
// and applied in a single transaction, so a crash mid-distribution can never
// leave a partially paid period behind for that guard to misread.
func DistributeForPeriod(periodNo string) (*RebateSummary, error) {
	var existing int64
	err := database.DB.Model(&models.TransactionRecord{}).
		Where("period_no = ? AND trx_type = ?", periodNo, models.TrxRebate).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		log.Printf("⚠️  rebates already distributed for period %s, skipping", periodNo)
		return LoadRebateSummary(periodNo)
	}

	stakes, err := periodMemberStakes(periodNo)
	if err != nil {
		return nil, err
	}

	var plans []memberRebatePlan
	for _, ms := range stakes {
		var member models.Member
		if err := database.DB.Where("member_code = ?", ms.MemberCode).First(&member).Error; err != nil {
			recordSettlementError(periodNo, 0, "hierarchy", fmt.Sprintf("member %s not found", ms.MemberCode))
			continue
		}

		marketCap, err := MarketCap(member.MarketType)
		if err != nil {
			recordSettlementError(periodNo, 0, "config", err.Error())
			continue
		}

		chain, chainErr := loadAgentChain(member.AgentCode)
		if chainErr != nil && !errors.Is(chainErr, ErrHierarchy) {
			return nil, chainErr
		}
		if chainErr != nil {
			// Truncated walk: pay the intact prefix, the rest stays with the
			// platform.
			recordSettlementError(periodNo, 0, "hierarchy", chainErr.Error())
		}

		shares, remainder := PlanRebate(ms.Stake, marketCap, chain)
		plans = append(plans, memberRebatePlan{
			MemberCode: ms.MemberCode,
			Shares:     shares,
			Remainder:  remainder,
		})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, plan := range plans {
			refID := uuid.New().String()
			for _, share := range plan.Shares {
				note := fmt.Sprintf("Rebate period %s member %s", periodNo, plan.MemberCode)
				if _, err := CreditAgent(tx, share.AgentCode, models.TrxRebate, share.Amount, periodNo, note, refID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summarizePlans(periodNo, plans), nil
}

// summarizePlans folds the per-member plans into the period summary.
func summarizePlans(periodNo string, plans []memberRebatePlan) *RebateSummary {
	summary := &RebateSummary{
		PeriodNo:       periodNo,
		PerAgentAmount: make(map[string]decimal.Decimal),
		PlatformAmount: decimal.Zero,
	}
	for _, plan := range plans {
		summary.PlatformAmount = summary.PlatformAmount.Add(plan.Remainder)
		for _, share := range plan.Shares {
			summary.PerAgentAmount[share.AgentCode] = summary.PerAgentAmount[share.AgentCode].Add(share.Amount)
		}
	}
	return summary
}

// LoadRebateSummary rebuilds the summary from the ledger, for repeat calls
// and the reporting endpoint. The platform remainder is recomputed as the
// period's total pools minus what the ledger shows paid, so repeat calls
// report the same figure as the original distribution.
func LoadRebateSummary(periodNo string) (*RebateSummary, error) {
	var records []models.TransactionRecord
	err := database.DB.
		Where("period_no = ? AND trx_type = ?", periodNo, models.TrxRebate).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	summary := &RebateSummary{
		PeriodNo:       periodNo,
		PerAgentAmount: make(map[string]decimal.Decimal),
		PlatformAmount: decimal.Zero,
	}
	totalPaid := decimal.Zero
	for _, record := range records {
		summary.PerAgentAmount[record.UserCode] = summary.PerAgentAmount[record.UserCode].Add(record.Amount)
		totalPaid = totalPaid.Add(record.Amount)
	}

	stakes, err := periodMemberStakes(periodNo)
	if err != nil {
		return nil, err
	}
	pools := decimal.Zero
	for _, ms := range stakes {
		var member models.Member
		if err := database.DB.Where("member_code = ?", ms.MemberCode).First(&member).Error; err != nil {
			continue
		}
		marketCap, err := MarketCap(member.MarketType)
		if err != nil {
			continue
		}
		pools = pools.Add(ms.Stake.Mul(marketCap).Round(2))
	}

	summary.PlatformAmount = pools.Sub(totalPaid)
	return summary, nil
}

func recordSettlementError(periodNo string, betID uint, kind, reason string) {
	if len(reason) > 255 {
		reason = reason[:255]
	}
	if err := database.DB.Create(&models.SettlementError{
		PeriodNo: periodNo,
		BetID:    betID,
		Kind:     kind,
		Reason:   reason,
	}).Error; err != nil {
		log.Printf("❌ failed to record settlement error for period %s: %v", periodNo, err)
	}
}
