package services

import (
	"testing"

	"pk10/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainAgent(code string, pct float64) models.Agent {
	return models.Agent{
		AgentCode:           code,
		RebateMode:          models.RebateModePercentage,
		RebatePercentage:    decimal.NewFromFloat(pct),
		MaxRebatePercentage: decimal.NewFromFloat(0.041),
	}
}

func TestPlanRebateMarketA(t *testing.T) {
	// stake=1000, cap=1.1%: agentX(0.5%) takes 5.00, agentY(1.1%) takes the
	// remaining 6.00 and drains the pool.
	stake := decimal.NewFromInt(1000)
	cap := decimal.NewFromFloat(0.011)
	chain := []models.Agent{chainAgent("agentX", 0.005), chainAgent("agentY", 0.011)}

	shares, platform := PlanRebate(stake, cap, chain)
	require.Len(t, shares, 2)

	assert.Equal(t, "agentX", shares[0].AgentCode)
	assert.Equal(t, "5", shares[0].Amount.String())
	assert.Equal(t, "agentY", shares[1].AgentCode)
	assert.Equal(t, "6", shares[1].Amount.String())
	assert.True(t, platform.IsZero())
}

func TestPlanRebateMarketD(t *testing.T) {
	// stake=1000, cap=4.1%: agentX(2%) takes 20.00, agentY(4.1%) gets the
	// effective 2.1% = 21.00.
	stake := decimal.NewFromInt(1000)
	cap := decimal.NewFromFloat(0.041)
	chain := []models.Agent{chainAgent("agentX", 0.02), chainAgent("agentY", 0.041)}

	shares, platform := PlanRebate(stake, cap, chain)
	require.Len(t, shares, 2)

	assert.Equal(t, "20", shares[0].Amount.String())
	assert.Equal(t, "21", shares[1].Amount.String())
	assert.Equal(t, "0.021", shares[1].Percentage.String())
	assert.True(t, platform.IsZero())
}

func TestPlanRebateRemainderStaysWithPlatform(t *testing.T) {
	stake := decimal.NewFromInt(1000)
	cap := decimal.NewFromFloat(0.041)
	chain := []models.Agent{chainAgent("agentX", 0.01), chainAgent("agentY", 0.015)}

	shares, platform := PlanRebate(stake, cap, chain)
	require.Len(t, shares, 2)

	assert.Equal(t, "10", shares[0].Amount.String())
	assert.Equal(t, "5", shares[1].Amount.String())
	assert.Equal(t, "26", platform.String())
}

func TestPlanRebateAbsorbedShareGetsNothing(t *testing.T) {
	// Parent configured below its child: the child already absorbed the whole
	// configured share.
	stake := decimal.NewFromInt(1000)
	cap := decimal.NewFromFloat(0.041)
	chain := []models.Agent{chainAgent("child", 0.02), chainAgent("parent", 0.01), chainAgent("root", 0.03)}

	shares, _ := PlanRebate(stake, cap, chain)
	require.Len(t, shares, 2)
	assert.Equal(t, "child", shares[0].AgentCode)
	assert.Equal(t, "root", shares[1].AgentCode)
	assert.Equal(t, "10", shares[1].Amount.String()) // 3% - 2% absorbed
}

func TestPlanRebateNeverExceedsCap(t *testing.T) {
	stake := decimal.NewFromInt(1000)
	cap := decimal.NewFromFloat(0.011)
	pool := stake.Mul(cap)

	chains := [][]models.Agent{
		{chainAgent("a", 0.011), chainAgent("b", 0.041)},
		{chainAgent("a", 0.005), chainAgent("b", 0.007), chainAgent("c", 0.041)},
		{chainAgent("a", 0.003)},
		{},
	}

	for _, chain := range chains {
		shares, platform := PlanRebate(stake, cap, chain)

		total := platform
		for _, share := range shares {
			total = total.Add(share.Amount)
		}
		assert.True(t, total.Equal(pool.Round(2)), "distributed+platform %s != pool %s", total, pool)
	}
}

func TestPlanRebateFullPoolStopsWalk(t *testing.T) {
	// An agent at the cap claims everything; ancestors above it see nothing.
	stake := decimal.NewFromInt(1000)
	cap := decimal.NewFromFloat(0.011)
	chain := []models.Agent{chainAgent("direct", 0.011), chainAgent("above", 0.011)}

	shares, platform := PlanRebate(stake, cap, chain)
	require.Len(t, shares, 1)
	assert.Equal(t, "direct", shares[0].AgentCode)
	assert.Equal(t, "11", shares[0].Amount.String())
	assert.True(t, platform.IsZero())
}

func TestSummarizePlansCoversEveryMemberChain(t *testing.T) {
	// Two members, partially overlapping chains: the period summary must
	// carry every chain's shares and the summed platform remainder, since
	// all of it is applied as one unit.
	stake1 := decimal.NewFromInt(1000)
	stake2 := decimal.NewFromInt(500)
	cap := decimal.NewFromFloat(0.041)

	shares1, rem1 := PlanRebate(stake1, cap, []models.Agent{chainAgent("agentX", 0.02), chainAgent("agentY", 0.041)})
	shares2, rem2 := PlanRebate(stake2, cap, []models.Agent{chainAgent("agentZ", 0.01), chainAgent("agentY", 0.015)})

	summary := summarizePlans("202609011205", []memberRebatePlan{
		{MemberCode: "m1", Shares: shares1, Remainder: rem1},
		{MemberCode: "m2", Shares: shares2, Remainder: rem2},
	})

	require.Len(t, summary.PerAgentAmount, 3)
	assert.Equal(t, "20", summary.PerAgentAmount["agentX"].String())
	assert.Equal(t, "5", summary.PerAgentAmount["agentZ"].String())
	// agentY collects from both chains: 21.00 + (1.5% - 1%) of 500 = 2.50.
	assert.Equal(t, "23.5", summary.PerAgentAmount["agentY"].String())
	// Chain 2 never reached the cap: 500*0.041 - 5 - 2.50 = 13.00 remains.
	assert.Equal(t, "13", summary.PlatformAmount.String())

	// Paid plus platform equals the sum of both pools.
	total := summary.PlatformAmount
	for _, amount := range summary.PerAgentAmount {
		total = total.Add(amount)
	}
	assert.Equal(t, "61.5", total.String())
}

func TestResolvedRebatePercentage(t *testing.T) {
	agent := chainAgent("a", 0.02)

	agent.RebateMode = models.RebateModeNone
	assert.True(t, agent.ResolvedRebatePercentage().IsZero())

	agent.RebateMode = models.RebateModeAll
	assert.Equal(t, "0.041", agent.ResolvedRebatePercentage().String())

	agent.RebateMode = models.RebateModePercentage
	assert.Equal(t, "0.02", agent.ResolvedRebatePercentage().String())

	// Configured above the max clamps down.
	agent.RebatePercentage = decimal.NewFromFloat(0.09)
	assert.Equal(t, "0.041", agent.ResolvedRebatePercentage().String())
}
