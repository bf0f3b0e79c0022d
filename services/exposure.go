package services

import (
	"pk10/models"

	"github.com/shopspring/decimal"
)

// ExposureSummary captures how much a control target collects for each draw
// outcome: a per-position per-number payout grid for independent wagers, plus
// the cross-position wagers (dragon-tiger, sums) that need whole-permutation
// scoring.
type ExposureSummary struct {
	TotalStake decimal.Decimal

	// positionPayout[p][n] is the payout collected if number n+1 lands at
	// position p+1.
	positionPayout [10][10]decimal.Decimal

	crossBets []models.Bet
}

// BuildExposure folds the target's bets into a summary. Malformed bets are
// skipped here; settlement fails them closed on its own pass.
func BuildExposure(bets []models.Bet) *ExposureSummary {
	exp := &ExposureSummary{TotalStake: decimal.Zero}

	for _, bet := range bets {
		wager, err := ParseWager(&bet)
		if err != nil {
			continue
		}
		exp.TotalStake = exp.TotalStake.Add(bet.Amount)
		payout := bet.Amount.Mul(bet.Odds)

		switch w := wager.(type) {
		case PositionNumber:
			exp.positionPayout[w.Position-1][w.Number-1] =
				exp.positionPayout[w.Position-1][w.Number-1].Add(payout)
		case PositionAttribute:
			for n := 1; n <= 10; n++ {
				if matchAttr(w.Attr, n, 6) {
					exp.positionPayout[w.Position-1][n-1] =
						exp.positionPayout[w.Position-1][n-1].Add(payout)
				}
			}
		default:
			exp.crossBets = append(exp.crossBets, bet)
		}
	}

	return exp
}

// HasExposure reports whether the target has any stake this period. A
// zero-exposure target is a no-op for draw control.
func (e *ExposureSummary) HasExposure() bool {
	return e.TotalStake.IsPositive()
}

func (e *ExposureSummary) hasCrossExposure() bool {
	return len(e.crossBets) > 0
}

// PayoutAt returns the independent-wager payout for number n at position p
// (both 1-based).
func (e *ExposureSummary) PayoutAt(p, n int) decimal.Decimal {
	return e.positionPayout[p-1][n-1]
}

// positionWeight is the total payout riding on a position, used to bias the
// heaviest positions first.
func (e *ExposureSummary) positionWeight(p int) decimal.Decimal {
	total := decimal.Zero
	for n := 1; n <= 10; n++ {
		total = total.Add(e.positionPayout[p-1][n-1])
	}
	return total
}

// Score is the target's net result for a candidate permutation: every payout
// it would collect minus its total stake.
func (e *ExposureSummary) Score(positions []int) decimal.Decimal {
	score := decimal.Zero
	for p := 1; p <= 10; p++ {
		score = score.Add(e.positionPayout[p-1][positions[p-1]-1])
	}
	for _, bet := range e.crossBets {
		out, err := Evaluate(&bet, positions)
		if err == nil && out.IsWin {
			score = score.Add(out.Payout)
		}
	}
	return score.Sub(e.TotalStake)
}
