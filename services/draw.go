package services

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"sort"
	"time"

	"pk10/database"
	"pk10/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// candidateSamples bounds the whole-permutation scoring fallback used when
	// the target carries cross-position exposure.
	candidateSamples = 256

	// biasStrength scales the per-position weight skew. Chosen so a dominant
	// number is roughly e^2 more (or less) likely than a neutral one.
	biasStrength = 2.0

	biasBudget = 500 * time.Millisecond
)

// GenerateDrawResult produces and persists the period's permutation. An
// existing draw wins (idempotent); the period moves to drawn. Bias failures of
// any kind fall back to an unbiased permutation - generation never fails
// closed on a bad control config.
func GenerateDrawResult(periodNo string) (*models.DrawResult, error) {
	var existing models.DrawResult
	err := database.DB.Where("period_no = ?", periodNo).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	positions, source := generatePositions(rng, periodNo)

	draw := &models.DrawResult{
		PeriodNo:  periodNo,
		Positions: datatypes.NewJSONSlice(positions),
		Source:    source,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(draw).Error; err != nil {
			return err
		}
		return tx.Model(&models.Period{}).
			Where("period_no = ? AND status = ?", periodNo, models.PeriodOpen).
			Update("status", models.PeriodDrawn).Error
	})
	if err != nil {
		return nil, err
	}
	return draw, nil
}

func generatePositions(rng *rand.Rand, periodNo string) (positions []int, source string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ draw bias panicked for period %s: %v, falling back to uniform", periodNo, r)
			positions, source = UniformPermutation(rng), models.DrawSourceRandom
		}
	}()

	configs, err := ActiveControlConfigs(periodNo)
	if err != nil {
		log.Printf("⚠️  failed to load control configs for period %s: %v", periodNo, err)
		return UniformPermutation(rng), models.DrawSourceRandom
	}

	for i := range configs {
		cfg := &configs[i]

		scope, err := ResolveControlScope(cfg)
		if err != nil || len(scope) == 0 {
			continue
		}

		var bets []models.Bet
		err = database.DB.
			Where("period_no = ? AND settled = ? AND member_code IN ?", periodNo, false, scope).
			Find(&bets).Error
		if err != nil {
			continue
		}

		exp := BuildExposure(bets)
		if !exp.HasExposure() {
			continue
		}

		// ControlPercentage is the probability the bias kicks in at all; the
		// rest of the time the target sees a fair draw.
		if rng.Float64() >= cfg.ControlPercentage.InexactFloat64() {
			return UniformPermutation(rng), models.DrawSourceRandom
		}

		return BiasedPermutation(rng, exp, cfg.Outcome), models.DrawSourceControlled
	}

	return UniformPermutation(rng), models.DrawSourceRandom
}

// UniformPermutation returns an unbiased permutation of 1..10.
func UniformPermutation(rng *rand.Rand) []int {
	positions := make([]int, 10)
	for i := range positions {
		positions[i] = i + 1
	}
	rng.Shuffle(10, func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	return positions
}

// BiasedPermutation skews the draw toward the desired outcome for the
// target's exposure while keeping the permutation invariant exact. Pure
// independent exposure uses a weighted without-replacement draw per position;
// any cross-position exposure switches to scored candidate sampling.
func BiasedPermutation(rng *rand.Rand, exp *ExposureSummary, outcome string) []int {
	if exp.hasCrossExposure() {
		return bestOfCandidates(rng, exp, outcome)
	}
	return weightedShuffle(rng, exp, outcome)
}

// weightedShuffle fills the heaviest positions first so the bias lands where
// the money is, sampling each number without replacement.
func weightedShuffle(rng *rand.Rand, exp *ExposureSummary, outcome string) []int {
	order := make([]int, 10)
	for i := range order {
		order[i] = i + 1
	}
	sort.SliceStable(order, func(i, j int) bool {
		return exp.positionWeight(order[i]).GreaterThan(exp.positionWeight(order[j]))
	})

	positions := make([]int, 10)
	used := [11]bool{}

	for _, p := range order {
		var candidates []int
		var weights []float64
		maxPayout := 0.0
		for n := 1; n <= 10; n++ {
			if used[n] {
				continue
			}
			candidates = append(candidates, n)
			payout := exp.PayoutAt(p, n).InexactFloat64()
			weights = append(weights, payout)
			if payout > maxPayout {
				maxPayout = payout
			}
		}

		sign := -biasStrength
		if outcome == models.ControlOutcomeWin {
			sign = biasStrength
		}
		for i, payout := range weights {
			if maxPayout > 0 {
				weights[i] = math.Exp(sign * payout / maxPayout)
			} else {
				weights[i] = 1
			}
		}

		pick := candidates[weightedPick(rng, weights)]
		positions[p-1] = pick
		used[pick] = true
	}

	return positions
}

// bestOfCandidates scores uniform candidates by the target's net result and
// keeps the best (win) or worst (lose) one found within the time budget.
func bestOfCandidates(rng *rand.Rand, exp *ExposureSummary, outcome string) []int {
	deadline := time.Now().Add(biasBudget)

	best := UniformPermutation(rng)
	bestScore := exp.Score(best)

	for i := 1; i < candidateSamples; i++ {
		if time.Now().After(deadline) {
			break
		}
		candidate := UniformPermutation(rng)
		score := exp.Score(candidate)

		better := score.GreaterThan(bestScore)
		if outcome == models.ControlOutcomeLose {
			better = score.LessThan(bestScore)
		}
		if better {
			best, bestScore = candidate, score
		}
	}

	return best
}

func weightedPick(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	target := rng.Float64() * total
	for i, w := range weights {
		target -= w
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}
