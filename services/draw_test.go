package services

import (
	"math/rand"
	"testing"

	"pk10/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformPermutationIsValid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		assert.True(t, models.ValidPermutation(UniformPermutation(rng)))
	}
}

func TestUniformPermutationFrequency(t *testing.T) {
	// 10,000 unbiased draws: every number should land in every position with
	// frequency 1/10, within two percentage points.
	rng := rand.New(rand.NewSource(42))

	var counts [10][10]int
	draws := 10000
	for i := 0; i < draws; i++ {
		positions := UniformPermutation(rng)
		for p, n := range positions {
			counts[p][n-1]++
		}
	}

	low := int(float64(draws) * 0.08)
	high := int(float64(draws) * 0.12)
	for p := 0; p < 10; p++ {
		for n := 0; n < 10; n++ {
			assert.GreaterOrEqual(t, counts[p][n], low, "position %d number %d", p+1, n+1)
			assert.LessOrEqual(t, counts[p][n], high, "position %d number %d", p+1, n+1)
		}
	}
}

func singleNumberExposure(position int, number string) *ExposureSummary {
	return BuildExposure([]models.Bet{{
		BetType:  models.BetPositionNumber,
		Position: position,
		BetValue: number,
		Amount:   decimal.NewFromInt(100),
		Odds:     decimal.NewFromFloat(9.89),
	}})
}

func TestWeightedShufflePermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	exp := singleNumberExposure(1, "7")

	for i := 0; i < 1000; i++ {
		assert.True(t, models.ValidPermutation(BiasedPermutation(rng, exp, models.ControlOutcomeWin)))
		assert.True(t, models.ValidPermutation(BiasedPermutation(rng, exp, models.ControlOutcomeLose)))
	}
}

func TestBiasShiftsHitFrequency(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	exp := singleNumberExposure(1, "7")

	trials := 2000
	winHits, loseHits := 0, 0
	for i := 0; i < trials; i++ {
		if BiasedPermutation(rng, exp, models.ControlOutcomeWin)[0] == 7 {
			winHits++
		}
		if BiasedPermutation(rng, exp, models.ControlOutcomeLose)[0] == 7 {
			loseHits++
		}
	}

	// Uniform would hit 7 at position 1 about 10% of the time. The win bias
	// should push the target's number well above that, the lose bias well
	// below.
	assert.Greater(t, float64(winHits)/float64(trials), 0.2)
	assert.Less(t, float64(loseHits)/float64(trials), 0.05)
}

func TestCandidateSamplingHandlesCrossExposure(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	exp := BuildExposure([]models.Bet{{
		BetType:  models.BetSumAttribute,
		BetValue: AttrBig,
		Amount:   decimal.NewFromInt(500),
		Odds:     decimal.NewFromFloat(1.98),
	}})
	require.True(t, exp.hasCrossExposure())

	for i := 0; i < 50; i++ {
		positions := BiasedPermutation(rng, exp, models.ControlOutcomeWin)
		require.True(t, models.ValidPermutation(positions))
		// With 256 scored candidates a winning sum (>= 12) is always found.
		assert.GreaterOrEqual(t, positions[0]+positions[1], 12)
	}

	for i := 0; i < 50; i++ {
		positions := BiasedPermutation(rng, exp, models.ControlOutcomeLose)
		require.True(t, models.ValidPermutation(positions))
		assert.Less(t, positions[0]+positions[1], 12)
	}
}

func TestExposureScore(t *testing.T) {
	exp := singleNumberExposure(1, "7")
	require.True(t, exp.HasExposure())

	win := []int{7, 3, 10, 1, 5, 8, 2, 9, 4, 6}
	lose := []int{6, 3, 10, 1, 5, 8, 2, 9, 4, 7}

	// Net result: payout 989 minus the 100 stake on a hit, -100 on a miss.
	assert.Equal(t, "889", exp.Score(win).String())
	assert.Equal(t, "-100", exp.Score(lose).String())
}

func TestExposureSkipsMalformedBets(t *testing.T) {
	exp := BuildExposure([]models.Bet{{
		BetType:  models.BetPositionNumber,
		Position: 99,
		BetValue: "7",
		Amount:   decimal.NewFromInt(100),
		Odds:     decimal.NewFromFloat(9.89),
	}})
	assert.False(t, exp.HasExposure())
}

func TestExposureAttributeSpreadsAcrossNumbers(t *testing.T) {
	exp := BuildExposure([]models.Bet{{
		BetType:  models.BetPositionAttribute,
		Position: 2,
		BetValue: AttrBig,
		Amount:   decimal.NewFromInt(50),
		Odds:     decimal.NewFromFloat(1.98),
	}})

	payout := decimal.NewFromInt(50).Mul(decimal.NewFromFloat(1.98))
	for n := 6; n <= 10; n++ {
		assert.True(t, exp.PayoutAt(2, n).Equal(payout), "number %d", n)
	}
	for n := 1; n <= 5; n++ {
		assert.True(t, exp.PayoutAt(2, n).IsZero(), "number %d", n)
	}
}
