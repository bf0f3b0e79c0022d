package services

import (
	"testing"

	"pk10/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDraw = []int{7, 3, 10, 1, 5, 8, 2, 9, 4, 6}

func makeBet(betType string, position int, value string, amount, odds float64) *models.Bet {
	return &models.Bet{
		BetType:  betType,
		Position: position,
		BetValue: value,
		Amount:   decimal.NewFromFloat(amount),
		Odds:     decimal.NewFromFloat(odds),
	}
}

func TestEvaluatePositionNumber(t *testing.T) {
	// positions[0] == 7, bet 100 at 9.89 pays the full 989 (stake included).
	bet := makeBet(models.BetPositionNumber, 1, "7", 100, 9.89)

	out, err := Evaluate(bet, testDraw)
	require.NoError(t, err)
	assert.True(t, out.IsWin)
	assert.Equal(t, "989", out.Payout.String())

	lose := makeBet(models.BetPositionNumber, 1, "8", 100, 9.89)
	out, err = Evaluate(lose, testDraw)
	require.NoError(t, err)
	assert.False(t, out.IsWin)
	assert.True(t, out.Payout.IsZero())
}

func TestEvaluatePositionAttribute(t *testing.T) {
	cases := []struct {
		position int
		attr     string
		win      bool
	}{
		{1, AttrBig, true},    // 7 >= 6
		{1, AttrSmall, false}, // 7
		{1, AttrOdd, true},
		{1, AttrEven, false},
		{2, AttrSmall, true}, // 3
		{3, AttrEven, true},  // 10
	}

	for _, tc := range cases {
		bet := makeBet(models.BetPositionAttribute, tc.position, tc.attr, 50, 1.98)
		out, err := Evaluate(bet, testDraw)
		require.NoError(t, err)
		assert.Equal(t, tc.win, out.IsWin, "position %d attr %s", tc.position, tc.attr)
	}
}

func TestEvaluateDragonTiger(t *testing.T) {
	// Pair 1 vs 10: 7 vs 6, dragon wins.
	dragon := makeBet(models.BetDragonTiger, 1, SideDragon, 10, 1.98)
	out, err := Evaluate(dragon, testDraw)
	require.NoError(t, err)
	assert.True(t, out.IsWin)

	tiger := makeBet(models.BetDragonTiger, 1, SideTiger, 10, 1.98)
	out, err = Evaluate(tiger, testDraw)
	require.NoError(t, err)
	assert.False(t, out.IsWin)

	// Pair 2 vs 9: 3 vs 4, tiger wins.
	tiger2 := makeBet(models.BetDragonTiger, 2, SideTiger, 10, 1.98)
	out, err = Evaluate(tiger2, testDraw)
	require.NoError(t, err)
	assert.True(t, out.IsWin)
}

func TestEvaluateSumBets(t *testing.T) {
	// 7 + 3 = 10: small, even.
	sum := makeBet(models.BetSumValue, 0, "10", 20, 8.5)
	out, err := Evaluate(sum, testDraw)
	require.NoError(t, err)
	assert.True(t, out.IsWin)
	assert.Equal(t, "170", out.Payout.String())

	miss := makeBet(models.BetSumValue, 0, "11", 20, 8.5)
	out, err = Evaluate(miss, testDraw)
	require.NoError(t, err)
	assert.False(t, out.IsWin)

	small := makeBet(models.BetSumAttribute, 0, AttrSmall, 20, 1.98)
	out, err = Evaluate(small, testDraw)
	require.NoError(t, err)
	assert.True(t, out.IsWin)

	big := makeBet(models.BetSumAttribute, 0, AttrBig, 20, 1.98)
	out, err = Evaluate(big, testDraw)
	require.NoError(t, err)
	assert.False(t, out.IsWin)

	even := makeBet(models.BetSumAttribute, 0, AttrEven, 20, 1.98)
	out, err = Evaluate(even, testDraw)
	require.NoError(t, err)
	assert.True(t, out.IsWin)
}

func TestEvaluateMalformedBetFailsClosed(t *testing.T) {
	cases := []*models.Bet{
		makeBet(models.BetPositionNumber, 0, "7", 100, 9.89),   // position out of range
		makeBet(models.BetPositionNumber, 1, "11", 100, 9.89),  // number out of range
		makeBet(models.BetPositionNumber, 1, "abc", 100, 9.89), // not a number
		makeBet(models.BetPositionAttribute, 1, "huge", 100, 2),
		makeBet(models.BetDragonTiger, 6, SideDragon, 100, 2), // pair position past 5
		makeBet(models.BetDragonTiger, 1, "snake", 100, 2),
		makeBet(models.BetSumValue, 0, "2", 100, 2),  // below min sum
		makeBet(models.BetSumValue, 0, "20", 100, 2), // above max sum
		makeBet("mystery_type", 1, "7", 100, 2),
	}

	for _, bet := range cases {
		out, err := Evaluate(bet, testDraw)
		require.Error(t, err, "bet type %s value %q", bet.BetType, bet.BetValue)
		assert.ErrorIs(t, err, ErrDataIntegrity)
		assert.False(t, out.IsWin)
		assert.True(t, out.Payout.IsZero())
	}
}

func TestEvaluateRejectsInvalidDraw(t *testing.T) {
	bet := makeBet(models.BetPositionNumber, 1, "7", 100, 9.89)

	_, err := Evaluate(bet, []int{1, 2, 3})
	assert.ErrorIs(t, err, ErrDataIntegrity)

	_, err = Evaluate(bet, []int{7, 7, 10, 1, 5, 8, 2, 9, 4, 6})
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	bet := makeBet(models.BetPositionNumber, 1, "7", 100, 9.89)
	first, err := Evaluate(bet, testDraw)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := Evaluate(bet, testDraw)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
