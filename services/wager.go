package services

import (
	"fmt"
	"strconv"

	"pk10/models"

	"github.com/shopspring/decimal"
)

const (
	AttrBig   = "big"
	AttrSmall = "small"
	AttrOdd   = "odd"
	AttrEven  = "even"

	SideDragon = "dragon"
	SideTiger  = "tiger"
)

// Outcome is the result of evaluating one bet against a draw.
type Outcome struct {
	IsWin  bool
	Payout decimal.Decimal
}

// Wager is the parsed form of a bet. One concrete type per bet type so that
// dispatch is on the variant, not on raw strings.
type Wager interface {
	// Matches reports whether the wager wins against a valid permutation.
	Matches(positions []int) bool
}

// PositionNumber wins iff the exact number lands at the position.
type PositionNumber struct {
	Position int
	Number   int
}

func (w PositionNumber) Matches(positions []int) bool {
	return positions[w.Position-1] == w.Number
}

// PositionAttribute wins on big/small/odd/even of the number at the position.
// Big is 6..10, small is 1..5.
type PositionAttribute struct {
	Position int
	Attr     string
}

func (w PositionAttribute) Matches(positions []int) bool {
	return matchAttr(w.Attr, positions[w.Position-1], 6)
}

// DragonTiger compares the number at a position against its mirror position
// (1 vs 10, 2 vs 9, ...). The larger number wins the dragon side.
type DragonTiger struct {
	Position int
	Side     string
}

func (w DragonTiger) Matches(positions []int) bool {
	dragon := positions[w.Position-1]
	tiger := positions[10-w.Position]
	if w.Side == SideDragon {
		return dragon > tiger
	}
	return tiger > dragon
}

// SumValue wins iff the first two positions sum to the exact value (3..19).
type SumValue struct {
	Value int
}

func (w SumValue) Matches(positions []int) bool {
	return positions[0]+positions[1] == w.Value
}

// SumAttribute wins on big/small/odd/even of the first-two sum. Big is >= 12.
type SumAttribute struct {
	Attr string
}

func (w SumAttribute) Matches(positions []int) bool {
	return matchAttr(w.Attr, positions[0]+positions[1], 12)
}

func matchAttr(attr string, n, bigFrom int) bool {
	switch attr {
	case AttrBig:
		return n >= bigFrom
	case AttrSmall:
		return n < bigFrom
	case AttrOdd:
		return n%2 == 1
	case AttrEven:
		return n%2 == 0
	}
	return false
}

func validAttr(attr string) bool {
	switch attr {
	case AttrBig, AttrSmall, AttrOdd, AttrEven:
		return true
	}
	return false
}

// ParseWager validates a bet's type-specific fields and returns the variant.
// Malformed fields fail here, never inside Matches.
func ParseWager(bet *models.Bet) (Wager, error) {
	switch bet.BetType {
	case models.BetPositionNumber:
		n, err := strconv.Atoi(bet.BetValue)
		if err != nil || n < 1 || n > 10 {
			return nil, fmt.Errorf("%w: bet %d: bad number %q", ErrDataIntegrity, bet.ID, bet.BetValue)
		}
		if bet.Position < 1 || bet.Position > 10 {
			return nil, fmt.Errorf("%w: bet %d: bad position %d", ErrDataIntegrity, bet.ID, bet.Position)
		}
		return PositionNumber{Position: bet.Position, Number: n}, nil

	case models.BetPositionAttribute:
		if bet.Position < 1 || bet.Position > 10 {
			return nil, fmt.Errorf("%w: bet %d: bad position %d", ErrDataIntegrity, bet.ID, bet.Position)
		}
		if !validAttr(bet.BetValue) {
			return nil, fmt.Errorf("%w: bet %d: bad attribute %q", ErrDataIntegrity, bet.ID, bet.BetValue)
		}
		return PositionAttribute{Position: bet.Position, Attr: bet.BetValue}, nil

	case models.BetDragonTiger:
		if bet.Position < 1 || bet.Position > 5 {
			return nil, fmt.Errorf("%w: bet %d: bad dragon-tiger position %d", ErrDataIntegrity, bet.ID, bet.Position)
		}
		if bet.BetValue != SideDragon && bet.BetValue != SideTiger {
			return nil, fmt.Errorf("%w: bet %d: bad side %q", ErrDataIntegrity, bet.ID, bet.BetValue)
		}
		return DragonTiger{Position: bet.Position, Side: bet.BetValue}, nil

	case models.BetSumValue:
		v, err := strconv.Atoi(bet.BetValue)
		if err != nil || v < 3 || v > 19 {
			return nil, fmt.Errorf("%w: bet %d: bad sum value %q", ErrDataIntegrity, bet.ID, bet.BetValue)
		}
		return SumValue{Value: v}, nil

	case models.BetSumAttribute:
		if !validAttr(bet.BetValue) {
			return nil, fmt.Errorf("%w: bet %d: bad sum attribute %q", ErrDataIntegrity, bet.ID, bet.BetValue)
		}
		return SumAttribute{Attr: bet.BetValue}, nil
	}

	return nil, fmt.Errorf("%w: bet %d: unknown bet type %q", ErrDataIntegrity, bet.ID, bet.BetType)
}

// Evaluate maps (bet, positions) to a win/payout outcome. Pure: same inputs,
// same outcome. A malformed bet fails closed (lose) and returns a wrapped
// ErrDataIntegrity so the caller can record the diagnostic and keep going.
func Evaluate(bet *models.Bet, positions []int) (Outcome, error) {
	if !models.ValidPermutation(positions) {
		return Outcome{Payout: decimal.Zero}, fmt.Errorf("%w: invalid draw positions", ErrDataIntegrity)
	}

	wager, err := ParseWager(bet)
	if err != nil {
		return Outcome{Payout: decimal.Zero}, err
	}

	if !wager.Matches(positions) {
		return Outcome{Payout: decimal.Zero}, nil
	}
	return Outcome{IsWin: true, Payout: bet.Amount.Mul(bet.Odds).Round(2)}, nil
}
