package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Per-market rebate pool caps: the fixed fraction of stake an agent chain
// competes for. Overridable via MARKET_CAPS, e.g. "A:0.011,B:0.021".
var defaultMarketCaps = map[string]decimal.Decimal{
	"A": decimal.NewFromFloat(0.011),
	"B": decimal.NewFromFloat(0.021),
	"C": decimal.NewFromFloat(0.031),
	"D": decimal.NewFromFloat(0.041),
}

var marketCaps = defaultMarketCaps

// LoadMarketCaps parses MARKET_CAPS and replaces the built-in table. Called
// once at startup; a malformed value is a fatal config error.
func LoadMarketCaps() error {
	raw := strings.TrimSpace(os.Getenv("MARKET_CAPS"))
	if raw == "" {
		marketCaps = defaultMarketCaps
		return nil
	}

	caps := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("%w: bad MARKET_CAPS entry %q", ErrFatalConfig, pair)
		}
		cap, err := decimal.NewFromString(parts[1])
		if err != nil || cap.IsNegative() || cap.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: bad market cap %q for market %s", ErrFatalConfig, parts[1], parts[0])
		}
		caps[strings.ToUpper(parts[0])] = cap
	}

	marketCaps = caps
	return nil
}

// MarketCap returns the rebate pool cap for a market type.
func MarketCap(marketType string) (decimal.Decimal, error) {
	cap, ok := marketCaps[strings.ToUpper(marketType)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown market type %q", ErrFatalConfig, marketType)
	}
	return cap, nil
}
