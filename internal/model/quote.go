package model

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var symbolPattern = regexp.MustCompile(`^[A-Z]{1,10}$`)

// ValidSymbol reports whether s is a well-formed ticker symbol (1-10 uppercase letters).
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// Quote is the canonical per-symbol price snapshot. A new Quote wholly
// replaces any prior one for the same symbol in the store; it is never
// partially updated.
type Quote struct {
	Symbol             string
	Price              decimal.Decimal
	DailyChangeNominal decimal.Decimal
	DailyChangePercent decimal.Decimal
	Volume             int64
	High               decimal.Decimal
	Low                decimal.Decimal
	Open               decimal.Decimal
	PreviousClose      decimal.Decimal
	LastUpdated        string // ISO-8601, UTC
	Market             string
}

// Validate checks range and consistency invariants against the configured
// price bounds and volume floor. The caller decides whether a failing quote
// is discarded or stored anyway.
func (q *Quote) Validate(minPrice, maxPrice decimal.Decimal, minVolume int64) error {
	if !ValidSymbol(q.Symbol) {
		return fmt.Errorf("invalid symbol %q", q.Symbol)
	}
	if q.Price.LessThan(minPrice) || q.Price.GreaterThan(maxPrice) {
		return fmt.Errorf("price %s outside bounds [%s, %s]", q.Price, minPrice, maxPrice)
	}
	if q.High.LessThan(q.Low) || q.Low.IsNegative() {
		return fmt.Errorf("bad range: high=%s low=%s", q.High, q.Low)
	}
	if q.Price.LessThan(q.Low) || q.Price.GreaterThan(q.High) {
		return fmt.Errorf("price %s outside day range [%s, %s]", q.Price, q.Low, q.High)
	}
	if q.Volume < 0 {
		return fmt.Errorf("negative volume %d", q.Volume)
	}
	if q.Volume < minVolume {
		return fmt.Errorf("volume %d below floor %d", q.Volume, minVolume)
	}
	if q.Open.IsNegative() || q.PreviousClose.IsNegative() {
		return fmt.Errorf("negative open/previous close: %s/%s", q.Open, q.PreviousClose)
	}
	return nil
}
