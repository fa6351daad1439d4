package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used for DailyBar keys.
const DateFormat = "2006-01-02"

// DailyBar is one symbol+date OHLCV row. Bars are append-mostly: once written
// they are only touched to backfill change fields relative to the prior day.
type DailyBar struct {
	Symbol             string
	Date               string // YYYY-MM-DD
	Open               decimal.Decimal
	High               decimal.Decimal
	Low                decimal.Decimal
	Close              decimal.Decimal
	AdjClose           decimal.Decimal
	Volume             int64
	DailyChangeNominal decimal.Decimal
	DailyChangePercent decimal.Decimal
	PreviousClose      decimal.Decimal
}

// Key returns the composite store key for the bar.
func (b *DailyBar) Key() string {
	return b.Symbol + "#" + b.Date
}

// Validate checks the OHLC consistency invariants for a single bar.
func (b *DailyBar) Validate() error {
	if !ValidSymbol(b.Symbol) {
		return fmt.Errorf("invalid symbol %q", b.Symbol)
	}
	if b.Date == "" {
		return fmt.Errorf("missing date for %s", b.Symbol)
	}
	for _, p := range []struct {
		name string
		val  decimal.Decimal
	}{
		{"open", b.Open}, {"high", b.High}, {"low", b.Low},
		{"close", b.Close}, {"adj_close", b.AdjClose},
	} {
		if !p.val.IsPositive() {
			return fmt.Errorf("%s %s: non-positive %s price %s", b.Symbol, b.Date, p.name, p.val)
		}
	}
	if b.High.LessThan(b.Low) {
		return fmt.Errorf("%s %s: high %s below low %s", b.Symbol, b.Date, b.High, b.Low)
	}
	if b.Open.LessThan(b.Low) || b.Open.GreaterThan(b.High) {
		return fmt.Errorf("%s %s: open %s outside [%s, %s]", b.Symbol, b.Date, b.Open, b.Low, b.High)
	}
	if b.Close.LessThan(b.Low) || b.Close.GreaterThan(b.High) {
		return fmt.Errorf("%s %s: close %s outside [%s, %s]", b.Symbol, b.Date, b.Close, b.Low, b.High)
	}
	if b.Volume < 0 {
		return fmt.Errorf("%s %s: negative volume %d", b.Symbol, b.Date, b.Volume)
	}
	return nil
}
