package scrape

import (
	"fmt"
	"time"

	"QuoteSentinel/internal/model"
)

// assembleQuote builds the final validated quote from a raw field bag.
//
// A positive price is the only hard requirement; every other field falls back
// to a default when missing or unparseable. If the price lands outside the
// extracted day range, the violated bound is widened to the price rather than
// the record rejected: the current price is ground truth, range fields are
// secondary. Widenings are counted on stats so suspicious records stay
// observable.
func (s *Scraper) assembleQuote(symbol string, bag FieldBag, stats *Stats) (*model.Quote, error) {
	price, ok := ParseMoney(bag.Price.Value)
	if !bag.Price.OK || !ok || !price.IsPositive() {
		return nil, fmt.Errorf("%w: no positive price for %s", ErrParsing, symbol)
	}

	var volume int64
	volumeOK := false
	if bag.Volume.OK {
		if v, ok := ParseVolume(bag.Volume.Value); ok && v >= 0 {
			volume, volumeOK = v, true
		}
	}

	open := parsePositive(bag.Open)
	prevClose := parsePositive(bag.PrevClose)
	high := positiveNum(bag.High)
	low := positiveNum(bag.Low)

	nominal, percent, degraded := reconcileChanges(bag, price, prevClose)
	if degraded {
		stats.DegradedChanges++
	}

	// Defaults for anything still missing.
	if !volumeOK {
		volume = 0
	}
	if !high.OK {
		high = numField(price)
	}
	if !low.OK {
		low = numField(price)
	}
	if !open.OK {
		open = numField(price)
	}
	if !prevClose.OK {
		prevClose = numField(price)
	}

	// Clamp by widening the violated bound, never by rejecting.
	if price.GreaterThan(high.Value) {
		high = numField(price)
		stats.RangeClamps++
	}
	if price.LessThan(low.Value) {
		low = numField(price)
		stats.RangeClamps++
	}

	q := &model.Quote{
		Symbol:             symbol,
		Price:              price,
		DailyChangeNominal: nominal,
		DailyChangePercent: percent,
		Volume:             volume,
		High:               high.Value,
		Low:                low.Value,
		Open:               open.Value,
		PreviousClose:      prevClose.Value,
		LastUpdated:        time.Now().UTC().Format(time.RFC3339),
		Market:             s.market,
	}

	if err := q.Validate(s.minPrice, s.maxPrice, s.minVolume); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrValidation, symbol, err)
	}
	return q, nil
}

// parsePositive parses a raw field, keeping only positive results.
func parsePositive(f StrField) NumField {
	if !f.OK {
		return NumField{}
	}
	v, ok := ParseMoney(f.Value)
	if !ok || !v.IsPositive() {
		return NumField{}
	}
	return numField(v)
}

// positiveNum filters an already-parsed field the same way.
func positiveNum(f NumField) NumField {
	if !f.OK || !f.Value.IsPositive() {
		return NumField{}
	}
	return f
}
