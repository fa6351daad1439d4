package scrape

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// combinedChangePattern matches combined change displays such as
// "+2.15 (+1.45%)" or "-0.50 (-0.33%)".
var combinedChangePattern = regexp.MustCompile(`([+-]?\d+\.?\d*)\s*\(([+-]?\d+\.?\d*)%\)`)

// reconcileChanges decides the daily nominal and percentage change from the
// raw bag and the already-parsed prices. First applicable strategy wins:
//
//  1. directly extracted change fields, cross-deriving whichever of the pair
//     is missing from the previous close;
//  2. price minus previous close, when step 1 produced nothing non-zero;
//  3. the combined "+2.15 (+1.45%)" display string;
//  4. zero for both, flagged as degraded so data quality stays observable.
//
// Values the source computed itself (step 1) are preferred over self-computed
// deltas (step 2): the source's rounding may differ from naive subtraction.
func reconcileChanges(bag FieldBag, price decimal.Decimal, prevClose NumField) (nominal, percent decimal.Decimal, degraded bool) {
	if bag.Change.OK || bag.ChangePercent.OK {
		nominal, percent = directChanges(bag, prevClose)
		if !nominal.IsZero() || !percent.IsZero() {
			return nominal, percent, false
		}
	}

	if prevClose.OK && !prevClose.Value.IsZero() {
		nominal = price.Sub(prevClose.Value)
		percent = nominal.Div(prevClose.Value).Mul(hundred)
		return nominal, percent, false
	}

	if bag.ChangeDisplay.OK {
		if n, p, ok := parseCombinedDisplay(bag.ChangeDisplay.Value); ok {
			return n, p, false
		}
	}

	return decimal.Zero, decimal.Zero, true
}

// directChanges parses whichever change fields were extracted and derives the
// missing half of the pair when the previous close allows it.
func directChanges(bag FieldBag, prevClose NumField) (nominal, percent decimal.Decimal) {
	if bag.Change.OK {
		if v, ok := ParseMoney(bag.Change.Value); ok {
			nominal = v
		}
	}
	if bag.ChangePercent.OK {
		if v, ok := ParseMoney(bag.ChangePercent.Value); ok {
			percent = v
		}
	}

	switch {
	case !nominal.IsZero() && percent.IsZero():
		if prevClose.OK && !prevClose.Value.IsZero() {
			percent = nominal.Div(prevClose.Value).Mul(hundred)
		}
	case !percent.IsZero() && nominal.IsZero():
		if prevClose.OK {
			nominal = percent.Mul(prevClose.Value).Div(hundred)
		}
	}
	return nominal, percent
}

// parseCombinedDisplay extracts both numbers from a "<nominal> (<percent>%)"
// display string.
func parseCombinedDisplay(text string) (nominal, percent decimal.Decimal, ok bool) {
	m := combinedChangePattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, decimal.Zero, false
	}
	nominal, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	percent, err = decimal.NewFromString(m[2])
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	return nominal, percent, true
}
