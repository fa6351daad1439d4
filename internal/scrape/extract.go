package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// StrField is a raw extracted string tagged with presence, so "legitimately
// absent" survives the trip from extraction to reconciliation.
type StrField struct {
	Value string
	OK    bool
}

// NumField is an already-parsed decimal tagged with presence.
type NumField struct {
	Value decimal.Decimal
	OK    bool
}

func strField(v string) StrField          { return StrField{Value: v, OK: true} }
func numField(v decimal.Decimal) NumField { return NumField{Value: v, OK: true} }

// FieldBag carries one symbol's raw extracted values between the extraction
// pass and reconciliation. It is transient: discarded once the quote is built.
type FieldBag struct {
	Price         StrField
	Change        StrField
	ChangePercent StrField
	ChangeDisplay StrField
	Volume        StrField
	Open          StrField
	PrevClose     StrField
	High          NumField
	Low           NumField
}

// mergeMissing copies every field present in src that is not already present
// in the bag. Regime-specific data therefore always wins over the regular-pass
// base layer for overlapping fields.
func (b *FieldBag) mergeMissing(src FieldBag) {
	if !b.Price.OK {
		b.Price = src.Price
	}
	if !b.Change.OK {
		b.Change = src.Change
	}
	if !b.ChangePercent.OK {
		b.ChangePercent = src.ChangePercent
	}
	if !b.ChangeDisplay.OK {
		b.ChangeDisplay = src.ChangeDisplay
	}
	if !b.Volume.OK {
		b.Volume = src.Volume
	}
	if !b.Open.OK {
		b.Open = src.Open
	}
	if !b.PrevClose.OK {
		b.PrevClose = src.PrevClose
	}
	if !b.High.OK {
		b.High = src.High
	}
	if !b.Low.OK {
		b.Low = src.Low
	}
}

// extractFirst tries each selector in order and returns the first clean value.
// For the first structural match of each selector, value sources are tried in
// priority order: the value attribute, then data-value, then element text.
// Invalid selectors and absent attributes are non-matches, not errors: goquery
// compiles bad selectors to a matcher that matches nothing, which is exactly
// the tolerance an uncontrolled external document requires.
func extractFirst(doc *goquery.Document, selectors []string) StrField {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		for _, candidate := range []string{
			sel.AttrOr("value", ""),
			sel.AttrOr("data-value", ""),
			sel.Text(),
		} {
			if v, ok := cleanValue(candidate); ok {
				return strField(v)
			}
		}
	}
	return StrField{}
}

// cleanValue strips whitespace and control characters and rejects placeholder
// tokens. ok=false means "keep looking".
func cleanValue(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	v = strings.ReplaceAll(v, "\n", "")
	v = strings.ReplaceAll(v, "\t", "")
	v = strings.TrimSpace(v)
	if v == "" || v == "--" || strings.EqualFold(v, "N/A") {
		return "", false
	}
	return v, true
}
