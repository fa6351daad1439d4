package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// selectorTable is an ordered selector cascade per logical field. Regime
// strategies differ only in their tables; the extraction pass itself is one
// parametric function.
type selectorTable struct {
	Price         []string
	Change        []string
	ChangePercent []string
	ChangeDisplay []string
	Volume        []string
	Open          []string
	PrevClose     []string
}

// Structural data-field/testid selectors come before presentational CSS-class
// fallbacks throughout: the source churns class names far more often than data
// attributes.
var (
	postMarketTable = selectorTable{
		Price: []string{
			`fin-streamer[data-field="postMarketPrice"]`,
			`[data-field="postMarketPrice"]`,
			`[data-testid="qsp-price"]`,
		},
		Change: []string{
			`fin-streamer[data-field="postMarketChange"]`,
			`[data-field="postMarketChange"]`,
			`[data-testid="qsp-price-change"]`,
		},
		ChangePercent: []string{
			`fin-streamer[data-field="postMarketChangePercent"]`,
			`[data-field="postMarketChangePercent"]`,
			`[data-testid="qsp-price-change-percent"]`,
		},
		Volume: []string{
			`fin-streamer[data-field="postMarketVolume"]`,
			`fin-streamer[data-field="regularMarketVolume"]`,
		},
	}

	preMarketTable = selectorTable{
		Price: []string{
			`fin-streamer[data-field="preMarketPrice"]`,
			`[data-field="preMarketPrice"]`,
			`[data-testid="qsp-price"]`,
		},
		Change: []string{
			`fin-streamer[data-field="preMarketChange"]`,
			`[data-field="preMarketChange"]`,
			`[data-testid="qsp-price-change"]`,
		},
		ChangePercent: []string{
			`fin-streamer[data-field="preMarketChangePercent"]`,
			`[data-field="preMarketChangePercent"]`,
			`[data-testid="qsp-price-change-percent"]`,
		},
	}

	regularTable = selectorTable{
		Price: []string{
			`[data-testid="qsp-price"] span`,
			`[data-testid="qsp-price"]`,
			`fin-streamer[data-field="regularMarketPrice"]`,
			`[data-field="regularMarketPrice"]`,
			`.D\(ib\).Mend\(20px\) .Trsdu\(0\.3s\).Fw\(b\).Fz\(36px\)`,
		},
		Change: []string{
			`[data-testid="qsp-price-change"]`,
			`fin-streamer[data-field="regularMarketChange"]`,
			`[data-field="regularMarketChange"]`,
		},
		ChangePercent: []string{
			`[data-testid="qsp-price-change-percent"]`,
			`fin-streamer[data-field="regularMarketChangePercent"]`,
			`[data-field="regularMarketChangePercent"]`,
		},
		ChangeDisplay: []string{
			`[data-testid="qsp-price-change-display"]`,
			`fin-streamer[data-field="regularMarketChangeDisplay"]`,
		},
		Volume: []string{
			`fin-streamer[data-field="regularMarketVolume"]`,
			`[data-field="regularMarketVolume"]`,
			`td[data-test="VOLUME-value"]`,
		},
		Open: []string{
			`fin-streamer[data-field="regularMarketOpen"]`,
			`[data-field="regularMarketOpen"]`,
			`td[data-test="OPEN-value"]`,
		},
		PrevClose: []string{
			`fin-streamer[data-field="regularMarketPreviousClose"]`,
			`[data-field="regularMarketPreviousClose"]`,
			`td[data-test="PREV_CLOSE-value"]`,
		},
	}

	// fallbackPriceSelectors is the merged superset tried when the session
	// regime is unknown: post, pre, regular, then presentational last.
	fallbackPriceSelectors = []string{
		`[data-testid="qsp-price"] span`,
		`[data-testid="qsp-price"]`,
		`fin-streamer[data-field="postMarketPrice"]`,
		`fin-streamer[data-field="preMarketPrice"]`,
		`fin-streamer[data-field="regularMarketPrice"]`,
		`[data-field="postMarketPrice"]`,
		`[data-field="preMarketPrice"]`,
		`[data-field="regularMarketPrice"]`,
		`.D\(ib\).Mend\(20px\) .Trsdu\(0\.3s\).Fw\(b\).Fz\(36px\)`,
		`.Fw\(b\).Fz\(36px\)`,
	}

	dayRangeSelectors = []string{
		`td[data-test="DAYS_RANGE-value"]`,
		`[data-test="DAYS_RANGE-value"]`,
		`fin-streamer[data-field="regularMarketDayRange"]`,
		`[data-field="regularMarketDayRange"]`,
	}

	dayHighSelectors = []string{
		`fin-streamer[data-field="regularMarketDayHigh"]`,
		`[data-field="regularMarketDayHigh"]`,
	}

	dayLowSelectors = []string{
		`fin-streamer[data-field="regularMarketDayLow"]`,
		`[data-field="regularMarketDayLow"]`,
	}
)

// ExtractFields runs the extraction strategy for the given session regime and
// returns the raw field bag. Pre- and post-market passes backfill anything
// they miss from the regular-market base layer; the unknown-regime fallback
// hunts for a price across all regimes before doing the same.
func ExtractFields(doc *goquery.Document, state MarketState) FieldBag {
	switch state {
	case StatePostMarket:
		return extractRegime(doc, postMarketTable)
	case StatePreMarket:
		return extractRegime(doc, preMarketTable)
	case StateRegular:
		return extractRegular(doc)
	default:
		return extractFallback(doc)
	}
}

func extractTable(doc *goquery.Document, table selectorTable) FieldBag {
	return FieldBag{
		Price:         extractFirst(doc, table.Price),
		Change:        extractFirst(doc, table.Change),
		ChangePercent: extractFirst(doc, table.ChangePercent),
		ChangeDisplay: extractFirst(doc, table.ChangeDisplay),
		Volume:        extractFirst(doc, table.Volume),
		Open:          extractFirst(doc, table.Open),
		PrevClose:     extractFirst(doc, table.PrevClose),
	}
}

func extractRegime(doc *goquery.Document, table selectorTable) FieldBag {
	bag := extractTable(doc, table)
	bag.mergeMissing(extractRegular(doc))
	return bag
}

func extractRegular(doc *goquery.Document) FieldBag {
	bag := extractTable(doc, regularTable)
	if high, low, ok := extractDayRange(doc); ok {
		bag.High = numField(high)
		bag.Low = numField(low)
	}
	return bag
}

func extractFallback(doc *goquery.Document) FieldBag {
	bag := FieldBag{Price: extractFirst(doc, fallbackPriceSelectors)}
	bag.mergeMissing(extractRegular(doc))
	return bag
}

// extractDayRange reads the day high/low, preferring the combined
// "low - high" display cell and falling back to individual elements.
func extractDayRange(doc *goquery.Document) (high, low decimal.Decimal, ok bool) {
	for _, selector := range dayRangeSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		parts := strings.Split(strings.TrimSpace(sel.Text()), " - ")
		if len(parts) != 2 {
			continue
		}
		lowVal, lowOK := ParseMoney(parts[0])
		highVal, highOK := ParseMoney(parts[1])
		if !lowOK || !highOK {
			continue
		}
		// The combined cell is low-first by contract; swap a reversed pair
		// rather than discard it.
		if highVal.LessThan(lowVal) {
			lowVal, highVal = highVal, lowVal
		}
		return highVal, lowVal, true
	}

	highRaw := extractFirst(doc, dayHighSelectors)
	lowRaw := extractFirst(doc, dayLowSelectors)
	if highRaw.OK && lowRaw.OK {
		highVal, highOK := ParseMoney(highRaw.Value)
		lowVal, lowOK := ParseMoney(lowRaw.Value)
		if highOK && lowOK {
			return highVal, lowVal, true
		}
	}
	return decimal.Zero, decimal.Zero, false
}
