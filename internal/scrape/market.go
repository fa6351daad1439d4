package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarketState identifies the trading session the page data represents.
type MarketState string

const (
	StatePostMarket MarketState = "post_market"
	StatePreMarket  MarketState = "pre_market"
	StateRegular    MarketState = "regular"
	StateUnknown    MarketState = "unknown"
)

// stateMarker is one (marker, state) detection pair. A marker is present when
// its selector matches structurally, or, when phrase is set, when any matching
// element's text contains the phrase.
type stateMarker struct {
	selector string
	phrase   string
	state    MarketState
}

// Extended-hours markers come first: regular-market markers are near-always
// present even during extended hours, so checking regular first would mask the
// more specific state.
var stateMarkers = []stateMarker{
	{selector: `[data-field="postMarketPrice"]`, state: StatePostMarket},
	{selector: "span", phrase: "After Hours", state: StatePostMarket},
	{selector: "span", phrase: "Post-Market", state: StatePostMarket},

	{selector: `[data-field="preMarketPrice"]`, state: StatePreMarket},
	{selector: "span", phrase: "Pre-Market", state: StatePreMarket},

	{selector: `[data-field="regularMarketPrice"]`, state: StateRegular},
}

// detectMarketState returns the session regime of the first marker found, or
// StateRegular when no marker matches.
func detectMarketState(doc *goquery.Document) MarketState {
	for _, m := range stateMarkers {
		if m.phrase == "" {
			if doc.Find(m.selector).Length() > 0 {
				return m.state
			}
			continue
		}
		found := false
		doc.Find(m.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if strings.Contains(sel.Text(), m.phrase) {
				found = true
				return false
			}
			return true
		})
		if found {
			return m.state
		}
	}
	return StateRegular
}
