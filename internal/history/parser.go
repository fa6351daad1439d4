package history

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"QuoteSentinel/internal/model"
	"QuoteSentinel/internal/scrape"
)

// dateLayouts are the date formats the source emits in the history table.
var dateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/2006",
	"2006-01-02",
}

// ParseHistoryTable extracts daily bars from a historical-prices page. Rows
// that fail to parse are skipped, as are dividend/split event rows; change
// fields are left zero for BackfillChanges. Bars are returned newest-first.
func ParseHistoryTable(doc *goquery.Document, symbol string) ([]*model.DailyBar, error) {
	table := doc.Find(`table[data-test="historical-prices"]`).First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no historical data table for %s", scrape.ErrParsing, symbol)
	}

	var bars []*model.DailyBar
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		if bar := parseRow(row, symbol); bar != nil {
			bars = append(bars, bar)
		}
	})

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no valid historical rows for %s", scrape.ErrParsing, symbol)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date > bars[j].Date })
	return bars, nil
}

func parseRow(row *goquery.Selection, symbol string) *model.DailyBar {
	cells := row.Find("td")
	if cells.Length() < 7 {
		return nil
	}

	texts := make([]string, 7)
	cells.Slice(0, 7).Each(func(i int, cell *goquery.Selection) {
		texts[i] = strings.TrimSpace(cell.Text())
	})

	// Dividend and split event rows share the table but carry no OHLC data.
	lower := strings.ToLower(texts[0])
	if strings.Contains(lower, "dividend") || strings.Contains(lower, "split") {
		return nil
	}

	date, ok := parseDate(texts[0])
	if !ok {
		return nil
	}

	open, openOK := scrape.ParseMoney(texts[1])
	high, highOK := scrape.ParseMoney(texts[2])
	low, lowOK := scrape.ParseMoney(texts[3])
	closeP, closeOK := scrape.ParseMoney(texts[4])
	adjClose, adjOK := scrape.ParseMoney(texts[5])
	if !openOK || !highOK || !lowOK || !closeOK || !adjOK {
		return nil
	}

	// Volume may legitimately be absent or zero.
	volume, volOK := scrape.ParseVolume(texts[6])
	if !volOK {
		volume = 0
	}

	return &model.DailyBar{
		Symbol:   symbol,
		Date:     date,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closeP,
		AdjClose: adjClose,
		Volume:   volume,
	}
}

func parseDate(text string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(model.DateFormat), true
		}
	}
	return "", false
}
