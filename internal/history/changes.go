package history

import (
	"sort"

	"github.com/shopspring/decimal"

	"QuoteSentinel/internal/model"
)

var hundred = decimal.NewFromInt(100)

// BackfillChanges computes each bar's nominal and percentage change from the
// prior day's close, in place, and returns the bars sorted ascending by date.
// The oldest bar has no prior close and keeps zero changes.
func BackfillChanges(bars []*model.DailyBar) []*model.DailyBar {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	for i, bar := range bars {
		if i == 0 {
			bar.DailyChangeNominal = decimal.Zero
			bar.DailyChangePercent = decimal.Zero
			continue
		}
		prev := bars[i-1].Close
		bar.PreviousClose = prev
		if prev.IsZero() {
			bar.DailyChangeNominal = decimal.Zero
			bar.DailyChangePercent = decimal.Zero
			continue
		}
		bar.DailyChangeNominal = bar.Close.Sub(prev)
		bar.DailyChangePercent = bar.DailyChangeNominal.Div(prev).Mul(hundred)
	}
	return bars
}

// ValidateBars partitions bars into valid ones and the reasons the rest were
// rejected.
func ValidateBars(bars []*model.DailyBar) (valid []*model.DailyBar, rejected []string) {
	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			rejected = append(rejected, err.Error())
			continue
		}
		valid = append(valid, bar)
	}
	return valid, rejected
}
