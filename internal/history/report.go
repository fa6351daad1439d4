package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"QuoteSentinel/internal/model"
)

// SymbolCoverage is one symbol's slice of the coverage report.
type SymbolCoverage struct {
	Symbol     string `json:"symbol"`
	LatestDate string `json:"latest_date,omitempty"`
	BarCount   int    `json:"bar_count"`
	HasData    bool   `json:"has_data"`
}

// CoverageReport summarizes how much of the symbol universe has stored bars.
type CoverageReport struct {
	TotalSymbols    int              `json:"total_symbols"`
	SymbolsWithData int              `json:"symbols_with_data"`
	CoveragePercent float64          `json:"coverage_percent"`
	TotalBars       int              `json:"total_bars"`
	EarliestLatest  string           `json:"earliest_latest_date,omitempty"`
	NewestLatest    string           `json:"newest_latest_date,omitempty"`
	Symbols         []SymbolCoverage `json:"symbols"`
	GeneratedAt     string           `json:"generated_at"`
}

// CoverageReport walks the symbol universe and reports per-symbol bar counts
// and latest dates. The date-range summary spans the per-symbol latest dates,
// which exposes symbols whose sync has fallen behind.
func (m *Manager) CoverageReport(ctx context.Context, symbols []string) (*CoverageReport, error) {
	report := &CoverageReport{
		TotalSymbols: len(symbols),
		Symbols:      make([]SymbolCoverage, 0, len(symbols)),
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cov := SymbolCoverage{Symbol: symbol}
		latest, ok, err := m.bars.LatestDate(symbol)
		if err != nil {
			return nil, fmt.Errorf("latest date for %s: %w", symbol, err)
		}
		if ok {
			bars, err := m.bars.QueryBars(symbol, "", "", 0)
			if err != nil {
				return nil, fmt.Errorf("count bars for %s: %w", symbol, err)
			}
			cov.LatestDate = latest
			cov.BarCount = len(bars)
			cov.HasData = true

			report.SymbolsWithData++
			report.TotalBars += cov.BarCount
			if report.EarliestLatest == "" || latest < report.EarliestLatest {
				report.EarliestLatest = latest
			}
			if latest > report.NewestLatest {
				report.NewestLatest = latest
			}
		}
		report.Symbols = append(report.Symbols, cov)
	}

	if report.TotalSymbols > 0 {
		report.CoveragePercent = float64(report.SymbolsWithData) / float64(report.TotalSymbols) * 100
	}
	log.Printf("[INFO] coverage report: %d/%d symbols (%.1f%%), %d bars",
		report.SymbolsWithData, report.TotalSymbols, report.CoveragePercent, report.TotalBars)
	return report, nil
}

// SnapshotResult reports one daily-snapshot run.
type SnapshotResult struct {
	Date    string   `json:"date"`
	Total   int      `json:"total_symbols"`
	Saved   int      `json:"saved_count"`
	Failed  []string `json:"failed_keys,omitempty"`
	Skipped []string `json:"skipped_symbols,omitempty"`
}

// CreateDailySnapshot converts live quotes into bars for the given date
// (today when empty) and stores them. The current price becomes both close
// and adjusted close. Quotes whose derived bar fails validation are skipped,
// not fatal: a clamped intraday quote is still a plausible bar, but a quote
// with no real range data may not be.
func (m *Manager) CreateDailySnapshot(quotes []*model.Quote, date string) SnapshotResult {
	if date == "" {
		date = time.Now().UTC().Format(model.DateFormat)
	}
	res := SnapshotResult{Date: date, Total: len(quotes)}

	bars := make([]*model.DailyBar, 0, len(quotes))
	for _, q := range quotes {
		b := &model.DailyBar{
			Symbol:             q.Symbol,
			Date:               date,
			Open:               q.Open,
			High:               q.High,
			Low:                q.Low,
			Close:              q.Price,
			AdjClose:           q.Price,
			Volume:             q.Volume,
			DailyChangeNominal: q.DailyChangeNominal,
			DailyChangePercent: q.DailyChangePercent,
			PreviousClose:      q.PreviousClose,
		}
		if err := b.Validate(); err != nil {
			log.Printf("[WARN] snapshot %s: %v", q.Symbol, err)
			res.Skipped = append(res.Skipped, q.Symbol)
			continue
		}
		bars = append(bars, b)
	}

	saved, failed := m.bars.BatchPutBars(bars)
	res.Saved = saved
	res.Failed = failed
	log.Printf("[INFO] daily snapshot %s: %d/%d symbols saved", date, saved, res.Total)
	return res
}
