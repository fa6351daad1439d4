package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"QuoteSentinel/internal/model"
	"QuoteSentinel/internal/store"
)

// SyncResult reports one symbol's historical sync.
type SyncResult struct {
	Symbol    string
	BarsAdded int
	UpToDate  bool
	Err       error
}

// Manager keeps the daily-bar table current. Sync is incremental: it fetches
// from the day after the latest stored date, or a full window for symbols
// never synced.
type Manager struct {
	source   BarSource
	bars     store.BarStore
	syncDays int // full-window size for never-synced symbols
}

// NewManager creates a Manager. syncDays bounds the initial backfill window.
func NewManager(source BarSource, bars store.BarStore, syncDays int) *Manager {
	if syncDays <= 0 {
		syncDays = 365
	}
	return &Manager{source: source, bars: bars, syncDays: syncDays}
}

// SyncSymbol brings one symbol's bars up to date.
func (m *Manager) SyncSymbol(ctx context.Context, symbol string) SyncResult {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -m.syncDays)

	latest, ok, err := m.bars.LatestDate(symbol)
	if err != nil {
		return SyncResult{Symbol: symbol, Err: fmt.Errorf("latest date for %s: %w", symbol, err)}
	}
	if ok {
		latestDay, err := time.Parse(model.DateFormat, latest)
		if err != nil {
			return SyncResult{Symbol: symbol, Err: fmt.Errorf("stored date %q for %s: %w", latest, symbol, err)}
		}
		if !latestDay.Before(today(end)) {
			return SyncResult{Symbol: symbol, UpToDate: true}
		}
		// Overlap one day so the first new bar gets its previous close.
		start = latestDay
	}

	bars, err := m.source.FetchBars(ctx, symbol, start, end)
	if err != nil {
		return SyncResult{Symbol: symbol, Err: err}
	}

	bars = BackfillChanges(bars)
	valid, rejected := ValidateBars(bars)
	for _, reason := range rejected {
		log.Printf("[WARN] %s: dropping bar: %s", symbol, reason)
	}

	// Keep only dates newer than what is stored; the overlap day was fetched
	// solely to seed previous-close.
	var fresh []*model.DailyBar
	for _, bar := range valid {
		if !ok || bar.Date > latest {
			fresh = append(fresh, bar)
		}
	}
	if len(fresh) == 0 {
		return SyncResult{Symbol: symbol, UpToDate: true}
	}

	added, failed := m.bars.BatchPutBars(fresh)
	if len(failed) > 0 {
		log.Printf("[ERROR] %s: %d bars failed to store", symbol, len(failed))
	}
	return SyncResult{Symbol: symbol, BarsAdded: added}
}

// SyncAll syncs every symbol sequentially and logs a summary.
func (m *Manager) SyncAll(ctx context.Context, symbols []string) []SyncResult {
	results := make([]SyncResult, 0, len(symbols))
	synced, failed, total := 0, 0, 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		res := m.SyncSymbol(ctx, symbol)
		if res.Err != nil {
			failed++
			log.Printf("[WARN] history sync %s: %v", symbol, res.Err)
		} else {
			synced++
			total += res.BarsAdded
		}
		results = append(results, res)
	}
	log.Printf("[INFO] history sync: %d synced, %d failed, %d bars added", synced, failed, total)
	return results
}

func today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
