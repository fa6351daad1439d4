package scheduler

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/health"
	"QuoteSentinel/internal/history"
	"QuoteSentinel/internal/model"
	"QuoteSentinel/internal/scrape"
	"QuoteSentinel/internal/store"
)

const quotePage = `<html><body>
	<fin-streamer data-field="regularMarketPrice" value="150.25"></fin-streamer>
	<fin-streamer data-field="regularMarketPreviousClose" value="148.10"></fin-streamer>
</body></html>`

type recordingStore struct {
	*store.NoopStore
	quotes []*model.Quote
	bars   []*model.DailyBar
}

func (r *recordingStore) BatchPutQuotes(qs []*model.Quote) (int, []string) {
	r.quotes = append(r.quotes, qs...)
	return len(qs), nil
}

func (r *recordingStore) ScanQuotes() ([]*model.Quote, error) {
	return r.quotes, nil
}

func (r *recordingStore) BatchPutBars(bs []*model.DailyBar) (int, []string) {
	r.bars = append(r.bars, bs...)
	return len(bs), nil
}

func newTestScheduler(symbols []string, batchCap int) (*Scheduler, *recordingStore) {
	fetcher := &fetch.MockFetcher{Pages: map[string][]byte{
		"AAPL": []byte(quotePage),
		"MSFT": []byte(quotePage),
	}}
	scraper := scrape.New(fetcher, scrape.Options{
		MinPrice: decimal.RequireFromString("0.01"),
		MaxPrice: decimal.RequireFromString("100000"),
	})
	st := &recordingStore{NoopStore: store.NewNoopStore()}
	hm := history.NewManager(history.NewPageSource(fetcher), st, 30)
	hc := health.NewChecker(st, fetcher)
	return NewScheduler(context.Background(), scraper, hm, hc, st, symbols, batchCap), st
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAPL"}, 0)
	if err := s.RegisterAll("0 */15 * * * *", "0 30 22 * * 1-5", "0 */5 * * * *"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
}

func TestRegisterAll_BadCron(t *testing.T) {
	s, _ := newTestScheduler([]string{"AAPL"}, 0)
	if err := s.RegisterAll("not a cron spec", "0 30 22 * * 1-5", "0 */5 * * * *"); err == nil {
		t.Fatal("expected error for malformed cron spec")
	}
}

func TestScrapeTask_StoresQuotesAndAccumulates(t *testing.T) {
	s, st := newTestScheduler([]string{"AAPL", "MSFT", "ZZZZ"}, 0)

	s.scrapeTask()
	if len(st.quotes) != 2 {
		t.Fatalf("stored quotes = %d, want 2", len(st.quotes))
	}
	if s.lastScrape == "" {
		t.Error("expected last scrape timestamp after a successful cycle")
	}
	if s.totals.RequestsMade != 3 || s.totals.SuccessfulScrapes != 2 {
		t.Errorf("totals = %+v", s.totals)
	}

	// A second cycle accumulates rather than resets.
	s.scrapeTask()
	if s.totals.RequestsMade != 6 {
		t.Errorf("totals after second cycle = %+v", s.totals)
	}
}

func TestHistoryTask_SnapshotsLiveQuotes(t *testing.T) {
	s, st := newTestScheduler([]string{"AAPL", "MSFT"}, 0)

	s.scrapeTask()
	if len(st.quotes) != 2 {
		t.Fatalf("stored quotes = %d, want 2", len(st.quotes))
	}

	s.historyTask()
	if len(st.bars) != 2 {
		t.Fatalf("snapshot bars = %d, want 2", len(st.bars))
	}
	for _, b := range st.bars {
		if !b.Close.Equal(b.AdjClose) {
			t.Errorf("%s: close %s != adj_close %s", b.Symbol, b.Close, b.AdjClose)
		}
	}
}

func TestScrapeTask_BatchCap(t *testing.T) {
	s, st := newTestScheduler([]string{"AAPL", "MSFT"}, 1)
	s.scrapeTask()
	if len(st.quotes) != 1 {
		t.Fatalf("stored quotes = %d, want capped to 1", len(st.quotes))
	}
	if st.quotes[0].Symbol != "AAPL" {
		t.Errorf("capped cycle scraped %s, want AAPL", st.quotes[0].Symbol)
	}
}
