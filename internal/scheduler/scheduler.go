package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"QuoteSentinel/internal/health"
	"QuoteSentinel/internal/history"
	"QuoteSentinel/internal/scrape"
	"QuoteSentinel/internal/store"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Scraper *scrape.Scraper
	History *history.Manager
	Health  *health.Checker
	Store   store.Store
	Symbols []string
	Ctx     context.Context

	batchCap int

	mu         sync.Mutex
	totals     scrape.Stats
	lastScrape string
}

// NewScheduler creates a new Scheduler. batchCap bounds the symbols processed
// per scrape cycle.
func NewScheduler(ctx context.Context, sc *scrape.Scraper, hm *history.Manager, hc *health.Checker, st store.Store, symbols []string, batchCap int) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scraper:  sc,
		History:  hm,
		Health:   hc,
		Store:    st,
		Symbols:  symbols,
		Ctx:      ctx,
		batchCap: batchCap,
	}
}

// RegisterAll registers the scrape, history-sync, health, and stats tasks.
func (s *Scheduler) RegisterAll(scrapeCron, historyCron, healthCron string) error {
	if _, err := s.Cron.AddFunc(scrapeCron, s.scrapeTask); err != nil {
		return fmt.Errorf("register scrape task: %w", err)
	}
	if _, err := s.Cron.AddFunc(historyCron, s.historyTask); err != nil {
		return fmt.Errorf("register history task: %w", err)
	}
	if _, err := s.Cron.AddFunc(healthCron, s.healthTask); err != nil {
		return fmt.Errorf("register health task: %w", err)
	}
	// Hourly cumulative stats report.
	if _, err := s.Cron.AddFunc("0 0 * * * *", s.statsTask); err != nil {
		return fmt.Errorf("register stats task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScrapeNow executes the scrape task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScrapeNow() {
	s.scrapeTask()
}

// RunHistoryNow executes the history-sync task immediately.
func (s *Scheduler) RunHistoryNow() {
	s.historyTask()
}

func (s *Scheduler) scrapeTask() {
	log.Println("[INFO] running scrape cycle")

	symbols := s.Symbols
	if s.batchCap > 0 && len(symbols) > s.batchCap {
		log.Printf("[WARN] symbol list truncated from %d to %d for this cycle", len(symbols), s.batchCap)
		symbols = symbols[:s.batchCap]
	}

	batch, stats := s.Scraper.ScrapeBatch(s.Ctx, symbols)

	quotes := batch.Quotes()
	if len(quotes) > 0 {
		stored, failed := s.Store.BatchPutQuotes(quotes)
		if len(failed) > 0 {
			log.Printf("[ERROR] %d quotes failed to store: %v", len(failed), failed)
		}
		log.Printf("[INFO] stored %d/%d quotes", stored, len(quotes))
	}

	s.mu.Lock()
	s.totals.Merge(stats)
	if batch.Successful > 0 {
		s.lastScrape = batch.EndTime.Format(time.RFC3339)
	}
	s.mu.Unlock()
}

func (s *Scheduler) historyTask() {
	log.Println("[INFO] running history sync")
	s.History.SyncAll(s.Ctx, s.Symbols)

	// Snapshot today's live quotes as bars so the day is covered even when
	// the upstream history source lags.
	quotes, err := s.Store.ScanQuotes()
	if err != nil {
		log.Printf("[ERROR] scan quotes for snapshot: %v", err)
		return
	}
	if len(quotes) > 0 {
		s.History.CreateDailySnapshot(quotes, "")
	}
}

func (s *Scheduler) healthTask() {
	s.mu.Lock()
	lastScrape := s.lastScrape
	errorRate := 100 - s.totals.SuccessRate()
	if s.totals.RequestsMade == 0 {
		errorRate = 0
	}
	s.mu.Unlock()

	status := s.Health.Check(s.Ctx, lastScrape, errorRate)
	if !status.Healthy() {
		log.Printf("[WARN] health: status=%s storage=%t source=%t (%dms)",
			status.Status, status.StorageConnection, status.SourceConnection, status.SourceResponseMillis)
	}
}

func (s *Scheduler) statsTask() {
	s.mu.Lock()
	t := s.totals
	s.mu.Unlock()

	if t.RequestsMade == 0 {
		return
	}
	log.Printf("[INFO] cumulative stats: requests=%d ok=%d failed=%d rate_limited=%d timeouts=%d parse_errors=%d validation_errors=%d success=%.1f%%",
		t.RequestsMade, t.SuccessfulScrapes, t.FailedScrapes, t.RateLimitHits,
		t.TimeoutErrors, t.ParsingErrors, t.ValidationErrors, t.SuccessRate())
	log.Printf("[INFO] data quality: degraded_changes=%d range_clamps=%d regular=%d pre=%d post=%d",
		t.DegradedChanges, t.RangeClamps, t.RegularData, t.PreMarketData, t.PostMarketData)
}
