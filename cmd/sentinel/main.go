package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"QuoteSentinel/internal/config"
	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/health"
	"QuoteSentinel/internal/history"
	"QuoteSentinel/internal/scheduler"
	"QuoteSentinel/internal/scrape"
	"QuoteSentinel/internal/store"

	"github.com/shopspring/decimal"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] QuoteSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Load symbol universe
	symbols, err := config.LoadSymbols(cfg.SymbolsFile)
	if err != nil {
		log.Fatalf("[FATAL] load symbols: %v", err)
	}
	log.Printf("[INFO] tracking %d symbols", len(symbols))

	// Init fetcher
	limiter := fetch.NewRateLimiter(cfg.Scrape.RateLimitRequests, cfg.RateLimitWindow())
	fetcher := fetch.NewHTTPFetcher(fetch.HTTPOptions{
		BaseURL:      cfg.Source.BaseURL,
		Proxy:        cfg.Source.Proxy,
		Timeout:      cfg.ScrapeTimeout(),
		MaxRetries:   cfg.Scrape.MaxRetries,
		RetryWait:    cfg.RetryWait(),
		RequestDelay: cfg.RequestDelay(),
		Limiter:      limiter,
	})
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init engine and collaborators
	scraper := scrape.New(fetcher, scrape.Options{
		Market:    cfg.Scrape.Market,
		MinPrice:  decimal.NewFromFloat(cfg.Validation.MinPrice),
		MaxPrice:  decimal.NewFromFloat(cfg.Validation.MaxPrice),
		MinVolume: cfg.Validation.MinVolume,
	})
	var barSource history.BarSource = history.NewPageSource(fetcher)
	if cfg.History.Source == "api" {
		barSource = history.NewAPISource(history.APIOptions{
			BaseURL: cfg.History.APIBaseURL,
			Token:   cfg.History.APIToken,
			Timeout: cfg.ScrapeTimeout(),
			Limiter: limiter,
		})
	}
	log.Printf("[INFO] history source: %s", barSource.Name())
	hm := history.NewManager(barSource, st, cfg.History.SyncDays)
	hc := health.NewChecker(st, fetcher)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mode := "daemon"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	switch mode {
	case "once":
		batch, _ := scraper.ScrapeBatch(ctx, symbols)
		quotes := batch.Quotes()
		if stored, failed := st.BatchPutQuotes(quotes); len(failed) > 0 {
			log.Printf("[WARN] stored %d quotes, %d failed: %v", stored, len(failed), failed)
		}
		if batch.Failed > 0 {
			os.Exit(1)
		}
		return
	case "sync-history":
		hm.SyncAll(ctx, symbols)
		return
	case "coverage":
		report, err := hm.CoverageReport(ctx, symbols)
		if err != nil {
			log.Fatalf("[FATAL] coverage report: %v", err)
		}
		out, _ := json.MarshalIndent(report, "", "  ")
		os.Stdout.Write(append(out, '\n'))
		return
	case "health":
		status := hc.Check(ctx, "", 0)
		out, _ := json.MarshalIndent(status, "", "  ")
		os.Stdout.Write(append(out, '\n'))
		if !status.Healthy() {
			os.Exit(1)
		}
		return
	case "daemon":
	default:
		log.Fatalf("[FATAL] unknown mode %q (want daemon, once, sync-history, coverage, or health)", mode)
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, scraper, hm, hc, st, symbols, cfg.Scrape.MaxSymbolsPerBatch)
	if err := sched.RegisterAll(cfg.Scrape.Cron, cfg.History.Cron, cfg.Health.Cron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scrape cycle now")
		go sched.RunScrapeNow()
	}

	log.Println("[INFO] QuoteSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] QuoteSentinel stopped")
}
