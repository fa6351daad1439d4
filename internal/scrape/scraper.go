package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/model"
)

// Options configures a Scraper.
type Options struct {
	Market    string // market tag stamped on every quote, e.g. "NASDAQ"
	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal
	MinVolume int64
}

// Scraper runs the per-symbol extraction pipeline:
// fetch -> detect state -> extract fields -> reconcile changes -> assemble ->
// validate. The engine itself does no I/O beyond the injected fetcher, holds
// no mutable state between symbols, and never retries; retries live in the
// transport layer.
type Scraper struct {
	fetcher   fetch.Fetcher
	market    string
	minPrice  decimal.Decimal
	maxPrice  decimal.Decimal
	minVolume int64
}

// New creates a Scraper.
func New(fetcher fetch.Fetcher, opts Options) *Scraper {
	if opts.Market == "" {
		opts.Market = "NASDAQ"
	}
	return &Scraper{
		fetcher:   fetcher,
		market:    opts.Market,
		minPrice:  opts.MinPrice,
		maxPrice:  opts.MaxPrice,
		minVolume: opts.MinVolume,
	}
}

// ExtractQuote runs the extraction-and-reconciliation core against an
// already-fetched document. It performs no I/O, which is what keeps the core
// testable against canned markup.
func (s *Scraper) ExtractQuote(doc *goquery.Document, symbol string, stats *Stats) (*model.Quote, error) {
	state := detectMarketState(doc)
	stats.countState(state)

	bag := ExtractFields(doc, state)
	q, err := s.assembleQuote(symbol, bag, stats)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] %s: $%s (%s) change: %s%%", symbol, q.Price, state, q.DailyChangePercent.Round(2))
	return q, nil
}

// ScrapeSymbol fetches and extracts one symbol.
func (s *Scraper) ScrapeSymbol(ctx context.Context, symbol string, stats *Stats) (*model.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !model.ValidSymbol(symbol) {
		return nil, fmt.Errorf("%w: invalid symbol %q", ErrParsing, symbol)
	}

	body, err := s.fetcher.FetchQuotePage(ctx, symbol)
	stats.RequestsMade++
	if err != nil {
		s.countFetchError(err, stats)
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		stats.ParsingErrors++
		return nil, fmt.Errorf("%w: %s: unparseable markup: %v", ErrParsing, symbol, err)
	}

	q, err := s.ExtractQuote(doc, symbol, stats)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			stats.ValidationErrors++
		case errors.Is(err, ErrParsing):
			stats.ParsingErrors++
		}
		return nil, err
	}
	return q, nil
}

// ScrapeBatch processes symbols strictly sequentially: one symbol's pipeline
// completes before the next begins, and result order matches input order.
// Per-symbol failures never abort the batch.
func (s *Scraper) ScrapeBatch(ctx context.Context, symbols []string) (*model.BatchResult, *Stats) {
	stats := &Stats{}
	start := time.Now().UTC()
	results := make([]model.ScrapeResult, 0, len(symbols))
	successful, failed := 0, 0

	log.Printf("[INFO] starting batch scrape of %s symbols", humanize.Comma(int64(len(symbols))))

	for i, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			log.Printf("[WARN] batch canceled after %d/%d symbols: %v", i, len(symbols), err)
			break
		}
		q, err := s.ScrapeSymbol(ctx, symbol, stats)
		if err != nil {
			failed++
			stats.FailedScrapes++
			log.Printf("[WARN] [%d/%d] %s: %v", i+1, len(symbols), symbol, err)
		} else {
			successful++
			stats.SuccessfulScrapes++
		}
		results = append(results, model.ScrapeResult{
			Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
			Quote:     q,
			Err:       err,
			Timestamp: time.Now().UTC(),
		})
	}

	// Total counts attempted symbols, so a canceled batch still satisfies
	// Total == Successful+Failed.
	end := time.Now().UTC()
	batch := &model.BatchResult{
		Total:      len(results),
		Successful: successful,
		Failed:     failed,
		Results:    results,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
	}

	log.Printf("[INFO] batch scrape completed: %d/%d successful (%.1f%%) in %s",
		successful, batch.Total, batch.SuccessRate(), batch.Duration.Round(time.Millisecond))
	log.Printf("[INFO] market state distribution - regular: %d, pre-market: %d, after-hours: %d",
		stats.RegularData, stats.PreMarketData, stats.PostMarketData)
	if stats.DegradedChanges > 0 {
		log.Printf("[WARN] %d symbols fell through to zero change values", stats.DegradedChanges)
	}

	return batch, stats
}

func (s *Scraper) countFetchError(err error, stats *Stats) {
	switch {
	case errors.Is(err, fetch.ErrRateLimited):
		stats.RateLimitHits++
	case errors.Is(err, fetch.ErrTimeout):
		stats.TimeoutErrors++
	}
}
