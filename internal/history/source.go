package history

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/model"
)

// BarSource supplies raw daily bars for a symbol over a date window. Change
// fields on returned bars may be zero; the Manager backfills them from the
// prior day's close before storage.
type BarSource interface {
	FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]*model.DailyBar, error)
	Name() string
}

// PageSource scrapes bars out of the historical-prices page markup.
type PageSource struct {
	fetcher fetch.Fetcher
}

// NewPageSource creates a PageSource on top of a markup fetcher.
func NewPageSource(fetcher fetch.Fetcher) *PageSource {
	return &PageSource{fetcher: fetcher}
}

func (s *PageSource) Name() string { return "page" }

func (s *PageSource) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]*model.DailyBar, error) {
	body, err := s.fetcher.FetchHistoryPage(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse history %s: %w", symbol, err)
	}
	return ParseHistoryTable(doc, symbol)
}
