package fetch

import (
	"context"
	"errors"
	"time"
)

// Fetch error kinds, matchable with errors.Is. The scraper maps these onto
// its statistics; the scheduler decides retry/skip policy.
var (
	ErrNetwork        = errors.New("network error")
	ErrTimeout        = errors.New("request timeout")
	ErrRateLimited    = errors.New("rate limited by source")
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Fetcher retrieves raw markup from the quote source.
type Fetcher interface {
	// FetchQuotePage returns the quote page markup for a symbol.
	FetchQuotePage(ctx context.Context, symbol string) ([]byte, error)
	// FetchHistoryPage returns the historical-prices page markup for a
	// symbol over [start, end].
	FetchHistoryPage(ctx context.Context, symbol string, start, end time.Time) ([]byte, error)
	Name() string
}

// MockFetcher returns canned markup for development and testing.
type MockFetcher struct {
	Pages        map[string][]byte // symbol -> quote page
	HistoryPages map[string][]byte // symbol -> history page
	Err          error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuotePage(_ context.Context, symbol string) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	page, ok := m.Pages[symbol]
	if !ok {
		return nil, ErrSymbolNotFound
	}
	return page, nil
}

func (m *MockFetcher) FetchHistoryPage(_ context.Context, symbol string, _, _ time.Time) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	page, ok := m.HistoryPages[symbol]
	if !ok {
		return nil, ErrSymbolNotFound
	}
	return page, nil
}
