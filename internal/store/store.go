package store

import "QuoteSentinel/internal/model"

// QuoteStore is the symbol-keyed table. A put wholly replaces the previous
// record for the symbol.
type QuoteStore interface {
	PutQuote(q *model.Quote) error
	// GetQuote returns (nil, nil) when the symbol is absent.
	GetQuote(symbol string) (*model.Quote, error)
	// BatchPutQuotes writes all quotes, returning the success count and the
	// symbols that failed. Per-item failures do not abort the batch.
	BatchPutQuotes(quotes []*model.Quote) (int, []string)
	ScanQuotes() ([]*model.Quote, error)
	DeleteQuote(symbol string) error
}

// BarStore is the symbol+date-keyed time-series table.
type BarStore interface {
	PutBar(b *model.DailyBar) error
	BatchPutBars(bars []*model.DailyBar) (int, []string)
	// QueryBars returns bars for a symbol sorted ascending by date.
	// Empty start/end mean unbounded; limit <= 0 means no limit.
	QueryBars(symbol, startDate, endDate string, limit int) ([]*model.DailyBar, error)
	// LatestDate returns the newest stored date for a symbol; ok=false when
	// the symbol has no bars, so sync treats it as never-synced.
	LatestDate(symbol string) (date string, ok bool, err error)
	// DeleteBarRange removes bars in [startDate, endDate] and returns the
	// number deleted. Empty bounds mean unbounded.
	DeleteBarRange(symbol, startDate, endDate string) (int, error)
}

// Store combines both tables with lifecycle and connectivity checks.
type Store interface {
	QuoteStore
	BarStore
	Ping() error
	Close() error
}
