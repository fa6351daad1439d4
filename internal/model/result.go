package model

import "time"

// ScrapeResult is the outcome of one symbol's extraction attempt: either a
// quote or the error that stopped it.
type ScrapeResult struct {
	Symbol    string
	Quote     *Quote
	Err       error
	Timestamp time.Time
}

// OK reports whether the attempt produced a quote.
func (r *ScrapeResult) OK() bool { return r.Err == nil && r.Quote != nil }

// BatchResult aggregates one scrape cycle. It is constructed once per batch
// call and not mutated afterwards; result order matches input order.
type BatchResult struct {
	Total      int // attempted symbols; always Successful+Failed, even when canceled early
	Successful int
	Failed     int
	Results    []ScrapeResult
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// SuccessRate returns the percentage of symbols that produced a quote.
func (b *BatchResult) SuccessRate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Successful) / float64(b.Total) * 100
}

// FailedSymbols lists the symbols whose extraction failed.
func (b *BatchResult) FailedSymbols() []string {
	var out []string
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r.Symbol)
		}
	}
	return out
}

// Quotes returns the successfully assembled quotes, in input order.
func (b *BatchResult) Quotes() []*Quote {
	out := make([]*Quote, 0, b.Successful)
	for _, r := range b.Results {
		if r.OK() {
			out = append(out, r.Quote)
		}
	}
	return out
}
