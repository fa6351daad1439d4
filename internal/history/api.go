package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"resty.dev/v3"

	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/model"
)

// APIOptions configures an APISource.
type APIOptions struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Limiter *fetch.RateLimiter // optional
}

// APISource fetches daily bars from a JSON price API instead of scraping the
// history page. Rows that fail per-bar validation are skipped, never fatal.
type APISource struct {
	client  *resty.Client
	limiter *fetch.RateLimiter
}

// apiBar is one row of the API response.
type apiBar struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
	Volume   int64   `json:"volume"`
}

// NewAPISource creates an APISource.
func NewAPISource(opts APIOptions) *APISource {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json")
	if opts.Token != "" {
		client.SetHeader("Authorization", "Token "+opts.Token)
	}
	return &APISource{client: client, limiter: opts.Limiter}
}

func (s *APISource) Name() string { return "api" }

func (s *APISource) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]*model.DailyBar, error) {
	if s.limiter != nil {
		if _, err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", fetch.ErrNetwork, err)
		}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"startDate": start.Format(model.DateFormat),
			"endDate":   end.Format(model.DateFormat),
			"format":    "json",
		}).
		Get(symbol + "/prices")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", fetch.ErrNetwork, symbol, err)
	}
	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", fetch.ErrRateLimited, resp.StatusCode())
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", fetch.ErrSymbolNotFound, symbol)
	case resp.StatusCode() >= 400:
		return nil, fmt.Errorf("%w: status %d", fetch.ErrNetwork, resp.StatusCode())
	}

	var rows []apiBar
	if err := json.Unmarshal(resp.Bytes(), &rows); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", symbol, err)
	}

	bars := make([]*model.DailyBar, 0, len(rows))
	for _, row := range rows {
		b, err := row.toBar(symbol)
		if err != nil {
			log.Printf("[WARN] %s: skipping api row: %v", symbol, err)
			continue
		}
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date > bars[j].Date })
	return bars, nil
}

func (r apiBar) toBar(symbol string) (*model.DailyBar, error) {
	if len(r.Date) < len(model.DateFormat) {
		return nil, fmt.Errorf("bad date %q", r.Date)
	}
	adjClose := r.AdjClose
	if adjClose == 0 {
		adjClose = r.Close
	}
	b := &model.DailyBar{
		Symbol:   symbol,
		Date:     r.Date[:len(model.DateFormat)],
		Open:     decimal.NewFromFloat(r.Open),
		High:     decimal.NewFromFloat(r.High),
		Low:      decimal.NewFromFloat(r.Low),
		Close:    decimal.NewFromFloat(r.Close),
		AdjClose: decimal.NewFromFloat(adjClose),
		Volume:   r.Volume,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}
