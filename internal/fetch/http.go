package fetch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"resty.dev/v3"
)

// userAgents is rotated across requests to keep the source from pinning a
// single client fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
}

func randomUserAgent() string {
	return userAgents[rand.IntN(len(userAgents))]
}

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	BaseURL      string
	Proxy        string
	Timeout      time.Duration
	MaxRetries   int
	RetryWait    time.Duration
	RequestDelay time.Duration // polite pause before every request
	Limiter      *RateLimiter  // optional
}

// HTTPFetcher fetches markup over HTTP with retries, backoff, user-agent
// rotation and a shared rate-limit budget.
type HTTPFetcher struct {
	client  *resty.Client
	limiter *RateLimiter
	delay   time.Duration
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 2 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(10 * opts.RetryWait).
		AddRetryConditions(retryCondition)
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}

	return &HTTPFetcher{
		client:  client,
		limiter: opts.Limiter,
		delay:   opts.RequestDelay,
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

// retryCondition retries on transport errors, 5xx, 429, and 408. Other 4xx
// are final.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	switch {
	case r.StatusCode() >= 500:
		return true
	case r.StatusCode() == http.StatusTooManyRequests:
		return true
	case r.StatusCode() == http.StatusRequestTimeout:
		return true
	}
	return false
}

func (f *HTTPFetcher) FetchQuotePage(ctx context.Context, symbol string) ([]byte, error) {
	return f.get(ctx, symbol, nil)
}

func (f *HTTPFetcher) FetchHistoryPage(ctx context.Context, symbol string, start, end time.Time) ([]byte, error) {
	return f.get(ctx, symbol+"/history", map[string]string{
		"period1":   fmt.Sprintf("%d", start.Unix()),
		"period2":   fmt.Sprintf("%d", end.Unix()),
		"interval":  "1d",
		"frequency": "1d",
		"filter":    "history",
	})
}

func (f *HTTPFetcher) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if f.limiter != nil {
		waited, err := f.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		if waited > 0 {
			log.Printf("[DEBUG] rate limited, waited %s before %s", waited.Round(time.Millisecond), path)
		}
	}
	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())
		case <-timer.C:
		}
	}

	req := f.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", randomUserAgent())
	if query != nil {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrTimeout, path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNetwork, path, err)
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode())
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: status %d", ErrSymbolNotFound, resp.StatusCode())
	case resp.StatusCode() >= 400:
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode())
	}
	return resp.Bytes(), nil
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
