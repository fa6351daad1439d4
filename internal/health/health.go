package health

import (
	"context"
	"log"
	"strings"
	"time"

	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/model"
	"QuoteSentinel/internal/store"
)

// probeSymbol is a liquid ticker used to verify the source answers with real
// quote markup.
const probeSymbol = "AAPL"

// Checker verifies storage and source connectivity.
type Checker struct {
	store   store.Store
	fetcher fetch.Fetcher
}

// NewChecker creates a Checker.
func NewChecker(st store.Store, fetcher fetch.Fetcher) *Checker {
	return &Checker{store: st, fetcher: fetcher}
}

// Check runs all component checks and assembles the overall status.
// lastScrape and errorRate come from the caller's batch accounting and may be
// zero values when no cycle has run yet.
func (c *Checker) Check(ctx context.Context, lastScrape string, errorRate float64) *model.HealthStatus {
	storageOK := c.checkStorage()
	sourceOK, elapsed := c.checkSource(ctx)

	status := "healthy"
	if !storageOK || !sourceOK {
		status = "unhealthy"
		var failing []string
		if !storageOK {
			failing = append(failing, "storage")
		}
		if !sourceOK {
			failing = append(failing, "source")
		}
		log.Printf("[WARN] health check failed - issues with: %s", strings.Join(failing, ", "))
	} else {
		log.Println("[INFO] health check passed - all systems operational")
	}

	return &model.HealthStatus{
		Status:               status,
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
		StorageConnection:    storageOK,
		SourceConnection:     sourceOK,
		SourceResponseMillis: elapsed.Milliseconds(),
		LastSuccessfulScrape: lastScrape,
		ErrorRatePercent:     errorRate,
	}
}

func (c *Checker) checkStorage() bool {
	if err := c.store.Ping(); err != nil {
		log.Printf("[ERROR] storage health check: %v", err)
		return false
	}
	return true
}

func (c *Checker) checkSource(ctx context.Context) (bool, time.Duration) {
	start := time.Now()
	_, err := c.fetcher.FetchQuotePage(ctx, probeSymbol)
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("[ERROR] source health check: %v", err)
		return false, elapsed
	}
	return true, elapsed
}
