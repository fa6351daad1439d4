package health

import (
	"context"
	"errors"
	"testing"

	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/store"
)

type failingStore struct {
	*store.NoopStore
}

func (f *failingStore) Ping() error { return errors.New("connection refused") }

func TestCheck_AllHealthy(t *testing.T) {
	fetcher := &fetch.MockFetcher{Pages: map[string][]byte{
		"AAPL": []byte("<html></html>"),
	}}
	c := NewChecker(store.NewNoopStore(), fetcher)

	status := c.Check(context.Background(), "2024-03-15T20:00:05Z", 2.5)
	if !status.Healthy() {
		t.Fatalf("expected healthy, got %+v", status)
	}
	if !status.StorageConnection || !status.SourceConnection {
		t.Errorf("component flags: %+v", status)
	}
	if status.LastSuccessfulScrape != "2024-03-15T20:00:05Z" {
		t.Errorf("last scrape = %s", status.LastSuccessfulScrape)
	}
	if status.ErrorRatePercent != 2.5 {
		t.Errorf("error rate = %f", status.ErrorRatePercent)
	}
	if status.Timestamp == "" {
		t.Error("expected timestamp")
	}
}

func TestCheck_StorageDown(t *testing.T) {
	fetcher := &fetch.MockFetcher{Pages: map[string][]byte{
		"AAPL": []byte("<html></html>"),
	}}
	c := NewChecker(&failingStore{store.NewNoopStore()}, fetcher)

	status := c.Check(context.Background(), "", 0)
	if status.Healthy() {
		t.Fatal("expected unhealthy when storage ping fails")
	}
	if status.StorageConnection {
		t.Error("storage flag should be false")
	}
	if !status.SourceConnection {
		t.Error("source flag should be true")
	}
}

func TestCheck_SourceDown(t *testing.T) {
	c := NewChecker(store.NewNoopStore(), &fetch.MockFetcher{Err: fetch.ErrNetwork})

	status := c.Check(context.Background(), "", 0)
	if status.Healthy() {
		t.Fatal("expected unhealthy when source probe fails")
	}
	if status.SourceConnection {
		t.Error("source flag should be false")
	}
	if !status.StorageConnection {
		t.Error("storage flag should be true")
	}
}
