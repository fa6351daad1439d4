package store

import "QuoteSentinel/internal/model"

// NoopStore is a no-op implementation used when no database path is
// configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) PutQuote(_ *model.Quote) error                    { return nil }
func (n *NoopStore) GetQuote(_ string) (*model.Quote, error)          { return nil, nil }
func (n *NoopStore) BatchPutQuotes(qs []*model.Quote) (int, []string) { return len(qs), nil }
func (n *NoopStore) ScanQuotes() ([]*model.Quote, error)              { return nil, nil }
func (n *NoopStore) DeleteQuote(_ string) error                       { return nil }

func (n *NoopStore) PutBar(_ *model.DailyBar) error                    { return nil }
func (n *NoopStore) BatchPutBars(bs []*model.DailyBar) (int, []string) { return len(bs), nil }
func (n *NoopStore) QueryBars(_, _, _ string, _ int) ([]*model.DailyBar, error) {
	return nil, nil
}
func (n *NoopStore) LatestDate(_ string) (string, bool, error)  { return "", false, nil }
func (n *NoopStore) DeleteBarRange(_, _, _ string) (int, error) { return 0, nil }

func (n *NoopStore) Ping() error  { return nil }
func (n *NoopStore) Close() error { return nil }
