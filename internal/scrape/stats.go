package scrape

// Stats is the explicit accumulator for one batch (or a merged run of
// batches). It is threaded through and returned by each batch call rather
// than shared, so the core stays trivially testable and parallel-safe.
type Stats struct {
	RequestsMade      int
	SuccessfulScrapes int
	FailedScrapes     int
	RateLimitHits     int
	TimeoutErrors     int
	ParsingErrors     int
	ValidationErrors  int
	RegularData       int
	PreMarketData     int
	PostMarketData    int
	DegradedChanges   int
	RangeClamps       int
}

// Merge adds other's counters into s.
func (s *Stats) Merge(other *Stats) {
	s.RequestsMade += other.RequestsMade
	s.SuccessfulScrapes += other.SuccessfulScrapes
	s.FailedScrapes += other.FailedScrapes
	s.RateLimitHits += other.RateLimitHits
	s.TimeoutErrors += other.TimeoutErrors
	s.ParsingErrors += other.ParsingErrors
	s.ValidationErrors += other.ValidationErrors
	s.RegularData += other.RegularData
	s.PreMarketData += other.PreMarketData
	s.PostMarketData += other.PostMarketData
	s.DegradedChanges += other.DegradedChanges
	s.RangeClamps += other.RangeClamps
}

// SuccessRate returns successful scrapes as a percentage of requests made.
func (s *Stats) SuccessRate() float64 {
	if s.RequestsMade == 0 {
		return 0
	}
	return float64(s.SuccessfulScrapes) / float64(s.RequestsMade) * 100
}

func (s *Stats) countState(state MarketState) {
	switch state {
	case StatePostMarket:
		s.PostMarketData++
	case StatePreMarket:
		s.PreMarketData++
	default:
		s.RegularData++
	}
}
