package model

// HealthStatus is the result of a full health check pass.
type HealthStatus struct {
	Status               string  `json:"status"` // "healthy" or "unhealthy"
	Timestamp            string  `json:"timestamp"`
	StorageConnection    bool    `json:"storage_connection"`
	SourceConnection     bool    `json:"source_connection"`
	SourceResponseMillis int64   `json:"source_response_ms"`
	LastSuccessfulScrape string  `json:"last_successful_scrape,omitempty"`
	ErrorRatePercent     float64 `json:"error_rate_percent"`
}

// Healthy reports whether every checked component passed.
func (h *HealthStatus) Healthy() bool { return h.Status == "healthy" }
