package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"QuoteSentinel/internal/fetch"
)

const apiHistoryBody = `[
	{"date":"2024-03-15T00:00:00.000Z","open":172.5,"high":173.2,"low":171.8,"close":172.62,"adjClose":172.1,"volume":41000000},
	{"date":"2024-03-14T00:00:00.000Z","open":173.1,"high":174.0,"low":172.4,"close":173.0,"adjClose":0,"volume":39500000},
	{"date":"2024-03-13T00:00:00.000Z","open":174.0,"high":170.0,"low":173.0,"close":173.5,"adjClose":173.5,"volume":38000000}
]`

func TestAPISourceFetchBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/AAPL/prices", r.URL.Path)
		require.Equal(t, "Token test-token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		require.Equal(t, "json", q.Get("format"))
		require.NotEmpty(t, q.Get("startDate"))
		require.NotEmpty(t, q.Get("endDate"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(apiHistoryBody))
	}))
	defer srv.Close()

	src := NewAPISource(APIOptions{BaseURL: srv.URL, Token: "test-token"})
	end := time.Now().UTC()
	bars, err := src.FetchBars(context.Background(), "AAPL", end.AddDate(0, 0, -30), end)
	require.NoError(t, err)

	// The 2024-03-13 row has high below low and must be skipped, not fatal.
	require.Len(t, bars, 2)
	require.Equal(t, "2024-03-15", bars[0].Date, "bars must be sorted newest first")
	require.Equal(t, "172.62", bars[0].Close.String())
	require.Equal(t, "172.1", bars[0].AdjClose.String())
	require.Equal(t, int64(41000000), bars[0].Volume)

	// A zero adjusted close falls back to the close.
	require.Equal(t, "173", bars[1].AdjClose.String())
}

func TestAPISourceFetchBars_SymbolNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewAPISource(APIOptions{BaseURL: srv.URL})
	_, err := src.FetchBars(context.Background(), "ZZZZ", time.Now(), time.Now())
	require.ErrorIs(t, err, fetch.ErrSymbolNotFound)
}

func TestAPISourceFetchBars_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewAPISource(APIOptions{BaseURL: srv.URL})
	_, err := src.FetchBars(context.Background(), "AAPL", time.Now(), time.Now())
	require.ErrorIs(t, err, fetch.ErrRateLimited)
}

func TestAPISourceFetchBars_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	src := NewAPISource(APIOptions{BaseURL: srv.URL})
	_, err := src.FetchBars(context.Background(), "AAPL", time.Now(), time.Now())
	require.Error(t, err)
}

func TestAPISourceDrivesManagerSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(apiHistoryBody))
	}))
	defer srv.Close()

	st := newFakeBarStore("")
	m := NewManager(NewAPISource(APIOptions{BaseURL: srv.URL}), st, 30)

	res := m.SyncSymbol(context.Background(), "AAPL")
	require.NoError(t, res.Err)
	require.Equal(t, 2, res.BarsAdded)

	// Change fields were backfilled from the prior close before storage.
	fresh := st.bars["AAPL#2024-03-15"]
	require.NotNil(t, fresh)
	require.Equal(t, "173", fresh.PreviousClose.String())
	require.Equal(t, "-0.38", fresh.DailyChangeNominal.String())
}
