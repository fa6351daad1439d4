package history

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"QuoteSentinel/internal/fetch"
	"QuoteSentinel/internal/model"
)

func coverageManager(st *fakeBarStore) *Manager {
	return NewManager(NewPageSource(&fetch.MockFetcher{}), st, 30)
}

func TestCoverageReport(t *testing.T) {
	st := newFakeBarStore("")
	st.BatchPutBars([]*model.DailyBar{
		{Symbol: "AAPL", Date: "2024-03-14"},
		{Symbol: "AAPL", Date: "2024-03-15"},
	})

	report, err := coverageManager(st).CoverageReport(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)

	require.Equal(t, 2, report.TotalSymbols)
	require.Equal(t, 1, report.SymbolsWithData)
	require.InDelta(t, 50.0, report.CoveragePercent, 0.01)
	require.Equal(t, 2, report.TotalBars)
	require.Equal(t, "2024-03-15", report.EarliestLatest)
	require.Equal(t, "2024-03-15", report.NewestLatest)
	require.NotEmpty(t, report.GeneratedAt)

	require.Len(t, report.Symbols, 2)
	require.True(t, report.Symbols[0].HasData)
	require.Equal(t, "2024-03-15", report.Symbols[0].LatestDate)
	require.Equal(t, 2, report.Symbols[0].BarCount)
	require.False(t, report.Symbols[1].HasData)
	require.Empty(t, report.Symbols[1].LatestDate)
}

func TestCoverageReport_EmptyStore(t *testing.T) {
	report, err := coverageManager(newFakeBarStore("")).CoverageReport(context.Background(), []string{"AAPL"})
	require.NoError(t, err)
	require.Equal(t, 0, report.SymbolsWithData)
	require.Zero(t, report.CoveragePercent)
	require.Empty(t, report.EarliestLatest)
}

func TestCoverageReport_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := coverageManager(newFakeBarStore("")).CoverageReport(ctx, []string{"AAPL"})
	require.ErrorIs(t, err, context.Canceled)
}

func snapshotQuote(symbol string) *model.Quote {
	return &model.Quote{
		Symbol:        symbol,
		Price:         decimal.RequireFromString("150.25"),
		Open:          decimal.RequireFromString("149.80"),
		High:          decimal.RequireFromString("152.10"),
		Low:           decimal.RequireFromString("148.50"),
		PreviousClose: decimal.RequireFromString("149.00"),
		Volume:        45123456,
	}
}

func TestCreateDailySnapshot(t *testing.T) {
	st := newFakeBarStore("")
	m := coverageManager(st)

	res := m.CreateDailySnapshot([]*model.Quote{snapshotQuote("AAPL")}, "2024-03-15")
	require.Equal(t, "2024-03-15", res.Date)
	require.Equal(t, 1, res.Total)
	require.Equal(t, 1, res.Saved)
	require.Empty(t, res.Skipped)

	bar := st.bars["AAPL#2024-03-15"]
	require.NotNil(t, bar)
	// The live price stands in for both close and adjusted close.
	require.Equal(t, "150.25", bar.Close.String())
	require.Equal(t, "150.25", bar.AdjClose.String())
	require.Equal(t, int64(45123456), bar.Volume)
	require.Equal(t, "149", bar.PreviousClose.String())
}

func TestCreateDailySnapshot_DefaultsToToday(t *testing.T) {
	st := newFakeBarStore("")
	res := coverageManager(st).CreateDailySnapshot([]*model.Quote{snapshotQuote("AAPL")}, "")
	require.Equal(t, time.Now().UTC().Format(model.DateFormat), res.Date)
}

func TestCreateDailySnapshot_SkipsInvalidQuote(t *testing.T) {
	bad := snapshotQuote("MSFT")
	bad.Price = decimal.Zero // derived close fails bar validation

	st := newFakeBarStore("")
	res := coverageManager(st).CreateDailySnapshot([]*model.Quote{snapshotQuote("AAPL"), bad}, "2024-03-15")
	require.Equal(t, 2, res.Total)
	require.Equal(t, 1, res.Saved)
	require.Equal(t, []string{"MSFT"}, res.Skipped)
	require.Nil(t, st.bars["MSFT#2024-03-15"])
}
