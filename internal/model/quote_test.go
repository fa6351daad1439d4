package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidSymbol(t *testing.T) {
	valid := []string{"A", "AAPL", "GOOGL", "ABCDEFGHIJ"}
	invalid := []string{"", "aapl", "BRK.B", "ABCDEFGHIJK", "AAPL1", "AA PL"}
	for _, s := range valid {
		if !ValidSymbol(s) {
			t.Errorf("ValidSymbol(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidSymbol(s) {
			t.Errorf("ValidSymbol(%q) = true, want false", s)
		}
	}
}

func validQuote() *Quote {
	return &Quote{
		Symbol:        "AAPL",
		Price:         decimal.RequireFromString("150.25"),
		Volume:        52914000,
		High:          decimal.RequireFromString("151.00"),
		Low:           decimal.RequireFromString("147.95"),
		Open:          decimal.RequireFromString("148.30"),
		PreviousClose: decimal.RequireFromString("148.10"),
	}
}

func TestQuoteValidate(t *testing.T) {
	minP := decimal.RequireFromString("0.01")
	maxP := decimal.RequireFromString("100000")

	if err := validQuote().Validate(minP, maxP, 0); err != nil {
		t.Fatalf("valid quote rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Quote)
	}{
		{"bad symbol", func(q *Quote) { q.Symbol = "aapl" }},
		{"price below bound", func(q *Quote) {
			q.Price = decimal.RequireFromString("0.001")
			q.Low = q.Price
		}},
		{"price above bound", func(q *Quote) {
			q.Price = decimal.RequireFromString("200000")
			q.High = q.Price
		}},
		{"high below low", func(q *Quote) { q.High = decimal.RequireFromString("100") }},
		{"price outside day range", func(q *Quote) {
			q.Low = decimal.RequireFromString("150.50")
			q.High = decimal.RequireFromString("151.00")
		}},
		{"negative volume", func(q *Quote) { q.Volume = -1 }},
		{"negative open", func(q *Quote) { q.Open = decimal.RequireFromString("-1") }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q := validQuote()
			c.mutate(q)
			if err := q.Validate(minP, maxP, 0); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestQuoteValidate_VolumeFloor(t *testing.T) {
	minP := decimal.RequireFromString("0.01")
	maxP := decimal.RequireFromString("100000")

	q := validQuote()
	q.Volume = 999
	if err := q.Validate(minP, maxP, 1000); err == nil {
		t.Error("expected volume-floor rejection")
	}
	q.Volume = 1000
	if err := q.Validate(minP, maxP, 1000); err != nil {
		t.Errorf("volume at floor rejected: %v", err)
	}
}

func TestDailyBarValidate(t *testing.T) {
	good := &DailyBar{
		Symbol:   "AAPL",
		Date:     "2024-03-15",
		Open:     decimal.RequireFromString("172.00"),
		High:     decimal.RequireFromString("173.50"),
		Low:      decimal.RequireFromString("171.20"),
		Close:    decimal.RequireFromString("172.62"),
		AdjClose: decimal.RequireFromString("172.62"),
		Volume:   121800000,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid bar rejected: %v", err)
	}
	if good.Key() != "AAPL#2024-03-15" {
		t.Errorf("Key = %s", good.Key())
	}

	bad := *good
	bad.Close = decimal.RequireFromString("999")
	if err := bad.Validate(); err == nil {
		t.Error("close outside range must fail")
	}

	bad = *good
	bad.Open = decimal.Zero
	if err := bad.Validate(); err == nil {
		t.Error("non-positive open must fail")
	}
}
