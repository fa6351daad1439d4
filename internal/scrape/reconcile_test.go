package scrape

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReconcileChanges_DirectExtraction(t *testing.T) {
	bag := FieldBag{
		Change:        strField("+2.15"),
		ChangePercent: strField("+1.45"),
	}
	nominal, percent, degraded := reconcileChanges(bag, dec("150.25"), numField(dec("148.10")))
	if degraded {
		t.Fatal("direct extraction must not be degraded")
	}
	if !nominal.Equal(dec("2.15")) || !percent.Equal(dec("1.45")) {
		t.Errorf("got nominal=%s percent=%s", nominal, percent)
	}
}

func TestReconcileChanges_DeriveMissingPercent(t *testing.T) {
	bag := FieldBag{Change: strField("3.00")}
	nominal, percent, degraded := reconcileChanges(bag, dec("153.00"), numField(dec("150.00")))
	if degraded {
		t.Fatal("cross-derivation must not be degraded")
	}
	if !nominal.Equal(dec("3.00")) {
		t.Errorf("nominal = %s, want 3.00", nominal)
	}
	if !percent.Equal(dec("2")) {
		t.Errorf("percent = %s, want 2", percent)
	}
}

func TestReconcileChanges_DeriveMissingNominal(t *testing.T) {
	bag := FieldBag{ChangePercent: strField("2")}
	nominal, _, degraded := reconcileChanges(bag, dec("153.00"), numField(dec("150.00")))
	if degraded {
		t.Fatal("cross-derivation must not be degraded")
	}
	if !nominal.Equal(dec("3")) {
		t.Errorf("nominal = %s, want 3", nominal)
	}
}

func TestReconcileChanges_PriceDelta(t *testing.T) {
	nominal, percent, degraded := reconcileChanges(FieldBag{}, dec("148.50"), numField(dec("150.25")))
	if degraded {
		t.Fatal("price-delta must not be degraded")
	}
	if !nominal.Equal(dec("-1.75")) {
		t.Errorf("nominal = %s, want -1.75", nominal)
	}
	if !percent.Round(4).Equal(dec("-1.1647")) {
		t.Errorf("percent = %s, want -1.1647 after rounding", percent)
	}
}

// Extracted change fields that parse to zero must not shadow a computable
// price delta.
func TestReconcileChanges_ZeroDirectFallsToPriceDelta(t *testing.T) {
	bag := FieldBag{Change: strField("0.00")}
	nominal, _, degraded := reconcileChanges(bag, dec("148.50"), numField(dec("150.25")))
	if degraded {
		t.Fatal("should have fallen through to price delta")
	}
	if !nominal.Equal(dec("-1.75")) {
		t.Errorf("nominal = %s, want -1.75", nominal)
	}
}

func TestReconcileChanges_CombinedDisplay(t *testing.T) {
	bag := FieldBag{ChangeDisplay: strField("+2.15 (+1.45%)")}
	nominal, percent, degraded := reconcileChanges(bag, dec("150.25"), NumField{})
	if degraded {
		t.Fatal("combined display must not be degraded")
	}
	if !nominal.Equal(dec("2.15")) || !percent.Equal(dec("1.45")) {
		t.Errorf("got nominal=%s percent=%s", nominal, percent)
	}
}

func TestReconcileChanges_CombinedDisplayNegative(t *testing.T) {
	bag := FieldBag{ChangeDisplay: strField("-0.50 (-0.33%)")}
	nominal, percent, degraded := reconcileChanges(bag, dec("150.25"), NumField{})
	if degraded {
		t.Fatal("combined display must not be degraded")
	}
	if !nominal.Equal(dec("-0.50")) || !percent.Equal(dec("-0.33")) {
		t.Errorf("got nominal=%s percent=%s", nominal, percent)
	}
}

func TestReconcileChanges_ZeroFallback(t *testing.T) {
	nominal, percent, degraded := reconcileChanges(FieldBag{}, dec("150.25"), NumField{})
	if !degraded {
		t.Fatal("expected degraded flag when every strategy fails")
	}
	if !nominal.IsZero() || !percent.IsZero() {
		t.Errorf("got nominal=%s percent=%s, want zeros", nominal, percent)
	}
}

func TestParseCombinedDisplay(t *testing.T) {
	cases := []struct {
		in      string
		nominal string
		percent string
		ok      bool
	}{
		{"+2.15 (+1.45%)", "2.15", "1.45", true},
		{"-0.50 (-0.33%)", "-0.50", "-0.33", true},
		{"2.15 (1.45%)", "2.15", "1.45", true},
		{"0.00 (0.00%)", "0.00", "0.00", true},
		{"no numbers here", "0", "0", false},
		{"2.15", "0", "0", false},
	}
	for _, c := range cases {
		nominal, percent, ok := parseCombinedDisplay(c.in)
		if ok != c.ok {
			t.Errorf("parseCombinedDisplay(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && (!nominal.Equal(dec(c.nominal)) || !percent.Equal(dec(c.percent))) {
			t.Errorf("parseCombinedDisplay(%q) = %s, %s", c.in, nominal, percent)
		}
	}
}
