package scrape

import (
	"strings"

	"github.com/shopspring/decimal"
)

// missingTokens are placeholder strings the source emits in place of data.
// They parse to "absent", never to an error.
var missingTokens = map[string]bool{
	"N/A": true, "NA": true, "NULL": true, "NONE": true, "--": true,
}

func isMissingToken(s string) bool {
	return s == "" || missingTokens[strings.ToUpper(s)]
}

// ParseMoney converts a raw money-like token to a decimal. It strips thousands
// separators, currency symbols and percent signs, and reads parenthesized
// values as negative. Returns ok=false for placeholder tokens and anything
// malformed; it never fails loudly, since garbage input is the common case.
func ParseMoney(text string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(text)
	if isMissingToken(cleaned) {
		return decimal.Zero, false
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, "%", "")
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}
	if isMissingToken(cleaned) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseVolume converts a raw volume token to a count. Trailing K/M/B suffixes
// (case-insensitive) scale the numeric prefix by 1e3/1e6/1e9. Same placeholder
// handling as ParseMoney.
func ParseVolume(text string) (int64, bool) {
	cleaned := strings.TrimSpace(text)
	if isMissingToken(cleaned) {
		return 0, false
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	multiplier := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(strings.ToUpper(cleaned), "K"):
		multiplier = decimal.NewFromInt(1_000)
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(strings.ToUpper(cleaned), "M"):
		multiplier = decimal.NewFromInt(1_000_000)
		cleaned = cleaned[:len(cleaned)-1]
	case strings.HasSuffix(strings.ToUpper(cleaned), "B"):
		multiplier = decimal.NewFromInt(1_000_000_000)
		cleaned = cleaned[:len(cleaned)-1]
	}
	if isMissingToken(cleaned) {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.Mul(multiplier).IntPart(), true
}
