package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"QuoteSentinel/internal/model"
)

// defaultSymbols is a built-in NASDAQ-100 subset used when no symbols file is
// present.
var defaultSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "NVDA", "META", "TSLA",
	"AVGO", "COST", "NFLX", "AMD", "PEP", "ADBE", "CSCO", "TMUS",
	"INTC", "QCOM", "INTU", "TXN", "CMCSA", "AMGN", "HON", "AMAT",
	"BKNG", "SBUX", "GILD", "ADI", "MDLZ", "PANW", "REGN", "VRTX",
	"LRCX", "ISRG", "MU", "PYPL", "KLAC", "SNPS", "CDNS", "ABNB",
	"MAR", "CRWD", "ORLY", "CTAS", "MRVL", "CSX", "ADSK", "WDAY",
	"PCAR", "NXPI", "ROP", "MNST", "CPRT", "FTNT", "PAYX", "ODFL",
	"ROST", "KDP", "FAST", "EA", "KHC", "VRSK", "CHTR", "EXC",
	"IDXX", "AEP", "CTSH", "LULU", "DDOG", "XEL", "BKR", "GEHC",
	"CCEP", "MCHP", "DXCM", "TTWO", "ANSS", "ON", "CSGP", "ZS",
	"WBD", "GFS", "FANG", "MDB", "BIIB", "ILMN", "MRNA", "WBA",
	"DLTR", "SIRI", "ENPH", "TEAM", "DASH", "ARM", "SMCI", "CDW",
	"TTD", "AZN", "LIN", "PDD",
}

// symbolsDocument accepts the common shapes a symbols file arrives in:
// a bare array, {"symbols": [...]}, or {"data": [...]}.
type symbolsDocument struct {
	Symbols []string `json:"symbols"`
	Data    []string `json:"data"`
}

// LoadSymbols reads the ticker list from a JSON file. A missing file falls
// back to the built-in list; a present but unreadable file is an error.
// Symbols are uppercased, deduplicated, and filtered to valid tickers.
func LoadSymbols(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[WARN] symbols file %s not found, using built-in list (%d symbols)", path, len(defaultSymbols))
			return append([]string(nil), defaultSymbols...), nil
		}
		return nil, fmt.Errorf("read symbols file: %w", err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		var doc symbolsDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse symbols file: %w", err)
		}
		raw = doc.Symbols
		if len(raw) == 0 {
			raw = doc.Data
		}
	}

	seen := make(map[string]bool, len(raw))
	symbols := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		if !model.ValidSymbol(s) {
			log.Printf("[WARN] skipping invalid symbol %q", s)
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("symbols file %s contains no valid symbols", path)
	}
	return symbols, nil
}
