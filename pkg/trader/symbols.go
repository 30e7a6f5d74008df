package trader

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Fuzzy search drops tickers outside this length band.
const (
	minSymbolLen = 1
	maxSymbolLen = 12
)

// SymbolMid is one FindSymbols hit.
type SymbolMid struct {
	Symbol string  `json:"symbol"`
	Mid    float64 `json:"mid"`
}

// ListSymbols returns every symbol in the current mid snapshot, sorted.
// A nil limit returns all of them.
func (t *Trader) ListSymbols(ctx context.Context, limit *int) ([]string, error) {
	if limit != nil && *limit < 0 {
		return nil, validationError(fmt.Sprintf("limit must be >= 0, got %d", *limit))
	}
	mids, err := t.mids(ctx)
	if err != nil {
		return nil, err
	}
	syms := sortedSymbols(mids)
	if limit != nil && *limit < len(syms) {
		syms = syms[:*limit]
	}
	return syms, nil
}

// FindSymbols returns up to limit symbols containing query
// (case-insensitive) with their mid price.
func (t *Trader) FindSymbols(ctx context.Context, query string, limit int) ([]SymbolMid, error) {
	if limit < 0 {
		return nil, validationError(fmt.Sprintf("limit must be >= 0, got %d", limit))
	}
	mids, err := t.mids(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]SymbolMid, 0)
	for _, s := range sortedSymbols(mids) {
		if len(out) >= limit {
			break
		}
		if !strings.Contains(strings.ToLower(s), q) {
			continue
		}
		if n := utf8.RuneCountInString(s); n < minSymbolLen || n > maxSymbolLen {
			continue
		}
		out = append(out, SymbolMid{Symbol: s, Mid: mids[s]})
	}
	return out, nil
}

// EnsureSymbolExists fails with a validation error when symbol is not in
// the current mid snapshot.
func (t *Trader) EnsureSymbolExists(ctx context.Context, symbol string) error {
	symbol = normalizeSymbol(symbol)
	mids, err := t.mids(ctx)
	if err != nil {
		return err
	}
	if _, ok := mids[symbol]; !ok {
		return validationError(fmt.Sprintf(
			"symbol '%s' not found in exchange mids; call list_symbols()/find_symbols() first", symbol))
	}
	return nil
}

func sortedSymbols(mids map[string]float64) []string {
	syms := make([]string, 0, len(mids))
	for s := range mids {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}
