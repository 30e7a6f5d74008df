package trader

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

// priceStrategy returns ok=false to hand over to the next strategy.
type priceStrategy struct {
	name string
	find func(ctx context.Context, symbol string) (float64, bool)
}

// markPriceAccessors lists the venue's mark price capabilities in
// preference order: the older accessor first, then the newer one.
func (t *Trader) markPriceAccessors() []priceStrategy {
	var out []priceStrategy
	if p, ok := t.venue.(venue.LegacyMarkPricer); ok {
		out = append(out, priceStrategy{name: "GetMarkPrice", find: t.accessor(p.GetMarkPrice)})
	}
	if p, ok := t.venue.(venue.MarkPricer); ok {
		out = append(out, priceStrategy{name: "MarkPrice", find: t.accessor(p.MarkPrice)})
	}
	return out
}

func (t *Trader) accessor(get func(ctx context.Context, coin string) (any, error)) func(context.Context, string) (float64, bool) {
	return func(ctx context.Context, symbol string) (float64, bool) {
		raw, err := get(ctx, symbol)
		if err != nil {
			t.logger.Debugw("mark_price_accessor_failed", "symbol", symbol, "err", err)
			return 0, false
		}
		return CoercePrice(raw)
	}
}

// MarkPrice returns the latest mark price for symbol. It walks the mark
// price accessors, then the mid snapshot, then the metadata tree, and only
// fails once all of them came up empty. A failed mids feed is reported as
// an upstream error, not as an unknown symbol.
func (t *Trader) MarkPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = normalizeSymbol(symbol)
	accessors := t.markPriceAccessors()

	var midsErr error
	midPrice := func(ctx context.Context, symbol string) (float64, bool) {
		mids, err := t.mids(ctx)
		if err != nil {
			midsErr = err
			return 0, false
		}
		px, ok := mids[symbol]
		return px, ok
	}

	chain := append([]priceStrategy{}, accessors...)
	chain = append(chain,
		priceStrategy{name: "mids", find: midPrice},
		priceStrategy{name: "meta", find: t.metaPrice},
	)

	for _, s := range chain {
		if px, ok := s.find(ctx, symbol); ok {
			return px, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, upstreamError(err)
		}
	}

	if midsErr != nil {
		t.logger.Warnw("mark_price_mids_failed", "symbol", symbol, "err", midsErr)
		return 0, midsErr
	}

	names := make([]string, 0, len(accessors))
	for _, a := range accessors {
		names = append(names, a.name)
	}
	tried := strings.Join(names, ", ")
	if tried == "" {
		tried = "no known mark price methods"
	}
	return 0, lookupError(fmt.Sprintf(
		"venue does not expose a usable mark price method (tried: %s); and symbol '%s' not found in mids",
		tried, symbol))
}

// metaPrice searches an older-style metadata tree for an entry naming the
// symbol. It covers venues whose mark price only lives in metadata.
func (t *Trader) metaPrice(ctx context.Context, symbol string) (float64, bool) {
	mp, ok := t.venue.(venue.MetaProvider)
	if !ok {
		return 0, false
	}
	meta, err := mp.Meta(ctx)
	if err != nil {
		t.logger.Debugw("meta_unavailable", "symbol", symbol, "err", err)
		return 0, false
	}
	return priceFromMeta(meta, symbol)
}

var (
	metaNameFields  = []string{"symbol", "coin", "name", "ticker"}
	metaPriceFields = []string{"markPx", "mark_price", "markPrice", "px", "price"}
)

func priceFromMeta(meta any, symbol string) (float64, bool) {
	containers := []any{meta}
	if m, ok := meta.(map[string]any); ok {
		containers = []any{m, m["universe"], m["markets"], m["assets"]}
	}

	for _, container := range containers {
		switch c := container.(type) {
		case map[string]any:
			if px, ok := priceFromEntry(c, symbol); ok {
				return px, true
			}
		case []any:
			for _, item := range c {
				if px, ok := priceFromEntry(item, symbol); ok {
					return px, true
				}
			}
		}
	}
	return 0, false
}

func priceFromEntry(raw any, symbol string) (float64, bool) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return 0, false
	}
	for _, field := range metaNameFields {
		name, present := entry[field]
		if !present || strings.ToUpper(fmt.Sprint(name)) != symbol {
			continue
		}
		for _, key := range metaPriceFields {
			if v, present := entry[key]; present {
				return scalarPrice(v)
			}
		}
	}
	return 0, false
}

// mids builds a fresh snapshot of positive mid prices keyed by upper-case
// symbol. Entries that do not parse are dropped.
func (t *Trader) mids(ctx context.Context) (map[string]float64, error) {
	raw, err := t.venue.AllMids(ctx)
	if err != nil {
		return nil, upstreamError(err)
	}
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		px, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || !(px > 0) || math.IsInf(px, 1) {
			continue
		}
		out[strings.ToUpper(k)] = px
	}
	return out, nil
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
