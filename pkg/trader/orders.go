package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

// tifAliases maps caller tokens to wire values, in the order they are
// listed back in error messages.
var tifAliases = []struct {
	alias string
	tif   venue.TimeInForce
}{
	{"GTC", venue.GoodTillCancel},
	{"IOC", venue.ImmediateOrCancel},
	{"ALO", venue.AddLiquidityOnly},
}

// ParseTimeInForce resolves a case- and whitespace-insensitive alias.
func ParseTimeInForce(token string) (venue.TimeInForce, error) {
	key := strings.ToUpper(strings.TrimSpace(token))
	supported := make([]string, 0, len(tifAliases))
	for _, a := range tifAliases {
		if a.alias == key {
			return a.tif, nil
		}
		supported = append(supported, a.alias)
	}
	return "", validationError(fmt.Sprintf(
		"unsupported tif '%s'. Supported values: %s", token, strings.Join(supported, ", ")))
}

// MarketOrder is the caller input for PlaceMarket.
type MarketOrder struct {
	Symbol     string
	Side       string
	Qty        float64
	DryRun     bool
	ReduceOnly bool
}

// LimitOrder is the caller input for PlaceLimit. An empty TIF means GTC.
type LimitOrder struct {
	Symbol     string
	Side       string
	Qty        float64
	Price      float64
	TIF        string
	DryRun     bool
	ReduceOnly bool
}

// OrderResult is either a dry-run echo of the request or the venue's raw
// response.
type OrderResult struct {
	DryRun   bool
	Request  *venue.OrderRequest
	Response json.RawMessage
}

func (r OrderResult) MarshalJSON() ([]byte, error) {
	if r.DryRun {
		return json.Marshal(struct {
			DryRun  bool                `json:"dry_run"`
			Request *venue.OrderRequest `json:"request"`
		}{true, r.Request})
	}
	if len(r.Response) == 0 {
		return []byte("null"), nil
	}
	return r.Response, nil
}

// PlaceMarket validates and builds a market order, then either returns it
// (dry run) or submits it.
func (t *Trader) PlaceMarket(ctx context.Context, o MarketOrder) (OrderResult, error) {
	isBuy, err := parseSide(o.Side)
	if err != nil {
		return OrderResult{}, err
	}
	size, err := positive(o.Qty, "qty", "qty must be greater than 0")
	if err != nil {
		return OrderResult{}, err
	}
	symbol := normalizeSymbol(o.Symbol)
	// Last check: it is the first one that calls the venue.
	if err := t.EnsureSymbolExists(ctx, symbol); err != nil {
		return OrderResult{}, err
	}

	req := venue.OrderRequest{
		Name:       symbol,
		IsBuy:      isBuy,
		Size:       size,
		OrderType:  venue.OrderType{Market: &venue.MarketOrderType{}},
		ReduceOnly: o.ReduceOnly,
	}
	if o.DryRun {
		return OrderResult{DryRun: true, Request: &req}, nil
	}

	resp, err := t.venue.MarketOpen(ctx, req)
	if err != nil {
		t.logger.Warnw("order_failed", "kind", "market", "symbol", symbol, "err", err)
		return OrderResult{}, upstreamError(err)
	}
	t.logger.Infow("order_submitted", "kind", "market", "symbol", symbol, "is_buy", isBuy, "sz", size)
	return OrderResult{Request: &req, Response: resp}, nil
}

// PlaceLimit validates and builds a limit order, then either returns it
// (dry run) or submits it.
func (t *Trader) PlaceLimit(ctx context.Context, o LimitOrder) (OrderResult, error) {
	isBuy, err := parseSide(o.Side)
	if err != nil {
		return OrderResult{}, err
	}
	size, err := positive(o.Qty, "qty", "qty must be greater than 0")
	if err != nil {
		return OrderResult{}, err
	}
	limitPx, err := positive(o.Price, "price", "price must be greater than 0 for limit orders")
	if err != nil {
		return OrderResult{}, err
	}
	tifToken := o.TIF
	if strings.TrimSpace(tifToken) == "" {
		tifToken = "GTC"
	}
	tif, err := ParseTimeInForce(tifToken)
	if err != nil {
		return OrderResult{}, err
	}
	symbol := normalizeSymbol(o.Symbol)
	// Last check: it is the first one that calls the venue.
	if err := t.EnsureSymbolExists(ctx, symbol); err != nil {
		return OrderResult{}, err
	}

	req := venue.OrderRequest{
		Name:       symbol,
		IsBuy:      isBuy,
		Size:       size,
		LimitPx:    limitPx,
		OrderType:  venue.OrderType{Limit: &venue.LimitOrderType{TIF: tif}},
		ReduceOnly: o.ReduceOnly,
	}
	if o.DryRun {
		return OrderResult{DryRun: true, Request: &req}, nil
	}

	resp, err := t.venue.Order(ctx, req)
	if err != nil {
		t.logger.Warnw("order_failed", "kind", "limit", "symbol", symbol, "err", err)
		return OrderResult{}, upstreamError(err)
	}
	t.logger.Infow("order_submitted", "kind", "limit", "symbol", symbol,
		"is_buy", isBuy, "sz", size, "limit_px", limitPx, "tif", tif)
	return OrderResult{Request: &req, Response: resp}, nil
}

// PlaceSpotMarket is not available: the connector has no spot order path.
func (t *Trader) PlaceSpotMarket(ctx context.Context, o MarketOrder) (OrderResult, error) {
	return OrderResult{}, notSupportedError("spot market orders are not supported by the venue connector")
}

// PlaceSpotLimit is not available: the connector has no spot order path.
func (t *Trader) PlaceSpotLimit(ctx context.Context, o LimitOrder) (OrderResult, error) {
	return OrderResult{}, notSupportedError("spot limit orders are not supported by the venue connector")
}

// CancelOrder cancels an open order by id. The owning symbol is read off
// the matching open order; malformed entries are skipped.
func (t *Trader) CancelOrder(ctx context.Context, orderID any) (json.RawMessage, error) {
	oid, err := ToInt(orderID, "order_id")
	if err != nil {
		return nil, err
	}

	orders, err := t.venue.OpenOrders(ctx, t.account)
	if err != nil {
		return nil, upstreamError(err)
	}

	for _, order := range orders {
		rawID, ok := order["oid"]
		if !ok {
			continue
		}
		id, err := ToInt(rawID, "oid")
		if err != nil || id != oid {
			continue
		}
		coin, ok := order["coin"].(string)
		if !ok || coin == "" {
			continue
		}

		resp, err := t.venue.Cancel(ctx, coin, oid)
		if err != nil {
			t.logger.Warnw("cancel_failed", "oid", oid, "coin", coin, "err", err)
			return nil, upstreamError(err)
		}
		t.logger.Infow("cancel_submitted", "oid", oid, "coin", coin)
		return resp, nil
	}
	return nil, validationError(fmt.Sprintf("order id %d not found in open orders", oid))
}

func parseSide(side string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "buy":
		return true, nil
	case "sell":
		return false, nil
	}
	return false, validationError("side must be 'buy' or 'sell'")
}

func positive(v float64, field, msg string) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, validationError(field + " must be a finite number")
	}
	if v <= 0 {
		return 0, validationError(msg)
	}
	return v, nil
}
