// Package venue defines the contract between the trading core and an
// exchange connector.
package venue

import (
	"context"
	"encoding/json"
)

// TimeInForce is the wire spelling of an order's time-in-force.
type TimeInForce string

const (
	GoodTillCancel    TimeInForce = "Gtc"
	ImmediateOrCancel TimeInForce = "Ioc"
	AddLiquidityOnly  TimeInForce = "Alo"
)

// OrderRequest is the canonical order payload. It is what a dry run returns
// and what the connector submits.
type OrderRequest struct {
	Name       string    `json:"name"`
	IsBuy      bool      `json:"is_buy"`
	Size       float64   `json:"sz"`
	LimitPx    float64   `json:"limit_px,omitempty"`
	OrderType  OrderType `json:"order_type"`
	ReduceOnly bool      `json:"reduce_only"`
}

// IsMarket reports whether the request carries no limit price.
func (r OrderRequest) IsMarket() bool { return r.OrderType.Market != nil }

// OrderType is a tagged union: exactly one of Market or Limit is set.
type OrderType struct {
	Market *MarketOrderType `json:"mkt,omitempty"`
	Limit  *LimitOrderType  `json:"limit,omitempty"`
}

type MarketOrderType struct{}

type LimitOrderType struct {
	TIF TimeInForce `json:"tif"`
}

// AccountState is the clearinghouse state document. Only the keys below are
// read; which position key is populated depends on the account mode.
type AccountState struct {
	AssetPositions             any `json:"assetPositions"`
	PerpPositions              any `json:"perpPositions"`
	AssetPositionsPerps        any `json:"assetPositionsPerps"`
	SpotPositions              any `json:"spotPositions"`
	Balances                   any `json:"balances"`
	MarginSummary              any `json:"marginSummary"`
	CrossMarginSummary         any `json:"crossMarginSummary"`
	CrossMaintenanceMarginUsed any `json:"crossMaintenanceMarginUsed"`
	Withdrawable               any `json:"withdrawable"`
	Time                       any `json:"time"`
}

// Venue is the connector surface every deployment must provide.
type Venue interface {
	// AllMids returns symbol -> mid price as reported upstream.
	AllMids(ctx context.Context) (map[string]string, error)
	UserState(ctx context.Context, user, dex string) (AccountState, error)
	OpenOrders(ctx context.Context, user string) ([]map[string]any, error)
	// Order submits a limit order. The response is returned untouched.
	Order(ctx context.Context, req OrderRequest) (json.RawMessage, error)
	// MarketOpen submits a market order.
	MarketOpen(ctx context.Context, req OrderRequest) (json.RawMessage, error)
	Cancel(ctx context.Context, coin string, oid int64) (json.RawMessage, error)
}

// Optional capabilities. Connector versions differ in which of these they
// expose; the core probes for them with type assertions.

// MarkPricer is the current mark price accessor.
type MarkPricer interface {
	MarkPrice(ctx context.Context, coin string) (any, error)
}

// LegacyMarkPricer is the older spelling of MarkPricer.
type LegacyMarkPricer interface {
	GetMarkPrice(ctx context.Context, coin string) (any, error)
}

// MetaProvider exposes the raw market metadata tree.
type MetaProvider interface {
	Meta(ctx context.Context) (any, error)
}
