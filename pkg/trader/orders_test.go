package trader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

func newOrderFixture() (*fakeVenue, *Trader) {
	fv := &fakeVenue{
		mids:       map[string]string{"BTC": "65000", "ETH": "3000", "SOL": "150"},
		submitResp: json.RawMessage(`{"status":"ok","response":{"type":"order"}}`),
	}
	return fv, New(fv, "0xabc", nil)
}

func TestPlaceMarketDryRun(t *testing.T) {
	fv, tr := newOrderFixture()

	res, err := tr.PlaceMarket(context.Background(), MarketOrder{
		Symbol: "btc", Side: "BUY", Qty: 0.01, DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Empty(t, fv.submitted)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dry_run":true,"request":{
		"name":"BTC","is_buy":true,"sz":0.01,"order_type":{"mkt":{}},"reduce_only":false}}`, string(out))
}

func TestPlaceMarketSubmits(t *testing.T) {
	fv, tr := newOrderFixture()

	res, err := tr.PlaceMarket(context.Background(), MarketOrder{
		Symbol: "ETH", Side: "sell", Qty: 2, ReduceOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, fv.submitted, 1)
	assert.False(t, fv.submitted[0].IsBuy)
	assert.True(t, fv.submitted[0].ReduceOnly)
	assert.True(t, fv.submitted[0].IsMarket())

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, string(fv.submitResp), string(out))
}

func TestPlaceMarketZeroQty(t *testing.T) {
	fv, tr := newOrderFixture()

	_, err := tr.PlaceMarket(context.Background(), MarketOrder{Symbol: "ETH", Side: "buy", Qty: 0, DryRun: true})
	require.Error(t, err)
	assert.EqualError(t, err, "qty must be greater than 0")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, fv.allMidsCalls)
}

func TestPlaceMarketValidation(t *testing.T) {
	cases := []struct {
		order MarketOrder
		msg   string
	}{
		{MarketOrder{Symbol: "BTC", Side: "long", Qty: 1}, "side must be 'buy' or 'sell'"},
		{MarketOrder{Symbol: "BTC", Side: "buy", Qty: -1}, "qty must be greater than 0"},
		{MarketOrder{Symbol: "BTC", Side: "buy", Qty: math.NaN()}, "qty must be a finite number"},
		{MarketOrder{Symbol: "BTC", Side: "buy", Qty: math.Inf(1)}, "qty must be a finite number"},
		{MarketOrder{Symbol: "XYZ", Side: "buy", Qty: 1},
			"symbol 'XYZ' not found in exchange mids; call list_symbols()/find_symbols() first"},
	}
	for _, tc := range cases {
		fv, tr := newOrderFixture()
		_, err := tr.PlaceMarket(context.Background(), tc.order)
		require.Error(t, err)
		assert.EqualError(t, err, tc.msg)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, fv.submitted)
	}
}

func TestPlaceLimitDryRun(t *testing.T) {
	fv, tr := newOrderFixture()

	res, err := tr.PlaceLimit(context.Background(), LimitOrder{
		Symbol: "SOL", Side: "buy", Qty: 3, Price: 140.5, TIF: " alo ", DryRun: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Request)
	assert.Equal(t, venue.AddLiquidityOnly, res.Request.OrderType.Limit.TIF)
	assert.Equal(t, 140.5, res.Request.LimitPx)
	assert.Empty(t, fv.submitted)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dry_run":true,"request":{"name":"SOL","is_buy":true,"sz":3,
		"limit_px":140.5,"order_type":{"limit":{"tif":"Alo"}},"reduce_only":false}}`, string(out))
}

func TestPlaceLimitDefaultsToGtc(t *testing.T) {
	fv, tr := newOrderFixture()

	_, err := tr.PlaceLimit(context.Background(), LimitOrder{Symbol: "BTC", Side: "sell", Qty: 1, Price: 70000})
	require.NoError(t, err)
	require.Len(t, fv.submitted, 1)
	assert.Equal(t, venue.GoodTillCancel, fv.submitted[0].OrderType.Limit.TIF)
	assert.False(t, fv.submitted[0].IsMarket())
}

func TestPlaceLimitValidation(t *testing.T) {
	cases := []struct {
		order LimitOrder
		msg   string
	}{
		{LimitOrder{Symbol: "BTC", Side: "buy", Qty: 1, Price: 0}, "price must be greater than 0 for limit orders"},
		{LimitOrder{Symbol: "BTC", Side: "buy", Qty: 1, Price: math.Inf(-1)}, "price must be a finite number"},
		{LimitOrder{Symbol: "BTC", Side: "buy", Qty: 1, Price: 1, TIF: "FOK"},
			"unsupported tif 'FOK'. Supported values: GTC, IOC, ALO"},
		// Local checks run before the symbol lookup.
		{LimitOrder{Symbol: "XYZ", Side: "buy", Qty: 0, Price: 1}, "qty must be greater than 0"},
	}
	for _, tc := range cases {
		fv, tr := newOrderFixture()
		_, err := tr.PlaceLimit(context.Background(), tc.order)
		require.Error(t, err)
		assert.EqualError(t, err, tc.msg)
		assert.Zero(t, fv.allMidsCalls)
	}
}

func TestParseTimeInForce(t *testing.T) {
	for token, want := range map[string]venue.TimeInForce{
		"gtc": venue.GoodTillCancel, " GTC ": venue.GoodTillCancel,
		"Ioc": venue.ImmediateOrCancel, "alo": venue.AddLiquidityOnly,
	} {
		got, err := ParseTimeInForce(token)
		require.NoError(t, err)
		assert.Equal(t, want, got, "token %q", token)
	}
}

func TestPlaceOrderUpstreamError(t *testing.T) {
	fv, tr := newOrderFixture()
	fv.submitErr = errors.New("exchange said no")

	_, err := tr.PlaceLimit(context.Background(), LimitOrder{Symbol: "BTC", Side: "buy", Qty: 1, Price: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.EqualError(t, err, "exchange said no")
}

func TestSpotOrdersNotSupported(t *testing.T) {
	fv, tr := newOrderFixture()

	_, err := tr.PlaceSpotMarket(context.Background(), MarketOrder{Symbol: "BTC", Side: "buy", Qty: 1})
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = tr.PlaceSpotLimit(context.Background(), LimitOrder{Symbol: "BTC", Side: "buy", Qty: 1, Price: 1})
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.Empty(t, fv.submitted)
}

func TestCancelOrder(t *testing.T) {
	fv, tr := newOrderFixture()
	fv.orders = []map[string]any{
		{"coin": "ETH"},
		{"oid": "garbage", "coin": "ETH"},
		{"oid": json.Number("7"), "coin": ""},
		{"oid": json.Number("7"), "coin": "BTC"},
	}

	resp, err := tr.CancelOrder(context.Background(), "7")
	require.NoError(t, err)
	assert.JSONEq(t, string(fv.submitResp), string(resp))
	assert.Equal(t, []cancelCall{{"BTC", 7}}, fv.cancels)
}

func TestCancelOrderNotFound(t *testing.T) {
	fv, tr := newOrderFixture()
	fv.orders = []map[string]any{{"oid": 1.0, "coin": "BTC"}}

	_, err := tr.CancelOrder(context.Background(), 99)
	require.Error(t, err)
	assert.EqualError(t, err, "order id 99 not found in open orders")
	assert.Empty(t, fv.cancels)
}

func TestCancelOrderBadID(t *testing.T) {
	_, tr := newOrderFixture()
	_, err := tr.CancelOrder(context.Background(), "x1")
	assert.EqualError(t, err, `order_id must be an integer, got "x1"`)
}

func TestCancelOrderSubmitError(t *testing.T) {
	fv, tr := newOrderFixture()
	fv.orders = []map[string]any{{"oid": 5, "coin": "SOL"}}
	fv.submitErr = fmt.Errorf("status 500")

	_, err := tr.CancelOrder(context.Background(), 5)
	assert.ErrorIs(t, err, ErrUpstream)
}
