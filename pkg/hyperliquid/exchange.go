package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

// Order submits a limit order.
func (c *Client) Order(ctx context.Context, req venue.OrderRequest) (json.RawMessage, error) {
	if req.OrderType.Limit == nil {
		return nil, fmt.Errorf("order for %s carries no limit type", req.Name)
	}
	asset, err := c.asset(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	wire, err := orderWire(asset, req, req.LimitPx, string(req.OrderType.Limit.TIF))
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, NewOrderAction(wire))
}

// MarketOpen submits an aggressive IOC limit order priced off the current
// mid with the configured slippage.
func (c *Client) MarketOpen(ctx context.Context, req venue.OrderRequest) (json.RawMessage, error) {
	asset, err := c.asset(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	mids, err := c.AllMids(ctx)
	if err != nil {
		return nil, err
	}
	mid, err := strconv.ParseFloat(mids[asset.Name], 64)
	if err != nil || mid <= 0 {
		return nil, fmt.Errorf("no mid price for %s", asset.Name)
	}

	px := SlippagePrice(mid, req.IsBuy, c.slippage, asset.SzDecimals)
	wire, err := orderWire(asset, req, px, string(venue.ImmediateOrCancel))
	if err != nil {
		return nil, err
	}
	c.logger.Debugw("market_order_priced", "coin", asset.Name, "mid", mid, "px", px)
	return c.submit(ctx, NewOrderAction(wire))
}

func (c *Client) Cancel(ctx context.Context, coin string, oid int64) (json.RawMessage, error) {
	asset, err := c.asset(ctx, coin)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, NewCancelAction(CancelWire{Asset: asset.Index, OID: oid}))
}

func orderWire(asset Asset, req venue.OrderRequest, px float64, tif string) (OrderWire, error) {
	p, err := FloatToWire(px)
	if err != nil {
		return OrderWire{}, errors.Wrap(err, "price")
	}
	s, err := FloatToWire(req.Size)
	if err != nil {
		return OrderWire{}, errors.Wrap(err, "size")
	}
	return OrderWire{
		Asset:      asset.Index,
		IsBuy:      req.IsBuy,
		LimitPx:    p,
		Size:       s,
		ReduceOnly: req.ReduceOnly,
		OrderType:  OrderTypeWire{Limit: &LimitWire{TIF: tif}},
	}, nil
}

// submit signs action with a millisecond nonce and posts it to /exchange.
func (c *Client) submit(ctx context.Context, action any) (json.RawMessage, error) {
	if c.signer == nil {
		return nil, errors.New("exchange calls need a signing key")
	}
	nonce := uint64(c.clock.Now().UnixMilli())

	sig, err := c.eip712.SignL1Action(c.signer, action, c.vault, nonce, c.isMainnet)
	if err != nil {
		return nil, errors.Wrap(err, "sign action")
	}

	raw, err := c.post(ctx, exchangePath, NewExchangeRequest(action, nonce, sig, c.vault))
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("exchange returned invalid JSON: %q", raw)
	}
	return json.RawMessage(raw), nil
}
