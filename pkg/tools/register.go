package tools

import (
	"context"
	"strings"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/trader"
)

const (
	defaultListLimit = 50
	defaultFindLimit = 20
)

func schema(required []string, props map[string]any) map[string]any {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func withDefault(p map[string]any, def any) map[string]any {
	p["default"] = def
	return p
}

func orderProps(limit bool, reduceOnly bool) map[string]any {
	props := map[string]any{
		"symbol":  prop("string", "Market symbol, e.g. BTC"),
		"side":    prop("string", "buy or sell"),
		"qty":     prop("number", "Order size in base units"),
		"dry_run": withDefault(prop("boolean", "Validate and return the order without submitting it"), false),
	}
	if limit {
		props["price"] = prop("number", "Limit price")
		props["tif"] = withDefault(prop("string", "Time in force: GTC, IOC or ALO"), "GTC")
	}
	if reduceOnly {
		props["reduce_only"] = withDefault(prop("boolean", "Only reduce an existing position"), false)
	}
	return props
}

func (tb *Toolbox) register() {
	tb.add(Tool{
		Name:        "get_mark_price",
		Description: "Get the mark price of a symbol.",
		InputSchema: schema([]string{"symbol"}, map[string]any{
			"symbol": prop("string", "Market symbol, e.g. BTC"),
		}),
		call: tb.getMarkPrice,
	})
	tb.add(Tool{
		Name:        "list_symbols",
		Description: "List tradable symbols from the mid snapshot. Returns the first 50 by default; null returns all.",
		InputSchema: schema(nil, map[string]any{
			"limit": withDefault(map[string]any{"type": []string{"integer", "null"}, "description": "Maximum number of symbols"}, defaultListLimit),
		}),
		call: tb.listSymbols,
	})
	tb.add(Tool{
		Name:        "find_symbols",
		Description: "Fuzzy search symbols and return them with their mid price.",
		InputSchema: schema([]string{"query"}, map[string]any{
			"query": prop("string", "Case-insensitive substring"),
			"limit": withDefault(prop("integer", "Maximum number of matches"), defaultFindLimit),
		}),
		call: tb.findSymbols,
	})
	tb.add(Tool{
		Name:        "place_market",
		Description: "Market order. Supports dry_run and reduce_only.",
		InputSchema: schema([]string{"symbol", "side", "qty"}, orderProps(false, true)),
		call:        tb.placeMarket,
	})
	tb.add(Tool{
		Name:        "place_limit",
		Description: "Limit order with tif GTC/IOC/ALO. Supports dry_run and reduce_only.",
		InputSchema: schema([]string{"symbol", "side", "qty", "price"}, orderProps(true, true)),
		call:        tb.placeLimit,
	})
	tb.add(Tool{
		Name:        "place_spot_market",
		Description: "Spot market order. Not supported by the current connector.",
		InputSchema: schema([]string{"symbol", "side", "qty"}, orderProps(false, false)),
		call:        tb.placeSpotMarket,
	})
	tb.add(Tool{
		Name:        "place_spot_limit",
		Description: "Spot limit order. Not supported by the current connector.",
		InputSchema: schema([]string{"symbol", "side", "qty", "price"}, orderProps(true, false)),
		call:        tb.placeSpotLimit,
	})
	tb.add(Tool{
		Name:        "cancel_order",
		Description: "Cancel an open order by id.",
		InputSchema: schema([]string{"order_id"}, map[string]any{
			"order_id": map[string]any{"type": []string{"integer", "string"}, "description": "Order id from an order response or get_open_orders"},
		}),
		call: tb.cancelOrder,
	})
	tb.add(Tool{
		Name:        "get_open_orders",
		Description: "List all resting orders of the account.",
		InputSchema: schema(nil, map[string]any{}),
		call:        tb.getOpenOrders,
	})
	tb.add(Tool{
		Name:        "get_positions",
		Description: "Current positions. dex is optional: '' is the default clearing account.",
		InputSchema: schema(nil, map[string]any{"dex": prop("string", "Dex name")}),
		call:        tb.getPositions,
	})
	tb.add(Tool{
		Name:        "get_balances",
		Description: "Account balances and margin summary. dex is optional: '' is the default clearing account.",
		InputSchema: schema(nil, map[string]any{"dex": prop("string", "Dex name")}),
		call:        tb.getBalances,
	})
}

func (tb *Toolbox) getMarkPrice(ctx context.Context, args Args) (Result, error) {
	symbol, err := args.String("symbol")
	if err != nil {
		return nil, err
	}
	px, err := tb.trader.MarkPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return Result{"symbol": strings.ToUpper(strings.TrimSpace(symbol)), "mark_price": px}, nil
}

func (tb *Toolbox) listSymbols(ctx context.Context, args Args) (Result, error) {
	limit, err := args.IntPtr("limit", defaultListLimit)
	if err != nil {
		return nil, err
	}
	syms, err := tb.trader.ListSymbols(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Result{"count": len(syms), "symbols": syms}, nil
}

func (tb *Toolbox) findSymbols(ctx context.Context, args Args) (Result, error) {
	query, err := args.String("query")
	if err != nil {
		return nil, err
	}
	limit, err := args.Int("limit", defaultFindLimit)
	if err != nil {
		return nil, err
	}
	matches, err := tb.trader.FindSymbols(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return Result{"matches": matches}, nil
}

func marketOrder(args Args, reduceOnly bool) (trader.MarketOrder, error) {
	var (
		o   trader.MarketOrder
		err error
	)
	if o.Symbol, err = args.String("symbol"); err != nil {
		return o, err
	}
	if o.Side, err = args.String("side"); err != nil {
		return o, err
	}
	if o.Qty, err = args.Float("qty"); err != nil {
		return o, err
	}
	if o.DryRun, err = args.Bool("dry_run", false); err != nil {
		return o, err
	}
	if reduceOnly {
		if o.ReduceOnly, err = args.Bool("reduce_only", false); err != nil {
			return o, err
		}
	}
	return o, nil
}

func limitOrder(args Args, reduceOnly bool) (trader.LimitOrder, error) {
	m, err := marketOrder(args, reduceOnly)
	if err != nil {
		return trader.LimitOrder{}, err
	}
	o := trader.LimitOrder{
		Symbol:     m.Symbol,
		Side:       m.Side,
		Qty:        m.Qty,
		DryRun:     m.DryRun,
		ReduceOnly: m.ReduceOnly,
	}
	if o.Price, err = args.Float("price"); err != nil {
		return o, err
	}
	if o.TIF, err = args.StringOr("tif", "GTC"); err != nil {
		return o, err
	}
	return o, nil
}

func (tb *Toolbox) placeMarket(ctx context.Context, args Args) (Result, error) {
	o, err := marketOrder(args, true)
	if err != nil {
		return nil, err
	}
	res, err := tb.trader.PlaceMarket(ctx, o)
	if err != nil {
		return nil, err
	}
	return Result{"result": res}, nil
}

func (tb *Toolbox) placeLimit(ctx context.Context, args Args) (Result, error) {
	o, err := limitOrder(args, true)
	if err != nil {
		return nil, err
	}
	res, err := tb.trader.PlaceLimit(ctx, o)
	if err != nil {
		return nil, err
	}
	return Result{"result": res}, nil
}

func (tb *Toolbox) placeSpotMarket(ctx context.Context, args Args) (Result, error) {
	o, err := marketOrder(args, false)
	if err != nil {
		return nil, err
	}
	res, err := tb.trader.PlaceSpotMarket(ctx, o)
	if err != nil {
		return nil, err
	}
	return Result{"result": res}, nil
}

func (tb *Toolbox) placeSpotLimit(ctx context.Context, args Args) (Result, error) {
	o, err := limitOrder(args, false)
	if err != nil {
		return nil, err
	}
	res, err := tb.trader.PlaceSpotLimit(ctx, o)
	if err != nil {
		return nil, err
	}
	return Result{"result": res}, nil
}

func (tb *Toolbox) cancelOrder(ctx context.Context, args Args) (Result, error) {
	if !args.present("order_id") {
		return nil, missing("order_id")
	}
	res, err := tb.trader.CancelOrder(ctx, args["order_id"])
	if err != nil {
		return nil, err
	}
	return Result{"result": res}, nil
}

func (tb *Toolbox) getOpenOrders(ctx context.Context, args Args) (Result, error) {
	orders, err := tb.trader.OpenOrders(ctx)
	if err != nil {
		return nil, err
	}
	return Result{"open_orders": orders}, nil
}

func (tb *Toolbox) getPositions(ctx context.Context, args Args) (Result, error) {
	dex, err := args.StringPtr("dex")
	if err != nil {
		return nil, err
	}
	positions, err := tb.trader.Positions(ctx, dex)
	if err != nil {
		return nil, err
	}
	return Result{"dex": trader.Dex(dex), "positions": positions}, nil
}

func (tb *Toolbox) getBalances(ctx context.Context, args Args) (Result, error) {
	dex, err := args.StringPtr("dex")
	if err != nil {
		return nil, err
	}
	balances, err := tb.trader.Balances(ctx, dex)
	if err != nil {
		return nil, err
	}
	return Result{"dex": trader.Dex(dex), "balances": balances}, nil
}
