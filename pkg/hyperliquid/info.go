package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

// userStateRequest always carries dex; "" selects the default perp dex.
type userStateRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
	Dex  string `json:"dex"`
}

// AllMids returns coin -> mid price as the venue spells both.
func (c *Client) AllMids(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	if err := c.info(ctx, infoRequest{Type: "allMids"}, &out); err != nil {
		return nil, errors.Wrap(err, "allMids")
	}
	return out, nil
}

// Meta returns the raw perp metadata tree and refreshes the asset cache.
func (c *Client) Meta(ctx context.Context) (any, error) {
	raw, err := c.post(ctx, infoPath, infoRequest{Type: "meta"})
	if err != nil {
		return nil, errors.Wrap(err, "meta")
	}
	var typed metaResponse
	if err := decode(raw, &typed); err != nil {
		return nil, errors.Wrap(err, "meta")
	}
	c.universe.Replace(typed.Universe)

	var tree any
	if err := decode(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "meta")
	}
	return tree, nil
}

// MetaAndAssetCtxs returns the universe together with the per-asset
// contexts (mark, oracle, funding) in universe order.
func (c *Client) MetaAndAssetCtxs(ctx context.Context) ([]Asset, []map[string]any, error) {
	var pair []json.RawMessage
	if err := c.info(ctx, infoRequest{Type: "metaAndAssetCtxs"}, &pair); err != nil {
		return nil, nil, errors.Wrap(err, "metaAndAssetCtxs")
	}
	if len(pair) != 2 {
		return nil, nil, fmt.Errorf("metaAndAssetCtxs: expected 2 elements, got %d", len(pair))
	}

	var meta metaResponse
	if err := decode(pair[0], &meta); err != nil {
		return nil, nil, errors.Wrap(err, "metaAndAssetCtxs")
	}
	var ctxs []map[string]any
	if err := decode(pair[1], &ctxs); err != nil {
		return nil, nil, errors.Wrap(err, "metaAndAssetCtxs")
	}
	c.universe.Replace(meta.Universe)
	for i := range meta.Universe {
		meta.Universe[i].Index = i
	}
	return meta.Universe, ctxs, nil
}

// MarkPrice returns the asset context of coin; its markPx field carries
// the mark price.
func (c *Client) MarkPrice(ctx context.Context, coin string) (any, error) {
	assets, ctxs, err := c.MetaAndAssetCtxs(ctx)
	if err != nil {
		return nil, err
	}
	for i, a := range assets {
		if !strings.EqualFold(a.Name, coin) {
			continue
		}
		if i >= len(ctxs) {
			break
		}
		return ctxs[i], nil
	}
	return nil, fmt.Errorf("no asset context for %s", coin)
}

func (c *Client) UserState(ctx context.Context, user, dex string) (venue.AccountState, error) {
	var st venue.AccountState
	req := userStateRequest{Type: "clearinghouseState", User: user, Dex: dex}
	if err := c.info(ctx, req, &st); err != nil {
		return venue.AccountState{}, errors.Wrap(err, "clearinghouseState")
	}
	return st, nil
}

func (c *Client) OpenOrders(ctx context.Context, user string) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.info(ctx, infoRequest{Type: "openOrders", User: user}, &out); err != nil {
		return nil, errors.Wrap(err, "openOrders")
	}
	return out, nil
}

// asset resolves coin against the cached universe, loading meta on a miss.
func (c *Client) asset(ctx context.Context, coin string) (Asset, error) {
	if a, err := c.universe.Lookup(coin); err == nil {
		return a, nil
	}
	if _, err := c.Meta(ctx); err != nil {
		return Asset{}, err
	}
	return c.universe.Lookup(coin)
}
