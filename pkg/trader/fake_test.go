package trader

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

// fakeVenue implements venue.Venue with canned data and records every call
// that would reach the exchange.
type fakeVenue struct {
	mids       map[string]string
	midsErr    error
	state      venue.AccountState
	stateErr   error
	orders     []map[string]any
	ordersErr  error
	submitResp json.RawMessage
	submitErr  error

	allMidsCalls int
	lastDex      string
	submitted    []venue.OrderRequest
	cancels      []cancelCall
}

type cancelCall struct {
	coin string
	oid  int64
}

func (f *fakeVenue) AllMids(ctx context.Context) (map[string]string, error) {
	f.allMidsCalls++
	if f.midsErr != nil {
		return nil, f.midsErr
	}
	return f.mids, nil
}

func (f *fakeVenue) UserState(ctx context.Context, user, dex string) (venue.AccountState, error) {
	f.lastDex = dex
	return f.state, f.stateErr
}

func (f *fakeVenue) OpenOrders(ctx context.Context, user string) ([]map[string]any, error) {
	return f.orders, f.ordersErr
}

func (f *fakeVenue) Order(ctx context.Context, req venue.OrderRequest) (json.RawMessage, error) {
	f.submitted = append(f.submitted, req)
	return f.submitResp, f.submitErr
}

func (f *fakeVenue) MarketOpen(ctx context.Context, req venue.OrderRequest) (json.RawMessage, error) {
	f.submitted = append(f.submitted, req)
	return f.submitResp, f.submitErr
}

func (f *fakeVenue) Cancel(ctx context.Context, coin string, oid int64) (json.RawMessage, error) {
	f.cancels = append(f.cancels, cancelCall{coin, oid})
	return f.submitResp, f.submitErr
}

// markVenue adds the current mark price accessor.
type markVenue struct {
	*fakeVenue
	mark    any
	markErr error
}

func (m *markVenue) MarkPrice(ctx context.Context, coin string) (any, error) {
	return m.mark, m.markErr
}

// legacyVenue exposes both accessors and counts which one ran first.
type legacyVenue struct {
	*fakeVenue
	legacy any
	mark   any
	order  []string
}

func (l *legacyVenue) GetMarkPrice(ctx context.Context, coin string) (any, error) {
	l.order = append(l.order, "GetMarkPrice")
	if l.legacy == nil {
		return nil, errors.New("no legacy price")
	}
	return l.legacy, nil
}

func (l *legacyVenue) MarkPrice(ctx context.Context, coin string) (any, error) {
	l.order = append(l.order, "MarkPrice")
	return l.mark, nil
}

// metaVenue exposes only the metadata tree.
type metaVenue struct {
	*fakeVenue
	meta any
}

func (m *metaVenue) Meta(ctx context.Context) (any, error) {
	return m.meta, nil
}
