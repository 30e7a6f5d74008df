package trader

import (
	"context"
	"strings"
)

// positionKeys is the lookup order for the account's position list. Which
// one is filled depends on the account mode.
var positionKeys = []string{"assetPositions", "perpPositions", "assetPositionsPerps", "spotPositions"}

// Balances is the fixed projection of the clearinghouse state returned by
// get_balances. Absent keys are null, except Balances which is [].
type Balances struct {
	Balances                   any `json:"balances"`
	MarginSummary              any `json:"marginSummary"`
	CrossMarginSummary         any `json:"crossMarginSummary"`
	CrossMaintenanceMarginUsed any `json:"crossMaintenanceMarginUsed"`
	Withdrawable               any `json:"withdrawable"`
	Time                       any `json:"time"`
}

// Dex normalises an optional dex name. Nil or blank selects the default
// dex, which the venue spells "".
func Dex(dex *string) string {
	if dex == nil {
		return ""
	}
	return strings.TrimSpace(*dex)
}

// Positions returns the account's positions on dex. The result is never nil.
func (t *Trader) Positions(ctx context.Context, dex *string) ([]any, error) {
	st, err := t.venue.UserState(ctx, t.account, Dex(dex))
	if err != nil {
		return nil, upstreamError(err)
	}

	fields := map[string]any{
		"assetPositions":      st.AssetPositions,
		"perpPositions":       st.PerpPositions,
		"assetPositionsPerps": st.AssetPositionsPerps,
		"spotPositions":       st.SpotPositions,
	}
	for _, key := range positionKeys {
		if list, ok := fields[key].([]any); ok && len(list) > 0 {
			return list, nil
		}
	}
	if list, ok := st.AssetPositions.([]any); ok {
		return list, nil
	}
	return []any{}, nil
}

// Balances returns the balance and margin projection of the account state.
func (t *Trader) Balances(ctx context.Context, dex *string) (Balances, error) {
	st, err := t.venue.UserState(ctx, t.account, Dex(dex))
	if err != nil {
		return Balances{}, upstreamError(err)
	}
	b := Balances{
		Balances:                   st.Balances,
		MarginSummary:              st.MarginSummary,
		CrossMarginSummary:         st.CrossMarginSummary,
		CrossMaintenanceMarginUsed: st.CrossMaintenanceMarginUsed,
		Withdrawable:               st.Withdrawable,
		Time:                       st.Time,
	}
	if b.Balances == nil {
		b.Balances = []any{}
	}
	return b, nil
}

// OpenOrders lists the account's resting orders as the venue reports them.
func (t *Trader) OpenOrders(ctx context.Context) ([]map[string]any, error) {
	orders, err := t.venue.OpenOrders(ctx, t.account)
	if err != nil {
		return nil, upstreamError(err)
	}
	if orders == nil {
		orders = []map[string]any{}
	}
	return orders, nil
}
