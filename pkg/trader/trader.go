// Package trader normalises a venue connector into the stable operations the
// tool facade exposes: price lookup, symbol discovery, order placement,
// cancellation and account state.
package trader

import (
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

// Trader is stateless across calls. The only shared state is the account
// address, fixed at construction.
type Trader struct {
	venue   venue.Venue
	account string
	logger  *zap.SugaredLogger
}

func New(v venue.Venue, account string, logger *zap.SugaredLogger) *Trader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Trader{venue: v, account: account, logger: logger}
}

// Account returns the address every account query is made for.
func (t *Trader) Account() string { return t.account }
