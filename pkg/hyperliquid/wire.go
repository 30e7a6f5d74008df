package hyperliquid

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/crypto"
)

// Field order of every action struct is the msgpack key order the exchange
// hashes, so do not reorder fields.

type LimitWire struct {
	TIF string `json:"tif" msgpack:"tif"`
}

type OrderTypeWire struct {
	Limit *LimitWire `json:"limit,omitempty" msgpack:"limit,omitempty"`
}

type OrderWire struct {
	Asset      int           `json:"a" msgpack:"a"`
	IsBuy      bool          `json:"b" msgpack:"b"`
	LimitPx    string        `json:"p" msgpack:"p"`
	Size       string        `json:"s" msgpack:"s"`
	ReduceOnly bool          `json:"r" msgpack:"r"`
	OrderType  OrderTypeWire `json:"t" msgpack:"t"`
}

type OrderAction struct {
	Type     string      `json:"type" msgpack:"type"`
	Orders   []OrderWire `json:"orders" msgpack:"orders"`
	Grouping string      `json:"grouping" msgpack:"grouping"`
}

type CancelWire struct {
	Asset int   `json:"a" msgpack:"a"`
	OID   int64 `json:"o" msgpack:"o"`
}

type CancelAction struct {
	Type    string       `json:"type" msgpack:"type"`
	Cancels []CancelWire `json:"cancels" msgpack:"cancels"`
}

func NewOrderAction(orders ...OrderWire) OrderAction {
	return OrderAction{Type: "order", Orders: orders, Grouping: "na"}
}

func NewCancelAction(cancels ...CancelWire) CancelAction {
	return CancelAction{Type: "cancel", Cancels: cancels}
}

// ExchangeRequest is the signed /exchange body.
type ExchangeRequest struct {
	Action       any              `json:"action"`
	Nonce        uint64           `json:"nonce"`
	Signature    crypto.Signature `json:"signature"`
	VaultAddress *string          `json:"vaultAddress"`
}

func NewExchangeRequest(action any, nonce uint64, sig crypto.Signature, vault *common.Address) ExchangeRequest {
	req := ExchangeRequest{Action: action, Nonce: nonce, Signature: sig}
	if vault != nil {
		v := vault.Hex()
		req.VaultAddress = &v
	}
	return req
}

// FloatToWire renders x with at most 8 decimals and no trailing zeros. It
// refuses values that would lose precision.
func FloatToWire(x float64) (string, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "", fmt.Errorf("float_to_wire: %v is not finite", x)
	}
	rounded := strconv.FormatFloat(x, 'f', 8, 64)
	back, err := strconv.ParseFloat(rounded, 64)
	if err != nil {
		return "", fmt.Errorf("float_to_wire: %w", err)
	}
	if math.Abs(back-x) >= 1e-12 {
		return "", fmt.Errorf("float_to_wire causes rounding: %v", x)
	}
	d, err := decimal.NewFromString(rounded)
	if err != nil {
		return "", fmt.Errorf("float_to_wire: %w", err)
	}
	return d.String(), nil
}

// SlippagePrice moves mid by slippage against the taker, then rounds to 5
// significant figures and to the perp price precision of the asset.
func SlippagePrice(mid float64, isBuy bool, slippage float64, szDecimals int) float64 {
	px := mid
	if isBuy {
		px *= 1 + slippage
	} else {
		px *= 1 - slippage
	}

	sig, err := strconv.ParseFloat(strconv.FormatFloat(px, 'g', 5, 64), 64)
	if err != nil {
		return px
	}

	decimals := 6 - szDecimals
	if decimals < 0 {
		decimals = 0
	}
	out, _ := decimal.NewFromFloat(sig).Round(int32(decimals)).Float64()
	return out
}
