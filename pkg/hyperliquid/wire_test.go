package hyperliquid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/crypto"
)

func TestFloatToWire(t *testing.T) {
	for in, want := range map[float64]string{
		1:          "1",
		0.1:        "0.1",
		100.0:      "100",
		123.456789: "123.456789",
		0.00000001: "0.00000001",
		-2.5:       "-2.5",
	} {
		got, err := FloatToWire(in)
		require.NoError(t, err, "input %v", in)
		assert.Equal(t, want, got, "input %v", in)
	}

	got, err := FloatToWire(math.Copysign(0, -1))
	require.NoError(t, err)
	assert.Equal(t, "0", got)
}

func TestFloatToWireRejectsRounding(t *testing.T) {
	for _, in := range []float64{0.000000001, 1.123456789, math.NaN(), math.Inf(1)} {
		_, err := FloatToWire(in)
		assert.Error(t, err, "input %v", in)
	}
}

func TestSlippagePrice(t *testing.T) {
	assert.Equal(t, 68250.0, SlippagePrice(65000, true, 0.05, 5))
	assert.Equal(t, 95.0, SlippagePrice(100, false, 0.05, 2))
	assert.Equal(t, 3163.0, SlippagePrice(3012.37, true, 0.05, 4))
	// 0.0123 * 0.95 = 0.011685, six decimals for szDecimals 0.
	assert.Equal(t, 0.011685, SlippagePrice(0.0123, false, 0.05, 0))
	// 1.23456 * 1.01 = 1.2469056 -> 1.2469 -> 1.247 with three decimals.
	assert.Equal(t, 1.247, SlippagePrice(1.23456, true, 0.01, 3))
}

func TestUniverseLookup(t *testing.T) {
	u := NewUniverse()
	u.Replace([]Asset{{Name: "BTC", SzDecimals: 5}, {Name: "kPEPE"}})

	a, err := u.Lookup("KPEPE")
	require.NoError(t, err)
	assert.Equal(t, "kPEPE", a.Name)
	assert.Equal(t, 1, a.Index)

	_, err = u.Lookup("ETH")
	assert.EqualError(t, err, "asset ETH not found in universe")
	assert.Equal(t, 2, u.Count())
}

func TestOrderActionKeyOrder(t *testing.T) {
	packed, err := crypto.PackAction(NewCancelAction(CancelWire{Asset: 3, OID: 9}))
	require.NoError(t, err)

	want := []byte{0x82,
		0xa4, 't', 'y', 'p', 'e', 0xa6, 'c', 'a', 'n', 'c', 'e', 'l',
		0xa7, 'c', 'a', 'n', 'c', 'e', 'l', 's', 0x91,
		0x82, 0xa1, 'a', 0x03, 0xa1, 'o', 0x09,
	}
	assert.Equal(t, want, packed)
}
