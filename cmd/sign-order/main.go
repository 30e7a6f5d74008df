package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/hyperlicked-mcp/params"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/crypto"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/hyperliquid"
)

// sign-order builds and signs a limit order action offline and prints the
// /exchange body. Nothing is sent.
func main() {
	envPath := flag.String("env", "", "path to a .env file (default: ./.env)")
	asset := flag.Int("asset", 0, "asset index in meta.universe (BTC is 0)")
	side := flag.String("side", "buy", "buy or sell")
	px := flag.Float64("px", 0, "limit price")
	sz := flag.Float64("sz", 0, "order size")
	tif := flag.String("tif", "Gtc", "time in force: Gtc, Ioc or Alo")
	reduceOnly := flag.Bool("reduce-only", false, "reduce only")
	nonce := flag.Uint64("nonce", 0, "action nonce (default: now in unix millis)")
	flag.Parse()

	cfg, err := params.Load(*envPath, "")
	if err != nil {
		fail("config: %v", err)
	}

	// Step 1: Load key, or generate a throwaway one
	var signer *crypto.Signer
	if cfg.Venue.SecretKey != "" {
		signer, err = crypto.FromPrivateKeyHex(cfg.Venue.SecretKey)
	} else {
		fmt.Fprintln(os.Stderr, "HL_SECRET_KEY not set, generating a throwaway keypair...")
		signer, err = crypto.GenerateKey()
	}
	if err != nil {
		fail("key: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Signer: %s\n", signer.Address().Hex())

	// Step 2: Build the order action
	isBuy := strings.EqualFold(*side, "buy")
	if !isBuy && !strings.EqualFold(*side, "sell") {
		fail("side must be 'buy' or 'sell'")
	}
	p, err := hyperliquid.FloatToWire(*px)
	if err != nil {
		fail("px: %v", err)
	}
	s, err := hyperliquid.FloatToWire(*sz)
	if err != nil {
		fail("sz: %v", err)
	}
	action := hyperliquid.NewOrderAction(hyperliquid.OrderWire{
		Asset:      *asset,
		IsBuy:      isBuy,
		LimitPx:    p,
		Size:       s,
		ReduceOnly: *reduceOnly,
		OrderType:  hyperliquid.OrderTypeWire{Limit: &hyperliquid.LimitWire{TIF: *tif}},
	})

	n := *nonce
	if n == 0 {
		n = uint64(time.Now().UnixMilli())
	}
	var vault *common.Address
	if cfg.Venue.VaultAddress != "" {
		v := common.HexToAddress(cfg.Venue.VaultAddress)
		vault = &v
	}

	// Step 3: Sign as a phantom agent
	eip712Signer := crypto.NewEIP712Signer(crypto.ExchangeDomain())
	sig, err := eip712Signer.SignL1Action(signer, action, vault, n, cfg.Venue.IsMainnet())
	if err != nil {
		fail("sign: %v", err)
	}

	// Step 4: Verify signature
	recovered, err := eip712Signer.RecoverL1ActionSigner(action, vault, n, cfg.Venue.IsMainnet(), sig)
	if err != nil {
		fail("verify: %v", err)
	}
	if recovered != signer.Address() {
		fail("verify: recovered %s, want %s", recovered.Hex(), signer.Address().Hex())
	}

	out, err := json.MarshalIndent(hyperliquid.NewExchangeRequest(action, n, sig, vault), "", "  ")
	if err != nil {
		fail("marshal: %v", err)
	}
	fmt.Println(string(out))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
