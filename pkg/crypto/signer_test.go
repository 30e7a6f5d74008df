package crypto

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
)

func TestGenerateKey(t *testing.T) {
	signer, err := GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	if signer.Address() == (common.Address{}) {
		t.Error("generated zero address")
	}

	// Check private key hex is 64 chars (32 bytes)
	privHex := signer.PrivateKeyHex()
	if len(privHex) != 64 {
		t.Errorf("private key hex length = %d, want 64", len(privHex))
	}
}

func TestFromPrivateKeyHex(t *testing.T) {
	signer1, _ := GenerateKey()
	privHex := signer1.PrivateKeyHex()
	expectedAddr := signer1.Address()

	for _, input := range []string{privHex, "0x" + privHex, "  0x" + privHex + "\n"} {
		signer2, err := FromPrivateKeyHex(input)
		if err != nil {
			t.Fatalf("failed to load key %q: %v", input, err)
		}
		if signer2.Address() != expectedAddr {
			t.Errorf("address = %s, want %s", signer2.Address().Hex(), expectedAddr.Hex())
		}
	}

	if _, err := FromPrivateKeyHex("not-a-key"); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestSignAndRecover(t *testing.T) {
	signer, _ := GenerateKey()
	hash := eth_crypto.Keccak256Hash([]byte("Test message")).Bytes()

	signature, err := signer.Sign(hash)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if len(signature) != 65 {
		t.Errorf("signature length = %d, want 65", len(signature))
	}

	recoveredAddr, err := RecoverAddress(hash, signature)
	if err != nil {
		t.Fatalf("failed to recover address: %v", err)
	}
	if recoveredAddr != signer.Address() {
		t.Errorf("recovered address = %s, want %s", recoveredAddr.Hex(), signer.Address().Hex())
	}

	// Ethereum-style V (27/28) must recover the same address
	shifted := append([]byte(nil), signature...)
	shifted[64] += 27
	recoveredAddr, err = RecoverAddress(hash, shifted)
	if err != nil || recoveredAddr != signer.Address() {
		t.Errorf("recover with v+27 = %s, %v", recoveredAddr.Hex(), err)
	}
}

func TestSignRejectsShortHash(t *testing.T) {
	signer, _ := GenerateKey()
	if _, err := signer.Sign([]byte("short")); err == nil {
		t.Error("expected error for non-32-byte hash")
	}
	if _, err := RecoverAddress([]byte("short"), make([]byte, 65)); err == nil {
		t.Error("expected error for short hash")
	}
	if _, err := RecoverAddress(make([]byte, 32), []byte{1, 2, 3}); err == nil {
		t.Error("expected error for short signature")
	}
}

type testAction struct {
	Type string `msgpack:"type"`
	Num  int64  `msgpack:"num"`
}

func TestActionHash(t *testing.T) {
	action := testAction{Type: "dummy", Num: 100000000000}

	h1, err := ActionHash(action, nil, 0)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, _ := ActionHash(action, nil, 0)
	if h1 != h2 {
		t.Error("action hash is not deterministic")
	}

	h3, _ := ActionHash(action, nil, 1)
	if h1 == h3 {
		t.Error("nonce does not affect hash")
	}

	vault := common.HexToAddress("0x1719884eb866cb12b2287399b15f7db5e7d775ea")
	h4, _ := ActionHash(action, &vault, 0)
	if h1 == h4 {
		t.Error("vault does not affect hash")
	}
}

func TestPackActionKeyOrder(t *testing.T) {
	packed, err := PackAction(testAction{Type: "dummy", Num: 1})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	// fixmap(2), "type", "dummy", "num", positive fixint 1
	want := []byte{0x82, 0xa4, 't', 'y', 'p', 'e', 0xa5, 'd', 'u', 'm', 'm', 'y', 0xa3, 'n', 'u', 'm', 0x01}
	if !bytes.Equal(packed, want) {
		t.Errorf("packed = %x, want %x", packed, want)
	}
}

func TestSignL1ActionRecovers(t *testing.T) {
	signer, err := FromPrivateKeyHex("0x0123456789012345678901234567890123456789012345678901234567890123")
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	e := NewEIP712Signer(ExchangeDomain())
	action := testAction{Type: "dummy", Num: 100000000000}

	for _, mainnet := range []bool{true, false} {
		sig, err := e.SignL1Action(signer, action, nil, 0, mainnet)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if sig.V != 27 && sig.V != 28 {
			t.Errorf("v = %d, want 27 or 28", sig.V)
		}
		if len(sig.R) != 66 || len(sig.S) != 66 {
			t.Errorf("r/s hex lengths = %d/%d, want 66", len(sig.R), len(sig.S))
		}

		addr, err := e.RecoverL1ActionSigner(action, nil, 0, mainnet, sig)
		if err != nil {
			t.Fatalf("recover: %v", err)
		}
		if addr != signer.Address() {
			t.Errorf("recovered %s, want %s", addr.Hex(), signer.Address().Hex())
		}

		// Same signature must not verify for the other network
		other, _ := e.RecoverL1ActionSigner(action, nil, 0, !mainnet, sig)
		if other == signer.Address() {
			t.Error("signature verified across networks")
		}
	}
}

func TestNewAgentSource(t *testing.T) {
	if NewAgent(common.Hash{}, true).Source != "a" {
		t.Error("mainnet source should be a")
	}
	if NewAgent(common.Hash{}, false).Source != "b" {
		t.Error("testnet source should be b")
	}
}
