package crypto_test

import (
	"fmt"
	"log"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/crypto"
)

type cancelWire struct {
	Asset int   `msgpack:"a"`
	OID   int64 `msgpack:"o"`
}

type cancelAction struct {
	Type    string       `msgpack:"type"`
	Cancels []cancelWire `msgpack:"cancels"`
}

// Signing an L1 action end to end: hash, sign as a phantom agent, then
// recover the signer the way the exchange does.
func ExampleEIP712Signer_SignL1Action() {
	signer, err := crypto.FromPrivateKeyHex("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	if err != nil {
		log.Fatal(err)
	}

	action := cancelAction{Type: "cancel", Cancels: []cancelWire{{Asset: 0, OID: 12345}}}
	nonce := uint64(1_700_000_000_000)

	eip712Signer := crypto.NewEIP712Signer(crypto.ExchangeDomain())
	sig, err := eip712Signer.SignL1Action(signer, action, nil, nonce, false)
	if err != nil {
		log.Fatal(err)
	}

	recovered, err := eip712Signer.RecoverL1ActionSigner(action, nil, nonce, false, sig)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(recovered == signer.Address())
	// Output: true
}
