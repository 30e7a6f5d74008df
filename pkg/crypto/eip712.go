package crypto

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// EIP712Domain represents the domain separator for EIP-712 typed data
type EIP712Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// ExchangeDomain is the domain the venue uses for L1 actions. The chain id
// is fixed at 1337 on every network; mainnet and testnet are told apart by
// the agent source instead.
func ExchangeDomain() EIP712Domain {
	return EIP712Domain{
		Name:              "Exchange",
		Version:           "1",
		ChainID:           big.NewInt(1337),
		VerifyingContract: common.Address{},
	}
}

// Agent is the phantom agent actually signed for an L1 action.
type Agent struct {
	Source       string // "a" on mainnet, "b" elsewhere
	ConnectionID common.Hash
}

// NewAgent builds the phantom agent for an action hash.
func NewAgent(connectionID common.Hash, isMainnet bool) Agent {
	source := "b"
	if isMainnet {
		source = "a"
	}
	return Agent{Source: source, ConnectionID: connectionID}
}

// Signature is the {r, s, v} form the exchange endpoint expects.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

// Bytes re-assembles the 65-byte [R || S || V] signature.
func (s Signature) Bytes() ([]byte, error) {
	r, err := hexutil.Decode(s.R)
	if err != nil {
		return nil, fmt.Errorf("invalid r: %w", err)
	}
	sv, err := hexutil.Decode(s.S)
	if err != nil {
		return nil, fmt.Errorf("invalid s: %w", err)
	}
	if len(r) > 32 || len(sv) > 32 {
		return nil, fmt.Errorf("r/s longer than 32 bytes")
	}
	out := make([]byte, 65)
	copy(out[32-len(r):32], r)
	copy(out[64-len(sv):64], sv)
	out[64] = s.V
	return out, nil
}

// EIP712Signer handles EIP-712 typed data signing for L1 actions
type EIP712Signer struct {
	domain EIP712Domain
}

// NewEIP712Signer creates a new EIP-712 signer with given domain
func NewEIP712Signer(domain EIP712Domain) *EIP712Signer {
	return &EIP712Signer{domain: domain}
}

// HashAgent returns the EIP-712 typed-data hash of a phantom agent
// Returns the digest that should be signed
func (e *EIP712Signer) HashAgent(agent Agent) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": []apitypes.Type{
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              e.domain.Name,
			Version:           e.domain.Version,
			ChainId:           (*math.HexOrDecimal256)(e.domain.ChainID),
			VerifyingContract: e.domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"source":       agent.Source,
			"connectionId": agent.ConnectionID.Bytes(),
		},
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}

	typedDataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %w", err)
	}

	// Final digest: keccak256("\x19\x01" || domainSeparator || typedDataHash)
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	digest := crypto.Keccak256Hash(rawData)

	return digest.Bytes(), nil
}

// SignL1Action hashes the action with its nonce and optional vault, wraps the
// hash in a phantom agent and signs it.
func (e *EIP712Signer) SignL1Action(signer *Signer, action any, vault *common.Address, nonce uint64, isMainnet bool) (Signature, error) {
	connectionID, err := ActionHash(action, vault, nonce)
	if err != nil {
		return Signature{}, err
	}

	digest, err := e.HashAgent(NewAgent(connectionID, isMainnet))
	if err != nil {
		return Signature{}, fmt.Errorf("failed to hash agent: %w", err)
	}

	sig, err := signer.Sign(digest)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign action: %w", err)
	}

	return Signature{
		R: hexutil.Encode(sig[:32]),
		S: hexutil.Encode(sig[32:64]),
		V: sig[64] + 27,
	}, nil
}

// RecoverL1ActionSigner returns the address that produced sig for the action.
func (e *EIP712Signer) RecoverL1ActionSigner(action any, vault *common.Address, nonce uint64, isMainnet bool, sig Signature) (common.Address, error) {
	connectionID, err := ActionHash(action, vault, nonce)
	if err != nil {
		return common.Address{}, err
	}

	digest, err := e.HashAgent(NewAgent(connectionID, isMainnet))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to hash agent: %w", err)
	}

	raw, err := sig.Bytes()
	if err != nil {
		return common.Address{}, err
	}
	return RecoverAddress(digest, raw)
}
