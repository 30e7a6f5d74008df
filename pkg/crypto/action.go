package crypto

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/sha3"
)

// PackAction msgpack-encodes an exchange action. Struct field order is the
// wire key order, so action types must declare fields in the order the
// venue hashes them. Integers use the smallest encoding, as the venue does.
func PackAction(action any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(action); err != nil {
		return nil, fmt.Errorf("failed to pack action: %w", err)
	}
	return buf.Bytes(), nil
}

// ActionHash computes the connection id for an L1 action:
// keccak256(msgpack(action) || nonce (8 bytes BE) || vault flag [|| vault]).
func ActionHash(action any, vault *common.Address, nonce uint64) (common.Hash, error) {
	packed, err := PackAction(action)
	if err != nil {
		return common.Hash{}, err
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(packed)

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	h.Write(nonceBytes[:])

	if vault == nil {
		h.Write([]byte{0x00})
	} else {
		h.Write([]byte{0x01})
		h.Write(vault.Bytes())
	}

	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}
