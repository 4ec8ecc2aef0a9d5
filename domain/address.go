package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Address identifies a participant by its hex encoded x-only secp256k1
// public key, the same key that signs its nostr events.
type Address string

const ZeroAddress Address = ""

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}

// Bytes returns the decoded public key. Addresses that are not valid hex
// fall back to their raw string bytes so that hashing stays total.
func (a Address) Bytes() []byte {
	b, err := hex.DecodeString(string(a))
	if err != nil {
		return []byte(a)
	}
	return b
}

func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	b, err := hex.DecodeString(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("address %q: %w", s, err)
	}
	if len(b) != 32 {
		return ZeroAddress, fmt.Errorf("address %q: expected 32 bytes, got %d", s, len(b))
	}
	return Address(s), nil
}

// ModuleAddress derives the identity a component uses when it calls into
// another component, e.g. the job registry locking escrow on the ledger.
func ModuleAddress(name string) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("gojobs/module/" + name))
	return Address(hex.EncodeToString(h.Sum(nil)))
}
