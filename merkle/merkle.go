// Package merkle implements keccak-256 Merkle trees with sorted pair
// hashing, so a proof is just the list of siblings from leaf to root.
package merkle

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

type Hash [32]byte

var Zero Hash

func (h Hash) IsZero() bool {
	return h == Zero
}

func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("hash %q: expected %d bytes, got %d", s, len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Keccak hashes the concatenation of parts.
func Keccak(parts ...[]byte) Hash {
	var h Hash
	k := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		k.Write(p)
	}
	copy(h[:], k.Sum(nil))
	return h
}

// Subnode derives the node of label under root: keccak(root || keccak(label)).
func Subnode(root Hash, label string) Hash {
	l := Keccak([]byte(label))
	return Keccak(root[:], l[:])
}

// IdentityLeaf is the leaf committing identity under label of root.
func IdentityLeaf(root Hash, label string, identity []byte) Hash {
	sub := Subnode(root, label)
	return Keccak(sub[:], identity)
}

func HashPair(a, b Hash) Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return Keccak(a[:], b[:])
}

// Verify reports whether proof links leaf to root.
func Verify(root, leaf Hash, proof []Hash) bool {
	h := leaf
	for _, sibling := range proof {
		h = HashPair(h, sibling)
	}
	return h == root
}

// SetMembershipProof checks that leaf belongs to the set committed by root.
type SetMembershipProof interface {
	Verify(root, leaf Hash, proof []Hash) bool
}

type KeccakProof struct{}

func (KeccakProof) Verify(root, leaf Hash, proof []Hash) bool {
	return Verify(root, leaf, proof)
}

// Tree keeps every layer so proofs can be produced for any leaf. An odd node
// at the end of a layer is promoted unchanged.
type Tree struct {
	layers [][]Hash
}

func Build(leaves []Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("merkle: no leaves")
	}
	layer := make([]Hash, len(leaves))
	copy(layer, leaves)
	t := &Tree{layers: [][]Hash{layer}}
	for len(layer) > 1 {
		next := make([]Hash, 0, (len(layer)+1)/2)
		for i := 0; i < len(layer); i += 2 {
			if i+1 == len(layer) {
				next = append(next, layer[i])
				continue
			}
			next = append(next, HashPair(layer[i], layer[i+1]))
		}
		t.layers = append(t.layers, next)
		layer = next
	}
	return t, nil
}

func (t *Tree) Root() Hash {
	top := t.layers[len(t.layers)-1]
	return top[0]
}

func (t *Tree) Proof(index int) ([]Hash, error) {
	if index < 0 || index >= len(t.layers[0]) {
		return nil, fmt.Errorf("merkle: leaf %d out of range", index)
	}
	var proof []Hash
	for _, layer := range t.layers[:len(t.layers)-1] {
		sibling := index ^ 1
		if sibling < len(layer) {
			proof = append(proof, layer[sibling])
		}
		index /= 2
	}
	return proof, nil
}
