package merkle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaves(n int) []Hash {
	out := make([]Hash, n)
	for i := range out {
		out[i] = Keccak([]byte(fmt.Sprintf("leaf-%d", i)))
	}
	return out
}

func TestProofsVerifyForEveryLeaf(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8} {
		ls := leaves(n)
		tree, err := Build(ls)
		require.NoError(t, err)

		for i, leaf := range ls {
			proof, err := tree.Proof(i)
			require.NoError(t, err)
			assert.True(t, Verify(tree.Root(), leaf, proof), "n=%d i=%d", n, i)
		}
	}
}

func TestVerifyRejectsOutsider(t *testing.T) {
	ls := leaves(4)
	tree, err := Build(ls)
	require.NoError(t, err)

	proof, err := tree.Proof(0)
	require.NoError(t, err)
	assert.False(t, KeccakProof{}.Verify(tree.Root(), Keccak([]byte("intruder")), proof))
}

func TestSingleLeafRootIsLeaf(t *testing.T) {
	root := Keccak([]byte("club-root"))
	leaf := IdentityLeaf(root, "validator", []byte{1, 2, 3})
	assert.True(t, Verify(leaf, leaf, nil))
}

func TestHashHexRoundTrip(t *testing.T) {
	h := Keccak([]byte("x"))
	parsed, err := ParseHash(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = ParseHash("abcd")
	require.Error(t, err)
	assert.True(t, Zero.IsZero())
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(nil)
	require.Error(t, err)
}
