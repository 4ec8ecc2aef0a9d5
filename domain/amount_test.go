package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasisPointsOfFloors(t *testing.T) {
	assert.True(t, BasisPoints(2500).Of(NewAmount(7)).Equal(NewAmount(1)))
	assert.True(t, BasisPoints(1000).Of(Tokens(1)).Equal(NewAmount(100000000000000000)))
	assert.True(t, BasisPoints(0).Of(Tokens(5)).IsZero())
	assert.True(t, BasisPoints(10000).Of(NewAmount(13)).Equal(NewAmount(13)))
	assert.False(t, BasisPoints(10001).Valid())
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	a, err := ParseAmount("100000000000000000000")
	require.NoError(t, err)
	assert.True(t, a.Equal(Tokens(100)))

	_, err = ParseAmount("-1")
	require.Error(t, err)
}

func TestOpErrorUnwrapsToKind(t *testing.T) {
	err := Fail("deposit", ErrInsufficientStake, "have %d", 1)
	assert.True(t, errors.Is(err, ErrInsufficientStake))
	assert.Equal(t, "deposit: stake too low: have 1", err.Error())

	wrapped := Wrap("apply", err)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStake))
	assert.Nil(t, Wrap("noop", nil))
}

func TestParseAddress(t *testing.T) {
	_, err := ParseAddress("zz")
	require.Error(t, err)

	addr := ModuleAddress("jobs")
	parsed, err := ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
	assert.Len(t, parsed.Bytes(), 32)
}

func TestOwnable(t *testing.T) {
	o := NewOwnable("a")
	require.NoError(t, o.RequireOwner("x", "a"))
	require.ErrorIs(t, o.RequireOwner("x", "b"), ErrNotAuthorized)
	require.ErrorIs(t, o.TransferOwnership("b", "c"), ErrNotAuthorized)
	require.NoError(t, o.TransferOwnership("a", "c"))
	assert.Equal(t, Address("c"), o.Owner())
}
