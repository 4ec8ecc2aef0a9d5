package token

import (
	"errors"
	"testing"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	agi   AssetID = "AGIALPHA"
	other AssetID = "OTHER"
)

func newBank(t *testing.T) *Bank {
	t.Helper()
	b := NewBank()
	require.NoError(t, b.Register(agi, 18))
	require.NoError(t, b.Register(other, 18))
	return b
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	b := newBank(t)
	require.NoError(t, b.Mint(agi, "alice", domain.NewAmount(100)))
	require.NoError(t, b.Approve(agi, "alice", "vault", domain.NewAmount(60)))

	require.NoError(t, b.TransferFrom(agi, "vault", "alice", "vault", domain.NewAmount(40)))
	assert.True(t, b.BalanceOf(agi, "vault").Equal(domain.NewAmount(40)))
	assert.True(t, b.Allowance(agi, "alice", "vault").Equal(domain.NewAmount(20)))

	err := b.TransferFrom(agi, "vault", "alice", "vault", domain.NewAmount(40))
	require.ErrorIs(t, err, domain.ErrInsufficientAllowance)
}

func TestBurnReducesSupply(t *testing.T) {
	b := newBank(t)
	require.NoError(t, b.Mint(agi, "alice", domain.NewAmount(10)))
	require.NoError(t, b.BurnFrom(agi, "alice", domain.NewAmount(3)))
	assert.True(t, b.TotalSupply(agi).Equal(domain.NewAmount(7)))
	assert.True(t, b.BalanceOf(agi, "alice").Equal(domain.NewAmount(7)))

	require.ErrorIs(t, b.BurnFrom(agi, "alice", domain.NewAmount(8)), domain.ErrInsufficientBalance)
}

func TestHookAbortsMovement(t *testing.T) {
	b := newBank(t)
	require.NoError(t, b.Mint(agi, "alice", domain.NewAmount(10)))
	boom := errors.New("boom")
	require.NoError(t, b.SetHook(agi, func(m Movement) error { return boom }))

	require.ErrorIs(t, b.Transfer(agi, "alice", "bob", domain.NewAmount(1)), boom)
	assert.True(t, b.BalanceOf(agi, "alice").Equal(domain.NewAmount(10)))
}

func TestCheckpointRevert(t *testing.T) {
	b := newBank(t)
	require.NoError(t, b.Mint(agi, "alice", domain.NewAmount(10)))

	revert := b.Checkpoint()
	require.NoError(t, b.Transfer(agi, "alice", "bob", domain.NewAmount(4)))
	require.NoError(t, b.BurnFrom(agi, "bob", domain.NewAmount(1)))
	revert()

	assert.True(t, b.BalanceOf(agi, "alice").Equal(domain.NewAmount(10)))
	assert.True(t, b.BalanceOf(agi, "bob").IsZero())
	assert.True(t, b.TotalSupply(agi).Equal(domain.NewAmount(10)))
}

func TestCustodyPullWrongToken(t *testing.T) {
	b := newBank(t)
	c, err := NewCustody(b, agi, "vault")
	require.NoError(t, err)

	require.NoError(t, b.Mint(other, "mallory", domain.NewAmount(5)))
	require.NoError(t, b.Approve(other, "mallory", "vault", domain.NewAmount(5)))

	require.ErrorIs(t, c.Pull("mallory", domain.NewAmount(5)), domain.ErrWrongToken)

	require.NoError(t, b.Mint(agi, "alice", domain.NewAmount(5)))
	require.NoError(t, b.Approve(agi, "alice", "vault", domain.NewAmount(5)))
	require.NoError(t, c.Pull("alice", domain.NewAmount(5)))
	assert.True(t, c.Balance().Equal(domain.NewAmount(5)))

	require.NoError(t, c.Push("bob", domain.NewAmount(2)))
	require.NoError(t, c.Burn(domain.NewAmount(1)))
	assert.True(t, c.TotalSupply().Equal(domain.NewAmount(4)))
	require.ErrorIs(t, c.Push(domain.ZeroAddress, domain.NewAmount(1)), domain.ErrInvalidAmount)
}

func TestCustodyUnknownAsset(t *testing.T) {
	_, err := NewCustody(NewBank(), agi, "vault")
	require.ErrorIs(t, err, domain.ErrWrongToken)
}
