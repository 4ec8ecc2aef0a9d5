package certificate

import (
	"testing"

	goNostr "github.com/nbd-wtf/go-nostr"
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/events"
	"github.com/sebdeveloper6952/gojobs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const agi token.AssetID = "AGIALPHA"

func newKey(t *testing.T) domain.Address {
	t.Helper()
	pk, err := goNostr.GetPublicKey(goNostr.GeneratePrivateKey())
	require.NoError(t, err)
	return domain.Address(pk)
}

type fixture struct {
	bank     *token.Bank
	market   *Market
	rec      *events.Recorder
	owner    domain.Address
	registry domain.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bank:     token.NewBank(),
		rec:      events.NewRecorder(),
		owner:    newKey(t),
		registry: newKey(t),
	}
	require.NoError(t, f.bank.Register(agi, 18))
	self := domain.ModuleAddress("certificate")
	custody, err := token.NewCustody(f.bank, agi, self)
	require.NoError(t, err)
	f.market, err = New(custody, self, f.owner, f.rec)
	require.NoError(t, err)
	require.NoError(t, f.market.SetJobRegistry(f.owner, f.registry))
	f.rec.Reset()
	return f
}

func (f *fixture) fund(t *testing.T, who domain.Address, amount domain.Amount) {
	t.Helper()
	require.NoError(t, f.bank.Mint(agi, who, amount))
	require.NoError(t, f.bank.Approve(agi, who, f.market.Address(), amount))
}

func TestNewRejectsWrongDecimals(t *testing.T) {
	bank := token.NewBank()
	require.NoError(t, bank.Register("USDC", 6))
	custody, err := token.NewCustody(bank, "USDC", domain.ModuleAddress("certificate"))
	require.NoError(t, err)

	_, err = New(custody, custody.Address(), newKey(t), nil)
	require.ErrorIs(t, err, domain.ErrInvalidDecimals)
}

func TestMintOnlyFromRegistry(t *testing.T) {
	f := newFixture(t)
	worker := newKey(t)

	_, err := f.market.Mint(worker, worker)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	id, err := f.market.Mint(f.registry, worker)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	owner, ok := f.market.OwnerOf(id)
	require.True(t, ok)
	assert.Equal(t, worker, owner)
	assert.Equal(t, 1, f.market.BalanceOf(worker))
	assert.True(t, f.market.Holds(f.market.Address(), worker))
	assert.False(t, f.market.Holds(newKey(t), worker))
	assert.Equal(t, domain.CertificateMinted{ID: id, To: worker}, f.rec.Last("CertificateMinted"))
}

func TestListAndPurchase(t *testing.T) {
	f := newFixture(t)
	seller, buyer := newKey(t), newKey(t)
	price := domain.Tokens(2)
	id, err := f.market.Mint(f.registry, seller)
	require.NoError(t, err)

	require.ErrorIs(t, f.market.List(buyer, id, price), domain.ErrNotAuthorized)
	require.ErrorIs(t, f.market.List(seller, 99, price), domain.ErrNotFound)
	require.ErrorIs(t, f.market.Purchase(buyer, id), domain.ErrInvalidStatus)
	require.NoError(t, f.market.List(seller, id, price))
	assert.Equal(t, []uint64{id}, f.market.Listed())
	require.ErrorIs(t, f.market.Purchase(seller, id), domain.ErrNotAuthorized)

	f.fund(t, buyer, price)
	require.NoError(t, f.market.Purchase(buyer, id))

	owner, _ := f.market.OwnerOf(id)
	assert.Equal(t, buyer, owner)
	assert.Zero(t, f.market.BalanceOf(seller))
	assert.True(t, f.bank.BalanceOf(agi, seller).Equal(price))
	assert.True(t, f.bank.BalanceOf(agi, buyer).IsZero())
	assert.True(t, f.bank.BalanceOf(agi, f.market.Address()).IsZero())
	assert.Empty(t, f.market.Listed())

	ev := f.rec.Last("CertificatePurchased").(domain.CertificatePurchased)
	assert.Equal(t, seller, ev.Seller)
	assert.Equal(t, buyer, ev.Buyer)
}

func TestDelist(t *testing.T) {
	f := newFixture(t)
	seller := newKey(t)
	id, err := f.market.Mint(f.registry, seller)
	require.NoError(t, err)

	require.ErrorIs(t, f.market.Delist(seller, id), domain.ErrInvalidStatus)
	require.NoError(t, f.market.List(seller, id, domain.Tokens(1)))
	require.NoError(t, f.market.Delist(seller, id))
	_, listed := f.market.Listing(id)
	assert.False(t, listed)
	assert.Equal(t, domain.CertificateDelisted{ID: id}, f.rec.Last("CertificateDelisted"))
}

func TestReentrantPurchaseRejectedThenRetrySucceeds(t *testing.T) {
	f := newFixture(t)
	seller, buyer := newKey(t), newKey(t)
	price := domain.Tokens(1)
	first, err := f.market.Mint(f.registry, seller)
	require.NoError(t, err)
	second, err := f.market.Mint(f.registry, seller)
	require.NoError(t, err)
	require.NoError(t, f.market.List(seller, first, price))
	require.NoError(t, f.market.List(seller, second, price))
	f.fund(t, buyer, price.Add(price))

	var nested error
	require.NoError(t, f.bank.SetHook(agi, func(m token.Movement) error {
		if m.To == seller {
			nested = f.market.Purchase(buyer, second)
			return nested
		}
		return nil
	}))
	err = f.market.Purchase(buyer, first)
	require.ErrorIs(t, err, domain.ErrReentrancyDetected)
	require.ErrorIs(t, nested, domain.ErrReentrancyDetected)

	owner, _ := f.market.OwnerOf(first)
	assert.Equal(t, seller, owner)
	assert.True(t, f.bank.BalanceOf(agi, buyer).Equal(price.Add(price)))
	assert.True(t, f.bank.BalanceOf(agi, f.market.Address()).IsZero())
	assert.Empty(t, f.rec.Named("CertificatePurchased"))

	require.NoError(t, f.bank.SetHook(agi, nil))
	require.NoError(t, f.market.Purchase(buyer, first))
	owner, _ = f.market.OwnerOf(first)
	assert.Equal(t, buyer, owner)
}
