package stake

import (
	"testing"

	goNostr "github.com/nbd-wtf/go-nostr"
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/events"
	"github.com/sebdeveloper6952/gojobs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	agi   token.AssetID = "AGIALPHA"
	other token.AssetID = "OTHER"
)

func newKey(t *testing.T) domain.Address {
	t.Helper()
	pk, err := goNostr.GetPublicKey(goNostr.GeneratePrivateKey())
	require.NoError(t, err)
	return domain.Address(pk)
}

type fixture struct {
	bank     *token.Bank
	custody  *token.Custody
	ledger   *Ledger
	rec      *events.Recorder
	owner    domain.Address
	registry domain.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bank := token.NewBank()
	require.NoError(t, bank.Register(agi, 18))
	require.NoError(t, bank.Register(other, 18))

	custody, err := token.NewCustody(bank, agi, domain.ModuleAddress("stake"))
	require.NoError(t, err)

	f := &fixture{
		bank:     bank,
		custody:  custody,
		rec:      events.NewRecorder(),
		owner:    newKey(t),
		registry: newKey(t),
	}
	f.ledger, err = New(custody, f.owner, domain.ZeroAddress, f.rec)
	require.NoError(t, err)
	require.NoError(t, f.ledger.SetJobRegistry(f.owner, f.registry))
	f.rec.Reset()
	return f
}

// fund mints amount to who and approves the ledger custody for it.
func (f *fixture) fund(t *testing.T, who domain.Address, amount domain.Amount) {
	t.Helper()
	require.NoError(t, f.bank.Mint(agi, who, amount))
	require.NoError(t, f.bank.Approve(agi, who, f.custody.Address(), amount))
}

func (f *fixture) balance(who domain.Address) domain.Amount {
	return f.bank.BalanceOf(agi, who)
}

// conserved checks that custody holds exactly the stakes plus escrows.
func (f *fixture) conserved(t *testing.T) {
	t.Helper()
	held := f.custody.Balance()
	owed := f.ledger.TotalStake().Add(f.ledger.TotalEscrow())
	assert.True(t, held.Equal(owed), "custody holds %s, ledger owes %s", held, owed)
}

func TestNewRejectsWrongDecimals(t *testing.T) {
	bank := token.NewBank()
	require.NoError(t, bank.Register("USDC", 6))
	custody, err := token.NewCustody(bank, "USDC", domain.ModuleAddress("stake"))
	require.NoError(t, err)

	_, err = New(custody, newKey(t), domain.ZeroAddress, nil)
	require.ErrorIs(t, err, domain.ErrInvalidDecimals)
}

func TestDepositThenWithdrawRestoresBalance(t *testing.T) {
	f := newFixture(t)
	agent := newKey(t)
	amount := domain.Tokens(1)
	f.fund(t, agent, amount)

	require.NoError(t, f.ledger.Deposit(agent, domain.RoleAgent, amount))
	assert.True(t, f.ledger.StakeOf(agent, domain.RoleAgent).Equal(amount))
	assert.True(t, f.balance(agent).IsZero())
	f.conserved(t)

	require.NoError(t, f.ledger.Withdraw(agent, domain.RoleAgent, amount))
	assert.True(t, f.ledger.StakeOf(agent, domain.RoleAgent).IsZero())
	assert.True(t, f.balance(agent).Equal(amount))
	f.conserved(t)

	assert.Len(t, f.rec.Named("StakeDeposited"), 1)
	assert.Len(t, f.rec.Named("StakeWithdrawn"), 1)
}

func TestDepositRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	agent := newKey(t)

	require.ErrorIs(t, f.ledger.Deposit(agent, domain.RoleAgent, domain.ZeroAmount()), domain.ErrInvalidAmount)
	require.ErrorIs(t, f.ledger.Deposit(agent, domain.Role(9), domain.Tokens(1)), domain.ErrInvalidRole)
	require.ErrorIs(t, f.ledger.Withdraw(agent, domain.RoleAgent, domain.Tokens(1)), domain.ErrInsufficientStake)
}

func TestDepositWithMismatchedTokenFails(t *testing.T) {
	f := newFixture(t)
	mismatch := newKey(t)
	amount := domain.Tokens(1)
	require.NoError(t, f.bank.Mint(other, mismatch, amount))
	require.NoError(t, f.bank.Approve(other, mismatch, f.custody.Address(), amount))

	err := f.ledger.Deposit(mismatch, domain.RoleAgent, amount)
	require.ErrorIs(t, err, domain.ErrWrongToken)
	assert.True(t, f.ledger.StakeOf(mismatch, domain.RoleAgent).IsZero())
	assert.Empty(t, f.rec.Events())
}

func TestLockOnlyFromRegistry(t *testing.T) {
	f := newFixture(t)
	employer := newKey(t)
	amount := domain.Tokens(1)
	f.fund(t, employer, amount)

	require.ErrorIs(t, f.ledger.Lock(employer, 1, employer, amount), domain.ErrNotAuthorized)

	require.NoError(t, f.ledger.Lock(f.registry, 1, employer, amount))
	assert.True(t, f.ledger.Escrow(1).Equal(amount))
	require.ErrorIs(t, f.ledger.Lock(f.registry, 1, employer, amount), domain.ErrInvalidStatus)
	f.conserved(t)

	require.NoError(t, f.bank.Mint(other, employer, amount))
	require.NoError(t, f.bank.Approve(other, employer, f.custody.Address(), amount))
	require.ErrorIs(t, f.ledger.Lock(f.registry, 2, employer, amount), domain.ErrWrongToken)
	assert.True(t, f.ledger.Escrow(2).IsZero())
}

func TestReleaseBurnsConfiguredPercentage(t *testing.T) {
	f := newFixture(t)
	employer, agent := newKey(t), newKey(t)
	amount := domain.Tokens(1)
	require.NoError(t, f.ledger.SetBurnPct(f.owner, 1000))
	f.fund(t, employer, amount)
	require.NoError(t, f.ledger.Lock(f.registry, 1, employer, amount))

	supply := f.custody.TotalSupply()
	require.NoError(t, f.ledger.Release(f.registry, 1, agent, nil, f.ledger.BurnPct()))

	burned := domain.BasisPoints(1000).Of(amount)
	assert.True(t, f.custody.TotalSupply().Equal(supply.Sub(burned)))
	assert.True(t, f.balance(agent).Equal(amount.Sub(burned)))
	assert.True(t, f.ledger.Escrow(1).IsZero())
	f.conserved(t)

	ev := f.rec.Last("TokensBurned").(domain.TokensBurned)
	assert.True(t, ev.Amount.Equal(burned))

	require.ErrorIs(t, f.ledger.Release(f.registry, 1, agent, nil, 0), domain.ErrInvalidStatus)
}

func TestReleaseWithFeeSplits(t *testing.T) {
	f := newFixture(t)
	employer, agent, validator := newKey(t), newKey(t), newKey(t)
	escrow := domain.NewAmount(1001)
	f.fund(t, employer, escrow)
	require.NoError(t, f.ledger.Lock(f.registry, 7, employer, escrow))

	splits := []domain.FeeSplit{
		{To: domain.ZeroAddress, Pct: 500},
		{To: validator, Pct: 1000},
	}
	require.ErrorIs(t,
		f.ledger.Release(f.registry, 7, agent, splits, 9000),
		domain.ErrInvalidPercentage)

	require.NoError(t, f.ledger.Release(f.registry, 7, agent, splits, 100))

	assert.True(t, f.custody.TotalSupply().Equal(domain.NewAmount(991)))
	assert.True(t, f.balance(f.ledger.Treasury()).Equal(domain.NewAmount(50)))
	assert.True(t, f.balance(validator).Equal(domain.NewAmount(100)))
	assert.True(t, f.balance(agent).Equal(domain.NewAmount(841)))
	f.conserved(t)
}

func TestSlashWithoutBeneficiaryGoesToTreasury(t *testing.T) {
	f := newFixture(t)
	v := newKey(t)
	amount := domain.Tokens(3)
	f.fund(t, v, amount)
	require.NoError(t, f.ledger.Deposit(v, domain.RoleValidator, amount))
	require.NoError(t, f.ledger.SetSlasher(f.owner, f.owner))

	require.ErrorIs(t,
		f.ledger.Slash(v, domain.RoleValidator, v, domain.ZeroAddress, amount),
		domain.ErrNotAuthorized)

	require.NoError(t, f.ledger.Slash(f.owner, domain.RoleValidator, v, domain.ZeroAddress, domain.Tokens(2)))
	assert.True(t, f.balance(f.ledger.Treasury()).Equal(domain.Tokens(2)))
	assert.True(t, f.ledger.StakeOf(v, domain.RoleValidator).Equal(domain.Tokens(1)))
	f.conserved(t)

	ev := f.rec.Last("StakeSlashed").(domain.StakeSlashed)
	assert.True(t, ev.BeneficiaryShare.IsZero())
	assert.True(t, ev.TreasuryShare.Equal(domain.Tokens(2)))
}

func TestSlashSplitsWithEmployer(t *testing.T) {
	f := newFixture(t)
	v, employer, treasury := newKey(t), newKey(t), newKey(t)
	amount := domain.Tokens(1).Add(domain.NewAmount(3))
	f.fund(t, v, amount)
	require.NoError(t, f.ledger.Deposit(v, domain.RoleAgent, amount))
	require.NoError(t, f.ledger.SetTreasury(f.owner, treasury))
	require.NoError(t, f.ledger.SetEmployerSlashPct(f.owner, 2500))

	require.NoError(t, f.ledger.Slash(f.registry, domain.RoleAgent, v, employer, amount))

	beneficiaryShare := domain.BasisPoints(2500).Of(amount)
	treasuryShare := amount.Sub(beneficiaryShare)
	assert.True(t, f.balance(employer).Equal(beneficiaryShare))
	assert.True(t, f.balance(treasury).Equal(treasuryShare))
	assert.True(t, f.ledger.StakeOf(v, domain.RoleAgent).IsZero())
	f.conserved(t)

	ev := f.rec.Last("StakeSlashed").(domain.StakeSlashed)
	assert.True(t, ev.BeneficiaryShare.Add(ev.TreasuryShare).Equal(ev.Amount))

	require.ErrorIs(t,
		f.ledger.Slash(f.registry, domain.RoleAgent, v, employer, domain.NewAmount(1)),
		domain.ErrInsufficientStake)
}

func TestReentrantDepositAndWithdrawRejected(t *testing.T) {
	f := newFixture(t)
	agent := newKey(t)
	amount := domain.Tokens(1)
	f.fund(t, agent, amount.MulUint64(2))
	require.NoError(t, f.bank.Approve(agi, agent, f.custody.Address(), amount.MulUint64(2)))

	attack := true
	var inner error
	require.NoError(t, f.bank.SetHook(agi, func(m token.Movement) error {
		if !attack {
			return nil
		}
		inner = f.ledger.Deposit(agent, domain.RoleAgent, amount)
		return inner
	}))

	err := f.ledger.Deposit(agent, domain.RoleAgent, amount)
	require.ErrorIs(t, err, domain.ErrReentrancyDetected)
	require.ErrorIs(t, inner, domain.ErrReentrancyDetected)
	assert.True(t, f.ledger.StakeOf(agent, domain.RoleAgent).IsZero())
	assert.True(t, f.balance(agent).Equal(amount.MulUint64(2)))

	attack = false
	require.NoError(t, f.ledger.Deposit(agent, domain.RoleAgent, amount))

	attack = true
	err = f.ledger.Withdraw(agent, domain.RoleAgent, amount)
	require.ErrorIs(t, err, domain.ErrReentrancyDetected)
	assert.True(t, f.ledger.StakeOf(agent, domain.RoleAgent).Equal(amount))
	f.conserved(t)

	attack = false
	require.NoError(t, f.ledger.Withdraw(agent, domain.RoleAgent, amount))
	f.conserved(t)
}

func TestReentrantReleaseRevertsEverything(t *testing.T) {
	f := newFixture(t)
	employer, agent := newKey(t), newKey(t)
	amount := domain.Tokens(2)
	require.NoError(t, f.ledger.SetBurnPct(f.owner, 500))
	f.fund(t, employer, amount)
	require.NoError(t, f.ledger.Lock(f.registry, 1, employer, amount))
	supply := f.custody.TotalSupply()

	require.NoError(t, f.bank.SetHook(agi, func(m token.Movement) error {
		if m.To == agent {
			return f.ledger.Deposit(agent, domain.RoleAgent, domain.NewAmount(1))
		}
		return nil
	}))

	err := f.ledger.Release(f.registry, 1, agent, nil, f.ledger.BurnPct())
	require.ErrorIs(t, err, domain.ErrReentrancyDetected)
	assert.True(t, f.ledger.Escrow(1).Equal(amount))
	assert.True(t, f.custody.TotalSupply().Equal(supply))
	assert.True(t, f.balance(agent).IsZero())
	f.conserved(t)

	require.NoError(t, f.bank.SetHook(agi, nil))
	require.NoError(t, f.ledger.Release(f.registry, 1, agent, nil, f.ledger.BurnPct()))
	f.conserved(t)
}

func TestCheckpointRevertsLedgerAndCustody(t *testing.T) {
	f := newFixture(t)
	agent := newKey(t)
	f.fund(t, agent, domain.Tokens(1))

	revert := f.ledger.Checkpoint()
	require.NoError(t, f.ledger.Deposit(agent, domain.RoleAgent, domain.Tokens(1)))
	revert()

	assert.True(t, f.ledger.StakeOf(agent, domain.RoleAgent).IsZero())
	assert.True(t, f.balance(agent).Equal(domain.Tokens(1)))
	f.conserved(t)
}

func TestStakersSorted(t *testing.T) {
	f := newFixture(t)
	a, b := newKey(t), newKey(t)
	for _, who := range []domain.Address{a, b} {
		f.fund(t, who, domain.NewAmount(5))
		require.NoError(t, f.ledger.Deposit(who, domain.RoleValidator, domain.NewAmount(5)))
	}
	stakers := f.ledger.Stakers(domain.RoleValidator)
	require.Len(t, stakers, 2)
	assert.True(t, stakers[0] < stakers[1])
	assert.Empty(t, f.ledger.Stakers(domain.RoleAgent))
}
