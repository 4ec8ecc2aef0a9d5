// Package stake keeps per-role stakes and per-job escrows in custody of a
// single asset, and moves them out again on release or slash.
package stake

import (
	"sort"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/events"
	"github.com/sebdeveloper6952/gojobs/guard"
	"github.com/sebdeveloper6952/gojobs/token"
)

// Ledger is not safe for concurrent use. Callers must serialize access,
// which the engine does with its single writer loop.
type Ledger struct {
	domain.Ownable

	vt    token.ValueTransfer
	asset token.AssetID
	guard *guard.Guard
	emit  events.Emitter

	stakes  map[domain.Address]map[domain.Role]domain.Amount
	escrows map[uint64]domain.Amount

	treasury    domain.Address
	jobRegistry domain.Address
	slasher     domain.Address

	minStake         map[domain.Role]domain.Amount
	feePct           domain.BasisPoints
	burnPct          domain.BasisPoints
	reservedPct      domain.BasisPoints
	employerSlashPct domain.BasisPoints
	treasurySlashPct domain.BasisPoints
	agiTypes         map[domain.Address]domain.BasisPoints
}

var (
	_ domain.Authorizable = (*Ledger)(nil)
	_ domain.Checkpointer = (*Ledger)(nil)
)

// New fails with ErrInvalidDecimals unless the asset uses 18 decimals. The
// treasury defaults to the owner.
func New(
	vt token.ValueTransfer,
	owner domain.Address,
	treasury domain.Address,
	emit events.Emitter,
) (*Ledger, error) {
	if vt.Decimals() != domain.Decimals {
		return nil, domain.Fail("newLedger", domain.ErrInvalidDecimals,
			"asset %s has %d decimals, want %d", vt.Asset(), vt.Decimals(), domain.Decimals)
	}
	if treasury.IsZero() {
		treasury = owner
	}
	if emit == nil {
		emit = events.Nop
	}

	l := &Ledger{
		Ownable:          domain.NewOwnable(owner),
		vt:               vt,
		asset:            vt.Asset(),
		guard:            guard.New(),
		emit:             emit,
		stakes:           make(map[domain.Address]map[domain.Role]domain.Amount),
		escrows:          make(map[uint64]domain.Amount),
		treasury:         treasury,
		minStake:         make(map[domain.Role]domain.Amount),
		treasurySlashPct: domain.MaxBasisPoints,
		agiTypes:         make(map[domain.Address]domain.BasisPoints),
	}
	for _, r := range domain.Roles {
		l.minStake[r] = domain.ZeroAmount()
	}

	return l, nil
}

func (l *Ledger) Asset() token.AssetID {
	return l.asset
}

func (l *Ledger) Deposit(caller domain.Address, role domain.Role, amount domain.Amount) error {
	const op = "deposit"
	if err := l.checkInput(op, role, amount); err != nil {
		return err
	}

	release, err := l.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	if err := l.vt.Pull(caller, amount); err != nil {
		return domain.Wrap(op, err)
	}
	l.credit(caller, role, amount)

	l.emit.Emit(domain.StakeDeposited{Account: caller, Role: role, Amount: amount})
	return nil
}

func (l *Ledger) Withdraw(caller domain.Address, role domain.Role, amount domain.Amount) error {
	const op = "withdraw"
	if err := l.checkInput(op, role, amount); err != nil {
		return err
	}
	if have := l.StakeOf(caller, role); have.LT(amount) {
		return domain.Fail(op, domain.ErrInsufficientStake, "%s stake of %s is %s, wanted %s", role, caller, have, amount)
	}

	release, err := l.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	l.debit(caller, role, amount)
	if err := l.vt.Push(caller, amount); err != nil {
		l.credit(caller, role, amount)
		return domain.Wrap(op, err)
	}

	l.emit.Emit(domain.StakeWithdrawn{Account: caller, Role: role, Amount: amount})
	return nil
}

// Lock pulls amount from payer straight into the escrow of jobID. Only the
// job registry may lock, and only one live escrow may exist per job.
func (l *Ledger) Lock(caller domain.Address, jobID uint64, payer domain.Address, amount domain.Amount) error {
	const op = "lock"
	if err := l.requireRegistry(op, caller); err != nil {
		return err
	}
	if amount.IsZero() {
		return domain.Fail(op, domain.ErrInvalidAmount, "amount must be positive")
	}
	if _, ok := l.escrows[jobID]; ok {
		return domain.Fail(op, domain.ErrInvalidStatus, "job %d already has a live escrow", jobID)
	}

	release, err := l.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	if err := l.vt.Pull(payer, amount); err != nil {
		return domain.Wrap(op, err)
	}
	l.escrows[jobID] = amount

	l.emit.Emit(domain.StakeEscrowLocked{JobID: jobID, Payer: payer, Amount: amount})
	return nil
}

// Release pays out the escrow of jobID: floor(E*burnPct/10000) is burned,
// every split receives floor(E*pct/10000) and recipient gets the rest.
func (l *Ledger) Release(
	caller domain.Address,
	jobID uint64,
	recipient domain.Address,
	splits []domain.FeeSplit,
	burnPct domain.BasisPoints,
) error {
	const op = "release"
	if err := l.requireRegistry(op, caller); err != nil {
		return err
	}
	escrow := l.Escrow(jobID)
	if escrow.IsZero() {
		return domain.Fail(op, domain.ErrInvalidStatus, "job %d has no escrow", jobID)
	}
	if recipient.IsZero() {
		return domain.Fail(op, domain.ErrInvalidAmount, "recipient is the zero address")
	}
	total := uint64(burnPct)
	for _, s := range splits {
		total += uint64(s.Pct)
	}
	if !burnPct.Valid() || total > domain.MaxBasisPoints {
		return domain.Fail(op, domain.ErrInvalidPercentage, "burn and splits add up to %d", total)
	}

	burn := burnPct.Of(escrow)
	payouts := make([]payout, 0, len(splits)+1)
	paid := burn
	fees := domain.ZeroAmount()
	for _, s := range splits {
		share := s.Pct.Of(escrow)
		to := s.To
		if to.IsZero() {
			to = l.treasury
		}
		payouts = append(payouts, payout{to: to, amount: share})
		paid = paid.Add(share)
		fees = fees.Add(share)
	}
	net := escrow.Sub(paid)
	payouts = append(payouts, payout{to: recipient, amount: net})

	release, err := l.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	delete(l.escrows, jobID)
	revert := domain.Checkpoint(l.vt)
	if err := l.settle(burn, payouts); err != nil {
		revert()
		l.escrows[jobID] = escrow
		return domain.Wrap(op, err)
	}

	if !burn.IsZero() {
		l.emit.Emit(domain.TokensBurned{JobID: jobID, Amount: burn})
	}
	l.emit.Emit(domain.StakeReleased{JobID: jobID, Recipient: recipient, Amount: net, Fees: fees, Burned: burn})
	return nil
}

// Refund returns the whole escrow of jobID to to, without burn or fees.
func (l *Ledger) Refund(caller domain.Address, jobID uint64, to domain.Address) error {
	return l.Release(caller, jobID, to, nil, 0)
}

// Slash takes amount from the role stake of account. The beneficiary gets
// floor(amount*employerSlashPct/10000) and the treasury the remainder; with
// no beneficiary everything goes to the treasury.
func (l *Ledger) Slash(
	caller domain.Address,
	role domain.Role,
	account domain.Address,
	beneficiary domain.Address,
	amount domain.Amount,
) error {
	const op = "slash"
	if caller.IsZero() || (caller != l.slasher && caller != l.jobRegistry) {
		return domain.Fail(op, domain.ErrNotAuthorized, "%s is not a slasher", caller)
	}
	if err := l.checkInput(op, role, amount); err != nil {
		return err
	}
	if have := l.StakeOf(account, role); have.LT(amount) {
		return domain.Fail(op, domain.ErrInsufficientStake, "%s stake of %s is %s, wanted %s", role, account, have, amount)
	}

	beneficiaryShare := domain.ZeroAmount()
	if !beneficiary.IsZero() {
		beneficiaryShare = l.employerSlashPct.Of(amount)
	}
	treasuryShare := amount.Sub(beneficiaryShare)

	release, err := l.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	l.debit(account, role, amount)
	revert := domain.Checkpoint(l.vt)
	payouts := []payout{
		{to: beneficiary, amount: beneficiaryShare},
		{to: l.treasury, amount: treasuryShare},
	}
	if err := l.settle(domain.ZeroAmount(), payouts); err != nil {
		revert()
		l.credit(account, role, amount)
		return domain.Wrap(op, err)
	}

	l.emit.Emit(domain.StakeSlashed{
		Account:          account,
		Role:             role,
		Beneficiary:      beneficiary,
		Amount:           amount,
		BeneficiaryShare: beneficiaryShare,
		TreasuryShare:    treasuryShare,
	})
	return nil
}

func (l *Ledger) StakeOf(account domain.Address, role domain.Role) domain.Amount {
	if roles, ok := l.stakes[account]; ok {
		if v, ok := roles[role]; ok {
			return v
		}
	}
	return domain.ZeroAmount()
}

// TotalStake sums every role stake of every account.
func (l *Ledger) TotalStake() domain.Amount {
	total := domain.ZeroAmount()
	for _, roles := range l.stakes {
		for _, v := range roles {
			total = total.Add(v)
		}
	}
	return total
}

func (l *Ledger) Escrow(jobID uint64) domain.Amount {
	if v, ok := l.escrows[jobID]; ok {
		return v
	}
	return domain.ZeroAmount()
}

func (l *Ledger) TotalEscrow() domain.Amount {
	total := domain.ZeroAmount()
	for _, v := range l.escrows {
		total = total.Add(v)
	}
	return total
}

// Stakers lists every account with a non-zero stake in role, sorted.
func (l *Ledger) Stakers(role domain.Role) []domain.Address {
	var out []domain.Address
	for account, roles := range l.stakes {
		if v, ok := roles[role]; ok && !v.IsZero() {
			out = append(out, account)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Checkpoint snapshots stakes, escrows and, when supported, the custody.
func (l *Ledger) Checkpoint() (revert func()) {
	stakes := make(map[domain.Address]map[domain.Role]domain.Amount, len(l.stakes))
	for account, roles := range l.stakes {
		m := make(map[domain.Role]domain.Amount, len(roles))
		for r, v := range roles {
			m[r] = v
		}
		stakes[account] = m
	}
	escrows := make(map[uint64]domain.Amount, len(l.escrows))
	for id, v := range l.escrows {
		escrows[id] = v
	}
	revertCustody := domain.Checkpoint(l.vt)
	return func() {
		revertCustody()
		l.stakes = stakes
		l.escrows = escrows
	}
}

type payout struct {
	to     domain.Address
	amount domain.Amount
}

func (l *Ledger) settle(burn domain.Amount, payouts []payout) error {
	if !burn.IsZero() {
		if err := l.vt.Burn(burn); err != nil {
			return err
		}
	}
	for _, p := range payouts {
		if p.amount.IsZero() {
			continue
		}
		if err := l.vt.Push(p.to, p.amount); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) credit(account domain.Address, role domain.Role, amount domain.Amount) {
	roles, ok := l.stakes[account]
	if !ok {
		roles = make(map[domain.Role]domain.Amount)
		l.stakes[account] = roles
	}
	roles[role] = l.StakeOf(account, role).Add(amount)
}

func (l *Ledger) debit(account domain.Address, role domain.Role, amount domain.Amount) {
	left := l.StakeOf(account, role).Sub(amount)
	if left.IsZero() {
		delete(l.stakes[account], role)
		if len(l.stakes[account]) == 0 {
			delete(l.stakes, account)
		}
		return
	}
	l.stakes[account][role] = left
}

func (l *Ledger) checkInput(op string, role domain.Role, amount domain.Amount) error {
	if !role.Valid() {
		return domain.Fail(op, domain.ErrInvalidRole, "%s", role)
	}
	if amount.IsZero() {
		return domain.Fail(op, domain.ErrInvalidAmount, "amount must be positive")
	}
	return nil
}

func (l *Ledger) requireRegistry(op string, caller domain.Address) error {
	if l.jobRegistry.IsZero() || caller != l.jobRegistry {
		return domain.Fail(op, domain.ErrNotAuthorized, "not job registry")
	}
	return nil
}
