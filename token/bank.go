package token

import (
	"fmt"
	"sort"

	"github.com/sebdeveloper6952/gojobs/domain"
)

type asset struct {
	decimals   uint8
	supply     domain.Amount
	balances   map[domain.Address]domain.Amount
	allowances map[domain.Address]map[domain.Address]domain.Amount
	hook       Hook
}

func (a *asset) clone() *asset {
	c := &asset{
		decimals:   a.decimals,
		supply:     a.supply,
		balances:   make(map[domain.Address]domain.Amount, len(a.balances)),
		allowances: make(map[domain.Address]map[domain.Address]domain.Amount, len(a.allowances)),
		hook:       a.hook,
	}
	for k, v := range a.balances {
		c.balances[k] = v
	}
	for owner, spenders := range a.allowances {
		m := make(map[domain.Address]domain.Amount, len(spenders))
		for k, v := range spenders {
			m[k] = v
		}
		c.allowances[owner] = m
	}
	return c
}

// Bank is an in-memory multi-asset balance ledger. It is not safe for
// concurrent use; the engine serializes every call.
type Bank struct {
	assets map[AssetID]*asset
}

func NewBank() *Bank {
	return &Bank{assets: make(map[AssetID]*asset)}
}

func (b *Bank) Register(id AssetID, decimals uint8) error {
	if _, ok := b.assets[id]; ok {
		return fmt.Errorf("asset %s already registered", id)
	}
	b.assets[id] = &asset{
		decimals:   decimals,
		supply:     domain.ZeroAmount(),
		balances:   make(map[domain.Address]domain.Amount),
		allowances: make(map[domain.Address]map[domain.Address]domain.Amount),
	}
	return nil
}

func (b *Bank) Assets() []AssetID {
	ids := make([]AssetID, 0, len(b.assets))
	for id := range b.assets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetHook installs h for every movement of id; nil removes it.
func (b *Bank) SetHook(id AssetID, h Hook) error {
	a, err := b.asset(id)
	if err != nil {
		return err
	}
	a.hook = h
	return nil
}

func (b *Bank) Decimals(id AssetID) (uint8, error) {
	a, err := b.asset(id)
	if err != nil {
		return 0, err
	}
	return a.decimals, nil
}

func (b *Bank) TotalSupply(id AssetID) domain.Amount {
	a, err := b.asset(id)
	if err != nil {
		return domain.ZeroAmount()
	}
	return a.supply
}

func (b *Bank) BalanceOf(id AssetID, who domain.Address) domain.Amount {
	a, err := b.asset(id)
	if err != nil {
		return domain.ZeroAmount()
	}
	return a.balance(who)
}

func (b *Bank) Allowance(id AssetID, owner, spender domain.Address) domain.Amount {
	a, err := b.asset(id)
	if err != nil {
		return domain.ZeroAmount()
	}
	return a.allowance(owner, spender)
}

func (b *Bank) Mint(id AssetID, to domain.Address, amount domain.Amount) error {
	a, err := b.asset(id)
	if err != nil {
		return err
	}
	if to.IsZero() {
		return domain.Fail("mint", domain.ErrInvalidAmount, "mint to the zero address")
	}
	a.supply = a.supply.Add(amount)
	a.balances[to] = a.balance(to).Add(amount)
	return nil
}

func (b *Bank) Approve(id AssetID, owner, spender domain.Address, amount domain.Amount) error {
	a, err := b.asset(id)
	if err != nil {
		return err
	}
	if _, ok := a.allowances[owner]; !ok {
		a.allowances[owner] = make(map[domain.Address]domain.Amount)
	}
	a.allowances[owner][spender] = amount
	return nil
}

func (b *Bank) Transfer(id AssetID, from, to domain.Address, amount domain.Amount) error {
	return b.move(id, from, from, to, amount)
}

// TransferFrom moves amount on behalf of from, consuming spender's allowance.
func (b *Bank) TransferFrom(id AssetID, spender, from, to domain.Address, amount domain.Amount) error {
	a, err := b.asset(id)
	if err != nil {
		return err
	}
	allowed := a.allowance(from, spender)
	if allowed.LT(amount) {
		return domain.Fail("transferFrom", domain.ErrInsufficientAllowance,
			"%s allowed %s to move %s of %s, wanted %s", from, spender, allowed, id, amount)
	}
	if err := b.move(id, spender, from, to, amount); err != nil {
		return err
	}
	if _, ok := a.allowances[from]; !ok {
		a.allowances[from] = make(map[domain.Address]domain.Amount)
	}
	a.allowances[from][spender] = allowed.Sub(amount)
	return nil
}

func (b *Bank) BurnFrom(id AssetID, from domain.Address, amount domain.Amount) error {
	a, err := b.asset(id)
	if err != nil {
		return err
	}
	if err := b.move(id, from, from, domain.ZeroAddress, amount); err != nil {
		return err
	}
	a.supply = a.supply.Sub(amount)
	return nil
}

// HasAllowanceElsewhere reports whether owner approved spender on any asset
// other than id.
func (b *Bank) HasAllowanceElsewhere(id AssetID, owner, spender domain.Address) bool {
	for other, a := range b.assets {
		if other == id {
			continue
		}
		if !a.allowance(owner, spender).IsZero() {
			return true
		}
	}
	return false
}

// Checkpoint snapshots every asset. The returned func restores the
// snapshot, undoing all movements made since.
func (b *Bank) Checkpoint() (revert func()) {
	snap := make(map[AssetID]*asset, len(b.assets))
	for id, a := range b.assets {
		snap[id] = a.clone()
	}
	return func() {
		b.assets = snap
	}
}

// move applies a transfer; a zero to burns the amount out of balances only.
func (b *Bank) move(id AssetID, spender, from, to domain.Address, amount domain.Amount) error {
	a, err := b.asset(id)
	if err != nil {
		return err
	}
	bal := a.balance(from)
	if bal.LT(amount) {
		return domain.Fail("transfer", domain.ErrInsufficientBalance,
			"%s holds %s of %s, wanted %s", from, bal, id, amount)
	}
	if a.hook != nil {
		m := Movement{Asset: id, Spender: spender, From: from, To: to, Amount: amount}
		if err := a.hook(m); err != nil {
			return err
		}
		// the hook may have moved funds itself
		bal = a.balance(from)
		if bal.LT(amount) {
			return domain.Fail("transfer", domain.ErrInsufficientBalance,
				"%s holds %s of %s, wanted %s", from, bal, id, amount)
		}
	}
	a.balances[from] = bal.Sub(amount)
	if !to.IsZero() {
		a.balances[to] = a.balance(to).Add(amount)
	}
	return nil
}

func (b *Bank) asset(id AssetID) (*asset, error) {
	a, ok := b.assets[id]
	if !ok {
		return nil, domain.Fail("bank", domain.ErrWrongToken, "unknown asset %s", id)
	}
	return a, nil
}

func (a *asset) balance(who domain.Address) domain.Amount {
	if v, ok := a.balances[who]; ok {
		return v
	}
	return domain.ZeroAmount()
}

func (a *asset) allowance(owner, spender domain.Address) domain.Amount {
	if spenders, ok := a.allowances[owner]; ok {
		if v, ok := spenders[spender]; ok {
			return v
		}
	}
	return domain.ZeroAmount()
}
