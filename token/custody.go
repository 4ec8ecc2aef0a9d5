package token

import (
	"github.com/sebdeveloper6952/gojobs/domain"
)

// Custody is the ValueTransfer view of one asset held by one custodian.
type Custody struct {
	bank  *Bank
	asset AssetID
	self  domain.Address
}

var (
	_ ValueTransfer       = (*Custody)(nil)
	_ domain.Checkpointer = (*Custody)(nil)
)

func NewCustody(bank *Bank, asset AssetID, self domain.Address) (*Custody, error) {
	if _, err := bank.asset(asset); err != nil {
		return nil, err
	}
	if self.IsZero() {
		return nil, domain.Fail("custody", domain.ErrNotAuthorized, "custodian is the zero address")
	}
	return &Custody{
		bank:  bank,
		asset: asset,
		self:  self,
	}, nil
}

func (c *Custody) Address() domain.Address {
	return c.self
}

func (c *Custody) Asset() AssetID {
	return c.asset
}

func (c *Custody) Decimals() uint8 {
	d, _ := c.bank.Decimals(c.asset)
	return d
}

// Pull fails with ErrWrongToken when from approved the custodian on a
// different asset instead of this one.
func (c *Custody) Pull(from domain.Address, amount domain.Amount) error {
	if c.bank.Allowance(c.asset, from, c.self).LT(amount) &&
		c.bank.HasAllowanceElsewhere(c.asset, from, c.self) {
		return domain.Fail("pull", domain.ErrWrongToken,
			"%s approved a different asset than %s", from, c.asset)
	}
	return c.bank.TransferFrom(c.asset, c.self, from, c.self, amount)
}

func (c *Custody) Push(to domain.Address, amount domain.Amount) error {
	if to.IsZero() {
		return domain.Fail("push", domain.ErrInvalidAmount, "push to the zero address")
	}
	return c.bank.Transfer(c.asset, c.self, to, amount)
}

func (c *Custody) Burn(amount domain.Amount) error {
	return c.bank.BurnFrom(c.asset, c.self, amount)
}

func (c *Custody) TotalSupply() domain.Amount {
	return c.bank.TotalSupply(c.asset)
}

func (c *Custody) Balance() domain.Amount {
	return c.bank.BalanceOf(c.asset, c.self)
}

func (c *Custody) Checkpoint() (revert func()) {
	return c.bank.Checkpoint()
}
