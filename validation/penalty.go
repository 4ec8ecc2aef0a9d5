package validation

import (
	"github.com/sebdeveloper6952/gojobs/domain"
)

// Slasher is the part of the stake ledger StakePenalty needs.
type Slasher interface {
	StakeOf(account domain.Address, role domain.Role) domain.Amount
	Slash(caller domain.Address, role domain.Role, account, beneficiary domain.Address, amount domain.Amount) error
}

// StakePenalty slashes Amount of validator stake, or whatever is left of
// it, to the treasury. Caller must be the ledger's slasher and Amount
// must be built with the domain constructors.
type StakePenalty struct {
	Ledger Slasher
	Caller domain.Address
	Amount domain.Amount
}

func (p StakePenalty) Penalize(jobID uint64, validator domain.Address) error {
	if p.Amount.IsZero() {
		return nil
	}
	amount := domain.MinAmount(p.Amount, p.Ledger.StakeOf(validator, domain.RoleValidator))
	if amount.IsZero() {
		return nil
	}
	return p.Ledger.Slash(p.Caller, domain.RoleValidator, validator, domain.ZeroAddress, amount)
}
