package stake

import (
	"github.com/sebdeveloper6952/gojobs/domain"
)

func (l *Ledger) Treasury() domain.Address        { return l.treasury }
func (l *Ledger) JobRegistry() domain.Address     { return l.jobRegistry }
func (l *Ledger) Slasher() domain.Address         { return l.slasher }
func (l *Ledger) FeePct() domain.BasisPoints      { return l.feePct }
func (l *Ledger) BurnPct() domain.BasisPoints     { return l.burnPct }
func (l *Ledger) ReservedPct() domain.BasisPoints { return l.reservedPct }
func (l *Ledger) MinStake(role domain.Role) domain.Amount {
	if v, ok := l.minStake[role]; ok {
		return v
	}
	return domain.ZeroAmount()
}

// SlashPcts returns the employer and treasury shares; they always sum to 10000.
func (l *Ledger) SlashPcts() (employer, treasury domain.BasisPoints) {
	return l.employerSlashPct, l.treasurySlashPct
}

func (l *Ledger) SetTreasury(caller, treasury domain.Address) error {
	if err := l.RequireOwner("setTreasury", caller); err != nil {
		return err
	}
	if treasury.IsZero() {
		return domain.Fail("setTreasury", domain.ErrNotAuthorized, "treasury is the zero address")
	}
	l.treasury = treasury
	l.emit.Emit(domain.TreasuryUpdated{Treasury: treasury})
	return nil
}

func (l *Ledger) SetJobRegistry(caller, registry domain.Address) error {
	if err := l.RequireOwner("setJobRegistry", caller); err != nil {
		return err
	}
	l.jobRegistry = registry
	l.emit.Emit(domain.JobRegistryUpdated{Registry: registry})
	return nil
}

func (l *Ledger) SetSlasher(caller, slasher domain.Address) error {
	if err := l.RequireOwner("setSlasher", caller); err != nil {
		return err
	}
	l.slasher = slasher
	l.emit.Emit(domain.SlasherUpdated{Slasher: slasher})
	return nil
}

func (l *Ledger) SetMinStake(caller domain.Address, role domain.Role, amount domain.Amount) error {
	const op = "setMinStake"
	if err := l.RequireOwner(op, caller); err != nil {
		return err
	}
	var ev domain.Event
	switch role {
	case domain.RoleAgent:
		ev = domain.MinStakeAgentUpdated{Amount: amount}
	case domain.RoleEmployer:
		ev = domain.MinStakeEmployerUpdated{Amount: amount}
	case domain.RoleValidator:
		ev = domain.MinStakeValidatorUpdated{Amount: amount}
	default:
		return domain.Fail(op, domain.ErrInvalidRole, "%s", role)
	}
	l.minStake[role] = amount
	l.emit.Emit(ev)
	return nil
}

// SetFeePct rejects values that, together with the burn and the share
// reserved by the job registry, exceed 100%.
func (l *Ledger) SetFeePct(caller domain.Address, pct domain.BasisPoints) error {
	const op = "setFeePct"
	if err := l.RequireOwner(op, caller); err != nil {
		return err
	}
	if err := l.checkShares(op, pct, l.burnPct, l.reservedPct); err != nil {
		return err
	}
	l.feePct = pct
	l.emit.Emit(domain.FeePctUpdated{Pct: pct})
	return nil
}

func (l *Ledger) SetBurnPct(caller domain.Address, pct domain.BasisPoints) error {
	const op = "setBurnPct"
	if err := l.RequireOwner(op, caller); err != nil {
		return err
	}
	if err := l.checkShares(op, l.feePct, pct, l.reservedPct); err != nil {
		return err
	}
	l.burnPct = pct
	l.emit.Emit(domain.BurnPctUpdated{Pct: pct})
	return nil
}

// ReservePct records the share of every release the job registry pays out
// on top of the fee and the burn.
func (l *Ledger) ReservePct(caller domain.Address, pct domain.BasisPoints) error {
	const op = "reservePct"
	if err := l.requireRegistry(op, caller); err != nil {
		return err
	}
	if err := l.checkShares(op, l.feePct, l.burnPct, pct); err != nil {
		return err
	}
	l.reservedPct = pct
	return nil
}

func (l *Ledger) checkShares(op string, fee, burn, reserved domain.BasisPoints) error {
	total := uint64(fee) + uint64(burn) + uint64(reserved)
	if !fee.Valid() || !burn.Valid() || !reserved.Valid() || total > domain.MaxBasisPoints {
		return domain.Fail(op, domain.ErrInvalidPercentage,
			"fee %d, burn %d and reserved %d add up to %d", fee, burn, reserved, total)
	}
	return nil
}

// SetEmployerSlashPct also moves the treasury share to 10000-pct, and emits
// both in one event.
func (l *Ledger) SetEmployerSlashPct(caller domain.Address, pct domain.BasisPoints) error {
	const op = "setSlashPcts"
	if err := l.RequireOwner(op, caller); err != nil {
		return err
	}
	if !pct.Valid() {
		return domain.Fail(op, domain.ErrInvalidPercentage, "employer share %d", pct)
	}
	l.employerSlashPct = pct
	l.treasurySlashPct = domain.MaxBasisPoints - pct
	l.emit.Emit(domain.SlashPctsUpdated{EmployerPct: l.employerSlashPct, TreasuryPct: l.treasurySlashPct})
	return nil
}

func (l *Ledger) AddAGIType(caller, nft domain.Address, pct domain.BasisPoints) error {
	const op = "addAGIType"
	if err := l.RequireOwner(op, caller); err != nil {
		return err
	}
	if nft.IsZero() {
		return domain.Fail(op, domain.ErrInvalidAmount, "nft is the zero address")
	}
	if pct == 0 || !pct.Valid() {
		return domain.Fail(op, domain.ErrInvalidPercentage, "pct %d", pct)
	}
	l.agiTypes[nft] = pct
	l.emit.Emit(domain.AGITypeAdded{NFT: nft, Pct: pct})
	return nil
}

func (l *Ledger) RemoveAGIType(caller, nft domain.Address) error {
	const op = "removeAGIType"
	if err := l.RequireOwner(op, caller); err != nil {
		return err
	}
	if _, ok := l.agiTypes[nft]; !ok {
		return domain.Fail(op, domain.ErrNotFound, "%s is not an AGI type", nft)
	}
	delete(l.agiTypes, nft)
	l.emit.Emit(domain.AGITypeRemoved{NFT: nft})
	return nil
}

// Holdings answers whether account holds at least one token of collection.
type Holdings interface {
	Holds(collection, account domain.Address) bool
}

// AGIWeight is 10000 plus the largest pct among the AGI types account holds.
func (l *Ledger) AGIWeight(account domain.Address, h Holdings) domain.BasisPoints {
	var best domain.BasisPoints
	if h != nil {
		for nft, pct := range l.agiTypes {
			if pct > best && h.Holds(nft, account) {
				best = pct
			}
		}
	}
	return domain.MaxBasisPoints + best
}
