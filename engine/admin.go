package engine

import (
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/merkle"
	"github.com/sebdeveloper6952/gojobs/nostr"
)

// Owner actions. The cores check the caller; the engine only decodes
// params.

func (e *Engine) setTreasury(a *nostr.Action) (any, error) {
	treasury, err := a.Address("treasury")
	if err != nil {
		return nil, err
	}
	return nil, e.ledger.SetTreasury(a.Caller, treasury)
}

func (e *Engine) setMinStake(a *nostr.Action) (any, error) {
	role, amount, err := roleAndAmount(a)
	if err != nil {
		return nil, err
	}
	return nil, e.ledger.SetMinStake(a.Caller, role, amount)
}

func (e *Engine) setFeePct(a *nostr.Action) (any, error) {
	return withPct(a, e.ledger.SetFeePct)
}

func (e *Engine) setBurnPct(a *nostr.Action) (any, error) {
	return withPct(a, e.ledger.SetBurnPct)
}

func (e *Engine) setEmployerSlashPct(a *nostr.Action) (any, error) {
	return withPct(a, e.ledger.SetEmployerSlashPct)
}

func (e *Engine) setValidatorRewardPct(a *nostr.Action) (any, error) {
	return withPct(a, e.registry.SetValidatorRewardPct)
}

func (e *Engine) addAGIType(a *nostr.Action) (any, error) {
	nft, err := e.collection(a)
	if err != nil {
		return nil, err
	}
	pct, err := a.BasisPoints("pct")
	if err != nil {
		return nil, err
	}
	return nil, e.ledger.AddAGIType(a.Caller, nft, pct)
}

func (e *Engine) removeAGIType(a *nostr.Action) (any, error) {
	nft, err := e.collection(a)
	if err != nil {
		return nil, err
	}
	return nil, e.ledger.RemoveAGIType(a.Caller, nft)
}

func (e *Engine) setMaxJobReward(a *nostr.Action) (any, error) {
	amount, err := a.Amount("amount")
	if err != nil {
		return nil, err
	}
	return nil, e.registry.SetMaxJobReward(a.Caller, amount)
}

func (e *Engine) setMaxJobDuration(a *nostr.Action) (any, error) {
	d, err := a.Duration("duration")
	if err != nil {
		return nil, err
	}
	return nil, e.registry.SetMaxJobDuration(a.Caller, d)
}

func (e *Engine) addAdditionalAgent(a *nostr.Action) (any, error) {
	return withAddress(a, "agent", e.registry.AddAdditionalAgent)
}

func (e *Engine) removeAdditionalAgent(a *nostr.Action) (any, error) {
	return withAddress(a, "agent", e.registry.RemoveAdditionalAgent)
}

func (e *Engine) addAdditionalValidator(a *nostr.Action) (any, error) {
	return withAddress(a, "validator", e.validation.AddAdditionalValidator)
}

func (e *Engine) removeAdditionalValidator(a *nostr.Action) (any, error) {
	return withAddress(a, "validator", e.validation.RemoveAdditionalValidator)
}

func (e *Engine) setAgentRootNode(a *nostr.Action) (any, error) {
	return withHash(a, "node", e.registry.SetAgentRootNode)
}

func (e *Engine) setAgentMerkleRoot(a *nostr.Action) (any, error) {
	return withHash(a, "root", e.registry.SetAgentMerkleRoot)
}

func (e *Engine) setSelectionSeed(a *nostr.Action) (any, error) {
	return withHash(a, "seed", e.registry.SetSelectionSeed)
}

func (e *Engine) setClubRootNode(a *nostr.Action) (any, error) {
	return withHash(a, "node", e.validation.SetClubRootNode)
}

func (e *Engine) setValidatorMerkleRoot(a *nostr.Action) (any, error) {
	return withHash(a, "root", e.validation.SetValidatorMerkleRoot)
}

func (e *Engine) setCommitWindow(a *nostr.Action) (any, error) {
	d, err := a.Duration("duration")
	if err != nil {
		return nil, err
	}
	return nil, e.validation.SetCommitWindow(a.Caller, d)
}

func (e *Engine) setRevealWindow(a *nostr.Action) (any, error) {
	d, err := a.Duration("duration")
	if err != nil {
		return nil, err
	}
	return nil, e.validation.SetRevealWindow(a.Caller, d)
}

func (e *Engine) setValidatorsPerJob(a *nostr.Action) (any, error) {
	n, err := a.Uint("n")
	if err != nil {
		return nil, err
	}
	return nil, e.validation.SetValidatorsPerJob(a.Caller, int(n))
}

func (e *Engine) setRevealQuorum(a *nostr.Action) (any, error) {
	n, err := a.Uint("n")
	if err != nil {
		return nil, err
	}
	return nil, e.validation.SetRevealQuorum(a.Caller, int(n))
}

func (e *Engine) collection(a *nostr.Action) (domain.Address, error) {
	if a.Params["nft"] == CertificateCollection {
		return e.market.Address(), nil
	}
	return a.Address("nft")
}

func withPct(a *nostr.Action, set func(domain.Address, domain.BasisPoints) error) (any, error) {
	pct, err := a.BasisPoints("pct")
	if err != nil {
		return nil, err
	}
	return nil, set(a.Caller, pct)
}

func withAddress(a *nostr.Action, key string, set func(caller, addr domain.Address) error) (any, error) {
	addr, err := a.Address(key)
	if err != nil {
		return nil, err
	}
	return nil, set(a.Caller, addr)
}

func withHash(a *nostr.Action, key string, set func(domain.Address, merkle.Hash) error) (any, error) {
	h, err := a.Hash(key)
	if err != nil {
		return nil, err
	}
	return nil, set(a.Caller, h)
}
