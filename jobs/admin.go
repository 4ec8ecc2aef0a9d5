package jobs

import (
	"time"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/merkle"
)

func (r *Registry) MaxJobReward() domain.Amount            { return r.maxJobReward }
func (r *Registry) MaxJobDuration() time.Duration          { return r.maxJobDuration }
func (r *Registry) ValidatorRewardPct() domain.BasisPoints { return r.validatorRewardPct }
func (r *Registry) IsAdditionalAgent(a domain.Address) bool {
	return r.additionalAgents[a]
}

// SetMaxJobReward caps job rewards; zero removes the cap.
func (r *Registry) SetMaxJobReward(caller domain.Address, amount domain.Amount) error {
	if err := r.RequireOwner("setMaxJobReward", caller); err != nil {
		return err
	}
	r.maxJobReward = amount
	r.emit.Emit(domain.MaxJobRewardUpdated{Amount: amount})
	return nil
}

// SetMaxJobDuration caps how far in the future a deadline may be; zero
// removes the cap.
func (r *Registry) SetMaxJobDuration(caller domain.Address, d time.Duration) error {
	const op = "setMaxJobDuration"
	if err := r.RequireOwner(op, caller); err != nil {
		return err
	}
	if d < 0 {
		return domain.Fail(op, domain.ErrInvalidAmount, "duration %s", d)
	}
	r.maxJobDuration = d
	r.emit.Emit(domain.MaxJobDurationUpdated{Seconds: int64(d / time.Second)})
	return nil
}

// SetValidatorRewardPct reserves pct of every release on the ledger, which
// rejects it when it does not fit next to the fee and the burn.
func (r *Registry) SetValidatorRewardPct(caller domain.Address, pct domain.BasisPoints) error {
	const op = "setValidatorRewardPct"
	if err := r.RequireOwner(op, caller); err != nil {
		return err
	}
	if err := r.ledger.ReservePct(r.self, pct); err != nil {
		return domain.Wrap(op, err)
	}
	r.validatorRewardPct = pct
	r.emit.Emit(domain.ValidatorRewardPctUpdated{Pct: pct})
	return nil
}

func (r *Registry) AddAdditionalAgent(caller, agent domain.Address) error {
	const op = "addAdditionalAgent"
	if err := r.RequireOwner(op, caller); err != nil {
		return err
	}
	if agent.IsZero() {
		return domain.Fail(op, domain.ErrInvalidAmount, "zero address")
	}
	r.additionalAgents[agent] = true
	r.emit.Emit(domain.AdditionalAgentUpdated{Agent: agent, Allowed: true})
	return nil
}

func (r *Registry) RemoveAdditionalAgent(caller, agent domain.Address) error {
	const op = "removeAdditionalAgent"
	if err := r.RequireOwner(op, caller); err != nil {
		return err
	}
	if !r.additionalAgents[agent] {
		return domain.Fail(op, domain.ErrNotFound, "%s is not an additional agent", agent)
	}
	delete(r.additionalAgents, agent)
	r.emit.Emit(domain.AdditionalAgentUpdated{Agent: agent, Allowed: false})
	return nil
}

func (r *Registry) SetAgentRootNode(caller domain.Address, node merkle.Hash) error {
	if err := r.RequireOwner("setAgentRootNode", caller); err != nil {
		return err
	}
	r.agentRootNode = node
	r.emitAgentRoot()
	return nil
}

// SetAgentMerkleRoot turns eligibility gating on, or off with the zero hash.
func (r *Registry) SetAgentMerkleRoot(caller domain.Address, root merkle.Hash) error {
	if err := r.RequireOwner("setAgentMerkleRoot", caller); err != nil {
		return err
	}
	r.agentMerkleRoot = root
	r.emitAgentRoot()
	return nil
}

func (r *Registry) SetSelectionSeed(caller domain.Address, seed merkle.Hash) error {
	if err := r.RequireOwner("setSelectionSeed", caller); err != nil {
		return err
	}
	r.selectionSeed = seed
	return nil
}

func (r *Registry) emitAgentRoot() {
	r.emit.Emit(domain.AgentRootUpdated{
		RootNode:   r.agentRootNode.Hex(),
		MerkleRoot: r.agentMerkleRoot.Hex(),
	})
}
