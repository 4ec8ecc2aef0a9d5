package validation

import (
	"time"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/merkle"
)

func (m *Module) JobRegistry() domain.Address { return m.jobRegistry }
func (m *Module) CommitWindow() time.Duration { return m.commitWindow }
func (m *Module) RevealWindow() time.Duration { return m.revealWindow }
func (m *Module) ValidatorsPerJob() int       { return m.validatorsPerJob }
func (m *Module) RevealQuorum() int           { return m.revealQuorum }
func (m *Module) ClubRootNode() merkle.Hash   { return m.clubRootNode }
func (m *Module) MerkleRoot() merkle.Hash     { return m.merkleRoot }

func (m *Module) SetJobRegistry(caller, registry domain.Address) error {
	if err := m.RequireOwner("setJobRegistry", caller); err != nil {
		return err
	}
	m.jobRegistry = registry
	m.emit.Emit(domain.JobRegistryUpdated{Registry: registry})
	return nil
}

// SetPenalty installs the hook for validators that never reveal; nil
// disables penalties.
func (m *Module) SetPenalty(caller domain.Address, hook PenaltyHook) error {
	if err := m.RequireOwner("setPenalty", caller); err != nil {
		return err
	}
	m.penalty = hook
	return nil
}

func (m *Module) SetCommitWindow(caller domain.Address, d time.Duration) error {
	const op = "setCommitWindow"
	if err := m.RequireOwner(op, caller); err != nil {
		return err
	}
	if d <= 0 {
		return domain.Fail(op, domain.ErrInvalidAmount, "commit window %s", d)
	}
	m.commitWindow = d
	m.emitParams()
	return nil
}

func (m *Module) SetRevealWindow(caller domain.Address, d time.Duration) error {
	const op = "setRevealWindow"
	if err := m.RequireOwner(op, caller); err != nil {
		return err
	}
	if d <= 0 {
		return domain.Fail(op, domain.ErrInvalidAmount, "reveal window %s", d)
	}
	m.revealWindow = d
	m.emitParams()
	return nil
}

func (m *Module) SetValidatorsPerJob(caller domain.Address, n int) error {
	const op = "setValidatorsPerJob"
	if err := m.RequireOwner(op, caller); err != nil {
		return err
	}
	if n <= 0 || n < m.revealQuorum {
		return domain.Fail(op, domain.ErrInvalidAmount, "%d validators with a quorum of %d", n, m.revealQuorum)
	}
	m.validatorsPerJob = n
	m.emitParams()
	return nil
}

// SetRevealQuorum sets how many reveals a round needs to succeed. It cannot
// exceed the validators per job.
func (m *Module) SetRevealQuorum(caller domain.Address, n int) error {
	const op = "setRevealQuorum"
	if err := m.RequireOwner(op, caller); err != nil {
		return err
	}
	if n < 0 || n > m.validatorsPerJob {
		return domain.Fail(op, domain.ErrInvalidAmount, "quorum %d with %d validators", n, m.validatorsPerJob)
	}
	m.revealQuorum = n
	m.emitParams()
	return nil
}

func (m *Module) SetClubRootNode(caller domain.Address, node merkle.Hash) error {
	if err := m.RequireOwner("setClubRootNode", caller); err != nil {
		return err
	}
	m.clubRootNode = node
	m.emitRoot()
	return nil
}

// SetValidatorMerkleRoot publishes a new validator set. Validators that
// joined through a proof against the old root have to register again;
// additional validators stay.
func (m *Module) SetValidatorMerkleRoot(caller domain.Address, root merkle.Hash) error {
	if err := m.RequireOwner("setValidatorMerkleRoot", caller); err != nil {
		return err
	}
	m.merkleRoot = root
	for v, additional := range m.validators {
		if !additional {
			delete(m.validators, v)
			m.emit.Emit(domain.ValidatorRemoved{Validator: v})
		}
	}
	m.emitRoot()
	return nil
}

func (m *Module) emitParams() {
	m.emit.Emit(domain.ValidationParamsUpdated{
		CommitWindowSeconds: int64(m.commitWindow / time.Second),
		RevealWindowSeconds: int64(m.revealWindow / time.Second),
		ValidatorsPerJob:    m.validatorsPerJob,
		RevealQuorum:        m.revealQuorum,
	})
}

func (m *Module) emitRoot() {
	m.emit.Emit(domain.ValidatorRootUpdated{
		ClubRootNode: m.clubRootNode.Hex(),
		MerkleRoot:   m.merkleRoot.Hex(),
	})
}
