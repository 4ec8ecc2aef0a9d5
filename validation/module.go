// Package validation runs the commit-reveal rounds in which selected
// validators decide whether a submitted job succeeded.
package validation

import (
	"sort"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/events"
	"github.com/sebdeveloper6952/gojobs/merkle"
)

const (
	DefaultCommitWindow     = time.Hour
	DefaultRevealWindow     = time.Hour
	DefaultValidatorsPerJob = 3
)

// StakeReader is the part of the stake ledger validator eligibility needs.
type StakeReader interface {
	StakeOf(account domain.Address, role domain.Role) domain.Amount
	MinStake(role domain.Role) domain.Amount
}

// PenaltyHook is called once for every selected validator that did not
// reveal before the round was finalized.
type PenaltyHook interface {
	Penalize(jobID uint64, validator domain.Address) error
}

type Round struct {
	JobID          uint64
	Seed           merkle.Hash
	CommitDeadline time.Time
	RevealDeadline time.Time
	Selected       []domain.Address
	Commitments    map[domain.Address]merkle.Hash
	Reveals        map[domain.Address]bool
}

func (r *Round) isSelected(v domain.Address) bool {
	for _, s := range r.Selected {
		if s == v {
			return true
		}
	}
	return false
}

func (r *Round) clone() *Round {
	c := *r
	c.Selected = append([]domain.Address(nil), r.Selected...)
	c.Commitments = make(map[domain.Address]merkle.Hash, len(r.Commitments))
	for k, v := range r.Commitments {
		c.Commitments[k] = v
	}
	c.Reveals = make(map[domain.Address]bool, len(r.Reveals))
	for k, v := range r.Reveals {
		c.Reveals[k] = v
	}
	return &c
}

// Module is not safe for concurrent use.
type Module struct {
	domain.Ownable

	stakes  StakeReader
	clock   clock.Clock
	proof   merkle.SetMembershipProof
	emit    events.Emitter
	penalty PenaltyHook

	self        domain.Address
	jobRegistry domain.Address

	commitWindow     time.Duration
	revealWindow     time.Duration
	validatorsPerJob int
	revealQuorum     int

	clubRootNode merkle.Hash
	merkleRoot   merkle.Hash

	// validators maps every registered validator to whether it was added
	// by the owner rather than through a membership proof.
	validators map[domain.Address]bool
	rounds     map[uint64]*Round
}

var (
	_ domain.Authorizable = (*Module)(nil)
	_ domain.Checkpointer = (*Module)(nil)
)

func New(owner domain.Address, stakes StakeReader, clk clock.Clock, emit events.Emitter) *Module {
	if emit == nil {
		emit = events.Nop
	}
	return &Module{
		Ownable:          domain.NewOwnable(owner),
		stakes:           stakes,
		clock:            clk,
		proof:            merkle.KeccakProof{},
		emit:             emit,
		self:             domain.ModuleAddress("validation"),
		commitWindow:     DefaultCommitWindow,
		revealWindow:     DefaultRevealWindow,
		validatorsPerJob: DefaultValidatorsPerJob,
		revealQuorum:     1,
		validators:       make(map[domain.Address]bool),
		rounds:           make(map[uint64]*Round),
	}
}

// Address is the identity the module uses when it calls the stake ledger.
func (m *Module) Address() domain.Address {
	return m.self
}

func (m *Module) SetMembershipProof(p merkle.SetMembershipProof) {
	m.proof = p
}

// RegisterValidator adds caller to the validator pool. The proof must link
// keccak(subnode(clubRootNode, label) || caller) to the validator root; with
// no root published anyone may register.
func (m *Module) RegisterValidator(caller domain.Address, label string, proof []merkle.Hash) error {
	const op = "registerValidator"
	if caller.IsZero() {
		return domain.Fail(op, domain.ErrNotAuthorized, "zero address")
	}
	if _, ok := m.validators[caller]; ok {
		return domain.Fail(op, domain.ErrInvalidStatus, "%s is already registered", caller)
	}
	if !m.merkleRoot.IsZero() {
		leaf := merkle.IdentityLeaf(m.clubRootNode, label, caller.Bytes())
		if !m.proof.Verify(m.merkleRoot, leaf, proof) {
			return domain.Fail(op, domain.ErrInvalidMembershipProof, "%s under %q", caller, label)
		}
	}
	m.validators[caller] = false
	m.emit.Emit(domain.ValidatorRegistered{Validator: caller})
	return nil
}

func (m *Module) AddAdditionalValidator(caller, validator domain.Address) error {
	const op = "addAdditionalValidator"
	if err := m.RequireOwner(op, caller); err != nil {
		return err
	}
	if validator.IsZero() {
		return domain.Fail(op, domain.ErrInvalidAmount, "zero address")
	}
	m.validators[validator] = true
	m.emit.Emit(domain.ValidatorRegistered{Validator: validator, Additional: true})
	return nil
}

func (m *Module) RemoveAdditionalValidator(caller, validator domain.Address) error {
	const op = "removeAdditionalValidator"
	if err := m.RequireOwner(op, caller); err != nil {
		return err
	}
	if additional, ok := m.validators[validator]; !ok || !additional {
		return domain.Fail(op, domain.ErrNotFound, "%s is not an additional validator", validator)
	}
	delete(m.validators, validator)
	m.emit.Emit(domain.ValidatorRemoved{Validator: validator})
	return nil
}

func (m *Module) IsValidator(v domain.Address) bool {
	_, ok := m.validators[v]
	return ok
}

// Eligible lists registered validators whose validator stake covers the
// minimum, sorted.
func (m *Module) Eligible() []domain.Address {
	minStake := m.stakes.MinStake(domain.RoleValidator)
	out := make([]domain.Address, 0, len(m.validators))
	for v := range m.validators {
		if m.stakes.StakeOf(v, domain.RoleValidator).LT(minStake) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StartRound selects the validators of jobID and opens the commit window.
func (m *Module) StartRound(caller domain.Address, jobID uint64, seed merkle.Hash) ([]domain.Address, error) {
	const op = "startRound"
	if err := m.requireRegistry(op, caller); err != nil {
		return nil, err
	}
	if _, ok := m.rounds[jobID]; ok {
		return nil, domain.Fail(op, domain.ErrInvalidStatus, "round for job %d already open", jobID)
	}
	selected, err := Select(m.Eligible(), seed, m.validatorsPerJob)
	if err != nil {
		return nil, domain.Wrap(op, err)
	}

	now := m.clock.Now()
	r := &Round{
		JobID:          jobID,
		Seed:           seed,
		CommitDeadline: now.Add(m.commitWindow),
		RevealDeadline: now.Add(m.commitWindow + m.revealWindow),
		Selected:       selected,
		Commitments:    make(map[domain.Address]merkle.Hash),
		Reveals:        make(map[domain.Address]bool),
	}
	m.rounds[jobID] = r

	for _, v := range selected {
		m.emit.Emit(domain.ValidatorSelected{JobID: jobID, Validator: v})
	}
	return append([]domain.Address(nil), selected...), nil
}

// Commit stores the vote commitment of caller. It may be replaced until the
// commit deadline.
func (m *Module) Commit(caller domain.Address, jobID uint64, commitment merkle.Hash) error {
	const op = "commit"
	r, err := m.selectedRound(op, caller, jobID)
	if err != nil {
		return err
	}
	if m.clock.Now().After(r.CommitDeadline) {
		return domain.Fail(op, domain.ErrCommitWindowClosed, "job %d", jobID)
	}
	r.Commitments[caller] = commitment
	m.emit.Emit(domain.VoteCommitted{JobID: jobID, Validator: caller})
	return nil
}

// Reveal is accepted after the commit deadline and up to the reveal
// deadline, once per validator.
func (m *Module) Reveal(caller domain.Address, jobID uint64, approve bool, salt [32]byte) error {
	const op = "reveal"
	r, err := m.selectedRound(op, caller, jobID)
	if err != nil {
		return err
	}
	now := m.clock.Now()
	if !now.After(r.CommitDeadline) || now.After(r.RevealDeadline) {
		return domain.Fail(op, domain.ErrRevealWindowClosed, "job %d", jobID)
	}
	if _, ok := r.Reveals[caller]; ok {
		return domain.Fail(op, domain.ErrInvalidStatus, "%s already revealed", caller)
	}
	committed, ok := r.Commitments[caller]
	if !ok || committed != CommitHash(approve, salt) {
		return domain.Fail(op, domain.ErrHashMismatch, "job %d validator %s", jobID, caller)
	}
	r.Reveals[caller] = approve
	m.emit.Emit(domain.VoteRevealed{JobID: jobID, Validator: caller, Approve: approve})
	return nil
}

// Finalize tallies the revealed votes once the reveal deadline passed and
// closes the round. The job succeeds only with a strict majority of
// approvals among at least revealQuorum reveals.
func (m *Module) Finalize(caller domain.Address, jobID uint64) (domain.Outcome, error) {
	const op = "finalize"
	if err := m.requireRegistry(op, caller); err != nil {
		return domain.Outcome{}, err
	}
	r, ok := m.rounds[jobID]
	if !ok {
		return domain.Outcome{}, domain.Fail(op, domain.ErrInvalidStatus, "no round for job %d", jobID)
	}
	if !m.clock.Now().After(r.RevealDeadline) {
		return domain.Outcome{}, domain.Fail(op, domain.ErrDeadlineNotPassed, "reveal deadline %s", r.RevealDeadline)
	}

	out := domain.Outcome{JobID: jobID}
	var approvers, rejecters []domain.Address
	for _, v := range r.Selected {
		vote, revealed := r.Reveals[v]
		switch {
		case !revealed:
			out.Absent = append(out.Absent, v)
		case vote:
			approvers = append(approvers, v)
		default:
			rejecters = append(rejecters, v)
		}
	}
	out.Approvals, out.Rejections = len(approvers), len(rejecters)
	quorum := out.Approvals+out.Rejections >= m.revealQuorum
	switch {
	case quorum && out.Approvals > out.Rejections:
		out.Success = true
		out.Majority = approvers
	case quorum && out.Rejections > out.Approvals:
		out.Majority = rejecters
	}
	sort.Slice(out.Majority, func(i, j int) bool { return out.Majority[i] < out.Majority[j] })

	if m.penalty != nil {
		for _, v := range out.Absent {
			if err := m.penalty.Penalize(jobID, v); err != nil {
				return domain.Outcome{}, domain.Wrap(op, err)
			}
		}
	}
	delete(m.rounds, jobID)

	m.emit.Emit(domain.ValidationFinalized{
		JobID:      jobID,
		Approvals:  out.Approvals,
		Rejections: out.Rejections,
		Success:    out.Success,
	})
	return out, nil
}

// Round returns a copy of the open round of jobID.
func (m *Module) Round(jobID uint64) (*Round, bool) {
	r, ok := m.rounds[jobID]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// Checkpoint snapshots the validator pool and every open round.
func (m *Module) Checkpoint() (revert func()) {
	validators := make(map[domain.Address]bool, len(m.validators))
	for k, v := range m.validators {
		validators[k] = v
	}
	rounds := make(map[uint64]*Round, len(m.rounds))
	for id, r := range m.rounds {
		rounds[id] = r.clone()
	}
	return func() {
		m.validators = validators
		m.rounds = rounds
	}
}

func (m *Module) selectedRound(op string, caller domain.Address, jobID uint64) (*Round, error) {
	r, ok := m.rounds[jobID]
	if !ok {
		return nil, domain.Fail(op, domain.ErrInvalidStatus, "no round for job %d", jobID)
	}
	if !r.isSelected(caller) {
		return nil, domain.Fail(op, domain.ErrNotAuthorized, "%s was not selected for job %d", caller, jobID)
	}
	return r, nil
}

func (m *Module) requireRegistry(op string, caller domain.Address) error {
	if m.jobRegistry.IsZero() || caller != m.jobRegistry {
		return domain.Fail(op, domain.ErrNotAuthorized, "not job registry")
	}
	return nil
}
