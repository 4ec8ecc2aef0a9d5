// Package jobs drives the job lifecycle: escrowed creation, gated
// applications, submission to validation, and the final payout, slash or
// refund.
package jobs

import (
	"encoding/binary"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/events"
	"github.com/sebdeveloper6952/gojobs/guard"
	"github.com/sebdeveloper6952/gojobs/merkle"
	"github.com/sebdeveloper6952/gojobs/stake"
)

// StakeLedger is the part of the stake ledger the registry drives. Every
// mutating call passes the registry address as caller.
type StakeLedger interface {
	StakeOf(account domain.Address, role domain.Role) domain.Amount
	MinStake(role domain.Role) domain.Amount
	FeePct() domain.BasisPoints
	BurnPct() domain.BasisPoints
	AGIWeight(account domain.Address, h stake.Holdings) domain.BasisPoints

	Lock(caller domain.Address, jobID uint64, payer domain.Address, amount domain.Amount) error
	Release(caller domain.Address, jobID uint64, recipient domain.Address, splits []domain.FeeSplit, burnPct domain.BasisPoints) error
	Refund(caller domain.Address, jobID uint64, to domain.Address) error
	ReservePct(caller domain.Address, pct domain.BasisPoints) error
	Slash(caller domain.Address, role domain.Role, account, beneficiary domain.Address, amount domain.Amount) error
}

type Validation interface {
	StartRound(caller domain.Address, jobID uint64, seed merkle.Hash) ([]domain.Address, error)
	Finalize(caller domain.Address, jobID uint64) (domain.Outcome, error)
}

// CertificateMinter issues a completion certificate to the worker of a
// successful job.
type CertificateMinter interface {
	Mint(caller, to domain.Address) (uint64, error)
}

// Registry is not safe for concurrent use.
type Registry struct {
	domain.Ownable

	ledger     StakeLedger
	validation Validation
	minter     CertificateMinter
	holdings   stake.Holdings
	proof      merkle.SetMembershipProof
	clock      clock.Clock
	guard      *guard.Guard
	emit       events.Emitter
	self       domain.Address

	jobs   map[uint64]*domain.Job
	lastID uint64

	// zero means unlimited
	maxJobReward   domain.Amount
	maxJobDuration time.Duration

	validatorRewardPct domain.BasisPoints
	selectionSeed      merkle.Hash

	agentRootNode    merkle.Hash
	agentMerkleRoot  merkle.Hash
	additionalAgents map[domain.Address]bool
}

var _ domain.Authorizable = (*Registry)(nil)

func New(
	owner domain.Address,
	ledger StakeLedger,
	validation Validation,
	clk clock.Clock,
	emit events.Emitter,
) *Registry {
	if emit == nil {
		emit = events.Nop
	}
	return &Registry{
		Ownable:          domain.NewOwnable(owner),
		ledger:           ledger,
		validation:       validation,
		proof:            merkle.KeccakProof{},
		clock:            clk,
		guard:            guard.New(),
		emit:             emit,
		self:             domain.ModuleAddress("jobs"),
		jobs:             make(map[uint64]*domain.Job),
		maxJobReward:     domain.ZeroAmount(),
		additionalAgents: make(map[domain.Address]bool),
	}
}

// Address is the identity the registry uses towards the ledger and the
// validation module.
func (r *Registry) Address() domain.Address {
	return r.self
}

func (r *Registry) SetCertificateMinter(m CertificateMinter) {
	r.minter = m
}

func (r *Registry) SetHoldings(h stake.Holdings) {
	r.holdings = h
}

func (r *Registry) SetMembershipProof(p merkle.SetMembershipProof) {
	r.proof = p
}

// CreateJob escrows reward from employer and returns the new job id.
func (r *Registry) CreateJob(employer domain.Address, reward domain.Amount, deadline time.Time) (uint64, error) {
	const op = "createJob"
	if employer.IsZero() {
		return 0, domain.Fail(op, domain.ErrNotAuthorized, "zero address")
	}
	if reward.IsZero() {
		return 0, domain.Fail(op, domain.ErrInvalidAmount, "reward must be positive")
	}
	if !r.maxJobReward.IsZero() && reward.GT(r.maxJobReward) {
		return 0, domain.Fail(op, domain.ErrLimitExceeded, "reward %s above %s", reward, r.maxJobReward)
	}
	now := r.clock.Now()
	if !deadline.After(now) {
		return 0, domain.Fail(op, domain.ErrLimitExceeded, "deadline %s is not in the future", deadline)
	}
	if r.maxJobDuration > 0 && deadline.Sub(now) > r.maxJobDuration {
		return 0, domain.Fail(op, domain.ErrLimitExceeded, "duration %s above %s", deadline.Sub(now), r.maxJobDuration)
	}
	if need := r.ledger.MinStake(domain.RoleEmployer); r.ledger.StakeOf(employer, domain.RoleEmployer).LT(need) {
		return 0, domain.Fail(op, domain.ErrInsufficientStake, "employer %s needs %s staked", employer, need)
	}

	release, err := r.guard.Enter(op)
	if err != nil {
		return 0, err
	}
	defer release()

	id := r.lastID + 1
	if err := r.ledger.Lock(r.self, id, employer, reward); err != nil {
		return 0, domain.Wrap(op, err)
	}
	r.lastID = id
	r.jobs[id] = &domain.Job{
		ID:       id,
		Client:   employer,
		Reward:   reward,
		Deadline: deadline,
		Status:   domain.StatusCreated,
	}

	r.emit.Emit(domain.JobCreated{JobID: id, Employer: employer, Reward: reward, Deadline: deadline.Unix()})
	return id, nil
}

// ApplyForJob assigns agent to a created job. While an agent root is
// published, agents that are not additional agents need a proof for
// keccak(subnode(agentRootNode, label) || agent).
func (r *Registry) ApplyForJob(agent domain.Address, jobID uint64, label string, proof []merkle.Hash) error {
	const op = "applyForJob"
	job, err := r.requireStatus(op, jobID, domain.StatusCreated)
	if err != nil {
		return err
	}
	if r.clock.Now().After(job.Deadline) {
		return domain.Fail(op, domain.ErrInvalidStatus, "job %d expired", jobID)
	}
	if agent.IsZero() || agent == job.Client {
		return domain.Fail(op, domain.ErrNotAuthorized, "%s cannot work on job %d", agent, jobID)
	}
	if need := r.ledger.MinStake(domain.RoleAgent); r.ledger.StakeOf(agent, domain.RoleAgent).LT(need) {
		return domain.Fail(op, domain.ErrInsufficientStake, "agent %s needs %s staked", agent, need)
	}
	if !r.agentMerkleRoot.IsZero() && !r.additionalAgents[agent] {
		leaf := merkle.IdentityLeaf(r.agentRootNode, label, agent.Bytes())
		if !r.proof.Verify(r.agentMerkleRoot, leaf, proof) {
			return domain.Fail(op, domain.ErrInvalidMembershipProof, "%s under %q", agent, label)
		}
	}

	job.Worker = agent
	job.Status = domain.StatusApplied
	r.emit.Emit(domain.JobApplied{JobID: jobID, Agent: agent})
	return nil
}

// SubmitJob hands the result of the worker over to validation. The
// selection seed is keccak(selectionSeed || jobID || submittedAt), both
// numbers as big-endian uint64.
func (r *Registry) SubmitJob(agent domain.Address, jobID uint64, resultURI string) error {
	const op = "submitJob"
	job, err := r.requireStatus(op, jobID, domain.StatusApplied)
	if err != nil {
		return err
	}
	if job.Submitted() {
		return domain.Fail(op, domain.ErrInvalidStatus, "job %d already submitted", jobID)
	}
	if agent != job.Worker {
		return domain.Fail(op, domain.ErrNotAuthorized, "%s is not the worker of job %d", agent, jobID)
	}
	now := r.clock.Now()
	if now.After(job.Deadline) {
		return domain.Fail(op, domain.ErrInvalidStatus, "job %d expired", jobID)
	}

	release, err := r.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	if _, err := r.validation.StartRound(r.self, jobID, r.roundSeed(jobID, now)); err != nil {
		return domain.Wrap(op, err)
	}
	job.ResultURI = resultURI
	job.SubmittedAt = now

	r.emit.Emit(domain.JobSubmitted{JobID: jobID, Agent: agent, ResultURI: resultURI})
	return nil
}

// ClaimTimeout refunds the employer of an applied job whose deadline passed
// without a submission. Only the employer and the owner may claim.
func (r *Registry) ClaimTimeout(caller domain.Address, jobID uint64) error {
	const op = "claimTimeout"
	job, err := r.requireStatus(op, jobID, domain.StatusApplied)
	if err != nil {
		return err
	}
	if job.Submitted() {
		return domain.Fail(op, domain.ErrInvalidStatus, "job %d is being validated", jobID)
	}
	if !r.clock.Now().After(job.Deadline) {
		return domain.Fail(op, domain.ErrDeadlineNotPassed, "job %d deadline %s", jobID, job.Deadline)
	}
	if caller != job.Client && !r.IsOwner(caller) {
		return domain.Fail(op, domain.ErrNotAuthorized, "%s cannot claim job %d", caller, jobID)
	}

	release, err := r.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	if err := r.ledger.Refund(r.self, jobID, job.Client); err != nil {
		return domain.Wrap(op, err)
	}
	delete(r.jobs, jobID)

	r.emit.Emit(domain.JobTimedOut{JobID: jobID, Employer: job.Client, Agent: job.Worker})
	return nil
}

// CancelJob refunds a job nobody applied to.
func (r *Registry) CancelJob(caller domain.Address, jobID uint64) error {
	const op = "cancelJob"
	job, err := r.requireStatus(op, jobID, domain.StatusCreated)
	if err != nil {
		return err
	}
	if caller != job.Client {
		return domain.Fail(op, domain.ErrNotAuthorized, "%s is not the employer of job %d", caller, jobID)
	}

	release, err := r.guard.Enter(op)
	if err != nil {
		return err
	}
	defer release()

	if err := r.ledger.Refund(r.self, jobID, job.Client); err != nil {
		return domain.Wrap(op, err)
	}
	delete(r.jobs, jobID)

	r.emit.Emit(domain.JobCancelled{JobID: jobID, Employer: job.Client})
	return nil
}

// FinalizeJob closes the validation round of a submitted job and settles
// it. Anyone may call it once the reveal window is over. Ledger and
// validation state are restored if any step fails.
func (r *Registry) FinalizeJob(jobID uint64) (domain.Outcome, error) {
	const op = "finalizeJob"
	job, err := r.requireStatus(op, jobID, domain.StatusApplied)
	if err != nil {
		return domain.Outcome{}, err
	}
	if !job.Submitted() {
		return domain.Outcome{}, domain.Fail(op, domain.ErrInvalidStatus, "job %d was not submitted", jobID)
	}

	release, err := r.guard.Enter(op)
	if err != nil {
		return domain.Outcome{}, err
	}
	defer release()

	revertLedger := domain.Checkpoint(r.ledger)
	revertValidation := domain.Checkpoint(r.validation)
	outcome, err := r.validation.Finalize(r.self, jobID)
	if err == nil {
		err = r.completeJob(job, outcome)
	}
	if err != nil {
		revertValidation()
		revertLedger()
		return domain.Outcome{}, domain.Wrap(op, err)
	}
	delete(r.jobs, jobID)

	r.emit.Emit(domain.JobCompleted{JobID: jobID, Success: outcome.Success})
	if outcome.Success {
		r.mintCertificate(job)
	}
	return outcome, nil
}

// completeJob pays the worker on success. On failure the worker loses
// min(agent stake, reward) to the employer and the escrow goes back to the
// employer in full.
func (r *Registry) completeJob(job *domain.Job, outcome domain.Outcome) error {
	if !outcome.Success {
		penalty := domain.MinAmount(r.ledger.StakeOf(job.Worker, domain.RoleAgent), job.Reward)
		if !penalty.IsZero() {
			if err := r.ledger.Slash(r.self, domain.RoleAgent, job.Worker, job.Client, penalty); err != nil {
				return err
			}
		}
		return r.ledger.Refund(r.self, job.ID, job.Client)
	}

	splits := []domain.FeeSplit{{To: domain.ZeroAddress, Pct: r.ledger.FeePct()}}
	splits = append(splits, r.validatorSplits(outcome.Majority)...)
	return r.ledger.Release(r.self, job.ID, job.Worker, splits, r.ledger.BurnPct())
}

// validatorSplits shares validatorRewardPct among voters in proportion to
// their AGI weight. Rounding dust stays with the worker.
func (r *Registry) validatorSplits(voters []domain.Address) []domain.FeeSplit {
	if r.validatorRewardPct == 0 || len(voters) == 0 {
		return nil
	}
	weights := make([]uint64, len(voters))
	var total uint64
	for i, v := range voters {
		weights[i] = uint64(r.ledger.AGIWeight(v, r.holdings))
		total += weights[i]
	}
	splits := make([]domain.FeeSplit, 0, len(voters))
	for i, v := range voters {
		pct := uint64(r.validatorRewardPct) * weights[i] / total
		if pct > 0 {
			splits = append(splits, domain.FeeSplit{To: v, Pct: domain.BasisPoints(pct)})
		}
	}
	return splits
}

func (r *Registry) mintCertificate(job *domain.Job) {
	if r.minter == nil {
		return
	}
	if _, err := r.minter.Mint(r.self, job.Worker); err != nil {
		r.emit.Emit(domain.CertificateMintFailed{JobID: job.ID, Worker: job.Worker, Reason: err.Error()})
	}
}

// Job returns a copy of the job; jobs that were resolved are reported with
// status None.
func (r *Registry) Job(jobID uint64) domain.Job {
	if job, ok := r.jobs[jobID]; ok {
		return *job
	}
	return domain.Job{ID: jobID, Reward: domain.ZeroAmount(), Status: domain.StatusNone}
}

// LastJobID is the id of the most recently created job, 0 before the first.
func (r *Registry) LastJobID() uint64 {
	return r.lastID
}

func (r *Registry) requireStatus(op string, jobID uint64, want domain.JobStatus) (*domain.Job, error) {
	job, ok := r.jobs[jobID]
	if !ok || job.Status != want {
		got := domain.StatusNone
		if ok {
			got = job.Status
		}
		return nil, domain.Fail(op, domain.ErrInvalidStatus, "job %d is %s, want %s", jobID, got, want)
	}
	return job, nil
}

func (r *Registry) roundSeed(jobID uint64, at time.Time) merkle.Hash {
	var id, ts [8]byte
	binary.BigEndian.PutUint64(id[:], jobID)
	binary.BigEndian.PutUint64(ts[:], uint64(at.Unix()))
	return merkle.Keccak(r.selectionSeed[:], id[:], ts[:])
}
