package engine

import (
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/nostr"
)

// handler runs on the loop goroutine. Whatever it returns is the content
// of the action result.
type handler func(a *nostr.Action) (any, error)

const OpTopUp = "topUp"

type jobResult struct {
	JobID uint64 `json:"job_id"`
}

type outcomeResult struct {
	JobID      uint64           `json:"job_id"`
	Success    bool             `json:"success"`
	Approvals  int              `json:"approvals"`
	Rejections int              `json:"rejections"`
	Majority   []domain.Address `json:"majority"`
	Absent     []domain.Address `json:"absent"`
}

type amountResult struct {
	Amount domain.Amount `json:"amount"`
}

type jobView struct {
	ID          uint64         `json:"id"`
	Client      domain.Address `json:"client"`
	Worker      domain.Address `json:"worker"`
	Reward      domain.Amount  `json:"reward"`
	Deadline    int64          `json:"deadline"`
	Status      string         `json:"status"`
	ResultURI   string         `json:"result_uri,omitempty"`
	SubmittedAt int64          `json:"submitted_at,omitempty"`
}

func (e *Engine) routes() map[string]handler {
	return map[string]handler{
		// tokens
		"approve":  e.approve,
		"transfer": e.transfer,
		"balance":  e.balance,

		// stake
		"deposit":  e.deposit,
		"withdraw": e.withdraw,
		"stake":    e.stakeOf,

		// jobs
		"createJob":    e.createJob,
		"applyForJob":  e.applyForJob,
		"submitJob":    e.submitJob,
		"claimTimeout": e.claimTimeout,
		"cancelJob":    e.cancelJob,
		"finalizeJob":  e.finalizeJob,
		"job":          e.job,

		// validation
		"registerValidator": e.registerValidator,
		"commitValidation":  e.commitValidation,
		"revealValidation":  e.revealValidation,

		// certificates
		"listCertificate":     e.listCertificate,
		"delistCertificate":   e.delistCertificate,
		"purchaseCertificate": e.purchaseCertificate,

		// owner only
		"setTreasury":               e.setTreasury,
		"setMinStake":               e.setMinStake,
		"setFeePct":                 e.setFeePct,
		"setBurnPct":                e.setBurnPct,
		"setEmployerSlashPct":       e.setEmployerSlashPct,
		"addAGIType":                e.addAGIType,
		"removeAGIType":             e.removeAGIType,
		"setMaxJobReward":           e.setMaxJobReward,
		"setMaxJobDuration":         e.setMaxJobDuration,
		"setValidatorRewardPct":     e.setValidatorRewardPct,
		"addAdditionalAgent":        e.addAdditionalAgent,
		"removeAdditionalAgent":     e.removeAdditionalAgent,
		"setAgentRootNode":          e.setAgentRootNode,
		"setAgentMerkleRoot":        e.setAgentMerkleRoot,
		"setSelectionSeed":          e.setSelectionSeed,
		"addAdditionalValidator":    e.addAdditionalValidator,
		"removeAdditionalValidator": e.removeAdditionalValidator,
		"setCommitWindow":           e.setCommitWindow,
		"setRevealWindow":           e.setRevealWindow,
		"setValidatorsPerJob":       e.setValidatorsPerJob,
		"setRevealQuorum":           e.setRevealQuorum,
		"setClubRootNode":           e.setClubRootNode,
		"setValidatorMerkleRoot":    e.setValidatorMerkleRoot,
	}
}

// spender resolves the well known custodians by name.
func (e *Engine) spender(a *nostr.Action) (domain.Address, error) {
	v, err := a.Param("spender")
	if err != nil {
		return domain.ZeroAddress, err
	}
	switch v {
	case "stake":
		return domain.ModuleAddress("stake"), nil
	case "certificate":
		return e.market.Address(), nil
	}
	return domain.ParseAddress(v)
}

// account defaults to the caller.
func (e *Engine) account(a *nostr.Action) (domain.Address, error) {
	if a.Params["account"] == "" {
		return a.Caller, nil
	}
	return a.Address("account")
}

func (e *Engine) approve(a *nostr.Action) (any, error) {
	spender, err := e.spender(a)
	if err != nil {
		return nil, err
	}
	amount, err := a.Amount("amount")
	if err != nil {
		return nil, err
	}
	return nil, e.bank.Approve(e.asset, a.Caller, spender, amount)
}

func (e *Engine) transfer(a *nostr.Action) (any, error) {
	to, err := a.Address("to")
	if err != nil {
		return nil, err
	}
	amount, err := a.Amount("amount")
	if err != nil {
		return nil, err
	}
	return nil, e.bank.Transfer(e.asset, a.Caller, to, amount)
}

func (e *Engine) balance(a *nostr.Action) (any, error) {
	account, err := e.account(a)
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: e.bank.BalanceOf(e.asset, account)}, nil
}

func (e *Engine) deposit(a *nostr.Action) (any, error) {
	role, amount, err := roleAndAmount(a)
	if err != nil {
		return nil, err
	}
	return nil, e.ledger.Deposit(a.Caller, role, amount)
}

func (e *Engine) withdraw(a *nostr.Action) (any, error) {
	role, amount, err := roleAndAmount(a)
	if err != nil {
		return nil, err
	}
	return nil, e.ledger.Withdraw(a.Caller, role, amount)
}

func (e *Engine) stakeOf(a *nostr.Action) (any, error) {
	account, err := e.account(a)
	if err != nil {
		return nil, err
	}
	role, err := a.Role("role")
	if err != nil {
		return nil, err
	}
	return amountResult{Amount: e.ledger.StakeOf(account, role)}, nil
}

func (e *Engine) createJob(a *nostr.Action) (any, error) {
	reward, err := a.Amount("reward")
	if err != nil {
		return nil, err
	}
	deadline, err := a.Time("deadline")
	if err != nil {
		return nil, err
	}
	id, err := e.registry.CreateJob(a.Caller, reward, deadline)
	if err != nil {
		return nil, err
	}
	return jobResult{JobID: id}, nil
}

func (e *Engine) applyForJob(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	proof, err := a.Hashes("proof")
	if err != nil {
		return nil, err
	}
	return nil, e.registry.ApplyForJob(a.Caller, jobID, a.Params["label"], proof)
}

func (e *Engine) submitJob(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	return nil, e.registry.SubmitJob(a.Caller, jobID, a.Params["result"])
}

func (e *Engine) claimTimeout(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	return nil, e.registry.ClaimTimeout(a.Caller, jobID)
}

func (e *Engine) cancelJob(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	return nil, e.registry.CancelJob(a.Caller, jobID)
}

func (e *Engine) finalizeJob(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	outcome, err := e.registry.FinalizeJob(jobID)
	if err != nil {
		return nil, err
	}
	return outcomeResult{
		JobID:      outcome.JobID,
		Success:    outcome.Success,
		Approvals:  outcome.Approvals,
		Rejections: outcome.Rejections,
		Majority:   outcome.Majority,
		Absent:     outcome.Absent,
	}, nil
}

func (e *Engine) job(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	j := e.registry.Job(jobID)
	if j.Status == domain.StatusNone {
		return nil, domain.Fail("job", domain.ErrNotFound, "job %d", jobID)
	}
	view := jobView{
		ID:        j.ID,
		Client:    j.Client,
		Worker:    j.Worker,
		Reward:    j.Reward,
		Deadline:  j.Deadline.Unix(),
		Status:    j.Status.String(),
		ResultURI: j.ResultURI,
	}
	if j.Submitted() {
		view.SubmittedAt = j.SubmittedAt.Unix()
	}
	return view, nil
}

func (e *Engine) registerValidator(a *nostr.Action) (any, error) {
	proof, err := a.Hashes("proof")
	if err != nil {
		return nil, err
	}
	return nil, e.validation.RegisterValidator(a.Caller, a.Params["label"], proof)
}

func (e *Engine) commitValidation(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	commitment, err := a.Hash("commitment")
	if err != nil {
		return nil, err
	}
	return nil, e.validation.Commit(a.Caller, jobID, commitment)
}

func (e *Engine) revealValidation(a *nostr.Action) (any, error) {
	jobID, err := a.Uint("job")
	if err != nil {
		return nil, err
	}
	approve, err := a.Bool("approve")
	if err != nil {
		return nil, err
	}
	salt, err := a.Hash("salt")
	if err != nil {
		return nil, err
	}
	return nil, e.validation.Reveal(a.Caller, jobID, approve, salt)
}

func (e *Engine) listCertificate(a *nostr.Action) (any, error) {
	id, err := a.Uint("certificate")
	if err != nil {
		return nil, err
	}
	price, err := a.Amount("price")
	if err != nil {
		return nil, err
	}
	return nil, e.market.List(a.Caller, id, price)
}

func (e *Engine) delistCertificate(a *nostr.Action) (any, error) {
	id, err := a.Uint("certificate")
	if err != nil {
		return nil, err
	}
	return nil, e.market.Delist(a.Caller, id)
}

func (e *Engine) purchaseCertificate(a *nostr.Action) (any, error) {
	id, err := a.Uint("certificate")
	if err != nil {
		return nil, err
	}
	return nil, e.market.Purchase(a.Caller, id)
}

func roleAndAmount(a *nostr.Action) (domain.Role, domain.Amount, error) {
	role, err := a.Role("role")
	if err != nil {
		return 0, domain.ZeroAmount(), err
	}
	amount, err := a.Amount("amount")
	if err != nil {
		return 0, domain.ZeroAmount(), err
	}
	return role, amount, nil
}
