package domain

// Event is a state change notification. EventName matches the names the
// events are published under.
type Event interface {
	EventName() string
}

// stake ledger

type TreasuryUpdated struct {
	Treasury Address `json:"treasury"`
}

type JobRegistryUpdated struct {
	Registry Address `json:"registry"`
}

type SlasherUpdated struct {
	Slasher Address `json:"slasher"`
}

type MinStakeAgentUpdated struct {
	Amount Amount `json:"amount"`
}

type MinStakeEmployerUpdated struct {
	Amount Amount `json:"amount"`
}

type MinStakeValidatorUpdated struct {
	Amount Amount `json:"amount"`
}

type FeePctUpdated struct {
	Pct BasisPoints `json:"pct"`
}

type BurnPctUpdated struct {
	Pct BasisPoints `json:"pct"`
}

type SlashPctsUpdated struct {
	EmployerPct BasisPoints `json:"employer_pct"`
	TreasuryPct BasisPoints `json:"treasury_pct"`
}

type AGITypeAdded struct {
	NFT Address     `json:"nft"`
	Pct BasisPoints `json:"pct"`
}

type AGITypeRemoved struct {
	NFT Address `json:"nft"`
}

type StakeDeposited struct {
	Account Address `json:"account"`
	Role    Role    `json:"role"`
	Amount  Amount  `json:"amount"`
}

type StakeWithdrawn struct {
	Account Address `json:"account"`
	Role    Role    `json:"role"`
	Amount  Amount  `json:"amount"`
}

type StakeEscrowLocked struct {
	JobID  uint64  `json:"job_id"`
	Payer  Address `json:"payer"`
	Amount Amount  `json:"amount"`
}

type StakeReleased struct {
	JobID     uint64  `json:"job_id"`
	Recipient Address `json:"recipient"`
	Amount    Amount  `json:"amount"`
	Fees      Amount  `json:"fees"`
	Burned    Amount  `json:"burned"`
}

type TokensBurned struct {
	JobID  uint64 `json:"job_id"`
	Amount Amount `json:"amount"`
}

type StakeSlashed struct {
	Account          Address `json:"account"`
	Role             Role    `json:"role"`
	Beneficiary      Address `json:"beneficiary"`
	Amount           Amount  `json:"amount"`
	BeneficiaryShare Amount  `json:"beneficiary_share"`
	TreasuryShare    Amount  `json:"treasury_share"`
}

// job registry

type JobCreated struct {
	JobID    uint64  `json:"job_id"`
	Employer Address `json:"employer"`
	Reward   Amount  `json:"reward"`
	Deadline int64   `json:"deadline"`
}

type JobApplied struct {
	JobID uint64  `json:"job_id"`
	Agent Address `json:"agent"`
}

type JobSubmitted struct {
	JobID     uint64  `json:"job_id"`
	Agent     Address `json:"agent"`
	ResultURI string  `json:"result_uri"`
}

type JobCompleted struct {
	JobID   uint64 `json:"job_id"`
	Success bool   `json:"success"`
}

type JobCancelled struct {
	JobID    uint64  `json:"job_id"`
	Employer Address `json:"employer"`
}

type JobTimedOut struct {
	JobID    uint64  `json:"job_id"`
	Employer Address `json:"employer"`
	Agent    Address `json:"agent"`
}

type ValidatorRewardPctUpdated struct {
	Pct BasisPoints `json:"pct"`
}

type MaxJobRewardUpdated struct {
	Amount Amount `json:"amount"`
}

type MaxJobDurationUpdated struct {
	Seconds int64 `json:"seconds"`
}

type AgentRootUpdated struct {
	RootNode   string `json:"root_node"`
	MerkleRoot string `json:"merkle_root"`
}

type AdditionalAgentUpdated struct {
	Agent   Address `json:"agent"`
	Allowed bool    `json:"allowed"`
}

type CertificateMintFailed struct {
	JobID  uint64  `json:"job_id"`
	Worker Address `json:"worker"`
	Reason string  `json:"reason"`
}

// validation

type ValidatorSelected struct {
	JobID     uint64  `json:"job_id"`
	Validator Address `json:"validator"`
}

type ValidatorRegistered struct {
	Validator  Address `json:"validator"`
	Additional bool    `json:"additional"`
}

type ValidatorRemoved struct {
	Validator Address `json:"validator"`
}

type VoteCommitted struct {
	JobID     uint64  `json:"job_id"`
	Validator Address `json:"validator"`
}

type VoteRevealed struct {
	JobID     uint64  `json:"job_id"`
	Validator Address `json:"validator"`
	Approve   bool    `json:"approve"`
}

type ValidationFinalized struct {
	JobID      uint64 `json:"job_id"`
	Approvals  int    `json:"approvals"`
	Rejections int    `json:"rejections"`
	Success    bool   `json:"success"`
}

type ValidationParamsUpdated struct {
	CommitWindowSeconds int64 `json:"commit_window_seconds"`
	RevealWindowSeconds int64 `json:"reveal_window_seconds"`
	ValidatorsPerJob    int   `json:"validators_per_job"`
	RevealQuorum        int   `json:"reveal_quorum"`
}

type ValidatorRootUpdated struct {
	ClubRootNode string `json:"club_root_node"`
	MerkleRoot   string `json:"merkle_root"`
}

// certificates

type CertificateMinted struct {
	ID uint64  `json:"id"`
	To Address `json:"to"`
}

type CertificateListed struct {
	ID    uint64  `json:"id"`
	Owner Address `json:"owner"`
	Price Amount  `json:"price"`
}

type CertificateDelisted struct {
	ID uint64 `json:"id"`
}

type CertificatePurchased struct {
	ID     uint64  `json:"id"`
	Seller Address `json:"seller"`
	Buyer  Address `json:"buyer"`
	Price  Amount  `json:"price"`
}

// bridge

type TokensMinted struct {
	Account Address `json:"account"`
	Amount  Amount  `json:"amount"`
	Invoice string  `json:"invoice"`
}

func (TreasuryUpdated) EventName() string           { return "TreasuryUpdated" }
func (JobRegistryUpdated) EventName() string        { return "JobRegistryUpdated" }
func (SlasherUpdated) EventName() string            { return "SlasherUpdated" }
func (MinStakeAgentUpdated) EventName() string      { return "MinStakeAgentUpdated" }
func (MinStakeEmployerUpdated) EventName() string   { return "MinStakeEmployerUpdated" }
func (MinStakeValidatorUpdated) EventName() string  { return "MinStakeValidatorUpdated" }
func (FeePctUpdated) EventName() string             { return "FeePctUpdated" }
func (BurnPctUpdated) EventName() string            { return "BurnPctUpdated" }
func (SlashPctsUpdated) EventName() string          { return "SlashPctsUpdated" }
func (AGITypeAdded) EventName() string              { return "AGITypeAdded" }
func (AGITypeRemoved) EventName() string            { return "AGITypeRemoved" }
func (StakeDeposited) EventName() string            { return "StakeDeposited" }
func (StakeWithdrawn) EventName() string            { return "StakeWithdrawn" }
func (StakeEscrowLocked) EventName() string         { return "StakeEscrowLocked" }
func (StakeReleased) EventName() string             { return "StakeReleased" }
func (TokensBurned) EventName() string              { return "TokensBurned" }
func (StakeSlashed) EventName() string              { return "StakeSlashed" }
func (JobCreated) EventName() string                { return "JobCreated" }
func (JobApplied) EventName() string                { return "JobApplied" }
func (JobSubmitted) EventName() string              { return "JobSubmitted" }
func (JobCompleted) EventName() string              { return "JobCompleted" }
func (JobCancelled) EventName() string              { return "JobCancelled" }
func (JobTimedOut) EventName() string               { return "JobTimedOut" }
func (ValidatorRewardPctUpdated) EventName() string { return "ValidatorRewardPctUpdated" }
func (MaxJobRewardUpdated) EventName() string       { return "MaxJobRewardUpdated" }
func (MaxJobDurationUpdated) EventName() string     { return "MaxJobDurationUpdated" }
func (AgentRootUpdated) EventName() string          { return "AgentRootUpdated" }
func (AdditionalAgentUpdated) EventName() string    { return "AdditionalAgentUpdated" }
func (CertificateMintFailed) EventName() string     { return "CertificateMintFailed" }
func (ValidatorSelected) EventName() string         { return "ValidatorSelected" }
func (ValidatorRegistered) EventName() string       { return "ValidatorRegistered" }
func (ValidatorRemoved) EventName() string          { return "ValidatorRemoved" }
func (VoteCommitted) EventName() string             { return "VoteCommitted" }
func (VoteRevealed) EventName() string              { return "VoteRevealed" }
func (ValidationFinalized) EventName() string       { return "ValidationFinalized" }
func (ValidationParamsUpdated) EventName() string   { return "ValidationParamsUpdated" }
func (ValidatorRootUpdated) EventName() string      { return "ValidatorRootUpdated" }
func (CertificateMinted) EventName() string         { return "CertificateMinted" }
func (CertificateListed) EventName() string         { return "CertificateListed" }
func (CertificateDelisted) EventName() string       { return "CertificateDelisted" }
func (CertificatePurchased) EventName() string      { return "CertificatePurchased" }
func (TokensMinted) EventName() string              { return "TokensMinted" }
