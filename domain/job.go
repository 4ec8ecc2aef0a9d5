package domain

import "time"

type JobStatus int

const (
	StatusNone JobStatus = iota
	StatusCreated
	StatusApplied
	StatusCompleted
	StatusTimedOut
)

var (
	JobStatusToString = map[JobStatus]string{
		StatusNone:      "none",
		StatusCreated:   "created",
		StatusApplied:   "applied",
		StatusCompleted: "completed",
		StatusTimedOut:  "timed-out",
	}
)

func (s JobStatus) String() string {
	return JobStatusToString[s]
}

type Job struct {
	ID        uint64
	Client    Address
	Worker    Address
	Reward    Amount
	Deadline  time.Time
	Status    JobStatus
	ResultURI string

	// SubmittedAt is set once the worker hands the job over to validation.
	SubmittedAt time.Time
	Success     bool
}

func (j Job) Submitted() bool {
	return !j.SubmittedAt.IsZero()
}

// FeeSplit routes Pct of a released escrow to To.
type FeeSplit struct {
	To  Address
	Pct BasisPoints
}

// Outcome is the tally of a finalized validation round.
type Outcome struct {
	JobID      uint64
	Success    bool
	Approvals  int
	Rejections int
	// Majority holds the validators that voted with the outcome, sorted.
	Majority []Address
	// Absent holds selected validators that never revealed.
	Absent []Address
}
