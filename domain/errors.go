package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDecimals        = errors.New("wrong decimals")
	ErrWrongToken             = errors.New("wrong token")
	ErrInsufficientStake      = errors.New("stake too low")
	ErrDeadlineNotPassed      = errors.New("deadline not passed")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrNotAuthorized          = errors.New("not authorized")
	ErrReentrancyDetected     = errors.New("reentrant call")
	ErrInvalidMembershipProof = errors.New("invalid membership proof")
	ErrCommitWindowClosed     = errors.New("commit window closed")
	ErrRevealWindowClosed     = errors.New("reveal window closed")
	ErrHashMismatch           = errors.New("hash mismatch")
	ErrInvalidPercentage      = errors.New("invalid percentage")

	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrNotFound              = errors.New("not found")
	ErrNotEnoughValidators   = errors.New("not enough validators")
	ErrLimitExceeded         = errors.New("limit exceeded")
)

// OpError reports which operation rejected a call and why. Kind is one of
// the sentinels above, so errors.Is matches on it.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *OpError) Unwrap() error { return e.Kind }

func Fail(op string, kind error, format string, args ...any) error {
	return &OpError{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Failed(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// Wrap prefixes err with op unless it is nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
