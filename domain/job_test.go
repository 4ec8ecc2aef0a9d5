package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusString(t *testing.T) {
	assert.Equal(t, "none", StatusNone.String())
	assert.Equal(t, "created", StatusCreated.String())
	assert.Equal(t, "applied", StatusApplied.String())
	assert.Equal(t, "completed", StatusCompleted.String())
	assert.Equal(t, "timed-out", StatusTimedOut.String())
	assert.Equal(t, "JobCreated", JobCreated{}.EventName())
}

func TestJobSubmitted(t *testing.T) {
	job := func(at time.Time) Job { return Job{Status: StatusApplied, SubmittedAt: at} }
	assert.False(t, job(time.Time{}).Submitted())
	assert.True(t, job(time.Unix(1700000000, 0)).Submitted())
}
