package guard

import (
	"errors"
	"testing"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalGuardRejectsNestedEntry(t *testing.T) {
	g := New()

	release, err := g.Enter("deposit")
	require.NoError(t, err)
	assert.True(t, g.Active("withdraw"))

	_, err = g.Enter("withdraw")
	require.ErrorIs(t, err, domain.ErrReentrancyDetected)

	release()
	release()
	assert.False(t, g.Active("deposit"))

	release, err = g.Enter("withdraw")
	require.NoError(t, err)
	release()
}

func TestPerOperationGuard(t *testing.T) {
	g := NewWithGranularity(PerOperation)

	release, err := g.Enter("purchase:1")
	require.NoError(t, err)
	defer release()

	other, err := g.Enter("purchase:2")
	require.NoError(t, err)
	other()

	_, err = g.Enter("purchase:1")
	require.ErrorIs(t, err, domain.ErrReentrancyDetected)
}

func TestGuardReleasedOnErrorPath(t *testing.T) {
	g := New()
	failing := func() (err error) {
		release, err := g.Enter("slash")
		if err != nil {
			return err
		}
		defer release()
		return errors.New("boom")
	}

	require.Error(t, failing())
	assert.False(t, g.Active("slash"))
}
