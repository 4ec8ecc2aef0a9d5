package events

import (
	"testing"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/stretchr/testify/assert"
)

func TestRecorderDrainAndLookup(t *testing.T) {
	r := NewRecorder()
	r.Emit(domain.FeePctUpdated{Pct: 1})
	r.Emit(domain.BurnPctUpdated{Pct: 2})
	r.Emit(domain.FeePctUpdated{Pct: 3})

	assert.Len(t, r.Named("FeePctUpdated"), 2)
	assert.Equal(t, domain.FeePctUpdated{Pct: 3}, r.Last("FeePctUpdated"))
	assert.Nil(t, r.Last("TreasuryUpdated"))

	drained := r.Drain()
	assert.Len(t, drained, 3)
	assert.Empty(t, r.Events())
}

func TestFanout(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Fanout{a, b, Nop}.Emit(domain.SlasherUpdated{Slasher: "x"})
	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}
