// Package guard provides the scoped reentrancy lock that wraps every
// operation moving value through an external balance ledger.
package guard

import (
	"sync"

	"github.com/sebdeveloper6952/gojobs/domain"
)

type Granularity int

const (
	// Global makes every operation share one critical section.
	Global Granularity = iota
	// PerOperation only rejects re-entry into the same operation id.
	PerOperation
)

type Guard struct {
	mu          sync.Mutex
	granularity Granularity
	active      map[string]int
}

func New() *Guard {
	return NewWithGranularity(Global)
}

func NewWithGranularity(g Granularity) *Guard {
	return &Guard{
		granularity: g,
		active:      make(map[string]int),
	}
}

// Enter marks op as active. It fails with ErrReentrancyDetected when op, or
// any op under Global granularity, is already active. The returned release
// must be deferred by the caller; calling it more than once is harmless.
func (g *Guard) Enter(op string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := g.key(op)
	if g.active[key] > 0 {
		return nil, domain.Fail(op, domain.ErrReentrancyDetected, "%s already in progress", key)
	}
	g.active[key]++

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.active[key]--; g.active[key] <= 0 {
				delete(g.active, key)
			}
		})
	}, nil
}

// Active reports whether op (or anything, under Global) is in progress.
func (g *Guard) Active(op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[g.key(op)] > 0
}

func (g *Guard) key(op string) string {
	if g.granularity == Global {
		return "*"
	}
	return op
}
