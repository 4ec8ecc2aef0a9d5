package journal

import (
	"context"
	"sync"
	"time"

	"github.com/sebdeveloper6952/gojobs/domain"
)

type memory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemory() Journal {
	return &memory{entries: make([]Entry, 0, 128)}
}

func (m *memory) Append(_ context.Context, ev domain.Event, at time.Time) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := ""
	if n := len(m.entries); n > 0 {
		prev = m.entries[n-1].Hash
	}
	e, err := newEntry(uint64(len(m.entries)+1), prev, ev, at)
	if err != nil {
		return Entry{}, err
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memory) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return tail(m.entries, limit), nil
}

func (m *memory) Verify(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return verifyChain(m.entries)
}

func (m *memory) Close() error {
	return nil
}
