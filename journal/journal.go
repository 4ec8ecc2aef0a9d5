// Package journal keeps an append-only, hash chained record of every event
// the engine commits.
package journal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sebdeveloper6952/gojobs/domain"
)

type Entry struct {
	Seq       uint64          `json:"seq"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	PrevHash  string          `json:"prev_hash"`
	Hash      string          `json:"hash"`
}

type Journal interface {
	Append(ctx context.Context, ev domain.Event, at time.Time) (Entry, error)
	// List returns up to limit of the most recent entries, oldest first.
	// A limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]Entry, error)
	// Verify walks the whole chain and fails on the first broken link.
	Verify(ctx context.Context) error
	Close() error
}

func newEntry(seq uint64, prevHash string, ev domain.Event, at time.Time) (Entry, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Entry{}, fmt.Errorf("journal: encode %s: %w", ev.EventName(), err)
	}
	e := Entry{
		Seq:       seq,
		Name:      ev.EventName(),
		Payload:   payload,
		CreatedAt: at.UTC(),
		PrevHash:  prevHash,
	}
	e.Hash = computeHash(e)
	return e, nil
}

func computeHash(e Entry) string {
	payload := map[string]any{
		"seq":        e.Seq,
		"name":       e.Name,
		"payload":    e.Payload,
		"created_at": e.CreatedAt.UnixNano(),
		"prev_hash":  e.PrevHash,
	}
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func verifyChain(entries []Entry) error {
	prev := ""
	for i, e := range entries {
		if e.Seq != uint64(i+1) {
			return fmt.Errorf("journal: entry %d has seq %d", i+1, e.Seq)
		}
		if e.PrevHash != prev {
			return fmt.Errorf("journal: entry %d does not link to its predecessor", e.Seq)
		}
		if computeHash(e) != e.Hash {
			return fmt.Errorf("journal: entry %d hash mismatch", e.Seq)
		}
		prev = e.Hash
	}
	return nil
}

func tail(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
