package events

import (
	"sync"

	"github.com/sebdeveloper6952/gojobs/domain"
)

type Emitter interface {
	Emit(ev domain.Event)
}

type EmitterFunc func(ev domain.Event)

func (f EmitterFunc) Emit(ev domain.Event) { f(ev) }

// Nop drops every event.
var Nop Emitter = EmitterFunc(func(domain.Event) {})

// Recorder keeps events in emission order. The engine uses one as the
// per-command buffer and drains it once the command succeeded.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecorder() *Recorder {
	return &Recorder{events: make([]domain.Event, 0, 16)}
}

func (r *Recorder) Emit(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns the recorded events and forgets them.
func (r *Recorder) Drain() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = make([]domain.Event, 0, 16)
	return out
}

func (r *Recorder) Reset() {
	r.Drain()
}

// Named returns the recorded events called name.
func (r *Recorder) Named(name string) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, ev := range r.events {
		if ev.EventName() == name {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the most recent event called name, or nil.
func (r *Recorder) Last(name string) domain.Event {
	named := r.Named(name)
	if len(named) == 0 {
		return nil
	}
	return named[len(named)-1]
}

// Fanout forwards every event to all of its emitters in order.
type Fanout []Emitter

func (f Fanout) Emit(ev domain.Event) {
	for _, e := range f {
		e.Emit(ev)
	}
}
