package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/decred/dcrd/lru"
	"github.com/lightningnetwork/lnd/clock"
	goNostr "github.com/nbd-wtf/go-nostr"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/gojobs/certificate"
	"github.com/sebdeveloper6952/gojobs/config"
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/events"
	"github.com/sebdeveloper6952/gojobs/jobs"
	"github.com/sebdeveloper6952/gojobs/journal"
	"github.com/sebdeveloper6952/gojobs/lightning"
	"github.com/sebdeveloper6952/gojobs/nostr"
	"github.com/sebdeveloper6952/gojobs/stake"
	"github.com/sebdeveloper6952/gojobs/token"
	"github.com/sebdeveloper6952/gojobs/validation"
)

const (
	handlerVersion = "gojobs-v1"
	outboxSize     = 256
	seenActions    = 10000
)

var ErrUnknownOp = errors.New("unknown op")

type command struct {
	op   string
	fn   func() error
	done chan error
}

// Engine owns the job market state. Every command runs on the loop
// goroutine started by Run, one at a time, and the events it emits are
// flushed only when it succeeds.
type Engine struct {
	sk    string
	pk    string
	log   logrus.Ext1FieldLogger
	clock clock.Clock
	cfg   *config.Config

	nostrSvc nostr.Service
	lnSvc    lightning.Service
	journal  journal.Journal
	metrics  *Metrics

	asset       token.AssetID
	unitsPerSat domain.Amount
	bank        *token.Bank
	ledger      *stake.Ledger
	validation  *validation.Module
	registry    *jobs.Registry
	market      *certificate.Market

	buffer   *events.Recorder
	cmds     chan *command
	outbox   chan outgoing
	handlers map[string]handler

	// seen holds the ids of recently handled actions. Every relay delivers
	// its own copy of an event.
	seen lru.Cache
}

func New(
	cfg *config.Config,
	log logrus.Ext1FieldLogger,
	clk clock.Clock,
) (*Engine, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("engine: missing secret key (%s)", config.EnvSecretKey)
	}
	pk, err := goNostr.GetPublicKey(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("engine: secret key: %w", err)
	}
	unitsPerSat, err := config.Amount(cfg.Asset.UnitsPerSat)
	if err != nil {
		return nil, err
	}
	metrics, err := NewMetrics(nil)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		sk:          cfg.SecretKey,
		pk:          pk,
		log:         log,
		clock:       clk,
		cfg:         cfg,
		journal:     journal.NewMemory(),
		metrics:     metrics,
		asset:       token.AssetID(cfg.Asset.ID),
		unitsPerSat: unitsPerSat,
		buffer:      events.NewRecorder(),
		cmds:        make(chan *command),
		outbox:      make(chan outgoing, outboxSize),
		seen:        lru.NewCache(seenActions),
	}
	if err := e.build(); err != nil {
		return nil, err
	}
	e.handlers = e.routes()

	return e, nil
}

func (e *Engine) SetNostrService(svc nostr.Service) {
	e.nostrSvc = svc
}

func (e *Engine) SetLnService(ln lightning.Service) {
	e.lnSvc = ln
}

func (e *Engine) SetJournal(j journal.Journal) {
	e.journal = j
}

func (e *Engine) SetMetrics(m *Metrics) {
	e.metrics = m
}

// Pk is the engine's nostr identity. It owns the market unless the config
// names another owner.
func (e *Engine) Pk() string {
	return e.pk
}

// Run starts the command loop and, when a nostr service is set, action
// ingestion. It returns once everything is started.
func (e *Engine) Run(ctx context.Context) error {
	go e.loop(ctx)

	if e.nostrSvc == nil {
		e.log.Warnf("[engine] no nostr service, only local commands are served")
		return nil
	}

	if err := e.nostrSvc.Run(ctx, []int{nostr.KindAction}, e.cfg.Nostr.Relays); err != nil {
		return err
	}
	go e.publish(ctx)
	e.advertise()

	go func() {
		for {
			select {
			case event := <-e.nostrSvc.Events():
				e.handleEvent(ctx, event)
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (e *Engine) loop(ctx context.Context) {
	for {
		select {
		case cmd := <-e.cmds:
			err := cmd.fn()
			if err != nil {
				e.buffer.Reset()
				e.log.Debugf("[engine] %s failed %v", cmd.op, err)
			} else {
				e.flush(ctx, e.buffer.Drain())
			}
			e.metrics.command(cmd.op, err)
			cmd.done <- err
		case <-ctx.Done():
			return
		}
	}
}

// exec runs fn on the loop goroutine and waits for its result.
func (e *Engine) exec(ctx context.Context, op string, fn func() error) error {
	cmd := &command{
		op:   op,
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case e.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) flush(ctx context.Context, evs []domain.Event) {
	for _, ev := range evs {
		name := ev.EventName()
		e.log.WithField("event", name).Debugf("[engine] %+v", ev)
		e.metrics.event(name)

		if _, err := e.journal.Append(ctx, ev, e.clock.Now()); err != nil {
			e.log.Errorf("[engine] journal %s %+v", name, err)
		}

		if e.nostrSvc == nil {
			continue
		}
		nostrEvent, err := nostr.NewLedgerEvent(e.pk, ev)
		if err != nil {
			e.log.Errorf("[engine] ledger event %s %+v", name, err)
			continue
		}
		e.send(nostrEvent)
	}
}

type outgoing struct {
	event  goNostr.Event
	relays []string
}

// send signs ev and queues it for publishing. A full outbox drops ev.
func (e *Engine) send(ev *goNostr.Event, relays ...string) {
	if err := ev.Sign(e.sk); err != nil {
		e.log.Errorf("[engine] sign kind %d %+v", ev.Kind, err)
		return
	}
	select {
	case e.outbox <- outgoing{event: *ev, relays: relays}:
	default:
		e.log.Warnf("[engine] outbox full, dropped event kind %d", ev.Kind)
	}
}

func (e *Engine) publish(ctx context.Context) {
	for {
		select {
		case out := <-e.outbox:
			if err := e.nostrSvc.PublishEvent(ctx, out.event, out.relays...); err != nil {
				e.log.Errorf("[engine] publish %s %+v", out.event.ID, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// advertise publishes two events:
// - kind 31990 for nip-89 handler information
// - kind 0 for nip-01 profile metadata
func (e *Engine) advertise() {
	profile := &nostr.ProfileMetadata{
		Name:    e.cfg.Nostr.Name,
		About:   e.cfg.Nostr.About,
		Picture: e.cfg.Nostr.Picture,
	}

	e.send(nostr.NewHandlerInformationEvent(
		e.pk,
		profile,
		[]int{nostr.KindAction},
		handlerVersion,
	))
	e.send(nostr.NewProfileMetadataEvent(e.pk, profile))
}

func (e *Engine) handleEvent(ctx context.Context, event *goNostr.Event) {
	action, err := nostr.ActionFromEvent(event)
	if err != nil {
		e.log.Errorf("[engine] action from event %+v", err)
		return
	}
	if e.seen.Contains(action.RequestID) {
		e.log.Debugf("[engine] dropping duplicate action %s", action.RequestID)
		return
	}
	e.seen.Add(action.RequestID)
	e.log.Tracef("[engine] %s from %s", action.Op, action.Caller)

	if action.Op == OpTopUp {
		e.handleTopUp(ctx, action)
		return
	}

	result, err := e.Execute(ctx, action)
	if err != nil {
		e.send(nostr.NewFeedbackEvent(e.pk, action, nostr.StatusError, err.Error()), action.Relays...)
		return
	}

	resultEvent, err := nostr.NewResultEvent(e.pk, action, result)
	if err != nil {
		e.log.Errorf("[engine] result event %+v", err)
		return
	}
	e.send(resultEvent, action.Relays...)
}

// Execute runs one action as a single command.
func (e *Engine) Execute(ctx context.Context, action *nostr.Action) (any, error) {
	h, ok := e.handlers[action.Op]
	if !ok {
		e.metrics.command("unknown", ErrUnknownOp)
		return nil, fmt.Errorf("%w %q", ErrUnknownOp, action.Op)
	}

	var result any
	err := e.exec(ctx, action.Op, func() error {
		var err error
		result, err = h(action)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = struct{}{}
	}
	return result, nil
}
