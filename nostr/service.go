package nostr

import (
	"context"
	"errors"
	"time"

	goNostr "github.com/nbd-wtf/go-nostr"
	retry "github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

const connectRetries = 5

type Service interface {
	Run(
		ctx context.Context,
		kinds []int,
		initialRelays []string,
	) error
	Events() chan *goNostr.Event
	PublishEvent(
		ctx context.Context,
		e goNostr.Event,
		additionalRelays ...string,
	) error
}

type svc struct {
	relays  []*goNostr.Relay
	events  chan *goNostr.Event
	kinds   []int
	log     logrus.Ext1FieldLogger
	backoff time.Duration
}

func NewNostr(
	log logrus.Ext1FieldLogger,
) (Service, error) {
	return &svc{
		events:  make(chan *goNostr.Event),
		log:     log,
		backoff: time.Second,
	}, nil
}

func (s *svc) Run(
	ctx context.Context,
	kinds []int,
	initialRelays []string,
) error {
	s.kinds = kinds

	if len(initialRelays) == 0 {
		return errors.New("must provide at least one relay")
	}

	s.relays = make([]*goNostr.Relay, 0, len(initialRelays))
	for i := range initialRelays {
		relay, err := s.connect(ctx, initialRelays[i])
		if err != nil {
			return err
		}
		s.relays = append(s.relays, relay)
	}

	var now = goNostr.Timestamp(time.Now().Unix())
	var filters goNostr.Filters = []goNostr.Filter{
		{
			Kinds: s.kinds,
			Since: &now,
		},
	}

	for i := range s.relays {
		go func(relay *goNostr.Relay) {
			sub, err := relay.Subscribe(ctx, filters)
			if err != nil {
				s.log.Errorf("[nostr] subscribe %s %+v", relay.URL, err)
				return
			}
			defer sub.Unsub()

			for {
				select {
				case event, ok := <-sub.Events:
					if !ok {
						s.log.Warnf("[nostr] subscription to %s closed", relay.URL)
						return
					}
					s.log.Tracef("[nostr] received event %s from %s", event.ID, relay.URL)
					select {
					case s.events <- event:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(s.relays[i])
	}

	return nil
}

func (s *svc) Events() chan *goNostr.Event {
	return s.events
}

// PublishEvent sends e to every connected relay and to additionalRelays,
// which are dialed for this event only. Relay failures are logged.
func (s *svc) PublishEvent(
	ctx context.Context,
	e goNostr.Event,
	additionalRelays ...string,
) error {
	s.log.Tracef("[nostr] publish event %s kind %d", e.ID, e.Kind)

	for i := range s.relays {
		if err := s.relays[i].Publish(ctx, e); err != nil {
			s.log.Errorf("[nostr] publish to relay %s %+v", s.relays[i].URL, err)
		}
	}

	for _, url := range additionalRelays {
		if s.connected(url) {
			continue
		}
		relay, err := s.connect(ctx, url)
		if err != nil {
			s.log.Errorf("[nostr] connect to relay %s %+v", url, err)
			continue
		}
		if err := relay.Publish(ctx, e); err != nil {
			s.log.Errorf("[nostr] publish to relay %s %+v", url, err)
		}
		relay.Close()
	}

	return nil
}

func (s *svc) connected(url string) bool {
	normalized := goNostr.NormalizeURL(url)
	for i := range s.relays {
		if goNostr.NormalizeURL(s.relays[i].URL) == normalized {
			return true
		}
	}
	return false
}

// connect dials url, retrying with a fibonacci backoff.
func (s *svc) connect(ctx context.Context, url string) (*goNostr.Relay, error) {
	var relay *goNostr.Relay
	b := retry.WithMaxRetries(connectRetries, retry.NewFibonacci(s.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		r, err := goNostr.RelayConnect(ctx, url)
		if err != nil {
			s.log.Warnf("[nostr] connect to %s %+v", url, err)
			return retry.RetryableError(err)
		}
		relay = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return relay, nil
}
