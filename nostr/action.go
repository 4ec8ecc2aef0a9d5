package nostr

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	goNostr "github.com/nbd-wtf/go-nostr"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/merkle"
)

const (
	KindLedgerEvent  = 1950
	KindAction       = 5950
	KindActionResult = 6950
	KindJobFeedback  = 7000
)

const (
	StatusProcessing      = "processing"
	StatusError           = "error"
	StatusSuccess         = "success"
	StatusPaymentRequired = "payment-required"
)

var (
	ErrMissingParam = errors.New("missing param")
	ErrBadSignature = errors.New("bad signature")
)

// Action is a signed request to run one engine operation. Params come from
// ["param", key, value] tags, the operation from the ["op", name] tag.
type Action struct {
	RequestID string
	Caller    domain.Address
	Op        string
	Params    map[string]string
	Relays    []string
	EventJSON string
}

func ActionFromEvent(e *goNostr.Event) (*Action, error) {
	if ok, err := e.CheckSignature(); err != nil || !ok {
		return nil, fmt.Errorf("%w on event %s", ErrBadSignature, e.ID)
	}

	caller, err := domain.ParseAddress(e.PubKey)
	if err != nil {
		return nil, err
	}

	action := &Action{
		RequestID: e.ID,
		Caller:    caller,
		Params:    make(map[string]string),
	}

	eventJson, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	action.EventJSON = string(eventJson)

	for i := range e.Tags {
		if len(e.Tags[i]) < 2 {
			continue
		}
		switch e.Tags[i][0] {
		case "op":
			action.Op = e.Tags[i][1]
		case "param":
			if len(e.Tags[i]) == 3 {
				action.Params[e.Tags[i][1]] = e.Tags[i][2]
			}
		case "relays":
			action.Relays = append(action.Relays, e.Tags[i][1:]...)
		}
	}

	if action.Op == "" {
		return nil, fmt.Errorf("event %s: %w op", e.ID, ErrMissingParam)
	}

	return action, nil
}

// NewActionEvent builds an unsigned action event. Params are tagged in key
// order.
func NewActionEvent(pk string, op string, params map[string]string, relays ...string) *goNostr.Event {
	e := &goNostr.Event{
		PubKey:    pk,
		CreatedAt: goNostr.Now(),
		Kind:      KindAction,
		Tags:      goNostr.Tags{{"op", op}},
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Tags = append(e.Tags, goNostr.Tag{"param", k, params[k]})
	}

	if len(relays) > 0 {
		e.Tags = append(e.Tags, append(goNostr.Tag{"relays"}, relays...))
	}

	return e
}

func (a *Action) Param(key string) (string, error) {
	v, ok := a.Params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w %s", ErrMissingParam, key)
	}
	return v, nil
}

func (a *Action) Amount(key string) (domain.Amount, error) {
	v, err := a.Param(key)
	if err != nil {
		return domain.ZeroAmount(), err
	}
	amount, err := domain.ParseAmount(v)
	if err != nil {
		return domain.ZeroAmount(), fmt.Errorf("param %s: %w", key, err)
	}
	return amount, nil
}

func (a *Action) Uint(key string) (uint64, error) {
	v, err := a.Param(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return n, nil
}

func (a *Action) BasisPoints(key string) (domain.BasisPoints, error) {
	n, err := a.Uint(key)
	if err != nil {
		return 0, err
	}
	if n > domain.MaxBasisPoints {
		return 0, fmt.Errorf("param %s: %w", key, domain.ErrInvalidPercentage)
	}
	return domain.BasisPoints(n), nil
}

func (a *Action) Bool(key string) (bool, error) {
	v, err := a.Param(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("param %s: %w", key, err)
	}
	return b, nil
}

func (a *Action) Address(key string) (domain.Address, error) {
	v, err := a.Param(key)
	if err != nil {
		return domain.ZeroAddress, err
	}
	return domain.ParseAddress(v)
}

func (a *Action) Role(key string) (domain.Role, error) {
	v, err := a.Param(key)
	if err != nil {
		return 0, err
	}
	return domain.ParseRole(v)
}

func (a *Action) Hash(key string) (merkle.Hash, error) {
	v, err := a.Param(key)
	if err != nil {
		return merkle.Zero, err
	}
	return merkle.ParseHash(v)
}

// Hashes reads a comma separated list. A missing param is an empty list.
func (a *Action) Hashes(key string) ([]merkle.Hash, error) {
	v := a.Params[key]
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	out := make([]merkle.Hash, 0, len(parts))
	for _, p := range parts {
		h, err := merkle.ParseHash(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		out = append(out, h)
	}
	return out, nil
}

// Time reads unix seconds.
func (a *Action) Time(key string) (time.Time, error) {
	n, err := a.Uint(key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(n), 0), nil
}

func (a *Action) Duration(key string) (time.Duration, error) {
	v, err := a.Param(key)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return d, nil
}
