package nostr

import (
	"encoding/json"
	"fmt"

	goNostr "github.com/nbd-wtf/go-nostr"

	"github.com/sebdeveloper6952/gojobs/domain"
)

func NewFeedbackEvent(
	pk string,
	action *Action,
	status string,
	content string,
) *goNostr.Event {
	return &goNostr.Event{
		PubKey:    pk,
		CreatedAt: goNostr.Now(),
		Kind:      KindJobFeedback,
		Content:   content,
		Tags: goNostr.Tags{
			{"e", action.RequestID},
			{"p", action.Caller.String()},
			{"status", status},
		},
	}
}

// NewPaymentRequiredEvent is feedback carrying a bolt11 invoice in the
// amount tag, in millisats.
func NewPaymentRequiredEvent(
	pk string,
	action *Action,
	amountSats int64,
	payReq string,
) *goNostr.Event {
	e := NewFeedbackEvent(pk, action, StatusPaymentRequired, "")
	e.Tags = append(e.Tags, goNostr.Tag{
		"amount",
		fmt.Sprintf("%d", amountSats*1000),
		payReq,
	})
	return e
}

func NewResultEvent(
	pk string,
	action *Action,
	result any,
) (*goNostr.Event, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	return &goNostr.Event{
		PubKey:    pk,
		CreatedAt: goNostr.Now(),
		Kind:      KindActionResult,
		Content:   string(content),
		Tags: goNostr.Tags{
			{"request", action.EventJSON},
			{"e", action.RequestID},
			{"p", action.Caller.String()},
			{"op", action.Op},
		},
	}, nil
}

// NewLedgerEvent publishes a state change. The content is the event as
// JSON, the name tag its event name.
func NewLedgerEvent(pk string, ev domain.Event) (*goNostr.Event, error) {
	content, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	return &goNostr.Event{
		PubKey:    pk,
		CreatedAt: goNostr.Now(),
		Kind:      KindLedgerEvent,
		Content:   string(content),
		Tags: goNostr.Tags{
			{"name", ev.EventName()},
		},
	}, nil
}
