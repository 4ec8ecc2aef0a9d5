package nostr

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	goNostr "github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/merkle"
)

func signedAction(t *testing.T, op string, params map[string]string, relays ...string) (*goNostr.Event, string) {
	t.Helper()
	sk := goNostr.GeneratePrivateKey()
	pk, err := goNostr.GetPublicKey(sk)
	require.NoError(t, err)

	ev := NewActionEvent(pk, op, params, relays...)
	require.NoError(t, ev.Sign(sk))
	return ev, pk
}

func TestActionFromEvent(t *testing.T) {
	salt := merkle.Keccak([]byte("salt"))
	ev, pk := signedAction(t, "reveal", map[string]string{
		"job":     "7",
		"approve": "true",
		"salt":    salt.Hex(),
		"proof":   salt.Hex() + "," + merkle.Zero.Hex(),
	}, "wss://relay.example.com")

	action, err := ActionFromEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, action.RequestID)
	assert.Equal(t, domain.Address(pk), action.Caller)
	assert.Equal(t, "reveal", action.Op)
	assert.Equal(t, []string{"wss://relay.example.com"}, action.Relays)

	job, err := action.Uint("job")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), job)

	approve, err := action.Bool("approve")
	require.NoError(t, err)
	assert.True(t, approve)

	got, err := action.Hash("salt")
	require.NoError(t, err)
	assert.Equal(t, salt, got)

	proof, err := action.Hashes("proof")
	require.NoError(t, err)
	assert.Equal(t, []merkle.Hash{salt, merkle.Zero}, proof)

	var decoded goNostr.Event
	require.NoError(t, json.Unmarshal([]byte(action.EventJSON), &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
}

func TestActionFromEventRejectsTampering(t *testing.T) {
	ev, _ := signedAction(t, "deposit", map[string]string{"amount": "10"})
	ev.Tags = append(ev.Tags, goNostr.Tag{"param", "role", "agent"})

	_, err := ActionFromEvent(ev)
	assert.True(t, errors.Is(err, ErrBadSignature))
}

func TestActionFromEventRequiresOp(t *testing.T) {
	sk := goNostr.GeneratePrivateKey()
	pk, err := goNostr.GetPublicKey(sk)
	require.NoError(t, err)
	ev := &goNostr.Event{PubKey: pk, CreatedAt: goNostr.Now(), Kind: KindAction}
	require.NoError(t, ev.Sign(sk))

	_, err = ActionFromEvent(ev)
	assert.True(t, errors.Is(err, ErrMissingParam))
}

func TestActionParams(t *testing.T) {
	a := &Action{Params: map[string]string{
		"amount":   "1500",
		"pct":      "10001",
		"role":     "validator",
		"deadline": "1700000000",
		"window":   "90m",
		"bad":      "x",
	}}

	amount, err := a.Amount("amount")
	require.NoError(t, err)
	assert.True(t, amount.Equal(domain.NewAmount(1500)))

	_, err = a.BasisPoints("pct")
	assert.True(t, errors.Is(err, domain.ErrInvalidPercentage))

	role, err := a.Role("role")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleValidator, role)

	deadline, err := a.Time("deadline")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), deadline.Unix())

	window, err := a.Duration("window")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, window)

	_, err = a.Uint("bad")
	assert.Error(t, err)

	_, err = a.Param("missing")
	assert.True(t, errors.Is(err, ErrMissingParam))

	proof, err := a.Hashes("missing")
	require.NoError(t, err)
	assert.Empty(t, proof)
}

func TestFeedbackAndResultEvents(t *testing.T) {
	ev, pk := signedAction(t, "createJob", map[string]string{"reward": "1"})
	action, err := ActionFromEvent(ev)
	require.NoError(t, err)

	fb := NewPaymentRequiredEvent("engine", action, 21, "lnbc...")
	assert.Equal(t, KindJobFeedback, fb.Kind)
	assert.Equal(t, goNostr.Tag{"e", ev.ID}, fb.Tags[0])
	assert.Equal(t, goNostr.Tag{"p", pk}, fb.Tags[1])
	assert.Equal(t, goNostr.Tag{"status", StatusPaymentRequired}, fb.Tags[2])
	assert.Equal(t, goNostr.Tag{"amount", "21000", "lnbc..."}, fb.Tags[3])

	res, err := NewResultEvent("engine", action, map[string]uint64{"job_id": 1})
	require.NoError(t, err)
	assert.Equal(t, KindActionResult, res.Kind)
	assert.JSONEq(t, `{"job_id":1}`, res.Content)
	assert.Equal(t, goNostr.Tag{"op", "createJob"}, res.Tags[3])
}

func TestLedgerEvent(t *testing.T) {
	ev, err := NewLedgerEvent("engine", domain.JobCancelled{JobID: 3, Employer: "ab"})
	require.NoError(t, err)
	assert.Equal(t, KindLedgerEvent, ev.Kind)
	assert.Equal(t, goNostr.Tag{"name", "JobCancelled"}, ev.Tags[0])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(ev.Content), &payload))
	assert.EqualValues(t, 3, payload["job_id"])
}

func TestHandlerInformationEvent(t *testing.T) {
	profile := &ProfileMetadata{Name: "gojobs", About: "job market"}
	ev := NewHandlerInformationEvent("engine", profile, []int{KindAction}, "v1")
	assert.Equal(t, KindHandlerInformation, ev.Kind)
	assert.Equal(t, goNostr.Tags{{"d", "v1"}, {"k", "5950"}}, ev.Tags)

	meta := NewProfileMetadataEvent("engine", profile)
	assert.JSONEq(t, `{"name":"gojobs","about":"job market"}`, meta.Content)
}
