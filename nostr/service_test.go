package nostr

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *svc {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s, err := NewNostr(log)
	require.NoError(t, err)
	n := s.(*svc)
	n.backoff = time.Millisecond
	return n
}

func TestRunNeedsRelays(t *testing.T) {
	s := newTestService(t)
	assert.Error(t, s.Run(context.Background(), []int{KindAction}, nil))
}

func TestConnectGivesUpAfterRetries(t *testing.T) {
	s := newTestService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.connect(ctx, "ws://127.0.0.1:1")
	require.Error(t, err)
	assert.NoError(t, ctx.Err())
}
