package lnbits

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hash = "0c2e5a6ca43ab1b5bbf2bc54a2d0fd1a5cb6c3ea7d6a0e0d9ab5a9ec8e5b1f0a"

func newTestService(t *testing.T, handler http.HandlerFunc) *lnbits {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := New(srv.URL, "key", logrus.New())
	require.NoError(t, err)
	l := svc.(*lnbits)
	l.poll = 10 * time.Millisecond
	return l
}

func TestAddInvoice(t *testing.T) {
	l := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/payments", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))

		var body payment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(2100), body.Amount)
		assert.False(t, body.Out)

		json.NewEncoder(w).Encode(paymentResponse{PaymentHash: hash, PaymentRequest: "lnbcrt21u1..."})
	})

	inv, err := l.AddInvoice(context.Background(), 2100, "top-up")
	require.NoError(t, err)
	assert.Equal(t, hash, inv.Hash.String())
	assert.Equal(t, "lnbcrt21u1...", inv.PayReq)
	assert.Equal(t, int64(2100), inv.AmountSats)
}

func TestAddInvoiceRejectsErrorStatus(t *testing.T) {
	l := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	_, err := l.AddInvoice(context.Background(), 1, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTrackInvoiceReportsSettlement(t *testing.T) {
	var polls atomic.Int32
	l := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(paymentResponse{PaymentHash: hash})
			return
		}
		assert.True(t, strings.HasSuffix(r.URL.Path, hash))
		json.NewEncoder(w).Encode(paymentResponse{Paid: polls.Add(1) >= 3})
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inv, err := l.AddInvoice(ctx, 1, "")
	require.NoError(t, err)
	updates, errs := l.TrackInvoice(ctx, inv)

	select {
	case u := <-updates:
		require.NotNil(t, u)
		assert.True(t, u.Settled)
	case err := <-errs:
		t.Fatalf("unexpected error %v", err)
	case <-ctx.Done():
		t.Fatal("invoice never settled")
	}
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New("", "key", logrus.New())
	require.Error(t, err)
}
