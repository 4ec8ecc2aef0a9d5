package lnbits

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/gojobs/lightning"
)

const pollInterval = time.Second

type lnbits struct {
	url    string
	key    string
	client *http.Client
	log    logrus.FieldLogger
	poll   time.Duration
}

type payment struct {
	Out    bool   `json:"out"`
	Amount int64  `json:"amount"`
	Memo   string `json:"memo,omitempty"`
}

type paymentResponse struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
	Paid           bool   `json:"paid"`
}

func New(
	url string,
	key string,
	log logrus.FieldLogger,
) (lightning.Service, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("lnbits: url and key are required")
	}
	return &lnbits{
		url:    url,
		key:    key,
		client: http.DefaultClient,
		log:    log,
		poll:   pollInterval,
	}, nil
}

func (l *lnbits) AddInvoice(ctx context.Context, amountSats int64, memo string) (*lightning.Invoice, error) {
	body := &payment{
		Out:    false,
		Amount: amountSats,
		Memo:   memo,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		l.url+"/api/v1/payments",
		bytes.NewBuffer(bodyBytes),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", l.key)
	req.Header.Set("Content-Type", "application/json")

	target := &paymentResponse{}
	if err := l.do(req, target); err != nil {
		return nil, err
	}

	hash, err := lntypes.MakeHashFromStr(target.PaymentHash)
	if err != nil {
		return nil, err
	}
	l.log.Debugf("[lnbits] added invoice %s for %d sats", hash, amountSats)

	return &lightning.Invoice{
		Hash:       hash,
		PayReq:     target.PaymentRequest,
		AmountSats: amountSats,
	}, nil
}

func (l *lnbits) TrackInvoice(ctx context.Context, invoice *lightning.Invoice) (chan *lightning.InvoiceUpdate, chan error) {
	updates := make(chan *lightning.InvoiceUpdate)
	errors := make(chan error)

	go func() {
		defer close(updates)
		defer close(errors)

		ticker := time.NewTicker(l.poll)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				req, err := http.NewRequestWithContext(
					ctx,
					http.MethodGet,
					l.url+"/api/v1/payments/"+invoice.Hash.String(),
					http.NoBody,
				)
				if err != nil {
					errors <- err
					return
				}
				req.Header.Set("X-Api-Key", l.key)

				target := &paymentResponse{}
				if err := l.do(req, target); err != nil {
					if ctx.Err() != nil {
						return
					}
					errors <- err
					return
				}

				if target.Paid {
					updates <- &lightning.InvoiceUpdate{
						Settled: true,
					}
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, errors
}

func (l *lnbits) do(req *http.Request, target any) error {
	res, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("lnbits: %s %s: %s", req.Method, req.URL.Path, res.Status)
	}
	return json.NewDecoder(res.Body).Decode(target)
}
