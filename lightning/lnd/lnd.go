package lnd

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/lightninglabs/lndclient"
	"github.com/lightningnetwork/lnd/invoices"
	"github.com/lightningnetwork/lnd/lnrpc/invoicesrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/sirupsen/logrus"

	"github.com/sebdeveloper6952/gojobs/lightning"
)

type lnd struct {
	svc *lndclient.GrpcLndServices
	log logrus.FieldLogger
}

func New(
	address string,
	grpcPort string,
	macaroonHex string,
	tlsData string,
	network lndclient.Network,
	log logrus.FieldLogger,
) (lightning.Service, error) {
	svc, err := lndclient.NewLndServices(&lndclient.LndServicesConfig{
		LndAddress:        fmt.Sprintf("%s:%s", address, grpcPort),
		Network:           network,
		CustomMacaroonHex: macaroonHex,
		TLSData:           tlsData,
	})
	if err != nil {
		return nil, err
	}

	return &lnd{
		svc: svc,
		log: log,
	}, nil
}

func (l *lnd) AddInvoice(
	ctx context.Context,
	amountSats int64,
	memo string,
) (*lightning.Invoice, error) {
	preimage := &lntypes.Preimage{}
	if _, err := rand.Read(preimage[:]); err != nil {
		return nil, err
	}

	hash, req, err := l.svc.Client.AddInvoice(
		ctx,
		&invoicesrpc.AddInvoiceData{
			Memo:     memo,
			Value:    lnwire.MilliSatoshi(amountSats * 1000),
			Preimage: preimage,
		},
	)
	if err != nil {
		return nil, err
	}
	l.log.Debugf("[lnd] added invoice %s for %d sats", hash, amountSats)

	return &lightning.Invoice{
		Hash:       hash,
		PayReq:     req,
		AmountSats: amountSats,
	}, nil
}

func (l *lnd) TrackInvoice(
	ctx context.Context,
	invoice *lightning.Invoice,
) (chan *lightning.InvoiceUpdate, chan error) {
	updates := make(chan *lightning.InvoiceUpdate)
	errors := make(chan error)

	go func() {
		defer close(updates)
		defer close(errors)

		u, errs, err := l.svc.Invoices.SubscribeSingleInvoice(
			ctx,
			invoice.Hash,
		)
		if err != nil {
			errors <- err
			return
		}

		for {
			select {
			case update := <-u:
				switch update.State {
				case invoices.ContractSettled:
					updates <- &lightning.InvoiceUpdate{
						Settled: true,
					}
					return
				case invoices.ContractCanceled:
					errors <- fmt.Errorf("invoice %s canceled", invoice.Hash)
					return
				}
			case err := <-errs:
				errors <- err
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, errors
}
