// Package lightning creates and watches the invoices that pay for stake
// top-ups.
package lightning

import (
	"context"

	"github.com/lightningnetwork/lnd/lntypes"
)

type Invoice struct {
	Hash       lntypes.Hash
	PayReq     string
	AmountSats int64
}

type InvoiceUpdate struct {
	Settled bool
}

type Service interface {
	AddInvoice(ctx context.Context, amountSats int64, memo string) (*Invoice, error)
	// TrackInvoice reports on the first channel once the invoice settles.
	// Both channels are closed when tracking stops.
	TrackInvoice(ctx context.Context, invoice *Invoice) (chan *InvoiceUpdate, chan error)
}
