package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/lightning"
	"github.com/sebdeveloper6952/gojobs/nostr"
)

var ErrNoLightning = errors.New("lightning top-ups are disabled")

// TopUp returns an invoice for sats. Once it settles, sats * unitsPerSat
// base units are minted to account. settled, when not nil, receives the
// result of the mint or the tracking error.
func (e *Engine) TopUp(
	ctx context.Context,
	account domain.Address,
	sats int64,
	settled func(error),
) (*lightning.Invoice, error) {
	if e.lnSvc == nil {
		return nil, ErrNoLightning
	}
	if sats <= 0 {
		return nil, domain.Fail(OpTopUp, domain.ErrInvalidAmount, "%d sats", sats)
	}
	if settled == nil {
		settled = func(error) {}
	}

	invoice, err := e.lnSvc.AddInvoice(ctx, sats, fmt.Sprintf("gojobs top-up for %s", account))
	if err != nil {
		return nil, err
	}
	e.log.Infof("[topup] invoice %s for %d sats to %s", invoice.Hash, sats, account)

	go func() {
		trackCtx, cancel := ctx, context.CancelFunc(func() {})
		if expiry := e.cfg.Lightning.InvoiceExpiry; expiry > 0 {
			trackCtx, cancel = context.WithTimeout(ctx, expiry)
		}
		defer cancel()

		updates, errs := e.lnSvc.TrackInvoice(trackCtx, invoice)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					settled(fmt.Errorf("invoice %s: tracking stopped", invoice.Hash))
					return
				}
				if !update.Settled {
					continue
				}
				err := e.mint(ctx, account, invoice)
				if err != nil {
					e.log.Errorf("[topup] mint for %s %+v", invoice.Hash, err)
				}
				settled(err)
				return
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				e.log.Errorf("[topup] track invoice %s %+v", invoice.Hash, err)
				settled(err)
				return
			case <-trackCtx.Done():
				e.log.Warnf("[topup] invoice %s expired", invoice.Hash)
				settled(trackCtx.Err())
				return
			}
		}
	}()

	return invoice, nil
}

func (e *Engine) mint(ctx context.Context, account domain.Address, invoice *lightning.Invoice) error {
	amount := e.unitsPerSat.MulUint64(uint64(invoice.AmountSats))
	return e.exec(ctx, "mint", func() error {
		if err := e.bank.Mint(e.asset, account, amount); err != nil {
			return err
		}
		e.buffer.Emit(domain.TokensMinted{
			Account: account,
			Amount:  amount,
			Invoice: invoice.Hash.String(),
		})
		return nil
	})
}

func (e *Engine) handleTopUp(ctx context.Context, action *nostr.Action) {
	sats, err := action.Uint("sats")
	if err == nil && sats == 0 {
		err = domain.Fail(OpTopUp, domain.ErrInvalidAmount, "0 sats")
	}
	var invoice *lightning.Invoice
	if err == nil {
		invoice, err = e.TopUp(ctx, action.Caller, int64(sats), func(err error) {
			if err != nil {
				e.send(nostr.NewFeedbackEvent(e.pk, action, nostr.StatusError, err.Error()), action.Relays...)
				return
			}
			result, err := nostr.NewResultEvent(e.pk, action, amountResult{Amount: e.unitsPerSat.MulUint64(sats)})
			if err != nil {
				e.log.Errorf("[topup] result event %+v", err)
				return
			}
			e.send(result, action.Relays...)
		})
	}
	if err != nil {
		e.send(nostr.NewFeedbackEvent(e.pk, action, nostr.StatusError, err.Error()), action.Relays...)
		return
	}

	e.send(nostr.NewPaymentRequiredEvent(e.pk, action, invoice.AmountSats, invoice.PayReq), action.Relays...)
}
