/*
disposal.go - Terminal transitions off the books

PURPOSE:
  Disposal ends an asset's life exactly once. Every flow converges on
  dispose(), which computes the realized gain or loss against net book
  value, stamps the outcome, and moves the asset to Disposed. Disposed
  is terminal: every later mutation returns ErrAssetDisposed.

GAIN/LOSS:
  sale, insurance_claim  proceeds - netBookValue
  scrap, donation,
  lost_stolen            -netBookValue (remaining value written off)
  transfer               exactly zero; the value moves, nothing realizes
*/
package asset

import (
	"time"

	"github.com/warp/asset-engine/money"
)

// Sell disposes of the asset for a positive sale amount. GainLoss is
// saleAmount - netBookValue at the time of sale.
func (a *FixedAsset) Sell(date time.Time, saleAmount money.Amount, buyer, invoiceRef string) (*DisposalOutcome, error) {
	if !saleAmount.IsPositive() {
		return nil, ErrSaleAmountRequired
	}
	if saleAmount.Currency() != a.currency {
		return nil, &money.MismatchError{Left: a.currency, Right: saleAmount.Currency()}
	}
	out, err := a.dispose(DisposalSale, date, &saleAmount, "")
	if err != nil {
		return nil, err
	}
	out.Buyer = buyer
	out.InvoiceRef = invoiceRef
	return out, nil
}

// Scrap writes the asset off with no proceeds. The remaining net book
// value is realized as a loss.
func (a *FixedAsset) Scrap(date time.Time, reason string) (*DisposalOutcome, error) {
	return a.dispose(DisposalScrap, date, nil, reason)
}

// Transfer moves the asset to another unit. No value is realized; the
// outcome records the receiving unit in the Buyer field and a gain/loss
// of exactly zero.
func (a *FixedAsset) Transfer(date time.Time, target, reason string) (*DisposalOutcome, error) {
	out, err := a.dispose(DisposalTransfer, date, nil, reason)
	if err != nil {
		return nil, err
	}
	out.Buyer = target
	return out, nil
}

// Dispose runs a disposal of an arbitrary type. saleAmount carries the
// proceeds for sale and insurance_claim flows and is ignored otherwise.
func (a *FixedAsset) Dispose(dtype DisposalType, date time.Time, saleAmount *money.Amount, reason string) (*DisposalOutcome, error) {
	if saleAmount != nil && saleAmount.Currency() != a.currency {
		return nil, &money.MismatchError{Left: a.currency, Right: saleAmount.Currency()}
	}
	return a.dispose(dtype, date, saleAmount, reason)
}

// dispose is the single convergence point for every disposal flow.
func (a *FixedAsset) dispose(dtype DisposalType, date time.Time, saleAmount *money.Amount, reason string) (*DisposalOutcome, error) {
	if a.status == StatusDisposed {
		return nil, ErrAlreadyDisposed
	}
	d := midnightUTC(date)
	if d.Before(a.acquisitionDate) {
		return nil, &DisposalDateError{AssetID: a.id, DisposalDate: d, AcquisitionDate: a.acquisitionDate}
	}

	gainLoss, err := a.realizedGainLoss(dtype, saleAmount)
	if err != nil {
		return nil, err
	}

	var sale *money.Amount
	if saleAmount != nil {
		s := *saleAmount
		sale = &s
	}
	a.disposal = &DisposalOutcome{
		Type:       dtype,
		Date:       d,
		SaleAmount: sale,
		GainLoss:   gainLoss,
		Reason:     reason,
	}
	a.status = StatusDisposed
	return a.disposal, nil
}

func (a *FixedAsset) realizedGainLoss(dtype DisposalType, saleAmount *money.Amount) (money.Amount, error) {
	switch dtype {
	case DisposalTransfer:
		return money.Zero(a.currency), nil
	case DisposalSale, DisposalInsuranceClaim:
		proceeds := money.Zero(a.currency)
		if saleAmount != nil {
			proceeds = *saleAmount
		}
		return proceeds.Sub(a.netBookValue)
	default:
		// Scrap, donation, loss: the remaining book value writes off.
		return a.netBookValue.Neg(), nil
	}
}
