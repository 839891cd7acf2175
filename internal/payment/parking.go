package payment

import (
	"context"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

// parkingAdapter settles a batch of unpaid visits in one payment. The
// reference id is a commitment over the exact row set being settled; resolve
// re-derives the set from the nonce query and rejects the reference if the
// set drifted since the quote.
type parkingAdapter struct{}

func (parkingAdapter) resolve(ctx context.Context, tx Tx, m *market.Market, ref order.Ref, amount int64, own payable.Progress) (*Payable, error) {
	pk, err := tx.ParkingForUpdate(ctx, order.CommitmentParkingID(ref.ID))
	if err != nil {
		return nil, err
	}

	if pk.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	q, err := order.ParseParkingNonce(ref.Nonce)
	if err != nil {
		return nil, payable.ErrNotFound
	}

	visits, err := tx.UnpaidVisitsForUpdate(ctx, pk.ID, q, parkingLookback(time.Now()))
	if err != nil {
		return nil, err
	}

	if len(visits) == 0 {
		return nil, payable.ErrNotFound
	}

	ids := make([]int64, len(visits))

	var total int64

	for i, v := range visits {
		ids[i] = v.ID
		total += v.Price
	}

	if order.BatchCommitment(pk.ID, ids) != ref.ID {
		return nil, payable.ErrNotFound
	}

	if amount != total {
		return nil, payable.ErrAmountMismatch
	}

	for _, v := range visits {
		if v.Paid {
			return nil, payable.ErrAlreadyPaid
		}

		if v.Progress != payable.ProgressNone && v.Progress != own {
			return nil, payable.ErrInProgress
		}
	}

	return &Payable{
		Ref:      ref,
		LedgerID: ref.ID,
		VisitIDs: ids,
		Amount:   total,
		parking:  pk,
		visits:   visits,
	}, nil
}

func (parkingAdapter) begin(ctx context.Context, tx Tx, pb *Payable, method int, own payable.Progress) error {
	for _, v := range pb.visits {
		switch v.Progress {
		case payable.ProgressNone:
			v.Method = method
			v.Progress = own

			if err := tx.UpdateVisit(ctx, v); err != nil {
				return err
			}
		case own:
		default:
			return payable.ErrInProgress
		}
	}

	pb.Progress = own

	return nil
}

func (parkingAdapter) load(ctx context.Context, tx Tx, m *market.Market, link Linkage) (*Payable, error) {
	pk, err := tx.ParkingForUpdate(ctx, order.CommitmentParkingID(link.CreateOrderID))
	if err != nil {
		return nil, err
	}

	if pk.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	visits, err := tx.VisitsByIDForUpdate(ctx, link.Data)
	if err != nil {
		return nil, err
	}

	if len(visits) == 0 {
		return nil, payable.ErrNotFound
	}

	ids := make([]int64, len(visits))

	var total int64

	paid := true

	for i, v := range visits {
		ids[i] = v.ID
		total += v.Price
		paid = paid && v.Paid
	}

	return &Payable{
		Ref:      order.Ref{Kind: order.KindParking, ID: link.CreateOrderID},
		LedgerID: link.CreateOrderID,
		VisitIDs: ids,
		Amount:   total,
		Paid:     paid,
		parking:  pk,
		visits:   visits,
	}, nil
}

func (parkingAdapter) commit(ctx context.Context, tx Tx, pb *Payable) error {
	now := time.Now()

	for _, v := range pb.visits {
		if v.Paid {
			return payable.ErrAlreadyPaid
		}

		v.Paid = true
		v.PaidAt = &now
		v.Progress = payable.ProgressNone

		if err := tx.UpdateVisit(ctx, v); err != nil {
			return err
		}
	}

	return nil
}

func (parkingAdapter) cancel(ctx context.Context, tx Tx, pb *Payable) error {
	for _, v := range pb.visits {
		v.Paid = false
		v.PaidAt = nil
		v.Method = 0
		v.Progress = payable.ProgressNone

		if err := tx.UpdateVisit(ctx, v); err != nil {
			return err
		}
	}

	return nil
}
