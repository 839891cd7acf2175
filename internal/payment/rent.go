package payment

import (
	"context"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

// rentAdapter settles one numbered rented thing for one calendar day. The
// reference id packs market, thing and unit number into one composite.
type rentAdapter struct{}

func (rentAdapter) resolve(ctx context.Context, tx Tx, m *market.Market, ref order.Ref, amount int64, own payable.Progress) (*Payable, error) {
	marketID, thingID, number := order.SplitRent(ref.ID)

	td, err := tx.ThingDataForUpdate(ctx, marketID, thingID)
	if err != nil {
		return nil, err
	}

	if number > td.Count || number < 0 {
		return nil, payable.ErrNotFound
	}

	now := time.Now()
	if !m.IsWorkingDay(now) {
		return nil, payable.ErrMarketClosed
	}

	ts, err := tx.ThingStatusForUpdate(ctx, td.MarketID, td.ThingID, number, startOfDay(now))
	if err != nil {
		return nil, err
	}

	price := td.Price
	if ts != nil {
		price = ts.Price
	}

	if amount != price {
		return nil, payable.ErrAmountMismatch
	}

	if ts != nil && ts.Paid {
		return nil, payable.ErrAlreadyPaid
	}

	if td.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	if ts != nil && ts.Progress != payable.ProgressNone && ts.Progress != own {
		return nil, payable.ErrInProgress
	}

	pb := &Payable{Ref: ref, Amount: price, thing: td, thingStatus: ts}
	if ts != nil {
		pb.LedgerID = ts.ID
		pb.Progress = ts.Progress
		pb.Paid = ts.Paid
	}

	return pb, nil
}

func (rentAdapter) begin(ctx context.Context, tx Tx, pb *Payable, method int, own payable.Progress) error {
	ts := pb.thingStatus
	if ts == nil {
		_, _, number := order.SplitRent(pb.Ref.ID)
		ts = &payable.ThingStatus{
			MarketID: pb.thing.MarketID,
			ThingID:  pb.thing.ThingID,
			Number:   number,
			Date:     startOfDay(time.Now()),
			Method:   method,
			Progress: own,
			Price:    pb.thing.Price,
		}
		if err := tx.CreateThingStatus(ctx, ts); err != nil {
			return err
		}

		pb.thingStatus = ts
		pb.LedgerID = ts.ID
		pb.Progress = own

		return nil
	}

	switch ts.Progress {
	case payable.ProgressNone:
		ts.Method = method
		ts.Progress = own
		pb.Progress = own

		return tx.UpdateThingStatus(ctx, ts)
	case own:
		return nil
	}

	return payable.ErrInProgress
}

func (rentAdapter) load(ctx context.Context, tx Tx, m *market.Market, link Linkage) (*Payable, error) {
	marketID, thingID, _ := order.SplitRent(link.CreateOrderID)

	td, err := tx.ThingDataForUpdate(ctx, marketID, thingID)
	if err != nil {
		return nil, err
	}

	if td.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	ts, err := tx.ThingStatusByIDForUpdate(ctx, link.OrderID)
	if err != nil {
		return nil, err
	}

	return &Payable{
		Ref:         order.Ref{Kind: order.KindRent, ID: link.CreateOrderID},
		LedgerID:    ts.ID,
		Amount:      ts.Price,
		Progress:    ts.Progress,
		Paid:        ts.Paid,
		thing:       td,
		thingStatus: ts,
	}, nil
}

func (rentAdapter) commit(ctx context.Context, tx Tx, pb *Payable) error {
	ts := pb.thingStatus
	if ts.Paid {
		return payable.ErrAlreadyPaid
	}

	now := time.Now()
	if !ts.Occupied {
		ts.Occupied = true
		ts.OccupiedAt = &now
	}

	ts.Paid = true
	ts.PaidAt = &now
	ts.Progress = payable.ProgressNone

	return tx.UpdateThingStatus(ctx, ts)
}

func (rentAdapter) cancel(ctx context.Context, tx Tx, pb *Payable) error {
	ts := pb.thingStatus
	ts.Paid = false
	ts.PaidAt = nil
	ts.Method = 0
	ts.Progress = payable.ProgressNone

	return tx.UpdateThingStatus(ctx, ts)
}
