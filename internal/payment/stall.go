package payment

import (
	"context"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

// stallAdapter settles one stall for one calendar day. The StallStatus row
// is created lazily on the first settlement attempt; until then the stall's
// master price is authoritative.
type stallAdapter struct{}

func (stallAdapter) resolve(ctx context.Context, tx Tx, m *market.Market, ref order.Ref, amount int64, own payable.Progress) (*Payable, error) {
	st, err := tx.StallForUpdate(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !m.IsWorkingDay(now) {
		return nil, payable.ErrMarketClosed
	}

	ss, err := tx.StallStatusForUpdate(ctx, st.ID, startOfDay(now))
	if err != nil {
		return nil, err
	}

	price := st.Price
	if ss != nil {
		price = ss.Price
	}

	if amount != price {
		return nil, payable.ErrAmountMismatch
	}

	if ss != nil && ss.Paid {
		return nil, payable.ErrAlreadyPaid
	}

	if st.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	if ss != nil && ss.Progress != payable.ProgressNone && ss.Progress != own {
		return nil, payable.ErrInProgress
	}

	pb := &Payable{Ref: ref, Amount: price, stall: st, stallStatus: ss}
	if ss != nil {
		pb.LedgerID = ss.ID
		pb.Progress = ss.Progress
		pb.Paid = ss.Paid
	}

	return pb, nil
}

func (stallAdapter) begin(ctx context.Context, tx Tx, pb *Payable, method int, own payable.Progress) error {
	ss := pb.stallStatus
	if ss == nil {
		ss = &payable.StallStatus{
			StallID:  pb.stall.ID,
			Date:     startOfDay(time.Now()),
			Method:   method,
			Progress: own,
			Price:    pb.stall.Price,
		}
		if err := tx.CreateStallStatus(ctx, ss); err != nil {
			return err
		}

		pb.stallStatus = ss
		pb.LedgerID = ss.ID
		pb.Progress = own

		return nil
	}

	switch ss.Progress {
	case payable.ProgressNone:
		ss.Method = method
		ss.Progress = own
		pb.Progress = own

		return tx.UpdateStallStatus(ctx, ss)
	case own:
		return nil
	}

	return payable.ErrInProgress
}

func (stallAdapter) load(ctx context.Context, tx Tx, m *market.Market, link Linkage) (*Payable, error) {
	st, err := tx.StallForUpdate(ctx, link.CreateOrderID)
	if err != nil {
		return nil, err
	}

	if st.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	ss, err := tx.StallStatusByIDForUpdate(ctx, link.OrderID)
	if err != nil {
		return nil, err
	}

	return &Payable{
		Ref:         order.Ref{Kind: order.KindStall, ID: st.ID},
		LedgerID:    ss.ID,
		Amount:      ss.Price,
		Progress:    ss.Progress,
		Paid:        ss.Paid,
		stall:       st,
		stallStatus: ss,
	}, nil
}

func (stallAdapter) commit(ctx context.Context, tx Tx, pb *Payable) error {
	ss := pb.stallStatus
	if ss.Paid {
		return payable.ErrAlreadyPaid
	}

	now := time.Now()
	if !ss.Occupied {
		ss.Occupied = true
		ss.OccupiedAt = &now
	}

	ss.Paid = true
	ss.PaidAt = &now
	ss.Progress = payable.ProgressNone

	return tx.UpdateStallStatus(ctx, ss)
}

func (stallAdapter) cancel(ctx context.Context, tx Tx, pb *Payable) error {
	ss := pb.stallStatus
	ss.Paid = false
	ss.PaidAt = nil
	ss.Method = 0
	ss.Progress = payable.ProgressNone

	return tx.UpdateStallStatus(ctx, ss)
}
