package payment

import (
	"context"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

// minShopAmount is the smallest rent payment a shop tenant may send.
const minShopAmount = 1000

// shopPaymentWindow is how far back begin looks for an existing ShopPayment
// with the same nonce before creating a new one, so network retries land on
// the row the first attempt created.
const shopPaymentWindow = 2 * 24 * time.Hour

// shopAdapter settles shop rent. Unlike the per-day kinds the amount is
// payer-chosen and there is no progress soft lock; retry safety comes from
// the nonce-keyed ShopPayment row.
type shopAdapter struct{}

func (shopAdapter) resolve(ctx context.Context, tx Tx, m *market.Market, ref order.Ref, amount int64, _ payable.Progress) (*Payable, error) {
	sh, err := tx.ShopForUpdate(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	if amount < minShopAmount {
		return nil, payable.ErrAmountMismatch
	}

	if sh.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	return &Payable{Ref: ref, Amount: amount, shop: sh}, nil
}

func (shopAdapter) begin(ctx context.Context, tx Tx, pb *Payable, method int, _ payable.Progress) error {
	now := time.Now()

	sp, err := tx.ShopPaymentForUpdate(ctx, pb.shop.ID, pb.Ref.Nonce, method, startOfDay(now).Add(-shopPaymentWindow), now)
	if err != nil {
		return err
	}

	if sp == nil {
		sp = &payable.ShopPayment{
			ShopID: pb.shop.ID,
			Date:   startOfDay(now),
			Nonce:  pb.Ref.Nonce,
			Method: method,
			Amount: pb.Amount,
		}
		if err := tx.CreateShopPayment(ctx, sp); err != nil {
			return err
		}
	}

	pb.shopPayment = sp
	pb.LedgerID = sp.ID
	pb.Paid = sp.PaidAt != nil

	return nil
}

func (shopAdapter) load(ctx context.Context, tx Tx, m *market.Market, link Linkage) (*Payable, error) {
	sh, err := tx.ShopForUpdate(ctx, link.CreateOrderID)
	if err != nil {
		return nil, err
	}

	if sh.MarketID != m.ID {
		return nil, payable.ErrCrossMarket
	}

	sp, err := tx.ShopPaymentByIDForUpdate(ctx, link.OrderID)
	if err != nil {
		return nil, err
	}

	return &Payable{
		Ref:         order.Ref{Kind: order.KindShop, ID: sh.ID, Nonce: sp.Nonce},
		LedgerID:    sp.ID,
		Amount:      sp.Amount,
		Paid:        sp.PaidAt != nil,
		shop:        sh,
		shopPayment: sp,
	}, nil
}

func (shopAdapter) commit(ctx context.Context, tx Tx, pb *Payable) error {
	now := time.Now()
	pb.shopPayment.PaidAt = &now

	return tx.UpdateShopPayment(ctx, pb.shopPayment)
}

func (shopAdapter) cancel(ctx context.Context, tx Tx, pb *Payable) error {
	pb.shopPayment.Amount = 0
	pb.shopPayment.PaidAt = nil

	return tx.UpdateShopPayment(ctx, pb.shopPayment)
}
