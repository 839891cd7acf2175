package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

// ClickPrepareParams carries the prepare step of the two-phase Click flow.
// Amount is in whole soum, as Click sends it.
type ClickPrepareParams struct {
	TransID  int64
	PaydocID int64
	Ref      string
	Amount   int64
}

type ClickCompleteParams struct {
	TransID   int64
	PrepareID int64
	Amount    int64
	Error     int
}

// ClickPrepare resolves the order reference, claims the payable's soft lock
// and records a prepared transaction. A second prepare against the same
// order the same day fails with ErrAlreadyPrepared; the ledger row, not the
// soft lock, is what makes the race single-winner.
func (s *Service) ClickPrepare(ctx context.Context, m *market.Market, p ClickPrepareParams) (*ClickRecord, error) {
	ref, err := order.Parse(p.Ref)
	if err != nil {
		return nil, payable.ErrNotFound
	}

	ad, ok := s.adapters[ref.Kind]
	if !ok {
		return nil, payable.ErrNotFound
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	pb, err := ad.resolve(ctx, tx, m, ref, p.Amount, payable.ProgressClick)
	if err != nil {
		return nil, err
	}

	if err := ad.begin(ctx, tx, pb, payable.MethodClick, payable.ProgressClick); err != nil {
		return nil, err
	}

	now := time.Now()
	from := startOfDay(now)

	rec := &ClickRecord{
		MarketID:      m.ID,
		OrderKind:     ref.Kind,
		OrderID:       pb.LedgerID,
		CreateOrderID: ref.ID,
		TransID:       p.TransID,
		PaydocID:      p.PaydocID,
		Amount:        pb.Amount,
		Status:        ClickPrepared,
		PrepareTime:   now,
		Data:          pb.VisitIDs,
	}

	got, created, err := tx.GetOrCreateClick(ctx, rec, from, from.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("get or create click record: %w", err)
	}

	if !created {
		return nil, ErrAlreadyPrepared
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return got, nil
}

// ClickComplete finishes or voids a prepared transaction. Rows are locked in
// the same order prepare locks them, so the ledger record is read without a
// lock first, the payable rows are locked through the adapter, and only then
// is the record itself locked and its state re-checked.
func (s *Service) ClickComplete(ctx context.Context, m *market.Market, p ClickCompleteParams) (*ClickRecord, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rec, err := tx.ClickByID(ctx, p.PrepareID)
	if err != nil {
		return nil, err
	}

	if rec.MarketID != m.ID {
		return nil, ErrTxnNotFound
	}

	if rec.TransID != p.TransID {
		return nil, ErrExternalIDMismatch
	}

	ad, ok := s.adapters[rec.OrderKind]
	if !ok {
		return nil, ErrTxnNotFound
	}

	pb, err := ad.load(ctx, tx, m, rec.Linkage())
	if err != nil {
		return nil, err
	}

	rec, err = tx.ClickByIDForUpdate(ctx, p.PrepareID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if p.Error != 0 {
		if rec.Status == ClickCompleted {
			return nil, ErrAlreadyCompleted
		}

		if rec.Status == ClickPrepared {
			rec.Status = p.Error
			rec.CompleteTime = &now

			if err := tx.UpdateClick(ctx, rec); err != nil {
				return nil, err
			}

			if err := ad.cancel(ctx, tx, pb); err != nil {
				return nil, err
			}
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}

		return rec, ErrCancelled
	}

	switch {
	case rec.Status == ClickCompleted:
		return nil, ErrAlreadyCompleted
	case rec.Status != ClickPrepared:
		return nil, ErrCancelled
	}

	if p.Amount != rec.Amount {
		return nil, payable.ErrAmountMismatch
	}

	if err := ad.commit(ctx, tx, pb); err != nil {
		return nil, err
	}

	rec.Status = ClickCompleted
	rec.CompleteTime = &now

	if err := tx.UpdateClick(ctx, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return rec, nil
}
