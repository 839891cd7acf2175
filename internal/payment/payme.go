package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

// PaymeCreateParams carries CreateTransaction. Amount is already converted
// from tiyin to whole soum by the handler. The recorded create time is the
// server's, and it is what the stale-transaction window is measured from.
type PaymeCreateParams struct {
	PaymeID string
	Ref     string
	Amount  int64
}

// PaymeCheckPerform validates that the account reference names a payable the
// claimed amount can settle, without claiming it. Unlike create, the check
// holds no progress tag of its own, so any in-flight settlement, including
// one held under this network's tag, fails with ErrInProgress.
func (s *Service) PaymeCheckPerform(ctx context.Context, m *market.Market, refStr string, amount int64) (*Payable, error) {
	ref, err := order.Parse(refStr)
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

	pb, err := ad.resolve(ctx, tx, m, ref, amount, payable.ProgressNone)
	if err != nil {
		return nil, err
	}

	return pb, nil
}

// PaymeCreate records a created transaction after claiming the payable's soft
// lock. A replay with the same PaymeID returns the stored record; a second
// PaymeID racing the same order loses with ErrExternalIDMismatch. A created
// record older than the create timeout is cancelled with the timeout reason
// and the call fails with ErrStateConflict.
func (s *Service) PaymeCreate(ctx context.Context, m *market.Market, p PaymeCreateParams) (*PaymeRecord, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now()
	from, to := lookupRange(now)

	rec, err := tx.PaymeByID(ctx, p.PaymeID, from, to)
	if err == nil {
		if rec.MarketID != m.ID {
			return nil, ErrTxnNotFound
		}

		if rec.State != PaymeCreated {
			return nil, ErrStateConflict
		}

		if now.Sub(rec.CreateTime) > createTimeout {
			if err := s.expire(ctx, tx, m, rec); err != nil {
				return nil, err
			}

			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("commit: %w", err)
			}

			return nil, ErrStateConflict
		}

		return rec, nil
	}

	if !errors.Is(err, ErrTxnNotFound) {
		return nil, err
	}

	ref, err := order.Parse(p.Ref)
	if err != nil {
		return nil, payable.ErrNotFound
	}

	ad, ok := s.adapters[ref.Kind]
	if !ok {
		return nil, payable.ErrNotFound
	}

	pb, err := ad.resolve(ctx, tx, m, ref, p.Amount, payable.ProgressPayme)
	if err != nil {
		return nil, err
	}

	if err := ad.begin(ctx, tx, pb, payable.MethodPayme, payable.ProgressPayme); err != nil {
		return nil, err
	}

	rec = &PaymeRecord{
		MarketID:         m.ID,
		OrderKind:        ref.Kind,
		OrderID:          pb.LedgerID,
		PaymeID:          p.PaymeID,
		CreateOrderID:    ref.ID,
		CreateOrderNonce: ref.Nonce,
		Amount:           pb.Amount,
		State:            PaymeCreated,
		CreateTime:       now,
		Data:             pb.VisitIDs,
	}

	// The active-record window for the same order is today, not the full
	// lookup window: yesterday's abandoned transactions are handled by the
	// create-timeout path, not by reuse.
	day := startOfDay(now)

	got, created, err := tx.GetOrCreatePayme(ctx, rec, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("get or create payme record: %w", err)
	}

	if !created {
		if got.State != PaymeCreated {
			return nil, ErrStateConflict
		}

		if got.PaymeID != p.PaymeID {
			return nil, ErrExternalIDMismatch
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return got, nil
}

// PaymePerform marks a created transaction performed and settles its payable.
// Performing an already performed transaction is an idempotent replay.
func (s *Service) PaymePerform(ctx context.Context, m *market.Market, paymeID string) (*PaymeRecord, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now()
	from, to := lookupRange(now)

	rec, err := tx.PaymeByID(ctx, paymeID, from, to)
	if err != nil {
		return nil, err
	}

	if rec.MarketID != m.ID {
		return nil, ErrTxnNotFound
	}

	if rec.State == PaymePerformed {
		return rec, nil
	}

	if rec.State != PaymeCreated {
		return nil, ErrStateConflict
	}

	ad, ok := s.adapters[rec.OrderKind]
	if !ok {
		return nil, ErrTxnNotFound
	}

	pb, err := ad.load(ctx, tx, m, rec.Linkage())
	if err != nil {
		return nil, err
	}

	rec, err = tx.PaymeByIDForUpdate(ctx, paymeID, from, to)
	if err != nil {
		return nil, err
	}

	switch {
	case rec.State == PaymePerformed:
		return rec, nil
	case rec.State != PaymeCreated:
		return nil, ErrStateConflict
	}

	if now.Sub(rec.CreateTime) > createTimeout {
		if err := s.cancelRecord(ctx, tx, ad, pb, rec, ReasonTimeout); err != nil {
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}

		return nil, ErrStateConflict
	}

	if err := ad.commit(ctx, tx, pb); err != nil {
		return nil, err
	}

	rec.State = PaymePerformed
	rec.PerformTime = &now

	if err := tx.UpdatePayme(ctx, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return rec, nil
}

// PaymeCancel voids a transaction. Cancelling from the performed state rolls
// the payable's paid flags back; cancelling a cancelled transaction replays.
func (s *Service) PaymeCancel(ctx context.Context, m *market.Market, paymeID string, reason int) (*PaymeRecord, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	from, to := lookupRange(time.Now())

	rec, err := tx.PaymeByID(ctx, paymeID, from, to)
	if err != nil {
		return nil, err
	}

	if rec.MarketID != m.ID {
		return nil, ErrTxnNotFound
	}

	if rec.State < 0 {
		return rec, nil
	}

	ad, ok := s.adapters[rec.OrderKind]
	if !ok {
		return nil, ErrTxnNotFound
	}

	pb, err := ad.load(ctx, tx, m, rec.Linkage())
	if err != nil {
		return nil, err
	}

	rec, err = tx.PaymeByIDForUpdate(ctx, paymeID, from, to)
	if err != nil {
		return nil, err
	}

	if rec.State < 0 {
		return rec, nil
	}

	if err := s.cancelRecord(ctx, tx, ad, pb, rec, reason); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return rec, nil
}

// PaymeCheck returns the stored transaction for CheckTransaction.
func (s *Service) PaymeCheck(ctx context.Context, m *market.Market, paymeID string) (*PaymeRecord, error) {
	from, to := lookupRange(time.Now())

	rec, err := s.repo.PaymeByID(ctx, paymeID, from, to)
	if err != nil {
		return nil, err
	}

	if rec.MarketID != m.ID {
		return nil, ErrTxnNotFound
	}

	return rec, nil
}

// PaymeStatement lists the market's transactions in the requested window.
func (s *Service) PaymeStatement(ctx context.Context, m *market.Market, from, to time.Time) ([]*PaymeRecord, error) {
	return s.repo.ListPayme(ctx, m.ID, from, to)
}

// expire cancels a stale created record, locking payable rows before
// re-locking the record like every other mutating path.
func (s *Service) expire(ctx context.Context, tx Tx, m *market.Market, rec *PaymeRecord) error {
	ad, ok := s.adapters[rec.OrderKind]
	if !ok {
		return ErrTxnNotFound
	}

	pb, err := ad.load(ctx, tx, m, rec.Linkage())
	if err != nil {
		return err
	}

	from, to := lookupRange(time.Now())

	rec2, err := tx.PaymeByIDForUpdate(ctx, rec.PaymeID, from, to)
	if err != nil {
		return err
	}

	if rec2.State != PaymeCreated {
		return nil
	}

	return s.cancelRecord(ctx, tx, ad, pb, rec2, ReasonTimeout)
}

func (s *Service) cancelRecord(ctx context.Context, tx Tx, ad adapter, pb *Payable, rec *PaymeRecord, reason int) error {
	if err := ad.cancel(ctx, tx, pb); err != nil {
		return err
	}

	now := time.Now()
	rec.State = -rec.State
	rec.Reason = &reason
	rec.CancelTime = &now

	return tx.UpdatePayme(ctx, rec)
}
