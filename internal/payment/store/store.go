package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
	"github.com/bozorpay/bozorpay/internal/payment"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (payment.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning settlement tx: %w", err)
	}

	return &settleTx{tx: dbTx}, nil
}

func (s *Store) PaymeByID(ctx context.Context, paymeID string, from, to time.Time) (*payment.PaymeRecord, error) {
	query := `SELECT ` + selectPaymeColumns + `
		FROM payme_transactions
		WHERE payme_id = $1 AND create_time >= $2 AND create_time <= $3`

	rec, err := scanPayme(s.db.QueryRowContext(ctx, query, paymeID, from, to))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrTxnNotFound
		}

		return nil, fmt.Errorf("getting payme transaction: %w", err)
	}

	return rec, nil
}

func (s *Store) ListPayme(ctx context.Context, marketID int64, from, to time.Time) ([]*payment.PaymeRecord, error) {
	query := `SELECT ` + selectPaymeColumns + `
		FROM payme_transactions
		WHERE market_id = $1 AND create_time >= $2 AND create_time <= $3
		ORDER BY create_time ASC`

	rows, err := s.db.QueryContext(ctx, query, marketID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing payme transactions: %w", err)
	}
	defer rows.Close()

	var recs []*payment.PaymeRecord

	for rows.Next() {
		rec, err := scanPayme(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payme transaction: %w", err)
		}

		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing payme transactions: %w", err)
	}

	return recs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type settleTx struct {
	tx *sql.Tx
}

func (t *settleTx) Commit() error   { return t.tx.Commit() }
func (t *settleTx) Rollback() error { return t.tx.Rollback() }

func (t *settleTx) StallForUpdate(ctx context.Context, id int64) (*payable.Stall, error) {
	query := `SELECT id, market_id, price FROM stalls WHERE id = $1 FOR UPDATE`

	var st payable.Stall

	if err := t.tx.QueryRowContext(ctx, query, id).Scan(&st.ID, &st.MarketID, &st.Price); err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("locking stall: %w", err)
	}

	return &st, nil
}

const selectStallStatusColumns = `
	id, stall_id, date, occupied, occupied_at, paid, paid_at, method, payment_progress, price
`

func scanStallStatus(s scanner) (*payable.StallStatus, error) {
	var ss payable.StallStatus

	if err := s.Scan(
		&ss.ID, &ss.StallID, &ss.Date, &ss.Occupied, &ss.OccupiedAt,
		&ss.Paid, &ss.PaidAt, &ss.Method, &ss.Progress, &ss.Price,
	); err != nil {
		return nil, err
	}

	return &ss, nil
}

func (t *settleTx) StallStatusForUpdate(ctx context.Context, stallID int64, day time.Time) (*payable.StallStatus, error) {
	query := `SELECT ` + selectStallStatusColumns + `
		FROM stall_statuses WHERE stall_id = $1 AND date = $2 FOR UPDATE`

	ss, err := scanStallStatus(t.tx.QueryRowContext(ctx, query, stallID, day))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("locking stall status: %w", err)
	}

	return ss, nil
}

func (t *settleTx) StallStatusByIDForUpdate(ctx context.Context, id int64) (*payable.StallStatus, error) {
	query := `SELECT ` + selectStallStatusColumns + `
		FROM stall_statuses WHERE id = $1 FOR UPDATE`

	ss, err := scanStallStatus(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("locking stall status: %w", err)
	}

	return ss, nil
}

func (t *settleTx) CreateStallStatus(ctx context.Context, ss *payable.StallStatus) error {
	query := `
		INSERT INTO stall_statuses (stall_id, date, occupied, occupied_at, paid, paid_at, method, payment_progress, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		ss.StallID, ss.Date, ss.Occupied, ss.OccupiedAt,
		ss.Paid, ss.PaidAt, ss.Method, ss.Progress, ss.Price,
	).Scan(&ss.ID)
	if err != nil {
		return fmt.Errorf("creating stall status: %w", err)
	}

	return nil
}

func (t *settleTx) UpdateStallStatus(ctx context.Context, ss *payable.StallStatus) error {
	query := `
		UPDATE stall_statuses
		SET occupied = $2, occupied_at = $3, paid = $4, paid_at = $5, method = $6, payment_progress = $7, price = $8
		WHERE id = $1
	`

	if _, err := t.tx.ExecContext(ctx, query,
		ss.ID, ss.Occupied, ss.OccupiedAt, ss.Paid, ss.PaidAt, ss.Method, ss.Progress, ss.Price,
	); err != nil {
		return fmt.Errorf("updating stall status: %w", err)
	}

	return nil
}

func (t *settleTx) ShopForUpdate(ctx context.Context, id int64) (*payable.Shop, error) {
	query := `SELECT id, market_id FROM shops WHERE id = $1 FOR UPDATE`

	var sh payable.Shop

	if err := t.tx.QueryRowContext(ctx, query, id).Scan(&sh.ID, &sh.MarketID); err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("locking shop: %w", err)
	}

	return &sh, nil
}

const selectShopPaymentColumns = `
	id, shop_id, date, nonce, method, amount, paid_at
`

func scanShopPayment(s scanner) (*payable.ShopPayment, error) {
	var sp payable.ShopPayment

	if err := s.Scan(
		&sp.ID, &sp.ShopID, &sp.Date, &sp.Nonce, &sp.Method, &sp.Amount, &sp.PaidAt,
	); err != nil {
		return nil, err
	}

	return &sp, nil
}

func (t *settleTx) ShopPaymentForUpdate(ctx context.Context, shopID, nonce int64, method int, from, to time.Time) (*payable.ShopPayment, error) {
	query := `SELECT ` + selectShopPaymentColumns + `
		FROM shop_payments
		WHERE shop_id = $1 AND nonce = $2 AND method = $3 AND date >= $4 AND date <= $5
		ORDER BY id DESC LIMIT 1 FOR UPDATE`

	sp, err := scanShopPayment(t.tx.QueryRowContext(ctx, query, shopID, nonce, method, from, to))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("locking shop payment: %w", err)
	}

	return sp, nil
}

func (t *settleTx) ShopPaymentByIDForUpdate(ctx context.Context, id int64) (*payable.ShopPayment, error) {
	query := `SELECT ` + selectShopPaymentColumns + `
		FROM shop_payments WHERE id = $1 FOR UPDATE`

	sp, err := scanShopPayment(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("locking shop payment: %w", err)
	}

	return sp, nil
}

func (t *settleTx) CreateShopPayment(ctx context.Context, sp *payable.ShopPayment) error {
	query := `
		INSERT INTO shop_payments (shop_id, date, nonce, method, amount, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		sp.ShopID, sp.Date, sp.Nonce, sp.Method, sp.Amount, sp.PaidAt,
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("creating shop payment: %w", err)
	}

	return nil
}

func (t *settleTx) UpdateShopPayment(ctx context.Context, sp *payable.ShopPayment) error {
	query := `UPDATE shop_payments SET amount = $2, paid_at = $3 WHERE id = $1`

	if _, err := t.tx.ExecContext(ctx, query, sp.ID, sp.Amount, sp.PaidAt); err != nil {
		return fmt.Errorf("updating shop payment: %w", err)
	}

	return nil
}

func (t *settleTx) ThingDataForUpdate(ctx context.Context, marketID, thingID int64) (*payable.ThingData, error) {
	query := `SELECT market_id, thing_id, count, price FROM thing_data
		WHERE market_id = $1 AND thing_id = $2 FOR UPDATE`

	var td payable.ThingData

	if err := t.tx.QueryRowContext(ctx, query, marketID, thingID).Scan(
		&td.MarketID, &td.ThingID, &td.Count, &td.Price,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("locking thing data: %w", err)
	}

	return &td, nil
}

const selectThingStatusColumns = `
	id, market_id, thing_id, number, date, occupied, occupied_at, paid, paid_at, method, payment_progress, price
`

func scanThingStatus(s scanner) (*payable.ThingStatus, error) {
	var ts payable.ThingStatus

	if err := s.Scan(
		&ts.ID, &ts.MarketID, &ts.ThingID, &ts.Number, &ts.Date, &ts.Occupied, &ts.OccupiedAt,
		&ts.Paid, &ts.PaidAt, &ts.Method, &ts.Progress, &ts.Price,
	); err != nil {
		return nil, err
	}

	return &ts, nil
}

func (t *settleTx) ThingStatusForUpdate(ctx context.Context, marketID, thingID int64, number int, day time.Time) (*payable.ThingStatus, error) {
	query := `SELECT ` + selectThingStatusColumns + `
		FROM thing_statuses
		WHERE market_id = $1 AND thing_id = $2 AND number = $3 AND date = $4 FOR UPDATE`

	ts, err := scanThingStatus(t.tx.QueryRowContext(ctx, query, marketID, thingID, number, day))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("locking thing status: %w", err)
	}

	return ts, nil
}

func (t *settleTx) ThingStatusByIDForUpdate(ctx context.Context, id int64) (*payable.ThingStatus, error) {
	query := `SELECT ` + selectThingStatusColumns + `
		FROM thing_statuses WHERE id = $1 FOR UPDATE`

	ts, err := scanThingStatus(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("locking thing status: %w", err)
	}

	return ts, nil
}

func (t *settleTx) CreateThingStatus(ctx context.Context, ts *payable.ThingStatus) error {
	query := `
		INSERT INTO thing_statuses (market_id, thing_id, number, date, occupied, occupied_at, paid, paid_at, method, payment_progress, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		ts.MarketID, ts.ThingID, ts.Number, ts.Date, ts.Occupied, ts.OccupiedAt,
		ts.Paid, ts.PaidAt, ts.Method, ts.Progress, ts.Price,
	).Scan(&ts.ID)
	if err != nil {
		return fmt.Errorf("creating thing status: %w", err)
	}

	return nil
}

func (t *settleTx) UpdateThingStatus(ctx context.Context, ts *payable.ThingStatus) error {
	query := `
		UPDATE thing_statuses
		SET occupied = $2, occupied_at = $3, paid = $4, paid_at = $5, method = $6, payment_progress = $7, price = $8
		WHERE id = $1
	`

	if _, err := t.tx.ExecContext(ctx, query,
		ts.ID, ts.Occupied, ts.OccupiedAt, ts.Paid, ts.PaidAt, ts.Method, ts.Progress, ts.Price,
	); err != nil {
		return fmt.Errorf("updating thing status: %w", err)
	}

	return nil
}

func (t *settleTx) ParkingForUpdate(ctx context.Context, id int64) (*payable.Parking, error) {
	query := `SELECT id, market_id, name, billing_mode FROM parkings WHERE id = $1 FOR UPDATE`

	var pk payable.Parking

	if err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&pk.ID, &pk.MarketID, &pk.Name, &pk.BillingMode,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("locking parking: %w", err)
	}

	return &pk, nil
}

const selectVisitColumns = `
	id, parking_id, date, plate, paid, method, payment_progress, price,
	duration, enter_count, leave_count, enter_at, leave_at, paid_at
`

func scanVisit(s scanner) (*payable.Visit, error) {
	var v payable.Visit

	if err := s.Scan(
		&v.ID, &v.ParkingID, &v.Date, &v.Plate, &v.Paid, &v.Method, &v.Progress, &v.Price,
		&v.Duration, &v.EnterCount, &v.LeaveCount, &v.EnterAt, &v.LeaveAt, &v.PaidAt,
	); err != nil {
		return nil, err
	}

	return &v, nil
}

func (t *settleTx) UnpaidVisitsForUpdate(ctx context.Context, parkingID int64, q order.ParkingQuery, after time.Time) ([]*payable.Visit, error) {
	query := `SELECT ` + selectVisitColumns + `
		FROM parking_visits
		WHERE parking_id = $1 AND NOT paid AND price > 0 AND payment_progress = 0 AND date >= $2`

	args := []any{parkingID, after}

	if q.Plate != "" {
		query += ` AND plate = $3 ORDER BY id ASC`
		args = append(args, q.Plate)
	} else {
		query += ` ORDER BY id ASC LIMIT $3`
		args = append(args, q.Count)
	}

	query += ` FOR UPDATE`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locking unpaid visits: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func (t *settleTx) VisitsByIDForUpdate(ctx context.Context, ids []int64) ([]*payable.Visit, error) {
	query := `SELECT ` + selectVisitColumns + `
		FROM parking_visits
		WHERE id = ANY($1)
		ORDER BY id ASC
		FOR UPDATE`

	rows, err := t.tx.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("locking visits: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func collectVisits(rows *sql.Rows) ([]*payable.Visit, error) {
	var visits []*payable.Visit

	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}

		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading visits: %w", err)
	}

	return visits, nil
}

func (t *settleTx) UpdateVisit(ctx context.Context, v *payable.Visit) error {
	query := `
		UPDATE parking_visits
		SET paid = $2, method = $3, payment_progress = $4, price = $5, paid_at = $6
		WHERE id = $1
	`

	if _, err := t.tx.ExecContext(ctx, query,
		v.ID, v.Paid, v.Method, v.Progress, v.Price, v.PaidAt,
	); err != nil {
		return fmt.Errorf("updating visit: %w", err)
	}

	return nil
}

const selectClickColumns = `
	id, market_id, order_kind, order_id, create_order_id, trans_id, paydoc_id,
	amount, status, prepare_time, complete_time, data
`

func scanClick(s scanner) (*payment.ClickRecord, error) {
	var rec payment.ClickRecord

	var kind string

	var data []byte

	if err := s.Scan(
		&rec.ID, &rec.MarketID, &kind, &rec.OrderID, &rec.CreateOrderID, &rec.TransID, &rec.PaydocID,
		&rec.Amount, &rec.Status, &rec.PrepareTime, &rec.CompleteTime, &data,
	); err != nil {
		return nil, err
	}

	rec.OrderKind = order.Kind(kind)

	ids, err := decodeIDs(data)
	if err != nil {
		return nil, err
	}

	rec.Data = ids

	return &rec, nil
}

// GetOrCreateClick returns the day's prepared record for the same order when
// one exists, locking it, and inserts the given record otherwise.
func (t *settleTx) GetOrCreateClick(ctx context.Context, rec *payment.ClickRecord, from, to time.Time) (*payment.ClickRecord, bool, error) {
	query := `SELECT ` + selectClickColumns + `
		FROM click_transactions
		WHERE order_kind = $1 AND order_id = $2 AND status = $3 AND prepare_time >= $4 AND prepare_time < $5
		ORDER BY id DESC LIMIT 1 FOR UPDATE`

	got, err := scanClick(t.tx.QueryRowContext(ctx, query,
		string(rec.OrderKind), rec.OrderID, payment.ClickPrepared, from, to,
	))
	if err == nil {
		return got, false, nil
	}

	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("finding click transaction: %w", err)
	}

	data, err := encodeIDs(rec.Data)
	if err != nil {
		return nil, false, err
	}

	insert := `
		INSERT INTO click_transactions (market_id, order_kind, order_id, create_order_id, trans_id, paydoc_id, amount, status, prepare_time, complete_time, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err = t.tx.QueryRowContext(ctx, insert,
		rec.MarketID, string(rec.OrderKind), rec.OrderID, rec.CreateOrderID, rec.TransID, rec.PaydocID,
		rec.Amount, rec.Status, rec.PrepareTime, rec.CompleteTime, data,
	).Scan(&rec.ID)
	if err != nil {
		return nil, false, fmt.Errorf("creating click transaction: %w", err)
	}

	return rec, true, nil
}

func (t *settleTx) ClickByID(ctx context.Context, id int64) (*payment.ClickRecord, error) {
	return t.clickByID(ctx, id, false)
}

func (t *settleTx) ClickByIDForUpdate(ctx context.Context, id int64) (*payment.ClickRecord, error) {
	return t.clickByID(ctx, id, true)
}

func (t *settleTx) clickByID(ctx context.Context, id int64, lock bool) (*payment.ClickRecord, error) {
	query := `SELECT ` + selectClickColumns + ` FROM click_transactions WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	rec, err := scanClick(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrTxnNotFound
		}

		return nil, fmt.Errorf("getting click transaction: %w", err)
	}

	return rec, nil
}

func (t *settleTx) UpdateClick(ctx context.Context, rec *payment.ClickRecord) error {
	query := `UPDATE click_transactions SET status = $2, complete_time = $3 WHERE id = $1`

	if _, err := t.tx.ExecContext(ctx, query, rec.ID, rec.Status, rec.CompleteTime); err != nil {
		return fmt.Errorf("updating click transaction: %w", err)
	}

	return nil
}

const selectPaymeColumns = `
	id, market_id, order_kind, order_id, payme_id, create_order_id, create_order_nonce,
	amount, state, reason, create_time, perform_time, cancel_time, data
`

func scanPayme(s scanner) (*payment.PaymeRecord, error) {
	var rec payment.PaymeRecord

	var kind string

	var data []byte

	if err := s.Scan(
		&rec.ID, &rec.MarketID, &kind, &rec.OrderID, &rec.PaymeID, &rec.CreateOrderID, &rec.CreateOrderNonce,
		&rec.Amount, &rec.State, &rec.Reason, &rec.CreateTime, &rec.PerformTime, &rec.CancelTime, &data,
	); err != nil {
		return nil, err
	}

	rec.OrderKind = order.Kind(kind)

	ids, err := decodeIDs(data)
	if err != nil {
		return nil, err
	}

	rec.Data = ids

	return &rec, nil
}

// GetOrCreatePayme returns the active record holding the same order when one
// exists in the window, locking it, and inserts otherwise.
func (t *settleTx) GetOrCreatePayme(ctx context.Context, rec *payment.PaymeRecord, from, to time.Time) (*payment.PaymeRecord, bool, error) {
	query := `SELECT ` + selectPaymeColumns + `
		FROM payme_transactions
		WHERE order_kind = $1 AND order_id = $2 AND state > 0 AND create_time >= $3 AND create_time < $4
		ORDER BY id DESC LIMIT 1 FOR UPDATE`

	got, err := scanPayme(t.tx.QueryRowContext(ctx, query,
		string(rec.OrderKind), rec.OrderID, from, to,
	))
	if err == nil {
		return got, false, nil
	}

	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("finding payme transaction: %w", err)
	}

	data, err := encodeIDs(rec.Data)
	if err != nil {
		return nil, false, err
	}

	insert := `
		INSERT INTO payme_transactions (market_id, order_kind, order_id, payme_id, create_order_id, create_order_nonce, amount, state, reason, create_time, perform_time, cancel_time, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err = t.tx.QueryRowContext(ctx, insert,
		rec.MarketID, string(rec.OrderKind), rec.OrderID, rec.PaymeID, rec.CreateOrderID, rec.CreateOrderNonce,
		rec.Amount, rec.State, rec.Reason, rec.CreateTime, rec.PerformTime, rec.CancelTime, data,
	).Scan(&rec.ID)
	if err != nil {
		return nil, false, fmt.Errorf("creating payme transaction: %w", err)
	}

	return rec, true, nil
}

func (t *settleTx) PaymeByID(ctx context.Context, paymeID string, from, to time.Time) (*payment.PaymeRecord, error) {
	return t.paymeByID(ctx, paymeID, from, to, false)
}

func (t *settleTx) PaymeByIDForUpdate(ctx context.Context, paymeID string, from, to time.Time) (*payment.PaymeRecord, error) {
	return t.paymeByID(ctx, paymeID, from, to, true)
}

func (t *settleTx) paymeByID(ctx context.Context, paymeID string, from, to time.Time, lock bool) (*payment.PaymeRecord, error) {
	query := `SELECT ` + selectPaymeColumns + `
		FROM payme_transactions
		WHERE payme_id = $1 AND create_time >= $2 AND create_time <= $3`
	if lock {
		query += ` FOR UPDATE`
	}

	rec, err := scanPayme(t.tx.QueryRowContext(ctx, query, paymeID, from, to))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, payment.ErrTxnNotFound
		}

		return nil, fmt.Errorf("getting payme transaction: %w", err)
	}

	return rec, nil
}

func (t *settleTx) UpdatePayme(ctx context.Context, rec *payment.PaymeRecord) error {
	query := `
		UPDATE payme_transactions
		SET state = $2, reason = $3, perform_time = $4, cancel_time = $5
		WHERE id = $1
	`

	if _, err := t.tx.ExecContext(ctx, query,
		rec.ID, rec.State, rec.Reason, rec.PerformTime, rec.CancelTime,
	); err != nil {
		return fmt.Errorf("updating payme transaction: %w", err)
	}

	return nil
}

// Visit id sets ride in a jsonb column; empty sets are stored as NULL.
func encodeIDs(ids []int64) ([]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding visit ids: %w", err)
	}

	return b, nil
}

func decodeIDs(b []byte) ([]int64, error) {
	if len(b) == 0 {
		return nil, nil
	}

	var ids []int64
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("decoding visit ids: %w", err)
	}

	return ids, nil
}
