package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/parking"
	"github.com/bozorpay/bozorpay/internal/payable"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (parking.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning parking tx: %w", err)
	}

	return &parkingTx{tx: dbTx}, nil
}

func (s *Store) CameraByToken(ctx context.Context, token string) (*payable.Camera, error) {
	query := `SELECT id, parking_id, role, COALESCE(mac, ''), token FROM parking_cameras WHERE token = $1`

	var cam payable.Camera

	if err := s.db.QueryRowContext(ctx, query, token).Scan(
		&cam.ID, &cam.ParkingID, &cam.Role, &cam.MAC, &cam.Token,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, payable.ErrNotFound
		}

		return nil, fmt.Errorf("getting camera: %w", err)
	}

	return &cam, nil
}

func (s *Store) UnpaidVisits(ctx context.Context, parkingID int64, q order.ParkingQuery, after time.Time) ([]*payable.Visit, error) {
	query, args := unpaidVisitsQuery(parkingID, q, after)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing unpaid visits: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func (s *Store) WhitelistVersion(ctx context.Context) (int64, error) {
	query := `SELECT version FROM parking_whitelist_version`

	var version int64

	if err := s.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 1, nil
		}

		return 0, fmt.Errorf("getting whitelist version: %w", err)
	}

	return version, nil
}

func (s *Store) WhitelistRules(ctx context.Context) ([]*payable.WhitelistRule, error) {
	query := `SELECT id, region_id, district_id, market_id, pattern FROM parking_whitelist ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing whitelist rules: %w", err)
	}
	defer rows.Close()

	var rules []*payable.WhitelistRule

	for rows.Next() {
		var r payable.WhitelistRule

		if err := rows.Scan(&r.ID, &r.RegionID, &r.DistrictID, &r.MarketID, &r.Pattern); err != nil {
			return nil, fmt.Errorf("scanning whitelist rule: %w", err)
		}

		rules = append(rules, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing whitelist rules: %w", err)
	}

	return rules, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type parkingTx struct {
	tx *sql.Tx
}

func (t *parkingTx) Commit() error   { return t.tx.Commit() }
func (t *parkingTx) Rollback() error { return t.tx.Rollback() }

func (t *parkingTx) ParkingForUpdate(ctx context.Context, id int64) (*payable.Parking, error) {
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

func (t *parkingTx) LastVisitForUpdate(ctx context.Context, parkingID int64, day time.Time, plate string) (*payable.Visit, error) {
	query := `SELECT ` + selectVisitColumns + `
		FROM parking_visits
		WHERE parking_id = $1 AND date = $2 AND plate = $3
		ORDER BY enter_at DESC LIMIT 1 FOR UPDATE`

	v, err := scanVisit(t.tx.QueryRowContext(ctx, query, parkingID, day, plate))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("locking last visit: %w", err)
	}

	return v, nil
}

func (t *parkingTx) CreateVisit(ctx context.Context, v *payable.Visit) error {
	query := `
		INSERT INTO parking_visits (parking_id, date, plate, paid, method, payment_progress, price, duration, enter_count, leave_count, enter_at, leave_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := t.tx.QueryRowContext(ctx, query,
		v.ParkingID, v.Date, v.Plate, v.Paid, v.Method, v.Progress, v.Price,
		v.Duration, v.EnterCount, v.LeaveCount, v.EnterAt, v.LeaveAt, v.PaidAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("creating visit: %w", err)
	}

	return nil
}

func (t *parkingTx) UpdateVisit(ctx context.Context, v *payable.Visit) error {
	query := `
		UPDATE parking_visits
		SET paid = $2, method = $3, payment_progress = $4, price = $5, duration = $6,
			enter_count = $7, leave_count = $8, enter_at = $9, leave_at = $10, paid_at = $11
		WHERE id = $1
	`

	if _, err := t.tx.ExecContext(ctx, query,
		v.ID, v.Paid, v.Method, v.Progress, v.Price, v.Duration,
		v.EnterCount, v.LeaveCount, v.EnterAt, v.LeaveAt, v.PaidAt,
	); err != nil {
		return fmt.Errorf("updating visit: %w", err)
	}

	return nil
}

func (t *parkingTx) UnpaidVisitsForUpdate(ctx context.Context, parkingID int64, q order.ParkingQuery, after time.Time) ([]*payable.Visit, error) {
	query, args := unpaidVisitsQuery(parkingID, q, after)
	query += ` FOR UPDATE`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locking unpaid visits: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func (t *parkingTx) TopPriceForUpdate(ctx context.Context, parkingID int64) (*payable.ParkingPrice, error) {
	query := `SELECT id, parking_id, duration, price, cash_receipts
		FROM parking_prices
		WHERE parking_id = $1
		ORDER BY duration DESC LIMIT 1 FOR UPDATE`

	return scanPriceRow(t.tx.QueryRowContext(ctx, query, parkingID))
}

func (t *parkingTx) PriceForDurationForUpdate(ctx context.Context, parkingID int64, duration int) (*payable.ParkingPrice, error) {
	query := `SELECT id, parking_id, duration, price, cash_receipts
		FROM parking_prices
		WHERE parking_id = $1 AND duration <= $2
		ORDER BY duration DESC LIMIT 1 FOR UPDATE`

	return scanPriceRow(t.tx.QueryRowContext(ctx, query, parkingID, duration))
}

func scanPriceRow(row *sql.Row) (*payable.ParkingPrice, error) {
	var p payable.ParkingPrice

	if err := row.Scan(&p.ID, &p.ParkingID, &p.Duration, &p.Price, &p.CashReceipts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("locking parking price: %w", err)
	}

	return &p, nil
}

func (t *parkingTx) UpdatePrice(ctx context.Context, p *payable.ParkingPrice) error {
	query := `UPDATE parking_prices SET cash_receipts = $2 WHERE id = $1`

	if _, err := t.tx.ExecContext(ctx, query, p.ID, p.CashReceipts); err != nil {
		return fmt.Errorf("updating parking price: %w", err)
	}

	return nil
}

func unpaidVisitsQuery(parkingID int64, q order.ParkingQuery, after time.Time) (string, []any) {
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

	return query, args
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
