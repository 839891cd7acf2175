package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bozorpay/bozorpay/internal/market"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectMarketColumns = `
	m.id, m.district_id, d.region_id, m.name, m.slug, m.working_days, m.payment_methods,
	COALESCE(m.click_merchant_id, 0), COALESCE(m.click_merchant_user_id, 0),
	COALESCE(m.click_service_id, 0), COALESCE(m.click_secret_key, ''),
	COALESCE(m.payme_merchant, ''), COALESCE(m.payme_username, ''), COALESCE(m.payme_password, ''),
	m.vat_percent
`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMarket(s scanner) (*market.Market, error) {
	var m market.Market

	if err := s.Scan(
		&m.ID, &m.DistrictID, &m.RegionID, &m.Name, &m.Slug, &m.WorkingDays, &m.PaymentMethods,
		&m.ClickMerchantID, &m.ClickMerchantUserID, &m.ClickServiceID, &m.ClickSecretKey,
		&m.PaymeMerchant, &m.PaymeUsername, &m.PaymePassword,
		&m.VATPercent,
	); err != nil {
		return nil, err
	}

	return &m, nil
}

func (s *Store) BySlug(ctx context.Context, slug string) (*market.Market, error) {
	query := `SELECT ` + selectMarketColumns + `
		FROM markets m
		JOIN districts d ON d.id = m.district_id
		WHERE m.slug = $1`

	m, err := scanMarket(s.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, market.ErrNotFound
		}

		return nil, fmt.Errorf("getting market by slug: %w", err)
	}

	return m, nil
}

func (s *Store) ByID(ctx context.Context, id int64) (*market.Market, error) {
	query := `SELECT ` + selectMarketColumns + `
		FROM markets m
		JOIN districts d ON d.id = m.district_id
		WHERE m.id = $1`

	m, err := scanMarket(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, market.ErrNotFound
		}

		return nil, fmt.Errorf("getting market by id: %w", err)
	}

	return m, nil
}
