// Package payment is the reconciliation engine between the two external
// payment networks and the market's payable entities. Every mutating flow
// runs inside one repository transaction that locks, in order, the payable's
// root row, the payable row(s) and finally the ledger row.
package payment

import (
	"context"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	Begin(ctx context.Context) (Tx, error)

	PaymeByID(ctx context.Context, paymeID string, from, to time.Time) (*PaymeRecord, error)
	ListPayme(ctx context.Context, marketID int64, from, to time.Time) ([]*PaymeRecord, error)
}

// Tx is one settlement transaction. ForUpdate getters acquire row locks;
// getters keyed by a natural key return (nil, nil) when no row exists.
type Tx interface {
	Commit() error
	Rollback() error

	StallForUpdate(ctx context.Context, id int64) (*payable.Stall, error)
	StallStatusForUpdate(ctx context.Context, stallID int64, day time.Time) (*payable.StallStatus, error)
	StallStatusByIDForUpdate(ctx context.Context, id int64) (*payable.StallStatus, error)
	CreateStallStatus(ctx context.Context, st *payable.StallStatus) error
	UpdateStallStatus(ctx context.Context, st *payable.StallStatus) error

	ShopForUpdate(ctx context.Context, id int64) (*payable.Shop, error)
	ShopPaymentForUpdate(ctx context.Context, shopID, nonce int64, method int, from, to time.Time) (*payable.ShopPayment, error)
	ShopPaymentByIDForUpdate(ctx context.Context, id int64) (*payable.ShopPayment, error)
	CreateShopPayment(ctx context.Context, sp *payable.ShopPayment) error
	UpdateShopPayment(ctx context.Context, sp *payable.ShopPayment) error

	ThingDataForUpdate(ctx context.Context, marketID, thingID int64) (*payable.ThingData, error)
	ThingStatusForUpdate(ctx context.Context, marketID, thingID int64, number int, day time.Time) (*payable.ThingStatus, error)
	ThingStatusByIDForUpdate(ctx context.Context, id int64) (*payable.ThingStatus, error)
	CreateThingStatus(ctx context.Context, ts *payable.ThingStatus) error
	UpdateThingStatus(ctx context.Context, ts *payable.ThingStatus) error

	ParkingForUpdate(ctx context.Context, id int64) (*payable.Parking, error)
	UnpaidVisitsForUpdate(ctx context.Context, parkingID int64, q order.ParkingQuery, after time.Time) ([]*payable.Visit, error)
	VisitsByIDForUpdate(ctx context.Context, ids []int64) ([]*payable.Visit, error)
	UpdateVisit(ctx context.Context, v *payable.Visit) error

	GetOrCreateClick(ctx context.Context, rec *ClickRecord, from, to time.Time) (*ClickRecord, bool, error)
	ClickByID(ctx context.Context, id int64) (*ClickRecord, error)
	ClickByIDForUpdate(ctx context.Context, id int64) (*ClickRecord, error)
	UpdateClick(ctx context.Context, rec *ClickRecord) error

	GetOrCreatePayme(ctx context.Context, rec *PaymeRecord, from, to time.Time) (*PaymeRecord, bool, error)
	PaymeByID(ctx context.Context, paymeID string, from, to time.Time) (*PaymeRecord, error)
	PaymeByIDForUpdate(ctx context.Context, paymeID string, from, to time.Time) (*PaymeRecord, error)
	UpdatePayme(ctx context.Context, rec *PaymeRecord) error
}

// Payable is a resolved, row-locked settleable entity. LedgerID is the value
// recorded as the ledger's order id: the status-row id for most kinds, the
// batch commitment for parking.
type Payable struct {
	Ref      order.Ref
	LedgerID int64
	VisitIDs []int64
	Amount   int64
	Progress payable.Progress
	Paid     bool

	stall       *payable.Stall
	stallStatus *payable.StallStatus
	shop        *payable.Shop
	shopPayment *payable.ShopPayment
	thing       *payable.ThingData
	thingStatus *payable.ThingStatus
	parking     *payable.Parking
	visits      []*payable.Visit
}

// adapter is the per-kind payable registry contract.
type adapter interface {
	// resolve locks and validates the payable the reference names against
	// the claimed amount. own is the calling network's progress tag; a
	// settlement held by anyone else fails with ErrInProgress.
	resolve(ctx context.Context, tx Tx, m *market.Market, ref order.Ref, amount int64, own payable.Progress) (*Payable, error)
	// begin claims the payment_progress soft lock. Re-entry with the own tag
	// is a no-op; the lazily materialised status row is created here.
	begin(ctx context.Context, tx Tx, pb *Payable, method int, own payable.Progress) error
	// load re-locks the payable row(s) a ledger record points at.
	load(ctx context.Context, tx Tx, m *market.Market, link Linkage) (*Payable, error)
	commit(ctx context.Context, tx Tx, pb *Payable) error
	cancel(ctx context.Context, tx Tx, pb *Payable) error
}

type Service struct {
	repo     Repository
	adapters map[order.Kind]adapter
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		adapters: map[order.Kind]adapter{
			order.KindStall:   stallAdapter{},
			order.KindShop:    shopAdapter{},
			order.KindRent:    rentAdapter{},
			order.KindParking: parkingAdapter{},
		},
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parkingLookback bounds unpaid-visit selection: the first day of the month,
// six months back.
func parkingLookback(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -6, 0)
}

// lookupRange is the window transactions stay addressable by external id.
func lookupRange(now time.Time) (time.Time, time.Time) {
	end := now.Add(24 * time.Hour)

	return end.Add(-lookupWindow), end
}
