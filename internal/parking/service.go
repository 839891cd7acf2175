// Package parking ingests ANPR camera events into visit rows and quotes
// unpaid visits for the payment flows. Visit rows are the payable side of a
// parking batch settlement; ingestion never touches the payment_progress soft
// lock, so a settlement in flight is never disturbed by camera traffic.
package parking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
)

var (
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidDate      = errors.New("invalid action date")
	ErrInvalidMAC       = errors.New("invalid mac address")
	ErrInvalidBilling   = errors.New("invalid billing mode")
	ErrStaleEvent       = errors.New("invalid data")
	ErrQuoteExpired     = errors.New("quoted rows changed, reload and retry")
	ErrFreeVisit        = errors.New("visit is free of charge")
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=parking
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	CameraByToken(ctx context.Context, token string) (*payable.Camera, error)
	UnpaidVisits(ctx context.Context, parkingID int64, q order.ParkingQuery, after time.Time) ([]*payable.Visit, error)

	WhitelistVersion(ctx context.Context) (int64, error)
	WhitelistRules(ctx context.Context) ([]*payable.WhitelistRule, error)
}

type Tx interface {
	Commit() error
	Rollback() error

	ParkingForUpdate(ctx context.Context, id int64) (*payable.Parking, error)
	LastVisitForUpdate(ctx context.Context, parkingID int64, day time.Time, plate string) (*payable.Visit, error)
	CreateVisit(ctx context.Context, v *payable.Visit) error
	UpdateVisit(ctx context.Context, v *payable.Visit) error
	UnpaidVisitsForUpdate(ctx context.Context, parkingID int64, q order.ParkingQuery, after time.Time) ([]*payable.Visit, error)

	TopPriceForUpdate(ctx context.Context, parkingID int64) (*payable.ParkingPrice, error)
	PriceForDurationForUpdate(ctx context.Context, parkingID int64, duration int) (*payable.ParkingPrice, error)
	UpdatePrice(ctx context.Context, p *payable.ParkingPrice) error
}

type Markets interface {
	ByID(ctx context.Context, id int64) (*market.Market, error)
}

// Event is one decoded ANPR notification.
type Event struct {
	Plate     string
	Direction string
	MAC       string
	At        time.Time
}

type Service struct {
	store     Store
	markets   Markets
	whitelist *Whitelist
	logger    *slog.Logger
}

func NewService(store Store, markets Markets, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		markets:   markets,
		whitelist: NewWhitelist(store, logger),
		logger:    logger,
	}
}

// HandleEvent applies one camera notification to the visit ledger. Cameras
// retry aggressively and clocks drift, so out-of-order and replayed events
// are rejected rather than merged.
func (s *Service) HandleEvent(ctx context.Context, token, action string, ev Event) error {
	if action != "enter" && action != "exit" && action != "action" {
		return ErrInvalidAction
	}

	if strings.ToLower(ev.Direction) != "forward" {
		return ErrInvalidDirection
	}

	now := time.Now()
	today := startOfDay(now)

	if !startOfDay(ev.At).Equal(today) {
		return ErrInvalidDate
	}

	if len(token) > 32 {
		token = token[:32]
	}

	cam, err := s.store.CameraByToken(ctx, token)
	if err != nil {
		if errors.Is(err, payable.ErrNotFound) {
			return ErrInvalidToken
		}

		return fmt.Errorf("camera lookup: %w", err)
	}

	role := "enter"
	if cam.Role == payable.CameraExit {
		role = "exit"
	}

	if action == "action" {
		action = role
	}

	if action != role {
		return ErrInvalidAction
	}

	if cam.MAC != "" && !strings.EqualFold(cam.MAC, normalizeMAC(ev.MAC)) {
		return ErrInvalidMAC
	}

	plate := strings.ToUpper(ev.Plate)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	pk, err := tx.ParkingForUpdate(ctx, cam.ParkingID)
	if err != nil {
		return err
	}

	m, err := s.markets.ByID(ctx, pk.MarketID)
	if err != nil {
		return err
	}

	if !m.IsWorkingDay(now) {
		return payable.ErrMarketClosed
	}

	// Plateless vehicles can only be billed at the gate, on entry.
	if pk.BillingMode != payable.BillingEnter && plate == payable.PlateUnknown {
		return ErrInvalidBilling
	}

	var v *payable.Visit

	if plate != payable.PlateUnknown {
		v, err = tx.LastVisitForUpdate(ctx, pk.ID, today, plate)
		if err != nil {
			return err
		}
	}

	if action == "enter" {
		err = s.handleEnter(ctx, tx, m, pk, v, plate, today, ev.At)
	} else {
		err = s.handleExit(ctx, tx, m, pk, v, plate, ev.At)
	}

	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Service) handleEnter(ctx context.Context, tx Tx, m *market.Market, pk *payable.Parking, v *payable.Visit, plate string, today, at time.Time) error {
	if v != nil && !v.EnterAt.Before(at) {
		return ErrStaleEvent
	}

	if v == nil || v.LeaveAt != nil {
		v = &payable.Visit{
			ParkingID:  pk.ID,
			Date:       today,
			Plate:      plate,
			EnterCount: 1,
			EnterAt:    at,
		}

		if pk.BillingMode == payable.BillingEnter {
			free, err := s.isExempt(ctx, m, plate)
			if err != nil {
				return err
			}

			if !free {
				price, err := tx.TopPriceForUpdate(ctx, pk.ID)
				if err != nil {
					return err
				}

				if price != nil {
					if err := applyPrice(ctx, tx, price, v); err != nil {
						return err
					}
				}
			}
		}

		return tx.CreateVisit(ctx, v)
	}

	// The vehicle passed the enter camera again without an exit event, so
	// the freshest enter time wins.
	v.EnterCount++
	v.EnterAt = at

	return tx.UpdateVisit(ctx, v)
}

func (s *Service) handleExit(ctx context.Context, tx Tx, m *market.Market, pk *payable.Parking, v *payable.Visit, plate string, at time.Time) error {
	if v == nil || v.EnterAt.After(at) || v.LeaveAt != nil {
		if v != nil {
			v.LeaveCount++

			if err := tx.UpdateVisit(ctx, v); err != nil {
				return err
			}

			if err := tx.Commit(); err != nil {
				return fmt.Errorf("commit: %w", err)
			}
		}

		return ErrStaleEvent
	}

	v.LeaveAt = &at
	v.Duration = int(at.Sub(v.EnterAt).Seconds())
	v.LeaveCount = 1

	if pk.BillingMode == payable.BillingExit {
		v.Price = 0

		free, err := s.isExempt(ctx, m, plate)
		if err != nil {
			return err
		}

		if !free {
			price, err := tx.PriceForDurationForUpdate(ctx, pk.ID, v.Duration)
			if err != nil {
				return err
			}

			if price != nil {
				if err := applyPrice(ctx, tx, price, v); err != nil {
					return err
				}
			}
		}
	}

	return tx.UpdateVisit(ctx, v)
}

// applyPrice prices the visit and burns one prepaid cash receipt when the
// tier has any left, settling the visit on the spot.
func applyPrice(ctx context.Context, tx Tx, price *payable.ParkingPrice, v *payable.Visit) error {
	v.Price = price.Price

	if v.Progress == payable.ProgressNone && price.CashReceipts > 0 {
		now := time.Now()
		v.Paid = true
		v.PaidAt = &now
		v.Method = payable.MethodCash

		price.CashReceipts--

		return tx.UpdatePrice(ctx, price)
	}

	return nil
}

func (s *Service) isExempt(ctx context.Context, m *market.Market, plate string) (bool, error) {
	if plate == payable.PlateUnknown {
		return false, nil
	}

	return s.whitelist.Exempt(ctx, plate, m)
}

// Quote is what the QR payment page calls: the current unpaid batch for a
// query, its total, and the commitment order id the payment networks will be
// given.
type Quote struct {
	Visits  []*payable.Visit
	Amount  int64
	OrderID int64
}

func (s *Service) Quote(ctx context.Context, parkingID int64, q order.ParkingQuery) (*Quote, error) {
	visits, err := s.store.UnpaidVisits(ctx, parkingID, q, lookback(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("listing unpaid visits: %w", err)
	}

	ids := make([]int64, len(visits))

	var total int64

	for i, v := range visits {
		ids[i] = v.ID
		total += v.Price
	}

	return &Quote{
		Visits:  visits,
		Amount:  total,
		OrderID: order.BatchCommitment(parkingID, ids),
	}, nil
}

// AcceptCash settles a quoted batch in cash. The caller passes the order id
// its quote produced; if the unpaid set changed since, the settlement is
// refused and the page must re-quote.
func (s *Service) AcceptCash(ctx context.Context, marketID, parkingID, orderID, nonce int64) error {
	m, err := s.markets.ByID(ctx, marketID)
	if err != nil {
		return err
	}

	if !m.AllowCash() {
		return payable.ErrMarketClosed
	}

	q, err := order.ParseParkingNonce(nonce)
	if err != nil {
		return payable.ErrNotFound
	}

	now := time.Now()
	if !m.IsWorkingDay(now) {
		return payable.ErrMarketClosed
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	pk, err := tx.ParkingForUpdate(ctx, parkingID)
	if err != nil {
		return err
	}

	if pk.MarketID != m.ID {
		return payable.ErrCrossMarket
	}

	visits, err := tx.UnpaidVisitsForUpdate(ctx, pk.ID, q, lookback(now))
	if err != nil {
		return err
	}

	ids := make([]int64, len(visits))
	for i, v := range visits {
		ids[i] = v.ID
	}

	if order.BatchCommitment(pk.ID, ids) != orderID {
		return ErrQuoteExpired
	}

	for _, v := range visits {
		if v.Price <= 0 {
			return ErrFreeVisit
		}

		if v.Paid {
			return payable.ErrAlreadyPaid
		}

		if v.Progress != payable.ProgressNone {
			return payable.ErrInProgress
		}

		v.Paid = true
		v.Method = payable.MethodCash
		v.Progress = payable.ProgressNone
		v.PaidAt = &now

		if err := tx.UpdateVisit(ctx, v); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func normalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, ":", ""))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// lookback bounds quoting to the first day of the month six months back,
// matching the payment flows' selection window.
func lookback(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -6, 0)
}
