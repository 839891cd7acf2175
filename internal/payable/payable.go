// Package payable defines the settleable entities of the back office: a
// stall-day, a shop rent payment, a rented-thing-day and a parking visit
// batch. Rows are mutated exclusively under row locks held by the owning
// payment flow.
package payable

import (
	"errors"
	"time"
)

// Registry errors, translated to network error codes at the handler boundary.
var (
	ErrNotFound       = errors.New("payable not found")
	ErrMarketClosed   = errors.New("market is not working today")
	ErrAmountMismatch = errors.New("amount does not match payable price")
	ErrAlreadyPaid    = errors.New("payable already paid")
	ErrInProgress     = errors.New("settlement already in progress")
	ErrCrossMarket    = errors.New("payable belongs to another market")
)

// Progress is the soft lock persisted on payable rows between protocol
// steps: non-zero means a settlement is in flight and names its owner. Only
// the owning flow may clear it.
type Progress int16

const (
	ProgressNone  Progress = 0
	ProgressClick Progress = 1
	ProgressPayme Progress = 2
	ProgressCash  Progress = 3
)

// Method values recorded on settled rows.
const (
	MethodCash  = 1
	MethodClick = 2
	MethodPayme = 3
)

func (p Progress) Title() string {
	switch p {
	case ProgressClick:
		return "Click"
	case ProgressPayme:
		return "Payme"
	case ProgressCash:
		return "Naqd"
	}

	return "-"
}

// Stall is master data; its per-day debt materialises as a StallStatus row.
type Stall struct {
	ID       int64
	MarketID int64
	Price    int64
}

type StallStatus struct {
	ID         int64
	StallID    int64
	Date       time.Time
	Occupied   bool
	OccupiedAt *time.Time
	Paid       bool
	PaidAt     *time.Time
	Method     int
	Progress   Progress
	Price      int64
}

type Shop struct {
	ID       int64
	MarketID int64
}

// ShopPayment is created per payment: the amount is payer-chosen, keyed by a
// QR-page nonce so network retries land on the same row.
type ShopPayment struct {
	ID     int64
	ShopID int64
	Date   time.Time
	Nonce  int64
	Method int
	Amount int64
	PaidAt *time.Time
}

// ThingData is rent master data for one thing kind at one market; Count
// bounds the per-unit number encoded in rent references.
type ThingData struct {
	MarketID int64
	ThingID  int64
	Count    int
	Price    int64
}

type ThingStatus struct {
	ID         int64
	MarketID   int64
	ThingID    int64
	Number     int
	Date       time.Time
	Occupied   bool
	OccupiedAt *time.Time
	Paid       bool
	PaidAt     *time.Time
	Method     int
	Progress   Progress
	Price      int64
}

// Parking billing modes: price fixed at enter, or computed from the stay
// duration at exit.
const (
	BillingEnter = 0
	BillingExit  = 1
)

type Parking struct {
	ID          int64
	MarketID    int64
	Name        string
	BillingMode int
}

// Visit is one vehicle stay; unpaid visits are the payable rows a parking
// batch payment settles.
type Visit struct {
	ID         int64
	ParkingID  int64
	Date       time.Time
	Plate      string
	Paid       bool
	Method     int
	Progress   Progress
	Price      int64
	Duration   int
	EnterCount int
	LeaveCount int
	EnterAt    time.Time
	LeaveAt    *time.Time
	PaidAt     *time.Time
}

const PlateUnknown = "UNKNOWN"

// ParkingPrice is one duration tier; CashReceipts counts prepaid paper
// receipts that auto-settle visits as they are priced.
type ParkingPrice struct {
	ID           int64
	ParkingID    int64
	Duration     int
	Price        int64
	CashReceipts int
}

type Camera struct {
	ID        int64
	ParkingID int64
	Role      int // 0 enter, 1 exit
	MAC       string
	Token     string
}

const (
	CameraEnter = 0
	CameraExit  = 1
)

// WhitelistRule exempts matching plates from parking fees, optionally scoped
// to a region, district or market.
type WhitelistRule struct {
	ID         int64
	RegionID   *int64
	DistrictID *int64
	MarketID   *int64
	Pattern    string
}
