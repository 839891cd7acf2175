package payment

import (
	"errors"
	"time"

	"github.com/bozorpay/bozorpay/internal/order"
)

// Flow errors on top of the payable registry errors; translated to the
// calling network's code vocabulary at the handler boundary.
var (
	ErrAlreadyPrepared    = errors.New("order already prepared")
	ErrAlreadyCompleted   = errors.New("order already completed")
	ErrTxnNotFound        = errors.New("transaction not found")
	ErrStateConflict      = errors.New("transaction is in the wrong state")
	ErrExternalIDMismatch = errors.New("transaction belongs to another external id")
	ErrCancelled          = errors.New("transaction cancelled")
)

// Click record statuses. Any other value is the network error code recorded
// as the terminal state of a failed complete.
const (
	ClickPrepared  = 0
	ClickCompleted = 1
)

// Payme record states; cancellation negates the state it cancelled from.
const (
	PaymeCreated   = 1
	PaymePerformed = 2
)

// ReasonTimeout is recorded when a created transaction outlives the 12-hour
// window and is cancelled on the network's next call.
const ReasonTimeout = 4

const (
	createTimeout = 12 * time.Hour
	lookupWindow  = 60 * 24 * time.Hour
)

// ClickRecord is one Click transaction. OrderID links the payable row (the
// batch commitment for parking); CreateOrderID keeps the id from the inbound
// reference; Data carries the parking visit row ids.
type ClickRecord struct {
	ID            int64
	MarketID      int64
	OrderKind     order.Kind
	OrderID       int64
	CreateOrderID int64
	TransID       int64
	PaydocID      int64
	Amount        int64
	Status        int
	PrepareTime   time.Time
	CompleteTime  *time.Time
	Data          []int64
}

// TransactionRef is the merchant transaction id echoed back to Click.
func (r *ClickRecord) TransactionRef() string {
	return order.Ref{Kind: r.OrderKind, ID: r.OrderID}.String()
}

func (r *ClickRecord) Linkage() Linkage {
	return Linkage{OrderID: r.OrderID, CreateOrderID: r.CreateOrderID, Data: r.Data}
}

// PaymeRecord is one Payme transaction, addressed by the network's own id.
type PaymeRecord struct {
	ID               int64
	MarketID         int64
	OrderKind        order.Kind
	OrderID          int64
	PaymeID          string
	CreateOrderID    int64
	CreateOrderNonce int64
	Amount           int64
	State            int
	Reason           *int
	CreateTime       time.Time
	PerformTime      *time.Time
	CancelTime       *time.Time
	Data             []int64
}

func (r *PaymeRecord) TransactionRef() string {
	return order.Ref{Kind: r.OrderKind, ID: r.OrderID}.String()
}

// AccountRef reproduces the order reference the payer originally entered.
func (r *PaymeRecord) AccountRef() string {
	return order.Ref{Kind: r.OrderKind, ID: r.CreateOrderID, Nonce: r.CreateOrderNonce}.String()
}

func (r *PaymeRecord) Linkage() Linkage {
	return Linkage{OrderID: r.OrderID, CreateOrderID: r.CreateOrderID, Data: r.Data}
}

// Linkage names the payable row(s) a ledger record settled, for the
// complete/perform/cancel paths that start from the record.
type Linkage struct {
	OrderID       int64
	CreateOrderID int64
	Data          []int64
}

// TsMillis renders a timestamp the way the Payme wire expects: unix
// milliseconds, zero for absent.
func TsMillis(t *time.Time) int64 {
	if t == nil {
		return 0
	}

	return t.UnixMilli()
}
