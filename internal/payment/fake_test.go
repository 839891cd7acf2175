package payment_test

import (
	"context"
	"slices"
	"time"

	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
	"github.com/bozorpay/bozorpay/internal/payment"
)

// fakeStore is an in-memory Repository for flow tests. It hands out a Tx
// view over its own maps; commit and rollback are no-ops, so tests assert on
// the mutations the flows actually perform.
type fakeStore struct {
	stalls        map[int64]*payable.Stall
	stallStatuses []*payable.StallStatus
	shops         map[int64]*payable.Shop
	shopPayments  []*payable.ShopPayment
	thingData     []*payable.ThingData
	thingStatuses []*payable.ThingStatus
	parkings      map[int64]*payable.Parking
	visits        []*payable.Visit
	clicks        []*payment.ClickRecord
	paymes        []*payment.PaymeRecord

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stalls:   make(map[int64]*payable.Stall),
		shops:    make(map[int64]*payable.Shop),
		parkings: make(map[int64]*payable.Parking),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) Begin(context.Context) (payment.Tx, error) {
	return &fakeTx{s: s}, nil
}

func (s *fakeStore) PaymeByID(_ context.Context, paymeID string, from, to time.Time) (*payment.PaymeRecord, error) {
	return findPayme(s.paymes, paymeID, from, to)
}

func (s *fakeStore) ListPayme(_ context.Context, marketID int64, from, to time.Time) ([]*payment.PaymeRecord, error) {
	var recs []*payment.PaymeRecord

	for _, rec := range s.paymes {
		if rec.MarketID == marketID && !rec.CreateTime.Before(from) && !rec.CreateTime.After(to) {
			recs = append(recs, rec)
		}
	}

	return recs, nil
}

func findPayme(recs []*payment.PaymeRecord, paymeID string, from, to time.Time) (*payment.PaymeRecord, error) {
	for _, rec := range recs {
		if rec.PaymeID == paymeID && !rec.CreateTime.Before(from) && !rec.CreateTime.After(to) {
			return rec, nil
		}
	}

	return nil, payment.ErrTxnNotFound
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

func (t *fakeTx) StallForUpdate(_ context.Context, id int64) (*payable.Stall, error) {
	if st, ok := t.s.stalls[id]; ok {
		return st, nil
	}

	return nil, payable.ErrNotFound
}

func (t *fakeTx) StallStatusForUpdate(_ context.Context, stallID int64, day time.Time) (*payable.StallStatus, error) {
	for _, ss := range t.s.stallStatuses {
		if ss.StallID == stallID && ss.Date.Equal(day) {
			return ss, nil
		}
	}

	return nil, nil
}

func (t *fakeTx) StallStatusByIDForUpdate(_ context.Context, id int64) (*payable.StallStatus, error) {
	for _, ss := range t.s.stallStatuses {
		if ss.ID == id {
			return ss, nil
		}
	}

	return nil, payable.ErrNotFound
}

func (t *fakeTx) CreateStallStatus(_ context.Context, ss *payable.StallStatus) error {
	ss.ID = t.s.id()
	t.s.stallStatuses = append(t.s.stallStatuses, ss)

	return nil
}

func (t *fakeTx) UpdateStallStatus(context.Context, *payable.StallStatus) error { return nil }

func (t *fakeTx) ShopForUpdate(_ context.Context, id int64) (*payable.Shop, error) {
	if sh, ok := t.s.shops[id]; ok {
		return sh, nil
	}

	return nil, payable.ErrNotFound
}

func (t *fakeTx) ShopPaymentForUpdate(_ context.Context, shopID, nonce int64, method int, from, to time.Time) (*payable.ShopPayment, error) {
	for _, sp := range t.s.shopPayments {
		if sp.ShopID == shopID && sp.Nonce == nonce && sp.Method == method &&
			!sp.Date.Before(from) && !sp.Date.After(to) {
			return sp, nil
		}
	}

	return nil, nil
}

func (t *fakeTx) ShopPaymentByIDForUpdate(_ context.Context, id int64) (*payable.ShopPayment, error) {
	for _, sp := range t.s.shopPayments {
		if sp.ID == id {
			return sp, nil
		}
	}

	return nil, payable.ErrNotFound
}

func (t *fakeTx) CreateShopPayment(_ context.Context, sp *payable.ShopPayment) error {
	sp.ID = t.s.id()
	t.s.shopPayments = append(t.s.shopPayments, sp)

	return nil
}

func (t *fakeTx) UpdateShopPayment(context.Context, *payable.ShopPayment) error { return nil }

func (t *fakeTx) ThingDataForUpdate(_ context.Context, marketID, thingID int64) (*payable.ThingData, error) {
	for _, td := range t.s.thingData {
		if td.MarketID == marketID && td.ThingID == thingID {
			return td, nil
		}
	}

	return nil, payable.ErrNotFound
}

func (t *fakeTx) ThingStatusForUpdate(_ context.Context, marketID, thingID int64, number int, day time.Time) (*payable.ThingStatus, error) {
	for _, ts := range t.s.thingStatuses {
		if ts.MarketID == marketID && ts.ThingID == thingID && ts.Number == number && ts.Date.Equal(day) {
			return ts, nil
		}
	}

	return nil, nil
}

func (t *fakeTx) ThingStatusByIDForUpdate(_ context.Context, id int64) (*payable.ThingStatus, error) {
	for _, ts := range t.s.thingStatuses {
		if ts.ID == id {
			return ts, nil
		}
	}

	return nil, payable.ErrNotFound
}

func (t *fakeTx) CreateThingStatus(_ context.Context, ts *payable.ThingStatus) error {
	ts.ID = t.s.id()
	t.s.thingStatuses = append(t.s.thingStatuses, ts)

	return nil
}

func (t *fakeTx) UpdateThingStatus(context.Context, *payable.ThingStatus) error { return nil }

func (t *fakeTx) ParkingForUpdate(_ context.Context, id int64) (*payable.Parking, error) {
	if pk, ok := t.s.parkings[id]; ok {
		return pk, nil
	}

	return nil, payable.ErrNotFound
}

func (t *fakeTx) UnpaidVisitsForUpdate(_ context.Context, parkingID int64, q order.ParkingQuery, after time.Time) ([]*payable.Visit, error) {
	var visits []*payable.Visit

	for _, v := range t.s.visits {
		if v.ParkingID != parkingID || v.Paid || v.Price <= 0 || v.Progress != payable.ProgressNone || v.Date.Before(after) {
			continue
		}

		if q.Plate != "" && v.Plate != q.Plate {
			continue
		}

		visits = append(visits, v)
	}

	slices.SortFunc(visits, func(a, b *payable.Visit) int {
		return int(a.ID - b.ID)
	})

	if q.Plate == "" && len(visits) > q.Count {
		visits = visits[:q.Count]
	}

	return visits, nil
}

func (t *fakeTx) VisitsByIDForUpdate(_ context.Context, ids []int64) ([]*payable.Visit, error) {
	var visits []*payable.Visit

	for _, v := range t.s.visits {
		if slices.Contains(ids, v.ID) {
			visits = append(visits, v)
		}
	}

	return visits, nil
}

func (t *fakeTx) UpdateVisit(context.Context, *payable.Visit) error { return nil }

func (t *fakeTx) GetOrCreateClick(_ context.Context, rec *payment.ClickRecord, from, to time.Time) (*payment.ClickRecord, bool, error) {
	for _, got := range t.s.clicks {
		if got.OrderKind == rec.OrderKind && got.OrderID == rec.OrderID && got.Status == payment.ClickPrepared &&
			!got.PrepareTime.Before(from) && got.PrepareTime.Before(to) {
			return got, false, nil
		}
	}

	rec.ID = t.s.id()
	t.s.clicks = append(t.s.clicks, rec)

	return rec, true, nil
}

func (t *fakeTx) ClickByID(_ context.Context, id int64) (*payment.ClickRecord, error) {
	for _, rec := range t.s.clicks {
		if rec.ID == id {
			return rec, nil
		}
	}

	return nil, payment.ErrTxnNotFound
}

func (t *fakeTx) ClickByIDForUpdate(ctx context.Context, id int64) (*payment.ClickRecord, error) {
	return t.ClickByID(ctx, id)
}

func (t *fakeTx) UpdateClick(context.Context, *payment.ClickRecord) error { return nil }

func (t *fakeTx) GetOrCreatePayme(_ context.Context, rec *payment.PaymeRecord, from, to time.Time) (*payment.PaymeRecord, bool, error) {
	for _, got := range t.s.paymes {
		if got.OrderKind == rec.OrderKind && got.OrderID == rec.OrderID && got.State > 0 &&
			!got.CreateTime.Before(from) && got.CreateTime.Before(to) {
			return got, false, nil
		}
	}

	rec.ID = t.s.id()
	t.s.paymes = append(t.s.paymes, rec)

	return rec, true, nil
}

func (t *fakeTx) PaymeByID(_ context.Context, paymeID string, from, to time.Time) (*payment.PaymeRecord, error) {
	return findPayme(t.s.paymes, paymeID, from, to)
}

func (t *fakeTx) PaymeByIDForUpdate(ctx context.Context, paymeID string, from, to time.Time) (*payment.PaymeRecord, error) {
	return t.PaymeByID(ctx, paymeID, from, to)
}

func (t *fakeTx) UpdatePayme(context.Context, *payment.PaymeRecord) error { return nil }
