package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bozorpay/bozorpay/internal/order"
	"github.com/bozorpay/bozorpay/internal/payable"
	"github.com/bozorpay/bozorpay/internal/payment"
)

func TestPaymeCheckPerform(t *testing.T) {
	store := newFakeStore()
	store.stalls[42] = &payable.Stall{ID: 42, MarketID: 1, Price: 50000}

	svc := payment.NewService(store)
	ctx := context.Background()

	pb, err := svc.PaymeCheckPerform(ctx, testMarket(), "s-42", 50000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), pb.Amount)

	// Validation must not claim the payable or materialise a status row.
	assert.Empty(t, store.stallStatuses)

	_, err = svc.PaymeCheckPerform(ctx, testMarket(), "s-42", 100)
	assert.ErrorIs(t, err, payable.ErrAmountMismatch)

	_, err = svc.PaymeCheckPerform(ctx, testMarket(), "s-99", 50000)
	assert.ErrorIs(t, err, payable.ErrNotFound)

	t.Run("in-flight settlement denies the check", func(t *testing.T) {
		ss := &payable.StallStatus{
			ID: 7, StallID: 42, Date: today(),
			Method: payable.MethodPayme, Progress: payable.ProgressPayme,
			Price: 50000,
		}
		store.stallStatuses = append(store.stallStatuses, ss)

		_, err := svc.PaymeCheckPerform(ctx, testMarket(), "s-42", 50000)
		assert.ErrorIs(t, err, payable.ErrInProgress)

		ss.Progress = payable.ProgressClick

		_, err = svc.PaymeCheckPerform(ctx, testMarket(), "s-42", 50000)
		assert.ErrorIs(t, err, payable.ErrInProgress)

		ss.Progress = payable.ProgressNone

		_, err = svc.PaymeCheckPerform(ctx, testMarket(), "s-42", 50000)
		assert.NoError(t, err)
	})
}

func TestPaymeCreateStall(t *testing.T) {
	store := newFakeStore()
	store.stalls[42] = &payable.Stall{ID: 42, MarketID: 1, Price: 50000}

	svc := payment.NewService(store)
	m := testMarket()
	ctx := context.Background()

	rec, err := svc.PaymeCreate(ctx, m, payment.PaymeCreateParams{
		PaymeID: "abc123", Ref: "s-42", Amount: 50000,
	})
	require.NoError(t, err)

	assert.Equal(t, payment.PaymeCreated, rec.State)
	assert.Equal(t, "abc123", rec.PaymeID)
	assert.Equal(t, int64(42), rec.CreateOrderID)
	assert.False(t, rec.CreateTime.IsZero())

	require.Len(t, store.stallStatuses, 1)
	ss := store.stallStatuses[0]
	assert.Equal(t, ss.ID, rec.OrderID)
	assert.Equal(t, payable.ProgressPayme, ss.Progress)
	assert.Equal(t, payable.MethodPayme, ss.Method)

	t.Run("replay returns the stored record", func(t *testing.T) {
		again, err := svc.PaymeCreate(ctx, m, payment.PaymeCreateParams{
			PaymeID: "abc123", Ref: "s-42", Amount: 50000,
		})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, again.ID)
		assert.Len(t, store.paymes, 1)
	})

	t.Run("competing transaction loses", func(t *testing.T) {
		_, err := svc.PaymeCreate(ctx, m, payment.PaymeCreateParams{
			PaymeID: "zzz999", Ref: "s-42", Amount: 50000,
		})
		assert.ErrorIs(t, err, payment.ErrExternalIDMismatch)
	})

	t.Run("replay from another market is invisible", func(t *testing.T) {
		other := testMarket()
		other.ID = 2

		_, err := svc.PaymeCreate(ctx, other, payment.PaymeCreateParams{
			PaymeID: "abc123", Ref: "s-42", Amount: 50000,
		})
		assert.ErrorIs(t, err, payment.ErrTxnNotFound)
	})
}

func TestPaymeCreateTimeout(t *testing.T) {
	store := newFakeStore()
	store.stalls[42] = &payable.Stall{ID: 42, MarketID: 1, Price: 50000}
	store.stallStatuses = append(store.stallStatuses, &payable.StallStatus{
		ID: 7, StallID: 42, Date: today(),
		Method: payable.MethodPayme, Progress: payable.ProgressPayme, Price: 50000,
	})

	stale := &payment.PaymeRecord{
		ID: 1, MarketID: 1, OrderKind: order.KindStall, OrderID: 7,
		PaymeID: "abc123", CreateOrderID: 42, Amount: 50000,
		State: payment.PaymeCreated, CreateTime: time.Now().Add(-13 * time.Hour),
	}
	store.paymes = append(store.paymes, stale)

	svc := payment.NewService(store)

	_, err := svc.PaymeCreate(context.Background(), testMarket(), payment.PaymeCreateParams{
		PaymeID: "abc123", Ref: "s-42", Amount: 50000,
	})
	assert.ErrorIs(t, err, payment.ErrStateConflict)

	assert.Equal(t, -payment.PaymeCreated, stale.State)
	require.NotNil(t, stale.Reason)
	assert.Equal(t, payment.ReasonTimeout, *stale.Reason)
	assert.NotNil(t, stale.CancelTime)

	ss := store.stallStatuses[0]
	assert.Equal(t, payable.ProgressNone, ss.Progress)
	assert.Zero(t, ss.Method)
}

func TestPaymePerformStall(t *testing.T) {
	store := newFakeStore()
	store.stalls[42] = &payable.Stall{ID: 42, MarketID: 1, Price: 50000}

	svc := payment.NewService(store)
	m := testMarket()
	ctx := context.Background()

	created, err := svc.PaymeCreate(ctx, m, payment.PaymeCreateParams{
		PaymeID: "abc123", Ref: "s-42", Amount: 50000,
	})
	require.NoError(t, err)

	rec, err := svc.PaymePerform(ctx, m, "abc123")
	require.NoError(t, err)

	assert.Equal(t, created.ID, rec.ID)
	assert.Equal(t, payment.PaymePerformed, rec.State)
	require.NotNil(t, rec.PerformTime)

	ss := store.stallStatuses[0]
	assert.True(t, ss.Paid)
	assert.True(t, ss.Occupied)
	assert.Equal(t, payable.ProgressNone, ss.Progress)

	t.Run("idempotent replay", func(t *testing.T) {
		again, err := svc.PaymePerform(ctx, m, "abc123")
		require.NoError(t, err)
		assert.Equal(t, payment.PaymePerformed, again.State)
		assert.Equal(t, rec.PerformTime, again.PerformTime)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := svc.PaymePerform(ctx, m, "nope")
		assert.ErrorIs(t, err, payment.ErrTxnNotFound)
	})
}

func TestPaymePerformTimeout(t *testing.T) {
	store := newFakeStore()
	store.stalls[42] = &payable.Stall{ID: 42, MarketID: 1, Price: 50000}
	store.stallStatuses = append(store.stallStatuses, &payable.StallStatus{
		ID: 7, StallID: 42, Date: today(),
		Method: payable.MethodPayme, Progress: payable.ProgressPayme, Price: 50000,
	})

	stale := &payment.PaymeRecord{
		ID: 1, MarketID: 1, OrderKind: order.KindStall, OrderID: 7,
		PaymeID: "abc123", CreateOrderID: 42, Amount: 50000,
		State: payment.PaymeCreated, CreateTime: time.Now().Add(-13 * time.Hour),
	}
	store.paymes = append(store.paymes, stale)

	svc := payment.NewService(store)

	_, err := svc.PaymePerform(context.Background(), testMarket(), "abc123")
	assert.ErrorIs(t, err, payment.ErrStateConflict)

	assert.Equal(t, -payment.PaymeCreated, stale.State)
	require.NotNil(t, stale.Reason)
	assert.Equal(t, payment.ReasonTimeout, *stale.Reason)
}

func TestPaymeCancel(t *testing.T) {
	seed := func() (*payment.Service, *fakeStore) {
		store := newFakeStore()
		store.stalls[42] = &payable.Stall{ID: 42, MarketID: 1, Price: 50000}

		svc := payment.NewService(store)

		_, err := svc.PaymeCreate(context.Background(), testMarket(), payment.PaymeCreateParams{
			PaymeID: "abc123", Ref: "s-42", Amount: 50000,
		})
		require.NoError(t, err)

		return svc, store
	}

	t.Run("before perform", func(t *testing.T) {
		svc, store := seed()

		rec, err := svc.PaymeCancel(context.Background(), testMarket(), "abc123", 3)
		require.NoError(t, err)

		assert.Equal(t, -payment.PaymeCreated, rec.State)
		require.NotNil(t, rec.Reason)
		assert.Equal(t, 3, *rec.Reason)
		assert.NotNil(t, rec.CancelTime)

		ss := store.stallStatuses[0]
		assert.False(t, ss.Paid)
		assert.Equal(t, payable.ProgressNone, ss.Progress)
	})

	t.Run("after perform rolls the payment back", func(t *testing.T) {
		svc, store := seed()
		ctx := context.Background()

		_, err := svc.PaymePerform(ctx, testMarket(), "abc123")
		require.NoError(t, err)

		rec, err := svc.PaymeCancel(ctx, testMarket(), "abc123", 5)
		require.NoError(t, err)

		assert.Equal(t, -payment.PaymePerformed, rec.State)

		ss := store.stallStatuses[0]
		assert.False(t, ss.Paid)
		assert.Nil(t, ss.PaidAt)
	})

	t.Run("idempotent replay", func(t *testing.T) {
		svc, _ := seed()
		ctx := context.Background()

		first, err := svc.PaymeCancel(ctx, testMarket(), "abc123", 3)
		require.NoError(t, err)

		again, err := svc.PaymeCancel(ctx, testMarket(), "abc123", 5)
		require.NoError(t, err)

		assert.Equal(t, first.State, again.State)
		assert.Equal(t, first.Reason, again.Reason)
	})
}

func TestPaymeParkingFlow(t *testing.T) {
	store := newFakeStore()
	store.parkings[5] = &payable.Parking{ID: 5, MarketID: 1}
	store.visits = append(store.visits,
		&payable.Visit{ID: 101, ParkingID: 5, Date: today(), Plate: "95A123BC", Price: 3000},
		&payable.Visit{ID: 102, ParkingID: 5, Date: today(), Plate: "20B777DD", Price: 5000},
	)

	svc := payment.NewService(store)
	m := testMarket()
	ctx := context.Background()

	// The count form of the quote takes the two oldest unpaid visits.
	commitment := order.BatchCommitment(5, []int64{101, 102})
	ref := order.Ref{Kind: order.KindParking, ID: commitment, Nonce: 12}.String()

	rec, err := svc.PaymeCreate(ctx, m, payment.PaymeCreateParams{
		PaymeID: "pk1", Ref: ref, Amount: 8000,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102}, rec.Data)
	assert.Equal(t, commitment, rec.OrderID)

	_, err = svc.PaymePerform(ctx, m, "pk1")
	require.NoError(t, err)

	assert.True(t, store.visits[0].Paid)
	assert.True(t, store.visits[1].Paid)

	t.Run("second create against settled batch", func(t *testing.T) {
		_, err := svc.PaymeCreate(ctx, m, payment.PaymeCreateParams{
			PaymeID: "pk2", Ref: ref, Amount: 8000,
		})
		assert.ErrorIs(t, err, payable.ErrNotFound)
	})

	t.Run("cancel refunds every visit", func(t *testing.T) {
		_, err := svc.PaymeCancel(ctx, m, "pk1", 5)
		require.NoError(t, err)

		for _, v := range store.visits {
			assert.False(t, v.Paid)
			assert.Nil(t, v.PaidAt)
			assert.Equal(t, payable.ProgressNone, v.Progress)
		}
	})
}

func TestPaymeCheck(t *testing.T) {
	store := newFakeStore()
	store.stalls[42] = &payable.Stall{ID: 42, MarketID: 1, Price: 50000}

	svc := payment.NewService(store)
	ctx := context.Background()

	created, err := svc.PaymeCreate(ctx, testMarket(), payment.PaymeCreateParams{
		PaymeID: "abc123", Ref: "s-42", Amount: 50000,
	})
	require.NoError(t, err)

	rec, err := svc.PaymeCheck(ctx, testMarket(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, rec.ID)

	other := testMarket()
	other.ID = 2

	_, err = svc.PaymeCheck(ctx, other, "abc123")
	assert.ErrorIs(t, err, payment.ErrTxnNotFound)
}

func TestPaymeStatement(t *testing.T) {
	store := newFakeStore()

	now := time.Now()
	store.paymes = append(store.paymes,
		&payment.PaymeRecord{ID: 1, MarketID: 1, PaymeID: "a", CreateTime: now.Add(-2 * time.Hour)},
		&payment.PaymeRecord{ID: 2, MarketID: 1, PaymeID: "b", CreateTime: now.Add(-72 * time.Hour)},
		&payment.PaymeRecord{ID: 3, MarketID: 2, PaymeID: "c", CreateTime: now.Add(-time.Hour)},
	)

	svc := payment.NewService(store)

	recs, err := svc.PaymeStatement(context.Background(), testMarket(), now.Add(-24*time.Hour), now)
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].PaymeID)
}

func TestPaymeRecordRefs(t *testing.T) {
	rec := &payment.PaymeRecord{
		OrderKind: order.KindShop, OrderID: 88, CreateOrderID: 17, CreateOrderNonce: 931,
	}

	assert.Equal(t, "m-88", rec.TransactionRef())
	assert.Equal(t, "m-17-931", rec.AccountRef())
}

func TestTsMillis(t *testing.T) {
	assert.Zero(t, payment.TsMillis(nil))

	ts := time.UnixMilli(1724760000000)
	assert.Equal(t, int64(1724760000000), payment.TsMillis(&ts))
}
