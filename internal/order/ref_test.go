package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bozorpay/bozorpay/internal/order"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    order.Ref
		wantErr bool
	}{
		{
			name: "stall",
			in:   "s-42",
			want: order.Ref{Kind: order.KindStall, ID: 42},
		},
		{
			name: "shop with nonce",
			in:   "m-17-931",
			want: order.Ref{Kind: order.KindShop, ID: 17, Nonce: 931},
		},
		{
			name: "rent",
			in:   "r-500070001",
			want: order.Ref{Kind: order.KindRent, ID: 500070001},
		},
		{
			name: "parking with query nonce",
			in:   "p-21476377689-13",
			want: order.Ref{Kind: order.KindParking, ID: 21476377689, Nonce: 13},
		},
		{
			name:    "unknown kind",
			in:      "x-42",
			wantErr: true,
		},
		{
			name:    "missing id",
			in:      "s",
			wantErr: true,
		},
		{
			name:    "non numeric id",
			in:      "s-abc",
			wantErr: true,
		},
		{
			name:    "negative id",
			in:      "s--5",
			wantErr: true,
		},
		{
			name:    "non numeric nonce",
			in:      "m-17-xyz",
			wantErr: true,
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := order.Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, order.ErrInvalidRef)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "s-42", order.Ref{Kind: order.KindStall, ID: 42}.String())
	assert.Equal(t, "m-17-931", order.Ref{Kind: order.KindShop, ID: 17, Nonce: 931}.String())
}

func TestRefStringRoundtrip(t *testing.T) {
	for _, in := range []string{"s-42", "m-17-931", "r-500070001", "p-21476377689-13"} {
		ref, err := order.Parse(in)
		require.NoError(t, err)
		assert.Equal(t, in, ref.String())
	}
}

func TestSplitJoinRent(t *testing.T) {
	id := order.JoinRent(5, 7, 3)
	assert.Equal(t, int64(500070003), id)

	marketID, thingID, number := order.SplitRent(id)
	assert.Equal(t, int64(5), marketID)
	assert.Equal(t, int64(7), thingID)
	assert.Equal(t, 3, number)
}

func TestBatchCommitment(t *testing.T) {
	ids := []int64{11, 3, 27}

	got := order.BatchCommitment(5, ids)

	t.Run("permutation invariant", func(t *testing.T) {
		assert.Equal(t, got, order.BatchCommitment(5, []int64{27, 11, 3}))
		assert.Equal(t, got, order.BatchCommitment(5, []int64{3, 27, 11}))
	})

	t.Run("set change diverges", func(t *testing.T) {
		assert.NotEqual(t, got, order.BatchCommitment(5, []int64{11, 3}))
		assert.NotEqual(t, got, order.BatchCommitment(5, []int64{11, 3, 28}))
	})

	t.Run("parking id recoverable", func(t *testing.T) {
		assert.Equal(t, int64(5), order.CommitmentParkingID(got))
	})
}

func TestParseParkingNonce(t *testing.T) {
	t.Run("count query", func(t *testing.T) {
		q, err := order.ParseParkingNonce(13)
		require.NoError(t, err)
		assert.Equal(t, order.ParkingQuery{Count: 3}, q)
	})

	t.Run("plate query", func(t *testing.T) {
		nonce, err := order.PackParkingPlate("95A123BC")
		require.NoError(t, err)

		q, err := order.ParseParkingNonce(nonce)
		require.NoError(t, err)
		assert.Equal(t, order.ParkingQuery{Plate: "95A123BC"}, q)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, nonce := range []int64{0, 7, 10, 42} {
			_, err := order.ParseParkingNonce(nonce)
			assert.ErrorIs(t, err, order.ErrInvalidRef, "nonce %d", nonce)
		}
	})
}
