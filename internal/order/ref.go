// Package order implements the compact order references exchanged with the
// payment networks: "<kind>-<id>[-<nonce>]".
package order

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Kind tags the payable entity a reference points at.
type Kind string

const (
	KindStall   Kind = "s"
	KindShop    Kind = "m"
	KindRent    Kind = "r"
	KindParking Kind = "p"
)

func (k Kind) Valid() bool {
	switch k {
	case KindStall, KindShop, KindRent, KindParking:
		return true
	}

	return false
}

var ErrInvalidRef = errors.New("invalid order reference")

// Ref is a decoded order reference. For parking, ID is the batch commitment
// and Nonce carries the quote query; for shop, Nonce is the QR-page nonce.
type Ref struct {
	Kind  Kind
	ID    int64
	Nonce int64
}

func Parse(s string) (Ref, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) < 2 || !Kind(parts[0]).Valid() {
		return Ref{}, ErrInvalidRef
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id < 0 {
		return Ref{}, ErrInvalidRef
	}

	var nonce int64

	if len(parts) == 3 {
		nonce, err = strconv.ParseInt(parts[2], 10, 64)
		if err != nil || nonce < 0 {
			return Ref{}, ErrInvalidRef
		}
	}

	return Ref{Kind: Kind(parts[0]), ID: id, Nonce: nonce}, nil
}

func (r Ref) String() string {
	if r.Nonce > 0 {
		return fmt.Sprintf("%s-%d-%d", r.Kind, r.ID, r.Nonce)
	}

	return fmt.Sprintf("%s-%d", r.Kind, r.ID)
}

// Rent references pack three coordinates into one number:
// marketID*1e8 + thingID*1e4 + number.
const (
	rentMarketBase = 100_000_000
	rentThingBase  = 10_000
)

func SplitRent(id int64) (marketID, thingID int64, number int) {
	return id / rentMarketBase, id % rentMarketBase / rentThingBase, int(id % rentThingBase)
}

func JoinRent(marketID, thingID int64, number int) int64 {
	return marketID*rentMarketBase + thingID*rentThingBase + int64(number)
}

// BatchCommitment derives the externally visible parking order id from the
// exact set of visit rows being settled: the parking id in the high bits,
// the first 32 bits of a sha256 over the sorted row ids in the low bits.
// Invariant under permutation of ids; changes when the set changes.
func BatchCommitment(parkingID int64, visitIDs []int64) int64 {
	ids := slices.Clone(visitIDs)
	slices.Sort(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	digest := sha256.Sum256([]byte(strings.Join(parts, ",")))

	return parkingID<<32 | int64(binary.BigEndian.Uint32(digest[:4]))
}

func CommitmentParkingID(id int64) int64 {
	return (id >> 32) & 0x7FFFFFFF
}

// ParkingQuery selects which unpaid visits a parking payment settles: either
// every visit of one license plate, or the N oldest ones.
type ParkingQuery struct {
	Plate string
	Count int
}

// ParseParkingNonce decodes the quote nonce baked into parking references.
// A leading 1 marks a count query; a leading 9 marks a base36-packed plate.
func ParseParkingNonce(nonce int64) (ParkingQuery, error) {
	s := strconv.FormatInt(nonce, 10)
	if len(s) < 2 {
		return ParkingQuery{}, ErrInvalidRef
	}

	switch s[0] {
	case '1':
		count, err := strconv.Atoi(s[1:])
		if err != nil || count <= 0 {
			return ParkingQuery{}, ErrInvalidRef
		}

		return ParkingQuery{Count: count}, nil
	case '9':
		packed, err := strconv.ParseInt(s[1:], 10, 64)
		if err != nil {
			return ParkingQuery{}, ErrInvalidRef
		}

		return ParkingQuery{Plate: strings.ToUpper(strconv.FormatInt(packed, 36))}, nil
	}

	return ParkingQuery{}, ErrInvalidRef
}

// PackParkingPlate is the inverse of the plate form of ParseParkingNonce.
func PackParkingPlate(plate string) (int64, error) {
	packed, err := strconv.ParseInt(strings.ToLower(plate), 36, 64)
	if err != nil {
		return 0, fmt.Errorf("packing plate %q: %w", plate, err)
	}

	n, err := strconv.ParseInt("9"+strconv.FormatInt(packed, 10), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("packing plate %q: %w", plate, err)
	}

	return n, nil
}
