// Package market holds the per-market master data the payment flows depend
// on: working-day calendar, allowed payment methods and the credentials each
// external network authenticates with.
package market

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("market not found")

// Payment method bit masks. The same values are stored on payable rows as
// payment_method.
const (
	MethodCash  = 1 << 0
	MethodClick = 1 << 1
	MethodPayme = 1 << 2
)

// Working day bit masks, Monday first.
const (
	Monday = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

type Market struct {
	ID             int64
	DistrictID     int64
	RegionID       int64
	Name           string
	Slug           string
	WorkingDays    int
	PaymentMethods int

	ClickMerchantID     int64
	ClickMerchantUserID int64
	ClickServiceID      int64
	ClickSecretKey      string

	PaymeMerchant string
	PaymeUsername string
	PaymePassword string

	VATPercent int
}

func (m *Market) AllowCash() bool {
	return m.PaymentMethods&MethodCash != 0
}

func (m *Market) AllowClick() bool {
	return m.PaymentMethods&MethodClick != 0 &&
		m.ClickMerchantID != 0 && m.ClickMerchantUserID != 0 &&
		m.ClickServiceID != 0 && m.ClickSecretKey != ""
}

func (m *Market) AllowPayme() bool {
	return m.PaymentMethods&MethodPayme != 0 &&
		m.PaymeMerchant != "" && m.PaymeUsername != "" && m.PaymePassword != ""
}

// IsWorkingDay reports whether the market accepts payments on the given day.
// Future days are never working days.
func (m *Market) IsWorkingDay(day time.Time) bool {
	now := time.Now().In(day.Location())
	if day.Year() > now.Year() || (day.Year() == now.Year() && day.YearDay() > now.YearDay()) {
		return false
	}

	n := 1 << ((int(day.Weekday()) + 6) % 7) // ISO weekday, Monday=0

	return m.WorkingDays&n != 0
}
