// Package parkingevent receives ANPR camera callbacks: a multipart POST
// carrying a Hikvision EventNotificationAlert XML document plus snapshot
// images, which are ignored.
package parkingevent

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bozorpay/bozorpay/internal/metrics"
	"github.com/bozorpay/bozorpay/internal/parking"
	"github.com/bozorpay/bozorpay/internal/payable"
)

const xmlFileName = "anpr.xml"

const maxEventSize = 10 << 20

type Handler struct {
	svc *parking.Service
}

func NewHandler(svc *parking.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{action}/{token}", h.event)
}

// eventNotification is the subset of the Hikvision alert document the
// ingestion needs. Element names match regardless of the document's default
// namespace.
type eventNotification struct {
	XMLName    xml.Name `xml:"EventNotificationAlert"`
	MACAddress string   `xml:"macAddress"`
	DateTime   string   `xml:"dateTime"`
	ANPR       struct {
		LicensePlate string `xml:"licensePlate"`
		Direction    string `xml:"direction"`
	} `xml:"ANPR"`
}

func (h *Handler) event(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	token := chi.URLParam(r, "token")

	if err := r.ParseMultipartForm(maxEventSize); err != nil {
		writeFailure(w, "multipart parsing error")
		return
	}

	file, _, err := r.FormFile(xmlFileName)
	if err != nil {
		writeFailure(w, "XML file not found")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxEventSize))
	if err != nil {
		writeFailure(w, "XML reading error")
		return
	}

	var alert eventNotification
	if err := xml.Unmarshal(raw, &alert); err != nil {
		writeFailure(w, "XML parsing error")
		return
	}

	at, err := time.Parse(time.RFC3339, alert.DateTime)
	if err != nil {
		writeFailure(w, "invalid event time")
		return
	}

	ev := parking.Event{
		Plate:     alert.ANPR.LicensePlate,
		Direction: alert.ANPR.Direction,
		MAC:       alert.MACAddress,
		At:        at.Local(),
	}

	if err := h.svc.HandleEvent(r.Context(), token, action, ev); err != nil {
		metrics.ParkingEventsTotal.WithLabelValues(action, "rejected").Inc()
		writeFailure(w, eventMessage(err))

		return
	}

	metrics.ParkingEventsTotal.WithLabelValues(action, "ok").Inc()
	writeJSON(w, map[string]any{"status": "success"})
}

func eventMessage(err error) string {
	switch {
	case errors.Is(err, parking.ErrInvalidAction):
		return "invalid action"
	case errors.Is(err, parking.ErrInvalidToken):
		return "invalid token"
	case errors.Is(err, parking.ErrInvalidDirection):
		return "invalid direction"
	case errors.Is(err, parking.ErrInvalidDate):
		return "invalid action date"
	case errors.Is(err, parking.ErrInvalidMAC):
		return "invalid mac address"
	case errors.Is(err, parking.ErrInvalidBilling):
		return "invalid billing mode"
	case errors.Is(err, parking.ErrStaleEvent):
		return "invalid data"
	case errors.Is(err, payable.ErrMarketClosed):
		return "parking is not working today"
	case errors.Is(err, payable.ErrNotFound):
		return "parking not found"
	}

	slog.Error("parking event failed", "error", err)

	return "internal error"
}

func writeFailure(w http.ResponseWriter, message string) {
	writeJSON(w, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
