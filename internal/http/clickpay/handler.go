// Package clickpay implements the Click merchant API webhook: a two-phase
// form-encoded callback signed with md5 over the shared secret.
package clickpay

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/metrics"
	"github.com/bozorpay/bozorpay/internal/payable"
	"github.com/bozorpay/bozorpay/internal/payment"
)

// Click merchant API error codes.
const (
	codeOK           = 0
	codeBadSignature = -1
	codeBadAmount    = -2
	codeBadAction    = -3
	codeAlreadyDone  = -4
	codeNotFound     = -5
	codeTxnNotFound  = -6
	codeBadRequest   = -8
	codeInProgress   = -9
)

const (
	actionPrepare  = 0
	actionComplete = 1
)

type Markets interface {
	BySlug(ctx context.Context, slug string) (*market.Market, error)
}

type Handler struct {
	svc     *payment.Service
	markets Markets
}

func NewHandler(svc *payment.Service, markets Markets) *Handler {
	return &Handler{svc: svc, markets: markets}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/{market}", h.callback)
}

type params struct {
	TransID   int64
	ServiceID int64
	PaydocID  int64
	Ref       string
	Amount    int64
	AmountRaw string
	Action    int
	Error     int
	ErrorNote string
	SignTime  string
	Sign      string
	PrepareID int64
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, err := h.markets.BySlug(ctx, chi.URLParam(r, "market"))
	if err != nil {
		writeError(w, codeBadRequest, "market not found")
		return
	}

	if !m.AllowClick() {
		writeError(w, codeBadRequest, "click is not enabled")
		return
	}

	p, code := parseParams(r)
	if code != codeOK {
		writeError(w, code, "bad request")
		return
	}

	if p.ServiceID != m.ClickServiceID {
		writeError(w, codeBadRequest, "service wrong")
		return
	}

	if !verifySignature(m.ClickSecretKey, p) {
		writeError(w, codeBadSignature, "incorrect signature")
		return
	}

	if p.Action == actionPrepare {
		h.prepare(ctx, w, m, p)
	} else {
		h.complete(ctx, w, m, p)
	}
}

func (h *Handler) prepare(ctx context.Context, w http.ResponseWriter, m *market.Market, p *params) {
	// Upstream failures arrive as callbacks too; they are echoed without
	// touching any order state.
	if p.Error != 0 {
		metrics.CallbacksTotal.WithLabelValues("click", "prepare", "echo").Inc()
		writeJSON(w, map[string]any{
			"click_trans_id":      p.TransID,
			"merchant_trans_id":   0,
			"merchant_prepare_id": 0,
			"error":               p.Error,
			"error_note":          p.ErrorNote,
		})

		return
	}

	rec, err := h.svc.ClickPrepare(ctx, m, payment.ClickPrepareParams{
		TransID:  p.TransID,
		PaydocID: p.PaydocID,
		Ref:      p.Ref,
		Amount:   p.Amount,
	})
	if err != nil {
		code, note := translate(err)
		metrics.CallbacksTotal.WithLabelValues("click", "prepare", strconv.Itoa(code)).Inc()
		writeError(w, code, note)

		return
	}

	metrics.CallbacksTotal.WithLabelValues("click", "prepare", "ok").Inc()
	writeJSON(w, map[string]any{
		"click_trans_id":      p.TransID,
		"merchant_trans_id":   rec.TransactionRef(),
		"merchant_prepare_id": rec.ID,
		"error":               0,
		"error_note":          "",
	})
}

func (h *Handler) complete(ctx context.Context, w http.ResponseWriter, m *market.Market, p *params) {
	rec, err := h.svc.ClickComplete(ctx, m, payment.ClickCompleteParams{
		TransID:   p.TransID,
		PrepareID: p.PrepareID,
		Amount:    p.Amount,
		Error:     p.Error,
	})

	// A voided prepare still answers with the transaction's linkage so
	// Click can reconcile the failure on its side.
	if errors.Is(err, payment.ErrCancelled) && rec != nil {
		metrics.CallbacksTotal.WithLabelValues("click", "complete", "voided").Inc()
		writeJSON(w, map[string]any{
			"click_trans_id":      rec.TransID,
			"merchant_trans_id":   rec.TransactionRef(),
			"merchant_confirm_id": rec.CreateOrderID,
			"error":               p.Error,
			"error_note":          "",
		})

		return
	}

	if err != nil {
		code, note := translate(err)
		metrics.CallbacksTotal.WithLabelValues("click", "complete", strconv.Itoa(code)).Inc()
		writeError(w, code, note)

		return
	}

	metrics.CallbacksTotal.WithLabelValues("click", "complete", "ok").Inc()
	metrics.SettlementsTotal.WithLabelValues(string(rec.OrderKind), "click").Inc()
	writeJSON(w, map[string]any{
		"click_trans_id":      rec.TransID,
		"merchant_trans_id":   rec.TransactionRef(),
		"merchant_confirm_id": rec.CreateOrderID,
		"error":               0,
		"error_note":          "",
	})
}

func parseParams(r *http.Request) (*params, int) {
	if err := r.ParseForm(); err != nil {
		return nil, codeBadRequest
	}

	var (
		p   params
		err error
	)

	if p.TransID, err = strconv.ParseInt(r.PostFormValue("click_trans_id"), 10, 64); err != nil {
		return nil, codeBadRequest
	}

	if p.ServiceID, err = strconv.ParseInt(r.PostFormValue("service_id"), 10, 64); err != nil {
		return nil, codeBadRequest
	}

	if p.PaydocID, err = strconv.ParseInt(r.PostFormValue("click_paydoc_id"), 10, 64); err != nil {
		return nil, codeBadRequest
	}

	p.Ref = r.PostFormValue("merchant_trans_id")
	if p.Ref == "" {
		return nil, codeBadRequest
	}

	p.AmountRaw = strings.TrimSpace(r.PostFormValue("amount"))

	f, err := strconv.ParseFloat(p.AmountRaw, 64)
	if err != nil {
		return nil, codeBadRequest
	}

	p.Amount = int64(f)

	// Click renders whole amounts without a fraction when signing.
	if f == math.Trunc(f) {
		p.AmountRaw = strconv.FormatInt(p.Amount, 10)
	}

	if p.Action, err = strconv.Atoi(r.PostFormValue("action")); err != nil {
		return nil, codeBadRequest
	}

	if p.Action != actionPrepare && p.Action != actionComplete {
		return nil, codeBadAction
	}

	if p.Error, err = strconv.Atoi(r.PostFormValue("error")); err != nil {
		return nil, codeBadRequest
	}

	p.ErrorNote = r.PostFormValue("error_note")
	p.SignTime = r.PostFormValue("sign_time")
	p.Sign = r.PostFormValue("sign_string")

	if p.Action == actionComplete {
		if p.PrepareID, err = strconv.ParseInt(r.PostFormValue("merchant_prepare_id"), 10, 64); err != nil {
			return nil, codeBadRequest
		}
	}

	return &p, codeOK
}

func verifySignature(secret string, p *params) bool {
	var payload string
	if p.Action == actionPrepare {
		payload = fmt.Sprintf("%d%d%s%s%s%d%s", p.TransID, p.ServiceID, secret, p.Ref, p.AmountRaw, p.Action, p.SignTime)
	} else {
		payload = fmt.Sprintf("%d%d%s%s%d%s%d%s", p.TransID, p.ServiceID, secret, p.Ref, p.PrepareID, p.AmountRaw, p.Action, p.SignTime)
	}

	sum := md5.Sum([]byte(payload))

	return strings.EqualFold(hex.EncodeToString(sum[:]), p.Sign)
}

func translate(err error) (int, string) {
	switch {
	case errors.Is(err, payable.ErrAmountMismatch):
		return codeBadAmount, "incorrect amount"
	case errors.Is(err, payable.ErrAlreadyPaid),
		errors.Is(err, payment.ErrAlreadyPrepared),
		errors.Is(err, payment.ErrAlreadyCompleted):
		return codeAlreadyDone, "already paid"
	case errors.Is(err, payable.ErrNotFound),
		errors.Is(err, payable.ErrCrossMarket):
		return codeNotFound, "order not found"
	case errors.Is(err, payment.ErrTxnNotFound),
		errors.Is(err, payment.ErrExternalIDMismatch):
		return codeTxnNotFound, "transaction not found"
	case errors.Is(err, payable.ErrInProgress),
		errors.Is(err, payment.ErrCancelled):
		return codeInProgress, "transaction in progress or cancelled"
	case errors.Is(err, payable.ErrMarketClosed):
		return codeBadRequest, "market is closed today"
	}

	slog.Error("click callback failed", "error", err)

	return codeBadRequest, "internal error"
}

func writeError(w http.ResponseWriter, code int, note string) {
	writeJSON(w, map[string]any{
		"error":      code,
		"error_note": note,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
