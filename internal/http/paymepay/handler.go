// Package paymepay implements the Payme merchant JSON-RPC endpoint. Amounts
// cross this boundary in tiyin and are divided by 100 exactly once, on the
// way in; the statement projection multiplies back on the way out.
package paymepay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/metrics"
	"github.com/bozorpay/bozorpay/internal/payable"
	"github.com/bozorpay/bozorpay/internal/payment"
)

// Payme merchant API error codes.
const (
	codeNotAuthenticated = -32504
	codeBadRequest       = -32700
	codeMethodNotFound   = -32601
	codeSystemError      = -32400
	codeNotAllowed       = -31051
	codeInvalidAmount    = -31001
	codeTxnNotFound      = -31003
	codeStateConflict    = -31008
	codeOrderNotFound    = -31050
	codeMarketClosed     = -31052
	codeAlreadyPaid      = -31060
	codeInProgress       = -31061
	codeIDMismatch       = -31070
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
	r.Post("/{market}", h.rpc)
}

type envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type account struct {
	OrderID string `json:"order_id"`
}

func (h *Handler) rpc(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, err := h.markets.BySlug(ctx, chi.URLParam(r, "market"))
	if err != nil {
		writeError(w, codeBadRequest, "market not found")
		return
	}

	if !authenticate(r, m) {
		writeError(w, codeNotAuthenticated, "not authenticated")
		return
	}

	if !m.AllowPayme() {
		writeError(w, codeNotAllowed, "invalid request")
		return
	}

	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, codeBadRequest, "bad request")
		return
	}

	result, err := h.dispatch(ctx, m, &env)
	if err != nil {
		code, msg := translate(err)
		metrics.CallbacksTotal.WithLabelValues("payme", env.Method, strconv.Itoa(code)).Inc()
		writeError(w, code, msg)

		return
	}

	metrics.CallbacksTotal.WithLabelValues("payme", env.Method, "ok").Inc()
	writeJSON(w, map[string]any{"result": result})
}

func (h *Handler) dispatch(ctx context.Context, m *market.Market, env *envelope) (any, error) {
	switch env.Method {
	case "CheckPerformTransaction":
		return h.checkPerform(ctx, m, env.Params)
	case "CreateTransaction":
		return h.create(ctx, m, env.Params)
	case "PerformTransaction":
		return h.perform(ctx, m, env.Params)
	case "CancelTransaction":
		return h.cancel(ctx, m, env.Params)
	case "CheckTransaction":
		return h.check(ctx, m, env.Params)
	case "GetStatement":
		return h.statement(ctx, m, env.Params)
	}

	return nil, errMethodNotFound
}

var errMethodNotFound = errors.New("method not found")

func (h *Handler) checkPerform(ctx context.Context, m *market.Market, raw json.RawMessage) (any, error) {
	var p struct {
		Amount  int64   `json:"amount"`
		Account account `json:"account"`
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errBadParams
	}

	if _, err := h.svc.PaymeCheckPerform(ctx, m, p.Account.OrderID, p.Amount/100); err != nil {
		return nil, err
	}

	return map[string]any{"allow": true}, nil
}

func (h *Handler) create(ctx context.Context, m *market.Market, raw json.RawMessage) (any, error) {
	var p struct {
		ID      string  `json:"id"`
		Time    int64   `json:"time"`
		Amount  int64   `json:"amount"`
		Account account `json:"account"`
	}

	if err := json.Unmarshal(raw, &p); err != nil || p.ID == "" {
		return nil, errBadParams
	}

	rec, err := h.svc.PaymeCreate(ctx, m, payment.PaymeCreateParams{
		PaymeID: p.ID,
		Ref:     p.Account.OrderID,
		Amount:  p.Amount / 100,
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"create_time": payment.TsMillis(&rec.CreateTime),
		"transaction": strconv.FormatInt(rec.ID, 10),
		"state":       rec.State,
		"receivers":   nil,
	}, nil
}

func (h *Handler) perform(ctx context.Context, m *market.Market, raw json.RawMessage) (any, error) {
	var p struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(raw, &p); err != nil || p.ID == "" {
		return nil, errBadParams
	}

	rec, err := h.svc.PaymePerform(ctx, m, p.ID)
	if err != nil {
		return nil, err
	}

	metrics.SettlementsTotal.WithLabelValues(string(rec.OrderKind), "payme").Inc()

	return map[string]any{
		"transaction":  strconv.FormatInt(rec.ID, 10),
		"perform_time": payment.TsMillis(rec.PerformTime),
		"state":        rec.State,
	}, nil
}

func (h *Handler) cancel(ctx context.Context, m *market.Market, raw json.RawMessage) (any, error) {
	var p struct {
		ID     string `json:"id"`
		Reason int    `json:"reason"`
	}

	if err := json.Unmarshal(raw, &p); err != nil || p.ID == "" {
		return nil, errBadParams
	}

	rec, err := h.svc.PaymeCancel(ctx, m, p.ID, p.Reason)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"state":       rec.State,
		"cancel_time": payment.TsMillis(rec.CancelTime),
		"transaction": strconv.FormatInt(rec.ID, 10),
	}, nil
}

func (h *Handler) check(ctx context.Context, m *market.Market, raw json.RawMessage) (any, error) {
	var p struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(raw, &p); err != nil || p.ID == "" {
		return nil, errBadParams
	}

	rec, err := h.svc.PaymeCheck(ctx, m, p.ID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"create_time":  payment.TsMillis(&rec.CreateTime),
		"perform_time": payment.TsMillis(rec.PerformTime),
		"cancel_time":  payment.TsMillis(rec.CancelTime),
		"transaction":  strconv.FormatInt(rec.ID, 10),
		"state":        rec.State,
		"reason":       rec.Reason,
	}, nil
}

func (h *Handler) statement(ctx context.Context, m *market.Market, raw json.RawMessage) (any, error) {
	var p struct {
		From int64 `json:"from"`
		To   int64 `json:"to"`
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errBadParams
	}

	recs, err := h.svc.PaymeStatement(ctx, m, time.UnixMilli(p.From), time.UnixMilli(p.To))
	if err != nil {
		return nil, err
	}

	transactions := make([]map[string]any, 0, len(recs))

	for _, rec := range recs {
		transactions = append(transactions, map[string]any{
			"id":     rec.PaymeID,
			"time":   payment.TsMillis(&rec.CreateTime),
			"amount": rec.Amount * 100,
			"account": map[string]any{
				"order_id": rec.AccountRef(),
			},
			"create_time":  payment.TsMillis(&rec.CreateTime),
			"perform_time": payment.TsMillis(rec.PerformTime),
			"cancel_time":  payment.TsMillis(rec.CancelTime),
			"transaction":  strconv.FormatInt(rec.ID, 10),
			"state":        rec.State,
			"reason":       rec.Reason,
			"receivers":    nil,
		})
	}

	return map[string]any{"transactions": transactions}, nil
}

var errBadParams = errors.New("bad params")

func authenticate(r *http.Request, m *market.Market) bool {
	username, password, ok := r.BasicAuth()
	if !ok {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.PaymeUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.PaymePassword)) == 1

	return userOK && passOK
}

func translate(err error) (int, string) {
	switch {
	case errors.Is(err, errMethodNotFound):
		return codeMethodNotFound, "method not found"
	case errors.Is(err, errBadParams):
		return codeBadRequest, "bad request"
	case errors.Is(err, payable.ErrAmountMismatch):
		return codeInvalidAmount, "invalid amount"
	case errors.Is(err, payable.ErrNotFound):
		return codeOrderNotFound, "order not found"
	case errors.Is(err, payable.ErrMarketClosed):
		return codeMarketClosed, "market is closed today"
	case errors.Is(err, payable.ErrAlreadyPaid):
		return codeAlreadyPaid, "order already paid"
	case errors.Is(err, payable.ErrInProgress),
		errors.Is(err, payment.ErrAlreadyPrepared):
		return codeInProgress, "payment is in progress"
	case errors.Is(err, payable.ErrCrossMarket):
		return codeBadRequest, "bad request"
	case errors.Is(err, payment.ErrTxnNotFound):
		return codeTxnNotFound, "transaction not found"
	case errors.Is(err, payment.ErrStateConflict):
		return codeStateConflict, "invalid transaction state"
	case errors.Is(err, payment.ErrExternalIDMismatch):
		return codeIDMismatch, "invalid payme id"
	}

	slog.Error("payme callback failed", "error", err)

	return codeSystemError, "system error"
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
