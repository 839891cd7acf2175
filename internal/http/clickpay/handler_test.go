package clickpay

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bozorpay/bozorpay/internal/market"
	"github.com/bozorpay/bozorpay/internal/payable"
	"github.com/bozorpay/bozorpay/internal/payment"
)

type stubMarkets struct {
	m *market.Market
}

func (s stubMarkets) BySlug(_ context.Context, slug string) (*market.Market, error) {
	if s.m == nil || s.m.Slug != slug {
		return nil, market.ErrNotFound
	}

	return s.m, nil
}

func clickMarket() *market.Market {
	return &market.Market{
		ID:                  1,
		Slug:                "chorsu",
		PaymentMethods:      market.MethodClick,
		ClickMerchantID:     10,
		ClickMerchantUserID: 11,
		ClickServiceID:      12,
		ClickSecretKey:      "secret",
	}
}

func sign(secret string, p *params) string {
	var payload string
	if p.Action == actionPrepare {
		payload = fmt.Sprintf("%d%d%s%s%s%d%s", p.TransID, p.ServiceID, secret, p.Ref, p.AmountRaw, p.Action, p.SignTime)
	} else {
		payload = fmt.Sprintf("%d%d%s%s%d%s%d%s", p.TransID, p.ServiceID, secret, p.Ref, p.PrepareID, p.AmountRaw, p.Action, p.SignTime)
	}

	sum := md5.Sum([]byte(payload))

	return hex.EncodeToString(sum[:])
}

func TestVerifySignature(t *testing.T) {
	p := &params{
		TransID:   777,
		ServiceID: 12,
		Ref:       "s-42",
		AmountRaw: "50000",
		Action:    actionPrepare,
		SignTime:  "2026-08-27 10:00:00",
	}

	p.Sign = sign("secret", p)
	assert.True(t, verifySignature("secret", p))

	t.Run("case insensitive digest", func(t *testing.T) {
		q := *p
		q.Sign = strings.ToUpper(q.Sign)
		assert.True(t, verifySignature("secret", &q))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, verifySignature("other", p))
	})

	t.Run("tampered amount", func(t *testing.T) {
		q := *p
		q.AmountRaw = "60000"
		assert.False(t, verifySignature("secret", &q))
	})

	t.Run("complete includes the prepare id", func(t *testing.T) {
		q := *p
		q.Action = actionComplete
		q.PrepareID = 9
		q.Sign = sign("secret", &q)
		assert.True(t, verifySignature("secret", &q))

		q.PrepareID = 10
		assert.False(t, verifySignature("secret", &q))
	})
}

func formRequest(t *testing.T, slug string, form url.Values) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/payment/click/"+slug, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

func validForm(secret string, p *params) url.Values {
	form := url.Values{}
	form.Set("click_trans_id", fmt.Sprintf("%d", p.TransID))
	form.Set("service_id", fmt.Sprintf("%d", p.ServiceID))
	form.Set("click_paydoc_id", fmt.Sprintf("%d", p.PaydocID))
	form.Set("merchant_trans_id", p.Ref)
	form.Set("amount", p.AmountRaw)
	form.Set("action", fmt.Sprintf("%d", p.Action))
	form.Set("error", fmt.Sprintf("%d", p.Error))
	form.Set("error_note", p.ErrorNote)
	form.Set("sign_time", p.SignTime)
	form.Set("sign_string", sign(secret, p))

	if p.Action == actionComplete {
		form.Set("merchant_prepare_id", fmt.Sprintf("%d", p.PrepareID))
	}

	return form
}

func serve(h *Handler, req *http.Request) map[string]any {
	r := chi.NewRouter()
	r.Route("/payment/click", h.Routes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		return nil
	}

	return body
}

func TestParseParams(t *testing.T) {
	base := &params{
		TransID: 777, ServiceID: 12, PaydocID: 888,
		Ref: "s-42", Action: actionPrepare, SignTime: "2026-08-27 10:00:00",
	}

	t.Run("fractionless float amount normalises for signing", func(t *testing.T) {
		form := validForm("secret", base)
		form.Set("amount", "50000.00")

		req := formRequest(t, "chorsu", form)
		p, code := parseParams(req)

		require.Equal(t, codeOK, code)
		assert.Equal(t, int64(50000), p.Amount)
		assert.Equal(t, "50000", p.AmountRaw)
	})

	t.Run("fractional amount keeps its raw form", func(t *testing.T) {
		form := validForm("secret", base)
		form.Set("amount", "50000.50")

		req := formRequest(t, "chorsu", form)
		p, code := parseParams(req)

		require.Equal(t, codeOK, code)
		assert.Equal(t, int64(50000), p.Amount)
		assert.Equal(t, "50000.50", p.AmountRaw)
	})

	t.Run("unknown action", func(t *testing.T) {
		form := validForm("secret", base)
		form.Set("amount", "50000")
		form.Set("action", "2")

		req := formRequest(t, "chorsu", form)
		_, code := parseParams(req)
		assert.Equal(t, codeBadAction, code)
	})

	t.Run("missing reference", func(t *testing.T) {
		form := validForm("secret", base)
		form.Set("amount", "50000")
		form.Del("merchant_trans_id")

		req := formRequest(t, "chorsu", form)
		_, code := parseParams(req)
		assert.Equal(t, codeBadRequest, code)
	})

	t.Run("complete requires the prepare id", func(t *testing.T) {
		complete := *base
		complete.Action = actionComplete
		complete.PrepareID = 9

		form := validForm("secret", &complete)
		form.Set("amount", "50000")
		form.Del("merchant_prepare_id")

		req := formRequest(t, "chorsu", form)
		_, code := parseParams(req)
		assert.Equal(t, codeBadRequest, code)
	})
}

func TestCallbackGate(t *testing.T) {
	base := &params{
		TransID: 777, ServiceID: 12, PaydocID: 888, Ref: "s-42",
		AmountRaw: "50000", Action: actionPrepare, SignTime: "2026-08-27 10:00:00",
	}

	t.Run("unknown market", func(t *testing.T) {
		h := NewHandler(nil, stubMarkets{m: clickMarket()})

		body := serve(h, formRequest(t, "nope", validForm("secret", base)))
		require.NotNil(t, body)
		assert.EqualValues(t, codeBadRequest, body["error"])
	})

	t.Run("click disabled", func(t *testing.T) {
		m := clickMarket()
		m.PaymentMethods = 0
		h := NewHandler(nil, stubMarkets{m: m})

		body := serve(h, formRequest(t, "chorsu", validForm("secret", base)))
		assert.EqualValues(t, codeBadRequest, body["error"])
	})

	t.Run("wrong service id", func(t *testing.T) {
		h := NewHandler(nil, stubMarkets{m: clickMarket()})

		p := *base
		p.ServiceID = 99

		body := serve(h, formRequest(t, "chorsu", validForm("secret", &p)))
		assert.EqualValues(t, codeBadRequest, body["error"])
	})

	t.Run("bad signature", func(t *testing.T) {
		h := NewHandler(nil, stubMarkets{m: clickMarket()})

		form := validForm("secret", base)
		form.Set("sign_string", "deadbeef")

		body := serve(h, formRequest(t, "chorsu", form))
		assert.EqualValues(t, codeBadSignature, body["error"])
	})

	t.Run("upstream failure is echoed without touching orders", func(t *testing.T) {
		h := NewHandler(nil, stubMarkets{m: clickMarket()})

		p := *base
		p.Error = -4004
		p.ErrorNote = "insufficient funds"

		body := serve(h, formRequest(t, "chorsu", validForm("secret", &p)))
		assert.EqualValues(t, -4004, body["error"])
		assert.EqualValues(t, 0, body["merchant_prepare_id"])
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{payable.ErrAmountMismatch, codeBadAmount},
		{payable.ErrAlreadyPaid, codeAlreadyDone},
		{payment.ErrAlreadyPrepared, codeAlreadyDone},
		{payment.ErrAlreadyCompleted, codeAlreadyDone},
		{payable.ErrNotFound, codeNotFound},
		{payable.ErrCrossMarket, codeNotFound},
		{payment.ErrTxnNotFound, codeTxnNotFound},
		{payment.ErrExternalIDMismatch, codeTxnNotFound},
		{payable.ErrInProgress, codeInProgress},
		{payment.ErrCancelled, codeInProgress},
		{payable.ErrMarketClosed, codeBadRequest},
	}

	for _, tt := range tests {
		code, _ := translate(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
