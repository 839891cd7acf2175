package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bozorpay/bozorpay/internal/http/clickpay"
	"github.com/bozorpay/bozorpay/internal/http/parkingevent"
	"github.com/bozorpay/bozorpay/internal/http/paymepay"
)

func New(
	click *clickpay.Handler,
	payme *paymepay.Handler,
	parking *parkingevent.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/payment", func(r chi.Router) {
		r.Route("/click", click.Routes)

		r.Route("/payme", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			payme.Routes(r)
		})
	})

	router.Route("/parking", parking.Routes)

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return router
}
