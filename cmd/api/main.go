package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bozorpay/bozorpay/internal/config"
	"github.com/bozorpay/bozorpay/internal/database"
	bozorHttp "github.com/bozorpay/bozorpay/internal/http"
	clickHandler "github.com/bozorpay/bozorpay/internal/http/clickpay"
	parkingHandler "github.com/bozorpay/bozorpay/internal/http/parkingevent"
	paymeHandler "github.com/bozorpay/bozorpay/internal/http/paymepay"
	marketStore "github.com/bozorpay/bozorpay/internal/market/store"
	"github.com/bozorpay/bozorpay/internal/parking"
	parkingStore "github.com/bozorpay/bozorpay/internal/parking/store"
	"github.com/bozorpay/bozorpay/internal/payment"
	paymentStore "github.com/bozorpay/bozorpay/internal/payment/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		markets        = marketStore.New(db)
		paymentService = payment.NewService(paymentStore.New(db))
		parkingService = parking.NewService(parkingStore.New(db), markets, slog.Default())
	)

	var (
		clickH   = clickHandler.NewHandler(paymentService, markets)
		paymeH   = paymeHandler.NewHandler(paymentService, markets)
		parkingH = parkingHandler.NewHandler(parkingService)
	)

	router := bozorHttp.New(clickH, paymeH, parkingH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
