// Package api wires the HTTP surface: routing, middleware, and handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/handlers"
	custommiddleware "github.com/sankalp404/quantmatrix-sub000/internal/api/middleware"
	"github.com/sankalp404/quantmatrix-sub000/internal/config"
	"github.com/sankalp404/quantmatrix-sub000/internal/service"
)

// Services bundles the service dependencies the router needs.
type Services struct {
	System      *service.SystemService
	Account     *service.AccountService
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Dividend    *service.DividendService
	TaxLot      *service.TaxLotService
	IbkrSync    *service.IbkrSyncService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(services.Account, services.Portfolio)
			transactionHandler := handlers.NewTransactionHandler(services.Transaction)
			dividendHandler := handlers.NewDividendHandler(services.Dividend)

			r.Get("/", accountHandler.Accounts)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", accountHandler.GetAccount)
				r.Get("/summary", accountHandler.Summary)
				r.Get("/transactions", transactionHandler.TransactionsPerAccount)
				r.Get("/dividends", dividendHandler.DividendsPerAccount)
			})
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(services.Transaction)
			r.Post("/", transactionHandler.CreateTransaction)
		})

		r.Route("/taxlot", func(r chi.Router) {
			taxLotHandler := handlers.NewTaxLotHandler(services.TaxLot)

			r.Post("/regenerate", taxLotHandler.RegenerateAll)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", taxLotHandler.CostBasis)
				r.Get("/lots", taxLotHandler.Lots)
				r.Post("/simulate-sale", taxLotHandler.SimulateSale)
				r.Post("/execute-sale", taxLotHandler.ExecuteSale)
				r.Get("/harvesting", taxLotHandler.Harvesting)
				r.Get("/tax-report", taxLotHandler.TaxReport)
				r.Post("/regenerate", taxLotHandler.Regenerate)
			})
		})

		r.Route("/ibkr", func(r chi.Router) {
			ibkrHandler := handlers.NewIbkrHandler(services.IbkrSync)
			r.Get("/config", ibkrHandler.GetConfig)
			r.Post("/config", ibkrHandler.SaveConfig)
			r.Post("/sync", ibkrHandler.Sync)
		})
	})

	return r
}
