package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sankalp404/quantmatrix-sub000/internal/api"
	"github.com/sankalp404/quantmatrix-sub000/internal/config"
	"github.com/sankalp404/quantmatrix-sub000/internal/database"
	"github.com/sankalp404/quantmatrix-sub000/internal/ibkr"
	"github.com/sankalp404/quantmatrix-sub000/internal/marketdata"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
	"github.com/sankalp404/quantmatrix-sub000/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Open database connection and run migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	lotRepo := repository.NewTaxLotRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	dividendRepo := repository.NewDividendRepository(db)
	ibkrRepo := repository.NewIbkrRepository(db)

	// Create services
	priceService := marketdata.NewPriceService(marketdata.NewClient())
	systemService := service.NewSystemService(db)
	accountService := service.NewAccountService(accountRepo)
	taxLotService := service.NewTaxLotService(
		lotRepo,
		transactionRepo,
		positionRepo,
		accountRepo,
		priceService,
		cfg.Tax.ShortTermRate,
		cfg.Tax.LongTermRate,
	)
	transactionService := service.NewTransactionService(
		transactionRepo,
		accountRepo,
		taxLotService,
	)
	dividendService := service.NewDividendService(dividendRepo)
	portfolioService := service.NewPortfolioService(
		accountRepo,
		positionRepo,
		lotRepo,
		dividendService,
		priceService,
	)
	ibkrSyncService, err := service.NewIbkrSyncService(
		ibkr.NewFinanceClient(),
		ibkrRepo,
		accountRepo,
		transactionRepo,
		positionRepo,
		dividendRepo,
		cfg.Ibkr.FernetKey,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ibkr sync service")
	}

	// Nightly flex import followed by a full lot rebuild, so the ledger
	// reflects broker history each morning.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Ibkr.CronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if !ibkrSyncService.AutoSyncEnabled() {
			return
		}
		if _, err := ibkrSyncService.Sync(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled ibkr sync failed")
			return
		}
		if _, err := taxLotService.RegenerateAllAccounts(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled lot regeneration failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Ibkr.CronSchedule).Msg("Failed to schedule ibkr sync")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Account:     accountService,
		Portfolio:   portfolioService,
		Transaction: transactionService,
		Dividend:    dividendService,
		TaxLot:      taxLotService,
		IbkrSync:    ibkrSyncService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
