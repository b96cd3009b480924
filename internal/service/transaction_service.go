package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/request"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
	"github.com/sankalp404/quantmatrix-sub000/internal/taxlot"
)

// TransactionService handles transaction-related business logic. Creating
// a transaction drives the tax lot ledger: buys open a new lot, sells are
// executed against open lots under FIFO.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	accountRepo     *repository.AccountRepository
	taxLotService   *TaxLotService
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	accountRepo *repository.AccountRepository,
	taxLotService *TaxLotService,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		taxLotService:   taxLotService,
	}
}

// GetTransactionsForAccount retrieves all transactions for an account in date order.
func (s *TransactionService) GetTransactionsForAccount(accountID string) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactionsForAccount(accountID)
}

// CreateTransaction records a buy or sell and applies it to the ledger.
// A buy creates a tax lot for the full quantity; a sell executes a FIFO
// sale, so it fails with ErrInsufficientShares when open lots cannot
// cover it, before anything is written.
func (s *TransactionService) CreateTransaction(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	if _, err := s.accountRepo.GetAccount(req.AccountID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	shares, err := decimal.NewFromString(req.Shares)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shares: %w", err)
	}
	price, err := decimal.NewFromString(req.PricePerShare)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	commission := decimal.Zero
	if req.Commission != "" {
		if commission, err = decimal.NewFromString(req.Commission); err != nil {
			return nil, fmt.Errorf("failed to parse commission: %w", err)
		}
	}

	// Apply to the ledger first; the transaction row is only recorded for
	// ledger-accepted trades.
	switch req.Type {
	case model.TransactionTypeBuy:
		if _, err := s.taxLotService.CreateLot(ctx, req.AccountID, req.Symbol, date, shares, price, commission); err != nil {
			return nil, err
		}
	case model.TransactionTypeSell:
		if _, err := s.taxLotService.ExecuteSale(ctx, req.AccountID, req.Symbol, shares, price, date, taxlot.FIFO, commission, nil); err != nil {
			return nil, err
		}
	}

	transaction := &model.Transaction{
		ID:            uuid.New().String(),
		AccountID:     req.AccountID,
		Symbol:        req.Symbol,
		Date:          date,
		Type:          req.Type,
		Shares:        shares,
		PricePerShare: price,
		Commission:    commission,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.transactionRepo.InsertTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return transaction, nil
}
