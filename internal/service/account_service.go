package service

import (
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
)

// AccountService handles account-related business logic operations.
type AccountService struct {
	accountRepo *repository.AccountRepository
}

// NewAccountService creates a new AccountService with the provided repository dependencies.
func NewAccountService(accountRepo *repository.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// GetAllAccounts retrieves all brokerage accounts.
func (s *AccountService) GetAllAccounts() ([]model.Account, error) {
	return s.accountRepo.GetAccounts()
}

// GetAccount retrieves a single account by ID.
func (s *AccountService) GetAccount(accountID string) (model.Account, error) {
	return s.accountRepo.GetAccount(accountID)
}
