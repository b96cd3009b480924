package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/ibkr"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
)

// IbkrSyncService imports IBKR flex reports: accounts, trades, open
// positions and dividends. The flex token is fernet-encrypted before it
// is persisted. Imports are idempotent because flex transaction IDs are
// used as row IDs.
type IbkrSyncService struct {
	client          ibkr.Client
	ibkrRepo        *repository.IbkrRepository
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	positionRepo    *repository.PositionRepository
	dividendRepo    *repository.DividendRepository
	fernetKey       *fernet.Key
}

// NewIbkrSyncService creates a new IbkrSyncService. fernetKey is the
// base64 key from configuration; an empty key disables token storage.
func NewIbkrSyncService(
	client ibkr.Client,
	ibkrRepo *repository.IbkrRepository,
	accountRepo *repository.AccountRepository,
	transactionRepo *repository.TransactionRepository,
	positionRepo *repository.PositionRepository,
	dividendRepo *repository.DividendRepository,
	fernetKey string,
) (*IbkrSyncService, error) {
	s := &IbkrSyncService{
		client:          client,
		ibkrRepo:        ibkrRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		positionRepo:    positionRepo,
		dividendRepo:    dividendRepo,
	}

	if fernetKey != "" {
		keys, err := fernet.DecodeKeys(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fernet key: %w", err)
		}
		s.fernetKey = keys[0]
	}

	return s, nil
}

// SaveConfig encrypts and stores the flex token alongside the query ID.
func (s *IbkrSyncService) SaveConfig(ctx context.Context, flexToken string, flexQueryID int, autoSync bool) error {
	if s.fernetKey == nil {
		return fmt.Errorf("ibkr fernet key is not configured")
	}
	if flexToken == "" || flexQueryID == 0 {
		return fmt.Errorf("%w: flex token and query ID", apperrors.ErrMissingRequiredField)
	}

	encrypted, err := fernet.EncryptAndSign([]byte(flexToken), s.fernetKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt flex token: %w", err)
	}

	row, err := s.ibkrRepo.GetConfig()
	if err != nil && err != apperrors.ErrIbkrConfigNotFound {
		return err
	}

	row.EncryptedToken = string(encrypted)
	row.FlexQueryID = flexQueryID
	row.AutoSyncEnabled = autoSync

	return s.ibkrRepo.SaveConfig(ctx, row)
}

// GetConfig returns the stored configuration without the token.
func (s *IbkrSyncService) GetConfig() (model.IbkrConfig, error) {
	row, err := s.ibkrRepo.GetConfig()
	if err == apperrors.ErrIbkrConfigNotFound {
		return model.IbkrConfig{Configured: false}, nil
	}
	if err != nil {
		return model.IbkrConfig{}, err
	}

	return model.IbkrConfig{
		Configured:      row.EncryptedToken != "",
		FlexQueryID:     row.FlexQueryID,
		TokenExpiresAt:  row.TokenExpiresAt,
		LastImportDate:  row.LastImportDate,
		AutoSyncEnabled: row.AutoSyncEnabled,
	}, nil
}

// AutoSyncEnabled reports whether the scheduled job should run.
func (s *IbkrSyncService) AutoSyncEnabled() bool {
	row, err := s.ibkrRepo.GetConfig()
	if err != nil {
		return false
	}
	return row.AutoSyncEnabled
}

// Sync fetches the configured flex report and upserts its contents.
func (s *IbkrSyncService) Sync(ctx context.Context) (model.IbkrSyncResult, error) {
	row, err := s.ibkrRepo.GetConfig()
	if err != nil {
		return model.IbkrSyncResult{}, err
	}
	if s.fernetKey == nil {
		return model.IbkrSyncResult{}, fmt.Errorf("ibkr fernet key is not configured")
	}

	token := fernet.VerifyAndDecrypt([]byte(row.EncryptedToken), 0, []*fernet.Key{s.fernetKey})
	if token == nil {
		return model.IbkrSyncResult{}, fmt.Errorf("failed to decrypt flex token")
	}

	report, err := s.client.RequestFlexReport(ctx, string(token), row.FlexQueryID)
	if err != nil {
		return model.IbkrSyncResult{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToSyncIbkr, err)
	}

	result := model.IbkrSyncResult{SyncedAt: time.Now().UTC()}
	for _, statement := range report.FlexStatements.FlexStatements {
		if err := s.importStatement(ctx, statement, &result); err != nil {
			return model.IbkrSyncResult{}, err
		}
		result.AccountsSeen++
	}

	if err := s.ibkrRepo.UpdateLastImportDate(ctx, result.SyncedAt); err != nil {
		return model.IbkrSyncResult{}, err
	}

	log.Info().
		Int("accounts", result.AccountsSeen).
		Int("transactions_created", result.TransactionsCreated).
		Int("positions_upserted", result.PositionsUpserted).
		Int("dividends_created", result.DividendsCreated).
		Msg("ibkr sync complete")

	return result, nil
}

func (s *IbkrSyncService) importStatement(ctx context.Context, statement ibkr.FlexStatement, result *model.IbkrSyncResult) error {
	account, err := s.accountRepo.GetAccountByNumber(statement.AccountID)
	if err == apperrors.ErrAccountNotFound {
		account = model.Account{
			ID:            uuid.New().String(),
			AccountNumber: statement.AccountID,
			Broker:        "ibkr",
			Name:          "IBKR " + statement.AccountID,
			Currency:      "USD",
		}
		if err := s.accountRepo.InsertAccount(ctx, &account); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, trade := range statement.Trades.Trades {
		if err := s.importTrade(ctx, account.ID, trade, result); err != nil {
			return err
		}
	}

	for _, position := range statement.OpenPositions.OpenPositions {
		p := model.Position{
			ID:          uuid.New().String(),
			AccountID:   account.ID,
			Symbol:      position.Symbol,
			Quantity:    decimal.NewFromFloat(position.Position),
			AverageCost: decimal.NewFromFloat(position.CostBasis),
		}
		if err := s.positionRepo.UpsertPosition(ctx, &p); err != nil {
			return err
		}
		result.PositionsUpserted++
	}

	for _, cash := range statement.CashTransactions.CashTransactions {
		if cash.Type != "Dividends" {
			continue
		}
		id := fmt.Sprintf("ibkr-cash-%d", cash.TransactionID)
		exists, err := s.dividendRepo.DividendExists(id)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		payDate, err := parseFlexDate(cash.DateTime)
		if err != nil {
			log.Warn().Str("dividend_id", id).Str("date", cash.DateTime).Msg("skipping dividend with unparseable date")
			continue
		}

		dividend := model.Dividend{
			ID:        id,
			AccountID: account.ID,
			Symbol:    cash.Symbol,
			PayDate:   payDate,
			Amount:    decimal.NewFromFloat(cash.Amount),
			Currency:  cash.Currency,
		}
		if err := s.dividendRepo.InsertDividend(ctx, &dividend); err != nil {
			return err
		}
		result.DividendsCreated++
	}

	return nil
}

func (s *IbkrSyncService) importTrade(ctx context.Context, accountID string, trade ibkr.FlexTrade, result *model.IbkrSyncResult) error {
	id := fmt.Sprintf("ibkr-%d", trade.TransactionID)
	exists, err := s.transactionRepo.TransactionExists(id)
	if err != nil {
		return err
	}
	if exists {
		result.TransactionsSkipped++
		return nil
	}

	transactionType := model.TransactionTypeBuy
	if trade.BuySell == "SELL" {
		transactionType = model.TransactionTypeSell
	}

	date, err := parseFlexDate(trade.TradeDate)
	if err != nil {
		log.Warn().Str("transaction_id", id).Str("date", trade.TradeDate).Msg("skipping trade with unparseable date")
		result.TransactionsSkipped++
		return nil
	}

	// Flex reports sells as negative quantity and commission as a
	// negative cash amount.
	transaction := model.Transaction{
		ID:            id,
		AccountID:     accountID,
		Symbol:        trade.Symbol,
		Date:          date,
		Type:          transactionType,
		Shares:        decimal.NewFromFloat(math.Abs(trade.Quantity)),
		PricePerShare: decimal.NewFromFloat(trade.TradePrice),
		Commission:    decimal.NewFromFloat(math.Abs(trade.IbCommission)),
	}
	if err := s.transactionRepo.InsertTransaction(ctx, &transaction); err != nil {
		return err
	}
	result.TransactionsCreated++

	return nil
}

// parseFlexDate parses the date formats that appear in flex statements.
func parseFlexDate(str string) (time.Time, error) {
	for _, layout := range []string{"20060102;150405", "20060102", "2006-01-02"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse flex date: %q", str)
}
