package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portsrepo "github.com/hisaab-app/hisaab_backend/internal/core/ports/repositories"
	portssvc "github.com/hisaab-app/hisaab_backend/internal/core/ports/services"
	"github.com/hisaab-app/hisaab_backend/internal/middleware"
)

// historyService provides audit views over the ledger.
type historyService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	userRepo   portsrepo.UserReader
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(ledgerRepo portsrepo.LedgerRepositoryFacade, userRepo portsrepo.UserReader) portssvc.HistorySvcFacade {
	return &historyService{ledgerRepo: ledgerRepo, userRepo: userRepo}
}

var _ portssvc.HistorySvcFacade = (*historyService)(nil)

// HistoryForUser returns transactions touching the user, most recent first,
// each annotated with its net effect on the user's balance.
func (s *historyService) HistoryForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.TransactionHistoryItem, *string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return nil, nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	if limit <= 0 {
		limit = 20
	}

	transactions, next, err := s.ledgerRepo.ListTransactionsForUser(ctx, userID, limit, nextToken)
	if err != nil {
		logger.Error("Failed to list transactions for history", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to retrieve history: %w", err)
	}

	items := make([]domain.TransactionHistoryItem, len(transactions))
	for i, txn := range transactions {
		items[i] = domain.TransactionHistoryItem{
			Transaction: txn,
			NetEffect:   txn.NetEffectOn(userID),
		}
	}
	return items, next, nil
}

// ExplainTransaction returns the original entries plus the reversal entries
// when the transaction has been reversed.
func (s *historyService) ExplainTransaction(ctx context.Context, transactionID string) (*domain.TransactionExplanation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to fetch transaction for explanation", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	explanation := &domain.TransactionExplanation{Transaction: *txn}
	if txn.ReversingTransactionID != nil {
		reversal, err := s.ledgerRepo.FindTransactionByID(ctx, *txn.ReversingTransactionID)
		if err != nil {
			logger.Error("Failed to fetch reversal for explanation",
				slog.String("reversal_transaction_id", *txn.ReversingTransactionID),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to retrieve reversal entries: %w", apperrors.ErrInternal)
		}
		explanation.Reversal = reversal
	}
	return explanation, nil
}
