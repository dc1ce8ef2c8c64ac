package services

import (
	"context"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
)

// HistorySvcFacade exposes ordered, filterable read views over the ledger
// for audit and explanation.
type HistorySvcFacade interface {
	// HistoryForUser returns transactions touching the user, most recent
	// first, each annotated with its net effect on that user's balance.
	HistoryForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.TransactionHistoryItem, *string, error)

	// ExplainTransaction returns the original entries plus the reversal
	// entries when the transaction has been reversed.
	ExplainTransaction(ctx context.Context, transactionID string) (*domain.TransactionExplanation, error)
}
