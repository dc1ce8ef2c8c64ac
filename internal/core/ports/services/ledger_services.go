package services

import (
	"context"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/hisaab-app/hisaab_backend/internal/dto"
)

// LedgerSvcFacade exposes the write path of the ledger plus the raw entry view.
// Every write appends; nothing is ever mutated or deleted.
type LedgerSvcFacade interface {
	// RecordExpense validates and appends an expense transaction: one entry
	// per non-payer participant owing the payer their share.
	RecordExpense(ctx context.Context, req dto.RecordExpenseRequest, creatorUserID string) (*domain.Transaction, error)

	// RecordSettlement appends a single-entry settlement transaction.
	RecordSettlement(ctx context.Context, req dto.RecordSettlementRequest, creatorUserID string) (*domain.Transaction, error)

	// ReverseTransaction appends a compensating transaction with debtor and
	// creditor swapped on every entry, and marks the original REVERSED.
	// A transaction can be reversed at most once.
	ReverseTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error)

	// ListEntriesForUser pages through the user's entries in insertion order.
	ListEntriesForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}
