package repositories

import (
	"context"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
)

// TransactionReader defines read operations over transaction groupings.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its entries populated.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsForUser retrieves transactions touching the user, most
	// recent first, with token-based pagination. Entries are populated.
	ListTransactionsForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// EntryReader defines read operations over raw ledger entries.
type EntryReader interface {
	// ListAllEntries retrieves every ledger entry in insertion order. This is
	// the fold input for balance computation.
	ListAllEntries(ctx context.Context) ([]domain.LedgerEntry, error)

	// ListEntriesForUser retrieves entries where the user appears as debtor or
	// creditor, in insertion order, with token-based pagination.
	ListEntriesForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error)
}

// TransactionWriter defines the only write operations in the core: atomic
// appends. Entries belonging to one call become visible together or not at all.
type TransactionWriter interface {
	// SaveTransaction appends a transaction and its entries atomically.
	// Entry IDs are assigned by the store in insertion order.
	SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry) error

	// SaveReversal appends the reversal transaction and its entries, and marks
	// the original transaction REVERSED with forward linkage, all atomically.
	// Returns apperrors.ErrConflict if the original is no longer POSTED when
	// the write lock is taken (a concurrent reversal won the race).
	SaveReversal(ctx context.Context, reversal domain.Transaction, entries []domain.LedgerEntry, originalTransactionID string) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	TransactionReader
	EntryReader
	TransactionWriter
}
