// Package memory provides in-memory repository implementations backed by
// mutex-guarded maps. They serve tests and local development without Postgres;
// the semantics mirror the pgsql package, including conflict detection on
// concurrent reversals.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portsrepo "github.com/hisaab-app/hisaab_backend/internal/core/ports/repositories"
	"github.com/hisaab-app/hisaab_backend/internal/utils/pagination"
)

// LedgerRepository is an in-memory append-only ledger store.
type LedgerRepository struct {
	mu           sync.RWMutex
	nextEntryID  int64
	entries      []domain.LedgerEntry
	transactions map[string]*domain.Transaction
	txnOrder     []string
}

// NewLedgerRepository creates an empty in-memory ledger repository.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		nextEntryID:  1,
		transactions: make(map[string]*domain.Transaction),
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

// SaveTransaction appends the transaction and its entries atomically.
func (r *LedgerRepository) SaveTransaction(_ context.Context, txn domain.Transaction, entries []domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[txn.TransactionID]; exists {
		return fmt.Errorf("transaction %s: %w", txn.TransactionID, apperrors.ErrDuplicate)
	}
	r.appendLocked(&txn, entries)
	return nil
}

// SaveReversal appends the reversal and flips the original to REVERSED under
// the same lock. Loses the race to a concurrent reversal with ErrConflict.
func (r *LedgerRepository) SaveReversal(_ context.Context, reversal domain.Transaction, entries []domain.LedgerEntry, originalTransactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	original, ok := r.transactions[originalTransactionID]
	if !ok {
		return fmt.Errorf("transaction %s: %w", originalTransactionID, apperrors.ErrNotFound)
	}
	if original.Status != domain.Posted {
		return fmt.Errorf("transaction %s is %s: %w", originalTransactionID, original.Status, apperrors.ErrConflict)
	}
	if _, exists := r.transactions[reversal.TransactionID]; exists {
		return fmt.Errorf("transaction %s: %w", reversal.TransactionID, apperrors.ErrDuplicate)
	}

	r.appendLocked(&reversal, entries)
	original.Status = domain.Reversed
	original.ReversingTransactionID = &reversal.TransactionID
	original.LastUpdatedAt = reversal.CreatedAt
	original.LastUpdatedBy = reversal.CreatedBy
	return nil
}

// appendLocked assigns entry IDs and stores the transaction. Caller holds mu.
func (r *LedgerRepository) appendLocked(txn *domain.Transaction, entries []domain.LedgerEntry) {
	stored := make([]domain.LedgerEntry, len(entries))
	for i, entry := range entries {
		entry.EntryID = r.nextEntryID
		r.nextEntryID++
		stored[i] = entry
		r.entries = append(r.entries, entry)
	}
	txn.Entries = stored
	r.transactions[txn.TransactionID] = txn
	r.txnOrder = append(r.txnOrder, txn.TransactionID)
}

// FindTransactionByID retrieves a transaction with its entries.
func (r *LedgerRepository) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, ok := r.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	cp := *txn
	cp.Entries = append([]domain.LedgerEntry(nil), txn.Entries...)
	return &cp, nil
}

// ListTransactionsForUser pages transactions touching the user, most recent
// first, ordered by creation time with the transaction ID as tie-break.
func (r *LedgerRepository) ListTransactionsForUser(_ context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matching := make([]domain.Transaction, 0)
	for _, id := range r.txnOrder {
		txn := r.transactions[id]
		if !transactionTouchesUser(txn, userID) {
			continue
		}
		cp := *txn
		cp.Entries = append([]domain.LedgerEntry(nil), txn.Entries...)
		matching = append(matching, cp)
	}
	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].CreatedAt.After(matching[j].CreatedAt)
		}
		return matching[i].TransactionID > matching[j].TransactionID
	})

	start := 0
	if nextToken != nil && *nextToken != "" {
		afterTime, afterID, err := pagination.DecodeTimeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		for i, txn := range matching {
			if txn.CreatedAt.Before(afterTime) || (txn.CreatedAt.Equal(afterTime) && txn.TransactionID < afterID) {
				start = i
				break
			}
			start = i + 1
		}
	}

	end := start + limit
	if end > len(matching) {
		end = len(matching)
	}
	page := matching[start:end]

	var token *string
	if end < len(matching) && len(page) > 0 {
		last := page[len(page)-1]
		t := pagination.EncodeTimeToken(last.CreatedAt, last.TransactionID)
		token = &t
	}
	return page, token, nil
}

// ListAllEntries returns every entry in insertion order.
func (r *LedgerRepository) ListAllEntries(_ context.Context) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.LedgerEntry(nil), r.entries...), nil
}

// ListEntriesForUser pages the user's entries in insertion order.
func (r *LedgerRepository) ListEntriesForUser(_ context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var afterID int64
	if nextToken != nil && *nextToken != "" {
		id, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		afterID = id
	}

	page := make([]domain.LedgerEntry, 0, limit)
	more := false
	for _, entry := range r.entries {
		if entry.EntryID <= afterID {
			continue
		}
		if entry.DebtorID != userID && entry.CreditorID != userID {
			continue
		}
		if len(page) == limit {
			more = true
			break
		}
		page = append(page, entry)
	}

	var token *string
	if more && len(page) > 0 {
		t := pagination.EncodeEntryToken(page[len(page)-1].EntryID)
		token = &t
	}
	return page, token, nil
}

func transactionTouchesUser(txn *domain.Transaction, userID string) bool {
	if txn.PayerID == userID || txn.CreatedBy == userID {
		return true
	}
	for _, entry := range txn.Entries {
		if entry.DebtorID == userID || entry.CreditorID == userID {
			return true
		}
	}
	return false
}
