package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portsrepo "github.com/hisaab-app/hisaab_backend/internal/core/ports/repositories"
	"github.com/hisaab-app/hisaab_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

// newPgxLedgerRepository creates a new repository for transaction and entry data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{pool: pool}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `
	transaction_id, kind, description, total_amount, currency_code, payer_id, status,
	original_transaction_id, reversing_transaction_id,
	created_at, created_by, last_updated_at, last_updated_by
`

const entryColumns = `
	entry_id, transaction_id, debtor_id, creditor_id, amount, currency_code, kind, description, created_at
`

const insertTransactionQuery = `
	INSERT INTO transactions (
		transaction_id, kind, description, total_amount, currency_code, payer_id, status,
		original_transaction_id, reversing_transaction_id,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

const insertEntryQuery = `
	INSERT INTO ledger_entries (transaction_id, debtor_id, creditor_id, amount, currency_code, kind, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

// SaveTransaction inserts the transaction row and all entry rows within one DB
// transaction. Entry IDs come from the ledger_entries sequence, so insertion
// order is the ledger order.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.LedgerEntry) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		return insertTransactionTx(ctx, tx, txn, entries)
	})
}

// SaveReversal locks the original row, rechecks its status, inserts the
// reversal, and flips the original to REVERSED, all in one DB transaction.
func (r *PgxLedgerRepository) SaveReversal(ctx context.Context, reversal domain.Transaction, entries []domain.LedgerEntry, originalTransactionID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx,
			`SELECT status FROM transactions WHERE transaction_id = $1 FOR UPDATE;`,
			originalTransactionID,
		).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("transaction %s: %w", originalTransactionID, apperrors.ErrNotFound)
			}
			return apperrors.NewAppError(500, "failed to lock transaction "+originalTransactionID, err)
		}
		if status != string(domain.Posted) {
			return fmt.Errorf("transaction %s is %s: %w", originalTransactionID, status, apperrors.ErrConflict)
		}

		if err := insertTransactionTx(ctx, tx, reversal, entries); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE transactions
			SET status = $1, reversing_transaction_id = $2, last_updated_at = $3, last_updated_by = $4
			WHERE transaction_id = $5;
		`, string(domain.Reversed), reversal.TransactionID, reversal.CreatedAt, reversal.CreatedBy, originalTransactionID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to mark transaction "+originalTransactionID+" reversed", err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("transaction %s vanished during reversal: %w", originalTransactionID, apperrors.ErrConflict)
		}
		return nil
	})
}

// insertTransactionTx inserts a transaction row plus its entries using tx.
func insertTransactionTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction, entries []domain.LedgerEntry) error {
	_, err := tx.Exec(ctx, insertTransactionQuery,
		txn.TransactionID,
		string(txn.Kind),
		txn.Description,
		txn.TotalAmount,
		txn.CurrencyCode,
		txn.PayerID,
		string(txn.Status),
		txn.OriginalTransactionID,
		txn.ReversingTransactionID,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, err)
	}

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(insertEntryQuery,
			entry.TransactionID,
			entry.DebtorID,
			entry.CreditorID,
			entry.Amount,
			entry.CurrencyCode,
			string(entry.Kind),
			entry.Description,
			entry.CreatedAt,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert entries for transaction "+txn.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction with its entries populated.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	entries, err := r.entriesForTransactions(ctx, []string{transactionID})
	if err != nil {
		return nil, err
	}
	txn.Entries = entries[transactionID]
	return txn, nil
}

// ListTransactionsForUser pages transactions touching the user, most recent
// first, with keyset pagination on (created_at, transaction_id).
func (r *PgxLedgerRepository) ListTransactionsForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE (t.payer_id = $1 OR t.created_by = $1 OR EXISTS (
			SELECT 1 FROM ledger_entries e
			WHERE e.transaction_id = t.transaction_id
			  AND (e.debtor_id = $1 OR e.creditor_id = $1)
		))
	`
	args := []any{userID}

	if nextToken != nil && *nextToken != "" {
		afterTime, afterID, err := pagination.DecodeTimeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (t.created_at, t.transaction_id) < ($2, $3)`
		args = append(args, afterTime, afterID)
	}

	query += fmt.Sprintf(` ORDER BY t.created_at DESC, t.transaction_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1) // one extra row decides whether a token is needed

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list transactions for user "+userID, err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading transaction rows", err)
	}

	var token *string
	if len(transactions) > limit {
		transactions = transactions[:limit]
		last := transactions[limit-1]
		t := pagination.EncodeTimeToken(last.CreatedAt, last.TransactionID)
		token = &t
	}

	if len(transactions) > 0 {
		ids := make([]string, len(transactions))
		for i, txn := range transactions {
			ids[i] = txn.TransactionID
		}
		entriesByTxn, err := r.entriesForTransactions(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for i := range transactions {
			transactions[i].Entries = entriesByTxn[transactions[i].TransactionID]
		}
	}

	return transactions, token, nil
}

// ListAllEntries retrieves every ledger entry in insertion order.
func (r *PgxLedgerRepository) ListAllEntries(ctx context.Context) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries ORDER BY entry_id;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list ledger entries", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListEntriesForUser pages the user's entries in insertion order, keyset on entry_id.
func (r *PgxLedgerRepository) ListEntriesForUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	var afterID int64
	if nextToken != nil && *nextToken != "" {
		id, err := pagination.DecodeEntryToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		afterID = id
	}

	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE (debtor_id = $1 OR creditor_id = $1) AND entry_id > $2
		ORDER BY entry_id
		LIMIT $3;
	`
	rows, err := r.pool.Query(ctx, query, userID, afterID, limit+1)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list entries for user "+userID, err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, nil, err
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		t := pagination.EncodeEntryToken(entries[limit-1].EntryID)
		token = &t
	}
	return entries, token, nil
}

// entriesForTransactions loads entries for the given transaction IDs, grouped
// by transaction, each group in insertion order.
func (r *PgxLedgerRepository) entriesForTransactions(ctx context.Context, transactionIDs []string) (map[string][]domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE transaction_id = ANY($1) ORDER BY entry_id;`

	rows, err := r.pool.Query(ctx, query, transactionIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to load entries for transactions", err)
	}
	defer rows.Close()

	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.LedgerEntry, len(transactionIDs))
	for _, entry := range entries {
		grouped[entry.TransactionID] = append(grouped[entry.TransactionID], entry)
	}
	return grouped, nil
}

func collectEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		var entry domain.LedgerEntry
		var kind string
		err := rows.Scan(
			&entry.EntryID,
			&entry.TransactionID,
			&entry.DebtorID,
			&entry.CreditorID,
			&entry.Amount,
			&entry.CurrencyCode,
			&kind,
			&entry.Description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger entry row", err)
		}
		entry.Kind = domain.EntryKind(kind)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed reading ledger entry rows", err)
	}
	return entries, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var kind, status string
	var originalID, reversingID sql.NullString

	err := row.Scan(
		&txn.TransactionID,
		&kind,
		&txn.Description,
		&txn.TotalAmount,
		&txn.CurrencyCode,
		&txn.PayerID,
		&status,
		&originalID,
		&reversingID,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	txn.Kind = domain.TransactionKind(kind)
	txn.Status = domain.TransactionStatus(status)
	if originalID.Valid {
		txn.OriginalTransactionID = &originalID.String
	}
	if reversingID.Valid {
		txn.ReversingTransactionID = &reversingID.String
	}
	return &txn, nil
}
