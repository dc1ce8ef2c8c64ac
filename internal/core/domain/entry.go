package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry by how it was produced.
type EntryKind string

const (
	EntryExpenseShare EntryKind = "EXPENSE_SHARE"
	EntrySettlement   EntryKind = "SETTLEMENT"
	EntryReversal     EntryKind = "REVERSAL"
)

// LedgerEntry is the atomic unit of the ledger: one debtor owes one creditor
// a positive amount. Entries are immutable and never deleted; a mistake is
// corrected by appending a reversal entry with debtor and creditor swapped.
type LedgerEntry struct {
	EntryID       int64           `json:"entryID"`       // Store-assigned, strictly monotonic
	TransactionID string          `json:"transactionID"` // Groups entries appended together
	DebtorID      string          `json:"debtorID"`
	CreditorID    string          `json:"creditorID"`
	Amount        decimal.Decimal `json:"amount"` // Always positive
	CurrencyCode  string          `json:"currencyCode"`
	Kind          EntryKind       `json:"kind"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// NetEffectOn returns the signed effect of this entry on the given user's
// position: positive when the user is the creditor, negative when the debtor,
// zero when the entry does not touch the user.
func (e LedgerEntry) NetEffectOn(userID string) decimal.Decimal {
	switch userID {
	case e.CreditorID:
		return e.Amount
	case e.DebtorID:
		return e.Amount.Neg()
	default:
		return decimal.Zero
	}
}
