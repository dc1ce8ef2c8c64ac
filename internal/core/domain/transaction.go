package domain

import "github.com/shopspring/decimal"

// TransactionKind classifies the command that produced a transaction.
type TransactionKind string

const (
	TxnExpense    TransactionKind = "EXPENSE"
	TxnSettlement TransactionKind = "SETTLEMENT"
	TxnReversal   TransactionKind = "REVERSAL"
)

// TransactionStatus indicates the state of a transaction.
type TransactionStatus string

const (
	Posted   TransactionStatus = "POSTED"
	Reversed TransactionStatus = "REVERSED"
)

// Transaction is a named group of ledger entries appended atomically.
// An expense with N participants produces up to N entries (each non-payer
// owes the payer their share); a settlement produces exactly one.
type Transaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	Kind          TransactionKind `json:"kind"`
	Description   string          `json:"description"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CurrencyCode  string          `json:"currencyCode"`
	// PayerID is the user who paid for an expense, or the debtor of a settlement.
	PayerID string            `json:"payerID"`
	Status  TransactionStatus `json:"status"`
	// OriginalTransactionID links a reversal back to the transaction it cancels.
	OriginalTransactionID *string `json:"originalTransactionID,omitempty"`
	// ReversingTransactionID links a reversed transaction forward to its reversal.
	ReversingTransactionID *string `json:"reversingTransactionID,omitempty"`
	AuditFields
	Entries []LedgerEntry `json:"entries,omitempty"` // Often loaded separately
}

// NetEffectOn returns the signed net effect of the transaction's entries on
// the given user's position.
func (t Transaction) NetEffectOn(userID string) decimal.Decimal {
	net := decimal.Zero
	for _, e := range t.Entries {
		net = net.Add(e.NetEffectOn(userID))
	}
	return net
}
