package domain

import "github.com/shopspring/decimal"

// TransactionHistoryItem is one row of a user's history view: the transaction
// plus its signed net effect on that user's balance.
type TransactionHistoryItem struct {
	Transaction Transaction     `json:"transaction"`
	NetEffect   decimal.Decimal `json:"netEffect"`
}

// TransactionExplanation reconstructs why a balance exists: the original
// entries plus, when the transaction was reversed, the reversal that cancels them.
type TransactionExplanation struct {
	Transaction Transaction  `json:"transaction"`
	Reversal    *Transaction `json:"reversal,omitempty"`
}
