package domain

import "github.com/shopspring/decimal"

// PairBalance is the collapsed net amount one user owes another.
// Each unordered pair appears at most once, oriented so Amount is positive:
// DebtorID owes CreditorID. Pairs that net to zero are omitted entirely.
type PairBalance struct {
	DebtorID   string          `json:"debtorID"`
	CreditorID string          `json:"creditorID"`
	Amount     decimal.Decimal `json:"amount"`
}

// NetPosition is a user's total credit minus total debit across all pairs.
// Positive means the user is owed money, negative means the user owes.
type NetPosition struct {
	UserID string          `json:"userID"`
	Amount decimal.Decimal `json:"amount"`
}

// Transfer is one proposed settling payment in a reconciliation plan.
type Transfer struct {
	FromUserID string          `json:"from"`
	ToUserID   string          `json:"to"`
	Amount     decimal.Decimal `json:"amount"`
}

// BalanceDirection orients a counterpart balance relative to the queried user.
type BalanceDirection string

const (
	DirectionOwedToUser BalanceDirection = "OWED_TO_USER"
	DirectionUserOwes   BalanceDirection = "USER_OWES"
)

// CounterpartBalance is one line of a user's balance summary.
type CounterpartBalance struct {
	CounterpartID string           `json:"counterpartID"`
	Amount        decimal.Decimal  `json:"amount"` // Always positive; see Direction
	Direction     BalanceDirection `json:"direction"`
}

// BalanceSummary aggregates a single user's standing against everyone else.
type BalanceSummary struct {
	UserID          string               `json:"userID"`
	TotalOwedToUser decimal.Decimal      `json:"totalOwedToUser"`
	TotalUserOwes   decimal.Decimal      `json:"totalUserOwes"`
	NetBalance      decimal.Decimal      `json:"netBalance"`
	PerCounterpart  []CounterpartBalance `json:"perCounterpart"`
}
