package dto

import (
	"time"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseSplitInput names one participant of an expense. Which of the
// optional fields matters depends on the request's split mode: Amount for
// EXACT, Percent for PERCENTAGE, Shares for SHARES; EQUAL needs none.
type ExpenseSplitInput struct {
	UserID  string           `json:"userID" binding:"required"`
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	Percent *decimal.Decimal `json:"percent,omitempty"`
	Shares  *int64           `json:"shares,omitempty"`
}

// RecordExpenseRequest is the payload for recording a shared expense.
type RecordExpenseRequest struct {
	Description string              `json:"description" binding:"required"`
	TotalAmount decimal.Decimal     `json:"totalAmount" binding:"required,positivedecimal"`
	PayerID     string              `json:"payerID" binding:"required"`
	SplitMode   string              `json:"splitMode,omitempty"` // EQUAL (default), EXACT, PERCENTAGE, SHARES
	Splits      []ExpenseSplitInput `json:"splits" binding:"required,min=1,dive"`
}

// RecordSettlementRequest is the payload for recording a direct payment.
type RecordSettlementRequest struct {
	FromUserID  string          `json:"fromUserID" binding:"required"`
	ToUserID    string          `json:"toUserID" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required,positivedecimal"`
	Description string          `json:"description,omitempty"`
}

// EntryResponse defines the data returned for a single ledger entry.
// Amounts serialize as decimal strings, never binary floats.
type EntryResponse struct {
	EntryID       int64           `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	DebtorID      string          `json:"debtorID"`
	CreditorID    string          `json:"creditorID"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	Kind          string          `json:"kind"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID          string          `json:"transactionID"`
	Kind                   string          `json:"kind"`
	Description            string          `json:"description"`
	TotalAmount            decimal.Decimal `json:"totalAmount"`
	CurrencyCode           string          `json:"currencyCode"`
	PayerID                string          `json:"payerID"`
	Status                 string          `json:"status"`
	OriginalTransactionID  *string         `json:"originalTransactionID,omitempty"`
	ReversingTransactionID *string         `json:"reversingTransactionID,omitempty"`
	CreatedAt              time.Time       `json:"createdAt"`
	CreatedBy              string          `json:"createdBy"`
	Entries                []EntryResponse `json:"entries,omitempty"`
}

// ListEntriesResponse pages through a user's ledger entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain.LedgerEntry to its DTO.
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:       e.EntryID,
		TransactionID: e.TransactionID,
		DebtorID:      e.DebtorID,
		CreditorID:    e.CreditorID,
		Amount:        e.Amount,
		CurrencyCode:  e.CurrencyCode,
		Kind:          string(e.Kind),
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain.LedgerEntry to DTOs.
func ToEntryResponses(entries []domain.LedgerEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(&e)
	}
	return responses
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:          t.TransactionID,
		Kind:                   string(t.Kind),
		Description:            t.Description,
		TotalAmount:            t.TotalAmount,
		CurrencyCode:           t.CurrencyCode,
		PayerID:                t.PayerID,
		Status:                 string(t.Status),
		OriginalTransactionID:  t.OriginalTransactionID,
		ReversingTransactionID: t.ReversingTransactionID,
		CreatedAt:              t.CreatedAt,
		CreatedBy:              t.CreatedBy,
		Entries:                ToEntryResponses(t.Entries),
	}
}
