package dto

import (
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// HistoryItemResponse is one row of a user's history: the transaction plus
// its signed net effect on that user's balance.
type HistoryItemResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	NetEffect   decimal.Decimal     `json:"netEffect"`
}

// ListHistoryResponse pages through a user's transaction history.
type ListHistoryResponse struct {
	Items     []HistoryItemResponse `json:"items"`
	NextToken *string               `json:"nextToken,omitempty"`
}

// ExplainTransactionResponse shows a transaction's entries plus its reversal,
// if one exists.
type ExplainTransactionResponse struct {
	Transaction TransactionResponse  `json:"transaction"`
	Reversal    *TransactionResponse `json:"reversal,omitempty"`
}

// ToHistoryItemResponses converts domain history items to DTOs.
func ToHistoryItemResponses(items []domain.TransactionHistoryItem) []HistoryItemResponse {
	responses := make([]HistoryItemResponse, len(items))
	for i, item := range items {
		responses[i] = HistoryItemResponse{
			Transaction: ToTransactionResponse(&item.Transaction),
			NetEffect:   item.NetEffect,
		}
	}
	return responses
}

// ToExplainTransactionResponse converts a domain explanation to its DTO.
func ToExplainTransactionResponse(ex *domain.TransactionExplanation) ExplainTransactionResponse {
	resp := ExplainTransactionResponse{Transaction: ToTransactionResponse(&ex.Transaction)}
	if ex.Reversal != nil {
		reversal := ToTransactionResponse(ex.Reversal)
		resp.Reversal = &reversal
	}
	return resp
}
