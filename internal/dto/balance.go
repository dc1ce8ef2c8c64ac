package dto

import (
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CounterpartBalanceResponse is one line of a balance summary.
type CounterpartBalanceResponse struct {
	CounterpartID string          `json:"counterpartID"`
	Amount        decimal.Decimal `json:"amount"`
	Direction     string          `json:"direction"` // OWED_TO_USER or USER_OWES
}

// BalanceSummaryResponse is the per-user standing returned by the balance endpoint.
type BalanceSummaryResponse struct {
	UserID          string                       `json:"userID"`
	TotalOwedToUser decimal.Decimal              `json:"totalOwedToUser"`
	TotalUserOwes   decimal.Decimal              `json:"totalUserOwes"`
	NetBalance      decimal.Decimal              `json:"netBalance"`
	PerCounterpart  []CounterpartBalanceResponse `json:"perCounterpart"`
}

// TransferResponse is one proposed settling payment.
type TransferResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// ReconciliationPlanResponse is the ordered transfer list that settles everyone up.
type ReconciliationPlanResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

// ToBalanceSummaryResponse converts a domain.BalanceSummary to its DTO.
func ToBalanceSummaryResponse(s *domain.BalanceSummary) BalanceSummaryResponse {
	perCounterpart := make([]CounterpartBalanceResponse, len(s.PerCounterpart))
	for i, c := range s.PerCounterpart {
		perCounterpart[i] = CounterpartBalanceResponse{
			CounterpartID: c.CounterpartID,
			Amount:        c.Amount,
			Direction:     string(c.Direction),
		}
	}
	return BalanceSummaryResponse{
		UserID:          s.UserID,
		TotalOwedToUser: s.TotalOwedToUser,
		TotalUserOwes:   s.TotalUserOwes,
		NetBalance:      s.NetBalance,
		PerCounterpart:  perCounterpart,
	}
}

// ToReconciliationPlanResponse converts a transfer plan to its DTO.
func ToReconciliationPlanResponse(plan []domain.Transfer) ReconciliationPlanResponse {
	transfers := make([]TransferResponse, len(plan))
	for i, t := range plan {
		transfers[i] = TransferResponse{From: t.FromUserID, To: t.ToUserID, Amount: t.Amount}
	}
	return ReconciliationPlanResponse{Transfers: transfers}
}
