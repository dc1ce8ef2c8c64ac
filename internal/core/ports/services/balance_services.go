package services

import (
	"context"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
)

// BalanceSvcFacade exposes derived balance views. Balances are never stored;
// they are recomputed from the full entry history on every read.
type BalanceSvcFacade interface {
	// NetBalances folds the whole ledger into collapsed pairwise balances.
	NetBalances(ctx context.Context) ([]domain.PairBalance, error)

	// GetBalanceSummary aggregates one user's standing against all counterparts.
	GetBalanceSummary(ctx context.Context, userID string) (*domain.BalanceSummary, error)
}

// ReconciliationSvcFacade computes settling transfer plans.
type ReconciliationSvcFacade interface {
	// GetPlan returns the ordered transfer list that drives every pairwise
	// balance to zero. The plan is ephemeral and never persisted.
	GetPlan(ctx context.Context) ([]domain.Transfer, error)
}
