package services

import (
	"context"
	"log/slog"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portssvc "github.com/hisaab-app/hisaab_backend/internal/core/ports/services"
	"github.com/hisaab-app/hisaab_backend/internal/middleware"
	"github.com/hisaab-app/hisaab_backend/internal/utils/accounting"
)

// reconciliationService turns the current balance snapshot into a settling
// transfer plan. It is a pure read: the ledger is never touched.
type reconciliationService struct {
	balanceSvc portssvc.BalanceSvcFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(balanceSvc portssvc.BalanceSvcFacade) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{balanceSvc: balanceSvc}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// GetPlan computes the transfer list that settles every position to zero.
// An empty ledger yields an empty plan, not an error.
func (s *reconciliationService) GetPlan(ctx context.Context) ([]domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	balances, err := s.balanceSvc.NetBalances(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := accounting.NetPositions(balances)
	if err != nil {
		logger.Error("Net position expansion violated a ledger invariant", slog.String("error", err.Error()))
		return nil, err
	}
	plan, err := accounting.SimplifyDebts(positions)
	if err != nil {
		logger.Error("Debt simplification failed", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Debug("Reconciliation plan computed",
		slog.Int("position_count", len(positions)),
		slog.Int("transfer_count", len(plan)),
	)
	return plan, nil
}
