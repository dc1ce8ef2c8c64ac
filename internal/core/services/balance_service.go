package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portsrepo "github.com/hisaab-app/hisaab_backend/internal/core/ports/repositories"
	portssvc "github.com/hisaab-app/hisaab_backend/internal/core/ports/services"
	"github.com/hisaab-app/hisaab_backend/internal/middleware"
	"github.com/hisaab-app/hisaab_backend/internal/utils/accounting"
)

// balanceService derives balance views from the full entry history.
// Nothing here is stored; every read folds the ledger as it stands.
type balanceService struct {
	ledgerRepo portsrepo.EntryReader
	userRepo   portsrepo.UserReader
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(ledgerRepo portsrepo.EntryReader, userRepo portsrepo.UserReader) portssvc.BalanceSvcFacade {
	return &balanceService{ledgerRepo: ledgerRepo, userRepo: userRepo}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// NetBalances folds the whole ledger into collapsed pairwise balances.
func (s *balanceService) NetBalances(ctx context.Context) ([]domain.PairBalance, error) {
	entries, err := s.ledgerRepo.ListAllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	balances, err := accounting.NetBalances(entries)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Balance fold violated a ledger invariant", slog.String("error", err.Error()))
		return nil, err
	}
	return balances, nil
}

// GetBalanceSummary aggregates one user's standing against all counterparts.
func (s *balanceService) GetBalanceSummary(ctx context.Context, userID string) (*domain.BalanceSummary, error) {
	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}

	balances, err := s.NetBalances(ctx)
	if err != nil {
		return nil, err
	}

	owedToUser, userOwes := accounting.TotalsForUser(userID, balances)

	perCounterpart := make([]domain.CounterpartBalance, 0)
	for _, b := range balances {
		switch userID {
		case b.CreditorID:
			perCounterpart = append(perCounterpart, domain.CounterpartBalance{
				CounterpartID: b.DebtorID,
				Amount:        b.Amount,
				Direction:     domain.DirectionOwedToUser,
			})
		case b.DebtorID:
			perCounterpart = append(perCounterpart, domain.CounterpartBalance{
				CounterpartID: b.CreditorID,
				Amount:        b.Amount,
				Direction:     domain.DirectionUserOwes,
			})
		}
	}
	sort.Slice(perCounterpart, func(i, j int) bool {
		return perCounterpart[i].CounterpartID < perCounterpart[j].CounterpartID
	})

	return &domain.BalanceSummary{
		UserID:          userID,
		TotalOwedToUser: owedToUser,
		TotalUserOwes:   userOwes,
		NetBalance:      owedToUser.Sub(userOwes),
		PerCounterpart:  perCounterpart,
	}, nil
}
