package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/hisaab-app/hisaab_backend/internal/apperrors"
	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portssvc "github.com/hisaab-app/hisaab_backend/internal/core/ports/services"
	"github.com/hisaab-app/hisaab_backend/internal/core/services"
	"github.com/hisaab-app/hisaab_backend/internal/dto"
	"github.com/hisaab-app/hisaab_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// BalanceServiceTestSuite drives the read side through real ledger writes.
type BalanceServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	ledgerRepo   *memory.LedgerRepository
	userRepo     *memory.UserRepository
	ledgerSvc    portssvc.LedgerSvcFacade
	balanceSvc   portssvc.BalanceSvcFacade
	reconcileSvc portssvc.ReconciliationSvcFacade
}

func (s *BalanceServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledgerRepo = memory.NewLedgerRepository()
	s.userRepo = memory.NewUserRepository()
	s.ledgerSvc = services.NewLedgerService(s.ledgerRepo, s.userRepo, "INR")
	s.balanceSvc = services.NewBalanceService(s.ledgerRepo, s.userRepo)
	s.reconcileSvc = services.NewReconciliationService(s.balanceSvc)

	for _, id := range []string{"alice", "bob", "carol"} {
		s.Require().NoError(s.userRepo.SaveUser(s.ctx, domain.User{
			UserID: id,
			Name:   id,
			AuditFields: domain.AuditFields{
				CreatedAt:     time.Now(),
				CreatedBy:     "test",
				LastUpdatedAt: time.Now(),
				LastUpdatedBy: "test",
			},
		}))
	}
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}

func (s *BalanceServiceTestSuite) expense(payer string, total string, participants ...string) {
	splits := make([]dto.ExpenseSplitInput, len(participants))
	for i, p := range participants {
		splits[i] = dto.ExpenseSplitInput{UserID: p}
	}
	_, err := s.ledgerSvc.RecordExpense(s.ctx, dto.RecordExpenseRequest{
		Description: "Expense",
		TotalAmount: dec(total),
		PayerID:     payer,
		Splits:      splits,
	}, payer)
	s.Require().NoError(err)
}

func (s *BalanceServiceTestSuite) TestEmptyLedger() {
	balances, err := s.balanceSvc.NetBalances(s.ctx)
	s.Require().NoError(err)
	s.Empty(balances)

	plan, err := s.reconcileSvc.GetPlan(s.ctx)
	s.Require().NoError(err)
	s.Empty(plan, "an empty ledger yields an empty plan, not an error")
}

func (s *BalanceServiceTestSuite) TestBalanceSummary() {
	s.expense("alice", "900", "alice", "bob", "carol")
	s.expense("bob", "100", "alice", "bob")

	summary, err := s.balanceSvc.GetBalanceSummary(s.ctx, "alice")
	s.Require().NoError(err)

	// bob's 300 debt is offset by alice's 50 share of bob's expense.
	s.True(summary.TotalOwedToUser.Equal(dec("550")), "got %s", summary.TotalOwedToUser)
	s.True(summary.TotalUserOwes.IsZero())
	s.True(summary.NetBalance.Equal(dec("550")))

	s.Require().Len(summary.PerCounterpart, 2)
	s.Equal("bob", summary.PerCounterpart[0].CounterpartID)
	s.True(summary.PerCounterpart[0].Amount.Equal(dec("250")))
	s.Equal(domain.DirectionOwedToUser, summary.PerCounterpart[0].Direction)
	s.Equal("carol", summary.PerCounterpart[1].CounterpartID)
	s.True(summary.PerCounterpart[1].Amount.Equal(dec("300")))
}

func (s *BalanceServiceTestSuite) TestBalanceSummaryUnknownUser() {
	_, err := s.balanceSvc.GetBalanceSummary(s.ctx, "ghost")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *BalanceServiceTestSuite) TestReconciliationPlanSettlesLedger() {
	s.expense("alice", "900", "alice", "bob", "carol")
	s.expense("carol", "300", "alice", "carol")

	plan, err := s.reconcileSvc.GetPlan(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(plan)

	// Applying the plan as settlements must zero every balance.
	for _, transfer := range plan {
		_, err := s.ledgerSvc.RecordSettlement(s.ctx, dto.RecordSettlementRequest{
			FromUserID: transfer.FromUserID,
			ToUserID:   transfer.ToUserID,
			Amount:     transfer.Amount,
		}, transfer.FromUserID)
		s.Require().NoError(err)
	}

	balances, err := s.balanceSvc.NetBalances(s.ctx)
	s.Require().NoError(err)
	s.Empty(balances)
}

func (s *BalanceServiceTestSuite) TestPlanIsEphemeral() {
	s.expense("alice", "600", "alice", "bob")

	before, err := s.ledgerRepo.ListAllEntries(s.ctx)
	s.Require().NoError(err)

	_, err = s.reconcileSvc.GetPlan(s.ctx)
	s.Require().NoError(err)

	after, err := s.ledgerRepo.ListAllEntries(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(before), len(after), "computing a plan must not touch the ledger")
}

func (s *BalanceServiceTestSuite) TestAmountsStayExactAcrossFolds() {
	s.expense("alice", "100", "alice", "bob", "carol")

	balances, err := s.balanceSvc.NetBalances(s.ctx)
	s.Require().NoError(err)

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Amount)
	}
	// The odd paisa goes to alice, the first participant, whose own share
	// nets out; bob and carol owe exactly 33.33 each.
	s.True(total.Equal(dec("66.66")), "got %s", total)
}
