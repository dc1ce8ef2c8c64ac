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
	"github.com/stretchr/testify/suite"
)

type HistoryServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	ledgerRepo *memory.LedgerRepository
	userRepo   *memory.UserRepository
	ledgerSvc  portssvc.LedgerSvcFacade
	historySvc portssvc.HistorySvcFacade
}

func (s *HistoryServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledgerRepo = memory.NewLedgerRepository()
	s.userRepo = memory.NewUserRepository()
	s.ledgerSvc = services.NewLedgerService(s.ledgerRepo, s.userRepo, "INR")
	s.historySvc = services.NewHistoryService(s.ledgerRepo, s.userRepo)

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

func TestHistoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(HistoryServiceTestSuite))
}

func (s *HistoryServiceTestSuite) TestHistoryNetEffects() {
	_, err := s.ledgerSvc.RecordExpense(s.ctx, dto.RecordExpenseRequest{
		Description: "Dinner",
		TotalAmount: dec("900"),
		PayerID:     "alice",
		Splits: []dto.ExpenseSplitInput{
			{UserID: "alice"}, {UserID: "bob"}, {UserID: "carol"},
		},
	}, "alice")
	s.Require().NoError(err)

	items, token, err := s.historySvc.HistoryForUser(s.ctx, "bob", 10, nil)
	s.Require().NoError(err)
	s.Nil(token)
	s.Require().Len(items, 1)

	// bob owes 300: negative effect on his balance.
	s.True(items[0].NetEffect.Equal(dec("-300")), "got %s", items[0].NetEffect)

	items, _, err = s.historySvc.HistoryForUser(s.ctx, "alice", 10, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].NetEffect.Equal(dec("600")), "got %s", items[0].NetEffect)
}

func (s *HistoryServiceTestSuite) TestHistoryMostRecentFirst() {
	first, err := s.ledgerSvc.RecordSettlement(s.ctx, dto.RecordSettlementRequest{
		FromUserID: "bob", ToUserID: "alice", Amount: dec("10"),
	}, "bob")
	s.Require().NoError(err)
	second, err := s.ledgerSvc.RecordSettlement(s.ctx, dto.RecordSettlementRequest{
		FromUserID: "bob", ToUserID: "alice", Amount: dec("20"),
	}, "bob")
	s.Require().NoError(err)

	items, _, err := s.historySvc.HistoryForUser(s.ctx, "bob", 10, nil)
	s.Require().NoError(err)
	s.Require().Len(items, 2)

	ids := []string{items[0].Transaction.TransactionID, items[1].Transaction.TransactionID}
	s.Contains(ids, first.TransactionID)
	s.Contains(ids, second.TransactionID)
	s.False(items[0].Transaction.CreatedAt.Before(items[1].Transaction.CreatedAt))
}

func (s *HistoryServiceTestSuite) TestExplainTransactionWithReversal() {
	txn, err := s.ledgerSvc.RecordSettlement(s.ctx, dto.RecordSettlementRequest{
		FromUserID: "bob", ToUserID: "alice", Amount: dec("100"),
	}, "bob")
	s.Require().NoError(err)

	explanation, err := s.historySvc.ExplainTransaction(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Nil(explanation.Reversal)
	s.Len(explanation.Transaction.Entries, 1)

	reversal, err := s.ledgerSvc.ReverseTransaction(s.ctx, txn.TransactionID, "alice")
	s.Require().NoError(err)

	explanation, err = s.historySvc.ExplainTransaction(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.Reversed, explanation.Transaction.Status)
	s.Require().NotNil(explanation.Reversal)
	s.Equal(reversal.TransactionID, explanation.Reversal.TransactionID)
	s.Require().Len(explanation.Reversal.Entries, 1)
	s.Equal("alice", explanation.Reversal.Entries[0].DebtorID)
}

func (s *HistoryServiceTestSuite) TestExplainUnknownTransaction() {
	_, err := s.historySvc.ExplainTransaction(s.ctx, "no-such-txn")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *HistoryServiceTestSuite) TestHistoryUnknownUser() {
	_, _, err := s.historySvc.HistoryForUser(s.ctx, "ghost", 10, nil)
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}
