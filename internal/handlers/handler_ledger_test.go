package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hisaab-app/hisaab_backend/internal/core/domain"
	portssvc "github.com/hisaab-app/hisaab_backend/internal/core/ports/services"
	"github.com/hisaab-app/hisaab_backend/internal/core/services"
	"github.com/hisaab-app/hisaab_backend/internal/dto"
	"github.com/hisaab-app/hisaab_backend/internal/handlers"
	"github.com/hisaab-app/hisaab_backend/internal/platform/config"
	"github.com/hisaab-app/hisaab_backend/internal/repositories/memory"
	"github.com/hisaab-app/hisaab_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testSecret = "handler-test-secret"

// HandlerTestSuite runs requests end to end: gin router, JWT middleware, real
// services, in-memory store.
type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	ledgerRepo := memory.NewLedgerRepository()
	userRepo := memory.NewUserRepository()

	for _, id := range []string{"alice", "bob", "carol"} {
		s.Require().NoError(userRepo.SaveUser(context.Background(), domain.User{
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

	balanceSvc := services.NewBalanceService(ledgerRepo, userRepo)
	container := &portssvc.ServiceContainer{
		User:           services.NewUserService(userRepo),
		Auth:           services.NewAuthService(userRepo, testSecret, time.Hour, "test"),
		Ledger:         services.NewLedgerService(ledgerRepo, userRepo, "INR"),
		Balance:        balanceSvc,
		Reconciliation: services.NewReconciliationService(balanceSvc),
		History:        services.NewHistoryService(ledgerRepo, userRepo),
	}

	cfg := &config.Config{JWTSecret: testSecret}
	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container)

	token, err := utils.GenerateJWT("alice", testSecret, time.Hour, "test")
	s.Require().NoError(err)
	s.token = token
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestUnauthorizedWithoutToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestExpenseBalanceReconciliationFlow() {
	w := s.doJSON(http.MethodPost, "/api/v1/expenses", dto.RecordExpenseRequest{
		Description: "Dinner",
		TotalAmount: decimal.NewFromInt(900),
		PayerID:     "alice",
		Splits: []dto.ExpenseSplitInput{
			{UserID: "alice"}, {UserID: "bob"}, {UserID: "carol"},
		},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var txn dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &txn))
	s.Len(txn.Entries, 2)

	w = s.doJSON(http.MethodGet, "/api/v1/users/bob/balance", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var summary dto.BalanceSummaryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &summary))
	s.True(summary.TotalUserOwes.Equal(decimal.NewFromInt(300)))

	w = s.doJSON(http.MethodGet, "/api/v1/reconciliation", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var plan dto.ReconciliationPlanResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &plan))
	s.Len(plan.Transfers, 2)
}

func (s *HandlerTestSuite) TestInvalidSplitRejected() {
	amount := decimal.NewFromInt(10)
	w := s.doJSON(http.MethodPost, "/api/v1/expenses", dto.RecordExpenseRequest{
		Description: "Broken",
		TotalAmount: decimal.NewFromInt(100),
		PayerID:     "alice",
		SplitMode:   "EXACT",
		Splits:      []dto.ExpenseSplitInput{{UserID: "bob", Amount: &amount}},
	})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (s *HandlerTestSuite) TestDoubleReversalConflict() {
	w := s.doJSON(http.MethodPost, "/api/v1/settlements", dto.RecordSettlementRequest{
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     decimal.NewFromInt(100),
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var txn dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &txn))

	w = s.doJSON(http.MethodPost, "/api/v1/transactions/"+txn.TransactionID+"/reverse", nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.doJSON(http.MethodPost, "/api/v1/transactions/"+txn.TransactionID+"/reverse", nil)
	s.Equal(http.StatusConflict, w.Code, w.Body.String())
}

func (s *HandlerTestSuite) TestExplainUnknownTransaction() {
	w := s.doJSON(http.MethodGet, "/api/v1/transactions/nope", nil)
	s.Equal(http.StatusNotFound, w.Code)
}
