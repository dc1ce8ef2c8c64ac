package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/hisaab-app/hisaab_backend/internal/core/ports/services"
	"github.com/hisaab-app/hisaab_backend/internal/dto"
	"github.com/hisaab-app/hisaab_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// reconciliationHandler serves settling transfer plans.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newReconciliationHandler creates a new reconciliationHandler.
func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
	}
}

// registerReconciliationRoutes registers the reconciliation route.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	rg.GET("/reconciliation", h.getPlan)
}

func (h *reconciliationHandler) getPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	plan, err := h.reconciliationService.GetPlan(c.Request.Context())
	if err != nil {
		logger.Error("Failed to compute reconciliation plan", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute reconciliation plan"})
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationPlanResponse(plan))
}
