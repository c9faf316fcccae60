package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/interfaces/http/response"
	"venture-ledger.backend/internal/usecases"
	"venture-ledger.backend/pkg/utils"
)

type investmentService interface {
	InvestOnchain(ctx context.Context, sc entities.SessionContext, startupRef, amount string) (*entities.Transaction, error)
	StartManual(ctx context.Context, sc entities.SessionContext, startupRef string) (*usecases.ManualPaymentSession, error)
	InvestManual(ctx context.Context, sc entities.SessionContext, startupRef, amount, reference string) (*entities.Transaction, error)
	Approve(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Transaction, error)
}

// RejectInput represents an approver's rejection
type RejectInput struct {
	Reason string `json:"reason"`
}

// InvestmentHandler handles investment endpoints
type InvestmentHandler struct {
	investmentUsecase investmentService
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investmentUsecase *usecases.InvestmentUsecase) *InvestmentHandler {
	return &InvestmentHandler{investmentUsecase: investmentUsecase}
}

// InvestOnchain submits an investment through the contract
// POST /api/v1/investments/onchain
func (h *InvestmentHandler) InvestOnchain(c *gin.Context) {
	var input entities.InvestOnchainInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	tx, err := h.investmentUsecase.InvestOnchain(c.Request.Context(), sc, input.StartupRef, input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusCreated
	if tx.Status == entities.TransactionStatusFailed {
		status = http.StatusOK
	}
	response.Success(c, status, gin.H{"transaction": tx})
}

// ManualDetails returns the recipient's payment details
// GET /api/v1/investments/manual/:startupRef
func (h *InvestmentHandler) ManualDetails(c *gin.Context) {
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	session, err := h.investmentUsecase.StartManual(c.Request.Context(), sc, c.Param("startupRef"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"phase":   session.Phase(),
		"details": session.Details(),
	})
}

// InvestManual records a manual-rail payment awaiting approval
// POST /api/v1/investments/manual
func (h *InvestmentHandler) InvestManual(c *gin.Context) {
	var input entities.InvestManualInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	tx, err := h.investmentUsecase.InvestManual(c.Request.Context(), sc, input.StartupRef, input.Amount, input.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"transaction": tx})
}

// Approve completes a pending manual transaction
// POST /api/v1/admin/transactions/:id/approve
func (h *InvestmentHandler) Approve(c *gin.Context) {
	id, ok := utils.ParseUUID(c.Param("id"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid transaction ID"))
		return
	}

	tx, err := h.investmentUsecase.Approve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// Reject fails a pending manual transaction
// POST /api/v1/admin/transactions/:id/reject
func (h *InvestmentHandler) Reject(c *gin.Context) {
	id, ok := utils.ParseUUID(c.Param("id"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid transaction ID"))
		return
	}

	var input RejectInput
	// an empty body is a rejection without reason
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, domainerrors.BadRequest(err.Error()))
			return
		}
	}

	tx, err := h.investmentUsecase.Reject(c.Request.Context(), id, input.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}
