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

type transactionService interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	ListFor(ctx context.Context, identity entities.Identity, role entities.UserRole) ([]*entities.Transaction, error)
}

// TransactionHandler serves the ledger
type TransactionHandler struct {
	ledger transactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledger *usecases.TransactionLedgerUsecase) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// List returns the caller's transactions, newest first
// GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	txs, err := h.ledger.ListFor(c.Request.Context(), sc.Identity, sc.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"items": txs,
		"total": len(txs),
	})
}

// Get returns one transaction visible to the caller
// GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	sc, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUID(c.Param("id"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid transaction ID"))
		return
	}

	tx, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !canView(sc, tx) {
		response.Error(c, domainerrors.NotFound("Transaction not found"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// canView allows admins and the two parties. Founders read their startups through List.
func canView(sc entities.SessionContext, tx *entities.Transaction) bool {
	if sc.Role == entities.UserRoleAdmin {
		return true
	}
	return tx.InvestorRef == sc.Identity || tx.StartupRef == sc.Identity
}
