package handlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/interfaces/http/response"
	"venture-ledger.backend/internal/usecases"
)

type chainSession interface {
	Snapshot() entities.ChainSessionSnapshot
	Target() entities.NetworkParams
	SwitchNetwork(ctx context.Context, chainID *big.Int) error
	Disconnect()
}

type walletConnector interface {
	ConnectWallet(ctx context.Context, sc entities.SessionContext) (*entities.WalletAssociation, error)
}

// SwitchNetworkInput represents a network switch request
type SwitchNetworkInput struct {
	ChainID int64 `json:"chainId" binding:"required"`
}

// SessionHandler exposes the chain session
type SessionHandler struct {
	session   chainSession
	connector walletConnector
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session *usecases.ChainSessionManager, investments *usecases.InvestmentUsecase) *SessionHandler {
	return &SessionHandler{session: session, connector: investments}
}

// Get returns the session state and the supported network
// GET /api/v1/session
func (h *SessionHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"session": h.session.Snapshot(),
		"network": h.session.Target(),
	})
}

// Connect requests wallet access and associates the account with the caller
// POST /api/v1/session/connect
func (h *SessionHandler) Connect(c *gin.Context) {
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	assoc, err := h.connector.ConnectWallet(c.Request.Context(), sc)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session": h.session.Snapshot(),
		"wallet":  assoc,
	})
}

// Disconnect clears the session
// POST /api/v1/session/disconnect
func (h *SessionHandler) Disconnect(c *gin.Context) {
	h.session.Disconnect()
	response.Success(c, http.StatusOK, gin.H{"session": h.session.Snapshot()})
}

// SwitchNetwork moves the provider to the supported network
// POST /api/v1/session/network
func (h *SessionHandler) SwitchNetwork(c *gin.Context) {
	var input SwitchNetworkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.session.SwitchNetwork(c.Request.Context(), big.NewInt(input.ChainID)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": h.session.Snapshot()})
}
