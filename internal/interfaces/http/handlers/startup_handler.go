package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"venture-ledger.backend/internal/domain/entities"
	"venture-ledger.backend/internal/interfaces/http/response"
	"venture-ledger.backend/internal/usecases"
)

type onchainIDResolver interface {
	Resolve(ctx context.Context, identity entities.Identity) (int64, error)
}

type startupReader interface {
	GetStartup(ctx context.Context, startupID int64) (*entities.OnchainStartup, error)
}

// StartupHandler exposes the contract's startup records
type StartupHandler struct {
	resolver onchainIDResolver
	gateway  startupReader
}

// NewStartupHandler creates a new startup handler
func NewStartupHandler(resolver *usecases.OnchainIDResolver, gateway *usecases.InvestmentGateway) *StartupHandler {
	return &StartupHandler{resolver: resolver, gateway: gateway}
}

// GetOnchain returns the on-chain view of a startup
// GET /api/v1/startups/:ref/onchain
func (h *StartupHandler) GetOnchain(c *gin.Context) {
	ref, err := usecases.ParseStartupRef(c.Param("ref"))
	if err != nil {
		response.Error(c, err)
		return
	}

	onchainID, err := h.resolver.Resolve(c.Request.Context(), ref)
	if err != nil {
		response.Error(c, err)
		return
	}

	startup, err := h.gateway.GetStartup(c.Request.Context(), onchainID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"startupRef": ref.Key(),
		"startup":    startup,
	})
}
