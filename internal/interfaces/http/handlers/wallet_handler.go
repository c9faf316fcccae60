package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/interfaces/http/response"
	"venture-ledger.backend/internal/usecases"
)

type walletService interface {
	Associate(ctx context.Context, identity entities.Identity, address string, permanent bool) (*entities.WalletAssociation, error)
	ResolveAddress(ctx context.Context, identity entities.Identity) (string, error)
	ResolveIdentity(ctx context.Context, address string) (*entities.Identity, error)
	Disassociate(ctx context.Context, identity entities.Identity) error
	Migrate(ctx context.Context, oldIdentity, newIdentity entities.Identity, address string) error
}

// WalletHandler handles wallet association endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletIdentityUsecase) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// Associate binds a wallet to the caller
// PUT /api/v1/wallets/me
func (h *WalletHandler) Associate(c *gin.Context) {
	var input entities.AssociateWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	assoc, err := h.walletUsecase.Associate(c.Request.Context(), sc.Identity, input.Address, input.Permanent)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Wallet associated successfully",
		"wallet":  assoc,
	})
}

// GetMine returns the caller's wallet
// GET /api/v1/wallets/me
func (h *WalletHandler) GetMine(c *gin.Context) {
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	address, err := h.walletUsecase.ResolveAddress(c.Request.Context(), sc.Identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	if address == "" {
		response.Error(c, domainerrors.NotFound("No wallet associated"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"address": address})
}

// Disassociate removes the caller's wallet
// DELETE /api/v1/wallets/me
func (h *WalletHandler) Disassociate(c *gin.Context) {
	sc, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.walletUsecase.Disassociate(c.Request.Context(), sc.Identity); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Wallet disassociated"})
}

// LookupIdentity returns the identity holding an address
// GET /api/v1/wallets/:address/identity
func (h *WalletHandler) LookupIdentity(c *gin.Context) {
	identity, err := h.walletUsecase.ResolveIdentity(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if identity == nil {
		response.Error(c, domainerrors.NotFound("No identity holds this wallet"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"identity": identity.Key()})
}

// Migrate re-keys an association between identifier namespaces
// POST /api/v1/admin/wallets/migrate
func (h *WalletHandler) Migrate(c *gin.Context) {
	var input entities.MigrateWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	oldID, err := entities.ParseIdentityKey(input.OldIdentity)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid oldIdentity"))
		return
	}
	newID, err := entities.ParseIdentityKey(input.NewIdentity)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid newIdentity"))
		return
	}

	if err := h.walletUsecase.Migrate(c.Request.Context(), oldID, newID, input.Address); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Wallet association migrated"})
}
