package repositories

import (
	"context"

	"venture-ledger.backend/internal/domain/entities"
)

// AccountRepository defines account identity data operations
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByIdentity(ctx context.Context, identity entities.Identity) (*entities.Account, error)
	// ListStartupsOwnedBy returns startup identities whose owner is the given user.
	ListStartupsOwnedBy(ctx context.Context, owner entities.Identity) ([]entities.Identity, error)
	// SetWalletAddress mirrors an association onto the profile. Empty clears it.
	SetWalletAddress(ctx context.Context, identity entities.Identity, address string) error
}
