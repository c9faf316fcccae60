package repositories

import (
	"context"

	"github.com/google/uuid"
	"venture-ledger.backend/internal/domain/entities"
)

// TransactionRepository defines ledger data operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	// TransitionFromPending updates status only if the row is still pending.
	// It returns ErrIllegalTransition when the row exists but is terminal.
	TransitionFromPending(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, reason string) error
	ListByInvestor(ctx context.Context, investor entities.Identity) ([]*entities.Transaction, error)
	ListByStartups(ctx context.Context, startups []entities.Identity) ([]*entities.Transaction, error)
}

// OnchainIDRepository defines persisted on-chain id allocation
type OnchainIDRepository interface {
	Get(ctx context.Context, identityKey string) (*entities.OnchainIDMapping, error)
	// Allocate assigns the next id above floor to identityKey, or returns the
	// existing allocation.
	Allocate(ctx context.Context, identityKey string, floor int64) (*entities.OnchainIDMapping, error)
}
