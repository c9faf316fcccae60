package repositories

import (
	"context"

	"venture-ledger.backend/internal/domain/entities"
)

// WalletAssociationRepository defines wallet association data operations
type WalletAssociationRepository interface {
	// Upsert stores the association, superseding any active row for the same
	// identity or the same address.
	Upsert(ctx context.Context, assoc *entities.WalletAssociation) error
	GetByIdentity(ctx context.Context, identity entities.Identity) (*entities.WalletAssociation, error)
	GetByAddress(ctx context.Context, address string) (*entities.WalletAssociation, error)
	DeleteByIdentity(ctx context.Context, identity entities.Identity) error
	// Rekey moves the active association for address from oldIdentity to newIdentity.
	Rekey(ctx context.Context, oldIdentity, newIdentity entities.Identity, address string) error
}

// WalletSyncTaskRepository defines the profile mirror outbox operations
type WalletSyncTaskRepository interface {
	Enqueue(ctx context.Context, task *entities.WalletSyncTask) error
	GetDue(ctx context.Context, limit int) ([]*entities.WalletSyncTask, error)
	MarkDone(ctx context.Context, task *entities.WalletSyncTask) error
	MarkRetry(ctx context.Context, task *entities.WalletSyncTask) error
}
