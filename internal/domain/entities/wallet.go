package entities

import (
	"time"

	"github.com/google/uuid"
)

// WalletProvenance tags which identifier namespace originated an association
type WalletProvenance string

const (
	WalletProvenanceRelational WalletProvenance = "relational"
	WalletProvenanceDocument   WalletProvenance = "document"
	WalletProvenanceChain      WalletProvenance = "chain"
)

// WalletAssociation binds one wallet address to exactly one account identity
type WalletAssociation struct {
	ID         uuid.UUID        `json:"id"`
	Identity   Identity         `json:"identity"`
	Address    string           `json:"address"`
	Permanent  bool             `json:"permanent"`
	Provenance WalletProvenance `json:"provenance"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// ProvenanceFor derives the provenance tag from the identity namespace
func ProvenanceFor(identity Identity) WalletProvenance {
	if identity.Kind == IdentifierOpaque {
		return WalletProvenanceDocument
	}
	return WalletProvenanceRelational
}

// AssociateWalletInput represents input for associating a wallet
type AssociateWalletInput struct {
	Address   string `json:"address" binding:"required"`
	Permanent bool   `json:"permanent"`
}

// MigrateWalletInput represents input for re-keying an association
type MigrateWalletInput struct {
	OldIdentity string `json:"oldIdentity" binding:"required"` // canonical key, e.g. "user:42"
	NewIdentity string `json:"newIdentity" binding:"required"`
	Address     string `json:"address" binding:"required"`
}

// WalletSyncStatus represents the state of a profile mirror task
type WalletSyncStatus string

const (
	WalletSyncPending WalletSyncStatus = "pending"
	WalletSyncDone    WalletSyncStatus = "done"
	WalletSyncDead    WalletSyncStatus = "dead"
)

// WalletSyncTask is an outbox entry mirroring an association onto the account profile.
// An empty Address clears the profile's wallet.
type WalletSyncTask struct {
	ID            uuid.UUID        `json:"id"`
	Identity      Identity         `json:"identity"`
	Address       string           `json:"address"`
	Status        WalletSyncStatus `json:"status"`
	Attempts      int              `json:"attempts"`
	NextAttemptAt time.Time        `json:"nextAttemptAt"`
	LastError     string           `json:"lastError,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}
