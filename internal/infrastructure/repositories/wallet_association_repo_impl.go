package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/models"
	"venture-ledger.backend/pkg/utils"
)

// WalletAssociationRepository implements wallet association data operations
type WalletAssociationRepository struct {
	db *gorm.DB
}

// NewWalletAssociationRepository creates a new wallet association repository
func NewWalletAssociationRepository(db *gorm.DB) *WalletAssociationRepository {
	return &WalletAssociationRepository{db: db}
}

// Upsert soft-deletes any active association sharing the identity or the
// address and inserts the new one. Last writer wins.
func (r *WalletAssociationRepository) Upsert(ctx context.Context, assoc *entities.WalletAssociation) error {
	if assoc.ID == uuid.Nil {
		assoc.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if assoc.CreatedAt.IsZero() {
		assoc.CreatedAt = now
	}
	assoc.UpdatedAt = now

	m := &models.WalletAssociation{
		ID:          assoc.ID,
		IdentityKey: assoc.Identity.Key(),
		Address:     assoc.Address,
		Permanent:   assoc.Permanent,
		Provenance:  string(assoc.Provenance),
		CreatedAt:   assoc.CreatedAt,
		UpdatedAt:   assoc.UpdatedAt,
	}

	return GetDB(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity_key = ? OR address = ?", m.IdentityKey, m.Address).
			Delete(&models.WalletAssociation{}).Error; err != nil {
			return err
		}
		return tx.Create(m).Error
	})
}

// GetByIdentity gets the active association for an identity
func (r *WalletAssociationRepository) GetByIdentity(ctx context.Context, identity entities.Identity) (*entities.WalletAssociation, error) {
	return r.first(ctx, "identity_key = ?", identity.Key())
}

// GetByAddress gets the active association for an address
func (r *WalletAssociationRepository) GetByAddress(ctx context.Context, address string) (*entities.WalletAssociation, error) {
	return r.first(ctx, "address = ?", address)
}

// DeleteByIdentity soft deletes the identity's association
func (r *WalletAssociationRepository) DeleteByIdentity(ctx context.Context, identity entities.Identity) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Where("identity_key = ?", identity.Key()).
		Delete(&models.WalletAssociation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Rekey moves the association for address from oldIdentity to newIdentity.
// Any other active wallet held by newIdentity is superseded.
func (r *WalletAssociationRepository) Rekey(ctx context.Context, oldIdentity, newIdentity entities.Identity, address string) error {
	return GetDB(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity_key = ? AND address <> ?", newIdentity.Key(), address).
			Delete(&models.WalletAssociation{}).Error; err != nil {
			return err
		}
		result := tx.Model(&models.WalletAssociation{}).
			Where("identity_key = ? AND address = ?", oldIdentity.Key(), address).
			Updates(map[string]interface{}{
				"identity_key": newIdentity.Key(),
				"provenance":   string(entities.ProvenanceFor(newIdentity)),
				"updated_at":   time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrNotFound
		}
		return nil
	})
}

func (r *WalletAssociationRepository) first(ctx context.Context, query string, arg interface{}) (*entities.WalletAssociation, error) {
	var m models.WalletAssociation
	if err := GetDB(ctx, r.db).WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *WalletAssociationRepository) toEntity(m *models.WalletAssociation) *entities.WalletAssociation {
	return &entities.WalletAssociation{
		ID:         m.ID,
		Identity:   identityFromKey(m.IdentityKey),
		Address:    m.Address,
		Permanent:  m.Permanent,
		Provenance: entities.WalletProvenance(m.Provenance),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
