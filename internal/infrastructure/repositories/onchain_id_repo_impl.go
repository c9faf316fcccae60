package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/models"
)

const onchainIDAllocateAttempts = 3

// OnchainIDRepository implements persisted on-chain id allocation
type OnchainIDRepository struct {
	db *gorm.DB
}

// NewOnchainIDRepository creates a new on-chain id repository
func NewOnchainIDRepository(db *gorm.DB) *OnchainIDRepository {
	return &OnchainIDRepository{db: db}
}

// Get returns the allocation for identityKey
func (r *OnchainIDRepository) Get(ctx context.Context, identityKey string) (*entities.OnchainIDMapping, error) {
	var m models.OnchainIDMapping
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("identity_key = ?", identityKey).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.OnchainIDMapping{IdentityKey: m.IdentityKey, OnchainID: m.OnchainID}, nil
}

// Allocate returns the existing allocation or assigns max(current max, floor)+1.
// A concurrent allocator hitting the unique index retries with a fresh max.
func (r *OnchainIDRepository) Allocate(ctx context.Context, identityKey string, floor int64) (*entities.OnchainIDMapping, error) {
	var lastErr error
	for attempt := 0; attempt < onchainIDAllocateAttempts; attempt++ {
		existing, err := r.Get(ctx, identityKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}

		var allocated models.OnchainIDMapping
		lastErr = GetDB(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current sql.NullInt64
			if err := tx.Model(&models.OnchainIDMapping{}).Select("MAX(onchain_id)").Row().Scan(&current); err != nil {
				return err
			}
			next := floor
			if current.Valid && current.Int64 > next {
				next = current.Int64
			}
			allocated = models.OnchainIDMapping{
				IdentityKey: identityKey,
				OnchainID:   next + 1,
				CreatedAt:   time.Now(),
			}
			return tx.Create(&allocated).Error
		})
		if lastErr == nil {
			return &entities.OnchainIDMapping{IdentityKey: allocated.IdentityKey, OnchainID: allocated.OnchainID}, nil
		}
	}
	return nil, fmt.Errorf("allocate on-chain id for %s: %w", identityKey, lastErr)
}
