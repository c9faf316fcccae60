package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/models"
)

// AccountRepository implements account identity data operations
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	m := &models.Account{
		IdentityKey:   account.Identity.Key(),
		AccountKind:   string(account.Identity.Account),
		Name:          account.Name,
		Role:          string(account.Role),
		OwnerKey:      account.OwnerRef.Ptr(),
		WalletAddress: account.WalletAddress.Ptr(),
		PaymentID:     account.PaymentID.Ptr(),
		PaymentQRURL:  account.PaymentQRURL.Ptr(),
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByIdentity gets an account by identity
func (r *AccountRepository) GetByIdentity(ctx context.Context, identity entities.Identity) (*entities.Account, error) {
	var m models.Account
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("identity_key = ?", identity.Key()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListStartupsOwnedBy returns the startups a founder owns
func (r *AccountRepository) ListStartupsOwnedBy(ctx context.Context, owner entities.Identity) ([]entities.Identity, error) {
	var keys []string
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Account{}).
		Where("account_kind = ? AND owner_key = ?", string(entities.AccountKindStartup), owner.Key()).
		Pluck("identity_key", &keys).Error; err != nil {
		return nil, err
	}

	out := make([]entities.Identity, 0, len(keys))
	for _, k := range keys {
		if id := identityFromKey(k); !id.IsZero() {
			out = append(out, id)
		}
	}
	return out, nil
}

// SetWalletAddress mirrors the associated wallet onto the account profile
func (r *AccountRepository) SetWalletAddress(ctx context.Context, identity entities.Identity, address string) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Account{}).
		Where("identity_key = ?", identity.Key()).
		Updates(map[string]interface{}{
			"wallet_address": stringPtr(address),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) toEntity(m *models.Account) *entities.Account {
	return &entities.Account{
		Identity:      identityFromKey(m.IdentityKey),
		Name:          m.Name,
		Role:          entities.UserRole(m.Role),
		OwnerRef:      null.StringFromPtr(m.OwnerKey),
		WalletAddress: null.StringFromPtr(m.WalletAddress),
		PaymentID:     null.StringFromPtr(m.PaymentID),
		PaymentQRURL:  null.StringFromPtr(m.PaymentQRURL),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
