package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/domain/repositories"
	"venture-ledger.backend/pkg/logger"
	"venture-ledger.backend/pkg/metrics"
)

// WalletCache is the read-through fallback consulted when the record store fails
type WalletCache interface {
	Put(ctx context.Context, identityKey, address string) error
	AddressFor(ctx context.Context, identityKey string) (string, bool, error)
	IdentityFor(ctx context.Context, address string) (string, bool, error)
	Forget(ctx context.Context, identityKey string) error
}

// WalletIdentityUsecase owns the identity <-> wallet address association
type WalletIdentityUsecase struct {
	assocRepo repositories.WalletAssociationRepository
	syncRepo  repositories.WalletSyncTaskRepository
	uow       repositories.UnitOfWork
	cache     WalletCache
	metrics   *metrics.Recorder
}

// NewWalletIdentityUsecase creates a new wallet identity usecase
func NewWalletIdentityUsecase(
	assocRepo repositories.WalletAssociationRepository,
	syncRepo repositories.WalletSyncTaskRepository,
	uow repositories.UnitOfWork,
	cache WalletCache,
	recorder *metrics.Recorder,
) *WalletIdentityUsecase {
	return &WalletIdentityUsecase{
		assocRepo: assocRepo,
		syncRepo:  syncRepo,
		uow:       uow,
		cache:     cache,
		metrics:   recorder,
	}
}

// NormalizeAddress validates a 20-byte hex address and lower-cases it
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", domainerrors.Validation("wallet address is required")
	}
	if !common.IsHexAddress(address) {
		return "", domainerrors.Validation("malformed wallet address " + address)
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// Associate binds address to identity. Any association held by another
// identity for the same address, or by this identity for another address,
// is superseded.
func (u *WalletIdentityUsecase) Associate(ctx context.Context, identity entities.Identity, address string, permanent bool) (*entities.WalletAssociation, error) {
	if identity.IsZero() {
		return nil, domainerrors.Validation("identity is required")
	}
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	existing, err := u.assocRepo.GetByIdentity(ctx, identity)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.StoreUnavailable("load wallet association", err)
	}
	if existing != nil && existing.Address == normalized && existing.Permanent == permanent {
		return existing, nil
	}

	var displaced *entities.Identity
	holder, err := u.assocRepo.GetByAddress(ctx, normalized)
	switch {
	case err == nil && holder.Identity.Key() != identity.Key():
		displaced = &holder.Identity
	case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
		return nil, domainerrors.StoreUnavailable("load wallet association", err)
	}

	assoc := &entities.WalletAssociation{
		Identity:   identity,
		Address:    normalized,
		Permanent:  permanent,
		Provenance: entities.ProvenanceFor(identity),
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.assocRepo.Upsert(txCtx, assoc); err != nil {
			return err
		}
		if displaced != nil {
			if err := u.enqueueProfileSync(txCtx, *displaced, ""); err != nil {
				return err
			}
		}
		return u.enqueueProfileSync(txCtx, identity, normalized)
	})
	if err != nil {
		return nil, domainerrors.StoreUnavailable("associate wallet", err)
	}

	if displaced != nil {
		logger.Info(ctx, "Wallet association superseded", zap.String("previous", displaced.Key()), zap.String("address", normalized))
		if err := u.cache.Forget(ctx, displaced.Key()); err != nil {
			logger.Warn(ctx, "Failed to clear wallet cache", zap.String("identity", displaced.Key()), zap.Error(err))
		}
	}

	if err := u.cache.Put(ctx, identity.Key(), normalized); err != nil {
		logger.Warn(ctx, "Failed to refresh wallet cache", zap.String("identity", identity.Key()), zap.Error(err))
	}
	logger.Info(ctx, "Wallet associated",
		zap.String("identity", identity.Key()),
		zap.String("address", normalized),
		zap.Bool("permanent", permanent),
	)
	return assoc, nil
}

// ResolveAddress returns the wallet for identity, or "" when none is associated
func (u *WalletIdentityUsecase) ResolveAddress(ctx context.Context, identity entities.Identity) (string, error) {
	assoc, err := u.assocRepo.GetByIdentity(ctx, identity)
	if err == nil {
		return assoc.Address, nil
	}
	if errors.Is(err, domainerrors.ErrNotFound) {
		return "", nil
	}

	logger.Warn(ctx, "Wallet store read failed, serving from cache", zap.String("identity", identity.Key()), zap.Error(err))
	u.metrics.StoreFallback("address")
	address, _, cacheErr := u.cache.AddressFor(ctx, identity.Key())
	if cacheErr != nil {
		return "", domainerrors.StoreUnavailable("resolve wallet address", err)
	}
	return address, nil
}

// ResolveIdentity returns the identity holding address, or nil
func (u *WalletIdentityUsecase) ResolveIdentity(ctx context.Context, address string) (*entities.Identity, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	assoc, err := u.assocRepo.GetByAddress(ctx, normalized)
	if err == nil {
		return &assoc.Identity, nil
	}
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}

	logger.Warn(ctx, "Wallet store read failed, serving from cache", zap.String("address", normalized), zap.Error(err))
	u.metrics.StoreFallback("identity")
	key, ok, cacheErr := u.cache.IdentityFor(ctx, normalized)
	if cacheErr != nil {
		return nil, domainerrors.StoreUnavailable("resolve wallet identity", err)
	}
	if !ok {
		return nil, nil
	}
	identity, parseErr := entities.ParseIdentityKey(key)
	if parseErr != nil {
		return nil, nil
	}
	return &identity, nil
}

// Disassociate removes identity's wallet. Local cache state is always
// cleared; a failed remote delete is still reported.
func (u *WalletIdentityUsecase) Disassociate(ctx context.Context, identity entities.Identity) error {
	if identity.IsZero() {
		return domainerrors.Validation("identity is required")
	}
	if err := u.cache.Forget(ctx, identity.Key()); err != nil {
		logger.Warn(ctx, "Failed to clear wallet cache", zap.String("identity", identity.Key()), zap.Error(err))
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.assocRepo.DeleteByIdentity(txCtx, identity); err != nil {
			return err
		}
		return u.enqueueProfileSync(txCtx, identity, "")
	})
	if err == nil || errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	return domainerrors.StoreUnavailable("disassociate wallet", err)
}

// Migrate re-keys address from oldIdentity to newIdentity. Repeating a
// completed migration is a no-op.
func (u *WalletIdentityUsecase) Migrate(ctx context.Context, oldIdentity, newIdentity entities.Identity, address string) error {
	if oldIdentity.IsZero() || newIdentity.IsZero() {
		return domainerrors.Validation("both identities are required")
	}
	if oldIdentity.Account != newIdentity.Account {
		return domainerrors.Validation("cannot migrate between account kinds")
	}
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return err
	}

	current, err := u.assocRepo.GetByAddress(ctx, normalized)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound("no association for " + normalized)
	}
	if err != nil {
		return domainerrors.StoreUnavailable("load wallet association", err)
	}

	switch current.Identity.Key() {
	case newIdentity.Key():
		return nil
	case oldIdentity.Key():
	default:
		return domainerrors.Validation("address is associated with a different identity")
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.assocRepo.Rekey(txCtx, oldIdentity, newIdentity, normalized); err != nil {
			return err
		}
		if err := u.enqueueProfileSync(txCtx, oldIdentity, ""); err != nil {
			return err
		}
		return u.enqueueProfileSync(txCtx, newIdentity, normalized)
	})
	if err != nil {
		return domainerrors.StoreUnavailable("migrate wallet association", err)
	}

	if err := u.cache.Forget(ctx, oldIdentity.Key()); err != nil {
		logger.Warn(ctx, "Failed to clear wallet cache", zap.String("identity", oldIdentity.Key()), zap.Error(err))
	}
	if err := u.cache.Put(ctx, newIdentity.Key(), normalized); err != nil {
		logger.Warn(ctx, "Failed to refresh wallet cache", zap.String("identity", newIdentity.Key()), zap.Error(err))
	}
	logger.Info(ctx, "Wallet association migrated",
		zap.String("from", oldIdentity.Key()),
		zap.String("to", newIdentity.Key()),
		zap.String("address", normalized),
	)
	return nil
}

func (u *WalletIdentityUsecase) enqueueProfileSync(ctx context.Context, identity entities.Identity, address string) error {
	if u.syncRepo == nil {
		return nil
	}
	return u.syncRepo.Enqueue(ctx, &entities.WalletSyncTask{Identity: identity, Address: address})
}
