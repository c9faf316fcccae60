package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/domain/repositories"
)

// OnchainIDBound is the size of the hashed on-chain id range [1, OnchainIDBound].
const OnchainIDBound = 10000

// OnchainIDStrategy selects how opaque identifiers become contract integers
type OnchainIDStrategy string

const (
	// OnchainIDStrategyHash is the legacy rolling hash. Not collision-free.
	OnchainIDStrategyHash OnchainIDStrategy = "hash"
	// OnchainIDStrategyMapping allocates from a persisted table.
	OnchainIDStrategyMapping OnchainIDStrategy = "mapping"
)

// ToOnChainID converts an identity to the contract's startup integer.
// Numeric identities are returned unchanged; opaque ones are hashed.
func ToOnChainID(identity entities.Identity) int64 {
	if identity.Kind == entities.IdentifierNumeric {
		return identity.Numeric
	}
	return OnChainIDFromString(identity.Opaque)
}

// OnChainIDFromString parses digits-only input and hashes anything else.
// It never fails.
func OnChainIDFromString(raw string) int64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && strings.Trim(trimmed, "0123456789") == "" {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
	}
	return hashOnChainID(raw)
}

// hashOnChainID is hash = hash*31 + code over UTF-16 code units with signed
// 32-bit wraparound, then |hash| mod OnchainIDBound + 1.
func hashOnChainID(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v%OnchainIDBound + 1
}

// OnchainIDResolver resolves identities to contract integers using the
// configured strategy.
type OnchainIDResolver struct {
	strategy OnchainIDStrategy
	repo     repositories.OnchainIDRepository
	floor    int64
}

// NewOnchainIDResolver creates a resolver. repo may be nil for the hash strategy.
func NewOnchainIDResolver(strategy OnchainIDStrategy, repo repositories.OnchainIDRepository, floor int64) *OnchainIDResolver {
	if strategy != OnchainIDStrategyMapping {
		strategy = OnchainIDStrategyHash
	}
	if floor < 0 {
		floor = 0
	}
	return &OnchainIDResolver{strategy: strategy, repo: repo, floor: floor}
}

// Strategy returns the active strategy
func (r *OnchainIDResolver) Strategy() OnchainIDStrategy {
	return r.strategy
}

// Resolve returns the contract integer for identity. Numeric identities
// bypass both strategies.
func (r *OnchainIDResolver) Resolve(ctx context.Context, identity entities.Identity) (int64, error) {
	if identity.IsZero() {
		return 0, domainerrors.ErrInvalidReference
	}
	if identity.Kind == entities.IdentifierNumeric || r.strategy == OnchainIDStrategyHash || r.repo == nil {
		return ToOnChainID(identity), nil
	}

	mapping, err := r.repo.Allocate(ctx, identity.Key(), r.floor)
	if err != nil {
		return 0, domainerrors.StoreUnavailable(fmt.Sprintf("allocate on-chain id for %s", identity.Key()), err)
	}
	return mapping.OnchainID, nil
}
