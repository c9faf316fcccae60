package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	walletByIdentityPrefix = "wallet:identity:"
	identityByWalletPrefix = "wallet:address:"
)

// WalletCache is the read-through fallback for wallet associations.
// Both directions are written together so a lookup from either side agrees.
type WalletCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWalletCache creates a cache over c. A zero ttl keeps entries until overwritten.
func NewWalletCache(c *redis.Client, ttl time.Duration) *WalletCache {
	return &WalletCache{client: c, ttl: ttl}
}

// Put records identityKey <-> address, dropping any stale reverse entry
func (w *WalletCache) Put(ctx context.Context, identityKey, address string) error {
	address = strings.ToLower(address)
	previous, err := w.client.Get(ctx, walletByIdentityPrefix+identityKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	_, err = w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != "" && previous != address {
			pipe.Del(ctx, identityByWalletPrefix+previous)
		}
		pipe.Set(ctx, walletByIdentityPrefix+identityKey, address, w.ttl)
		pipe.Set(ctx, identityByWalletPrefix+address, identityKey, w.ttl)
		return nil
	})
	return err
}

// AddressFor returns the cached address for identityKey
func (w *WalletCache) AddressFor(ctx context.Context, identityKey string) (string, bool, error) {
	return w.get(ctx, walletByIdentityPrefix+identityKey)
}

// IdentityFor returns the cached identity key for address
func (w *WalletCache) IdentityFor(ctx context.Context, address string) (string, bool, error) {
	return w.get(ctx, identityByWalletPrefix+strings.ToLower(address))
}

// Forget removes both directions for identityKey
func (w *WalletCache) Forget(ctx context.Context, identityKey string) error {
	address, _, err := w.AddressFor(ctx, identityKey)
	if err != nil {
		return err
	}
	keys := []string{walletByIdentityPrefix + identityKey}
	if address != "" {
		keys = append(keys, identityByWalletPrefix+address)
	}
	return w.client.Del(ctx, keys...).Err()
}

func (w *WalletCache) get(ctx context.Context, key string) (string, bool, error) {
	v, err := w.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
