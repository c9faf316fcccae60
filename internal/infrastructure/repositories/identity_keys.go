package repositories

import (
	"venture-ledger.backend/internal/domain/entities"
)

// identities are stored by their canonical key; unparsable rows surface as zero identities
func identityFromKey(key string) entities.Identity {
	id, err := entities.ParseIdentityKey(key)
	if err != nil {
		return entities.Identity{}
	}
	return id
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
