package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountKind distinguishes the two kinds of account a reference can point at
type AccountKind string

const (
	AccountKindUser    AccountKind = "user"
	AccountKindStartup AccountKind = "startup"
)

// UserRole represents the marketplace role of a user account
type UserRole string

const (
	UserRoleFounder  UserRole = "founder"
	UserRoleInvestor UserRole = "investor"
	UserRoleAdmin    UserRole = "admin"
)

// IdentifierKind tags which identifier namespace an Identity lives in
type IdentifierKind string

const (
	IdentifierNumeric IdentifierKind = "numeric"
	IdentifierOpaque  IdentifierKind = "opaque"
)

// Identity is a single logical account reference. It is either a relational
// integer ID or an opaque document-store string ID, never both.
type Identity struct {
	Account AccountKind    `json:"account"`
	Kind    IdentifierKind `json:"kind"`
	Numeric int64          `json:"numeric,omitempty"`
	Opaque  string         `json:"opaque,omitempty"`
}

// NumericIdentity builds an identity in the relational namespace
func NumericIdentity(account AccountKind, id int64) Identity {
	return Identity{Account: account, Kind: IdentifierNumeric, Numeric: id}
}

// OpaqueIdentity builds an identity in the document-store namespace
func OpaqueIdentity(account AccountKind, id string) Identity {
	return Identity{Account: account, Kind: IdentifierOpaque, Opaque: id}
}

// ParseIdentity parses a raw identifier. Digits-only values are numeric,
// anything else is opaque.
func ParseIdentity(account AccountKind, raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, fmt.Errorf("empty %s identifier", account)
	}
	if account != AccountKindUser && account != AccountKindStartup {
		return Identity{}, fmt.Errorf("unknown account kind %q", account)
	}
	if isDigits(raw) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return NumericIdentity(account, n), nil
		}
	}
	return OpaqueIdentity(account, raw), nil
}

// ParseIdentityKey parses the canonical "kind:value" form produced by Key.
func ParseIdentityKey(key string) (Identity, error) {
	account, raw, ok := strings.Cut(key, ":")
	if !ok {
		return Identity{}, fmt.Errorf("malformed identity key %q", key)
	}
	return ParseIdentity(AccountKind(account), raw)
}

// IsZero reports whether the identity is unset
func (i Identity) IsZero() bool {
	return i.Kind == "" || (i.Kind == IdentifierNumeric && i.Numeric == 0 && i.Opaque == "") ||
		(i.Kind == IdentifierOpaque && i.Opaque == "")
}

// Value returns the raw identifier without the account prefix
func (i Identity) Value() string {
	if i.Kind == IdentifierNumeric {
		return strconv.FormatInt(i.Numeric, 10)
	}
	return i.Opaque
}

// Key returns the canonical storage key, e.g. "startup:42" or "user:doc_AbC".
func (i Identity) Key() string {
	return string(i.Account) + ":" + i.Value()
}

func (i Identity) String() string {
	return i.Key()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// SessionContext is the explicit per-request view of who is acting.
// Identity and role come from the auth token, wallet fields from the chain session.
type SessionContext struct {
	Identity        Identity `json:"identity"`
	Role            UserRole `json:"role"`
	WalletAddress   string   `json:"walletAddress,omitempty"`
	WalletConnected bool     `json:"walletConnected"`
}
