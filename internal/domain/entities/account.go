package entities

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// Account is the identity record for a user or a startup
type Account struct {
	Identity      Identity    `json:"identity"`
	Name          string      `json:"name"`
	Role          UserRole    `json:"role,omitempty"` // users only
	OwnerRef      null.String `json:"ownerRef,omitempty"`
	WalletAddress null.String `json:"walletAddress,omitempty"`
	PaymentID     null.String `json:"paymentId,omitempty"`
	PaymentQRURL  null.String `json:"paymentQrUrl,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// HasPaymentTarget reports whether the account can receive manual payments
func (a *Account) HasPaymentTarget() bool {
	return strings.TrimSpace(a.PaymentID.String) != "" || strings.TrimSpace(a.PaymentQRURL.String) != ""
}
