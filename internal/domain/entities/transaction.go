package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionStatus represents the ledger status of an investment attempt
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Valid reports whether s is a known status
func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s.IsTerminal()
}

// PaymentRail identifies which rail produced a transaction
type PaymentRail string

const (
	PaymentRailOnchain PaymentRail = "onchain"
	PaymentRailManual  PaymentRail = "manual"
)

// Transaction is the local ledger record of one investment attempt
type Transaction struct {
	ID            uuid.UUID         `json:"id"`
	StartupRef    Identity          `json:"startupRef"`
	InvestorRef   Identity          `json:"investorRef"`
	Amount        string            `json:"amount"`
	Rail          PaymentRail       `json:"rail"`
	ExternalRef   null.String       `json:"externalRef,omitempty"`
	BlockNumber   null.Uint64       `json:"blockNumber,omitempty"`
	Status        TransactionStatus `json:"status"`
	FailureReason null.String       `json:"failureReason,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// InvestOnchainInput represents input for an on-chain investment
type InvestOnchainInput struct {
	StartupRef string `json:"startupRef" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

// InvestManualInput represents input for a manual-rail investment
type InvestManualInput struct {
	StartupRef string `json:"startupRef" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	Reference  string `json:"reference" binding:"required"`
}

// TransitionInput represents an approver decision
type TransitionInput struct {
	Status TransactionStatus `json:"status" binding:"required"`
	Reason string            `json:"reason"`
}
