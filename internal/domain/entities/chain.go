package entities

import "math/big"

// ChainSessionState is the connectivity state of the wallet provider session
type ChainSessionState string

const (
	ChainSessionUninstalled           ChainSessionState = "uninstalled"
	ChainSessionInstalledDisconnected ChainSessionState = "installed-disconnected"
	ChainSessionConnecting            ChainSessionState = "connecting"
	ChainSessionConnected             ChainSessionState = "connected"
)

// ChainSessionSnapshot is a read-only view of the session manager
type ChainSessionSnapshot struct {
	State   ChainSessionState `json:"state"`
	Address string            `json:"address,omitempty"`
	ChainID *big.Int          `json:"chainId,omitempty"`
	Balance string            `json:"balance"`
}

// NetworkParams describes a chain the provider can be asked to register
type NetworkParams struct {
	ChainID        *big.Int `json:"chainId"`
	Name           string   `json:"name"`
	RPCURL         string   `json:"rpcUrl"`
	CurrencySymbol string   `json:"currencySymbol"`
	ExplorerURL    string   `json:"explorerUrl,omitempty"`
}

// ReceiptStatus is the investment confirmation outcome
type ReceiptStatus string

const (
	ReceiptStatusSuccess ReceiptStatus = "success"
	ReceiptStatusFailed  ReceiptStatus = "failed"
)

// InvestmentReceipt is the confirmed result of an on-chain investment
type InvestmentReceipt struct {
	TxHash      string        `json:"txHash"`
	BlockNumber uint64        `json:"blockNumber"`
	Status      ReceiptStatus `json:"status"`
}

// OnchainStartup is the contract's view of a startup
type OnchainStartup struct {
	OnchainID      int64  `json:"onchainId"`
	FounderAddress string `json:"founderAddress"`
	FundingGoal    string `json:"fundingGoal"`
	CurrentFunding string `json:"currentFunding"`
	Active         bool   `json:"active"`
}

// OnchainIDMapping is a persisted opaque identifier → on-chain integer allocation
type OnchainIDMapping struct {
	IdentityKey string `json:"identityKey"`
	OnchainID   int64  `json:"onchainId"`
}
