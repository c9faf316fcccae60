package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"venture-ledger.backend/internal/domain/entities"
)

// EIP-1193 / EIP-3085 provider error codes
const (
	CodeUserRejected       = 4001
	CodeUnauthorized       = 4100
	CodeUnsupportedMethod  = 4200
	CodeDisconnected       = 4900
	CodeUnrecognizedChain  = 4902
	CodeInternalRPCFailure = -32603
)

var ErrNoProvider = errors.New("no wallet provider available")

// ProviderError is an error reported by a wallet provider. Data carries the
// raw revert payload when the node returned one.
type ProviderError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorData exposes revert bytes the way go-ethereum rpc.DataError does
func (e *ProviderError) ErrorData() interface{} {
	return e.Data
}

// IsProviderCode reports whether err is a ProviderError with the given code
func IsProviderCode(err error, code int) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == code
}

// TxRequest is a value transfer or contract call to be signed by the provider
type TxRequest struct {
	From  string
	To    string
	Value *big.Int
	Data  []byte
}

// ChainProvider is a wallet provider session: account access, chain and
// balance queries, network management, submission, and change notifications.
type ChainProvider interface {
	Available() bool
	RequestAccounts(ctx context.Context) ([]string, error)
	Accounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, address string) (*big.Int, error)
	SwitchChain(ctx context.Context, chainID *big.Int) error
	AddChain(ctx context.Context, params entities.NetworkParams) error
	SendTransaction(ctx context.Context, req TxRequest) (string, error)
	WaitReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
	CallContract(ctx context.Context, to string, data []byte) ([]byte, error)
	OnAccountsChanged(fn func(accounts []string)) (unsubscribe func())
	OnChainChanged(fn func(chainID *big.Int)) (unsubscribe func())
}
