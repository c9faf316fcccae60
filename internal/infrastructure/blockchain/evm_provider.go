package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"venture-ledger.backend/internal/domain/entities"
)

const defaultReceiptPollInterval = 2 * time.Second

var performRawTransact = func(backend *ethclient.Client, to common.Address, opts *bind.TransactOpts, data []byte) (string, error) {
	contract := bind.NewBoundContract(to, abi.ABI{}, backend, backend, backend)
	tx, err := contract.RawTransact(opts, data)
	if err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

// EVMProvider is a server-side wallet provider backed by a custodial signing
// key. It behaves like an injected wallet: account access has to be requested
// before submission and only registered networks can be switched to.
type EVMProvider struct {
	factory      *ClientFactory
	key          *ecdsa.PrivateKey
	address      common.Address
	pollInterval time.Duration

	mu         sync.RWMutex
	networks   map[string]entities.NetworkParams
	active     string
	authorized bool

	accountListeners Listeners[[]string]
	chainListeners   Listeners[*big.Int]
}

// NewEVMProvider creates a provider. signerKeyHex may be empty, in which case
// the provider reports itself unavailable. The first network is active.
func NewEVMProvider(factory *ClientFactory, signerKeyHex string, networks ...entities.NetworkParams) (*EVMProvider, error) {
	p := &EVMProvider{
		factory:      factory,
		pollInterval: defaultReceiptPollInterval,
		networks:     make(map[string]entities.NetworkParams),
	}

	if keyHex := strings.TrimPrefix(strings.TrimSpace(signerKeyHex), "0x"); keyHex != "" {
		key, err := crypto.HexToECDSA(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid signer private key: %w", err)
		}
		p.key = key
		p.address = crypto.PubkeyToAddress(key.PublicKey)
	}

	for i, n := range networks {
		if n.ChainID == nil || n.RPCURL == "" {
			return nil, fmt.Errorf("network %d: chain id and rpc url are required", i)
		}
		p.networks[n.ChainID.String()] = n
		if i == 0 {
			p.active = n.ChainID.String()
		}
	}
	return p, nil
}

// SetPollInterval changes how often WaitReceipt polls
func (p *EVMProvider) SetPollInterval(d time.Duration) {
	if d > 0 {
		p.pollInterval = d
	}
}

func (p *EVMProvider) Available() bool {
	return p.key != nil
}

func (p *EVMProvider) RequestAccounts(_ context.Context) ([]string, error) {
	if p.key == nil {
		return nil, ErrNoProvider
	}
	p.mu.Lock()
	p.authorized = true
	p.mu.Unlock()
	return []string{p.address.Hex()}, nil
}

func (p *EVMProvider) Accounts(_ context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.authorized {
		return []string{}, nil
	}
	return []string{p.address.Hex()}, nil
}

// Revoke drops account access and notifies account listeners with an empty list
func (p *EVMProvider) Revoke() {
	p.mu.Lock()
	was := p.authorized
	p.authorized = false
	p.mu.Unlock()
	if was {
		p.accountListeners.Emit([]string{})
	}
}

func (p *EVMProvider) ChainID(_ context.Context) (*big.Int, error) {
	n, err := p.activeNetwork()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(n.ChainID), nil
}

func (p *EVMProvider) BalanceAt(ctx context.Context, address string) (*big.Int, error) {
	client, err := p.activeClient()
	if err != nil {
		return nil, err
	}
	return client.GetBalance(ctx, address)
}

func (p *EVMProvider) SwitchChain(_ context.Context, chainID *big.Int) error {
	if chainID == nil {
		return &ProviderError{Code: CodeUnrecognizedChain, Message: "missing chain id"}
	}
	key := chainID.String()

	p.mu.Lock()
	if _, ok := p.networks[key]; !ok {
		p.mu.Unlock()
		return &ProviderError{Code: CodeUnrecognizedChain, Message: "Unrecognized chain ID " + key}
	}
	changed := p.active != key
	p.active = key
	p.mu.Unlock()

	if changed {
		p.chainListeners.Emit(new(big.Int).Set(chainID))
	}
	return nil
}

func (p *EVMProvider) AddChain(_ context.Context, params entities.NetworkParams) error {
	if params.ChainID == nil || params.RPCURL == "" {
		return &ProviderError{Code: CodeInternalRPCFailure, Message: "chain id and rpc url are required"}
	}
	p.mu.Lock()
	p.networks[params.ChainID.String()] = params
	p.mu.Unlock()
	return nil
}

func (p *EVMProvider) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	p.mu.RLock()
	authorized := p.authorized
	p.mu.RUnlock()
	if !authorized {
		return "", &ProviderError{Code: CodeUnauthorized, Message: "account access has not been granted"}
	}
	if req.From != "" && !strings.EqualFold(req.From, p.address.Hex()) {
		return "", &ProviderError{Code: CodeUnauthorized, Message: "unknown sender " + req.From}
	}
	if !common.IsHexAddress(req.To) {
		return "", fmt.Errorf("invalid recipient address %q", req.To)
	}

	n, err := p.activeNetwork()
	if err != nil {
		return "", err
	}
	client, err := p.factory.GetEVMClient(n.RPCURL)
	if err != nil {
		return "", err
	}

	auth, err := bind.NewKeyedTransactorWithChainID(p.key, n.ChainID)
	if err != nil {
		return "", err
	}
	auth.Context = ctx
	if req.Value != nil {
		auth.Value = new(big.Int).Set(req.Value)
	}

	return performRawTransact(client.Backend(), common.HexToAddress(req.To), auth, req.Data)
}

// WaitReceipt polls until the transaction is mined or ctx is done
func (p *EVMProvider) WaitReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	client, err := p.activeClient()
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		receipt, err := client.GetTransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *EVMProvider) CallContract(ctx context.Context, to string, data []byte) ([]byte, error) {
	client, err := p.activeClient()
	if err != nil {
		return nil, err
	}
	return client.CallView(ctx, to, data)
}

func (p *EVMProvider) OnAccountsChanged(fn func(accounts []string)) func() {
	return p.accountListeners.Add(fn)
}

func (p *EVMProvider) OnChainChanged(fn func(chainID *big.Int)) func() {
	return p.chainListeners.Add(fn)
}

func (p *EVMProvider) activeNetwork() (entities.NetworkParams, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.networks[p.active]
	if !ok {
		return entities.NetworkParams{}, &ProviderError{Code: CodeDisconnected, Message: "no active network"}
	}
	return n, nil
}

func (p *EVMProvider) activeClient() (*EVMClient, error) {
	n, err := p.activeNetwork()
	if err != nil {
		return nil, err
	}
	return p.factory.GetEVMClient(n.RPCURL)
}

// Listeners is a synchronous callback fan-out. Late subscribers do not
// see earlier events.
type Listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *Listeners[T]) Add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *Listeners[T]) Emit(v T) {
	l.mu.Lock()
	fns := make([]func(T), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
