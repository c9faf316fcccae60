package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/blockchain"
	"venture-ledger.backend/pkg/logger"
	"venture-ledger.backend/pkg/metrics"
)

const eventRefreshTimeout = 10 * time.Second

// ChainSessionManager tracks connectivity to one wallet provider.
// Provider calls are made without holding the lock so change notifications
// fired during a call can update state.
type ChainSessionManager struct {
	provider blockchain.ChainProvider
	target   entities.NetworkParams
	metrics  *metrics.Recorder
	connects singleflight.Group

	mu      sync.RWMutex
	state   entities.ChainSessionState
	address string
	chainID *big.Int
	balance string

	accountListeners blockchain.Listeners[[]string]
	chainListeners   blockchain.Listeners[*big.Int]
	detach           []func()
}

// NewChainSessionManager creates a manager for provider. provider may be nil,
// which leaves the session uninstalled.
func NewChainSessionManager(provider blockchain.ChainProvider, target entities.NetworkParams, recorder *metrics.Recorder) *ChainSessionManager {
	m := &ChainSessionManager{
		provider: provider,
		target:   target,
		metrics:  recorder,
		state:    entities.ChainSessionUninstalled,
		balance:  "0",
	}
	if provider != nil {
		m.detach = append(m.detach,
			provider.OnAccountsChanged(m.handleAccountsChanged),
			provider.OnChainChanged(m.handleChainChanged),
		)
	}
	m.DetectProvider()
	return m
}

// Close detaches from the provider's notifications
func (m *ChainSessionManager) Close() {
	for _, fn := range m.detach {
		fn()
	}
	m.detach = nil
}

// Target returns the single network this system supports
func (m *ChainSessionManager) Target() entities.NetworkParams {
	return m.target
}

// DetectProvider reports whether a usable provider is present
func (m *ChainSessionManager) DetectProvider() bool {
	available := m.provider != nil && m.provider.Available()

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case !available:
		m.state = entities.ChainSessionUninstalled
		m.address = ""
		m.balance = "0"
	case m.state == entities.ChainSessionUninstalled:
		m.state = entities.ChainSessionInstalledDisconnected
	}
	return available
}

// Connect requests account access. An existing connection is returned
// without prompting again, and concurrent callers share one prompt.
func (m *ChainSessionManager) Connect(ctx context.Context) (string, error) {
	if address := m.Address(); address != "" {
		return address, nil
	}
	v, err, _ := m.connects.Do("connect", func() (interface{}, error) {
		return m.connect(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *ChainSessionManager) connect(ctx context.Context) (string, error) {
	if address := m.Address(); address != "" {
		return address, nil
	}
	if !m.DetectProvider() {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrNotConnected, blockchain.ErrNoProvider)
	}

	m.setState(entities.ChainSessionConnecting)
	accounts, err := m.provider.RequestAccounts(ctx)
	if err == nil && len(accounts) == 0 {
		err = domainerrors.ErrConnectionRejected
	}
	if err != nil {
		m.setState(entities.ChainSessionInstalledDisconnected)
		classified := classifyProviderError(err)
		if errors.Is(classified, domainerrors.ErrConnectionRejected) {
			logger.Info(ctx, "Wallet connection rejected")
		} else {
			logger.Warn(ctx, "Wallet connection failed", zap.Error(err))
		}
		return "", classified
	}

	address, err := NormalizeAddress(accounts[0])
	if err != nil {
		m.setState(entities.ChainSessionInstalledDisconnected)
		return "", &domainerrors.UnknownProviderError{Raw: "provider returned malformed account " + accounts[0]}
	}

	m.mu.Lock()
	m.address = address
	m.state = entities.ChainSessionConnected
	m.mu.Unlock()

	m.refresh(ctx)
	logger.Info(ctx, "Wallet connected", zap.String("address", address))
	return address, nil
}

// Disconnect clears local session state and revokes provider access when supported
func (m *ChainSessionManager) Disconnect() {
	m.clearAccount()
	if r, ok := m.provider.(interface{ Revoke() }); ok {
		r.Revoke()
	}
}

// ChainID returns the provider's current chain, or nil on any provider error
func (m *ChainSessionManager) ChainID(ctx context.Context) *big.Int {
	if m.provider == nil {
		return nil
	}
	id, err := m.provider.ChainID(ctx)
	if err != nil || id == nil {
		logger.Debug(ctx, "Chain id query failed", zap.Error(err))
		return nil
	}
	m.mu.Lock()
	m.chainID = new(big.Int).Set(id)
	m.mu.Unlock()
	return id
}

// Balance returns address's native balance in ether, or "0" on any provider error
func (m *ChainSessionManager) Balance(ctx context.Context, address string) string {
	if m.provider == nil || address == "" {
		return "0"
	}
	wei, err := m.provider.BalanceAt(ctx, address)
	if err != nil || wei == nil {
		logger.Debug(ctx, "Balance query failed", zap.String("address", address), zap.Error(err))
		return "0"
	}
	return WeiToEther(wei)
}

// SwitchNetwork asks the provider to move to chainID, registering the
// network first if the provider does not know it. Only the configured
// target network is supported.
func (m *ChainSessionManager) SwitchNetwork(ctx context.Context, chainID *big.Int) error {
	if chainID == nil || m.target.ChainID == nil || chainID.Cmp(m.target.ChainID) != 0 {
		return domainerrors.Validation(fmt.Sprintf("network %v is not supported", chainID))
	}
	if !m.DetectProvider() {
		return fmt.Errorf("%w: %v", domainerrors.ErrNotConnected, blockchain.ErrNoProvider)
	}

	err := m.provider.SwitchChain(ctx, chainID)
	if blockchain.IsProviderCode(err, blockchain.CodeUnrecognizedChain) {
		logger.Info(ctx, "Registering target network with provider", zap.String("chain_id", chainID.String()))
		if addErr := m.provider.AddChain(ctx, m.target); addErr != nil {
			return classifyProviderError(addErr)
		}
		err = m.provider.SwitchChain(ctx, chainID)
	}
	if err != nil {
		return classifyProviderError(err)
	}

	m.refresh(ctx)
	return nil
}

// EnsureTargetNetwork fails with ErrNetworkMismatch unless the provider is on the target chain
func (m *ChainSessionManager) EnsureTargetNetwork(ctx context.Context) error {
	current := m.ChainID(ctx)
	if current == nil || m.target.ChainID == nil || current.Cmp(m.target.ChainID) != 0 {
		return fmt.Errorf("%w: on chain %v, want %v", domainerrors.ErrNetworkMismatch, current, m.target.ChainID)
	}
	return nil
}

// Address returns the connected address, or ""
func (m *ChainSessionManager) Address() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != entities.ChainSessionConnected {
		return ""
	}
	return m.address
}

// Snapshot returns a copy of the current session state
func (m *ChainSessionManager) Snapshot() entities.ChainSessionSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := entities.ChainSessionSnapshot{
		State:   m.state,
		Address: m.address,
		Balance: m.balance,
	}
	if m.chainID != nil {
		snap.ChainID = new(big.Int).Set(m.chainID)
	}
	return snap
}

// OnAccountsChanged registers fn for account changes. Past events are not replayed.
func (m *ChainSessionManager) OnAccountsChanged(fn func(accounts []string)) (unsubscribe func()) {
	return m.accountListeners.Add(fn)
}

// OnChainChanged registers fn for chain changes. Past events are not replayed.
func (m *ChainSessionManager) OnChainChanged(fn func(chainID *big.Int)) (unsubscribe func()) {
	return m.chainListeners.Add(fn)
}

func (m *ChainSessionManager) handleAccountsChanged(accounts []string) {
	ctx, cancel := context.WithTimeout(context.Background(), eventRefreshTimeout)
	defer cancel()

	if len(accounts) == 0 {
		m.clearAccount()
	} else if address, err := NormalizeAddress(accounts[0]); err == nil {
		m.mu.Lock()
		m.address = address
		m.state = entities.ChainSessionConnected
		m.mu.Unlock()
		m.refreshBalance(ctx)
	}

	m.metrics.ChainEvent("accounts")
	m.accountListeners.Emit(append([]string(nil), accounts...))
}

func (m *ChainSessionManager) handleChainChanged(chainID *big.Int) {
	ctx, cancel := context.WithTimeout(context.Background(), eventRefreshTimeout)
	defer cancel()

	m.mu.Lock()
	if chainID != nil {
		m.chainID = new(big.Int).Set(chainID)
	}
	m.mu.Unlock()
	m.refreshBalance(ctx)

	m.metrics.ChainEvent("chain")
	m.chainListeners.Emit(chainID)
}

func (m *ChainSessionManager) clearAccount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.address = ""
	m.balance = "0"
	if m.state != entities.ChainSessionUninstalled {
		m.state = entities.ChainSessionInstalledDisconnected
	}
}

func (m *ChainSessionManager) refresh(ctx context.Context) {
	m.ChainID(ctx)
	m.refreshBalance(ctx)
}

func (m *ChainSessionManager) refreshBalance(ctx context.Context) {
	m.mu.RLock()
	address := m.address
	m.mu.RUnlock()
	if address == "" {
		return
	}
	balance := m.Balance(ctx, address)

	m.mu.Lock()
	if m.address == address {
		m.balance = balance
	}
	m.mu.Unlock()
}

func (m *ChainSessionManager) setState(state entities.ChainSessionState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}
