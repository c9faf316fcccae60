package usecases_test

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"venture-ledger.backend/internal/domain/entities"
	"venture-ledger.backend/internal/infrastructure/blockchain"
)

const (
	investorAddr = "0x1111111111111111111111111111111111111111"
	contractAddr = "0x2222222222222222222222222222222222222222"
	sampleTxHash = "0x3333333333333333333333333333333333333333333333333333333333333333"
)

var (
	targetChainID = big.NewInt(11155111)
	otherChainID  = big.NewInt(1)
	targetNetwork = entities.NetworkParams{
		ChainID:        targetChainID,
		Name:           "Sepolia",
		RPCURL:         "http://127.0.0.1:8545",
		CurrencySymbol: "ETH",
	}
)

// fakeProvider is an in-memory wallet provider with scriptable failures
type fakeProvider struct {
	mu sync.Mutex

	available  bool
	accounts   []string
	requestErr error
	authorized bool
	// requests counts account prompts. A non-nil requestGate holds each
	// prompt until it is closed.
	requests    int
	requestGate chan struct{}

	chainID  *big.Int
	known    map[string]bool
	balances map[string]*big.Int
	addCalls int
	addErr   error

	sendErr    error
	sent       []blockchain.TxRequest
	receipt    *types.Receipt
	receiptErr error
	blockWait  bool

	callResult []byte
	callErr    error

	accountListeners blockchain.Listeners[[]string]
	chainListeners   blockchain.Listeners[*big.Int]
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		available: true,
		accounts:  []string{investorAddr},
		chainID:   new(big.Int).Set(targetChainID),
		known:     map[string]bool{targetChainID.String(): true},
		balances:  map[string]*big.Int{},
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			TxHash:      common.HexToHash(sampleTxHash),
			BlockNumber: big.NewInt(42),
		},
	}
}

func (p *fakeProvider) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

func (p *fakeProvider) RequestAccounts(context.Context) ([]string, error) {
	p.mu.Lock()
	p.requests++
	gate := p.requestGate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.requestErr != nil {
		return nil, p.requestErr
	}
	p.authorized = true
	return append([]string(nil), p.accounts...), nil
}

func (p *fakeProvider) Accounts(context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authorized {
		return []string{}, nil
	}
	return append([]string(nil), p.accounts...), nil
}

func (p *fakeProvider) ChainID(context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return new(big.Int).Set(p.chainID), nil
}

func (p *fakeProvider) BalanceAt(_ context.Context, _ string) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok := p.balances[p.chainID.String()]; ok {
		return new(big.Int).Set(b), nil
	}
	return big.NewInt(0), nil
}

func (p *fakeProvider) SwitchChain(_ context.Context, chainID *big.Int) error {
	p.mu.Lock()
	if !p.known[chainID.String()] {
		p.mu.Unlock()
		return &blockchain.ProviderError{Code: blockchain.CodeUnrecognizedChain, Message: "Unrecognized chain ID"}
	}
	changed := p.chainID.Cmp(chainID) != 0
	p.chainID = new(big.Int).Set(chainID)
	p.mu.Unlock()

	if changed {
		p.chainListeners.Emit(new(big.Int).Set(chainID))
	}
	return nil
}

func (p *fakeProvider) AddChain(_ context.Context, params entities.NetworkParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addCalls++
	if p.addErr != nil {
		return p.addErr
	}
	p.known[params.ChainID.String()] = true
	return nil
}

func (p *fakeProvider) SendTransaction(_ context.Context, req blockchain.TxRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendErr != nil {
		return "", p.sendErr
	}
	p.sent = append(p.sent, req)
	return sampleTxHash, nil
}

func (p *fakeProvider) WaitReceipt(ctx context.Context, _ string) (*types.Receipt, error) {
	p.mu.Lock()
	block, receipt, err := p.blockWait, p.receipt, p.receiptErr
	p.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return receipt, err
}

func (p *fakeProvider) CallContract(context.Context, string, []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callResult, p.callErr
}

func (p *fakeProvider) OnAccountsChanged(fn func([]string)) func() {
	return p.accountListeners.Add(fn)
}

func (p *fakeProvider) OnChainChanged(fn func(*big.Int)) func() {
	return p.chainListeners.Add(fn)
}

// switchAccount simulates the user picking another account in the wallet
func (p *fakeProvider) switchAccount(accounts ...string) {
	p.mu.Lock()
	p.accounts = accounts
	p.mu.Unlock()
	p.accountListeners.Emit(accounts)
}

func (p *fakeProvider) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func (p *fakeProvider) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}
