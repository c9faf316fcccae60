package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/blockchain"
	"venture-ledger.backend/pkg/logger"
)

// InvestmentContractABI is the subset of the funding contract this service calls
var InvestmentContractABI = mustParseABI(`[
	{"inputs":[{"internalType":"uint256","name":"startupId","type":"uint256"}],"name":"invest","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"startupId","type":"uint256"}],"name":"getStartup","outputs":[{"internalType":"address","name":"founder","type":"address"},{"internalType":"uint256","name":"fundingGoal","type":"uint256"},{"internalType":"uint256","name":"currentFunding","type":"uint256"},{"internalType":"bool","name":"active","type":"bool"}],"stateMutability":"view","type":"function"}
]`)

const defaultConfirmationTimeout = 2 * time.Minute

// InvestmentGateway submits investments to the funding contract through the
// session's provider.
type InvestmentGateway struct {
	session             *ChainSessionManager
	provider            blockchain.ChainProvider
	contractAddress     string
	confirmationTimeout time.Duration
}

// NewInvestmentGateway creates a gateway for the contract at contractAddress
func NewInvestmentGateway(session *ChainSessionManager, provider blockchain.ChainProvider, contractAddress string, confirmationTimeout time.Duration) *InvestmentGateway {
	if confirmationTimeout <= 0 {
		confirmationTimeout = defaultConfirmationTimeout
	}
	return &InvestmentGateway{
		session:             session,
		provider:            provider,
		contractAddress:     contractAddress,
		confirmationTimeout: confirmationTimeout,
	}
}

// Invest sends amount (ether, decimal string) to invest(startupID) and waits
// for one confirmation. Validation runs before anything touches the provider.
func (g *InvestmentGateway) Invest(ctx context.Context, startupID int64, amount string) (*entities.InvestmentReceipt, error) {
	if startupID <= 0 {
		return nil, domainerrors.ErrInvalidReference
	}
	canonical, err := CanonicalAmount(amount)
	if err != nil {
		return nil, err
	}
	value, err := AmountToWei(canonical)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(g.contractAddress) {
		return nil, domainerrors.InternalError(fmt.Errorf("investment contract address %q is not configured", g.contractAddress))
	}

	from := g.session.Address()
	if from == "" {
		return nil, domainerrors.ErrNotConnected
	}

	data, err := InvestmentContractABI.Pack("invest", big.NewInt(startupID))
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	txHash, err := g.provider.SendTransaction(ctx, blockchain.TxRequest{
		From:  from,
		To:    g.contractAddress,
		Value: value,
		Data:  data,
	})
	if err != nil {
		classified := classifyProviderError(err)
		logger.Warn(ctx, "Investment submission failed",
			zap.Int64("startup_onchain_id", startupID),
			zap.String("amount", canonical),
			zap.Error(err),
		)
		return nil, classified
	}
	logger.Info(ctx, "Investment submitted", zap.String("tx_hash", txHash), zap.Int64("startup_onchain_id", startupID), zap.String("amount", canonical))

	waitCtx, cancel := context.WithTimeout(ctx, g.confirmationTimeout)
	defer cancel()
	receipt, err := g.provider.WaitReceipt(waitCtx, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &domainerrors.UnknownProviderError{Raw: fmt.Sprintf("no confirmation for %s: %v", txHash, err)}
		}
		return nil, classifyProviderError(err)
	}

	return toInvestmentReceipt(txHash, receipt), nil
}

// GetStartup reads the contract's record for startupID
func (g *InvestmentGateway) GetStartup(ctx context.Context, startupID int64) (*entities.OnchainStartup, error) {
	if startupID <= 0 {
		return nil, domainerrors.ErrInvalidReference
	}
	data, err := InvestmentContractABI.Pack("getStartup", big.NewInt(startupID))
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	out, err := g.provider.CallContract(ctx, g.contractAddress, data)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	values, err := InvestmentContractABI.Unpack("getStartup", out)
	if err != nil || len(values) != 4 {
		return nil, &domainerrors.UnknownProviderError{Raw: fmt.Sprintf("unexpected getStartup result: %v", err)}
	}
	founder, ok1 := values[0].(common.Address)
	goal, ok2 := values[1].(*big.Int)
	current, ok3 := values[2].(*big.Int)
	active, ok4 := values[3].(bool)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, &domainerrors.UnknownProviderError{Raw: "unexpected getStartup result types"}
	}

	return &entities.OnchainStartup{
		OnchainID:      startupID,
		FounderAddress: strings.ToLower(founder.Hex()),
		FundingGoal:    WeiToEther(goal),
		CurrentFunding: WeiToEther(current),
		Active:         active,
	}, nil
}

func toInvestmentReceipt(txHash string, receipt *types.Receipt) *entities.InvestmentReceipt {
	out := &entities.InvestmentReceipt{TxHash: txHash, Status: entities.ReceiptStatusFailed}
	if receipt == nil {
		return out
	}
	if receipt.TxHash != (common.Hash{}) {
		out.TxHash = receipt.TxHash.Hex()
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		out.Status = entities.ReceiptStatusSuccess
	}
	return out
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
