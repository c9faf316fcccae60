package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/pkg/logger"
)

// InvestmentUsecase drives both investment rails and records their outcome
type InvestmentUsecase struct {
	session  *ChainSessionManager
	gateway  *InvestmentGateway
	resolver *OnchainIDResolver
	ledger   *TransactionLedgerUsecase
	manual   *ManualPaymentWorkflow
	wallets  *WalletIdentityUsecase
}

// NewInvestmentUsecase creates a new investment usecase
func NewInvestmentUsecase(
	session *ChainSessionManager,
	gateway *InvestmentGateway,
	resolver *OnchainIDResolver,
	ledger *TransactionLedgerUsecase,
	manual *ManualPaymentWorkflow,
	wallets *WalletIdentityUsecase,
) *InvestmentUsecase {
	return &InvestmentUsecase{
		session:  session,
		gateway:  gateway,
		resolver: resolver,
		ledger:   ledger,
		manual:   manual,
		wallets:  wallets,
	}
}

// ParseStartupRef parses a caller-supplied startup reference
func ParseStartupRef(raw string) (entities.Identity, error) {
	startup, err := entities.ParseIdentity(entities.AccountKindStartup, raw)
	if err != nil {
		return entities.Identity{}, domainerrors.ErrInvalidReference
	}
	return startup, nil
}

// ConnectWallet connects the chain session and associates the resulting
// address with the caller.
func (u *InvestmentUsecase) ConnectWallet(ctx context.Context, sc entities.SessionContext) (*entities.WalletAssociation, error) {
	if sc.Identity.IsZero() {
		return nil, domainerrors.Unauthorized("identity is required")
	}
	address, err := u.session.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return u.wallets.Associate(ctx, sc.Identity, address, false)
}

// InvestOnchain submits an investment through the connected wallet and
// records the outcome. Failures before submission create no record.
func (u *InvestmentUsecase) InvestOnchain(ctx context.Context, sc entities.SessionContext, startupRef, amount string) (*entities.Transaction, error) {
	investor := sc.Identity
	if investor.IsZero() {
		return nil, domainerrors.Unauthorized("identity is required")
	}
	startup, err := ParseStartupRef(startupRef)
	if err != nil {
		return nil, err
	}
	canonical, err := CanonicalAmount(amount)
	if err != nil {
		return nil, err
	}

	sender, err := u.session.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.checkSender(ctx, investor, sender); err != nil {
		return nil, err
	}
	if err := u.session.EnsureTargetNetwork(ctx); err != nil {
		return nil, err
	}
	onchainID, err := u.resolver.Resolve(ctx, startup)
	if err != nil {
		return nil, err
	}

	receipt, err := u.gateway.Invest(ctx, onchainID, canonical)
	if err != nil {
		return nil, err
	}

	input := CreateTransactionInput{
		StartupRef:  startup,
		InvestorRef: investor,
		Amount:      canonical,
		Rail:        entities.PaymentRailOnchain,
		ExternalRef: receipt.TxHash,
		BlockNumber: &receipt.BlockNumber,
		Status:      entities.TransactionStatusCompleted,
	}
	if receipt.Status != entities.ReceiptStatusSuccess {
		input.Status = entities.TransactionStatusFailed
		input.FailureReason = "transaction reverted"
	}

	tx, err := u.ledger.Create(ctx, input)
	if err != nil {
		logger.Error(ctx, "Investment confirmed on-chain but not recorded",
			zap.String("tx_hash", receipt.TxHash),
			zap.String("startup", startup.Key()),
			zap.String("investor", investor.Key()),
			zap.String("amount", canonical),
			zap.Error(err),
		)
		if errors.Is(err, domainerrors.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, domainerrors.StoreUnavailable("record investment "+receipt.TxHash, err)
	}
	return tx, nil
}

// checkSender refuses a sending wallet that the store attributes to someone
// else. An unassociated wallet is accepted.
func (u *InvestmentUsecase) checkSender(ctx context.Context, investor entities.Identity, address string) error {
	owner, err := u.wallets.ResolveIdentity(ctx, address)
	if err != nil {
		return err
	}
	if owner != nil && *owner != investor {
		logger.Warn(ctx, "Investment sender wallet belongs to another identity",
			zap.String("address", address),
			zap.String("owner", owner.Key()),
			zap.String("investor", investor.Key()),
		)
		return domainerrors.ErrWalletNotOwned
	}
	return nil
}

// StartManual opens a manual payment session for the caller
func (u *InvestmentUsecase) StartManual(ctx context.Context, sc entities.SessionContext, startupRef string) (*ManualPaymentSession, error) {
	if sc.Identity.IsZero() {
		return nil, domainerrors.Unauthorized("identity is required")
	}
	startup, err := ParseStartupRef(startupRef)
	if err != nil {
		return nil, err
	}
	return u.manual.Start(ctx, sc.Identity, startup)
}

// InvestManual walks the manual workflow through to submission
func (u *InvestmentUsecase) InvestManual(ctx context.Context, sc entities.SessionContext, startupRef, amount, reference string) (*entities.Transaction, error) {
	session, err := u.StartManual(ctx, sc, startupRef)
	if err != nil {
		return nil, err
	}
	if err := session.SetAmount(amount); err != nil {
		return nil, err
	}
	if err := session.Proceed(); err != nil {
		return nil, err
	}
	return session.Submit(ctx, reference)
}

// Approve marks a pending manual record completed
func (u *InvestmentUsecase) Approve(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return u.ledger.Transition(ctx, id, entities.TransactionStatusCompleted, "")
}

// Reject marks a pending manual record failed
func (u *InvestmentUsecase) Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Transaction, error) {
	return u.ledger.Transition(ctx, id, entities.TransactionStatusFailed, reason)
}
