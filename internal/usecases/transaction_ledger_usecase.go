package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/domain/repositories"
	"venture-ledger.backend/pkg/logger"
	"venture-ledger.backend/pkg/metrics"
)

// CreateTransactionInput is a ledger insert from either rail
type CreateTransactionInput struct {
	StartupRef    entities.Identity
	InvestorRef   entities.Identity
	Amount        string
	Rail          entities.PaymentRail
	ExternalRef   string
	BlockNumber   *uint64
	Status        entities.TransactionStatus // defaults to pending
	FailureReason string
}

// TransactionLedgerUsecase is the single reader and writer of investment status
type TransactionLedgerUsecase struct {
	txRepo      repositories.TransactionRepository
	accountRepo repositories.AccountRepository
	metrics     *metrics.Recorder
}

// NewTransactionLedgerUsecase creates a new ledger usecase
func NewTransactionLedgerUsecase(txRepo repositories.TransactionRepository, accountRepo repositories.AccountRepository, recorder *metrics.Recorder) *TransactionLedgerUsecase {
	return &TransactionLedgerUsecase{txRepo: txRepo, accountRepo: accountRepo, metrics: recorder}
}

// Create validates and inserts a record
func (u *TransactionLedgerUsecase) Create(ctx context.Context, input CreateTransactionInput) (*entities.Transaction, error) {
	if input.StartupRef.IsZero() || input.StartupRef.Account != entities.AccountKindStartup {
		return nil, domainerrors.Validation("startup reference is required")
	}
	if input.InvestorRef.IsZero() || input.InvestorRef.Account != entities.AccountKindUser {
		return nil, domainerrors.Validation("investor reference is required")
	}
	amount, err := CanonicalAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if input.Rail != entities.PaymentRailOnchain && input.Rail != entities.PaymentRailManual {
		return nil, domainerrors.Validation(fmt.Sprintf("unknown payment rail %q", input.Rail))
	}
	status := input.Status
	if status == "" {
		status = entities.TransactionStatusPending
	}
	if !status.Valid() {
		return nil, domainerrors.Validation(fmt.Sprintf("unknown status %q", status))
	}

	tx := &entities.Transaction{
		StartupRef:  input.StartupRef,
		InvestorRef: input.InvestorRef,
		Amount:      amount,
		Rail:        input.Rail,
		Status:      status,
	}
	if input.ExternalRef != "" {
		tx.ExternalRef = null.StringFrom(input.ExternalRef)
	}
	if input.BlockNumber != nil {
		tx.BlockNumber = null.Uint64From(*input.BlockNumber)
	}
	if input.FailureReason != "" {
		tx.FailureReason = null.StringFrom(input.FailureReason)
	}

	if err := u.txRepo.Create(ctx, tx); err != nil {
		return nil, domainerrors.StoreUnavailable("create transaction", err)
	}
	u.metrics.InvestmentRecorded(string(tx.Rail), string(tx.Status))
	logger.Info(ctx, "Transaction recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("rail", string(tx.Rail)),
		zap.String("status", string(tx.Status)),
	)
	return tx, nil
}

// Transition moves a pending record to completed or failed. Terminal records
// are never modified.
func (u *TransactionLedgerUsecase) Transition(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, reason string) (*entities.Transaction, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot move to %q", domainerrors.ErrIllegalTransition, status)
	}

	err := u.txRepo.TransitionFromPending(ctx, id, status, reason)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		return nil, domainerrors.NotFound("transaction not found")
	case errors.Is(err, domainerrors.ErrIllegalTransition):
		return nil, fmt.Errorf("transaction %s: %w", id, domainerrors.ErrIllegalTransition)
	case err != nil:
		return nil, domainerrors.StoreUnavailable("transition transaction", err)
	}

	tx, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.metrics.InvestmentRecorded(string(tx.Rail), string(tx.Status))
	logger.Info(ctx, "Transaction transitioned", zap.String("transaction_id", id.String()), zap.String("status", string(status)))
	return tx, nil
}

// Get returns one record
func (u *TransactionLedgerUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	tx, err := u.txRepo.GetByID(ctx, id)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFound("transaction not found")
	}
	if err != nil {
		return nil, domainerrors.StoreUnavailable("get transaction", err)
	}
	return tx, nil
}

// ListFor returns the records identity participates in, newest first.
// Investors see their own investments, founders see investments into the
// startups they own, and a startup sees investments into itself.
func (u *TransactionLedgerUsecase) ListFor(ctx context.Context, identity entities.Identity, role entities.UserRole) ([]*entities.Transaction, error) {
	if identity.IsZero() {
		return nil, domainerrors.Validation("identity is required")
	}

	var (
		txs []*entities.Transaction
		err error
	)
	switch {
	case identity.Account == entities.AccountKindStartup:
		txs, err = u.txRepo.ListByStartups(ctx, []entities.Identity{identity})
	case role == entities.UserRoleInvestor:
		txs, err = u.txRepo.ListByInvestor(ctx, identity)
	case role == entities.UserRoleFounder:
		owned, ownErr := u.accountRepo.ListStartupsOwnedBy(ctx, identity)
		if ownErr != nil {
			return nil, domainerrors.StoreUnavailable("list owned startups", ownErr)
		}
		txs, err = u.txRepo.ListByStartups(ctx, owned)
	default:
		return nil, domainerrors.Validation(fmt.Sprintf("role %q has no ledger view", role))
	}
	if err != nil {
		return nil, domainerrors.StoreUnavailable("list transactions", err)
	}
	return txs, nil
}
