package usecases

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/domain/repositories"
	"venture-ledger.backend/pkg/logger"
)

// DefaultManualReferenceMinLength is the shortest payer reference accepted on submit
const DefaultManualReferenceMinLength = 6

const qrCodeSize = 256

var encodeQRCode = func(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, qrCodeSize)
}

// ManualPaymentWorkflow starts manual-rail sessions against a recipient's
// configured payment target.
type ManualPaymentWorkflow struct {
	ledger    *TransactionLedgerUsecase
	accounts  repositories.AccountRepository
	minRefLen int
}

// NewManualPaymentWorkflow creates a new workflow
func NewManualPaymentWorkflow(ledger *TransactionLedgerUsecase, accounts repositories.AccountRepository, minRefLen int) *ManualPaymentWorkflow {
	if minRefLen <= 0 {
		minRefLen = DefaultManualReferenceMinLength
	}
	return &ManualPaymentWorkflow{ledger: ledger, accounts: accounts, minRefLen: minRefLen}
}

// Start loads the recipient and opens a session in the details phase
func (w *ManualPaymentWorkflow) Start(ctx context.Context, investor, startup entities.Identity) (*ManualPaymentSession, error) {
	if investor.IsZero() {
		return nil, domainerrors.Validation("investor identity is required")
	}
	if startup.IsZero() {
		return nil, domainerrors.ErrInvalidReference
	}

	recipient, err := w.accounts.GetByIdentity(ctx, startup)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFound("startup not found")
	}
	if err != nil {
		return nil, domainerrors.StoreUnavailable("load recipient", err)
	}
	if !recipient.HasPaymentTarget() {
		return nil, domainerrors.ErrRecipientNotConfigured
	}

	details := entities.ManualPaymentDetails{
		Recipient:    startup,
		PaymentID:    strings.TrimSpace(recipient.PaymentID.String),
		PaymentQRURL: strings.TrimSpace(recipient.PaymentQRURL.String),
	}
	if details.PaymentID != "" {
		png, err := encodeQRCode(details.PaymentID)
		if err != nil {
			// The payment id is still shown as text.
			logger.Warn(ctx, "Failed to render payment QR code", zap.String("startup", startup.Key()), zap.Error(err))
		} else {
			details.QRCodePNG = base64.StdEncoding.EncodeToString(png)
		}
	}

	return &ManualPaymentSession{
		workflow: w,
		investor: investor,
		details:  details,
		phase:    entities.ManualPhaseDetails,
	}, nil
}

// ManualPaymentSession is one payer's walk through the manual workflow.
// Only Submit has side effects.
type ManualPaymentSession struct {
	workflow *ManualPaymentWorkflow
	investor entities.Identity

	mu          sync.Mutex
	details     entities.ManualPaymentDetails
	phase       entities.ManualPaymentPhase
	amount      string
	transaction *entities.Transaction
}

// Details returns what the payer needs to pay the recipient
func (s *ManualPaymentSession) Details() entities.ManualPaymentDetails {
	return s.details
}

// Phase returns the current phase
func (s *ManualPaymentSession) Phase() entities.ManualPaymentPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Amount returns the canonical amount entered so far
func (s *ManualPaymentSession) Amount() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount
}

// Transaction returns the record created by Submit, or nil before it
func (s *ManualPaymentSession) Transaction() *entities.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transaction
}

// SetAmount records the amount while in the details phase
func (s *ManualPaymentSession) SetAmount(amount string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != entities.ManualPhaseDetails {
		return s.illegal("set amount")
	}
	canonical, err := CanonicalAmount(amount)
	if err != nil {
		return err
	}
	s.amount = canonical
	return nil
}

// Proceed moves details -> verification
func (s *ManualPaymentSession) Proceed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != entities.ManualPhaseDetails {
		return s.illegal("proceed")
	}
	if s.amount == "" {
		return domainerrors.ErrInvalidAmount
	}
	s.phase = entities.ManualPhaseVerification
	return nil
}

// Back moves verification -> details
func (s *ManualPaymentSession) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != entities.ManualPhaseVerification {
		return s.illegal("go back")
	}
	s.phase = entities.ManualPhaseDetails
	return nil
}

// Submit records exactly one pending manual transaction carrying reference
func (s *ManualPaymentSession) Submit(ctx context.Context, reference string) (*entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != entities.ManualPhaseVerification {
		return nil, s.illegal("submit")
	}
	reference = strings.TrimSpace(reference)
	if len(reference) < s.workflow.minRefLen {
		return nil, domainerrors.Validation(fmt.Sprintf("payment reference must be at least %d characters", s.workflow.minRefLen))
	}

	tx, err := s.workflow.ledger.Create(ctx, CreateTransactionInput{
		StartupRef:  s.details.Recipient,
		InvestorRef: s.investor,
		Amount:      s.amount,
		Rail:        entities.PaymentRailManual,
		ExternalRef: reference,
	})
	if err != nil {
		return nil, err
	}
	s.phase = entities.ManualPhaseSubmitted
	s.transaction = tx
	return tx, nil
}

func (s *ManualPaymentSession) illegal(action string) error {
	return fmt.Errorf("%w: cannot %s in phase %s", domainerrors.ErrIllegalTransition, action, s.phase)
}
