package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/usecases"
)

type investmentServiceStub struct {
	investOnchainFn func(ctx context.Context, sc entities.SessionContext, startupRef, amount string) (*entities.Transaction, error)
	startManualFn   func(ctx context.Context, sc entities.SessionContext, startupRef string) (*usecases.ManualPaymentSession, error)
	investManualFn  func(ctx context.Context, sc entities.SessionContext, startupRef, amount, reference string) (*entities.Transaction, error)
	approveFn       func(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	rejectFn        func(ctx context.Context, id uuid.UUID, reason string) (*entities.Transaction, error)
}

func (s *investmentServiceStub) InvestOnchain(ctx context.Context, sc entities.SessionContext, startupRef, amount string) (*entities.Transaction, error) {
	return s.investOnchainFn(ctx, sc, startupRef, amount)
}

func (s *investmentServiceStub) StartManual(ctx context.Context, sc entities.SessionContext, startupRef string) (*usecases.ManualPaymentSession, error) {
	return s.startManualFn(ctx, sc, startupRef)
}

func (s *investmentServiceStub) InvestManual(ctx context.Context, sc entities.SessionContext, startupRef, amount, reference string) (*entities.Transaction, error) {
	return s.investManualFn(ctx, sc, startupRef, amount, reference)
}

func (s *investmentServiceStub) Approve(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	return s.approveFn(ctx, id)
}

func (s *investmentServiceStub) Reject(ctx context.Context, id uuid.UUID, reason string) (*entities.Transaction, error) {
	return s.rejectFn(ctx, id, reason)
}

// accountLookupStub serves a single recipient account for the manual workflow.
type accountLookupStub struct {
	account *entities.Account
}

func (s *accountLookupStub) Create(context.Context, *entities.Account) error { return nil }

func (s *accountLookupStub) GetByIdentity(_ context.Context, identity entities.Identity) (*entities.Account, error) {
	if s.account == nil || s.account.Identity != identity {
		return nil, domainerrors.ErrNotFound
	}
	return s.account, nil
}

func (s *accountLookupStub) ListStartupsOwnedBy(context.Context, entities.Identity) ([]entities.Identity, error) {
	return nil, nil
}

func (s *accountLookupStub) SetWalletAddress(context.Context, entities.Identity, string) error {
	return nil
}

func newInvestmentRouter(svc investmentService, sc entities.SessionContext) *gin.Engine {
	h := &InvestmentHandler{investmentUsecase: svc}
	r := gin.New()
	r.Use(withSession(sc))
	r.POST("/investments/onchain", h.InvestOnchain)
	r.GET("/investments/manual/:startupRef", h.ManualDetails)
	r.POST("/investments/manual", h.InvestManual)
	r.POST("/admin/transactions/:id/approve", h.Approve)
	r.POST("/admin/transactions/:id/reject", h.Reject)
	return r
}

func TestInvestmentHandler_InvestOnchain(t *testing.T) {
	svc := &investmentServiceStub{
		investOnchainFn: func(_ context.Context, sc entities.SessionContext, startupRef, amount string) (*entities.Transaction, error) {
			require.Equal(t, investorID, sc.Identity)
			require.Equal(t, "doc_s1", startupRef)
			require.Equal(t, "0.5", amount)
			return &entities.Transaction{
				ID:          uuid.New(),
				StartupRef:  startupID,
				InvestorRef: investorID,
				Amount:      amount,
				Rail:        entities.PaymentRailOnchain,
				Status:      entities.TransactionStatusCompleted,
				ExternalRef: null.StringFrom("0xabc"),
			}, nil
		},
	}
	r := newInvestmentRouter(svc, investorSession())

	w := doRequest(r, http.MethodPost, "/investments/onchain", map[string]string{"startupRef": "doc_s1", "amount": "0.5"})
	require.Equal(t, http.StatusCreated, w.Code)
	tx := decodeBody(t, w)["transaction"].(map[string]interface{})
	require.Equal(t, "completed", tx["status"])
	require.Equal(t, "0xabc", tx["externalRef"])
}

func TestInvestmentHandler_InvestOnchainRevertedIsRecorded(t *testing.T) {
	svc := &investmentServiceStub{
		investOnchainFn: func(context.Context, entities.SessionContext, string, string) (*entities.Transaction, error) {
			return &entities.Transaction{Status: entities.TransactionStatusFailed, FailureReason: null.StringFrom("transaction reverted")}, nil
		},
	}
	w := doRequest(newInvestmentRouter(svc, investorSession()), http.MethodPost, "/investments/onchain",
		map[string]string{"startupRef": "doc_s1", "amount": "0.5"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestInvestmentHandler_InvestOnchainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid amount", domainerrors.ErrInvalidAmount, http.StatusBadRequest},
		{"rejected", domainerrors.ErrConnectionRejected, http.StatusConflict},
		{"insufficient funds", domainerrors.ErrInsufficientFunds, http.StatusPaymentRequired},
		{"wrong network", domainerrors.ErrNetworkMismatch, http.StatusConflict},
		{"reverted", &domainerrors.ContractRevertedError{Reason: "Startup is not active"}, http.StatusUnprocessableEntity},
		{"provider", &domainerrors.UnknownProviderError{Raw: "boom"}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.err
			svc := &investmentServiceStub{
				investOnchainFn: func(context.Context, entities.SessionContext, string, string) (*entities.Transaction, error) {
					return nil, err
				},
			}
			w := doRequest(newInvestmentRouter(svc, investorSession()), http.MethodPost, "/investments/onchain",
				map[string]string{"startupRef": "doc_s1", "amount": "0.5"})
			require.Equal(t, tc.status, w.Code)
		})
	}
}

func TestInvestmentHandler_InvestOnchainMissingFields(t *testing.T) {
	w := doRequest(newInvestmentRouter(&investmentServiceStub{}, investorSession()), http.MethodPost, "/investments/onchain",
		map[string]string{"startupRef": "doc_s1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvestmentHandler_ManualDetails(t *testing.T) {
	accounts := &accountLookupStub{account: &entities.Account{
		Identity:  startupID,
		Name:      "Acme",
		PaymentID: null.StringFrom("acme@bank"),
	}}
	workflow := usecases.NewManualPaymentWorkflow(nil, accounts, usecases.DefaultManualReferenceMinLength)
	svc := &investmentServiceStub{
		startManualFn: func(ctx context.Context, sc entities.SessionContext, startupRef string) (*usecases.ManualPaymentSession, error) {
			ref, err := usecases.ParseStartupRef(startupRef)
			if err != nil {
				return nil, err
			}
			return workflow.Start(ctx, sc.Identity, ref)
		},
	}
	r := newInvestmentRouter(svc, investorSession())

	w := doRequest(r, http.MethodGet, "/investments/manual/doc_s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "details", body["phase"])
	details := body["details"].(map[string]interface{})
	require.Equal(t, "acme@bank", details["paymentId"])
	require.NotEmpty(t, details["qrCodePng"])

	accounts.account.PaymentID = null.String{}
	w = doRequest(r, http.MethodGet, "/investments/manual/doc_s1", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doRequest(r, http.MethodGet, "/investments/manual/other", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvestmentHandler_InvestManual(t *testing.T) {
	svc := &investmentServiceStub{
		investManualFn: func(_ context.Context, _ entities.SessionContext, _, amount, reference string) (*entities.Transaction, error) {
			if len(reference) < usecases.DefaultManualReferenceMinLength {
				return nil, domainerrors.Validation("reference too short")
			}
			return &entities.Transaction{
				Amount:      amount,
				Rail:        entities.PaymentRailManual,
				Status:      entities.TransactionStatusPending,
				ExternalRef: null.StringFrom(reference),
			}, nil
		},
	}
	r := newInvestmentRouter(svc, investorSession())

	w := doRequest(r, http.MethodPost, "/investments/manual", map[string]string{
		"startupRef": "doc_s1", "amount": "100", "reference": "UTR123456",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tx := decodeBody(t, w)["transaction"].(map[string]interface{})
	require.Equal(t, "pending", tx["status"])

	w = doRequest(r, http.MethodPost, "/investments/manual", map[string]string{
		"startupRef": "doc_s1", "amount": "100", "reference": "abc",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvestmentHandler_ApproveAndReject(t *testing.T) {
	id := uuid.New()
	var gotReason string
	svc := &investmentServiceStub{
		approveFn: func(_ context.Context, got uuid.UUID) (*entities.Transaction, error) {
			require.Equal(t, id, got)
			return &entities.Transaction{ID: got, Status: entities.TransactionStatusCompleted}, nil
		},
		rejectFn: func(_ context.Context, got uuid.UUID, reason string) (*entities.Transaction, error) {
			gotReason = reason
			return nil, domainerrors.ErrIllegalTransition
		},
	}
	r := newInvestmentRouter(svc, entities.SessionContext{Identity: adminID, Role: entities.UserRoleAdmin})

	w := doRequest(r, http.MethodPost, "/admin/transactions/"+id.String()+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPost, "/admin/transactions/"+id.String()+"/reject", map[string]string{"reason": "no funds received"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "no funds received", gotReason)

	w = doRequest(r, http.MethodPost, "/admin/transactions/not-a-uuid/approve", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
