package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
)

const walletAddr = "0x1111111111111111111111111111111111111111"

type walletServiceStub struct {
	associateFn       func(ctx context.Context, identity entities.Identity, address string, permanent bool) (*entities.WalletAssociation, error)
	resolveAddressFn  func(ctx context.Context, identity entities.Identity) (string, error)
	resolveIdentityFn func(ctx context.Context, address string) (*entities.Identity, error)
	disassociateFn    func(ctx context.Context, identity entities.Identity) error
	migrateFn         func(ctx context.Context, oldIdentity, newIdentity entities.Identity, address string) error
}

func (s *walletServiceStub) Associate(ctx context.Context, identity entities.Identity, address string, permanent bool) (*entities.WalletAssociation, error) {
	if s.associateFn != nil {
		return s.associateFn(ctx, identity, address, permanent)
	}
	return &entities.WalletAssociation{Identity: identity, Address: address, Permanent: permanent}, nil
}

func (s *walletServiceStub) ResolveAddress(ctx context.Context, identity entities.Identity) (string, error) {
	if s.resolveAddressFn != nil {
		return s.resolveAddressFn(ctx, identity)
	}
	return "", nil
}

func (s *walletServiceStub) ResolveIdentity(ctx context.Context, address string) (*entities.Identity, error) {
	if s.resolveIdentityFn != nil {
		return s.resolveIdentityFn(ctx, address)
	}
	return nil, nil
}

func (s *walletServiceStub) Disassociate(ctx context.Context, identity entities.Identity) error {
	if s.disassociateFn != nil {
		return s.disassociateFn(ctx, identity)
	}
	return nil
}

func (s *walletServiceStub) Migrate(ctx context.Context, oldIdentity, newIdentity entities.Identity, address string) error {
	if s.migrateFn != nil {
		return s.migrateFn(ctx, oldIdentity, newIdentity, address)
	}
	return nil
}

func newWalletRouter(svc walletService, sc *entities.SessionContext) *gin.Engine {
	h := &WalletHandler{walletUsecase: svc}
	r := gin.New()
	if sc != nil {
		r.Use(withSession(*sc))
	}
	r.PUT("/wallets/me", h.Associate)
	r.GET("/wallets/me", h.GetMine)
	r.DELETE("/wallets/me", h.Disassociate)
	r.GET("/wallets/:address/identity", h.LookupIdentity)
	r.POST("/admin/wallets/migrate", h.Migrate)
	return r
}

func TestWalletHandler_Associate(t *testing.T) {
	sc := investorSession()
	var gotIdentity entities.Identity
	var gotPermanent bool
	svc := &walletServiceStub{
		associateFn: func(_ context.Context, identity entities.Identity, address string, permanent bool) (*entities.WalletAssociation, error) {
			gotIdentity, gotPermanent = identity, permanent
			return &entities.WalletAssociation{Identity: identity, Address: address, Permanent: permanent}, nil
		},
	}
	r := newWalletRouter(svc, &sc)

	w := doRequest(r, http.MethodPut, "/wallets/me", map[string]interface{}{"address": walletAddr, "permanent": true})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, investorID, gotIdentity)
	require.True(t, gotPermanent)

	w = doRequest(r, http.MethodPut, "/wallets/me", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_AssociateRequiresSession(t *testing.T) {
	r := newWalletRouter(&walletServiceStub{}, nil)
	w := doRequest(r, http.MethodPut, "/wallets/me", map[string]interface{}{"address": walletAddr})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletHandler_AssociateMapsDomainErrors(t *testing.T) {
	sc := investorSession()
	cases := []struct {
		err    error
		status int
	}{
		{domainerrors.Validation("invalid wallet address"), http.StatusBadRequest},
		{domainerrors.StoreUnavailable("associate", errors.New("db down")), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		err := tc.err
		svc := &walletServiceStub{
			associateFn: func(context.Context, entities.Identity, string, bool) (*entities.WalletAssociation, error) {
				return nil, err
			},
		}
		w := doRequest(newWalletRouter(svc, &sc), http.MethodPut, "/wallets/me", map[string]interface{}{"address": "nope"})
		require.Equal(t, tc.status, w.Code)
	}
}

func TestWalletHandler_GetMine(t *testing.T) {
	sc := investorSession()
	svc := &walletServiceStub{}
	r := newWalletRouter(svc, &sc)

	w := doRequest(r, http.MethodGet, "/wallets/me", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	svc.resolveAddressFn = func(context.Context, entities.Identity) (string, error) { return walletAddr, nil }
	w = doRequest(r, http.MethodGet, "/wallets/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, walletAddr, decodeBody(t, w)["address"])
}

func TestWalletHandler_Disassociate(t *testing.T) {
	sc := investorSession()
	called := false
	svc := &walletServiceStub{
		disassociateFn: func(_ context.Context, identity entities.Identity) error {
			called = identity == investorID
			return nil
		},
	}
	w := doRequest(newWalletRouter(svc, &sc), http.MethodDelete, "/wallets/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, called)
}

func TestWalletHandler_LookupIdentity(t *testing.T) {
	svc := &walletServiceStub{}
	r := newWalletRouter(svc, nil)

	w := doRequest(r, http.MethodGet, "/wallets/"+walletAddr+"/identity", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	svc.resolveIdentityFn = func(_ context.Context, address string) (*entities.Identity, error) {
		require.Equal(t, walletAddr, address)
		id := investorID
		return &id, nil
	}
	w = doRequest(r, http.MethodGet, "/wallets/"+walletAddr+"/identity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user:7", decodeBody(t, w)["identity"])
}

func TestWalletHandler_Migrate(t *testing.T) {
	sc := entities.SessionContext{Identity: adminID, Role: entities.UserRoleAdmin}
	var gotOld, gotNew entities.Identity
	svc := &walletServiceStub{
		migrateFn: func(_ context.Context, oldIdentity, newIdentity entities.Identity, _ string) error {
			gotOld, gotNew = oldIdentity, newIdentity
			return nil
		},
	}
	r := newWalletRouter(svc, &sc)

	w := doRequest(r, http.MethodPost, "/admin/wallets/migrate", map[string]string{
		"oldIdentity": "user:7",
		"newIdentity": "user:doc_u7",
		"address":     walletAddr,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, investorID, gotOld)
	require.Equal(t, entities.OpaqueIdentity(entities.AccountKindUser, "doc_u7"), gotNew)

	w = doRequest(r, http.MethodPost, "/admin/wallets/migrate", map[string]string{
		"oldIdentity": "garbage",
		"newIdentity": "user:doc_u7",
		"address":     walletAddr,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
