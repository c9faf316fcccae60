package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"venture-ledger.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock WalletAssociationRepository
type MockWalletAssociationRepository struct {
	mock.Mock
}

func (m *MockWalletAssociationRepository) Upsert(ctx context.Context, assoc *entities.WalletAssociation) error {
	args := m.Called(ctx, assoc)
	return args.Error(0)
}

func (m *MockWalletAssociationRepository) GetByIdentity(ctx context.Context, identity entities.Identity) (*entities.WalletAssociation, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WalletAssociation), args.Error(1)
}

func (m *MockWalletAssociationRepository) GetByAddress(ctx context.Context, address string) (*entities.WalletAssociation, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WalletAssociation), args.Error(1)
}

func (m *MockWalletAssociationRepository) DeleteByIdentity(ctx context.Context, identity entities.Identity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockWalletAssociationRepository) Rekey(ctx context.Context, oldIdentity, newIdentity entities.Identity, address string) error {
	args := m.Called(ctx, oldIdentity, newIdentity, address)
	return args.Error(0)
}

// Mock WalletSyncTaskRepository
type MockWalletSyncTaskRepository struct {
	mock.Mock
}

func (m *MockWalletSyncTaskRepository) Enqueue(ctx context.Context, task *entities.WalletSyncTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockWalletSyncTaskRepository) GetDue(ctx context.Context, limit int) ([]*entities.WalletSyncTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WalletSyncTask), args.Error(1)
}

func (m *MockWalletSyncTaskRepository) MarkDone(ctx context.Context, task *entities.WalletSyncTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockWalletSyncTaskRepository) MarkRetry(ctx context.Context, task *entities.WalletSyncTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// Mock WalletCache
type MockWalletCache struct {
	mock.Mock
}

func (m *MockWalletCache) Put(ctx context.Context, identityKey, address string) error {
	args := m.Called(ctx, identityKey, address)
	return args.Error(0)
}

func (m *MockWalletCache) AddressFor(ctx context.Context, identityKey string) (string, bool, error) {
	args := m.Called(ctx, identityKey)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockWalletCache) IdentityFor(ctx context.Context, address string) (string, bool, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockWalletCache) Forget(ctx context.Context, identityKey string) error {
	args := m.Called(ctx, identityKey)
	return args.Error(0)
}

// Mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) TransitionFromPending(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, reason string) error {
	args := m.Called(ctx, id, status, reason)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByInvestor(ctx context.Context, investor entities.Identity) ([]*entities.Transaction, error) {
	args := m.Called(ctx, investor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByStartups(ctx context.Context, startups []entities.Identity) ([]*entities.Transaction, error) {
	args := m.Called(ctx, startups)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByIdentity(ctx context.Context, identity entities.Identity) (*entities.Account, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) ListStartupsOwnedBy(ctx context.Context, owner entities.Identity) ([]entities.Identity, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Identity), args.Error(1)
}

func (m *MockAccountRepository) SetWalletAddress(ctx context.Context, identity entities.Identity, address string) error {
	args := m.Called(ctx, identity, address)
	return args.Error(0)
}

// Mock OnchainIDRepository
type MockOnchainIDRepository struct {
	mock.Mock
}

func (m *MockOnchainIDRepository) Get(ctx context.Context, identityKey string) (*entities.OnchainIDMapping, error) {
	args := m.Called(ctx, identityKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OnchainIDMapping), args.Error(1)
}

func (m *MockOnchainIDRepository) Allocate(ctx context.Context, identityKey string, floor int64) (*entities.OnchainIDMapping, error) {
	args := m.Called(ctx, identityKey, floor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OnchainIDMapping), args.Error(1)
}
