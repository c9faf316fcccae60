package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/models"
	"venture-ledger.backend/pkg/utils"
)

// TransactionRepository implements investment ledger data operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a ledger record
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = tx.CreatedAt

	m := &models.InvestmentTransaction{
		ID:            tx.ID,
		StartupKey:    tx.StartupRef.Key(),
		InvestorKey:   tx.InvestorRef.Key(),
		Amount:        tx.Amount,
		Rail:          string(tx.Rail),
		ExternalRef:   tx.ExternalRef.Ptr(),
		Status:        string(tx.Status),
		FailureReason: tx.FailureReason.Ptr(),
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
	if tx.BlockNumber.Valid {
		bn := int64(tx.BlockNumber.Uint64)
		m.BlockNumber = &bn
	}

	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByID gets a ledger record by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var m models.InvestmentTransaction
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// TransitionFromPending moves a pending record to a terminal status.
// The status guard lives in the WHERE clause so concurrent approvers cannot both win.
func (r *TransactionRepository) TransitionFromPending(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, reason string) error {
	db := GetDB(ctx, r.db).WithContext(ctx)
	result := db.Model(&models.InvestmentTransaction{}).
		Where("id = ? AND status = ?", id, string(entities.TransactionStatusPending)).
		Updates(map[string]interface{}{
			"status":         string(status),
			"failure_reason": stringPtr(reason),
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.InvestmentTransaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrNotFound
	}
	return domainerrors.ErrIllegalTransition
}

// ListByInvestor returns the investor's records, newest first
func (r *TransactionRepository) ListByInvestor(ctx context.Context, investor entities.Identity) ([]*entities.Transaction, error) {
	return r.list(ctx, GetDB(ctx, r.db).WithContext(ctx).Where("investor_key = ?", investor.Key()))
}

// ListByStartups returns records for any of the startups, newest first
func (r *TransactionRepository) ListByStartups(ctx context.Context, startups []entities.Identity) ([]*entities.Transaction, error) {
	if len(startups) == 0 {
		return []*entities.Transaction{}, nil
	}
	keys := make([]string, 0, len(startups))
	for _, s := range startups {
		keys = append(keys, s.Key())
	}
	return r.list(ctx, GetDB(ctx, r.db).WithContext(ctx).Where("startup_key IN ?", keys))
}

func (r *TransactionRepository) list(_ context.Context, q *gorm.DB) ([]*entities.Transaction, error) {
	var ms []models.InvestmentTransaction
	if err := q.Order("created_at DESC").Order("id DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	out := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, nil
}

func (r *TransactionRepository) toEntity(m *models.InvestmentTransaction) *entities.Transaction {
	tx := &entities.Transaction{
		ID:            m.ID,
		StartupRef:    identityFromKey(m.StartupKey),
		InvestorRef:   identityFromKey(m.InvestorKey),
		Amount:        m.Amount,
		Rail:          entities.PaymentRail(m.Rail),
		ExternalRef:   null.StringFromPtr(m.ExternalRef),
		Status:        entities.TransactionStatus(m.Status),
		FailureReason: null.StringFromPtr(m.FailureReason),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.BlockNumber != nil {
		tx.BlockNumber = null.Uint64From(uint64(*m.BlockNumber))
	}
	return tx
}
