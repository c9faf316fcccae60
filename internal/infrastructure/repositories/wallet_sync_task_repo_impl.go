package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/models"
	"venture-ledger.backend/pkg/utils"
)

// WalletSyncTaskRepository implements the wallet profile mirror outbox
type WalletSyncTaskRepository struct {
	db *gorm.DB
}

// NewWalletSyncTaskRepository creates a new outbox repository
func NewWalletSyncTaskRepository(db *gorm.DB) *WalletSyncTaskRepository {
	return &WalletSyncTaskRepository{db: db}
}

// Enqueue inserts a pending task due immediately
func (r *WalletSyncTaskRepository) Enqueue(ctx context.Context, task *entities.WalletSyncTask) error {
	if task.ID == uuid.Nil {
		task.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	task.Status = entities.WalletSyncPending
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.NextAttemptAt.IsZero() {
		task.NextAttemptAt = now
	}

	m := &models.WalletSyncTask{
		ID:            task.ID,
		IdentityKey:   task.Identity.Key(),
		Address:       task.Address,
		Status:        string(task.Status),
		Attempts:      task.Attempts,
		NextAttemptAt: task.NextAttemptAt,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetDue returns pending tasks whose next attempt time has passed, oldest first
func (r *WalletSyncTaskRepository) GetDue(ctx context.Context, limit int) ([]*entities.WalletSyncTask, error) {
	var ms []models.WalletSyncTask
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", string(entities.WalletSyncPending), time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	tasks := make([]*entities.WalletSyncTask, 0, len(ms))
	for i := range ms {
		tasks = append(tasks, r.toEntity(&ms[i]))
	}
	return tasks, nil
}

// MarkDone closes a task
func (r *WalletSyncTaskRepository) MarkDone(ctx context.Context, task *entities.WalletSyncTask) error {
	task.Status = entities.WalletSyncDone
	return r.save(ctx, task)
}

// MarkRetry persists attempts, next attempt time, status and last error
func (r *WalletSyncTaskRepository) MarkRetry(ctx context.Context, task *entities.WalletSyncTask) error {
	return r.save(ctx, task)
}

func (r *WalletSyncTaskRepository) save(ctx context.Context, task *entities.WalletSyncTask) error {
	task.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.WalletSyncTask{}).
		Where("id = ?", task.ID).
		Updates(map[string]interface{}{
			"status":          string(task.Status),
			"attempts":        task.Attempts,
			"next_attempt_at": task.NextAttemptAt,
			"last_error":      stringPtr(task.LastError),
			"updated_at":      task.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *WalletSyncTaskRepository) toEntity(m *models.WalletSyncTask) *entities.WalletSyncTask {
	task := &entities.WalletSyncTask{
		ID:            m.ID,
		Identity:      identityFromKey(m.IdentityKey),
		Address:       m.Address,
		Status:        entities.WalletSyncStatus(m.Status),
		Attempts:      m.Attempts,
		NextAttemptAt: m.NextAttemptAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.LastError != nil {
		task.LastError = *m.LastError
	}
	return task
}
