package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"venture-ledger.backend/internal/domain/entities"
	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/pkg/logger"
	"venture-ledger.backend/pkg/metrics"
)

const (
	DefaultWalletSyncInterval    = 5 * time.Second
	DefaultWalletSyncBatchSize   = 100
	DefaultWalletSyncMaxAttempts = 8

	walletSyncBackoffBase = 5 * time.Second
	walletSyncBackoffCap  = 10 * time.Minute
)

var now = time.Now

type walletSyncTaskStore interface {
	GetDue(ctx context.Context, limit int) ([]*entities.WalletSyncTask, error)
	MarkDone(ctx context.Context, task *entities.WalletSyncTask) error
	MarkRetry(ctx context.Context, task *entities.WalletSyncTask) error
}

type walletProfileWriter interface {
	SetWalletAddress(ctx context.Context, identity entities.Identity, address string) error
}

// WalletProfileSyncJob mirrors wallet associations onto account profiles
type WalletProfileSyncJob struct {
	tasks       walletSyncTaskStore
	accounts    walletProfileWriter
	metrics     *metrics.Recorder
	interval    time.Duration
	batchSize   int
	maxAttempts int
	stop        chan struct{}
}

func NewWalletProfileSyncJob(tasks walletSyncTaskStore, accounts walletProfileWriter, recorder *metrics.Recorder, interval time.Duration, maxAttempts int) *WalletProfileSyncJob {
	if interval <= 0 {
		interval = DefaultWalletSyncInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultWalletSyncMaxAttempts
	}
	return &WalletProfileSyncJob{
		tasks:       tasks,
		accounts:    accounts,
		metrics:     recorder,
		interval:    interval,
		batchSize:   DefaultWalletSyncBatchSize,
		maxAttempts: maxAttempts,
		stop:        make(chan struct{}),
	}
}

func (j *WalletProfileSyncJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting wallet profile sync job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Wallet profile sync job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Wallet profile sync job stopped")
			return
		case <-ticker.C:
			j.processDueTasks(ctx)
		}
	}
}

func (j *WalletProfileSyncJob) Stop() {
	close(j.stop)
}

func (j *WalletProfileSyncJob) processDueTasks(ctx context.Context) {
	due, err := j.tasks.GetDue(ctx, j.batchSize)
	if err != nil {
		logger.Error(ctx, "Error fetching due wallet sync tasks", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	for _, task := range due {
		j.process(ctx, task)
	}
}

func (j *WalletProfileSyncJob) process(ctx context.Context, task *entities.WalletSyncTask) {
	err := j.accounts.SetWalletAddress(ctx, task.Identity, task.Address)
	if err == nil || errors.Is(err, domainerrors.ErrNotFound) {
		if err != nil {
			logger.Warn(ctx, "No profile to mirror wallet onto", zap.String("identity", task.Identity.Key()))
		}
		if markErr := j.tasks.MarkDone(ctx, task); markErr != nil {
			logger.Error(ctx, "Error closing wallet sync task", zap.String("task_id", task.ID.String()), zap.Error(markErr))
			return
		}
		j.metrics.WalletSyncOutcome("done")
		return
	}

	task.Attempts++
	task.LastError = err.Error()
	outcome := "retry"
	if task.Attempts >= j.maxAttempts {
		task.Status = entities.WalletSyncDead
		outcome = "dead"
		logger.Error(ctx, "Wallet sync task abandoned",
			zap.String("task_id", task.ID.String()),
			zap.String("identity", task.Identity.Key()),
			zap.Int("attempts", task.Attempts),
			zap.Error(err),
		)
	} else {
		task.NextAttemptAt = now().Add(backoff(task.Attempts))
		logger.Warn(ctx, "Wallet sync task failed, retrying",
			zap.String("task_id", task.ID.String()),
			zap.Int("attempts", task.Attempts),
			zap.Time("next_attempt_at", task.NextAttemptAt),
			zap.Error(err),
		)
	}

	if markErr := j.tasks.MarkRetry(ctx, task); markErr != nil {
		logger.Error(ctx, "Error rescheduling wallet sync task", zap.String("task_id", task.ID.String()), zap.Error(markErr))
		return
	}
	j.metrics.WalletSyncOutcome(outcome)
}

// backoff doubles from walletSyncBackoffBase per attempt, capped at walletSyncBackoffCap
func backoff(attempts int) time.Duration {
	d := walletSyncBackoffBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= walletSyncBackoffCap {
			return walletSyncBackoffCap
		}
	}
	return d
}
