package scheduler

import (
	"VLINKS-Backend/internal/metrics"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// WebhookLogPurger удаляет записи аудита старше заданного момента
type WebhookLogPurger interface {
	DeleteWebhookLogsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Retention периодически чистит журнал webhook
type Retention struct {
	cron    *cron.Cron
	store   WebhookLogPurger
	keep    time.Duration
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewRetention создает задачу. retentionDays <= 0 отключает очистку,
// тогда Start ничего не планирует.
func NewRetention(store WebhookLogPurger, retentionDays int, log *zap.Logger) *Retention {
	return &Retention{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		store:   store,
		keep:    time.Duration(retentionDays) * 24 * time.Hour,
		timeout: time.Minute,
		log:     log,
		now:     time.Now,
	}
}

// Start планирует очистку по cron-выражению
func (r *Retention) Start(schedule string) error {
	if r.keep <= 0 {
		r.log.Info("webhook log retention disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(schedule, func() {
		if _, err := r.RunOnce(context.Background()); err != nil {
			r.log.Error("webhook log cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}

	r.cron.Start()
	r.log.Info("webhook log retention scheduled",
		zap.String("schedule", schedule),
		zap.Duration("keep", r.keep),
	)
	return nil
}

// RunOnce удаляет записи старше срока хранения
func (r *Retention) RunOnce(ctx context.Context) (int64, error) {
	if r.keep <= 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cutoff := r.now().UTC().Add(-r.keep)
	deleted, err := r.store.DeleteWebhookLogsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	metrics.WebhookLogsPurged.Add(float64(deleted))
	r.log.Info("webhook log cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
	)
	return deleted, nil
}

// Stop останавливает планировщик и ждет текущую задачу
func (r *Retention) Stop() {
	<-r.cron.Stop().Done()
}
