package postgres

import (
	"VLINKS-Backend/internal/domain"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CreateWebhookLog сохраняет запись аудита webhook
func (s *PostgresStorage) CreateWebhookLog(ctx context.Context, entry *domain.WebhookLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.log.Error("failed to create webhook log", zap.String("event_type", entry.EventType), zap.Error(err))
		return fmt.Errorf("failed to create webhook log: %w", err)
	}
	return nil
}

// DeleteWebhookLogsBefore удаляет записи аудита старше before
func (s *PostgresStorage) DeleteWebhookLogsBefore(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("received_at < ?", before).Delete(&domain.WebhookLog{})
	if result.Error != nil {
		s.log.Error("failed to delete webhook logs", zap.Time("before", before), zap.Error(result.Error))
		return 0, fmt.Errorf("failed to delete webhook logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
