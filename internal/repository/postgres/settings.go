package postgres

import (
	"VLINKS-Backend/internal/domain"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting возвращает значение настройки или пустую строку
func (s *PostgresStorage) GetSetting(ctx context.Context, key string) (string, error) {
	var setting domain.Setting

	err := s.db.WithContext(ctx).Where(&domain.Setting{Key: key}).First(&setting).Error
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		s.log.Error("failed to get setting", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to get setting: %w", err)
	}

	return setting.Value, nil
}

// ListSettings возвращает все настройки
func (s *PostgresStorage) ListSettings(ctx context.Context) (map[string]string, error) {
	var settings []domain.Setting

	if err := s.db.WithContext(ctx).Find(&settings).Error; err != nil {
		s.log.Error("failed to list settings", zap.Error(err))
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	result := make(map[string]string, len(settings))
	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}
	return result, nil
}

// SetSettings сохраняет набор настроек (upsert) в одной транзакции
func (s *PostgresStorage) SetSettings(ctx context.Context, values map[string]string) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			setting := domain.Setting{Key: key, Value: value, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&setting).Error
			if err != nil {
				return fmt.Errorf("failed to upsert setting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to save settings", zap.Error(err))
		return err
	}

	return nil
}
