package postgres

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateClick сохраняет клик
func (s *PostgresStorage) CreateClick(ctx context.Context, click *domain.Click) error {
	if err := s.db.WithContext(ctx).Create(click).Error; err != nil {
		if isDuplicate(err) {
			return repository.ErrClickExists
		}
		s.log.Error("failed to create click",
			zap.Int64("link_id", click.LinkID),
			zap.String("session_id", click.SessionID),
			zap.Error(err))
		return fmt.Errorf("failed to create click: %w", err)
	}

	return nil
}

// GetClickBySessionID получает клик по идентификатору сессии
func (s *PostgresStorage) GetClickBySessionID(ctx context.Context, sessionID string) (*domain.Click, error) {
	var click domain.Click

	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&click).Error
	if isNotFound(err) {
		return nil, repository.ErrClickNotFound
	}
	if err != nil {
		s.log.Error("failed to get click", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get click: %w", err)
	}

	return &click, nil
}

// DeleteLinkClicks удаляет все клики ссылки; бронирования теряют ссылку на клик
func (s *PostgresStorage) DeleteLinkClicks(ctx context.Context, linkID int64) (int64, error) {
	var deleted int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Link{}).Where("id = ?", linkID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrLinkNotFound
		}

		if err := tx.Model(&domain.Booking{}).
			Where("click_id IN (?)", tx.Model(&domain.Click{}).Select("id").Where("link_id = ?", linkID)).
			Update("click_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("link_id = ?", linkID).Delete(&domain.Click{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return 0, err
		}
		s.log.Error("failed to delete link clicks", zap.Int64("link_id", linkID), zap.Error(err))
		return 0, fmt.Errorf("failed to delete link clicks: %w", err)
	}

	s.log.Info("deleted link clicks", zap.Int64("link_id", linkID), zap.Int64("count", deleted))
	return deleted, nil
}
