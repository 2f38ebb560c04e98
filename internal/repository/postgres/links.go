package postgres

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CreateLink сохраняет новую ссылку; метка уникальна среди активных ссылок видео
func (s *PostgresStorage) CreateLink(ctx context.Context, link *domain.Link) error {
	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var count int64
	err := tx.Model(&domain.Link{}).
		Where("video_id = ? AND label = ? AND active = ?", link.VideoID, link.Label, true).
		Count(&count).Error
	if err != nil {
		tx.Rollback()
		s.log.Error("failed to check link label", zap.Int64("video_id", link.VideoID), zap.Error(err))
		return fmt.Errorf("failed to check link label: %w", err)
	}
	if count > 0 {
		tx.Rollback()
		return repository.ErrLinkLabelExists
	}

	if err := tx.Create(link).Error; err != nil {
		tx.Rollback()
		if isDuplicate(err) {
			return repository.ErrLinkLabelExists
		}
		s.log.Error("failed to create link", zap.Int64("video_id", link.VideoID), zap.String("label", link.Label), zap.Error(err))
		return fmt.Errorf("failed to create link: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		if isDuplicate(err) {
			return repository.ErrLinkLabelExists
		}
		s.log.Error("failed to commit link creation", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("created link", zap.Int64("link_id", link.ID), zap.Int64("video_id", link.VideoID), zap.String("label", link.Label))
	return nil
}

// GetLink получает ссылку по ID
func (s *PostgresStorage) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&link).Error
	if isNotFound(err) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return &link, nil
}

// ListVideoLinks возвращает активные ссылки видео с количеством кликов
func (s *PostgresStorage) ListVideoLinks(ctx context.Context, videoID int64) ([]*domain.LinkSummary, error) {
	var links []*domain.LinkSummary

	err := s.db.WithContext(ctx).Raw(`
		SELECT l.*, COUNT(c.id) AS total_clicks
		FROM links l
		LEFT JOIN clicks c ON c.link_id = l.id
		WHERE l.video_id = ? AND l.active = ?
		GROUP BY l.id
		ORDER BY l.created_at ASC, l.id ASC`, videoID, true).Scan(&links).Error
	if err != nil {
		s.log.Error("failed to list video links", zap.Int64("video_id", videoID), zap.Error(err))
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return links, nil
}

// UpdateLink обновляет изменяемые поля ссылки
func (s *PostgresStorage) UpdateLink(ctx context.Context, link *domain.Link) error {
	result := s.db.WithContext(ctx).Model(link).
		Select("label", "destination_url", "is_booking_link", "expires_at").
		Updates(link)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return repository.ErrLinkLabelExists
		}
		s.log.Error("failed to update link", zap.Int64("link_id", link.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update link: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	return nil
}

// DeactivateLink деактивирует ссылку; клики сохраняются
func (s *PostgresStorage) DeactivateLink(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		s.log.Error("failed to deactivate link", zap.Int64("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to deactivate link: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("deactivated link", zap.Int64("link_id", id))
	return nil
}

// ResolveLink находит активную ссылку по slug видео и метке
func (s *PostgresStorage) ResolveLink(ctx context.Context, videoSlug, label string) (*domain.Link, error) {
	var link domain.Link

	err := s.db.WithContext(ctx).
		Joins("JOIN videos ON videos.id = links.video_id").
		Where("videos.slug = ? AND links.label = ? AND links.active = ? AND videos.archived = ?", videoSlug, label, true, false).
		Preload("Video").
		First(&link).Error
	if isNotFound(err) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to resolve link", zap.String("slug", videoSlug), zap.String("label", label), zap.Error(err))
		return nil, fmt.Errorf("failed to resolve link: %w", err)
	}

	return &link, nil
}
