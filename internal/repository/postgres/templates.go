package postgres

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CreateTemplate сохраняет шаблон ссылки
func (s *PostgresStorage) CreateTemplate(ctx context.Context, tpl *domain.LinkTemplate) error {
	if err := s.db.WithContext(ctx).Create(tpl).Error; err != nil {
		if isDuplicate(err) {
			return repository.ErrTemplateLabelExists
		}
		s.log.Error("failed to create template", zap.String("label", tpl.Label), zap.Error(err))
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// GetTemplate получает шаблон по ID
func (s *PostgresStorage) GetTemplate(ctx context.Context, id int64) (*domain.LinkTemplate, error) {
	var tpl domain.LinkTemplate

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if isNotFound(err) {
		return nil, repository.ErrTemplateNotFound
	}
	if err != nil {
		s.log.Error("failed to get template", zap.Int64("template_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return &tpl, nil
}

// ListTemplates возвращает все шаблоны
func (s *PostgresStorage) ListTemplates(ctx context.Context) ([]*domain.LinkTemplate, error) {
	var templates []*domain.LinkTemplate

	if err := s.db.WithContext(ctx).Order("label ASC").Find(&templates).Error; err != nil {
		s.log.Error("failed to list templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}

// UpdateTemplate обновляет шаблон
func (s *PostgresStorage) UpdateTemplate(ctx context.Context, tpl *domain.LinkTemplate) error {
	result := s.db.WithContext(ctx).Model(tpl).
		Select("label", "destination_url", "is_booking_link").
		Updates(tpl)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return repository.ErrTemplateLabelExists
		}
		s.log.Error("failed to update template", zap.Int64("template_id", tpl.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update template: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrTemplateNotFound
	}

	return nil
}

// DeleteTemplate удаляет шаблон
func (s *PostgresStorage) DeleteTemplate(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.LinkTemplate{})
	if result.Error != nil {
		s.log.Error("failed to delete template", zap.Int64("template_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrTemplateNotFound
	}

	return nil
}
