package postgres

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateDomain сохраняет домен. Первый домен становится доменом по умолчанию;
// установка флага по умолчанию снимает его с остальных в той же транзакции.
func (s *PostgresStorage) CreateDomain(ctx context.Context, d *domain.Domain) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Domain{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count domains: %w", err)
		}
		if count == 0 {
			d.IsDefault = true
		}

		if d.IsDefault {
			if err := clearDefaultDomain(tx); err != nil {
				return err
			}
		}

		return tx.Create(d).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrDomainExists
		}
		s.log.Error("failed to create domain", zap.String("hostname", d.Hostname), zap.Error(err))
		return fmt.Errorf("failed to create domain: %w", err)
	}

	s.log.Info("created domain", zap.Int64("domain_id", d.ID), zap.String("hostname", d.Hostname), zap.Bool("is_default", d.IsDefault))
	return nil
}

// GetDomain получает домен по ID
func (s *PostgresStorage) GetDomain(ctx context.Context, id int64) (*domain.Domain, error) {
	var d domain.Domain

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if isNotFound(err) {
		return nil, repository.ErrDomainNotFound
	}
	if err != nil {
		s.log.Error("failed to get domain", zap.Int64("domain_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}

	return &d, nil
}

// ListDomains возвращает домены, домен по умолчанию первым
func (s *PostgresStorage) ListDomains(ctx context.Context) ([]*domain.Domain, error) {
	var domains []*domain.Domain

	if err := s.db.WithContext(ctx).Order("is_default DESC, label ASC").Find(&domains).Error; err != nil {
		s.log.Error("failed to list domains", zap.Error(err))
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	return domains, nil
}

// UpdateDomain обновляет домен с соблюдением единственного домена по умолчанию
func (s *PostgresStorage) UpdateDomain(ctx context.Context, d *domain.Domain) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if d.IsDefault {
			if err := clearDefaultDomain(tx); err != nil {
				return err
			}
		}

		result := tx.Model(d).Select("label", "hostname", "is_default").Updates(d)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrDomainNotFound
		}
		return nil
	})
	if err == repository.ErrDomainNotFound {
		return err
	}
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrDomainExists
		}
		s.log.Error("failed to update domain", zap.Int64("domain_id", d.ID), zap.Error(err))
		return fmt.Errorf("failed to update domain: %w", err)
	}

	return nil
}

// DeleteDomain удаляет домен и отвязывает от него видео
func (s *PostgresStorage) DeleteDomain(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Video{}).Where("domain_id = ?", id).Update("domain_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unlink videos: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&domain.Domain{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return repository.ErrDomainNotFound
		}
		return nil
	})
	if err == repository.ErrDomainNotFound {
		return err
	}
	if err != nil {
		s.log.Error("failed to delete domain", zap.Int64("domain_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete domain: %w", err)
	}

	s.log.Info("deleted domain", zap.Int64("domain_id", id))
	return nil
}

func clearDefaultDomain(tx *gorm.DB) error {
	if err := tx.Model(&domain.Domain{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to reset default domain: %w", err)
	}
	return nil
}
