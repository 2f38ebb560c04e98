package postgres

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CreateVideo сохраняет новое видео
func (s *PostgresStorage) CreateVideo(ctx context.Context, video *domain.Video) error {
	if err := s.db.WithContext(ctx).Create(video).Error; err != nil {
		if isDuplicate(err) {
			return repository.ErrSlugExists
		}
		s.log.Error("failed to create video", zap.String("slug", video.Slug), zap.Error(err))
		return fmt.Errorf("failed to create video: %w", err)
	}

	s.log.Info("created video", zap.Int64("video_id", video.ID), zap.String("slug", video.Slug))
	return nil
}

// GetVideo получает видео по ID вместе с доменом
func (s *PostgresStorage) GetVideo(ctx context.Context, id int64) (*domain.Video, error) {
	var video domain.Video

	err := s.db.WithContext(ctx).Preload("Domain").Where("id = ?", id).First(&video).Error
	if isNotFound(err) {
		return nil, repository.ErrVideoNotFound
	}
	if err != nil {
		s.log.Error("failed to get video", zap.Int64("video_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &video, nil
}

// ListVideos возвращает неархивные видео с количеством ссылок и кликов
func (s *PostgresStorage) ListVideos(ctx context.Context) ([]*domain.VideoSummary, error) {
	var videos []*domain.VideoSummary

	err := s.db.WithContext(ctx).Raw(`
		SELECT v.*, COUNT(DISTINCT l.id) AS link_count, COUNT(c.id) AS total_clicks
		FROM videos v
		LEFT JOIN links l ON l.video_id = v.id AND l.active = ?
		LEFT JOIN clicks c ON c.link_id = l.id
		WHERE v.archived = ?
		GROUP BY v.id
		ORDER BY v.created_at DESC, v.id DESC`, true, false).Scan(&videos).Error
	if err != nil {
		s.log.Error("failed to list videos", zap.Error(err))
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	return videos, nil
}

// SlugExists проверяет, занят ли slug (включая архивные видео)
func (s *PostgresStorage) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Video{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		s.log.Error("failed to check slug existence", zap.String("slug", slug), zap.Error(err))
		return false, fmt.Errorf("failed to check slug: %w", err)
	}

	return count > 0, nil
}

// UpdateVideo обновляет изменяемые поля видео
func (s *PostgresStorage) UpdateVideo(ctx context.Context, video *domain.Video) error {
	result := s.db.WithContext(ctx).Model(video).
		Select("title", "source", "youtube_url", "youtube_video_id", "domain_id").
		Updates(video)
	if result.Error != nil {
		s.log.Error("failed to update video", zap.Int64("video_id", video.ID), zap.Error(result.Error))
		return fmt.Errorf("failed to update video: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// ArchiveVideo архивирует видео (мягкое удаление); ссылки и клики сохраняются
func (s *PostgresStorage) ArchiveVideo(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&domain.Video{}).Where("id = ?", id).Update("archived", true)
	if result.Error != nil {
		s.log.Error("failed to archive video", zap.Int64("video_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to archive video: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrVideoNotFound
	}

	s.log.Info("archived video", zap.Int64("video_id", id))
	return nil
}
