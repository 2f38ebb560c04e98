package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/pkg/slug"
	"context"
	"errors"
	"fmt"
	"strconv"
)

const maxRetries = 5

// maxSlugSuffix ограничивает перебор суффиксов -2, -3, ...
const maxSlugSuffix = 1000

// LinkCacheInvalidator сбрасывает закэшированные ссылки после изменений каталога
type LinkCacheInvalidator interface {
	InvalidateLink(ctx context.Context, videoSlug, label string)
	InvalidateVideo(ctx context.Context, videoSlug string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateLink(context.Context, string, string) {}
func (noopInvalidator) InvalidateVideo(context.Context, string)        {}

// VideoInput поля видео от клиента; nil означает "не менять"
type VideoInput struct {
	Title          *string
	Slug           *string
	Source         *domain.VideoSource
	YoutubeURL     *string
	YoutubeVideoID *string
	DomainID       *int64
}

type VideoService struct {
	storage repository.Storage
	cache   LinkCacheInvalidator
}

func NewVideoService(storage repository.Storage, cache LinkCacheInvalidator) *VideoService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &VideoService{
		storage: storage,
		cache:   cache,
	}
}

// List возвращает неархивные видео вместе с их доменами
func (s *VideoService) List(ctx context.Context) ([]*domain.VideoSummary, error) {
	videos, err := s.storage.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	domains, err := s.storage.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	byID := make(map[int64]*domain.Domain, len(domains))
	for _, d := range domains {
		byID[d.ID] = d
	}
	for _, v := range videos {
		if v.DomainID != nil {
			v.Domain = byID[*v.DomainID]
		}
	}
	return videos, nil
}

func (s *VideoService) Get(ctx context.Context, id int64) (*domain.Video, error) {
	return s.storage.GetVideo(ctx, id)
}

// Create создает видео; slug берется из явного slug или из title,
// при коллизии добавляется суффикс -2, -3, ...
func (s *VideoService) Create(ctx context.Context, in VideoInput) (*domain.Video, error) {
	if in.Title == nil || *in.Title == "" {
		return nil, invalid("title", "is required")
	}

	base := *in.Title
	if in.Slug != nil && *in.Slug != "" {
		base = *in.Slug
	}
	base = slug.Make(base)
	if base == "" {
		return nil, invalid("slug", "must contain at least one letter or digit")
	}

	video := &domain.Video{
		Title:          *in.Title,
		Source:         domain.SourceYouTube,
		YoutubeURL:     emptyToNil(in.YoutubeURL),
		YoutubeVideoID: emptyToNil(in.YoutubeVideoID),
		DomainID:       in.DomainID,
	}
	if in.Source != nil {
		if !in.Source.Valid() {
			return nil, invalid("source", "must be one of youtube, community, linktree, other")
		}
		video.Source = *in.Source
	}
	if err := s.checkDomain(ctx, video.DomainID); err != nil {
		return nil, err
	}

	// Проверка и вставка не атомарны: при гонке повторяем подбор slug
	for i := 0; i < maxRetries; i++ {
		candidate, err := s.freeSlug(ctx, base)
		if err != nil {
			return nil, err
		}
		video.Slug = candidate

		err = s.storage.CreateVideo(ctx, video)
		if err == nil {
			return s.storage.GetVideo(ctx, video.ID)
		}
		if !errors.Is(err, repository.ErrSlugExists) {
			return nil, fmt.Errorf("failed to save video: %w", err)
		}
	}

	return nil, repository.ErrSlugExists
}

func (s *VideoService) freeSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 2; n <= maxSlugSuffix; n++ {
		exists, err := s.storage.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug existence: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
	return "", repository.ErrSlugExists
}

// Update меняет title, source, youtube-поля и домен. Slug неизменен:
// он уже напечатан в описаниях видео.
func (s *VideoService) Update(ctx context.Context, id int64, in VideoInput) (*domain.Video, error) {
	video, err := s.storage.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, invalid("title", "must not be empty")
		}
		video.Title = *in.Title
	}
	if in.Source != nil {
		if !in.Source.Valid() {
			return nil, invalid("source", "must be one of youtube, community, linktree, other")
		}
		video.Source = *in.Source
	}
	if in.YoutubeURL != nil {
		video.YoutubeURL = emptyToNil(in.YoutubeURL)
	}
	if in.YoutubeVideoID != nil {
		video.YoutubeVideoID = emptyToNil(in.YoutubeVideoID)
	}
	if in.DomainID != nil {
		if *in.DomainID == 0 {
			video.DomainID = nil
		} else {
			if err := s.checkDomain(ctx, in.DomainID); err != nil {
				return nil, err
			}
			video.DomainID = in.DomainID
		}
	}

	video.Domain = nil
	if err := s.storage.UpdateVideo(ctx, video); err != nil {
		return nil, err
	}
	return s.storage.GetVideo(ctx, id)
}

// Archive скрывает видео из списков и отчетов; его ссылки перестают разрешаться
func (s *VideoService) Archive(ctx context.Context, id int64) error {
	video, err := s.storage.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.ArchiveVideo(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateVideo(ctx, video.Slug)
	return nil
}

func (s *VideoService) checkDomain(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.storage.GetDomain(ctx, *id); err != nil {
		if errors.Is(err, repository.ErrDomainNotFound) {
			return invalid("domain_id", "domain does not exist")
		}
		return err
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
