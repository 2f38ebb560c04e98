package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/pkg/slug"
	"VLINKS-Backend/pkg/tracking"
	"context"
	"time"
)

// LinkInput поля ссылки от клиента; nil означает "не менять"
type LinkInput struct {
	Label          *string
	DestinationURL *string
	IsBookingLink  *bool
	ExpiresAt      *time.Time
	ClearExpiry    bool
}

type LinkService struct {
	storage repository.Storage
	cache   LinkCacheInvalidator
}

func NewLinkService(storage repository.Storage, cache LinkCacheInvalidator) *LinkService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &LinkService{
		storage: storage,
		cache:   cache,
	}
}

// List возвращает активные ссылки видео
func (s *LinkService) List(ctx context.Context, videoID int64) ([]*domain.LinkSummary, error) {
	if _, err := s.storage.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	return s.storage.ListVideoLinks(ctx, videoID)
}

// Create добавляет ссылку к видео. Метка приводится к slug,
// адрес назначения проверяется сразу, а не в момент редиректа.
func (s *LinkService) Create(ctx context.Context, videoID int64, in LinkInput) (*domain.Link, error) {
	if _, err := s.storage.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	if in.Label == nil || in.DestinationURL == nil || *in.Label == "" || *in.DestinationURL == "" {
		return nil, invalid("", "label and destination_url are required")
	}

	label, err := cleanLabel(*in.Label)
	if err != nil {
		return nil, err
	}
	if err := tracking.ValidateDestination(*in.DestinationURL); err != nil {
		return nil, invalid("destination_url", err.Error())
	}

	link := &domain.Link{
		VideoID:        videoID,
		Label:          label,
		DestinationURL: *in.DestinationURL,
		ExpiresAt:      in.ExpiresAt,
		Active:         true,
	}
	if in.IsBookingLink != nil {
		link.IsBookingLink = *in.IsBookingLink
	}

	if err := s.storage.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) Update(ctx context.Context, id int64, in LinkInput) (*domain.Link, error) {
	link, err := s.storage.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	oldLabel := link.Label

	if in.Label != nil {
		label, err := cleanLabel(*in.Label)
		if err != nil {
			return nil, err
		}
		link.Label = label
	}
	if in.DestinationURL != nil {
		if err := tracking.ValidateDestination(*in.DestinationURL); err != nil {
			return nil, invalid("destination_url", err.Error())
		}
		link.DestinationURL = *in.DestinationURL
	}
	if in.IsBookingLink != nil {
		link.IsBookingLink = *in.IsBookingLink
	}
	if in.ClearExpiry {
		link.ExpiresAt = nil
	} else if in.ExpiresAt != nil {
		link.ExpiresAt = in.ExpiresAt
	}

	if err := s.storage.UpdateLink(ctx, link); err != nil {
		return nil, err
	}

	s.invalidate(ctx, link.VideoID, oldLabel)
	return s.storage.GetLink(ctx, id)
}

// Deactivate выключает ссылку; история кликов сохраняется
func (s *LinkService) Deactivate(ctx context.Context, id int64) error {
	link, err := s.storage.GetLink(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeactivateLink(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, link.VideoID, link.Label)
	return nil
}

// ResetClicks удаляет накопленные клики ссылки
func (s *LinkService) ResetClicks(ctx context.Context, id int64) (int64, error) {
	return s.storage.DeleteLinkClicks(ctx, id)
}

func (s *LinkService) invalidate(ctx context.Context, videoID int64, label string) {
	video, err := s.storage.GetVideo(ctx, videoID)
	if err != nil {
		return
	}
	s.cache.InvalidateLink(ctx, video.Slug, label)
}

func cleanLabel(raw string) (string, error) {
	label := slug.Make(raw)
	if label == "" {
		return "", invalid("label", "must contain at least one letter or digit")
	}
	return label, nil
}

