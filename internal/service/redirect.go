package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/pkg/tracking"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LinkResolver находит активную ссылку неархивного видео.
// Реализуется хранилищем и кэшем ссылок.
type LinkResolver interface {
	ResolveLink(ctx context.Context, videoSlug, label string) (*domain.Link, error)
}

// RedirectTarget результат разрешения ссылки
type RedirectTarget struct {
	Link      *domain.Link
	SessionID string
	URL       string
	At        time.Time
}

// RedirectService разрешает (slug, label) в размеченный URL
type RedirectService struct {
	links      LinkResolver
	now        func() time.Time
	newSession func() string
}

func NewRedirectService(links LinkResolver) *RedirectService {
	return &RedirectService{
		links:      links,
		now:        time.Now,
		newSession: func() string { return uuid.NewString() },
	}
}

// WithClock подменяет источник времени
func (s *RedirectService) WithClock(now func() time.Time) *RedirectService {
	s.now = now
	return s
}

// Resolve возвращает цель редиректа с новым session id.
// Истекшая ссылка дает ErrLinkExpired, клик в этом случае не пишется.
func (s *RedirectService) Resolve(ctx context.Context, videoSlug, label string) (*RedirectTarget, error) {
	link, err := s.links.ResolveLink(ctx, videoSlug, label)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, repository.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to resolve link: %w", err)
	}

	now := s.now()
	if link.IsExpired(now) {
		return nil, ErrLinkExpired
	}

	sessionID := s.newSession()
	target, err := tracking.BuildRedirectURL(link.DestinationURL, videoSlug, link.Label, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to build redirect url: %w", err)
	}

	return &RedirectTarget{
		Link:      link,
		SessionID: sessionID,
		URL:       target,
		At:        now,
	}, nil
}
