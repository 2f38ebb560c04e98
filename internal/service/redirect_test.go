package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectService_Resolve(t *testing.T) {
	f := newFixture(t)
	s := NewRedirectService(f.store).WithClock(func() time.Time { return fixedNow })

	first, err := s.Resolve(context.Background(), "demo", "book-a-call")
	require.NoError(t, err)
	second, err := s.Resolve(context.Background(), "demo", "book-a-call")
	require.NoError(t, err)

	assert.NotEmpty(t, first.SessionID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Equal(t, f.booking.ID, first.Link.ID)
	assert.Equal(t, fixedNow, first.At)

	u, err := url.Parse(first.URL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "youtube", q.Get("utm_source"))
	assert.Equal(t, "video_description", q.Get("utm_medium"))
	assert.Equal(t, "demo", q.Get("utm_campaign"))
	assert.Equal(t, "book-a-call", q.Get("utm_content"))
	assert.Equal(t, first.SessionID, q.Get("utm_term"))
}

func TestRedirectService_NotFound(t *testing.T) {
	f := newFixture(t)
	s := NewRedirectService(f.store)

	_, err := s.Resolve(context.Background(), "demo", "missing")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	_, err = s.Resolve(context.Background(), "nope", "book-a-call")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	require.NoError(t, f.store.DeactivateLink(context.Background(), f.other.ID))
	_, err = s.Resolve(context.Background(), "demo", "newsletter")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestRedirectService_Expiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := NewRedirectService(f.store).WithClock(func() time.Time { return fixedNow })

	past := fixedNow.Add(-time.Second)
	link := &domain.Link{VideoID: f.video.ID, Label: "old-offer", DestinationURL: "https://old.example", Active: true, ExpiresAt: &past}
	require.NoError(t, f.store.CreateLink(ctx, link))

	_, err := s.Resolve(ctx, "demo", "old-offer")
	assert.ErrorIs(t, err, ErrLinkExpired)

	// expiry exactly now is not yet expired
	exact := fixedNow
	edge := &domain.Link{VideoID: f.video.ID, Label: "edge", DestinationURL: "https://edge.example", Active: true, ExpiresAt: &exact}
	require.NoError(t, f.store.CreateLink(ctx, edge))

	target, err := s.Resolve(ctx, "demo", "edge")
	require.NoError(t, err)
	assert.Equal(t, edge.ID, target.Link.ID)
}
