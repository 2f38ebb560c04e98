package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

type recordingInvalidator struct {
	links  []string
	videos []string
}

func (r *recordingInvalidator) InvalidateLink(_ context.Context, videoSlug, label string) {
	r.links = append(r.links, videoSlug+"/"+label)
}

func (r *recordingInvalidator) InvalidateVideo(_ context.Context, videoSlug string) {
	r.videos = append(r.videos, videoSlug)
}

func TestVideoService_CreateSlugs(t *testing.T) {
	ctx := context.Background()
	s := NewVideoService(memory.New(), nil)

	first, err := s.Create(ctx, VideoInput{Title: ptr("Demo")})
	require.NoError(t, err)
	assert.Equal(t, "demo", first.Slug)
	assert.Equal(t, domain.SourceYouTube, first.Source)

	second, err := s.Create(ctx, VideoInput{Title: ptr("DEMO!")})
	require.NoError(t, err)
	assert.Equal(t, "demo-2", second.Slug)

	third, err := s.Create(ctx, VideoInput{Title: ptr("Something else"), Slug: ptr("Demo")})
	require.NoError(t, err)
	assert.Equal(t, "demo-3", third.Slug)

	custom, err := s.Create(ctx, VideoInput{Title: ptr("Café Tour"), Source: ptr(domain.SourceCommunity)})
	require.NoError(t, err)
	assert.Equal(t, "cafe-tour", custom.Slug)
	assert.Equal(t, domain.SourceCommunity, custom.Source)
}

func TestVideoService_Validation(t *testing.T) {
	ctx := context.Background()
	s := NewVideoService(memory.New(), nil)

	_, err := s.Create(ctx, VideoInput{})
	assert.True(t, IsValidation(err))

	_, err = s.Create(ctx, VideoInput{Title: ptr("!!!")})
	assert.True(t, IsValidation(err))

	_, err = s.Create(ctx, VideoInput{Title: ptr("x"), Source: ptr(domain.VideoSource("tiktok"))})
	assert.True(t, IsValidation(err))

	_, err = s.Create(ctx, VideoInput{Title: ptr("x"), DomainID: ptr(int64(99))})
	assert.True(t, IsValidation(err))
}

func TestVideoService_UpdateAndArchive(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := &recordingInvalidator{}
	s := NewVideoService(store, inv)

	d := &domain.Domain{Label: "Main", Hostname: "go.example.com"}
	require.NoError(t, store.CreateDomain(ctx, d))

	v, err := s.Create(ctx, VideoInput{Title: ptr("Demo")})
	require.NoError(t, err)

	updated, err := s.Update(ctx, v.ID, VideoInput{Title: ptr("Demo v2"), DomainID: ptr(d.ID), YoutubeVideoID: ptr("abc123")})
	require.NoError(t, err)
	assert.Equal(t, "Demo v2", updated.Title)
	assert.Equal(t, "demo", updated.Slug)
	require.NotNil(t, updated.DomainID)
	assert.Equal(t, d.ID, *updated.DomainID)
	assert.Equal(t, "abc123", *updated.YoutubeVideoID)

	withDomain, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, withDomain, 1)
	require.NotNil(t, withDomain[0].Domain)
	assert.Equal(t, "go.example.com", withDomain[0].Domain.Hostname)

	cleared, err := s.Update(ctx, v.ID, VideoInput{DomainID: ptr(int64(0))})
	require.NoError(t, err)
	assert.Nil(t, cleared.DomainID)

	_, err = s.Update(ctx, 404, VideoInput{Title: ptr("x")})
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)

	require.NoError(t, s.Archive(ctx, v.ID))
	assert.Equal(t, []string{"demo"}, inv.videos)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.Archive(ctx, 404), repository.ErrVideoNotFound)
}

func TestLinkService(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	inv := &recordingInvalidator{}
	videos := NewVideoService(store, inv)
	links := NewLinkService(store, inv)

	v, err := videos.Create(ctx, VideoInput{Title: ptr("Demo")})
	require.NoError(t, err)

	link, err := links.Create(ctx, v.ID, LinkInput{
		Label:          ptr("Book a Call"),
		DestinationURL: ptr("https://cal.example/x"),
		IsBookingLink:  ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "book-a-call", link.Label)
	assert.True(t, link.IsBookingLink)
	assert.True(t, link.Active)

	_, err = links.Create(ctx, v.ID, LinkInput{Label: ptr("book a call"), DestinationURL: ptr("https://other.example")})
	assert.ErrorIs(t, err, repository.ErrLinkLabelExists)

	_, err = links.Create(ctx, v.ID, LinkInput{Label: ptr("bad"), DestinationURL: ptr("cal.example/x")})
	assert.True(t, IsValidation(err))

	_, err = links.Create(ctx, v.ID, LinkInput{Label: ptr("missing-destination")})
	assert.True(t, IsValidation(err))

	_, err = links.Create(ctx, 404, LinkInput{Label: ptr("a"), DestinationURL: ptr("https://a.example")})
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)

	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := links.Update(ctx, link.ID, LinkInput{Label: ptr("Strategy Call"), ExpiresAt: &expires})
	require.NoError(t, err)
	assert.Equal(t, "strategy-call", updated.Label)
	require.NotNil(t, updated.ExpiresAt)
	assert.Equal(t, []string{"demo/book-a-call"}, inv.links)

	updated, err = links.Update(ctx, link.ID, LinkInput{ClearExpiry: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ExpiresAt)

	require.NoError(t, links.Deactivate(ctx, link.ID))
	assert.Equal(t, "demo/strategy-call", inv.links[len(inv.links)-1])

	// label is free again once the old link is inactive
	_, err = links.Create(ctx, v.ID, LinkInput{Label: ptr("strategy-call"), DestinationURL: ptr("https://cal.example/y")})
	require.NoError(t, err)

	list, err := links.List(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLinkService_ResetClicks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	links := NewLinkService(f.store, nil)

	_, err := f.matcher(false).Process(ctx, []byte(`{"utm_term": "sess-exact"}`))
	require.NoError(t, err)

	n, err := links.ResetClicks(ctx, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.store.GetClickBySessionID(ctx, "sess-exact")
	assert.ErrorIs(t, err, repository.ErrClickNotFound)

	// the booking survives without its click
	b := f.onlyBooking(t)
	assert.Nil(t, b.ClickID)
	assert.Equal(t, f.booking.ID, *b.LinkID)

	_, err = links.ResetClicks(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func TestTemplateService(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	templates := NewTemplateService(store)
	videos := NewVideoService(store, nil)
	links := NewLinkService(store, nil)

	call, err := templates.Create(ctx, TemplateInput{Label: ptr("Book a Call"), DestinationURL: ptr("https://cal.example/x"), IsBookingLink: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "book-a-call", call.Label)

	news, err := templates.Create(ctx, TemplateInput{Label: ptr("newsletter"), DestinationURL: ptr("https://news.example")})
	require.NoError(t, err)

	_, err = templates.Create(ctx, TemplateInput{Label: ptr("BOOK A CALL"), DestinationURL: ptr("https://cal.example/y")})
	assert.ErrorIs(t, err, repository.ErrTemplateLabelExists)

	v, err := videos.Create(ctx, VideoInput{Title: ptr("Demo")})
	require.NoError(t, err)
	_, err = links.Create(ctx, v.ID, LinkInput{Label: ptr("newsletter"), DestinationURL: ptr("https://custom.example")})
	require.NoError(t, err)

	res, err := templates.Apply(ctx, v.ID, []int64{call.ID, news.ID, 999})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "book-a-call", res.Created[0].Label)
	assert.True(t, res.Created[0].IsBookingLink)
	assert.Equal(t, []string{"newsletter"}, res.Skipped)

	_, err = templates.Apply(ctx, v.ID, nil)
	assert.True(t, IsValidation(err))
	_, err = templates.Apply(ctx, 404, []int64{call.ID})
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)

	updated, err := templates.Update(ctx, news.ID, TemplateInput{IsBookingLink: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsBookingLink)

	require.NoError(t, templates.Delete(ctx, news.ID))
	assert.ErrorIs(t, templates.Delete(ctx, news.ID), repository.ErrTemplateNotFound)
}

func TestDomainService(t *testing.T) {
	ctx := context.Background()
	s := NewDomainService(memory.New())

	first, err := s.Create(ctx, DomainInput{Hostname: ptr("https://go.example.com/"), Label: ptr("Main")})
	require.NoError(t, err)
	assert.Equal(t, "go.example.com", first.Hostname)
	assert.True(t, first.IsDefault)

	second, err := s.Create(ctx, DomainInput{Hostname: ptr("links.example.org"), Label: ptr("Alt"), IsDefault: ptr(true)})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	_, err = s.Create(ctx, DomainInput{Hostname: ptr("http://go.example.com"), Label: ptr("Dup")})
	assert.ErrorIs(t, err, repository.ErrDomainExists)

	_, err = s.Create(ctx, DomainInput{Hostname: ptr("x.example")})
	assert.True(t, IsValidation(err))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.False(t, list[1].IsDefault)

	_, err = s.Update(ctx, first.ID, DomainInput{IsDefault: ptr(true)})
	require.NoError(t, err)
	list, err = s.List(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, d := range list {
		if d.IsDefault {
			defaults++
			assert.Equal(t, first.ID, d.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	require.NoError(t, s.Delete(ctx, second.ID))
	assert.ErrorIs(t, s.Delete(ctx, second.ID), repository.ErrDomainNotFound)
}

func TestNormalizeHostname(t *testing.T) {
	tests := map[string]string{
		"https://go.example.com/": "go.example.com",
		"HTTP://Go.Example.com//": "Go.Example.com",
		"  links.example.org  ":   "links.example.org",
		"go.example.com/path/":    "go.example.com/path",
		"https://":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHostname(in), in)
	}
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	s := NewSettingsService(memory.New())

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		domain.SettingWebhookSecret:     "",
		domain.SettingCRMAPIKey:         "",
		domain.SettingNotificationEmail: "",
	}, all)

	all, err = s.Update(ctx, map[string]string{
		domain.SettingWebhookSecret: "s3cret",
		"admin_password":            "nope",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", all[domain.SettingWebhookSecret])
	assert.NotContains(t, all, "admin_password")
}
