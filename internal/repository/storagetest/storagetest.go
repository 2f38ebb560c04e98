// Package storagetest holds behaviour checks shared by every repository.Storage
// implementation.
package storagetest

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Opener returns an empty storage private to t.
type Opener func(t *testing.T) repository.Storage

var base = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

// Run exercises open against the storage contract.
func Run(t *testing.T, open Opener) {
	t.Run("Videos", func(t *testing.T) { testVideos(t, open(t)) })
	t.Run("LinkLabels", func(t *testing.T) { testLinkLabels(t, open(t)) })
	t.Run("ResolveLink", func(t *testing.T) { testResolveLink(t, open(t)) })
	t.Run("ResetClicks", func(t *testing.T) { testResetClicks(t, open(t)) })
	t.Run("Bookings", func(t *testing.T) { testBookings(t, open(t)) })
	t.Run("Templates", func(t *testing.T) { testTemplates(t, open(t)) })
	t.Run("Domains", func(t *testing.T) { testDomains(t, open(t)) })
	t.Run("Settings", func(t *testing.T) { testSettings(t, open(t)) })
	t.Run("WebhookLogs", func(t *testing.T) { testWebhookLogs(t, open(t)) })
	t.Run("Analytics", func(t *testing.T) { testAnalytics(t, open(t)) })
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func createVideo(t *testing.T, s repository.Storage, slug string) *domain.Video {
	t.Helper()
	v := &domain.Video{Slug: slug, Title: "Video " + slug, Source: domain.SourceYouTube}
	require.NoError(t, s.CreateVideo(context.Background(), v))
	require.NotZero(t, v.ID)
	return v
}

func createLink(t *testing.T, s repository.Storage, videoID int64, label string, booking bool) *domain.Link {
	t.Helper()
	l := &domain.Link{
		VideoID:        videoID,
		Label:          label,
		DestinationURL: "https://example.com/" + label,
		IsBookingLink:  booking,
		Active:         true,
	}
	require.NoError(t, s.CreateLink(context.Background(), l))
	require.NotZero(t, l.ID)
	return l
}

func createClick(t *testing.T, s repository.Storage, linkID int64, session string, at time.Time, device, country string) *domain.Click {
	t.Helper()
	c := &domain.Click{LinkID: linkID, SessionID: session, ClickedAt: at}
	if device != "" {
		c.DeviceType = strPtr(device)
	}
	if country != "" {
		c.Country = strPtr(country)
	}
	require.NoError(t, s.CreateClick(context.Background(), c))
	require.NotZero(t, c.ID)
	return c
}

func testVideos(t *testing.T, s repository.Storage) {
	ctx := context.Background()

	v := createVideo(t, s, "demo")
	err := s.CreateVideo(ctx, &domain.Video{Slug: "demo", Title: "Again", Source: domain.SourceOther})
	assert.ErrorIs(t, err, repository.ErrSlugExists)

	exists, err := s.SlugExists(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.SlugExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	v.Title = "Renamed"
	v.Source = domain.SourceCommunity
	v.YoutubeVideoID = strPtr("dQw4w9WgXcQ")
	require.NoError(t, s.UpdateVideo(ctx, v))

	got, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Slug)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, domain.SourceCommunity, got.Source)
	require.NotNil(t, got.YoutubeVideoID)
	assert.Equal(t, "dQw4w9WgXcQ", *got.YoutubeVideoID)

	other := createVideo(t, s, "other")
	createLink(t, s, v.ID, "site", false)
	require.NoError(t, s.ArchiveVideo(ctx, other.ID))

	list, err := s.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, v.ID, list[0].ID)
	assert.Equal(t, int64(1), list[0].LinkCount)

	// архивное видео по-прежнему доступно по ID
	archived, err := s.GetVideo(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	_, err = s.GetVideo(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)
	assert.ErrorIs(t, s.ArchiveVideo(ctx, 9999), repository.ErrVideoNotFound)
	assert.ErrorIs(t, s.UpdateVideo(ctx, &domain.Video{ID: 9999, Title: "x", Source: domain.SourceOther}), repository.ErrVideoNotFound)
}

func testLinkLabels(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	v := createVideo(t, s, "demo")
	other := createVideo(t, s, "other")

	first := createLink(t, s, v.ID, "book-a-call", true)
	err := s.CreateLink(ctx, &domain.Link{VideoID: v.ID, Label: "book-a-call", DestinationURL: "https://x.example", Active: true})
	assert.ErrorIs(t, err, repository.ErrLinkLabelExists)

	// та же метка у другого видео допустима
	createLink(t, s, other.ID, "book-a-call", false)

	require.NoError(t, s.DeactivateLink(ctx, first.ID))
	second := createLink(t, s, v.ID, "book-a-call", true)
	assert.NotEqual(t, first.ID, second.ID)

	links, err := s.ListVideoLinks(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, second.ID, links[0].ID)

	expires := base.Add(24 * time.Hour)
	second.DestinationURL = "https://cal.example/new"
	second.ExpiresAt = &expires
	require.NoError(t, s.UpdateLink(ctx, second))

	got, err := s.GetLink(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cal.example/new", got.DestinationURL)
	require.NotNil(t, got.ExpiresAt)
	assert.WithinDuration(t, expires, *got.ExpiresAt, time.Second)

	site := createLink(t, s, v.ID, "site", false)
	site.Label = "book-a-call"
	assert.ErrorIs(t, s.UpdateLink(ctx, site), repository.ErrLinkLabelExists)

	_, err = s.GetLink(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	assert.ErrorIs(t, s.DeactivateLink(ctx, 9999), repository.ErrLinkNotFound)
}

func testResolveLink(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	v := createVideo(t, s, "demo")
	link := createLink(t, s, v.ID, "book-a-call", true)
	inactive := createLink(t, s, v.ID, "old", false)
	require.NoError(t, s.DeactivateLink(ctx, inactive.ID))

	got, err := s.ResolveLink(ctx, "demo", "book-a-call")
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
	require.NotNil(t, got.Video)
	assert.Equal(t, "demo", got.Video.Slug)

	_, err = s.ResolveLink(ctx, "demo", "old")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	_, err = s.ResolveLink(ctx, "other", "book-a-call")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	require.NoError(t, s.ArchiveVideo(ctx, v.ID))
	_, err = s.ResolveLink(ctx, "demo", "book-a-call")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func testResetClicks(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	v := createVideo(t, s, "demo")
	link := createLink(t, s, v.ID, "book-a-call", true)
	keep := createLink(t, s, v.ID, "site", false)

	click := createClick(t, s, link.ID, "sess-1", base, "mobile", "US")
	createClick(t, s, link.ID, "sess-2", base.Add(time.Minute), "desktop", "")
	createClick(t, s, keep.ID, "sess-3", base, "", "")

	err := s.CreateClick(ctx, &domain.Click{LinkID: link.ID, SessionID: "sess-1", ClickedAt: base})
	assert.ErrorIs(t, err, repository.ErrClickExists)

	found, err := s.GetClickBySessionID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, click.ID, found.ID)
	_, err = s.GetClickBySessionID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrClickNotFound)

	booking := &domain.Booking{
		ClickID:           int64Ptr(click.ID),
		LinkID:            int64Ptr(link.ID),
		ExternalBookingID: strPtr("appt-1"),
		ContactName:       "Ada",
		BookedAt:          base.Add(time.Hour),
		Status:            domain.BookingConfirmed,
	}
	require.NoError(t, s.CreateBooking(ctx, booking))

	deleted, err := s.DeleteLinkClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = s.GetClickBySessionID(ctx, "sess-1")
	assert.ErrorIs(t, err, repository.ErrClickNotFound)
	_, err = s.GetClickBySessionID(ctx, "sess-3")
	assert.NoError(t, err)

	got, err := s.GetBookingByExternalID(ctx, "appt-1")
	require.NoError(t, err)
	assert.Nil(t, got.ClickID)
	require.NotNil(t, got.LinkID)
	assert.Equal(t, link.ID, *got.LinkID)

	_, err = s.DeleteLinkClicks(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

func testBookings(t *testing.T, s repository.Storage) {
	ctx := context.Background()
	v := createVideo(t, s, "demo")
	other := createVideo(t, s, "other")
	link := createLink(t, s, v.ID, "book-a-call", true)
	otherLink := createLink(t, s, other.ID, "book", true)

	first := &domain.Booking{
		LinkID:            int64Ptr(link.ID),
		ExternalBookingID: strPtr("appt-1"),
		ContactName:       "Ada",
		BookedAt:          base,
		Status:            domain.BookingConfirmed,
		TimeToBookSeconds: int64Ptr(42),
	}
	require.NoError(t, s.CreateBooking(ctx, first))

	dup := &domain.Booking{ExternalBookingID: strPtr("appt-1"), ContactName: "Ada", BookedAt: base, Status: domain.BookingConfirmed}
	assert.ErrorIs(t, s.CreateBooking(ctx, dup), repository.ErrBookingExists)

	require.NoError(t, s.CreateBooking(ctx, &domain.Booking{
		LinkID:      int64Ptr(otherLink.ID),
		ContactName: "Grace",
		BookedAt:    base.Add(time.Hour),
		Status:      domain.BookingConfirmed,
	}))
	// без внешнего ID и без ссылки
	require.NoError(t, s.CreateBooking(ctx, &domain.Booking{
		ContactName: "Linus",
		BookedAt:    base.Add(-time.Hour),
		Status:      domain.BookingNoShow,
	}))

	require.NoError(t, s.UpdateBookingStatus(ctx, first.ID, domain.BookingCancelled))
	got, err := s.GetBookingByExternalID(ctx, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	require.NotNil(t, got.TimeToBookSeconds)
	assert.Equal(t, int64(42), *got.TimeToBookSeconds)

	assert.ErrorIs(t, s.UpdateBookingStatus(ctx, 9999, domain.BookingCompleted), repository.ErrBookingNotFound)
	_, err = s.GetBookingByExternalID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	all, err := s.ListBookings(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Grace", all[0].ContactName)
	assert.Equal(t, "Ada", all[1].ContactName)
	assert.Equal(t, "Linus", all[2].ContactName)
	assert.Nil(t, all[2].VideoID)
	assert.Nil(t, all[2].LinkLabel)

	forVideo, err := s.ListBookings(ctx, domain.BookingFilter{VideoID: int64Ptr(v.ID)})
	require.NoError(t, err)
	require.Len(t, forVideo, 1)
	require.NotNil(t, forVideo[0].LinkLabel)
	assert.Equal(t, "book-a-call", *forVideo[0].LinkLabel)
	require.NotNil(t, forVideo[0].VideoTitle)
	assert.Equal(t, v.Title, *forVideo[0].VideoTitle)
	require.NotNil(t, forVideo[0].VideoSlug)
	assert.Equal(t, "demo", *forVideo[0].VideoSlug)

	limited, err := s.ListBookings(ctx, domain.BookingFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func testTemplates(t *testing.T, s repository.Storage) {
	ctx := context.Background()

	tpl := &domain.LinkTemplate{Label: "newsletter", DestinationURL: "https://n.example"}
	require.NoError(t, s.CreateTemplate(ctx, tpl))
	require.NoError(t, s.CreateTemplate(ctx, &domain.LinkTemplate{Label: "book-a-call", DestinationURL: "https://cal.example", IsBookingLink: true}))
	assert.ErrorIs(t, s.CreateTemplate(ctx, &domain.LinkTemplate{Label: "newsletter", DestinationURL: "https://x.example"}), repository.ErrTemplateLabelExists)

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "book-a-call", list[0].Label)
	assert.True(t, list[0].IsBookingLink)

	tpl.DestinationURL = "https://n.example/v2"
	require.NoError(t, s.UpdateTemplate(ctx, tpl))
	got, err := s.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://n.example/v2", got.DestinationURL)

	tpl.Label = "book-a-call"
	assert.ErrorIs(t, s.UpdateTemplate(ctx, tpl), repository.ErrTemplateLabelExists)

	require.NoError(t, s.DeleteTemplate(ctx, tpl.ID))
	_, err = s.GetTemplate(ctx, tpl.ID)
	assert.ErrorIs(t, err, repository.ErrTemplateNotFound)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, tpl.ID), repository.ErrTemplateNotFound)
}

func testDomains(t *testing.T, s repository.Storage) {
	ctx := context.Background()

	first := &domain.Domain{Label: "Main", Hostname: "go.example.com"}
	require.NoError(t, s.CreateDomain(ctx, first))
	assert.True(t, first.IsDefault, "first domain becomes the default")

	second := &domain.Domain{Label: "Alt", Hostname: "links.example.com"}
	require.NoError(t, s.CreateDomain(ctx, second))
	assert.False(t, second.IsDefault)

	assert.ErrorIs(t, s.CreateDomain(ctx, &domain.Domain{Label: "Dup", Hostname: "go.example.com"}), repository.ErrDomainExists)

	second.IsDefault = true
	require.NoError(t, s.UpdateDomain(ctx, second))

	list, err := s.ListDomains(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	second.Hostname = "go.example.com"
	assert.ErrorIs(t, s.UpdateDomain(ctx, second), repository.ErrDomainExists)

	v := &domain.Video{Slug: "demo", Title: "Demo", Source: domain.SourceYouTube, DomainID: int64Ptr(first.ID)}
	require.NoError(t, s.CreateVideo(ctx, v))
	withDomain, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, withDomain.Domain)
	assert.Equal(t, "go.example.com", withDomain.Domain.Hostname)

	require.NoError(t, s.DeleteDomain(ctx, first.ID))
	unlinked, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, unlinked.DomainID)

	_, err = s.GetDomain(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrDomainNotFound)
	assert.ErrorIs(t, s.DeleteDomain(ctx, first.ID), repository.ErrDomainNotFound)
	assert.ErrorIs(t, s.UpdateDomain(ctx, &domain.Domain{ID: 9999, Label: "x", Hostname: "x.example"}), repository.ErrDomainNotFound)
}

func testSettings(t *testing.T, s repository.Storage) {
	ctx := context.Background()

	value, err := s.GetSetting(ctx, "ghl_webhook_secret")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.SetSettings(ctx, map[string]string{
		"ghl_webhook_secret": "s3cret",
		"default_utm_source": "youtube",
	}))
	require.NoError(t, s.SetSettings(ctx, map[string]string{"ghl_webhook_secret": "rotated"}))

	value, err = s.GetSetting(ctx, "ghl_webhook_secret")
	require.NoError(t, err)
	assert.Equal(t, "rotated", value)

	all, err := s.ListSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ghl_webhook_secret": "rotated",
		"default_utm_source": "youtube",
	}, all)
}

func testWebhookLogs(t *testing.T, s repository.Storage) {
	ctx := context.Background()

	for i, age := range []time.Duration{40 * 24 * time.Hour, 31 * 24 * time.Hour, time.Hour} {
		entry := &domain.WebhookLog{
			Payload:    []byte(`{"type":"AppointmentCreate"}`),
			EventType:  "AppointmentCreate",
			EventKind:  "create",
			Outcome:    "created",
			BookingID:  int64Ptr(int64(i + 1)),
			ReceivedAt: base.Add(-age),
		}
		require.NoError(t, s.CreateWebhookLog(ctx, entry))
		require.NotZero(t, entry.ID)
	}

	deleted, err := s.DeleteWebhookLogsBefore(ctx, base.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = s.DeleteWebhookLogsBefore(ctx, base.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func testAnalytics(t *testing.T, s repository.Storage) {
	ctx := context.Background()

	alpha := createVideo(t, s, "alpha")
	beta := createVideo(t, s, "beta")
	book := createLink(t, s, alpha.ID, "book", true)
	site := createLink(t, s, alpha.ID, "site", false)
	betaSite := createLink(t, s, beta.ID, "site", false)

	recent := createClick(t, s, book.ID, "a1", base.Add(-time.Hour), "mobile", "US")
	createClick(t, s, book.ID, "a2", base.Add(-48*time.Hour), "desktop", "US")
	createClick(t, s, site.ID, "a3", base.Add(-10*24*time.Hour), "desktop", "DE")
	createClick(t, s, betaSite.ID, "b1", base.Add(-time.Hour), "mobile", "FR")
	require.NoError(t, s.ArchiveVideo(ctx, beta.ID))

	require.NoError(t, s.CreateBooking(ctx, &domain.Booking{
		ClickID: int64Ptr(recent.ID), LinkID: int64Ptr(book.ID), ContactName: "Ada",
		BookedAt: base, Status: domain.BookingConfirmed, TimeToBookSeconds: int64Ptr(100),
	}))
	require.NoError(t, s.CreateBooking(ctx, &domain.Booking{
		LinkID: int64Ptr(book.ID), ContactName: "Bob",
		BookedAt: base.Add(-40 * 24 * time.Hour), Status: domain.BookingCancelled, TimeToBookSeconds: int64Ptr(10),
	}))
	require.NoError(t, s.CreateBooking(ctx, &domain.Booking{
		ContactName: "Cy", BookedAt: base.Add(-72 * time.Hour), Status: domain.BookingConfirmed, TimeToBookSeconds: int64Ptr(201),
	}))

	cutoffs := repository.PeriodCutoffs{Since7d: base.Add(-7 * 24 * time.Hour), Since30d: base.Add(-30 * 24 * time.Hour)}

	clicks, err := s.ClickTotals(ctx, cutoffs)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodTotals{Last7d: 2, Last30d: 3, AllTime: 3}, *clicks)

	bookings, err := s.BookingTotals(ctx, cutoffs)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodTotals{Last7d: 2, Last30d: 2, AllTime: 2}, *bookings)

	conversion, err := s.ConversionTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), conversion.Clicks)
	assert.Equal(t, int64(2), conversion.Bookings)
	assert.Equal(t, 100.0, conversion.Rate)

	avg, err := s.AvgTimeToBook(ctx)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, int64(151), *avg)

	perVideo, err := s.VideoConversions(ctx)
	require.NoError(t, err)
	require.Len(t, perVideo, 1)
	assert.Equal(t, alpha.ID, perVideo[0].VideoID)
	assert.Equal(t, int64(2), perVideo[0].BookingClicks)
	assert.Equal(t, int64(1), perVideo[0].TotalBookings)
	assert.Equal(t, 50.0, perVideo[0].ConversionRate)

	top, err := s.TopVideos(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, alpha.ID, top[0].ID)
	assert.Equal(t, int64(3), top[0].TotalClicks)
	assert.Equal(t, int64(2), top[0].LinkCount)

	times, err := s.ClickTimes(ctx, nil, cutoffs.Since7d)
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.WithinDuration(t, base.Add(-48*time.Hour), times[0], time.Second)
	assert.WithinDuration(t, base.Add(-time.Hour), times[1], time.Second)

	// архивное видео доступно только при явном фильтре
	betaTimes, err := s.ClickTimes(ctx, &beta.ID, cutoffs.Since30d)
	require.NoError(t, err)
	assert.Len(t, betaTimes, 1)

	devices, err := s.DeviceBreakdown(ctx, nil)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, domain.Breakdown{Key: "desktop", Count: 2}, *devices[0])
	assert.Equal(t, domain.Breakdown{Key: "mobile", Count: 1}, *devices[1])

	geo, err := s.GeoBreakdown(ctx, &alpha.ID, 1)
	require.NoError(t, err)
	require.Len(t, geo, 1)
	assert.Equal(t, domain.Breakdown{Key: "US", Count: 2}, *geo[0])

	latest, err := s.RecentClicks(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "a1", latest[0].SessionID)
	assert.Equal(t, "book", latest[0].Label)
	assert.Equal(t, "alpha", latest[0].VideoSlug)
	assert.Equal(t, "a2", latest[1].SessionID)
}
