package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// three more clicks on the booking link, one on the other link, one 40 days ago
	for i, at := range []time.Time{
		fixedNow.Add(-time.Hour),
		fixedNow.Add(-26 * time.Hour),
		fixedNow.Add(-10 * 24 * time.Hour),
	} {
		require.NoError(t, f.store.CreateClick(ctx, &domain.Click{LinkID: f.booking.ID, SessionID: "b" + string(rune('0'+i)), ClickedAt: at}))
	}
	require.NoError(t, f.store.CreateClick(ctx, &domain.Click{LinkID: f.other.ID, SessionID: "o1", ClickedAt: fixedNow.Add(-2 * time.Hour)}))
	require.NoError(t, f.store.CreateClick(ctx, &domain.Click{LinkID: f.other.ID, SessionID: "o2", ClickedAt: fixedNow.Add(-40 * 24 * time.Hour)}))

	_, err := f.matcher(false).Process(ctx, []byte(`{"id": "apt-1", "utm_term": "sess-exact"}`))
	require.NoError(t, err)

	s := NewDashboardService(f.store).WithClock(func() time.Time { return fixedNow })
	sum, err := s.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(6), sum.Clicks.AllTime)
	assert.Equal(t, int64(4), sum.Clicks.Last7d)
	assert.Equal(t, int64(5), sum.Clicks.Last30d)
	assert.Equal(t, int64(1), sum.Conversion.Bookings)
	require.NotNil(t, sum.AvgTimeToBook)
	assert.Equal(t, int64(90), *sum.AvgTimeToBook)

	require.Len(t, sum.TopVideos, 1)
	assert.Equal(t, "demo", sum.TopVideos[0].Slug)
	assert.Equal(t, int64(1), sum.TopVideos[0].TotalBookings)
	require.Len(t, sum.RecentBookings, 1)
	assert.Equal(t, "book-a-call", *sum.RecentBookings[0].LinkLabel)
	assert.NotEmpty(t, sum.RecentActivity)
}

func TestDashboardService_ClicksOverTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, at := range []time.Time{
		fixedNow.Add(-time.Hour),
		fixedNow.Add(-3 * 24 * time.Hour),
		fixedNow.Add(-3*24*time.Hour - time.Hour),
		fixedNow.Add(-45 * 24 * time.Hour),
	} {
		require.NoError(t, f.store.CreateClick(ctx, &domain.Click{LinkID: f.other.ID, SessionID: "c" + string(rune('0'+i)), ClickedAt: at}))
	}

	s := NewDashboardService(f.store).WithClock(func() time.Time { return fixedNow })

	week, err := s.ClicksOverTime(ctx, nil, "7d", "7d")
	require.NoError(t, err)
	assert.Equal(t, []*domain.DailyCount{
		{Date: "2026-05-07", Count: 2},
		{Date: "2026-05-10", Count: 2}, // fixture click plus the hour-old one
	}, week)

	all, err := s.ClicksOverTime(ctx, &f.video.ID, "all", "30d")
	require.NoError(t, err)
	var total int64
	for _, d := range all {
		total += d.Count
	}
	assert.Equal(t, int64(5), total)
	assert.Equal(t, "2026-03-26", all[0].Date)

	// unknown range falls back to the default
	fallback, err := s.ClicksOverTime(ctx, nil, "1y", "7d")
	require.NoError(t, err)
	assert.Equal(t, week, fallback)

	missing := int64(404)
	_, err = s.ClicksOverTime(ctx, &missing, "7d", "7d")
	assert.ErrorIs(t, err, repository.ErrVideoNotFound)
}

func TestDashboardService_VideoBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.matcher(false)

	_, err := m.Process(ctx, []byte(`{"id": "apt-1", "utm_term": "sess-exact"}`))
	require.NoError(t, err)
	_, err = m.Process(ctx, []byte(`{"id": "apt-2"}`))
	require.NoError(t, err)

	s := NewDashboardService(f.store)

	byVideo, err := s.VideoBookings(ctx, f.video.ID)
	require.NoError(t, err)
	require.Len(t, byVideo, 1)
	assert.Equal(t, "Demo", *byVideo[0].VideoTitle)

	recent, err := s.RecentBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
