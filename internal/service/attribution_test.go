package service

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/repository/memory"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.MemStorage
	video    *domain.Video
	booking  *domain.Link // L1
	other    *domain.Link // L2
	click    *domain.Click
	clickAge time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	video := &domain.Video{Slug: "demo", Title: "Demo", Source: domain.SourceYouTube}
	require.NoError(t, store.CreateVideo(ctx, video))

	l1 := &domain.Link{VideoID: video.ID, Label: "book-a-call", DestinationURL: "https://cal.example/x", IsBookingLink: true, Active: true}
	require.NoError(t, store.CreateLink(ctx, l1))
	l2 := &domain.Link{VideoID: video.ID, Label: "newsletter", DestinationURL: "https://news.example", Active: true}
	require.NoError(t, store.CreateLink(ctx, l2))

	age := 90 * time.Second
	click := &domain.Click{LinkID: l1.ID, SessionID: "sess-exact", ClickedAt: fixedNow.Add(-age)}
	require.NoError(t, store.CreateClick(ctx, click))

	return &fixture{store: store, video: video, booking: l1, other: l2, click: click, clickAge: age}
}

func (f *fixture) matcher(skipOrphans bool) *Matcher {
	return NewMatcher(f.store, nil, zap.NewNop(), skipOrphans).WithClock(func() time.Time { return fixedNow })
}

func (f *fixture) onlyBooking(t *testing.T) *domain.BookingView {
	t.Helper()
	views, err := f.store.ListBookings(context.Background(), domain.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	return views[0]
}

func TestMatcher_ExactMatchWinsOverFallback(t *testing.T) {
	f := newFixture(t)

	res, err := f.matcher(false).Process(context.Background(), []byte(`{
		"contact": {"first_name": "Jane", "last_name": "Doe", "email": "jane@example.com", "id": "c-1"},
		"utm_term": "sess-exact",
		"utm_campaign": "demo",
		"utm_content": "newsletter",
		"appointment": {"id": "apt-1", "startTime": "2026-05-12T10:00:00Z"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Status)
	assert.Equal(t, TierExact, res.Tier)
	require.NotNil(t, res.Attributed)
	assert.True(t, *res.Attributed)

	b := f.onlyBooking(t)
	require.NotNil(t, b.LinkID)
	assert.Equal(t, f.booking.ID, *b.LinkID)
	require.NotNil(t, b.ClickID)
	assert.Equal(t, f.click.ID, *b.ClickID)
	require.NotNil(t, b.TimeToBookSeconds)
	assert.Equal(t, int64(90), *b.TimeToBookSeconds)
	assert.Equal(t, "Jane Doe", b.ContactName)
	assert.Equal(t, "jane@example.com", *b.ContactEmail)
	assert.Equal(t, "c-1", *b.ExternalContactID)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, "newsletter", *b.UTMContent)
	require.NotNil(t, b.AppointmentAt)
	assert.Equal(t, time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC), *b.AppointmentAt)
}

func TestMatcher_FallbackMatch(t *testing.T) {
	f := newFixture(t)

	res, err := f.matcher(false).Process(context.Background(), []byte(`{
		"name": "Sam",
		"customData": {"UtmCampaign": "demo", "UTM_CONTENT": "newsletter", "utm_term": "unknown-session"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Status)
	assert.Equal(t, TierFallback, res.Tier)
	assert.True(t, *res.Attributed)

	b := f.onlyBooking(t)
	assert.Equal(t, f.other.ID, *b.LinkID)
	assert.Nil(t, b.ClickID)
	assert.Nil(t, b.TimeToBookSeconds)
	assert.Equal(t, "unknown-session", *b.UTMTerm)
}

func TestMatcher_Unattributed(t *testing.T) {
	f := newFixture(t)

	res, err := f.matcher(false).Process(context.Background(), []byte(`{"utm_campaign": "demo"}`))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Status)
	assert.Equal(t, TierNone, res.Tier)
	assert.False(t, *res.Attributed)

	b := f.onlyBooking(t)
	assert.Nil(t, b.LinkID)
	assert.Nil(t, b.ClickID)
	assert.Equal(t, "Unknown", b.ContactName)
	assert.Equal(t, "demo", *b.UTMCampaign)
}

func TestMatcher_ArchivedVideoBlocksFallback(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.ArchiveVideo(context.Background(), f.video.ID))

	res, err := f.matcher(false).Process(context.Background(), []byte(`{"utm_campaign": "demo", "utm_content": "newsletter"}`))
	require.NoError(t, err)
	assert.False(t, *res.Attributed)
}

func TestMatcher_Idempotent(t *testing.T) {
	f := newFixture(t)
	m := f.matcher(false)
	body := []byte(`{"type": "AppointmentCreate", "id": "apt-9", "utm_term": "sess-exact"}`)

	first, err := m.Process(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, first.Status)

	second, err := m.Process(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Status)
	assert.Equal(t, *first.BookingID, *second.BookingID)
	assert.Nil(t, second.Attributed)

	f.onlyBooking(t)
}

func TestMatcher_StatusTransitions(t *testing.T) {
	tests := []struct {
		eventType string
		want      domain.BookingStatus
	}{
		{"AppointmentCancelled", domain.BookingCancelled},
		{"appointment.canceled", domain.BookingCancelled},
		{"Appointment Completed", domain.BookingCompleted},
		{"contact showed", domain.BookingCompleted},
		{"NO_SHOW", domain.BookingNoShow},
		{"appointment noshow", domain.BookingNoShow},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			f := newFixture(t)
			m := f.matcher(false)

			created, err := m.Process(context.Background(), []byte(`{"appointment": {"id": "apt-1"}}`))
			require.NoError(t, err)

			res, err := m.Process(context.Background(), []byte(`{"type": "`+tt.eventType+`", "appointment": {"id": "apt-1"}}`))
			require.NoError(t, err)
			assert.Equal(t, OutcomeUpdated, res.Status)
			assert.Equal(t, *created.BookingID, *res.BookingID)

			b := f.onlyBooking(t)
			assert.Equal(t, tt.want, b.Status)
		})
	}
}

func TestMatcher_OrphanTransition(t *testing.T) {
	body := []byte(`{"type": "AppointmentCancelled", "appointment": {"id": "never-seen"}}`)

	t.Run("falls through to creation", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.matcher(false).Process(context.Background(), body)
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, res.Status)
		assert.Equal(t, domain.BookingConfirmed, f.onlyBooking(t).Status)
	})

	t.Run("ignored when configured", func(t *testing.T) {
		f := newFixture(t)
		res, err := f.matcher(true).Process(context.Background(), body)
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, res.Status)
		assert.Nil(t, res.BookingID)

		views, err := f.store.ListBookings(context.Background(), domain.BookingFilter{})
		require.NoError(t, err)
		assert.Empty(t, views)

		logs := f.store.WebhookLogs()
		require.Len(t, logs, 1)
		assert.Equal(t, OutcomeIgnored, logs[0].Outcome)
	})
}

func TestMatcher_TimeToBookClampedAtZero(t *testing.T) {
	f := newFixture(t)
	future := &domain.Click{LinkID: f.booking.ID, SessionID: "sess-future", ClickedAt: fixedNow.Add(time.Minute)}
	require.NoError(t, f.store.CreateClick(context.Background(), future))

	_, err := f.matcher(false).Process(context.Background(), []byte(`{"utm_term": "sess-future"}`))
	require.NoError(t, err)

	b := f.onlyBooking(t)
	require.NotNil(t, b.TimeToBookSeconds)
	assert.Equal(t, int64(0), *b.TimeToBookSeconds)
}

func TestMatcher_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`not json`, `[1,2]`, `{"a":1} trailing`, ``} {
		_, err := f.matcher(false).Process(context.Background(), []byte(body))
		assert.True(t, IsValidation(err), "body %q", body)
	}
	assert.Empty(t, f.store.WebhookLogs())
}

func TestMatcher_AuditLog(t *testing.T) {
	f := newFixture(t)
	m := f.matcher(false)

	res, err := m.Process(context.Background(), []byte(`{"type": "AppointmentCreate", "id": "apt-5"}`))
	require.NoError(t, err)

	logs := f.store.WebhookLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "AppointmentCreate", logs[0].EventType)
	assert.Equal(t, "created", logs[0].EventKind)
	assert.Equal(t, OutcomeCreated, logs[0].Outcome)
	assert.Equal(t, *res.BookingID, *logs[0].BookingID)
	assert.Equal(t, fixedNow, logs[0].ReceivedAt)
	assert.JSONEq(t, `{"type": "AppointmentCreate", "id": "apt-5"}`, string(logs[0].Payload))
}

// failingAudit breaks only the audit log
type failingAudit struct {
	*memory.MemStorage
}

func (failingAudit) CreateWebhookLog(context.Context, *domain.WebhookLog) error {
	return errors.New("disk full")
}

func TestMatcher_AuditFailureDoesNotFailWebhook(t *testing.T) {
	f := newFixture(t)
	m := NewMatcher(failingAudit{f.store}, nil, zap.NewNop(), false)

	res, err := m.Process(context.Background(), []byte(`{"id": "apt-1"}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Status)
}

// racingStore simulates a concurrent delivery winning the insert
type racingStore struct {
	*memory.MemStorage
	winner *domain.Booking
}

func (r *racingStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	if r.winner == nil {
		r.winner = &domain.Booking{ExternalBookingID: b.ExternalBookingID, ContactName: "first", Status: domain.BookingConfirmed}
		if err := r.MemStorage.CreateBooking(ctx, r.winner); err != nil {
			return err
		}
	}
	return repository.ErrBookingExists
}

func (r *racingStore) GetBookingByExternalID(ctx context.Context, id string) (*domain.Booking, error) {
	if r.winner == nil {
		return nil, repository.ErrBookingNotFound
	}
	return r.MemStorage.GetBookingByExternalID(ctx, id)
}

func TestMatcher_ConcurrentDuplicateBecomesDuplicate(t *testing.T) {
	f := newFixture(t)
	store := &racingStore{MemStorage: f.store}
	m := NewMatcher(store, nil, zap.NewNop(), false)

	res, err := m.Process(context.Background(), []byte(`{"id": "apt-race"}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Status)
	assert.Equal(t, store.winner.ID, *res.BookingID)
}

func TestMatcher_VerifySecret(t *testing.T) {
	f := newFixture(t)
	m := f.matcher(false)
	ctx := context.Background()

	// not configured: everything passes
	assert.NoError(t, m.VerifySecret(ctx, ""))
	assert.NoError(t, m.VerifySecret(ctx, "anything"))

	require.NoError(t, f.store.SetSettings(ctx, map[string]string{domain.SettingWebhookSecret: "s3cret"}))
	assert.NoError(t, m.VerifySecret(ctx, "s3cret"))
	assert.ErrorIs(t, m.VerifySecret(ctx, "wrong"), ErrUnauthorized)
	assert.ErrorIs(t, m.VerifySecret(ctx, ""), ErrUnauthorized)
}
