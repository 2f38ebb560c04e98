package analytics

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/pkg/geo"
	"VLINKS-Backend/pkg/iphash"
	"VLINKS-Backend/pkg/useragent"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockClickStore is a mock implementation of ClickStore
type MockClickStore struct {
	mock.Mock
}

func (m *MockClickStore) CreateClick(ctx context.Context, click *domain.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

type fakeUA struct{}

func (fakeUA) Parse(string) *useragent.DeviceInfo {
	return &useragent.DeviceInfo{DeviceType: "mobile", Browser: "Mobile Safari", OS: "iOS"}
}

type fakeLocator struct {
	loc *geo.Location
	err error
}

func (f fakeLocator) Lookup(context.Context, string) (*geo.Location, error) {
	return f.loc, f.err
}

func (fakeLocator) Name() string { return "fake" }

// blockingStore holds every write until released
type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	clicks  []*domain.Click
}

func (b *blockingStore) CreateClick(_ context.Context, click *domain.Click) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks = append(b.clicks, click)
	return nil
}

func (b *blockingStore) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clicks)
}

// cancelAwareStore holds every write until its context is done
type cancelAwareStore struct {
	started chan struct{}
	once    sync.Once
}

func (c *cancelAwareStore) CreateClick(ctx context.Context, _ *domain.Click) error {
	c.once.Do(func() { close(c.started) })
	<-ctx.Done()
	return ctx.Err()
}

func testEnricher(loc geo.Locator) *Enricher {
	return NewEnricher(iphash.New("secret"), fakeUA{}, loc, zap.NewNop())
}

func TestProcessor_WritesEnrichedClick(t *testing.T) {
	store := new(MockClickStore)
	written := make(chan *domain.Click, 1)
	store.On("CreateClick", mock.Anything, mock.AnythingOfType("*domain.Click")).
		Run(func(args mock.Arguments) { written <- args.Get(1).(*domain.Click) }).
		Return(nil)

	loc := fakeLocator{loc: &geo.Location{Country: "DE", City: "Berlin"}}
	p := NewProcessor(store, testEnricher(loc), zap.NewNop(), DefaultConfig())
	require.NoError(t, p.Start())

	clickedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Submit(&ClickData{
		LinkID:    7,
		SessionID: "sess-1",
		IP:        "203.0.113.9",
		UserAgent: "Mozilla/5.0 (iPhone)",
		Referrer:  "https://www.youtube.com/",
		ClickedAt: clickedAt,
	}))

	var click *domain.Click
	select {
	case click = <-written:
	case <-time.After(2 * time.Second):
		t.Fatal("click was not written")
	}
	require.NoError(t, p.Stop())

	assert.Equal(t, int64(7), click.LinkID)
	assert.Equal(t, "sess-1", click.SessionID)
	assert.Equal(t, clickedAt, click.ClickedAt)
	require.NotNil(t, click.IPHash)
	assert.Equal(t, iphash.New("secret").Hash("203.0.113.9"), *click.IPHash)
	assert.NotContains(t, *click.IPHash, "203.0.113.9")
	assert.Equal(t, "mobile", click.GetDeviceType())
	assert.Equal(t, "Mobile Safari", *click.Browser)
	assert.Equal(t, "iOS", *click.OS)
	assert.Equal(t, "DE", *click.Country)
	assert.Equal(t, "Berlin", *click.City)
	assert.Equal(t, "https://www.youtube.com/", *click.Referrer)
	store.AssertExpectations(t)
}

func TestProcessor_GeoFailureStillWritesClick(t *testing.T) {
	store := new(MockClickStore)
	written := make(chan *domain.Click, 1)
	store.On("CreateClick", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written <- args.Get(1).(*domain.Click) }).
		Return(nil)

	p := NewProcessor(store, testEnricher(fakeLocator{err: errors.New("db closed")}), zap.NewNop(), DefaultConfig())
	require.NoError(t, p.Start())
	require.NoError(t, p.Submit(&ClickData{LinkID: 1, SessionID: "s", IP: "198.51.100.1"}))

	select {
	case click := <-written:
		assert.Nil(t, click.Country)
		assert.Nil(t, click.City)
		assert.False(t, click.ClickedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("click was not written")
	}
	require.NoError(t, p.Stop())
}

func TestProcessor_StoreErrorIsSwallowed(t *testing.T) {
	store := new(MockClickStore)
	done := make(chan struct{})
	store.On("CreateClick", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(done) }).
		Return(errors.New("connection refused")).Once()

	p := NewProcessor(store, testEnricher(nil), zap.NewNop(), DefaultConfig())
	require.NoError(t, p.Start())
	require.NoError(t, p.Submit(&ClickData{LinkID: 1, SessionID: "s"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write was not attempted")
	}
	require.NoError(t, p.Stop())

	// no retries
	store.AssertNumberOfCalls(t, "CreateClick", 1)
}

func TestProcessor_SubmitDropsWhenFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	cfg := DefaultConfig()
	cfg.WorkerCount = 1
	cfg.BufferSize = 1

	p := NewProcessor(store, testEnricher(nil), zap.NewNop(), cfg)
	require.NoError(t, p.Start())

	// the worker takes the first click and blocks, the second fills the buffer
	require.NoError(t, p.Submit(&ClickData{LinkID: 1, SessionID: "a"}))
	require.Eventually(t, func() bool {
		return len(p.jobQueue) == 0
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Submit(&ClickData{LinkID: 1, SessionID: "b"}))

	err := p.Submit(&ClickData{LinkID: 1, SessionID: "c"})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(store.release)
	require.NoError(t, p.Stop())
	assert.Equal(t, 2, store.count())
}

func TestProcessor_StopDrainsQueue(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	cfg := DefaultConfig()
	cfg.WorkerCount = 2
	cfg.BufferSize = 10

	p := NewProcessor(store, testEnricher(nil), zap.NewNop(), cfg)
	require.NoError(t, p.Start())
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, p.Submit(&ClickData{LinkID: 1, SessionID: id}))
	}

	close(store.release)
	require.NoError(t, p.Stop())
	assert.Equal(t, 5, store.count())
}

func TestProcessor_StopTimeoutCancelsWritesAndCountsAbandoned(t *testing.T) {
	store := &cancelAwareStore{started: make(chan struct{})}
	cfg := DefaultConfig()
	cfg.WorkerCount = 1
	cfg.BufferSize = 10
	cfg.ShutdownTimeout = 50 * time.Millisecond

	p := NewProcessor(store, testEnricher(nil), zap.NewNop(), cfg)
	require.NoError(t, p.Start())
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Submit(&ClickData{LinkID: 1, SessionID: id}))
	}

	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("write was not attempted")
	}

	start := time.Now()
	err := p.Stop()
	require.ErrorIs(t, err, ErrShutdownTimeout)
	assert.Contains(t, err.Error(), "3 clicks abandoned")
	assert.True(t, time.Since(start) < cfg.WriteTimeout, "cancelled writes must not wait for the write timeout")

	// workers are done once Stop returns
	assert.Equal(t, int64(3), p.Abandoned())
	assert.Equal(t, int64(3), p.GetStats()["abandoned"])
	assert.Equal(t, 0, len(p.jobQueue))
}

func TestProcessor_SubmitAfterStop(t *testing.T) {
	p := NewProcessor(new(MockClickStore), testEnricher(nil), zap.NewNop(), DefaultConfig())
	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())

	err := p.Submit(&ClickData{LinkID: 1, SessionID: "late"})
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Error(t, p.Start())
}

func TestProcessor_GetStats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = 42
	p := NewProcessor(new(MockClickStore), testEnricher(nil), zap.NewNop(), cfg)

	stats := p.GetStats()
	assert.Equal(t, false, stats["started"])
	assert.Equal(t, 42, stats["queue_capacity"])
	assert.Equal(t, cfg.WorkerCount, stats["worker_count"])
	assert.Equal(t, int64(0), stats["abandoned"])
}
