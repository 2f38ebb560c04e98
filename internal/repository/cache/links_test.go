package cache

import (
	"VLINKS-Backend/internal/domain"
	"VLINKS-Backend/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSource struct {
	links map[string]*domain.Link
	calls int
}

func (s *countingSource) ResolveLink(_ context.Context, videoSlug, label string) (*domain.Link, error) {
	s.calls++
	link, ok := s.links[videoSlug+"/"+label]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

// unreachable returns a client whose every command fails fast.
func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestLinkCache_FallsThroughWhenRedisIsDown(t *testing.T) {
	source := &countingSource{links: map[string]*domain.Link{
		"demo/book-a-call": {ID: 3, Label: "book-a-call", DestinationURL: "https://cal.example/x", Active: true},
	}}
	client := unreachable()
	defer client.Close()

	c := NewLinkCache(client, source, time.Minute, zap.NewNop())

	link, err := c.ResolveLink(context.Background(), "demo", "book-a-call")
	require.NoError(t, err)
	assert.Equal(t, int64(3), link.ID)

	_, err = c.ResolveLink(context.Background(), "demo", "missing")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
	assert.Equal(t, 2, source.calls)

	// invalidation errors are only logged
	c.InvalidateLink(context.Background(), "demo", "book-a-call")
	c.InvalidateVideo(context.Background(), "demo")
	assert.Error(t, c.Ping(context.Background()))
}

func TestLinkKey(t *testing.T) {
	assert.Equal(t, "vlinks:link:demo:book-a-call", linkKey("demo", "book-a-call"))
}
