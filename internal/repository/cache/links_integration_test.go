//go:build integration

package cache

import (
	"VLINKS-Backend/internal/domain"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestLinkCache_Redis(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	source := &countingSource{links: map[string]*domain.Link{
		"demo/book-a-call": {
			ID:             3,
			VideoID:        1,
			Label:          "book-a-call",
			DestinationURL: "https://cal.example/x",
			Active:         true,
			Video:          &domain.Video{ID: 1, Slug: "demo", Title: "Demo"},
		},
		"demo/newsletter": {ID: 4, VideoID: 1, Label: "newsletter", DestinationURL: "https://n.example", Active: true},
	}}
	c := NewLinkCache(client, source, time.Minute, zap.NewNop())

	first, err := c.ResolveLink(ctx, "demo", "book-a-call")
	require.NoError(t, err)
	second, err := c.ResolveLink(ctx, "demo", "book-a-call")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first.DestinationURL, second.DestinationURL)
	require.NotNil(t, second.Video)
	assert.Equal(t, "demo", second.Video.Slug)

	ttl, err := client.TTL(ctx, linkKey("demo", "book-a-call")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	c.InvalidateLink(ctx, "demo", "book-a-call")
	_, err = c.ResolveLink(ctx, "demo", "book-a-call")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	_, err = c.ResolveLink(ctx, "demo", "newsletter")
	require.NoError(t, err)
	c.InvalidateVideo(ctx, "demo")

	keys, err := client.Keys(ctx, keyPrefix+"demo:*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
