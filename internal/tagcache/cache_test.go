package tagcache

import (
	"context"
	"testing"

	"github.com/lodthe/tagwatch/pkg/dockerhub"

	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHubClient struct {
	tags  map[string][]dockerhub.ImageTag
	err   error
	calls int
}

func (f *fakeHubClient) GetTags(_ context.Context, repository string) ([]dockerhub.ImageTag, error) {
	f.calls++
	return f.tags[repository], f.err
}

func TestGetCachesSuccessfulFetch(t *testing.T) {
	cli := &fakeHubClient{
		tags: map[string][]dockerhub.ImageTag{
			"library/nginx": {
				{Name: "1.25.3"},
				{Name: "1.25.2"},
			},
		},
	}

	cache := New(zlog.Logger, cli)

	first, err := cache.Get(context.Background(), "library/nginx")
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := cache.Get(context.Background(), "library/nginx")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The second lookup must be served from the cache.
	assert.Equal(t, 1, cli.calls)
	assert.Equal(t, 1, cache.Size())
}

func TestGetDoesNotCacheFailures(t *testing.T) {
	cli := &fakeHubClient{
		tags: map[string][]dockerhub.ImageTag{
			"library/redis": {
				{Name: "7.2.3"},
			},
		},
		err: errors.New("unexpected status 500 Internal Server Error"),
	}

	cache := New(zlog.Logger, cli)

	partial, err := cache.Get(context.Background(), "library/redis")
	require.Error(t, err)
	assert.Len(t, partial, 1)
	assert.Equal(t, 0, cache.Size())

	// A later cycle retries the fetch and caches it once it succeeds.
	cli.err = nil
	_, err = cache.Get(context.Background(), "library/redis")
	require.NoError(t, err)
	assert.Equal(t, 2, cli.calls)
	assert.Equal(t, 1, cache.Size())
}

func TestGetUnknownRepository(t *testing.T) {
	cache := New(zlog.Logger, &fakeHubClient{})

	tags, err := cache.Get(context.Background(), "library/ghost")
	require.NoError(t, err)
	assert.Empty(t, tags)
}
