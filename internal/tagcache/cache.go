package tagcache

import (
	"context"
	"sync"
	"time"

	"github.com/lodthe/tagwatch/pkg/dockerhub"

	"github.com/rs/zerolog"
)

type HubClient interface {
	GetTags(ctx context.Context, repository string) ([]dockerhub.ImageTag, error)
}

// Cache keeps fetched tag catalogs keyed by normalized repository.
// Entries are write-once for the process lifetime: a repository is
// fetched at most once, and later lookups are served from memory.
// Staleness within a process run is accepted in exchange for not
// re-walking the full pagination on every poll cycle.
type Cache struct {
	logger zerolog.Logger
	cli    HubClient

	mu       sync.RWMutex
	catalogs map[string][]dockerhub.ImageTag
}

func New(logger zerolog.Logger, cli HubClient) *Cache {
	return &Cache{
		logger:   logger,
		cli:      cli,
		catalogs: make(map[string][]dockerhub.ImageTag),
	}
}

// Get returns the tag catalog for the given repository, fetching it
// from the registry on the first request.
//
// A failed fetch logs a warning and returns whatever was accumulated
// (possibly nothing) together with the error, without caching it, so
// a later cycle retries. The partial catalog is still usable.
func (c *Cache) Get(ctx context.Context, repository string) ([]dockerhub.ImageTag, error) {
	c.mu.RLock()
	catalog, found := c.catalogs[repository]
	c.mu.RUnlock()

	if found {
		return catalog, nil
	}

	startedAt := time.Now()

	tags, err := c.cli.GetTags(ctx, repository)
	if err != nil {
		c.logger.Warn().Err(err).Str("repository", repository).Int("fetched", len(tags)).
			Msg("tag catalog fetch failed, proceeding with a partial catalog")

		return tags, err
	}

	c.mu.Lock()
	c.catalogs[repository] = tags
	c.mu.Unlock()

	c.logger.Debug().Dur("elapsed", time.Since(startedAt)).Str("repository", repository).
		Int("tag_count", len(tags)).Msg("tag catalog has been cached")

	return tags, nil
}

// Size returns the number of cached catalogs.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.catalogs)
}
