package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func TestLoadEmpty(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPutAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.Put(ctx, "library/nginx", Entry{LatestTag: "1.25.0", Announced: true})
	require.NoError(t, err)

	err = s.Put(ctx, "library/redis", Entry{LatestTag: "7.2.3", Announced: false})
	require.NoError(t, err)

	entries, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{LatestTag: "1.25.0", Announced: true}, entries["library/nginx"])
	assert.Equal(t, Entry{LatestTag: "7.2.3", Announced: false}, entries["library/redis"])
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, "library/nginx", Entry{LatestTag: "1.25.0", Announced: true}))
	require.NoError(t, s.Put(ctx, "library/nginx", Entry{LatestTag: "1.25.1", Announced: true}))

	entries, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Entry{LatestTag: "1.25.1", Announced: true}, entries["library/nginx"])
}

func TestStateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "library/nginx", Entry{LatestTag: "1.25.0", Announced: true}))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Entry{LatestTag: "1.25.0", Announced: true}, entries["library/nginx"])
}
