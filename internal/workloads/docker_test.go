package workloads

import (
	"context"
	"testing"

	"github.com/lodthe/tagwatch/pkg/imageref"

	"github.com/docker/docker/api/types/container"
	"github.com/pkg/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContainerAPI struct {
	containers []container.Summary
	err        error
}

func (f *fakeContainerAPI) ContainerList(_ context.Context, _ container.ListOptions) ([]container.Summary, error) {
	return f.containers, f.err
}

func TestRunning(t *testing.T) {
	lister := &Lister{
		logger: zlog.Logger,
		cli: &fakeContainerAPI{
			containers: []container.Summary{
				{Image: "nginx:1.25"},
				{Image: "redis:7"},
				{Image: "nginx:1.25"},
				{Image: "grafana/grafana"},
				{Image: "!!broken!!"},
			},
		},
	}

	refs, err := lister.Running(context.Background())
	require.NoError(t, err)

	// Duplicates collapse, unparseable references are skipped.
	assert.Equal(t, []imageref.Ref{
		{Repository: "library/nginx", Tag: "1.25"},
		{Repository: "library/redis", Tag: "7"},
		{Repository: "grafana/grafana", Tag: "latest"},
	}, refs)
}

func TestRunningListFailure(t *testing.T) {
	lister := &Lister{
		logger: zlog.Logger,
		cli:    &fakeContainerAPI{err: errors.New("daemon unavailable")},
	}

	_, err := lister.Running(context.Background())
	assert.Error(t, err)
}
