package workloads

import (
	"context"

	"github.com/lodthe/tagwatch/pkg/imageref"

	"github.com/docker/docker/api/types/container"
	dockercli "github.com/docker/docker/client"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type containerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
}

// Lister enumerates the images of currently running containers on
// the local Docker Engine.
type Lister struct {
	logger zerolog.Logger
	cli    containerAPI
}

func NewLister(logger zerolog.Logger, daemonURL string) (*Lister, error) {
	opts := []dockercli.Opt{
		dockercli.FromEnv,
		dockercli.WithAPIVersionNegotiation(),
	}
	if daemonURL != "" {
		opts = append(opts, dockercli.WithHost(daemonURL))
	}

	cli, err := dockercli.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "docker client creation failed")
	}

	return &Lister{logger: logger, cli: cli}, nil
}

// Running returns the de-duplicated normalized references of all
// running containers, in the order the engine reports them.
// References that cannot be parsed are skipped with a warning.
func (l *Lister) Running(ctx context.Context) ([]imageref.Ref, error) {
	containers, err := l.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "container list failed")
	}

	seen := make(map[imageref.Ref]struct{})

	var refs []imageref.Ref
	for _, c := range containers {
		ref, err := imageref.Parse(c.Image)
		if err != nil {
			l.logger.Warn().Err(err).Str("image", c.Image).Msg("skipping unparseable image reference")
			continue
		}

		if _, found := seen[ref]; found {
			continue
		}

		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	return refs, nil
}
