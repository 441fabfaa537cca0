package imageref

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

const DefaultTag = "latest"

// Ref is a normalized, registry-addressable image reference.
// Repository always carries a namespace (bare names are expanded
// to the default "library" namespace), so it can be used directly
// as a cache and state key.
type Ref struct {
	Repository string
	Tag        string
}

// Parse normalizes a raw running-image reference into a Ref.
// Digest suffixes are dropped; a missing tag defaults to DefaultTag.
func Parse(raw string) (Ref, error) {
	named, err := reference.ParseNormalizedNamed(raw)
	if err != nil {
		return Ref{}, err
	}

	tag := DefaultTag
	if tagged, ok := named.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	return Ref{
		Repository: reference.Path(named),
		Tag:        tag,
	}, nil
}

func (r Ref) String() string {
	return r.Repository + ":" + r.Tag
}

// HubURL returns the Docker Hub tags page for the repository.
// Official images (the library namespace) are published under "_".
func (r Ref) HubURL() string {
	repo := r.Repository
	if strings.HasPrefix(repo, "library/") {
		repo = "_/" + strings.TrimPrefix(repo, "library/")
	}

	return fmt.Sprintf("https://hub.docker.com/r/%s/tags", repo)
}
