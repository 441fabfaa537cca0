package matcher

import (
	"strings"

	"github.com/lodthe/tagwatch/pkg/dockerhub"
	"github.com/lodthe/tagwatch/pkg/version"
)

// RollingTag is the conventional tag of images that track recency
// instead of a version family.
const RollingTag = "latest"

type candidate struct {
	tag     dockerhub.ImageTag
	version version.Version
}

// Match selects the newest published tag compatible with the running
// one. Only stable coercible versions are considered. A rolling
// running tag is matched by recency; a versioned running tag is
// treated as a version-family prefix and matched by version ordering
// within the family.
//
// The second return value is false when no compatible tag exists,
// which is not an error.
func Match(catalog []dockerhub.ImageTag, runningTag string) (string, bool) {
	var stable []candidate
	for _, t := range catalog {
		v, ok := version.Parse(t.Name)
		if !ok || v.Prerelease() {
			continue
		}

		stable = append(stable, candidate{tag: t, version: v})
	}

	if strings.HasPrefix(runningTag, RollingTag) {
		return matchRolling(stable)
	}

	return matchFamily(stable, runningTag)
}

// matchRolling picks the most recently updated stable tag.
// Ties keep the earlier catalog entry.
func matchRolling(stable []candidate) (string, bool) {
	if len(stable) == 0 {
		return "", false
	}

	best := stable[0]
	for _, c := range stable[1:] {
		if c.tag.LastUpdated.After(best.tag.LastUpdated) {
			best = c
		}
	}

	return best.tag.Name, true
}

// matchFamily restricts candidates to the running tag's version
// family and picks the maximum by version ordering. Numerically
// equal candidates keep the first one encountered.
func matchFamily(stable []candidate, runningTag string) (string, bool) {
	var best candidate
	var found bool

	for _, c := range stable {
		if !inFamily(c.tag.Name, runningTag) {
			continue
		}

		if !found || c.version.Compare(best.version) > 0 {
			best = c
			found = true
		}
	}

	if !found {
		return "", false
	}

	return best.tag.Name, true
}

// inFamily reports whether the tag belongs to the running tag's
// version family: an exact match, a dotted sub-version, or a
// qualified variant.
func inFamily(tag, runningTag string) bool {
	return tag == runningTag ||
		strings.HasPrefix(tag, runningTag+".") ||
		strings.HasPrefix(tag, runningTag+"-")
}
