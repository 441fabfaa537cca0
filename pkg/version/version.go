package version

import (
	"regexp"
	"strconv"
	"strings"
)

// Version is a coerced image tag version: the leading dot-separated
// numeric components plus everything that follows them (the suffix).
// A tag is coercible when at least a major component can be extracted.
type Version struct {
	parts  []uint64
	suffix []string
}

var prereleaseMarker = regexp.MustCompile(`(?i)^(alpha|beta|rc|pre|preview|dev|snapshot|nightly|canary)\d*$`)

// Parse coerces a tag into a Version.
// The tag is split into components on dots and dashes (the same way
// registry tags like "1.2.3-alpine" are conventionally composed);
// a leading "v" is ignored. Parsing stops being numeric at the first
// non-numeric component, which starts the suffix.
func Parse(tag string) (Version, bool) {
	trimmed := strings.TrimPrefix(tag, "v")
	components := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '.' || r == '-'
	})
	if len(components) == 0 {
		return Version{}, false
	}

	var v Version
	for i, c := range components {
		n, err := strconv.ParseUint(c, 10, 64)
		if err != nil {
			v.suffix = components[i:]
			break
		}

		v.parts = append(v.parts, n)
	}

	if len(v.parts) == 0 {
		return Version{}, false
	}

	return v, true
}

// Prerelease reports whether the suffix marks a prerelease build
// (alpha/beta/rc style). Variant suffixes such as "alpine" or "slim"
// are not prereleases.
func (v Version) Prerelease() bool {
	return len(v.suffix) > 0 && prereleaseMarker.MatchString(v.suffix[0])
}

// Compare orders versions by their numeric components; a missing
// component counts as zero, so "2.4" and "2.4.0" are equal. Suffixes
// do not participate in ordering: numerically equal versions compare
// as equal regardless of their textual form.
func (v Version) Compare(other Version) int {
	n := len(v.parts)
	if len(other.parts) > n {
		n = len(other.parts)
	}

	for i := 0; i < n; i++ {
		a := part(v.parts, i)
		b := part(other.parts, i)

		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}

	return 0
}

func part(parts []uint64, i int) uint64 {
	if i < len(parts) {
		return parts[i]
	}

	return 0
}
