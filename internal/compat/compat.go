package compat

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

type v struct {
	major uint16
	minor uint8
	patch uint8
}

// Returns <0 if "a < b"
// Returns 0 if "a == b"
// Returns >0 if "a > b"
func compareVersions(a v, b []int) int {
	diff := int(a.major)
	if len(b) > 0 {
		diff -= b[0]
	}
	if diff == 0 {
		diff = int(a.minor)
		if len(b) > 1 {
			diff -= b[1]
		}
	}
	if diff == 0 {
		diff = int(a.patch)
		if len(b) > 2 {
			diff -= b[2]
		}
	}
	return diff
}

// The start is inclusive and the end is exclusive
type versionRange struct {
	start v
	end   v // Use 0.0.0 for "no end"
}

func isVersionSupported(ranges []versionRange, version []int) bool {
	for _, r := range ranges {
		if compareVersions(r.start, version) <= 0 && (r.end == (v{}) || compareVersions(r.end, version) > 0) {
			return true
		}
	}
	return false
}

// ParseVersion turns a user-provided version string such as "16", "16.3" or
// "16.3.0" into the int triple used by the support tables. Validation and
// canonicalization are delegated to the semver package.
func ParseVersion(text string) ([]int, bool) {
	if text == "" {
		return nil, false
	}
	withV := "v" + strings.TrimPrefix(text, "v")
	if !semver.IsValid(withV) {
		return nil, false
	}
	canonical := strings.TrimPrefix(semver.Canonical(withV), "v")
	if i := strings.IndexAny(canonical, "-+"); i != -1 {
		canonical = canonical[:i]
	}
	parts := strings.Split(canonical, ".")
	version := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, false
		}
		version = append(version, n)
	}
	return version, true
}
