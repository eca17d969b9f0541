package changelogbump

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a release version made of three non-negative integers.
// Pre-release and build metadata are not represented.
type Version struct {
	Major int
	Minor int
	Patch int
}

// BumpKind selects which component of a Version is incremented.
// The zero value is deliberately not a valid kind.
type BumpKind int

const (
	Major BumpKind = iota + 1
	Minor
	Patch
)

func (k BumpKind) String() string {
	switch k {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	default:
		return fmt.Sprintf("BumpKind(%d)", int(k))
	}
}

// Valid reports whether k is one of Major, Minor or Patch.
func (k BumpKind) Valid() bool {
	return k == Major || k == Minor || k == Patch
}

// ParseBumpKind converts "major", "minor" or "patch" into a BumpKind.
func ParseBumpKind(s string) (BumpKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	default:
		return 0, fmt.Errorf("%w: unknown bump argument %q (want major, minor or patch)", ErrInvalidArgument, s)
	}
}

// KindFromFlags turns three boolean selections into a BumpKind.
// Exactly one of them must be set.
func KindFromFlags(major, minor, patch bool) (BumpKind, error) {
	var selected []BumpKind
	if major {
		selected = append(selected, Major)
	}
	if minor {
		selected = append(selected, Minor)
	}
	if patch {
		selected = append(selected, Patch)
	}
	switch len(selected) {
	case 0:
		return 0, fmt.Errorf("%w: specify one of major, minor or patch", ErrInvalidArgument)
	case 1:
		return selected[0], nil
	default:
		return 0, fmt.Errorf("%w: only one of major, minor or patch is allowed", ErrInvalidArgument)
	}
}

// Parse reads a "major.minor.patch" string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("expected 3 dot-separated segments, got %d", len(parts))}
	}

	var nums [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("segment %q is not a non-negative integer", p)}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, &ParseError{Input: s, Reason: err.Error()}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the canonical "major.minor.patch" form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns the version that follows v for the given kind.
// Major resets minor and patch, minor resets patch.
func (v Version) Bump(kind BumpKind) (Version, error) {
	switch kind {
	case Major:
		return Version{Major: v.Major + 1}, nil
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return v, fmt.Errorf("%w: unknown bump kind %v", ErrInvalidArgument, kind)
	}
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after other. Major dominates, then minor, then patch.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpInt(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpInt(v.Minor, other.Minor)
	default:
		return cmpInt(v.Patch, other.Patch)
	}
}

// Equal reports whether v and other are the same version.
func (v Version) Equal(other Version) bool {
	return v == other
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
