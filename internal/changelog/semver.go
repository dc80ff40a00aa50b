package changelog

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a parsed semantic version (https://semver.org/spec/v2.0.0.html).
// Build metadata is kept for display but never takes part in precedence.
type SemVer struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Prerelease []string
	Build      []string
}

// ParseVersion parses text as MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
// The grammar is strict: no "v" prefix, no surrounding whitespace and no
// leading zeros in numeric components. Failures wrap ErrInvalidVersion.
func ParseVersion(text string) (SemVer, error) {
	if text == "" {
		return SemVer{}, versionError(text, "empty version")
	}

	var v SemVer
	core := text

	if i := strings.IndexByte(core, '+'); i >= 0 {
		ids, err := splitIdentifiers(core[i+1:], false)
		if err != nil {
			return SemVer{}, versionError(text, "build metadata: "+err.Error())
		}
		v.Build = ids
		core = core[:i]
	}

	if i := strings.IndexByte(core, '-'); i >= 0 {
		ids, err := splitIdentifiers(core[i+1:], true)
		if err != nil {
			return SemVer{}, versionError(text, "prerelease: "+err.Error())
		}
		v.Prerelease = ids
		core = core[:i]
	}

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return SemVer{}, versionError(text, "expected MAJOR.MINOR.PATCH")
	}

	nums := make([]uint64, 3)
	for i, p := range parts {
		n, err := parseNumber(p)
		if err != nil {
			return SemVer{}, versionError(text, err.Error())
		}
		nums[i] = n
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]

	return v, nil
}

// MustParseVersion is like ParseVersion but panics on error.
// Intended for tests and constants.
func MustParseVersion(text string) SemVer {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

func versionError(text, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidVersion, text, reason)
}

// parseNumber parses a numeric core component.
func parseNumber(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric component")
	}
	if !isDigits(s) {
		return 0, fmt.Errorf("non-numeric component %q", s)
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("leading zero in %q", s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("component %q out of range", s)
	}
	return n, nil
}

// splitIdentifiers splits a dot-separated prerelease or build field.
// Numeric prerelease identifiers must not have leading zeros; build
// identifiers may.
func splitIdentifiers(field string, prerelease bool) ([]string, error) {
	if field == "" {
		return nil, fmt.Errorf("empty field")
	}

	ids := strings.Split(field, ".")
	for _, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("empty identifier")
		}
		for _, r := range id {
			if !isIdentifierRune(r) {
				return nil, fmt.Errorf("invalid character %q in identifier %q", r, id)
			}
		}
		if prerelease && isDigits(id) && len(id) > 1 && id[0] == '0' {
			return nil, fmt.Errorf("leading zero in numeric identifier %q", id)
		}
	}
	return ids, nil
}

func isIdentifierRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '-'
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// String returns the canonical text form, including build metadata.
func (v SemVer) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Prerelease) > 0 {
		b.WriteString("-")
		b.WriteString(strings.Join(v.Prerelease, "."))
	}
	if len(v.Build) > 0 {
		b.WriteString("+")
		b.WriteString(strings.Join(v.Build, "."))
	}
	return b.String()
}

// IsPrerelease returns true if the version carries prerelease identifiers.
func (v SemVer) IsPrerelease() bool {
	return len(v.Prerelease) > 0
}

// Compare returns -1, 0 or +1 depending on whether v has lower, equal or
// higher precedence than o. Build metadata is ignored.
func (v SemVer) Compare(o SemVer) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Patch, o.Patch); c != 0 {
		return c
	}
	return comparePrerelease(v.Prerelease, o.Prerelease)
}

// CompareVersions is SemVer.Compare as a function, for use with slices.SortFunc.
func CompareVersions(a, b SemVer) int {
	return a.Compare(b)
}

// comparePrerelease orders prerelease fields. A version without a
// prerelease field ranks above any version that has one.
func comparePrerelease(a, b []string) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return 1
	case len(b) == 0:
		return -1
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// compareIdentifier compares a single prerelease identifier pair.
// Numeric identifiers have no leading zeros, so comparing length first and
// then text gives numeric order without overflow.
func compareIdentifier(a, b string) int {
	aNum, bNum := isDigits(a), isDigits(b)
	switch {
	case aNum && bNum:
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case aNum:
		return -1
	case bNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
