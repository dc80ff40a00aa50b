package changelog

import "slices"

// Order returns a copy of releases sorted by descending version precedence.
// The sort is stable: releases of equal precedence, such as versions that
// only differ in build metadata, keep their relative order.
func Order(releases []Release) []Release {
	ordered := make([]Release, len(releases))
	copy(ordered, releases)

	slices.SortStableFunc(ordered, func(a, b Release) int {
		return b.Version.Compare(a.Version)
	})

	return ordered
}
