package utils

import (
	"sort"
	"time"
)

// SortDates orders dates in place and returns the slice.
func SortDates(dates []time.Time, asc bool) []time.Time {
	sort.Slice(dates, func(i, j int) bool {
		if asc {
			return dates[i].Before(dates[j])
		}
		return dates[i].After(dates[j])
	})
	return dates
}

// SortedDateKeys returns the keys of a date-indexed map in order. The
// timelapse stitcher relies on it to keep frames chronological.
func SortedDateKeys[T any](m map[time.Time]T, asc bool) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return SortDates(keys, asc)
}

// SortedKeys returns the string keys of a map in lexical order, so loops
// over manifests produce stable output.
func SortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
