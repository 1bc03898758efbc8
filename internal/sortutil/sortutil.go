package sortutil

import "sort"

// StablePathSort returns a new slice containing the input paths sorted
// lexicographically. The original slice is not modified.
func StablePathSort(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}

// UniqueSorted returns the sorted input with duplicates and empty strings
// removed. Keeps diagnostic listings deterministic.
func UniqueSorted(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
