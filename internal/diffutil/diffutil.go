// Package diffutil renders unified diffs for diagnostic reports. It uses
// github.com/pmezard/go-difflib/difflib to produce classic unified output
// (---/+++ headers, @@ hunks, lines prefixed with ' ', '-', '+').
package diffutil

import (
	difflib "github.com/pmezard/go-difflib/difflib"
)

// Lists produces a unified diff between two string lists, one element per
// line. aName and bName label the two sides. Returns "" when the lists are
// equal or when diff generation fails (diagnostics are best-effort).
func Lists(aName, bName string, a, b []string) string {
	u := difflib.UnifiedDiff{
		A:        withNL(a),
		B:        withNL(b),
		FromFile: aName,
		ToFile:   bName,
		Context:  2,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return s
}

// withNL terminates each element with '\n', which produces better hunks.
func withNL(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s + "\n"
	}
	return out
}
