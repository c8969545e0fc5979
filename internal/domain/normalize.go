package domain

import "sort"

// Normalize rewrites category identifiers to the dense range 1..N while
// preserving the relative order of categories. The input is not modified.
//
// Example: categories {2, 5, 9} become {1, 2, 3}.
func Normalize(doc Document) Document {
	out := doc.Clone()

	ranks := make(map[int]int, 8)
	for i, k := range Categories(doc) {
		ranks[k] = i + 1
	}

	for i := range out.NavList {
		out.NavList[i].K = ranks[out.NavList[i].K]
	}
	return out
}

// Categories returns the distinct category values of doc in ascending order.
func Categories(doc Document) []int {
	seen := make(map[int]struct{}, 8)
	keys := make([]int, 0, 8)
	for _, e := range doc.NavList {
		if _, ok := seen[e.K]; ok {
			continue
		}
		seen[e.K] = struct{}{}
		keys = append(keys, e.K)
	}
	sort.Ints(keys)
	return keys
}

// IsNormalized reports whether the categories of doc are exactly 1..N.
func IsNormalized(doc Document) bool {
	for i, k := range Categories(doc) {
		if k != i+1 {
			return false
		}
	}
	return true
}

// FixURLs returns a copy of doc whose entry urls all carry a scheme.
func FixURLs(doc Document) Document {
	out := doc.Clone()
	for i := range out.NavList {
		out.NavList[i].URL = FixURLScheme(out.NavList[i].URL)
	}
	return out
}

// Canonical is the form every document takes before it is persisted or
// installed: dense categories and followable urls.
func Canonical(doc Document) Document {
	return FixURLs(Normalize(doc))
}
