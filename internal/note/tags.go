package note

import "strings"

// NormalizeTagNames trims names, drops blanks and collapses duplicates while
// keeping first-seen order. Matching is case-sensitive.
func NormalizeTagNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))

	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
