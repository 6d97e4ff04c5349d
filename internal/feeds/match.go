package feeds

import "strings"

// MatchesAny reports whether any keyword occurs in any of the texts,
// ignoring case. Empty keywords never match.
func MatchesAny(keywords []string, texts ...string) bool {
	lowered := make([]string, len(texts))
	for i, t := range texts {
		lowered[i] = strings.ToLower(t)
	}

	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		kw = strings.ToLower(kw)
		for _, t := range lowered {
			if strings.Contains(t, kw) {
				return true
			}
		}
	}
	return false
}
