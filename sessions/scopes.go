package sessions

import (
	"sort"
	"strings"
)

// ScopeKey reduces a scope set to its canonical comparison form: the scopes
// sorted and joined with single spaces. Matching is order-independent but
// case- and exact-string-sensitive, so "Repo" and "repo" produce different
// keys.
func ScopeKey(scopes []string) string {
	sorted := append([]string(nil), scopes...)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// ScopesMatch reports whether two scope sets contain the same scopes,
// ignoring order.
func ScopesMatch(requested, held []string) bool {
	return ScopeKey(requested) == ScopeKey(held)
}

// MatchingSessions filters sessions down to those whose scope set equals the
// requested set.
func MatchingSessions(all []Session, scopes []string) []Session {
	key := ScopeKey(scopes)
	var matched []Session
	for _, session := range all {
		if ScopeKey(session.Scopes) == key {
			matched = append(matched, session)
		}
	}
	return matched
}
