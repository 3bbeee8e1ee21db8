package sessions_test

import (
	"testing"

	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/stretchr/testify/require"
)

func TestScopeKeyIsOrderIndependent(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		held      []string
		match     bool
	}{
		{
			name:      "same order",
			requested: []string{"repo", "read"},
			held:      []string{"repo", "read"},
			match:     true,
		},
		{
			name:      "reversed order",
			requested: []string{"repo", "read"},
			held:      []string{"read", "repo"},
			match:     true,
		},
		{
			name:      "different scopes",
			requested: []string{"repo"},
			held:      []string{"read"},
			match:     false,
		},
		{
			name:      "subset does not match",
			requested: []string{"repo"},
			held:      []string{"repo", "read"},
			match:     false,
		},
		{
			name:      "case sensitive",
			requested: []string{"Repo"},
			held:      []string{"repo"},
			match:     false,
		},
		{
			name:      "both empty",
			requested: nil,
			held:      nil,
			match:     true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.match, sessions.ScopesMatch(tc.requested, tc.held))
		})
	}
}

func TestScopeKeyDoesNotMutateInput(t *testing.T) {
	scopes := []string{"repo", "read"}
	_ = sessions.ScopeKey(scopes)
	require.Equal(t, []string{"repo", "read"}, scopes)
}

func TestMatchingSessions(t *testing.T) {
	all := []sessions.Session{
		{ID: "s1", Scopes: []string{"read", "repo"}},
		{ID: "s2", Scopes: []string{"repo"}},
		{ID: "s3", Scopes: []string{"repo", "read"}},
	}

	matched := sessions.MatchingSessions(all, []string{"repo", "read"})
	require.Len(t, matched, 2)
	require.Equal(t, "s1", matched[0].ID)
	require.Equal(t, "s3", matched[1].ID)

	require.Empty(t, sessions.MatchingSessions(all, []string{"write"}))
}
