package devkit_test

import (
	"context"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-broker/providers/devkit"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var signingKey = []byte("0123456789abcdef0123456789abcdef")

func TestLoginMintsVerifiableDevToken(t *testing.T) {
	provider, err := devkit.New("demo", "Demo", devkit.WithSigningKey(signingKey))
	require.NoError(t, err)

	session, err := provider.Login(context.Background(), []string{"repo", "read"})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Equal(t, []string{"repo", "read"}, session.Scopes)

	token, err := jwtlib.Parse(session.AccessToken, func(*jwtlib.Token) (any, error) {
		return signingKey, nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwtlib.MapClaims)
	require.True(t, ok)
	require.Equal(t, "read repo", claims["scope"])

	current, err := provider.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, current, 1)
}

func TestLoginUsesTokenSourceWhenConfigured(t *testing.T) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "bridged-token"})
	provider, err := devkit.New("demo", "Demo", devkit.WithTokenSource(ts))
	require.NoError(t, err)

	session, err := provider.Login(context.Background(), []string{"repo"})
	require.NoError(t, err)
	require.Equal(t, "bridged-token", session.AccessToken)
}

func TestLogoutRemovesSessionAndNotifies(t *testing.T) {
	provider, err := devkit.New("demo", "Demo")
	require.NoError(t, err)

	var changes []sessions.Change
	provider.SubscribeSessionsChanged(func(change sessions.Change) {
		changes = append(changes, change)
	})

	session, err := provider.Login(context.Background(), []string{"repo"})
	require.NoError(t, err)
	require.NoError(t, provider.Logout(context.Background(), session.ID))

	current, err := provider.Sessions(context.Background())
	require.NoError(t, err)
	require.Empty(t, current)

	require.Len(t, changes, 2)
	require.Equal(t, session.ID, changes[0].Added[0].ID)
	require.Equal(t, session.ID, changes[1].Removed[0].ID)

	require.Error(t, provider.Logout(context.Background(), session.ID))
}
