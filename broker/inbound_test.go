package broker_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-auth-broker/broker"
	"github.com/jrsteele09/go-auth-broker/events"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/stretchr/testify/require"
)

func TestInboundOperationsRequireLocalProvider(t *testing.T) {
	f := setupBrokerFixture(t)
	ctx := context.Background()

	var notFound *broker.ProviderNotFoundError

	_, err := f.inbound.Login(ctx, "missing", []string{"repo"})
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "Unable to find authentication provider with handle: missing", err.Error())

	err = f.inbound.Logout(ctx, "missing", "s1")
	require.ErrorAs(t, err, &notFound)

	_, err = f.inbound.Sessions(ctx, "missing")
	require.ErrorAs(t, err, &notFound)

	_, err = f.inbound.AccessToken(ctx, "missing", "s1")
	require.ErrorAs(t, err, &notFound)
}

func TestInboundLoginAndSessions(t *testing.T) {
	f := setupBrokerFixture(t)
	f.registerProvider(t, "demo")
	ctx := context.Background()

	created, err := f.inbound.Login(ctx, "demo", []string{"repo"})
	require.NoError(t, err)
	require.Equal(t, []string{"repo"}, created.Scopes)

	current, err := f.inbound.Sessions(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, current, 1)

	require.NoError(t, f.inbound.Logout(ctx, "demo", created.ID))
	current, err = f.inbound.Sessions(ctx, "demo")
	require.NoError(t, err)
	require.Empty(t, current)
}

func TestInboundAccessToken(t *testing.T) {
	f := setupBrokerFixture(t)
	provider := f.registerProvider(t, "demo")
	provider.AddSession(sessions.Session{ID: "s1", AccessToken: "secret-token", Scopes: []string{"repo"}})

	token, err := f.inbound.AccessToken(context.Background(), "demo", "s1")
	require.NoError(t, err)
	require.Equal(t, "secret-token", token)

	_, err = f.inbound.AccessToken(context.Background(), "demo", "bad-id")
	var sessionNotFound *broker.SessionNotFoundError
	require.ErrorAs(t, err, &sessionNotFound)
	require.Equal(t, "bad-id", sessionNotFound.SessionID)
}

func TestInboundEventsAreReEmittedLocally(t *testing.T) {
	f := setupBrokerFixture(t)

	var sessionEvents []events.SessionsChanged
	var providerEvents []events.ProvidersChanged
	f.bus.SubscribeSessionsChanged(func(e events.SessionsChanged) { sessionEvents = append(sessionEvents, e) })
	f.bus.SubscribeProvidersChanged(func(e events.ProvidersChanged) { providerEvents = append(providerEvents, e) })

	f.inbound.SessionsChanged("github", sessions.Change{Added: []sessions.Session{{ID: "r1"}}})
	f.inbound.ProvidersChanged([]string{"github"}, []string{"azure"})

	require.Len(t, sessionEvents, 1)
	require.Equal(t, "github", sessionEvents[0].ProviderID)
	require.Len(t, providerEvents, 1)
	require.Equal(t, []string{"github"}, providerEvents[0].Added)
	require.Equal(t, []string{"azure"}, providerEvents[0].Removed)

	// A pushed event is re-broadcast only; nothing is forwarded back out.
	require.Empty(t, f.coordinator.PushedChanges)
}
