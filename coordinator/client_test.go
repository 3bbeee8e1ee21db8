package coordinator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-auth-broker/broker"
	"github.com/jrsteele09/go-auth-broker/coordinator"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/stretchr/testify/require"
)

type hostStub struct {
	t        *testing.T
	mux      *http.ServeMux
	requests []string
}

func newHostStub(t *testing.T) *hostStub {
	t.Helper()
	h := &hostStub{t: t, mux: http.NewServeMux()}
	return h
}

func (h *hostStub) handle(op string, status int, response any) {
	h.mux.HandleFunc("POST /rpc/"+op, func(w http.ResponseWriter, r *http.Request) {
		h.requests = append(h.requests, op)
		if response == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(h.t, json.NewEncoder(w).Encode(response))
	})
}

func (h *hostStub) client(t *testing.T) (*coordinator.Client, func()) {
	t.Helper()
	server := httptest.NewServer(h.mux)
	client, err := coordinator.NewClient(server.URL)
	require.NoError(t, err)
	return client, server.Close
}

func TestClientGetSessionRoundTrip(t *testing.T) {
	host := newHostStub(t)
	host.handle("getSession", http.StatusOK, sessions.Session{ID: "r1", Scopes: []string{"repo"}})
	client, done := host.client(t)
	defer done()

	session, err := client.GetSession(context.Background(), "github", []string{"repo"},
		broker.Caller{ID: "ext", DisplayName: "Ext"}, broker.GetSessionOptions{CreateIfNone: true})
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, "r1", session.ID)
	require.Equal(t, []string{"getSession"}, host.requests)
}

func TestClientGetSessionAbsentOnNoContent(t *testing.T) {
	host := newHostStub(t)
	host.handle("getSession", http.StatusNoContent, nil)
	client, done := host.client(t)
	defer done()

	session, err := client.GetSession(context.Background(), "github", []string{"repo"}, broker.Caller{}, broker.GetSessionOptions{})
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestClientSurfacesHostErrors(t *testing.T) {
	host := newHostStub(t)
	host.mux.HandleFunc("POST /rpc/logout", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unable to find authentication provider with handle: github", http.StatusNotFound)
	})
	client, done := host.client(t)
	defer done()

	err := client.Logout(context.Background(), "github", "s1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.Contains(t, err.Error(), "Unable to find authentication provider with handle: github")
}

func TestClientPromptsAndRegistry(t *testing.T) {
	host := newHostStub(t)
	host.handle("promptSessionConsent", http.StatusOK, map[string]bool{"granted": true})
	host.handle("promptLogin", http.StatusOK, map[string]bool{"granted": false})
	host.handle("promptSelectSession", http.StatusOK, broker.SessionChoice{ID: "s2"})
	host.handle("registerProvider", http.StatusNoContent, nil)
	host.handle("unregisterProvider", http.StatusNoContent, nil)
	host.handle("providerIDs", http.StatusOK, map[string][]string{"ids": {"github"}})
	client, done := host.client(t)
	defer done()

	ctx := context.Background()

	granted, err := client.PromptSessionConsent(ctx, "github", "John", "GitHub", broker.Caller{ID: "ext"})
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = client.PromptLogin(ctx, "GitHub", "Ext")
	require.NoError(t, err)
	require.False(t, granted)

	choice, err := client.PromptSelectSession(ctx, "github", "GitHub", broker.Caller{}, nil, []string{"repo"}, false)
	require.NoError(t, err)
	require.Equal(t, "s2", choice.ID)

	require.NoError(t, client.RegisterProvider(ctx, "demo", "Demo", false))
	require.NoError(t, client.UnregisterProvider(ctx, "demo"))

	ids, err := client.ProviderIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"github"}, ids)
}
