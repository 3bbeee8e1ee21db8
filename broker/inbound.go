package broker

import (
	"context"

	"github.com/jrsteele09/go-auth-broker/events"
	"github.com/jrsteele09/go-auth-broker/sessions"
)

// Inbound is the entry surface the remote coordinator invokes into this
// process when a locally registered provider is the target of a request that
// originated elsewhere. Unlike the Broker's own operations, these never fall
// back across the boundary: a provider that is not local is an error here.
type Inbound struct {
	broker *Broker
}

func NewInbound(b *Broker) *Inbound {
	return &Inbound{broker: b}
}

// Login creates a session on the local provider with the requested scopes.
func (in *Inbound) Login(ctx context.Context, providerID string, scopes []string) (sessions.Session, error) {
	provider, ok := in.broker.registry.Get(providerID)
	if !ok {
		return sessions.Session{}, &ProviderNotFoundError{Handle: providerID}
	}
	return provider.Login(ctx, scopes)
}

// Logout destroys a session on the local provider.
func (in *Inbound) Logout(ctx context.Context, providerID, sessionID string) error {
	provider, ok := in.broker.registry.Get(providerID)
	if !ok {
		return &ProviderNotFoundError{Handle: providerID}
	}
	return provider.Logout(ctx, sessionID)
}

// Sessions lists the local provider's current sessions.
func (in *Inbound) Sessions(ctx context.Context, providerID string) ([]sessions.Session, error) {
	provider, ok := in.broker.registry.Get(providerID)
	if !ok {
		return nil, &ProviderNotFoundError{Handle: providerID}
	}
	return provider.Sessions(ctx)
}

// AccessToken returns the access token of one current session of the local
// provider. The token is handed back verbatim and is never logged.
func (in *Inbound) AccessToken(ctx context.Context, providerID, sessionID string) (string, error) {
	provider, ok := in.broker.registry.Get(providerID)
	if !ok {
		return "", &ProviderNotFoundError{Handle: providerID}
	}
	all, err := provider.Sessions(ctx)
	if err != nil {
		return "", err
	}
	for _, session := range all {
		if session.ID == sessionID {
			return session.AccessToken, nil
		}
	}
	return "", &SessionNotFoundError{ProviderID: providerID, SessionID: sessionID}
}

// SessionsChanged re-emits a session delta pushed from the remote side,
// tagged with the provider it belongs to. No further processing happens; in
// particular the consent protocol is not re-triggered.
func (in *Inbound) SessionsChanged(providerID string, change sessions.Change) {
	in.broker.bus.EmitSessionsChanged(events.SessionsChanged{ProviderID: providerID, Change: change})
}

// ProvidersChanged re-emits a provider-list delta pushed from the remote
// side.
func (in *Inbound) ProvidersChanged(added, removed []string) {
	in.broker.bus.EmitProvidersChanged(events.ProvidersChanged{Added: added, Removed: removed})
}
