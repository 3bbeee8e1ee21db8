package providers

import (
	"context"

	"github.com/jrsteele09/go-auth-broker/sessions"
)

// Provider is the capability set an authentication provider implementation
// exposes to the broker. Implementations own their sessions entirely; the
// broker only lists, creates and destroys them through this interface and
// never inspects how they are produced.
type Provider interface {
	// ID returns the provider's stable identifier, unique within a registry.
	ID() string
	// DisplayName returns the human-readable provider name used in prompts.
	DisplayName() string
	// SupportsMultipleAccounts reports whether the provider can hold
	// sessions for more than one account at a time.
	SupportsMultipleAccounts() bool
	// Sessions lists the provider's current sessions.
	Sessions(ctx context.Context) ([]sessions.Session, error)
	// Login creates a new session carrying the requested scopes.
	Login(ctx context.Context, scopes []string) (sessions.Session, error)
	// Logout destroys the session with the given id.
	Logout(ctx context.Context, sessionID string) error
	// SubscribeSessionsChanged registers fn to be called whenever the
	// provider's session list changes and returns its unsubscribe function.
	SubscribeSessionsChanged(fn func(sessions.Change)) (unsubscribe func())
}

// Remote is the slice of the remote coordinator the registry depends on: the
// host-side mirror of provider registrations and the outbound session-change
// push.
type Remote interface {
	RegisterProvider(ctx context.Context, id, displayName string, supportsMultipleAccounts bool) error
	UnregisterProvider(ctx context.Context, id string) error
	PushSessionsChanged(ctx context.Context, providerID string, change sessions.Change) error
	ProviderIDs(ctx context.Context) ([]string, error)
}
