package broker

import (
	"context"

	"github.com/jrsteele09/go-auth-broker/sessions"
)

// Caller identifies the plugin/extension on whose behalf a session is
// requested. The display name is what the coordinator shows in prompts.
type Caller struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// GetSessionOptions controls the consent/selection protocol for one request.
type GetSessionOptions struct {
	// CreateIfNone triggers the login flow when no session matches.
	CreateIfNone bool `json:"createIfNone"`
	// ClearSessionPreference asks the coordinator's selection UI to ignore
	// any previously remembered account choice.
	ClearSessionPreference bool `json:"clearSessionPreference"`
}

// SessionChoice is the coordinator's answer to a selection prompt.
type SessionChoice struct {
	ID string `json:"id"`
}

// Coordinator is the trusted host-side counterpart. It owns cross-process
// provider visibility and every user-facing prompt; the broker never renders
// UI itself. All calls suspend the calling flow until the host answers, and
// no call is retried: a denial or transport failure surfaces immediately.
type Coordinator interface {
	// Sessions lists the sessions of a provider registered on the host side.
	Sessions(ctx context.Context, providerID string) ([]sessions.Session, error)

	// GetSession runs the host's mirror of the consent protocol for a
	// provider this process does not hold locally. A nil session means
	// absent.
	GetSession(ctx context.Context, providerID string, scopes []string, caller Caller, opts GetSessionOptions) (*sessions.Session, error)

	// PromptSessionConsent asks the user to let callerName use the named
	// account with the named provider.
	PromptSessionConsent(ctx context.Context, providerID, accountName, providerName string, caller Caller) (bool, error)

	// PromptSelectSession shows the account picker over the candidate
	// sessions and returns the chosen session id.
	PromptSelectSession(ctx context.Context, providerID, providerName string, caller Caller, candidates []sessions.Session, scopes []string, clearPreference bool) (SessionChoice, error)

	// PromptLogin asks the user whether callerName may sign in to the named
	// provider at all.
	PromptLogin(ctx context.Context, providerName, callerName string) (bool, error)

	// MarkTrustedCaller records that the caller is now trusted for the
	// provider/account pair after a completed login.
	MarkTrustedCaller(ctx context.Context, providerID, accountName string, caller Caller) error

	// RequestNewSessionNotice tells the host a session was requested without
	// CreateIfNone, so it can surface a non-modal sign-in affordance.
	RequestNewSessionNotice(ctx context.Context, providerID string, scopes []string, caller Caller) error

	// Login and Logout target providers registered on the host side.
	Login(ctx context.Context, providerID string, scopes []string) (sessions.Session, error)
	Logout(ctx context.Context, providerID, sessionID string) error
}
