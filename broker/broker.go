package broker

import (
	"context"

	"github.com/jrsteele09/go-auth-broker/events"
	"github.com/jrsteele09/go-auth-broker/providers"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Broker mediates session requests between plugin code and the trusted host.
// Requests that target a locally registered provider run the consent protocol
// in-process; everything else is forwarded to the remote coordinator, which
// runs the mirror of the same protocol against its own providers.
//
// The broker forwards and waits; it never retries, never enforces a timeout
// of its own, and cannot abort a request once it has crossed the boundary.
type Broker struct {
	registry    *providers.Registry
	coordinator Coordinator
	bus         *events.Bus
	log         zerolog.Logger
}

func New(registry *providers.Registry, coordinator Coordinator, bus *events.Bus, log zerolog.Logger) (*Broker, error) {
	if registry == nil {
		return nil, errors.New("[broker.New] registry is required")
	}
	if coordinator == nil {
		return nil, errors.New("[broker.New] coordinator is required")
	}
	if bus == nil {
		return nil, errors.New("[broker.New] event bus is required")
	}
	return &Broker{
		registry:    registry,
		coordinator: coordinator,
		bus:         bus,
		log:         log,
	}, nil
}

// Sessions resolves the current sessions of a provider, local or remote.
// It never mutates state and is safe to call concurrently. Provider failures
// are returned as-is.
func (b *Broker) Sessions(ctx context.Context, providerID string) ([]sessions.Session, error) {
	if provider, ok := b.registry.Get(providerID); ok {
		return provider.Sessions(ctx)
	}
	return b.coordinator.Sessions(ctx, providerID)
}

// HasSessions reports whether the provider holds at least one session whose
// scope set equals the requested one, order ignored.
func (b *Broker) HasSessions(ctx context.Context, providerID string, scopes []string) (bool, error) {
	all, err := b.Sessions(ctx, providerID)
	if err != nil {
		return false, err
	}
	return len(sessions.MatchingSessions(all, scopes)) > 0, nil
}

// GetSession resolves a session for the caller, prompting through the
// coordinator where consent or account selection is needed. A nil session
// with a nil error means absent, which only the documented
// no-session-no-create paths produce. Concurrent calls for the same provider
// and scopes are not deduplicated; each one prompts on its own.
func (b *Broker) GetSession(ctx context.Context, caller Caller, providerID string, scopes []string, opts GetSessionOptions) (*sessions.Session, error) {
	provider, ok := b.registry.Get(providerID)
	if !ok {
		return b.coordinator.GetSession(ctx, providerID, scopes, caller, opts)
	}

	all, err := provider.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	matched := sessions.MatchingSessions(all, scopes)

	switch {
	case len(matched) > 0 && !provider.SupportsMultipleAccounts():
		return b.consentToSession(ctx, provider, caller, matched[0])
	case len(matched) > 0:
		return b.selectSession(ctx, provider, caller, matched, scopes, opts.ClearSessionPreference)
	case opts.CreateIfNone:
		return b.loginWithConsent(ctx, provider, caller, scopes)
	default:
		if err := b.coordinator.RequestNewSessionNotice(ctx, providerID, scopes, caller); err != nil {
			return nil, errors.Wrap(err, "[Broker.GetSession] coordinator.RequestNewSessionNotice")
		}
		return nil, nil
	}
}

// Login creates a session directly, bypassing the consent protocol. Trusted
// surfaces use it; plugin-facing code goes through GetSession.
func (b *Broker) Login(ctx context.Context, providerID string, scopes []string) (sessions.Session, error) {
	if provider, ok := b.registry.Get(providerID); ok {
		return provider.Login(ctx, scopes)
	}
	return b.coordinator.Login(ctx, providerID, scopes)
}

// Logout destroys a session on its owning provider, local or remote.
func (b *Broker) Logout(ctx context.Context, providerID, sessionID string) error {
	if provider, ok := b.registry.Get(providerID); ok {
		return provider.Logout(ctx, sessionID)
	}
	return b.coordinator.Logout(ctx, providerID, sessionID)
}

func (b *Broker) consentToSession(ctx context.Context, provider providers.Provider, caller Caller, session sessions.Session) (*sessions.Session, error) {
	granted, err := b.coordinator.PromptSessionConsent(ctx, provider.ID(), session.Account.DisplayName, provider.DisplayName(), caller)
	if err != nil {
		return nil, errors.Wrap(err, "[Broker.GetSession] coordinator.PromptSessionConsent")
	}
	if !granted {
		return nil, ConsentDeniedErr
	}
	return &session, nil
}

func (b *Broker) selectSession(ctx context.Context, provider providers.Provider, caller Caller, matched []sessions.Session, scopes []string, clearPreference bool) (*sessions.Session, error) {
	choice, err := b.coordinator.PromptSelectSession(ctx, provider.ID(), provider.DisplayName(), caller, matched, scopes, clearPreference)
	if err != nil {
		return nil, errors.Wrap(err, "[Broker.GetSession] coordinator.PromptSelectSession")
	}
	for i := range matched {
		if matched[i].ID == choice.ID {
			return &matched[i], nil
		}
	}
	// A choice outside the candidate set resolves to absent rather than an
	// error, but the protocol slip is worth a trace in the log.
	b.log.Warn().
		Str("provider_id", provider.ID()).
		Str("caller_id", caller.ID).
		Msg("coordinator selected a session outside the candidate set")
	return nil, nil
}

func (b *Broker) loginWithConsent(ctx context.Context, provider providers.Provider, caller Caller, scopes []string) (*sessions.Session, error) {
	granted, err := b.coordinator.PromptLogin(ctx, provider.DisplayName(), caller.DisplayName)
	if err != nil {
		return nil, errors.Wrap(err, "[Broker.GetSession] coordinator.PromptLogin")
	}
	if !granted {
		return nil, ConsentDeniedErr
	}

	session, err := provider.Login(ctx, scopes)
	if err != nil {
		return nil, err
	}

	if err := b.coordinator.MarkTrustedCaller(ctx, provider.ID(), session.Account.DisplayName, caller); err != nil {
		return nil, errors.Wrap(err, "[Broker.GetSession] coordinator.MarkTrustedCaller")
	}

	b.log.Debug().
		Str("provider_id", provider.ID()).
		Str("caller_id", caller.ID).
		Msg("created session after login consent")

	return &session, nil
}
