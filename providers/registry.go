package providers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/go-auth-broker/events"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Registry tracks locally registered authentication providers and keeps the
// remote coordinator's mirror in step: registrations and removals are
// published remotely, and each provider's session changes are forwarded both
// onto the local bus and across the boundary.
type Registry struct {
	remote Remote
	bus    *events.Bus
	log    zerolog.Logger

	mu       sync.RWMutex
	registry map[string]Provider
}

func NewRegistry(remote Remote, bus *events.Bus, log zerolog.Logger) (*Registry, error) {
	if remote == nil {
		return nil, errors.New("[NewRegistry] remote coordinator is required")
	}
	if bus == nil {
		return nil, errors.New("[NewRegistry] event bus is required")
	}
	return &Registry{
		remote:   remote,
		bus:      bus,
		log:      log,
		registry: make(map[string]Provider),
	}, nil
}

// Register stores the provider, subscribes to its session changes and
// publishes the registration to the remote coordinator. The returned
// Registration is the only way to undo a registration; there is deliberately
// no Unregister(id) so that cleanup stays with whoever registered.
func (r *Registry) Register(ctx context.Context, provider Provider) (*Registration, error) {
	if provider == nil {
		return nil, errors.New("[Registry.Register] provider is required")
	}
	id := strings.TrimSpace(provider.ID())
	if id == "" {
		return nil, errors.New("[Registry.Register] provider id is required")
	}

	r.mu.Lock()
	if _, exists := r.registry[id]; exists {
		r.mu.Unlock()
		return nil, &DuplicateProviderError{ID: id}
	}
	r.registry[id] = provider
	r.mu.Unlock()

	unsubscribe := provider.SubscribeSessionsChanged(func(change sessions.Change) {
		r.bus.EmitSessionsChanged(events.SessionsChanged{ProviderID: id, Change: change})
		// The provider callback has no caller to hand a failure back to, so a
		// failed push is logged and the local event stands.
		if err := r.remote.PushSessionsChanged(context.Background(), id, change); err != nil {
			r.log.Warn().Err(err).Str("provider_id", id).Msg("failed to push session change to coordinator")
		}
	})

	if err := r.remote.RegisterProvider(ctx, id, provider.DisplayName(), provider.SupportsMultipleAccounts()); err != nil {
		unsubscribe()
		r.mu.Lock()
		delete(r.registry, id)
		r.mu.Unlock()
		return nil, errors.Wrap(err, "[Registry.Register] remote registration failed")
	}

	r.log.Info().Str("provider_id", id).Msg("registered authentication provider")

	return &Registration{registry: r, id: id, unsubscribe: unsubscribe}, nil
}

// Get returns the local provider for id, if any.
func (r *Registry) Get(providerID string) (Provider, bool) {
	r.mu.RLock()
	provider, ok := r.registry[providerID]
	r.mu.RUnlock()
	return provider, ok
}

// LocalIDs returns the locally registered provider ids, sorted.
func (r *Registry) LocalIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.registry))
	for id := range r.registry {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// AllIDs asks the remote coordinator for the full set of known provider ids.
// The coordinator is the system of record for cross-process visibility, so
// the local ids are a subset of what it returns.
func (r *Registry) AllIDs(ctx context.Context) ([]string, error) {
	ids, err := r.remote.ProviderIDs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[Registry.AllIDs] coordinator.ProviderIDs")
	}
	return ids, nil
}

// Registration is the disposer capability handed out by Register.
type Registration struct {
	registry    *Registry
	id          string
	unsubscribe func()
	once        sync.Once
}

// Dispose unsubscribes the session-change listener, removes the local entry
// and notifies the remote coordinator of the removal. A second call is a
// no-op returning nil.
func (reg *Registration) Dispose(ctx context.Context) error {
	var err error
	reg.once.Do(func() {
		reg.unsubscribe()
		reg.registry.mu.Lock()
		delete(reg.registry.registry, reg.id)
		reg.registry.mu.Unlock()
		if remoteErr := reg.registry.remote.UnregisterProvider(ctx, reg.id); remoteErr != nil {
			err = errors.Wrap(remoteErr, "[Registration.Dispose] remote unregistration failed")
			return
		}
		reg.registry.log.Info().Str("provider_id", reg.id).Msg("unregistered authentication provider")
	})
	return err
}
