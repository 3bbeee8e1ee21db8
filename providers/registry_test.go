package providers_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-auth-broker/broker/coordinatorfakes"
	"github.com/jrsteele09/go-auth-broker/events"
	"github.com/jrsteele09/go-auth-broker/providers"
	"github.com/jrsteele09/go-auth-broker/providers/devkit"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type registryFixture struct {
	coordinator *coordinatorfakes.FakeCoordinator
	bus         *events.Bus
	registry    *providers.Registry
}

func setupRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()

	coordinator := coordinatorfakes.NewFakeCoordinator()
	bus := events.NewBus()
	registry, err := providers.NewRegistry(coordinator, bus, zerolog.Nop())
	require.NoError(t, err)

	return &registryFixture{coordinator: coordinator, bus: bus, registry: registry}
}

func newDemoProvider(t *testing.T, id string, options ...devkit.Option) *devkit.Provider {
	t.Helper()
	provider, err := devkit.New(id, "Demo "+id, options...)
	require.NoError(t, err)
	return provider
}

func TestRegisterPublishesToCoordinator(t *testing.T) {
	f := setupRegistryFixture(t)

	provider := newDemoProvider(t, "demo", devkit.WithMultipleAccounts())
	registration, err := f.registry.Register(context.Background(), provider)
	require.NoError(t, err)
	require.NotNil(t, registration)

	require.Equal(t, []string{"demo"}, f.registry.LocalIDs())

	published, ok := f.coordinator.Registered["demo"]
	require.True(t, ok)
	require.Equal(t, "Demo demo", published.DisplayName)
	require.True(t, published.SupportsMultipleAccounts)
}

func TestRegisterRejectsDuplicateID(t *testing.T) {
	f := setupRegistryFixture(t)

	first := newDemoProvider(t, "demo")
	_, err := f.registry.Register(context.Background(), first)
	require.NoError(t, err)

	second := newDemoProvider(t, "demo")
	_, err = f.registry.Register(context.Background(), second)

	var dup *providers.DuplicateProviderError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "demo", dup.ID)

	// The first registration must survive the collision.
	got, ok := f.registry.Get("demo")
	require.True(t, ok)
	require.Same(t, first, got.(*devkit.Provider))
}

func TestRegisterRollsBackWhenRemotePublishFails(t *testing.T) {
	f := setupRegistryFixture(t)
	f.coordinator.FailWith = errors.New("host unreachable")

	_, err := f.registry.Register(context.Background(), newDemoProvider(t, "demo"))
	require.Error(t, err)
	require.Empty(t, f.registry.LocalIDs())
}

func TestProviderChangesAreForwardedUntilDisposed(t *testing.T) {
	f := setupRegistryFixture(t)

	var received []events.SessionsChanged
	f.bus.SubscribeSessionsChanged(func(e events.SessionsChanged) {
		received = append(received, e)
	})

	provider := newDemoProvider(t, "demo")
	registration, err := f.registry.Register(context.Background(), provider)
	require.NoError(t, err)

	provider.AddSession(sessions.Session{ID: "s1", Scopes: []string{"repo"}})
	require.Len(t, received, 1)
	require.Equal(t, "demo", received[0].ProviderID)
	require.Len(t, f.coordinator.PushedChanges, 1)

	require.NoError(t, registration.Dispose(context.Background()))
	require.Empty(t, f.registry.LocalIDs())
	require.Equal(t, []string{"demo"}, f.coordinator.Unregistered)

	// Events from the disposed provider no longer reach the bus.
	provider.AddSession(sessions.Session{ID: "s2", Scopes: []string{"repo"}})
	require.Len(t, received, 1)

	// Double disposal is a no-op.
	require.NoError(t, registration.Dispose(context.Background()))
	require.Equal(t, []string{"demo"}, f.coordinator.Unregistered)
}

func TestAllIDsComeFromCoordinator(t *testing.T) {
	f := setupRegistryFixture(t)
	f.coordinator.RemoteIDs = []string{"github", "azure"}

	_, err := f.registry.Register(context.Background(), newDemoProvider(t, "demo"))
	require.NoError(t, err)

	ids, err := f.registry.AllIDs(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"github", "azure", "demo"}, ids)
}
