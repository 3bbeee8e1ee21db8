package events

import (
	"sync"

	"github.com/jrsteele09/go-auth-broker/sessions"
)

// ProvidersChanged is an informational delta of provider ids, not a snapshot.
type ProvidersChanged struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// SessionsChanged tags a provider's session delta with the provider id it
// belongs to.
type SessionsChanged struct {
	ProviderID string          `json:"providerID"`
	Change     sessions.Change `json:"change"`
}

// Bus fans change notifications out to local subscribers. Each broker owns
// its own Bus so that independent broker instances (for example in tests) do
// not cross-talk.
type Bus struct {
	mu           sync.Mutex
	nextID       int
	providerSubs map[int]func(ProvidersChanged)
	sessionSubs  map[int]func(SessionsChanged)
}

func NewBus() *Bus {
	return &Bus{
		providerSubs: make(map[int]func(ProvidersChanged)),
		sessionSubs:  make(map[int]func(SessionsChanged)),
	}
}

// SubscribeProvidersChanged registers fn and returns its unsubscribe
// function. Unsubscribing twice is safe.
func (b *Bus) SubscribeProvidersChanged(fn func(ProvidersChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.providerSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.providerSubs, id)
	}
}

// SubscribeSessionsChanged registers fn and returns its unsubscribe function.
func (b *Bus) SubscribeSessionsChanged(fn func(SessionsChanged)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.sessionSubs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.sessionSubs, id)
	}
}

// EmitProvidersChanged delivers the event to every current subscriber.
// Subscribers run outside the bus lock so they may unsubscribe themselves.
func (b *Bus) EmitProvidersChanged(event ProvidersChanged) {
	for _, fn := range b.providerSnapshot() {
		fn(event)
	}
}

// EmitSessionsChanged delivers the event to every current subscriber.
func (b *Bus) EmitSessionsChanged(event SessionsChanged) {
	for _, fn := range b.sessionSnapshot() {
		fn(event)
	}
}

func (b *Bus) providerSnapshot() []func(ProvidersChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]func(ProvidersChanged), 0, len(b.providerSubs))
	for _, fn := range b.providerSubs {
		subs = append(subs, fn)
	}
	return subs
}

func (b *Bus) sessionSnapshot() []func(SessionsChanged) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]func(SessionsChanged), 0, len(b.sessionSubs))
	for _, fn := range b.sessionSubs {
		subs = append(subs, fn)
	}
	return subs
}
