package coordinatorfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-broker/broker"
	"github.com/jrsteele09/go-auth-broker/providers"
	"github.com/jrsteele09/go-auth-broker/sessions"
)

var (
	_ broker.Coordinator = (*FakeCoordinator)(nil)
	_ providers.Remote   = (*FakeCoordinator)(nil)
)

type RegisteredProvider struct {
	ID                       string
	DisplayName              string
	SupportsMultipleAccounts bool
}

type ConsentPrompt struct {
	ProviderID   string
	AccountName  string
	ProviderName string
	Caller       broker.Caller
}

type SelectPrompt struct {
	ProviderID      string
	ProviderName    string
	Caller          broker.Caller
	Candidates      []sessions.Session
	Scopes          []string
	ClearPreference bool
}

type LoginPrompt struct {
	ProviderName string
	CallerName   string
}

type TrustedCaller struct {
	ProviderID  string
	AccountName string
	Caller      broker.Caller
}

type SessionNotice struct {
	ProviderID string
	Scopes     []string
	Caller     broker.Caller
}

type PushedChange struct {
	ProviderID string
	Change     sessions.Change
}

// FakeCoordinator is a scriptable in-memory stand-in for the host side. Set
// the answer fields before exercising the broker, then inspect the recorded
// prompt/call slices.
type FakeCoordinator struct {
	lock sync.Mutex

	// Scripted answers.
	ConsentGranted bool
	LoginGranted   bool
	Choice         broker.SessionChoice
	RemoteSession  *sessions.Session
	RemoteSessions map[string][]sessions.Session
	RemoteIDs      []string
	FailWith       error

	// Recorded traffic.
	Registered      map[string]RegisteredProvider
	Unregistered    []string
	ConsentPrompts  []ConsentPrompt
	SelectPrompts   []SelectPrompt
	LoginPrompts    []LoginPrompt
	TrustedCallers  []TrustedCaller
	SessionNotices  []SessionNotice
	PushedChanges   []PushedChange
	ForwardedGets   []string
	ForwardedLogins []string
	Logouts         []string
}

func NewFakeCoordinator() *FakeCoordinator {
	return &FakeCoordinator{
		ConsentGranted: true,
		LoginGranted:   true,
		RemoteSessions: make(map[string][]sessions.Session),
		Registered:     make(map[string]RegisteredProvider),
	}
}

func (f *FakeCoordinator) ProviderIDs(ctx context.Context) ([]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	ids := append([]string(nil), f.RemoteIDs...)
	for id := range f.Registered {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *FakeCoordinator) Sessions(ctx context.Context, providerID string) ([]sessions.Session, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	return f.RemoteSessions[providerID], nil
}

func (f *FakeCoordinator) GetSession(ctx context.Context, providerID string, scopes []string, caller broker.Caller, opts broker.GetSessionOptions) (*sessions.Session, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	f.ForwardedGets = append(f.ForwardedGets, providerID)
	return f.RemoteSession, nil
}

func (f *FakeCoordinator) PromptSessionConsent(ctx context.Context, providerID, accountName, providerName string, caller broker.Caller) (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return false, f.FailWith
	}
	f.ConsentPrompts = append(f.ConsentPrompts, ConsentPrompt{
		ProviderID:   providerID,
		AccountName:  accountName,
		ProviderName: providerName,
		Caller:       caller,
	})
	return f.ConsentGranted, nil
}

func (f *FakeCoordinator) PromptSelectSession(ctx context.Context, providerID, providerName string, caller broker.Caller, candidates []sessions.Session, scopes []string, clearPreference bool) (broker.SessionChoice, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return broker.SessionChoice{}, f.FailWith
	}
	f.SelectPrompts = append(f.SelectPrompts, SelectPrompt{
		ProviderID:      providerID,
		ProviderName:    providerName,
		Caller:          caller,
		Candidates:      append([]sessions.Session(nil), candidates...),
		Scopes:          append([]string(nil), scopes...),
		ClearPreference: clearPreference,
	})
	return f.Choice, nil
}

func (f *FakeCoordinator) PromptLogin(ctx context.Context, providerName, callerName string) (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return false, f.FailWith
	}
	f.LoginPrompts = append(f.LoginPrompts, LoginPrompt{ProviderName: providerName, CallerName: callerName})
	return f.LoginGranted, nil
}

func (f *FakeCoordinator) MarkTrustedCaller(ctx context.Context, providerID, accountName string, caller broker.Caller) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.TrustedCallers = append(f.TrustedCallers, TrustedCaller{
		ProviderID:  providerID,
		AccountName: accountName,
		Caller:      caller,
	})
	return nil
}

func (f *FakeCoordinator) RequestNewSessionNotice(ctx context.Context, providerID string, scopes []string, caller broker.Caller) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.SessionNotices = append(f.SessionNotices, SessionNotice{
		ProviderID: providerID,
		Scopes:     append([]string(nil), scopes...),
		Caller:     caller,
	})
	return nil
}

func (f *FakeCoordinator) Login(ctx context.Context, providerID string, scopes []string) (sessions.Session, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return sessions.Session{}, f.FailWith
	}
	f.ForwardedLogins = append(f.ForwardedLogins, providerID)
	if f.RemoteSession != nil {
		return *f.RemoteSession, nil
	}
	return sessions.Session{}, nil
}

func (f *FakeCoordinator) Logout(ctx context.Context, providerID, sessionID string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.Logouts = append(f.Logouts, providerID+"/"+sessionID)
	return nil
}

func (f *FakeCoordinator) RegisterProvider(ctx context.Context, id, displayName string, supportsMultipleAccounts bool) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.Registered[id] = RegisteredProvider{
		ID:                       id,
		DisplayName:              displayName,
		SupportsMultipleAccounts: supportsMultipleAccounts,
	}
	return nil
}

func (f *FakeCoordinator) UnregisterProvider(ctx context.Context, id string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	delete(f.Registered, id)
	f.Unregistered = append(f.Unregistered, id)
	return nil
}

func (f *FakeCoordinator) PushSessionsChanged(ctx context.Context, providerID string, change sessions.Change) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	f.PushedChanges = append(f.PushedChanges, PushedChange{ProviderID: providerID, Change: change})
	return nil
}
