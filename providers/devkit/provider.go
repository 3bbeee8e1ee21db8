// Package devkit provides an in-memory authentication provider for local
// development and tests. Sessions live only for the process lifetime and the
// access tokens it mints are self-signed development tokens with no value
// outside this process.
package devkit

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-broker/providers"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	signingKeyLength = 32
	devTokenExpiry   = time.Hour
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var _ providers.Provider = (*Provider)(nil)

type Provider struct {
	id               string
	displayName      string
	multipleAccounts bool
	account          sessions.Account
	signingKey       []byte
	tokenSource      oauth2.TokenSource

	lock        sync.Mutex
	current     []sessions.Session
	subs        map[int]func(sessions.Change)
	nextSub     int
	loginErr    error
	sessionsErr error
}

type Option func(*Provider)

// WithMultipleAccounts marks the provider as able to hold sessions for more
// than one account.
func WithMultipleAccounts() Option {
	return func(p *Provider) { p.multipleAccounts = true }
}

// WithAccount sets the account new sessions are attributed to.
func WithAccount(account sessions.Account) Option {
	return func(p *Provider) { p.account = account }
}

// WithTokenSource backs new sessions with tokens from ts instead of minted
// development tokens, so real credentials can be bridged in without the
// broker knowing how they are obtained.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(p *Provider) { p.tokenSource = ts }
}

// WithSigningKey fixes the dev-token signing key (primarily for tests).
func WithSigningKey(key []byte) Option {
	return func(p *Provider) { p.signingKey = key }
}

func New(id, displayName string, options ...Option) (*Provider, error) {
	p := &Provider{
		id:          id,
		displayName: displayName,
		account:     sessions.Account{ID: "dev-user", DisplayName: "Dev User"},
		subs:        make(map[int]func(sessions.Change)),
	}
	for _, opt := range options {
		opt(p)
	}
	if len(p.signingKey) == 0 {
		key := make([]byte, signingKeyLength)
		if _, err := rand.Read(key); err != nil {
			return nil, errors.Wrap(err, "[devkit.New] rand.Read")
		}
		p.signingKey = key
	}
	return p, nil
}

func (p *Provider) ID() string                     { return p.id }
func (p *Provider) DisplayName() string            { return p.displayName }
func (p *Provider) SupportsMultipleAccounts() bool { return p.multipleAccounts }

func (p *Provider) Sessions(ctx context.Context) ([]sessions.Session, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.sessionsErr != nil {
		return nil, p.sessionsErr
	}
	return append([]sessions.Session(nil), p.current...), nil
}

func (p *Provider) Login(ctx context.Context, scopes []string) (sessions.Session, error) {
	p.lock.Lock()
	loginErr := p.loginErr
	p.lock.Unlock()
	if loginErr != nil {
		return sessions.Session{}, loginErr
	}

	accessToken, err := p.accessToken(ctx, scopes)
	if err != nil {
		return sessions.Session{}, err
	}

	session := sessions.Session{
		ID:          uuid.New().String(),
		AccessToken: accessToken,
		Scopes:      append([]string(nil), scopes...),
		Account:     p.account,
	}

	p.lock.Lock()
	p.current = append(p.current, session)
	p.lock.Unlock()
	p.emit(sessions.Change{Added: []sessions.Session{session}})

	return session, nil
}

func (p *Provider) Logout(ctx context.Context, sessionID string) error {
	p.lock.Lock()
	removed := -1
	for i, session := range p.current {
		if session.ID == sessionID {
			removed = i
			break
		}
	}
	if removed < 0 {
		p.lock.Unlock()
		return errors.Errorf("[devkit.Logout] no session with id %q", sessionID)
	}
	session := p.current[removed]
	p.current = append(p.current[:removed], p.current[removed+1:]...)
	p.lock.Unlock()

	p.emit(sessions.Change{Removed: []sessions.Session{session}})
	return nil
}

func (p *Provider) SubscribeSessionsChanged(fn func(sessions.Change)) func() {
	p.lock.Lock()
	defer p.lock.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.lock.Lock()
		defer p.lock.Unlock()
		delete(p.subs, id)
	}
}

// AddSession injects a pre-built session, firing the change notification the
// same way Login does. Test fixtures use it to start from a known state.
func (p *Provider) AddSession(session sessions.Session) {
	p.lock.Lock()
	p.current = append(p.current, session)
	p.lock.Unlock()
	p.emit(sessions.Change{Added: []sessions.Session{session}})
}

// FailLoginWith makes subsequent Login calls fail with err. Pass nil to
// clear.
func (p *Provider) FailLoginWith(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.loginErr = err
}

// FailSessionsWith makes subsequent Sessions calls fail with err. Pass nil to
// clear.
func (p *Provider) FailSessionsWith(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.sessionsErr = err
}

func (p *Provider) emit(change sessions.Change) {
	p.lock.Lock()
	subs := make([]func(sessions.Change), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.lock.Unlock()
	for _, fn := range subs {
		fn(change)
	}
}

func (p *Provider) accessToken(ctx context.Context, scopes []string) (string, error) {
	if p.tokenSource != nil {
		token, err := p.tokenSource.Token()
		if err != nil {
			return "", errors.Wrap(err, "[devkit.Login] tokenSource.Token")
		}
		return token.AccessToken, nil
	}

	claims := jwtlib.MapClaims{
		"iss":   "go-auth-broker/devkit",
		"sub":   p.account.ID,
		"scope": sessions.ScopeKey(scopes),
		"iat":   NowTimeFunc().Unix(),
		"exp":   NowTimeFunc().Add(devTokenExpiry).Unix(),
		"jti":   uuid.New().String(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(p.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "[devkit.Login] failed to sign dev token")
	}
	return signed, nil
}
