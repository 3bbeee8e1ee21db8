// Package coordinator contains the HTTP/JSON client for a remote coordinator
// endpoint. The broker core only depends on the broker.Coordinator and
// providers.Remote interfaces; this package is the repo's reference transport
// behind those contracts. Hosts embedding the broker in-process can ignore it
// and implement the interfaces directly.
package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-broker/broker"
	"github.com/jrsteele09/go-auth-broker/providers"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/pkg/errors"
)

var (
	_ broker.Coordinator = (*Client)(nil)
	_ providers.Remote   = (*Client)(nil)
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for tests
// and for callers that need custom transports).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[coordinator.NewClient] base URL is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client-side timeout; consent prompts can sit open for minutes.
		httpClient: &http.Client{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

type sessionsRequest struct {
	ProviderID string `json:"providerID"`
}

type sessionsResponse struct {
	Sessions []sessions.Session `json:"sessions"`
}

type providerIDsResponse struct {
	IDs []string `json:"ids"`
}

type getSessionRequest struct {
	ProviderID string                   `json:"providerID"`
	Scopes     []string                 `json:"scopes"`
	Caller     broker.Caller            `json:"caller"`
	Options    broker.GetSessionOptions `json:"options"`
}

type consentRequest struct {
	ProviderID   string        `json:"providerID"`
	AccountName  string        `json:"accountName"`
	ProviderName string        `json:"providerName"`
	Caller       broker.Caller `json:"caller"`
}

type selectSessionRequest struct {
	ProviderID      string             `json:"providerID"`
	ProviderName    string             `json:"providerName"`
	Caller          broker.Caller      `json:"caller"`
	Candidates      []sessions.Session `json:"candidates"`
	Scopes          []string           `json:"scopes"`
	ClearPreference bool               `json:"clearPreference"`
}

type promptLoginRequest struct {
	ProviderName string `json:"providerName"`
	CallerName   string `json:"callerName"`
}

type promptResponse struct {
	Granted bool `json:"granted"`
}

type trustedCallerRequest struct {
	ProviderID  string        `json:"providerID"`
	AccountName string        `json:"accountName"`
	Caller      broker.Caller `json:"caller"`
}

type sessionNoticeRequest struct {
	ProviderID string        `json:"providerID"`
	Scopes     []string      `json:"scopes"`
	Caller     broker.Caller `json:"caller"`
}

type loginRequest struct {
	ProviderID string   `json:"providerID"`
	Scopes     []string `json:"scopes"`
}

type logoutRequest struct {
	ProviderID string `json:"providerID"`
	SessionID  string `json:"sessionID"`
}

type registerProviderRequest struct {
	ID                       string `json:"id"`
	DisplayName              string `json:"displayName"`
	SupportsMultipleAccounts bool   `json:"supportsMultipleAccounts"`
}

type unregisterProviderRequest struct {
	ID string `json:"id"`
}

type pushSessionsChangedRequest struct {
	ProviderID string          `json:"providerID"`
	Change     sessions.Change `json:"change"`
}

func (c *Client) ProviderIDs(ctx context.Context) ([]string, error) {
	var resp providerIDsResponse
	if _, err := c.call(ctx, "providerIDs", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (c *Client) Sessions(ctx context.Context, providerID string) ([]sessions.Session, error) {
	var resp sessionsResponse
	if _, err := c.call(ctx, "sessions", sessionsRequest{ProviderID: providerID}, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

func (c *Client) GetSession(ctx context.Context, providerID string, scopes []string, caller broker.Caller, opts broker.GetSessionOptions) (*sessions.Session, error) {
	req := getSessionRequest{ProviderID: providerID, Scopes: scopes, Caller: caller, Options: opts}
	var session sessions.Session
	present, err := c.call(ctx, "getSession", req, &session)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return &session, nil
}

func (c *Client) PromptSessionConsent(ctx context.Context, providerID, accountName, providerName string, caller broker.Caller) (bool, error) {
	req := consentRequest{ProviderID: providerID, AccountName: accountName, ProviderName: providerName, Caller: caller}
	var resp promptResponse
	if _, err := c.call(ctx, "promptSessionConsent", req, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

func (c *Client) PromptSelectSession(ctx context.Context, providerID, providerName string, caller broker.Caller, candidates []sessions.Session, scopes []string, clearPreference bool) (broker.SessionChoice, error) {
	req := selectSessionRequest{
		ProviderID:      providerID,
		ProviderName:    providerName,
		Caller:          caller,
		Candidates:      candidates,
		Scopes:          scopes,
		ClearPreference: clearPreference,
	}
	var choice broker.SessionChoice
	if _, err := c.call(ctx, "promptSelectSession", req, &choice); err != nil {
		return broker.SessionChoice{}, err
	}
	return choice, nil
}

func (c *Client) PromptLogin(ctx context.Context, providerName, callerName string) (bool, error) {
	var resp promptResponse
	if _, err := c.call(ctx, "promptLogin", promptLoginRequest{ProviderName: providerName, CallerName: callerName}, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

func (c *Client) MarkTrustedCaller(ctx context.Context, providerID, accountName string, caller broker.Caller) error {
	req := trustedCallerRequest{ProviderID: providerID, AccountName: accountName, Caller: caller}
	_, err := c.call(ctx, "markTrustedCaller", req, nil)
	return err
}

func (c *Client) RequestNewSessionNotice(ctx context.Context, providerID string, scopes []string, caller broker.Caller) error {
	req := sessionNoticeRequest{ProviderID: providerID, Scopes: scopes, Caller: caller}
	_, err := c.call(ctx, "requestNewSessionNotice", req, nil)
	return err
}

func (c *Client) Login(ctx context.Context, providerID string, scopes []string) (sessions.Session, error) {
	var session sessions.Session
	if _, err := c.call(ctx, "login", loginRequest{ProviderID: providerID, Scopes: scopes}, &session); err != nil {
		return sessions.Session{}, err
	}
	return session, nil
}

func (c *Client) Logout(ctx context.Context, providerID, sessionID string) error {
	_, err := c.call(ctx, "logout", logoutRequest{ProviderID: providerID, SessionID: sessionID}, nil)
	return err
}

func (c *Client) RegisterProvider(ctx context.Context, id, displayName string, supportsMultipleAccounts bool) error {
	req := registerProviderRequest{ID: id, DisplayName: displayName, SupportsMultipleAccounts: supportsMultipleAccounts}
	_, err := c.call(ctx, "registerProvider", req, nil)
	return err
}

func (c *Client) UnregisterProvider(ctx context.Context, id string) error {
	_, err := c.call(ctx, "unregisterProvider", unregisterProviderRequest{ID: id}, nil)
	return err
}

func (c *Client) PushSessionsChanged(ctx context.Context, providerID string, change sessions.Change) error {
	_, err := c.call(ctx, "pushSessionsChanged", pushSessionsChangedRequest{ProviderID: providerID, Change: change}, nil)
	return err
}

// call POSTs payload to <base>/rpc/<op> and decodes the JSON response into
// out when present. It returns false when the host answered 204 No Content,
// the wire form of an absent result.
func (c *Client) call(ctx context.Context, op string, payload, out any) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, errors.Wrapf(err, "[coordinator.Client] marshal %s request", op)
	}

	url := fmt.Sprintf("%s/rpc/%s", c.baseURL, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, errors.Wrapf(err, "[coordinator.Client] build %s request", op)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrapf(err, "[coordinator.Client] %s", op)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, errors.Errorf("[coordinator.Client] %s: coordinator returned %d: %s", op, resp.StatusCode, strings.TrimSpace(string(message)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, errors.Wrapf(err, "[coordinator.Client] decode %s response", op)
		}
	}
	return true, nil
}
