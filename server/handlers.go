package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-auth-broker/broker"
	"github.com/jrsteele09/go-auth-broker/sessions"
	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

type loginRequest struct {
	Scopes []string `json:"scopes"`
}

type sessionsChangedRequest struct {
	ProviderID string          `json:"providerID"`
	Change     sessions.Change `json:"change"`
}

type providersChangedRequest struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// ListProvidersHandler returns the provider ids registered in this process.
func (s *Server) ListProvidersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ids": s.registry.LocalIDs()})
	}
}

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolved, err := s.inbound.Sessions(r.Context(), r.PathValue("providerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": resolved})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid login request body", http.StatusBadRequest)
			return
		}
		session, err := s.inbound.Login(r.Context(), r.PathValue("providerID"), req.Scopes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.inbound.Logout(r.Context(), r.PathValue("providerID"), r.PathValue("sessionID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AccessTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.inbound.AccessToken(r.Context(), r.PathValue("providerID"), r.PathValue("sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
	}
}

func (s *Server) SessionsChangedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionsChangedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid session event body", http.StatusBadRequest)
			return
		}
		s.inbound.SessionsChanged(req.ProviderID, req.Change)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ProvidersChangedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req providersChangedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid provider event body", http.StatusBadRequest)
			return
		}
		s.inbound.ProvidersChanged(req.Added, req.Removed)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the broker taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a pass-through provider failure and becomes a 500.
func writeError(w http.ResponseWriter, err error) {
	var providerNotFound *broker.ProviderNotFoundError
	var sessionNotFound *broker.SessionNotFoundError
	switch {
	case errors.As(err, &providerNotFound), errors.As(err, &sessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
