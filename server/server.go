// Package server exposes the broker's inbound operations over HTTP so a
// remote coordinator can reach the providers registered in this process. It
// carries the host-to-broker direction of the boundary; the broker-to-host
// direction lives in the coordinator package.
package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-auth-broker/broker"
	"github.com/jrsteele09/go-auth-broker/internal/config"
	"github.com/jrsteele09/go-auth-broker/providers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	inbound  *broker.Inbound
	registry *providers.Registry
}

func New(cfg config.Config, inbound *broker.Inbound, registry *providers.Registry) (*Server, error) {
	if inbound == nil {
		return nil, errors.New("[server.New] inbound broker surface is required")
	}
	if registry == nil {
		return nil, errors.New("[server.New] provider registry is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		inbound:  inbound,
		registry: registry,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
