package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteProviders, ChainMiddleware(s.ListProvidersHandler(), s.APIMiddleware()...))

	// Inbound provider operations invoked by the coordinator
	s.RegisterRouteHandler("GET "+RouteProviderSession, ChainMiddleware(s.ListSessionsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteProviderSession, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteSession, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSessionToken, ChainMiddleware(s.AccessTokenHandler(), s.APIMiddleware()...))

	// Remote-originated change notifications re-broadcast locally
	s.RegisterRouteHandler("POST "+RouteSessionEvents, ChainMiddleware(s.SessionsChangedHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteProviderEvents, ChainMiddleware(s.ProvidersChangedHandler(), s.APIMiddleware()...))
}
