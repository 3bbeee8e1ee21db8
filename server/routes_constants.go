package server

const (
	RouteProviders       = "/providers"
	RouteProviderSession = "/providers/{providerID}/sessions"
	RouteSession         = "/providers/{providerID}/sessions/{sessionID}"
	RouteSessionToken    = "/providers/{providerID}/sessions/{sessionID}/token"
	RouteSessionEvents   = "/events/sessions"
	RouteProviderEvents  = "/events/providers"
)
