package broker

import (
	"errors"
	"fmt"
)

// ConsentDeniedErr is returned when the user declines a consent or login
// prompt. The message is user-visible and fixed.
var ConsentDeniedErr = errors.New("User did not consent to login.")

// ProviderNotFoundError is returned by the inbound operations when the
// targeted provider id is not in the local registry.
type ProviderNotFoundError struct {
	Handle string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("Unable to find authentication provider with handle: %s", e.Handle)
}

// SessionNotFoundError is returned by the inbound access-token lookup when
// the provider holds no session with the requested id.
type SessionNotFoundError struct {
	ProviderID string
	SessionID  string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("Unable to find session with id %s for authentication provider: %s", e.SessionID, e.ProviderID)
}
