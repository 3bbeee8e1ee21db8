package providers

import "fmt"

// DuplicateProviderError is returned when a registration targets an id that
// is already present in the local registry. The existing registration is left
// untouched.
type DuplicateProviderError struct {
	ID string
}

func (e *DuplicateProviderError) Error() string {
	return fmt.Sprintf("auth provider with id %q is already registered", e.ID)
}
