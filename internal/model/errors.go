package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document is absent from the search index.
var ErrNotFound = errors.New("not found")

// AuthError is an authorization failure carrying the HTTP status and detail
// message to surface to the client.
type AuthError struct {
	Status int
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("access denied (status %d): %s", e.Status, e.Detail)
}
