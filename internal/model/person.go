package model

import "github.com/google/uuid"

// Roles is the fixed set of film roles a person can hold. The order is
// significant: derived role lists follow this order, and each role maps to
// the movies document field holding that cast list (see RoleField).
// Adding a role means extending this list and the movies schema together.
var Roles = []string{"actor", "writer", "director"}

// RoleField returns the movies document field listing the persons holding
// the given role ("actor" -> "actors").
func RoleField(role string) string {
	return role + "s"
}

// PersonFilm links a person to a film through the subset of Roles the
// person holds in it.
type PersonFilm struct {
	ID    uuid.UUID `json:"id"`
	Roles []string  `json:"roles"`
}

// Person is a persons document. Films is not stored in the index, it is
// derived from the movies documents referencing the person.
type Person struct {
	ID       uuid.UUID    `json:"id"`
	FullName string       `json:"full_name"`
	Films    []PersonFilm `json:"films"`
}
