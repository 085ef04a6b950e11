package model

import (
	"github.com/google/uuid"
)

// Film is the flat film summary present in every movies document.
// IMDBRating is a pointer because some films have no rating yet.
type Film struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	IMDBRating *float64  `json:"imdb_rating"`
}

// FilmPerson is a cast or crew entry nested in a movies document.
type FilmPerson struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// FilmFull carries the complete movies document, with the nested genre and
// person lists in the order the search engine returned them.
type FilmFull struct {
	Film
	Description string       `json:"description"`
	Genres      []Genre      `json:"genres"`
	Actors      []FilmPerson `json:"actors"`
	Writers     []FilmPerson `json:"writers"`
	Directors   []FilmPerson `json:"directors"`
}
