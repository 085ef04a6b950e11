package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kinoreel/kinoapi/internal/business"
	"github.com/kinoreel/kinoapi/internal/model"
)

type PersonHandler struct {
	business.PersonManager
}

func NewPersonHandler(pm business.PersonManager) *PersonHandler {
	return &PersonHandler{
		PersonManager: pm,
	}
}

type personFilmResponse struct {
	UUID  uuid.UUID `json:"uuid"`
	Roles []string  `json:"roles"`
}

type personResponse struct {
	UUID     uuid.UUID            `json:"uuid"`
	FullName string               `json:"full_name"`
	Films    []personFilmResponse `json:"films"`
}

// GETPersonSearch lists persons matching the search query, each with their
// derived film role list
func (ph PersonHandler) GETPersonSearch(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithValidationError(c, err)
		return
	}

	persons, err := ph.PersonManager.SearchPersons(c.Request.Context(), normalizeQuery(q.Query), q.PageNumber, q.PageSize)
	if err != nil {
		abortWithError(c, err, "person")
		return
	}
	c.JSON(http.StatusOK, lo.Map(persons, toPersonResponse))
}

// GETPerson returns a person with their derived film role list
func (ph PersonHandler) GETPerson(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithFieldError(c, "person_id", "must be a valid uuid")
		return
	}

	person, err := ph.PersonManager.GetPerson(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "person")
		return
	}
	c.JSON(http.StatusOK, toPersonResponse(*person, 0))
}

// GETPersonFilms lists flat summaries of the person's films
func (ph PersonHandler) GETPersonFilms(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithFieldError(c, "person_id", "must be a valid uuid")
		return
	}

	films, err := ph.PersonManager.GetPersonFilms(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "person")
		return
	}
	c.JSON(http.StatusOK, lo.Map(films, toFilmResponse))
}

func toPersonResponse(person model.Person, _ int) personResponse {
	return personResponse{
		UUID:     person.ID,
		FullName: person.FullName,
		Films: lo.Map(person.Films, func(pf model.PersonFilm, _ int) personFilmResponse {
			return personFilmResponse{UUID: pf.ID, Roles: pf.Roles}
		}),
	}
}
