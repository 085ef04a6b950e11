package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"github.com/kinoreel/kinoapi/internal/business"
	"github.com/kinoreel/kinoapi/internal/model"
)

// highRatingThreshold is the rating at or above which full film details
// require the subscriber role.
const highRatingThreshold = 8.0

var subscriberRoles = []string{"subscriber"}

// AccessChecker decides whether the presented credentials may see gated
// content.
type AccessChecker interface {
	CheckAccess(ctx context.Context, authorization string, allowRoles []string) error
}

type FilmHandler struct {
	business.FilmManager
	auth AccessChecker
}

func NewFilmHandler(fm business.FilmManager, auth AccessChecker) *FilmHandler {
	return &FilmHandler{
		FilmManager: fm,
		auth:        auth,
	}
}

type filmResponse struct {
	UUID       uuid.UUID `json:"uuid"`
	Title      string    `json:"title"`
	IMDBRating *float64  `json:"imdb_rating"`
}

type filmPersonResponse struct {
	UUID     uuid.UUID `json:"uuid"`
	FullName string    `json:"full_name"`
}

type filmFullResponse struct {
	filmResponse
	Description string               `json:"description"`
	Genre       []genreResponse      `json:"genre"`
	Actors      []filmPersonResponse `json:"actors"`
	Writers     []filmPersonResponse `json:"writers"`
	Directors   []filmPersonResponse `json:"directors"`
}

type listFilmsQuery struct {
	Genre      string   `form:"genre" binding:"omitempty,uuid"`
	Sort       []string `form:"sort" binding:"omitempty,dive,oneof=imdb_rating -imdb_rating title -title"`
	PageNumber int      `form:"page_number,default=1" binding:"gte=1"`
	PageSize   int      `form:"page_size,default=50" binding:"gte=1"`
}

type searchQuery struct {
	Query      string `form:"query" binding:"required"`
	PageNumber int    `form:"page_number,default=1" binding:"gte=1"`
	PageSize   int    `form:"page_size,default=50" binding:"gte=1"`
}

// GETFilms lists film summaries with optional genre filter and sorting
func (fh FilmHandler) GETFilms(c *gin.Context) {
	var q listFilmsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithValidationError(c, err)
		return
	}

	var genreID *uuid.UUID
	if q.Genre != "" {
		id, err := uuid.Parse(q.Genre)
		if err != nil {
			abortWithFieldError(c, "genre", "must be a valid uuid")
			return
		}
		genreID = &id
	}

	films, err := fh.FilmManager.ListFilms(c.Request.Context(), genreID, q.Sort, q.PageNumber, q.PageSize)
	if err != nil {
		abortWithError(c, err, "film")
		return
	}
	c.JSON(http.StatusOK, lo.Map(films, toFilmResponse))
}

// GETFilmSearch lists film summaries matching the search query
func (fh FilmHandler) GETFilmSearch(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithValidationError(c, err)
		return
	}

	films, err := fh.FilmManager.SearchFilms(c.Request.Context(), normalizeQuery(q.Query), q.PageNumber, q.PageSize)
	if err != nil {
		abortWithError(c, err, "film")
		return
	}
	c.JSON(http.StatusOK, lo.Map(films, toFilmResponse))
}

// GETFilm returns the full film details. Highly rated films are gated
// behind the subscriber role when an authorization service is configured.
func (fh FilmHandler) GETFilm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithFieldError(c, "film_id", "must be a valid uuid")
		return
	}

	film, err := fh.FilmManager.GetFilm(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "film")
		return
	}

	if film.IMDBRating != nil && *film.IMDBRating >= highRatingThreshold {
		if err := fh.auth.CheckAccess(c.Request.Context(), c.GetHeader("Authorization"), subscriberRoles); err != nil {
			abortWithError(c, err, "film")
			return
		}
	}

	c.JSON(http.StatusOK, filmFullResponse{
		filmResponse: toFilmResponse(film.Film, 0),
		Description:  film.Description,
		Genre:        lo.Map(film.Genres, toGenreResponse),
		Actors:       lo.Map(film.Actors, toFilmPersonResponse),
		Writers:      lo.Map(film.Writers, toFilmPersonResponse),
		Directors:    lo.Map(film.Directors, toFilmPersonResponse),
	})
}

func toFilmResponse(film model.Film, _ int) filmResponse {
	return filmResponse{
		UUID:       film.ID,
		Title:      film.Title,
		IMDBRating: film.IMDBRating,
	}
}

func toFilmPersonResponse(fp model.FilmPerson, _ int) filmPersonResponse {
	return filmPersonResponse{
		UUID:     fp.ID,
		FullName: fp.Name,
	}
}

// normalizeQuery puts search input into NFC form so composed and
// decomposed spellings hash and match identically.
func normalizeQuery(query string) string {
	return norm.NFC.String(strings.TrimSpace(query))
}
