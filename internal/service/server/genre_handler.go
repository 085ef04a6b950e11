package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kinoreel/kinoapi/internal/business"
	"github.com/kinoreel/kinoapi/internal/model"
)

type GenreHandler struct {
	business.GenreManager
}

func NewGenreHandler(gm business.GenreManager) *GenreHandler {
	return &GenreHandler{
		GenreManager: gm,
	}
}

type genreResponse struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// GETGenres lists every genre
func (gh GenreHandler) GETGenres(c *gin.Context) {
	genres, err := gh.GenreManager.GetGenres(c.Request.Context())
	if err != nil {
		abortWithError(c, err, "genre")
		return
	}
	c.JSON(http.StatusOK, lo.Map(genres, toGenreResponse))
}

// GETGenre returns a genre by id
func (gh GenreHandler) GETGenre(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithFieldError(c, "genre_id", "must be a valid uuid")
		return
	}

	genre, err := gh.GenreManager.GetGenre(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "genre")
		return
	}
	c.JSON(http.StatusOK, toGenreResponse(*genre, 0))
}

func toGenreResponse(genre model.Genre, _ int) genreResponse {
	return genreResponse{
		UUID: genre.ID,
		Name: genre.Name,
	}
}
