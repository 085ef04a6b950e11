package server

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kinoreel/kinoapi/internal/cache"
)

// NewServer initializes the router. List and lookup routes share the
// response-cache middleware; the film details route is cached at the
// service method level instead, so the access gate still runs per request.
func NewServer(filmHandler *FilmHandler, genreHandler *GenreHandler, personHandler *PersonHandler, store cache.Store, ttl time.Duration) *gin.Engine {
	registerTagNameFunc()

	router := gin.Default()
	router.SetTrustedProxies(nil)

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cached := cacheResponses(store, ttl)

	v1 := router.Group("/api/v1")

	films := v1.Group("/films")
	films.GET("", cached, filmHandler.GETFilms)
	films.GET("/search", cached, filmHandler.GETFilmSearch)
	films.GET("/:id", filmHandler.GETFilm)

	genres := v1.Group("/genres")
	genres.GET("", cached, genreHandler.GETGenres)
	genres.GET("/:id", cached, genreHandler.GETGenre)

	persons := v1.Group("/persons")
	persons.GET("/search", cached, personHandler.GETPersonSearch)
	persons.GET("/:id", cached, personHandler.GETPerson)
	persons.GET("/:id/film", cached, personHandler.GETPersonFilms)

	return router
}

// registerTagNameFunc makes validation errors report the query parameter
// name instead of the Go struct field name.
func registerTagNameFunc() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
