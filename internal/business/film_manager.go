package business

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kinoreel/kinoapi/internal/cache"
	"github.com/kinoreel/kinoapi/internal/model"
	"github.com/kinoreel/kinoapi/internal/search"
)

var filmFullFields = []string{
	"id", "title", "imdb_rating",
	"description", "genres", "actors", "writers", "directors",
}

type FilmManager interface {
	GetFilm(ctx context.Context, id uuid.UUID) (*model.FilmFull, error)
	SearchFilms(ctx context.Context, query string, pageNumber, pageSize int) ([]model.Film, error)
	ListFilms(ctx context.Context, genreID *uuid.UUID, sortParams []string, pageNumber, pageSize int) ([]model.Film, error)
}

type FilmManagerWrapper struct {
	engine  search.Engine
	getFilm cache.Operation[*model.FilmFull]
}

func NewFilmManagerWrapper(engine search.Engine, store cache.Store, ttl time.Duration) *FilmManagerWrapper {
	return &FilmManagerWrapper{
		engine: engine,
		// Keyed on the film id only, never on the engine handle, so every
		// worker derives the same key for the same film.
		getFilm: cache.NewOperation[*model.FilmFull]("business.FilmManager.GetFilm", store, ttl),
	}
}

// GetFilm returns the complete film with its nested genre and person lists
// in engine order. Results are cached per id for the configured TTL.
func (fm *FilmManagerWrapper) GetFilm(ctx context.Context, id uuid.UUID) (*model.FilmFull, error) {
	return fm.getFilm.Do(ctx, func(ctx context.Context) (*model.FilmFull, error) {
		doc, err := fm.engine.GetByID(ctx, search.IndexMovies, id, filmFullFields)
		if err != nil {
			return nil, fmt.Errorf("get film '%s': %w", id, err)
		}
		var film model.FilmFull
		if err := json.Unmarshal(doc, &film); err != nil {
			return nil, fmt.Errorf("decode film '%s': %w", id, err)
		}
		return &film, nil
	}, id)
}

// SearchFilms matches the query against film titles and returns flat
// summaries; nested fields are not fetched for listings.
func (fm *FilmManagerWrapper) SearchFilms(ctx context.Context, query string, pageNumber, pageSize int) ([]model.Film, error) {
	docs, err := fm.engine.GetList(ctx, search.IndexMovies, search.ListParams{
		Fields:       filmSummaryFields,
		SearchFields: map[string]string{"title": query},
		PageNumber:   pageNumber,
		PageSize:     pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search films: %w", err)
	}
	return decodeDocs[model.Film](docs)
}

// ListFilms returns flat film summaries, optionally filtered by genre and
// sorted by the given sort tokens.
func (fm *FilmManagerWrapper) ListFilms(ctx context.Context, genreID *uuid.UUID, sortParams []string, pageNumber, pageSize int) ([]model.Film, error) {
	filterFields := map[string][]uuid.UUID{}
	if genreID != nil {
		filterFields["genres"] = []uuid.UUID{*genreID}
	}

	docs, err := fm.engine.GetList(ctx, search.IndexMovies, search.ListParams{
		Fields:       filmSummaryFields,
		FilterFields: filterFields,
		SortParams:   sortParams,
		PageNumber:   pageNumber,
		PageSize:     pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return decodeDocs[model.Film](docs)
}
