package business_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinoreel/kinoapi/internal/business"
	"github.com/kinoreel/kinoapi/internal/model"
	"github.com/kinoreel/kinoapi/internal/search"
	"github.com/kinoreel/kinoapi/internal/testutil"
)

func newFilmManager(engine search.Engine) *business.FilmManagerWrapper {
	return business.NewFilmManagerWrapper(engine, testutil.NewMemoryStore(), time.Minute)
}

func personRef(name string) map[string]any {
	return map[string]any{"id": uuid.NewString(), "name": name}
}

func TestFilmManagerGetFilm(t *testing.T) {
	ctx := context.Background()
	engine := testutil.NewFakeEngine()
	fm := newFilmManager(engine)

	filmID := uuid.New()
	engine.Index(search.IndexMovies, map[string]any{
		"id":          filmID.String(),
		"title":       "The Godfather",
		"imdb_rating": 9.2,
		"description": "An organized crime dynasty",
		"genres": []map[string]any{
			{"id": uuid.NewString(), "name": "Crime"},
			{"id": uuid.NewString(), "name": "Drama"},
		},
		"actors":    []map[string]any{personRef("Al Pacino"), personRef("Marlon Brando")},
		"writers":   []map[string]any{personRef("Mario Puzo")},
		"directors": []map[string]any{personRef("Francis Ford Coppola")},
	})

	t.Run("nested lists preserve engine order", func(t *testing.T) {
		film, err := fm.GetFilm(ctx, filmID)
		require.NoError(t, err)

		assert.Equal(t, filmID, film.ID)
		assert.Equal(t, "The Godfather", film.Title)
		require.NotNil(t, film.IMDBRating)
		assert.Equal(t, 9.2, *film.IMDBRating)
		assert.Equal(t, "An organized crime dynasty", film.Description)
		assert.Equal(t, []string{"Crime", "Drama"}, lo.Map(film.Genres, func(g model.Genre, _ int) string { return g.Name }))
		assert.Equal(t, []string{"Al Pacino", "Marlon Brando"}, lo.Map(film.Actors, func(p model.FilmPerson, _ int) string { return p.Name }))
		assert.Len(t, film.Writers, 1)
		assert.Len(t, film.Directors, 1)
	})

	t.Run("absent film yields not found", func(t *testing.T) {
		_, err := fm.GetFilm(ctx, uuid.New())
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("missing rating is tolerated", func(t *testing.T) {
		unratedID := uuid.New()
		engine.Index(search.IndexMovies, map[string]any{
			"id":          unratedID.String(),
			"title":       "Unreleased",
			"imdb_rating": nil,
			"description": "",
			"genres":      []map[string]any{},
			"actors":      []map[string]any{},
			"writers":     []map[string]any{},
			"directors":   []map[string]any{},
		})

		film, err := fm.GetFilm(ctx, unratedID)
		require.NoError(t, err)
		assert.Nil(t, film.IMDBRating)
	})
}

func TestFilmManagerGetFilmCaching(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	filmID := uuid.New()

	seeded := testutil.NewFakeEngine()
	seeded.Index(search.IndexMovies, map[string]any{
		"id": filmID.String(), "title": "The Godfather", "imdb_rating": 9.2,
		"description": "", "genres": []map[string]any{}, "actors": []map[string]any{},
		"writers": []map[string]any{}, "directors": []map[string]any{},
	})

	fm := business.NewFilmManagerWrapper(seeded, store, time.Minute)
	film, err := fm.GetFilm(ctx, filmID)
	require.NoError(t, err)
	assert.Equal(t, "The Godfather", film.Title)

	// A different manager over a different (empty) engine must hit the
	// same cache entry: the key depends on the film id, not the handle.
	other := business.NewFilmManagerWrapper(testutil.NewFakeEngine(), store, time.Minute)
	film, err = other.GetFilm(ctx, filmID)
	require.NoError(t, err)
	assert.Equal(t, "The Godfather", film.Title)

	// After a flush the empty engine is consulted again
	require.NoError(t, store.Flush(ctx))
	_, err = other.GetFilm(ctx, filmID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFilmManagerSearchFilms(t *testing.T) {
	ctx := context.Background()
	engine := testutil.NewFakeEngine()
	fm := newFilmManager(engine)

	for i := 0; i < 60; i++ {
		engine.Index(search.IndexMovies, map[string]any{
			"id": uuid.NewString(), "title": "The Godfather", "imdb_rating": 9.2,
		})
	}
	for i := 0; i < 3; i++ {
		engine.Index(search.IndexMovies, map[string]any{
			"id": uuid.NewString(), "title": "The Matrix", "imdb_rating": 8.7,
		})
	}
	engine.Index(search.IndexMovies, map[string]any{
		"id": uuid.NewString(), "title": "Casablanca", "imdb_rating": 8.5,
	})

	t.Run("query words match across the corpus", func(t *testing.T) {
		films, err := fm.SearchFilms(ctx, "Godfather Matrix", 1, 100)
		require.NoError(t, err)
		assert.Len(t, films, 63)
	})

	t.Run("page windows partition the result set", func(t *testing.T) {
		page := func(number, size int) int {
			films, err := fm.SearchFilms(ctx, "Godfather", number, size)
			require.NoError(t, err)
			return len(films)
		}
		assert.Equal(t, 50, page(1, 50))
		assert.Equal(t, 10, page(2, 50))
		assert.Equal(t, 0, page(3, 50))
	})

	t.Run("offset past the depth ceiling returns empty without error", func(t *testing.T) {
		films, err := fm.SearchFilms(ctx, "Godfather", 10001, 1)
		require.NoError(t, err)
		assert.Empty(t, films)
	})
}

func TestFilmManagerListFilms(t *testing.T) {
	ctx := context.Background()
	engine := testutil.NewFakeEngine()
	fm := newFilmManager(engine)

	crimeID := uuid.New()
	crime := map[string]any{"id": crimeID.String(), "name": "Crime"}
	scifi := map[string]any{"id": uuid.NewString(), "name": "Sci-Fi"}

	titles := []struct {
		title  string
		rating any
		genre  map[string]any
	}{
		{"The Godfather", 9.2, crime},
		{"The Matrix", 8.7, scifi},
		{"Heat", 8.3, crime},
		{"Unrated Noir", nil, crime},
	}
	for _, f := range titles {
		engine.Index(search.IndexMovies, map[string]any{
			"id": uuid.NewString(), "title": f.title, "imdb_rating": f.rating,
			"genres": []map[string]any{f.genre},
		})
	}

	t.Run("genre filter returns only films carrying the genre", func(t *testing.T) {
		films, err := fm.ListFilms(ctx, &crimeID, nil, 1, 50)
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]string{"The Godfather", "Heat", "Unrated Noir"},
			lo.Map(films, func(f model.Film, _ int) string { return f.Title }))
	})

	t.Run("descending rating sort puts unrated films last", func(t *testing.T) {
		films, err := fm.ListFilms(ctx, nil, []string{"-imdb_rating"}, 1, 50)
		require.NoError(t, err)
		assert.Equal(t,
			[]string{"The Godfather", "The Matrix", "Heat", "Unrated Noir"},
			lo.Map(films, func(f model.Film, _ int) string { return f.Title }))
	})

	t.Run("title sort uses the literal string", func(t *testing.T) {
		films, err := fm.ListFilms(ctx, nil, []string{"title"}, 1, 50)
		require.NoError(t, err)
		assert.Equal(t,
			[]string{"Heat", "The Godfather", "The Matrix", "Unrated Noir"},
			lo.Map(films, func(f model.Film, _ int) string { return f.Title }))
	})
}

func TestFilmManagerListFilmsLargeCorpus(t *testing.T) {
	ctx := context.Background()
	engine := testutil.NewFakeEngine()
	fm := newFilmManager(engine)

	for i := 0; i < 5; i++ {
		engine.Index(search.IndexMovies, map[string]any{
			"id": uuid.NewString(), "title": fmt.Sprintf("Film %02d", i), "imdb_rating": 5.0,
		})
	}

	// min(P, max(0, S-(N-1)*P)) items per page over S=5
	for page, want := range map[int]int{1: 2, 2: 2, 3: 1, 4: 0} {
		films, err := fm.ListFilms(ctx, nil, nil, page, 2)
		require.NoError(t, err)
		assert.Len(t, films, want, "page %d", page)
	}
}
