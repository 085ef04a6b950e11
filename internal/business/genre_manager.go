package business

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kinoreel/kinoapi/internal/model"
	"github.com/kinoreel/kinoapi/internal/search"
)

// genreListPageSize is far above any realistic genre count, so one fetch
// returns the whole fixed-cardinality collection without truncation.
const genreListPageSize = 1000

var genreFields = []string{"id", "name"}

type GenreManager interface {
	GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error)
	GetGenres(ctx context.Context) ([]model.Genre, error)
}

type GenreManagerWrapper struct {
	engine search.Engine
}

func NewGenreManagerWrapper(engine search.Engine) *GenreManagerWrapper {
	return &GenreManagerWrapper{engine: engine}
}

func (gm *GenreManagerWrapper) GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	doc, err := gm.engine.GetByID(ctx, search.IndexGenres, id, genreFields)
	if err != nil {
		return nil, fmt.Errorf("get genre '%s': %w", id, err)
	}
	var genre model.Genre
	if err := json.Unmarshal(doc, &genre); err != nil {
		return nil, fmt.Errorf("decode genre '%s': %w", id, err)
	}
	return &genre, nil
}

func (gm *GenreManagerWrapper) GetGenres(ctx context.Context) ([]model.Genre, error) {
	docs, err := gm.engine.GetList(ctx, search.IndexGenres, search.ListParams{
		Fields:     genreFields,
		PageNumber: 1,
		PageSize:   genreListPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return decodeDocs[model.Genre](docs)
}
