package business

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kinoreel/kinoapi/internal/model"
	"github.com/kinoreel/kinoapi/internal/search"
)

var (
	personFields   = []string{"id", "full_name"}
	filmCastFields = []string{"id", "actors", "writers", "directors"}
)

type PersonManager interface {
	GetPerson(ctx context.Context, id uuid.UUID) (*model.Person, error)
	SearchPersons(ctx context.Context, query string, pageNumber, pageSize int) ([]model.Person, error)
	GetPersonFilms(ctx context.Context, id uuid.UUID) ([]model.Film, error)
}

type PersonManagerWrapper struct {
	engine search.Engine
}

func NewPersonManagerWrapper(engine search.Engine) *PersonManagerWrapper {
	return &PersonManagerWrapper{engine: engine}
}

// filmCast is the cast-only projection of a movies document used for role
// derivation.
type filmCast struct {
	ID        uuid.UUID          `json:"id"`
	Actors    []model.FilmPerson `json:"actors"`
	Writers   []model.FilmPerson `json:"writers"`
	Directors []model.FilmPerson `json:"directors"`
}

func (f filmCast) roleMembers(role string) []model.FilmPerson {
	switch role {
	case "actor":
		return f.Actors
	case "writer":
		return f.Writers
	case "director":
		return f.Directors
	}
	return nil
}

func (f filmCast) hasPerson(personID uuid.UUID, role string) bool {
	return lo.ContainsBy(f.roleMembers(role), func(p model.FilmPerson) bool {
		return p.ID == personID
	})
}

// GetPerson fetches the person document and derives the films they worked
// on by scanning the movies referencing them in any role field.
func (pm *PersonManagerWrapper) GetPerson(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	doc, err := pm.engine.GetByID(ctx, search.IndexPersons, id, personFields)
	if err != nil {
		return nil, fmt.Errorf("get person '%s': %w", id, err)
	}
	var person model.Person
	if err := json.Unmarshal(doc, &person); err != nil {
		return nil, fmt.Errorf("decode person '%s': %w", id, err)
	}

	films, err := pm.castFilms(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	person.Films = personFilms(id, films)
	return &person, nil
}

// SearchPersons matches the query against person names, then derives every
// returned person's film list from a single batched movies query instead of
// one lookup per person. The result keeps the person page order.
func (pm *PersonManagerWrapper) SearchPersons(ctx context.Context, query string, pageNumber, pageSize int) ([]model.Person, error) {
	docs, err := pm.engine.GetList(ctx, search.IndexPersons, search.ListParams{
		Fields:       personFields,
		SearchFields: map[string]string{"full_name": query},
		PageNumber:   pageNumber,
		PageSize:     pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("search persons: %w", err)
	}
	persons, err := decodeDocs[model.Person](docs)
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return persons, nil
	}

	personIDs := lo.Map(persons, func(p model.Person, _ int) uuid.UUID {
		return p.ID
	})
	films, err := pm.castFilms(ctx, personIDs)
	if err != nil {
		return nil, err
	}
	for i := range persons {
		persons[i].Films = personFilms(persons[i].ID, films)
	}
	return persons, nil
}

// GetPersonFilms returns flat summaries of the films referencing the
// person in any role field, without role annotations.
func (pm *PersonManagerWrapper) GetPersonFilms(ctx context.Context, id uuid.UUID) ([]model.Film, error) {
	docs, err := pm.engine.GetList(ctx, search.IndexMovies, search.ListParams{
		Fields:       filmSummaryFields,
		FilterFields: roleFilter([]uuid.UUID{id}),
	})
	if err != nil {
		return nil, fmt.Errorf("list person films: %w", err)
	}
	return decodeDocs[model.Film](docs)
}

// castFilms fetches the cast projection of every movie referencing any of
// the given persons in any role field.
func (pm *PersonManagerWrapper) castFilms(ctx context.Context, personIDs []uuid.UUID) ([]filmCast, error) {
	docs, err := pm.engine.GetList(ctx, search.IndexMovies, search.ListParams{
		Fields:       filmCastFields,
		FilterFields: roleFilter(personIDs),
	})
	if err != nil {
		return nil, fmt.Errorf("list films by cast: %w", err)
	}
	return decodeDocs[filmCast](docs)
}

// roleFilter builds the filter matching documents referencing any of the
// ids in any role field.
func roleFilter(personIDs []uuid.UUID) map[string][]uuid.UUID {
	filter := make(map[string][]uuid.UUID, len(model.Roles))
	for _, role := range model.Roles {
		filter[model.RoleField(role)] = personIDs
	}
	return filter
}

// personFilms derives the (film, roles) pairs for one person. Roles keep
// the fixed enumeration order; films where the person holds no role are
// dropped (the filter should prevent them, the join stays defensive).
func personFilms(personID uuid.UUID, films []filmCast) []model.PersonFilm {
	var result []model.PersonFilm
	for _, film := range films {
		roles := lo.Filter(model.Roles, func(role string, _ int) bool {
			return film.hasPerson(personID, role)
		})
		if len(roles) > 0 {
			result = append(result, model.PersonFilm{ID: film.ID, Roles: roles})
		}
	}
	return result
}
