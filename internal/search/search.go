// Package search defines the port to the search index. The production
// implementation lives in internal/infrastructure, an in-memory one for
// tests in internal/testutil.
package search

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Index names of the three document collections.
const (
	IndexMovies  = "movies"
	IndexGenres  = "genres"
	IndexPersons = "persons"
)

// MaxResultWindow is how deep offset pagination can reach. Search engines
// cap from+size (10000 by default in Elasticsearch); requests beyond it are
// clamped rather than rejected.
const MaxResultWindow = 10000

const defaultPageSize = 1000

// ListParams describes one list query against an index.
type ListParams struct {
	// Fields to project into the returned documents.
	Fields []string
	// SearchFields maps a text field to the query matched against it with
	// fuzziness. Multiple entries must all match (AND).
	SearchFields map[string]string
	// FilterFields maps a nested-object field to the set of accepted ids.
	// A document passes when at least one filter field matches (OR).
	FilterFields map[string][]uuid.UUID
	// SortParams are field names, "-" prefix for descending.
	SortParams []string
	// PageNumber is 1-indexed. Zero values fall back to page 1 with
	// defaultPageSize items.
	PageNumber int
	PageSize   int
}

// Engine is the read-only capability the domain managers need from the
// search index. Documents are returned as raw collection-specific JSON;
// callers decode the shape they asked for.
type Engine interface {
	// GetByID fetches a single document, projected to fields.
	// Returns model.ErrNotFound if the document is absent.
	GetByID(ctx context.Context, index string, id uuid.UUID, fields []string) (json.RawMessage, error)
	// GetList runs a filtered, sorted, paginated query.
	GetList(ctx context.Context, index string, params ListParams) ([]json.RawMessage, error)
}

// PageWindow converts 1-indexed page parameters into an offset and length,
// both clamped so offset+length never exceeds MaxResultWindow. A zero
// length means the window is past the ceiling and no query should be sent.
func PageWindow(pageNumber, pageSize int) (from, size int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	from = (pageNumber - 1) * pageSize
	if from > MaxResultWindow {
		from = MaxResultWindow
	}
	size = pageSize
	if size > MaxResultWindow-from {
		size = MaxResultWindow - from
	}
	return from, size
}
