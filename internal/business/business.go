// Package business holds the domain managers. Each manager wraps the
// search engine port with its collection's field lists and reshapes raw
// documents into model objects.
package business

import (
	"encoding/json"
	"fmt"
)

// filmSummaryFields is the projection for flat film listings.
var filmSummaryFields = []string{"id", "title", "imdb_rating"}

// decodeDocs unmarshals raw documents into typed models, keeping engine
// order.
func decodeDocs[T any](docs []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
