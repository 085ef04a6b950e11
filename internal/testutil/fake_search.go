// Package testutil provides in-memory doubles for the search engine and
// the cache store, used by property tests across the module.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/kinoreel/kinoapi/internal/model"
	"github.com/kinoreel/kinoapi/internal/search"
)

// FakeEngine implements search.Engine over seeded documents. Text matching
// is word-level and fuzzy (levenshtein with length-scaled thresholds, like
// the real engine's "auto" fuzziness), filters OR across fields, and
// pagination honors the shared window clamping.
type FakeEngine struct {
	indexes map[string][]map[string]any
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		indexes: make(map[string][]map[string]any),
	}
}

// Index seeds documents into a collection, keeping insertion order. Docs
// may be maps or structs with json tags; they are canonicalized through a
// JSON round-trip.
func (f *FakeEngine) Index(index string, docs ...any) {
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			panic(fmt.Sprintf("testutil: index document: %v", err))
		}
		var canonical map[string]any
		if err := json.Unmarshal(data, &canonical); err != nil {
			panic(fmt.Sprintf("testutil: index document: %v", err))
		}
		f.indexes[index] = append(f.indexes[index], canonical)
	}
}

// Reset drops every document of a collection.
func (f *FakeEngine) Reset(index string) {
	delete(f.indexes, index)
}

func (f *FakeEngine) GetByID(ctx context.Context, index string, id uuid.UUID, fields []string) (json.RawMessage, error) {
	for _, doc := range f.indexes[index] {
		if doc["id"] == id.String() {
			return project(doc, fields)
		}
	}
	return nil, model.ErrNotFound
}

func (f *FakeEngine) GetList(ctx context.Context, index string, params search.ListParams) ([]json.RawMessage, error) {
	from, size := search.PageWindow(params.PageNumber, params.PageSize)
	if size == 0 {
		return nil, nil
	}

	var matched []map[string]any
	for _, doc := range f.indexes[index] {
		if matchesSearch(doc, params.SearchFields) && matchesFilter(doc, params.FilterFields) {
			matched = append(matched, doc)
		}
	}

	sortDocs(matched, params.SortParams)

	if from >= len(matched) {
		return nil, nil
	}
	end := from + size
	if end > len(matched) {
		end = len(matched)
	}

	results := make([]json.RawMessage, 0, end-from)
	for _, doc := range matched[from:end] {
		projected, err := project(doc, params.Fields)
		if err != nil {
			return nil, err
		}
		results = append(results, projected)
	}
	return results, nil
}

func project(doc map[string]any, fields []string) (json.RawMessage, error) {
	projected := make(map[string]any, len(fields))
	for _, field := range fields {
		if value, ok := doc[field]; ok {
			projected[field] = value
		}
	}
	data, err := json.Marshal(projected)
	if err != nil {
		return nil, fmt.Errorf("testutil: project document: %w", err)
	}
	return data, nil
}

// matchesSearch requires every search field to match (AND); within one
// field, any query word fuzzy-matching any document word is enough.
func matchesSearch(doc map[string]any, searchFields map[string]string) bool {
	for field, query := range searchFields {
		text, _ := doc[field].(string)
		if !fuzzyMatch(text, query) {
			return false
		}
	}
	return true
}

func fuzzyMatch(text, query string) bool {
	docWords := tokenize(text)
	for _, queryWord := range tokenize(query) {
		maxDist := fuzzyDistance(queryWord)
		for _, docWord := range docWords {
			if levenshtein.ComputeDistance(queryWord, docWord) <= maxDist {
				return true
			}
		}
	}
	return false
}

// fuzzyDistance mirrors the engine's auto fuzziness: short terms must
// match exactly, longer ones tolerate one or two edits.
func fuzzyDistance(word string) int {
	switch {
	case len(word) < 3:
		return 0
	case len(word) < 6:
		return 1
	default:
		return 2
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchesFilter passes when at least one filter field (OR) holds a nested
// object whose id is in the accepted set.
func matchesFilter(doc map[string]any, filterFields map[string][]uuid.UUID) bool {
	if len(filterFields) == 0 {
		return true
	}
	for field, ids := range filterFields {
		accepted := make(map[string]bool, len(ids))
		for _, id := range ids {
			accepted[id.String()] = true
		}
		nested, _ := doc[field].([]any)
		for _, item := range nested {
			obj, _ := item.(map[string]any)
			if id, _ := obj["id"].(string); accepted[id] {
				return true
			}
		}
	}
	return false
}

// sortDocs orders matched documents by the sort tokens; documents missing
// a sort value come last, as the real engine does by default. Without
// tokens, insertion order is preserved.
func sortDocs(docs []map[string]any, sortParams []string) {
	if len(sortParams) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, param := range sortParams {
			field := strings.TrimPrefix(param, "-")
			desc := strings.HasPrefix(param, "-")
			vi, vj := docs[i][field], docs[j][field]
			// Missing values sort last in both directions
			if vi == nil || vj == nil {
				if vi == nil && vj == nil {
					continue
				}
				return vj == nil
			}
			cmp := compareValues(vi, vj)
			if cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	}
	return 0
}
