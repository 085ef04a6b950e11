package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/kinoreel/kinoapi/internal/model"
	"github.com/kinoreel/kinoapi/internal/search"
)

// keywordSortFields redirects text-indexed fields to their keyword
// companion: sorting on an analyzed text field would order by tokens, so
// every text field used for sorting needs a raw multi-field.
var keywordSortFields = map[string]string{
	"title":     "title.raw",
	"full_name": "full_name.raw",
}

// ElasticEngine implements search.Engine on an Elasticsearch cluster.
type ElasticEngine struct {
	es *elasticsearch.Client
}

// NewElasticEngine creates an engine pointed at the given address.
func NewElasticEngine(address string) (*ElasticEngine, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: create client: %w", err)
	}
	return &ElasticEngine{es: es}, nil
}

// GetByID fetches one document projected to fields.
// Returns model.ErrNotFound if the index has no such document.
func (e *ElasticEngine) GetByID(ctx context.Context, index string, id uuid.UUID, fields []string) (json.RawMessage, error) {
	res, err := e.es.Get(index, id.String(),
		e.es.Get.WithSourceIncludes(fields...),
		e.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("elastic: get request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, model.ErrNotFound
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elastic: get error [%s]: %s", res.Status(), body)
	}

	var doc struct {
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("elastic: decode get response: %w", err)
	}
	return doc.Source, nil
}

// GetList runs a search query built from params and returns the raw
// document sources in engine order. Documents missing a sort value come
// last ("missing": "_last" is the engine default, not overridden here).
func (e *ElasticEngine) GetList(ctx context.Context, index string, params search.ListParams) ([]json.RawMessage, error) {
	from, size := search.PageWindow(params.PageNumber, params.PageSize)
	if size == 0 {
		// Window starts past the pagination ceiling
		return nil, nil
	}

	body := buildSearchBody(params, from, size)
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("elastic: encode query: %w", err)
	}
	log.WithFields(log.Fields{"index": index, "from": from, "size": size}).Debugln("Search query")

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(index),
		e.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elastic: search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elastic: search error [%s]: %s", res.Status(), body)
	}

	var out struct {
		Hits struct {
			Hits []searchHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("elastic: decode search response: %w", err)
	}

	return lo.Map(out.Hits.Hits, func(hit searchHit, _ int) json.RawMessage {
		return hit.Source
	}), nil
}

type searchHit struct {
	Source json.RawMessage `json:"_source"`
}

// buildSearchBody translates ListParams into the native query body.
// Search clauses are AND-combined under bool.must; filter clauses are
// OR-combined (minimum_should_match 1) under bool.filter.
func buildSearchBody(params search.ListParams, from, size int) map[string]any {
	boolQuery := map[string]any{
		"must": map[string]any{"match_all": map[string]any{}},
	}

	if len(params.SearchFields) > 0 {
		must := make([]any, 0, len(params.SearchFields))
		for _, field := range sortedKeys(params.SearchFields) {
			must = append(must, map[string]any{
				"match": map[string]any{
					field: map[string]any{
						"query":     params.SearchFields[field],
						"fuzziness": "auto",
					},
				},
			})
		}
		boolQuery["must"] = must
	}

	if len(params.FilterFields) > 0 {
		should := make([]any, 0, len(params.FilterFields))
		for _, field := range sortedKeys(params.FilterFields) {
			ids := lo.Map(params.FilterFields[field], func(id uuid.UUID, _ int) string {
				return id.String()
			})
			should = append(should, map[string]any{
				"nested": map[string]any{
					"path": field,
					"query": map[string]any{
						"terms": map[string]any{
							field + ".id": ids,
						},
					},
				},
			})
		}
		boolQuery["filter"] = map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	}

	sorts := lo.Map(params.SortParams, func(param string, _ int) any {
		return sortParamQuery(param)
	})

	return map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"sort":    sorts,
		"_source": params.Fields,
		"from":    from,
		"size":    size,
	}
}

// sortParamQuery converts a "-"-prefixed sort token into a sort clause,
// redirecting text fields to their keyword companion.
func sortParamQuery(param string) map[string]any {
	field := strings.TrimPrefix(param, "-")
	if keyword, ok := keywordSortFields[field]; ok {
		field = keyword
	}
	order := "asc"
	if strings.HasPrefix(param, "-") {
		order = "desc"
	}
	return map[string]any{field: order}
}

// sortedKeys keeps generated query bodies deterministic; Go map iteration
// order would otherwise vary between identical requests.
func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
