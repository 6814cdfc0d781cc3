package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
)

// SearchStore queries the investor index for candidates by thesis terms.
// Used instead of the Postgres candidate query when an index is configured.
type SearchStore struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearchStore(client *elasticsearch.Client, index string, log logger.Logger) *SearchStore {
	return &SearchStore{client: client, index: index, logger: log}
}

type esHit struct {
	ID     string `json:"_id"`
	Source struct {
		Name    string                 `json:"name"`
		Profile map[string]interface{} `json:"profile"`
	} `json:"_source"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

// SearchCandidates returns investors whose indexed sector or geo focus
// matches any of the given terms. Filters with no terms are skipped.
func (s *SearchStore) SearchCandidates(ctx context.Context, sectors, geos []string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 200
	}

	must := []map[string]interface{}{
		{"term": map[string]interface{}{"active": true}},
	}
	if len(sectors) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"sector_focus": sectors},
		})
	}
	if len(geos) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"geo_focus": geos},
		})
	}

	query := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []map[string]interface{}{
			{"name.keyword": map[string]interface{}{"order": "asc"}},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.New(errors.ErrCodeSearchQueryFailed, "Investor index search failed", fmt.Sprintf("marshal query: %v", err), false)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.New(errors.ErrCodeSearchQueryFailed, "Investor index search failed", err.Error(), true)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.New(errors.ErrCodeSearchQueryFailed, "Investor index search failed", fmt.Sprintf("search returned %s", res.Status()), true)
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.New(errors.ErrCodeSearchQueryFailed, "Investor index search failed", fmt.Sprintf("decode response: %v", err), false)
	}

	candidates := make([]Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		candidates = append(candidates, Candidate{
			ID:      hit.ID,
			Name:    hit.Source.Name,
			Profile: hit.Source.Profile,
		})
	}
	return candidates, nil
}
