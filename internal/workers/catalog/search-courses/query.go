// internal/workers/catalog/search-courses/query.go
package searchcourses

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// BuildSearchRequest assembles the catalogue search. Free-text queries
// match course name ahead of faculty and requirement text; university and
// faculty narrow as filters.
func BuildSearchRequest(index string, input *Input) (*esapi.SearchRequest, error) {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if input.Query != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  input.Query,
				"fields": []string{"name^3", "faculty^2", "min_requirements"},
				"type":   "best_fields",
			},
		})
	}

	if input.UniversityID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"university_id": strings.ToUpper(input.UniversityID)},
		})
	}
	if input.Faculty != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"faculty": input.Faculty},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{"_score", map[string]interface{}{"name.keyword": "asc"}},
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, err
	}

	from, size := normalizePagination(input.Pagination)
	req := &esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}
	return req, nil
}

func normalizePagination(p Pagination) (int, int) {
	from := p.From
	if from < 0 {
		from = 0
	}
	size := p.Size
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return from, size
}
