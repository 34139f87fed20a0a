// internal/workers/catalog/search-courses/handler_test.go
package searchcourses

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
)

func newStubESServer(t *testing.T, status int, body string, capture *map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil && r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				var decoded map[string]interface{}
				require.NoError(t, json.Unmarshal(raw, &decoded))
				*capture = decoded
			}
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func newHandlerFor(t *testing.T, serverURL string) *Handler {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{serverURL}})
	require.NoError(t, err)
	return NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
}

func TestHandler_Execute_ParsesHits(t *testing.T) {
	responseBody := `{
		"took": 4,
		"hits": {
			"total": {"value": 2, "relation": "eq"},
			"hits": [
				{"_source": {"id": "LSE_econ", "name": "Economics", "university_id": "LSE"}},
				{"_source": {"id": "WAR_econ", "name": "Economics", "university_id": "WAR"}}
			]
		}
	}`

	var captured map[string]interface{}
	server := newStubESServer(t, http.StatusOK, responseBody, &captured)
	defer server.Close()

	handler := newHandlerFor(t, server.URL)
	output, err := handler.Execute(context.Background(), &Input{
		Query:        "economics",
		UniversityID: "lse",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	require.Len(t, output.Courses, 2)
	assert.Equal(t, "LSE_econ", output.Courses[0]["id"])

	// The university filter is uppercased before it reaches the index.
	boolQuery := captured["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "LSE", term["university_id"])
}

func TestHandler_Execute_SearchError(t *testing.T) {
	server := newStubESServer(t, http.StatusInternalServerError, `{"error": "boom"}`, nil)
	defer server.Close()

	handler := newHandlerFor(t, server.URL)
	_, err := handler.Execute(context.Background(), &Input{Query: "law"})

	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSearchQueryFailed, stdErr.Code)
}

func TestBuildSearchRequest_Pagination(t *testing.T) {
	tests := []struct {
		name         string
		pagination   Pagination
		expectedFrom int
		expectedSize int
	}{
		{name: "defaults", pagination: Pagination{}, expectedFrom: 0, expectedSize: 20},
		{name: "explicit", pagination: Pagination{From: 40, Size: 10}, expectedFrom: 40, expectedSize: 10},
		{name: "size capped", pagination: Pagination{Size: 500}, expectedFrom: 0, expectedSize: 100},
		{name: "negative from reset", pagination: Pagination{From: -5}, expectedFrom: 0, expectedSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildSearchRequest("courses", &Input{Pagination: tt.pagination})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedFrom, *req.From)
			assert.Equal(t, tt.expectedSize, *req.Size)
			assert.Equal(t, []string{"courses"}, req.Index)
		})
	}
}

func TestBuildSearchRequest_MatchAllWithoutQuery(t *testing.T) {
	req, err := BuildSearchRequest("courses", &Input{Faculty: "law"})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(req.Body).Decode(&body))

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	_, hasMatchAll := must[0].(map[string]interface{})["match_all"]
	assert.True(t, hasMatchAll)
	assert.Len(t, boolQuery["filter"], 1)
}
