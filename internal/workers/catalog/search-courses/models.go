// internal/workers/catalog/search-courses/models.go
package searchcourses

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Input struct {
	Query        string     `json:"query,omitempty"`
	UniversityID string     `json:"universityId,omitempty"`
	Faculty      string     `json:"faculty,omitempty"`
	Pagination   Pagination `json:"pagination,omitempty"`
}

type Output struct {
	Courses   []map[string]interface{} `json:"courses"`
	TotalHits int64                    `json:"totalHits"`
	TookMs    int64                    `json:"tookMs"`
}
