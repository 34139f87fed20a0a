// internal/workers/assessment/suggest-alternatives/models.go
package suggestalternatives

import "offr-workers/internal/catalog"

type Input struct {
	CourseID string `json:"courseId"`
	// Optional override; derived from the course row when zero.
	TargetMinPoints int `json:"targetMinPoints,omitempty"`
}

type Output struct {
	SuggestedCourseIDs   []string              `json:"suggested_course_ids"`
	SuggestedCourseNames []string              `json:"suggested_course_names"`
	Alternatives         []catalog.Alternative `json:"alternatives"`
}
