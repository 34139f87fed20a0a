// internal/workers/assessment/assess-offer/models.go
package assessoffer

import (
	"offr-workers/internal/models"
	"offr-workers/internal/offers/ps"
)

type Input struct {
	CourseID string                  `json:"courseId"`
	Profile  models.ApplicantProfile `json:"profile"`
	PS       *ps.Input               `json:"ps,omitempty"`
}

// CourseInfo is the course slice echoed back with every assessment.
type CourseInfo struct {
	CourseID        string `json:"course_id"`
	CourseName      string `json:"course_name"`
	University      string `json:"university"`
	Faculty         string `json:"faculty"`
	MinRequirements string `json:"min_requirements"`
	TuitionIntl     int    `json:"estimated_annual_cost_international,omitempty"`
}

// Alternatives lists sibling courses with equal or lower thresholds.
type Alternatives struct {
	SuggestedCourseIDs   []string `json:"suggested_course_ids"`
	SuggestedCourseNames []string `json:"suggested_course_names"`
}

type Output struct {
	models.Assessment
	Course       CourseInfo   `json:"course"`
	Alternatives Alternatives `json:"alternatives"`
}
