// internal/workers/catalog/get-course/models.go
package getcourse

import "offr-workers/internal/models"

type Input struct {
	CourseID string `json:"courseId"`
}

type Output struct {
	Course models.Course `json:"course"`
	// Derived admission thresholds, zero-valued where underivable.
	Thresholds models.CourseThresholds `json:"thresholds"`
}
