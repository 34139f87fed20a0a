// internal/workers/reporting/send-report/models.go
package sendreport

import "offr-workers/internal/models"

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

type Input struct {
	RecipientEmail string            `json:"recipientEmail"`
	ApplicantName  string            `json:"applicantName,omitempty"`
	CourseID       string            `json:"courseId"`
	CourseName     string            `json:"courseName"`
	University     string            `json:"university"`
	Assessment     models.Assessment `json:"assessment"`
}

type Output struct {
	ReportID string `json:"reportId"`
	Status   string `json:"status"`
	SentAt   string `json:"sentAt"`
}
