// internal/models/course.go
package models

// University is a catalogued institution.
type University struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Course is a catalogued degree programme row.
type Course struct {
	ID               string `json:"id"`
	UniversityID     string `json:"university_id"`
	UniversityName   string `json:"university_name"`
	Name             string `json:"name"`
	Faculty          string `json:"faculty"`
	MinPointsHome    int    `json:"min_points_home"` // 0 when unknown
	IntlBuffer       int    `json:"intl_buffer"`
	TypicalOffer     string `json:"typical_offer"`
	MinRequirements  string `json:"min_requirements"`
	RequiredSubjects string `json:"required_subjects"`
	// Delimited phrases admissions tutors look for in a personal statement.
	PSExpectedSignals string `json:"ps_expected_signals"`
	TuitionIntl       int    `json:"tuition_intl"` // yearly, whole currency units
}

// CourseThresholds is the slice of a course record the assessment consumes.
type CourseThresholds struct {
	MinPoints        int    `json:"min_points"` // IB total, 24..45
	IntlBuffer       int    `json:"intl_buffer"`
	TypicalOffer     string `json:"typical_offer"` // canonical 3-grade string, "" when unknown
	RequiredSubjects string `json:"required_subjects"`
}

// IntlThreshold is the effective minimum for international applicants.
func (t CourseThresholds) IntlThreshold() int {
	return t.MinPoints + t.IntlBuffer
}
