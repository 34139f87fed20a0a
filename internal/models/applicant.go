// internal/models/applicant.go
package models

import "fmt"

// Curriculum identifies the qualification system an applicant studies under.
type Curriculum string

const (
	CurriculumIB      Curriculum = "IB"
	CurriculumALevels Curriculum = "A_LEVELS"
)

// Residency splits applicants into home and international fee status.
type Residency string

const (
	ResidencyHome Residency = "home"
	ResidencyIntl Residency = "intl"
)

// IBSubject is a single IB subject with its predicted or achieved grade.
type IBSubject struct {
	Name  string `json:"name"`
	Grade int    `json:"grade"` // 1..7
}

// IBProfile carries exactly three higher-level and three standard-level
// subjects plus TOK/EE core points.
type IBProfile struct {
	HL         []IBSubject `json:"hl"`
	SL         []IBSubject `json:"sl"`
	CorePoints int         `json:"core_points"` // 0..3
}

// TotalPoints sums subject grades and core points.
func (p IBProfile) TotalPoints() int {
	total := p.CorePoints
	for _, s := range p.HL {
		total += s.Grade
	}
	for _, s := range p.SL {
		total += s.Grade
	}
	return total
}

// Validate enforces the fixed 3 HL + 3 SL shape and grade ranges.
func (p IBProfile) Validate() error {
	if len(p.HL) != 3 {
		return fmt.Errorf("exactly 3 HL subjects required, got %d", len(p.HL))
	}
	if len(p.SL) != 3 {
		return fmt.Errorf("exactly 3 SL subjects required, got %d", len(p.SL))
	}
	for _, s := range append(append([]IBSubject{}, p.HL...), p.SL...) {
		if s.Grade < 1 || s.Grade > 7 {
			return fmt.Errorf("subject %q grade %d out of range 1..7", s.Name, s.Grade)
		}
	}
	if p.CorePoints < 0 || p.CorePoints > 3 {
		return fmt.Errorf("core points %d out of range 0..3", p.CorePoints)
	}
	return nil
}

// ALevelEntry is one A-level subject/grade pair.
type ALevelEntry struct {
	Subject string `json:"subject"`
	Grade   string `json:"grade"` // A*, A, B, C, D, E
}

// ALevelProfile carries an applicant's A-level subjects. At least three
// entries are required for a full assessment.
type ALevelProfile struct {
	Subjects []ALevelEntry `json:"subjects"`
}

func (p ALevelProfile) Validate() error {
	if len(p.Subjects) < 3 {
		return fmt.Errorf("at least 3 A-level subjects required, got %d", len(p.Subjects))
	}
	return nil
}

// ApplicantProfile is the full academic profile submitted for assessment.
type ApplicantProfile struct {
	Curriculum Curriculum     `json:"curriculum"`
	Residency  Residency      `json:"home_or_intl"`
	IB         *IBProfile     `json:"ib,omitempty"`
	ALevels    *ALevelProfile `json:"a_levels,omitempty"`
}

// Validate checks the profile shape against its declared curriculum.
func (a ApplicantProfile) Validate() error {
	switch a.Curriculum {
	case CurriculumIB:
		if a.IB == nil {
			return fmt.Errorf("IB curriculum selected but no IB subjects provided")
		}
		return a.IB.Validate()
	case CurriculumALevels:
		if a.ALevels == nil {
			return fmt.Errorf("A-level curriculum selected but no subjects provided")
		}
		return a.ALevels.Validate()
	default:
		return fmt.Errorf("unsupported curriculum %q", a.Curriculum)
	}
}

// IsIntl reports whether the applicant pays the international threshold.
func (a ApplicantProfile) IsIntl() bool {
	return a.Residency == ResidencyIntl
}
