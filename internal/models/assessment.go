// internal/models/assessment.go
package models

// Band buckets a chance score for display.
type Band string

const (
	BandReach  Band = "Reach"
	BandTarget Band = "Target"
	BandSafe   Band = "Safe"
)

// VerdictNotEligible is returned whenever the subject gate fails.
const VerdictNotEligible = "Not eligible (likely filtered)"

// BreakdownEntry is one labelled, signed contribution to a chance score.
type BreakdownEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Checks lists the requirement checks an applicant passed and failed.
type Checks struct {
	Passed []string `json:"passed"`
	Failed []string `json:"failed"`
}

// Competitiveness is the numeric half of an assessment. ThresholdUsed and
// Margin are nil when no threshold could be derived, which serializes as
// null so a missing value is never mistaken for a margin of zero.
type Competitiveness struct {
	ThresholdUsed  *int             `json:"threshold_used"`
	Margin         *int             `json:"margin"`
	Score          int              `json:"score"`
	ScoreBreakdown []BreakdownEntry `json:"score_breakdown"`
}

// ApplicantContext situates the score against self-reported offer holder
// data from recent applicants.
type ApplicantContext struct {
	CohortSize     int    `json:"cohort_size"`
	PercentileRank int    `json:"percentile_rank"`
	TotalPoints    int    `json:"total_points,omitempty"` // IB only
	Curriculum     string `json:"curriculum"`
	Context        string `json:"context"`
}

// CounsellorNote is the AI-written narrative layer of an assessment.
type CounsellorNote struct {
	Strengths    []string `json:"strengths"`
	Risks        []string `json:"risks"`
	WhatToDoNext []string `json:"what_to_do_next"`
	Notes        string   `json:"notes"`
}

// Assessment is the full result returned for one applicant/course pair.
type Assessment struct {
	Verdict          string                 `json:"verdict"`
	Band             Band                   `json:"band"`
	ChancePercent    int                    `json:"chance_percent"`
	Checks           Checks                 `json:"checks"`
	Competitiveness  Competitiveness        `json:"competitiveness"`
	ApplicantContext *ApplicantContext      `json:"applicant_context,omitempty"`
	Counsellor       *CounsellorNote        `json:"counsellor,omitempty"`
	CounsellorError  map[string]interface{} `json:"counsellor_error,omitempty"`
	PSAnalysis       map[string]interface{} `json:"ps_analysis,omitempty"`
	Notes            []string               `json:"notes,omitempty"`
}
