// internal/workers/advice/ps-analysis/models.go
package psanalysis

import "offr-workers/internal/offers/ps"

type Input struct {
	CourseName string `json:"courseName,omitempty"`
	Faculty    string `json:"faculty,omitempty"`
	// Delimited phrases admissions tutors look for, as stored on the course.
	ExpectedSignals string   `json:"expectedSignals,omitempty"`
	PS              ps.Input `json:"ps"`
}

type Scores struct {
	WeightedTotal int    `json:"weighted_total"`
	Band          string `json:"band"`
}

type Output struct {
	Constraints  ps.Constraints           `json:"constraints"`
	Heuristics   ps.Heuristics            `json:"heuristics"`
	Rubric       map[string]ps.RubricCell `json:"rubric"`
	Scores       Scores                   `json:"scores"`
	Strengths    []string                 `json:"strengths"`
	Risks        []string                 `json:"risks"`
	RedFlags     []string                 `json:"red_flags"`
	WhatToDoNext []string                 `json:"what_to_do_next"`
	RequestID    string                   `json:"request_id"`
}
