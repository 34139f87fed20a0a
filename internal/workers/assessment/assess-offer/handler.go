// internal/workers/assessment/assess-offer/handler.go
package assessoffer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"offr-workers/internal/catalog"
	"offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/common/metrics"
	"offr-workers/internal/genai"
	"offr-workers/internal/models"
	"offr-workers/internal/offers/ps"
	"offr-workers/internal/offers/scoring"
	"offr-workers/internal/offers/subjects"
)

const (
	TaskType = "assess-offer"

	ibMaxTotal    = 45
	cohortContext = "Based on self-reported offer holder data from 2024-25 applicants."
)

type Handler struct {
	config       *Config
	store        *catalog.Store
	invoker      *genai.Invoker
	engine       *scoring.Engine
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store *catalog.Store, invoker *genai.Invoker, engine *scoring.Engine, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		store:        store,
		invoker:      invoker,
		engine:       engine,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job,
			errors.NewInvalidProfileError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Execute runs one full assessment: catalogue fetch, eligibility gate,
// competitiveness score, optional personal statement adjustment, and the
// counsellor rewrite. Provider failures degrade the narrative fields but
// never fail an otherwise valid assessment.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := input.Profile.Validate(); err != nil {
		if input.Profile.Curriculum != models.CurriculumIB && input.Profile.Curriculum != models.CurriculumALevels {
			return nil, errors.NewInvalidCurriculumError(string(input.Profile.Curriculum))
		}
		return nil, errors.NewInvalidProfileError(err.Error())
	}

	course, err := h.store.GetCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	thresholds := catalog.Thresholds(course)

	var assessment models.Assessment
	var eligible bool
	switch input.Profile.Curriculum {
	case models.CurriculumIB:
		assessment, eligible = h.assessIB(&input.Profile, thresholds)
	case models.CurriculumALevels:
		assessment, eligible = h.assessALevel(&input.Profile, thresholds)
	}

	if eligible {
		if input.PS != nil {
			h.applyPSAnalysis(ctx, &assessment, course, input.PS)
		}
		h.rewriteCounsellor(ctx, &assessment, course, input)
	}

	out := &Output{
		Assessment: assessment,
		Course: CourseInfo{
			CourseID:        course.ID,
			CourseName:      course.Name,
			University:      course.UniversityName,
			Faculty:         course.Faculty,
			MinRequirements: course.MinRequirements,
			TuitionIntl:     course.TuitionIntl,
		},
		Alternatives: h.alternativesFor(ctx, course, thresholds.MinPoints),
	}

	metrics.AssessmentsTotal.WithLabelValues(string(input.Profile.Curriculum), string(assessment.Band)).Inc()
	h.logger.Info("assessment complete", map[string]interface{}{
		"courseId":      course.ID,
		"curriculum":    input.Profile.Curriculum,
		"band":          assessment.Band,
		"chancePercent": assessment.ChancePercent,
	})
	return out, nil
}

func (h *Handler) assessIB(profile *models.ApplicantProfile, t models.CourseThresholds) (models.Assessment, bool) {
	total := profile.IB.TotalPoints()
	intl := profile.IsIntl()

	a := models.Assessment{Band: models.BandReach}

	if t.MinPoints == 0 {
		a.Notes = append(a.Notes, "Minimum score could not be parsed; threshold comparisons are approximate.")
	} else {
		thresholdUsed := t.MinPoints
		if intl {
			thresholdUsed = t.IntlThreshold()
		}
		margin := total - thresholdUsed
		a.Competitiveness.ThresholdUsed = &thresholdUsed
		a.Competitiveness.Margin = &margin

		if total <= t.MinPoints-3 {
			a.Verdict = models.VerdictNotEligible
			a.Checks.Failed = append(a.Checks.Failed,
				fmt.Sprintf("Points are 3+ below the stated minimum (%d).", t.MinPoints))
			a.Counsellor = &models.CounsellorNote{
				Risks:        []string{"This gap is usually an early screening filter."},
				WhatToDoNext: []string{"Consider courses with lower entry requirements.", "Strengthen your academic profile if possible."},
			}
			return a, false
		}

		if total >= t.MinPoints {
			a.Checks.Passed = append(a.Checks.Passed, fmt.Sprintf("Meets stated minimum (%d points)", t.MinPoints))
		} else {
			a.Checks.Failed = append(a.Checks.Failed, fmt.Sprintf("Below stated minimum (%d points)", t.MinPoints))
		}
		if intl {
			if total >= thresholdUsed {
				a.Checks.Passed = append(a.Checks.Passed, "Competitive for international applicant threshold")
			} else {
				a.Checks.Failed = append(a.Checks.Failed, "Slightly below what international applicants typically need")
			}
		}

		if t.RequiredSubjects != "" {
			gate := subjects.CheckIB(subjectNames(profile.IB.HL), t.RequiredSubjects)
			a.Checks.Passed = append(a.Checks.Passed, gate.Passed...)
			a.Checks.Failed = append(a.Checks.Failed, gate.Failed...)
			if !gate.OK {
				a.Verdict = models.VerdictNotEligible
				a.Counsellor = &models.CounsellorNote{
					Risks:        []string{"Missing a hard subject requirement (often screened early)."},
					WhatToDoNext: []string{"Consider an adjacent course that doesn't require this subject."},
				}
				return a, false
			}
		}

		result := h.engine.ScoreIB(total, t.MinPoints, intl, t.IntlBuffer)
		a.Competitiveness.Score = result.Score
		a.Competitiveness.ScoreBreakdown = result.Breakdown
		a.ChancePercent = result.Score
	}

	a.Band = h.engine.Band(a.Competitiveness.Score)
	a.Verdict = eligibleVerdict(a.Band, a.Checks.Failed)

	strengths := []string{fmt.Sprintf("Predicted total: %d/%d points.", total, ibMaxTotal)}
	if a.Competitiveness.Margin != nil {
		strengths = append(strengths, fmt.Sprintf("Margin vs threshold: %+d points.", *a.Competitiveness.Margin))
	}
	a.Counsellor = &models.CounsellorNote{Strengths: strengths}

	cohort := 1180
	if intl {
		cohort = 580
	}
	a.ApplicantContext = &models.ApplicantContext{
		CohortSize:     cohort,
		PercentileRank: percentile(a.Competitiveness.Score),
		TotalPoints:    total,
		Curriculum:     string(models.CurriculumIB),
		Context:        cohortContext,
	}
	return a, true
}

func (h *Handler) assessALevel(profile *models.ApplicantProfile, t models.CourseThresholds) (models.Assessment, bool) {
	a := models.Assessment{Band: models.BandReach}

	var grades, names []string
	for _, entry := range profile.ALevels.Subjects {
		if entry.Grade != "" {
			grades = append(grades, entry.Grade)
		}
		if entry.Subject != "" {
			names = append(names, entry.Subject)
		}
	}

	if t.RequiredSubjects != "" {
		gate := subjects.CheckALevel(names, t.RequiredSubjects)
		a.Checks.Passed = append(a.Checks.Passed, gate.Passed...)
		a.Checks.Failed = append(a.Checks.Failed, gate.Failed...)
		if !gate.OK {
			a.Verdict = models.VerdictNotEligible
			a.Counsellor = &models.CounsellorNote{
				Risks:        []string{"Missing a hard subject requirement (often screened early)."},
				WhatToDoNext: []string{"Consider an adjacent course that doesn't require this subject."},
			}
			return a, false
		}
	}

	result := h.engine.ScoreALevel(grades, t.TypicalOffer)
	a.Competitiveness.Score = result.Score
	a.Competitiveness.ScoreBreakdown = result.Breakdown
	a.Competitiveness.Margin = result.MarginSum
	a.ChancePercent = result.Score
	a.Notes = append(a.Notes, result.Notes...)

	if result.MarginSum != nil {
		if *result.MarginSum >= 0 {
			a.Checks.Passed = append(a.Checks.Passed, fmt.Sprintf("At or above typical offer (%s)", t.TypicalOffer))
		} else {
			a.Checks.Failed = append(a.Checks.Failed, fmt.Sprintf("Below typical offer (%s)", t.TypicalOffer))
		}
	}

	a.Band = h.engine.Band(result.Score)
	a.Verdict = eligibleVerdict(a.Band, a.Checks.Failed)
	a.Counsellor = &models.CounsellorNote{
		Strengths: []string{"A-level profile evaluated against the typical published offer."},
	}

	cohort := 880
	if profile.IsIntl() {
		cohort = 440
	}
	a.ApplicantContext = &models.ApplicantContext{
		CohortSize:     cohort,
		PercentileRank: percentile(result.Score),
		Curriculum:     string(models.CurriculumALevels),
		Context:        cohortContext,
	}
	return a, true
}

// applyPSAnalysis runs the rubric review and folds the PS band into the
// chance score. The displayed band stays grade-based.
func (h *Handler) applyPSAnalysis(ctx context.Context, a *models.Assessment, course *models.Course, statement *ps.Input) {
	prompt := ps.BuildRubricPrompt(course.Name, course.Faculty,
		catalog.SplitSignals(course.PSExpectedSignals), *statement)
	res := h.invoker.InvokeJSON(ctx, prompt)
	if !res.OK() {
		a.Notes = append(a.Notes, "Personal statement analysis unavailable.")
		a.PSAnalysis = res.ErrorPayload()
		return
	}

	rubric := ps.SanitizeRubric(res.Data)
	weighted := ps.WeightedScore(rubric)
	band := ps.BandFromScore(weighted)
	a.PSAnalysis = map[string]interface{}{
		"rubric":          rubric,
		"scores":          map[string]interface{}{"weighted_total": weighted, "band": band},
		"strengths":       stringList(res.Data["strengths"]),
		"risks":           stringList(res.Data["risks"]),
		"red_flags":       stringList(res.Data["red_flags"]),
		"what_to_do_next": stringList(res.Data["what_to_do_next"]),
	}

	adjusted, note := ps.ApplyToScore(a.Competitiveness.Score, band, course.UniversityID)
	a.Competitiveness.Score = adjusted
	a.ChancePercent = adjusted
	if a.ApplicantContext != nil {
		a.ApplicantContext.PercentileRank = percentile(adjusted)
	}
	if note != "" {
		a.Notes = append(a.Notes, note)
	}
}

func (h *Handler) rewriteCounsellor(ctx context.Context, a *models.Assessment, course *models.Course, input *Input) {
	defaults := h.defaultCounsellor(a, input)

	detail := "DETAILED"
	if a.ChancePercent >= h.config.BriefThreshold {
		detail = "BRIEF"
	}

	var psBand interface{}
	if scores, ok := a.PSAnalysis["scores"].(map[string]interface{}); ok {
		psBand = scores["band"]
	}
	summary := map[string]interface{}{
		"course_name":    course.Name,
		"faculty":        course.Faculty,
		"university_id":  course.UniversityID,
		"applicant_type": input.Profile.Residency,
		"curriculum":     input.Profile.Curriculum,
		"verdict":        a.Verdict,
		"band":           a.Band,
		"chance_percent": a.ChancePercent,
		"threshold_used": a.Competitiveness.ThresholdUsed,
		"margin":         a.Competitiveness.Margin,
		"passed":         a.Checks.Passed,
		"failed":         a.Checks.Failed,
		"ps_included":    input.PS != nil,
		"ps_band":        psBand,
	}
	summaryJSON, _ := json.Marshal(summary)

	prompt := fmt.Sprintf(`You are a calm, experienced UK university admissions counsellor.
Write practical, honest feedback for this applicant.
Rules:
- Do NOT mention internal storage formats.
- Be subtle about international thresholds.
- No guarantees or hype.
- Output ONLY valid JSON with exactly these keys: strengths, risks, what_to_do_next, notes.
- Detail level: %s.
  BRIEF: 2-4 bullets total across all sections.
  DETAILED: up to 5 bullets per section.

Context: %s`, detail, summaryJSON)

	res := h.invoker.InvokeJSON(ctx, prompt)
	if !res.OK() {
		a.Counsellor = defaults
		a.CounsellorError = res.ErrorPayload()
		return
	}

	a.Counsellor = &models.CounsellorNote{
		Strengths:    orDefault(stringList(res.Data["strengths"]), defaults.Strengths),
		Risks:        orDefault(stringList(res.Data["risks"]), defaults.Risks),
		WhatToDoNext: orDefault(stringList(res.Data["what_to_do_next"]), defaults.WhatToDoNext),
	}
	if notes := stringList(res.Data["notes"]); len(notes) > 0 {
		a.Notes = append(a.Notes, notes...)
	}
}

func (h *Handler) defaultCounsellor(a *models.Assessment, input *Input) *models.CounsellorNote {
	next := []string{
		"Double-check the official course page and entry requirements.",
		"Strengthen subject-specific evidence in your personal statement.",
	}
	if input.Profile.IsIntl() {
		next = append([]string{"International applicants often need a slightly higher score than the published minimum."}, next...)
	}

	note := &models.CounsellorNote{WhatToDoNext: next}
	if a.Counsellor != nil {
		note.Strengths = a.Counsellor.Strengths
		note.Risks = a.Counsellor.Risks
	}
	return note
}

func (h *Handler) alternativesFor(ctx context.Context, course *models.Course, targetMin int) Alternatives {
	alternatives := Alternatives{
		SuggestedCourseIDs:   []string{},
		SuggestedCourseNames: []string{},
	}
	if targetMin == 0 {
		return alternatives
	}
	alts, err := h.store.SuggestAlternatives(ctx, course, targetMin)
	if err != nil {
		h.logger.Warn("alternative lookup failed", map[string]interface{}{
			"courseId": course.ID,
			"error":    err,
		})
		return alternatives
	}
	for _, alt := range alts {
		alternatives.SuggestedCourseIDs = append(alternatives.SuggestedCourseIDs, alt.CourseID)
		alternatives.SuggestedCourseNames = append(alternatives.SuggestedCourseNames, alt.CourseName)
	}
	return alternatives
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func eligibleVerdict(band models.Band, failed []string) string {
	if band == models.BandSafe && len(failed) == 0 {
		return "Eligible and competitive"
	}
	return "Eligible, borderline competitive"
}

func percentile(score int) int {
	p := 100 - score
	if p < 5 {
		p = 5
	}
	if p > 95 {
		p = 95
	}
	return p
}

func subjectNames(entries []models.IBSubject) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func stringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(values, fallback []string) []string {
	if len(values) > 0 {
		return values
	}
	return fallback
}
