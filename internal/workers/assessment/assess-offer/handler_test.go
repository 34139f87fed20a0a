// internal/workers/assessment/assess-offer/handler_test.go
package assessoffer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offr-workers/internal/catalog"
	"offr-workers/internal/common/config"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/genai"
	"offr-workers/internal/models"
	"offr-workers/internal/offers/ps"
	"offr-workers/internal/offers/scoring"
)

// ==========================
// Test Helper Functions
// ==========================

type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
}

func (c *scriptedClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "{}", nil
}

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		Baseline:          55,
		IBPointWeight:     7,
		IBSurplusCap:      30,
		IBIntlBonus:       8,
		IBOnePointPenalty: 18,
		IBTwoPointPenalty: 28,
		IBIntlGapPenalty:  12,
		ALMarginWeight:    6,
		ALMarginCap:       24,
		ALShortfallWeight: 10,
		ALShortfallCap:    40,
		ReachBandCeiling:  39,
		TargetBandCeiling: 69,
	}
}

func newTestHandler(t *testing.T, db *sql.DB, client genai.Client) *Handler {
	log := logger.NewTestLogger(t)
	store := catalog.NewStore(db, nil, 0, log)
	genaiCfg := config.GenAIConfig{APIKey: "test-key", Timeout: 1000, MaxRetries: 0, InitialBackoff: 1}
	invoker := genai.New(client, genaiCfg, log)
	return NewHandler(LoadConfig(), store, invoker, scoring.New(testScoringConfig()), log)
}

func expectCourseRow(mock sqlmock.Sqlmock, courseID string, minPoints, buffer int, typicalOffer, minReq, requiredSubjects string) {
	rows := sqlmock.NewRows([]string{"id", "university_id", "name", "faculty",
		"min_points_home", "intl_buffer", "typical_offer",
		"min_requirements", "required_subjects", "ps_expected_signals", "tuition_intl"}).
		AddRow(courseID, "", "Economics", "social-sciences",
			minPoints, buffer, typicalOffer, minReq, requiredSubjects, "", 30000)
	mock.ExpectQuery(`SELECT id, university_id, name, faculty`).
		WithArgs(courseID).
		WillReturnRows(rows)
}

func expectNoAlternatives(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM courses WHERE faculty = \$1 AND id <> \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "university_id", "name",
			"min_points_home", "intl_buffer", "typical_offer",
			"min_requirements", "required_subjects"}))
}

func ibProfile(grades [6]int, core int, residency models.Residency) models.ApplicantProfile {
	return models.ApplicantProfile{
		Curriculum: models.CurriculumIB,
		Residency:  residency,
		IB: &models.IBProfile{
			HL: []models.IBSubject{
				{Name: "Mathematics AA HL", Grade: grades[0]},
				{Name: "Economics", Grade: grades[1]},
				{Name: "Physics", Grade: grades[2]},
			},
			SL: []models.IBSubject{
				{Name: "English", Grade: grades[3]},
				{Name: "History", Grade: grades[4]},
				{Name: "Chemistry", Grade: grades[5]},
			},
			CorePoints: core,
		},
	}
}

const counsellorJSON = `{"strengths": ["Strong margin over the minimum."],
"risks": ["Competitive cohort."],
"what_to_do_next": ["Polish the personal statement."],
"notes": ["Thresholds vary year to year."]}`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_IBCompetitive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 7+7+7 HL, 6+6+6 SL, 2 core = 41 points against a 36 minimum.
	expectCourseRow(mock, "LSE_econ", 36, 2, "", "", "")
	expectNoAlternatives(mock)

	client := &scriptedClient{responses: []string{counsellorJSON}}
	handler := newTestHandler(t, db, client)

	output, err := handler.Execute(context.Background(), &Input{
		CourseID: "LSE_econ",
		Profile:  ibProfile([6]int{7, 7, 7, 6, 6, 6}, 2, models.ResidencyHome),
	})

	require.NoError(t, err)
	assert.Equal(t, "Eligible and competitive", output.Verdict)
	assert.Equal(t, models.BandSafe, output.Band)
	assert.Equal(t, 85, output.ChancePercent)
	require.NotNil(t, output.Competitiveness.ThresholdUsed)
	assert.Equal(t, 36, *output.Competitiveness.ThresholdUsed)
	require.NotNil(t, output.Competitiveness.Margin)
	assert.Equal(t, 5, *output.Competitiveness.Margin)
	assert.Contains(t, output.Checks.Passed, "Meets stated minimum (36 points)")
	assert.Empty(t, output.Checks.Failed)

	require.NotNil(t, output.Counsellor)
	assert.Equal(t, []string{"Strong margin over the minimum."}, output.Counsellor.Strengths)
	assert.Contains(t, output.Notes, "Thresholds vary year to year.")
	assert.Nil(t, output.CounsellorError)

	require.NotNil(t, output.ApplicantContext)
	assert.Equal(t, 1180, output.ApplicantContext.CohortSize)
	assert.Equal(t, 15, output.ApplicantContext.PercentileRank)
	assert.Equal(t, 41, output.ApplicantContext.TotalPoints)

	assert.Equal(t, 1, client.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_IBFarBelowMinimum(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 33 points against a 36 minimum is a screening filter.
	expectCourseRow(mock, "LSE_econ", 36, 2, "", "", "")
	expectNoAlternatives(mock)

	client := &scriptedClient{}
	handler := newTestHandler(t, db, client)

	output, err := handler.Execute(context.Background(), &Input{
		CourseID: "LSE_econ",
		Profile:  ibProfile([6]int{6, 6, 6, 5, 5, 5}, 0, models.ResidencyHome),
	})

	require.NoError(t, err)
	assert.Equal(t, models.VerdictNotEligible, output.Verdict)
	assert.Equal(t, models.BandReach, output.Band)
	assert.Equal(t, 0, output.ChancePercent)
	assert.Contains(t, output.Checks.Failed, "Points are 3+ below the stated minimum (36).")
	assert.Empty(t, output.Competitiveness.ScoreBreakdown)
	require.NotNil(t, output.Competitiveness.Margin)
	assert.Equal(t, -3, *output.Competitiveness.Margin)

	// No provider calls on the not-eligible path.
	assert.Equal(t, 0, client.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_IBUnknownMinimumKeepsNullThreshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No parseable minimum anywhere in the course row.
	expectCourseRow(mock, "LSE_econ", 0, 0, "", "", "")

	client := &scriptedClient{responses: []string{counsellorJSON}}
	handler := newTestHandler(t, db, client)

	output, err := handler.Execute(context.Background(), &Input{
		CourseID: "LSE_econ",
		Profile:  ibProfile([6]int{7, 7, 7, 6, 6, 6}, 2, models.ResidencyHome),
	})

	require.NoError(t, err)
	assert.Nil(t, output.Competitiveness.ThresholdUsed)
	assert.Nil(t, output.Competitiveness.Margin)
	assert.Contains(t, output.Notes, "Minimum score could not be parsed; threshold comparisons are approximate.")

	// An unknown threshold serializes as null, never as 0.
	raw, err := json.Marshal(output.Competitiveness)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"threshold_used":null`)
	assert.Contains(t, string(raw), `"margin":null`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_IBSubjectGateFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectCourseRow(mock, "CAM_eng", 36, 2, "", "", "Mathematics required")
	expectNoAlternatives(mock)

	profile := ibProfile([6]int{7, 7, 7, 6, 6, 6}, 2, models.ResidencyHome)
	profile.IB.HL[0].Name = "Biology" // no HL maths anywhere

	client := &scriptedClient{}
	handler := newTestHandler(t, db, client)

	output, err := handler.Execute(context.Background(), &Input{CourseID: "CAM_eng", Profile: profile})

	require.NoError(t, err)
	assert.Equal(t, models.VerdictNotEligible, output.Verdict)
	assert.Equal(t, 0, output.ChancePercent)
	assert.NotEmpty(t, output.Checks.Failed)
	assert.Equal(t, 0, client.calls)
}

func TestHandler_Execute_ALevelBelowOffer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectCourseRow(mock, "WAR_cs", 0, 0, "A*AA", "", "")
	// No alternatives query: the IB minimum is unparseable from these fields.

	client := &scriptedClient{responses: []string{counsellorJSON}}
	handler := newTestHandler(t, db, client)

	output, err := handler.Execute(context.Background(), &Input{
		CourseID: "WAR_cs",
		Profile: models.ApplicantProfile{
			Curriculum: models.CurriculumALevels,
			Residency:  models.ResidencyHome,
			ALevels: &models.ALevelProfile{Subjects: []models.ALevelEntry{
				{Subject: "Mathematics", Grade: "A"},
				{Subject: "Physics", Grade: "A"},
				{Subject: "Computer Science", Grade: "B"},
			}},
		},
	})

	require.NoError(t, err)
	// AAB against A*AA is a -2 margin: 55 - 20 = 35.
	assert.Equal(t, 35, output.ChancePercent)
	assert.Equal(t, models.BandReach, output.Band)
	assert.Equal(t, "Eligible, borderline competitive", output.Verdict)
	assert.Contains(t, output.Checks.Failed, "Below typical offer (A*AA)")
	require.NotNil(t, output.Competitiveness.Margin)
	assert.Equal(t, -2, *output.Competitiveness.Margin)
	assert.Nil(t, output.Competitiveness.ThresholdUsed, "offer-based assessment carries no points threshold")
	require.NotNil(t, output.ApplicantContext)
	assert.Equal(t, 880, output.ApplicantContext.CohortSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CounsellorFailureDegrades(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectCourseRow(mock, "LSE_econ", 36, 2, "", "", "")
	expectNoAlternatives(mock)

	client := &scriptedClient{errs: []error{fmt.Errorf("status 503: service unavailable")}}
	handler := newTestHandler(t, db, client)

	output, err := handler.Execute(context.Background(), &Input{
		CourseID: "LSE_econ",
		Profile:  ibProfile([6]int{7, 7, 7, 6, 6, 6}, 2, models.ResidencyIntl),
	})

	require.NoError(t, err)
	// 41 vs intl threshold 38: 55 baseline + 21 surplus + 8 intl bonus.
	assert.Equal(t, 84, output.ChancePercent)
	require.NotNil(t, output.CounsellorError)
	assert.Equal(t, "error", output.CounsellorError["status"])

	// Fallback guidance survives, with the international hint first.
	require.NotNil(t, output.Counsellor)
	assert.Equal(t, "International applicants often need a slightly higher score than the published minimum.",
		output.Counsellor.WhatToDoNext[0])
}

func TestHandler_Execute_PSAdjustsScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "university_id", "name", "faculty",
		"min_points_home", "intl_buffer", "typical_offer",
		"min_requirements", "required_subjects", "ps_expected_signals", "tuition_intl"}).
		AddRow("OXF_ppe", "OXF", "PPE", "social-sciences",
			38, 2, "", "", "", "wider reading; essay prizes", 35000)
	mock.ExpectQuery(`SELECT id, university_id, name, faculty`).
		WithArgs("OXF_ppe").
		WillReturnRows(rows)
	expectNoAlternatives(mock)

	perfectRubric := `{"rubric": {
		"q1_motivation_course_fit": {"score": 10, "why": [], "evidence_snippets": []},
		"q2_academic_preparation": {"score": 10, "why": [], "evidence_snippets": []},
		"q3_supercurricular_value": {"score": 10, "why": [], "evidence_snippets": []},
		"specificity_evidence_density": {"score": 10, "why": [], "evidence_snippets": []},
		"reflection_intellectual_maturity": {"score": 10, "why": [], "evidence_snippets": []},
		"structure_coherence": {"score": 10, "why": [], "evidence_snippets": []},
		"writing_clarity_tone": {"score": 10, "why": [], "evidence_snippets": []}
	}, "strengths": ["Specific and reflective."], "risks": [], "red_flags": [], "what_to_do_next": []}`

	client := &scriptedClient{responses: []string{perfectRubric, counsellorJSON}}
	handler := newTestHandler(t, db, client)

	// 39 points vs 38 minimum: 55 + 7 = 62 base, then Exceptional PS at a
	// PS-heavy university adds 12.
	output, err := handler.Execute(context.Background(), &Input{
		CourseID: "OXF_ppe",
		Profile:  ibProfile([6]int{7, 7, 6, 6, 6, 5}, 2, models.ResidencyHome),
		PS:       &ps.Input{Format: ps.FormatLegacy, Statement: "I investigated market design because it connects proofs to policy."},
	})

	require.NoError(t, err)
	assert.Equal(t, 74, output.ChancePercent)
	assert.Equal(t, models.BandTarget, output.Band) // band stays grade-based

	require.NotNil(t, output.PSAnalysis)
	scores := output.PSAnalysis["scores"].(map[string]interface{})
	assert.Equal(t, "Exceptional", scores["band"])
	assert.Equal(t, 100, scores["weighted_total"])

	assert.Contains(t, output.Notes, "Strong personal statement gives you a real edge at this university (Exceptional band).")
	assert.Equal(t, 2, client.calls)
}

func TestHandler_Execute_InvalidProfile(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := newTestHandler(t, db, &scriptedClient{})

	_, err = handler.Execute(context.Background(), &Input{
		CourseID: "LSE_econ",
		Profile:  models.ApplicantProfile{Curriculum: "BTEC"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_CURRICULUM")

	_, err = handler.Execute(context.Background(), &Input{
		CourseID: "LSE_econ",
		Profile:  models.ApplicantProfile{Curriculum: models.CurriculumIB},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_PROFILE")
}
