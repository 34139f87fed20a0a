package ps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckConstraints(t *testing.T) {
	t.Run("short answers warn individually", func(t *testing.T) {
		c := CheckConstraints(Input{
			Format: FormatUCAS3Q,
			Q1:     strings.Repeat("a", 400),
			Q2:     strings.Repeat("b", 100),
			Q3:     "",
		})
		assert.Equal(t, 400, c.Q1Chars)
		assert.Equal(t, 100, c.Q2Chars)
		assert.Equal(t, 0, c.Q3Chars)
		assert.Contains(t, c.Warnings, "Q2 below 350 characters.")
		assert.NotContains(t, c.Warnings, "Q1 below 350 characters.")
		// Empty answers carry no warning; the student may not have started.
		assert.NotContains(t, c.Warnings, "Q3 below 350 characters.")
	})

	t.Run("total over limit warns", func(t *testing.T) {
		c := CheckConstraints(Input{
			Format: FormatUCAS3Q,
			Q1:     strings.Repeat("a", 1400),
			Q2:     strings.Repeat("b", 1400),
			Q3:     strings.Repeat("c", 1400),
		})
		assert.Equal(t, 4200, c.TotalChars)
		assert.Contains(t, c.Warnings, "Total above 4,000 characters.")
	})

	t.Run("legacy statement counts whole body", func(t *testing.T) {
		c := CheckConstraints(Input{Format: FormatLegacy, Statement: strings.Repeat("x", 500)})
		assert.Equal(t, 500, c.TotalChars)
		assert.Empty(t, c.Warnings)
	})
}

func TestAnalyze(t *testing.T) {
	text := "I learned about proteins at Imperial College. This led me to investigate " +
		"folding because the structures fascinated me. I am passionate about Biology."

	h := Analyze(text)

	// "i learned", "this led me", "because" each appear once.
	assert.Equal(t, 3, h.EvidenceMarkersCount)
	assert.Contains(t, h.ClicheFlags, "i am passionate")
	assert.Greater(t, h.SpecificityEstimate, 0)
	assert.Zero(t, h.RepetitionNgramClusters)
}

func TestAnalyzeFlagsRepetition(t *testing.T) {
	h := Analyze(strings.Repeat("the same four words ", 5))
	assert.Greater(t, h.RepetitionNgramClusters, 0)
}

func TestSanitizeRubric(t *testing.T) {
	raw := map[string]interface{}{
		"rubric": map[string]interface{}{
			"q1_motivation_course_fit": map[string]interface{}{
				"score": float64(14), // over range
				"why":   []interface{}{"clear motivation"},
			},
			"structure_coherence": map[string]interface{}{
				"score": float64(-2), // under range
			},
			"writing_clarity_tone": "not an object",
		},
	}

	rubric := SanitizeRubric(raw)

	assert.Len(t, rubric, len(RubricKeys))
	assert.Equal(t, 10, rubric["q1_motivation_course_fit"].Score)
	assert.Equal(t, []string{"clear motivation"}, rubric["q1_motivation_course_fit"].Why)
	assert.Equal(t, 0, rubric["structure_coherence"].Score)
	// Malformed and missing cells default to a neutral 5.
	assert.Equal(t, 5, rubric["writing_clarity_tone"].Score)
	assert.Equal(t, 5, rubric["q2_academic_preparation"].Score)
}

func TestSanitizeRubricWithoutRubricKey(t *testing.T) {
	rubric := SanitizeRubric(map[string]interface{}{})
	assert.Len(t, rubric, len(RubricKeys))
	for _, key := range RubricKeys {
		assert.Equal(t, 5, rubric[key].Score)
	}
}

func TestWeightedScore(t *testing.T) {
	perfect := map[string]RubricCell{}
	neutral := map[string]RubricCell{}
	for _, key := range RubricKeys {
		perfect[key] = RubricCell{Score: 10}
		neutral[key] = RubricCell{Score: 5}
	}

	assert.Equal(t, 100, WeightedScore(perfect))
	assert.Equal(t, 50, WeightedScore(neutral))
	assert.Equal(t, 0, WeightedScore(map[string]RubricCell{}))
}

func TestBandFromScore(t *testing.T) {
	assert.Equal(t, "Weak", BandFromScore(39))
	assert.Equal(t, "OK", BandFromScore(40))
	assert.Equal(t, "OK", BandFromScore(64))
	assert.Equal(t, "Strong", BandFromScore(65))
	assert.Equal(t, "Strong", BandFromScore(84))
	assert.Equal(t, "Exceptional", BandFromScore(85))
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierHeavy, TierFor("OXF"))
	assert.Equal(t, TierHeavy, TierFor("lse"))
	assert.Equal(t, TierModerate, TierFor("DUR"))
	assert.Equal(t, TierLight, TierFor("BATH"))
	assert.Equal(t, TierLight, TierFor("UNKNOWN"))
}

func TestApplyToScore(t *testing.T) {
	t.Run("heavy tier exceptional lifts score", func(t *testing.T) {
		score, note := ApplyToScore(60, "Exceptional", "CAM")
		assert.Equal(t, 72, score)
		assert.NotEmpty(t, note)
	})

	t.Run("heavy tier weak statement is costly", func(t *testing.T) {
		score, note := ApplyToScore(60, "Weak", "OXF")
		assert.Equal(t, 40, score)
		assert.Contains(t, note, "significantly weakens")
	})

	t.Run("light tier OK is neutral", func(t *testing.T) {
		score, note := ApplyToScore(60, "OK", "BATH")
		assert.Equal(t, 60, score)
		assert.Empty(t, note)
	})

	t.Run("clamps at bounds", func(t *testing.T) {
		low, _ := ApplyToScore(5, "Weak", "OXF")
		assert.Equal(t, 0, low)
		high, _ := ApplyToScore(95, "Exceptional", "UCL")
		assert.Equal(t, 100, high)
	})

	t.Run("missing band is a no-op", func(t *testing.T) {
		score, note := ApplyToScore(60, "", "OXF")
		assert.Equal(t, 60, score)
		assert.Empty(t, note)
	})
}
