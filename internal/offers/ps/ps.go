// Package ps scores personal statements. Deterministic heuristics and
// character-limit checks run locally; the rubric itself is filled in by the
// AI layer and sanitised here before weighting.
package ps

import (
	"fmt"
	"regexp"
	"strings"
)

// Format distinguishes the UCAS three-question layout from a single legacy
// statement.
type Format string

const (
	FormatUCAS3Q Format = "UCAS_3Q"
	FormatLegacy Format = "LEGACY"
)

// Input is a personal statement as submitted.
type Input struct {
	Format    Format `json:"format"`
	Q1        string `json:"q1,omitempty"`
	Q2        string `json:"q2,omitempty"`
	Q3        string `json:"q3,omitempty"`
	Statement string `json:"statement,omitempty"`
}

// FullText joins the statement body for heuristic scanning.
func (in Input) FullText() string {
	if in.Format == FormatUCAS3Q {
		return in.Q1 + "\n" + in.Q2 + "\n" + in.Q3
	}
	return in.Statement
}

// Constraints reports per-question and total character counts with UCAS
// limit warnings (350 minimum per answered question, 4000 total).
type Constraints struct {
	Q1Chars    int      `json:"q1_chars"`
	Q2Chars    int      `json:"q2_chars"`
	Q3Chars    int      `json:"q3_chars"`
	TotalChars int      `json:"total_chars"`
	Warnings   []string `json:"warnings"`
}

// CheckConstraints measures an input against the UCAS character limits.
func CheckConstraints(in Input) Constraints {
	c := Constraints{Warnings: []string{}}

	if in.Format == FormatUCAS3Q {
		c.Q1Chars, c.Q2Chars, c.Q3Chars = len(in.Q1), len(in.Q2), len(in.Q3)
		c.TotalChars = c.Q1Chars + c.Q2Chars + c.Q3Chars
		if c.Q1Chars > 0 && c.Q1Chars < 350 {
			c.Warnings = append(c.Warnings, "Q1 below 350 characters.")
		}
		if c.Q2Chars > 0 && c.Q2Chars < 350 {
			c.Warnings = append(c.Warnings, "Q2 below 350 characters.")
		}
		if c.Q3Chars > 0 && c.Q3Chars < 350 {
			c.Warnings = append(c.Warnings, "Q3 below 350 characters.")
		}
		if c.TotalChars > 4000 {
			c.Warnings = append(c.Warnings, "Total above 4,000 characters.")
		}
		return c
	}

	c.TotalChars = len(in.Statement)
	if c.TotalChars > 4000 {
		c.Warnings = append(c.Warnings, "Total above 4,000 characters.")
	}
	return c
}

var (
	evidenceMarkers = []string{
		"i learned", "i realised", "i realized", "this led me",
		"i investigated", "i analysed", "i analyzed", "which showed", "because",
	}
	clichePhrases = []string{
		"since i was young", "from a young age", "always been fascinated",
		"i am passionate", "i've always been passionate", "dream to", "ever since",
	}
	properNoun = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
	wordToken  = regexp.MustCompile(`[A-Za-z']+`)
)

// Heuristics are cheap text signals passed to the rubric prompt so the
// model grades against observable evidence rather than vibes.
type Heuristics struct {
	EvidenceMarkersCount     int      `json:"evidence_markers_count"`
	ClicheFlags              []string `json:"cliche_flags"`
	SpecificityEstimate      int      `json:"specificity_estimate"`
	RepetitionNgramClusters  int      `json:"repetition_ngram_clusters"`
}

// Analyze computes the heuristic signals for a statement body.
func Analyze(text string) Heuristics {
	lower := strings.ToLower(text)

	h := Heuristics{ClicheFlags: []string{}}
	for _, m := range evidenceMarkers {
		h.EvidenceMarkersCount += strings.Count(lower, m)
	}
	for _, c := range clichePhrases {
		if strings.Contains(lower, c) {
			h.ClicheFlags = append(h.ClicheFlags, c)
		}
	}
	h.SpecificityEstimate = len(properNoun.FindAllString(text, -1))

	// Clusters of a 4-gram appearing three or more times flag recycled
	// filler text.
	words := wordToken.FindAllString(lower, -1)
	freq := map[string]int{}
	for i := 0; i+4 <= len(words); i++ {
		freq[strings.Join(words[i:i+4], " ")]++
	}
	for _, count := range freq {
		if count >= 3 {
			h.RepetitionNgramClusters++
		}
	}
	return h
}

// RubricCell is one scored dimension with the model's reasoning.
type RubricCell struct {
	Score            int      `json:"score"` // 0..10
	Why              []string `json:"why"`
	EvidenceSnippets []string `json:"evidence_snippets"`
}

// RubricKeys lists the seven scored dimensions in weight order.
var RubricKeys = []string{
	"q1_motivation_course_fit",
	"q2_academic_preparation",
	"q3_supercurricular_value",
	"specificity_evidence_density",
	"reflection_intellectual_maturity",
	"structure_coherence",
	"writing_clarity_tone",
}

var rubricWeights = map[string]int{
	"q1_motivation_course_fit":         18,
	"q2_academic_preparation":          18,
	"q3_supercurricular_value":         18,
	"specificity_evidence_density":     14,
	"reflection_intellectual_maturity": 14,
	"structure_coherence":              10,
	"writing_clarity_tone":             8,
}

// SanitizeRubric repairs a model-produced rubric in place: missing or
// malformed cells default to a neutral 5, scores clamp to 0..10.
func SanitizeRubric(raw map[string]interface{}) map[string]RubricCell {
	rubric := map[string]RubricCell{}
	rawRubric, _ := raw["rubric"].(map[string]interface{})

	for _, key := range RubricKeys {
		cell := RubricCell{Score: 5, Why: []string{}, EvidenceSnippets: []string{}}
		if rawCell, ok := rawRubric[key].(map[string]interface{}); ok {
			if s, ok := rawCell["score"].(float64); ok {
				score := int(s)
				if score < 0 {
					score = 0
				}
				if score > 10 {
					score = 10
				}
				cell.Score = score
			}
			cell.Why = toStringSlice(rawCell["why"])
			cell.EvidenceSnippets = toStringSlice(rawCell["evidence_snippets"])
		}
		rubric[key] = cell
	}
	return rubric
}

func toStringSlice(v interface{}) []string {
	out := []string{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// WeightedScore folds the rubric into a 0..100 total.
func WeightedScore(rubric map[string]RubricCell) int {
	total := 0.0
	for key, weight := range rubricWeights {
		cell, ok := rubric[key]
		if !ok {
			continue
		}
		total += float64(cell.Score) / 10.0 * float64(weight)
	}
	return int(total + 0.5)
}

// BandFromScore buckets a weighted PS score.
func BandFromScore(total int) string {
	switch {
	case total <= 39:
		return "Weak"
	case total <= 64:
		return "OK"
	case total <= 84:
		return "Strong"
	default:
		return "Exceptional"
	}
}

// Tier reflects how much weight a university places on personal statements.
type Tier string

const (
	TierHeavy    Tier = "heavy"
	TierModerate Tier = "moderate"
	TierLight    Tier = "light"
)

var (
	heavyUnis    = map[string]bool{"OXF": true, "CAM": true, "LSE": true, "IMP": true, "UCL": true}
	moderateUnis = map[string]bool{"KCL": true, "WAR": true, "EDIN": true, "BRIS": true, "DUR": true, "MAN": true, "STA": true}
)

// TierFor classifies a university by how PS-selective it is. Unknown ids
// default to light.
func TierFor(universityID string) Tier {
	uid := strings.ToUpper(universityID)
	if heavyUnis[uid] {
		return TierHeavy
	}
	if moderateUnis[uid] {
		return TierModerate
	}
	return TierLight
}

// tierImpact maps (tier, PS band) to a chance-score delta.
var tierImpact = map[Tier]map[string]int{
	TierHeavy:    {"Exceptional": 12, "Strong": 6, "OK": -8, "Weak": -20},
	TierModerate: {"Exceptional": 8, "Strong": 4, "OK": -4, "Weak": -12},
	TierLight:    {"Exceptional": 5, "Strong": 2, "OK": 0, "Weak": -5},
}

// ApplyToScore adjusts a grade-based chance score for PS quality at the
// given university. The returned note explains large swings.
func ApplyToScore(baseScore int, psBand, universityID string) (int, string) {
	if psBand == "" {
		return baseScore, ""
	}
	tier := TierFor(universityID)
	delta := tierImpact[tier][psBand]

	adjusted := baseScore + delta
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 100 {
		adjusted = 100
	}

	var note string
	switch {
	case delta <= -12:
		note = fmt.Sprintf("Your personal statement significantly weakens this application (%s band). Admissions teams here read every word carefully.", psBand)
	case delta <= -4:
		note = fmt.Sprintf("Personal statement is below the standard expected here (%s band), which will likely hurt your chances.", psBand)
	case delta >= 8:
		note = fmt.Sprintf("Strong personal statement gives you a real edge at this university (%s band).", psBand)
	case delta >= 4:
		note = fmt.Sprintf("Your personal statement adds a meaningful positive signal (%s band).", psBand)
	}
	return adjusted, note
}
