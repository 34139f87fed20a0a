// internal/offers/ps/prompt.go
package ps

import (
	"encoding/json"
	"fmt"
)

// BuildRubricPrompt renders the reviewer prompt for one statement. The
// provider must answer with a bare JSON object; deterministic constraint
// and heuristic findings are embedded so the model scores against them
// rather than re-deriving its own.
func BuildRubricPrompt(courseName, faculty string, expectedSignals []string, in Input) string {
	constraints := CheckConstraints(in)
	heur := Analyze(in.FullText())

	if expectedSignals == nil {
		expectedSignals = []string{}
	}
	signalsJSON, _ := json.Marshal(expectedSignals)
	constraintsJSON, _ := json.Marshal(constraints)
	heurJSON, _ := json.Marshal(heur)

	var statement string
	if in.Format == FormatUCAS3Q {
		statement = fmt.Sprintf("Q1: %s\n\nQ2: %s\n\nQ3: %s", in.Q1, in.Q2, in.Q3)
	} else {
		statement = in.Statement
	}

	return fmt.Sprintf(`You are an admissions-style UCAS personal statement reviewer.
Return ONLY valid JSON. No markdown, no code fences, no preamble.

Context:
- course_name: %s
- faculty: %s
- expected_signals: %s

Constraints: %s
Heuristics: %s

Statement:
%s

Rubric, score each dimension 0-10:
- q1_motivation_course_fit          (why this subject, intellectual curiosity)
- q2_academic_preparation           (relevant reading, coursework, academic depth)
- q3_supercurricular_value          (activities, experience, reflection)
- specificity_evidence_density      (concrete examples vs vague claims)
- reflection_intellectual_maturity  (insight, nuance, growth shown)
- structure_coherence               (logical flow and progression)
- writing_clarity_tone              (register, precision, authentic voice)

Rules:
- Evidence snippets must be direct short quotes of at most 12 words from the statement.
- Do not invent achievements not present in the statement.
- Be specific and honest. Penalise generic openers, unsubstantiated claims, and activity-listing without reflection.

Required JSON structure:
{
  "rubric": {
    "<dimension_key>": {
      "score": <0-10>,
      "why": ["<reason>"],
      "evidence_snippets": ["<short quote>"]
    }
  },
  "strengths": ["<strength>"],
  "risks": ["<risk>"],
  "red_flags": ["<flag>"],
  "what_to_do_next": ["<action>"]
}`, courseName, faculty, signalsJSON, constraintsJSON, heurJSON, statement)
}
