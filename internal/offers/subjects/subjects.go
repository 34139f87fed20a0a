// Package subjects normalizes applicant subject names and enforces
// required-subject rules before any competitiveness scoring happens.
// Admissions filters reject on subjects regardless of points, so a gate
// failure short-circuits the whole assessment.
package subjects

import (
	"regexp"
	"strings"
)

// Canonical subject tokens.
const (
	TokenMathHL       = "math_hl"
	TokenMath         = "math"
	TokenFurtherMaths = "further_maths"
)

var mathWord = regexp.MustCompile(`\bmath`)

// ibMathTokens trigger the HL Maths requirement when any of them appears
// in course requirement text.
var ibMathTokens = []string{"math", "analysis and approaches", "aa hl", "math aa"}

// Named-subject tokens a requirement text can impose, in reporting order.
// IB treats ties as alternatives (any one HL match passes); A level
// requires every named subject individually.
var (
	ibGateTokens     = []string{"biology", "chemistry", "physics", "psychology", "economics", "computer science"}
	alevelGateTokens = []string{"physics", "chemistry", "biology", "computer science", "economics"}
)

var displayNames = map[string]string{
	"biology":          "Biology",
	"chemistry":        "Chemistry",
	"physics":          "Physics",
	"psychology":       "Psychology",
	"economics":        "Economics",
	"computer science": "Computer Science",
}

// Normalize maps a free-text subject name to a canonical token. The rules
// mirror how applicants actually write subjects ("Math AA HL", "Maths -
// Analysis and Approaches"). Unknown names fall through as a lowercased
// trimmed copy and only ever match a requirement verbatim.
func Normalize(name string, isHL bool) string {
	n := strings.ToLower(strings.TrimSpace(name))

	switch {
	case strings.Contains(n, "analysis and approaches"),
		strings.Contains(n, "math aa"),
		strings.Contains(n, "aa hl"):
		if isHL || strings.Contains(n, "hl") {
			return TokenMathHL
		}
		return TokenMath
	case strings.Contains(n, "further math"):
		return TokenFurtherMaths
	case mathWord.MatchString(n):
		if isHL {
			return TokenMathHL
		}
		return TokenMath
	case strings.Contains(n, "econ"):
		return "economics"
	case strings.Contains(n, "english"):
		return "english"
	case strings.Contains(n, "physic"):
		return "physics"
	case strings.Contains(n, "chem"):
		return "chemistry"
	case strings.Contains(n, "bio"):
		return "biology"
	case strings.Contains(n, "psych"):
		return "psychology"
	case strings.Contains(n, "computer science"), strings.Contains(n, "comp sci"):
		return "computer science"
	}

	return n
}

// GateResult carries the outcome of a required-subject check.
type GateResult struct {
	OK     bool
	Passed []string
	Failed []string
}

// CheckIB validates IB higher-level subjects against required-subject
// text. Only HL subjects count. A maths mention demands HL Mathematics;
// when the text names specific subjects, holding any one of them at HL
// passes. The check stops at the first hard failure.
func CheckIB(hlSubjects []string, required string) GateResult {
	res := GateResult{OK: true}
	req := strings.ToLower(required)
	if strings.TrimSpace(req) == "" {
		return res
	}

	hlNorm := make(map[string]bool, len(hlSubjects))
	for _, s := range hlSubjects {
		hlNorm[Normalize(s, true)] = true
	}

	if containsAny(req, ibMathTokens) {
		if hlNorm[TokenMathHL] {
			res.Passed = append(res.Passed, "Meets subject requirement (HL Maths)")
		} else {
			res.OK = false
			res.Failed = append(res.Failed, "Missing required subject: HL Maths")
			return res
		}
	}

	var present []string
	for _, tok := range ibGateTokens {
		if strings.Contains(req, tok) {
			present = append(present, tok)
		}
	}
	if len(present) > 0 {
		matched := ""
		for _, tok := range present {
			if hlNorm[Normalize(tok, false)] {
				matched = tok
				break
			}
		}
		if matched != "" {
			res.Passed = append(res.Passed, "Meets subject requirement ("+displayNames[matched]+")")
		} else {
			names := make([]string, 0, len(present))
			for _, tok := range present {
				names = append(names, displayNames[tok])
			}
			res.OK = false
			res.Failed = append(res.Failed, "Missing required subject: "+strings.Join(names, " / "))
			return res
		}
	}

	return res
}

// CheckALevel validates A-level subjects against required-subject text.
// Maths, HL-tagged maths, and Further Maths all satisfy a maths mention;
// every other subject the text names must be held individually. The
// check stops at the first hard failure.
func CheckALevel(subjectNames []string, required string) GateResult {
	res := GateResult{OK: true}
	req := strings.ToLower(required)
	if strings.TrimSpace(req) == "" {
		return res
	}

	tokens := make(map[string]bool, len(subjectNames))
	for _, s := range subjectNames {
		tokens[Normalize(s, false)] = true
	}

	if mathWord.MatchString(req) {
		if tokens[TokenMath] || tokens[TokenMathHL] || tokens[TokenFurtherMaths] {
			res.Passed = append(res.Passed, "Meets subject requirement (Maths)")
		} else {
			res.OK = false
			res.Failed = append(res.Failed, "Missing required subject: Maths")
			return res
		}
	}

	for _, tok := range alevelGateTokens {
		if !strings.Contains(req, tok) {
			continue
		}
		if tokens[Normalize(tok, false)] {
			res.Passed = append(res.Passed, "Meets subject requirement ("+displayNames[tok]+")")
		} else {
			res.OK = false
			res.Failed = append(res.Failed, "Missing required subject: "+displayNames[tok])
			return res
		}
	}

	return res
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
