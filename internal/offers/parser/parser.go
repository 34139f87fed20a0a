// Package parser extracts admission thresholds from free-text course
// requirement strings. Catalogue rows mix phrasing ("IB: 38", "A-levels
// A*AA", "36 points minimum"), so extraction works through prioritised
// patterns rather than a single grammar.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Grade ranks for A-level offers, A* highest.
var gradeRank = map[string]int{
	"A*": 6,
	"A":  5,
	"B":  4,
	"C":  3,
	"D":  2,
	"E":  1,
}

const (
	minIBPoints = 24
	maxIBPoints = 45
)

var (
	// A two-digit number directly labelled as IB wins over any other number
	// in the text.
	ibLabelled = regexp.MustCompile(`(?i)\bIB\b[^A-Za-z0-9]{0,10}(\d{2})\b`)
	bareNumber = regexp.MustCompile(`\b(\d{2})\b`)

	// Typical-offer candidates in priority order: an explicit A-level label,
	// then an offer keyword, then any bare grade-like run.
	offerLabelled = regexp.MustCompile(`A[-\s]?[Ll]evel[s]?\s*[:\s=]+\s*([A-Ea-e\*]{3,5})`)
	offerKeyword  = regexp.MustCompile(`(?i)(?:offer|grades?|require[sd]?|typical|minimum)[^A-Za-z]{0,10}([A-Ea-e\*]{3,5})\b`)
	offerBare     = regexp.MustCompile(`\b([A-Ea-e][A-Ea-e\*]{2,4})\b`)
)

// ExtractMinimumPoints finds the IB points threshold in requirement text.
// An IB-labelled number is taken verbatim; otherwise the first plausible
// two-digit total in the valid range is used.
func ExtractMinimumPoints(text string) (int, bool) {
	if text == "" {
		return 0, false
	}

	if m := ibLabelled.FindStringSubmatch(text); m != nil {
		points, err := strconv.Atoi(m[1])
		if err == nil && points >= minIBPoints && points <= maxIBPoints {
			return points, true
		}
	}

	for _, m := range bareNumber.FindAllStringSubmatch(text, -1) {
		points, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if points >= minIBPoints && points <= maxIBPoints {
			return points, true
		}
	}

	return 0, false
}

// ExtractMinimumPointsFrom scans several requirement fields as one text,
// preserving field order so the most authoritative column wins ties.
func ExtractMinimumPointsFrom(texts ...string) (int, bool) {
	return ExtractMinimumPoints(joinNonEmpty(texts))
}

// ExtractTypicalOfferFrom scans several requirement fields as one text.
func ExtractTypicalOfferFrom(texts ...string) (string, bool) {
	return ExtractTypicalOffer(joinNonEmpty(texts))
}

func joinNonEmpty(texts []string) string {
	var parts []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " | ")
}

// ExtractTypicalOffer finds a three-grade A-level offer in requirement
// text and returns it in canonical uppercase form.
func ExtractTypicalOffer(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	for _, re := range []*regexp.Regexp{offerLabelled, offerKeyword, offerBare} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := strings.ToUpper(m[1])
			if grades := DecodeGrades(candidate); len(grades) == 3 {
				return candidate, true
			}
		}
	}

	return "", false
}

// DecodeGrades splits an offer string like "A*AB" into individual grades.
// "A*" consumes two characters. Anything undecodable yields nil.
func DecodeGrades(offer string) []string {
	offer = strings.ToUpper(strings.TrimSpace(offer))
	var grades []string
	for i := 0; i < len(offer); {
		if i+1 < len(offer) && offer[i] == 'A' && offer[i+1] == '*' {
			grades = append(grades, "A*")
			i += 2
			continue
		}
		g := string(offer[i])
		if _, ok := gradeRank[g]; !ok {
			return nil
		}
		grades = append(grades, g)
		i++
	}
	return grades
}

// GradeRank returns the numeric rank of a single grade, 0 if unknown.
func GradeRank(grade string) int {
	return gradeRank[strings.ToUpper(strings.TrimSpace(grade))]
}

// OfferRanks decodes an offer into ranks, truncated to the first three
// grades when the text carries more.
func OfferRanks(offer string) []int {
	grades := DecodeGrades(offer)
	if grades == nil {
		return nil
	}
	if len(grades) > 3 {
		grades = grades[:3]
	}
	ranks := make([]int, 0, len(grades))
	for _, g := range grades {
		ranks = append(ranks, gradeRank[g])
	}
	return ranks
}
