package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMinimumPoints(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
		found    bool
	}{
		{
			name:     "IB labelled number",
			text:     "IB: 38 with 6 in HL Mathematics",
			expected: 38,
			found:    true,
		},
		{
			name:     "IB label with separator noise",
			text:     "Typical offer IB - 36 points",
			expected: 36,
			found:    true,
		},
		{
			name:     "bare number in range",
			text:     "36 points overall including core",
			expected: 36,
			found:    true,
		},
		{
			name:  "bare number out of range ignored",
			text:  "apply before age 18, see page 99",
			found: false,
		},
		{
			name:     "IB label beats earlier bare number",
			text:     "Contextual offers from 32. IB 40 standard.",
			expected: 40,
			found:    true,
		},
		{
			name:  "no numbers at all",
			text:  "Three A levels required",
			found: false,
		},
		{
			name:  "empty text",
			text:  "",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, found := ExtractMinimumPoints(tt.text)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.expected, points)
			}
		})
	}
}

func TestExtractTypicalOffer(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		found    bool
	}{
		{
			name:     "labelled a-level offer",
			text:     "A-levels: A*AA including Mathematics",
			expected: "A*AA",
			found:    true,
		},
		{
			name:     "keyword preceded offer",
			text:     "typical offer AAB or equivalent",
			expected: "AAB",
			found:    true,
		},
		{
			name:     "bare grade run",
			text:     "We ask for ABB at minimum",
			expected: "ABB",
			found:    true,
		},
		{
			name:     "lowercase normalised",
			text:     "grades: aab",
			expected: "AAB",
			found:    true,
		},
		{
			name:     "uppercase keyword outranks earlier bare run",
			text:     "ABB preferred by some tutors. OFFER: AAA",
			expected: "AAA",
			found:    true,
		},
		{
			name:  "two grades is not an offer",
			text:  "AB in any two sciences",
			found: false,
		},
		{
			name:  "four plain grades rejected",
			text:  "offer AAAA",
			found: false,
		},
		{
			name:     "double star offer",
			text:     "A level requirement A*A*A",
			expected: "A*A*A",
			found:    true,
		},
		{
			name:  "no offer present",
			text:  "IB 38 points",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, found := ExtractTypicalOffer(tt.text)
			assert.Equal(t, tt.found, found, "offer: %q", offer)
			if tt.found {
				assert.Equal(t, tt.expected, offer)
			}
		})
	}
}

func TestExtractMinimumPointsFrom(t *testing.T) {
	points, found := ExtractMinimumPointsFrom("", "Typical offer AAB", "IB 38 points")
	assert.True(t, found)
	assert.Equal(t, 38, points)

	_, found = ExtractMinimumPointsFrom("", "")
	assert.False(t, found)
}

func TestExtractTypicalOfferFrom(t *testing.T) {
	offer, found := ExtractTypicalOfferFrom("IB 36", "A-levels: AAB")
	assert.True(t, found)
	assert.Equal(t, "AAB", offer)
}

func TestDecodeGrades(t *testing.T) {
	assert.Equal(t, []string{"A*", "A", "A"}, DecodeGrades("A*AA"))
	assert.Equal(t, []string{"A", "B", "B"}, DecodeGrades("abb"))
	assert.Equal(t, []string{"A*", "A*", "A"}, DecodeGrades("A*A*A"))
	assert.Nil(t, DecodeGrades("AXB"), "unknown grade letter")
	assert.Nil(t, DecodeGrades("*AA"), "stray star")
}

func TestOfferRanks(t *testing.T) {
	assert.Equal(t, []int{6, 5, 5}, OfferRanks("A*AA"))
	// Longer strings truncate to the leading three grades.
	assert.Equal(t, []int{5, 5, 4}, OfferRanks("AABB"))
	assert.Nil(t, OfferRanks("not an offer"))
}

func TestGradeRank(t *testing.T) {
	assert.Equal(t, 6, GradeRank("A*"))
	assert.Equal(t, 5, GradeRank("a"))
	assert.Equal(t, 1, GradeRank("E"))
	assert.Equal(t, 0, GradeRank("F"))
}
