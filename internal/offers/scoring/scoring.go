// Package scoring turns an applicant's grades and a course's thresholds
// into a 0..100 chance score with a labelled breakdown. The weights come
// from configuration; the defaults are calibrated against historical
// admissions outcomes and are not derivable from first principles.
package scoring

import (
	"math"
	"sort"

	"offr-workers/internal/common/config"
	"offr-workers/internal/models"
	"offr-workers/internal/offers/parser"
)

// Engine applies the configured weights. It holds no other state and is
// safe for concurrent use.
type Engine struct {
	cfg config.ScoringConfig
}

// New builds an Engine from scoring configuration.
func New(cfg config.ScoringConfig) *Engine {
	return &Engine{cfg: cfg}
}

// IBResult is the outcome of an IB competitiveness calculation.
type IBResult struct {
	Score         int
	ThresholdUsed int
	Margin        int
	Breakdown     []models.BreakdownEntry
}

// ALevelResult is the outcome of an A-level competitiveness calculation.
// MarginSum is nil when no typical offer could be compared against.
type ALevelResult struct {
	Score     int
	MarginSum *int
	Breakdown []models.BreakdownEntry
	Notes     []string
}

// ScoreIB computes the chance score for an IB applicant. Far-below
// applicants score zero outright; otherwise the score builds from the
// baseline with surplus credit, a shortfall penalty, and international
// adjustments, then clamps to 0..100.
func (e *Engine) ScoreIB(totalPoints, minPoints int, intl bool, intlBuffer int) IBResult {
	res := IBResult{ThresholdUsed: minPoints}

	// Three or more points under the home minimum is a hard floor.
	if totalPoints <= minPoints-3 {
		res.Margin = totalPoints - minPoints
		return res
	}

	intlThreshold := minPoints + intlBuffer
	if intl {
		res.ThresholdUsed = intlThreshold
	}
	res.Margin = totalPoints - res.ThresholdUsed

	score := e.cfg.Baseline
	res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
		Name:   "baseline",
		Points: e.cfg.Baseline,
	})

	surplus := totalPoints - res.ThresholdUsed
	if surplus < 0 {
		surplus = 0
	}
	bonus := int(math.Round(float64(surplus * e.cfg.IBPointWeight)))
	if bonus > e.cfg.IBSurplusCap {
		bonus = e.cfg.IBSurplusCap
	}
	if bonus != 0 {
		score += bonus
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "points above threshold",
			Points: bonus,
		})
	}

	if intl && totalPoints >= intlThreshold {
		score += e.cfg.IBIntlBonus
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "international threshold cleared",
			Points: e.cfg.IBIntlBonus,
		})
	}

	// The near-miss penalties are mutually exclusive: one point short is
	// penalised lighter than two points short, never both.
	if totalPoints == minPoints-1 {
		score -= e.cfg.IBOnePointPenalty
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "one point below minimum",
			Points: -e.cfg.IBOnePointPenalty,
		})
	} else if totalPoints == minPoints-2 {
		score -= e.cfg.IBTwoPointPenalty
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "two points below minimum",
			Points: -e.cfg.IBTwoPointPenalty,
		})
	}

	if intl && totalPoints >= minPoints && totalPoints < intlThreshold {
		score -= e.cfg.IBIntlGapPenalty
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "below international threshold",
			Points: -e.cfg.IBIntlGapPenalty,
		})
	}

	res.Score = Clamp(score)
	return res
}

// ScoreALevel computes the chance score for an A-level applicant against a
// parsed typical offer. Grades rank per position against the offer's
// grades, best three first.
func (e *Engine) ScoreALevel(grades []string, typicalOffer string) ALevelResult {
	res := ALevelResult{}

	ranks := make([]int, 0, len(grades))
	for _, g := range grades {
		if r := parser.GradeRank(g); r > 0 {
			ranks = append(ranks, r)
		}
	}
	if len(ranks) < 3 {
		res.Notes = append(res.Notes, "needs at least 3 A-level grades")
		return res
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	ranks = ranks[:3]

	score := e.cfg.Baseline
	res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
		Name:   "baseline",
		Points: e.cfg.Baseline,
	})

	offerRanks := parser.OfferRanks(typicalOffer)
	if len(offerRanks) != 3 {
		res.Notes = append(res.Notes, "approximate (no typical offer parsed)")
		res.Score = Clamp(score)
		return res
	}

	marginSum := 0
	for i := 0; i < 3; i++ {
		marginSum += ranks[i] - offerRanks[i]
	}
	res.MarginSum = &marginSum

	switch {
	case marginSum > 0:
		bonus := marginSum * e.cfg.ALMarginWeight
		if bonus > e.cfg.ALMarginCap {
			bonus = e.cfg.ALMarginCap
		}
		score += bonus
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "grades above typical offer",
			Points: bonus,
		})
	case marginSum < 0:
		penalty := -marginSum * e.cfg.ALShortfallWeight
		if penalty > e.cfg.ALShortfallCap {
			penalty = e.cfg.ALShortfallCap
		}
		score -= penalty
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "grades below typical offer",
			Points: -penalty,
		})
	default:
		res.Breakdown = append(res.Breakdown, models.BreakdownEntry{
			Name:   "matches typical offer",
			Points: 0,
		})
	}

	res.Score = Clamp(score)
	return res
}

// Band buckets a clamped score.
func (e *Engine) Band(score int) models.Band {
	switch {
	case score <= e.cfg.ReachBandCeiling:
		return models.BandReach
	case score <= e.cfg.TargetBandCeiling:
		return models.BandTarget
	default:
		return models.BandSafe
	}
}

// Clamp bounds a score to 0..100.
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
