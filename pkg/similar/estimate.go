package similar

import (
	"fmt"
	"math"
	"strings"
)

// ConfidenceInterval brackets a suggested value. ConfidenceLevel is the
// match confidence the bracket width was derived from.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// AdjustmentFactor records one multiplier applied while transferring a
// historical cost onto the target project.
type AdjustmentFactor struct {
	Name        string  `json:"name"`
	Factor      float64 `json:"factor"`
	Description string  `json:"description"`
}

// EstimateSuggestion is one per-category unit-cost suggestion derived from
// a matched historical project.
type EstimateSuggestion struct {
	CostCategory       string             `json:"cost_category"`
	SuggestedUnitCost  float64            `json:"suggested_unit_cost"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	SupportingProjects []string           `json:"supporting_projects"`
	AdjustmentFactors  []AdjustmentFactor `json:"adjustment_factors"`
	Rationale          string             `json:"rationale"`
}

// costCategoryShares split a building's unit cost into the conventional
// cost categories.
var costCategoryShares = []struct {
	category string
	share    float64
}{
	{"土建工程", 0.45},
	{"装饰工程", 0.25},
	{"安装工程", 0.20},
	{"其他费用", 0.10},
}

// qualityCostMultipliers scale costs between quality grades.
var qualityCostMultipliers = map[string]float64{
	"basic":    0.85,
	"standard": 1.00,
	"premium":  1.25,
}

// annualCostEscalation is the assumed yearly construction price drift.
const annualCostEscalation = 1.03

// GenerateEstimateSuggestions transfers a matched project's unit cost onto
// the target by applying location, temporal and quality adjustments, then
// splits the result into cost categories with confidence intervals. A
// candidate without a recorded unit cost yields no suggestions.
func GenerateEstimateSuggestions(target ProjectFeatures, match HistoricalProject, sim SimilarityResult) []EstimateSuggestion {
	baseUnitCost := match.Features.Cost.UnitCost
	if baseUnitCost <= 0 {
		return nil
	}

	adjustments := buildAdjustments(target, match.Features)
	adjusted := baseUnitCost
	for _, adj := range adjustments {
		adjusted *= adj.Factor
	}

	suggestions := make([]EstimateSuggestion, 0, len(costCategoryShares))
	for _, cc := range costCategoryShares {
		value := round2(adjusted * cc.share)
		suggestions = append(suggestions, EstimateSuggestion{
			CostCategory:       cc.category,
			SuggestedUnitCost:  value,
			ConfidenceInterval: confidenceInterval(value, sim.ConfidenceLevel),
			SupportingProjects: []string{match.ID},
			AdjustmentFactors:  adjustments,
			Rationale: fmt.Sprintf("基于相似项目「%s」（相似度%.2f）的单方造价%.0f元推算",
				match.Name, sim.OverallScore, baseUnitCost),
		})
	}
	return suggestions
}

// buildAdjustments derives the multipliers that carry a historical cost
// into the target project's context. Only materially non-neutral factors
// are reported.
func buildAdjustments(target, source ProjectFeatures) []AdjustmentFactor {
	adjustments := make([]AdjustmentFactor, 0, 3)

	targetFactor := PriceFactor(target.Basic.Location)
	sourceFactor := PriceFactor(source.Basic.Location)
	if locationAdj := targetFactor / sourceFactor; math.Abs(locationAdj-1) > 0.001 {
		adjustments = append(adjustments, AdjustmentFactor{
			Name:        "location",
			Factor:      round2(locationAdj),
			Description: "地区价格水平调整",
		})
	}

	if target.Basic.CompletionYear > 0 && source.Basic.CompletionYear > 0 {
		yearGap := target.Basic.CompletionYear - source.Basic.CompletionYear
		if yearGap != 0 {
			adjustments = append(adjustments, AdjustmentFactor{
				Name:        "temporal",
				Factor:      round2(math.Pow(annualCostEscalation, float64(yearGap))),
				Description: fmt.Sprintf("按年均%.0f%%价格变动调整%d年", (annualCostEscalation-1)*100, yearGap),
			})
		}
	}

	targetQuality, okT := qualityCostMultipliers[strings.ToLower(target.Quality.QualityLevel)]
	sourceQuality, okS := qualityCostMultipliers[strings.ToLower(source.Quality.QualityLevel)]
	if okT && okS && targetQuality != sourceQuality {
		adjustments = append(adjustments, AdjustmentFactor{
			Name:        "quality",
			Factor:      round2(targetQuality / sourceQuality),
			Description: "质量等级调整",
		})
	}

	return adjustments
}

// confidenceInterval brackets the value with a ±20%·z band, where z is
// the normal quantile for the coverage level the match confidence earns.
func confidenceInterval(value, confidence float64) ConfidenceInterval {
	var z float64
	switch {
	case confidence >= 0.8:
		z = 1.96
	case confidence >= 0.6:
		z = 1.645
	default:
		z = 1.0
	}
	margin := value * 0.2 * z
	return ConfidenceInterval{
		Lower:           round2(math.Max(0, value-margin)),
		Upper:           round2(value + margin),
		ConfidenceLevel: confidence,
	}
}
