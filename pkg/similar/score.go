package similar

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// missingFeatureScore is the neutral score used whenever one side of a
// comparison has no data for the feature.
const missingFeatureScore = 0.5

// CalculateSimilarity scores the target features against one candidate
// across the five weighted dimensions. All component scores live in [0,1]
// and are rounded to two decimals for reporting.
func CalculateSimilarity(target, candidate ProjectFeatures, weights MatchWeights) SimilarityResult {
	basic := basicSimilarity(target.Basic, candidate.Basic)
	cost := costSimilarity(target.Cost, candidate.Cost)
	quality := qualitySimilarity(target.Quality, candidate.Quality)
	location := locationSimilarity(target.Basic.Location, candidate.Basic.Location)
	temporal := temporalSimilarity(target.Basic.CompletionYear, candidate.Basic.CompletionYear)

	totalWeight := weights.Basic + weights.Cost + weights.Quality + weights.Location + weights.Temporal
	if totalWeight <= 0 {
		weights = DefaultMatchWeights
		totalWeight = 1
	}
	overall := (basic*weights.Basic + cost*weights.Cost + quality*weights.Quality +
		location*weights.Location + temporal*weights.Temporal) / totalWeight

	factors := matchFactors(target, candidate, weights, totalWeight)

	return SimilarityResult{
		OverallScore:       round2(overall),
		BasicSimilarity:    round2(basic),
		CostSimilarity:     round2(cost),
		QualitySimilarity:  round2(quality),
		LocationSimilarity: round2(location),
		TemporalSimilarity: round2(temporal),
		MatchFactors:       factors,
		ConfidenceLevel:    round2(confidenceLevel(overall, factors)),
		Explanation:        explainSimilarity(basic, cost, quality, location, temporal),
	}
}

// basicSimilarity blends project type, scale and structure agreement.
func basicSimilarity(target, candidate BasicFeatures) float64 {
	typeScore := exactMatchScore(target.ProjectType, candidate.ProjectType, 0.0)
	areaScore := ratioScore(target.BuildingArea, candidate.BuildingArea)
	floorScore := ratioScore(float64(target.Floors), float64(candidate.Floors))
	structureScore := exactMatchScore(target.StructureType, candidate.StructureType, 0.3)

	return 0.3*typeScore + 0.4*areaScore + 0.15*floorScore + 0.15*structureScore
}

// costSimilarity blends unit cost, total cost and cost structure agreement.
func costSimilarity(target, candidate CostFeatures) float64 {
	unitScore := ratioScore(target.UnitCost, candidate.UnitCost)
	totalScore := ratioScore(target.TotalCost, candidate.TotalCost)
	structureScore := costStructureSimilarity(target, candidate)

	return 0.5*unitScore + 0.3*totalScore + 0.2*structureScore
}

// costStructureSimilarity compares the material and labor cost shares. A
// project with neither share recorded contributes the neutral score.
func costStructureSimilarity(target, candidate CostFeatures) float64 {
	if (target.MaterialCostRatio <= 0 && target.LaborCostRatio <= 0) ||
		(candidate.MaterialCostRatio <= 0 && candidate.LaborCostRatio <= 0) {
		return missingFeatureScore
	}
	diff := (math.Abs(target.MaterialCostRatio-candidate.MaterialCostRatio) +
		math.Abs(target.LaborCostRatio-candidate.LaborCostRatio)) / 2
	return math.Max(0, 1-diff)
}

var qualityLevelRanks = map[string]int{
	"basic":    0,
	"standard": 1,
	"premium":  2,
}

// qualitySimilarity blends the ordinal quality level distance with the
// declared construction standard.
func qualitySimilarity(target, candidate QualityFeatures) float64 {
	levelScore := missingFeatureScore
	targetRank, okT := qualityLevelRanks[strings.ToLower(target.QualityLevel)]
	candidateRank, okC := qualityLevelRanks[strings.ToLower(candidate.QualityLevel)]
	if okT && okC {
		distance := math.Abs(float64(targetRank - candidateRank))
		levelScore = math.Max(0, 1-distance*0.3)
	}
	standardScore := exactMatchScore(target.Standard, candidate.Standard, 0.4)

	return 0.7*levelScore + 0.3*standardScore
}

// locationSimilarity grades geographic proximity: same city, same
// province, different province.
func locationSimilarity(target, candidate string) float64 {
	target = strings.TrimSpace(target)
	candidate = strings.TrimSpace(candidate)
	if target == "" || candidate == "" {
		return missingFeatureScore
	}
	if target == candidate {
		return 1.0
	}
	targetCity := ExtractCity(target)
	candidateCity := ExtractCity(candidate)
	if targetCity != "" && targetCity == candidateCity {
		return 1.0
	}
	targetProvince := ProvinceOf(targetCity)
	candidateProvince := ProvinceOf(candidateCity)
	if targetProvince != "" && targetProvince == candidateProvince {
		return 0.7
	}
	return 0.3
}

// temporalSimilarity decays linearly with the completion year gap and
// bottoms out at zero after ten years.
func temporalSimilarity(targetYear, candidateYear int) float64 {
	if targetYear <= 0 || candidateYear <= 0 {
		return missingFeatureScore
	}
	gap := math.Abs(float64(targetYear - candidateYear))
	return math.Max(0, 1-gap*0.1)
}

// ratioScore compares two positive magnitudes as min/max, so equal values
// score 1.0 and the score decays toward zero as they diverge.
func ratioScore(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return missingFeatureScore
	}
	return math.Min(a, b) / math.Max(a, b)
}

// exactMatchScore compares two categorical strings. mismatch is the score
// for two present but different values.
func exactMatchScore(a, b string, mismatch float64) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return missingFeatureScore
	}
	if strings.EqualFold(a, b) {
		return 1.0
	}
	return mismatch
}

// matchFactors keeps the most decision-relevant sub-scores with their
// effective weight inside the overall blend.
func matchFactors(target, candidate ProjectFeatures, weights MatchWeights, totalWeight float64) []MatchFactor {
	entries := []struct {
		name      string
		score     float64
		subWeight float64
		dimension float64
	}{
		{"project_type", exactMatchScore(target.Basic.ProjectType, candidate.Basic.ProjectType, 0.0), 0.3, weights.Basic},
		{"building_area", ratioScore(target.Basic.BuildingArea, candidate.Basic.BuildingArea), 0.4, weights.Basic},
		{"unit_cost", ratioScore(target.Cost.UnitCost, candidate.Cost.UnitCost), 0.5, weights.Cost},
		{"quality_level", qualityLevelScore(target.Quality.QualityLevel, candidate.Quality.QualityLevel), 0.7, weights.Quality},
	}

	factors := make([]MatchFactor, 0, len(entries))
	for _, e := range entries {
		weight := e.subWeight * e.dimension / totalWeight
		factors = append(factors, MatchFactor{
			Name:         e.name,
			Score:        round2(e.score),
			Weight:       round2(weight),
			Contribution: round2(e.score * weight),
		})
	}
	return factors
}

func qualityLevelScore(target, candidate string) float64 {
	targetRank, okT := qualityLevelRanks[strings.ToLower(target)]
	candidateRank, okC := qualityLevelRanks[strings.ToLower(candidate)]
	if !okT || !okC {
		return missingFeatureScore
	}
	return math.Max(0, 1-math.Abs(float64(targetRank-candidateRank))*0.3)
}

// confidenceLevel blends the overall score with factor-score consistency:
// uniform factor scores mean the blend is trustworthy, scattered ones mean
// the overall score papers over disagreement.
func confidenceLevel(overall float64, factors []MatchFactor) float64 {
	if len(factors) == 0 {
		return overall
	}
	scores := make([]float64, len(factors))
	for i, f := range factors {
		scores[i] = f.Score
	}
	variance := stat.PopVariance(scores, nil)
	return 0.7*overall + 0.3*(1-math.Min(1, variance))
}

func explainSimilarity(basic, cost, quality, location, temporal float64) string {
	grade := func(score float64) string {
		switch {
		case score >= 0.8:
			return "高"
		case score >= 0.5:
			return "中"
		default:
			return "低"
		}
	}
	return fmt.Sprintf("基础特征相似度%s，造价特征相似度%s，质量特征相似度%s，地域相似度%s，时间相似度%s",
		grade(basic), grade(cost), grade(quality), grade(location), grade(temporal))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
