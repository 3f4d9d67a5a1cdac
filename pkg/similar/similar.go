// Package similar implements the historical-project similarity engine. It
// scores a target project's feature vector against a corpus of historical
// projects across five weighted dimensions and derives cost-estimate
// suggestions with confidence intervals from the best matches.
//
// Every function in the package is stateless: historical projects are
// read-only reference data and nothing here mutates shared state.
package similar

import "sort"

const (
	// DefaultMinSimilarityScore filters out weak matches.
	DefaultMinSimilarityScore = 0.5
	// DefaultMaxResults caps the number of returned matches.
	DefaultMaxResults = 10
)

// BasicFeatures describe a project's physical shape.
type BasicFeatures struct {
	ProjectType    string  `json:"project_type"`
	BuildingArea   float64 `json:"building_area"`
	Location       string  `json:"location"`
	Floors         int     `json:"floors"`
	CompletionYear int     `json:"completion_year"`
	StructureType  string  `json:"structure_type"`
}

// CostFeatures describe a project's cost profile. MaterialCostRatio and
// LaborCostRatio are shares of total cost in [0,1].
type CostFeatures struct {
	UnitCost          float64 `json:"unit_cost"`
	TotalCost         float64 `json:"total_cost"`
	MaterialCostRatio float64 `json:"material_cost_ratio"`
	LaborCostRatio    float64 `json:"labor_cost_ratio"`
	Currency          string  `json:"currency"`
	PriceYear         int     `json:"price_year"`
}

// QualityFeatures describe build quality. QualityLevel is one of
// "basic", "standard", "premium".
type QualityFeatures struct {
	QualityLevel   string   `json:"quality_level"`
	Standard       string   `json:"standard"`
	TechnicalSpecs []string `json:"technical_specs,omitempty"`
}

// ProjectFeatures is the full feature vector of one project.
type ProjectFeatures struct {
	Basic   BasicFeatures   `json:"basic_features"`
	Cost    CostFeatures    `json:"cost_features"`
	Quality QualityFeatures `json:"quality_features"`
}

// HistoricalProject is one read-only reference project from the corpus.
type HistoricalProject struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Features ProjectFeatures `json:"features"`
}

// MatchWeights control the blend of the five similarity dimensions.
type MatchWeights struct {
	Basic    float64 `json:"basic"`
	Cost     float64 `json:"cost"`
	Quality  float64 `json:"quality"`
	Location float64 `json:"location"`
	Temporal float64 `json:"temporal"`
}

// DefaultMatchWeights is the standard dimension blend.
var DefaultMatchWeights = MatchWeights{
	Basic:    0.3,
	Cost:     0.4,
	Quality:  0.2,
	Location: 0.05,
	Temporal: 0.05,
}

// Filter is one caller-supplied candidate filter triple.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// SimilarProjectRequest asks for the historical projects most similar to
// the target features.
type SimilarProjectRequest struct {
	Target             ProjectFeatures `json:"project_features"`
	MaxResults         int             `json:"max_results,omitempty"`
	MinSimilarityScore float64         `json:"min_similarity_score,omitempty"`
	Weights            *MatchWeights   `json:"match_weights,omitempty"`
	Filters            []Filter        `json:"filters,omitempty"`
}

// MatchFactor is one named sub-score kept for explainability.
type MatchFactor struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// SimilarityResult is the full scoring breakdown for one candidate.
type SimilarityResult struct {
	OverallScore       float64       `json:"overall_score"`
	BasicSimilarity    float64       `json:"basic_similarity"`
	CostSimilarity     float64       `json:"cost_similarity"`
	QualitySimilarity  float64       `json:"quality_similarity"`
	LocationSimilarity float64       `json:"location_similarity"`
	TemporalSimilarity float64       `json:"temporal_similarity"`
	MatchFactors       []MatchFactor `json:"match_factors"`
	ConfidenceLevel    float64       `json:"confidence_level"`
	Explanation        string        `json:"explanation"`
}

// ApplicableFactor buckets one similarity dimension into an
// applicability grade for estimate reuse.
type ApplicableFactor struct {
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	Applicability string  `json:"applicability"`
}

// ProjectMatch is one surviving corpus candidate with its scoring
// breakdown and derived estimate suggestions.
type ProjectMatch struct {
	Project           HistoricalProject    `json:"project"`
	Similarity        SimilarityResult     `json:"similarity"`
	Estimates         []EstimateSuggestion `json:"estimate_suggestions"`
	ApplicableFactors []ApplicableFactor   `json:"applicable_factors"`
}

// FindSimilarProjects scores every corpus candidate against the request's
// target features, discards weak matches, and returns the best matches in
// descending score order together with estimate suggestions. It never
// returns an error: an empty corpus or over-strict threshold simply yields
// an empty list.
func FindSimilarProjects(req SimilarProjectRequest, corpus []HistoricalProject) []ProjectMatch {
	weights := DefaultMatchWeights
	if req.Weights != nil {
		weights = *req.Weights
	}
	minScore := req.MinSimilarityScore
	if minScore <= 0 {
		minScore = DefaultMinSimilarityScore
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	matches := make([]ProjectMatch, 0)
	for _, candidate := range corpus {
		if !matchesFilters(candidate, req.Filters) {
			continue
		}

		sim := CalculateSimilarity(req.Target, candidate.Features, weights)
		if sim.OverallScore < minScore {
			continue
		}

		matches = append(matches, ProjectMatch{
			Project:           candidate,
			Similarity:        sim,
			Estimates:         GenerateEstimateSuggestions(req.Target, candidate, sim),
			ApplicableFactors: applicableFactors(sim),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity.OverallScore > matches[j].Similarity.OverallScore
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}

const (
	applicabilityHigh = 0.8
	applicabilityMid  = 0.6
	applicabilityLow  = 0.4
)

func applicabilityBucket(score float64) string {
	switch {
	case score >= applicabilityHigh:
		return "highly_applicable"
	case score >= applicabilityMid:
		return "moderately_applicable"
	case score >= applicabilityLow:
		return "low_applicable"
	default:
		return "not_applicable"
	}
}

func applicableFactors(sim SimilarityResult) []ApplicableFactor {
	factors := []struct {
		name  string
		score float64
	}{
		{"basic_similarity", sim.BasicSimilarity},
		{"cost_similarity", sim.CostSimilarity},
		{"location_similarity", sim.LocationSimilarity},
	}
	out := make([]ApplicableFactor, 0, len(factors))
	for _, f := range factors {
		out = append(out, ApplicableFactor{
			Name:          f.name,
			Score:         f.score,
			Applicability: applicabilityBucket(f.score),
		})
	}
	return out
}
