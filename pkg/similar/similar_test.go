package similar

import (
	"testing"
)

func referenceProject() HistoricalProject {
	return HistoricalProject{
		ID:   "hp-001",
		Name: "杭州某高层住宅项目",
		Features: ProjectFeatures{
			Basic: BasicFeatures{
				ProjectType:    "住宅",
				BuildingArea:   12000,
				Location:       "浙江省杭州市西湖区",
				Floors:         18,
				CompletionYear: 2022,
				StructureType:  "框架剪力墙",
			},
			Cost: CostFeatures{
				UnitCost:          3500,
				TotalCost:         42000000,
				MaterialCostRatio: 0.55,
				LaborCostRatio:    0.25,
				Currency:          "CNY",
				PriceYear:         2022,
			},
			Quality: QualityFeatures{
				QualityLevel: "standard",
				Standard:     "国标GB50300",
			},
		},
	}
}

func TestFindSimilarProjects_IdenticalProjectScoresNearPerfect(t *testing.T) {
	project := referenceProject()
	req := SimilarProjectRequest{Target: project.Features}

	matches := FindSimilarProjects(req, []HistoricalProject{project})
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	sim := matches[0].Similarity
	if sim.OverallScore < 0.95 || sim.OverallScore > 1.0 {
		t.Fatalf("identical project overall score = %v, want in [0.95, 1.0]", sim.OverallScore)
	}
	for name, score := range map[string]float64{
		"basic":    sim.BasicSimilarity,
		"cost":     sim.CostSimilarity,
		"quality":  sim.QualitySimilarity,
		"location": sim.LocationSimilarity,
		"temporal": sim.TemporalSimilarity,
	} {
		if score < 0.95 {
			t.Fatalf("identical project %s similarity = %v, want >= 0.95", name, score)
		}
	}
	if sim.ConfidenceLevel < 0.95 {
		t.Fatalf("identical project confidence = %v, want >= 0.95", sim.ConfidenceLevel)
	}
}

func TestFindSimilarProjects_StrictThresholdYieldsEmptyList(t *testing.T) {
	target := referenceProject().Features
	target.Basic.ProjectType = "医院"
	target.Basic.BuildingArea = 80000
	target.Basic.Location = "兰州市"
	target.Cost.UnitCost = 9000

	req := SimilarProjectRequest{
		Target:             target,
		MinSimilarityScore: 0.9,
	}
	matches := FindSimilarProjects(req, []HistoricalProject{referenceProject()})
	if len(matches) != 0 {
		t.Fatalf("expected no matches above 0.9, got %d", len(matches))
	}
}

func TestFindSimilarProjects_SortedAndCapped(t *testing.T) {
	base := referenceProject()
	corpus := make([]HistoricalProject, 0, 12)
	for i := 0; i < 12; i++ {
		p := base
		p.ID = string(rune('a' + i))
		p.Features.Basic.BuildingArea = 12000 + float64(i)*500
		corpus = append(corpus, p)
	}

	matches := FindSimilarProjects(SimilarProjectRequest{Target: base.Features}, corpus)
	if len(matches) != DefaultMaxResults {
		t.Fatalf("expected %d matches, got %d", DefaultMaxResults, len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity.OverallScore > matches[i-1].Similarity.OverallScore {
			t.Fatalf("matches not sorted descending at index %d", i)
		}
	}
}

func TestBasicSimilarity_MonotonicInArea(t *testing.T) {
	candidate := referenceProject().Features.Basic
	prev := -1.0
	for _, area := range []float64{2000, 5000, 8000, 12000} {
		target := candidate
		target.BuildingArea = area
		score := basicSimilarity(target, candidate)
		if score < prev {
			t.Fatalf("basic similarity decreased as area approached candidate: area=%v score=%v prev=%v", area, score, prev)
		}
		prev = score
	}
}

func TestLocationSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		candidate string
		want      float64
	}{
		{"same city", "杭州市西湖区", "浙江省杭州市", 1.0},
		{"same province", "杭州市", "宁波市", 0.7},
		{"different province", "北京市朝阳区", "成都市", 0.3},
		{"missing side", "", "北京市", 0.5},
		{"both unknown but equal", "某县城", "某县城", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := locationSimilarity(tt.target, tt.candidate); got != tt.want {
				t.Fatalf("locationSimilarity(%q, %q) = %v, want %v", tt.target, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestTemporalSimilarity(t *testing.T) {
	tests := []struct {
		name          string
		target, other int
		want          float64
	}{
		{"same year", 2022, 2022, 1.0},
		{"three years apart", 2022, 2019, 0.7},
		{"beyond window", 2025, 2010, 0.0},
		{"missing year", 0, 2022, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := temporalSimilarity(tt.target, tt.other)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("temporalSimilarity(%d, %d) = %v, want %v", tt.target, tt.other, got, tt.want)
			}
		})
	}
}

func TestQualitySimilarity_OrdinalDistance(t *testing.T) {
	score := func(a, b string) float64 {
		return qualitySimilarity(
			QualityFeatures{QualityLevel: a, Standard: "国标"},
			QualityFeatures{QualityLevel: b, Standard: "国标"},
		)
	}
	same := score("standard", "standard")
	oneStep := score("basic", "standard")
	twoSteps := score("basic", "premium")
	if !(same > oneStep && oneStep > twoSteps) {
		t.Fatalf("quality similarity not ordered by level distance: %v, %v, %v", same, oneStep, twoSteps)
	}
}

func TestMatchesFilters(t *testing.T) {
	candidate := referenceProject()
	tests := []struct {
		name    string
		filters []Filter
		want    bool
	}{
		{"no filters", nil, true},
		{"area gte pass", []Filter{{Field: "building_area", Operator: "gte", Value: 10000.0}}, true},
		{"area gte fail", []Filter{{Field: "building_area", Operator: "gte", Value: 20000.0}}, false},
		{"type eq pass", []Filter{{Field: "project_type", Operator: "eq", Value: "住宅"}}, true},
		{"type ne fail", []Filter{{Field: "project_type", Operator: "ne", Value: "住宅"}}, false},
		{"location contains", []Filter{{Field: "location", Operator: "contains", Value: "杭州"}}, true},
		{"unknown field ignored", []Filter{{Field: "nope", Operator: "eq", Value: "x"}}, true},
		{"int value coerced", []Filter{{Field: "completion_year", Operator: "lt", Value: 2024}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesFilters(candidate, tt.filters); got != tt.want {
				t.Fatalf("matchesFilters = %v, want %v", got, tt.want)
			}
		})
	}
}
