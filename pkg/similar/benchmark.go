package similar

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CostBenchmark summarizes the unit-cost distribution of a group of
// historical projects.
type CostBenchmark struct {
	ProjectType  string  `json:"project_type"`
	SampleSize   int     `json:"sample_size"`
	MeanUnitCost float64 `json:"mean_unit_cost"`
	Median       float64 `json:"median_unit_cost"`
	StdDev       float64 `json:"std_dev"`
	P25          float64 `json:"p25_unit_cost"`
	P75          float64 `json:"p75_unit_cost"`
	Min          float64 `json:"min_unit_cost"`
	Max          float64 `json:"max_unit_cost"`
}

// ComputeCostBenchmark aggregates unit costs over the corpus, optionally
// restricted to one project type. Projects without a recorded unit cost
// are skipped. Returns ok=false when fewer than two samples remain.
func ComputeCostBenchmark(corpus []HistoricalProject, projectType string) (CostBenchmark, bool) {
	costs := make([]float64, 0, len(corpus))
	for _, p := range corpus {
		if projectType != "" && p.Features.Basic.ProjectType != projectType {
			continue
		}
		if c := p.Features.Cost.UnitCost; c > 0 {
			costs = append(costs, c)
		}
	}
	if len(costs) < 2 {
		return CostBenchmark{}, false
	}

	sort.Float64s(costs)
	return CostBenchmark{
		ProjectType:  projectType,
		SampleSize:   len(costs),
		MeanUnitCost: round2(stat.Mean(costs, nil)),
		Median:       round2(stat.Quantile(0.5, stat.Empirical, costs, nil)),
		StdDev:       round2(stat.StdDev(costs, nil)),
		P25:          round2(stat.Quantile(0.25, stat.Empirical, costs, nil)),
		P75:          round2(stat.Quantile(0.75, stat.Empirical, costs, nil)),
		Min:          costs[0],
		Max:          costs[len(costs)-1],
	}, true
}
