package query

import "github.com/whjyxl/cost-rag/backend/pkg/common"

// EarlyTerminationPolicy decides when enough high-confidence evidence has
// been collected to skip the remaining lower-priority tiers. It trades
// completeness for latency; the defaults are a tunable heuristic, not a
// correctness requirement.
type EarlyTerminationPolicy struct {
	// MinHighConfidence is the required number of successful results
	// whose confidence exceeds ConfidenceThreshold.
	MinHighConfidence int
	// ConfidenceThreshold grades a result as high-confidence.
	ConfidenceThreshold float64
	// MinSuccessRatio is the required share of configured sources that
	// have already succeeded.
	MinSuccessRatio float64
}

// DefaultEarlyTermination matches the stock policy: two results above 0.8
// and at least 60% of sources succeeded.
var DefaultEarlyTermination = EarlyTerminationPolicy{
	MinHighConfidence:   2,
	ConfidenceThreshold: 0.8,
	MinSuccessRatio:     0.6,
}

// Satisfied reports whether the collected results justify skipping the
// remaining tiers. totalConfigured counts all sources in the request,
// including ones whose tiers have not run yet.
func (p EarlyTerminationPolicy) Satisfied(results []common.DataSourceResult, totalConfigured int) bool {
	if totalConfigured == 0 {
		return false
	}
	var successes, highConfidence int
	for _, r := range results {
		if !r.Success {
			continue
		}
		successes++
		if r.Confidence > p.ConfidenceThreshold {
			highConfidence++
		}
	}
	return highConfidence >= p.MinHighConfidence &&
		float64(successes)/float64(totalConfigured) >= p.MinSuccessRatio
}
