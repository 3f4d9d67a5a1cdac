package fusion

import (
	"math"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

const (
	minAnswerWeight = 0.1
	maxAnswerWeight = 3.0

	// timeWeight floor and scale: answers that took 5s or longer are
	// dampened down to 0.7, instant answers keep full weight.
	minTimeWeight    = 0.7
	timeWeightWindow = 5000.0
)

var sourceTypeWeights = map[common.SourceType]float64{
	common.SourceKnowledgeGraph: 1.2,
	common.SourceDocuments:      1.0,
	common.SourceHistoricalData: 0.9,
}

// CalculateAnswerWeight derives the fusion weight of one answer from its
// source priority, confidence, source-type prior and response latency.
// The result is always within [0.1, 3].
func CalculateAnswerWeight(priority int, confidence float64, srcType common.SourceType, executionMs int64) float64 {
	if priority <= 0 {
		priority = 1
	}
	confidence = common.Clamp01(confidence)

	typeWeight, ok := sourceTypeWeights[srcType]
	if !ok {
		typeWeight = 1.0
	}

	timeWeight := math.Max(minTimeWeight, 1-float64(executionMs)/timeWeightWindow)

	weight := float64(priority) * math.Pow(confidence, 0.8) * typeWeight * timeWeight
	return common.Clamp(weight, minAnswerWeight, maxAnswerWeight)
}
