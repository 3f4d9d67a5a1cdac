package fusion

import (
	"time"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
)

// Strategy selects how surviving answers are combined into one fused answer.
type Strategy string

const (
	StrategyWeighted          Strategy = "weighted"
	StrategyHighestConfidence Strategy = "highest_confidence"
	StrategyConsensus         Strategy = "consensus"
	StrategyComprehensive     Strategy = "comprehensive"
)

// NoInformationAnswer is returned when no source produced usable data.
const NoInformationAnswer = "抱歉，没有找到相关信息，请尝试调整问题或添加更多数据源。"

// DegradedAnswer is returned when the fusion pipeline itself fails.
const DegradedAnswer = "融合过程中出现错误"

// WeightedAnswer is an answer candidate derived from one DataSourceResult.
// Weight scales the answer's influence in the fusion formulas; it never
// changes the underlying Confidence.
type WeightedAnswer struct {
	Text       string
	Confidence float64
	Source     common.DataSource
	Weight     float64
	KeyPoints  []string
	Entities   []string
	Sentiment  string
	Complexity string
}

// Metadata describes how a fused answer was produced.
type Metadata struct {
	Strategy          Strategy `json:"strategy"`
	SourcesUsed       int      `json:"sources_used"`
	ConflictsResolved int      `json:"conflicts_resolved"`
	ProcessingTime    int64    `json:"processing_time_ms"`
}

// Result is the terminal artifact of one fusion call.
type Result struct {
	Answer     string                     `json:"answer"`
	Confidence float64                    `json:"confidence"`
	Sources    []common.SourceAttribution `json:"sources"`
	Metadata   Metadata                   `json:"metadata"`
}

// FuseAnswers combines the per-source results for one query into a single
// answer with attribution and confidence. It is a total function: any
// failure inside the pipeline degrades to a zero-confidence answer instead
// of propagating to the orchestrator.
func FuseAnswers(results []common.DataSourceResult, query string, strategy Strategy) (out Result) {
	start := time.Now()
	if strategy == "" {
		strategy = StrategyWeighted
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Fusion] Pipeline panic recovered", "panic", r)
			out = Result{
				Answer:     DegradedAnswer,
				Confidence: 0,
				Metadata: Metadata{
					Strategy:       strategy,
					ProcessingTime: time.Since(start).Milliseconds(),
				},
			}
		}
	}()

	usable := make([]common.DataSourceResult, 0, len(results))
	for _, r := range results {
		if r.Success && r.Data != nil {
			usable = append(usable, r)
		}
	}
	if len(usable) == 0 {
		return Result{
			Answer:     NoInformationAnswer,
			Confidence: 0,
			Metadata: Metadata{
				Strategy:       strategy,
				ProcessingTime: time.Since(start).Milliseconds(),
			},
		}
	}

	answers := make([]*WeightedAnswer, 0, len(usable))
	for _, r := range usable {
		text := extractAnswerText(r)
		if text == "" {
			continue
		}
		pre := preprocessText(text)
		answers = append(answers, &WeightedAnswer{
			Text:       pre.Text,
			Confidence: common.Clamp01(r.Confidence),
			Source:     r.Source,
			Weight:     CalculateAnswerWeight(r.Source.Priority, r.Confidence, r.Source.Type, r.ExecutionTime),
			KeyPoints:  pre.KeyPoints,
			Entities:   pre.Entities,
			Sentiment:  pre.Sentiment,
			Complexity: pre.Complexity,
		})
	}
	if len(answers) == 0 {
		return Result{
			Answer:     NoInformationAnswer,
			Confidence: 0,
			Metadata: Metadata{
				Strategy:       strategy,
				ProcessingTime: time.Since(start).Milliseconds(),
			},
		}
	}

	sims := pairwiseSimilarities(answers)
	conflicts := DetectConflicts(answers, sims)
	resolveConflicts(strategy, conflicts, answers)

	text, confidence := applyStrategy(strategy, answers)
	text = postFormat(query, text)

	attribution := make([]common.SourceAttribution, 0, len(answers))
	for _, a := range answers {
		attribution = append(attribution, common.SourceAttribution{
			SourceID:   a.Source.ID,
			SourceName: a.Source.Name,
			SourceType: a.Source.Type,
			Confidence: a.Confidence,
			Weight:     a.Weight,
		})
	}

	return Result{
		Answer:     text,
		Confidence: common.Clamp01(confidence),
		Sources:    attribution,
		Metadata: Metadata{
			Strategy:          strategy,
			SourcesUsed:       len(answers),
			ConflictsResolved: len(conflicts),
			ProcessingTime:    time.Since(start).Milliseconds(),
		},
	}
}
