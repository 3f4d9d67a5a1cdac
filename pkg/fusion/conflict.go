package fusion

import (
	"fmt"
	"math"
	"strings"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

// ConflictType classifies how two answers disagree.
type ConflictType string

const (
	ConflictContradiction ConflictType = "contradiction"
	ConflictFactual       ConflictType = "factual"
	ConflictCategorical   ConflictType = "categorical"
)

// ConflictSeverity grades how strongly a conflict should dampen the
// involved answers.
type ConflictSeverity string

const (
	SeverityLow    ConflictSeverity = "low"
	SeverityMedium ConflictSeverity = "medium"
	SeverityHigh   ConflictSeverity = "high"
)

// Conflict records one detected disagreement between two answers. It is
// ephemeral: computed per fusion call and discarded afterwards.
type Conflict struct {
	Type                ConflictType
	Severity            ConflictSeverity
	ConflictingAnswers  [2]*WeightedAnswer
	Similarity          float64
	SuggestedResolution string
}

const (
	contradictionSimilarityCeiling = 0.3
	contradictionConfidenceFloor   = 0.6
	numericConflictThreshold       = 0.2
)

// DetectConflicts scans every unordered answer pair for semantic
// contradictions and numeric disagreements, then checks the whole answer
// set for categorical (project-type) disagreement. Detection is symmetric:
// the order of a pair never changes the conflict type or severity.
func DetectConflicts(answers []*WeightedAnswer, sims [][]TextSimilarity) []Conflict {
	conflicts := make([]Conflict, 0)

	for i := 0; i < len(answers); i++ {
		for j := i + 1; j < len(answers); j++ {
			a, b := answers[i], answers[j]
			sim := sims[i][j].Similarity

			if sim < contradictionSimilarityCeiling &&
				a.Confidence > contradictionConfidenceFloor &&
				b.Confidence > contradictionConfidenceFloor {
				conflicts = append(conflicts, Conflict{
					Type:               ConflictContradiction,
					Severity:           SeverityMedium,
					ConflictingAnswers: [2]*WeightedAnswer{a, b},
					Similarity:         sim,
					SuggestedResolution: fmt.Sprintf(
						"来源「%s」与「%s」的回答差异较大，建议以权重较高的来源为准",
						a.Source.Name, b.Source.Name,
					),
				})
			}

			if c, ok := detectNumericConflict(a, b, sim); ok {
				conflicts = append(conflicts, c)
			}
		}
	}

	if c, ok := detectCategoricalConflict(answers); ok {
		conflicts = append(conflicts, c)
	}

	return conflicts
}

// detectNumericConflict compares the means of the two answers' numeric
// token sets; a relative difference above 20% is a factual conflict.
func detectNumericConflict(a, b *WeightedAnswer, sim float64) (Conflict, bool) {
	numsA := extractNumbers(a.Text)
	numsB := extractNumbers(b.Text)
	if len(numsA) == 0 || len(numsB) == 0 {
		return Conflict{}, false
	}

	avgA := mean(numsA)
	avgB := mean(numsB)
	max := math.Max(avgA, avgB)
	if max == 0 {
		return Conflict{}, false
	}
	relDiff := math.Abs(avgA-avgB) / max
	if relDiff <= numericConflictThreshold {
		return Conflict{}, false
	}

	return Conflict{
		Type:               ConflictFactual,
		Severity:           SeverityLow,
		ConflictingAnswers: [2]*WeightedAnswer{a, b},
		Similarity:         sim,
		SuggestedResolution: fmt.Sprintf(
			"数值偏差%.0f%%，建议核对「%s」与「%s」的数据口径",
			relDiff*100, a.Source.Name, b.Source.Name,
		),
	}, true
}

// detectCategoricalConflict fires when at least two answers reference
// different project-type keywords.
func detectCategoricalConflict(answers []*WeightedAnswer) (Conflict, bool) {
	type ref struct {
		keyword string
		answer  *WeightedAnswer
	}
	refs := make([]ref, 0)
	keywords := make(map[string]struct{})
	for _, a := range answers {
		for _, kw := range projectTypeVocabulary {
			if strings.Contains(a.Text, kw) {
				refs = append(refs, ref{keyword: kw, answer: a})
				keywords[kw] = struct{}{}
				break
			}
		}
	}
	if len(keywords) < 2 {
		return Conflict{}, false
	}

	var first, second *ref
	for i := range refs {
		if first == nil {
			first = &refs[i]
			continue
		}
		if refs[i].keyword != first.keyword {
			second = &refs[i]
			break
		}
	}
	if second == nil {
		return Conflict{}, false
	}

	return Conflict{
		Type:               ConflictCategorical,
		Severity:           SeverityLow,
		ConflictingAnswers: [2]*WeightedAnswer{first.answer, second.answer},
		SuggestedResolution: fmt.Sprintf(
			"回答涉及不同项目类型（%s／%s），建议在问题中明确项目类型",
			first.keyword, second.keyword,
		),
	}, true
}

var severityFactors = map[ConflictSeverity]float64{
	SeverityHigh:   0.5,
	SeverityMedium: 0.7,
	SeverityLow:    0.9,
}

// resolveConflicts dampens the weight of every answer involved in a
// conflict. Only weights change; confidence values are never touched.
func resolveConflicts(strategy Strategy, conflicts []Conflict, answers []*WeightedAnswer) {
	if len(conflicts) == 0 {
		return
	}

	for _, c := range conflicts {
		for _, a := range c.ConflictingAnswers {
			switch strategy {
			case StrategyHighestConfidence:
				a.Weight *= 0.5
			case StrategyConsensus:
				a.Weight *= 0.8
			case StrategyComprehensive:
				factor := severityFactors[c.Severity]
				priority := a.Source.Priority
				if priority <= 0 {
					priority = 1
				}
				damp := math.Pow(a.Confidence, 0.5) * math.Sqrt(float64(priority)) * factor
				a.Weight *= common.Clamp(damp, 0.3, 1)
			default: // weighted
				a.Weight *= 0.7
			}
			a.Weight = common.Clamp(a.Weight, minAnswerWeight, maxAnswerWeight)
		}
	}
}

func mean(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return sum / float64(len(nums))
}
