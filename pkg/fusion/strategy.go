package fusion

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/whjyxl/cost-rag/backend/pkg/common"
)

const maxCombinedAnswers = 3

// applyStrategy combines the surviving answers under the selected fusion
// strategy and returns the fused text plus an overall confidence.
func applyStrategy(strategy Strategy, answers []*WeightedAnswer) (string, float64) {
	switch strategy {
	case StrategyHighestConfidence:
		return applyHighestConfidence(answers)
	case StrategyConsensus:
		return applyConsensus(answers)
	case StrategyComprehensive:
		return applyComprehensive(answers)
	default:
		return applyWeighted(answers)
	}
}

// applyHighestConfidence emits the single most confident answer verbatim.
func applyHighestConfidence(answers []*WeightedAnswer) (string, float64) {
	best := answers[0]
	for _, a := range answers[1:] {
		if a.Confidence > best.Confidence {
			best = a
		}
	}
	return best.Text, best.Confidence
}

// applyWeighted concatenates the top three answers by weight as a primary
// block plus supplements. Overall confidence is the weighted average over
// ALL surviving answers, so a low-confidence conflicting source still
// drags the total down.
func applyWeighted(answers []*WeightedAnswer) (string, float64) {
	sorted := make([]*WeightedAnswer, len(answers))
	copy(sorted, answers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	limit := len(sorted)
	if limit > maxCombinedAnswers {
		limit = maxCombinedAnswers
	}

	var b strings.Builder
	for i := 0; i < limit; i++ {
		label := "主要信息"
		if i > 0 {
			label = "补充信息"
		}
		fmt.Fprintf(&b, "【%s】（%s）\n%s", label, displayName(sorted[i]), sorted[i].Text)
		if i < limit-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String(), weightedConfidence(answers)
}

// applyConsensus promotes key points shared by at least half the answers
// (rounded up) and appends up to two remaining points as supplements.
func applyConsensus(answers []*WeightedAnswer) (string, float64) {
	threshold := (len(answers) + 1) / 2

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, a := range answers {
		seen := make(map[string]struct{})
		for _, p := range a.KeyPoints {
			key := strings.ToLower(p)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if counts[key] == 0 {
				order = append(order, p)
			}
			counts[key]++
		}
	}

	shared := make([]string, 0)
	rest := make([]string, 0)
	for _, p := range order {
		if counts[strings.ToLower(p)] >= threshold {
			shared = append(shared, p)
		} else {
			rest = append(rest, p)
		}
	}

	var b strings.Builder
	if len(shared) > 0 {
		b.WriteString("【共识信息】\n")
		for _, p := range shared {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(rest) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("【补充信息】\n")
		limit := len(rest)
		if limit > 2 {
			limit = 2
		}
		for _, p := range rest[:limit] {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if b.Len() == 0 {
		return applyWeighted(answers)
	}

	sum := 0.0
	for _, a := range answers {
		sum += a.Confidence
	}
	return strings.TrimRight(b.String(), "\n"), sum / float64(len(answers)) * 0.8
}

// applyComprehensive ranks answers by an importance score and emits them
// as a numbered, attributed list with extracted entities appended.
func applyComprehensive(answers []*WeightedAnswer) (string, float64) {
	type scored struct {
		answer *WeightedAnswer
		score  float64
	}
	ranked := make([]scored, 0, len(answers))
	for _, a := range answers {
		score := a.Confidence * a.Weight
		if a.Source.Type == common.SourceKnowledgeGraph {
			score *= 1.2
		}
		if utf8.RuneCountInString(a.Text) > 200 {
			score *= 1.1
		}
		ranked = append(ranked, scored{answer: a, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var b strings.Builder
	entities := make([]string, 0)
	seenEntities := make(map[string]struct{})
	for i, s := range ranked {
		fmt.Fprintf(&b, "%d. （%s）%s\n", i+1, displayName(s.answer), s.answer.Text)
		for _, e := range s.answer.Entities {
			if _, ok := seenEntities[e]; ok {
				continue
			}
			seenEntities[e] = struct{}{}
			entities = append(entities, e)
		}
	}
	if len(entities) > 0 {
		b.WriteString("\n【补充信息】\n")
		fmt.Fprintf(&b, "- 关键数据：%s\n", strings.Join(entities, "、"))
	}

	return strings.TrimRight(b.String(), "\n"), weightedConfidence(answers)
}

func weightedConfidence(answers []*WeightedAnswer) float64 {
	totalWeight := 0.0
	sum := 0.0
	for _, a := range answers {
		totalWeight += a.Weight
		sum += a.Confidence * a.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

func displayName(a *WeightedAnswer) string {
	if a.Source.Name != "" {
		return a.Source.Name
	}
	return string(a.Source.Type)
}
