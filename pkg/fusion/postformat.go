package fusion

import (
	"fmt"
	"strings"
)

// postFormat reshapes the fused answer to match the question's intent:
// how-to questions get a step list, definition questions get a definition
// prefix, comparison questions get a comparison prefix. Answers that
// already carry the matching markers are left alone.
func postFormat(query, answer string) string {
	if answer == "" {
		return answer
	}

	switch {
	case containsAny(query, "如何", "怎么") && !hasStepMarkers(answer):
		return formatAsSteps(answer)
	case containsAny(query, "什么是", "定义") && !strings.Contains(answer, "定义"):
		return "**定义：**" + answer
	case containsAny(query, "比较", "对比") && !containsAny(answer, "对比", "比较"):
		return "**对比分析：**" + answer
	}
	return answer
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasStepMarkers(answer string) bool {
	return containsAny(answer, "步骤", "1.", "１.", "- ", "first", "第一")
}

func formatAsSteps(answer string) string {
	points := extractKeyPoints(answer)
	if len(points) == 0 {
		return answer
	}
	var b strings.Builder
	b.WriteString("**操作步骤：**\n")
	for i, p := range points {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
