package similar

import (
	"strings"
)

// matchesFilters applies every caller-supplied filter to a candidate. A
// filter on an unknown field or with an unknown operator rejects nothing.
func matchesFilters(candidate HistoricalProject, filters []Filter) bool {
	for _, f := range filters {
		if !matchesFilter(candidate, f) {
			return false
		}
	}
	return true
}

func matchesFilter(candidate HistoricalProject, f Filter) bool {
	if numeric, ok := numericField(candidate, f.Field); ok {
		want, ok := asFloat(f.Value)
		if !ok {
			return true
		}
		switch f.Operator {
		case "eq":
			return numeric == want
		case "ne":
			return numeric != want
		case "gt":
			return numeric > want
		case "gte":
			return numeric >= want
		case "lt":
			return numeric < want
		case "lte":
			return numeric <= want
		}
		return true
	}

	text, ok := textField(candidate, f.Field)
	if !ok {
		return true
	}
	want, _ := f.Value.(string)
	switch f.Operator {
	case "eq":
		return strings.EqualFold(text, want)
	case "ne":
		return !strings.EqualFold(text, want)
	case "contains":
		return strings.Contains(text, want)
	}
	return true
}

func numericField(candidate HistoricalProject, field string) (float64, bool) {
	switch field {
	case "building_area":
		return candidate.Features.Basic.BuildingArea, true
	case "floors":
		return float64(candidate.Features.Basic.Floors), true
	case "completion_year":
		return float64(candidate.Features.Basic.CompletionYear), true
	case "unit_cost":
		return candidate.Features.Cost.UnitCost, true
	case "total_cost":
		return candidate.Features.Cost.TotalCost, true
	}
	return 0, false
}

func textField(candidate HistoricalProject, field string) (string, bool) {
	switch field {
	case "project_type":
		return candidate.Features.Basic.ProjectType, true
	case "location":
		return candidate.Features.Basic.Location, true
	case "structure_type":
		return candidate.Features.Basic.StructureType, true
	case "quality_level":
		return candidate.Features.Quality.QualityLevel, true
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
