package fusion

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxKeyPoints = 3

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	// Allow CJK, latin letters, digits, whitespace and common Chinese/ASCII
	// punctuation; everything else is stripped before analysis.
	reDisallowed = regexp.MustCompile(`[^\p{Han}a-zA-Z0-9\s，。！？、；：""''（）《》.,!?;:()\[\]%‰\-+*/=元万亿㎡²°]`)
	reSentence   = regexp.MustCompile(`[。！？.!?]+`)
	// Numeric token with an optional unit, e.g. "3250元", "1.2万", "85%".
	reNumericEntity = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:元|万元|亿元|万|亿|平方米|㎡|m²|米|层|年|个月|天|%|‰|吨|千克|kg)?`)
	reNumber        = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// projectTypeVocabulary is the fixed set of project-type keywords used for
// entity extraction and categorical conflict detection.
var projectTypeVocabulary = []string{
	"住宅", "商业", "办公", "工业", "学校", "医院", "酒店", "市政",
}

var positiveWords = []string{
	"好", "优秀", "良好", "高效", "节省", "合理", "提升", "可靠", "准确",
}

var negativeWords = []string{
	"差", "超支", "风险", "延误", "问题", "缺陷", "浪费", "错误", "劣质",
}

type preprocessed struct {
	Text       string
	KeyPoints  []string
	Entities   []string
	Sentiment  string
	Complexity string
}

// preprocessText normalizes raw extracted text and derives the features the
// fusion formulas consume: key points, entities, sentiment and complexity.
func preprocessText(raw string) preprocessed {
	text := reWhitespace.ReplaceAllString(strings.TrimSpace(raw), " ")
	text = reDisallowed.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	return preprocessed{
		Text:       text,
		KeyPoints:  extractKeyPoints(text),
		Entities:   extractEntities(text),
		Sentiment:  classifySentiment(text),
		Complexity: classifyComplexity(text),
	}
}

// extractKeyPoints returns up to three sentences of the text. Any non-empty
// text yields at least one key point: when no sentence delimiter is present
// the whole text is the single key point.
func extractKeyPoints(text string) []string {
	if text == "" {
		return nil
	}
	points := make([]string, 0, maxKeyPoints)
	for _, part := range reSentence.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		points = append(points, part)
		if len(points) >= maxKeyPoints {
			break
		}
	}
	if len(points) == 0 {
		points = append(points, text)
	}
	return points
}

// extractEntities collects numeric-with-unit tokens and project-type keywords.
func extractEntities(text string) []string {
	seen := make(map[string]struct{})
	entities := make([]string, 0)
	for _, m := range reNumericEntity.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		entities = append(entities, m)
	}
	for _, kw := range projectTypeVocabulary {
		if strings.Contains(text, kw) {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			entities = append(entities, kw)
		}
	}
	return entities
}

// extractNumbers returns every bare numeric value in the text. Used by
// numeric conflict detection which compares per-answer means.
func extractNumbers(text string) []float64 {
	matches := reNumber.FindAllString(text, -1)
	nums := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		nums = append(nums, v)
	}
	return nums
}

func classifySentiment(text string) string {
	positive := 0
	for _, w := range positiveWords {
		positive += strings.Count(text, w)
	}
	negative := 0
	for _, w := range negativeWords {
		negative += strings.Count(text, w)
	}
	switch {
	case positive > negative:
		return "positive"
	case negative > positive:
		return "negative"
	default:
		return "neutral"
	}
}

// classifyComplexity buckets text by total length and average sentence
// length. Lengths are measured in runes so CJK text is not over-counted.
func classifyComplexity(text string) string {
	length := utf8.RuneCountInString(text)
	sentences := reSentence.Split(text, -1)
	count := 0
	total := 0
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		count++
		total += utf8.RuneCountInString(s)
	}
	avg := 0.0
	if count > 0 {
		avg = float64(total) / float64(count)
	}

	switch {
	case length < 100 && avg < 20:
		return "simple"
	case length < 300 && avg < 30:
		return "medium"
	default:
		return "complex"
	}
}
