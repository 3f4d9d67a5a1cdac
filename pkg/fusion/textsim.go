package fusion

import (
	"strings"
	"unicode"
)

// TextSimilarity is the pairwise similarity between two answers. Similarity
// blends token overlap with key-point overlap; KeyPointOverlap is kept
// separately for conflict explanations.
type TextSimilarity struct {
	Similarity      float64
	KeyPointOverlap float64
}

// CalculateTextSimilarity computes the similarity between two texts as
// 0.6×jaccard(tokens) + 0.4×keyPointOverlap. Key points are derived from
// the texts themselves, so CalculateTextSimilarity(t, t) is always
// {1.0, 1.0} for non-empty t.
func CalculateTextSimilarity(a, b string) TextSimilarity {
	return similarityBetween(a, extractKeyPoints(a), b, extractKeyPoints(b))
}

func similarityBetween(textA string, pointsA []string, textB string, pointsB []string) TextSimilarity {
	jaccard := jaccardSimilarity(tokenize(textA), tokenize(textB))
	overlap := keyPointOverlap(pointsA, pointsB)
	return TextSimilarity{
		Similarity:      0.6*jaccard + 0.4*overlap,
		KeyPointOverlap: overlap,
	}
}

func pairwiseSimilarities(answers []*WeightedAnswer) [][]TextSimilarity {
	sims := make([][]TextSimilarity, len(answers))
	for i := range answers {
		sims[i] = make([]TextSimilarity, len(answers))
		for j := range answers {
			if i == j {
				sims[i][j] = TextSimilarity{Similarity: 1.0, KeyPointOverlap: 1.0}
				continue
			}
			if j < i {
				sims[i][j] = sims[j][i]
				continue
			}
			sims[i][j] = similarityBetween(
				answers[i].Text, answers[i].KeyPoints,
				answers[j].Text, answers[j].KeyPoints,
			)
		}
	}
	return sims
}

// tokenize lowercases the text and splits it into tokens: latin/digit runs
// become one token each, every Han character is its own token. This keeps
// jaccard meaningful for Chinese text without a segmenter.
func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			tokens[strings.ToLower(word.String())] = struct{}{}
			word.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens[string(r)] = struct{}{}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func jaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// keyPointOverlap is the size of the intersection of lower-cased key points
// divided by the smaller set's size; 0 if either set is empty.
func keyPointOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, p := range a {
		setA[strings.ToLower(p)] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, p := range b {
		setB[strings.ToLower(p)] = struct{}{}
	}
	intersection := 0
	for p := range setA {
		if _, ok := setB[p]; ok {
			intersection++
		}
	}
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	return float64(intersection) / float64(smaller)
}
