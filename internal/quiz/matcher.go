package quiz

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/vytor/flashdeck/internal/models"
)

const (
	// MatchThreshold is the similarity at or above which a typed answer is accepted.
	MatchThreshold = 0.8
	// substringSimilarity is reported for partial answers found inside the
	// correct answer.
	substringSimilarity = 0.8
	// minSubstringLen is the length a partial answer must exceed to count.
	minSubstringLen = 3
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckAnswer compares a free-text answer with the correct one, ignoring case
// and surrounding whitespace. Lengths are counted in runes.
func CheckAnswer(userAnswer, correctAnswer string) models.QuizResult {
	ua := normalize(userAnswer)
	ca := normalize(correctAnswer)

	if ua == ca {
		return models.QuizResult{Correct: true, Similarity: 1}
	}

	uaLen := utf8.RuneCountInString(ua)
	if uaLen > minSubstringLen && strings.Contains(ca, ua) {
		return models.QuizResult{Correct: true, Similarity: substringSimilarity}
	}

	sim := Similarity(ua, ca)
	return models.QuizResult{Correct: sim >= MatchThreshold, Similarity: sim}
}

// Similarity is 1 - editDistance/maxLen, or 0 when both strings are empty.
func Similarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
