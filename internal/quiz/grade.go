package quiz

import (
	"strconv"
	"strings"

	"github.com/vytor/flashdeck/internal/models"
)

// Grade checks an answer to q. Multiple choice must equal the correct option
// exactly, true/false answers are parsed with strconv.ParseBool and free text
// goes through CheckAnswer.
func Grade(q models.QuizQuestion, answer string) (models.QuizResult, error) {
	switch q.Type {
	case models.QuestionMultipleChoice:
		return exact(answer == q.CorrectAnswer), nil
	case models.QuestionTrueFalse:
		v, err := strconv.ParseBool(strings.TrimSpace(answer))
		if err != nil {
			return exact(false), nil
		}
		return exact(v == q.IsTrue), nil
	case models.QuestionFreeText:
		return CheckAnswer(answer, q.CorrectAnswer), nil
	}
	return models.QuizResult{}, ErrInvalidQuestionType
}

func exact(ok bool) models.QuizResult {
	if ok {
		return models.QuizResult{Correct: true, Similarity: 1}
	}
	return models.QuizResult{}
}
