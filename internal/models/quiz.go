package models

import (
	"encoding/json"
	"fmt"
)

// QuestionType selects how a quiz question is presented and graded.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "mc"
	QuestionTrueFalse      QuestionType = "tf"
	QuestionFreeText       QuestionType = "type"
)

// AllQuestionTypes lists every supported question type.
var AllQuestionTypes = []QuestionType{QuestionMultipleChoice, QuestionTrueFalse, QuestionFreeText}

func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionTrueFalse, QuestionFreeText:
		return true
	}
	return false
}

func (t *QuestionType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid question type: %s", data)
	}
	qt := QuestionType(s)
	if !qt.IsValid() {
		return fmt.Errorf("invalid question type: %q", s)
	}
	*t = qt
	return nil
}

// QuizQuestion is built fresh for every quiz and never persisted.
type QuizQuestion struct {
	Type          QuestionType `json:"type"`
	ItemID        int64        `json:"item_id"`
	Prompt        string       `json:"prompt"`
	CorrectAnswer string       `json:"correct_answer"`
	Options       []string     `json:"options,omitempty"`
	Statement     string       `json:"statement,omitempty"`
	IsTrue        bool         `json:"is_true,omitempty"`
}

// QuizResult is the outcome of grading one answer.
type QuizResult struct {
	Correct    bool    `json:"correct"`
	Similarity float64 `json:"similarity"`
}
