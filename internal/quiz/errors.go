package quiz

import "errors"

var (
	ErrInvalidQuestionType = errors.New("quiz: invalid question type")
	ErrQuestionIndex       = errors.New("quiz: question index out of range")
	ErrNotEnoughItems      = errors.New("quiz: not enough items for a match game")
	ErrMatchPosition       = errors.New("quiz: match position out of range")
	ErrAlreadyMatched      = errors.New("quiz: pair already matched")
)
