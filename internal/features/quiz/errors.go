package quiz

import "errors"

var (
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrNoQuestions    = errors.New("quiz has no questions")
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrInvalidAnswers = errors.New("invalid answers payload")
)
