package quiz

import "math"

// Score computes the percentage of correct answers, rounded half-up.
// Unanswered questions count as incorrect.
func Score(questions []Question, answers map[int]int) (int, error) {
	if len(questions) == 0 {
		return 0, ErrNoQuestions
	}

	correct := 0
	for i, question := range questions {
		answer, ok := answers[i]
		if ok && answer == question.Correct {
			correct++
		}
	}

	return int(math.Round(float64(correct) / float64(len(questions)) * 100)), nil
}

// Passed reports whether a score meets the passing threshold. A missing or
// non-positive threshold falls back to the default of 70.
func Passed(score, passingScore int) bool {
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}
	return score >= passingScore
}

// MintsToken reports whether a submission outcome mints a learning token.
// Every passing event mints one; prior issuance is deliberately not
// consulted, so retaking a quiz and passing again mints another token.
func MintsToken(passed bool) bool {
	return passed
}

// ReviewItem describes one question's outcome in a submission review.
type ReviewItem struct {
	Question    string `json:"question"`
	YourAnswer  *int   `json:"yourAnswer"`
	Correct     int    `json:"correct"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation,omitempty"`
}

// BuildReview produces a per-question correctness breakdown for a submission.
func BuildReview(questions []Question, answers map[int]int) []ReviewItem {
	review := make([]ReviewItem, len(questions))
	for i, question := range questions {
		item := ReviewItem{
			Question:    question.Question,
			Correct:     question.Correct,
			Explanation: question.Explanation,
		}
		if answer, ok := answers[i]; ok {
			a := answer
			item.YourAnswer = &a
			item.IsCorrect = answer == question.Correct
		}
		review[i] = item
	}
	return review
}
