package quiz

import (
	"errors"
	"testing"
	"time"

	"github.com/credtube/credtube-server-go/internal/features/progress"
)

func fourQuestions() []Question {
	return []Question{
		{Question: "q1", Options: []string{"a", "b", "c", "d"}, Correct: 0},
		{Question: "q2", Options: []string{"a", "b", "c", "d"}, Correct: 1, Explanation: "because"},
		{Question: "q3", Options: []string{"a", "b", "c", "d"}, Correct: 2},
		{Question: "q4", Options: []string{"a", "b", "c", "d"}, Correct: 3},
	}
}

func TestScore_AllCorrect(t *testing.T) {
	score, err := Score(fourQuestions(), map[int]int{0: 0, 1: 1, 2: 2, 3: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 100 {
		t.Fatalf("expected 100, got %d", score)
	}
}

func TestScore_PartiallyCorrect(t *testing.T) {
	score, err := Score(fourQuestions(), map[int]int{0: 1, 1: 1, 2: 2, 3: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 75 {
		t.Fatalf("expected 75, got %d", score)
	}
}

func TestScore_AllWrong(t *testing.T) {
	score, err := Score(fourQuestions(), map[int]int{0: 3, 1: 0, 2: 0, 3: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected 0, got %d", score)
	}
}

func TestScore_UnansweredCountsAsIncorrect(t *testing.T) {
	score, err := Score(fourQuestions(), map[int]int{0: 0, 1: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 50 {
		t.Fatalf("expected 50, got %d", score)
	}
}

func TestScore_RoundsHalfUp(t *testing.T) {
	questions := []Question{
		{Question: "q1", Correct: 0},
		{Question: "q2", Correct: 0},
		{Question: "q3", Correct: 0},
	}

	// 1/3 = 33.33 rounds down, 2/3 = 66.67 rounds up
	score, err := Score(questions, map[int]int{0: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 33 {
		t.Fatalf("expected 33, got %d", score)
	}

	score, err = Score(questions, map[int]int{0: 0, 1: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 67 {
		t.Fatalf("expected 67, got %d", score)
	}
}

func TestScore_EmptyQuestionSet(t *testing.T) {
	if _, err := Score(nil, map[int]int{}); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestPassed_ExplicitThreshold(t *testing.T) {
	if Passed(75, 80) {
		t.Fatalf("75 should not pass an 80 threshold")
	}
	if !Passed(80, 80) {
		t.Fatalf("80 should pass an 80 threshold")
	}
	if !Passed(100, 80) {
		t.Fatalf("100 should pass an 80 threshold")
	}
}

func TestPassed_DefaultThreshold(t *testing.T) {
	if Passed(69, 0) {
		t.Fatalf("69 should not pass the default threshold")
	}
	if !Passed(70, 0) {
		t.Fatalf("70 should pass the default threshold")
	}
	if !Passed(70, -5) {
		t.Fatalf("negative threshold should fall back to the default")
	}
}

func TestMintsToken(t *testing.T) {
	if !MintsToken(true) {
		t.Fatalf("a passing event should mint a token")
	}
	if MintsToken(false) {
		t.Fatalf("a failing event should not mint a token")
	}
}

func TestMintsToken_RetakePassMintsAgain(t *testing.T) {
	// a record whose video already earned a token
	record := progress.Progress{TokenIssued: true, QuizAttempts: 1}
	record = progress.ApplyQuizResult(record, progress.QuizResult{
		Score:  90,
		Passed: true,
		At:     time.Now().UTC(),
	})

	if !record.TokenIssued {
		t.Fatalf("merging a retake should not clear the issued flag")
	}

	// issuance follows the scoring event, never the record: the second pass
	// mints another token
	if !MintsToken(true) {
		t.Fatalf("a repeated pass should mint a new token")
	}
}

func TestBuildReview(t *testing.T) {
	questions := fourQuestions()
	review := BuildReview(questions, map[int]int{0: 0, 1: 3})

	if len(review) != len(questions) {
		t.Fatalf("expected %d review items, got %d", len(questions), len(review))
	}

	if review[0].YourAnswer == nil || *review[0].YourAnswer != 0 {
		t.Fatalf("expected answer 0 on first item, got %v", review[0].YourAnswer)
	}
	if !review[0].IsCorrect {
		t.Fatalf("first item should be correct")
	}

	if review[1].YourAnswer == nil || *review[1].YourAnswer != 3 {
		t.Fatalf("expected answer 3 on second item, got %v", review[1].YourAnswer)
	}
	if review[1].IsCorrect {
		t.Fatalf("second item should be incorrect")
	}
	if review[1].Explanation != "because" {
		t.Fatalf("expected explanation carried over, got %q", review[1].Explanation)
	}

	// unanswered questions report nil, not a zero answer
	if review[2].YourAnswer != nil {
		t.Fatalf("unanswered question should have nil answer, got %v", *review[2].YourAnswer)
	}
	if review[2].IsCorrect {
		t.Fatalf("unanswered question should not be marked correct")
	}
	if review[2].Correct != 2 {
		t.Fatalf("expected correct index 2, got %d", review[2].Correct)
	}
}

func TestParseQuestions_Empty(t *testing.T) {
	if _, err := ParseQuestions(nil); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for nil payload, got %v", err)
	}
	if _, err := ParseQuestions([]byte(`[]`)); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions for empty array, got %v", err)
	}
}

func TestForLearner_StripsAnswerKeys(t *testing.T) {
	raw, err := EncodeQuestions(fourQuestions())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	view, err := ForLearner(Quiz{Title: "t", Questions: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(view.Questions))
	}
	if view.Quiz.Questions != nil {
		t.Fatalf("raw question payload should be cleared from the learner view")
	}
	for i, q := range view.Questions {
		if q.Question == "" || len(q.Options) != 4 {
			t.Fatalf("question %d lost its text or options", i)
		}
	}
}
