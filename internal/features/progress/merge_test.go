package progress

import (
	"testing"
	"time"
)

func TestApplyWatchEvent_MonotonicWatchTime(t *testing.T) {
	p := Progress{VideoWatchTime: 300}

	p = ApplyWatchEvent(p, WatchEvent{WatchTime: 120, VideoDuration: 600})
	if p.VideoWatchTime != 300 {
		t.Fatalf("stale report moved watch time backwards: %d", p.VideoWatchTime)
	}

	p = ApplyWatchEvent(p, WatchEvent{WatchTime: 450, VideoDuration: 600})
	if p.VideoWatchTime != 450 {
		t.Fatalf("expected watch time 450, got %d", p.VideoWatchTime)
	}
}

func TestApplyWatchEvent_CompletionByRatio(t *testing.T) {
	p := ApplyWatchEvent(Progress{}, WatchEvent{WatchTime: 539, VideoDuration: 600})
	if p.IsVideoCompleted {
		t.Fatalf("539/600 is below the completion ratio")
	}

	p = ApplyWatchEvent(p, WatchEvent{WatchTime: 540, VideoDuration: 600})
	if !p.IsVideoCompleted {
		t.Fatalf("540/600 should complete the video")
	}
}

func TestApplyWatchEvent_CompletionLatches(t *testing.T) {
	p := ApplyWatchEvent(Progress{}, WatchEvent{WatchTime: 600, Completed: true, VideoDuration: 600})
	if !p.IsVideoCompleted {
		t.Fatalf("explicit completion flag should complete the video")
	}

	// a later partial report never un-completes
	p = ApplyWatchEvent(p, WatchEvent{WatchTime: 30, VideoDuration: 600})
	if !p.IsVideoCompleted {
		t.Fatalf("completion should latch once reached")
	}
	if p.VideoWatchTime != 600 {
		t.Fatalf("expected watch time 600, got %d", p.VideoWatchTime)
	}
}

func TestApplyWatchEvent_Idempotent(t *testing.T) {
	event := WatchEvent{WatchTime: 540, VideoDuration: 600}
	once := ApplyWatchEvent(Progress{}, event)
	twice := ApplyWatchEvent(once, event)

	if once != twice {
		t.Fatalf("re-applying the same event changed the record: %+v vs %+v", once, twice)
	}
}

func TestApplyWatchEvent_LeavesQuizFieldsAlone(t *testing.T) {
	score := 85
	p := Progress{IsQuizCompleted: true, QuizScore: &score, QuizAttempts: 2}

	p = ApplyWatchEvent(p, WatchEvent{WatchTime: 600, Completed: true, VideoDuration: 600})
	if !p.IsQuizCompleted || p.QuizScore == nil || *p.QuizScore != 85 || p.QuizAttempts != 2 {
		t.Fatalf("watch event touched quiz fields: %+v", p)
	}
}

func TestApplyQuizResult_TracksLatestAttempt(t *testing.T) {
	now := time.Now().UTC()

	p := ApplyQuizResult(Progress{}, QuizResult{Score: 40, Passed: false, At: now})
	if p.QuizAttempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", p.QuizAttempts)
	}
	if p.QuizScore == nil || *p.QuizScore != 40 {
		t.Fatalf("expected score 40, got %v", p.QuizScore)
	}
	if p.IsQuizCompleted {
		t.Fatalf("failed attempt should not complete the quiz")
	}
	if p.CompletedAt != nil {
		t.Fatalf("completed_at should not be set on a failing attempt")
	}

	p = ApplyQuizResult(p, QuizResult{Score: 90, Passed: true, At: now})
	if p.QuizAttempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", p.QuizAttempts)
	}
	if p.QuizScore == nil || *p.QuizScore != 90 {
		t.Fatalf("expected latest score 90, got %v", p.QuizScore)
	}
	if !p.IsQuizCompleted {
		t.Fatalf("passing attempt should complete the quiz")
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(now) {
		t.Fatalf("completed_at should be the first pass time, got %v", p.CompletedAt)
	}
}

func TestApplyQuizResult_CompletedAtNeverCleared(t *testing.T) {
	firstPass := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	p := ApplyQuizResult(Progress{}, QuizResult{Score: 80, Passed: true, At: firstPass})

	// a later failing retake flips completion but keeps the original timestamp
	later := firstPass.Add(48 * time.Hour)
	p = ApplyQuizResult(p, QuizResult{Score: 50, Passed: false, At: later})

	if p.IsQuizCompleted {
		t.Fatalf("latest attempt failed, quiz should read incomplete")
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(firstPass) {
		t.Fatalf("completed_at should keep the first pass time, got %v", p.CompletedAt)
	}

	p = ApplyQuizResult(p, QuizResult{Score: 95, Passed: true, At: later.Add(time.Hour)})
	if p.CompletedAt == nil || !p.CompletedAt.Equal(firstPass) {
		t.Fatalf("second pass should not move completed_at, got %v", p.CompletedAt)
	}
}

func TestEnrollmentPercentage(t *testing.T) {
	if pct := EnrollmentPercentage(0, 10); pct != 0 {
		t.Fatalf("expected 0%%, got %d", pct)
	}
	if pct := EnrollmentPercentage(3, 10); pct != 30 {
		t.Fatalf("expected 30%%, got %d", pct)
	}
	if pct := EnrollmentPercentage(10, 10); pct != 100 {
		t.Fatalf("expected 100%%, got %d", pct)
	}
	// completed rows can exceed active videos after videos are deactivated
	if pct := EnrollmentPercentage(12, 10); pct != 100 {
		t.Fatalf("expected clamp to 100%%, got %d", pct)
	}
	if pct := EnrollmentPercentage(5, 0); pct != 0 {
		t.Fatalf("expected 0%% for empty playlist, got %d", pct)
	}
}
