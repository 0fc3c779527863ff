package progress

import "time"

// CompletionWatchRatio is the fraction of a video's duration that counts as
// having watched it.
const CompletionWatchRatio = 0.9

// WatchEvent is a progress report from the player.
type WatchEvent struct {
	WatchTime     int
	Completed     bool
	VideoDuration int
}

// QuizResult is the outcome of a scored quiz submission.
type QuizResult struct {
	Score  int
	Passed bool
	At     time.Time
}

// ApplyWatchEvent merges a watch event into a progress record. Watch time is
// monotonic (stale reports never move it backwards) and completion latches
// once reached, so re-applying the same event is a no-op. Quiz fields are
// untouched.
func ApplyWatchEvent(p Progress, e WatchEvent) Progress {
	if e.WatchTime > p.VideoWatchTime {
		p.VideoWatchTime = e.WatchTime
	}

	completed := e.Completed
	if !completed && e.VideoDuration > 0 {
		completed = float64(e.WatchTime) >= float64(e.VideoDuration)*CompletionWatchRatio
	}
	if completed {
		p.IsVideoCompleted = true
	}

	return p
}

// ApplyQuizResult merges a quiz submission into a progress record: the
// attempt counter advances, the latest score is kept, and completion reflects
// this attempt's outcome. completed_at is set on the first pass and never
// cleared by later failing attempts.
func ApplyQuizResult(p Progress, r QuizResult) Progress {
	p.QuizAttempts++
	score := r.Score
	p.QuizScore = &score
	p.IsQuizCompleted = r.Passed

	if r.Passed && p.CompletedAt == nil {
		at := r.At
		p.CompletedAt = &at
	}

	return p
}

// EnrollmentPercentage computes playlist completion as completed videos over
// active videos, clamped to [0, 100].
func EnrollmentPercentage(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(completed * 100 / total)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}
