package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Job represents a background job.
type Job interface {
	Name() string
	Execute(ctx context.Context) error
}

// Scheduler manages and executes background jobs.
type Scheduler struct {
	jobs    map[string]*ScheduledJob
	mu      sync.RWMutex
	logger  *slog.Logger
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// ScheduledJob wraps a job with its schedule.
type ScheduledJob struct {
	Job      Job
	Interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
}

// NewScheduler creates a new job scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*ScheduledJob),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds a job to the scheduler with an interval.
func (s *Scheduler) AddJob(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.Name()] = &ScheduledJob{
		Job:      job,
		Interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start starts all scheduled jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	jobs := make([]*ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	s.mu.Unlock()

	for _, scheduledJob := range jobs {
		go s.runJob(scheduledJob)
	}

	s.logger.Info("job scheduler started", "jobs", len(jobs))
}

// runJob runs a single job on its schedule.
func (s *Scheduler) runJob(scheduled *ScheduledJob) {
	ticker := time.NewTicker(scheduled.Interval)
	scheduled.ticker = ticker

	s.logger.Info("starting job", "name", scheduled.Job.Name(), "interval", scheduled.Interval)

	for {
		select {
		case <-ticker.C:
			s.executeJob(scheduled.Job)
		case <-scheduled.stopCh:
			ticker.Stop()
			return
		case <-s.ctx.Done():
			ticker.Stop()
			return
		}
	}
}

// executeJob executes a single job with error handling.
func (s *Scheduler) executeJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panic", "name", job.Name(), "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	s.logger.Debug("executing job", "name", job.Name())

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		s.logger.Error("job execution failed", "name", job.Name(), "error", err, "duration", time.Since(start))
	} else {
		s.logger.Debug("job completed", "name", job.Name(), "duration", time.Since(start))
	}
}

// Stop stops all scheduled jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()

	for _, job := range s.jobs {
		close(job.stopCh)
	}

	s.running = false
	s.logger.Info("job scheduler stopped")
}

// RunOnce executes a job immediately (useful for testing).
func (s *Scheduler) RunOnce(jobName string) error {
	s.mu.RLock()
	scheduled, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job not found: %s", jobName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return scheduled.Job.Execute(ctx)
}

// DivergenceCounter reports progress rows whose token_issued flag disagrees
// with the learning_tokens table.
type DivergenceCounter func(db *gorm.DB) (int64, error)

// TokenReconcileJob surfaces divergence between user_progress.token_issued
// and the learning_tokens table. The issuance path writes the two tables
// without a transaction, so rows can disagree after a crash; this job makes
// that visible without repairing anything.
type TokenReconcileJob struct {
	db      *gorm.DB
	counter DivergenceCounter
	logger  *slog.Logger
}

// NewTokenReconcileJob creates a new token reconcile job.
func NewTokenReconcileJob(db *gorm.DB, counter DivergenceCounter, logger *slog.Logger) *TokenReconcileJob {
	return &TokenReconcileJob{
		db:      db,
		counter: counter,
		logger:  logger,
	}
}

// Name returns the job name.
func (j *TokenReconcileJob) Name() string {
	return "token_reconcile"
}

// Execute counts diverged rows and logs the result.
func (j *TokenReconcileJob) Execute(ctx context.Context) error {
	count, err := j.counter(j.db.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to count token divergence: %w", err)
	}

	if count > 0 {
		j.logger.Warn("token_issued flags diverge from learning_tokens", "rows", count)
	} else {
		j.logger.Debug("token reconcile check completed", "rows", 0)
	}

	return nil
}

// EmailClient interface for sending emails
type EmailClient interface {
	SendNotification(to, subject, body string) error
}

// CredentialExpirationJob notifies learners whose credentials expire soon.
type CredentialExpirationJob struct {
	db          *gorm.DB
	emailClient EmailClient
	logger      *slog.Logger
}

// NewCredentialExpirationJob creates a new credential expiration job.
func NewCredentialExpirationJob(db *gorm.DB, emailClient EmailClient, logger *slog.Logger) *CredentialExpirationJob {
	return &CredentialExpirationJob{
		db:          db,
		emailClient: emailClient,
		logger:      logger,
	}
}

// Name returns the job name.
func (j *CredentialExpirationJob) Name() string {
	return "credential_expiration"
}

// expiryNoticeWindow bounds the band of expiry timestamps one daily run
// notifies about. The band is a single day wide and advances with each run,
// so a credential is picked up exactly once, as it crosses 30 days from
// expiry.
func expiryNoticeWindow(now time.Time) (from, to time.Time) {
	return now.AddDate(0, 0, 29), now.AddDate(0, 0, 30)
}

// Execute finds credentials crossing 30 days from expiry and emails their
// owners.
func (j *CredentialExpirationJob) Execute(ctx context.Context) error {
	j.logger.Debug("checking credential expirations")

	from, to := expiryNoticeWindow(time.Now())

	rows, err := j.db.WithContext(ctx).
		Raw(`SELECT lt.id, lt.credential_hash, lt.expires_at, u.email, u.name
			 FROM learning_tokens lt
			 JOIN users u ON u.id = lt.user_id
			 WHERE lt.expires_at <= ?
			 AND lt.expires_at > ?
			 AND lt.status IN ('issued', 'verified')
			 LIMIT 100`, to, from).
		Rows()

	if err != nil {
		return fmt.Errorf("failed to query expiring credentials: %w", err)
	}
	defer rows.Close()

	notificationCount := 0
	errorCount := 0

	for rows.Next() {
		var tokenID, credentialHash, email, name string
		var expiresAt time.Time

		if err := rows.Scan(&tokenID, &credentialHash, &expiresAt, &email, &name); err != nil {
			j.logger.Error("failed to scan token row", "error", err)
			continue
		}

		daysRemaining := int(time.Until(expiresAt).Hours() / 24)

		subject := "Learning Credential Expiring Soon"
		body := fmt.Sprintf(`
Hello %s,

One of your learning credentials will expire in %d days on %s.

Retake the assessment before then to keep a current credential in your gallery.

Best regards,
CredTube Team
		`, name, daysRemaining, expiresAt.Format("2006-01-02"))

		// Send notification email
		if j.emailClient != nil {
			if err := j.emailClient.SendNotification(email, subject, body); err != nil {
				j.logger.Error("failed to send expiration notification",
					"tokenId", tokenID,
					"email", email,
					"error", err)
				errorCount++
			} else {
				j.logger.Debug("sent expiration notification",
					"tokenId", tokenID,
					"email", email,
					"daysRemaining", daysRemaining)
				notificationCount++
			}
		}
	}

	if notificationCount > 0 || errorCount > 0 {
		j.logger.Info("credential expiration check completed",
			"notifications", notificationCount,
			"errors", errorCount)
	}

	return nil
}
