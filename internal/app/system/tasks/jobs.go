// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ArchiveInterval is how often decided submissions are swept.
const ArchiveInterval = 6 * time.Hour

// SubmissionArchiver removes decided submissions.
type SubmissionArchiver interface {
	DeleteDecidedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SubmissionArchiveJob creates a job that deletes approved and rejected
// submissions decided more than retention ago. Pending submissions are never
// touched. A non-positive retention yields a disabled job.
func SubmissionArchiveJob(store SubmissionArchiver, retention time.Duration, logger *zap.Logger) Job {
	interval := ArchiveInterval
	if retention <= 0 {
		interval = 0
	}
	return Job{
		Name:     "submission-archive",
		Interval: interval,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().Add(-retention)
			deleted, err := store.DeleteDecidedBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("archived decided submissions",
					zap.Int64("deleted", deleted),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}
