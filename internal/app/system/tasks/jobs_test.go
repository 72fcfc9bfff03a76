package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/stratatools/internal/app/system/tasks"
)

type fakeArchiver struct {
	cutoff time.Time
	err    error
}

func (f *fakeArchiver) DeleteDecidedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 2, f.err
}

func TestSubmissionArchiveJob(t *testing.T) {
	store := &fakeArchiver{}
	job := tasks.SubmissionArchiveJob(store, 48*time.Hour, zap.NewNop())

	if job.Name != "submission-archive" {
		t.Errorf("Name = %q, want submission-archive", job.Name)
	}
	if job.Interval != tasks.ArchiveInterval {
		t.Errorf("Interval = %v, want %v", job.Interval, tasks.ArchiveInterval)
	}

	before := time.Now().Add(-48 * time.Hour)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if store.cutoff.Before(before) || store.cutoff.After(time.Now().Add(-47*time.Hour)) {
		t.Errorf("cutoff = %v, want about 48h ago", store.cutoff)
	}
}

func TestSubmissionArchiveJob_Error(t *testing.T) {
	store := &fakeArchiver{err: errors.New("db down")}
	job := tasks.SubmissionArchiveJob(store, time.Hour, zap.NewNop())

	if err := job.Run(context.Background()); err == nil {
		t.Error("Run() error = nil, want db down")
	}
}

func TestSubmissionArchiveJob_Disabled(t *testing.T) {
	job := tasks.SubmissionArchiveJob(&fakeArchiver{}, 0, zap.NewNop())
	if job.Interval != 0 {
		t.Errorf("Interval = %v, want 0 for disabled retention", job.Interval)
	}

	runner := tasks.New(zap.NewNop(), nil)
	runner.Register(job)
	if len(runner.Jobs()) != 0 {
		t.Error("disabled archive job should not be registered")
	}
}
