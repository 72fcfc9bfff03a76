// Package moderation implements the submission review workflow:
// pending submissions are approved into the catalog or rejected.
package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/stratatools/internal/domain/slug"
	"github.com/dalemusser/stratatools/internal/domain/toolval"
)

// CanTransition reports whether a submission may move from one status to another.
// Only pending submissions move; approved and rejected are terminal.
func CanTransition(from, to string) bool {
	return from == models.SubmissionPending &&
		(to == models.SubmissionApproved || to == models.SubmissionRejected)
}

// SubmissionStore persists submissions. GetByID returns an error wrapping
// apperr.ErrNotFound when the id is unknown. Decide changes the status only if
// the submission is still pending and reports whether it did.
type SubmissionStore interface {
	Create(ctx context.Context, s models.Submission) (*models.Submission, error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	Decide(ctx context.Context, id int64, status string, toolID *int64, at time.Time) (bool, error)
	List(ctx context.Context, status string) ([]models.Submission, error)
}

// ToolWriter is the catalog write surface approval needs.
type ToolWriter interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, t models.Tool) (*models.Tool, error)
	Delete(ctx context.Context, id int64) error
}

// Service runs the workflow.
type Service struct {
	subs     SubmissionStore
	tools    ToolWriter
	sanitize func(string) string
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSanitizer sets the function applied to every text field on Submit.
func WithSanitizer(fn func(string) string) Option {
	return func(s *Service) { s.sanitize = fn }
}

// WithClock overrides time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

// NewService creates a workflow service.
func NewService(subs SubmissionStore, tools ToolWriter, opts ...Option) *Service {
	s := &Service{
		subs:     subs,
		tools:    tools,
		sanitize: func(v string) string { return v },
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit sanitizes and validates the fields and stores a pending submission.
// Invalid input returns *apperr.ValidationError and stores nothing.
func (s *Service) Submit(ctx context.Context, f models.ToolFields) (int64, error) {
	f = models.ToolFields{
		Name:         s.sanitize(f.Name),
		IconURL:      s.sanitize(f.IconURL),
		Description:  s.sanitize(f.Description),
		Category:     s.sanitize(f.Category),
		PricingTag:   s.sanitize(f.PricingTag),
		OfficialLink: s.sanitize(f.OfficialLink),
	}
	if res := toolval.Validate(f); !res.Valid {
		return 0, &apperr.ValidationError{Messages: res.Errors}
	}

	sub, err := s.subs.Create(ctx, models.Submission{
		ToolFields:  f,
		Status:      models.SubmissionPending,
		SubmittedAt: s.now(),
	})
	if err != nil {
		return 0, err
	}
	return sub.ID, nil
}

// Approve promotes a pending submission into the catalog and returns the new tool id.
//
// The tool is created first and the submission is then marked approved only if
// it is still pending. A failed create leaves the submission pending. If another
// decision wins the race in between, the new tool is deleted and a
// *apperr.StateError is returned.
func (s *Service) Approve(ctx context.Context, id int64) (int64, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !CanTransition(sub.Status, models.SubmissionApproved) {
		return 0, &apperr.StateError{ID: id, From: sub.Status, Action: "approve"}
	}

	sl, err := slug.Unique(ctx, slug.Make(sub.Name), s.tools.SlugExists)
	if err != nil {
		return 0, fmt.Errorf("approve submission %d: %w", id, err)
	}
	now := s.now()
	tool, err := s.tools.Create(ctx, models.Tool{
		ToolFields: sub.ToolFields,
		Slug:       sl,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return 0, fmt.Errorf("approve submission %d: create tool: %w", id, err)
	}

	ok, err := s.subs.Decide(ctx, id, models.SubmissionApproved, &tool.ID, now)
	if err != nil || !ok {
		if derr := s.tools.Delete(ctx, tool.ID); derr != nil {
			return 0, fmt.Errorf("approve submission %d: undo tool %d: %w", id, tool.ID, derr)
		}
		if err != nil {
			return 0, fmt.Errorf("approve submission %d: %w", id, err)
		}
		return 0, s.stateError(ctx, id, "approve")
	}
	return tool.ID, nil
}

// Reject marks a pending submission rejected.
func (s *Service) Reject(ctx context.Context, id int64) error {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(sub.Status, models.SubmissionRejected) {
		return &apperr.StateError{ID: id, From: sub.Status, Action: "reject"}
	}
	ok, err := s.subs.Decide(ctx, id, models.SubmissionRejected, nil, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return s.stateError(ctx, id, "reject")
	}
	return nil
}

// Queue lists submissions with the given status, oldest first. "" lists all.
func (s *Service) Queue(ctx context.Context, status string) ([]models.Submission, error) {
	if status != "" && !models.IsValidSubmissionStatus(status) {
		return nil, &apperr.ValidationError{Messages: []string{"unknown status: " + status}}
	}
	return s.subs.List(ctx, status)
}

// stateError reloads the submission to report the status that won the race.
func (s *Service) stateError(ctx context.Context, id int64, action string) error {
	from := "unknown"
	if cur, err := s.subs.GetByID(ctx, id); err == nil {
		from = cur.Status
	}
	return &apperr.StateError{ID: id, From: from, Action: action}
}
