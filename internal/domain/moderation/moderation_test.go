package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/models"
)

type memSubs struct {
	items map[int64]*models.Submission
	next  int64
	// raceTo, when set, flips the submission to this status just before Decide runs.
	raceTo string
}

func newMemSubs() *memSubs { return &memSubs{items: map[int64]*models.Submission{}} }

func (m *memSubs) Create(_ context.Context, s models.Submission) (*models.Submission, error) {
	m.next++
	s.ID = m.next
	m.items[s.ID] = &s
	return &s, nil
}

func (m *memSubs) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("submission", id)
	}
	cp := *s
	return &cp, nil
}

func (m *memSubs) Decide(_ context.Context, id int64, status string, toolID *int64, at time.Time) (bool, error) {
	s, ok := m.items[id]
	if !ok {
		return false, nil
	}
	if m.raceTo != "" {
		s.Status = m.raceTo
	}
	if s.Status != models.SubmissionPending {
		return false, nil
	}
	s.Status = status
	s.ToolID = toolID
	s.DecidedAt = &at
	return true, nil
}

func (m *memSubs) List(_ context.Context, status string) ([]models.Submission, error) {
	var out []models.Submission
	for id := int64(1); id <= m.next; id++ {
		if s, ok := m.items[id]; ok && (status == "" || s.Status == status) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memTools struct {
	tools     map[int64]models.Tool
	next      int64
	createErr error
}

func newMemTools() *memTools { return &memTools{tools: map[int64]models.Tool{}} }

func (m *memTools) SlugExists(_ context.Context, s string) (bool, error) {
	for _, t := range m.tools {
		if t.Slug == s {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTools) Create(_ context.Context, t models.Tool) (*models.Tool, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.next++
	t.ID = m.next
	m.tools[t.ID] = t
	return &t, nil
}

func (m *memTools) Delete(_ context.Context, id int64) error {
	delete(m.tools, id)
	return nil
}

func validFields(name string) models.ToolFields {
	return models.ToolFields{
		Name:         name,
		IconURL:      "https://example.com/icon.png",
		Description:  strings.Repeat("useful ", 19),
		Category:     "Writing Tools",
		PricingTag:   "Free",
		OfficialLink: "https://example.com",
	}
}

var fixed = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(subs *memSubs, tools *memTools) *Service {
	return NewService(subs, tools,
		WithClock(func() time.Time { return fixed }),
		WithSanitizer(func(s string) string { return strings.ReplaceAll(s, "<b>", "") }),
	)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition("pending", "approved"))
	assert.True(t, CanTransition("pending", "rejected"))
	assert.False(t, CanTransition("pending", "pending"))
	assert.False(t, CanTransition("approved", "rejected"))
	assert.False(t, CanTransition("rejected", "approved"))
	assert.False(t, CanTransition("approved", "approved"))
}

func TestSubmit_Valid(t *testing.T) {
	subs := newMemSubs()
	svc := newService(subs, newMemTools())

	id, err := svc.Submit(context.Background(), validFields("<b>Quill"))
	require.NoError(t, err)

	got, err := subs.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Quill", got.Name)
	assert.Equal(t, models.SubmissionPending, got.Status)
	assert.Equal(t, fixed, got.SubmittedAt)
	assert.Nil(t, got.DecidedAt)
}

func TestSubmit_Invalid(t *testing.T) {
	subs := newMemSubs()
	svc := newService(subs, newMemTools())

	f := validFields("")
	f.PricingTag = "Premium"
	_, err := svc.Submit(context.Background(), f)

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{
		"Tool name is required",
		"Pricing tag must be one of: Free, Freemium, Paid",
	}, ve.Messages)
	assert.Empty(t, subs.items)
}

func TestApprove_CreatesToolAndMarksApproved(t *testing.T) {
	subs := newMemSubs()
	tools := newMemTools()
	svc := newService(subs, tools)
	ctx := context.Background()

	id, err := svc.Submit(ctx, validFields("Quill Bot"))
	require.NoError(t, err)

	toolID, err := svc.Approve(ctx, id)
	require.NoError(t, err)

	tool := tools.tools[toolID]
	assert.Equal(t, "quill-bot", tool.Slug)
	assert.Equal(t, "Quill Bot", tool.Name)
	assert.False(t, tool.IsFeatured)
	assert.Equal(t, fixed, tool.CreatedAt)

	sub, _ := subs.GetByID(ctx, id)
	assert.Equal(t, models.SubmissionApproved, sub.Status)
	require.NotNil(t, sub.ToolID)
	assert.Equal(t, toolID, *sub.ToolID)
	require.NotNil(t, sub.DecidedAt)
}

func TestApprove_SlugCollisionSuffixed(t *testing.T) {
	subs := newMemSubs()
	tools := newMemTools()
	svc := newService(subs, tools)
	ctx := context.Background()

	a, _ := svc.Submit(ctx, validFields("Quill"))
	b, _ := svc.Submit(ctx, validFields("QUILL!"))

	ta, err := svc.Approve(ctx, a)
	require.NoError(t, err)
	tb, err := svc.Approve(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, "quill", tools.tools[ta].Slug)
	assert.Equal(t, "quill-2", tools.tools[tb].Slug)
}

func TestApprove_AlreadyApproved(t *testing.T) {
	subs := newMemSubs()
	tools := newMemTools()
	svc := newService(subs, tools)
	ctx := context.Background()

	id, _ := svc.Submit(ctx, validFields("Quill"))
	_, err := svc.Approve(ctx, id)
	require.NoError(t, err)
	require.Len(t, tools.tools, 1)

	_, err = svc.Approve(ctx, id)
	var se *apperr.StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SubmissionApproved, se.From)
	assert.Len(t, tools.tools, 1)
}

func TestApprove_Rejected(t *testing.T) {
	subs := newMemSubs()
	tools := newMemTools()
	svc := newService(subs, tools)
	ctx := context.Background()

	id, _ := svc.Submit(ctx, validFields("Quill"))
	require.NoError(t, svc.Reject(ctx, id))

	_, err := svc.Approve(ctx, id)
	var se *apperr.StateError
	require.ErrorAs(t, err, &se)
	assert.Empty(t, tools.tools)
}

func TestApprove_CreateFailureLeavesPending(t *testing.T) {
	subs := newMemSubs()
	tools := newMemTools()
	tools.createErr = errors.New("db down")
	svc := newService(subs, tools)
	ctx := context.Background()

	id, _ := svc.Submit(ctx, validFields("Quill"))
	_, err := svc.Approve(ctx, id)
	require.Error(t, err)

	sub, _ := subs.GetByID(ctx, id)
	assert.Equal(t, models.SubmissionPending, sub.Status)
}

func TestApprove_LostRaceDeletesTool(t *testing.T) {
	subs := newMemSubs()
	tools := newMemTools()
	svc := newService(subs, tools)
	ctx := context.Background()

	id, _ := svc.Submit(ctx, validFields("Quill"))
	subs.raceTo = models.SubmissionRejected

	_, err := svc.Approve(ctx, id)
	var se *apperr.StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SubmissionRejected, se.From)
	assert.Empty(t, tools.tools)
}

func TestApproveReject_NotFound(t *testing.T) {
	svc := newService(newMemSubs(), newMemTools())
	_, err := svc.Approve(context.Background(), 42)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(svc.Reject(context.Background(), 42)))
}

func TestReject_Twice(t *testing.T) {
	subs := newMemSubs()
	svc := newService(subs, newMemTools())
	ctx := context.Background()

	id, _ := svc.Submit(ctx, validFields("Quill"))
	require.NoError(t, svc.Reject(ctx, id))

	var se *apperr.StateError
	require.ErrorAs(t, svc.Reject(ctx, id), &se)
	assert.Equal(t, "reject", se.Action)
}

func TestQueue(t *testing.T) {
	subs := newMemSubs()
	svc := newService(subs, newMemTools())
	ctx := context.Background()

	a, _ := svc.Submit(ctx, validFields("A"))
	b, _ := svc.Submit(ctx, validFields("B"))
	require.NoError(t, svc.Reject(ctx, a))

	pending, err := svc.Queue(ctx, models.SubmissionPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b, pending[0].ID)

	all, err := svc.Queue(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Queue(ctx, "archived")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}
