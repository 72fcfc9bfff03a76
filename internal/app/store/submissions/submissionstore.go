// internal/app/store/submissions/submissionstore.go
package submissionstore

import (
	"context"
	"time"

	counterstore "github.com/dalemusser/stratatools/internal/app/store/counters"
	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("submissions"), ids: counterstore.New(db)}
}

// Create stores a submission with a fresh id. Status defaults to pending.
func (s *Store) Create(ctx context.Context, sub models.Submission) (*models.Submission, error) {
	id, err := s.ids.Next(ctx, counterstore.Submissions)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	if sub.Status == "" {
		sub.Status = models.SubmissionPending
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	sub.SubmittedAt = sub.SubmittedAt.UTC().Truncate(time.Millisecond)

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByID loads a submission. A missing id returns a wrapped apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	var sub models.Submission
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("submission", id)
		}
		return nil, err
	}
	return &sub, nil
}

// Decide moves a pending submission to status. The update only matches while
// the submission is still pending, so concurrent decisions cannot both win.
// It reports whether this call made the transition.
func (s *Store) Decide(ctx context.Context, id int64, status string, toolID *int64, at time.Time) (bool, error) {
	set := bson.M{
		"status":     status,
		"decided_at": at.UTC(),
	}
	if toolID != nil {
		set["tool_id"] = *toolID
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SubmissionPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// List returns submissions with status ("" for all), oldest first.
func (s *Store) List(ctx context.Context, status string) ([]models.Submission, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "submitted_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	subs := []models.Submission{}
	if err := cur.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// CountByStatus returns the number of submissions per status.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(models.AllSubmissionStatuses()))
	for _, st := range models.AllSubmissionStatuses() {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// DeleteDecidedBefore removes approved and rejected submissions decided before
// cutoff. Pending submissions are never matched.
func (s *Store) DeleteDecidedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"status":     bson.M{"$in": []string{models.SubmissionApproved, models.SubmissionRejected}},
		"decided_at": bson.M{"$lt": cutoff.UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
