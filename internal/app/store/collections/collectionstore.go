// internal/app/store/collections/collectionstore.go
package collectionstore

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

var byName = bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}

type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("collections"), ids: counterstore.New(db)}
}

// Create inserts a collection with a fresh id.
func (s *Store) Create(ctx context.Context, c models.Collection) (*models.Collection, error) {
	id, err := s.ids.Next(ctx, counterstore.Collections)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.ToolIDs == nil {
		c.ToolIDs = []int64{}
	}

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID loads a collection. A missing id returns a wrapped apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Collection, error) {
	var c models.Collection
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("collection", id)
		}
		return nil, err
	}
	return &c, nil
}

// UpdateInput holds the fields to change. Nil fields are left alone.
type UpdateInput struct {
	Name       *string
	ToolIDs    []int64 // nil leaves the list alone; empty clears it
	IsFeatured *bool
}

// Update applies in and returns the updated collection.
func (s *Store) Update(ctx context.Context, id int64, in UpdateInput) (*models.Collection, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.ToolIDs != nil {
		set["tool_ids"] = in.ToolIDs
	}
	if in.IsFeatured != nil {
		set["is_featured"] = *in.IsFeatured
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Collection
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("collection", id)
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes a collection. The tools it references are untouched.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("collection", id)
	}
	return nil
}

// List returns every collection by name.
func (s *Store) List(ctx context.Context) ([]models.Collection, error) {
	return s.find(ctx, bson.M{})
}

// ListFeatured returns the featured collections by name.
func (s *Store) ListFeatured(ctx context.Context) ([]models.Collection, error) {
	return s.find(ctx, bson.M{"is_featured": true})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Collection, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(byName))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Collection{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PullTool removes toolID from every collection that references it and
// returns how many collections changed.
func (s *Store) PullTool(ctx context.Context, toolID int64) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"tool_ids": toolID},
		bson.M{
			"$pull": bson.M{"tool_ids": toolID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
