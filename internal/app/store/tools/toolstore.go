// internal/app/store/tools/toolstore.go
package toolstore

import (
	"context"
	"errors"
	"time"

	counterstore "github.com/dalemusser/stratatools/internal/app/store/counters"
	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateSlug is returned when a create races another tool for the same slug.
var ErrDuplicateSlug = errors.New("a tool with this slug already exists")

// defaultOrder is the catalog's default order: newest first, id tie-break.
var defaultOrder = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

type Store struct {
	c   *mongo.Collection
	ids *counterstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tools"), ids: counterstore.New(db)}
}

// Create allocates a fresh id and inserts the tool. CreatedAt defaults to now
// and UpdatedAt is never earlier than CreatedAt.
func (s *Store) Create(ctx context.Context, t models.Tool) (*models.Tool, error) {
	id, err := s.ids.Next(ctx, counterstore.Tools)
	if err != nil {
		return nil, err
	}
	t.ID = id
	t.NameCI = text.Fold(t.Name)

	// Mongo keeps millisecond precision; truncate so the returned value matches a reload.
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.CreatedAt = t.CreatedAt.UTC().Truncate(time.Millisecond)
	t.UpdatedAt = t.UpdatedAt.UTC().Truncate(time.Millisecond)
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return &t, nil
}

// GetByID loads a tool. A missing id returns a wrapped apperr.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Tool, error) {
	var t models.Tool
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("tool", id)
		}
		return nil, err
	}
	return &t, nil
}

// GetBySlug loads a tool by its unique slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Tool, error) {
	var t models.Tool
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("tool", slug)
		}
		return nil, err
	}
	return &t, nil
}

// SlugExists reports whether any tool uses slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AllTools returns the whole catalog in default order.
func (s *Store) AllTools(ctx context.Context) ([]models.Tool, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(defaultOrder))
}

// GetByIDs loads the tools with the given ids, in no particular order.
// Unknown ids are ignored.
func (s *Store) GetByIDs(ctx context.Context, ids []int64) ([]models.Tool, error) {
	if len(ids) == 0 {
		return []models.Tool{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// MissingIDs returns the ids from the input that name no tool, in input order.
func (s *Store) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found, err := s.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	have := make(map[int64]bool, len(found))
	for _, t := range found {
		have[t.ID] = true
	}
	missing := []int64{}
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Count returns the number of tools in the catalog.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Tool, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tools := []models.Tool{}
	if err := cur.All(ctx, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

// Update replaces the content fields. The slug is kept and UpdatedAt bumped.
func (s *Store) Update(ctx context.Context, id int64, f models.ToolFields) (*models.Tool, error) {
	return s.apply(ctx, id, bson.M{"$set": bson.M{
		"name":          f.Name,
		"name_ci":       text.Fold(f.Name),
		"icon_url":      f.IconURL,
		"description":   f.Description,
		"category":      f.Category,
		"pricing_tag":   f.PricingTag,
		"official_link": f.OfficialLink,
		"updated_at":    time.Now().UTC(),
	}})
}

// SetFeatured sets the featured flag.
func (s *Store) SetFeatured(ctx context.Context, id int64, featured bool) (*models.Tool, error) {
	return s.apply(ctx, id, bson.M{"$set": bson.M{
		"is_featured": featured,
		"updated_at":  time.Now().UTC(),
	}})
}

// SetPopular sets the popular flag.
func (s *Store) SetPopular(ctx context.Context, id int64, popular bool) (*models.Tool, error) {
	return s.apply(ctx, id, bson.M{"$set": bson.M{
		"is_popular": popular,
		"updated_at": time.Now().UTC(),
	}})
}

// UpdateSEO sets the SEO overrides. A nil field is cleared.
func (s *Store) UpdateSEO(ctx context.Context, id int64, seo models.SEO) (*models.Tool, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	for field, v := range map[string]*string{
		"seo_title":       seo.Title,
		"seo_description": seo.Description,
		"seo_keywords":    seo.Keywords,
	} {
		if v == nil {
			unset[field] = ""
		} else {
			set[field] = *v
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return s.apply(ctx, id, update)
}

func (s *Store) apply(ctx context.Context, id int64, update bson.M) (*models.Tool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Tool
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("tool", id)
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes a tool. Callers are responsible for pulling the id from collections.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("tool", id)
	}
	return nil
}
