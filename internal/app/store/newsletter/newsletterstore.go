// internal/app/store/newsletter/newsletterstore.go
package newsletterstore

import (
	"context"
	"time"

	"github.com/dalemusser/stratatools/internal/app/system/normalize"
	"github.com/dalemusser/stratatools/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("newsletter_subscriptions")}
}

// Subscribe adds email to the mailing list and reports whether it was new.
// Subscribing an address that is already present changes nothing.
func (s *Store) Subscribe(ctx context.Context, email string, at time.Time) (bool, error) {
	email = normalize.Email(email)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": email},
		bson.M{"$setOnInsert": bson.M{"subscribed_at": at.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two concurrent upserts for a new key: the loser sees a duplicate.
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

// List returns every subscription, oldest first.
func (s *Store) List(ctx context.Context) ([]models.NewsletterSubscription, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "subscribed_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.NewsletterSubscription{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of subscribers.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
