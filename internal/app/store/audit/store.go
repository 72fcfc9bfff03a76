// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAdmin = "admin"
)

// Subject kinds
const (
	SubjectTool       = "tool"
	SubjectSubmission = "submission"
	SubjectCollection = "collection"
	SubjectImport     = "import"
	SubjectNewsletter = "newsletter"
)

// Admin event types
const (
	EventToolCreated         = "tool_created"
	EventToolUpdated         = "tool_updated"
	EventToolDeleted         = "tool_deleted"
	EventToolFeaturedChanged = "tool_featured_changed"
	EventToolPopularChanged  = "tool_popular_changed"
	EventToolSEOUpdated      = "tool_seo_updated"
	EventToolsImported       = "tools_imported"
	EventToolsExported       = "tools_exported"
	EventSubmissionApproved  = "submission_approved"
	EventSubmissionRejected  = "submission_rejected"
	EventCollectionCreated   = "collection_created"
	EventCollectionUpdated   = "collection_updated"
	EventCollectionDeleted   = "collection_deleted"
	EventNewsletterExported  = "newsletter_exported"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// What was acted on. SubjectID is a string so tool ids, import
	// batch uuids and emails share one field.
	SubjectKind string `bson:"subject_kind,omitempty" json:"subject_kind,omitempty"`
	SubjectID   string `bson:"subject_id,omitempty" json:"subject_id,omitempty"`

	Actor     string `bson:"actor,omitempty" json:"actor,omitempty"`
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	Category    string
	EventType   string
	SubjectKind string
	SubjectID   string
	StartTime   *time.Time
	EndTime     *time.Time
	Limit       int64
	Offset      int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

func (f QueryFilter) toBSON() bson.M {
	query := bson.M{}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.EventType != "" {
		query["event_type"] = f.EventType
	}
	if f.SubjectKind != "" {
		query["subject_kind"] = f.SubjectKind
	}
	if f.SubjectID != "" {
		query["subject_id"] = f.SubjectID
	}
	if f.StartTime != nil || f.EndTime != nil {
		timeQuery := bson.M{}
		if f.StartTime != nil {
			timeQuery["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			timeQuery["$lte"] = *f.EndTime
		}
		query["created_at"] = timeQuery
	}
	return query
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.toBSON())
}

// GetBySubject retrieves recent events for one subject, e.g. a single tool.
func (s *Store) GetBySubject(ctx context.Context, kind, id string, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{SubjectKind: kind, SubjectID: id, Limit: limit})
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}
