// internal/domain/models/collection.go
package models

import "time"

// Collection is a curated, ordered list of tool references.
// Deleting a collection never deletes the tools it references.
type Collection struct {
	ID         int64     `bson:"_id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	ToolIDs    []int64   `bson:"tool_ids" json:"tool_ids"`
	IsFeatured bool      `bson:"is_featured" json:"is_featured"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// CollectionWithTools is a collection with its tool references resolved, in stored order.
type CollectionWithTools struct {
	Collection
	Tools []Tool `json:"tools"`
}
