// internal/domain/models/tool.go
package models

import "time"

// ToolFields holds the content fields shared by catalog tools and submissions.
// These are the fields a submitter or a CSV row can supply.
type ToolFields struct {
	Name         string `bson:"name" json:"name"`
	IconURL      string `bson:"icon_url" json:"icon_url"`
	Description  string `bson:"description" json:"description"`
	Category     string `bson:"category" json:"category"`
	PricingTag   string `bson:"pricing_tag" json:"pricing_tag"`
	OfficialLink string `bson:"official_link" json:"official_link"`
}

// Tool is a catalog entry describing one external product.
//
// ID is allocated once from the counters collection and never changes.
// Slug is derived from Name at creation and is unique across the catalog.
type Tool struct {
	ID         int64 `bson:"_id" json:"id"`
	ToolFields `bson:",inline"`

	NameCI string `bson:"name_ci" json:"-"` // folded name for case-insensitive sort
	Slug   string `bson:"slug" json:"slug"`

	IsFeatured bool `bson:"is_featured" json:"is_featured"`
	IsPopular  bool `bson:"is_popular" json:"is_popular"`

	// Optional SEO overrides; nil means "use the defaults derived from the tool".
	SEOTitle       *string `bson:"seo_title,omitempty" json:"seo_title,omitempty"`
	SEODescription *string `bson:"seo_description,omitempty" json:"seo_description,omitempty"`
	SEOKeywords    *string `bson:"seo_keywords,omitempty" json:"seo_keywords,omitempty"`

	ImportBatch string `bson:"import_batch,omitempty" json:"import_batch,omitempty"` // bulk upload that created it

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SEO holds the optional search-engine overrides for a tool.
type SEO struct {
	Title       *string `json:"seo_title"`
	Description *string `json:"seo_description"`
	Keywords    *string `json:"seo_keywords"`
}
