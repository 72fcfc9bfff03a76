// internal/domain/models/enums.go
package models

// Option is one allowed value of an enumerated field.
type Option struct {
	Value string // The value stored in the database
	Label string // The display label in the UI
}

// AllCategories contains the canonical tool categories, in display order.
var AllCategories = []Option{
	{Value: "AI Tools", Label: "AI Tools"},
	{Value: "Image Tools", Label: "Image Tools"},
	{Value: "Writing Tools", Label: "Writing Tools"},
	{Value: "Video Tools", Label: "Video Tools"},
	{Value: "Developer Tools", Label: "Developer Tools"},
	{Value: "SEO Tools", Label: "SEO Tools"},
	{Value: "Student Tools", Label: "Student Tools"},
	{Value: "Business Tools", Label: "Business Tools"},
}

// Pricing tags
const (
	PricingFree     = "Free"
	PricingFreemium = "Freemium"
	PricingPaid     = "Paid"
)

// AllPricingTags contains the allowed pricing tags.
var AllPricingTags = []Option{
	{Value: PricingFree, Label: "Free"},
	{Value: PricingFreemium, Label: "Freemium"},
	{Value: PricingPaid, Label: "Paid"},
}

// IsValidCategory checks if a value is one of the canonical categories.
// Comparison is exact; "ai tools" is not a category.
func IsValidCategory(value string) bool {
	return contains(AllCategories, value)
}

// IsValidPricingTag checks if a value is an allowed pricing tag.
func IsValidPricingTag(value string) bool {
	return contains(AllPricingTags, value)
}

// AllCategoryValues returns all category values as a slice.
func AllCategoryValues() []string {
	return values(AllCategories)
}

// AllPricingTagValues returns all pricing tag values as a slice.
func AllPricingTagValues() []string {
	return values(AllPricingTags)
}

func contains(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func values(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
