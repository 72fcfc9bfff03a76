// internal/domain/models/page.go
package models

// PaginatedTools is one page of a filtered, sorted tool listing.
// TotalPages is ceil(Total/PageSize), and 0 when Total is 0.
type PaginatedTools struct {
	Items      []Tool `json:"tools"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// CategoryCount is a category with the number of catalog tools in it.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
