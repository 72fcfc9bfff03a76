// Package catalog answers read queries over the tool catalog: filtered, sorted
// pages, text search, featured tools, category counts and similar tools.
//
// The engine reads a full snapshot from its Source and does all filtering,
// ordering and slicing in memory, so results are deterministic for a given
// snapshot. It holds no mutable state and is safe for concurrent use.
package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"

	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/models"
)

// Defaults applied when a caller passes a non-positive size.
const (
	DefaultPageSize     = 60
	DefaultSimilarLimit = 4
)

// Filters
const (
	FilterNone     = ""
	FilterPopular  = "Popular"
	FilterFeatured = "Featured"
)

// Sorts
const (
	SortNewest       = "Newest"
	SortPopular      = "Popular"
	SortAlphabetical = "Alphabetical"
)

// Source supplies the current catalog snapshot.
type Source interface {
	AllTools(ctx context.Context) ([]models.Tool, error)
}

// ListQuery selects one page of the catalog.
// Page is zero-based. Category, when set, must match exactly and combines with Filter.
type ListQuery struct {
	Page     int
	PageSize int
	Filter   string
	Sort     string
	Category string
}

// Engine runs catalog queries against a Source.
type Engine struct {
	src          Source
	pageSize     int
	similarLimit int
}

// New creates an engine. Non-positive pageSize or similarLimit select the defaults.
func New(src Source, pageSize, similarLimit int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if similarLimit <= 0 {
		similarLimit = DefaultSimilarLimit
	}
	return &Engine{src: src, pageSize: pageSize, similarLimit: similarLimit}
}

// List returns one filtered, sorted page.
func (e *Engine) List(ctx context.Context, q ListQuery) (models.PaginatedTools, error) {
	all, err := e.src.AllTools(ctx)
	if err != nil {
		return models.PaginatedTools{}, err
	}
	if q.PageSize <= 0 {
		q.PageSize = e.pageSize
	}
	matched := Filter(all, q.Filter, q.Category)
	Sort(matched, q.Sort)
	return Paginate(matched, q.Page, q.PageSize), nil
}

// Search returns tools whose name, description or category contains term,
// case-insensitively, in default order. A blank term returns an empty list
// without reading the Source.
func (e *Engine) Search(ctx context.Context, term string) ([]models.Tool, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return []models.Tool{}, nil
	}
	all, err := e.src.AllTools(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Tool, 0)
	for _, t := range all {
		if strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) ||
			strings.Contains(strings.ToLower(t.Category), needle) {
			out = append(out, t)
		}
	}
	Sort(out, SortNewest)
	return out, nil
}

// Featured returns featured tools in default order.
func (e *Engine) Featured(ctx context.Context) ([]models.Tool, error) {
	all, err := e.src.AllTools(ctx)
	if err != nil {
		return nil, err
	}
	out := Filter(all, FilterFeatured, "")
	Sort(out, SortNewest)
	return out, nil
}

// Categories returns every canonical category with its tool count, in canonical order.
func (e *Engine) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	all, err := e.src.AllTools(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range all {
		counts[t.Category]++
	}
	out := make([]models.CategoryCount, 0, len(models.AllCategories))
	for _, c := range models.AllCategoryValues() {
		out = append(out, models.CategoryCount{Category: c, Count: counts[c]})
	}
	return out, nil
}

// Similar returns up to limit tools ranked by likeness to the tool with the given id.
// Non-positive limit selects the engine default.
func (e *Engine) Similar(ctx context.Context, id int64, limit int) ([]models.Tool, error) {
	all, err := e.src.AllTools(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(all, func(t models.Tool) bool { return t.ID == id })
	if idx < 0 {
		return nil, apperr.NotFound("tool", id)
	}
	if limit <= 0 {
		limit = e.similarLimit
	}
	return Rank(all[idx], all, limit), nil
}

// Filter returns the tools matching filter and category, in input order.
// An unrecognized filter matches nothing.
func Filter(tools []models.Tool, filter, category string) []models.Tool {
	keep := predicate(filter)
	out := make([]models.Tool, 0, len(tools))
	for _, t := range tools {
		if keep(t) && (category == "" || t.Category == category) {
			out = append(out, t)
		}
	}
	return out
}

func predicate(filter string) func(models.Tool) bool {
	switch filter {
	case FilterNone:
		return func(models.Tool) bool { return true }
	case models.PricingFree, models.PricingFreemium, models.PricingPaid:
		return func(t models.Tool) bool { return t.PricingTag == filter }
	case FilterPopular:
		return func(t models.Tool) bool { return t.IsPopular }
	case FilterFeatured:
		return func(t models.Tool) bool { return t.IsFeatured }
	default:
		return func(models.Tool) bool { return false }
	}
}

// Sort orders tools in place. Unknown sort keys use the default (newest first).
// Every order ends with an ID tie-break, so the result is total and repeatable.
func Sort(tools []models.Tool, sort string) {
	switch sort {
	case SortAlphabetical:
		slices.SortStableFunc(tools, func(a, b models.Tool) int {
			if c := strings.Compare(text.Fold(a.Name), text.Fold(b.Name)); c != 0 {
				return c
			}
			return cmpInt64(a.ID, b.ID)
		})
	case SortPopular:
		slices.SortStableFunc(tools, func(a, b models.Tool) int {
			if a.IsPopular != b.IsPopular {
				if a.IsPopular {
					return -1
				}
				return 1
			}
			return newest(a, b)
		})
	default:
		slices.SortStableFunc(tools, newest)
	}
}

func newest(a, b models.Tool) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmpInt64(b.ID, a.ID)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Paginate slices one zero-based page out of tools. Pages past the end are
// empty but still report the totals.
func Paginate(tools []models.Tool, page, pageSize int) models.PaginatedTools {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	total := len(tools)
	res := models.PaginatedTools{
		Items:      []models.Tool{},
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	start := page * pageSize
	if start >= total {
		return res
	}
	end := min(start+pageSize, total)
	res.Items = append(res.Items, tools[start:end]...)
	return res
}

// Rank scores every tool except ref by likeness to ref (2 for the same
// category, 1 for the same pricing tag) and returns the top limit, highest
// score first with ID ascending among equals. Zero-score tools are still eligible.
func Rank(ref models.Tool, tools []models.Tool, limit int) []models.Tool {
	type scored struct {
		t     models.Tool
		score int
	}
	cands := make([]scored, 0, len(tools))
	for _, t := range tools {
		if t.ID == ref.ID {
			continue
		}
		s := 0
		if t.Category == ref.Category {
			s += 2
		}
		if t.PricingTag == ref.PricingTag {
			s++
		}
		cands = append(cands, scored{t, s})
	}
	slices.SortFunc(cands, func(a, b scored) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return cmpInt64(a.t.ID, b.t.ID)
	})

	if limit < 0 {
		limit = 0
	}
	out := make([]models.Tool, 0, min(limit, len(cands)))
	for i := 0; i < len(cands) && i < limit; i++ {
		out = append(out, cands[i].t)
	}
	return out
}

// Resolve pairs a collection with its tools in stored order. Ids with no
// matching tool are skipped.
func Resolve(c models.Collection, tools []models.Tool) models.CollectionWithTools {
	byID := make(map[int64]models.Tool, len(tools))
	for _, t := range tools {
		byID[t.ID] = t
	}
	out := models.CollectionWithTools{Collection: c, Tools: make([]models.Tool, 0, len(c.ToolIDs))}
	for _, id := range c.ToolIDs {
		if t, ok := byID[id]; ok {
			out.Tools = append(out.Tools, t)
		}
	}
	return out
}
