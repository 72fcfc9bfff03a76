// Package ingest turns parsed CSV rows into validated tool candidates and
// uploads the valid ones to the catalog.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dalemusser/stratatools/internal/domain/csvio"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/stratatools/internal/domain/slug"
	"github.com/dalemusser/stratatools/internal/domain/toolval"
)

// Header is the canonical column order. Exports use it so they re-import cleanly.
var Header = []string{"name", "iconUrl", "description", "category", "pricingTag", "officialLink"}

// aliases lists the accepted header names per field; the first non-empty value wins.
var aliases = struct {
	name, iconURL, description, category, pricingTag, officialLink []string
}{
	name:         []string{"name", "tool_name"},
	iconURL:      []string{"iconUrl", "icon_url", "tool_icon_url"},
	description:  []string{"description"},
	category:     []string{"category"},
	pricingTag:   []string{"pricingTag", "pricing_tag"},
	officialLink: []string{"officialLink", "official_link"},
}

// MapRow maps a CSV row to tool fields using the accepted header aliases.
// Missing columns become "".
func MapRow(r csvio.Row) models.ToolFields {
	return models.ToolFields{
		Name:         first(r, aliases.name),
		IconURL:      first(r, aliases.iconURL),
		Description:  first(r, aliases.description),
		Category:     first(r, aliases.category),
		PricingTag:   first(r, aliases.pricingTag),
		OfficialLink: first(r, aliases.officialLink),
	}
}

func first(r csvio.Row, keys []string) string {
	for _, k := range keys {
		if v := r.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Record renders tool fields in Header order.
func Record(f models.ToolFields) []string {
	return []string{f.Name, f.IconURL, f.Description, f.Category, f.PricingTag, f.OfficialLink}
}

// RowResult is the verdict for one CSV row. Row is the 1-based record number
// (header is row 1), so messages line up with what the user sees in a spreadsheet.
type RowResult struct {
	Row    int               `json:"row"`
	Fields models.ToolFields `json:"fields"`
	Valid  bool              `json:"valid"`
	Errors []string          `json:"errors"`
}

// Check validates every parsed row and flags duplicates, both against the
// existing catalog and against earlier rows of the same file. Results keep
// input order.
func Check(parsed csvio.ParseResult, existing []models.Tool) []RowResult {
	names := make(map[string]string, len(existing))
	links := make(map[string]string, len(existing))
	for _, t := range existing {
		names[toolval.NormalizeName(t.Name)] = t.Name
		links[toolval.NormalizeURL(t.OfficialLink)] = t.Name
	}

	seenName := make(map[string]int)
	seenLink := make(map[string]int)

	out := make([]RowResult, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		fields := MapRow(row)
		res := toolval.Validate(fields)
		errs := res.Errors

		nk := toolval.NormalizeName(fields.Name)
		lk := toolval.NormalizeURL(fields.OfficialLink)

		switch {
		case nk != "" && names[nk] != "":
			errs = append(errs, "Duplicate of existing tool: "+names[nk])
		case lk != "" && links[lk] != "":
			errs = append(errs, "Duplicate of existing tool: "+links[lk])
		case nk != "" && seenName[nk] != 0:
			errs = append(errs, fmt.Sprintf("Duplicate of row %d", seenName[nk]))
		case lk != "" && seenLink[lk] != 0:
			errs = append(errs, fmt.Sprintf("Duplicate of row %d", seenLink[lk]))
		}

		if nk != "" && seenName[nk] == 0 {
			seenName[nk] = row.Number
		}
		if lk != "" && seenLink[lk] == 0 {
			seenLink[lk] = row.Number
		}

		out = append(out, RowResult{
			Row:    row.Number,
			Fields: fields,
			Valid:  len(errs) == 0,
			Errors: errs,
		})
	}
	return out
}

// Summary counts verdicts.
type Summary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Summarize counts the valid and invalid results.
func Summarize(results []RowResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Valid {
			s.Valid++
		}
	}
	s.Invalid = s.Total - s.Valid
	return s
}

// ToolWriter is the catalog write surface an upload needs.
// Create assigns the tool's ID and returns the stored record.
type ToolWriter interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, t models.Tool) (*models.Tool, error)
}

// Report describes an upload. Rows created before a failure stay committed.
type Report struct {
	Batch     string  `json:"batch"`
	Attempted int     `json:"attempted"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Skipped   int     `json:"skipped"`
	ToolIDs   []int64 `json:"tool_ids"`
	FailedRow int     `json:"failed_row,omitempty"`
	Err       error   `json:"-"`
}

// Upload creates a tool for each valid result, in order, one independent create
// per row. It stops at the first failure or when ctx is cancelled between rows.
// Invalid results are counted as skipped and never written.
func Upload(ctx context.Context, w ToolWriter, results []RowResult, now time.Time) Report {
	rep := Report{Batch: uuid.NewString(), ToolIDs: []int64{}}

	valid := make([]RowResult, 0, len(results))
	for _, r := range results {
		if r.Valid {
			valid = append(valid, r)
		}
	}
	rep.Skipped = len(results) - len(valid)

	for i, r := range valid {
		if err := ctx.Err(); err != nil {
			rep.Err = err
			rep.Skipped += len(valid) - i
			return rep
		}
		rep.Attempted++

		id, err := create(ctx, w, r.Fields, rep.Batch, now)
		if err != nil {
			rep.Failed = 1
			rep.FailedRow = r.Row
			rep.Err = fmt.Errorf("row %d: %w", r.Row, err)
			rep.Skipped += len(valid) - i - 1
			return rep
		}
		rep.Succeeded++
		rep.ToolIDs = append(rep.ToolIDs, id)
	}
	return rep
}

func create(ctx context.Context, w ToolWriter, f models.ToolFields, batch string, now time.Time) (int64, error) {
	s, err := slug.Unique(ctx, slug.Make(f.Name), w.SlugExists)
	if err != nil {
		return 0, err
	}
	t, err := w.Create(ctx, models.Tool{
		ToolFields:  f,
		Slug:        s,
		ImportBatch: batch,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}
