package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	toolstore "github.com/dalemusser/stratatools/internal/app/store/tools"
	"github.com/dalemusser/stratatools/internal/domain/catalog"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/stratatools/internal/testutil"
	"go.uber.org/zap"
)

func setup(t *testing.T) (http.Handler, *toolstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := toolstore.New(db)
	engine := catalog.New(store, 2, 0)
	h := NewHandler(engine, store, nil, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return Routes(h), store
}

func seed(t *testing.T, store *toolstore.Store) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []struct {
		name, slug, category, pricing string
		featured                      bool
	}{
		{"Alpha Writer", "alpha-writer", "Writing Tools", models.PricingFree, false},
		{"beta Draw", "beta-draw", "Image Tools", models.PricingPaid, true},
		{"Gamma Prose", "gamma-prose", "Writing Tools", models.PricingFree, false},
	}
	for i, row := range rows {
		_, err := store.Create(ctx, models.Tool{
			ToolFields: models.ToolFields{
				Name:         row.name,
				IconURL:      "https://example.com/i.png",
				Description:  row.name + " helps you work",
				Category:     row.category,
				PricingTag:   row.pricing,
				OfficialLink: "https://example.com/" + row.slug,
			},
			Slug:       row.slug,
			IsFeatured: row.featured,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestList(t *testing.T) {
	h, store := setup(t)
	seed(t, store)

	rec := get(t, h, "/?page=0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var page models.PaginatedTools
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Errorf("page = total %d pages %d items %d, want 3/2/2", page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].Slug != "gamma-prose" {
		t.Errorf("first item = %q, want newest", page.Items[0].Slug)
	}

	rec = get(t, h, "/?sort=Alphabetical&page_size=10")
	json.NewDecoder(rec.Body).Decode(&page)
	if len(page.Items) != 3 || page.Items[1].Name != "beta Draw" {
		t.Errorf("alphabetical order wrong: %+v", page.Items)
	}

	rec = get(t, h, "/?filter=Free&category=Writing%20Tools&page_size=10")
	json.NewDecoder(rec.Body).Decode(&page)
	if page.Total != 2 {
		t.Errorf("filtered total = %d, want 2", page.Total)
	}

	rec = get(t, h, "/?filter=Bogus")
	json.NewDecoder(rec.Body).Decode(&page)
	if page.Total != 0 || page.TotalPages != 0 {
		t.Errorf("unknown filter total = %d, want 0", page.Total)
	}
}

func TestList_BadPage(t *testing.T) {
	h, _ := setup(t)
	if rec := get(t, h, "/?page=two"); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchAndFeatured(t *testing.T) {
	h, store := setup(t)
	seed(t, store)

	var body struct {
		Tools []models.Tool `json:"tools"`
		Total int           `json:"total"`
	}
	rec := get(t, h, "/search?q=WRITER")
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Total != 1 || body.Tools[0].Slug != "alpha-writer" {
		t.Errorf("search = %+v", body)
	}

	rec = get(t, h, "/search?q=%20%20")
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Total != 0 || body.Tools == nil {
		t.Errorf("blank search = %+v, want empty list", body)
	}

	rec = get(t, h, "/featured")
	body.Tools = nil
	json.NewDecoder(rec.Body).Decode(&body)
	if len(body.Tools) != 1 || body.Tools[0].Slug != "beta-draw" {
		t.Errorf("featured = %+v", body.Tools)
	}
}

func TestGetAndSlug(t *testing.T) {
	h, store := setup(t)
	seed(t, store)

	rec := get(t, h, "/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /2 status = %d", rec.Code)
	}
	var tool models.Tool
	json.NewDecoder(rec.Body).Decode(&tool)
	if tool.Slug != "beta-draw" {
		t.Errorf("GET /2 slug = %q", tool.Slug)
	}

	rec = get(t, h, "/slug/gamma-prose")
	json.NewDecoder(rec.Body).Decode(&tool)
	if tool.ID != 3 {
		t.Errorf("GET by slug id = %d, want 3", tool.ID)
	}

	if rec := get(t, h, "/99"); rec.Code != http.StatusNotFound {
		t.Errorf("GET /99 status = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/slug/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("GET missing slug status = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("GET /abc status = %d, want 400", rec.Code)
	}
}

func TestSimilar(t *testing.T) {
	h, store := setup(t)
	seed(t, store)

	rec := get(t, h, "/1/similar?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Tools []models.Tool `json:"tools"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if len(body.Tools) != 1 || body.Tools[0].ID != 3 {
		t.Errorf("similar = %+v, want tool 3 (same category and pricing)", body.Tools)
	}

	if rec := get(t, h, "/42/similar"); rec.Code != http.StatusNotFound {
		t.Errorf("similar on missing tool status = %d, want 404", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := toolstore.New(db)
	seed(t, store)
	h := NewHandler(catalog.New(store, 0, 0), store, nil, errorsfeature.NewErrorLogger(nil), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Categories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	var body struct {
		Categories []models.CategoryCount `json:"categories"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if len(body.Categories) != len(models.AllCategories) {
		t.Fatalf("categories = %d, want %d", len(body.Categories), len(models.AllCategories))
	}
	counts := map[string]int{}
	for _, c := range body.Categories {
		counts[c.Category] = c.Count
	}
	if counts["Writing Tools"] != 2 || counts["Image Tools"] != 1 || counts["AI Tools"] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
