package collections

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/store/audit"
	collectionstore "github.com/dalemusser/stratatools/internal/app/store/collections"
	toolstore "github.com/dalemusser/stratatools/internal/app/store/tools"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/stratatools/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type recorder struct{ events []audit.Event }

func (r *recorder) Log(_ context.Context, e audit.Event) { r.events = append(r.events, e) }

func setup(t *testing.T) (http.Handler, *toolstore.Store, *recorder) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tools := toolstore.New(db)
	rec := &recorder{}
	h := NewHandler(collectionstore.New(db), tools, rec, errorsfeature.NewErrorLogger(zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	r.Mount("/api/collections", Routes(h))
	r.Mount("/api/admin/collections", AdminRoutes(h))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	for _, slug := range []string{"one", "two", "three"} {
		if _, err := tools.Create(ctx, models.Tool{
			ToolFields: models.ToolFields{Name: slug, Category: "AI Tools", PricingTag: models.PricingFree},
			Slug:       slug,
		}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	return r, tools, rec
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestCreateAndGet(t *testing.T) {
	h, tools, audits := setup(t)

	rec := do(h, http.MethodPost, "/api/admin/collections", `{"name":"  Starter kit ","tool_ids":[3,1],"is_featured":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created models.Collection
	json.NewDecoder(rec.Body).Decode(&created)
	if created.Name != "Starter kit" || len(created.ToolIDs) != 2 {
		t.Errorf("created = %+v", created)
	}

	// deleting a referenced tool leaves the collection readable
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := tools.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	rec = do(h, http.MethodGet, "/api/collections/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got models.CollectionWithTools
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got.Tools) != 1 || got.Tools[0].Slug != "three" {
		t.Errorf("resolved tools = %+v, want [three]", got.Tools)
	}

	rec = do(h, http.MethodGet, "/api/collections", "")
	var featured struct {
		Collections []models.CollectionWithTools `json:"collections"`
	}
	json.NewDecoder(rec.Body).Decode(&featured)
	if len(featured.Collections) != 1 {
		t.Errorf("featured = %d, want 1", len(featured.Collections))
	}

	if len(audits.events) != 1 || audits.events[0].EventType != audit.EventCollectionCreated {
		t.Errorf("audit = %+v", audits.events)
	}
}

func TestCreate_Invalid(t *testing.T) {
	h, _, _ := setup(t)

	rec := do(h, http.MethodPost, "/api/admin/collections", `{"name":"","tool_ids":[1,77]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Messages []string `json:"messages"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if len(body.Messages) != 2 || body.Messages[1] != "Unknown tool id: 77" {
		t.Errorf("messages = %v", body.Messages)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	h, tools, _ := setup(t)
	do(h, http.MethodPost, "/api/admin/collections", `{"name":"Kit","tool_ids":[1]}`)

	rec := do(h, http.MethodPut, "/api/admin/collections/1", `{"tool_ids":[2,3]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}
	var updated models.Collection
	json.NewDecoder(rec.Body).Decode(&updated)
	if updated.Name != "Kit" || len(updated.ToolIDs) != 2 || updated.ToolIDs[0] != 2 {
		t.Errorf("updated = %+v", updated)
	}

	if rec := do(h, http.MethodPut, "/api/admin/collections/9", `{"name":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d, want 404", rec.Code)
	}

	rec = do(h, http.MethodDelete, "/api/admin/collections/1", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/collections/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if n, _ := tools.Count(ctx); n != 3 {
		t.Errorf("tool count = %d, want 3 (collections do not own tools)", n)
	}
}

func TestList(t *testing.T) {
	h, _, _ := setup(t)
	do(h, http.MethodPost, "/api/admin/collections", `{"name":"B"}`)
	do(h, http.MethodPost, "/api/admin/collections", `{"name":"A"}`)

	rec := do(h, http.MethodGet, "/api/admin/collections", "")
	var body struct {
		Collections []models.Collection `json:"collections"`
		Total       int                 `json:"total"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Total != 2 || body.Collections[0].Name != "A" {
		t.Errorf("list = %+v", body)
	}
}
