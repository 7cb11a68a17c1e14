package fieldlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-synctemplate/pkg/fieldcache"
	"github.com/goliatone/go-synctemplate/pkg/fields"
	"github.com/goliatone/go-synctemplate/pkg/store"
)

const heroData = `[{"id":"h1","elType":"widget","widgetType":"heading","settings":{"dynamicFields":[{"fieldId":"hero_title","label":"Hero title","type":"text","enabled":true},{"fieldId":"hero_img","type":"image","enabled":"yes"},{"fieldId":"off","type":"text","enabled":false}]}}]`

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	records := []store.Template{
		{ID: "hero", Title: "Hero", Data: []byte(heroData)},
		{ID: "fallback", Title: "Fallback", Content: []byte(heroData)},
		{ID: "page", Title: "Page", Kind: "page", Data: []byte(heroData)},
		{ID: "draft", Title: "Draft", Status: store.StatusDraft},
	}
	for _, record := range records {
		if err := s.SaveTemplate(ctx, record); err != nil {
			t.Fatalf("seed template: %v", err)
		}
	}
	return s
}

func serve(t *testing.T, handler http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeListings(t *testing.T, rec *httptest.ResponseRecorder) []fields.Listing {
	t.Helper()
	var payload []fields.Listing
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestFields_ReturnsEnabledFields(t *testing.T) {
	router := New(WithStore(seededStore(t))).Router()

	rec := serve(t, router, http.MethodGet, "/templates/hero/fields", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	want := []fields.Listing{
		{FieldID: "hero_title", Label: "Hero title", Type: fields.TypeText},
		{FieldID: "hero_img", Label: "hero_img", Type: fields.TypeImage},
	}
	if diff := cmp.Diff(want, decodeListings(t, rec)); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestFields_ContentFallback(t *testing.T) {
	router := New(WithStore(seededStore(t))).Router()

	rec := serve(t, router, http.MethodGet, "/templates/fallback/fields", nil)
	if got := decodeListings(t, rec); len(got) != 2 {
		t.Fatalf("expected 2 fields from content fallback, got %#v", got)
	}
}

func TestFields_UnknownOrWrongKindIsEmptyArray(t *testing.T) {
	router := New(WithStore(seededStore(t))).Router()

	for _, id := range []string{"missing", "page", "draft"} {
		rec := serve(t, router, http.MethodGet, "/templates/"+id+"/fields", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", id, rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Fatalf("%s: expected empty array, got %q", id, body)
		}
	}
}

func TestFields_WithoutStoreIsEmptyArray(t *testing.T) {
	router := New().Router()
	rec := serve(t, router, http.MethodGet, "/templates/hero/fields", nil)
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestKeys_WrapsListingInEnvelope(t *testing.T) {
	router := New(WithStore(seededStore(t))).Router()

	rec := serve(t, router, http.MethodGet, "/templates/hero/keys", nil)
	var payload struct {
		Keys []fields.Listing `json:"keys"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Keys) != 2 || payload.Keys[0].FieldID != "hero_title" {
		t.Fatalf("unexpected keys payload: %#v", payload.Keys)
	}

	rec = serve(t, router, http.MethodGet, "/templates/missing/keys", nil)
	if body := strings.TrimSpace(rec.Body.String()); body != `{"keys":[]}` {
		t.Fatalf("expected empty envelope, got %q", body)
	}
}

func TestList_PublishedTemplates(t *testing.T) {
	router := New(WithStore(seededStore(t))).Router()

	rec := serve(t, router, http.MethodGet, "/templates", nil)
	var payload []store.Summary
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := []store.Summary{{ID: "fallback", Title: "Fallback"}, {ID: "hero", Title: "Hero"}}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	router := New(WithStore(seededStore(t))).Router()

	rec := serve(t, router, http.MethodPost, "/templates/hero/fields", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header: %q", allow)
	}
}

func TestHandlers_HeadHasNoBody(t *testing.T) {
	router := New(WithStore(seededStore(t))).Router()

	rec := serve(t, router, http.MethodHead, "/templates/hero/fields", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestHandlers_GuardStatus(t *testing.T) {
	cases := []struct {
		name  string
		guard GuardFunc
		want  int
	}{
		{name: "plain error", guard: func(*http.Request) error { return errors.New("nope") }, want: http.StatusForbidden},
		{name: "status error", guard: func(*http.Request) error { return StatusError{Code: http.StatusUnauthorized} }, want: http.StatusUnauthorized},
		{name: "allowed", guard: func(*http.Request) error { return nil }, want: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := New(WithStore(seededStore(t)), WithGuard(tc.guard)).Router()
			rec := serve(t, router, http.MethodGet, "/templates/hero/fields", nil)
			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestJWTGuard(t *testing.T) {
	secret := []byte("test-secret")
	router := New(WithStore(seededStore(t)), WithGuard(JWTGuard(secret, ""))).Router()

	editor, err := SignToken(secret, "alice", []string{DefaultEditorRole}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	viewer, _ := SignToken(secret, "bob", []string{"viewer"}, time.Hour)
	forged, _ := SignToken([]byte("other"), "eve", []string{DefaultEditorRole}, time.Hour)
	expired, _ := SignToken(secret, "old", []string{DefaultEditorRole}, -time.Hour)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "editor", header: "Bearer " + editor, want: http.StatusOK},
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + editor, want: http.StatusUnauthorized},
		{name: "forged", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
		{name: "viewer", header: "Bearer " + viewer, want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			header := http.Header{}
			if tc.header != "" {
				header.Set("Authorization", tc.header)
			}
			rec := serve(t, router, http.MethodGet, "/templates/hero/fields", header)
			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestJWTGuard_TemplateScope(t *testing.T) {
	secret := []byte("test-secret")
	router := New(WithStore(seededStore(t)), WithGuard(JWTGuard(secret, ""))).Router()

	scoped, err := SignScopedToken(secret, "alice", []string{DefaultEditorRole}, []string{"hero"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+scoped)

	cases := []struct {
		target string
		want   int
	}{
		{target: "/templates/hero/fields", want: http.StatusOK},
		{target: "/templates/hero/keys", want: http.StatusOK},
		{target: "/templates/fallback/fields", want: http.StatusForbidden},
		{target: "/templates", want: http.StatusOK},
	}
	for _, tc := range cases {
		rec := serve(t, router, http.MethodGet, tc.target, header)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.target, tc.want, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/templates/fallback/fields", nil)
	req.Header.Set("Authorization", "Bearer "+scoped)
	req.SetPathValue(TemplateIDParam, "fallback")
	err = JWTGuard(secret, "")(req)
	if !errors.Is(err, ErrTemplateDenied) {
		t.Fatalf("expected ErrTemplateDenied, got %v", err)
	}
}

func TestFields_UsesCache(t *testing.T) {
	backend := fieldcache.NewMemory()
	router := New(
		WithStore(seededStore(t)),
		WithCache(fieldcache.New(backend)),
	).Router()

	serve(t, router, http.MethodGet, "/templates/hero/fields", nil)
	if backend.Len() != 1 {
		t.Fatalf("expected one cached listing, got %d", backend.Len())
	}
	rec := serve(t, router, http.MethodGet, "/templates/hero/fields", nil)
	if got := decodeListings(t, rec); len(got) != 2 {
		t.Fatalf("expected cached listing of 2 fields, got %#v", got)
	}
}

func TestFieldsHandler_PatternRouting(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /api/templates/{id}/fields", FieldsHandler(WithStore(seededStore(t))))

	rec := serve(t, mux, http.MethodGet, "/api/templates/hero/fields", nil)
	if got := decodeListings(t, rec); len(got) != 2 {
		t.Fatalf("expected 2 fields, got %#v", got)
	}
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	routes, err := RegisterRoutes(router, "/admin/", WithStore(seededStore(t)))
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	want := Routes{
		List:   "/admin/templates",
		Fields: "/admin/templates/{id}/fields",
		Keys:   "/admin/templates/{id}/keys",
	}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Fatalf("routes mismatch (-want +got):\n%s", diff)
	}

	rec := serve(t, router, http.MethodGet, "/admin/templates/hero/fields", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil router")
	}
}

func TestMountPath(t *testing.T) {
	if got := MountPath("/admin"); got != "/admin/templates" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath("admin/", WithRoutePath("est/v1/templates/")); got != "/admin/est/v1/templates" {
		t.Fatalf("unexpected mount path: %q", got)
	}
	if got := MountPath(""); got != "/templates" {
		t.Fatalf("unexpected mount path: %q", got)
	}
}
