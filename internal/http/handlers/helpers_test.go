package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/middleware"
)

func TestFlexibleIDAcceptsNumbersAndStrings(t *testing.T) {
	cases := map[string]int64{
		`{"job_id": 7}`:     7,
		`{"job_id": "12"}`:  12,
		`{"job_id": " 3 "}`: 3,
		`{"job_id": "abc"}`: 0,
		`{"job_id": null}`:  0,
		`{}`:                0,
	}
	for body, want := range cases {
		var req submitRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("%s: unexpected error: %v", body, err)
		}
		if int64(req.JobID) != want {
			t.Fatalf("%s: expected %d, got %d", body, want, req.JobID)
		}
	}
}

func TestIDFromPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/applications/job/42", nil)
	id, err := idFromPath(req, 3)
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	if _, err := idFromPath(req, 9); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for missing segment, got %v", err)
	}
	bad := httptest.NewRequest(http.MethodGet, "/api/jobs/-1", nil)
	if _, err := idFromPath(bad, 2); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for negative id, got %v", err)
	}
}

func TestDecodeJSONRejectsEmptyAndOversizedBodies(t *testing.T) {
	var dst map[string]any
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  "))
	if err := decodeJSON(req, &dst); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 16)
	err := decodeJSON(req, &dst)
	if !common.Is(err, common.CodeValidation) || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected body too large, got %v", err)
	}
}

func TestQueryIntRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/jobs?page=two", nil)
	if _, _, err := pageParams(req); !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/jobs?page=2&limit=5", nil)
	page, limit, err := pageParams(req)
	if err != nil || page != 2 || limit != 5 {
		t.Fatalf("unexpected page params %d/%d (%v)", page, limit, err)
	}
}

func TestIdentityRequiresAuthenticatedCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := identity(req); !common.Is(err, common.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	req = req.WithContext(middleware.WithIdentity(req.Context(), user.Identity{ID: 5, Role: user.RoleUser}))
	actor, err := identity(req)
	if err != nil || actor.ID != 5 {
		t.Fatalf("unexpected identity %+v (%v)", actor, err)
	}
}
