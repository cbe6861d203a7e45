package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pcouderc/worksched/core/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestListAllocationsScopeAndAuth(t *testing.T) {
	var gotAuth, gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/allocations" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]model.Allocation{{ID: "a1", AtomName: "Pour footing"}})
	})
	c := newTestClient(t, handler)

	scope := model.Scope{ProjectID: "p1", ContractID: "c1"}
	allocs, err := c.ListAllocations(context.Background(), scope)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(allocs) != 1 || allocs[0].ID != "a1" {
		t.Fatalf("unexpected allocations %+v", allocs)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("auth header %q", gotAuth)
	}
	if gotQuery != "contractId=c1&projectId=p1" {
		t.Fatalf("query %q", gotQuery)
	}
}

func TestCreateAllocationRoundTrip(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/allocations" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload model.AllocationCreate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		alloc := model.Allocation{
			ID:            "srv-9",
			AtomID:        payload.AtomID,
			AtomName:      payload.AtomName,
			PlannedStart:  payload.PlannedStart,
			PlannedFinish: payload.PlannedFinish,
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(alloc)
	})
	c := newTestClient(t, handler)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created, err := c.CreateAllocation(context.Background(), model.Scope{ProjectID: "p1"}, model.AllocationCreate{
		AtomID:        "atom-1",
		AtomName:      "Rebar",
		ProcessID:     "proc-1",
		PlannedStart:  start,
		PlannedFinish: start.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "srv-9" || created.AtomName != "Rebar" {
		t.Fatalf("unexpected allocation %+v", created)
	}
}

func TestUpdateAllocationPathAndMethod(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/allocations/a1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var patch model.AllocationPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if patch.PercentComplete == nil || *patch.PercentComplete != 0.5 {
			t.Fatalf("unexpected patch %+v", patch)
		}
		_ = json.NewEncoder(w).Encode(model.Allocation{ID: "a1", PercentComplete: 0.5})
	})
	c := newTestClient(t, handler)

	pc := 0.5
	got, err := c.UpdateAllocation(context.Background(), "a1", model.AllocationPatch{PercentComplete: &pc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.PercentComplete != 0.5 {
		t.Fatalf("unexpected allocation %+v", got)
	}
}

func TestDeleteAllocation(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/allocations/a2" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		called = true
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, handler)
	if err := c.DeleteAllocation(context.Background(), "a2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !called {
		t.Fatal("server not called")
	}
}

func TestConflictsAndCriticalPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/conflicts":
			_ = json.NewEncoder(w).Encode([]model.Conflict{
				{ConflictType: "overlap", ScheduleIDs: []string{"a1", "a2"}, Message: "crews overlap"},
			})
		case "/critical-path":
			_ = json.NewEncoder(w).Encode([]string{"a1"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})
	c := newTestClient(t, handler)

	conflicts, err := c.ListConflicts(context.Background(), model.Scope{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("conflicts: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ConflictType != "overlap" {
		t.Fatalf("unexpected conflicts %+v", conflicts)
	}
	ids, err := c.CriticalPath(context.Background(), model.Scope{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("critical path: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a1" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestAPIErrorSurfacesStatusAndBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "allocation is locked", http.StatusConflict)
	})
	c := newTestClient(t, handler)

	err := c.DeleteAllocation(context.Background(), "a1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Body != "allocation is locked" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for missing base_url")
	}
	if _, err := NewClient(Config{BaseURL: "http://x", Timeout: "nope"}); err == nil {
		t.Fatal("expected error for bad timeout")
	}
}
