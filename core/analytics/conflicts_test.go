package analytics

import (
	"fmt"
	"testing"

	"github.com/pcouderc/worksched/core/model"
)

func conflictFixtures() ([]model.Conflict, []model.Allocation) {
	conflicts := []model.Conflict{
		{ConflictType: "overlap", ScheduleIDs: []string{"a1", "a2"}, Message: "windows collide"},
		{ConflictType: "dependency", ScheduleIDs: []string{"a3"}, Message: "predecessor unfinished"},
		{ConflictType: "resource", ScheduleIDs: []string{"a2"}, Message: "crane double-booked"},
	}
	allocs := []model.Allocation{
		{ID: "a1", AtomID: "crew-7", AtomName: "excavation", Notes: "north bank"},
		{ID: "a2", AtomID: "crane-1", AtomName: "girder lift"},
		{ID: "a3", AtomID: "crew-2", AtomName: "formwork", Notes: "awaiting rebar"},
	}
	return conflicts, allocs
}

func TestFilterByType(t *testing.T) {
	conflicts, allocs := conflictFixtures()
	got := FilterConflicts(conflicts, allocs, "overlap")
	if len(got) != 1 || got[0].ConflictType != "overlap" {
		t.Fatalf("filter by type: %+v", got)
	}
}

func TestFilterByMessageCaseInsensitive(t *testing.T) {
	conflicts, allocs := conflictFixtures()
	got := FilterConflicts(conflicts, allocs, "CRANE")
	// Matches the resource conflict message and nothing else by message,
	// but "crane-1" is also the atom id referenced by the overlap conflict.
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestFilterByReferencedScheduleFields(t *testing.T) {
	conflicts, allocs := conflictFixtures()
	got := FilterConflicts(conflicts, allocs, "rebar")
	if len(got) != 1 || got[0].ConflictType != "dependency" {
		t.Fatalf("filter by notes: %+v", got)
	}
	got = FilterConflicts(conflicts, allocs, "excavation")
	if len(got) != 1 || got[0].ConflictType != "overlap" {
		t.Fatalf("filter by atom name: %+v", got)
	}
}

func TestFilterEmptyQueryKeepsAll(t *testing.T) {
	conflicts, allocs := conflictFixtures()
	if got := FilterConflicts(conflicts, allocs, "  "); len(got) != len(conflicts) {
		t.Fatalf("empty query dropped conflicts: %d", len(got))
	}
}

func TestPagination(t *testing.T) {
	var items []model.Conflict
	for i := 0; i < 23; i++ {
		items = append(items, model.Conflict{Message: fmt.Sprintf("c%d", i)})
	}
	page := PageConflicts(items, 0, 10)
	if len(page.Items) != 10 || page.TotalPages != 3 || page.TotalItems != 23 {
		t.Fatalf("page0 %+v", page)
	}
	page = PageConflicts(items, 2, 10)
	if len(page.Items) != 3 || page.Items[0].Message != "c20" {
		t.Fatalf("page2 %+v", page)
	}
	page = PageConflicts(items, 9, 10)
	if len(page.Items) != 0 || page.TotalPages != 3 {
		t.Fatalf("out-of-range page %+v", page)
	}
	// Negative pages clamp to the first page.
	page = PageConflicts(items, -1, 10)
	if page.Page != 0 || len(page.Items) != 10 {
		t.Fatalf("negative page %+v", page)
	}
}
