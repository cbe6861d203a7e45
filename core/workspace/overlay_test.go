package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/pcouderc/worksched/core/model"
)

func patchStart(d int) model.AllocationPatch {
	s := date(2025, 1, d)
	return model.AllocationPatch{PlannedStart: &s}
}

func TestOverlayStageUpdateMerges(t *testing.T) {
	o := NewOverlay()
	o.StageUpdate("a1", patchStart(3))
	notes := "note"
	o.StageUpdate("a1", model.AllocationPatch{Notes: &notes})
	u, c, d := o.Counts()
	if u != 1 || c != 0 || d != 0 {
		t.Fatalf("counts %d/%d/%d", u, c, d)
	}
	p, ok := o.Update("a1")
	if !ok || p.PlannedStart == nil || p.Notes == nil {
		t.Fatalf("merged patch incomplete: %+v", p)
	}
}

func TestOverlayDeleteExcludesUpdate(t *testing.T) {
	o := NewOverlay()
	o.StageUpdate("a1", patchStart(3))
	o.StageDelete("a1")
	if _, ok := o.Update("a1"); ok {
		t.Fatal("id staged in both update and delete sets")
	}
	if !o.Deleted("a1") {
		t.Fatal("delete not staged")
	}
	// And the delete wins over later updates.
	o.StageUpdate("a1", patchStart(4))
	if _, ok := o.Update("a1"); ok {
		t.Fatal("update staged for a deleted id")
	}
}

func TestOverlayDraftLifecycle(t *testing.T) {
	o := NewOverlay()
	id := o.StageCreate(model.AllocationCreate{AtomName: "new", PlannedStart: date(2025, 1, 1), PlannedFinish: date(2025, 1, 2)})
	if !IsDraft(id) {
		t.Fatalf("draft id %q lacks draft prefix", id)
	}
	// Editing a draft folds into its create payload.
	o.StageUpdate(id, patchStart(5))
	creates := o.Creates()
	if len(creates) != 1 || !creates[0].Payload.PlannedStart.Equal(date(2025, 1, 5)) {
		t.Fatalf("draft payload not patched: %+v", creates)
	}
	// Deleting a draft drops the staged create entirely.
	o.StageDelete(id)
	if u, c, d := o.Counts(); u != 0 || c != 0 || d != 0 {
		t.Fatalf("counts after draft delete %d/%d/%d", u, c, d)
	}
}

func TestOverlayMergeInto(t *testing.T) {
	o := NewOverlay()
	baseline := []model.Allocation{baseAlloc("a1"), baseAlloc("a2")}
	o.StageUpdate("a1", patchStart(9))
	o.StageDelete("a2")
	draft := o.StageCreate(model.AllocationCreate{AtomName: "extra", PlannedStart: date(2025, 2, 1), PlannedFinish: date(2025, 2, 3)})

	view := o.MergeInto(baseline)
	if len(view) != 2 {
		t.Fatalf("view size %d, want 2", len(view))
	}
	if !view[0].PlannedStart.Equal(date(2025, 1, 9)) {
		t.Fatal("staged update not visible in view")
	}
	if view[1].ID != draft {
		t.Fatalf("draft not materialized: %+v", view[1])
	}
	// Baseline untouched.
	if !baseline[0].PlannedStart.Equal(date(2025, 1, 1)) {
		t.Fatal("MergeInto mutated the baseline")
	}
}

func TestOverlayApplyOrderAndDrain(t *testing.T) {
	be := newFakeBackend(baseAlloc("a1"), baseAlloc("a2"))
	o := NewOverlay()
	o.StageDelete("a2")
	o.StageUpdate("a1", patchStart(7))
	o.StageCreate(model.AllocationCreate{AtomName: "n", PlannedStart: date(2025, 3, 1), PlannedFinish: date(2025, 3, 2)})

	if err := o.Apply(context.Background(), be, model.Scope{ProjectID: "p"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !o.Empty() {
		t.Fatal("overlay not drained after successful apply")
	}
	// Fixed replay order: updates, then creates, then deletes.
	want := []string{"update:a1", "create", "delete:a2"}
	if len(be.calls) != len(want) {
		t.Fatalf("calls %v", be.calls)
	}
	for i, c := range want {
		if be.calls[i] != c {
			t.Fatalf("call %d = %s, want %s (all: %v)", i, be.calls[i], c, be.calls)
		}
	}
}

func TestOverlayApplyPartialFailure(t *testing.T) {
	// Scenario: three staged updates, the second backend call fails.
	be := newFakeBackend(baseAlloc("a1"), baseAlloc("a2"), baseAlloc("a3"))
	be.failOn["update:a2"] = true
	o := NewOverlay()
	o.StageUpdate("a1", patchStart(2))
	o.StageUpdate("a2", patchStart(3))
	o.StageUpdate("a3", patchStart(4))

	err := o.Apply(context.Background(), be, model.Scope{ProjectID: "p"})
	if err == nil {
		t.Fatal("expected apply error")
	}
	var be2 *BackendError
	if !errors.As(err, &be2) {
		t.Fatalf("error type %T", err)
	}
	// Update 1 committed server-side...
	if a := be.allocs["a1"]; !a.PlannedStart.Equal(date(2025, 1, 2)) {
		t.Fatal("first update not committed")
	}
	// ...no further calls were issued...
	if len(be.calls) != 2 {
		t.Fatalf("calls after failure: %v", be.calls)
	}
	// ...and updates 2 and 3 remain staged.
	if _, ok := o.Update("a1"); ok {
		t.Fatal("applied update still staged")
	}
	if _, ok := o.Update("a2"); !ok {
		t.Fatal("failed update dropped from overlay")
	}
	if _, ok := o.Update("a3"); !ok {
		t.Fatal("unattempted update dropped from overlay")
	}
}

func TestOverlayClear(t *testing.T) {
	o := NewOverlay()
	o.StageUpdate("a1", patchStart(2))
	o.StageCreate(model.AllocationCreate{PlannedStart: date(2025, 1, 1), PlannedFinish: date(2025, 1, 2)})
	o.StageDelete("a2")
	o.Clear()
	if !o.Empty() {
		t.Fatal("overlay not empty after clear")
	}
}
