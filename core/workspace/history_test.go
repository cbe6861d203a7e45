package workspace

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pcouderc/worksched/core/model"
)

func taskList(ids ...string) []model.Task {
	out := make([]model.Task, len(ids))
	for i, id := range ids {
		out[i] = model.Task{ID: id, Start: date(2025, 1, 1), End: date(2025, 1, 2), DisplayOrder: i}
	}
	return out
}

func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	h := NewHistory(DefaultHistoryDepth)
	states := [][]model.Task{taskList("a"), taskList("a", "b"), taskList("a", "b", "c")}

	// Mutate twice, snapshotting before each change.
	current := states[0]
	for _, next := range states[1:] {
		h.Push(current)
		current = next
	}

	// N undos walk back to the original state...
	for i := len(states) - 2; i >= 0; i-- {
		restored, ok := h.Undo(current)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		current = restored
		if !reflect.DeepEqual(current, states[i]) {
			t.Fatalf("undo mismatch at %d: %+v", i, current)
		}
	}
	if _, ok := h.Undo(current); ok {
		t.Fatal("undo past the bottom must be a no-op")
	}

	// ...and N redos reproduce the exact forward states.
	for i := 1; i < len(states); i++ {
		restored, ok := h.Redo(current)
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
		current = restored
		if !reflect.DeepEqual(current, states[i]) {
			t.Fatalf("redo mismatch at %d: %+v", i, current)
		}
	}
	if _, ok := h.Redo(current); ok {
		t.Fatal("redo past the top must be a no-op")
	}
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(DefaultHistoryDepth)
	for i := 0; i < 100; i++ {
		h.Push(taskList(fmt.Sprintf("t%d", i)))
	}
	if h.Len() != DefaultHistoryDepth {
		t.Fatalf("stack depth %d, want %d", h.Len(), DefaultHistoryDepth)
	}
	// Oldest entries are evicted first: the bottom snapshot is t70.
	current := taskList("current")
	var last []model.Task
	for {
		restored, ok := h.Undo(current)
		if !ok {
			break
		}
		last = restored
		current = restored
	}
	if last[0].ID != "t70" {
		t.Fatalf("bottom snapshot %s, want t70", last[0].ID)
	}
}

func TestHistoryPushClearsRedo(t *testing.T) {
	h := NewHistory(5)
	h.Push(taskList("a"))
	current := taskList("a", "b")
	current, _ = h.Undo(current)
	if !h.CanRedo() {
		t.Fatal("redo should be available after undo")
	}
	h.Push(current)
	if h.CanRedo() {
		t.Fatal("a new mutation invalidates redo")
	}
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	h := NewHistory(5)
	tasks := taskList("a")
	h.Push(tasks)
	tasks[0].ID = "mutated"
	restored, _ := h.Undo(taskList("other"))
	if restored[0].ID != "a" {
		t.Fatal("snapshot shares memory with the live list")
	}
}
