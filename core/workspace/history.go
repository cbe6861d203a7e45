package workspace

import "github.com/pcouderc/worksched/core/model"

// DefaultHistoryDepth bounds the undo stack.
const DefaultHistoryDepth = 30

// History keeps bounded deep-copy snapshots of the task list for undo and
// redo. Snapshots cover the visual task list only: undoing past a commit
// boundary reverts the view, never the backend.
type History struct {
	depth int
	undo  [][]model.Task
	redo  [][]model.Task
}

// NewHistory returns a history bounded to depth entries; depth <= 0 falls
// back to DefaultHistoryDepth.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth}
}

// Push snapshots the current task list before a mutation. The oldest entry
// is evicted once the stack is full, and any redo entries become invalid.
func (h *History) Push(tasks []model.Task) {
	if len(h.undo) >= h.depth {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:len(h.undo)-1]
	}
	h.undo = append(h.undo, model.CloneTasks(tasks))
	h.redo = nil
}

// Undo pops the latest snapshot, pushing current onto the redo stack.
// Returns false with current unchanged when there is nothing to undo.
func (h *History) Undo(current []model.Task) ([]model.Task, bool) {
	if len(h.undo) == 0 {
		return current, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, model.CloneTasks(current))
	return top, true
}

// Redo is the inverse of Undo; a no-op when the redo stack is empty.
func (h *History) Redo(current []model.Task) ([]model.Task, bool) {
	if len(h.redo) == 0 {
		return current, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, model.CloneTasks(current))
	return top, true
}

// CanUndo reports whether an undo snapshot exists.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Len returns the undo stack depth.
func (h *History) Len() int { return len(h.undo) }

// Reset drops both stacks. Called when the baseline is replaced wholesale.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
