package workspace

import (
	"context"
	"time"

	"github.com/pcouderc/worksched/core/events"
	"github.com/pcouderc/worksched/core/metrics"
	"github.com/pcouderc/worksched/core/model"
)

// Every mutation follows the same shape: validate against the current
// view, snapshot the task list onto the history stack, then route the
// write through the overlay in what-if mode or straight to the backend in
// direct mode. A failed direct-mode call leaves the local view unmutated;
// the history snapshot it pushed is then identical to the current state
// and undoing it is harmless.

// Shift translates an allocation's planned window by deltaDays, keeping
// its duration.
func (w *Workspace) Shift(ctx context.Context, id string, deltaDays int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.findLocked(id)
	if !ok {
		return validationErr("shift", "unknown task %s", id)
	}
	if deltaDays == 0 {
		return nil
	}
	start := model.AddDays(a.PlannedStart, deltaDays)
	finish := model.AddDays(a.PlannedFinish, deltaDays)
	patch := model.AllocationPatch{PlannedStart: &start, PlannedFinish: &finish}

	w.history.Push(w.tasks)
	return w.commitLocked(ctx, "shift", id, patch)
}

// SetProgress stores a completion percentage, clamped to [0,100] and
// written back in the allocation's native convention (fraction stays
// fraction).
func (w *Workspace) SetProgress(ctx context.Context, id string, percent float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.findLocked(id)
	if !ok {
		return validationErr("progress", "unknown task %s", id)
	}
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	native := a
	native.SetProgressPercent(percent)
	value := native.PercentComplete
	patch := model.AllocationPatch{PercentComplete: &value}

	w.history.Push(w.tasks)
	return w.commitLocked(ctx, "progress", id, patch)
}

// Delete removes the task from the view. In what-if mode the delete is
// staged (dropping any staged update or create for the same id); in
// direct mode the backend is called first, so a failure leaves the local
// list intact.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.findLocked(id); !ok {
		return validationErr("delete", "unknown task %s", id)
	}
	w.history.Push(w.tasks)

	if w.mode == ModeWhatIf {
		w.overlay.StageDelete(id)
		w.reprojectLocked()
		w.recordMutation("delete", id)
		return nil
	}
	if err := w.client.DeleteAllocation(ctx, id); err != nil {
		return &BackendError{Op: "delete " + id, Err: err}
	}
	w.store.Remove(id)
	w.reprojectLocked()
	w.recordMutation("delete", id)
	return nil
}

// QuickAdd duplicates a source allocation into the contiguous window
// immediately after it: same duration, status, criticality and notes,
// starting the day after the source finishes. It returns the id of the
// new record — a synthetic draft id in what-if mode, the server id in
// direct mode.
func (w *Workspace) QuickAdd(ctx context.Context, sourceID string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	src, ok := w.findLocked(sourceID)
	if !ok {
		return "", validationErr("quickadd", "unknown task %s", sourceID)
	}
	duration := src.PlannedDays()
	start := model.AddDays(src.PlannedFinish, 1)
	payload := model.AllocationCreate{
		AtomID:        src.AtomID,
		AtomName:      src.AtomName,
		ProcessID:     src.ProcessID,
		ProcessName:   src.ProcessName,
		Milestone:     src.Milestone,
		Status:        src.Status,
		Criticality:   src.Criticality,
		PlannedStart:  start,
		PlannedFinish: model.AddDays(start, duration-1),
		Notes:         src.Notes,
	}
	w.history.Push(w.tasks)

	if w.mode == ModeWhatIf {
		draftID := w.overlay.StageCreate(payload)
		w.reprojectLocked()
		w.recordMutation("quickadd", draftID)
		return draftID, nil
	}
	created, err := w.client.CreateAllocation(ctx, w.scope, payload)
	if err != nil {
		return "", &BackendError{Op: "quickadd from " + sourceID, Err: err}
	}
	w.store.Upsert(created)
	w.reprojectLocked()
	w.recordMutation("quickadd", created.ID)
	return created.ID, nil
}

// Split cuts an allocation spanning at least two days into two contiguous
// halves at midpoint = start + floor(totalDays/2): the original keeps
// [start, midpoint-1], a new record takes [midpoint, originalFinish].
// There is never a gap or an overlap between the halves.
func (w *Workspace) Split(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	src, ok := w.findLocked(id)
	if !ok {
		return validationErr("split", "unknown task %s", id)
	}
	totalDays := src.PlannedDays()
	if totalDays < 2 {
		return validationErr("split", "task %s spans %d day(s); need at least 2", id, totalDays)
	}
	midpoint := model.AddDays(src.PlannedStart, totalDays/2)
	truncatedFinish := model.AddDays(midpoint, -1)
	patch := model.AllocationPatch{PlannedFinish: &truncatedFinish}
	payload := model.AllocationCreate{
		AtomID:        src.AtomID,
		AtomName:      src.AtomName,
		ProcessID:     src.ProcessID,
		ProcessName:   src.ProcessName,
		Milestone:     src.Milestone,
		Status:        src.Status,
		Criticality:   src.Criticality,
		PlannedStart:  midpoint,
		PlannedFinish: model.Day(src.PlannedFinish),
		Notes:         src.Notes,
	}
	w.history.Push(w.tasks)

	if w.mode == ModeWhatIf {
		w.overlay.StageUpdate(id, patch)
		w.overlay.StageCreate(payload)
		w.reprojectLocked()
		w.recordMutation("split", id)
		return nil
	}
	updated, err := w.client.UpdateAllocation(ctx, id, patch)
	if err != nil {
		return &BackendError{Op: "split update " + id, Err: err}
	}
	w.store.Upsert(updated)
	created, err := w.client.CreateAllocation(ctx, w.scope, payload)
	if err != nil {
		// The truncation committed but the second half did not; the view
		// shows the truncated original. Surfaced, never retried here.
		w.reprojectLocked()
		return &BackendError{Op: "split create for " + id, Err: err}
	}
	w.store.Upsert(created)
	w.reprojectLocked()
	w.recordMutation("split", id)
	return nil
}

// commitLocked routes an update patch through the overlay or the backend.
// Callers hold w.mu and have already pushed history.
func (w *Workspace) commitLocked(ctx context.Context, op, id string, patch model.AllocationPatch) error {
	if w.mode == ModeWhatIf {
		w.overlay.StageUpdate(id, patch)
		w.reprojectLocked()
		w.recordMutation(op, id)
		return nil
	}
	updated, err := w.client.UpdateAllocation(ctx, id, patch)
	if err != nil {
		return &BackendError{Op: op + " " + id, Err: err}
	}
	w.store.Upsert(updated)
	w.reprojectLocked()
	w.recordMutation(op, id)
	return nil
}

// findLocked resolves an id against the current view, so staged drafts
// and staged updates are visible to follow-up mutations.
func (w *Workspace) findLocked(id string) (model.Allocation, bool) {
	for _, a := range w.viewLocked() {
		if a.ID == id {
			return a, true
		}
	}
	return model.Allocation{}, false
}

func (w *Workspace) recordMutation(op, id string) {
	rec := metrics.MutationRecord{
		Scope: w.scope.String(),
		Op:    op,
		Mode:  w.mode.String(),
		Time:  time.Now(),
	}
	if err := w.sink.RecordMutation(rec); err != nil {
		w.log.Warnf("metrics sink: %v", err)
	}
	w.publish(events.MutationEvent{
		Scope:  rec.Scope,
		Op:     op,
		TaskID: id,
		Mode:   rec.Mode,
		Time:   rec.Time,
	})
}
