package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/pcouderc/worksched/core/analytics"
	"github.com/pcouderc/worksched/core/backend"
	"github.com/pcouderc/worksched/core/events"
	"github.com/pcouderc/worksched/core/logger"
	"github.com/pcouderc/worksched/core/metrics"
	"github.com/pcouderc/worksched/core/model"
	"github.com/pcouderc/worksched/internal/eventbus"
)

// Mode is the workspace edit mode.
type Mode int

const (
	// ModeDirect sends every mutation straight to the backend.
	ModeDirect Mode = iota
	// ModeWhatIf stages mutations in the overlay until Apply or Discard.
	ModeWhatIf
)

func (m Mode) String() string {
	if m == ModeWhatIf {
		return "whatif"
	}
	return "direct"
}

// Workspace maintains a local editable projection of one scope's schedule:
// the server-authoritative store, the speculative overlay, bounded
// undo/redo history and the derived task list. One workspace instance owns
// its store, overlay and history exclusively.
type Workspace struct {
	scope  model.Scope
	client backend.Client
	cfg    Config

	mu          sync.Mutex
	store       *Store
	overlay     *Overlay
	history     *History
	mode        Mode
	tasks       []model.Task
	criticalIDs []string
	conflicts   []model.Conflict

	// cancels the in-flight baseline fetch when superseded.
	refreshCancel context.CancelFunc

	log  logger.Logger
	sink metrics.Sink
	bus  eventbus.EventBus
}

// New builds a workspace for the given scope. log, sink and bus may be nil.
func New(scope model.Scope, client backend.Client, cfg Config, log logger.Logger, sink metrics.Sink, bus eventbus.EventBus) (*Workspace, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, validationErr("new", "backend client is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Workspace{
		scope:   scope,
		client:  client,
		cfg:     cfg,
		store:   NewStore(),
		overlay: NewOverlay(),
		history: NewHistory(cfg.HistoryDepth),
		log:     log,
		sink:    sink,
		bus:     bus,
	}, nil
}

// Scope returns the scope this workspace was built for.
func (w *Workspace) Scope() model.Scope { return w.scope }

// Mode returns the current edit mode.
func (w *Workspace) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// Tasks returns a copy of the current task list.
func (w *Workspace) Tasks() []model.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	return model.CloneTasks(w.tasks)
}

// PendingCounts returns the staged update/create/delete counts for the
// "N unsaved changes" indicator.
func (w *Workspace) PendingCounts() (updates, creates, deletes int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.overlay.Counts()
}

// CanUndo reports whether an undo snapshot exists.
func (w *Workspace) CanUndo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.CanUndo()
}

// CanRedo reports whether a redo snapshot exists.
func (w *Workspace) CanRedo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.CanRedo()
}

// Refresh reloads the baseline and critical path from the backend. While
// what-if mode is active the refresh is suppressed so a server response
// can never interleave with staged edits. A newer Refresh cancels the one
// in flight; a cancelled fetch is discarded without touching the store.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	if w.mode == ModeWhatIf {
		w.mu.Unlock()
		w.log.Warnf("refresh suppressed: what-if session active on %s", w.scope)
		return nil
	}
	if w.refreshCancel != nil {
		w.refreshCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	w.refreshCancel = cancel
	w.mu.Unlock()
	defer cancel()

	allocs, err := w.client.ListAllocations(ctx, w.scope)
	if err != nil {
		return &BackendError{Op: "refresh", Err: err}
	}
	critical, err := w.client.CriticalPath(ctx, w.scope)
	if err != nil {
		return &BackendError{Op: "refresh critical path", Err: err}
	}
	if ctx.Err() != nil {
		// Superseded or torn down: the response is stale, drop it.
		return ctx.Err()
	}

	w.mu.Lock()
	// Re-check the mode: a what-if session may have started while the
	// fetch was in flight, and the baseline never rebinds under one.
	if w.mode == ModeWhatIf {
		w.mu.Unlock()
		w.log.Warnf("refresh dropped: what-if session started on %s during fetch", w.scope)
		return nil
	}
	w.store.Load(allocs)
	w.criticalIDs = append([]string(nil), critical...)
	w.history.Reset()
	w.reprojectLocked()
	count := len(allocs)
	w.mu.Unlock()

	w.log.Infof("baseline refreshed: %d allocations on %s", count, w.scope)
	w.publish(events.RefreshEvent{Scope: w.scope.String(), Count: count, Time: time.Now()})
	return nil
}

// CancelRefresh aborts any in-flight baseline fetch. Called when the scope
// moves on or the workspace is torn down.
func (w *Workspace) CancelRefresh() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.refreshCancel != nil {
		w.refreshCancel()
		w.refreshCancel = nil
	}
}

// ToggleWhatIf flips the edit mode. Entering what-if starts an empty
// overlay over the current baseline; leaving it through the toggle
// discards any staged edits, exactly like Discard.
func (w *Workspace) ToggleWhatIf() Mode {
	w.mu.Lock()
	if w.mode == ModeDirect {
		// Abort any baseline fetch in flight; its response must not land
		// under the staged edits.
		if w.refreshCancel != nil {
			w.refreshCancel()
			w.refreshCancel = nil
		}
		w.mode = ModeWhatIf
		w.overlay.Clear()
	} else {
		w.discardLocked()
	}
	mode := w.mode
	w.mu.Unlock()

	w.publish(events.ModeEvent{Scope: w.scope.String(), Mode: mode.String(), Time: time.Now()})
	return mode
}

// Apply replays the overlay against the backend and, on success, leaves
// what-if mode and resyncs the baseline. On failure the workspace stays in
// what-if mode with the unapplied remainder still staged; see
// Overlay.Apply for the partial-apply contract. Calling Apply in direct
// mode is a caller bug and fails loudly.
func (w *Workspace) Apply(ctx context.Context) error {
	w.mu.Lock()
	if w.mode != ModeWhatIf {
		w.mu.Unlock()
		return &StateError{Op: "apply", Mode: w.mode}
	}
	start := time.Now()
	u, c, d := w.overlay.Counts()
	err := w.overlay.Apply(ctx, w.client, w.scope)
	if err != nil {
		ru, rc, rd := w.overlay.Counts()
		w.mu.Unlock()
		w.recordApply(ru, rc, rd, err, time.Since(start))
		w.log.Errorf("apply stopped on %s: %v (%d updates, %d creates, %d deletes still staged)", w.scope, err, ru, rc, rd)
		return err
	}
	w.mode = ModeDirect
	w.overlay.Clear()
	w.mu.Unlock()

	w.recordApply(u, c, d, nil, time.Since(start))
	w.publish(events.ModeEvent{Scope: w.scope.String(), Mode: ModeDirect.String(), Time: time.Now()})
	w.log.Infof("overlay applied on %s in %s", w.scope, time.Since(start))

	// Resync the baseline now that the backend owns the changes.
	if err := w.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

// Discard drops every staged edit and restores the baseline projection
// with no backend calls. Invalid outside what-if mode.
func (w *Workspace) Discard() error {
	w.mu.Lock()
	if w.mode != ModeWhatIf {
		w.mu.Unlock()
		return &StateError{Op: "discard", Mode: w.mode}
	}
	w.discardLocked()
	w.mu.Unlock()

	w.publish(events.ModeEvent{Scope: w.scope.String(), Mode: ModeDirect.String(), Time: time.Now()})
	return nil
}

// Undo restores the previous task list snapshot. A no-op when the undo
// stack is empty. Undo affects the visual task list only: undoing past an
// Apply reverts the view, not the backend, until the next refresh. For
// the same reason an undo in what-if mode does not unstage overlay
// entries, so the next mutation's re-projection brings the undone staged
// edit back into the view.
func (w *Workspace) Undo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	restored, ok := w.history.Undo(w.tasks)
	if ok {
		w.tasks = restored
	}
	return ok
}

// Redo restores the snapshot taken by the last Undo. A no-op when the redo
// stack is empty.
func (w *Workspace) Redo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	restored, ok := w.history.Redo(w.tasks)
	if ok {
		w.tasks = restored
	}
	return ok
}

// CapacityReport aggregates per-day load over the current view, committed
// or speculative.
func (w *Workspace) CapacityReport() analytics.CapacityReport {
	w.mu.Lock()
	view := w.viewLocked()
	hours := w.cfg.HoursPerDay
	w.mu.Unlock()
	return analytics.BuildCapacityReport(view, hours)
}

// RefreshConflicts reloads backend-detected conflicts for the scope.
func (w *Workspace) RefreshConflicts(ctx context.Context) error {
	conflicts, err := w.client.ListConflicts(ctx, w.scope)
	if err != nil {
		return &BackendError{Op: "refresh conflicts", Err: err}
	}
	w.mu.Lock()
	w.conflicts = conflicts
	w.mu.Unlock()
	return nil
}

// Conflicts filters the cached conflicts by free text and returns the
// requested page.
func (w *Workspace) Conflicts(query string, page int) analytics.ConflictPage {
	w.mu.Lock()
	conflicts := w.conflicts
	view := w.viewLocked()
	size := w.cfg.ConflictPageSize
	w.mu.Unlock()
	filtered := analytics.FilterConflicts(conflicts, view, query)
	return analytics.PageConflicts(filtered, page, size)
}

// viewLocked returns the allocation set behind the current projection:
// the baseline merged with the overlay in what-if mode, the pure baseline
// otherwise. Callers hold w.mu.
func (w *Workspace) viewLocked() []model.Allocation {
	if w.mode == ModeWhatIf {
		return w.overlay.MergeInto(w.store.Baseline())
	}
	return w.store.Baseline()
}

// reprojectLocked recomputes the task list from the current view.
func (w *Workspace) reprojectLocked() {
	w.tasks = Project(w.viewLocked(), w.criticalIDs)
}

func (w *Workspace) discardLocked() {
	w.overlay.Clear()
	w.mode = ModeDirect
	w.reprojectLocked()
}

func (w *Workspace) publish(e eventbus.Event) {
	if w.bus != nil {
		w.bus.Publish(e)
	}
}

// recordApply reports an apply outcome. On success the counts are what
// was committed; on failure, what remains staged.
func (w *Workspace) recordApply(u, c, d int, applyErr error, dur time.Duration) {
	rec := metrics.ApplyRecord{
		Scope:    w.scope.String(),
		Updates:  u,
		Creates:  c,
		Deletes:  d,
		Failed:   applyErr != nil,
		Duration: dur,
		Time:     time.Now(),
	}
	if err := w.sink.RecordApply(rec); err != nil {
		w.log.Warnf("metrics sink: %v", err)
	}
	ev := events.ApplyEvent{
		Scope:   rec.Scope,
		Updates: u,
		Creates: c,
		Deletes: d,
		Failed:  rec.Failed,
		Time:    rec.Time,
	}
	if applyErr != nil {
		ev.Error = applyErr.Error()
	}
	w.publish(ev)
}

// nopLogger keeps core free of the infra logger package.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
