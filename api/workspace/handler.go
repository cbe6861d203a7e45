// Package workspace exposes the scheduling workspace over HTTP for the
// program dashboard.
package workspace

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pcouderc/worksched/core/workspace"
	"github.com/pcouderc/worksched/infra/logger"
)

// MutationRequest is the body of POST /api/workspace/mutations.
type MutationRequest struct {
	Op        string  `json:"op"`
	ID        string  `json:"id"`
	DeltaDays int     `json:"deltaDays"`
	Percent   float64 `json:"percent"`
}

// StatusResponse describes the workspace editing state.
type StatusResponse struct {
	Scope          string `json:"scope"`
	Mode           string `json:"mode"`
	PendingUpdates int    `json:"pendingUpdates"`
	PendingCreates int    `json:"pendingCreates"`
	PendingDeletes int    `json:"pendingDeletes"`
	CanUndo        bool   `json:"canUndo"`
	CanRedo        bool   `json:"canRedo"`
}

// NewHandler mounts the workspace endpoints under /api/workspace/.
func NewHandler(ws *workspace.Workspace) http.Handler {
	h := &handler{ws: ws, log: logger.New("api")}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/workspace/tasks", h.get(h.tasks))
	mux.HandleFunc("/api/workspace/status", h.get(h.status))
	mux.HandleFunc("/api/workspace/capacity", h.get(h.capacity))
	mux.HandleFunc("/api/workspace/conflicts", h.get(h.conflicts))
	mux.HandleFunc("/api/workspace/refresh", h.post(h.refresh))
	mux.HandleFunc("/api/workspace/whatif", h.post(h.whatIf))
	mux.HandleFunc("/api/workspace/apply", h.post(h.apply))
	mux.HandleFunc("/api/workspace/discard", h.post(h.discard))
	mux.HandleFunc("/api/workspace/undo", h.post(h.undo))
	mux.HandleFunc("/api/workspace/redo", h.post(h.redo))
	mux.HandleFunc("/api/workspace/mutations", h.post(h.mutate))
	return mux
}

type handler struct {
	ws  *workspace.Workspace
	log logger.Logger
}

func (h *handler) get(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

func (h *handler) post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("encode response: %v", err)
	}
}

// writeError maps engine errors onto HTTP statuses: invalid input is 422,
// calling apply/discard outside what-if is 409, backend failures are 502.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	var vErr *workspace.ValidationError
	var sErr *workspace.StateError
	var bErr *workspace.BackendError
	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &sErr):
		http.Error(w, sErr.Error(), http.StatusConflict)
	case errors.As(err, &bErr):
		http.Error(w, bErr.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *handler) tasks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.ws.Tasks())
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	u, c, d := h.ws.PendingCounts()
	h.writeJSON(w, StatusResponse{
		Scope:          h.ws.Scope().String(),
		Mode:           h.ws.Mode().String(),
		PendingUpdates: u,
		PendingCreates: c,
		PendingDeletes: d,
		CanUndo:        h.ws.CanUndo(),
		CanRedo:        h.ws.CanRedo(),
	})
}

func (h *handler) capacity(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.ws.CapacityReport())
}

func (h *handler) conflicts(w http.ResponseWriter, r *http.Request) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid page", http.StatusBadRequest)
			return
		}
		page = n
	}
	h.writeJSON(w, h.ws.Conflicts(r.URL.Query().Get("q"), page))
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Refresh(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.ws.RefreshConflicts(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]int{"tasks": len(h.ws.Tasks())})
}

func (h *handler) whatIf(w http.ResponseWriter, r *http.Request) {
	mode := h.ws.ToggleWhatIf()
	h.writeJSON(w, map[string]string{"mode": mode.String()})
}

func (h *handler) apply(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Apply(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]string{"mode": h.ws.Mode().String()})
}

func (h *handler) discard(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Discard(); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]string{"mode": h.ws.Mode().String()})
}

func (h *handler) undo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]bool{"ok": h.ws.Undo()})
}

func (h *handler) redo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]bool{"ok": h.ws.Redo()})
}

func (h *handler) mutate(w http.ResponseWriter, r *http.Request) {
	var req MutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	switch req.Op {
	case "shift":
		if err := h.ws.Shift(ctx, req.ID, req.DeltaDays); err != nil {
			h.writeError(w, err)
			return
		}
	case "progress":
		if err := h.ws.SetProgress(ctx, req.ID, req.Percent); err != nil {
			h.writeError(w, err)
			return
		}
	case "delete":
		if err := h.ws.Delete(ctx, req.ID); err != nil {
			h.writeError(w, err)
			return
		}
	case "quickadd":
		id, err := h.ws.QuickAdd(ctx, req.ID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, map[string]string{"id": id})
		return
	case "split":
		if err := h.ws.Split(ctx, req.ID); err != nil {
			h.writeError(w, err)
			return
		}
	default:
		http.Error(w, "unknown op "+strconv.Quote(req.Op), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, map[string]string{"status": "ok"})
}
