package workspace

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/pcouderc/worksched/core/backend"
	"github.com/pcouderc/worksched/core/model"
)

// draftPrefix marks synthetic ids handed out for staged creates. Server
// ids never carry it, so drafts cannot collide with committed records.
const draftPrefix = "draft-"

// PendingCreate is a staged create with its synthetic id.
type PendingCreate struct {
	DraftID string
	Payload model.AllocationCreate
}

// Overlay accumulates uncommitted create/update/delete operations during a
// what-if session. It never contacts the backend until Apply. The staging
// order of updates and deletes is preserved so a replay is deterministic.
//
// Invariant: an id appears in at most one of the update and delete sets.
type Overlay struct {
	updates     map[string]model.AllocationPatch
	updateOrder []string
	creates     []PendingCreate
	deletes     map[string]struct{}
	deleteOrder []string
}

// NewOverlay returns an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		updates: make(map[string]model.AllocationPatch),
		deletes: make(map[string]struct{}),
	}
}

// IsDraft reports whether id was issued by StageCreate.
func IsDraft(id string) bool { return strings.HasPrefix(id, draftPrefix) }

// StageUpdate records a partial update for id, merging with any patch
// already staged. Updates to a staged draft fold into its create payload
// instead, so the draft reaches the backend in one call.
func (o *Overlay) StageUpdate(id string, patch model.AllocationPatch) {
	if patch.IsZero() {
		return
	}
	if IsDraft(id) {
		for i := range o.creates {
			if o.creates[i].DraftID == id {
				patch.ApplyToCreate(&o.creates[i].Payload)
				return
			}
		}
		return
	}
	if _, deleted := o.deletes[id]; deleted {
		// A deleted id cannot also be updated; the delete wins.
		return
	}
	existing, ok := o.updates[id]
	if !ok {
		o.updateOrder = append(o.updateOrder, id)
	}
	existing.Merge(patch)
	o.updates[id] = existing
}

// StageCreate records a new allocation to be created on apply and returns
// its synthetic draft id.
func (o *Overlay) StageCreate(payload model.AllocationCreate) string {
	id := draftPrefix + uuid.NewString()
	o.creates = append(o.creates, PendingCreate{DraftID: id, Payload: payload})
	return id
}

// StageDelete records a delete. Deleting a draft simply drops its staged
// create; deleting a committed id also discards any staged update so the
// id lives in one set only.
func (o *Overlay) StageDelete(id string) {
	if IsDraft(id) {
		for i := range o.creates {
			if o.creates[i].DraftID == id {
				o.creates = append(o.creates[:i], o.creates[i+1:]...)
				return
			}
		}
		return
	}
	if _, ok := o.updates[id]; ok {
		delete(o.updates, id)
		o.updateOrder = removeID(o.updateOrder, id)
	}
	if _, ok := o.deletes[id]; !ok {
		o.deletes[id] = struct{}{}
		o.deleteOrder = append(o.deleteOrder, id)
	}
}

// Counts returns the number of staged updates, creates and deletes.
func (o *Overlay) Counts() (updates, creates, deletes int) {
	return len(o.updates), len(o.creates), len(o.deletes)
}

// Empty reports whether nothing is staged.
func (o *Overlay) Empty() bool {
	return len(o.updates) == 0 && len(o.creates) == 0 && len(o.deletes) == 0
}

// Clear drops everything staged without touching the backend.
func (o *Overlay) Clear() {
	o.updates = make(map[string]model.AllocationPatch)
	o.updateOrder = nil
	o.creates = nil
	o.deletes = make(map[string]struct{})
	o.deleteOrder = nil
}

// Update returns the staged patch for id, if any.
func (o *Overlay) Update(id string) (model.AllocationPatch, bool) {
	p, ok := o.updates[id]
	return p, ok
}

// Deleted reports whether id is staged for deletion.
func (o *Overlay) Deleted(id string) bool {
	_, ok := o.deletes[id]
	return ok
}

// Creates returns the staged creates in staging order.
func (o *Overlay) Creates() []PendingCreate {
	out := make([]PendingCreate, len(o.creates))
	copy(out, o.creates)
	return out
}

// MergeInto produces the speculative view: baseline with staged updates
// applied, staged deletes removed and staged creates materialized at the
// end. The baseline slice is not modified.
func (o *Overlay) MergeInto(baseline []model.Allocation) []model.Allocation {
	out := make([]model.Allocation, 0, len(baseline)+len(o.creates))
	for _, a := range baseline {
		if _, gone := o.deletes[a.ID]; gone {
			continue
		}
		c := a.Clone()
		if patch, ok := o.updates[a.ID]; ok {
			patch.ApplyTo(&c)
		}
		out = append(out, c)
	}
	for _, pc := range o.creates {
		out = append(out, materialize(pc))
	}
	return out
}

// Apply replays the staged operations against the backend: all updates,
// then all creates, then all deletes, each awaited in turn so referential
// effects hold. The replay is deliberately not transactional: on the
// first failure it stops, leaves the already-committed subset on the
// backend, keeps the unapplied remainder staged, and surfaces the error
// so the operator can retry or discard.
func (o *Overlay) Apply(ctx context.Context, client backend.Client, scope model.Scope) error {
	for len(o.updateOrder) > 0 {
		id := o.updateOrder[0]
		if _, err := client.UpdateAllocation(ctx, id, o.updates[id]); err != nil {
			return &BackendError{Op: "apply update " + id, Err: err}
		}
		delete(o.updates, id)
		o.updateOrder = o.updateOrder[1:]
	}
	for len(o.creates) > 0 {
		pc := o.creates[0]
		if _, err := client.CreateAllocation(ctx, scope, pc.Payload); err != nil {
			return &BackendError{Op: "apply create " + pc.DraftID, Err: err}
		}
		o.creates = o.creates[1:]
	}
	for len(o.deleteOrder) > 0 {
		id := o.deleteOrder[0]
		if err := client.DeleteAllocation(ctx, id); err != nil {
			return &BackendError{Op: "apply delete " + id, Err: err}
		}
		delete(o.deletes, id)
		o.deleteOrder = o.deleteOrder[1:]
	}
	return nil
}

func materialize(pc PendingCreate) model.Allocation {
	p := pc.Payload
	return model.Allocation{
		ID:              pc.DraftID,
		AtomID:          p.AtomID,
		AtomName:        p.AtomName,
		ProcessID:       p.ProcessID,
		ProcessName:     p.ProcessName,
		Milestone:       p.Milestone,
		Status:          p.Status,
		Criticality:     p.Criticality,
		PlannedStart:    p.PlannedStart,
		PlannedFinish:   p.PlannedFinish,
		PercentComplete: p.PercentComplete,
		Notes:           p.Notes,
		Dependencies:    append([]string(nil), p.Dependencies...),
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
