package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/pcouderc/worksched/core/model"
)

// fakeBackend is an in-memory backend.Client used across the engine tests.
// failOn makes a named call fail: "update:<id>", "create", "delete:<id>",
// "list", "critical".
type fakeBackend struct {
	mu        sync.Mutex
	allocs    map[string]model.Allocation
	order     []string
	conflicts []model.Conflict
	critical  []string
	failOn    map[string]bool
	calls     []string
	nextID    int
}

func newFakeBackend(allocs ...model.Allocation) *fakeBackend {
	f := &fakeBackend{allocs: make(map[string]model.Allocation), failOn: make(map[string]bool)}
	for _, a := range allocs {
		f.allocs[a.ID] = a.Clone()
		f.order = append(f.order, a.ID)
	}
	return f
}

func (f *fakeBackend) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeBackend) ListAllocations(ctx context.Context, scope model.Scope) ([]model.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.failOn["list"] {
		return nil, fmt.Errorf("list unavailable")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Allocation, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.allocs[id].Clone())
	}
	return out, nil
}

func (f *fakeBackend) CreateAllocation(ctx context.Context, scope model.Scope, p model.AllocationCreate) (model.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create")
	if f.failOn["create"] {
		return model.Allocation{}, fmt.Errorf("create rejected")
	}
	f.nextID++
	a := model.Allocation{
		ID:              fmt.Sprintf("srv-%d", f.nextID),
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
	}
	f.allocs[a.ID] = a
	f.order = append(f.order, a.ID)
	return a.Clone(), nil
}

func (f *fakeBackend) UpdateAllocation(ctx context.Context, id string, patch model.AllocationPatch) (model.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update:" + id)
	if f.failOn["update:"+id] {
		return model.Allocation{}, fmt.Errorf("update %s rejected", id)
	}
	a, ok := f.allocs[id]
	if !ok {
		return model.Allocation{}, fmt.Errorf("unknown allocation %s", id)
	}
	patch.ApplyTo(&a)
	f.allocs[id] = a
	return a.Clone(), nil
}

func (f *fakeBackend) DeleteAllocation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete:" + id)
	if f.failOn["delete:"+id] {
		return fmt.Errorf("delete %s rejected", id)
	}
	if _, ok := f.allocs[id]; !ok {
		return fmt.Errorf("unknown allocation %s", id)
	}
	delete(f.allocs, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) ListConflicts(ctx context.Context, scope model.Scope) ([]model.Conflict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("conflicts")
	return append([]model.Conflict(nil), f.conflicts...), nil
}

func (f *fakeBackend) CriticalPath(ctx context.Context, scope model.Scope) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("critical")
	if f.failOn["critical"] {
		return nil, fmt.Errorf("critical path unavailable")
	}
	return append([]string(nil), f.critical...), nil
}
