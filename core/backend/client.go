// Package backend defines the contract between the workspace engine and
// the schedule service that owns allocations. Implementations live under
// infra; tests fake this interface.
package backend

import (
	"context"

	"github.com/pcouderc/worksched/core/model"
)

// Client is the backend collaborator. All calls are blocking and accept a
// context for cancellation; timeouts are the implementation's concern.
type Client interface {
	ListAllocations(ctx context.Context, scope model.Scope) ([]model.Allocation, error)
	CreateAllocation(ctx context.Context, scope model.Scope, payload model.AllocationCreate) (model.Allocation, error)
	UpdateAllocation(ctx context.Context, id string, patch model.AllocationPatch) (model.Allocation, error)
	DeleteAllocation(ctx context.Context, id string) error
	ListConflicts(ctx context.Context, scope model.Scope) ([]model.Conflict, error)
	CriticalPath(ctx context.Context, scope model.Scope) ([]string, error)
}
