package model

import (
	"fmt"
	"time"
)

// Allocation is the server-authoritative unit of scheduling: an assignment
// of a resource ("atom") to a process, with planned and actual dates.
// The engine only caches allocations; the backend owns them.
type Allocation struct {
	ID          string `json:"id"`
	AtomID      string `json:"atomId"`
	AtomName    string `json:"atomName"`
	ProcessID   string `json:"processId"`
	ProcessName string `json:"processName"`
	Milestone   string `json:"milestone,omitempty"`
	Status      Status `json:"status"`
	Criticality string `json:"criticality,omitempty"`

	PlannedStart  time.Time  `json:"plannedStart"`
	PlannedFinish time.Time  `json:"plannedFinish"`
	ActualStart   *time.Time `json:"actualStart,omitempty"`
	ActualFinish  *time.Time `json:"actualFinish,omitempty"`

	// PercentComplete arrives in one of two conventions: a fraction in
	// [0,1] or a percentage in (1,100]. Values above 1 are treated as
	// already being percentages. Use ProgressPercent and
	// SetProgressPercent instead of reading the raw field.
	PercentComplete float64 `json:"percentComplete"`

	VarianceDays *int     `json:"varianceDays,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Validate checks that the allocation window is sound.
func (a Allocation) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("allocation id is required")
	}
	if a.PlannedStart.IsZero() || a.PlannedFinish.IsZero() {
		return fmt.Errorf("allocation %s: planned dates are required", a.ID)
	}
	return nil
}

// ProgressPercent normalizes PercentComplete to the 0-100 scale.
func (a Allocation) ProgressPercent() float64 {
	if a.PercentComplete > 1 {
		return a.PercentComplete
	}
	return a.PercentComplete * 100
}

// SetProgressPercent stores a 0-100 value back in the allocation's native
// convention: allocations that carried a fraction keep a fraction.
func (a *Allocation) SetProgressPercent(pct float64) {
	if a.PercentComplete > 1 {
		a.PercentComplete = pct
		return
	}
	a.PercentComplete = pct / 100
}

// PlannedDays returns the length of the planned window in whole days,
// counting both endpoints (the range is inclusive).
func (a Allocation) PlannedDays() int {
	return DaysBetween(a.PlannedStart, a.PlannedFinish) + 1
}

// Clone returns a deep copy of the allocation.
func (a Allocation) Clone() Allocation {
	c := a
	if a.ActualStart != nil {
		t := *a.ActualStart
		c.ActualStart = &t
	}
	if a.ActualFinish != nil {
		t := *a.ActualFinish
		c.ActualFinish = &t
	}
	if a.VarianceDays != nil {
		v := *a.VarianceDays
		c.VarianceDays = &v
	}
	if a.Dependencies != nil {
		c.Dependencies = append([]string(nil), a.Dependencies...)
	}
	return c
}

// CloneAllocations deep-copies a slice of allocations.
func CloneAllocations(in []Allocation) []Allocation {
	if in == nil {
		return nil
	}
	out := make([]Allocation, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}

// AllocationCreate is the payload for a new allocation. The backend assigns
// the id.
type AllocationCreate struct {
	AtomID          string    `json:"atomId"`
	AtomName        string    `json:"atomName"`
	ProcessID       string    `json:"processId"`
	ProcessName     string    `json:"processName"`
	Milestone       string    `json:"milestone,omitempty"`
	Status          Status    `json:"status"`
	Criticality     string    `json:"criticality,omitempty"`
	PlannedStart    time.Time `json:"plannedStart"`
	PlannedFinish   time.Time `json:"plannedFinish"`
	PercentComplete float64   `json:"percentComplete"`
	Notes           string    `json:"notes,omitempty"`
	Dependencies    []string  `json:"dependencies,omitempty"`
}

// Validate checks the create payload.
func (p AllocationCreate) Validate() error {
	if p.PlannedStart.IsZero() || p.PlannedFinish.IsZero() {
		return fmt.Errorf("create payload: planned dates are required")
	}
	if p.PlannedFinish.Before(p.PlannedStart) {
		return fmt.Errorf("create payload: planned finish before start")
	}
	return nil
}

// AllocationPatch carries partial allocation updates. Nil fields are left
// untouched. Keeping this a typed struct rather than an open map preserves
// the overlay invariants.
type AllocationPatch struct {
	PlannedStart    *time.Time `json:"plannedStart,omitempty"`
	PlannedFinish   *time.Time `json:"plannedFinish,omitempty"`
	PercentComplete *float64   `json:"percentComplete,omitempty"`
	Status          *Status    `json:"status,omitempty"`
	Milestone       *string    `json:"milestone,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p AllocationPatch) IsZero() bool {
	return p.PlannedStart == nil && p.PlannedFinish == nil &&
		p.PercentComplete == nil && p.Status == nil &&
		p.Milestone == nil && p.Notes == nil
}

// Merge overlays o onto p, field by field. Later patches win.
func (p *AllocationPatch) Merge(o AllocationPatch) {
	if o.PlannedStart != nil {
		p.PlannedStart = o.PlannedStart
	}
	if o.PlannedFinish != nil {
		p.PlannedFinish = o.PlannedFinish
	}
	if o.PercentComplete != nil {
		p.PercentComplete = o.PercentComplete
	}
	if o.Status != nil {
		p.Status = o.Status
	}
	if o.Milestone != nil {
		p.Milestone = o.Milestone
	}
	if o.Notes != nil {
		p.Notes = o.Notes
	}
}

// ApplyTo writes the patch onto an allocation in place.
func (p AllocationPatch) ApplyTo(a *Allocation) {
	if p.PlannedStart != nil {
		a.PlannedStart = *p.PlannedStart
	}
	if p.PlannedFinish != nil {
		a.PlannedFinish = *p.PlannedFinish
	}
	if p.PercentComplete != nil {
		a.PercentComplete = *p.PercentComplete
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Milestone != nil {
		a.Milestone = *p.Milestone
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}

// ApplyToCreate writes the patch onto a create payload in place. Used when
// a staged draft is edited again before it ever reaches the backend.
func (p AllocationPatch) ApplyToCreate(c *AllocationCreate) {
	if p.PlannedStart != nil {
		c.PlannedStart = *p.PlannedStart
	}
	if p.PlannedFinish != nil {
		c.PlannedFinish = *p.PlannedFinish
	}
	if p.PercentComplete != nil {
		c.PercentComplete = *p.PercentComplete
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Milestone != nil {
		c.Milestone = *p.Milestone
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
}
