package model

import "time"

// Task is the renderable projection of an allocation. Tasks are derived on
// every store change and never persisted.
//
// Start is inclusive and End exclusive: a one-day allocation projects to
// End = Start + 1 day, so a bar renderer always gets a positive width.
type Task struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Progress     float64   `json:"progress"` // always 0-100
	IsCritical   bool      `json:"isCritical"`
	DisplayOrder int       `json:"displayOrder"`
}

// DurationDays returns the rendered width of the task in days.
func (t Task) DurationDays() int {
	return DaysBetween(t.Start, t.End)
}

// CloneTasks copies a task list. Task holds no reference fields, so a
// slice copy is a deep copy; history snapshots rely on that.
func CloneTasks(in []Task) []Task {
	if in == nil {
		return nil
	}
	out := make([]Task, len(in))
	copy(out, in)
	return out
}
