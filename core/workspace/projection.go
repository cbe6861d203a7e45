package workspace

import (
	"github.com/pcouderc/worksched/core/model"
)

// Project derives the renderable task list from an allocation set. It is a
// pure function: one task per allocation, in input order.
//
// Progress normalization follows the backend's dual convention: values
// above 1 are taken as 0-100 percentages, anything else as a fraction to
// scale by 100.
//
// The rendered end is plannedFinish plus one day (exclusive convention).
// When bad input puts the finish before the start, the end is clamped to
// start+1 so a renderer never sees a zero or negative width. The clamp is
// a rendering guard, not a data correction.
func Project(allocs []model.Allocation, criticalIDs []string) []model.Task {
	critical := make(map[string]struct{}, len(criticalIDs))
	for _, id := range criticalIDs {
		critical[id] = struct{}{}
	}

	tasks := make([]model.Task, 0, len(allocs))
	for i, a := range allocs {
		start := model.Day(a.PlannedStart)
		end := model.AddDays(a.PlannedFinish, 1)
		if !end.After(start) {
			end = model.AddDays(start, 1)
		}
		_, isCritical := critical[a.ID]
		tasks = append(tasks, model.Task{
			ID:           a.ID,
			Name:         a.AtomName,
			Start:        start,
			End:          end,
			Progress:     a.ProgressPercent(),
			IsCritical:   isCritical,
			DisplayOrder: i,
		})
	}
	return tasks
}
