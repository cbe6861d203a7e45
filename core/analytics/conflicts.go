package analytics

import (
	"strings"

	"github.com/pcouderc/worksched/core/model"
)

// DefaultConflictPageSize is the fixed page size for filtered conflicts.
const DefaultConflictPageSize = 10

// ConflictPage is one page of the filtered conflict list.
type ConflictPage struct {
	Items      []model.Conflict `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

// FilterConflicts keeps conflicts whose type, message, or any referenced
// allocation's display fields (atom name, atom id, notes) contain the
// query, case-insensitively. An empty query keeps everything.
func FilterConflicts(conflicts []model.Conflict, allocs []model.Allocation, query string) []model.Conflict {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return append([]model.Conflict(nil), conflicts...)
	}
	byID := make(map[string]model.Allocation, len(allocs))
	for _, a := range allocs {
		byID[a.ID] = a
	}
	var out []model.Conflict
	for _, c := range conflicts {
		if conflictMatches(c, byID, query) {
			out = append(out, c)
		}
	}
	return out
}

func conflictMatches(c model.Conflict, byID map[string]model.Allocation, query string) bool {
	if strings.Contains(strings.ToLower(c.ConflictType), query) ||
		strings.Contains(strings.ToLower(c.Message), query) {
		return true
	}
	for _, id := range c.ScheduleIDs {
		a, ok := byID[id]
		if !ok {
			continue
		}
		for _, field := range []string{a.AtomName, a.AtomID, a.Notes} {
			if strings.Contains(strings.ToLower(field), query) {
				return true
			}
		}
	}
	return false
}

// PageConflicts slices the filtered list into fixed-size pages. Pages are
// zero-based; out-of-range pages return an empty item list with the
// totals intact.
func PageConflicts(items []model.Conflict, page, size int) ConflictPage {
	if size <= 0 {
		size = DefaultConflictPageSize
	}
	if page < 0 {
		page = 0
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	out := ConflictPage{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
	}
	lo := page * size
	if lo >= total {
		out.Items = []model.Conflict{}
		return out
	}
	hi := lo + size
	if hi > total {
		hi = total
	}
	out.Items = append([]model.Conflict(nil), items[lo:hi]...)
	return out
}
