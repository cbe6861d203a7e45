// Package export renders analytics results for the reporting CLI and for
// download endpoints.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pcouderc/worksched/core/analytics"
	"github.com/pcouderc/worksched/core/model"
)

// WriteCapacityJSON writes the full capacity report to w in JSON format.
func WriteCapacityJSON(w io.Writer, report analytics.CapacityReport) error {
	enc := json.NewEncoder(w)
	return enc.Encode(report)
}

// WriteCapacityCSV writes the per-day capacity series to w as CSV.
func WriteCapacityCSV(w io.Writer, report analytics.CapacityReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "hours", "band"}); err != nil {
		return err
	}
	for _, s := range report.Series {
		rec := []string{
			s.Date.Format(time.DateOnly),
			strconv.FormatFloat(s.Hours, 'f', -1, 64),
			string(s.Band),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConflictsJSON writes the conflicts to w in JSON format.
func WriteConflictsJSON(w io.Writer, conflicts []model.Conflict) error {
	enc := json.NewEncoder(w)
	return enc.Encode(conflicts)
}

// WriteConflictsCSV writes the conflicts to w as CSV. Referenced schedule
// ids are joined with semicolons to stay in a single column.
func WriteConflictsCSV(w io.Writer, conflicts []model.Conflict) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"conflict_type", "schedule_ids", "message"}); err != nil {
		return err
	}
	for _, c := range conflicts {
		rec := []string{
			c.ConflictType,
			strings.Join(c.ScheduleIDs, ";"),
			c.Message,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
