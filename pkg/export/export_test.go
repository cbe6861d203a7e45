package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pcouderc/worksched/core/analytics"
	"github.com/pcouderc/worksched/core/model"
)

func sampleReport() analytics.CapacityReport {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return analytics.CapacityReport{
		Series: []analytics.CapacitySample{
			{Date: day, Hours: 8, Band: analytics.LoadFullyBooked},
			{Date: day.AddDate(0, 0, 1), Hours: 16, Band: analytics.LoadOverCapacity},
		},
		TotalHours: 24,
		PeakHours:  16,
	}
}

func TestWriteCapacityCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCapacityCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "date,hours,band" {
		t.Fatalf("header %q", lines[0])
	}
	if lines[2] != "2025-03-02,16,over_capacity" {
		t.Fatalf("row %q", lines[2])
	}
}

func TestWriteCapacityJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCapacityJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got analytics.CapacityReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalHours != 24 || len(got.Series) != 2 {
		t.Fatalf("unexpected report %+v", got)
	}
}

func TestWriteConflictsCSV(t *testing.T) {
	var buf bytes.Buffer
	conflicts := []model.Conflict{
		{ConflictType: "overlap", ScheduleIDs: []string{"a1", "a2"}, Message: "crews overlap"},
	}
	if err := WriteConflictsCSV(&buf, conflicts); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d", len(lines))
	}
	if lines[1] != "overlap,a1;a2,crews overlap" {
		t.Fatalf("row %q", lines[1])
	}
}
