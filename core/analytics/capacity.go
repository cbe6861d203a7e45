package analytics

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pcouderc/worksched/core/model"
)

// DefaultHoursPerDay is the load one allocation contributes to each day of
// its planned window: one full shift, not per-resource actuals.
const DefaultHoursPerDay = 8

// LoadBand classifies a day's aggregate hours.
type LoadBand string

const (
	LoadSeverelyOverbooked LoadBand = "severely_overbooked" // > 16h
	LoadOverCapacity       LoadBand = "over_capacity"       // > 8h
	LoadFullyBooked        LoadBand = "fully_booked"        // exactly 8h
	LoadComfortable        LoadBand = "comfortable"         // >= 4h
	LoadLight              LoadBand = "light"               // < 4h
)

// BandFor maps aggregate hours to a band. The thresholds are monotonic
// and non-overlapping; exactly 16 hours is over capacity, not severe.
func BandFor(hours float64) LoadBand {
	switch {
	case hours > 16:
		return LoadSeverelyOverbooked
	case hours > 8:
		return LoadOverCapacity
	case hours == 8:
		return LoadFullyBooked
	case hours >= 4:
		return LoadComfortable
	default:
		return LoadLight
	}
}

// CapacitySample is one calendar day of aggregated committed hours.
type CapacitySample struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
	Band  LoadBand  `json:"band"`
}

// CapacityReport is the per-day load series with summary figures.
type CapacityReport struct {
	Series       []CapacitySample `json:"series"`
	TotalHours   float64          `json:"totalHours"`
	MeanHours    float64          `json:"meanHours"`
	StdDevHours  float64          `json:"stdDevHours"`
	PeakHours    float64          `json:"peakHours"`
	Busiest      CapacitySample   `json:"busiest"`
	HorizonStart time.Time        `json:"horizonStart"`
	HorizonEnd   time.Time        `json:"horizonEnd"`
}

// BuildCapacityReport buckets hoursPerDay into every calendar day of each
// allocation's inclusive planned window and sums overlapping allocations
// additively. The series is sorted by date; busiest is the earliest day
// among ties.
func BuildCapacityReport(allocs []model.Allocation, hoursPerDay float64) CapacityReport {
	if hoursPerDay <= 0 {
		hoursPerDay = DefaultHoursPerDay
	}
	buckets := make(map[time.Time]float64)
	for _, a := range allocs {
		start := model.Day(a.PlannedStart)
		finish := model.Day(a.PlannedFinish)
		if finish.Before(start) {
			finish = start
		}
		for d := start; !d.After(finish); d = model.AddDays(d, 1) {
			buckets[d] += hoursPerDay
		}
	}
	if len(buckets) == 0 {
		return CapacityReport{}
	}

	series := make([]CapacitySample, 0, len(buckets))
	for date, hours := range buckets {
		series = append(series, CapacitySample{Date: date, Hours: hours, Band: BandFor(hours)})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	hours := make([]float64, len(series))
	report := CapacityReport{
		Series:       series,
		HorizonStart: series[0].Date,
		HorizonEnd:   series[len(series)-1].Date,
		Busiest:      series[0],
	}
	for i, s := range series {
		hours[i] = s.Hours
		report.TotalHours += s.Hours
		if s.Hours > report.Busiest.Hours {
			report.Busiest = s
		}
	}
	report.PeakHours = report.Busiest.Hours
	report.MeanHours = stat.Mean(hours, nil)
	if len(hours) > 1 {
		report.StdDevHours = stat.StdDev(hours, nil)
	}
	return report
}
