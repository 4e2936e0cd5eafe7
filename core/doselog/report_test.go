package doselog

import (
	"math"
	"testing"
	"time"
)

func rec(day string, slot string, action Action) Record {
	at, err := time.Parse("2006-01-02 15:04", day+" 08:00")
	if err != nil {
		panic(err)
	}
	return Record{At: at, Slot: slot, Action: action}
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(nil)
	if r.Dispensed != 0 || r.Taken != 0 || r.Missed != 0 {
		t.Fatalf("unexpected counts %+v", r)
	}
	if r.AdherenceRate != 0 || r.Days != 0 {
		t.Fatalf("unexpected rates %+v", r)
	}
}

func TestBuildReportCounts(t *testing.T) {
	recs := []Record{
		rec("2025-03-01", "1", ActionDispense),
		rec("2025-03-01", "1", ActionTaken),
		rec("2025-03-01", "2", ActionDispense),
		rec("2025-03-01", "2", ActionMissed),
		rec("2025-03-02", "1", ActionDispense),
		rec("2025-03-02", "1", ActionTaken),
	}
	r := BuildReport(recs)
	if r.Dispensed != 3 || r.Taken != 2 || r.Missed != 1 {
		t.Fatalf("counts = %+v", r)
	}
	if got, want := r.AdherenceRate, 2.0/3.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("adherence = %v, want %v", got, want)
	}
	if r.Days != 2 {
		t.Fatalf("days = %d, want 2", r.Days)
	}
	// Day one is 1/2, day two is 1/1.
	if got, want := r.DailyMean, 0.75; math.Abs(got-want) > 1e-9 {
		t.Fatalf("daily mean = %v, want %v", got, want)
	}
	if r.DailyStdDev <= 0 {
		t.Fatalf("daily stddev = %v, want > 0", r.DailyStdDev)
	}
}

func TestBuildReportIgnoresDispenseOnlyDays(t *testing.T) {
	recs := []Record{
		rec("2025-03-01", "1", ActionDispense),
	}
	r := BuildReport(recs)
	if r.Days != 0 {
		t.Fatalf("a day without completed cycles must not count, got %d", r.Days)
	}
	if r.AdherenceRate != 0 {
		t.Fatalf("adherence = %v, want 0", r.AdherenceRate)
	}
}
