package doselog

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Report summarizes adherence over the whole log.
type Report struct {
	Dispensed int
	Taken     int
	Missed    int
	// AdherenceRate is Taken over all completed cycles.
	AdherenceRate float64
	// Days is the number of calendar days with at least one completed cycle.
	Days int
	// DailyMean and DailyStdDev describe the per-day adherence rates.
	DailyMean   float64
	DailyStdDev float64
}

// BuildReport computes adherence statistics from parsed log records.
func BuildReport(recs []Record) Report {
	var r Report
	type dayCount struct{ taken, missed int }
	days := map[string]*dayCount{}

	for _, rec := range recs {
		day := rec.At.Format("2006-01-02")
		switch rec.Action {
		case ActionDispense:
			r.Dispensed++
		case ActionTaken:
			r.Taken++
			d := days[day]
			if d == nil {
				d = &dayCount{}
				days[day] = d
			}
			d.taken++
		case ActionMissed:
			r.Missed++
			d := days[day]
			if d == nil {
				d = &dayCount{}
				days[day] = d
			}
			d.missed++
		}
	}

	completed := r.Taken + r.Missed
	if completed > 0 {
		r.AdherenceRate = float64(r.Taken) / float64(completed)
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rates := make([]float64, 0, len(keys))
	for _, k := range keys {
		d := days[k]
		rates = append(rates, float64(d.taken)/float64(d.taken+d.missed))
	}
	r.Days = len(rates)
	if len(rates) > 0 {
		r.DailyMean = stat.Mean(rates, nil)
	}
	if len(rates) > 1 {
		r.DailyStdDev = stat.StdDev(rates, nil)
	}
	return r
}
