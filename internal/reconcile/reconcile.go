// Package reconcile derives streaks, totals and savings from a sparse map
// of daily smoking records. Every caller that needs these numbers (the
// daily question, the backfill flow, the legacy import, the recalculation
// tool) goes through this one implementation.
package reconcile

import (
	"math"
	"sort"

	"github.com/anfask/quitlog/internal/models"
)

// GapPolicy decides how an unrecorded day inside the observed range affects
// the consecutive streak.
type GapPolicy string

const (
	// GapTreatAsNonSmoking counts an unrecorded day as smoke-free: it
	// extends the streak. This matches the system's default assumption
	// that no record means the user did not smoke.
	GapTreatAsNonSmoking GapPolicy = "treat-as-non-smoking"

	// GapBreaksStreak ends the streak at the first unrecorded day.
	GapBreaksStreak GapPolicy = "breaks-streak"
)

// Valid reports whether p is a known policy.
func (p GapPolicy) Valid() bool {
	return p == GapTreatAsNonSmoking || p == GapBreaksStreak
}

// MissingDays returns every date between the user's last recorded date (or
// registration date if nothing was ever recorded) and today, ascending, that
// has no Recorded=true entry. Today itself is excluded: it belongs to the
// daily-question flow, not backfill.
func MissingDays(registrationDate, lastRecordedDate string, records map[string]models.DailyRecord, today string) ([]string, error) {
	start := registrationDate
	if lastRecordedDate != "" {
		start = lastRecordedDate
	}

	all, err := DatesBetween(start, today)
	if err != nil {
		return nil, err
	}

	missing := make([]string, 0, len(all))
	for _, date := range all {
		if date == today {
			continue
		}
		if rec, ok := records[date]; ok && rec.Recorded {
			continue
		}
		missing = append(missing, date)
	}
	return missing, nil
}

// CalculateProgress projects the derived metrics from a record map. It is a
// pure function: calling it repeatedly on the same map yields the same
// Progress, and it never mutates records.
//
// Totals: every Recorded=true, Smoked=false entry counts as a smoke-free
// day; so does every unrecorded entry (the default "no record = did not
// smoke" assumption). Recorded smoking days count toward TotalDaysSmoked.
//
// Streak: counted backward from the most recent recorded date. A recorded
// smoking day always breaks it; what an unrecorded day does is governed by
// the GapPolicy. With GapTreatAsNonSmoking and no recorded dates at all the
// walk anchors at the most recent entry in the map, so legacy placeholder
// maps still produce a streak. The walk never extends before the earliest
// entry in the map.
//
// Negative or non-finite dailyCigarettes/cigarettePrice are clamped to zero;
// that only zeroes the savings, it is not an error.
func CalculateProgress(records map[string]models.DailyRecord, dailyCigarettes int, cigarettePrice float64, policy GapPolicy) models.Progress {
	if dailyCigarettes < 0 {
		dailyCigarettes = 0
	}
	if cigarettePrice < 0 || math.IsNaN(cigarettePrice) || math.IsInf(cigarettePrice, 0) {
		cigarettePrice = 0
	}
	if !policy.Valid() {
		policy = GapTreatAsNonSmoking
	}

	var p models.Progress
	if len(records) == 0 {
		return p
	}

	dates := make([]string, 0, len(records))
	for date := range records {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for i := len(dates) - 1; i >= 0; i-- {
		rec := records[dates[i]]
		if rec.Recorded && p.LastRecordedDate == "" {
			p.LastRecordedDate = dates[i]
		}
		if rec.Recorded && rec.Smoked {
			p.TotalDaysSmoked++
		} else {
			p.TotalDaysWithoutSmoking++
		}
	}

	p.NetDaysWithoutSmoking = p.TotalDaysWithoutSmoking - p.TotalDaysSmoked
	if p.NetDaysWithoutSmoking < 0 {
		p.NetDaysWithoutSmoking = 0
	}

	p.ConsecutiveDaysWithoutSmoking = consecutiveStreak(records, dates, p.LastRecordedDate, policy)

	p.TotalCigarettesAvoided = p.TotalDaysWithoutSmoking * dailyCigarettes
	p.TotalMoneySaved = float64(p.TotalCigarettesAvoided) * cigarettePrice

	return p
}

// consecutiveStreak walks calendar days backward from the anchor date and
// counts contiguous smoke-free days. dates is the sorted key set of records.
func consecutiveStreak(records map[string]models.DailyRecord, dates []string, lastRecordedDate string, policy GapPolicy) int {
	anchor := lastRecordedDate
	if anchor == "" {
		if policy != GapTreatAsNonSmoking {
			return 0
		}
		anchor = dates[len(dates)-1]
	}

	day, err := ParseDate(anchor)
	if err != nil {
		return 0
	}
	earliest, err := ParseDate(dates[0])
	if err != nil {
		return 0
	}

	streak := 0
	for !day.Before(earliest) {
		rec, ok := records[FormatDate(day)]
		switch {
		case ok && rec.Recorded && !rec.Smoked:
			streak++
		case ok && rec.Recorded && rec.Smoked:
			return streak
		default:
			// Unrecorded entry or a true gap in the map.
			if policy == GapBreaksStreak {
				return streak
			}
			streak++
		}
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
