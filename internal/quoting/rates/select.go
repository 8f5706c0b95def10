package rates

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// Covers reports whether date falls in [EffectiveFrom, EffectiveTo).
func (s Schedule) Covers(date time.Time) bool {
	d := shared.DateOnly(date)
	if d.Before(shared.DateOnly(s.EffectiveFrom)) {
		return false
	}
	return s.EffectiveTo == nil || d.Before(shared.DateOnly(*s.EffectiveTo))
}

// Overlaps reports whether two effective ranges share at least one day.
func (s Schedule) Overlaps(other Schedule) bool {
	return startsBefore(s.EffectiveFrom, other.EffectiveTo) && startsBefore(other.EffectiveFrom, s.EffectiveTo)
}

func startsBefore(from time.Time, to *time.Time) bool {
	return to == nil || shared.DateOnly(from).Before(shared.DateOnly(*to))
}

// Select picks the single schedule covering asOf. No match is ErrNotFound and more than one
// is ErrScheduleConflict; there is no fallback to a default schedule.
func Select(schedules []Schedule, asOf time.Time) (*Schedule, error) {
	var match *Schedule
	for i := range schedules {
		if !schedules[i].Covers(asOf) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("schedules %d and %d both cover %s: %w",
				match.ID, schedules[i].ID, asOf.Format(time.DateOnly), shared.ErrScheduleConflict)
		}
		s := schedules[i]
		match = &s
	}
	if match == nil {
		return nil, fmt.Errorf("no sla schedule covers %s: %w", asOf.Format(time.DateOnly), shared.ErrNotFound)
	}
	return match, nil
}
