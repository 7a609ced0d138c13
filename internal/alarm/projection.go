package alarm

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/layl-app/layl/internal/model"
)

const (
	upcomingWindowDays = 7
	upcomingLimit      = 10
)

// UpcomingAlarms projects enabled alarms over the next seven days: today is
// filtered to strictly-future occurrences, the day filter is applied per day
// (an empty repeat set matches every day), and the result is sorted ascending
// and capped to bound rendering cost.
func (s *Scheduler) UpcomingAlarms() []model.UpcomingAlarm {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var out []model.UpcomingAlarm

	for offset := 0; offset < upcomingWindowDays; offset++ {
		day := now.AddDate(0, 0, offset)
		for _, a := range s.alarms {
			if !a.Enabled || !a.RepeatsOn(day.Weekday()) {
				continue
			}
			at, ok := clockOnDay(a.Time, day)
			if !ok {
				continue
			}
			if offset == 0 && !at.After(now) {
				continue
			}
			out = append(out, model.UpcomingAlarm{
				Alarm:     a,
				At:        at,
				TimeLabel: a.Time,
				DayLabel:  dayLabel(offset, day),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	if len(out) > upcomingLimit {
		out = out[:upcomingLimit]
	}
	return out
}

// NextAlarm returns the soonest upcoming occurrence, or nil when no enabled
// alarm falls inside the lookahead window.
func (s *Scheduler) NextAlarm() *model.UpcomingAlarm {
	upcoming := s.UpcomingAlarms()
	if len(upcoming) == 0 {
		return nil
	}
	return &upcoming[0]
}

// clockOnDay places an "HH:MM" string onto the given calendar day in its zone.
func clockOnDay(clock string, day time.Time) (time.Time, bool) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), true
}

func dayLabel(offset int, day time.Time) string {
	switch offset {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return day.Weekday().String()
	}
}
