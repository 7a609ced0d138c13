package alarm

import (
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/prayer"
)

// prayerAlarmNames are the display names CreatePrayerAlarm assigns per type.
var prayerAlarmNames = map[model.AlarmType]string{
	model.AlarmTypeFajr:       "Fajr Prayer",
	model.AlarmTypeIsha:       "Isha Prayer",
	model.AlarmTypeTahajjud:   "Tahajjud (Last Third of Night)",
	model.AlarmTypeFajrBefore: "Before Fajr",
}

// everyDay is the explicit all-week repeat set prayer alarms are stored with.
var everyDay = []int64{0, 1, 2, 3, 4, 5, 6}

// PrayerAlarmTime derives the target HH:MM for a prayer-linked alarm type
// from one day's prayer times. Returns "" for custom alarms or underivable
// input.
func PrayerAlarmTime(t model.AlarmType, pt model.PrayerTimes, beforeFajrMinutes int) string {
	switch t {
	case model.AlarmTypeFajr:
		return pt.Fajr
	case model.AlarmTypeIsha:
		return pt.Isha
	case model.AlarmTypeTahajjud:
		return prayer.LastThirdOfNight(pt.Maghrib, pt.Fajr)
	case model.AlarmTypeFajrBefore:
		return prayer.TimeBeforeFajr(pt.Fajr, beforeFajrMinutes)
	}
	return ""
}

// CreatePrayerAlarm is the quick-add constructor for prayer-linked alarms:
// name from the type, all seven repeat days, the adhan sound for fajr/isha
// and the gentler one otherwise, snooze from the settings default.
func (s *Scheduler) CreatePrayerAlarm(t model.AlarmType, timeStr string, beforeMinutes *int) (model.Alarm, error) {
	name, ok := prayerAlarmNames[t]
	if !ok {
		return model.Alarm{}, ErrInvalidAlarm
	}

	sound := model.SoundAdhanSoft
	if t == model.AlarmTypeFajr || t == model.AlarmTypeIsha {
		sound = model.SoundAdhan
	}

	a := model.Alarm{
		Name:       name,
		Time:       timeStr,
		Enabled:    true,
		Type:       t,
		Sound:      sound,
		RepeatDays: everyDay,
	}
	if t == model.AlarmTypeFajrBefore {
		a.BeforeFajrMinutes = beforeMinutes
	}
	return s.AddAlarm(a)
}

// ReconcileProposal describes one prayer-linked alarm whose time would change
// under a new day's prayer times. The client shows old vs. new and asks for
// confirmation per alarm.
type ReconcileProposal struct {
	AlarmID string          `json:"alarm_id"`
	Name    string          `json:"name"`
	Type    model.AlarmType `json:"type"`
	OldTime string          `json:"old_time"`
	NewTime string          `json:"new_time"`
}

// ProposeReconciliation computes, without mutating anything, the time changes
// the given prayer times imply for every prayer-linked alarm. Custom alarms
// are never touched.
func (s *Scheduler) ProposeReconciliation(pt model.PrayerTimes) []ReconcileProposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ReconcileProposal
	for _, a := range s.alarms {
		if !a.Type.PrayerLinked() {
			continue
		}
		newTime := PrayerAlarmTime(a.Type, pt, beforeMinutesOf(a))
		if newTime == "" || newTime == a.Time {
			continue
		}
		out = append(out, ReconcileProposal{
			AlarmID: a.ID,
			Name:    a.Name,
			Type:    a.Type,
			OldTime: a.Time,
			NewTime: newTime,
		})
	}
	return out
}

// ApplyReconciliation updates only the alarms the user confirmed. Returns how
// many alarms changed.
func (s *Scheduler) ApplyReconciliation(confirmedIDs []string, pt model.PrayerTimes) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed := make(map[string]bool, len(confirmedIDs))
	for _, id := range confirmedIDs {
		confirmed[id] = true
	}

	applied := 0
	for i, a := range s.alarms {
		if !confirmed[a.ID] || !a.Type.PrayerLinked() {
			continue
		}
		newTime := PrayerAlarmTime(a.Type, pt, beforeMinutesOf(a))
		if newTime == "" || newTime == a.Time {
			continue
		}
		s.alarms[i].Time = newTime
		s.alarms[i].UpdatedAt = s.now()
		if err := s.store.UpdateAlarm(s.alarms[i]); err != nil {
			log.Error().Err(err).Str("alarm_id", a.ID).Msg("reconciled alarm not persisted")
		}
		applied++
	}
	log.Info().Int("applied", applied).Msg("prayer alarm reconciliation applied")
	return applied
}

func beforeMinutesOf(a model.Alarm) int {
	if a.BeforeFajrMinutes != nil {
		return *a.BeforeFajrMinutes
	}
	return 30
}
