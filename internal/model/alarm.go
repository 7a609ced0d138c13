package model

import (
	"time"

	"github.com/lib/pq"
)

// AlarmType classifies how an alarm's target time was chosen. Prayer-linked
// types are recomputed when the stored location changes; custom alarms never are.
type AlarmType string

const (
	AlarmTypeFajr       AlarmType = "fajr"
	AlarmTypeIsha       AlarmType = "isha"
	AlarmTypeTahajjud   AlarmType = "tahajjud"
	AlarmTypeFajrBefore AlarmType = "fajr-before"
	AlarmTypeCustom     AlarmType = "custom"
)

// PrayerLinked reports whether the alarm's time is derived from prayer times.
func (t AlarmType) PrayerLinked() bool {
	switch t {
	case AlarmTypeFajr, AlarmTypeIsha, AlarmTypeTahajjud, AlarmTypeFajrBefore:
		return true
	}
	return false
}

// AlarmSound is one of the fixed set of ring sounds.
type AlarmSound string

const (
	SoundAdhan     AlarmSound = "adhan"
	SoundAdhanSoft AlarmSound = "adhan-soft"
	SoundBell      AlarmSound = "bell"
	SoundChime     AlarmSound = "chime"
	SoundSilent    AlarmSound = "silent"
)

// ValidSound reports whether s names one of the bundled ring sounds.
func ValidSound(s AlarmSound) bool {
	switch s {
	case SoundAdhan, SoundAdhanSoft, SoundBell, SoundChime, SoundSilent:
		return true
	}
	return false
}

type Alarm struct {
	ID                string        `db:"id"                  json:"id"`
	Name              string        `db:"name"                json:"name"`
	Time              string        `db:"time"                json:"time"` // "HH:MM", user's local clock
	Enabled           bool          `db:"enabled"             json:"enabled"`
	Type              AlarmType     `db:"type"                json:"type"`
	Sound             AlarmSound    `db:"sound"               json:"sound"`
	RepeatDays        pq.Int64Array `db:"repeat_days"         json:"repeat_days"` // 0=Sunday..6=Saturday
	SnoozeMinutes     int           `db:"snooze_minutes"      json:"snooze_minutes"`
	BeforeFajrMinutes *int          `db:"before_fajr_minutes" json:"before_fajr_minutes,omitempty"`
	CreatedAt         time.Time     `db:"created_at"          json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"          json:"updated_at"`
}

// RepeatsOn reports whether the alarm is eligible on the given weekday.
// An empty repeat set means the alarm repeats every day.
func (a Alarm) RepeatsOn(day time.Weekday) bool {
	if len(a.RepeatDays) == 0 {
		return true
	}
	for _, d := range a.RepeatDays {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}

// AlarmSettings is the single process-wide settings record.
type AlarmSettings struct {
	DefaultSnoozeMinutes int        `json:"default_snooze_minutes"`
	DefaultSound         AlarmSound `json:"default_sound"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	VibrationEnabled     bool       `json:"vibration_enabled"`
}

// DefaultAlarmSettings returns the settings applied on first run or after a
// corrupted settings record.
func DefaultAlarmSettings() AlarmSettings {
	return AlarmSettings{
		DefaultSnoozeMinutes: 5,
		DefaultSound:         SoundAdhan,
		NotificationsEnabled: false,
		VibrationEnabled:     true,
	}
}

// UpcomingAlarm is a derived occurrence of an alarm inside the 7-day lookahead
// window. It is computed on demand and never persisted.
type UpcomingAlarm struct {
	Alarm     Alarm     `json:"alarm"`
	At        time.Time `json:"at"`
	TimeLabel string    `json:"time_label"` // "HH:MM"
	DayLabel  string    `json:"day_label"`  // "Today", "Tomorrow" or weekday name
}
