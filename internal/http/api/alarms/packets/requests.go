package packets

import "github.com/layl-app/layl/internal/model"

// CreateAlarmRequest creates a custom alarm. Time is the user's local clock.
type CreateAlarmRequest struct {
	Name          string           `json:"name" binding:"required"`
	Time          string           `json:"time" binding:"required"` // "HH:MM"
	Sound         model.AlarmSound `json:"sound"`
	RepeatDays    []int64          `json:"repeat_days"` // 0=Sunday..6=Saturday; empty = every day
	SnoozeMinutes int              `json:"snooze_minutes"`
	Enabled       *bool            `json:"enabled"`
}

type UpdateAlarmRequest struct {
	Name              *string           `json:"name"`
	Time              *string           `json:"time"`
	Enabled           *bool             `json:"enabled"`
	Sound             *model.AlarmSound `json:"sound"`
	RepeatDays        *[]int64          `json:"repeat_days"`
	SnoozeMinutes     *int              `json:"snooze_minutes"`
	BeforeFajrMinutes *int              `json:"before_fajr_minutes"`
}

// CreatePrayerAlarmRequest quick-adds a prayer-linked alarm; the time is
// derived from today's prayer times for the stored location.
type CreatePrayerAlarmRequest struct {
	Type              model.AlarmType `json:"type" binding:"required"`
	BeforeFajrMinutes *int            `json:"before_fajr_minutes"`
}

type SnoozeRequest struct {
	Minutes *int `json:"minutes"`
}

type UpdateSettingsRequest struct {
	DefaultSnoozeMinutes int              `json:"default_snooze_minutes"`
	DefaultSound         model.AlarmSound `json:"default_sound"`
	NotificationsEnabled bool             `json:"notifications_enabled"`
	VibrationEnabled     bool             `json:"vibration_enabled"`
}

type ApplyReconcileRequest struct {
	AlarmIDs []string `json:"alarm_ids" binding:"required"`
}
