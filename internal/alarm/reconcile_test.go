package alarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layl-app/layl/internal/model"
)

var makkahTimes = model.PrayerTimes{
	Date:    "2026-03-01",
	Fajr:    "05:10",
	Sunrise: "06:30",
	Dhuhr:   "12:30",
	Asr:     "15:45",
	Maghrib: "18:20",
	Isha:    "19:50",
}

func TestPrayerAlarmTimePerType(t *testing.T) {
	assert.Equal(t, "05:10", PrayerAlarmTime(model.AlarmTypeFajr, makkahTimes, 0))
	assert.Equal(t, "19:50", PrayerAlarmTime(model.AlarmTypeIsha, makkahTimes, 0))
	// night 18:20 -> 05:10 = 10h50m; last third starts 18:20 + 7h13m = 01:33
	assert.Equal(t, "01:33", PrayerAlarmTime(model.AlarmTypeTahajjud, makkahTimes, 0))
	assert.Equal(t, "04:40", PrayerAlarmTime(model.AlarmTypeFajrBefore, makkahTimes, 30))
	assert.Equal(t, "", PrayerAlarmTime(model.AlarmTypeCustom, makkahTimes, 0))
}

func TestCreatePrayerAlarm(t *testing.T) {
	s, _, _, _, _ := newTestScheduler(t)

	a, err := s.CreatePrayerAlarm(model.AlarmTypeFajr, "05:10", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fajr Prayer", a.Name)
	assert.Equal(t, model.SoundAdhan, a.Sound)
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6}, []int64(a.RepeatDays))
	assert.True(t, a.Enabled)

	before := 20
	b, err := s.CreatePrayerAlarm(model.AlarmTypeFajrBefore, "04:50", &before)
	require.NoError(t, err)
	assert.Equal(t, model.SoundAdhanSoft, b.Sound, "gentle sound for non-adhan types")
	require.NotNil(t, b.BeforeFajrMinutes)
	assert.Equal(t, 20, *b.BeforeFajrMinutes)

	_, err = s.CreatePrayerAlarm(model.AlarmTypeCustom, "07:00", nil)
	assert.ErrorIs(t, err, ErrInvalidAlarm)
}

func TestProposeReconciliationTargetsPrayerLinkedOnly(t *testing.T) {
	s, _, _, _, _ := newTestScheduler(t)
	fajr, err := s.CreatePrayerAlarm(model.AlarmTypeFajr, "05:30", nil)
	require.NoError(t, err)
	mustAdd(t, s, model.Alarm{Name: "Work", Time: "08:00", Enabled: true})
	// already at the derived time, nothing to change
	_, err = s.CreatePrayerAlarm(model.AlarmTypeIsha, "19:50", nil)
	require.NoError(t, err)

	proposals := s.ProposeReconciliation(makkahTimes)
	require.Len(t, proposals, 1)
	assert.Equal(t, fajr.ID, proposals[0].AlarmID)
	assert.Equal(t, "05:30", proposals[0].OldTime)
	assert.Equal(t, "05:10", proposals[0].NewTime)
}

func TestApplyReconciliationOnlyConfirmedIDs(t *testing.T) {
	s, _, _, _, _ := newTestScheduler(t)
	fajr, err := s.CreatePrayerAlarm(model.AlarmTypeFajr, "05:30", nil)
	require.NoError(t, err)
	isha, err := s.CreatePrayerAlarm(model.AlarmTypeIsha, "20:15", nil)
	require.NoError(t, err)

	applied := s.ApplyReconciliation([]string{fajr.ID}, makkahTimes)
	assert.Equal(t, 1, applied)

	for _, a := range s.Alarms() {
		switch a.ID {
		case fajr.ID:
			assert.Equal(t, "05:10", a.Time)
		case isha.ID:
			assert.Equal(t, "20:15", a.Time, "unconfirmed alarm untouched")
		}
	}
}

func TestApplyReconciliationIgnoresCustomAlarms(t *testing.T) {
	s, _, _, _, _ := newTestScheduler(t)
	custom := mustAdd(t, s, model.Alarm{Name: "Work", Time: "08:00", Enabled: true})

	applied := s.ApplyReconciliation([]string{custom.ID}, makkahTimes)
	assert.Equal(t, 0, applied)
	assert.Equal(t, "08:00", s.Alarms()[0].Time)
}
