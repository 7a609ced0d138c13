// Package alarm owns the alarm list, settings and snooze state, and runs the
// once-per-second evaluation loop that turns wall-clock time into ringing
// alarms.
package alarm

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/audio"
	"github.com/layl-app/layl/internal/db"
	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/prayer"
)

// RingHandle is the audio-arbiter session the alarm ringer occupies.
const RingHandle = "alarm:ring"

// Store is the persistence surface the scheduler needs; db.Store satisfies it.
type Store interface {
	CreateAlarm(a model.Alarm) (model.Alarm, error)
	ListAlarms() ([]model.Alarm, error)
	UpdateAlarm(a model.Alarm) error
	DeleteAlarm(id string) error
	GetState(key string, out any) (bool, error)
	SetState(key string, value any) error
}

// Notifier delivers ring/dismiss events to subscribed clients.
type Notifier interface {
	AlarmRing(a model.Alarm, vibrate bool)
	AlarmDismissed(alarmID string)
}

var (
	ErrInvalidAlarm = errors.New("alarm: name and a valid HH:MM time are required")
	ErrNotRinging   = errors.New("alarm: no alarm is ringing")
)

// Scheduler owns all alarm state. The in-memory copy is authoritative for the
// session; persistence failures are logged and dropped, per the
// silent-degradation policy.
type Scheduler struct {
	mu       sync.Mutex
	store    Store
	arbiter  *audio.Arbiter
	notifier Notifier
	now      func() time.Time

	alarms   []model.Alarm
	settings model.AlarmSettings
	snoozes  map[string]int64 // alarm id -> epoch-millis re-fire deadline
	active   *model.Alarm
}

// New loads persisted alarms, settings and the snooze ledger. Corrupted or
// absent records fall back to defaults. now is injectable for tests; pass nil
// for the wall clock.
func New(store Store, arbiter *audio.Arbiter, notifier Notifier, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	s := &Scheduler{
		store:    store,
		arbiter:  arbiter,
		notifier: notifier,
		now:      now,
		settings: model.DefaultAlarmSettings(),
		snoozes:  make(map[string]int64),
	}

	alarms, err := store.ListAlarms()
	if err != nil {
		log.Error().Err(err).Msg("could not load alarms, starting empty")
	} else {
		s.alarms = alarms
	}

	var settings model.AlarmSettings
	if ok, err := store.GetState(db.StateKeyAlarmSettings, &settings); err == nil && ok {
		s.settings = settings
	}

	var ledger map[string]int64
	if ok, err := store.GetState(db.StateKeySnoozeLedger, &ledger); err == nil && ok && ledger != nil {
		known := make(map[string]bool, len(s.alarms))
		for _, a := range s.alarms {
			known[a.ID] = true
		}
		pruned := false
		for id := range ledger {
			// a delete whose ledger write failed can leave an orphaned deadline
			if !known[id] {
				delete(ledger, id)
				pruned = true
			}
		}
		s.snoozes = ledger
		if pruned {
			s.persistSnoozesLocked()
		}
	}

	return s
}

// Run drives the evaluation loop at 1 Hz until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Msg("alarm scheduler started")
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("alarm scheduler stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick evaluates every enabled alarm against the current time.
//
// Order of checks per alarm: a live snooze deadline suppresses it outright; an
// expired deadline is itself the trigger and fires regardless of time/day
// match, at most one such fire per tick; otherwise an exact HH:MM match plus
// day filter fires it. Nothing fires while another alarm is ringing: a
// snooze-expired alarm waits for the ringing one to be dismissed, a plain
// time-match whose minute passes while something else rings is dropped.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	nowMillis := now.UnixMilli()
	clock := now.Format("15:04")
	day := now.Weekday()

	for _, a := range s.alarms {
		if !a.Enabled {
			continue
		}

		if deadline, snoozed := s.snoozes[a.ID]; snoozed {
			if deadline > nowMillis {
				continue
			}
			if s.active != nil {
				// fires on a later tick, once the current ring is dismissed
				continue
			}
			delete(s.snoozes, a.ID)
			s.persistSnoozesLocked()
			s.fireLocked(a)
			return
		}

		if s.active == nil && a.Time == clock && a.RepeatsOn(day) {
			s.fireLocked(a)
		}
	}
}

// fireLocked transitions an alarm into the ringing state: records it as
// active, claims the audio arbiter with a looping ring session, and publishes
// the notification event when enabled in settings.
func (s *Scheduler) fireLocked(a model.Alarm) {
	ringing := a
	s.active = &ringing

	log.Info().Str("alarm_id", a.ID).Str("name", a.Name).Str("sound", string(a.Sound)).Msg("alarm firing")

	s.arbiter.Register(RingHandle, func() {
		// another component claimed playback; the ring sound stops but the
		// alarm stays active until explicitly dismissed
		log.Debug().Str("alarm_id", a.ID).Msg("ring audio evicted by another playback session")
	})

	if s.notifier != nil && s.settings.NotificationsEnabled {
		s.notifier.AlarmRing(a, s.settings.VibrationEnabled)
	}
}

// AddAlarm validates and persists a user-defined alarm. Duplicates in
// time/day are permitted.
func (s *Scheduler) AddAlarm(a model.Alarm) (model.Alarm, error) {
	if a.Name == "" || !prayer.ValidClock(a.Time) {
		return model.Alarm{}, ErrInvalidAlarm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = uuid.NewString()
	if a.Type == "" {
		a.Type = model.AlarmTypeCustom
	}
	if !model.ValidSound(a.Sound) {
		a.Sound = s.settings.DefaultSound
	}
	if a.SnoozeMinutes <= 0 {
		a.SnoozeMinutes = s.settings.DefaultSnoozeMinutes
	}

	stored, err := s.store.CreateAlarm(a)
	if err != nil {
		log.Error().Err(err).Msg("alarm not persisted, keeping in-memory copy for this session")
		stored = a
		stored.CreatedAt = s.now()
		stored.UpdatedAt = stored.CreatedAt
	}
	s.alarms = append(s.alarms, stored)
	return stored, nil
}

// Update carries the mutable alarm fields; nil pointers leave the stored
// value untouched.
type Update struct {
	Name              *string
	Time              *string
	Enabled           *bool
	Sound             *model.AlarmSound
	RepeatDays        *[]int64
	SnoozeMinutes     *int
	BeforeFajrMinutes *int
}

// UpdateAlarm merges upd into the alarm. An unknown id is a silent no-op.
func (s *Scheduler) UpdateAlarm(id string, upd Update) error {
	if upd.Time != nil && !prayer.ValidClock(*upd.Time) {
		return ErrInvalidAlarm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}

	a := s.alarms[idx]
	if upd.Name != nil && *upd.Name != "" {
		a.Name = *upd.Name
	}
	if upd.Time != nil {
		a.Time = *upd.Time
	}
	if upd.Enabled != nil {
		a.Enabled = *upd.Enabled
		if !a.Enabled {
			s.clearSnoozeLocked(id)
		}
	}
	if upd.Sound != nil && model.ValidSound(*upd.Sound) {
		a.Sound = *upd.Sound
	}
	if upd.RepeatDays != nil {
		a.RepeatDays = *upd.RepeatDays
	}
	if upd.SnoozeMinutes != nil && *upd.SnoozeMinutes > 0 {
		a.SnoozeMinutes = *upd.SnoozeMinutes
	}
	if upd.BeforeFajrMinutes != nil {
		a.BeforeFajrMinutes = upd.BeforeFajrMinutes
	}
	a.UpdatedAt = s.now()

	s.alarms[idx] = a
	if err := s.store.UpdateAlarm(a); err != nil {
		log.Error().Err(err).Str("alarm_id", id).Msg("alarm update not persisted")
	}
	return nil
}

// DeleteAlarm removes the alarm, its snooze-ledger entry, and stops it if it
// is the one currently ringing. A deleted alarm can never ghost-fire from a
// stale snooze deadline.
func (s *Scheduler) DeleteAlarm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}

	if s.active != nil && s.active.ID == id {
		s.stopRingingLocked()
	}
	s.clearSnoozeLocked(id)

	s.alarms = append(s.alarms[:idx], s.alarms[idx+1:]...)
	if err := s.store.DeleteAlarm(id); err != nil {
		log.Error().Err(err).Str("alarm_id", id).Msg("alarm delete not persisted")
	}
}

// ToggleAlarm flips enabled. Disabling clears any pending snooze deadline so
// the alarm cannot resurrect while off.
func (s *Scheduler) ToggleAlarm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}

	s.alarms[idx].Enabled = !s.alarms[idx].Enabled
	s.alarms[idx].UpdatedAt = s.now()
	if !s.alarms[idx].Enabled {
		s.clearSnoozeLocked(id)
	}
	if err := s.store.UpdateAlarm(s.alarms[idx]); err != nil {
		log.Error().Err(err).Str("alarm_id", id).Msg("alarm toggle not persisted")
	}
}

// DismissAlarm stops the ringing alarm. Calling it when nothing is ringing is
// a no-op.
func (s *Scheduler) DismissAlarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return
	}
	id := s.active.ID
	s.stopRingingLocked()

	if s.notifier != nil {
		s.notifier.AlarmDismissed(id)
	}
	log.Info().Str("alarm_id", id).Msg("alarm dismissed")
}

// SnoozeAlarm defers the ringing alarm by the override, the alarm's own
// snooze interval, or the settings default, in that order, and stops the
// ring. The deadline is persisted so a snoozed alarm survives a restart.
func (s *Scheduler) SnoozeAlarm(minutesOverride *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return ErrNotRinging
	}

	minutes := s.settings.DefaultSnoozeMinutes
	if s.active.SnoozeMinutes > 0 {
		minutes = s.active.SnoozeMinutes
	}
	if minutesOverride != nil && *minutesOverride > 0 {
		minutes = *minutesOverride
	}

	id := s.active.ID
	deadline := s.now().Add(time.Duration(minutes) * time.Minute).UnixMilli()
	s.snoozes[id] = deadline
	s.persistSnoozesLocked()

	s.stopRingingLocked()
	log.Info().Str("alarm_id", id).Int("minutes", minutes).Msg("alarm snoozed")
	return nil
}

// RequestNotificationPermission records that the client granted notification
// delivery and enables it in settings. The OS-level permission prompt lives in
// the client; the server only tracks the outcome.
func (s *Scheduler) RequestNotificationPermission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.NotificationsEnabled = true
	s.persistSettingsLocked()
	return true
}

// Settings returns a copy of the current settings record.
func (s *Scheduler) Settings() model.AlarmSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings record, re-applying defaults to
// out-of-range fields.
func (s *Scheduler) UpdateSettings(settings model.AlarmSettings) model.AlarmSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.DefaultSnoozeMinutes <= 0 {
		settings.DefaultSnoozeMinutes = model.DefaultAlarmSettings().DefaultSnoozeMinutes
	}
	if !model.ValidSound(settings.DefaultSound) {
		settings.DefaultSound = model.DefaultAlarmSettings().DefaultSound
	}
	s.settings = settings
	s.persistSettingsLocked()
	return s.settings
}

// Alarms returns a copy of the alarm list in stored (evaluation) order.
func (s *Scheduler) Alarms() []model.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Alarm, len(s.alarms))
	copy(out, s.alarms)
	return out
}

// Active returns the ringing alarm, or nil.
func (s *Scheduler) Active() *model.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	a := *s.active
	return &a
}

// Snoozed reports the alarm's pending snooze deadline, if any.
func (s *Scheduler) Snoozed(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	millis, ok := s.snoozes[id]
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (s *Scheduler) stopRingingLocked() {
	s.arbiter.Unregister(RingHandle)
	s.active = nil
}

func (s *Scheduler) clearSnoozeLocked(id string) {
	if _, ok := s.snoozes[id]; !ok {
		return
	}
	delete(s.snoozes, id)
	s.persistSnoozesLocked()
}

func (s *Scheduler) indexLocked(id string) int {
	for i, a := range s.alarms {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Scheduler) persistSnoozesLocked() {
	if err := s.store.SetState(db.StateKeySnoozeLedger, s.snoozes); err != nil {
		log.Error().Err(err).Msg("snooze ledger not persisted")
	}
}

func (s *Scheduler) persistSettingsLocked() {
	if err := s.store.SetState(db.StateKeyAlarmSettings, s.settings); err != nil {
		log.Error().Err(err).Msg("alarm settings not persisted")
	}
}
