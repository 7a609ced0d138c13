package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/layl-app/layl/internal/model"
)

// inserts a new alarm row. The caller is expected to have assigned the id.
func CreateAlarm(a model.Alarm) (model.Alarm, error) {
	var out model.Alarm
	const q = `
	INSERT INTO alarms
	  (id, name, time, enabled, type, sound, repeat_days, snooze_minutes, before_fajr_minutes, created_at, updated_at)
	VALUES
	  ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
	RETURNING id, name, time, enabled, type, sound, repeat_days, snooze_minutes, before_fajr_minutes, created_at, updated_at;`
	if err := DB.Get(&out, q,
		a.ID, a.Name, a.Time, a.Enabled, a.Type, a.Sound,
		a.RepeatDays, a.SnoozeMinutes, a.BeforeFajrMinutes,
	); err != nil {
		log.Error().Err(err).Msg("CreateAlarm failed")
		return model.Alarm{}, err
	}
	return out, nil
}

// fetches an alarm by id. Returns sql.ErrNoRows if not found.
func GetAlarmByID(id string) (model.Alarm, error) {
	var a model.Alarm
	const q = `
	SELECT id, name, time, enabled, type, sound, repeat_days, snooze_minutes, before_fajr_minutes, created_at, updated_at
	  FROM alarms
	 WHERE id = $1;`
	err := DB.Get(&a, q, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Alarm{}, sql.ErrNoRows
		}
		log.Error().Err(err).Str("alarm_id", id).Msg("GetAlarmByID failed")
	}
	return a, err
}

// lists all alarms in creation order. The scheduler evaluates them in this order.
func ListAlarms() ([]model.Alarm, error) {
	var out []model.Alarm
	const q = `
	SELECT id, name, time, enabled, type, sound, repeat_days, snooze_minutes, before_fajr_minutes, created_at, updated_at
	  FROM alarms
	 ORDER BY created_at, id;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListAlarms failed")
		return nil, err
	}
	return out, nil
}

// writes back a full alarm record and bumps updated_at.
func UpdateAlarm(a model.Alarm) error {
	res, err := DB.Exec(`
	UPDATE alarms
	   SET name = $2,
	       time = $3,
	       enabled = $4,
	       type = $5,
	       sound = $6,
	       repeat_days = $7,
	       snooze_minutes = $8,
	       before_fajr_minutes = $9,
	       updated_at = now()
	 WHERE id = $1;`,
		a.ID, a.Name, a.Time, a.Enabled, a.Type, a.Sound,
		a.RepeatDays, a.SnoozeMinutes, a.BeforeFajrMinutes)
	if err != nil {
		log.Error().Err(err).Str("alarm_id", a.ID).Msg("UpdateAlarm failed")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeleteAlarm(id string) error {
	_, err := DB.Exec(`DELETE FROM alarms WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Str("alarm_id", id).Msg("DeleteAlarm failed")
	}
	return err
}
