// Whole-value JSON state records: alarm settings, the snooze ledger, the
// stored location and similar single-row blobs live in app_state rather than
// getting a table each.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

// Well-known app_state keys.
const (
	StateKeyAlarmSettings = "alarm_settings"
	StateKeySnoozeLedger  = "snooze_ledger"
	StateKeyLocation      = "location"
	StateKeyTahajjud      = "tahajjud_settings"
	StateKeyQailulah      = "qailulah_settings"
)

// GetState reads the JSON value stored under key into out. A missing key
// returns (false, nil). A value that no longer unmarshals is treated the same
// as a missing key so that callers re-initialize with defaults instead of
// failing on a corrupted record.
func GetState(key string, out any) (bool, error) {
	var raw []byte
	err := DB.Get(&raw, `SELECT value FROM app_state WHERE key = $1;`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		log.Error().Err(err).Str("key", key).Msg("GetState failed")
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupted state record, treating as absent")
		return false, nil
	}
	return true, nil
}

// SetState upserts the JSON encoding of value under key.
func SetState(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("SetState marshal failed")
		return err
	}
	_, err = DB.Exec(`
	INSERT INTO app_state (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now();`, key, raw)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("SetState failed")
	}
	return err
}

// DeleteState removes a state record. Missing keys are not an error.
func DeleteState(key string) error {
	_, err := DB.Exec(`DELETE FROM app_state WHERE key = $1;`, key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("DeleteState failed")
	}
	return err
}
