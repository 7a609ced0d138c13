package packets

import (
	"github.com/layl-app/layl/internal/alarm"
	"github.com/layl-app/layl/internal/model"
)

// RingingResponse reports the currently ringing alarm, if any, and the snooze
// deadline when the alarm was deferred.
type RingingResponse struct {
	Ringing      bool         `json:"ringing"`
	Alarm        *model.Alarm `json:"alarm,omitempty"`
	SnoozedUntil *string      `json:"snoozed_until,omitempty"` // RFC3339
}

type ReconcileProposalsResponse struct {
	Proposals []alarm.ReconcileProposal `json:"proposals"`
}

type ReconcileAppliedResponse struct {
	Applied int `json:"applied"`
}
