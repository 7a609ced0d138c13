package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layl-app/layl/internal/alarm"
	"github.com/layl-app/layl/internal/db"
	"github.com/layl-app/layl/internal/http/api"
	"github.com/layl-app/layl/internal/http/api/alarms/packets"
	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/prayer"
)

// AlarmsModule mounts the alarm CRUD, ring-control and reconciliation
// endpoints (JWT required).
func AlarmsModule(sched *alarm.Scheduler, prayers *prayer.Service, store db.Store) api.Module {
	ctl := &alarmManager{sched: sched, prayers: prayers, store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/alarms", ctl.listAlarms)
		c.POST("/alarms", ctl.createAlarm)
		c.GET("/alarms/upcoming", ctl.upcomingAlarms)
		c.GET("/alarms/next", ctl.nextAlarm)
		c.GET("/alarms/ringing", ctl.ringingAlarm)
		c.POST("/alarms/prayer", ctl.createPrayerAlarm)
		c.POST("/alarms/snooze", ctl.snoozeAlarm)
		c.POST("/alarms/dismiss", ctl.dismissAlarm)
		c.GET("/alarms/settings", ctl.getSettings)
		c.PUT("/alarms/settings", ctl.updateSettings)
		c.POST("/alarms/reconcile/propose", ctl.proposeReconcile)
		c.POST("/alarms/reconcile/apply", ctl.applyReconcile)
		c.PUT("/alarms/:id", ctl.updateAlarm)
		c.DELETE("/alarms/:id", ctl.deleteAlarm)
		c.POST("/alarms/:id/toggle", ctl.toggleAlarm)
		c.POST("/notifications/permission", ctl.requestNotificationPermission)
	})
}

type alarmManager struct {
	sched   *alarm.Scheduler
	prayers *prayer.Service
	store   db.Store
}

// storedLocation reads the saved location, falling back to the default when
// none has been set yet.
func (m *alarmManager) storedLocation() model.Location {
	var loc model.Location
	if ok, err := m.store.GetState(db.StateKeyLocation, &loc); err == nil && ok {
		return loc
	}
	return prayer.FallbackLocation
}

func (m *alarmManager) todayTimes(ctx *gin.Context) *model.PrayerTimes {
	loc := m.storedLocation()
	return m.prayers.TimesFor(ctx.Request.Context(), time.Now(), loc.Latitude, loc.Longitude)
}

// GET /api/alarms
func (m *alarmManager) listAlarms(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	return m.sched.Alarms(), nil
}

// POST /api/alarms
func (m *alarmManager) createAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.CreateAlarmRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	a := model.Alarm{
		Name:          request.Name,
		Time:          request.Time,
		Enabled:       true,
		Type:          model.AlarmTypeCustom,
		Sound:         request.Sound,
		RepeatDays:    request.RepeatDays,
		SnoozeMinutes: request.SnoozeMinutes,
	}
	if request.Enabled != nil {
		a.Enabled = *request.Enabled
	}

	created, err := m.sched.AddAlarm(a)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return created, nil
}

// POST /api/alarms/prayer
func (m *alarmManager) createPrayerAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.CreatePrayerAlarmRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !request.Type.PrayerLinked() {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "type must be a prayer-linked alarm type"}
	}

	pt := m.todayTimes(ctx)
	if pt == nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}

	beforeMinutes := 30
	if request.BeforeFajrMinutes != nil && *request.BeforeFajrMinutes > 0 {
		beforeMinutes = *request.BeforeFajrMinutes
	}
	timeStr := alarm.PrayerAlarmTime(request.Type, *pt, beforeMinutes)
	if timeStr == "" {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "could not derive alarm time"}
	}

	created, err := m.sched.CreatePrayerAlarm(request.Type, timeStr, &beforeMinutes)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return created, nil
}

// PUT /api/alarms/:id
func (m *alarmManager) updateAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.UpdateAlarmRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	err := m.sched.UpdateAlarm(ctx.Param("id"), alarm.Update{
		Name:              request.Name,
		Time:              request.Time,
		Enabled:           request.Enabled,
		Sound:             request.Sound,
		RepeatDays:        request.RepeatDays,
		SnoozeMinutes:     request.SnoozeMinutes,
		BeforeFajrMinutes: request.BeforeFajrMinutes,
	})
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return gin.H{"status": "updated"}, nil
}

// DELETE /api/alarms/:id
func (m *alarmManager) deleteAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	m.sched.DeleteAlarm(ctx.Param("id"))
	return gin.H{"status": "deleted"}, nil
}

// POST /api/alarms/:id/toggle
func (m *alarmManager) toggleAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	m.sched.ToggleAlarm(ctx.Param("id"))
	return gin.H{"status": "toggled"}, nil
}

// GET /api/alarms/upcoming
func (m *alarmManager) upcomingAlarms(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	return m.sched.UpcomingAlarms(), nil
}

// GET /api/alarms/next
func (m *alarmManager) nextAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	next := m.sched.NextAlarm()
	if next == nil {
		return gin.H{"next": nil}, nil
	}
	return gin.H{"next": next}, nil
}

// GET /api/alarms/ringing
func (m *alarmManager) ringingAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	active := m.sched.Active()
	resp := packets.RingingResponse{Ringing: active != nil, Alarm: active}
	if active != nil {
		if until, ok := m.sched.Snoozed(active.ID); ok {
			formatted := until.Format(time.RFC3339)
			resp.SnoozedUntil = &formatted
		}
	}
	return resp, nil
}

// POST /api/alarms/snooze
func (m *alarmManager) snoozeAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.SnoozeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && ctx.Request.ContentLength > 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := m.sched.SnoozeAlarm(request.Minutes); err != nil {
		if errors.Is(err, alarm.ErrNotRinging) {
			return nil, &api.APIError{Code: http.StatusConflict, Message: err.Error()}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
	return gin.H{"status": "snoozed"}, nil
}

// POST /api/alarms/dismiss
func (m *alarmManager) dismissAlarm(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	m.sched.DismissAlarm()
	return gin.H{"status": "dismissed"}, nil
}

// GET /api/alarms/settings
func (m *alarmManager) getSettings(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	return m.sched.Settings(), nil
}

// PUT /api/alarms/settings
func (m *alarmManager) updateSettings(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	updated := m.sched.UpdateSettings(model.AlarmSettings{
		DefaultSnoozeMinutes: request.DefaultSnoozeMinutes,
		DefaultSound:         request.DefaultSound,
		NotificationsEnabled: request.NotificationsEnabled,
		VibrationEnabled:     request.VibrationEnabled,
	})
	return updated, nil
}

// POST /api/alarms/reconcile/propose
func (m *alarmManager) proposeReconcile(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	pt := m.todayTimes(ctx)
	if pt == nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}
	return packets.ReconcileProposalsResponse{Proposals: m.sched.ProposeReconciliation(*pt)}, nil
}

// POST /api/alarms/reconcile/apply
func (m *alarmManager) applyReconcile(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var request packets.ApplyReconcileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	pt := m.todayTimes(ctx)
	if pt == nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer times unavailable"}
	}
	applied := m.sched.ApplyReconciliation(request.AlarmIDs, *pt)
	return packets.ReconcileAppliedResponse{Applied: applied}, nil
}

// POST /api/notifications/permission
func (m *alarmManager) requestNotificationPermission(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	granted := m.sched.RequestNotificationPermission()
	return gin.H{"granted": granted}, nil
}
