package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layl-app/layl/internal/alarm"
	"github.com/layl-app/layl/internal/audio"
	"github.com/layl-app/layl/internal/http/api"
	"github.com/layl-app/layl/internal/model"
	"github.com/layl-app/layl/internal/prayer"
)

// fakeStore keeps everything in memory and satisfies db.Store.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	alarms []model.Alarm
	state  map[string]json.RawMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: make(map[string]json.RawMessage)}
}

func (f *fakeStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	return 1, nil
}
func (f *fakeStore) GetUserByEmail(email string) (*model.User, error) { return nil, nil }
func (f *fakeStore) GetUserByID(id int) (*model.User, error)          { return nil, nil }
func (f *fakeStore) UpdateUserProfile(id int, email string, name *string) error {
	return nil
}

func (f *fakeStore) CreateAlarm(a model.Alarm) (model.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	f.alarms = append(f.alarms, a)
	return a, nil
}

func (f *fakeStore) GetAlarmByID(id string) (model.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alarms {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Alarm{}, fmt.Errorf("no alarm %s", id)
}

func (f *fakeStore) ListAlarms() ([]model.Alarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Alarm, len(f.alarms))
	copy(out, f.alarms)
	return out, nil
}

func (f *fakeStore) UpdateAlarm(a model.Alarm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alarms {
		if f.alarms[i].ID == a.ID {
			f.alarms[i] = a
			return nil
		}
	}
	return fmt.Errorf("no alarm %s", a.ID)
}

func (f *fakeStore) DeleteAlarm(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.alarms {
		if f.alarms[i].ID == id {
			f.alarms = append(f.alarms[:i], f.alarms[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeStore) GetState(key string, out any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.state[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeStore) SetState(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[key] = raw
	return nil
}

type fixture struct {
	router *gin.Engine
	sched  *alarm.Scheduler
	store  *fakeStore
	now    time.Time
}

func newFixture(t *testing.T, prayers *prayer.Service) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		store: newFakeStore(),
		now:   time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC),
	}
	f.sched = alarm.New(f.store, audio.NewArbiter(), nil, func() time.Time { return f.now })

	f.router = gin.New()
	api.MountGroup(f.router, api.GroupConfig{
		Prefix: "/api",
		Middleware: []gin.HandlerFunc{func(c *gin.Context) {
			c.Set("currentUser", &model.User{ID: 1, Email: "test@example.com"})
		}},
	}, AlarmsModule(f.sched, prayers, f.store))
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateAndListAlarms(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/alarms", gin.H{
		"name": "Morning reading",
		"time": "06:30",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created model.Alarm
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.AlarmTypeCustom, created.Type)
	assert.Equal(t, model.SoundAdhan, created.Sound) // settings default
	assert.True(t, created.Enabled)

	w = f.do(t, http.MethodGet, "/api/alarms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Alarm
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCreateAlarmRejectsInvalidTime(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/alarms", gin.H{
		"name": "Bad",
		"time": "25:99",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAlarmRejectsInvalidTime(t *testing.T) {
	f := newFixture(t, nil)

	created, err := f.sched.AddAlarm(model.Alarm{Name: "A", Time: "07:00", Enabled: true})
	require.NoError(t, err)

	w := f.do(t, http.MethodPut, "/api/alarms/"+created.ID, gin.H{"time": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleAndDeleteAlarm(t *testing.T) {
	f := newFixture(t, nil)

	created, err := f.sched.AddAlarm(model.Alarm{Name: "A", Time: "07:00", Enabled: true})
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/alarms/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.sched.Alarms()[0].Enabled)

	w = f.do(t, http.MethodDelete, "/api/alarms/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.sched.Alarms())
}

func TestSnoozeWithoutRingingConflicts(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/alarms/snooze", gin.H{"minutes": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRingingAndDismissRoundTrip(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.sched.AddAlarm(model.Alarm{Name: "A", Time: "06:00", Enabled: true})
	require.NoError(t, err)
	f.sched.Tick()

	w := f.do(t, http.MethodGet, "/api/alarms/ringing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ringing struct {
		Ringing bool         `json:"ringing"`
		Alarm   *model.Alarm `json:"alarm"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ringing))
	assert.True(t, ringing.Ringing)
	require.NotNil(t, ringing.Alarm)
	assert.Equal(t, "A", ringing.Alarm.Name)

	w = f.do(t, http.MethodPost, "/api/alarms/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/alarms/ringing", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ringing))
	assert.False(t, ringing.Ringing)
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/alarms/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings model.AlarmSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, 5, settings.DefaultSnoozeMinutes)

	w = f.do(t, http.MethodPut, "/api/alarms/settings", gin.H{
		"default_snooze_minutes": 10,
		"default_sound":          "bell",
		"notifications_enabled":  true,
		"vibration_enabled":      false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, 10, settings.DefaultSnoozeMinutes)
	assert.Equal(t, model.SoundBell, settings.DefaultSound)
	assert.True(t, settings.NotificationsEnabled)
}

func TestNotificationPermission(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/notifications/permission", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.sched.Settings().NotificationsEnabled)
}

// aladhanStub mimics the Al Adhan timings envelope.
func aladhanStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":200,"status":"OK","data":{"timings":{
			"Fajr":"05:10","Sunrise":"06:25","Dhuhr":"12:30","Asr":"15:45",
			"Maghrib":"18:20","Isha":"19:50"}}}`)
	}))
}

func TestPrayerQuickAdd(t *testing.T) {
	stub := aladhanStub(t)
	defer stub.Close()

	prayers := prayer.NewService(prayer.NewClientWithBaseURL(stub.URL))
	f := newFixture(t, prayers)

	w := f.do(t, http.MethodPost, "/api/alarms/prayer", gin.H{"type": "fajr"})
	require.Equal(t, http.StatusOK, w.Code)

	var created model.Alarm
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Fajr Prayer", created.Name)
	assert.Equal(t, "05:10", created.Time)
	assert.Equal(t, model.AlarmTypeFajr, created.Type)
	assert.Equal(t, model.SoundAdhan, created.Sound)
	assert.Len(t, created.RepeatDays, 7)
}

func TestPrayerQuickAddRejectsCustomType(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/alarms/prayer", gin.H{"type": "custom"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileProposeAndApply(t *testing.T) {
	stub := aladhanStub(t)
	defer stub.Close()

	prayers := prayer.NewService(prayer.NewClientWithBaseURL(stub.URL))
	f := newFixture(t, prayers)

	// stored with a stale time, as if the location just changed
	created, err := f.sched.AddAlarm(model.Alarm{
		Name: "Fajr Prayer", Time: "04:45", Enabled: true, Type: model.AlarmTypeFajr,
	})
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/api/alarms/reconcile/propose", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var proposals struct {
		Proposals []alarm.ReconcileProposal `json:"proposals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &proposals))
	require.Len(t, proposals.Proposals, 1)
	assert.Equal(t, "04:45", proposals.Proposals[0].OldTime)
	assert.Equal(t, "05:10", proposals.Proposals[0].NewTime)

	w = f.do(t, http.MethodPost, "/api/alarms/reconcile/apply", gin.H{
		"alarm_ids": []string{created.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var applied struct {
		Applied int `json:"applied"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &applied))
	assert.Equal(t, 1, applied.Applied)
	assert.Equal(t, "05:10", f.sched.Alarms()[0].Time)
}
