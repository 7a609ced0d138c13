package alarm

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/layl-app/layl/internal/model"
)

// memStore is an in-memory Store for scheduler tests. Setting failWrites
// simulates quota exhaustion / database outage on every write.
type memStore struct {
	mu         sync.Mutex
	alarms     []model.Alarm
	state      map[string]json.RawMessage
	failWrites bool
}

func newMemStore() *memStore {
	return &memStore{state: make(map[string]json.RawMessage)}
}

var errWriteFailed = errors.New("simulated write failure")

func (m *memStore) CreateAlarm(a model.Alarm) (model.Alarm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return model.Alarm{}, errWriteFailed
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.alarms = append(m.alarms, a)
	return a, nil
}

func (m *memStore) ListAlarms() ([]model.Alarm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Alarm, len(m.alarms))
	copy(out, m.alarms)
	return out, nil
}

func (m *memStore) UpdateAlarm(a model.Alarm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errWriteFailed
	}
	for i := range m.alarms {
		if m.alarms[i].ID == a.ID {
			m.alarms[i] = a
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memStore) DeleteAlarm(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errWriteFailed
	}
	for i := range m.alarms {
		if m.alarms[i].ID == id {
			m.alarms = append(m.alarms[:i], m.alarms[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) GetState(key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.state[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memStore) SetState(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errWriteFailed
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.state[key] = raw
	return nil
}

// testClock is a controllable time source.
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{current: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// fakeNotifier records ring/dismiss events.
type fakeNotifier struct {
	mu        sync.Mutex
	rings     []model.Alarm
	vibrates  []bool
	dismissed []string
}

func (f *fakeNotifier) AlarmRing(a model.Alarm, vibrate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rings = append(f.rings, a)
	f.vibrates = append(f.vibrates, vibrate)
}

func (f *fakeNotifier) AlarmDismissed(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed = append(f.dismissed, id)
}

func (f *fakeNotifier) ringCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rings)
}
