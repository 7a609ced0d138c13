package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterEvictsPrevious(t *testing.T) {
	a := NewArbiter()

	stoppedA := 0
	stoppedB := 0

	a.Register("a", func() { stoppedA++ })
	assert.Equal(t, "a", a.Current())

	a.Register("b", func() { stoppedB++ })
	assert.Equal(t, "b", a.Current())
	assert.Equal(t, 1, stoppedA, "previous session's stop callback runs exactly once")
	assert.Equal(t, 0, stoppedB)

	a.Register("c", nil)
	assert.Equal(t, "c", a.Current())
	assert.Equal(t, 1, stoppedA)
	assert.Equal(t, 1, stoppedB)
}

func TestOnlyOneActiveAcrossSequence(t *testing.T) {
	a := NewArbiter()
	for _, h := range []string{"a", "b", "c", "a", "c"} {
		a.Register(h, nil)
		assert.Equal(t, h, a.Current())
	}
}

func TestReRegisterSameHandleDoesNotSelfEvict(t *testing.T) {
	a := NewArbiter()

	stopped := 0
	a.Register("a", func() { stopped++ })
	a.Register("a", func() { stopped++ })

	assert.Equal(t, "a", a.Current())
	assert.Equal(t, 0, stopped)
}

func TestUnregisterIsGraceful(t *testing.T) {
	a := NewArbiter()

	stopped := 0
	a.Register("a", func() { stopped++ })
	a.Unregister("a")

	assert.Equal(t, "", a.Current())
	assert.Equal(t, 0, stopped, "graceful stop must not invoke the callback")
}

func TestUnregisterStaleHandleIsNoop(t *testing.T) {
	a := NewArbiter()

	a.Register("a", nil)
	a.Register("b", nil)

	// "a" was already evicted; its late teardown must not disturb "b".
	a.Unregister("a")
	assert.Equal(t, "b", a.Current())

	// unknown handle on an empty arbiter
	a.StopAll()
	a.Unregister("ghost")
	assert.Equal(t, "", a.Current())
}

func TestStopAll(t *testing.T) {
	a := NewArbiter()

	stopped := 0
	a.Register("a", func() { stopped++ })
	a.StopAll()

	assert.Equal(t, "", a.Current())
	assert.Equal(t, 1, stopped)

	// idempotent when nothing is playing
	a.StopAll()
	assert.Equal(t, 1, stopped)
}

func TestStopCallbackMayReenter(t *testing.T) {
	a := NewArbiter()

	a.Register("a", func() {
		// component reacts to eviction by trying a graceful unregister
		a.Unregister("a")
	})
	a.Register("b", nil)

	assert.Equal(t, "b", a.Current())
}
