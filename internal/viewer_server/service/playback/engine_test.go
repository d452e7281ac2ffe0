package playback

import (
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

// manualScheduler lets tests fire scheduled advances deterministically.
type manualScheduler struct {
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func (m *manualScheduler) Schedule(d time.Duration, fn func()) func() {
	task := &manualTask{delay: d, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() {
		task.cancelled = true
	}
}

func (m *manualScheduler) fire(t *testing.T) {
	t.Helper()
	for _, task := range m.tasks {
		if !task.cancelled && !task.fired {
			task.fired = true
			task.fn()
			return
		}
	}
	t.Fatal("no pending task to fire")
}

func (m *manualScheduler) pendingCount() int {
	n := 0
	for _, task := range m.tasks {
		if !task.cancelled && !task.fired {
			n++
		}
	}
	return n
}

type visit struct {
	function string
	position int
	total    int
}

func newTestEngine(functions ...string) (*Engine, *manualScheduler, *[]visit) {
	events := make([]model.Event, len(functions))
	for i, fn := range functions {
		events[i] = model.Event{CallID: string(rune('a' + i)), Function: fn}
	}
	sched := &manualScheduler{}
	visits := &[]visit{}
	engine := NewEngine(events, sched, func(event model.Event, position, total int) {
		*visits = append(*visits, visit{function: event.Function, position: position, total: total})
	})
	return engine, sched, visits
}

func TestStepBoundaries(t *testing.T) {
	t.Run("StepTo clamps into range and emits synchronously", func(t *testing.T) {
		engine, _, visits := newTestEngine("a", "b", "c")

		engine.StepTo(99)
		require.Len(t, *visits, 1)
		assert.Equal(t, visit{function: "c", position: 2, total: 3}, (*visits)[0])

		engine.StepTo(-5)
		require.Len(t, *visits, 2)
		assert.Equal(t, 0, (*visits)[1].position)
	})

	t.Run("StepNext from Idle moves to position 0", func(t *testing.T) {
		engine, _, visits := newTestEngine("a", "b")
		engine.StepNext()
		require.Len(t, *visits, 1)
		assert.Equal(t, 0, (*visits)[0].position)
	})

	t.Run("StepNext at the last position is a no-op", func(t *testing.T) {
		engine, _, visits := newTestEngine("a", "b")
		engine.StepTo(1)
		engine.StepNext()
		assert.Len(t, *visits, 1)
	})

	t.Run("StepPrev at position 0 stays at 0 without re-emitting", func(t *testing.T) {
		engine, _, visits := newTestEngine("a", "b")
		engine.StepTo(0)
		engine.StepPrev()
		assert.Len(t, *visits, 1)
	})

	t.Run("StepPrev from Idle moves to position 0", func(t *testing.T) {
		engine, _, visits := newTestEngine("a", "b")
		engine.StepPrev()
		require.Len(t, *visits, 1)
		assert.Equal(t, 0, (*visits)[0].position)
	})

	t.Run("All steps are no-ops on an empty timeline", func(t *testing.T) {
		engine, _, visits := newTestEngine()
		engine.StepTo(0)
		engine.StepNext()
		engine.StepPrev()
		engine.Play()
		engine.Pause()
		assert.Empty(t, *visits)
		assert.False(t, engine.Status().Playing)
	})
}

func TestPlayVisitsAllPositionsOnce(t *testing.T) {
	engine, sched, visits := newTestEngine("a", "b", "c")

	engine.Play()
	require.Len(t, *visits, 1, "play from Idle advances to position 0 immediately")
	assert.Equal(t, 1, sched.pendingCount())

	sched.fire(t)
	sched.fire(t)
	require.Len(t, *visits, 3)
	for i, v := range *visits {
		assert.Equal(t, i, v.position)
	}

	// The advance past the end stops playback without emitting.
	sched.fire(t)
	assert.Len(t, *visits, 3)
	assert.False(t, engine.Status().Playing)
	assert.Equal(t, 0, sched.pendingCount())
	assert.Equal(t, 2, engine.Status().Position, "stops positioned at the last event")
}

func TestPlayIsNoOpWhileAlreadyPlaying(t *testing.T) {
	engine, sched, visits := newTestEngine("a", "b", "c")
	engine.Play()
	engine.Play()
	assert.Len(t, *visits, 1)
	assert.Equal(t, 1, sched.pendingCount(), "at most one advance may be pending")
}

func TestPlayFromMiddleSchedulesWithoutImmediateStep(t *testing.T) {
	engine, sched, visits := newTestEngine("a", "b", "c")
	engine.StepTo(0)
	require.Len(t, *visits, 1)

	engine.Play()
	assert.Len(t, *visits, 1, "no immediate advance when resuming mid-timeline")
	assert.Equal(t, 1, sched.pendingCount())

	sched.fire(t)
	require.Len(t, *visits, 2)
	assert.Equal(t, 1, (*visits)[1].position)
}

func TestPlayFromEndRestarts(t *testing.T) {
	engine, _, visits := newTestEngine("a", "b", "c")
	engine.StepTo(2)
	engine.Play()
	require.Len(t, *visits, 2)
	assert.Equal(t, 0, (*visits)[1].position)
}

func TestPause(t *testing.T) {
	t.Run("Cancels the pending advance", func(t *testing.T) {
		engine, sched, visits := newTestEngine("a", "b", "c")
		engine.Play()
		engine.Pause()
		assert.False(t, engine.Status().Playing)
		assert.Equal(t, 0, sched.pendingCount())
		assert.Len(t, *visits, 1)
	})

	t.Run("Is idempotent", func(t *testing.T) {
		engine, _, _ := newTestEngine("a", "b")
		engine.Pause()
		engine.Pause()
		assert.False(t, engine.Status().Playing)
	})

	t.Run("A task that already fired cannot advance after pause", func(t *testing.T) {
		engine, sched, visits := newTestEngine("a", "b", "c")
		engine.Play()
		require.Equal(t, 1, sched.pendingCount())
		stale := sched.tasks[len(sched.tasks)-1]

		engine.Pause()
		// Simulate the timer having fired concurrently with Pause: the
		// stale generation must make it a no-op.
		stale.fn()
		assert.Len(t, *visits, 1)
		assert.False(t, engine.Status().Playing)
	})
}

func TestSetFilter(t *testing.T) {
	t.Run("Positions and counts are relative to the filtered view", func(t *testing.T) {
		engine, _, visits := newTestEngine("add", "multiply", "add")
		engine.SetFilter("add")

		engine.StepTo(1)
		require.Len(t, *visits, 1)
		assert.Equal(t, visit{function: "add", position: 1, total: 2}, (*visits)[0])

		engine.SetFilter("")
		assert.Equal(t, Status{Position: 2, Total: 3, Playing: false, Filter: "", Speed: 1},
			engine.Status(), "absolute position survives filter changes")
	})

	t.Run("Filtering out the current position pauses playback", func(t *testing.T) {
		engine, sched, _ := newTestEngine("add", "multiply", "add")
		engine.Play()
		engine.SetFilter("multiply")
		assert.False(t, engine.Status().Playing)
		assert.Equal(t, 0, sched.pendingCount())
	})

	t.Run("Playback continues when the current position stays visible", func(t *testing.T) {
		engine, sched, visits := newTestEngine("add", "multiply", "add")
		engine.Play()
		engine.SetFilter("add")
		assert.True(t, engine.Status().Playing)

		sched.fire(t)
		require.Len(t, *visits, 2)
		assert.Equal(t, visit{function: "add", position: 1, total: 2}, (*visits)[1])
	})
}

func TestSetSpeed(t *testing.T) {
	t.Run("Snaps to the allowed multipliers", func(t *testing.T) {
		assert.Equal(t, 0.25, ClampSpeed(0.1))
		assert.Equal(t, 1.0, ClampSpeed(1))
		assert.Equal(t, 4.0, ClampSpeed(100))
	})

	t.Run("Scales the inter-step delay", func(t *testing.T) {
		engine, sched, _ := newTestEngine("a", "b", "c")
		engine.SetSpeed(2)
		engine.Play()
		require.Equal(t, 1, sched.pendingCount())
		last := sched.tasks[len(sched.tasks)-1]
		assert.Equal(t, BaseDelay/2, last.delay)
	})

	t.Run("Reschedules the pending advance while playing", func(t *testing.T) {
		engine, sched, _ := newTestEngine("a", "b", "c")
		engine.Play()
		engine.SetSpeed(4)
		assert.Equal(t, 1, sched.pendingCount())
		last := sched.tasks[len(sched.tasks)-1]
		assert.Equal(t, BaseDelay/4, last.delay)
	})
}
