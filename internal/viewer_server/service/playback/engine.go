package playback

import (
	"github.com/reweave/reweave/internal/recorder/model"
	"math"
	"sync"
	"time"
)

// BaseDelay is the inter-step interval at 1x speed.
const BaseDelay = 1200 * time.Millisecond

// Speeds are the allowed playback speed multipliers.
var Speeds = []float64{0.25, 0.5, 1, 2, 4}

// ClampSpeed snaps an arbitrary multiplier to the nearest allowed speed.
func ClampSpeed(speed float64) float64 {
	best := Speeds[0]
	for _, s := range Speeds {
		if math.Abs(s-speed) < math.Abs(best-speed) {
			best = s
		}
	}
	return best
}

// Listener receives the current event synchronously whenever the playback
// position changes. Position and total are relative to the filtered view.
type Listener func(event model.Event, position, total int)

// Engine is the timeline state machine over one run's ordered events.
// Positions exposed to callers are indices into the currently visible
// (possibly filtered) view; internally the engine tracks the absolute
// index so filter changes never lose the current event.
//
// All operations are synchronous; at most one timed advance is pending at
// any moment, and Pause guarantees no advance fires after it returns.
type Engine struct {
	mu       sync.Mutex
	events   []model.Event
	visible  []int
	filter   string
	pos      int
	playing  bool
	speed    float64
	sched    Scheduler
	cancel   func()
	gen      uint64
	listener Listener
}

type emission struct {
	event    model.Event
	position int
	total    int
}

func NewEngine(events []model.Event, sched Scheduler, listener Listener) *Engine {
	e := &Engine{
		events:   events,
		pos:      -1,
		speed:    1,
		sched:    sched,
		listener: listener,
	}
	e.rebuildViewLocked()
	return e
}

// StepTo moves to view position j, clamped into range, and emits the event
// there. It does not change play/pause mode. No-op on an empty view.
func (e *Engine) StepTo(j int) {
	e.mu.Lock()
	if len(e.visible) == 0 {
		e.mu.Unlock()
		return
	}
	if j < 0 {
		j = 0
	}
	if j > len(e.visible)-1 {
		j = len(e.visible) - 1
	}
	e.pos = e.visible[j]
	em := emission{event: e.events[e.pos], position: j, total: len(e.visible)}
	e.mu.Unlock()
	e.emit(em)
}

// StepNext advances one view position; from Idle it moves to position 0.
// At the last position it is a no-op.
func (e *Engine) StepNext() {
	e.mu.Lock()
	v := e.viewPosLocked()
	last := len(e.visible) - 1
	e.mu.Unlock()
	if v < last {
		e.StepTo(v + 1)
	}
}

// StepPrev moves one view position back; from Idle it moves to position 0,
// and at position 0 it stays put without re-emitting.
func (e *Engine) StepPrev() {
	e.mu.Lock()
	v := e.viewPosLocked()
	n := len(e.visible)
	e.mu.Unlock()
	if v > 0 {
		e.StepTo(v - 1)
	} else if v < 0 && n > 0 {
		e.StepTo(0)
	}
}

// Play starts auto-advance. From Idle or the last position the timeline
// restarts: the position resets and the first event is emitted
// immediately. From any other position the next advance is scheduled after
// the current delay. Play while already playing is a no-op.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.playing || len(e.visible) == 0 {
		e.mu.Unlock()
		return
	}
	e.cancelPendingLocked()
	e.playing = true
	v := e.viewPosLocked()
	if v < 0 || v == len(e.visible)-1 {
		e.pos = -1
		em := e.advanceLocked()
		e.mu.Unlock()
		if em != nil {
			e.emit(*em)
		}
		return
	}
	e.scheduleLocked()
	e.mu.Unlock()
}

// Pause cancels any pending advance and holds the current position.
// Idempotent; once Pause returns no further advance can fire.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.cancelPendingLocked()
	e.playing = false
	e.mu.Unlock()
}

// SetFilter restricts the visible timeline to events of one function name;
// an empty name shows all events. If the current position falls out of the
// new view during playback, playback pauses; the absolute position is kept
// either way.
func (e *Engine) SetFilter(name string) {
	e.mu.Lock()
	e.filter = name
	e.rebuildViewLocked()
	if e.playing && e.viewPosLocked() < 0 {
		e.cancelPendingLocked()
		e.playing = false
	}
	e.mu.Unlock()
}

// SetSpeed snaps the multiplier to the allowed set. While playing, the
// pending advance is rescheduled with the new delay.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = ClampSpeed(speed)
	if e.playing {
		e.scheduleLocked()
	}
	e.mu.Unlock()
}

// Status describes the engine's externally visible state. Position is -1
// when Idle or when the current event is hidden by the filter.
type Status struct {
	Position int
	Total    int
	Playing  bool
	Filter   string
	Speed    float64
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Position: e.viewPosLocked(),
		Total:    len(e.visible),
		Playing:  e.playing,
		Filter:   e.filter,
		Speed:    e.speed,
	}
}

// Current returns the event at the current position, if any.
func (e *Engine) Current() (model.Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pos < 0 {
		return model.Event{}, false
	}
	return e.events[e.pos], true
}

// fire is the scheduled advance callback. A stale generation means the
// advance was cancelled after the timer fired but before it acquired the
// lock; it must do nothing.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.playing {
		e.mu.Unlock()
		return
	}
	e.cancel = nil
	em := e.advanceLocked()
	e.mu.Unlock()
	if em != nil {
		e.emit(*em)
	}
}

// advanceLocked moves to the next visible position and schedules the
// following advance. An advance past the end stops playback at the last
// position.
func (e *Engine) advanceLocked() *emission {
	next := e.viewPosLocked() + 1
	if next >= len(e.visible) {
		e.cancelPendingLocked()
		e.playing = false
		return nil
	}
	e.pos = e.visible[next]
	e.scheduleLocked()
	return &emission{event: e.events[e.pos], position: next, total: len(e.visible)}
}

func (e *Engine) scheduleLocked() {
	e.cancelPendingLocked()
	gen := e.gen
	delay := time.Duration(float64(BaseDelay) / e.speed)
	e.cancel = e.sched.Schedule(delay, func() {
		e.fire(gen)
	})
}

// cancelPendingLocked cancels the pending advance, if any, and bumps the
// generation so a concurrently firing task cannot act afterwards.
func (e *Engine) cancelPendingLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.gen++
}

func (e *Engine) rebuildViewLocked() {
	e.visible = e.visible[:0]
	for i, event := range e.events {
		if e.filter == "" || event.Function == e.filter {
			e.visible = append(e.visible, i)
		}
	}
}

func (e *Engine) viewPosLocked() int {
	if e.pos < 0 {
		return -1
	}
	for i, abs := range e.visible {
		if abs == e.pos {
			return i
		}
	}
	return -1
}

func (e *Engine) emit(em emission) {
	if e.listener != nil {
		e.listener(em.event, em.position, em.total)
	}
}
