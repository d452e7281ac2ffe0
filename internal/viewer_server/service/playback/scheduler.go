package playback

import (
	"time"
)

// Scheduler is a cancellable delayed-task primitive. Schedule runs fn once
// after d and returns a cancel function; cancelling after the task has
// fired is a no-op. The engine relies on cancellation being effective so
// that at most one advance is ever pending.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules on the process timer heap.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() {
		t.Stop()
	}
}
