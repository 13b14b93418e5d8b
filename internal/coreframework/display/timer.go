package display

import (
	"sync"
	"time"
)

// Timer schedules the fallback display.
type Timer interface {
	ScheduleOnce(delay time.Duration, fn func())
	CancelAll()
}

// AfterFuncTimer is a Timer on time.AfterFunc.
type AfterFuncTimer struct {
	mu     sync.Mutex
	timers []*time.Timer
}

// NewAfterFuncTimer creates an AfterFuncTimer.
func NewAfterFuncTimer() *AfterFuncTimer {
	return &AfterFuncTimer{}
}

// ScheduleOnce runs fn on its own goroutine after delay.
func (t *AfterFuncTimer) ScheduleOnce(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timers = append(t.timers, time.AfterFunc(delay, fn))
}

// CancelAll stops every pending callback. Callbacks already running are not
// interrupted.
func (t *AfterFuncTimer) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tm := range t.timers {
		tm.Stop()
	}
	t.timers = nil
}
