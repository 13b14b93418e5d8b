package host

import (
	"sync"
	"time"
)

// debounce runs callback once delayMs after the last trigger.
type debounce struct {
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	delay    time.Duration
	stopped  bool
}

func newDebounce(delayMs int, callback func()) *debounce {
	return &debounce{
		delay:    time.Duration(delayMs) * time.Millisecond,
		callback: callback,
	}
}

func (d *debounce) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.callback)
}

func (d *debounce) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
