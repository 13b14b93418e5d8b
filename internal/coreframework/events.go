package coreframework

import (
	"sync"

	"github.com/kiosk404/coreframework/pkg/logger"
)

// Event identifies a framework lifecycle event hosts can subscribe to.
type Event string

const (
	// EventEnabled fires after the header is buffered and the fallback
	// timer is armed.
	EventEnabled Event = "enabled"

	// EventPluginRegistered fires after every successful registration.
	// The payload is the registry.RegisteredPlugin that was stored.
	EventPluginRegistered Event = "plugin_registered"

	// EventDisplayed fires once the startup report has been flushed.
	EventDisplayed Event = "displayed"

	// EventDisabled fires when the framework shuts down. The payload is the
	// error that caused it, or nil for a normal shutdown.
	EventDisabled Event = "disabled"
)

// EventHandler is called synchronously on the goroutine that raised the
// event.
type EventHandler func(event Event, data interface{})

type eventBus struct {
	mu       sync.RWMutex
	handlers map[Event][]EventHandler
}

func newEventBus() *eventBus {
	return &eventBus{handlers: make(map[Event][]EventHandler)}
}

func (b *eventBus) subscribe(event Event, h EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// fire calls handlers in subscription order. A panicking handler is logged
// and does not stop the others.
func (b *eventBus) fire(event Event, data interface{}) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.handlers[event]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.WarnX(module, "[CoreFramework] %s handler panicked: %v", event, r)
				}
			}()
			h(event, data)
		}()
	}
}
