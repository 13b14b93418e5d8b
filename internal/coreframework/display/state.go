package display

import (
	"fmt"
)

// State is the orchestrator's position in the single startup window.
type State int32

const (
	// Idle means the framework has not been enabled yet.
	Idle State = iota
	// Preparing means the header is buffered and triggers are awaited.
	Preparing
	// Displayed is terminal for the process lifetime.
	Displayed
)

var stateNames = map[State]string{
	Idle:      "Idle",
	Preparing: "Preparing",
	Displayed: "Displayed",
}

// String returns the human-readable name of the state.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Source names what asked for the display.
type Source string

const (
	SourceReady           Source = "ready"
	SourceTimer           Source = "timer"
	SourceEarlyCompletion Source = "early_completion"
)
