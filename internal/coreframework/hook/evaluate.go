package hook

import (
	"fmt"
)

// Oracle answers whether a plugin is present on the host.
type Oracle interface {
	IsPresent(name string) bool
	VersionOf(name string) (string, bool)
}

// Code is the outcome of evaluating one hook.
type Code int

const (
	// Available means the hooked plugin is present.
	Available Code = iota
	// Missing means the hooked plugin is absent.
	Missing
)

var codeNames = map[Code]string{
	Available: "Available",
	Missing:   "Missing",
}

// String returns the human-readable name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Evaluation is the result of checking one requirement. It is computed fresh
// each time hooks are displayed.
type Evaluation struct {
	PluginName string
	Required   bool
	Code       Code
	Version    string
	Message    string
}

// Available reports whether the hooked plugin was found.
func (e Evaluation) Available() bool {
	return e.Code == Available
}

// Evaluate checks req against oracle.
func Evaluate(req Requirement, oracle Oracle) Evaluation {
	ev := Evaluation{PluginName: req.PluginName, Required: req.Required, Code: Missing}
	if oracle == nil || !oracle.IsPresent(req.PluginName) {
		ev.Message = fmt.Sprintf("%s is not installed", req.PluginName)
		return ev
	}
	ev.Code = Available
	if v, ok := oracle.VersionOf(req.PluginName); ok {
		ev.Version = v
		ev.Message = fmt.Sprintf("hooked into %s %s", req.PluginName, v)
	} else {
		ev.Message = fmt.Sprintf("hooked into %s", req.PluginName)
	}
	return ev
}

// AllRequiredSuccessful is the AND of availability over required hooks.
// Optional hooks never affect it; with no required hooks it is true.
func AllRequiredSuccessful(reqs []Requirement, oracle Oracle) bool {
	for _, r := range reqs {
		if r.Required && !Evaluate(r, oracle).Available() {
			return false
		}
	}
	return true
}

// EvaluateAll evaluates every requirement in order and aggregates a Result.
func EvaluateAll(reqs []Requirement, oracle Oracle) *Result {
	res := NewResult()
	for _, r := range reqs {
		res.Add(Evaluate(r, oracle))
	}
	return res
}
