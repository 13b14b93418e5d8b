package hook

// Result collects the evaluations for one plugin.
type Result struct {
	evaluations           []Evaluation
	allRequiredSuccessful bool
}

// NewResult creates an empty result. With nothing evaluated, all required
// hooks are vacuously successful.
func NewResult() *Result {
	return &Result{allRequiredSuccessful: true}
}

// Add records an evaluation.
func (r *Result) Add(ev Evaluation) {
	r.evaluations = append(r.evaluations, ev)
	if ev.Required && !ev.Available() {
		r.allRequiredSuccessful = false
	}
}

// AllRequiredSuccessful reports whether every required hook was available.
func (r *Result) AllRequiredSuccessful() bool {
	return r.allRequiredSuccessful
}

// Evaluations returns the evaluations in the order they were added.
func (r *Result) Evaluations() []Evaluation {
	out := make([]Evaluation, len(r.evaluations))
	copy(out, r.evaluations)
	return out
}

// Successes maps hooked plugin name to availability.
func (r *Result) Successes() map[string]bool {
	out := make(map[string]bool, len(r.evaluations))
	for _, ev := range r.evaluations {
		out[ev.PluginName] = ev.Available()
	}
	return out
}

// Messages maps hooked plugin name to its evaluation message.
func (r *Result) Messages() map[string]string {
	out := make(map[string]string, len(r.evaluations))
	for _, ev := range r.evaluations {
		if ev.Message != "" {
			out[ev.PluginName] = ev.Message
		}
	}
	return out
}

// Processor lets a plugin run its own hook logic (wiring into the hooked
// plugins' APIs) and report the outcome.
type Processor interface {
	ProcessHooks(name string, reqs []Requirement, oracle Oracle) *Result
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(name string, reqs []Requirement, oracle Oracle) *Result

// ProcessHooks calls f.
func (f ProcessorFunc) ProcessHooks(name string, reqs []Requirement, oracle Oracle) *Result {
	return f(name, reqs, oracle)
}

// PresenceProcessor is the default Processor: presence decides availability.
var PresenceProcessor Processor = ProcessorFunc(func(_ string, reqs []Requirement, oracle Oracle) *Result {
	return EvaluateAll(reqs, oracle)
})
