package coreframework

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kiosk404/coreframework/internal/coreframework/config"
	"github.com/kiosk404/coreframework/internal/coreframework/display"
	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/internal/coreframework/output"
	"github.com/kiosk404/coreframework/internal/coreframework/text"
)

type manualTimer struct {
	mu  sync.Mutex
	fns []func()
}

func (m *manualTimer) ScheduleOnce(_ time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
}

func (m *manualTimer) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = nil
}

func (m *manualTimer) Fire() {
	m.mu.Lock()
	fns := m.fns
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type mapOracle map[string]string

func (o mapOracle) IsPresent(name string) bool {
	_, ok := o[name]
	return ok
}

func (o mapOracle) VersionOf(name string) (string, bool) {
	v, ok := o[name]
	return v, ok
}

func newFramework(t *testing.T, overrides map[string]any) (*Framework, *output.RecordingSink, *manualTimer) {
	t.Helper()
	res := config.Defaults()
	for k, v := range overrides {
		res.Framework.Set(k, v)
	}
	sink := &output.RecordingSink{}
	timer := &manualTimer{}
	cfg := &Config{
		Resources: res,
		Oracle:    mapOracle{"Vault": "1.7.3"},
		Sink:      sink,
		Timer:     timer,
		Metrics:   prometheus.NewRegistry(),
	}
	fw, err := cfg.Complete().New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fw, sink, timer
}

func plain(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = text.StripMarkup(l)
	}
	return strings.Join(out, "\n")
}

func TestNewRequiresOracle(t *testing.T) {
	if _, err := (&Config{}).Complete().New(); err == nil {
		t.Fatal("expected an error without a presence oracle")
	}
}

func TestEarlyCompletionThroughAPI(t *testing.T) {
	fw, sink, timer := newFramework(t, map[string]any{
		"detection.core_plugins": []string{"Alpha", "Beta"},
	})

	displayed := make(chan struct{})
	fw.Subscribe(EventDisplayed, func(Event, interface{}) { close(displayed) })

	if err := fw.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if fw.State() != display.Preparing {
		t.Fatalf("state = %s, want Preparing", fw.State())
	}

	api := fw.API()
	if _, err := api.RegisterPlugin("Alpha", "1.0", "Dawn", hook.Required("Ghost", "")); err != nil {
		t.Fatal(err)
	}
	if len(sink.Lines()) != 0 {
		t.Fatal("report shown before every core plugin registered")
	}
	if _, err := api.RegisterPlugin("Beta", "1.2", "", hook.Required("Vault", "1.0")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-displayed:
	case <-time.After(2 * time.Second):
		t.Fatal("displayed event not fired")
	}

	out := plain(sink.Lines())
	if !strings.Contains(out, "Alpha") || !strings.Contains(out, "Beta") {
		t.Fatalf("report misses plugins:\n%s", out)
	}
	before := len(sink.Lines())
	timer.Fire()
	fw.OnServerLoad()
	if len(sink.Lines()) != before {
		t.Fatal("late triggers re-flushed the report")
	}

	alpha, _ := api.Plugin("Alpha")
	beta, _ := api.Plugin("Beta")
	if alpha.AllRequiredHooksSuccessful || !beta.AllRequiredHooksSuccessful {
		t.Fatalf("hook status: alpha=%v beta=%v", alpha.AllRequiredHooksSuccessful, beta.AllRequiredHooksSuccessful)
	}
}

func TestFallbackTimerDisplays(t *testing.T) {
	fw, sink, timer := newFramework(t, map[string]any{
		"detection.core_plugins": []string{"Alpha", "Beta", "Gamma"},
	})
	if err := fw.Enable(); err != nil {
		t.Fatal(err)
	}
	if _, err := fw.API().RegisterPlugin("Alpha", "1.0", ""); err != nil {
		t.Fatal(err)
	}

	timer.Fire()

	if fw.State() != display.Displayed {
		t.Fatalf("state = %s, want Displayed", fw.State())
	}
	if !strings.Contains(plain(sink.Lines()), "Alpha") {
		t.Fatal("fallback display should include registered plugins")
	}
}

func TestFatalLayoutDisablesFramework(t *testing.T) {
	fw, sink, _ := newFramework(t, map[string]any{
		"formatting.min_padding": 61,
	})

	var reasons []interface{}
	fw.Subscribe(EventDisabled, func(_ Event, data interface{}) { reasons = append(reasons, data) })

	err := fw.Enable()
	if !errors.Is(err, text.ErrLineTooLong) {
		t.Fatalf("Enable err = %v, want ErrLineTooLong", err)
	}

	disabled, why := fw.Disabled()
	if !disabled || !errors.Is(why, text.ErrLineTooLong) {
		t.Fatalf("Disabled = %v, %v", disabled, why)
	}
	if len(reasons) != 1 {
		t.Fatalf("disabled event fired %d times", len(reasons))
	}

	lines := sink.Lines()
	if len(lines) != 1 || !strings.Contains(text.StripMarkup(lines[0]), "CoreFramework disabled.") {
		t.Fatalf("only the shutdown message may be shown, got %q", lines)
	}

	if _, err := fw.API().RegisterPlugin("Alpha", "1.0", ""); !errors.Is(err, ErrDisabled) {
		t.Fatalf("RegisterPlugin after disable err = %v", err)
	}
	if err := fw.Enable(); !errors.Is(err, ErrDisabled) {
		t.Fatalf("Enable after disable err = %v", err)
	}
}

func TestDisableOnce(t *testing.T) {
	fw, sink, _ := newFramework(t, nil)
	fw.Disable()
	fw.Disable()

	if got := len(sink.Lines()); got != 1 {
		t.Fatalf("shutdown message emitted %d times", got)
	}
	if disabled, why := fw.Disabled(); !disabled || why != nil {
		t.Fatalf("Disabled = %v, %v", disabled, why)
	}
}

func TestRegisterPluginValidation(t *testing.T) {
	fw, _, _ := newFramework(t, map[string]any{
		"detection.core_plugins": []string{"a", "b", "c"},
	})
	api := fw.API()

	if _, err := api.RegisterPlugin("  ", "1.0", ""); err == nil {
		t.Fatal("empty name accepted")
	}
	if _, err := api.RegisterPlugin("Alpha", "1.0", "", hook.Requirement{}); err == nil {
		t.Fatal("hook without plugin name accepted")
	}
	if api.IsRegistered("Alpha") {
		t.Fatal("rejected registration was stored")
	}
}

func TestVersions(t *testing.T) {
	fw, _, _ := newFramework(t, map[string]any{"coreapi.version": "1.4.0"})
	api := fw.API()

	if api.CoreAPIVersion() != "1.4.0" {
		t.Fatalf("CoreAPIVersion = %s", api.CoreAPIVersion())
	}
	if api.FrameworkVersion() != Version {
		t.Fatalf("FrameworkVersion = %s", api.FrameworkVersion())
	}
	if !api.IsAPIVersionCompatible("1.2") || api.IsAPIVersionCompatible("1.5.0") {
		t.Fatal("compatibility against 1.4.0 is wrong")
	}
}

func TestAPICompatible(t *testing.T) {
	tests := []struct {
		current, required string
		want              bool
	}{
		{"1.4.0", "1.4.0", true},
		{"1.4.0", "1.3", true},
		{"1.4.0", "v1.5.0", false},
		{"2.0.0", "1.9.0", false},
		{"unknown", "1.0.0", true},
		{"1.0.0", "latest", true},
	}
	for _, tt := range tests {
		if got := apiCompatible(tt.current, tt.required); got != tt.want {
			t.Errorf("apiCompatible(%q, %q) = %v, want %v", tt.current, tt.required, got, tt.want)
		}
	}
}

// gatedSink holds the flush at line blockAt until release is closed.
type gatedSink struct {
	output.RecordingSink
	blockAt int32
	seen    atomic.Int32
	reached chan struct{}
	release chan struct{}
}

func (s *gatedSink) Emit(line string) {
	if s.seen.Add(1) == s.blockAt {
		close(s.reached)
		<-s.release
	}
	s.RecordingSink.Emit(line)
}

func TestDisableWaitsForFlushInProgress(t *testing.T) {
	sink := &gatedSink{blockAt: 3, reached: make(chan struct{}), release: make(chan struct{})}
	fw, err := (&Config{
		Resources: config.Defaults(),
		Oracle:    mapOracle{},
		Sink:      sink,
		Timer:     &manualTimer{},
		Metrics:   prometheus.NewRegistry(),
	}).Complete().New()
	if err != nil {
		t.Fatal(err)
	}
	if err := fw.Enable(); err != nil {
		t.Fatal(err)
	}

	go fw.OnServerLoad()
	select {
	case <-sink.reached:
	case <-time.After(2 * time.Second):
		t.Fatal("flush never started")
	}

	disabled := make(chan struct{})
	go func() {
		fw.Disable()
		close(disabled)
	}()
	select {
	case <-disabled:
		t.Fatal("Disable returned while the report was still flushing")
	case <-time.After(50 * time.Millisecond):
	}

	close(sink.release)
	select {
	case <-disabled:
	case <-time.After(2 * time.Second):
		t.Fatal("Disable did not finish after the flush")
	}

	lines := sink.Lines()
	for i, l := range lines[:len(lines)-1] {
		if strings.Contains(l, "CoreFramework disabled.") {
			t.Fatalf("shutdown message at line %d inside the report: %q", i, lines)
		}
	}
	if last := text.StripMarkup(lines[len(lines)-1]); !strings.Contains(last, "CoreFramework disabled.") {
		t.Fatalf("last line = %q, want the shutdown message", last)
	}
}
