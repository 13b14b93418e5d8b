package bootstrap

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kiosk404/coreframework/internal/coreframework/config"
	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/internal/coreframework/registry"
	"github.com/kiosk404/coreframework/internal/coreframework/text"
)

type recorder struct {
	lines   []string
	flushed int
}

func (r *recorder) AddLine(line string) { r.lines = append(r.lines, line) }
func (r *recorder) Flush()              { r.flushed++ }
func (r *recorder) Clear()              { r.lines = nil }

type oracle map[string]string

func (o oracle) IsPresent(name string) bool {
	_, ok := o[name]
	return ok
}

func (o oracle) VersionOf(name string) (string, bool) {
	v, ok := o[name]
	return v, ok
}

func testLang() map[string]any {
	return map[string]any{
		"startup.header_line1":         "H1",
		"startup.header_line2":         "H2",
		"startup.header_line3":         "H3",
		"startup.header_line4":         "H4",
		"startup.initialization_start": "init",
		"startup.detecting_api":        "api?",
		"startup.api_found":            "api {version}",
		"startup.detecting_plugins":    "plugins?",
		"startup.plugin_detected":      "found {plugin} {version}",
		"startup.separator":            "SEP",
		"startup.no_plugins":           "none",
		"plugin_hooks.hooks_header":    "hooks",
		"plugin_hooks.header":          "{plugin} {version} {codename}",
		"plugin_hooks.required_header": "required",
		"plugin_hooks.optional_header": "optional",
		"plugin_hooks.hook_success":    "+{plugin}",
		"plugin_hooks.hook_failed":     "-{plugin}",
		"activation.header":            "summary",
		"activation.success":           "ok",
		"activation.plugin_list":       "ok: {plugins}",
		"activation.failed":            "failed",
		"activation.failed_plugin_list": "failed: {plugins}",
	}
}

func newBootstrap(settings map[string]any, lang map[string]any, o hook.Oracle) *Bootstrap {
	engine := text.NewEngine(text.DefaultSettings())
	return New(engine, config.New(settings), config.New(lang), o)
}

func TestHeaderLinesClamp(t *testing.T) {
	tests := []struct {
		value any
		want  int
	}{
		{nil, 3},
		{0, 1},
		{-4, 1},
		{5, 5},
		{20, 8},
	}
	for _, tt := range tests {
		settings := map[string]any{}
		if tt.value != nil {
			settings["header.lines"] = tt.value
		}
		if got := newBootstrap(settings, nil, nil).HeaderLines(); got != tt.want {
			t.Fatalf("header.lines=%v -> %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestPrepareHeader(t *testing.T) {
	settings := map[string]any{
		"header.lines":           2,
		"coreapi.version":        "2.0",
		"detection.core_plugins": []string{"Alpha", "Missing"},
	}
	b := newBootstrap(settings, testLang(), oracle{"Alpha": "1.1"})

	r := &recorder{}
	if err := b.PrepareHeader(r); err != nil {
		t.Fatalf("PrepareHeader: %v", err)
	}
	want := []string{"H1", "H2", "init", "api?", "api 2.0", "plugins?", "found Alpha 1.1", "SEP"}
	if !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
	if r.flushed != 0 {
		t.Fatal("bootstrap must never flush")
	}
}

func TestPrepareHeaderDisabled(t *testing.T) {
	b := newBootstrap(map[string]any{"header.enabled": false}, testLang(), nil)

	r := &recorder{}
	if err := b.PrepareHeader(r); err != nil {
		t.Fatalf("PrepareHeader: %v", err)
	}
	want := []string{"init", "api?", "api unknown", "plugins?"}
	if !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
}

func TestPreparePluginHooks(t *testing.T) {
	o := oracle{"Vault": "1.7"}
	reg := registry.New()
	p := reg.Register("Alpha", "1.0", "Dawn", []hook.Requirement{
		hook.Optional("Vault", ""),
		hook.Required("Ghost", ""),
		hook.Optional("Echo", ""),
	})
	b := newBootstrap(nil, testLang(), o)

	r := &recorder{}
	res := hook.EvaluateAll(p.Hooks, o)
	if err := b.PreparePluginHooks(r, p, res); err != nil {
		t.Fatalf("PreparePluginHooks: %v", err)
	}
	want := []string{"SEP", "hooks", "Alpha 1.0 Dawn", "required", "-Ghost", "optional", "+Vault", "-Echo"}
	if !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
}

func TestPreparePluginHooksWithoutHooks(t *testing.T) {
	reg := registry.New()
	p := reg.Register("Beta", "2.0", "", nil)
	b := newBootstrap(nil, testLang(), oracle{})

	r := &recorder{}
	if err := b.PreparePluginHooks(r, p, hook.NewResult()); err != nil {
		t.Fatal(err)
	}
	want := []string{"SEP", "hooks", "Beta 2.0 "}
	if !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
}

func TestPrepareActivationSummary(t *testing.T) {
	b := newBootstrap(nil, testLang(), nil)

	r := &recorder{}
	if err := b.PrepareActivationSummary(r, []string{"Beta", "Gamma"}, []string{"Alpha"}); err != nil {
		t.Fatal(err)
	}
	want := []string{"SEP", "SEP", "summary", "ok", "ok: Beta - Gamma", "failed", "failed: Alpha", "SEP"}
	if !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}

	r = &recorder{}
	if err := b.PrepareActivationSummary(r, []string{"Beta"}, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.Join(r.lines, "\n"), "failed") {
		t.Fatalf("empty failed group rendered: %q", r.lines)
	}
}

func TestPrepareNoPlugins(t *testing.T) {
	b := newBootstrap(nil, testLang(), nil)
	r := &recorder{}
	if err := b.PrepareNoPlugins(r); err != nil {
		t.Fatal(err)
	}
	if want := []string{"none", "SEP"}; !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("lines = %q, want %q", r.lines, want)
	}
}

func TestShutdownMessageDefault(t *testing.T) {
	b := newBootstrap(nil, nil, nil)
	msg, err := b.ShutdownMessage()
	if err != nil || msg != DefaultShutdownMessage {
		t.Fatalf("ShutdownMessage = %q, %v", msg, err)
	}
}

func TestFatalPaddingStopsPreparation(t *testing.T) {
	lang := testLang()
	lang["startup.separator"] = strings.Repeat("x", 59) + text.ScaledSeparatorMarker
	b := newBootstrap(nil, lang, nil)

	r := &recorder{}
	err := b.PrepareNoPlugins(r)
	var perr *text.PaddingError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *text.PaddingError", err)
	}
	if perr.ContentLength != 59 || perr.TargetWidth != 60 || perr.MinPadding != 2 {
		t.Fatalf("padding error fields = %+v", perr)
	}
	if want := []string{"none"}; !reflect.DeepEqual(r.lines, want) {
		t.Fatalf("malformed line was added: %q", r.lines)
	}
}
