package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cmdutil "github.com/kiosk404/coreframework/internal/corefw/cmd/util"
	"github.com/kiosk404/coreframework/pkg/utils/json"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func pluginsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeManifest(t, dir, "alpha.yml", `
name: Alpha
version: 1.0.0
codename: Dawn
register: true
hooks:
  - plugin: Vault
    required: true
  - plugin: Ghost
`)
	writeManifest(t, dir, "beta.yml", `
name: Beta
version: 2.1.0
register: true
hooks:
  - plugin: Ghost
    required: true
`)
	writeManifest(t, dir, "vault.yml", "name: Vault\nversion: 1.7.3\n")
	return dir
}

// execute runs the root command and captures fatal errors instead of exiting.
func execute(t *testing.T, args ...string) (stdout, stderr string, fatal string) {
	t.Helper()
	cmdutil.BehaviorOnFatal(func(msg string, _ int) { fatal = msg })
	defer cmdutil.DefaultBehaviorOnFatal()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	root := NewCorefwCommand(&bytes.Buffer{}, out, errOut)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fatal = err.Error()
	}
	return out.String(), errOut.String(), fatal
}

func TestRunPrintsReportOnce(t *testing.T) {
	dir := pluginsDir(t)
	out, _, fatal := execute(t, "run", "--plugins.dir", dir, "--plugins.ready-after=10ms", "--log.no-color")
	if fatal != "" {
		t.Fatalf("run failed: %s", fatal)
	}

	for _, want := range []string{"Plugin Hooks", "Alpha 1.0.0", "Beta 2.1.0", "+ Vault", "- Ghost",
		"Successfully activated:", "Missing required hooks:", "CoreFramework disabled."} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "Activation Summary"); n != 1 {
		t.Fatalf("report printed %d times", n)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("no-color output contains ANSI escapes")
	}
}

func TestRunFallbackWithoutReadySignal(t *testing.T) {
	dir := pluginsDir(t)
	out, _, fatal := execute(t, "run", "--plugins.dir", dir, "--plugins.no-ready",
		"--framework.core-plugins=Alpha,Beta,Gamma", "--framework.fallback-delay=20ms")
	if fatal != "" {
		t.Fatalf("run failed: %s", fatal)
	}
	if !strings.Contains(out, "Activation Summary") {
		t.Fatalf("fallback did not display:\n%s", out)
	}
}

func TestRunFatalLayout(t *testing.T) {
	dir := pluginsDir(t)
	out, _, fatal := execute(t, "run", "--plugins.dir", dir, "--framework.min-padding=61")
	if !strings.Contains(fatal, "line content too long") {
		t.Fatalf("fatal = %q", fatal)
	}
	if strings.Contains(out, "Plugin Hooks") || !strings.Contains(out, "CoreFramework disabled.") {
		t.Fatalf("only the shutdown message may be printed:\n%s", out)
	}
}

func TestLintDefaults(t *testing.T) {
	out, _, fatal := execute(t, "lint")
	if fatal != "" {
		t.Fatalf("lint failed: %s", fatal)
	}
	if !strings.Contains(out, "all templates render") {
		t.Fatalf("unexpected lint output:\n%s", out)
	}
}

func TestLintReportsFatalTemplates(t *testing.T) {
	out, _, fatal := execute(t, "lint", "--framework.min-padding=61")
	if !strings.Contains(fatal, "templates would disable coreframework") {
		t.Fatalf("fatal = %q", fatal)
	}
	if !strings.Contains(out, "startup.separator") || !strings.Contains(out, "FATAL") {
		t.Fatalf("lint table misses the separator template:\n%s", out)
	}
}

func TestPluginsJSONFromEnv(t *testing.T) {
	t.Setenv("COREFW_PLUGINS_DIR", pluginsDir(t))

	out, _, fatal := execute(t, "plugins", "-o", "json")
	if fatal != "" {
		t.Fatalf("plugins failed: %s", fatal)
	}
	var got struct {
		Manifests []struct {
			Name string `json:"name"`
		} `json:"manifests"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got.Manifests) != 3 || got.Manifests[0].Name != "Alpha" {
		t.Fatalf("manifests = %+v", got.Manifests)
	}
}

func TestPluginsTable(t *testing.T) {
	out, _, fatal := execute(t, "plugins", "--plugins.dir", pluginsDir(t))
	if fatal != "" {
		t.Fatalf("plugins failed: %s", fatal)
	}
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "Vault*") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestInvalidOptionsRejected(t *testing.T) {
	_, _, fatal := execute(t, "plugins", "--log.level=loud")
	if !strings.Contains(fatal, "invalid log level") {
		t.Fatalf("fatal = %q", fatal)
	}
}
