package host

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifests(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha.yml", `
name: Alpha
version: 1.0.0
codename: Dawn
register: true
hooks:
  - plugin: Vault
    required: true
  - plugin: Ghost
    min_version: "2.0"
`)
	writeFile(t, dir, "vault.json", `{"name": "Vault", "version": "1.7.3"}`)
	writeFile(t, dir, "off.yaml", "name: Off\nversion: 0.1\nenabled: false\n")
	writeFile(t, dir, "broken.yml", "version: 1.0\n")
	writeFile(t, dir, "README.md", "not a manifest")

	manifests, errs := LoadManifests(dir)
	if len(errs) != 1 {
		t.Fatalf("errs = %v, want one validation error", errs)
	}
	if len(manifests) != 3 {
		t.Fatalf("loaded %d manifests, want 3", len(manifests))
	}

	alpha := manifests[0]
	if alpha.Name != "Alpha" || !alpha.Register || !alpha.IsEnabled() {
		t.Fatalf("alpha = %+v", alpha)
	}
	reqs := alpha.Requirements()
	if len(reqs) != 2 || !reqs[0].Required || reqs[1].Required || reqs[1].MinVersion != "2.0" {
		t.Fatalf("requirements = %+v", reqs)
	}
	if reqs[0].MinVersion != "any" {
		t.Fatalf("unset min_version = %q", reqs[0].MinVersion)
	}
}

func TestDirectoryOracle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vault.yml", "name: Vault\nversion: 1.7.3\n")
	writeFile(t, dir, "off.yml", "name: Off\nversion: 0.1\nenabled: false\n")

	o, err := NewDirectoryOracle(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	if !o.IsPresent("Vault") {
		t.Fatal("Vault should be present")
	}
	if v, ok := o.VersionOf("Vault"); !ok || v != "1.7.3" {
		t.Fatalf("VersionOf(Vault) = %q, %v", v, ok)
	}
	if o.IsPresent("Off") {
		t.Fatal("disabled plugin must not be present")
	}
	if o.IsPresent("Ghost") {
		t.Fatal("Ghost is not installed")
	}
	if len(o.Manifests()) != 2 {
		t.Fatalf("Manifests = %+v", o.Manifests())
	}
}

func TestDirectoryOracleMissingDir(t *testing.T) {
	if _, err := NewDirectoryOracle(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestDirectoryOracleWatch(t *testing.T) {
	dir := t.TempDir()
	o, err := NewDirectoryOracle(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	reloaded := make(chan struct{}, 8)
	o.OnReload(func() { reloaded <- struct{}{} })
	if err := o.Watch(); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}

	writeFile(t, dir, "ghost.yml", "name: Ghost\nversion: 3.0\n")

	deadline := time.After(5 * time.Second)
	for !o.IsPresent("Ghost") {
		select {
		case <-reloaded:
		case <-deadline:
			t.Fatal("new manifest was not picked up")
		}
	}
}

func TestStaticOracle(t *testing.T) {
	o := StaticOracle{"Vault": "1.0"}
	if !o.IsPresent("Vault") || o.IsPresent("Ghost") {
		t.Fatal("presence mismatch")
	}
	if v, ok := o.VersionOf("Vault"); !ok || v != "1.0" {
		t.Fatalf("VersionOf = %q, %v", v, ok)
	}
}

func TestReadySignal(t *testing.T) {
	var s ReadySignal
	calls := 0
	s.OnReady(func() { calls++ })
	s.Fire()
	s.Fire()
	if calls != 1 {
		t.Fatalf("listener called %d times, want 1", calls)
	}

	late := false
	s.OnReady(func() { late = true })
	if !late || !s.Fired() {
		t.Fatal("late listener should run immediately")
	}
}
