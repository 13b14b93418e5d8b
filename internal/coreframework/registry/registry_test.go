package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/kiosk404/coreframework/internal/coreframework/hook"
)

func TestRegisterAndGet(t *testing.T) {
	r := New()
	stored := r.Register("Alpha", "1.0.0", "Dawn", []hook.Requirement{hook.Required("Ghost", "")})
	if stored.Name != "Alpha" || stored.Version != "1.0.0" || stored.Codename != "Dawn" {
		t.Fatalf("Register returned %+v", stored)
	}
	if !stored.AllRequiredHooksSuccessful || stored.Initialized {
		t.Fatalf("unexpected initial flags %+v", stored)
	}

	got, err := r.Get("Alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.RequiredHooks()) != 1 || len(got.OptionalHooks()) != 0 {
		t.Fatalf("hooks = %+v", got.Hooks)
	}

	if _, err := r.Get("Nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(Nope) err = %v", err)
	}
	if !r.Contains("Alpha") || r.Contains("Nope") {
		t.Fatal("Contains mismatch")
	}
}

func TestLastWriterWins(t *testing.T) {
	r := New()
	r.Register("Alpha", "1.0", "", nil)
	r.Register("Beta", "1.0", "", nil)
	r.Register("Alpha", "2.0", "", nil)

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	got, _ := r.Get("Alpha")
	if got.Version != "2.0" {
		t.Fatalf("Alpha version = %s, want 2.0", got.Version)
	}

	list := r.List()
	if len(list) != 2 || list[0].Name != "Beta" || list[1].Name != "Alpha" {
		t.Fatalf("List order = %+v", list)
	}
}

func TestConcurrentRegistration(t *testing.T) {
	r := New()
	const writers = 16
	const names = 5

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for n := 0; n < names; n++ {
				r.Register(fmt.Sprintf("plugin-%d", n), fmt.Sprintf("%d", w), "", nil)
			}
		}(w)
	}
	wg.Wait()

	if r.Len() != names {
		t.Fatalf("Len = %d, want %d", r.Len(), names)
	}
	list := r.List()
	if len(list) != names {
		t.Fatalf("List has %d records, want %d", len(list), names)
	}
	seen := map[string]bool{}
	for _, p := range list {
		if seen[p.Name] {
			t.Fatalf("duplicate record %s", p.Name)
		}
		seen[p.Name] = true
	}
}

func TestLastSequentialCallWinsAfterConcurrency(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register("Alpha", fmt.Sprintf("v%d", i), "", nil)
		}(i)
	}
	wg.Wait()
	r.Register("Alpha", "final", "", nil)

	got, _ := r.Get("Alpha")
	if got.Version != "final" {
		t.Fatalf("version = %s, want final", got.Version)
	}
}

func TestSnapshotIsNotLive(t *testing.T) {
	r := New()
	r.Register("Alpha", "1.0", "", []hook.Requirement{hook.Optional("Vault", "")})

	list := r.List()
	list[0].Hooks[0].PluginName = "Mutated"
	list[0].Version = "9.9"

	got, _ := r.Get("Alpha")
	if got.Version != "1.0" || got.Hooks[0].PluginName != "Vault" {
		t.Fatalf("registry changed through snapshot: %+v", got)
	}
}

func TestRegisterCopiesHooks(t *testing.T) {
	r := New()
	hooks := []hook.Requirement{hook.Required("Vault", "")}
	r.Register("Alpha", "1.0", "", hooks)
	hooks[0].PluginName = "Changed"

	got, _ := r.Get("Alpha")
	if got.Hooks[0].PluginName != "Vault" {
		t.Fatal("caller slice aliased into the registry")
	}
}

func TestSetHookStatusAndMarkInitialized(t *testing.T) {
	r := New()
	r.Register("Alpha", "1.0", "", nil)

	if err := r.SetHookStatus("Alpha", false); err != nil {
		t.Fatalf("SetHookStatus: %v", err)
	}
	if err := r.MarkInitialized("Alpha"); err != nil {
		t.Fatalf("MarkInitialized: %v", err)
	}
	got, _ := r.Get("Alpha")
	if got.AllRequiredHooksSuccessful || !got.Initialized {
		t.Fatalf("flags not recorded: %+v", got)
	}

	if err := r.SetHookStatus("Ghost", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetHookStatus(Ghost) err = %v", err)
	}
}
