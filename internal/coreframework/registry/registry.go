// Package registry holds the plugins known to the framework and what they
// declared at registration time.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jinzhu/copier"

	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/pkg/logger"
)

// ErrNotFound is returned by Get for an unknown plugin name.
var ErrNotFound = errors.New("plugin not registered")

// RegisteredPlugin is the stored record for one plugin.
type RegisteredPlugin struct {
	Name     string             `json:"name"`
	Version  string             `json:"version"`
	Codename string             `json:"codename"`
	Hooks    []hook.Requirement `json:"hooks"`

	// Initialized is set once the plugin's hooks have been displayed.
	Initialized bool `json:"initialized"`
	// AllRequiredHooksSuccessful is recorded by the display pipeline.
	AllRequiredHooksSuccessful bool `json:"all_required_hooks_successful"`

	RegisteredAt time.Time `json:"registered_at"`

	seq uint64
}

// RequiredHooks returns the required hooks in declaration order.
func (p *RegisteredPlugin) RequiredHooks() []hook.Requirement {
	req, _ := hook.Split(p.Hooks)
	return req
}

// OptionalHooks returns the optional hooks in declaration order.
func (p *RegisteredPlugin) OptionalHooks() []hook.Requirement {
	_, opt := hook.Split(p.Hooks)
	return opt
}

// Registry is safe for concurrent use without external locking. Stored
// records are never mutated in place: updates swap in a modified copy.
type Registry struct {
	plugins sync.Map // name -> *RegisteredPlugin
	seq     atomic.Uint64
	size    atomic.Int64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register upserts the record for name and returns a copy of what was stored.
// A repeated name replaces the earlier record (last writer wins) and moves it
// to the position of this call in List order.
func (r *Registry) Register(name, version, codename string, hooks []hook.Requirement) RegisteredPlugin {
	rec := &RegisteredPlugin{
		Name:                       name,
		Version:                    version,
		Codename:                   codename,
		Hooks:                      append([]hook.Requirement(nil), hooks...),
		AllRequiredHooksSuccessful: true,
		RegisteredAt:               time.Now(),
		seq:                        r.seq.Add(1),
	}

	if prev, loaded := r.plugins.Swap(name, rec); loaded {
		logger.WarnX("registry", "[Registry] plugin %q (version %s) registered again, replacing version %s",
			name, version, prev.(*RegisteredPlugin).Version)
	} else {
		r.size.Add(1)
	}
	return clone(rec)
}

// Get returns a copy of the record for name.
func (r *Registry) Get(name string) (RegisteredPlugin, error) {
	v, ok := r.plugins.Load(name)
	if !ok {
		return RegisteredPlugin{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return clone(v.(*RegisteredPlugin)), nil
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.plugins.Load(name)
	return ok
}

// Len returns the number of distinct registered plugins.
func (r *Registry) Len() int {
	return int(r.size.Load())
}

// List returns a snapshot of all records ordered by their latest
// registration call. The snapshot is not live.
func (r *Registry) List() []RegisteredPlugin {
	var recs []*RegisteredPlugin
	r.plugins.Range(func(_, v any) bool {
		recs = append(recs, v.(*RegisteredPlugin))
		return true
	})
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	out := make([]RegisteredPlugin, 0, len(recs))
	for _, rec := range recs {
		out = append(out, clone(rec))
	}
	return out
}

// SetHookStatus records the aggregate required-hook outcome for name.
func (r *Registry) SetHookStatus(name string, allRequiredSuccessful bool) error {
	return r.update(name, func(p *RegisteredPlugin) {
		p.AllRequiredHooksSuccessful = allRequiredSuccessful
	})
}

// MarkInitialized flags name as initialized.
func (r *Registry) MarkInitialized(name string) error {
	return r.update(name, func(p *RegisteredPlugin) {
		p.Initialized = true
	})
}

// update applies fn to a copy of the current record and swaps it in,
// retrying against the latest record if it changed underneath.
func (r *Registry) update(name string, fn func(p *RegisteredPlugin)) error {
	for {
		cur, ok := r.plugins.Load(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		next := clone(cur.(*RegisteredPlugin))
		fn(&next)
		if r.plugins.CompareAndSwap(name, cur, &next) {
			return nil
		}
	}
}

func clone(p *RegisteredPlugin) RegisteredPlugin {
	out := *p
	out.Hooks = nil
	if err := copier.CopyWithOption(&out.Hooks, &p.Hooks, copier.Option{DeepCopy: true}); err != nil {
		out.Hooks = append([]hook.Requirement(nil), p.Hooks...)
	}
	return out
}
