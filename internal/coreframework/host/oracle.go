package host

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kiosk404/coreframework/internal/coreframework/hook"
	"github.com/kiosk404/coreframework/pkg/logger"
)

// StaticOracle is a fixed name -> version presence table.
type StaticOracle map[string]string

var _ hook.Oracle = StaticOracle(nil)

// IsPresent reports whether name is in the table.
func (s StaticOracle) IsPresent(name string) bool {
	_, ok := s[name]
	return ok
}

// VersionOf returns the version recorded for name.
func (s StaticOracle) VersionOf(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// DirectoryOracle answers presence from the manifests in a plugins
// directory and follows changes to it.
type DirectoryOracle struct {
	mu        sync.RWMutex
	dir       string
	manifests map[string]Manifest // plugin name -> manifest
	errs      []error
	watcher   *fsnotify.Watcher
	closeCh   chan struct{}
	closed    bool
	onReload  func()
}

var _ hook.Oracle = (*DirectoryOracle)(nil)

// NewDirectoryOracle scans dir once. Call Watch to follow later changes.
func NewDirectoryOracle(dir string) (*DirectoryOracle, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve plugins dir %q: %w", dir, err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("plugins dir %q: %w", absDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("plugins dir %q is not a directory", absDir)
	}

	o := &DirectoryOracle{
		dir:       absDir,
		manifests: make(map[string]Manifest),
		closeCh:   make(chan struct{}),
	}
	o.reload()
	return o, nil
}

// IsPresent reports whether an enabled plugin called name is installed.
func (o *DirectoryOracle) IsPresent(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	m, ok := o.manifests[name]
	return ok && m.IsEnabled()
}

// VersionOf returns the installed version of name.
func (o *DirectoryOracle) VersionOf(name string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	m, ok := o.manifests[name]
	if !ok || !m.IsEnabled() {
		return "", false
	}
	return m.Version, true
}

// Manifests returns the loaded manifests sorted by plugin name.
func (o *DirectoryOracle) Manifests() []Manifest {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]Manifest, 0, len(o.manifests))
	for _, m := range o.manifests {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Errors returns the problems found by the last scan.
func (o *DirectoryOracle) Errors() []error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]error(nil), o.errs...)
}

// Dir returns the watched directory.
func (o *DirectoryOracle) Dir() string {
	return o.dir
}

// OnReload sets a callback run after every rescan triggered by Watch.
func (o *DirectoryOracle) OnReload(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onReload = fn
}

func (o *DirectoryOracle) reload() {
	manifests, errs := LoadManifests(o.dir)

	next := make(map[string]Manifest, len(manifests))
	for _, m := range manifests {
		if prev, dup := next[m.Name]; dup {
			logger.WarnX("host", "[Host] plugin %q declared by both %s and %s, keeping the latter",
				m.Name, prev.Path, m.Path)
		}
		next[m.Name] = m
	}
	for _, err := range errs {
		logger.WarnX("host", "[Host] %v", err)
	}

	o.mu.Lock()
	o.manifests = next
	o.errs = errs
	o.mu.Unlock()

	logger.Debug("[Host] loaded %d plugin manifests from %s", len(next), o.dir)
}

// Watch starts following changes to the directory.
func (o *DirectoryOracle) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(o.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %q: %w", o.dir, err)
	}

	o.mu.Lock()
	o.watcher = watcher
	o.mu.Unlock()

	go o.watchLoop(watcher)

	logger.Debug("[Host] watcher started for %s", o.dir)
	return nil
}

// watchLoop runs the fsnotify event loop with debounce.
func (o *DirectoryOracle) watchLoop(watcher *fsnotify.Watcher) {
	const debounceMs = 200

	d := newDebounce(debounceMs, func() {
		o.reload()
		o.mu.RLock()
		fn := o.onReload
		o.mu.RUnlock()
		if fn != nil {
			fn()
		}
	})
	defer d.stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 && isManifest(event.Name) {
				d.trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.WarnX("host", "[Host] watcher error: %v", err)
		case <-o.closeCh:
			return
		}
	}
}

// Close stops the watcher.
func (o *DirectoryOracle) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	close(o.closeCh)

	if o.watcher != nil {
		o.watcher.Close()
	}
}
