package registry

import (
	"fmt"
	"path/filepath"
	"plugin"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/singleflight"

	"jhp/internal/logging"
	"jhp/internal/metrics"
)

// A registry key moves Unknown -> Loading -> Loaded. Unknown keys simply
// have no map entry; Loading is held only while r.group.Do runs a key's
// loader; Loaded is terminal for the life of the process. A failed load
// leaves the key Unknown, so the next caller retries it.

// Entry is everything the binding layer needs to wire one extension key
// into a JS runtime: its native functions (if a plugin was found) and the
// paths of bootstrap scripts to run after the native functions are
// installed, in the order they must run.
type Entry struct {
	Key        string
	ObjectName string
	Funcs      []FunctionDesc
	Bootstrap  []string
}

// Registry resolves extension keys to Entry values, loading native plugins
// and discovering bootstrap scripts under extensionsDir. Successfully
// loaded entries are append-only for the registry's lifetime; failures are
// not recorded, so the next request for the same key retries the load.
type Registry struct {
	extensionsDir string

	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group
}

// New returns a Registry that resolves extension keys under extensionsDir.
func New(extensionsDir string) *Registry {
	return &Registry{
		extensionsDir: extensionsDir,
		entries:       map[string]*Entry{},
	}
}

// ObjectName derives the global object name bound for key: the first code
// point upper-cased, the remainder preserved verbatim.
func ObjectName(key string) string {
	if key == "" {
		return key
	}
	r := []rune(key)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// EnsureLoaded resolves key to its Entry, loading it at most once. Callers
// racing on the same unresolved key block on the same load and observe the
// same result. A failed load is not cached: the key stays Unknown and the
// next caller performs the I/O again.
func (r *Registry) EnsureLoaded(key string) (*Entry, error) {
	r.mu.RLock()
	if e, ok := r.entries[key]; ok {
		r.mu.RUnlock()
		return e, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		entry, loadErr := r.load(key)
		if loadErr != nil {
			return nil, loadErr
		}

		r.mu.Lock()
		r.entries[key] = entry
		r.mu.Unlock()

		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

// Loaded reports whether key has been successfully loaded, without
// triggering a load.
func (r *Registry) Loaded(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Entries returns a snapshot of every loaded entry, sorted by key so that
// installation order across contexts is deterministic.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *Registry) load(key string) (*Entry, error) {
	log := logging.Get(logging.CategoryRegistry)
	log.Debugf("loading extension %q", key)

	entry := &Entry{Key: key, ObjectName: ObjectName(key)}

	funcs, err := r.loadNative(key)
	if err != nil {
		metrics.ExtensionLoadsTotal.WithLabelValues(key, "error").Inc()
		return nil, fmt.Errorf("extension %q: %w", key, err)
	}
	entry.Funcs = funcs

	bootstrap, err := r.discoverBootstrap(key)
	if err != nil {
		metrics.ExtensionLoadsTotal.WithLabelValues(key, "error").Inc()
		return nil, fmt.Errorf("extension %q: %w", key, err)
	}
	entry.Bootstrap = bootstrap

	if len(entry.Funcs) == 0 && len(entry.Bootstrap) == 0 {
		metrics.ExtensionLoadsTotal.WithLabelValues(key, "not_found").Inc()
		return nil, fmt.Errorf("extension %q: no native plugin or bootstrap scripts found", key)
	}

	metrics.ExtensionLoadsTotal.WithLabelValues(key, "ok").Inc()
	log.Infof("extension %q loaded: %d native funcs, %d bootstrap scripts", key, len(entry.Funcs), len(entry.Bootstrap))
	return entry, nil
}

// nativeCandidates returns the plugin file paths tried for key, in order.
// The digit-stripping fallback lets a key like "sqlite3" resolve to a
// plugin built as libjhp_ext_sqlite.so.
func (r *Registry) nativeCandidates(key string) []string {
	names := []string{key}
	if stripped := strings.TrimRight(key, "0123456789"); stripped != key && stripped != "" {
		names = append(names, stripped)
	}

	var candidates []string
	for _, name := range names {
		soName := "libjhp_ext_" + name + ".so"
		candidates = append(candidates,
			filepath.Join(r.extensionsDir, key, soName),
			filepath.Join(r.extensionsDir, soName),
		)
	}
	return candidates
}

func (r *Registry) loadNative(key string) ([]FunctionDesc, error) {
	for _, path := range r.nativeCandidates(key) {
		p, err := plugin.Open(path)
		if err != nil {
			continue
		}

		sym, err := p.Lookup(RegisterFuncSymbol)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: missing symbol %s: %w", path, RegisterFuncSymbol, err)
		}

		register, ok := sym.(func() RegisterV1)
		if !ok {
			return nil, fmt.Errorf("plugin %s: symbol %s has unexpected type", path, RegisterFuncSymbol)
		}

		rec := register()
		if rec.ABIVersion != AbiVersion1 {
			return nil, fmt.Errorf("plugin %s: unsupported ABI version %d", path, rec.ABIVersion)
		}

		return rec.Funcs, nil
	}
	return nil, nil
}

// discoverBootstrap finds every *.js file directly under
// extensionsDir/key/, sorted lexicographically by path.
func (r *Registry) discoverBootstrap(key string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.extensionsDir, key, "*.js"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
