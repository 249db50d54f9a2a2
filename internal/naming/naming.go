package naming

import (
	"strconv"
	"strings"
)

// DefaultName is used when neither a suggestion nor a current name is available.
const DefaultName = "Model"

// Named is anything that carries a mutable name (scene nodes, instances).
type Named interface {
	Name() string
	SetName(name string)
}

// Registry tracks the names currently in use by scene objects. It never renames anything on its own;
// callers claim a name when an object enters the scene and release it when the object leaves.
type Registry struct {
	used map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{used: make(map[string]struct{})}
}

// Has reports whether name is currently claimed.
func (r *Registry) Has(name string) bool {
	_, ok := r.used[name]
	return ok
}

// UniqueName returns desired if it is unused, otherwise desired_2, desired_3, ... using the lowest free
// suffix. Blank input falls back to DefaultName. The registry is not modified.
func (r *Registry) UniqueName(desired string) string {
	base := strings.TrimSpace(desired)
	if base == "" {
		base = DefaultName
	}
	if !r.Has(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !r.Has(candidate) {
			return candidate
		}
	}
}

// Claim picks UniqueName(desired) and marks it as used.
func (r *Registry) Claim(desired string) string {
	name := r.UniqueName(desired)
	r.used[name] = struct{}{}
	return name
}

// Reserve marks name as used exactly as given. Canonical catalog names go through here
// because they must never be suffixed.
func (r *Registry) Reserve(name string) {
	r.used[name] = struct{}{}
}

// Release frees name for reuse.
func (r *Registry) Release(name string) {
	delete(r.used, name)
}

// Assign renames obj to a unique name derived from suggestion, or from the object's current name,
// or DefaultName, in that order of preference.
func (r *Registry) Assign(obj Named, suggestion string) {
	if obj == nil {
		return
	}
	desired := strings.TrimSpace(suggestion)
	if desired == "" {
		desired = strings.TrimSpace(obj.Name())
	}
	obj.SetName(r.Claim(desired))
}

// DuplicateName returns the unique name used for a free-form copy of base.
func (r *Registry) DuplicateName(base string) string {
	return r.UniqueName(base + "_duplicated")
}

// BaseNameFromPath turns an asset path like "/assets/monitor.glb" into "monitor".
func BaseNameFromPath(path string) string {
	if path == "" {
		return DefaultName
	}
	last := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		last = path[i+1:]
	}
	if last == "" {
		last = path
	}
	lower := strings.ToLower(last)
	for _, ext := range []string{".glb", ".gltf"} {
		if strings.HasSuffix(lower, ext) {
			return last[:len(last)-len(ext)]
		}
	}
	return last
}
