// Package objects keeps the scene consistent with the placement catalog and the exclusion set.
package objects

import (
	"errors"
	"fmt"
	"time"

	"chart-workspace/internal/catalog"
	"chart-workspace/internal/exclusion"
	"chart-workspace/internal/naming"
	"chart-workspace/internal/scene"
	"chart-workspace/internal/timers"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// ErrUnknownInstance is returned for names with no live instance.
var ErrUnknownInstance = errors.New("objects: unknown instance")

// DefaultRetry is the reconciliation retry policy used while bases are still loading.
var DefaultRetry = timers.Retry{MaxAttempts: 8, Delay: 300 * time.Millisecond}

// GridSize is the world extent used when normalizing a base that has no catalog entry.
const GridSize = 20

// Hooks are optional callbacks fired from the main thread.
type Hooks struct {
	// OnPlaced fires after an instance enters the index.
	OnPlaced func(inst *Instance)
	// OnRemoved fires after an instance leaves the index.
	OnRemoved func(inst *Instance)
	// OnReconciled fires at the end of every reconciliation pass that ran.
	OnReconciled func()
	// OnSelect fires when the selection changes; inst is nil on deselect.
	OnSelect func(inst *Instance)
}

// Options configures a Manager. Scene, Catalog and Exclusions are required.
type Options struct {
	Scene      *scene.Scene
	Catalog    *catalog.Catalog
	Exclusions *exclusion.Set
	Names      *naming.Registry
	Queue      *timers.Queue
	Releaser   scene.Releaser
	Retry      timers.Retry
	// Expected lists the base kinds that must settle before reconciliation; defaults to BaseKinds.
	Expected []BaseKind
	Log      zerolog.Logger
	Hooks    Hooks
}

// Manager owns every Instance. The name index is mutated only here; readers must tolerate an
// instance disappearing between frames.
type Manager struct {
	scene    *scene.Scene
	catalog  *catalog.Catalog
	excluded *exclusion.Set
	names    *naming.Registry
	queue    *timers.Queue
	releaser scene.Releaser
	retry    timers.Retry
	log      zerolog.Logger
	hooks    Hooks

	expected []BaseKind
	bases    map[BaseKind]*Instance
	settled  map[BaseKind]bool
	index    map[string]*Instance
	roots    []*Instance
	selected *Instance
}

// New returns a Manager with no bases loaded.
func New(opts Options) *Manager {
	m := &Manager{
		scene:    opts.Scene,
		catalog:  opts.Catalog,
		excluded: opts.Exclusions,
		names:    opts.Names,
		queue:    opts.Queue,
		releaser: opts.Releaser,
		retry:    opts.Retry,
		log:      opts.Log.With().Str("component", "objects").Logger(),
		hooks:    opts.Hooks,
		expected: opts.Expected,
		bases:    make(map[BaseKind]*Instance),
		settled:  make(map[BaseKind]bool),
		index:    make(map[string]*Instance),
	}
	if m.names == nil {
		m.names = naming.NewRegistry()
	}
	if m.queue == nil {
		m.queue = timers.New(nil)
	}
	if m.retry == (timers.Retry{}) {
		m.retry = DefaultRetry
	}
	if len(m.expected) == 0 {
		m.expected = BaseKinds
	}
	return m
}

// SetHooks replaces the callbacks.
func (m *Manager) SetHooks(h Hooks) { m.hooks = h }

// Names returns the naming registry shared with the scene.
func (m *Manager) Names() *naming.Registry { return m.names }

// BaseLoaded registers node as the base instance for kind, places it, and reconciles once every
// expected base has settled.
func (m *Manager) BaseLoaded(kind BaseKind, node *scene.Node) (*Instance, error) {
	if node == nil {
		return nil, fmt.Errorf("base %s: nil node", kind)
	}
	if _, dup := m.bases[kind]; dup {
		return nil, fmt.Errorf("base %s already loaded", kind)
	}
	node.SetName(string(kind))
	node.Traverse(func(n *scene.Node) {
		if n.IsMesh() {
			n.CastShadow = true
			n.ReceiveShadow = true
		}
	})
	inst := &Instance{Node: node, BaseKey: kind, IsBase: true}
	m.bases[kind] = inst
	if !m.catalog.Apply(node, node.Name()) {
		m.normalize(inst)
	}
	if m.excluded.Has(node.Name()) {
		m.log.Debug().Str("base", string(kind)).Msg("base excluded; kept detached")
	} else {
		m.place(inst)
	}
	m.log.Info().Str("base", string(kind)).Msg("base loaded")
	m.settle(kind)
	return inst, nil
}

// BaseFailed records that kind will never load. Catalog entries cloned from it never appear.
func (m *Manager) BaseFailed(kind BaseKind, err error) {
	m.log.Error().Err(err).Str("base", string(kind)).Msg("base load failed")
	m.settle(kind)
}

func (m *Manager) settle(kind BaseKind) {
	m.settled[kind] = true
	if m.AllSettled() {
		m.Reconcile()
		m.ApplyAll()
	}
}

// AllSettled reports whether every expected base has loaded or failed.
func (m *Manager) AllSettled() bool {
	for _, k := range m.expected {
		if !m.settled[k] {
			return false
		}
	}
	return true
}

// Base returns the base instance for kind, loaded or nil.
func (m *Manager) Base(kind BaseKind) *Instance {
	return m.bases[kind]
}

// Reconcile runs one reconciliation pass, retrying later if bases are still missing.
func (m *Manager) Reconcile() {
	m.reconcile(0)
}

func (m *Manager) reconcile(attempt int) {
	if !m.AllSettled() {
		if !m.retry.Schedule(m.queue, attempt, m.reconcile) {
			m.log.Debug().Int("attempt", attempt).Msg("bases still loading; giving up")
		}
		return
	}

	for _, inst := range m.Instances() {
		if m.excluded.Has(inst.Name()) {
			m.removeInstance(inst)
		}
	}

	missingBase := false
	for _, name := range m.catalog.Names() {
		if m.excluded.Has(name) {
			continue
		}
		if _, ok := m.index[name]; ok {
			continue
		}
		kind := BaseKindFor(name)
		base := m.bases[kind]
		if base == nil {
			missingBase = true
			continue
		}
		clone, err := base.Node.Clone()
		if err != nil {
			m.log.Warn().Err(err).Str("name", name).Msg("clone failed")
			continue
		}
		clone.SetName(name)
		m.catalog.Apply(clone, name)
		m.place(&Instance{Node: clone, BaseKey: kind})
	}

	if m.hooks.OnReconciled != nil {
		m.hooks.OnReconciled()
	}
	if missingBase && !m.retry.Schedule(m.queue, attempt, m.reconcile) {
		m.log.Debug().Int("attempt", attempt).Msg("missing base; giving up")
	}
}

// ApplyAll re-applies the catalog transform to every tracked instance that has an entry.
func (m *Manager) ApplyAll() {
	for _, inst := range m.roots {
		m.catalog.Apply(inst.Node, inst.Name())
	}
}

func (m *Manager) place(inst *Instance) {
	m.names.Reserve(inst.Name())
	m.scene.Add(inst.Node)
	m.index[inst.Name()] = inst
	m.roots = append(m.roots, inst)
	if m.hooks.OnPlaced != nil {
		m.hooks.OnPlaced(inst)
	}
}

// removeInstance detaches inst from the scene and index. Base instances keep their resources
// so they can still be cloned.
func (m *Manager) removeInstance(inst *Instance) {
	if m.selected == inst {
		m.Deselect()
	}
	m.scene.Remove(inst.Node)
	if !inst.IsBase {
		inst.Node.Release(m.releaser)
	}
	delete(m.index, inst.Name())
	for i, r := range m.roots {
		if r == inst {
			m.roots = append(m.roots[:i], m.roots[i+1:]...)
			break
		}
	}
	m.names.Release(inst.Name())
	m.log.Debug().Str("name", inst.Name()).Bool("base", inst.IsBase).Msg("instance removed")
	if m.hooks.OnRemoved != nil {
		m.hooks.OnRemoved(inst)
	}
}

// normalize places a base with no catalog entry: grounded on y=0, centered, shrunk when larger than
// the grid, and offset sideways from the ultrawide.
func (m *Manager) normalize(inst *Instance) {
	n := inst.Node
	n.UpdateWorldMatrix()
	box := n.WorldBounds()
	if box.IsEmpty() {
		return
	}
	center := box.Center()
	n.Position = n.Position.Sub(mgl32.Vec3{center[0], box.Min[1], center[2]})
	size := box.Size()
	if maxDim := math32.Max(size[0], math32.Max(size[1], size[2])); maxDim > GridSize*0.8 {
		s := GridSize * 0.5 / maxDim
		n.Scale = mgl32.Vec3{s, s, s}
	}
	n.Position[0] += m.sideOffset(inst.BaseKey)
	n.UpdateWorldMatrix()
}

func (m *Manager) sideOffset(kind BaseKind) float32 {
	width := float32(3)
	if u := m.bases[Ultrawide]; u != nil && u.Node != nil {
		if w := u.Node.WorldBounds().Size()[0]; w > 0 {
			width = w
		}
	}
	side := width/2 + 1
	switch kind {
	case Monitor:
		return side + 1
	case Hanging:
		return -side - 1
	default:
		return 0
	}
}

// Lookup returns the live instance with name.
func (m *Manager) Lookup(name string) (*Instance, bool) {
	inst, ok := m.index[name]
	return inst, ok
}

// Len returns the number of live instances.
func (m *Manager) Len() int { return len(m.roots) }

// Instances returns the live instances in placement order.
func (m *Manager) Instances() []*Instance {
	out := make([]*Instance, len(m.roots))
	copy(out, m.roots)
	return out
}

// Roots returns the scene nodes of every live instance, for ray casting.
func (m *Manager) Roots() []*scene.Node {
	out := make([]*scene.Node, 0, len(m.roots))
	for _, r := range m.roots {
		out = append(out, r.Node)
	}
	return out
}

// FindRoot returns the live instance whose subtree contains node.
func (m *Manager) FindRoot(node *scene.Node) *Instance {
	if node == nil {
		return nil
	}
	for _, r := range m.roots {
		if r.Node.Contains(node) {
			return r
		}
	}
	return nil
}

// Duplicate clones a live instance under a fresh unique name. A name that happens to be canonical
// takes its catalog transform; otherwise the copy is offset one unit along x.
func (m *Manager) Duplicate(name string) (*Instance, error) {
	src, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, name)
	}
	clone, err := src.Node.Clone()
	if err != nil {
		return nil, err
	}
	candidate := m.names.DuplicateName(name)
	for i := 2; m.excluded.Has(candidate) || m.names.Has(candidate); i++ {
		candidate = fmt.Sprintf("%s_duplicated_%d", name, i)
	}
	clone.SetName(candidate)
	if !m.catalog.Apply(clone, clone.Name()) {
		clone.Position[0]++
		clone.UpdateWorldMatrix()
	}
	inst := &Instance{Node: clone, BaseKey: src.BaseKey}
	m.place(inst)
	return inst, nil
}

// Select makes inst the current selection.
func (m *Manager) Select(inst *Instance) {
	if inst == m.selected {
		return
	}
	m.selected = inst
	if m.hooks.OnSelect != nil {
		m.hooks.OnSelect(inst)
	}
}

// Deselect clears the selection.
func (m *Manager) Deselect() {
	if m.selected == nil {
		return
	}
	m.selected = nil
	if m.hooks.OnSelect != nil {
		m.hooks.OnSelect(nil)
	}
}

// Selected returns the selected instance or nil.
func (m *Manager) Selected() *Instance { return m.selected }

// Teardown releases every cloned instance and detaches everything from the scene. Base resources
// are left to the asset backend that loaded them.
func (m *Manager) Teardown() {
	for _, inst := range m.roots {
		m.scene.Remove(inst.Node)
		if !inst.IsBase {
			inst.Node.Release(m.releaser)
		}
	}
	m.roots = nil
	m.index = make(map[string]*Instance)
	m.selected = nil
}
