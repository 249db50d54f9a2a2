// Package workspace is the per-session service: it owns the exclusion set, the object manager and
// the chart feed, binds the chart to the located display surface, and exposes the restore/remove
// operations used by the terminal and the debug API.
package workspace

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"strings"
	"time"

	"chart-workspace/internal/catalog"
	"chart-workspace/internal/chart"
	"chart-workspace/internal/exclusion"
	"chart-workspace/internal/gizmo"
	"chart-workspace/internal/interaction"
	"chart-workspace/internal/objects"
	"chart-workspace/internal/orbit"
	"chart-workspace/internal/overlay"
	"chart-workspace/internal/scene"
	"chart-workspace/internal/screen"
	"chart-workspace/internal/storage"
	"chart-workspace/internal/timers"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// LocateRetry is the one-shot retry used when the display surface is not found yet.
var LocateRetry = timers.Retry{MaxAttempts: 1, Delay: 350 * time.Millisecond}

const mailboxSize = 64

// ErrClosed is returned by Call after Teardown.
var ErrClosed = errors.New("workspace: closed")

// Releaser frees backend resources for destroyed instances and the chart texture.
type Releaser interface {
	scene.Releaser
	ReleaseTexture(t *scene.Texture)
}

// Callbacks notify the host UI. Any may be nil.
type Callbacks struct {
	OnSelect         func(selected bool, pos mgl32.Vec3)
	OnPositionChange func(pos mgl32.Vec3)
	OnTransform      func(t interaction.Transform)
}

// ChartOptions configures the feed and raster.
type ChartOptions struct {
	Symbol      string
	InitialBars int
	StartPrice  float64
	Retention   int
	Width       int
	Height      int
}

// Options configures a Service. Store may be nil for an in-memory session.
type Options struct {
	Store             storage.KV
	Catalog           *catalog.Catalog
	DefaultExclusions []string
	Chart             ChartOptions
	Releaser          Releaser
	Rand              *rand.Rand
	Clock             func() time.Time
	Log               zerolog.Logger
	Callbacks         Callbacks
}

// Service is constructed once per session and passed by reference. Every method except Post and
// Call must run on the main thread.
type Service struct {
	log      zerolog.Logger
	cfg      ChartOptions
	releaser Releaser
	cb       Callbacks
	queue    *timers.Queue
	mail     chan func()
	stop     chan struct{}
	closed   bool

	scene    *scene.Scene
	excluded *exclusion.Set
	objects  *objects.Manager
	camera   *orbit.Camera
	gizmo    *gizmo.Gizmo
	input    *interaction.Controller
	overlay  overlay.State
	vp       screen.Viewport

	engine   *chart.Engine
	renderer *chart.Renderer
	series   []chart.Candle
	view     chart.Viewport
	frame    chart.Frame
	raster   *image.RGBA
	texture  *scene.Texture
	surface  *scene.Node
	dirty    bool
}

// New builds the session. Nothing is placed until the shell reports base loads.
func New(opts Options) *Service {
	cfg := opts.Chart
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = chart.DefaultWidth, chart.DefaultHeight
	}
	if cfg.InitialBars <= 0 {
		cfg.InitialBars = 120
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemory()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &Service{
		log:      opts.Log.With().Str("component", "workspace").Logger(),
		cfg:      cfg,
		releaser: opts.Releaser,
		cb:       opts.Callbacks,
		queue:    timers.New(clock),
		mail:     make(chan func(), mailboxSize),
		stop:     make(chan struct{}),
		scene:    scene.New(),
		camera:   orbit.Default(),
		gizmo:    gizmo.New(),
		renderer: chart.NewRenderer(),
		raster:   image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		texture:  &scene.Texture{Width: cfg.Width, Height: cfg.Height, Handle: -1, Chart: true},
	}
	s.overlay.Symbol = cfg.Symbol

	s.engine = chart.NewEngine(opts.Rand, clock)
	if cfg.Retention > 0 {
		s.engine.Retention = cfg.Retention
	}
	if cfg.StartPrice > 0 {
		s.engine.StartPrice = cfg.StartPrice
	}

	s.excluded = exclusion.Load(opts.Store, opts.DefaultExclusions, opts.Log)
	var rel scene.Releaser
	if opts.Releaser != nil {
		rel = opts.Releaser
	}
	s.objects = objects.New(objects.Options{
		Scene:      s.scene,
		Catalog:    opts.Catalog,
		Exclusions: s.excluded,
		Queue:      s.queue,
		Releaser:   rel,
		Log:        opts.Log,
		Hooks: objects.Hooks{
			OnReconciled: s.applyChartToUltrawides,
			OnSelect:     s.selectionChanged,
			OnRemoved:    s.instanceRemoved,
		},
	})
	s.input = interaction.New(s.camera, s.objects, s, s.gizmo, &s.overlay, interaction.Callbacks{
		OnPositionChange: s.cb.OnPositionChange,
		OnTransform:      s.cb.OnTransform,
	})
	return s
}

// Accessors for the shell.

func (s *Service) Scene() *scene.Scene { return s.scene }
func (s *Service) Objects() *objects.Manager { return s.objects }
func (s *Service) Camera() *orbit.Camera { return s.camera }
func (s *Service) Gizmo() *gizmo.Gizmo { return s.gizmo }
func (s *Service) Input() *interaction.Controller { return s.input }
func (s *Service) Overlay() *overlay.State { return &s.overlay }
func (s *Service) Raster() *image.RGBA { return s.raster }
func (s *Service) ChartTexture() *scene.Texture { return s.texture }
func (s *Service) Timers() *timers.Queue { return s.queue }
func (s *Service) Excluded() []string { return s.excluded.Names() }
func (s *Service) Frame() chart.Frame { return s.frame }
func (s *Service) ScreenViewport() screen.Viewport { return s.vp }
func (s *Service) SetGizmoMode(m gizmo.Mode) { s.gizmo.Mode = m }
func (s *Service) Lookup(n string) (*objects.Instance, bool) { return s.objects.Lookup(n) }

// Instances snapshots every live instance in placement order.
func (s *Service) Instances() []objects.Info {
	live := s.objects.Instances()
	out := make([]objects.Info, len(live))
	for i, inst := range live {
		out[i] = inst.Info()
	}
	return out
}

// SetCallbacks replaces the host callbacks.
func (s *Service) SetCallbacks(cb Callbacks) {
	s.cb = cb
	s.rewireInput()
}

func (s *Service) rewireInput() {
	s.input.SetCallbacks(interaction.Callbacks{
		OnPositionChange: s.cb.OnPositionChange,
		OnTransform:      s.cb.OnTransform,
	})
}

// Series returns the current candle series. Callers must not modify it.
func (s *Service) Series() []chart.Candle { return s.series }

// Viewport returns the visible chart window.
func (s *Service) Viewport() *chart.Viewport { return &s.view }

// Scale returns the unpadded price range of the last redraw.
func (s *Service) Scale() chart.Scale { return s.frame.Scale }

// Surface returns the located display mesh while its instance is live.
func (s *Service) Surface() *scene.Node {
	if s.surface == nil || s.objects.FindRoot(s.surface) == nil {
		return nil
	}
	return s.surface
}

// TakeDirty reports whether the raster changed since the last call.
func (s *Service) TakeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

// Redraw renders the visible window into the raster and publishes the price ticks.
func (s *Service) Redraw() {
	s.frame = s.renderer.Draw(s.raster, s.series, s.view.Start, s.view.Count)
	s.overlay.Ticks = s.frame.Ticks
	s.dirty = true
}

// BaseLoaded places a loaded base model. The primary ultrawide also gets the chart.
func (s *Service) BaseLoaded(kind objects.BaseKind, root *scene.Node) {
	inst, err := s.objects.BaseLoaded(kind, root)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring base")
		return
	}
	if kind != objects.Ultrawide {
		return
	}
	if s.cb.OnPositionChange != nil {
		s.cb.OnPositionChange(inst.Node.Position)
	}
	s.setupChart(0)
}

// BaseFailed records a base that will never load.
func (s *Service) BaseFailed(kind objects.BaseKind, err error) {
	s.objects.BaseFailed(kind, err)
}

func (s *Service) setupChart(attempt int) {
	base := s.objects.Base(objects.Ultrawide)
	if base == nil {
		return
	}
	surf := screen.Locate(base.Node)
	if surf == nil {
		if !LocateRetry.Schedule(s.queue, attempt, s.setupChart) {
			s.log.Warn().Str("model", base.Name()).Msg("display surface not found; chart disabled")
		}
		return
	}
	s.surface = surf
	s.bindChart(surf)
	s.series = s.engine.Generate(s.cfg.InitialBars, s.engine.StartPrice)
	s.view = chart.NewViewport(s.cfg.InitialBars, len(s.series))
	s.Redraw()
	s.overlay.SetStats(chart.Latest(s.series))
	s.log.Info().Str("surface", surf.Name()).Int("bars", len(s.series)).Msg("chart bound")
}

// bindChart points surf at the chart texture. Multi-material meshes replace only textured slots,
// or every slot when none is textured.
func (s *Service) bindChart(surf *scene.Node) {
	if surf == nil || surf.Mesh == nil {
		return
	}
	mats := surf.Mesh.Materials
	if len(mats) == 0 {
		surf.Mesh.Materials = []*scene.Material{s.chartMaterial(nil)}
		return
	}
	replaced := false
	if len(mats) > 1 {
		for i, m := range mats {
			if m != nil && m.Map != nil {
				mats[i] = s.chartMaterial(m)
				replaced = true
			}
		}
	}
	if !replaced {
		for i, m := range mats {
			mats[i] = s.chartMaterial(m)
		}
	}
}

func (s *Service) chartMaterial(from *scene.Material) *scene.Material {
	m := from
	if m == nil {
		m = scene.NewMaterial("ChartScreen")
	}
	m.Map = s.texture
	m.Unlit = true
	m.Color = [4]uint8{255, 255, 255, 255}
	return m
}

// applyChartToUltrawides binds the chart to every live ultrawide instance after reconciliation. If
// the interactive surface left the scene, the first ultrawide found takes over.
func (s *Service) applyChartToUltrawides() {
	if s.surface == nil {
		return
	}
	live := s.Surface() != nil
	for _, inst := range s.objects.Instances() {
		if !strings.HasPrefix(inst.Name(), string(objects.Ultrawide)) {
			continue
		}
		surf := screen.Locate(inst.Node)
		if surf == nil {
			continue
		}
		s.bindChart(surf)
		if !live {
			s.surface, live = surf, true
			s.log.Debug().Str("instance", inst.Name()).Msg("chart surface rebound")
		}
	}
	s.dirty = true
}

func (s *Service) selectionChanged(inst *objects.Instance) {
	if inst == nil {
		s.gizmo.Detach()
	}
	if s.cb.OnSelect == nil {
		return
	}
	if inst == nil {
		s.cb.OnSelect(false, mgl32.Vec3{})
		return
	}
	s.cb.OnSelect(true, inst.Node.Position)
}

func (s *Service) instanceRemoved(inst *objects.Instance) {
	if s.gizmo.Target() == inst.Node {
		s.gizmo.Detach()
	}
	if s.surface != nil && inst.Node.Contains(s.surface) {
		s.overlay.HasBounds = false
	}
}

// Restore removes name from the exclusion set and reconciles. It reports whether name was excluded.
func (s *Service) Restore(name string) bool {
	ok := s.excluded.Remove(name)
	s.objects.Reconcile()
	return ok
}

// RestoreAll clears the exclusion set and reconciles.
func (s *Service) RestoreAll() {
	s.excluded.Clear()
	s.objects.Reconcile()
}

// Remove excludes name and reconciles. It reports whether name was newly excluded.
func (s *Service) Remove(name string) bool {
	ok := s.excluded.Add(name)
	s.objects.Reconcile()
	return ok
}

// Duplicate copies a live instance under a fresh name.
func (s *Service) Duplicate(name string) (*objects.Instance, error) {
	return s.objects.Duplicate(name)
}

// Tick appends one candle, keeps the window valid, and redraws.
func (s *Service) Tick() {
	if s.surface == nil {
		return
	}
	s.series = s.engine.AppendNext(s.series)
	s.view.Tick(len(s.series))
	s.Redraw()
	s.input.Tick()
}

// Resize updates the render viewport.
func (s *Service) Resize(vp screen.Viewport) {
	s.vp = vp
	s.input.SetViewport(vp)
	s.updateBounds()
}

// Step runs one frame of main-thread work: due timers, posted calls, and the screen bounds.
func (s *Service) Step() {
	s.queue.Run()
	s.drain()
	s.updateBounds()
	s.overlay.Instances = s.objects.Len()
}

func (s *Service) updateBounds() {
	surf := s.Surface()
	if surf == nil {
		s.overlay.HasBounds = false
		return
	}
	s.overlay.Bounds, s.overlay.HasBounds = screen.Project(surf, s.camera.ViewProjection(s.vp), s.vp)
}

// Post queues fn for the next Step. It reports false when the mailbox is full.
func (s *Service) Post(fn func()) bool {
	select {
	case s.mail <- fn:
		return true
	default:
		return false
	}
}

// Call runs fn on the main thread during a later Step and waits for it to finish.
func (s *Service) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case s.mail <- func() { fn(); close(done) }:
	case <-s.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-s.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) drain() {
	for n := len(s.mail); n > 0; n-- {
		select {
		case fn := <-s.mail:
			if s.closed {
				continue
			}
			fn()
		default:
			return
		}
	}
}

// Teardown cancels pending timers, releases every cloned instance and the chart texture.
func (s *Service) Teardown() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.stop)
	s.queue.Clear()
	s.gizmo.Detach()
	s.objects.Teardown()
	s.camera.EnableZoom = true
	if s.releaser != nil {
		s.releaser.ReleaseTexture(s.texture)
	}
	s.surface = nil
	s.log.Info().Msg("workspace torn down")
}
