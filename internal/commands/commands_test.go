package commands

import (
	"errors"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-workspace/internal/gizmo"
	"chart-workspace/internal/objects"
	"chart-workspace/internal/scene"
)

type fakeWorkspace struct {
	excluded map[string]bool
	mode     gizmo.Mode
	raster   *image.RGBA
}

func (f *fakeWorkspace) Restore(name string) bool {
	ok := f.excluded[name]
	delete(f.excluded, name)
	return ok
}

func (f *fakeWorkspace) RestoreAll() { f.excluded = map[string]bool{} }

func (f *fakeWorkspace) Remove(name string) bool {
	if f.excluded[name] {
		return false
	}
	f.excluded[name] = true
	return true
}

func (f *fakeWorkspace) Excluded() []string {
	var out []string
	for n := range f.excluded {
		out = append(out, n)
	}
	return out
}

func (f *fakeWorkspace) Duplicate(name string) (*objects.Instance, error) {
	if name != "monitor" {
		return nil, errors.New("unknown instance")
	}
	return &objects.Instance{Node: scene.NewNode("monitor_duplicated"), BaseKey: objects.Monitor}, nil
}

func (f *fakeWorkspace) Raster() *image.RGBA { return f.raster }

func (f *fakeWorkspace) SetGizmoMode(m gizmo.Mode) { f.mode = m }

type rig struct {
	reg  *Registry
	ws   *fakeWorkspace
	out  []string
	grid []bool
	fps  [][2]bool
}

func newRig() *rig {
	r := &rig{reg: NewRegistry(), ws: &fakeWorkspace{excluded: map[string]bool{"monitor_2": true}}}
	RegisterWorkspace(r.reg, r.ws, Toggles{
		Grid: func(v bool) { r.grid = append(r.grid, v) },
		FPS:  func(fps, mem bool) { r.fps = append(r.fps, [2]bool{fps, mem}) },
	}, func(line string) { r.out = append(r.out, line) })
	return r
}

func (r *rig) run(t *testing.T, line string) error {
	t.Helper()
	args, ok := Parse(line)
	require.True(t, ok, line)
	return r.reg.Execute(args)
}

func TestParse(t *testing.T) {
	args, ok := Parse("cmd restore monitor_2")
	assert.True(t, ok)
	assert.Equal(t, []string{"restore", "monitor_2"}, args)

	args, ok = Parse("cmd   ")
	assert.True(t, ok)
	assert.Nil(t, args)

	_, ok = Parse("restore monitor_2")
	assert.False(t, ok)
	_, ok = Parse("CMD restore")
	assert.False(t, ok)
}

func TestExecuteErrors(t *testing.T) {
	r := newRig()
	assert.EqualError(t, r.reg.Execute(nil), "missing subcommand")
	assert.EqualError(t, r.reg.Execute([]string{"teleport"}), "unknown command: teleport")
	assert.Error(t, r.run(t, "cmd restore"))
	assert.Error(t, r.run(t, "cmd grid -bogus"))
}

func TestExclusionCommands(t *testing.T) {
	r := newRig()

	require.NoError(t, r.run(t, "cmd restore monitor_2"))
	assert.Equal(t, "restored monitor_2", r.out[len(r.out)-1])
	require.NoError(t, r.run(t, "cmd restore monitor_2"))
	assert.Equal(t, "monitor_2 was not excluded", r.out[len(r.out)-1])

	require.NoError(t, r.run(t, "cmd excluded"))
	assert.Equal(t, "nothing excluded", r.out[len(r.out)-1])

	require.NoError(t, r.run(t, "cmd remove Object_7"))
	assert.True(t, r.ws.excluded["Object_7"])
	require.NoError(t, r.run(t, "cmd excluded"))
	assert.Equal(t, "excluded: Object_7", r.out[len(r.out)-1])

	require.NoError(t, r.run(t, "cmd restoreall"))
	assert.Empty(t, r.ws.excluded)
}

func TestDuplicateCommand(t *testing.T) {
	r := newRig()
	require.NoError(t, r.run(t, "cmd duplicate monitor"))
	assert.Equal(t, "created monitor_duplicated", r.out[len(r.out)-1])
	assert.Error(t, r.run(t, "cmd duplicate nothing"))
}

func TestTogglesResetFlagsBetweenRuns(t *testing.T) {
	r := newRig()
	require.NoError(t, r.run(t, "cmd grid -show=false"))
	require.NoError(t, r.run(t, "cmd grid"))
	assert.Equal(t, []bool{false, true}, r.grid)

	require.NoError(t, r.run(t, "cmd fps -mem"))
	require.NoError(t, r.run(t, "cmd fps -show=false"))
	assert.Equal(t, [][2]bool{{true, true}, {false, false}}, r.fps)
}

func TestModeCommand(t *testing.T) {
	r := newRig()
	require.NoError(t, r.run(t, "cmd mode rotate"))
	assert.Equal(t, gizmo.Rotate, r.ws.mode)
	require.NoError(t, r.run(t, "cmd mode s"))
	assert.Equal(t, gizmo.Scale, r.ws.mode)
	assert.Error(t, r.run(t, "cmd mode shear"))
	assert.Equal(t, gizmo.Scale, r.ws.mode)
}

func TestSnapshotWritesPNG(t *testing.T) {
	r := newRig()
	assert.Error(t, r.run(t, "cmd snapshot"), "no raster yet")

	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 0x26, G: 0xa6, B: 0x9a, A: 0xff})
	r.ws.raster = img

	path := filepath.Join(t.TempDir(), "shots", "chart.png")
	require.NoError(t, r.run(t, "cmd snapshot -out "+path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
}

func TestHelpListsCommands(t *testing.T) {
	r := newRig()
	require.NoError(t, r.run(t, "cmd help"))
	assert.Contains(t, r.out, "cmd restore NAME")
	assert.Contains(t, r.out, "cmd mode translate|rotate|scale")
	assert.Len(t, r.out, len(r.reg.Names()))
}
