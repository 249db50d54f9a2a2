package commands

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"chart-workspace/internal/gizmo"
	"chart-workspace/internal/objects"
)

// DefaultSnapshotPath is where "cmd snapshot" writes when -out is not given.
const DefaultSnapshotPath = "snapshots/chart.png"

// Workspace is what the terminal commands drive. Commands run on the main thread.
type Workspace interface {
	Restore(name string) bool
	RestoreAll()
	Remove(name string) bool
	Excluded() []string
	Duplicate(name string) (*objects.Instance, error)
	Raster() *image.RGBA
	SetGizmoMode(m gizmo.Mode)
}

// Toggles receive the debug switches. Nil fields disable the matching command.
type Toggles struct {
	Grid func(visible bool)
	FPS  func(fps, mem bool)
}

// RegisterWorkspace adds the workspace commands to r. Results are reported through out.
func RegisterWorkspace(r *Registry, ws Workspace, t Toggles, out func(string)) {
	r.Register("restore", "cmd restore NAME", nil, func() error {
		name, err := oneArg(r, "restore")
		if err != nil {
			return err
		}
		if ws.Restore(name) {
			out("restored " + name)
		} else {
			out(name + " was not excluded")
		}
		return nil
	})

	r.Register("restoreall", "cmd restoreall", nil, func() error {
		ws.RestoreAll()
		out("restored all instances")
		return nil
	})

	r.Register("remove", "cmd remove NAME", nil, func() error {
		name, err := oneArg(r, "remove")
		if err != nil {
			return err
		}
		if ws.Remove(name) {
			out("removed " + name)
		} else {
			out(name + " is already excluded")
		}
		return nil
	})

	r.Register("excluded", "cmd excluded", nil, func() error {
		names := ws.Excluded()
		if len(names) == 0 {
			out("nothing excluded")
			return nil
		}
		out("excluded: " + strings.Join(names, ", "))
		return nil
	})

	r.Register("duplicate", "cmd duplicate NAME", nil, func() error {
		name, err := oneArg(r, "duplicate")
		if err != nil {
			return err
		}
		inst, err := ws.Duplicate(name)
		if err != nil {
			return err
		}
		out("created " + inst.Name())
		return nil
	})

	snapFS := NewFlagSet("snapshot")
	snapOut := snapFS.String("out", DefaultSnapshotPath, "PNG file to write")
	r.Register("snapshot", "cmd snapshot [-out FILE]", snapFS, func() error {
		img := ws.Raster()
		if img == nil {
			return errors.New("snapshot: no chart raster")
		}
		if err := os.MkdirAll(filepath.Dir(*snapOut), 0755); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if err := imgio.Save(*snapOut, img, imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		out("chart written to " + *snapOut)
		return nil
	})

	if t.Grid != nil {
		gridFS := NewFlagSet("grid")
		show := gridFS.Bool("show", true, "draw the floor grid")
		r.Register("grid", "cmd grid [-show=false]", gridFS, func() error {
			t.Grid(*show)
			return nil
		})
	}

	if t.FPS != nil {
		fpsFS := NewFlagSet("fps")
		show := fpsFS.Bool("show", true, "draw the FPS counter")
		mem := fpsFS.Bool("mem", false, "draw heap usage")
		r.Register("fps", "cmd fps [-show=false] [-mem]", fpsFS, func() error {
			t.FPS(*show, *mem)
			return nil
		})
	}

	r.Register("mode", "cmd mode translate|rotate|scale", nil, func() error {
		arg, err := oneArg(r, "mode")
		if err != nil {
			return err
		}
		m, ok := gizmo.ParseMode(arg)
		if !ok {
			return fmt.Errorf("mode: unknown mode %q", arg)
		}
		ws.SetGizmoMode(m)
		out("gizmo mode " + m.String())
		return nil
	})

	r.Register("help", "cmd help", nil, func() error {
		for _, n := range r.Names() {
			out(r.Usage(n))
		}
		return nil
	})
}

func oneArg(r *Registry, name string) (string, error) {
	args := r.cmds[name].FlagSet.Args()
	if len(args) != 1 {
		return "", fmt.Errorf("%s: want one argument (usage: %s)", name, r.Usage(name))
	}
	return args[0], nil
}
