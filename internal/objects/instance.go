package objects

import (
	"strings"

	"chart-workspace/internal/scene"
)

// BaseKind names one of the loaded source assets every instance is cloned from.
type BaseKind string

const (
	Ultrawide BaseKind = "ultrawide_monitor"
	Monitor   BaseKind = "monitor"
	Hanging   BaseKind = "hanging_monitor"
)

// BaseKinds lists every base kind in load order.
var BaseKinds = []BaseKind{Ultrawide, Monitor, Hanging}

// BaseKindFor derives the clone source from a catalog name prefix. Anything that is neither an
// ultrawide nor a hanging monitor is cloned from the standard monitor.
func BaseKindFor(name string) BaseKind {
	switch {
	case strings.HasPrefix(name, string(Ultrawide)):
		return Ultrawide
	case strings.HasPrefix(name, string(Hanging)):
		return Hanging
	default:
		return Monitor
	}
}

// Instance is a placed scene object. Base instances come straight from an asset load; all others
// are clones of a base.
type Instance struct {
	Node    *scene.Node
	BaseKey BaseKind
	IsBase  bool
}

// Name returns the instance's unique name.
func (i *Instance) Name() string { return i.Node.Name() }

// Info is a plain snapshot of an instance for listings.
type Info struct {
	Name     string     `json:"name"`
	Base     BaseKind   `json:"base"`
	IsBase   bool       `json:"isBase"`
	Position [3]float32 `json:"position"`
	Rotation [3]float32 `json:"rotation"`
	Scale    [3]float32 `json:"scale"`
}

// Info snapshots the instance's name and transform.
func (i *Instance) Info() Info {
	n := i.Node
	return Info{
		Name:     n.Name(),
		Base:     i.BaseKey,
		IsBase:   i.IsBase,
		Position: n.Position,
		Rotation: n.Rotation,
		Scale:    n.Scale,
	}
}
