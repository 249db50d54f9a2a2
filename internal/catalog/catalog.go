// Package catalog holds the fixed placement table for named display instances.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknownName is returned by Lookup for names that have no entry.
var ErrUnknownName = errors.New("catalog: unknown name")

// TransformSpec is the target placement for one canonical name. Rotation is authored in degrees.
type TransformSpec struct {
	Name        string     `yaml:"name"`
	Position    [3]float32 `yaml:"position"`
	RotationDeg [3]float32 `yaml:"rotation"`
	Scale       [3]float32 `yaml:"scale"`
}

// RotationRad converts the authored rotation to radians.
func (t TransformSpec) RotationRad() mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.DegToRad(t.RotationDeg[0]),
		mgl32.DegToRad(t.RotationDeg[1]),
		mgl32.DegToRad(t.RotationDeg[2]),
	}
}

// Transformable receives a placement; scene nodes implement it.
type Transformable interface {
	SetTransform(position, rotation, scale mgl32.Vec3)
}

// Catalog is an immutable, ordered set of TransformSpecs.
type Catalog struct {
	specs map[string]TransformSpec
	order []string
}

// New builds a catalog from specs. Duplicate names are rejected.
func New(specs []TransformSpec) (*Catalog, error) {
	c := &Catalog{specs: make(map[string]TransformSpec, len(specs))}
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("catalog: entry without name")
		}
		if _, dup := c.specs[s.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate name %q", s.Name)
		}
		if s.Scale == [3]float32{} {
			s.Scale = [3]float32{1, 1, 1}
		}
		c.specs[s.Name] = s
		c.order = append(c.order, s.Name)
	}
	return c, nil
}

// Parse reads a YAML list of entries.
func Parse(data []byte) (*Catalog, error) {
	var specs []TransformSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(specs)
}

// Default returns the built-in placement table.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog file. An empty path means the built-in table.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.order) }

// Names returns the canonical names in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Has reports whether name has an entry.
func (c *Catalog) Has(name string) bool {
	_, ok := c.specs[name]
	return ok
}

// Lookup returns the spec for name.
func (c *Catalog) Lookup(name string) (TransformSpec, error) {
	s, ok := c.specs[name]
	if !ok {
		return TransformSpec{}, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return s, nil
}

// Apply sets obj's transform to the spec for name, converting degrees to radians. It reports whether
// an entry existed; unknown names leave obj untouched.
func (c *Catalog) Apply(obj Transformable, name string) bool {
	s, ok := c.specs[name]
	if !ok || obj == nil {
		return false
	}
	obj.SetTransform(mgl32.Vec3(s.Position), s.RotationRad(), mgl32.Vec3(s.Scale))
	return true
}
