package catalog

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	pos, rot, scale mgl32.Vec3
	calls           int
}

func (t *target) SetTransform(p, r, s mgl32.Vec3) {
	t.pos, t.rot, t.scale = p, r, s
	t.calls++
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, 9, c.Len())
	names := c.Names()
	assert.Equal(t, "ultrawide_monitor", names[0])
	assert.True(t, c.Has("hanging_monitor_duplicated_duplicated"))

	s, err := c.Lookup("monitor_2")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{8.711, 11.422, 9.298}, s.Scale)
}

func TestApplyConvertsDegrees(t *testing.T) {
	c := Default()
	var obj target
	require.True(t, c.Apply(&obj, "monitor_2_duplicated"))
	assert.InDelta(t, 25.068*3.14159265/180, obj.rot[1], 1e-5)
	assert.Equal(t, mgl32.Vec3{-28.685, -6.409, 22.758}, obj.pos)

	first := obj
	require.True(t, c.Apply(&obj, "monitor_2_duplicated"))
	assert.Equal(t, first.pos, obj.pos)
	assert.Equal(t, first.rot, obj.rot)
	assert.Equal(t, first.scale, obj.scale)
}

func TestApplyUnknownIsNoop(t *testing.T) {
	var obj target
	assert.False(t, Default().Apply(&obj, "nope"))
	assert.Zero(t, obj.calls)

	_, err := Default().Lookup("nope")
	assert.True(t, errors.Is(err, ErrUnknownName))
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("- name: a\n- name: a\n"))
	assert.Error(t, err)

	c, err := Parse([]byte("- name: a\n  position: [1, 2, 3]\n"))
	require.NoError(t, err)
	s, _ := c.Lookup("a")
	assert.Equal(t, [3]float32{1, 1, 1}, s.Scale, "missing scale defaults to identity")
}
