package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type object struct{ name string }

func (o *object) Name() string      { return o.name }
func (o *object) SetName(n string) { o.name = n }

func TestClaimProducesDistinctNames(t *testing.T) {
	r := NewRegistry()
	inputs := []string{"monitor", "monitor", "screen", "monitor", "screen", "monitor_2", "monitor"}
	seen := make(map[string]bool)
	firsts := make(map[string]bool)
	for _, in := range inputs {
		got := r.Claim(in)
		require.False(t, seen[got], "duplicate name %q", got)
		seen[got] = true
		if !firsts[in] && in != "monitor_2" {
			assert.Equal(t, in, got, "first occurrence must be returned unchanged")
		}
		firsts[in] = true
	}
	assert.True(t, seen["monitor_3"])
	assert.True(t, seen["monitor_4"])
}

func TestUniqueNameUsesLowestFreeSuffix(t *testing.T) {
	r := NewRegistry()
	r.Reserve("monitor")
	r.Reserve("monitor_3")
	assert.Equal(t, "monitor_2", r.UniqueName("monitor"))
	r.Reserve("monitor_2")
	assert.Equal(t, "monitor_4", r.UniqueName("monitor"))
	r.Release("monitor_2")
	assert.Equal(t, "monitor_2", r.UniqueName("monitor"))
}

func TestUniqueNameBlankFallsBack(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, DefaultName, r.UniqueName("   "))
	r.Reserve(DefaultName)
	assert.Equal(t, DefaultName+"_2", r.UniqueName(""))
}

func TestAssignPrefersSuggestionThenCurrentName(t *testing.T) {
	r := NewRegistry()
	o := &object{name: "Cube"}
	r.Assign(o, "screen")
	assert.Equal(t, "screen", o.name)

	o2 := &object{name: "Cube"}
	r.Assign(o2, "")
	assert.Equal(t, "Cube", o2.name)

	o3 := &object{}
	r.Assign(o3, "")
	assert.Equal(t, DefaultName, o3.name)

	o4 := &object{name: "Cube"}
	r.Assign(o4, "")
	assert.Equal(t, "Cube_2", o4.name)
}

func TestDuplicateName(t *testing.T) {
	r := NewRegistry()
	r.Reserve("monitor_2_duplicated")
	assert.Equal(t, "monitor_2_duplicated_2", r.DuplicateName("monitor_2"))
	assert.Equal(t, "hanging_monitor_duplicated", r.DuplicateName("hanging_monitor"))
}

func TestBaseNameFromPath(t *testing.T) {
	assert.Equal(t, "ultrawide_monitor", BaseNameFromPath("/ultrawide_monitor.glb"))
	assert.Equal(t, "monitor", BaseNameFromPath(`assets\models\monitor.GLTF`))
	assert.Equal(t, "notes.txt", BaseNameFromPath("notes.txt"))
	assert.Equal(t, DefaultName, BaseNameFromPath(""))
}
