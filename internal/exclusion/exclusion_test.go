package exclusion

import (
	"encoding/json"
	"testing"

	"chart-workspace/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = []string{"ultrawide_monitor_2", "hanging_monitor_2"}

func stored(t *testing.T, kv storage.KV) []string {
	data, err := kv.Get(StorageKey)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	return names
}

func TestLoadMergesDefaultsAndPersists(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(StorageKey, []byte(`["monitor_2", 7]`)))

	s := Load(kv, defaults, zerolog.Nop())
	assert.Equal(t, []string{"hanging_monitor_2", "monitor_2", "ultrawide_monitor_2"}, s.Names())
	assert.Equal(t, s.Names(), stored(t, kv))
}

func TestMalformedStoredDataIsIgnored(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(StorageKey, []byte(`{not json`)))
	s := Load(kv, defaults, zerolog.Nop())
	assert.Equal(t, 2, s.Len())

	require.NoError(t, kv.Put(StorageKey, []byte(`{"a":1}`)))
	s = Load(kv, nil, zerolog.Nop())
	assert.Equal(t, 0, s.Len())
}

func TestMutationsArePersisted(t *testing.T) {
	kv := storage.NewMemory()
	s := Load(kv, defaults, zerolog.Nop())

	assert.True(t, s.Add("monitor"))
	assert.False(t, s.Add("monitor"))
	assert.Contains(t, stored(t, kv), "monitor")

	assert.True(t, s.Remove("ultrawide_monitor_2"))
	assert.False(t, s.Has("ultrawide_monitor_2"))
	assert.NotContains(t, stored(t, kv), "ultrawide_monitor_2")

	s.Clear()
	assert.Empty(t, stored(t, kv))

	reloaded := Load(kv, nil, zerolog.Nop())
	assert.Equal(t, 0, reloaded.Len())
}

func TestNilStore(t *testing.T) {
	s := Load(nil, defaults, zerolog.Nop())
	assert.True(t, s.Has("hanging_monitor_2"))
	s.Add("x")
	assert.True(t, s.Has("x"))
}
