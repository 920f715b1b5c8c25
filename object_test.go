package trafficlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderObject(t *testing.T) {
	s, _ := newBufferService(t, DebugLevel)
	obj := map[string]any{"ok": true}

	t.Run("enabled level renders indented json", func(t *testing.T) {
		out, err := s.RenderObject(InfoLevel, obj)
		require.NoError(t, err)
		assert.Equal(t, "\n\n{\n  \"ok\": true\n}\n", out)
	})

	t.Run("suppressed level renders a notice", func(t *testing.T) {
		out, err := s.RenderObject(TraceLevel, obj)
		require.NoError(t, err)
		assert.Equal(t, "*set loglevel to `TRACE` to render object*", out)
	})

	t.Run("silent is rejected", func(t *testing.T) {
		_, err := s.RenderObject(SilentLevel, obj)
		var lerr *LevelError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, SilentLevel, lerr.Value)
	})

	t.Run("unknown level is rejected", func(t *testing.T) {
		_, err := s.RenderObject(Level(12), obj)
		require.Error(t, err)
	})
}

func TestLogObject(t *testing.T) {
	s, buf := newBufferService(t, DebugLevel)

	require.NoError(t, s.LogObject(InfoLevel, "payload:", []int{1, 2}))
	require.Error(t, s.LogObject(SilentLevel, "never", nil))

	entries := buf.entries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "payload:\n\n[\n  1,\n  2\n]\n", entries[0]["message"])
}
