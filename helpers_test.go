package trafficlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

// lockedBuffer is a bytes.Buffer safe for the concurrent writes of a logger.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// entries decodes the JSON lines written so far.
func (b *lockedBuffer) entries(t testing.TB) []logEntry {
	t.Helper()
	var out []logEntry
	sc := bufio.NewScanner(strings.NewReader(b.String()))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e logEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	return out
}

// newBufferService returns an initialized service writing JSON lines to a
// buffer with the plain theme.
func newBufferService(t testing.TB, level Level) (*Service, *lockedBuffer) {
	t.Helper()
	buf := &lockedBuffer{}
	cfg := DefaultConfig()
	cfg.Level = strings.ToLower(level.String())
	cfg.ConsoleLogging = false
	cfg.Output = buf
	cfg.ShutdownTimeoutMS = 20

	s := NewLogger(&cfg)
	s.Theme = PlainTheme()
	require.NoError(t, s.Initialize())
	t.Cleanup(func() { _ = s.Close() })
	return s, buf
}

func messages(entries []logEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		msg, _ := e["message"].(string)
		out = append(out, msg)
	}
	return out
}
