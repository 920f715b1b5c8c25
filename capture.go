package trafficlog

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/felixge/httpsnoop"
)

// capturePool recycles capture buffers between exchanges to reduce allocations
var capturePool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// CaptureSink decorates an http.ResponseWriter: every chunk written through
// it is recorded and then forwarded unchanged. End finalises the capture and
// notifies the OnFinish subscribers. A CaptureSink belongs to one exchange
// and is not safe for concurrent use, like the ResponseWriter it wraps.
type CaptureSink struct {
	w           http.ResponseWriter
	proto       string
	limit       int
	inferLength bool

	buf      *bytes.Buffer
	overflow bool
	written  int64
	failed   bool
	hijacked bool

	headerWritten bool
	code          int
	head          string
	declared      string

	ended    bool
	payload  *Payload
	onFinish []func(*CaptureSink)
}

// NewCaptureSink wraps w for a response sent with protocol proto (as in
// "HTTP/1.1"). At most limit bytes are retained; longer bodies are forwarded
// but never rendered.
func NewCaptureSink(w http.ResponseWriter, proto string, limit int) *CaptureSink {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}
	buf := capturePool.Get().(*bytes.Buffer)
	buf.Reset()
	return &CaptureSink{w: w, proto: proto, limit: limit, buf: buf}
}

// ResponseWriter returns a writer to hand to the next handler. It routes
// writes through the sink and keeps the optional interfaces (http.Flusher,
// http.Hijacker, io.ReaderFrom, http.Pusher) of the wrapped writer.
func (c *CaptureSink) ResponseWriter() http.ResponseWriter {
	return httpsnoop.Wrap(c.w, httpsnoop.Hooks{
		Write: func(httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return c.Write
		},
		WriteHeader: func(httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return c.WriteHeader
		},
		ReadFrom: func(httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				// hide ReadFrom so io.Copy goes through Write
				return io.Copy(struct{ io.Writer }{c}, src)
			}
		},
		Flush: func(next httpsnoop.FlushFunc) httpsnoop.FlushFunc {
			return func() {
				c.snapshotImplicit()
				next()
			}
		},
		Hijack: func(next httpsnoop.HijackFunc) httpsnoop.HijackFunc {
			return func() (net.Conn, *bufio.ReadWriter, error) {
				conn, rw, err := next()
				if err == nil {
					c.hijacked = true
				}
				return conn, rw, err
			}
		},
	})
}

// Header returns the header map of the wrapped writer.
func (c *CaptureSink) Header() http.Header {
	return c.w.Header()
}

// WriteHeader records the response head and forwards code. Informational
// codes other than 101 may precede the final head.
func (c *CaptureSink) WriteHeader(code int) {
	if !c.headerWritten {
		c.snapshot(code)
		if code >= http.StatusOK || code == http.StatusSwitchingProtocols {
			c.headerWritten = true
		}
	}
	c.w.WriteHeader(code)
}

// Write records chunk and forwards it unchanged, returning what the wrapped
// writer returns.
func (c *CaptureSink) Write(chunk []byte) (int, error) {
	c.snapshotImplicit()
	c.record(chunk)

	n, err := c.w.Write(chunk)
	c.written += int64(n)
	if err != nil {
		c.failed = true
	}
	return n, err
}

// OnFinish subscribes fn to the completion of the exchange. Subscribers run
// in order, once, from End.
func (c *CaptureSink) OnFinish(fn func(*CaptureSink)) {
	c.onFinish = append(c.onFinish, fn)
}

// End writes final (when not empty), finalises the capture and runs the
// OnFinish subscribers. Subscribers do not run when the exchange was
// aborted (ctx is done or a downstream write failed) or when the handler
// hijacked the connection, since no response went through the sink. Only
// the first call has any effect.
func (c *CaptureSink) End(ctx context.Context, final []byte) {
	if c.ended {
		return
	}
	c.ended = true
	if c.hijacked {
		c.finalize()
		return
	}
	if len(final) > 0 {
		_, _ = c.Write(final)
	}

	// net/http sends 200 for a handler that never wrote
	c.snapshotImplicit()
	c.finalize()

	if c.failed || ctx.Err() != nil {
		return
	}
	for _, fn := range c.onFinish {
		fn(c)
	}
}

// Payload returns the captured body, or nil when it was not constructed.
// It is only meaningful after End.
func (c *CaptureSink) Payload() *Payload {
	return c.payload
}

// RawHead returns the serialised response head.
func (c *CaptureSink) RawHead() string {
	return c.head
}

// Status returns the response status code.
func (c *CaptureSink) Status() int {
	return c.code
}

// DeclaredLength returns the Content-Length the response declared when its
// head was written.
func (c *CaptureSink) DeclaredLength() string {
	return c.declared
}

// Hijacked reports whether the handler took over the connection.
func (c *CaptureSink) Hijacked() bool {
	return c.hijacked
}

// Written returns the number of body bytes accepted by the wrapped writer.
func (c *CaptureSink) Written() int64 {
	return c.written
}

// renderLength is the length the body renderer decides on. A body that
// outgrew the capture buffer counts as unknown.
func (c *CaptureSink) renderLength() string {
	if c.overflow {
		return emptyString
	}
	if c.declared == emptyString && c.inferLength {
		return strconv.FormatInt(c.written, 10)
	}
	return c.declared
}

func (c *CaptureSink) snapshotImplicit() {
	if !c.headerWritten {
		c.snapshot(http.StatusOK)
		c.headerWritten = true
	}
}

func (c *CaptureSink) snapshot(code int) {
	header := c.w.Header()
	c.code = code
	c.head = FormatHead(c.proto, code, header)
	c.declared = header.Get("Content-Length")
}

func (c *CaptureSink) record(chunk []byte) {
	if c.buf == nil || c.overflow {
		return
	}
	if c.buf.Len()+len(chunk) > c.limit {
		c.overflow = true
		return
	}
	c.buf.Write(chunk)
}

// finalize builds the payload from the recorded chunks and returns the
// buffer to the pool.
func (c *CaptureSink) finalize() {
	if c.buf == nil {
		return
	}
	if withinLimit(c.renderLength(), c.limit) {
		c.payload = NewPayload(bytes.Clone(c.buf.Bytes()))
	}
	c.buf.Reset()
	capturePool.Put(c.buf)
	c.buf = nil
}
