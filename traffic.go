package trafficlog

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"
)

// TrafficOption configures TrafficLogger.
type TrafficOption func(*trafficLogger)

// WithTheme sets the theme used to render traffic.
func WithTheme(t *Theme) TrafficOption {
	return func(tl *trafficLogger) {
		tl.theme = t
	}
}

// WithTrafficConfig replaces the traffic settings taken from the logger.
func WithTrafficConfig(cfg TrafficConfig) TrafficOption {
	return func(tl *trafficLogger) {
		tl.cfg = cfg
	}
}

type trafficLogger struct {
	log   LevelLogger
	theme *Theme
	cfg   TrafficConfig
}

// detailEnabled is the gate for detail rendering. Detail is shown at TRACE
// and at no other level.
func detailEnabled(current Level) bool {
	return current == TraceLevel
}

// TrafficLogger returns middleware that logs every exchange at DEBUG: a
// summary line when the request arrives and another when the response is
// complete. At TRACE both lines carry a full rendering of the request and of
// the response. When log is a *Service its theme and traffic settings are
// used unless overridden by opts.
func TrafficLogger(log LevelLogger, opts ...TrafficOption) func(http.Handler) http.Handler {
	tl := &trafficLogger{log: log, cfg: TrafficConfig{BodyLimit: DefaultBodyLimit}}
	if s, ok := log.(*Service); ok && s != nil {
		tl.theme = s.Theme
		if s.Config != nil {
			tl.cfg = s.Config.Traffic
		}
	}
	for _, opt := range opts {
		opt(tl)
	}
	if tl.theme == nil {
		tl.theme = DefaultTheme()
	}
	if tl.cfg.BodyLimit <= 0 {
		tl.cfg.BodyLimit = DefaultBodyLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := tl.clientAddr(r)
			tl.logRequest(r, addr)

			sink := NewCaptureSink(w, r.Proto, tl.cfg.BodyLimit)
			sink.inferLength = tl.cfg.InferResponseLength
			sink.OnFinish(func(c *CaptureSink) {
				tl.logResponse(c, addr)
			})

			next.ServeHTTP(sink.ResponseWriter(), r)
			sink.End(r.Context(), nil)
		})
	}
}

func (tl *trafficLogger) logRequest(r *http.Request, addr string) {
	level := tl.log.GetLevel()
	if level > DebugLevel {
		return
	}

	msg := "Incoming request from " + tl.theme.Address.Render(addr)
	if detailEnabled(level) {
		msg += tl.renderRequest(r)
	}
	tl.log.DebugWith().
		Str("method", r.Method).
		Str("url", requestTarget(r)).
		Msg(msg)
}

func (tl *trafficLogger) logResponse(c *CaptureSink, addr string) {
	level := tl.log.GetLevel()
	if level > DebugLevel {
		return
	}

	msg := "Dispatched response to " + tl.theme.Address.Render(addr)
	if detailEnabled(level) {
		body := tl.theme.renderBody(c.Payload(), c.renderLength(), tl.cfg.BodyLimit)
		msg += tl.theme.RenderResponse(c.RawHead(), body)
	}
	tl.log.DebugWith().
		Int("status", c.Status()).
		Int64("bytes", c.Written()).
		Msg(msg)
}

func (tl *trafficLogger) renderRequest(r *http.Request) string {
	t := tl.theme

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(t.Method.Render(r.Method))
	sb.WriteByte(' ')
	sb.WriteString(t.HighlightURL(requestTarget(r)))
	sb.WriteByte(' ')
	sb.WriteString(t.Protocol.Render(r.Proto))

	header := r.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if r.Host != emptyString && header.Get("Host") == emptyString {
		header.Set("Host", r.Host)
	}
	for _, h := range sortedHeaderLines(header) {
		sb.WriteString("\n  ")
		sb.WriteString(t.HeaderName.Render(h.name + ":"))
		if h.name == "User-Agent" {
			for _, part := range splitUserAgent(h.value) {
				sb.WriteString("\n    ")
				sb.WriteString(t.HeaderValue.Render(part))
			}
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(t.HeaderValue.Render(h.value))
	}

	declared := r.Header.Get("Content-Length")
	var payload *Payload
	if withinLimit(declared, tl.cfg.BodyLimit) {
		payload = tl.captureRequestBody(r)
	}
	sb.WriteString(t.renderBody(payload, declared, tl.cfg.BodyLimit))
	return sb.String()
}

// replayBody serves bytes already read from a request body, then the rest of
// the original body, and closes the original.
type replayBody struct {
	io.Reader
	io.Closer
}

// captureRequestBody reads up to the body limit from r.Body and puts an
// equivalent reader back so the next handler sees the same bytes.
func (tl *trafficLogger) captureRequestBody(r *http.Request) *Payload {
	if r.Body == nil || r.Body == http.NoBody {
		return NewPayload(nil)
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, int64(tl.cfg.BodyLimit)))
	r.Body = &replayBody{
		Reader: io.MultiReader(bytes.NewReader(data), r.Body),
		Closer: r.Body,
	}
	if err != nil {
		return nil
	}
	return NewPayload(data)
}

// clientAddr returns the host part of the remote address, or the first
// X-Forwarded-For entry when proxies are trusted.
func (tl *trafficLogger) clientAddr(r *http.Request) string {
	if tl.cfg.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != emptyString {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != emptyString {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestTarget(r *http.Request) string {
	if r.RequestURI != emptyString {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

// splitUserAgent breaks a User-Agent value at spaces outside parentheses.
func splitUserAgent(ua string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(ua); i++ {
		switch ua[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ' ':
			if depth == 0 {
				parts = append(parts, ua[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, ua[start:])
}
