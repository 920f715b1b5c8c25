package trafficlog

import (
	"time"

	"github.com/rs/zerolog"
)

// LogContext provides a fluent interface for building a context logger with pre-populated fields.
// Fields added through LogContext will be included in all subsequent log messages.
type LogContext interface {
	Str(key, val string) LogContext
	Int(key string, val int) LogContext
	Bool(key string, val bool) LogContext
	Err(err error) LogContext
	Interface(key string, val interface{}) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent provides a fluent interface for structured logging with type-safe field methods.
// It wraps zerolog.Event to provide a clean API for adding typed fields to log entries.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Interface(key string, val interface{}) LogEvent
	Msg(msg string)
	Msgf(format string, v ...interface{})
	Send()
}

// logEvent implements LogEvent by wrapping zerolog.Event. When service is
// set the event is tracked: sending it releases the service's hold, so
// chained field calls keep the tracking.
type logEvent struct {
	event   *zerolog.Event
	service *Service
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

func newTrackedLogEvent(e *zerolog.Event, s *Service) LogEvent {
	if e == nil || s == nil {
		return &logEvent{}
	}
	return &logEvent{event: e, service: s}
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

func (e *logEvent) Err(err error) LogEvent {
	if e.event != nil {
		e.event.Err(err)
		e.enrich("error", err)
	}
	return e
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event != nil {
		e.event.AnErr(key, err)
		e.enrich(key, err)
	}
	return e
}

// enrich adds the cause chain of err under key-prefixed fields.
func (e *logEvent) enrich(key string, err error) {
	if err == nil {
		return
	}
	chain := newErrorChain(err)
	if chain.empty() {
		return
	}
	e.event.Strs(key+"_chain", chain.messages)
	e.event.Str(key+"_root", chain.root())
	e.event.Str(key+"_history", chain.history())
	e.event.Strs(key+"_ops", chain.ops)
	if op := chain.rootOp(); op != emptyString {
		e.event.Str(key+"_root_op", op)
	}
}

func (e *logEvent) Interface(key string, val interface{}) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

func (e *logEvent) Msg(msg string) {
	defer e.done()
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...interface{}) {
	defer e.done()
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	defer e.done()
	if e.event != nil {
		e.event.Send()
	}
}

// done releases the service hold of a tracked event, once.
func (e *logEvent) done() {
	if e.service != nil {
		e.service.release()
		e.service = nil
	}
}

// logContext implements LogContext by wrapping zerolog.Context
type logContext struct {
	context zerolog.Context
	service *Service
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val interface{}) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	return &contextLogger{
		logger: &logger,
		parent: c.service,
	}
}

// contextLogger wraps a zerolog.Logger created from a context. Its level is
// the parent's level at the time With() was called.
type contextLogger struct {
	logger *zerolog.Logger
	parent *Service
}

// GetLevel lets a context logger drive the traffic logger directly.
func (cl *contextLogger) GetLevel() Level {
	if cl.logger == nil {
		return SilentLevel
	}
	return levelFromZerolog(cl.logger.GetLevel())
}

func (cl *contextLogger) TraceWith() LogEvent {
	return logEventBuilder(cl.parent, cl.logger, zerolog.TraceLevel)
}

func (cl *contextLogger) DebugWith() LogEvent {
	return logEventBuilder(cl.parent, cl.logger, zerolog.DebugLevel)
}

func (cl *contextLogger) InfoWith() LogEvent {
	return logEventBuilder(cl.parent, cl.logger, zerolog.InfoLevel)
}

func (cl *contextLogger) WarnWith() LogEvent {
	return logEventBuilder(cl.parent, cl.logger, zerolog.WarnLevel)
}

func (cl *contextLogger) ErrorWith() LogEvent {
	return logEventBuilder(cl.parent, cl.logger, zerolog.ErrorLevel)
}

func (cl *contextLogger) FatalWith() LogEvent {
	return logEventBuilder(cl.parent, cl.logger, zerolog.FatalLevel)
}

func (cl *contextLogger) With() LogContext {
	if cl.logger == nil || cl.parent == nil || !cl.parent.isInitialized.Load() {
		return &noopLogContext{}
	}
	return &logContext{
		context: cl.logger.With(),
		service: cl.parent,
	}
}

// noopLogContext is a no-op implementation of LogContext
type noopLogContext struct{}

func (n *noopLogContext) Str(key, val string) LogContext                   { return n }
func (n *noopLogContext) Int(key string, val int) LogContext               { return n }
func (n *noopLogContext) Bool(key string, val bool) LogContext             { return n }
func (n *noopLogContext) Err(err error) LogContext                         { return n }
func (n *noopLogContext) Interface(key string, val interface{}) LogContext { return n }
func (n *noopLogContext) Logger() Logger                                   { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) TraceWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) DebugWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) InfoWith() LogEvent  { return newLogEvent(nil) }
func (n *noopLogger) WarnWith() LogEvent  { return newLogEvent(nil) }
func (n *noopLogger) ErrorWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) FatalWith() LogEvent { return newLogEvent(nil) }
func (n *noopLogger) With() LogContext    { return &noopLogContext{} }
