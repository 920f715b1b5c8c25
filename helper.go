package trafficlog

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// errorChain is the cause chain of an error, outermost link first. ops
// holds the Station-Manager op of each link, or "" for plain errors.
type errorChain struct {
	messages []string
	ops      []string
}

// maxChainDepth bounds the walk over cyclic or runaway chains.
const maxChainDepth = 50

// newErrorChain walks err through DetailedError causes and stdlib Unwrap.
// Each link is recorded as it is, so a plain wrapper around a DetailedError
// keeps its own message.
func newErrorChain(err error) errorChain {
	var c errorChain
	for err != nil && len(c.messages) < maxChainDepth {
		if d, ok := err.(*smerrors.DetailedError); ok {
			c.messages = append(c.messages, d.Error())
			c.ops = append(c.ops, string(d.Op()))
			err = d.Cause()
			continue
		}
		c.messages = append(c.messages, err.Error())
		c.ops = append(c.ops, emptyString)
		err = stderrs.Unwrap(err)
	}
	return c
}

func (c errorChain) empty() bool {
	return len(c.messages) == 0
}

// root is the innermost message.
func (c errorChain) root() string {
	if c.empty() {
		return emptyString
	}
	return c.messages[len(c.messages)-1]
}

// rootOp is the op of the innermost link, "" when it is a plain error.
func (c errorChain) rootOp() string {
	if c.empty() {
		return emptyString
	}
	return c.ops[len(c.ops)-1]
}

// history joins the messages outermost first.
func (c errorChain) history() string {
	return strings.Join(c.messages, " -> ")
}

// logEventBuilder creates a log event for the given level on logger, or on
// the service logger when logger is nil. The event is tracked so Close()
// waits for it to be sent. Disabled levels yield a no-op LogEvent.
func logEventBuilder(s *Service, logger *zerolog.Logger, level zerolog.Level) LogEvent {
	if s == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}

	s.activeOps.Inc()
	s.wg.Add(1)

	// Close() takes the write lock; hold the read lock while the event is created
	s.mu.RLock()

	if !s.isInitialized.Load() {
		s.mu.RUnlock()
		s.release()
		return newLogEvent(nil)
	}

	if logger == nil {
		logger = s.logger.Load()
	}
	if logger == nil || logger.GetLevel() > level {
		s.mu.RUnlock()
		s.release()
		return newLogEvent(nil)
	}

	var event *zerolog.Event
	switch level {
	case zerolog.TraceLevel:
		event = logger.Trace()
	case zerolog.DebugLevel:
		event = logger.Debug()
	case zerolog.InfoLevel:
		event = logger.Info()
	case zerolog.WarnLevel:
		event = logger.Warn()
	case zerolog.ErrorLevel:
		event = logger.Error()
	case zerolog.FatalLevel:
		event = logger.Fatal()
	}
	s.mu.RUnlock()

	if event == nil {
		s.release()
		return newLogEvent(nil)
	}
	return newTrackedLogEvent(event, s)
}

// release marks one tracked log operation as finished.
func (s *Service) release() {
	s.activeOps.Dec()
	s.wg.Done()
}
