package trafficlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Service is the logging service. Its zero value is unusable until
// Initialize succeeds; before that every event is a no-op.
type Service struct {
	WorkingDir string
	Config     *Config

	// Theme styles the console output of RenderObject and of traffic logged
	// through this service. Nil selects a theme for the console settings.
	Theme *Theme

	logger        atomic.Pointer[zerolog.Logger]
	isInitialized atomic.Bool
	activeOps     atomic.Int64
	fileWriter    *lumberjack.Logger

	mu   sync.RWMutex
	wg   sync.WaitGroup
	once sync.Once
}

// NewLogger returns a Service for cfg. Call Initialize before use.
func NewLogger(cfg *Config) *Service {
	return &Service{Config: cfg}
}

// Initialize validates the configuration and builds the writers. Calling it
// again on an initialized service is a no-op.
func (s *Service) Initialize() error {
	const op errors.Op = "trafficlog.Initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}
	if s.isInitialized.Load() {
		return nil
	}
	if s.Config == nil {
		return errors.New(op).Msg(errMsgNilConfig)
	}

	s.Config.normalize()
	if err := validateConfig(s.Config); err != nil {
		return err
	}

	level, err := ParseLevel(s.Config.Level)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgInvalidLevel)
	}

	if s.Config.FileLogging {
		dir := filepath.Join(s.WorkingDir, s.Config.RelLogFileDir)
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.New(op).Err(err).Msg(errMsgLogDirCreation)
		}
	}

	writers := s.initializeWriters(exeName())
	if len(writers) == 0 {
		return errors.New(op).Msg(errMsgNoChannels)
	}

	logger := zerolog.New(io.MultiWriter(writers...)).Level(level.zerolog())
	if s.Config.WithTimestamp {
		logger = logger.With().Timestamp().Logger()
	}

	if s.Theme == nil {
		if s.Config.ConsoleNoColor || !s.Config.ConsoleLogging {
			s.Theme = PlainTheme()
		} else {
			s.Theme = DefaultTheme()
		}
	}

	s.logger.Store(&logger)
	s.isInitialized.Store(true)
	return nil
}

// Close waits for in-flight events (bounded by ShutdownTimeoutMS) and closes
// the file writer. It's safe to call Close multiple times.
func (s *Service) Close() error {
	if s == nil || !s.isInitialized.Load() {
		return nil
	}

	var closeErr error
	s.once.Do(func() {
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		timeout := time.Duration(s.Config.ShutdownTimeoutMS) * time.Millisecond
		select {
		case <-done:
		case <-time.After(timeout):
			if s.Config.ShutdownTimeoutWarning {
				_, _ = fmt.Fprintf(os.Stderr, "trafficlog: shutdown timed out with %d log operations in flight\n", s.activeOps.Load())
			}
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.isInitialized.Store(false)
		if s.fileWriter != nil {
			closeErr = s.fileWriter.Close()
		}
	})
	return closeErr
}

// GetLevel returns the currently configured level.
func (s *Service) GetLevel() Level {
	if s == nil || !s.isInitialized.Load() {
		return SilentLevel
	}
	logger := s.logger.Load()
	if logger == nil {
		return SilentLevel
	}
	return levelFromZerolog(logger.GetLevel())
}

// SetLevel changes the level of the service logger. Context loggers created
// earlier keep their level.
func (s *Service) SetLevel(level Level) error {
	if !level.valid() {
		return &LevelError{Value: int(level)}
	}
	if s == nil || !s.isInitialized.Load() {
		return nil
	}
	for {
		oldLogger := s.logger.Load()
		if oldLogger == nil {
			return nil
		}
		newLogger := oldLogger.Level(level.zerolog())
		if s.logger.CompareAndSwap(oldLogger, &newLogger) {
			return nil
		}
	}
}

// Hook installs zerolog hooks on the service logger.
func (s *Service) Hook(hooks ...zerolog.Hook) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	for {
		oldLogger := s.logger.Load()
		if oldLogger == nil {
			return
		}
		newLogger := oldLogger.Hook(hooks...)
		if s.logger.CompareAndSwap(oldLogger, &newLogger) {
			return
		}
	}
}

// TraceWith returns a LogEvent for structured Trace-level logging.
func (s *Service) TraceWith() LogEvent {
	return logEventBuilder(s, nil, zerolog.TraceLevel)
}

// DebugWith returns a LogEvent for structured Debug-level logging.
func (s *Service) DebugWith() LogEvent {
	return logEventBuilder(s, nil, zerolog.DebugLevel)
}

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: logger.InfoWith().Str("user_id", id).Int("count", 5).Msg("User processed")
func (s *Service) InfoWith() LogEvent {
	return logEventBuilder(s, nil, zerolog.InfoLevel)
}

// WarnWith returns a LogEvent for structured Warn-level logging.
func (s *Service) WarnWith() LogEvent {
	return logEventBuilder(s, nil, zerolog.WarnLevel)
}

// ErrorWith returns a LogEvent for structured Error-level logging.
// Example: logger.ErrorWith().Err(err).Str("operation", "database").Msg("Query failed")
func (s *Service) ErrorWith() LogEvent {
	return logEventBuilder(s, nil, zerolog.ErrorLevel)
}

// FatalWith returns a LogEvent for structured Fatal-level logging.
// The program will exit after the log is written.
func (s *Service) FatalWith() LogEvent {
	return logEventBuilder(s, nil, zerolog.FatalLevel)
}

// With returns a LogContext for creating a child logger with pre-populated fields.
// Example: reqLogger := logger.With().Str("request_id", id).Logger()
func (s *Service) With() LogContext {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}
	logger := s.logger.Load()
	if logger == nil {
		return &noopLogContext{}
	}
	return &logContext{
		context: logger.With(),
		service: s,
	}
}

func exeName() string {
	exe, err := os.Executable()
	if err != nil {
		return emptyString
	}
	return strings.TrimSuffix(filepath.Base(exe), filepath.Ext(exe))
}
