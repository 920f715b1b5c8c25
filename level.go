package trafficlog

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Level is the severity of a log entry. Levels are totally ordered from the
// most verbose (TraceLevel) to SilentLevel, which disables all output.
type Level int8

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	SilentLevel
)

var levelNames = [...]string{
	TraceLevel:  "TRACE",
	DebugLevel:  "DEBUG",
	InfoLevel:   "INFO",
	WarnLevel:   "WARN",
	ErrorLevel:  "ERROR",
	SilentLevel: "SILENT",
}

// String returns the upper-case name of the level.
func (l Level) String() string {
	if !l.valid() {
		return fmt.Sprintf("Level(%d)", int8(l))
	}
	return levelNames[l]
}

func (l Level) valid() bool {
	return l >= TraceLevel && l <= SilentLevel
}

// LevelError reports a value that is not a log level, or a level that cannot
// be used for the requested operation.
type LevelError struct {
	Value  any
	Reason string
}

func (e *LevelError) Error() string {
	if e.Reason != emptyString {
		return fmt.Sprintf("`%v` %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("`%v` is not a log level", e.Value)
}

// ParseLevel converts a level name (case-insensitive) into a Level.
func ParseLevel(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range levelNames {
		if n == upper {
			return Level(i), nil
		}
	}
	return SilentLevel, &LevelError{Value: name}
}

// LevelFromIndex converts a numeric level (0 for TRACE up to 5 for SILENT).
func LevelFromIndex(n int) (Level, error) {
	l := Level(n)
	if n < int(TraceLevel) || n > int(SilentLevel) {
		return SilentLevel, &LevelError{Value: n}
	}
	return l, nil
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case TraceLevel:
		return zerolog.TraceLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

func levelFromZerolog(zl zerolog.Level) Level {
	switch {
	case zl <= zerolog.TraceLevel:
		return TraceLevel
	case zl == zerolog.DebugLevel:
		return DebugLevel
	case zl == zerolog.InfoLevel:
		return InfoLevel
	case zl == zerolog.WarnLevel:
		return WarnLevel
	case zl == zerolog.ErrorLevel:
		return ErrorLevel
	default:
		return SilentLevel
	}
}
