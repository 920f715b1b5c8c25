package trafficlog

// Logger is the structured logging API of the Service and of the context
// loggers derived from it through With().
type Logger interface {
	TraceWith() LogEvent
	DebugWith() LogEvent
	InfoWith() LogEvent
	WarnWith() LogEvent
	ErrorWith() LogEvent
	FatalWith() LogEvent

	// With for context logger creation
	// Example: reqLogger := logger.With().Str("request_id", id).Logger()
	With() LogContext
}

// LevelLogger is what the traffic logger needs from its logger: a DEBUG
// event builder and the currently configured level. Implementations are
// shared by all exchanges and must be safe for concurrent use.
type LevelLogger interface {
	GetLevel() Level
	DebugWith() LogEvent
}
