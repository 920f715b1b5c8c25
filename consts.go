package trafficlog

const (
	// ServiceName is the DI/service locator name for the logging service.
	ServiceName = "trafficlog"
	emptyString = ""
)

const (
	// DefaultBodyLimit is the declared length (in bytes) at or above which a
	// body is never rendered.
	DefaultBodyLimit = 100000

	// BodyPlaceholder replaces bodies whose declared length is absent, not a
	// number, or not under DefaultBodyLimit. Other limits are named in the
	// notice instead.
	BodyPlaceholder = "body not rendered as it exceeds 100kB in size"

	defaultShutdownTimeoutMS = 100
	envLogLevel              = "LOGLEVEL"
)

const (
	errMsgNilConfig      = "Logging config is nil."
	errMsgNilService     = "Logger service is nil."
	errMsgConfigInvalid  = "Logging configuration is invalid."
	errMsgNoChannels     = "no logging channels enabled"
	errMsgConfigRead     = "Logging config file could not be read."
	errMsgConfigDecode   = "Logging config file could not be decoded."
	errMsgInvalidLevel   = "Logging level is invalid."
	errMsgLogDirCreation = "Failed to create logs directory."
)
