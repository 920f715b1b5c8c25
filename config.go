package trafficlog

import (
	"io"
	"os"
	"strings"

	"github.com/Station-Manager/errors"
	"gopkg.in/yaml.v3"
)

// Config configures the logging Service and the traffic logger built on it.
type Config struct {
	Level                  string `yaml:"level" json:"level" validate:"required,oneof=trace debug info warn error silent"`
	WithTimestamp          bool   `yaml:"with_timestamp" json:"with_timestamp"`
	ConsoleLogging         bool   `yaml:"console_logging" json:"console_logging"`
	ConsoleNoColor         bool   `yaml:"console_no_color" json:"console_no_color"`
	FileLogging            bool   `yaml:"file_logging" json:"file_logging"`
	RelLogFileDir          string `yaml:"rel_log_file_dir" json:"rel_log_file_dir" validate:"required_if=FileLogging true"`
	LogFileMaxBackups      int    `yaml:"log_file_max_backups" json:"log_file_max_backups" validate:"gte=0"`
	LogFileMaxAgeDays      int    `yaml:"log_file_max_age_days" json:"log_file_max_age_days" validate:"gte=0"`
	LogFileMaxSizeMB       int    `yaml:"log_file_max_size_mb" json:"log_file_max_size_mb" validate:"gte=0"`
	LogFileCompress        bool   `yaml:"log_file_compress" json:"log_file_compress"`
	ShutdownTimeoutMS      int    `yaml:"shutdown_timeout_ms" json:"shutdown_timeout_ms" validate:"gte=0"`
	ShutdownTimeoutWarning bool   `yaml:"shutdown_timeout_warning" json:"shutdown_timeout_warning"`

	Traffic TrafficConfig `yaml:"traffic" json:"traffic"`

	// Output is an additional sink for log lines, used when embedding the
	// service or in tests. It is never read from a config file.
	Output io.Writer `yaml:"-" json:"-" validate:"-"`
}

// TrafficConfig holds the settings of the traffic logging middleware.
type TrafficConfig struct {
	// BodyLimit is the declared length at or above which bodies are replaced
	// by BodyPlaceholder. Zero means DefaultBodyLimit.
	BodyLimit int `yaml:"body_limit" json:"body_limit" validate:"gte=0"`
	// TrustProxy takes the client address from the first X-Forwarded-For entry.
	TrustProxy bool `yaml:"trust_proxy" json:"trust_proxy"`
	// InferResponseLength uses the captured byte count for responses that do
	// not declare a Content-Length.
	InferResponseLength bool `yaml:"infer_response_length" json:"infer_response_length"`
}

// DefaultConfig returns a console-only configuration at WARN level.
func DefaultConfig() Config {
	return Config{
		Level:             strings.ToLower(WarnLevel.String()),
		ConsoleLogging:    true,
		RelLogFileDir:     "logs",
		LogFileMaxBackups: 3,
		LogFileMaxAgeDays: 7,
		LogFileMaxSizeMB:  10,
		ShutdownTimeoutMS: defaultShutdownTimeoutMS,
		Traffic: TrafficConfig{
			BodyLimit: DefaultBodyLimit,
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. An empty path
// skips the file. The LOGLEVEL environment variable, when set, overrides the
// level from the file.
func LoadConfig(path string) (Config, error) {
	const op errors.Op = "trafficlog.LoadConfig"
	cfg := DefaultConfig()

	if path != emptyString {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.New(op).Err(err).Msg(errMsgConfigRead)
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.New(op).Err(err).Msg(errMsgConfigDecode)
		}
	}

	if lvl := os.Getenv(envLogLevel); lvl != emptyString {
		cfg.Level = lvl
	}
	cfg.normalize()

	if err := validateConfig(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	if c.Traffic.BodyLimit == 0 {
		c.Traffic.BodyLimit = DefaultBodyLimit
	}
}
