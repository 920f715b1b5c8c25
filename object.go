package trafficlog

import (
	"fmt"

	"github.com/goccy/go-json"
)

// RenderObject renders v as indented JSON for a message logged at level.
// When the service would not show level, the result is a notice naming the
// level to set instead. SILENT is rejected with a *LevelError.
func (s *Service) RenderObject(level Level, v interface{}) (string, error) {
	if !level.valid() {
		return emptyString, &LevelError{Value: int(level)}
	}
	if level == SilentLevel {
		return emptyString, &LevelError{Value: level, Reason: "cannot be used to render an object"}
	}

	theme := s.theme()
	if level < s.GetLevel() {
		return theme.Notice.Render(fmt.Sprintf("*set loglevel to `%s` to render object*", level)), nil
	}

	data, err := json.MarshalIndent(v, emptyString, "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", v))
	}
	return "\n\n" + string(data) + "\n", nil
}

// LogObject logs msg at level followed by the rendering of v.
func (s *Service) LogObject(level Level, msg string, v interface{}) error {
	rendered, err := s.RenderObject(level, v)
	if err != nil {
		return err
	}
	logEventBuilder(s, nil, level.zerolog()).Msg(msg + rendered)
	return nil
}

func (s *Service) theme() *Theme {
	if s == nil || s.Theme == nil {
		return PlainTheme()
	}
	return s.Theme
}
