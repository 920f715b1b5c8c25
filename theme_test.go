package trafficlog

import (
	"io"
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func newTestColorTheme() *Theme {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI256)
	return NewTheme(r)
}

func TestPlainThemeRendersNoEscapes(t *testing.T) {
	theme := PlainTheme()
	for _, s := range []lipgloss.Style{theme.Method, theme.Anomalous, theme.Failure, theme.Placeholder} {
		assert.Equal(t, "GET", s.Render("GET"))
	}
}

func TestColorThemeStylesText(t *testing.T) {
	theme := newTestColorTheme()
	out := theme.Failure.Render("500")
	assert.NotEqual(t, "500", out)
	assert.Equal(t, "500", stripANSI(out))
}

func TestFormatterFor(t *testing.T) {
	assert.NotNil(t, formatterFor(termenv.Ascii))
	assert.NotNil(t, formatterFor(termenv.ANSI))
	assert.NotNil(t, formatterFor(termenv.ANSI256))
	assert.NotNil(t, formatterFor(termenv.TrueColor))
}

func TestHighlightIsLossless(t *testing.T) {
	theme := newTestColorTheme()
	inputs := []string{
		"\n\n{\n  \"a\": [1, null, \"x\"]\n}\n",
		"\n\n<html><body>hi</body></html>\n",
		"\n\nplain words, nothing else\n",
	}
	for _, in := range inputs {
		assert.Equal(t, in, stripANSI(theme.highlight(in, "")))
	}
	assert.Equal(t, inputs[0], stripANSI(theme.highlight(inputs[0], "json")))
}
