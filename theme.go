package trafficlog

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the inline styles and the syntax highlighter used to render
// traffic. A Theme is immutable and safe for concurrent use.
type Theme struct {
	Method      lipgloss.Style
	Protocol    lipgloss.Style
	Address     lipgloss.Style
	Path        lipgloss.Style
	QueryKey    lipgloss.Style
	QueryValue  lipgloss.Style
	QueryBare   lipgloss.Style
	Anomalous   lipgloss.Style
	HeaderName  lipgloss.Style
	HeaderValue lipgloss.Style
	StatusText  lipgloss.Style
	Placeholder lipgloss.Style
	Notice      lipgloss.Style

	Informational lipgloss.Style
	Success       lipgloss.Style
	Redirect      lipgloss.Style
	Failure       lipgloss.Style

	formatter chroma.Formatter
	style     *chroma.Style
}

// bodyStyle mirrors the inline palette: keywords bright green, literals and
// numbers cyan, strings bright yellow, comments grey, everything else white.
var bodyStyle = chroma.MustNewStyle("trafficlog", chroma.StyleEntries{
	chroma.Background:      "#e5e5e5",
	chroma.Text:            "#e5e5e5",
	chroma.Comment:         "#7f7f7f",
	chroma.Keyword:         "#5cf75c",
	chroma.KeywordConstant: "#00cdcd",
	chroma.Literal:         "#00cdcd",
	chroma.LiteralNumber:   "#00cdcd",
	chroma.LiteralString:   "#ffff55",
	chroma.NameTag:         "#e5e5e5",
	chroma.NameAttribute:   "#e5e5e5",
})

// DefaultTheme returns a theme rendering to stderr with the colour profile
// lipgloss detects for it.
func DefaultTheme() *Theme {
	return NewTheme(lipgloss.NewRenderer(os.Stderr))
}

// PlainTheme returns a theme that renders no escape sequences at all.
func PlainTheme() *Theme {
	r := lipgloss.NewRenderer(os.Stderr)
	r.SetColorProfile(termenv.Ascii)
	return NewTheme(r)
}

// NewTheme builds the palette on r. The body highlighter follows r's colour
// profile.
func NewTheme(r *lipgloss.Renderer) *Theme {
	white := lipgloss.Color("7")
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	badge := func(bg string) lipgloss.Style {
		return r.NewStyle().Background(lipgloss.Color(bg)).Foreground(lipgloss.Color("15"))
	}

	return &Theme{
		Method:      r.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("0")),
		Protocol:    fg("8"),
		Address:     fg("13"),
		Path:        r.NewStyle().Foreground(white),
		QueryKey:    r.NewStyle().Foreground(white),
		QueryValue:  fg("6"),
		QueryBare:   fg("6"),
		Anomalous:   r.NewStyle().Background(lipgloss.Color("8")).Foreground(lipgloss.Color("1")).Bold(true),
		HeaderName:  r.NewStyle().Foreground(white),
		HeaderValue: fg("11"),
		StatusText:  r.NewStyle().Foreground(white),
		Placeholder: r.NewStyle().Background(lipgloss.Color("15")).Foreground(lipgloss.Color("0")),
		Notice:      fg("11"),

		Informational: badge("14"),
		Success:       badge("2"),
		Redirect:      badge("13"),
		Failure:       badge("9"),

		formatter: formatterFor(r.ColorProfile()),
		style:     bodyStyle,
	}
}

func formatterFor(p termenv.Profile) chroma.Formatter {
	switch p {
	case termenv.TrueColor:
		return formatters.TTY16m
	case termenv.ANSI256:
		return formatters.TTY256
	case termenv.ANSI:
		return formatters.TTY16
	default:
		return formatters.NoOp
	}
}

// highlight syntax-highlights text with the named lexer, or with a lexer
// guessed from the content when language is empty. Highlighting never fails:
// on any error the text is returned as is.
func (t *Theme) highlight(text, language string) string {
	var lexer chroma.Lexer
	if language != emptyString {
		lexer = lexers.Get(language)
	} else {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	// A nil options value would rewrite CRLF line endings.
	it, err := lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return text
	}
	var sb strings.Builder
	if err = t.formatter.Format(&sb, t.style, it); err != nil {
		return text
	}
	return sb.String()
}
