package trafficlog

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusClass is the styling bucket of a response status code.
type StatusClass int

const (
	StatusUnknown StatusClass = iota
	StatusInformational
	StatusSuccess
	StatusRedirect
	StatusClientError
	StatusServerError
)

// ClassifyStatus buckets code as [100,200) informational, [200,300) success,
// [300,400) redirect, [400,500) client error and [500,600) server error.
// Three-digit codes from 600 up count as server errors.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code < 100 || code > 999:
		return StatusUnknown
	case code >= 500:
		return StatusServerError
	case code >= 400:
		return StatusClientError
	case code >= 300:
		return StatusRedirect
	case code >= 200:
		return StatusSuccess
	default:
		return StatusInformational
	}
}

// statusStyle returns the badge for class. Client and server errors share
// the error emphasis.
func (t *Theme) statusStyle(class StatusClass) (lipgloss.Style, bool) {
	switch class {
	case StatusInformational:
		return t.Informational, true
	case StatusSuccess:
		return t.Success, true
	case StatusRedirect:
		return t.Redirect, true
	case StatusClientError, StatusServerError:
		return t.Failure, true
	default:
		return lipgloss.Style{}, false
	}
}

type headerLine struct {
	name  string
	value string
}

type statusHead struct {
	proto   string
	code    string
	text    string
	headers []string
}

// FormatHead serialises a response head the way it is sent on the wire:
// status line, one "Name: value" line per header value (names sorted), and
// the terminating blank line.
func FormatHead(proto string, code int, header http.Header) string {
	var sb strings.Builder
	sb.WriteString(proto)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(code))
	sb.WriteByte(' ')
	sb.WriteString(http.StatusText(code))
	sb.WriteString("\r\n")
	for _, h := range sortedHeaderLines(header) {
		sb.WriteString(h.name)
		sb.WriteString(": ")
		sb.WriteString(h.value)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
	return sb.String()
}

func sortedHeaderLines(header http.Header) []headerLine {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	slices.Sort(names)

	lines := make([]headerLine, 0, len(names))
	for _, name := range names {
		for _, v := range header[name] {
			lines = append(lines, headerLine{name: name, value: v})
		}
	}
	return lines
}

// parseHead splits a raw response head into protocol, code, status text and
// header lines. The protocol must be HTTP/d.d, the code three digits, and the
// status text one or more words separated by single spaces. The header block
// may be empty.
func parseHead(raw string) (statusHead, bool) {
	statusLine, rest, found := strings.Cut(raw, "\r\n")
	if !found {
		return statusHead{}, false
	}

	proto, rest1, ok1 := strings.Cut(statusLine, " ")
	code, text, ok2 := strings.Cut(rest1, " ")
	if !ok1 || !ok2 || !isProto(proto) || !isStatusCode(code) || !isStatusText(text) {
		return statusHead{}, false
	}

	block, _, _ := strings.Cut(rest, "\r\n\r\n")
	block = strings.TrimSuffix(block, "\r\n")
	var headers []string
	if block != emptyString {
		headers = strings.Split(block, "\r\n")
	}
	return statusHead{proto: proto, code: code, text: text, headers: headers}, true
}

func isProto(s string) bool {
	return len(s) == 8 && strings.HasPrefix(s, "HTTP/") &&
		isDigit(s[5]) && s[6] == '.' && isDigit(s[7])
}

func isStatusCode(s string) bool {
	return len(s) == 3 && isDigit(s[0]) && isDigit(s[1]) && isDigit(s[2])
}

func isStatusText(s string) bool {
	if s == emptyString {
		return false
	}
	for _, word := range strings.Split(strings.TrimSuffix(s, " "), " ") {
		if word == emptyString {
			return false
		}
		for _, r := range word {
			if !isWordRune(r) {
				return false
			}
		}
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// RenderResponse renders a raw response head followed by an already rendered
// body block. A head that does not parse is shown unstyled.
func (t *Theme) RenderResponse(rawHead, body string) string {
	head, ok := parseHead(rawHead)
	if !ok {
		return "\n\n" + rawHead + body
	}

	code, _ := strconv.Atoi(head.code)
	styledCode := head.code
	if style, ok := t.statusStyle(ClassifyStatus(code)); ok {
		styledCode = style.Render(head.code)
	}

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(t.Protocol.Render(head.proto))
	sb.WriteByte(' ')
	sb.WriteString(styledCode)
	sb.WriteByte(' ')
	sb.WriteString(t.StatusText.Render(head.text))
	for _, line := range head.headers {
		sb.WriteByte('\n')
		sb.WriteString(t.renderHeaderLine(line))
	}
	sb.WriteString(body)
	return sb.String()
}

// renderHeaderLine styles "name: value" split on the first ": ". Other lines
// are kept as they are.
func (t *Theme) renderHeaderLine(line string) string {
	name, value, ok := strings.Cut(line, ": ")
	if !ok {
		return "  " + line
	}
	return "  " + t.HeaderName.Render(name+":") + " " + t.HeaderValue.Render(value)
}
