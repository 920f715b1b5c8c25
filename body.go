package trafficlog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Payload is a captured body prepared for rendering. A nil *Payload means no
// payload was constructed because the declared length was not under the limit.
type Payload struct {
	Raw []byte
	// Structured is set when Raw is a JSON object or array.
	Structured bool
}

// Width 0 keeps every array element on its own line.
var prettyOptions = &pretty.Options{Width: 0, Indent: "  ", SortKeys: false}

// NewPayload classifies raw. The bytes are referenced, not copied.
func NewPayload(raw []byte) *Payload {
	p := &Payload{Raw: raw}
	if gjson.ValidBytes(raw) {
		v := gjson.ParseBytes(raw)
		p.Structured = v.IsObject() || v.IsArray()
	}
	return p
}

// parseDeclaredLength reads a Content-Length style value. ok is false when
// the value is absent, not a number, or negative.
func parseDeclaredLength(v string) (n int64, ok bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// withinLimit reports whether a declared length allows a body to be rendered.
// An unknown length counts as exceeding the limit.
func withinLimit(declared string, limit int) bool {
	n, ok := parseDeclaredLength(declared)
	return ok && n < int64(limit)
}

// RenderBody renders p under the default body limit.
func (t *Theme) RenderBody(p *Payload, declaredLength string) string {
	return t.renderBody(p, declaredLength, DefaultBodyLimit)
}

func (t *Theme) renderBody(p *Payload, declaredLength string, limit int) string {
	if !withinLimit(declaredLength, limit) {
		return "\n\n" + t.Placeholder.Render(placeholderText(limit)) + "\n"
	}
	if p == nil {
		p = &Payload{}
	}
	if p.Structured {
		indented := strings.TrimSuffix(string(pretty.PrettyOptions(p.Raw, prettyOptions)), "\n")
		return t.highlight("\n\n"+indented+"\n", "json")
	}
	if !utf8.Valid(p.Raw) {
		// binary bodies are shown escaped instead of as replacement characters
		return "\n\n" + t.Notice.Render(strconv.QuoteToGraphic(string(p.Raw))) + "\n"
	}
	return t.highlight("\n\n"+string(p.Raw)+"\n", emptyString)
}

// placeholderText names limit in the notice that replaces a body.
func placeholderText(limit int) string {
	if limit == DefaultBodyLimit {
		return BodyPlaceholder
	}
	size := strconv.Itoa(limit) + "B"
	if limit%1000 == 0 {
		size = strconv.Itoa(limit/1000) + "kB"
	}
	return fmt.Sprintf("body not rendered as it exceeds %s in size", size)
}
