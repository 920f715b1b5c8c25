package trafficlog

import "strings"

type urlTokenKind int

const (
	tokPath urlTokenKind = iota
	tokKey
	tokBareKey
	tokValue
	tokSeparator
)

type urlToken struct {
	kind urlTokenKind
	text string
}

type urlLexState int

const (
	afterSlash urlLexState = iota
	inSegment
	keyStart
	inKey
	inValue
)

// isURLChar reports whether r belongs to the safe URL character set:
// ASCII letters and digits plus $ _ . + ! * ‘ ( ) -
func isURLChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("$_.+!*‘()-", r)
}

// lexURL splits a request target into its path (including the '?' that ends
// it) and its query pairs. The path is '/' followed by non-empty segments,
// each optionally closed by '/'. The query is a '&'-separated list of keys,
// each optionally followed by '=' and a possibly empty value. ok is false
// when url does not follow this grammar; the tokens always concatenate back
// to url otherwise.
func lexURL(url string) (tokens []urlToken, ok bool) {
	if !strings.HasPrefix(url, "/") {
		return nil, false
	}

	start := 0
	emit := func(kind urlTokenKind, end int) {
		if end > start {
			tokens = append(tokens, urlToken{kind: kind, text: url[start:end]})
		}
		start = end
	}

	state := afterSlash
	for i, r := range url[1:] {
		i++
		switch state {
		case afterSlash, inSegment:
			switch {
			case isURLChar(r):
				state = inSegment
			case r == '/' && state == inSegment:
				state = afterSlash
			case r == '?':
				emit(tokPath, i+1)
				state = keyStart
			default:
				return nil, false
			}
		case keyStart:
			if !isURLChar(r) {
				return nil, false
			}
			state = inKey
		case inKey:
			switch {
			case isURLChar(r):
			case r == '=':
				emit(tokKey, i+1)
				state = inValue
			case r == '&':
				emit(tokBareKey, i)
				emit(tokSeparator, i+1)
				state = keyStart
			default:
				return nil, false
			}
		case inValue:
			switch {
			case isURLChar(r):
			case r == '&':
				emit(tokValue, i)
				emit(tokSeparator, i+1)
				state = keyStart
			default:
				return nil, false
			}
		}
	}

	switch state {
	case afterSlash, inSegment:
		emit(tokPath, len(url))
	case inKey:
		emit(tokBareKey, len(url))
	case inValue:
		emit(tokValue, len(url))
	}
	return tokens, true
}

// HighlightURL styles the path and the query pairs of url. A url outside the
// grammar of lexURL is rendered whole in the anomalous style.
func (t *Theme) HighlightURL(url string) string {
	tokens, ok := lexURL(url)
	if !ok {
		return t.Anomalous.Render(url)
	}

	var sb strings.Builder
	for _, tok := range tokens {
		switch tok.kind {
		case tokPath:
			sb.WriteString(t.Path.Render(tok.text))
		case tokKey, tokSeparator:
			sb.WriteString(t.QueryKey.Render(tok.text))
		case tokBareKey:
			sb.WriteString(t.QueryBare.Render(tok.text))
		case tokValue:
			sb.WriteString(t.QueryValue.Render(tok.text))
		}
	}
	return sb.String()
}
