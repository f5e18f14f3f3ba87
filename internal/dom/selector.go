package dom

import "strings"

// The selector language is the small subset the extractors need: tag, #id,
// .class, [attr], [attr=v], [attr*=v], [attr^=v], compounds of those, and the
// descendant combinator (space). Values may be single- or double-quoted.

type attrOp int

const (
	attrPresent attrOp = iota
	attrEquals
	attrContains
	attrPrefix
)

type attrMatch struct {
	name  string
	op    attrOp
	value string
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

// selector is a descendant chain, outermost first.
type selector []simpleSelector

func parseSelector(s string) selector {
	var out selector
	for _, part := range splitDescendants(s) {
		if ss, ok := parseSimple(part); ok {
			out = append(out, ss)
		}
	}
	return out
}

// splitDescendants splits on whitespace outside [] so attribute values may
// contain spaces.
func splitDescendants(s string) []string {
	var parts []string
	depth := 0
	start := -1
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '[':
			depth++
		case s[i] == ']' && depth > 0:
			depth--
		case (s[i] == ' ' || s[i] == '\t') && depth == 0:
			if start >= 0 {
				parts = append(parts, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, s[start:])
	}
	return parts
}

func parseSimple(s string) (simpleSelector, bool) {
	var ss simpleSelector
	i := 0
	readName := func() string {
		start := i
		for i < len(s) && s[i] != '#' && s[i] != '.' && s[i] != '[' {
			i++
		}
		return s[start:i]
	}
	if i < len(s) && s[i] != '#' && s[i] != '.' && s[i] != '[' {
		ss.tag = strings.ToLower(readName())
	}
	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			ss.id = readName()
		case '.':
			i++
			ss.classes = append(ss.classes, readName())
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return ss, false
			}
			body := s[i+1 : i+end]
			i += end + 1
			ss.attrs = append(ss.attrs, parseAttrMatch(body))
		default:
			return ss, false
		}
	}
	if ss.tag == "" && ss.id == "" && len(ss.classes) == 0 && len(ss.attrs) == 0 {
		return ss, false
	}
	return ss, true
}

func parseAttrMatch(body string) attrMatch {
	for _, op := range []struct {
		token string
		op    attrOp
	}{
		{"*=", attrContains},
		{"^=", attrPrefix},
		{"=", attrEquals},
	} {
		if idx := strings.Index(body, op.token); idx >= 0 {
			return attrMatch{
				name:  strings.TrimSpace(body[:idx]),
				op:    op.op,
				value: unquote(strings.TrimSpace(body[idx+len(op.token):])),
			}
		}
	}
	return attrMatch{name: strings.TrimSpace(body), op: attrPresent}
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
