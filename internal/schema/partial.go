package schema

import (
	"strings"

	"github.com/tidwall/gjson"
)

// CompletePartial repairs a truncated JSON document so that a prefix of
// the model's streamed answer object can be parsed mid-stream. It closes
// open strings, objects and arrays, discards dangling keys and
// half-written literal tokens, and fills missing member values with null.
//
// The returned bool is false when the input could not be repaired into a
// valid document; callers treat that as "no fragment yet" and wait for
// more bytes.
func CompletePartial(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	scan := scanPartial(s)

	keyCut := false
	if scan.inString {
		s, keyCut = closeOpenString(s, scan)
	}

	s = trimDanglingTail(s, scan, keyCut)

	// Close whatever containers remain open, innermost first.
	var b strings.Builder
	b.WriteString(s)
	for i := len(scan.stack) - 1; i >= 0; i-- {
		if scan.stack[i].kind == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	s = b.String()

	if !gjson.Valid(s) {
		return "", false
	}
	return s, true
}

// frame tracks one open container during the scan. For objects, sawColon
// records whether the member currently being written has passed its colon
// (i.e. the tail is a value, not a key).
type frame struct {
	kind     byte // '{' or '['
	sawColon bool
}

type scanState struct {
	stack       []frame
	inString    bool
	escaped     bool
	stringStart int // index of the opening quote of an unterminated string
}

func scanPartial(s string) scanState {
	st := scanState{stringStart: -1}

	for i := 0; i < len(s); i++ {
		c := s[i]

		if st.inString {
			if st.escaped {
				st.escaped = false
				continue
			}
			switch c {
			case '\\':
				st.escaped = true
			case '"':
				st.inString = false
				st.stringStart = -1
			}
			continue
		}

		switch c {
		case '"':
			st.inString = true
			st.stringStart = i
		case '{':
			st.stack = append(st.stack, frame{kind: '{'})
		case '[':
			st.stack = append(st.stack, frame{kind: '['})
		case '}', ']':
			if len(st.stack) > 0 {
				st.stack = st.stack[:len(st.stack)-1]
			}
		case ':':
			if top := st.top(); top != nil && top.kind == '{' {
				top.sawColon = true
			}
		case ',':
			if top := st.top(); top != nil && top.kind == '{' {
				top.sawColon = false
			}
		}
	}

	return st
}

func (st *scanState) top() *frame {
	if len(st.stack) == 0 {
		return nil
	}
	return &st.stack[len(st.stack)-1]
}

// closeOpenString terminates an unterminated string literal. A string that
// is a half-written object key is cut entirely, since there is no value to
// pair it with yet; the second return reports that cut.
func closeOpenString(s string, scan scanState) (string, bool) {
	top := scan.top()
	if top != nil && top.kind == '{' && !top.sawColon {
		// Partial key: drop it, the separator cleanup handles the rest.
		return s[:scan.stringStart], true
	}

	if scan.escaped {
		// Ends mid-escape: drop the lone backslash.
		s = s[:len(s)-1]
	}
	s = trimIncompleteUnicodeEscape(s, scan.stringStart)

	return s + `"`, false
}

// trimIncompleteUnicodeEscape drops a trailing \uXX.. escape that has
// fewer than four hex digits.
func trimIncompleteUnicodeEscape(s string, stringStart int) string {
	end := len(s)
	j := end
	for j > 0 && end-j < 3 && isHexDigit(s[j-1]) {
		j--
	}
	hexDigits := end - j
	if hexDigits > 3 {
		return s
	}
	if j < 2 || s[j-1] != 'u' || s[j-2] != '\\' {
		return s
	}
	// The backslash only starts an escape when it is not itself escaped.
	backslashes := 0
	for k := j - 2; k > stringStart && s[k] == '\\'; k-- {
		backslashes++
	}
	if backslashes%2 == 0 {
		return s
	}
	return s[:j-2]
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// trimDanglingTail removes or completes whatever partial token the
// truncation left at the end of the document. keyCut disables the
// keyless-string completion, since after a cut the scanner state no
// longer describes the tail.
func trimDanglingTail(s string, scan scanState, keyCut bool) string {
	for {
		s = strings.TrimRight(s, " \t\r\n")
		if s == "" {
			return s
		}

		last := s[len(s)-1]
		switch {
		case last == ',':
			s = s[:len(s)-1]

		case last == ':':
			s += "null"
			return s

		case isTokenChar(last):
			token, start := trailingToken(s)
			if completeLiteral(token) {
				return s
			}
			s = s[:start]

		case last == '"':
			// A closed string directly under an object with no colon yet is
			// a key without a value.
			if top := scan.top(); !keyCut && top != nil && top.kind == '{' && !top.sawColon {
				return s + ":null"
			}
			return s

		default:
			return s
		}
	}
}

func isTokenChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func trailingToken(s string) (string, int) {
	i := len(s)
	for i > 0 && isTokenChar(s[i-1]) {
		i--
	}
	return s[i:], i
}

// completeLiteral reports whether token is a full JSON literal or number.
func completeLiteral(token string) bool {
	switch token {
	case "true", "false", "null":
		return true
	}
	return gjson.Valid(token)
}
