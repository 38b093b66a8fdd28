package parser

import "bytes"

var nonFiniteTokens = [][]byte{
	[]byte("-Infinity"),
	[]byte("Infinity"),
	[]byte("NaN"),
}

// NormalizeNonFinite rewrites bare NaN, Infinity and -Infinity tokens outside
// of strings into quoted strings so encoding/json accepts the document.
// model.Metric decodes the quoted forms back into non-finite values.
func NormalizeNonFinite(data []byte) []byte {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data
	}

	out := make([]byte, 0, len(data)+16)
	inString := false
	escaped := false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if tok := matchToken(data[i:]); tok != nil {
			out = append(out, '"')
			out = append(out, tok...)
			out = append(out, '"')
			i += len(tok) - 1
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchToken(rest []byte) []byte {
	for _, tok := range nonFiniteTokens {
		if bytes.HasPrefix(rest, tok) {
			return tok
		}
	}
	return nil
}
