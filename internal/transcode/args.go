package transcode

import "strings"

// SplitArgs tokenizes a raw argument fragment on shell rules: tokens
// separated by whitespace, single or double quotes grouping, backslash
// escaping the next character outside single quotes. An unterminated
// quote runs to the end of the fragment. Empty input yields no tokens.
func SplitArgs(s string) []string {
	var args []string
	var tok strings.Builder
	inTok := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			if inTok {
				args = append(args, tok.String())
				tok.Reset()
				inTok = false
			}
		case c == '\'':
			inTok = true
			for i++; i < len(s) && s[i] != '\''; i++ {
				tok.WriteByte(s[i])
			}
		case c == '"':
			inTok = true
			for i++; i < len(s) && s[i] != '"'; i++ {
				if s[i] == '\\' && i+1 < len(s) {
					i++
				}
				tok.WriteByte(s[i])
			}
		case c == '\\':
			inTok = true
			if i+1 < len(s) {
				i++
				tok.WriteByte(s[i])
			}
		default:
			inTok = true
			tok.WriteByte(c)
		}
	}
	if inTok {
		args = append(args, tok.String())
	}
	return args
}
