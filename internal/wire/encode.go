package wire

import "strings"

// Encode renders m as wire bytes, CRLF terminated, with deterministically
// sorted tags (spec.md §4.A). It does not enforce command-specific
// semantics, mirroring the teacher's Message.Encode in
// vendor/github.com/horgh/irc/encode.go — this version adds the tag
// section the teacher's encoder never had.
func Encode(m Message) string {
	var b strings.Builder

	if len(m.Tags) > 0 {
		b.WriteByte('@')
		for i, t := range sortedTags(m.Tags) {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(t.Key)
			if t.HasValue {
				b.WriteByte('=')
				b.WriteString(escapeTagValue(t.Value))
			}
		}
		b.WriteByte(' ')
	}

	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}

	b.WriteString(m.Command)

	for i, param := range m.Params {
		b.WriteByte(' ')
		last := i == len(m.Params)-1
		if last && needsTrailingColon(param) {
			b.WriteByte(':')
		}
		b.WriteString(param)
	}

	b.WriteString("\r\n")
	return b.String()
}

// needsTrailingColon reports whether the final parameter must be sent as
// the RFC "trailing" parameter (space-colon form): it contains a space,
// starts with ':', or is empty.
func needsTrailingColon(param string) bool {
	return param == "" || param[0] == ':' || strings.ContainsRune(param, ' ')
}

func escapeTagValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ';':
			b.WriteString(`\:`)
		case ' ':
			b.WriteString(`\s`)
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
