// Package wire implements IRCv3 wire-format framing: byte stream to
// message frame and back, including the message-tag section (spec.md
// §4.A). It is grounded on the decompose-into-small-helpers style of the
// teacher's vendored github.com/horgh/irc codec (parsePrefix/parseCommand/
// parseParams/Encode), extended with tag parsing the teacher's codec never
// had.
package wire

import (
	"fmt"
	"sort"
	"strings"
)

// MaxLineLength is the maximum protocol message length, CRLF included,
// when no message-tag section is present.
const MaxLineLength = 512

// MaxTagLength is the maximum size of the `@...` tag section, including
// the leading '@' and trailing space, per the IRCv3 message-tags spec.
const MaxTagLength = 8191

// MaxParams is the maximum number of middle parameters plus the trailing
// parameter (RFC 1459/2812 and IRCv3 agree on 15).
const MaxParams = 15

// Tag is a single message tag. Value is the unescaped value; an absent
// value (bare key) is represented as an empty string with HasValue false.
type Tag struct {
	Key      string
	Value    string
	HasValue bool
}

// Message is a single parsed (or to-be-encoded) IRC wire frame.
type Message struct {
	Tags    []Tag
	Prefix  string
	Command string
	Params  []string
}

// Tag looks up a tag by key. ok is false if the tag is not present.
func (m Message) Tag(key string) (Tag, bool) {
	for _, t := range m.Tags {
		if t.Key == key {
			return t, true
		}
	}
	return Tag{}, false
}

// SourceNick extracts the nick portion of Prefix (nick!user@host). It is
// blank if Prefix has no '!' (e.g. a server-name prefix, or no prefix).
func (m Message) SourceNick() string {
	idx := strings.IndexByte(m.Prefix, '!')
	if idx == -1 {
		return ""
	}
	return m.Prefix[:idx]
}

func (m Message) String() string {
	return fmt.Sprintf("Tags%v Prefix[%s] Command[%s] Params%q", m.Tags, m.Prefix, m.Command, m.Params)
}

// WithTag returns a copy of m with key set to value (HasValue true). It is
// used by the sending engine to attach the per-request label tag without
// mutating a shared working MsgBuf; the sending engine adds no server-time
// tag of its own.
func (m Message) WithTag(key, value string) Message {
	out := m
	out.Tags = append(append([]Tag(nil), m.Tags...), Tag{Key: key, Value: value, HasValue: true})
	return out
}

// WithoutTags returns a copy of m with the tags matching any of the given
// keys removed. Used when a recipient lacks the capability gating a tag.
func (m Message) WithoutTags(keys map[string]bool) Message {
	if len(m.Tags) == 0 {
		return m
	}
	out := m
	out.Tags = nil
	for _, t := range m.Tags {
		if keys[t.Key] {
			continue
		}
		out.Tags = append(out.Tags, t)
	}
	return out
}

// sortedTags returns a copy of tags sorted by key, for deterministic
// encoding (spec.md §4.A: "tags must be sorted deterministically by key
// for test reproducibility").
func sortedTags(tags []Tag) []Tag {
	out := append([]Tag(nil), tags...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
