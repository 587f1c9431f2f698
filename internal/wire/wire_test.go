package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, raw string) Message {
	t.Helper()
	d := NewDecoder()
	d.Feed([]byte(raw))
	m, err := d.Next()
	require.NoError(t, err)
	return m
}

func TestDecodeBasicMessage(t *testing.T) {
	m := decodeOne(t, ":alice!a@h PRIVMSG #foo :hi there\r\n")
	assert.Equal(t, "alice!a@h", m.Prefix)
	assert.Equal(t, "PRIVMSG", m.Command)
	assert.Equal(t, []string{"#foo", "hi there"}, m.Params)
}

func TestDecodeLFOnly(t *testing.T) {
	m := decodeOne(t, "PING :server\n")
	assert.Equal(t, "PING", m.Command)
	assert.Equal(t, []string{"server"}, m.Params)
}

func TestDecodeTags(t *testing.T) {
	m := decodeOne(t, "@msgid=abc;time=2021-01-01T00:00:00.000Z :a!b@c PRIVMSG #x :hi\r\n")
	require.Len(t, m.Tags, 2)
	msgid, ok := m.Tag("msgid")
	require.True(t, ok)
	assert.Equal(t, "abc", msgid.Value)
}

func TestDecodeTagEscapes(t *testing.T) {
	m := decodeOne(t, "@note=a\\sb\\:c\\\\d PING :x\r\n")
	tag, ok := m.Tag("note")
	require.True(t, ok)
	assert.Equal(t, "a b;c\\d", tag.Value)
}

func TestDecodeDuplicateTagLastWins(t *testing.T) {
	m := decodeOne(t, "@a=1;a=2 PING :x\r\n")
	require.Len(t, m.Tags, 1)
	tag, _ := m.Tag("a")
	assert.Equal(t, "2", tag.Value)
}

func TestDecodeBareTagKey(t *testing.T) {
	m := decodeOne(t, "@+draft/typing PING :x\r\n")
	tag, ok := m.Tag("+draft/typing")
	require.True(t, ok)
	assert.False(t, tag.HasValue)
}

func TestDecodeMissingVerb(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(":a!b@c\r\n"))
	_, err := d.Next()
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestDecodeMalformedTagSyntax(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("@ PING :x\r\n"))
	_, err := d.Next()
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestDecodeIncremental(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("PRIV"))
	_, err := d.Next()
	assert.ErrorIs(t, err, ErrNeedMoreData)

	d.Feed([]byte("MSG #foo :hi\r\n"))
	m, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "PRIVMSG", m.Command)
}

func TestDecodeOverLongLineRecovers(t *testing.T) {
	d := NewDecoder()
	long := make([]byte, MaxLineLength+100)
	for i := range long {
		long[i] = 'a'
	}
	d.Feed(long)
	d.Feed([]byte("\r\n"))
	d.Feed([]byte("PING :ok\r\n"))

	_, err := d.Next()
	assert.ErrorIs(t, err, ErrLineTooLong)

	m, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "PING", m.Command)
}

func TestEncodeSortsTagsAndPicksTrailing(t *testing.T) {
	m := Message{
		Tags:    []Tag{{Key: "zeta", Value: "1", HasValue: true}, {Key: "alpha", HasValue: false}},
		Prefix:  "server.example",
		Command: "PRIVMSG",
		Params:  []string{"#foo", "hello there"},
	}
	got := Encode(m)
	assert.Equal(t, "@alpha;zeta=1 :server.example PRIVMSG #foo :hello there\r\n", got)
}

func TestEncodeEmptyTrailingParam(t *testing.T) {
	m := Message{Command: "TOPIC", Params: []string{"#foo", ""}}
	got := Encode(m)
	assert.Equal(t, "TOPIC #foo :\r\n", got)
}

// Round trip: encode ∘ decode equals the original modulo tag ordering and
// trailing-parameter representation (spec.md §8).
func TestRoundTrip(t *testing.T) {
	original := Message{
		Tags:    []Tag{{Key: "msgid", Value: "a b", HasValue: true}},
		Prefix:  "nick!user@host",
		Command: "PRIVMSG",
		Params:  []string{"#chan", "hello world"},
	}
	encoded := Encode(original)

	d := NewDecoder()
	d.Feed([]byte(encoded))
	decoded, err := d.Next()
	require.NoError(t, err)

	assert.Equal(t, original.Prefix, decoded.Prefix)
	assert.Equal(t, original.Command, decoded.Command)
	assert.Equal(t, original.Params, decoded.Params)
	require.Len(t, decoded.Tags, 1)
	assert.Equal(t, original.Tags[0].Value, decoded.Tags[0].Value)
}
