package chanreg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxcomet/ircd/internal/container"
)

func TestGetOrCreateIsIdempotent(t *testing.T) {
	r := NewRegistry()
	now := time.Unix(1000, 0)

	h1, created1, err := r.GetOrCreate("#test", now)
	require.NoError(t, err)
	assert.True(t, created1)

	h2, created2, err := r.GetOrCreate("#Test", now)
	require.NoError(t, err)
	assert.False(t, created2)
	assert.Equal(t, h1, h2)
}

func TestGetOrCreateRejectsInvalidName(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.GetOrCreate("not-a-channel", time.Unix(0, 0))
	assert.ErrorIs(t, err, ErrInvalidChannelName)
}

func TestDestroyIfEmptyRemovesUnlessPersistent(t *testing.T) {
	r := NewRegistry()
	h, _, _ := r.GetOrCreate("#test", time.Unix(0, 0))

	assert.False(t, r.DestroyIfEmpty(h, true))
	_, ok := r.Get(h)
	assert.True(t, ok)

	assert.True(t, r.DestroyIfEmpty(h, false))
	_, ok = r.Get(h)
	assert.False(t, ok)
}

func TestMembershipAddFindRemove(t *testing.T) {
	c := &Channel{Name: "#test"}
	m := container.Handle{}
	c.AddMember(m, StatusOp, time.Unix(0, 0))

	idx := c.FindMember(m)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "@", c.Members[idx].Status.Prefix())

	c.RemoveMember(m)
	assert.True(t, c.Empty())
}

func TestBanListDedupeAndMatch(t *testing.T) {
	c := &Channel{Name: "#test"}
	when := time.Unix(0, 0)

	assert.True(t, c.AddToList(BanList, "*!*@evil.example", "op", when))
	assert.False(t, c.AddToList(BanList, "*!*@evil.example", "op2", when))

	entry, ok := c.MatchesList(BanList, "troll!user@evil.example")
	require.True(t, ok)
	assert.Equal(t, "op", entry.Setter)

	_, ok = c.MatchesList(BanList, "friend!user@good.example")
	assert.False(t, ok)
}

func TestMaskWildcards(t *testing.T) {
	assert.True(t, MatchMask("nick!*@*.example.com", "nick!user@host.example.com"))
	assert.False(t, MatchMask("nick!*@*.example.com", "other!user@host.example.com"))
	assert.True(t, MatchMask("*!*@*", "anyone!anyuser@anyhost"))
}
