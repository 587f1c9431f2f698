package send

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/wire"
)

type fakeWriter struct {
	queued []wire.Message
}

func (f *fakeWriter) QueueMessage(m any) {
	f.queued = append(f.queued, m.(wire.Message))
}

func newCapRegistry(t *testing.T) (*capability.Registry, *capability.Capability) {
	t.Helper()
	r := capability.NewRegistry()
	serverTime, err := r.Register("server-time", capability.Client, "")
	require.NoError(t, err)
	return r, serverTime
}

func TestToClientStripsTagWithoutCapability(t *testing.T) {
	reg, serverTime := newCapRegistry(t)
	w := &fakeWriter{}
	c := &client.Client{Out: w}

	msg := wire.Message{Tags: []wire.Tag{{Key: "time", Value: "x", HasValue: true}}, Command: "PRIVMSG"}
	ToClient(Context{Gate: NewTagGate(), CapsReg: reg}, c, msg)

	require.Len(t, w.queued, 1)
	_, ok := w.queued[0].Tag("time")
	assert.False(t, ok, "time tag should be stripped without server-time enabled")

	// Now enable it and resend.
	c.Caps.Enable(serverTime.Bit)
	w.queued = nil
	ToClient(Context{Gate: NewTagGate(), CapsReg: reg}, c, msg)
	_, ok = w.queued[0].Tag("time")
	assert.True(t, ok)
}

func TestToClientSkipsRemote(t *testing.T) {
	c := &client.Client{IsLocal: false}
	ToClient(Context{Gate: NewTagGate()}, c, wire.Message{Command: "PRIVMSG"})
	assert.Nil(t, c.Out)
}

func TestToChannelExcludesSenderAndRemoteMembers(t *testing.T) {
	clients := client.NewRegistry()
	senderW := &fakeWriter{}
	otherW := &fakeWriter{}

	senderHandle := clients.Register(client.Client{ID: "1", Nick: "a", IsLocal: true, Out: senderW})
	otherHandle := clients.Register(client.Client{ID: "2", Nick: "b", IsLocal: true, Out: otherW})
	remoteHandle := clients.Register(client.Client{ID: "3", Nick: "c", IsLocal: false})

	ch := &chanreg.Channel{}
	ch.AddMember(senderHandle, 0, time.Time{})
	ch.AddMember(otherHandle, 0, time.Time{})
	ch.AddMember(remoteHandle, 0, time.Time{})

	ToChannel(Context{Gate: NewTagGate()}, ch, clients, senderHandle, wire.Message{Command: "PRIVMSG"})

	assert.Empty(t, senderW.queued)
	assert.Len(t, otherW.queued, 1)
}
