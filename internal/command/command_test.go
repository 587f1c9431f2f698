package command

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/container"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/modeengine"
	"github.com/foxcomet/ircd/internal/oper"
	"github.com/foxcomet/ircd/internal/send"
	"github.com/foxcomet/ircd/internal/wire"
)

type fakeWriter struct {
	queued []wire.Message
}

func (f *fakeWriter) QueueMessage(m any) {
	f.queued = append(f.queued, m.(wire.Message))
}

func (f *fakeWriter) last() wire.Message {
	return f.queued[len(f.queued)-1]
}

type harness struct {
	deps    *Deps
	clients *client.Registry
	table   *Table
}

func newHarness() *harness {
	return &harness{
		deps: &Deps{
			Clients:    client.NewRegistry(),
			Channels:   chanreg.NewRegistry(),
			Modes:      modeengine.NewRegistry(),
			Caps:       capability.NewRegistry(),
			Bus:        hook.NewBus(),
			Opers:      oper.NewStore(),
			Gate:       send.NewTagGate(),
			ServerName: "irc.test",
			Network:    "TestNet",
		},
		clients: nil,
		table:   NewTable(),
	}
}

func (h *harness) connect(id string) (container.Handle, *client.Client, *fakeWriter) {
	w := &fakeWriter{}
	hd := h.deps.Clients.Register(client.Client{ID: id, IsLocal: true, Out: w})
	c, _ := h.deps.Clients.Get(hd)
	return hd, c, w
}

func (h *harness) dispatch(hd container.Handle, c *client.Client, msg wire.Message) {
	Dispatch(h.table, Context{Deps: h.deps, Self: hd, Now: time.Unix(0, 0)}, c, msg)
}

func TestRegistrationFlowViaNickUser(t *testing.T) {
	h := newHarness()
	hd, c, w := h.connect("")

	h.dispatch(hd, c, wire.Message{Command: "NICK", Params: []string{"alice"}})
	h.dispatch(hd, c, wire.Message{Command: "USER", Params: []string{"alice", "0", "*", "Alice Example"}})

	assert.Equal(t, client.Registered, c.State)
	require.NotEmpty(t, w.queued)
	assert.Equal(t, "001", w.queued[0].Command)
}

func TestNickCollisionDuringRegistration(t *testing.T) {
	h := newHarness()
	h.deps.Clients.Register(client.Client{ID: "x", Nick: "bob"})

	hd, c, w := h.connect("")
	h.dispatch(hd, c, wire.Message{Command: "NICK", Params: []string{"bob"}})

	assert.Equal(t, "433", w.last().Command)
}

func TestUnknownCommandRepliesNumeric(t *testing.T) {
	h := newHarness()
	hd, c, w := h.connect("alice")
	c.State = client.Registered

	h.dispatch(hd, c, wire.Message{Command: "FROBNICATE"})
	assert.Equal(t, "421", w.last().Command)
}

func TestCommandRequiresRegistration(t *testing.T) {
	h := newHarness()
	hd, c, w := h.connect("")

	h.dispatch(hd, c, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	assert.Equal(t, "451", w.last().Command)
}

func registerClient(h *harness, nick string) (container.Handle, *client.Client, *fakeWriter) {
	w := &fakeWriter{}
	hd := h.deps.Clients.Register(client.Client{
		ID: nick, Nick: nick, User: nick, IsLocal: true, Out: w, State: client.Registered,
	})
	c, _ := h.deps.Clients.Get(hd)
	return hd, c, w
}

func TestJoinCreatesChannelAndFirstMemberIsOp(t *testing.T) {
	h := newHarness()
	hd, c, w := registerClient(h, "alice")

	h.dispatch(hd, c, wire.Message{Command: "JOIN", Params: []string{"#test"}})

	chHandle, ok := h.deps.Channels.Lookup("#test")
	require.True(t, ok)
	ch, _ := h.deps.Channels.Get(chHandle)
	idx := ch.FindMember(hd)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, chanreg.StatusOp, ch.Members[idx].Status)

	var sawJoin bool
	for _, m := range w.queued {
		if m.Command == "JOIN" {
			sawJoin = true
		}
	}
	assert.True(t, sawJoin)
}

func TestPrivmsgChannelFanOutExcludesSender(t *testing.T) {
	h := newHarness()
	hd1, c1, w1 := registerClient(h, "alice")
	hd2, c2, w2 := registerClient(h, "bob")

	h.dispatch(hd1, c1, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	h.dispatch(hd2, c2, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	w1.queued = nil
	w2.queued = nil

	h.dispatch(hd1, c1, wire.Message{Command: "PRIVMSG", Params: []string{"#test", "hello"}})

	for _, m := range w1.queued {
		assert.NotEqual(t, "PRIVMSG", m.Command, "sender should not receive its own channel PRIVMSG back")
	}
	require.Len(t, w2.queued, 1)
	assert.Equal(t, "hello", w2.queued[0].Params[1])
}

func TestChannelModeRequiresOp(t *testing.T) {
	h := newHarness()
	hd1, c1, _ := registerClient(h, "alice")
	hd2, c2, w2 := registerClient(h, "bob")

	h.dispatch(hd1, c1, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	h.dispatch(hd2, c2, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	w2.queued = nil

	h.dispatch(hd2, c2, wire.Message{Command: "MODE", Params: []string{"#test", "+n"}})
	assert.Equal(t, "482", w2.last().Command)
}

func TestRegistrationSendsMyInfoAndISupport(t *testing.T) {
	h := newHarness()
	hd, c, w := h.connect("")

	h.dispatch(hd, c, wire.Message{Command: "NICK", Params: []string{"alice"}})
	h.dispatch(hd, c, wire.Message{Command: "USER", Params: []string{"alice", "0", "*", "Alice Example"}})

	var codes []string
	for _, m := range w.queued {
		codes = append(codes, m.Command)
	}
	assert.Contains(t, codes, "004")
	assert.Contains(t, codes, "005")
}

func TestJoinRejectsInviteOnlyWithoutException(t *testing.T) {
	h := newHarness()
	hd1, c1, _ := registerClient(h, "alice")
	hd2, c2, w2 := registerClient(h, "bob")

	h.dispatch(hd1, c1, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	h.dispatch(hd1, c1, wire.Message{Command: "MODE", Params: []string{"#test", "+i"}})
	w2.queued = nil

	h.dispatch(hd2, c2, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	assert.Equal(t, "473", w2.last().Command)

	chHandle, _ := h.deps.Channels.Lookup("#test")
	ch, _ := h.deps.Channels.Get(chHandle)
	assert.Equal(t, -1, ch.FindMember(hd2))
}

func TestJoinInviteExceptionBypassesInviteOnly(t *testing.T) {
	h := newHarness()
	hd1, c1, _ := registerClient(h, "alice")
	hd2, c2, w2 := registerClient(h, "bob")

	h.dispatch(hd1, c1, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	h.dispatch(hd1, c1, wire.Message{Command: "MODE", Params: []string{"#test", "+i"}})
	h.dispatch(hd1, c1, wire.Message{Command: "INVITE", Params: []string{"bob", "#test"}})
	w2.queued = nil

	h.dispatch(hd2, c2, wire.Message{Command: "JOIN", Params: []string{"#test"}})

	chHandle, _ := h.deps.Channels.Lookup("#test")
	ch, _ := h.deps.Channels.Get(chHandle)
	assert.GreaterOrEqual(t, ch.FindMember(hd2), 0)
}

func TestJoinRejectsWrongKey(t *testing.T) {
	h := newHarness()
	hd1, c1, _ := registerClient(h, "alice")
	hd2, c2, w2 := registerClient(h, "bob")

	h.dispatch(hd1, c1, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	h.dispatch(hd1, c1, wire.Message{Command: "MODE", Params: []string{"#test", "+k", "secret"}})
	w2.queued = nil

	h.dispatch(hd2, c2, wire.Message{Command: "JOIN", Params: []string{"#test", "wrong"}})
	assert.Equal(t, "475", w2.last().Command)

	w2.queued = nil
	h.dispatch(hd2, c2, wire.Message{Command: "JOIN", Params: []string{"#test", "secret"}})
	chHandle, _ := h.deps.Channels.Lookup("#test")
	ch, _ := h.deps.Channels.Get(chHandle)
	assert.GreaterOrEqual(t, ch.FindMember(hd2), 0)
}

func TestWhoisRepliesWithUserAndEnd(t *testing.T) {
	h := newHarness()
	_, c1, _ := registerClient(h, "alice")
	hd2, c2, w2 := registerClient(h, "bob")
	c1.Host = "example.net"
	_ = hd2

	h.dispatch(hd2, c2, wire.Message{Command: "WHOIS", Params: []string{"alice"}})

	var codes []string
	for _, m := range w2.queued {
		codes = append(codes, m.Command)
	}
	assert.Contains(t, codes, "311")
	assert.Contains(t, codes, "318")
}

func TestWhoisUnknownNickRepliesNoSuchNick(t *testing.T) {
	h := newHarness()
	hd, c, w := registerClient(h, "alice")

	h.dispatch(hd, c, wire.Message{Command: "WHOIS", Params: []string{"ghost"}})
	assert.Equal(t, "401", w.last().Command)
}

func TestInviteAddsExceptionAndNotifiesTarget(t *testing.T) {
	h := newHarness()
	hd1, c1, w1 := registerClient(h, "alice")
	_, c2, w2 := registerClient(h, "bob")

	h.dispatch(hd1, c1, wire.Message{Command: "JOIN", Params: []string{"#test"}})
	h.dispatch(hd1, c1, wire.Message{Command: "INVITE", Params: []string{"bob", "#test"}})

	assert.Equal(t, "341", w1.last().Command)
	require.NotEmpty(t, w2.queued)
	assert.Equal(t, "INVITE", w2.last().Command)
}

func TestInviteRequiresInviterOnChannel(t *testing.T) {
	h := newHarness()
	hd1, c1, w1 := registerClient(h, "alice")
	_, _, _ = registerClient(h, "bob")
	h.deps.Channels.GetOrCreate("#test", time.Unix(0, 0))

	h.dispatch(hd1, c1, wire.Message{Command: "INVITE", Params: []string{"bob", "#test"}})
	assert.Equal(t, "442", w1.last().Command)
}

func TestNickTooLongRepliesDistinctNumeric(t *testing.T) {
	h := newHarness()
	hd, c, w := h.connect("")

	longNick := strings.Repeat("a", 40)
	h.dispatch(hd, c, wire.Message{Command: "NICK", Params: []string{longNick}})
	assert.Equal(t, "436", w.last().Command)
}
