// Package send implements spec.md §4.K: per-target message delivery,
// capability-gated tag stripping, the outbound_msgbuf hook point, and
// labeled-response propagation: the Context's Label is added as a "label"
// tag to every message ToClient delivers. Multi-message responses are not
// wrapped in a BATCH, and no bare ACK is sent for a response with no
// lines.
//
// Grounded on horgh-catbox's maybeQueueMessage (local_client.go): a
// non-blocking send into a bounded channel that flags the connection as
// overflowing rather than blocking the single reactor goroutine — the
// same shape carries over as Writer.QueueMessage's documented contract
// (internal/client.Writer), with this package responsible for everything
// upstream of that call: which recipients get the message, and which
// tags each one is allowed to see.
package send

import (
	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/container"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/wire"
)

// TagGate maps an optional message tag key to the capability name a
// recipient must have enabled to receive it (spec.md §4.A/§4.G "strip
// tags the recipient hasn't negotiated"). The core ships five gates
// (time, batch, label, +draft/typing, +draft/read; see NewTagGate);
// modules may register more via AddGate.
type TagGate struct {
	requiredCap map[string]string
}

// NewTagGate builds the core gate table.
func NewTagGate() *TagGate {
	g := &TagGate{requiredCap: make(map[string]string)}
	g.AddGate("time", "server-time")
	g.AddGate("batch", "batch")
	g.AddGate("label", "labeled-response")
	g.AddGate("+draft/typing", "draft/typing")
	g.AddGate("+draft/read", "draft/read")
	return g
}

// AddGate registers (or overrides) the capability required to see tagKey.
func (g *TagGate) AddGate(tagKey, capName string) {
	g.requiredCap[tagKey] = capName
}

// Strip returns msg with every gated tag the recipient hasn't enabled
// removed, leaving ungated (always-visible) tags alone.
func (g *TagGate) Strip(msg wire.Message, recipientCaps capability.Set, registry *capability.Registry) wire.Message {
	var drop map[string]bool
	for _, tag := range msg.Tags {
		capName, gated := g.requiredCap[tag.Key]
		if !gated {
			continue
		}
		c, ok := registry.Lookup(capName)
		if !ok || !capability.IsEnabled(&recipientCaps, c) {
			if drop == nil {
				drop = make(map[string]bool)
			}
			drop[tag.Key] = true
		}
	}
	if drop == nil {
		return msg
	}
	return msg.WithoutTags(drop)
}

// Context carries per-emission metadata that doesn't belong on the wire
// message itself: the originating command's label (spec.md §4.A labeled-
// response), and the hook bus/capability registry every delivery path
// needs to consult.
type Context struct {
	Label    string
	Bus      *hook.Bus
	Gate     *TagGate
	CapsReg  *capability.Registry
}

// ToClient delivers msg to a single local client, applying tag gating and
// firing the outbound_msgbuf observability hook immediately before
// serialization (spec.md §4.H).
func ToClient(ctx Context, target *client.Client, msg wire.Message) {
	if target.Out == nil {
		return // remote client: no local socket to queue onto
	}
	gated := ctx.Gate.Strip(msg, target.Caps, ctx.CapsReg)
	if ctx.Label != "" {
		gated = gated.WithTag("label", ctx.Label)
	}
	if ctx.Bus != nil {
		ctx.Bus.Fire(hook.OutboundMsgBuf, hook.OutboundMsgBufPayload{Client: target, MsgBuf: &gated})
	}
	target.Out.QueueMessage(gated)
}

// ToChannel delivers msg to every local member of ch, optionally skipping
// one handle (the conventional "don't echo back to the sender unless
// they want self-messages" exclusion). Only clients with IsLocal true
// are queued to directly; remote members are reached by the (out of
// scope) S2S link instead.
func ToChannel(ctx Context, ch *chanreg.Channel, clients *client.Registry, exclude container.Handle, msg wire.Message) {
	for _, member := range ch.Members {
		if member.Client == exclude {
			continue
		}
		c, ok := clients.Get(member.Client)
		if !ok || !c.IsLocal {
			continue
		}
		ToClient(ctx, c, msg)
	}
}

// Broadcast delivers msg to every local client for which filter returns
// true (spec.md §4.K "server-wide broadcast filtered by predicate", used
// for things like WALLOPS and server notices).
func Broadcast(ctx Context, clients *client.Registry, filter func(*client.Client) bool, msg wire.Message) {
	clients.Range(func(_ container.Handle, c *client.Client) bool {
		if c.IsLocal && filter(c) {
			ToClient(ctx, c, msg)
		}
		return true
	})
}
