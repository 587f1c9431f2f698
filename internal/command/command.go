// Package command implements spec.md §4.I: the verb dispatch table,
// parameter-arity checking, and the unknown-command/not-enough-params
// numeric replies, plus the core command set itself.
//
// Grounded on horgh-catbox's per-class if/else dispatch chain
// (local_user.go's "if m.Command == "NICK" { ... }" ladder covering
// CAP/NICK/USER/JOIN/PART/PRIVMSG/NOTICE/LUSERS/MOTD/QUIT/PONG/PING/
// WHOIS/OPER/MODE/WHO/TOPIC): this package keeps that verb set except
// LUSERS, which it does not register, adds INVITE, and replaces the
// if-chain with a map-based Table, since spec.md §4.I/§4.J
// requires verbs to be registrable by modules rather than fixed at
// compile time.
package command

import (
	"time"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/container"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/modeengine"
	"github.com/foxcomet/ircd/internal/numeric"
	"github.com/foxcomet/ircd/internal/oper"
	"github.com/foxcomet/ircd/internal/ratelimit"
	"github.com/foxcomet/ircd/internal/send"
	"github.com/foxcomet/ircd/internal/wire"
)

// Deps bundles every registry and subsystem a handler may need. A single
// value is constructed at startup by internal/server and shared across
// every dispatch, matching spec.md §9's "ServerCore... passed by
// reference to every handler".
type Deps struct {
	Clients  *client.Registry
	Channels *chanreg.Registry
	Modes    *modeengine.Registry
	Caps     *capability.Registry
	Bus      *hook.Bus
	Opers    *oper.Store
	Limiter  *ratelimit.Limiter
	Gate     *send.TagGate

	ServerName string
	Network    string
	MOTD       string
}

// Context is the per-dispatch call frame: which client issued the
// command, when, and under what response label.
type Context struct {
	Deps  *Deps
	Self  container.Handle
	Now   time.Time
	Label string
}

// SendCtx builds a send.Context for this dispatch.
func (ctx Context) SendCtx() send.Context {
	return send.Context{Label: ctx.Label, Bus: ctx.Deps.Bus, Gate: ctx.Deps.Gate, CapsReg: ctx.Deps.Caps}
}

// Handler processes one parsed command for one client.
type Handler func(ctx Context, c *client.Client, msg wire.Message)

// Entry is one registered verb.
type Entry struct {
	MinParams         int
	RequireRegistered bool
	Handler           Handler
}

// Table is the verb -> Entry dispatch map. Modules register additional
// verbs into the same Table the core commands live in (spec.md §4.J).
type Table struct {
	entries map[string]Entry
}

// NewTable builds a Table pre-loaded with the core command set.
func NewTable() *Table {
	t := &Table{entries: make(map[string]Entry)}
	registerCore(t)
	return t
}

// Register adds or replaces a verb's entry.
func (t *Table) Register(verb string, e Entry) {
	t.entries[verb] = e
}

// Unregister removes a verb (module unload).
func (t *Table) Unregister(verb string) {
	delete(t.entries, verb)
}

// Lookup returns the Entry registered for verb, if any. Used by
// internal/module to detect duplicate-verb conflicts before a module
// load commits.
func (t *Table) Lookup(verb string) (Entry, bool) {
	e, ok := t.entries[verb]
	return e, ok
}

// Dispatch resolves msg.Command, enforces registration/arity
// requirements, and invokes the handler. It stamps the client's
// LastActivityTime after the handler returns; a command rejected as
// unknown, unregistered or short of parameters is not counted as
// activity.
func Dispatch(t *Table, ctx Context, c *client.Client, msg wire.Message) {
	entry, ok := t.entries[msg.Command]
	if !ok {
		replyNumeric(ctx, c, numeric.ErrUnknownCommand, msg.Command, "Unknown command")
		return
	}
	if entry.RequireRegistered && c.State != client.Registered {
		replyNumeric(ctx, c, numeric.ErrNotRegistered, "You have not registered")
		return
	}
	if len(msg.Params) < entry.MinParams {
		replyNumeric(ctx, c, numeric.ErrNeedMoreParams, msg.Command, "Not enough parameters")
		return
	}
	entry.Handler(ctx, c, msg)
	c.LastActivityTime = ctx.Now
}

// replyNumeric sends a numeric reply to c, prefixing it with the
// server name and the client's current display nick (or "*" pre-
// registration), matching horgh-catbox's messageFromServer convention.
func replyNumeric(ctx Context, c *client.Client, code string, rest ...string) {
	nick := c.Nick
	if nick == "" {
		nick = "*"
	}
	params := append([]string{nick}, rest...)
	msg := wire.Message{Prefix: ctx.Deps.ServerName, Command: code, Params: params}
	send.ToClient(ctx.SendCtx(), c, msg)
}
