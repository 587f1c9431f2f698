package command

import (
	"strconv"
	"strings"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/container"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/modeengine"
	"github.com/foxcomet/ircd/internal/numeric"
	"github.com/foxcomet/ircd/internal/send"
	"github.com/foxcomet/ircd/internal/wire"
)

// serverVersion is the value RPL_MYINFO reports; there is no release
// process behind it yet, so it's a fixed placeholder.
const serverVersion = "ircd-0"

func registerCore(t *Table) {
	t.Register("CAP", Entry{MinParams: 1, Handler: handleCAP})
	t.Register("NICK", Entry{MinParams: 1, Handler: handleNick})
	t.Register("USER", Entry{MinParams: 4, Handler: handleUser})
	t.Register("PING", Entry{MinParams: 1, Handler: handlePing})
	t.Register("PONG", Entry{Handler: handlePong})
	t.Register("QUIT", Entry{RequireRegistered: true, Handler: handleQuit})
	t.Register("JOIN", Entry{MinParams: 1, RequireRegistered: true, Handler: handleJoin})
	t.Register("PART", Entry{MinParams: 1, RequireRegistered: true, Handler: handlePart})
	t.Register("PRIVMSG", Entry{MinParams: 2, RequireRegistered: true, Handler: handlePrivmsgOrNotice})
	t.Register("NOTICE", Entry{MinParams: 2, RequireRegistered: true, Handler: handlePrivmsgOrNotice})
	t.Register("TOPIC", Entry{MinParams: 1, RequireRegistered: true, Handler: handleTopic})
	t.Register("WHO", Entry{MinParams: 1, RequireRegistered: true, Handler: handleWho})
	t.Register("WHOIS", Entry{MinParams: 1, RequireRegistered: true, Handler: handleWhois})
	t.Register("INVITE", Entry{MinParams: 2, RequireRegistered: true, Handler: handleInvite})
	t.Register("MODE", Entry{MinParams: 1, RequireRegistered: true, Handler: handleMode})
	t.Register("OPER", Entry{MinParams: 2, RequireRegistered: true, Handler: handleOper})
	t.Register("MOTD", Entry{RequireRegistered: true, Handler: handleMotd})
}

// handleCAP implements the CAP LS/REQ/ACK/NAK/END subcommand set (spec.md
// §4.A). It has no teacher equivalent (horgh-catbox predates IRCv3 CAP
// negotiation entirely) and is built directly from the spec.
func handleCAP(ctx Context, c *client.Client, msg wire.Message) {
	sub := strings.ToUpper(msg.Params[0])
	switch sub {
	case "LS":
		if c.State == client.Unregistered {
			c.State = client.CapNegotiating
		}
		var names []string
		for _, cp := range ctx.Deps.Caps.All() {
			if cp.Namespace != capability.Client {
				continue
			}
			if cp.Value != "" {
				names = append(names, cp.Name+"="+cp.Value)
			} else {
				names = append(names, cp.Name)
			}
		}
		sendServerLine(ctx, c, "CAP", "*", "LS", strings.Join(names, " "))
	case "REQ":
		if len(msg.Params) < 2 {
			return
		}
		var granted []string
		allOK := true
		for _, name := range strings.Fields(msg.Params[1]) {
			cp, ok := ctx.Deps.Caps.Lookup(name)
			if !ok || cp.Namespace != capability.Client {
				allOK = false
				continue
			}
			granted = append(granted, name)
		}
		if !allOK {
			sendServerLine(ctx, c, "CAP", "*", "NAK", msg.Params[1])
			return
		}
		for _, name := range granted {
			cp, _ := ctx.Deps.Caps.Lookup(name)
			c.Caps.Enable(cp.Bit)
		}
		sendServerLine(ctx, c, "CAP", "*", "ACK", strings.Join(granted, " "))
	case "END":
		if c.State == client.CapNegotiating {
			c.State = client.AwaitingRegistration
		}
		maybeCompleteRegistration(ctx, c)
	}
}

func handleNick(ctx Context, c *client.Client, msg wire.Message) {
	newNick := msg.Params[0]
	if c.State == client.Registered {
		old := c.Nick
		if err := ctx.Deps.Clients.CheckNick(newNick, ctx.Self); err != nil {
			replyNickError(ctx, c, newNick, err)
			return
		}
		payload := &hook.NickChangePayload{Client: c, OldNick: old, NewNick: newNick}
		ctx.Deps.Bus.Fire(hook.NickChange, payload)
		if payload.Rejected() {
			return
		}
		if err := ctx.Deps.Clients.Rename(ctx.Self, newNick); err != nil {
			replyNickError(ctx, c, newNick, err)
			return
		}
		announceSelf(ctx, c, "NICK", newNick)
		return
	}
	if err := ctx.Deps.Clients.Rename(ctx.Self, newNick); err != nil {
		replyNickError(ctx, c, newNick, err)
		return
	}
	if c.State == client.Unregistered {
		c.State = client.AwaitingRegistration
	}
	maybeCompleteRegistration(ctx, c)
}

func replyNickError(ctx Context, c *client.Client, nick string, err error) {
	switch err {
	case client.ErrNickInUse:
		replyNumeric(ctx, c, numeric.ErrNickInUse, nick, "Nickname is already in use")
	case client.ErrNickTooLong:
		replyNumeric(ctx, c, numeric.ErrNickTooLong, nick, "Nickname is too long")
	default:
		replyNumeric(ctx, c, numeric.ErrErroneousNick, nick, "Erroneous nickname")
	}
}

func handleUser(ctx Context, c *client.Client, msg wire.Message) {
	if c.State == client.Registered {
		replyNumeric(ctx, c, numeric.ErrAlreadyRegistrd, "You may not reregister")
		return
	}
	c.User = msg.Params[0]
	c.RealName = msg.Params[len(msg.Params)-1]
	if c.State == client.Unregistered {
		c.State = client.AwaitingRegistration
	}
	maybeCompleteRegistration(ctx, c)
}

// maybeCompleteRegistration promotes a client to Registered once it has a
// nick, a user, and capability negotiation (if started) has ended. This
// generalizes horgh-catbox's completeRegistration gate ("If we have USER
// done already, then we're done registration") to also wait on CAP END.
func maybeCompleteRegistration(ctx Context, c *client.Client) {
	if c.State != client.AwaitingRegistration {
		return
	}
	if c.Nick == "" || c.User == "" {
		return
	}
	if c.ID == "" {
		c.ID = c.Nick
	}
	c.State = client.Registered
	ctx.Deps.Bus.Fire(hook.NewLocalUser, hook.NewLocalUserPayload{Client: c})

	replyNumeric(ctx, c, numeric.RplWelcome, "Welcome to "+ctx.Deps.Network)
	replyNumeric(ctx, c, numeric.RplYourHost, "Your host is "+ctx.Deps.ServerName)
	replyNumeric(ctx, c, numeric.RplCreated, "This server was created just now")
	replyNumeric(ctx, c, numeric.RplMyInfo, ctx.Deps.ServerName, serverVersion,
		ctx.Deps.Modes.UserLetters(), ctx.Deps.Modes.ChannelLetters())
	replyNumeric(ctx, c, numeric.RplISupport, "CHANTYPES=#", "are supported by this server")
	handleMotd(ctx, c, wire.Message{Command: "MOTD"})
}

func handlePing(ctx Context, c *client.Client, msg wire.Message) {
	sendServerLine(ctx, c, "PONG", ctx.Deps.ServerName, msg.Params[0])
}

func handlePong(ctx Context, c *client.Client, msg wire.Message) {
	// Activity-only: Dispatch already stamped LastActivityTime.
}

// handleQuit only flags the client; internal/reactor does the actual
// teardown (hook firing, channel-peer notification, registry removal)
// from its deferred-destruction queue, the same path a dead socket takes
// (spec.md §5 "disconnecting a client is a two-step operation").
func handleQuit(ctx Context, c *client.Client, msg wire.Message) {
	reason := "Client quit"
	if len(msg.Params) > 0 {
		reason = msg.Params[0]
	}
	c.QuitReason = reason
	c.State = client.Disconnecting
}

func handleJoin(ctx Context, c *client.Client, msg wire.Message) {
	names := strings.Split(msg.Params[0], ",")
	var keys []string
	if len(msg.Params) > 1 {
		keys = strings.Split(msg.Params[1], ",")
	}
	for i, name := range names {
		var key string
		if i < len(keys) {
			key = keys[i]
		}
		h, created, err := ctx.Deps.Channels.GetOrCreate(name, ctx.Now)
		if err != nil {
			replyNumeric(ctx, c, numeric.ErrNoSuchChannel, name, "Invalid channel name")
			continue
		}
		ch, _ := ctx.Deps.Channels.Get(h)
		if ch.FindMember(ctx.Self) >= 0 {
			continue
		}
		if !created {
			if ch.Modes&modeengine.ChanModeInviteOnly != 0 {
				if _, invited := ch.MatchesList(chanreg.InviteExList, c.NickUhost()); !invited {
					replyNumeric(ctx, c, numeric.ErrInviteOnlyChan, name, "Cannot join channel (+i)")
					continue
				}
			}
			if ch.Key != "" && ch.Key != key {
				replyNumeric(ctx, c, numeric.ErrBadChannelKey, name, "Cannot join channel (+k)")
				continue
			}
			if ch.Limit > 0 && len(ch.Members) >= ch.Limit {
				replyNumeric(ctx, c, numeric.ErrChannelIsFull, name, "Cannot join channel (+l)")
				continue
			}
			if _, banned := ch.MatchesList(chanreg.BanList, c.NickUhost()); banned {
				if _, exempt := ch.MatchesList(chanreg.ExemptList, c.NickUhost()); !exempt {
					replyNumeric(ctx, c, numeric.ErrBannedFromChan, name, "Cannot join channel (+b)")
					continue
				}
			}
		}
		status := chanreg.MemberStatus(0)
		if created {
			status = chanreg.StatusOp
		}
		ch.AddMember(ctx.Self, status, ctx.Now)
		c.Channels = append(c.Channels, h)

		ctx.Deps.Bus.Fire(hook.ChannelJoin, hook.ChannelJoinPayload{Client: c, Channel: ch})

		joinMsg := wire.Message{Prefix: c.NickUhost(), Command: "JOIN", Params: []string{name}}
		send.ToClient(ctx.SendCtx(), c, joinMsg)
		send.ToChannel(ctx.SendCtx(), ch, ctx.Deps.Clients, ctx.Self, joinMsg)

		if ch.Topic != "" {
			replyNumeric(ctx, c, numeric.RplTopic, name, ch.Topic)
		} else {
			replyNumeric(ctx, c, numeric.RplNoTopic, name, "No topic is set")
		}
		sendNames(ctx, c, ch, name)
	}
}

func handlePart(ctx Context, c *client.Client, msg wire.Message) {
	reason := ""
	if len(msg.Params) > 1 {
		reason = msg.Params[1]
	}
	for _, name := range strings.Split(msg.Params[0], ",") {
		h, ok := ctx.Deps.Channels.Lookup(name)
		if !ok {
			replyNumeric(ctx, c, numeric.ErrNoSuchChannel, name, "No such channel")
			continue
		}
		ch, _ := ctx.Deps.Channels.Get(h)
		if ch.FindMember(ctx.Self) < 0 {
			replyNumeric(ctx, c, numeric.ErrNotOnChannel, name, "You're not on that channel")
			continue
		}
		ctx.Deps.Bus.Fire(hook.ChannelPart, hook.ChannelPartPayload{Client: c, Channel: ch, Reason: reason})

		partMsg := wire.Message{Prefix: c.NickUhost(), Command: "PART", Params: []string{name, reason}}
		send.ToClient(ctx.SendCtx(), c, partMsg)
		send.ToChannel(ctx.SendCtx(), ch, ctx.Deps.Clients, ctx.Self, partMsg)

		ch.RemoveMember(ctx.Self)
		removeChannelHandle(c, h)
		ctx.Deps.Channels.DestroyIfEmpty(h, ch.Modes&modeengine.ChanModePermanent != 0)
	}
}

func removeChannelHandle(c *client.Client, h container.Handle) {
	for i, have := range c.Channels {
		if have == h {
			c.Channels = append(c.Channels[:i], c.Channels[i+1:]...)
			return
		}
	}
}

func handlePrivmsgOrNotice(ctx Context, c *client.Client, msg wire.Message) {
	target := msg.Params[0]
	text := msg.Params[1]
	msgType := hook.TypePrivmsg
	if msg.Command == "NOTICE" {
		msgType = hook.TypeNotice
	}

	if strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&") {
		h, ok := ctx.Deps.Channels.Lookup(target)
		if !ok {
			replyNumeric(ctx, c, numeric.ErrNoSuchChannel, target, "No such channel")
			return
		}
		ch, _ := ctx.Deps.Channels.Get(h)
		if ch.FindMember(ctx.Self) < 0 && ch.Modes&modeengine.ChanModeNoExternal != 0 {
			replyNumeric(ctx, c, numeric.ErrCannotSendChan, target, "Cannot send to channel")
			return
		}
		out := wire.Message{Prefix: c.NickUhost(), Command: msg.Command, Params: []string{target, text}}
		payload := &hook.PrivmsgChannelPayload{Source: c, Channel: ch, Text: text, Type: msgType, MsgBuf: &out}
		ctx.Deps.Bus.Fire(hook.PrivmsgChannel, payload)
		if payload.Rejected() {
			return
		}
		send.ToChannel(ctx.SendCtx(), ch, ctx.Deps.Clients, ctx.Self, out)
		return
	}

	h, ok := ctx.Deps.Clients.LookupNick(target)
	if !ok {
		replyNumeric(ctx, c, numeric.ErrNoSuchNick, target, "No such nick")
		return
	}
	targetClient, _ := ctx.Deps.Clients.Get(h)
	out := wire.Message{Prefix: c.NickUhost(), Command: msg.Command, Params: []string{target, text}}
	payload := &hook.PrivmsgUserPayload{Source: c, Target: targetClient, Text: text, Type: msgType, MsgBuf: &out}
	ctx.Deps.Bus.Fire(hook.PrivmsgUser, payload)
	if payload.Rejected() {
		return
	}
	send.ToClient(ctx.SendCtx(), targetClient, out)
}

func handleTopic(ctx Context, c *client.Client, msg wire.Message) {
	name := msg.Params[0]
	h, ok := ctx.Deps.Channels.Lookup(name)
	if !ok {
		replyNumeric(ctx, c, numeric.ErrNoSuchChannel, name, "No such channel")
		return
	}
	ch, _ := ctx.Deps.Channels.Get(h)
	idx := ch.FindMember(ctx.Self)
	if idx < 0 {
		replyNumeric(ctx, c, numeric.ErrNotOnChannel, name, "You're not on that channel")
		return
	}
	if len(msg.Params) < 2 {
		if ch.Topic == "" {
			replyNumeric(ctx, c, numeric.RplNoTopic, name, "No topic is set")
		} else {
			replyNumeric(ctx, c, numeric.RplTopic, name, ch.Topic)
		}
		return
	}
	if ch.Modes&modeengine.ChanModeTopicLock != 0 && ch.Members[idx].Status&(chanreg.StatusOp|chanreg.StatusHalfOp) == 0 {
		replyNumeric(ctx, c, numeric.ErrChanOPrivsNeeded, name, "You're not channel operator")
		return
	}
	ch.Topic = msg.Params[1]
	ch.TopicSetBy = c.NickUhost()
	ch.TopicSetAt = ctx.Now
	out := wire.Message{Prefix: c.NickUhost(), Command: "TOPIC", Params: []string{name, ch.Topic}}
	send.ToChannel(ctx.SendCtx(), ch, ctx.Deps.Clients, container.Handle{}, out)
}

func handleWho(ctx Context, c *client.Client, msg wire.Message) {
	name := msg.Params[0]
	h, ok := ctx.Deps.Channels.Lookup(name)
	if !ok {
		replyNumeric(ctx, c, numeric.ErrNoSuchChannel, name, "No such channel")
		return
	}
	ch, _ := ctx.Deps.Channels.Get(h)
	if ch.FindMember(ctx.Self) < 0 {
		replyNumeric(ctx, c, numeric.ErrNotOnChannel, name, "You're not on that channel")
		return
	}
	for _, m := range ch.Members {
		mc, ok := ctx.Deps.Clients.Get(m.Client)
		if !ok {
			continue
		}
		replyNumeric(ctx, c, numeric.RplEndOfWho, name, mc.User, mc.Host, ctx.Deps.ServerName, mc.Nick, "H", mc.RealName)
	}
	replyNumeric(ctx, c, numeric.RplEndOfWho, name, "End of WHO list")
}

// handleWhois implements the WHOIS reply sequence spec.md §6 lists
// (311/313/317/318/319, plus 301 when the target is away) and fires
// doing_whois (spec.md §4.H, advisory) before assembling the reply, the
// same point ircd-style cores let feature modules add to a WHOIS (see
// _examples/original_source/_INDEX.md's chm_whois.c/umode_whois.c).
func handleWhois(ctx Context, c *client.Client, msg wire.Message) {
	nick := msg.Params[0]
	h, ok := ctx.Deps.Clients.LookupNick(nick)
	if !ok {
		replyNumeric(ctx, c, numeric.ErrNoSuchNick, nick, "No such nick")
		return
	}
	target, _ := ctx.Deps.Clients.Get(h)

	ctx.Deps.Bus.Fire(hook.DoingWhois, hook.DoingWhoisPayload{Requester: c, Target: target})

	replyNumeric(ctx, c, numeric.RplWhoisUser, target.Nick, target.User, target.Host, "*", target.RealName)

	var chanNames []string
	for _, chHandle := range target.Channels {
		ch, ok := ctx.Deps.Channels.Get(chHandle)
		if !ok {
			continue
		}
		idx := ch.FindMember(h)
		if idx < 0 {
			continue
		}
		chanNames = append(chanNames, ch.Members[idx].Status.Prefix()+ch.Name)
	}
	if len(chanNames) > 0 {
		replyNumeric(ctx, c, numeric.RplWhoisChans, target.Nick, strings.Join(chanNames, " "))
	}
	if target.IsAway {
		replyNumeric(ctx, c, numeric.RplAway, target.Nick, "Away")
	}
	if target.IsOper {
		replyNumeric(ctx, c, numeric.RplWhoisOper, target.Nick, "is an IRC operator")
	}
	if target.IsLocal {
		idle := int64(ctx.Now.Sub(target.LastActivityTime).Seconds())
		if idle < 0 {
			idle = 0
		}
		replyNumeric(ctx, c, numeric.RplWhoisIdle, target.Nick,
			strconv.FormatInt(idle, 10), strconv.FormatInt(target.ConnectTime.Unix(), 10),
			"seconds idle, signon time")
	}
	replyNumeric(ctx, c, numeric.RplEndOfWhois, target.Nick, "End of WHOIS list")
}

// handleInvite implements INVITE (spec.md §4.H's invite hook point):
// the inviter must already be on the channel, must be a channel
// operator if the channel is invite-only, and the invitee is recorded
// on the channel's invite-exception list so a later JOIN bypasses +i
// (spec.md §4.E "invite-exceptions").
func handleInvite(ctx Context, c *client.Client, msg wire.Message) {
	nick := msg.Params[0]
	name := msg.Params[1]

	targetHandle, ok := ctx.Deps.Clients.LookupNick(nick)
	if !ok {
		replyNumeric(ctx, c, numeric.ErrNoSuchNick, nick, "No such nick")
		return
	}
	target, _ := ctx.Deps.Clients.Get(targetHandle)

	h, ok := ctx.Deps.Channels.Lookup(name)
	if !ok {
		replyNumeric(ctx, c, numeric.ErrNoSuchChannel, name, "No such channel")
		return
	}
	ch, _ := ctx.Deps.Channels.Get(h)
	idx := ch.FindMember(ctx.Self)
	if idx < 0 {
		replyNumeric(ctx, c, numeric.ErrNotOnChannel, name, "You're not on that channel")
		return
	}
	if ch.Modes&modeengine.ChanModeInviteOnly != 0 && ch.Members[idx].Status&(chanreg.StatusOp|chanreg.StatusHalfOp) == 0 {
		replyNumeric(ctx, c, numeric.ErrChanOPrivsNeeded, name, "You're not channel operator")
		return
	}
	if ch.FindMember(targetHandle) >= 0 {
		replyNumeric(ctx, c, numeric.ErrUserOnChannel, nick, name, "is already on channel")
		return
	}

	payload := &hook.InvitePayload{Source: c, Target: target, Channel: ch}
	ctx.Deps.Bus.Fire(hook.Invite, payload)
	if payload.Rejected() {
		return
	}

	ch.AddToList(chanreg.InviteExList, target.NickUhost(), c.NickUhost(), ctx.Now)

	replyNumeric(ctx, c, numeric.RplInviting, nick, name)
	out := wire.Message{Prefix: c.NickUhost(), Command: "INVITE", Params: []string{nick, name}}
	send.ToClient(ctx.SendCtx(), target, out)
}

func handleMode(ctx Context, c *client.Client, msg wire.Message) {
	target := msg.Params[0]
	var modeStr string
	var params []string
	if len(msg.Params) > 1 {
		modeStr = msg.Params[1]
		params = msg.Params[2:]
	}

	if strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&") {
		handleChannelMode(ctx, c, target, modeStr, params)
		return
	}

	if target != c.Nick {
		replyNumeric(ctx, c, numeric.ErrUsersDontMatch, "Cannot change mode for other users")
		return
	}
	if modeStr == "" {
		replyNumeric(ctx, c, numeric.RplUmodeIs, ctx.Deps.Modes.RenderUserModes(c.UserModes))
		return
	}
	res := ctx.Deps.Modes.ParseUser(modeStr, nil)
	if len(res.Unknown) > 0 {
		replyNumeric(ctx, c, numeric.ErrUModeUnknownFlag, "Unknown MODE flag")
	}
	var filtered []modeengine.Change
	for _, change := range res.Changes {
		// Plain clients may not grant themselves operator status; -o from a
		// non-oper is simply a no-op since the bit is already clear.
		if change.Slot.Letter == 'o' && change.Add {
			continue
		}
		filtered = append(filtered, change)
	}
	applied := modeengine.ApplyUser(&c.UserModes, filtered)
	if len(applied) == 0 {
		return
	}
	for _, line := range modeengine.Coalesce(applied) {
		announceSelf(ctx, c, "MODE", append([]string{c.Nick, line.Letters}, line.Params...)...)
	}
}

func handleChannelMode(ctx Context, c *client.Client, target, modeStr string, params []string) {
	h, ok := ctx.Deps.Channels.Lookup(target)
	if !ok {
		replyNumeric(ctx, c, numeric.ErrNoSuchChannel, target, "No such channel")
		return
	}
	ch, _ := ctx.Deps.Channels.Get(h)
	if modeStr == "" {
		replyNumeric(ctx, c, numeric.RplChannelModeIs, target, ctx.Deps.Modes.RenderChannelModes(ch))
		return
	}
	idx := ch.FindMember(ctx.Self)
	res := ctx.Deps.Modes.ParseChannel(modeStr, params)
	for _, letter := range res.Unknown {
		replyNumeric(ctx, c, numeric.ErrUnknownMode, string(letter), "is unknown mode char to me")
	}

	for _, q := range res.Queries {
		if q.Letter == 'b' {
			for _, entry := range ch.List(chanreg.BanList) {
				replyNumeric(ctx, c, numeric.RplBanList, target, entry.Mask, entry.Setter)
			}
			replyNumeric(ctx, c, numeric.RplEndOfBanList, target, "End of channel ban list")
		}
	}
	if len(res.Changes) == 0 {
		return
	}
	if idx < 0 || ch.Members[idx].Status&(chanreg.StatusOp|chanreg.StatusHalfOp) == 0 {
		replyNumeric(ctx, c, numeric.ErrChanOPrivsNeeded, target, "You're not channel operator")
		return
	}
	var allowed []modeengine.Change
	for _, change := range res.Changes {
		if change.Slot.OperOnly && !c.IsOper {
			replyNumeric(ctx, c, numeric.ErrNoPrivileges, "Permission Denied- You're not an IRC operator")
			continue
		}
		allowed = append(allowed, change)
	}
	resolve := func(nick string) (container.Handle, bool) { return ctx.Deps.Clients.LookupNick(nick) }
	applied := modeengine.ApplyChannel(ch, allowed, resolve, c.NickUhost(), ctx.Now)
	if len(applied) == 0 {
		return
	}
	for _, line := range modeengine.Coalesce(applied) {
		out := wire.Message{Prefix: c.NickUhost(), Command: "MODE", Params: append([]string{target, line.Letters}, line.Params...)}
		send.ToClient(ctx.SendCtx(), c, out)
		send.ToChannel(ctx.SendCtx(), ch, ctx.Deps.Clients, ctx.Self, out)
	}
}

func handleOper(ctx Context, c *client.Client, msg wire.Message) {
	if err := ctx.Deps.Opers.Verify(msg.Params[0], msg.Params[1], c.NickUhost()); err != nil {
		replyNumeric(ctx, c, numeric.ErrPasswdMismatch, "Password incorrect")
		return
	}
	c.IsOper = true
	replyNumeric(ctx, c, numeric.RplYoureOper, "You are now an IRC operator")
}

func handleMotd(ctx Context, c *client.Client, msg wire.Message) {
	if ctx.Deps.MOTD == "" {
		replyNumeric(ctx, c, numeric.ErrNoMotd, "MOTD File is missing")
		return
	}
	replyNumeric(ctx, c, numeric.RplMotdStart, "- "+ctx.Deps.ServerName+" Message of the day -")
	for _, line := range strings.Split(ctx.Deps.MOTD, "\n") {
		replyNumeric(ctx, c, numeric.RplMotd, "- "+line)
	}
	replyNumeric(ctx, c, numeric.RplEndOfMotd, "End of MOTD command")
}

func sendNames(ctx Context, c *client.Client, ch *chanreg.Channel, name string) {
	var nicks []string
	for _, m := range ch.Members {
		mc, ok := ctx.Deps.Clients.Get(m.Client)
		if !ok {
			continue
		}
		nicks = append(nicks, m.Status.Prefix()+mc.Nick)
	}
	replyNumeric(ctx, c, numeric.RplNamReply, "=", name, strings.Join(nicks, " "))
	replyNumeric(ctx, c, numeric.RplEndOfNames, name, "End of NAMES list")
}

func sendServerLine(ctx Context, c *client.Client, command string, params ...string) {
	msg := wire.Message{Prefix: ctx.Deps.ServerName, Command: command, Params: params}
	send.ToClient(ctx.SendCtx(), c, msg)
}

func announceSelf(ctx Context, c *client.Client, command string, params ...string) {
	msg := wire.Message{Prefix: c.NickUhost(), Command: command, Params: params}
	send.ToClient(ctx.SendCtx(), c, msg)
}
