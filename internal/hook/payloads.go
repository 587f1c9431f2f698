package hook

// Hook key constants, matching the representative table in spec.md §4.H.
const (
	NewLocalUser     = "new_local_user"
	ClientExit       = "client_exit"
	AfterClientExit  = "after_client_exit"
	ChannelJoin      = "channel_join"
	ChannelPart      = "channel_part"
	PrivmsgChannel   = "privmsg_channel"
	PrivmsgUser      = "privmsg_user"
	Invite           = "invite"
	KnockChannel     = "knock_channel"
	NickChange       = "nick_change"
	DoingWhois       = "doing_whois"
	OutboundMsgBuf   = "outbound_msgbuf"
	Ping             = "ping"
)

// MessageType distinguishes PRIVMSG from NOTICE for the privmsg_* hooks.
type MessageType int

const (
	TypePrivmsg MessageType = iota
	TypeNotice
)

// NewLocalUserPayload fires immediately post-registration. Not vetoable.
type NewLocalUserPayload struct {
	Client any // *client.Client; any to avoid an import cycle with internal/client
}

func (NewLocalUserPayload) Name() string { return NewLocalUser }

// ClientExitPayload fires twice around deregistration: before and after
// state removal (spec.md §4.H). Not vetoable.
type ClientExitPayload struct {
	Target any // *client.Client
	Reason string
}

func (ClientExitPayload) Name() string { return ClientExit }

// ChannelJoinPayload fires after membership is created. Not vetoable.
type ChannelJoinPayload struct {
	Client  any
	Channel any
}

func (ChannelJoinPayload) Name() string { return ChannelJoin }

// ChannelPartPayload fires before membership is removed. Not vetoable.
type ChannelPartPayload struct {
	Client  any
	Channel any
	Reason  string
}

func (ChannelPartPayload) Name() string { return ChannelPart }

// PrivmsgChannelPayload fires before channel fan-out. Vetoable.
type PrivmsgChannelPayload struct {
	Veto
	Source  any
	Channel any
	Text    string
	Type    MessageType
	MsgBuf  any // *wire.Message, mutable in place by observers before send
}

func (*PrivmsgChannelPayload) Name() string { return PrivmsgChannel }

// PrivmsgUserPayload fires before direct delivery. Vetoable.
type PrivmsgUserPayload struct {
	Veto
	Source any
	Target any
	Text   string
	Type   MessageType
	MsgBuf any
}

func (*PrivmsgUserPayload) Name() string { return PrivmsgUser }

// InvitePayload fires on INVITE. Vetoable.
type InvitePayload struct {
	Veto
	Source  any
	Target  any
	Channel any
}

func (*InvitePayload) Name() string { return Invite }

// KnockChannelPayload fires on KNOCK. Vetoable.
type KnockChannelPayload struct {
	Veto
	Source  any
	Channel any
}

func (*KnockChannelPayload) Name() string { return KnockChannel }

// NickChangePayload fires before a nickname update commits. Vetoable.
type NickChangePayload struct {
	Veto
	Client  any
	OldNick string
	NewNick string
}

func (*NickChangePayload) Name() string { return NickChange }

// DoingWhoisPayload fires during WHOIS reply assembly. Advisory only —
// it embeds no Veto, matching spec.md §4.H's "advisory" classification.
type DoingWhoisPayload struct {
	Requester any
	Target    any
}

func (DoingWhoisPayload) Name() string { return DoingWhois }

// OutboundMsgBufPayload fires immediately before serialisation. Advisory.
type OutboundMsgBufPayload struct {
	Client any
	MsgBuf any
}

func (OutboundMsgBufPayload) Name() string { return OutboundMsgBuf }

// PingPayload fires when the server pings another server. Not vetoable.
type PingPayload struct {
	Source any
	Target any
}

func (PingPayload) Name() string { return Ping }
