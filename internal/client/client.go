// Package client implements the Client registry of spec.md §4.D: the
// registration state machine, the folded-nickname uniqueness invariant,
// and lookup by stable identifier.
//
// Grounded on horgh-catbox's Client/LocalClient/LocalUser split
// (client.go, local_client.go, local_user.go): a connection starts as a
// bare pre-registration record and is promoted once NICK+USER (and, here,
// capability negotiation) complete. This package keeps that state-machine
// shape but collapses the teacher's three Go types into one Client with a
// State field, since spec.md §3's registration states ("Unregistered →
// CapNegotiating → ... → Registered → Disconnecting") are an explicit
// enum rather than the teacher's ad hoc type-promotion.
package client

import (
	"net"
	"time"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/container"
)

// State is the registration state machine from spec.md §3.
type State int

const (
	Unregistered State = iota
	CapNegotiating
	AwaitingRegistration
	Authenticating
	Registered
	Disconnecting
)

// Writer is implemented by whatever owns the actual socket (internal/
// reactor's per-connection write goroutine). Client itself never touches
// a net.Conn directly, so internal/client has no I/O dependency.
type Writer interface {
	// QueueMessage enqueues a frame for delivery. It must not block; an
	// implementation that would block instead flags its connection for
	// disconnection (spec.md §4.K backpressure).
	QueueMessage(m any) // any to avoid importing internal/wire here; callers pass wire.Message
}

// Client is a single connection, or a remote user known via a
// server-to-server link (IsLocal false) — see spec.md §3 "Client".
type Client struct {
	ID string // stable short token, e.g. a TS6-style UID

	Nick       string // display form
	NickFolded string // cached container.CaseFold(Nick)

	User     string
	Host     string
	RealName string

	State State

	IsLocal  bool
	IsSecure bool
	IsOper   bool
	IsAway   bool
	IsService bool

	// UserModes is a bitmask of registered user-mode letters (spec.md §3
	// "Mode slot"); internal/modeengine owns the letter<->bit assignment.
	UserModes uint64

	Caps capability.Set

	ConnectTime      time.Time
	LastActivityTime time.Time

	PeerIP net.IP

	// Channels holds handles into a chanreg.Registry's slab. Using a handle
	// rather than a *chanreg.Channel avoids an import cycle (chanreg needs
	// to refer back to Client) and matches spec.md §9's "Client holds weak
	// handles to its channels" guidance.
	Channels []container.Handle

	// Out is nil until a local connection attaches its writer; remote
	// Clients (server-to-server) never have one, matching the Data Model
	// invariant "remote Clients do not [have an associated I/O handle]".
	Out Writer

	// AccountName is set once SASL or equivalent authentication succeeds;
	// blank otherwise. Not a spec.md-named field, but carried so account-tag
	// style modules (out of core scope) have somewhere to read it from.
	AccountName string

	// QuitReason is set by the QUIT handler before it flips State to
	// Disconnecting; internal/reactor reads it when performing the actual
	// teardown, so the command layer never has to reach into the reactor
	// to tear a connection down itself.
	QuitReason string
}

// NickUhost renders the nick!user@host form used as a message prefix.
func (c *Client) NickUhost() string {
	host := c.Host
	if host == "" && c.PeerIP != nil {
		host = c.PeerIP.String()
	}
	return c.Nick + "!" + c.User + "@" + host
}

// LastActivity and IsRegistered satisfy internal/timer's IdleClient,
// letting the reactor's ping sweep run directly over *Client values.
func (c *Client) LastActivity() time.Time { return c.LastActivityTime }
func (c *Client) IsRegistered() bool      { return c.State == Registered }
