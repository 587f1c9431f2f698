package client

import (
	"github.com/pkg/errors"

	"github.com/foxcomet/ircd/internal/container"
)

// Sentinel errors for nickname assignment (spec.md §4.D numerics
// ERR_NICKNAMEINUSE / ERR_ERRONEUSNICKNAME).
var (
	ErrNickInUse    = errors.New("nickname in use")
	ErrErroneusNick = errors.New("erroneous nickname")
	ErrNickTooLong  = errors.New("nickname too long")
)

const maxNickLength = 30

// Registry owns every Client's storage and the folded-nickname uniqueness
// invariant (spec.md §4.D "Nick uniqueness"). Grounded on horgh-catbox's
// Server.Clients/Server.Nicks map pair (server.go), generalised from a
// bare map to container.Dict/container.Slab so handles stay valid across
// renames and a stale handle can never alias a reused slot.
type Registry struct {
	slab   *container.Slab[Client]
	byNick *container.Dict[container.Handle]
	byID   map[string]container.Handle
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{
		slab:   container.NewSlab[Client](),
		byNick: container.NewDict[container.Handle](),
		byID:   make(map[string]container.Handle),
	}
}

// Register inserts a freshly-connected Client under its initial nick and
// ID. The caller must have already validated the nick is well-formed and
// unused (e.g. via CheckNick).
func (r *Registry) Register(c Client) container.Handle {
	c.NickFolded = container.CaseFold(c.Nick)
	h := r.slab.Insert(c)
	r.byNick.Insert(c.Nick, h)
	if c.ID != "" {
		r.byID[c.ID] = h
	}
	return h
}

// Get resolves a handle to its Client.
func (r *Registry) Get(h container.Handle) (*Client, bool) {
	return r.slab.Get(h)
}

// LookupNick resolves a (possibly differently-cased) nick to its handle.
func (r *Registry) LookupNick(nick string) (container.Handle, bool) {
	return r.byNick.Retrieve(nick)
}

// LookupID resolves a stable ID to its handle.
func (r *Registry) LookupID(id string) (container.Handle, bool) {
	h, ok := r.byID[id]
	return h, ok
}

// CheckNick validates a candidate nick against length limits and the
// uniqueness invariant, without committing any change. except, if
// non-zero, is a handle permitted to already hold that nick (used when
// validating a client's own no-op nick change).
func (r *Registry) CheckNick(nick string, except container.Handle) error {
	if len(nick) == 0 {
		return ErrErroneusNick
	}
	if len(nick) > maxNickLength {
		return ErrNickTooLong
	}
	if !isValidNickStart(nick[0]) {
		return ErrErroneusNick
	}
	for i := 1; i < len(nick); i++ {
		if !isValidNickChar(nick[i]) {
			return ErrErroneusNick
		}
	}
	if h, ok := r.byNick.Retrieve(nick); ok && h != except {
		return ErrNickInUse
	}
	return nil
}

// Rename commits a nick change: it re-keys the folded-nick dictionary and
// updates the stored Client's Nick/NickFolded fields. The caller is
// responsible for firing hook.NickChange and broadcasting the NICK
// message; Rename itself only maintains registry invariants.
func (r *Registry) Rename(h container.Handle, newNick string) error {
	if err := r.CheckNick(newNick, h); err != nil {
		return err
	}
	c, ok := r.slab.Get(h)
	if !ok {
		return errors.New("rename of unknown handle")
	}
	r.byNick.Delete(c.Nick)
	c.Nick = newNick
	c.NickFolded = container.CaseFold(newNick)
	r.byNick.Insert(newNick, h)
	return nil
}

// Remove deregisters a Client entirely, freeing its slot and its nick.
func (r *Registry) Remove(h container.Handle) {
	c, ok := r.slab.Get(h)
	if !ok {
		return
	}
	r.byNick.Delete(c.Nick)
	if c.ID != "" {
		delete(r.byID, c.ID)
	}
	r.slab.Remove(h)
}

// Range visits every live Client.
func (r *Registry) Range(fn func(container.Handle, *Client) bool) {
	r.slab.Range(fn)
}

// Len reports the number of registered clients.
func (r *Registry) Len() int {
	return r.slab.Len()
}

func isValidNickStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') ||
		b == '[' || b == ']' || b == '\\' || b == '`' || b == '_' ||
		b == '^' || b == '{' || b == '|' || b == '}'
}

func isValidNickChar(b byte) bool {
	return isValidNickStart(b) || (b >= '0' && b <= '9') || b == '-'
}
