package chanreg

import (
	"time"

	"github.com/pkg/errors"

	"github.com/foxcomet/ircd/internal/container"
)

const maxChannelLength = 50

var ErrInvalidChannelName = errors.New("invalid channel name")

// Registry owns every Channel's storage, keyed by folded name, mirroring
// client.Registry's slab+dict pairing (see internal/client/registry.go).
// Grounded on horgh-catbox's Server.Channels map (server.go), generalised
// the same way: container.Slab for stable handles, container.Dict for
// folded-name lookup.
type Registry struct {
	slab   *container.Slab[Channel]
	byName *container.Dict[container.Handle]
}

func NewRegistry() *Registry {
	return &Registry{
		slab:   container.NewSlab[Channel](),
		byName: container.NewDict[container.Handle](),
	}
}

// ValidName reports whether name is an acceptable channel name: it must
// start with '#' or '&' and stay under the length limit (spec.md §4.E).
func ValidName(name string) bool {
	if len(name) < 2 || len(name) > maxChannelLength {
		return false
	}
	switch name[0] {
	case '#', '&':
	default:
		return false
	}
	for i := 1; i < len(name); i++ {
		switch name[i] {
		case ' ', ',', '\x07', ':':
			return false
		}
	}
	return true
}

// GetOrCreate returns the existing channel handle for name, or creates an
// empty one stamped with the current time as its TS.
func (r *Registry) GetOrCreate(name string, now time.Time) (container.Handle, bool, error) {
	if !ValidName(name) {
		return container.Handle{}, false, ErrInvalidChannelName
	}
	if h, ok := r.byName.Retrieve(name); ok {
		return h, false, nil
	}
	h := r.slab.Insert(Channel{
		Name:       name,
		NameFolded: container.CaseFold(name),
		Created:    now,
	})
	r.byName.Insert(name, h)
	return h, true, nil
}

// Lookup resolves a channel name to its handle without creating it.
func (r *Registry) Lookup(name string) (container.Handle, bool) {
	return r.byName.Retrieve(name)
}

// Get resolves a handle to its Channel.
func (r *Registry) Get(h container.Handle) (*Channel, bool) {
	return r.slab.Get(h)
}

// DestroyIfEmpty removes the channel if it has no members and does not
// carry a persistence mode (spec.md §4.E). persistent is supplied by the
// caller (internal/modeengine owns the actual mode-letter bit).
func (r *Registry) DestroyIfEmpty(h container.Handle, persistent bool) bool {
	c, ok := r.slab.Get(h)
	if !ok || !c.Empty() || persistent {
		return false
	}
	r.byName.Delete(c.Name)
	r.slab.Remove(h)
	return true
}

// Range visits every live channel.
func (r *Registry) Range(fn func(container.Handle, *Channel) bool) {
	r.slab.Range(fn)
}

// Len reports the number of channels currently registered.
func (r *Registry) Len() int {
	return r.slab.Len()
}
