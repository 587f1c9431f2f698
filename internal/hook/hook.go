// Package hook implements the named synchronous event bus of spec.md
// §4.H: subscribers register against a string key, the core fires all of
// them in registration order, and a vetoable hook's Payload may set a
// non-zero Approved (rejection) code that the firing code must honor.
//
// There is no teacher file this is grounded on directly — horgh-catbox
// has no plugin/hook system, being a monolithic ircd — so this package
// follows spec.md §4.H and §9's "closed set of payload variants" guidance
// instead, reusing the teacher's plain-function, no-framework style
// rather than introducing an event-bus library (none of which appear in
// the pack wired to an in-process, single-threaded reactor; the
// retrieved examples that have a pub/sub bus, e.g. gossip/swim protocols,
// are for distributed membership, a different problem).
package hook

// Payload is the common interface every hook's typed payload struct
// implements. Vetoable hooks embed Veto, which carries the Approved
// rejection code (spec.md §4.H: "approved field... rejection code").
type Payload interface {
	// Name returns the hook key this payload belongs to, so a Bus can
	// sanity-check registration against Fire at the call site if desired.
	Name() string
}

// Veto is embedded by payload types for vetoable hooks. Approved is zero
// until a subscriber rejects the action; the first non-zero value set
// wins (spec.md §4.H: "core MUST honour the earliest non-zero approved").
type Veto struct {
	Approved int
}

// Reject sets Approved to code, but only if no earlier subscriber already
// rejected — preserving "the earliest non-zero approved" rule even if a
// later, buggy subscriber tries to overwrite it.
func (v *Veto) Reject(code int) {
	if v.Approved == 0 {
		v.Approved = code
	}
}

// Rejected reports whether some subscriber has already set Approved.
func (v *Veto) Rejected() bool {
	return v.Approved != 0
}

// Handler is a hook subscriber. It must not block and must not re-enter
// the dispatcher for the same client (spec.md §4.H "Handler contract").
type Handler func(Payload)

// Bus is the server-wide hook registry: a named, ordered list of
// subscribers per hook key.
type Bus struct {
	subscribers map[string][]subscription
}

type subscription struct {
	owner   string // module name, for Unsubscribe / module unload
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]subscription)}
}

// Subscribe registers handler against key, owned by owner (typically a
// module name, used by Unsubscribe at module-unload time). Subscribers
// fire in registration order (spec.md §4.H).
func (b *Bus) Subscribe(key, owner string, handler Handler) {
	b.subscribers[key] = append(b.subscribers[key], subscription{owner: owner, handler: handler})
}

// Unsubscribe removes every handler owner registered against key. Used by
// the module loader's rollback and deinit paths (spec.md §4.J).
func (b *Bus) Unsubscribe(key, owner string) {
	subs := b.subscribers[key]
	out := subs[:0]
	for _, s := range subs {
		if s.owner != owner {
			out = append(out, s)
		}
	}
	b.subscribers[key] = out
}

// UnsubscribeAll removes every handler owned by owner across all hook
// keys, for a full module unload.
func (b *Bus) UnsubscribeAll(owner string) {
	for key := range b.subscribers {
		b.Unsubscribe(key, owner)
	}
}

// Fire invokes every subscriber registered for key, in order, passing
// payload to each. For a vetoable hook, once payload's embedded Veto has
// a non-zero Approved, the core must not complete the gated action — Fire
// itself keeps calling remaining subscribers for observability (spec.md
// §4.H: "MAY continue to invoke remaining subscribers") but the veto
// value it already set is preserved by Veto.Reject's first-wins rule.
func (b *Bus) Fire(key string, payload Payload) {
	for _, s := range b.subscribers[key] {
		s.handler(payload)
	}
}

// Count reports how many subscribers are registered for key, chiefly for
// tests.
func (b *Bus) Count(key string) int {
	return len(b.subscribers[key])
}
