// Package ratelimit implements spec.md §4.M: per-IP command/message rate
// limiting with a CIDR exemption list.
//
// Grounded on original_source/extensions/ip_ratelimit.c: the same three
// counters (commands, connections, messages) windowed per IP, the same
// CIDR-bucketing idea (there via rb_patricia_tree_t keyed to a /24 for
// IPv4). The C version is driven by the "new_local_user"/"client_exit"/
// "privmsg_user"/"privmsg_channel" hook points; here internal/reactor
// calls Allow and Forget directly instead. The C version hand-rolls a
// fixed one-window-per-bucket counter with a background expiry event;
// here golang.org/x/time/rate's token bucket replaces the manual window
// bookkeeping (it already implements the burst-and-refill semantics the
// C code reimplements by hand), and internal/container.Patricia replaces
// rb_patricia_tree_t for the exemption list.
package ratelimit

import (
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/foxcomet/ircd/internal/container"
)

// Limits configures the three independent buckets spec.md §4.M names.
type Limits struct {
	CommandsPerMinute   int
	MessagesPerMinute   int
	ConnectionsPerHour  int
	CIDRv4              int // prefix length IPv4 addresses are bucketed to
}

// DefaultLimits mirrors the C extension's defaults.
var DefaultLimits = Limits{
	CommandsPerMinute:  60,
	MessagesPerMinute:  30,
	ConnectionsPerHour: 10,
	CIDRv4:             24,
}

type bucketSet struct {
	commands    *rate.Limiter
	messages    *rate.Limiter
	connections *rate.Limiter
	violations  int
	throttledAt time.Time
	throttled   bool
}

// Limiter tracks per-bucketed-IP rate state and a patricia-tree exemption
// list. It is not safe for concurrent use — per spec.md §5, it is only
// ever touched from the single reactor goroutine.
type Limiter struct {
	limits    Limits
	buckets   map[string]*bucketSet
	exempt    *container.Patricia
	throttleDuration time.Duration
	autoKlineAt      int
}

// NewLimiter builds a Limiter with the given limits and throttle duration
// (how long a bucket stays throttled after a violation) and the number of
// violations at which Allow starts reporting autoKline — spec.md §4.M
// leaves enforcement of the resulting ban to the caller; this package only
// reports when the threshold is crossed.
func NewLimiter(limits Limits, throttleDuration time.Duration, autoKlineAt int) *Limiter {
	return &Limiter{
		limits:           limits,
		buckets:          make(map[string]*bucketSet),
		exempt:           container.NewPatricia(),
		throttleDuration: throttleDuration,
		autoKlineAt:      autoKlineAt,
	}
}

// Exempt adds a CIDR range that bypasses rate limiting entirely.
func (l *Limiter) Exempt(network *net.IPNet) {
	bitlen, _ := network.Mask.Size()
	l.exempt.Insert(network.IP, bitlen, true)
}

// IsExempt reports whether addr falls under a configured exemption.
func (l *Limiter) IsExempt(addr net.IP) bool {
	_, ok := l.exempt.Match(addr)
	return ok
}

func (l *Limiter) bucketKey(addr net.IP) string {
	if v4 := addr.To4(); v4 != nil {
		mask := net.CIDRMask(l.limits.CIDRv4, 32)
		return v4.Mask(mask).String()
	}
	return addr.String()
}

func (l *Limiter) bucket(addr net.IP) *bucketSet {
	key := l.bucketKey(addr)
	b, ok := l.buckets[key]
	if !ok {
		b = &bucketSet{
			commands:    rate.NewLimiter(rate.Limit(float64(l.limits.CommandsPerMinute)/60.0), l.limits.CommandsPerMinute),
			messages:    rate.NewLimiter(rate.Limit(float64(l.limits.MessagesPerMinute)/60.0), l.limits.MessagesPerMinute),
			connections: rate.NewLimiter(rate.Limit(float64(l.limits.ConnectionsPerHour)/3600.0), l.limits.ConnectionsPerHour),
		}
		l.buckets[key] = b
	}
	return b
}

// Kind identifies which of the three independent buckets an event counts
// against.
type Kind int

const (
	Command Kind = iota
	Message
	Connection
)

// Allow reports whether an event of the given kind is permitted for addr
// right now, consuming a token if so. A violation (Allow returning false)
// increments that bucket's violation counter; once it crosses
// autoKlineAt, autoKline is true and the caller should escalate to a ban
// (spec.md §4.M "sustained abuse escalates past rate limiting").
func (l *Limiter) Allow(addr net.IP, kind Kind, now time.Time) (allowed bool, autoKline bool) {
	if l.IsExempt(addr) {
		return true, false
	}
	b := l.bucket(addr)
	if b.throttled && now.Sub(b.throttledAt) < l.throttleDuration {
		b.violations++
		return false, b.violations >= l.autoKlineAt
	}
	b.throttled = false

	var limiter *rate.Limiter
	switch kind {
	case Command:
		limiter = b.commands
	case Message:
		limiter = b.messages
	case Connection:
		limiter = b.connections
	}

	if limiter.AllowN(now, 1) {
		return true, false
	}

	b.violations++
	b.throttled = true
	b.throttledAt = now
	return false, b.violations >= l.autoKlineAt
}

// Forget discards tracked state for addr's bucket, to bound memory use.
// It does so unconditionally, even if other connections from the same
// bucket are still active.
func (l *Limiter) Forget(addr net.IP) {
	delete(l.buckets, l.bucketKey(addr))
}
