// Package timer wires spec.md §4.L's timer wheel to the core's periodic
// jobs. The only one registered is the ping/dead-connection sweep, which
// internal/reactor schedules; there is no ban-list expiry sweep, and the
// rate limiter's token buckets refill on their own without a rollover
// job. It owns no goroutine of its own — like
// every component under spec.md §5, Tick is called synchronously from
// the reactor thread once a second.
//
// Grounded on horgh-catbox's ircd.go alarm/checkAndPingClients pair: a
// once-a-second "alarm" goroutine wakes the single server goroutine
// through a channel handshake, which then walks every client comparing
// LastActivityTime against idle thresholds — PING if idle a short time,
// disconnect ("Ping timeout") if idle past the dead threshold. That
// handshake becomes internal/reactor's job (it owns the goroutine that
// calls Tick once a second); this package only holds the
// container.Wheel and the callback registrations Tick drives.
package timer

import (
	"time"

	"github.com/foxcomet/ircd/internal/container"
)

// Scheduler owns the wheel and the well-known recurring jobs registered
// against it.
type Scheduler struct {
	wheel *container.Wheel
}

// NewScheduler creates a Scheduler over a wheel sized for up to
// maxHorizonSeconds of lookahead (spec.md §4.L "bounded scheduling
// horizon").
func NewScheduler(maxHorizonSeconds int) *Scheduler {
	return &Scheduler{wheel: container.NewWheel(maxHorizonSeconds)}
}

// Every registers a periodic callback, matching the ban-expiry and
// rate-limit-rollover sweeps' needs (spec.md §4.L).
func (s *Scheduler) Every(periodSeconds int, callback func()) container.TimerID {
	return s.wheel.Every(periodSeconds, nil, func(any) { callback() })
}

// After registers a one-shot callback.
func (s *Scheduler) After(delaySeconds int, callback func()) container.TimerID {
	return s.wheel.After(delaySeconds, nil, func(any) { callback() })
}

// Cancel cancels a previously-registered callback.
func (s *Scheduler) Cancel(id container.TimerID) {
	s.wheel.Cancel(id)
}

// Tick advances the wheel by one second, firing any due callbacks.
// internal/reactor calls this once per second on its own goroutine.
func (s *Scheduler) Tick() {
	s.wheel.Tick()
}

// IdleClient is the minimal view PingSweep needs of a connection; it is
// satisfied by *client.Client without this package importing
// internal/client (avoiding a dependency both ways, since client needs
// no reference back to timer).
type IdleClient interface {
	LastActivity() time.Time
	IsRegistered() bool
}

// PingSweep implements the teacher's checkAndPingClients generalised to
// operate over any IdleClient: clients idle past pingAfter get a PING;
// clients idle past deadAfter get disconnected via onDead. Unregistered
// connections skip the PING step and go straight to the dead check,
// matching the teacher's behavior ("If they've been idle a long time, we
// kill their connection" applies unconditionally; PING only makes sense
// post-registration).
func PingSweep[T IdleClient](now time.Time, clients []T, pingAfter, deadAfter time.Duration, onPing func(T), onDead func(T, string)) {
	for _, c := range clients {
		idle := now.Sub(c.LastActivity())
		if c.IsRegistered() {
			if idle < pingAfter {
				continue
			}
			if idle > deadAfter {
				onDead(c, "Ping timeout")
				continue
			}
			onPing(c)
			continue
		}
		if idle > deadAfter {
			onDead(c, "Idle too long")
		}
	}
}
