// Package server wires every subsystem together into one runnable ircd,
// matching spec.md §9's "Global state... modeled as a single ServerCore
// value passed by reference to every handler". It owns no protocol logic
// itself; it only constructs the registries, builds the command.Deps
// and command.Table they share, and starts internal/reactor's event
// loop over a listener.
//
// Grounded on horgh-catbox's newServer/start (ircd.go): the teacher
// builds its Server value from a flat config map, opens a TCP listener,
// and hands it to a hand-rolled select loop. This package keeps that
// same "construct everything up front, then block in one loop" shape,
// but the loop itself is internal/reactor's (built directly from
// spec.md §5 — see internal/reactor's package doc for why) rather than
// a second copy of the teacher's select statement.
package server

import (
	"crypto/tls"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/command"
	"github.com/foxcomet/ircd/internal/config"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/modeengine"
	"github.com/foxcomet/ircd/internal/module"
	"github.com/foxcomet/ircd/internal/oper"
	"github.com/foxcomet/ircd/internal/ratelimit"
	"github.com/foxcomet/ircd/internal/reactor"
	"github.com/foxcomet/ircd/internal/send"
	"github.com/foxcomet/ircd/internal/timer"
)

// standardCapabilities is the set spec.md §6 requires a conforming core
// to advertise out of the box. Modules may register more at load time
// through the same Registry.Register path (spec.md §4.J); there is
// exactly one registration code path for both.
var standardCapabilities = []struct {
	name string
	ns   capability.Namespace
}{
	{"batch", capability.Client},
	{"labeled-response", capability.Client},
	{"server-time", capability.Client},
	{"draft/chathistory", capability.Client},
	{"draft/typing", capability.Client},
	{"draft/read", capability.Client},
	{"draft/replay", capability.Client},
	{"extended-monitor", capability.Client},
}

// Core bundles every registry and subsystem a running server needs, and
// is the value internal/server.New returns.
type Core struct {
	Config config.Config

	Deps    *command.Deps
	Table   *command.Table
	Modules *module.Loader
	Timers  *timer.Scheduler
	Reactor *reactor.Reactor
}

// New constructs a Core from cfg: every registry, the shared
// command.Deps, the module loader bound to the same registries, and a
// reactor whose ping/dead timings are derived from cfg; its send-queue
// limits are reactor.DefaultLimits. It does not open a listener; call
// Listen and Serve for that.
func New(cfg config.Config) (*Core, error) {
	clients := client.NewRegistry()
	channels := chanreg.NewRegistry()
	modes := modeengine.NewRegistry()
	caps := capability.NewRegistry()
	bus := hook.NewBus()
	opers := oper.NewStore()
	gate := send.NewTagGate()

	for _, sc := range standardCapabilities {
		if _, err := caps.Register(sc.name, sc.ns, ""); err != nil {
			return nil, errors.Wrapf(err, "registering capability %q", sc.name)
		}
	}

	for _, acct := range cfg.Opers {
		opers.Add(oper.Credential{
			Name:         acct.Name,
			PasswordHash: []byte(acct.PasswordHash),
			HostPattern:  acct.HostPattern,
		})
	}

	limits := ratelimit.Limits{
		CommandsPerMinute:  cfg.RateLimit.CommandsPerMinute,
		MessagesPerMinute:  cfg.RateLimit.MessagesPerMinute,
		ConnectionsPerHour: cfg.RateLimit.ConnectionsPerHour,
		CIDRv4:             cfg.RateLimit.CIDRv4,
	}
	limiter := ratelimit.NewLimiter(limits, 10*time.Minute, 5)

	table := command.NewTable()

	deps := &command.Deps{
		Clients:    clients,
		Channels:   channels,
		Modes:      modes,
		Caps:       caps,
		Bus:        bus,
		Opers:      opers,
		Limiter:    limiter,
		Gate:       gate,
		ServerName: cfg.ServerName,
		Network:    cfg.Network,
		MOTD:       cfg.MOTD,
	}

	loader := module.NewLoader(module.Deps{
		Commands: table,
		Caps:     caps,
		Bus:      bus,
		Modes:    modes,
	})

	timers := timer.NewScheduler(3600)

	reactorLimits := reactor.DefaultLimits
	if cfg.PingTime > 0 {
		reactorLimits.PingAfter = cfg.PingTime
	}
	if cfg.DeadTime > 0 {
		reactorLimits.DeadAfter = cfg.DeadTime
	}

	rx := reactor.New(deps, table, timers, reactorLimits)

	return &Core{
		Config:  cfg,
		Deps:    deps,
		Table:   table,
		Modules: loader,
		Timers:  timers,
		Reactor: rx,
	}, nil
}

// Listen opens the plain-TCP (or, if both cfg.TLSCert/TLSKey are set,
// TLS) listener this Core's config describes. It does not block; pair
// it with Serve.
func (c *Core) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(c.Config.ListenHost, c.Config.ListenPort))
	if err != nil {
		return nil, errors.Wrap(err, "listening")
	}
	if c.Config.TLSCert != "" && c.Config.TLSKey != "" {
		cert, err := tls.LoadX509KeyPair(c.Config.TLSCert, c.Config.TLSKey)
		if err != nil {
			_ = ln.Close()
			return nil, errors.Wrap(err, "loading TLS certificate")
		}
		ln = tls.NewListener(ln, &tls.Config{Certificates: []tls.Certificate{cert}})
	}
	return ln, nil
}

// Serve runs the reactor's accept loop over ln and the reactor's main
// event loop, blocking until Shutdown is called or ln's Accept fails.
// The accept loop and the event loop run concurrently; Serve returns
// once both have stopped.
func (c *Core) Serve(ln net.Listener) error {
	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- c.Reactor.ListenAndServe(ln)
	}()

	c.Reactor.Run()

	_ = ln.Close()
	return <-acceptErr
}

// Shutdown signals the reactor to stop accepting work and tear every
// connection down. It does not wait for Serve to return.
func (c *Core) Shutdown() {
	c.Reactor.Shutdown()
}
