// Package module implements spec.md §4.J: the feature-module loader. A
// module is a Descriptor of optional callbacks and four nullable
// registration tables (commands, capabilities, hooks, channel/user
// modes). Registration happens atomically — if any table entry
// conflicts with something already registered, the whole load is
// rolled back by invoking the inverse operations in reverse order.
//
// horgh-catbox has no plugin system (it is a monolithic ircd with a
// fixed if/else dispatch ladder), so there is no teacher file this
// package adapts directly; it follows spec.md §4.J's descriptor shape
// and reuses the teacher's plain-struct, no-reflection style rather
// than inventing a reflection-based or symbol-table (plugin.Open)
// loader, since the pack has no working example of Go's plugin
// package wired to a long-running server.
package module

import (
	"fmt"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/command"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/modeengine"
	"github.com/foxcomet/ircd/internal/wire"
)

// CommandSpec is one verb a module wants to add to the command table.
type CommandSpec struct {
	Verb  string
	Entry command.Entry
}

// CapabilitySpec is one capability a module wants registered.
type CapabilitySpec struct {
	Name      string
	Namespace capability.Namespace
	Value     string
}

// HookSpec is one subscription a module wants on the hook bus.
type HookSpec struct {
	Key     string
	Handler hook.Handler
}

// Descriptor is the well-known shape every module's entry point yields
// (spec.md §4.J: "{name, init, deinit, commands, aliases, hooks,
// capabilities, modes, description}").
type Descriptor struct {
	Name        string
	Description string

	// Init, if set, runs after every table below has been registered.
	// It may perform further ad-hoc setup but per spec.md §6 "after init
	// returns, no further registration is permitted for that module" —
	// Init is not handed a Registrar, so it cannot add more entries.
	Init func() error
	// Deinit runs on unload, before the loader unregisters the module's
	// table entries. It need not undo those registrations itself; it
	// exists only to release module-owned state (spec.md §6).
	Deinit func()

	Commands     []CommandSpec
	Aliases      map[string]string // alias verb -> existing verb
	Hooks        []HookSpec
	Capabilities []CapabilitySpec
	ChannelModes []modeengine.Slot
	UserModes    []modeengine.Slot
}

// Deps is the set of registries a module's tables are applied against.
type Deps struct {
	Commands *command.Table
	Caps     *capability.Registry
	Bus      *hook.Bus
	Modes    *modeengine.Registry
}

// loaded tracks what a successfully loaded module registered, so Unload
// can reverse it, and how many of its handlers are currently executing,
// so unload can be deferred (spec.md §4.J: "core defers destruction of a
// module until no invocation of its handlers is on the stack").
type loaded struct {
	desc       Descriptor
	verbs      []string
	caps       []string
	hookKeys   []string
	chanModes  []byte
	userModes  []byte
	activeCall int
	pendingUnload bool
}

// Loader owns the set of currently-loaded modules and the registries
// their descriptors are applied to.
type Loader struct {
	deps    Deps
	modules map[string]*loaded
}

// NewLoader builds a Loader bound to deps. deps' registries are normally
// the same ones wired into the server's command.Deps.
func NewLoader(deps Deps) *Loader {
	return &Loader{deps: deps, modules: make(map[string]*loaded)}
}

// ErrAlreadyLoaded is returned by Load for a duplicate module name.
type ErrAlreadyLoaded string

func (e ErrAlreadyLoaded) Error() string { return fmt.Sprintf("module %q already loaded", string(e)) }

// ErrConflict is returned when a descriptor's table collides with an
// existing registration; the load is rolled back before this is returned.
type ErrConflict struct {
	Module string
	Reason string
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("module %q: %s", e.Module, e.Reason)
}

// Load applies desc's tables to the loader's registries atomically. On
// any conflict, every registration already applied for this descriptor
// is undone (in reverse order) and an error is returned; no partial
// state is left behind.
func (l *Loader) Load(desc Descriptor) error {
	if _, exists := l.modules[desc.Name]; exists {
		return ErrAlreadyLoaded(desc.Name)
	}

	lm := &loaded{desc: desc}

	if err := l.registerCommands(lm, desc); err != nil {
		l.rollback(lm)
		return err
	}
	if err := l.registerCapabilities(lm, desc); err != nil {
		l.rollback(lm)
		return err
	}
	if err := l.registerModes(lm, desc); err != nil {
		l.rollback(lm)
		return err
	}
	l.registerHooks(lm, desc) // hook subscription never conflicts

	if desc.Init != nil {
		if err := desc.Init(); err != nil {
			l.rollback(lm)
			return ErrConflict{Module: desc.Name, Reason: "init failed: " + err.Error()}
		}
	}

	l.modules[desc.Name] = lm
	return nil
}

func (l *Loader) registerCommands(lm *loaded, desc Descriptor) error {
	for _, spec := range desc.Commands {
		if _, exists := l.deps.Commands.Lookup(spec.Verb); exists {
			return ErrConflict{Module: desc.Name, Reason: "duplicate verb " + spec.Verb}
		}
		spec.Entry.Handler = l.wrapHandler(desc.Name, spec.Entry.Handler)
		l.deps.Commands.Register(spec.Verb, spec.Entry)
		lm.verbs = append(lm.verbs, spec.Verb)
	}
	for alias, target := range desc.Aliases {
		entry, ok := l.deps.Commands.Lookup(target)
		if !ok {
			return ErrConflict{Module: desc.Name, Reason: "alias target " + target + " not registered"}
		}
		if _, exists := l.deps.Commands.Lookup(alias); exists {
			return ErrConflict{Module: desc.Name, Reason: "duplicate verb " + alias}
		}
		l.deps.Commands.Register(alias, entry)
		lm.verbs = append(lm.verbs, alias)
	}
	return nil
}

// wrapHandler brackets a module's handler with EnterCall/ExitCall so
// Unload can tell whether one of its handlers is on the stack (spec.md
// §4.J) without internal/reactor needing to know which module owns which
// verb.
func (l *Loader) wrapHandler(name string, h command.Handler) command.Handler {
	if h == nil {
		return nil
	}
	return func(ctx command.Context, c *client.Client, msg wire.Message) {
		l.EnterCall(name)
		defer l.ExitCall(name)
		h(ctx, c, msg)
	}
}

func (l *Loader) registerCapabilities(lm *loaded, desc Descriptor) error {
	for _, spec := range desc.Capabilities {
		if _, err := l.deps.Caps.Register(spec.Name, spec.Namespace, spec.Value); err != nil {
			return ErrConflict{Module: desc.Name, Reason: "capability " + spec.Name + ": " + err.Error()}
		}
		lm.caps = append(lm.caps, spec.Name)
	}
	return nil
}

func (l *Loader) registerModes(lm *loaded, desc Descriptor) error {
	for _, slot := range desc.ChannelModes {
		if err := l.deps.Modes.RegisterChannel(slot); err != nil {
			return ErrConflict{Module: desc.Name, Reason: "channel mode " + string(slot.Letter) + ": " + err.Error()}
		}
		lm.chanModes = append(lm.chanModes, slot.Letter)
	}
	for _, slot := range desc.UserModes {
		if err := l.deps.Modes.RegisterUser(slot); err != nil {
			return ErrConflict{Module: desc.Name, Reason: "user mode " + string(slot.Letter) + ": " + err.Error()}
		}
		lm.userModes = append(lm.userModes, slot.Letter)
	}
	return nil
}

func (l *Loader) registerHooks(lm *loaded, desc Descriptor) {
	for _, spec := range desc.Hooks {
		l.deps.Bus.Subscribe(spec.Key, desc.Name, spec.Handler)
		lm.hookKeys = append(lm.hookKeys, spec.Key)
	}
}

// rollback undoes every registration lm has accumulated so far, in
// reverse order, matching spec.md §4.J's "rolled back by invoking the
// inverse operations in reverse order".
func (l *Loader) rollback(lm *loaded) {
	for i := len(lm.hookKeys) - 1; i >= 0; i-- {
		l.deps.Bus.Unsubscribe(lm.hookKeys[i], lm.desc.Name)
	}
	for i := len(lm.userModes) - 1; i >= 0; i-- {
		l.deps.Modes.UnregisterUser(lm.userModes[i])
	}
	for i := len(lm.chanModes) - 1; i >= 0; i-- {
		l.deps.Modes.UnregisterChannel(lm.chanModes[i])
	}
	for i := len(lm.caps) - 1; i >= 0; i-- {
		l.deps.Caps.Unregister(lm.caps[i])
	}
	for i := len(lm.verbs) - 1; i >= 0; i-- {
		l.deps.Commands.Unregister(lm.verbs[i])
	}
}

// EnterCall marks the start of one invocation of a module-owned
// handler (command handler, hook subscriber, or mode apply callback),
// so Unload can tell a handler is on the stack.
func (l *Loader) EnterCall(name string) {
	if lm, ok := l.modules[name]; ok {
		lm.activeCall++
	}
}

// ExitCall marks the end of that invocation. If an unload was requested
// while this was the last active call, it completes now.
func (l *Loader) ExitCall(name string) {
	lm, ok := l.modules[name]
	if !ok {
		return
	}
	lm.activeCall--
	if lm.activeCall <= 0 && lm.pendingUnload {
		l.finishUnload(lm)
	}
}

// Unload invokes the module's Deinit and unregisters everything it
// registered. If one of its handlers is currently on the call stack, the
// teardown is deferred until the last such call returns (spec.md §4.J).
func (l *Loader) Unload(name string) error {
	lm, ok := l.modules[name]
	if !ok {
		return fmt.Errorf("module %q not loaded", name)
	}
	if lm.activeCall > 0 {
		lm.pendingUnload = true
		return nil
	}
	l.finishUnload(lm)
	return nil
}

func (l *Loader) finishUnload(lm *loaded) {
	if lm.desc.Deinit != nil {
		lm.desc.Deinit()
	}
	l.rollback(lm)
	delete(l.modules, lm.desc.Name)
}

// Loaded reports whether name is currently loaded (unload not yet
// completed).
func (l *Loader) Loaded(name string) bool {
	_, ok := l.modules[name]
	return ok
}

// PendingUnload reports whether name has been asked to unload but is
// waiting for its handlers to drain off the call stack.
func (l *Loader) PendingUnload(name string) bool {
	lm, ok := l.modules[name]
	return ok && lm.pendingUnload
}
