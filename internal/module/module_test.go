package module

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/command"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/modeengine"
)

func newLoader() (*Loader, Deps) {
	deps := Deps{
		Commands: command.NewTable(),
		Caps:     capability.NewRegistry(),
		Bus:      hook.NewBus(),
		Modes:    modeengine.NewRegistry(),
	}
	return NewLoader(deps), deps
}

func TestLoadRegistersEverything(t *testing.T) {
	l, deps := newLoader()

	require.NoError(t, l.Load(Descriptor{
		Name: "caps-mod",
		Capabilities: []CapabilitySpec{
			{Name: "draft/example", Namespace: capability.Client},
		},
	}))

	cp, ok := deps.Caps.Lookup("draft/example")
	require.True(t, ok)
	assert.Equal(t, "draft/example", cp.Name)
	assert.True(t, l.Loaded("caps-mod"))
}

func TestLoadRollsBackOnCapabilityConflict(t *testing.T) {
	l, deps := newLoader()
	_, err := deps.Caps.Register("batch", capability.Client, "")
	require.NoError(t, err)

	err = l.Load(Descriptor{
		Name: "conflict-mod",
		ChannelModes: []modeengine.Slot{
			{Letter: 'z', Category: modeengine.Simple, Bit: 1 << 40},
		},
		Capabilities: []CapabilitySpec{
			{Name: "batch", Namespace: capability.Client},
		},
	})
	require.Error(t, err)
	assert.False(t, l.Loaded("conflict-mod"))

	_, stillThere := deps.Modes.ChannelSlot('z')
	assert.False(t, stillThere, "a module whose capability conflicts must leave none of its channel modes registered")
}

func TestLoadRejectsDuplicateModuleName(t *testing.T) {
	l, _ := newLoader()
	require.NoError(t, l.Load(Descriptor{Name: "once"}))

	err := l.Load(Descriptor{Name: "once"})
	var already ErrAlreadyLoaded
	assert.True(t, errors.As(err, &already))
}

func TestUnloadReversesCommandRegistration(t *testing.T) {
	l, deps := newLoader()
	require.NoError(t, l.Load(Descriptor{
		Name: "verb-mod",
		Commands: []CommandSpec{
			{Verb: "WIDGET", Entry: command.Entry{MinParams: 1}},
		},
	}))
	_, ok := deps.Commands.Lookup("WIDGET")
	require.True(t, ok)

	require.NoError(t, l.Unload("verb-mod"))
	_, ok = deps.Commands.Lookup("WIDGET")
	assert.False(t, ok)
	assert.False(t, l.Loaded("verb-mod"))
}

func TestUnloadDefersWhileHandlerIsOnStack(t *testing.T) {
	l, deps := newLoader()
	require.NoError(t, l.Load(Descriptor{
		Name: "busy-mod",
		Commands: []CommandSpec{
			{Verb: "BUSY", Entry: command.Entry{}},
		},
	}))

	l.EnterCall("busy-mod")
	require.NoError(t, l.Unload("busy-mod"))

	// Still registered: the handler is still "on the stack".
	_, ok := deps.Commands.Lookup("BUSY")
	assert.True(t, ok)
	assert.True(t, l.PendingUnload("busy-mod"))

	l.ExitCall("busy-mod")
	_, ok = deps.Commands.Lookup("BUSY")
	assert.False(t, ok)
	assert.False(t, l.Loaded("busy-mod"))
}

func TestAliasRegistersAgainstExistingVerb(t *testing.T) {
	l, deps := newLoader()
	require.NoError(t, l.Load(Descriptor{
		Name: "base",
		Commands: []CommandSpec{
			{Verb: "PING", Entry: command.Entry{MinParams: 1}},
		},
	}))
	require.NoError(t, l.Load(Descriptor{
		Name:    "alias-mod",
		Aliases: map[string]string{"PING2": "PING"},
	}))

	entry, ok := deps.Commands.Lookup("PING2")
	require.True(t, ok)
	assert.Equal(t, 1, entry.MinParams)
}

func TestAliasRejectsUnknownTarget(t *testing.T) {
	l, _ := newLoader()
	err := l.Load(Descriptor{
		Name:    "bad-alias",
		Aliases: map[string]string{"FOO": "BAR"},
	})
	require.Error(t, err)
}
