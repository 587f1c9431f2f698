package reactor

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxcomet/ircd/internal/capability"
	"github.com/foxcomet/ircd/internal/chanreg"
	"github.com/foxcomet/ircd/internal/client"
	"github.com/foxcomet/ircd/internal/command"
	"github.com/foxcomet/ircd/internal/hook"
	"github.com/foxcomet/ircd/internal/modeengine"
	"github.com/foxcomet/ircd/internal/oper"
	"github.com/foxcomet/ircd/internal/send"
	"github.com/foxcomet/ircd/internal/timer"
)

func newTestReactor() (*Reactor, *command.Deps) {
	deps := &command.Deps{
		Clients:    client.NewRegistry(),
		Channels:   chanreg.NewRegistry(),
		Modes:      modeengine.NewRegistry(),
		Caps:       capability.NewRegistry(),
		Bus:        hook.NewBus(),
		Opers:      oper.NewStore(),
		Gate:       send.NewTagGate(),
		ServerName: "irc.test",
		Network:    "TestNet",
	}
	limits := DefaultLimits
	limits.IOWait = 5 * time.Second
	r := New(deps, command.NewTable(), timer.NewScheduler(60), limits)
	return r, deps
}

// readLine reads one CRLF-terminated line from conn, failing the test if
// none arrives within the deadline.
func readLine(t *testing.T, conn net.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	return line
}

func TestReactorCompletesRegistrationOverPipe(t *testing.T) {
	r, _ := newTestReactor()
	go r.Run()
	defer r.Shutdown()

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	r.Accept(serverSide)

	_, err := clientSide.Write([]byte("NICK alice\r\n"))
	require.NoError(t, err)
	_, err = clientSide.Write([]byte("USER alice 0 * :Alice Example\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(clientSide)
	require.NoError(t, clientSide.SetReadDeadline(time.Now().Add(2*time.Second)))
	var sawWelcome bool
	for i := 0; i < 10; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if containsCode(line, "001") {
			sawWelcome = true
			break
		}
	}
	assert.True(t, sawWelcome, "expected a 001 welcome numeric")
}

func TestReactorQuitTearsDownConnection(t *testing.T) {
	r, deps := newTestReactor()
	go r.Run()
	defer r.Shutdown()

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	r.Accept(serverSide)

	_, err := clientSide.Write([]byte("NICK bob\r\n"))
	require.NoError(t, err)
	_, err = clientSide.Write([]byte("USER bob 0 * :Bob Example\r\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(clientSide)
	require.NoError(t, clientSide.SetReadDeadline(time.Now().Add(2*time.Second)))
	for i := 0; i < 10; i++ {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if containsCode(line, "001") {
			break
		}
	}

	_, err = clientSide.Write([]byte("QUIT :goodbye\r\n"))
	require.NoError(t, err)

	require.NoError(t, clientSide.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 64)
	_, readErr := clientSide.Read(buf)
	assert.Error(t, readErr, "connection should be closed after QUIT")

	require.Eventually(t, func() bool {
		return deps.Clients.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAcceptConnRegistersLocalClient(t *testing.T) {
	r, deps := newTestReactor()
	go r.Run()
	defer r.Shutdown()

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()
	r.Accept(serverSide)

	require.Eventually(t, func() bool {
		return deps.Clients.Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func containsCode(line, code string) bool {
	for i := 0; i+len(code) <= len(line); i++ {
		if line[i:i+len(code)] == code {
			return true
		}
	}
	return false
}
