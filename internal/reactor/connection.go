package reactor

import (
	"net"

	"github.com/foxcomet/ircd/internal/container"
	"github.com/foxcomet/ircd/internal/wire"
)

// socket is the I/O surface a connection goroutine needs. *Conn
// satisfies it; tests substitute an in-memory fake so the reactor's
// event-loop logic can be exercised without a real net.Conn (spec.md §8
// "every invariant must be testable without a live socket").
type socket interface {
	ReadChunk([]byte) (int, error)
	WriteString(string) error
	Close() error
	RemoteAddr() net.Addr
}

// EventType distinguishes the kinds of work a connection goroutine (or
// the listener goroutine) pushes onto the reactor's single event
// channel. This generalizes horgh-catbox's Event{Type, Client, Message}
// (MessageFromClientEvent / DeadClientEvent) to also cover new-connection
// admission.
type EventType int

const (
	// FrameEvent carries one fully decoded wire.Message from a
	// connection's reader.
	FrameEvent EventType = iota
	// DeadConnEvent signals a connection's reader or writer hit an
	// unrecoverable I/O error and the client must be torn down.
	DeadConnEvent
)

// Event is one unit of work delivered to Reactor.Run's select loop.
type Event struct {
	Type   EventType
	Handle container.Handle
	Frame  wire.Message
	Reason string
}

// connState is the reactor-side bookkeeping for one connection: its
// socket, its incremental frame decoder, and its outbound queue. It is
// never touched by the client.Client record itself (spec.md §9: Client
// holds no I/O handle), only by the reactor goroutine and this
// connection's own reader/writer goroutines.
type connState struct {
	handle  container.Handle
	sock    socket
	decoder *wire.Decoder

	writeChan chan wire.Message
	closeChan chan struct{}

	softWarned   bool
	hardExceeded bool
}

// readLoop endlessly reads from the connection, feeding complete frames
// back to the reactor as FrameEvents. Mirrors horgh-catbox's
// local_client.go readLoop, generalized to incremental-chunk decoding
// (the teacher reads whole lines itself; here wire.Decoder does that so
// it can also track a pending tag section across partial reads).
func (r *Reactor) readLoop(cs *connState) {
	defer r.wg.Done()
	buf := make([]byte, 4096)
	for {
		n, err := cs.sock.ReadChunk(buf)
		if n > 0 {
			cs.decoder.Feed(buf[:n])
			for {
				msg, derr := cs.decoder.Next()
				if derr == wire.ErrNeedMoreData {
					break
				}
				if derr == wire.ErrLineTooLong {
					continue
				}
				if derr != nil {
					// Malformed frame: ignore and keep reading, matching the
					// teacher's "silently ignores malformed messages" comment in
					// local_client.go's readLoop.
					continue
				}
				select {
				case r.events <- Event{Type: FrameEvent, Handle: cs.handle, Frame: msg}:
				case <-cs.closeChan:
					return
				}
			}
		}
		if err != nil {
			select {
			case r.events <- Event{Type: DeadConnEvent, Handle: cs.handle, Reason: err.Error()}:
			case <-cs.closeChan:
			}
			return
		}
	}
}

// writeLoop endlessly drains the connection's outbound queue to the
// socket. Mirrors horgh-catbox's local_client.go writeLoop: stop either
// on a closed write channel (graceful quit) or on closeChan (reactor
// tore the connection down for another reason).
func (r *Reactor) writeLoop(cs *connState) {
	defer r.wg.Done()
Loop:
	for {
		select {
		case msg, ok := <-cs.writeChan:
			if !ok {
				break Loop
			}
			if err := cs.sock.WriteString(wire.Encode(msg)); err != nil {
				select {
				case r.events <- Event{Type: DeadConnEvent, Handle: cs.handle, Reason: err.Error()}:
				case <-cs.closeChan:
				}
				break Loop
			}
		case <-cs.closeChan:
			break Loop
		}
	}
	_ = cs.sock.Close()
}

// connWriter adapts a connState's outbound channel to client.Writer.
// QueueMessage always runs on the reactor goroutine (it is only ever
// reached through command.Dispatch), so it may touch connState's fields
// directly without synchronization, matching spec.md §5's "no interior
// locking" rule.
type connWriter struct {
	reactor *Reactor
	cs      *connState
}

// QueueMessage implements client.Writer. It enforces spec.md §4.K's
// two-tier backpressure: past the soft limit it logs once (nothing
// throttles the sender); past the hard limit (the channel is full) the
// connection is flagged for disconnection.
func (w *connWriter) QueueMessage(m any) {
	msg, ok := m.(wire.Message)
	if !ok {
		return
	}
	cs := w.cs
	if cs.hardExceeded {
		return
	}
	if !cs.softWarned && len(cs.writeChan) >= w.reactor.softLimit {
		cs.softWarned = true
		w.reactor.onSoftLimit(cs.handle)
	}
	select {
	case cs.writeChan <- msg:
	default:
		cs.hardExceeded = true
		w.reactor.markDead(cs.handle, "SendQ exceeded")
	}
}
