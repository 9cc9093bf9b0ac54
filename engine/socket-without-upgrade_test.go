package engine

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zishang520/engine.io-go-parser/packet"
	"github.com/zishang520/engine.io/v2/types"
)

// fakeTransport is a minimal Transport used to drive socketWithoutUpgrade
// without any real network I/O. Writes are recorded rather than sent.
type fakeTransport struct {
	Transport

	mu     sync.Mutex
	writes [][]*packet.Packet
}

func newFakeTransport(socket Socket, opts SocketOptionsInterface) *fakeTransport {
	ft := &fakeTransport{Transport: MakeTransport()}
	ft.Construct(socket, opts)
	ft.Prototype(ft)
	return ft
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) DoOpen() { f.OnOpen() }

func (f *fakeTransport) Write(packets []*packet.Packet) {
	f.mu.Lock()
	f.writes = append(f.writes, packets)
	f.mu.Unlock()
	f.SetWritable(true)
	f.Emit("drain")
}

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func newTestSocket() (*socketWithoutUpgrade, *fakeTransport) {
	ResetPriorWebsocketSuccess()
	s := MakeSocketWithoutUpgrade().(*socketWithoutUpgrade)
	s.opts = DefaultSocketOptions()
	ft := newFakeTransport(s, s.opts)
	// Connected but not yet writable: Transport.Send only reaches Write
	// while the transport is open.
	ft.SetReadyState(TransportStateOpen)
	s.SetTransport(ft)
	s.setReadyState(SocketStateOpening)
	return s, ft
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	if !cond() {
		t.Fatalf("condition not met within %s", timeout)
	}
}

func TestWriteQueuesUntilFlushedAndDrainFiresCallback(t *testing.T) {
	s, ft := newTestSocket()

	var cbCalled int32
	s.Write(strings.NewReader("hello"), nil, func() { atomic.AddInt32(&cbCalled, 1) })

	if got := s.WriteBuffer().Len(); got != 1 {
		t.Fatalf("WriteBuffer().Len() = %d, want 1 (transport not writable yet)", got)
	}
	if got := ft.writeCount(); got != 0 {
		t.Fatalf("writeCount() = %d, want 0 before transport is writable", got)
	}

	// Transport becomes writable (its own connect sequence completing);
	// the session does not auto-retry, so nudge it the same way onDrain
	// or a fresh enqueue would.
	ft.SetWritable(true)
	s.Flush()

	if got := ft.writeCount(); got != 1 {
		t.Fatalf("writeCount() = %d, want 1 after Flush", got)
	}
	if got := s.WriteBuffer().Len(); got != 1 {
		t.Fatalf("WriteBuffer().Len() = %d, want 1 (not cleared until drain)", got)
	}

	// fakeTransport.Write emits "drain" synchronously, which should have
	// already retired the buffer and invoked the callback.
	if got := atomic.LoadInt32(&cbCalled); got != 1 {
		t.Fatalf("callback called %d times, want 1", got)
	}
	if got := s.WriteBuffer().Len(); got != 0 {
		t.Fatalf("WriteBuffer().Len() = %d, want 0 after drain", got)
	}
}

func TestFlushOnlyAcknowledgesPreviouslySentPackets(t *testing.T) {
	s, ft := newTestSocket()

	var order []int
	s.Write(strings.NewReader("a"), nil, func() { order = append(order, 1) })
	ft.SetWritable(true)
	s.Flush()
	ft.SetWritable(false) // hold the next write in the buffer

	// A second packet queued after the flush snapshot must not be
	// acknowledged by the drain that corresponds to the first flush.
	s.Write(strings.NewReader("b"), nil, func() { order = append(order, 2) })

	if got := s.WriteBuffer().Len(); got != 1 {
		t.Fatalf("WriteBuffer().Len() = %d, want 1 (second packet still queued)", got)
	}
	if got := len(order); got != 1 || order[0] != 1 {
		t.Fatalf("callback order = %v, want [1]", order)
	}
}

func TestHandshakeAdoptsSidAndStartsPing(t *testing.T) {
	s, ft := newTestSocket()

	ft.SetWritable(true)
	handshake := &packet.Packet{
		Type: packet.OPEN,
		Data: strings.NewReader(`{"sid":"abc123","upgrades":[],"pingInterval":20,"pingTimeout":20}`),
	}
	s.onPacket(handshake)

	if got := s.Id(); got != "abc123" {
		t.Fatalf("Id() = %q, want %q", got, "abc123")
	}
	if got := s.ReadyState(); got != SocketStateOpen {
		t.Fatalf("ReadyState() = %q, want %q", got, SocketStateOpen)
	}
	if got := ft.Query().Get("sid"); got != "abc123" {
		t.Fatalf("transport sid query = %q, want %q", got, "abc123")
	}

	// The interval timer should fire a ping packet on the transport.
	waitFor(t, time.Second, func() bool { return ft.writeCount() > 0 })
}

func TestPongRestartsPingInterval(t *testing.T) {
	s, ft := newTestSocket()
	ft.SetWritable(true)

	handshake := &packet.Packet{
		Type: packet.OPEN,
		Data: strings.NewReader(`{"sid":"abc123","upgrades":[],"pingInterval":15,"pingTimeout":200}`),
	}
	s.onPacket(handshake)

	waitFor(t, time.Second, func() bool { return ft.writeCount() > 0 })
	afterFirstPing := ft.writeCount()

	// A pong resets the interval timer; the socket must not close from
	// ping timeout while pongs keep arriving.
	s.onPacket(&packet.Packet{Type: packet.PONG})

	time.Sleep(50 * time.Millisecond)
	if s.ReadyState() != SocketStateOpen {
		t.Fatalf("ReadyState() = %q, want %q after pong", s.ReadyState(), SocketStateOpen)
	}
	if got := ft.writeCount(); got < afterFirstPing {
		t.Fatalf("writeCount() went backwards: %d < %d", got, afterFirstPing)
	}
}

func TestPingTimeoutClosesSocket(t *testing.T) {
	s, _ := newTestSocket()

	closed := make(chan string, 1)
	s.On("close", func(args ...any) {
		if len(args) > 0 {
			if reason, ok := args[0].(string); ok {
				closed <- reason
			}
		}
	})

	handshake := &packet.Packet{
		Type: packet.OPEN,
		Data: strings.NewReader(`{"sid":"abc123","upgrades":[],"pingInterval":10,"pingTimeout":10}`),
	}
	s.onPacket(handshake)

	select {
	case reason := <-closed:
		if reason != "ping timeout" {
			t.Fatalf("close reason = %q, want %q", reason, "ping timeout")
		}
	case <-time.After(time.Second):
		t.Fatal("socket did not close after ping timeout")
	}

	if got := s.ReadyState(); got != SocketStateClosed {
		t.Fatalf("ReadyState() = %q, want %q", got, SocketStateClosed)
	}
}

func TestOnCloseEmitsBeforeClearingBuffers(t *testing.T) {
	s, ft := newTestSocket()
	ft.SetWritable(false) // keep the packet queued, not flushed

	s.Write(strings.NewReader("queued"), nil, nil)
	if got := s.WriteBuffer().Len(); got != 1 {
		t.Fatalf("WriteBuffer().Len() = %d, want 1", got)
	}

	var observedLen int
	s.On("close", func(args ...any) {
		observedLen = s.WriteBuffer().Len()
	})

	s.onClose("forced close", nil)

	if observedLen != 1 {
		t.Fatalf("WriteBuffer().Len() observed during close = %d, want 1 (cleared only after emit)", observedLen)
	}
	if got := s.WriteBuffer().Len(); got != 0 {
		t.Fatalf("WriteBuffer().Len() after close = %d, want 0", got)
	}
}

func TestCloseWaitsForDrainWhenBufferNonEmpty(t *testing.T) {
	s, ft := newTestSocket()
	ft.SetWritable(false)

	s.Write(strings.NewReader("queued"), nil, nil)
	s.Close()

	if got := s.ReadyState(); got != SocketStateClosing {
		t.Fatalf("ReadyState() = %q, want %q while buffer still has data", got, SocketStateClosing)
	}

	ft.SetWritable(true)
	s.Flush()

	waitFor(t, time.Second, func() bool { return s.ReadyState() == SocketStateClosed })
}

func TestOpenEmitsErrorWhenNoTransportsConfigured(t *testing.T) {
	ResetPriorWebsocketSuccess()
	s := MakeSocketWithoutUpgrade().(*socketWithoutUpgrade)
	s.opts = DefaultSocketOptions()
	s.opts.SetTransports(types.NewSlice[string]())
	s.transportsList = s.opts.Transports()

	errCh := make(chan error, 1)
	s.On("error", func(args ...any) {
		if len(args) > 0 {
			if err, ok := args[0].(error); ok {
				errCh <- err
			}
		}
	})

	s.open()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected a non-nil error")
		}
	case <-time.After(time.Second):
		t.Fatal("expected an error event when no transports are configured")
	}
}

func TestCreateTransportSelectsJSONPWhenForced(t *testing.T) {
	s := MakeSocketWithoutUpgrade().(*socketWithoutUpgrade)
	opts := DefaultSocketOptions()
	opts.SetForceJSONP(true)
	s.opts = opts

	tr := s.CreateTransport("polling")
	if got := tr.Name(); got != "polling-jsonp" {
		t.Fatalf("CreateTransport(%q).Name() = %q, want %q", "polling", got, "polling-jsonp")
	}
}

func TestCreateTransportCarriesProtocolAndSidInQuery(t *testing.T) {
	s := MakeSocketWithoutUpgrade().(*socketWithoutUpgrade)
	s.opts = DefaultSocketOptions()
	s.id = "existing-sid"

	tr := s.CreateTransport("websocket")
	if got := tr.Query().Get("sid"); got != "existing-sid" {
		t.Fatalf("Query().Get(sid) = %q, want %q", got, "existing-sid")
	}
	if got := tr.Query().Get("EIO"); got != fmt.Sprintf("%d", Protocol) {
		t.Fatalf("Query().Get(EIO) = %q, want %q", got, fmt.Sprintf("%d", Protocol))
	}
}
