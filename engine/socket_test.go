package engine

import "testing"

func TestNewSocketDefaultsTransportsWhenUnset(t *testing.T) {
	ResetPriorWebsocketSuccess()
	opts := DefaultSocketOptions()
	opts.SetTransports(nil)

	if opts.Transports() != nil && opts.Transports().Len() != 0 {
		t.Fatalf("precondition failed: expected no transports set")
	}

	s := NewSocket("http://localhost:1/", opts)

	got := opts.Transports().All()
	if len(got) != 2 || got[0] != "polling" || got[1] != "websocket" {
		t.Fatalf("Transports().All() = %v, want [polling websocket]", got)
	}
	_ = s
}

func TestMakeSocketPrototypeDispatchesToOutermostType(t *testing.T) {
	s := MakeSocket()
	ws, ok := s.(*socket)
	if !ok {
		t.Fatalf("MakeSocket() concrete type = %T, want *socket", s)
	}

	// Neither socketWithUpgrade nor socket keep their own _proto_ field: the
	// Prototype chain bottoms out at socketWithoutUpgrade, and every layer's
	// Proto() call promotes straight through to it. So calling Proto() from
	// any layer must resolve to the outermost *socket, not the layer it was
	// called on, for virtual dispatch (e.g. OnHandshake, CreateTransport) to
	// reach the most-derived override.
	inner := ws.SocketWithUpgrade.(*socketWithUpgrade)
	if inner.Proto() != s {
		t.Fatalf("socketWithUpgrade.Proto() should resolve to the outermost Socket wrapper")
	}

	innermost := inner.SocketWithoutUpgrade.(*socketWithoutUpgrade)
	if innermost.Proto() != s {
		t.Fatalf("socketWithoutUpgrade.Proto() should resolve to the outermost Socket wrapper")
	}
}
